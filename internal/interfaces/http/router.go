package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventory-ledger/internal/application/approval"
	"github.com/jhoicas/inventory-ledger/internal/application/auth"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/application/usecase"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger         *inventory.LedgerUseCase
	Workflow       *approval.Workflow
	MovementTypeUC *usecase.MovementTypeUseCase
	PINService     *auth.PINService
	Receipts       inventory.ReceiptRenderer
	JWTSecret      string
	JWTIssuer      string // vacío: no se valida iss
}

// Router registra las rutas de la API. Todas requieren Bearer Token.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret, jwt.WithIssuer(deps.JWTIssuer), jwt.WithLeeway(30*time.Second)))
	deciders := RequireRole(entity.RoleAdmin, entity.RoleSupervisor)
	adminOnly := RequireRole(entity.RoleAdmin)

	// Ledger
	inv := api.Group("/inventory")
	inventoryHandler := NewInventoryHandler(deps.Ledger, deps.Workflow, deps.Receipts)
	inv.Post("/entries", inventoryHandler.RecordEntry)
	inv.Post("/exits", inventoryHandler.RecordExit)
	inv.Get("/balances", inventoryHandler.ListBalances)
	inv.Get("/balances/:sku_id/:location_id", inventoryHandler.GetBalance)
	inv.Get("/movements", inventoryHandler.ListMovements)
	inv.Get("/movements/:id", inventoryHandler.GetMovement)
	inv.Get("/movements/:id/receipt", inventoryHandler.GetReceipt)
	inv.Post("/movements/:id/reversal-requests", inventoryHandler.RequestReversal)

	// Aprobaciones (decidir: admin o supervisor)
	approvals := api.Group("/approvals")
	approvalHandler := NewApprovalHandler(deps.Workflow)
	approvals.Get("/pending", approvalHandler.ListPending)
	approvals.Get("/:id", approvalHandler.GetByID)
	approvals.Post("/:id/approve", deciders, approvalHandler.Approve)
	approvals.Post("/:id/reject", deciders, approvalHandler.Reject)

	// Tipos de movimiento (admin)
	types := api.Group("/movement-types", adminOnly)
	typeHandler := NewMovementTypeHandler(deps.MovementTypeUC)
	types.Get("/", typeHandler.List)
	types.Post("/", typeHandler.Create)
	types.Get("/:id", typeHandler.GetByID)
	types.Put("/:id", typeHandler.Update)
	types.Delete("/:id", typeHandler.Delete)

	// Actores (admin)
	actors := api.Group("/actors", adminOnly)
	actorHandler := NewActorHandler(deps.PINService)
	actors.Post("/:id/pin", actorHandler.IssuePIN)
}
