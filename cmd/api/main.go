package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jhoicas/inventory-ledger/internal/application/approval"
	appaudit "github.com/jhoicas/inventory-ledger/internal/application/audit"
	"github.com/jhoicas/inventory-ledger/internal/application/auth"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/application/usecase"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/audit"
	infrapdf "github.com/jhoicas/inventory-ledger/internal/infrastructure/pdf"
	httpRouter "github.com/jhoicas/inventory-ledger/internal/interfaces/http"
	"github.com/jhoicas/inventory-ledger/pkg/config"
	"github.com/jhoicas/inventory-ledger/pkg/jwt"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("store", cfg.Store.Driver).
		Msg("iniciando aplicación")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("JWT_SECRET requerido")
	}

	ctx := context.Background()
	be, err := openBackend(ctx, cfg, log.Component("store"))
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer be.close()

	// Auditoría: siempre al log; además a un stream de Redis si está configurado.
	sinks := []appaudit.Sink{audit.NewLogSink(log.Component("audit"))}
	if cfg.Audit.RedisAddr != "" {
		client, err := audit.NewRedisClient(ctx, cfg.Audit.RedisAddr, cfg.Audit.RedisPassword, cfg.Audit.RedisDB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer client.Close()
		sinks = append(sinks, audit.NewRedisStreamSink(client, cfg.Audit.Stream, log.Component("audit")))
	}
	events := audit.NewDispatcher(cfg.Audit.Buffer, log.Component("audit"), sinks...)

	authorizer, err := auth.NewPINAuthorizer(be.actors, cfg.Ledger.PINCost)
	if err != nil {
		log.Fatal().Err(err).Msg("autorizador")
	}
	pinService := auth.NewPINService(be.actors, events, cfg.Ledger.PINCost, nil)

	ledger := inventory.NewLedgerUseCase(be.txRunner, authorizer, be.repos, events, inventory.LedgerConfig{
		EntryTypeName:    cfg.Ledger.EntryTypeName,
		ReversalTypeName: cfg.Ledger.ReversalTypeName,
	})
	workflow := approval.NewWorkflow(be.txRunner, authorizer, ledger, be.approvals, events, approval.Config{
		AllowSelfApproval: cfg.Ledger.AllowSelfApproval,
	})
	movementTypeUC := usecase.NewMovementTypeUseCase(be.repos.MovementTypes, be.repos.Movements)

	if be.memory != nil && cfg.App.Env == "development" {
		bootstrapAdmin(ctx, cfg, be, pinService, log)
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.RequestLogger(log.Component("http")))

	// Swagger UI en local: http://localhost:<port>/docs (requiere `swag init`)
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Inventory Ledger API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "audit_dropped": events.Dropped()})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		Ledger:         ledger,
		Workflow:       workflow,
		MovementTypeUC: movementTypeUC,
		PINService:     pinService,
		Receipts:       infrapdf.NewReceiptGenerator(cfg.App.Name),
		JWTSecret:      cfg.JWT.Secret,
		JWTIssuer:      cfg.JWT.Issuer,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := events.Close(shutdownCtx); err != nil {
		log.Warn().Err(err).Int64("dropped", events.Dropped()).Msg("auditoría sin vaciar")
	}

	log.Info().Msg("aplicación detenida")
}

// bootstrapAdmin crea un admin con PIN nuevo en el store en memoria para pruebas locales.
// PIN y token solo se muestran en el log de arranque.
func bootstrapAdmin(ctx context.Context, cfg *config.Config, be *backend, pins *auth.PINService, log *logger.Logger) {
	const adminID = "admin"
	be.memory.AddActor(entity.Actor{ID: adminID, Name: "Administrador", Role: entity.RoleAdmin, Status: "active"})
	pin, err := pins.IssuePIN(ctx, adminID, adminID)
	if err != nil {
		log.Error().Err(err).Msg("emitir PIN de arranque")
		return
	}
	token, err := jwt.Generate(cfg.JWT.Secret, adminID, entity.RoleAdmin, cfg.JWT.Issuer, cfg.JWT.Expiration)
	if err != nil {
		log.Error().Err(err).Msg("emitir token de arranque")
		return
	}
	log.Warn().Str("actor_id", adminID).Str("pin", pin).Str("token", token).Msg("actor admin de desarrollo creado")
}
