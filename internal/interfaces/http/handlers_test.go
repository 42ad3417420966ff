package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jhoicas/inventory-ledger/internal/application/approval"
	"github.com/jhoicas/inventory-ledger/internal/application/audit"
	"github.com/jhoicas/inventory-ledger/internal/application/auth"
	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/application/usecase"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/inventory-ledger/internal/interfaces/http"
)

const (
	opID   = "op-1"
	opPIN  = "111111"
	supID  = "sup-1"
	supPIN = "222222"
	admID  = "adm-1"
)

type apiFixture struct {
	app   *fiber.App
	store *memory.Store
}

func newAPI(t *testing.T) *apiFixture {
	t.Helper()
	s := memory.NewStore()
	s.AddSKU(entity.SKU{ID: "sku-1", Code: "TAL-001", Name: "Taladro"})
	s.AddLocation(entity.Location{ID: "loc-a", Name: "Bodega A", Active: true})
	s.AddMovementType(entity.MovementType{ID: "t-entry", Name: "Entrada"})
	s.AddMovementType(entity.MovementType{ID: "t-rev", Name: "Estorno"})
	s.AddMovementType(entity.MovementType{ID: "t-exit", Name: "Saída"})
	s.AddMovementType(entity.MovementType{ID: "t-special", Name: "Saída Especial", RequiresApproval: true})
	s.AddActor(entity.Actor{ID: opID, Name: "Operador", Role: entity.RoleBodeguero, PINHash: hash(t, opPIN), Status: "active"})
	s.AddActor(entity.Actor{ID: supID, Name: "Supervisor", Role: entity.RoleSupervisor, PINHash: hash(t, supPIN), Status: "active"})
	s.AddActor(entity.Actor{ID: admID, Name: "Admin", Role: entity.RoleAdmin, Status: "active"})

	authorizer, err := auth.NewPINAuthorizer(s.Actors(), bcrypt.MinCost)
	require.NoError(t, err)
	events := audit.NewRecorder(64)
	ledger := inventory.NewLedgerUseCase(s, authorizer, inventory.Repositories{
		SKUs:          s.SKUs(),
		Locations:     s.Locations(),
		Assets:        s.Assets(),
		MovementTypes: s.MovementTypes(),
		Movements:     s.Movements(),
		Balances:      s.Balances(),
	}, events, inventory.LedgerConfig{EntryTypeName: "Entrada", ReversalTypeName: "Estorno"})
	workflow := approval.NewWorkflow(s, authorizer, ledger, s.Approvals(), events, approval.Config{})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		Ledger:         ledger,
		Workflow:       workflow,
		MovementTypeUC: usecase.NewMovementTypeUseCase(s.MovementTypes(), s.Movements()),
		PINService:     auth.NewPINService(s.Actors(), events, bcrypt.MinCost, nil),
		Receipts:       pdf.NewReceiptGenerator("test"),
		JWTSecret:      testJWTSecret,
	})
	return &apiFixture{app: app, store: s}
}

func hash(t *testing.T, pin string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func (f *apiFixture) call(t *testing.T, method, path, actorID, role string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenFor(t, actorID, role))
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func (f *apiFixture) entry(t *testing.T, qty int64) dto.MovementResponse {
	t.Helper()
	resp, body := f.call(t, http.MethodPost, "/api/inventory/entries", opID, "bodeguero", fiber.Map{
		"pin": opPIN, "sku_id": "sku-1", "location_id": "loc-a", "quantity": qty,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var m dto.MovementResponse
	require.NoError(t, json.Unmarshal(body, &m))
	return m
}

func TestAPI_EntryAndBalance(t *testing.T) {
	f := newAPI(t)
	m := f.entry(t, 7)
	assert.Equal(t, "t-entry", m.MovementTypeID)
	assert.Equal(t, opID, m.ActorID)

	resp, body := f.call(t, http.MethodGet, "/api/inventory/balances/sku-1/loc-a", opID, "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var b dto.BalanceResponse
	require.NoError(t, json.Unmarshal(body, &b))
	assert.EqualValues(t, 7, b.Quantity)

	resp, body = f.call(t, http.MethodGet, "/api/inventory/balances?sku_id=sku-1", opID, "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.BalanceListResponse
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Items, 1)
	assert.Equal(t, 20, list.Page.Limit)
	assert.Equal(t, 1, list.Page.Count)
}

func TestAPI_ValidationErrors(t *testing.T) {
	f := newAPI(t)
	resp, body := f.call(t, http.MethodPost, "/api/inventory/entries", opID, "bodeguero", fiber.Map{
		"pin": "12ab", "sku_id": "sku-1", "location_id": "loc-a", "quantity": 0,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "VALIDATION", e.Code)
	assert.Contains(t, e.Fields, "PIN")
	assert.Contains(t, e.Fields, "Quantity")

	resp, _ = f.call(t, http.MethodGet, "/api/inventory/movements?from=ayer", opID, "bodeguero", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_WrongPINIs401(t *testing.T) {
	f := newAPI(t)
	resp, body := f.call(t, http.MethodPost, "/api/inventory/entries", opID, "bodeguero", fiber.Map{
		"pin": "999999", "sku_id": "sku-1", "location_id": "loc-a", "quantity": 1,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(body), "INVALID_PIN")
}

func TestAPI_InsufficientStockCarriesAvailable(t *testing.T) {
	f := newAPI(t)
	f.entry(t, 2)
	resp, body := f.call(t, http.MethodPost, "/api/inventory/exits", opID, "bodeguero", fiber.Map{
		"pin": opPIN, "sku_id": "sku-1", "location_id": "loc-a", "quantity": 5, "movement_type_id": "t-exit",
	})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &e))
	assert.Equal(t, "INSUFFICIENT_STOCK", e.Code)
	require.NotNil(t, e.Available)
	assert.EqualValues(t, 2, *e.Available)
}

func TestAPI_GatedExitGoesThroughApproval(t *testing.T) {
	f := newAPI(t)
	f.entry(t, 10)

	resp, body := f.call(t, http.MethodPost, "/api/inventory/exits", opID, "bodeguero", fiber.Map{
		"pin": opPIN, "sku_id": "sku-1", "location_id": "loc-a", "quantity": 4, "movement_type_id": "t-special",
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode, string(body))
	var req dto.ApprovalResponse
	require.NoError(t, json.Unmarshal(body, &req))
	assert.Equal(t, "EXIT_APPROVAL", req.Type)
	assert.Equal(t, "PENDING", req.Status)

	// El bodeguero no puede decidir.
	resp, _ = f.call(t, http.MethodPost, "/api/approvals/"+req.ID+"/approve", opID, "bodeguero", fiber.Map{"pin": opPIN})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body = f.call(t, http.MethodGet, "/api/approvals/pending", supID, "supervisor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var pending dto.ApprovalListResponse
	require.NoError(t, json.Unmarshal(body, &pending))
	require.Len(t, pending.Items, 1)

	resp, body = f.call(t, http.MethodPost, "/api/approvals/"+req.ID+"/approve", supID, "supervisor", fiber.Map{"pin": supPIN})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out dto.DecisionResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, "APPROVED", out.Request.Status)
	require.NotNil(t, out.Movement)
	assert.Equal(t, out.Movement.ID, out.Request.ResultMovementID)

	resp, body = f.call(t, http.MethodPost, "/api/approvals/"+req.ID+"/reject", supID, "supervisor", fiber.Map{"pin": supPIN})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "ALREADY_PROCESSED")

	resp, body = f.call(t, http.MethodGet, "/api/inventory/balances/sku-1/loc-a", opID, "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var b dto.BalanceResponse
	require.NoError(t, json.Unmarshal(body, &b))
	assert.EqualValues(t, 6, b.Quantity)
}

func TestAPI_ReversalRequestAndReceipt(t *testing.T) {
	f := newAPI(t)
	m := f.entry(t, 3)

	resp, body := f.call(t, http.MethodPost, "/api/inventory/movements/"+m.ID+"/reversal-requests", opID, "bodeguero", fiber.Map{
		"pin": opPIN, "reason": "cantidad digitada mal",
	})
	require.Equal(t, http.StatusAccepted, resp.StatusCode, string(body))
	var req dto.ApprovalResponse
	require.NoError(t, json.Unmarshal(body, &req))
	require.NotNil(t, req.Reversal)
	assert.Equal(t, m.ID, req.Reversal.MovementID)

	resp, body = f.call(t, http.MethodPost, "/api/approvals/"+req.ID+"/approve", supID, "supervisor", fiber.Map{"pin": supPIN})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var out dto.DecisionResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotNil(t, out.Movement)
	assert.Equal(t, m.ID, out.Movement.ReversalOfMovementID)

	resp, body = f.call(t, http.MethodGet, "/api/inventory/movements/"+m.ID, opID, "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var orig dto.MovementResponse
	require.NoError(t, json.Unmarshal(body, &orig))
	assert.Equal(t, out.Movement.ID, orig.RevertedByMovementID)

	resp, body = f.call(t, http.MethodGet, "/api/inventory/movements/"+m.ID+"/receipt", opID, "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))

	resp, _ = f.call(t, http.MethodGet, "/api/inventory/movements/no-existe", opID, "bodeguero", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_MovementTypesAdmin(t *testing.T) {
	f := newAPI(t)

	resp, _ := f.call(t, http.MethodPost, "/api/movement-types", opID, "bodeguero", fiber.Map{"name": "Préstamo"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, body := f.call(t, http.MethodPost, "/api/movement-types", admID, "admin", fiber.Map{"name": "Préstamo", "requires_approval": true})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var mt dto.MovementTypeResponse
	require.NoError(t, json.Unmarshal(body, &mt))
	assert.True(t, mt.RequiresApproval)

	resp, _ = f.call(t, http.MethodPost, "/api/movement-types", admID, "admin", fiber.Map{"name": "Préstamo"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp, body = f.call(t, http.MethodPut, "/api/movement-types/"+mt.ID, admID, "admin", fiber.Map{"requires_approval": false})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	require.NoError(t, json.Unmarshal(body, &mt))
	assert.False(t, mt.RequiresApproval)
	assert.Equal(t, "Préstamo", mt.Name)

	f.entry(t, 1)
	resp, body = f.call(t, http.MethodDelete, "/api/movement-types/t-entry", admID, "admin", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Contains(t, string(body), "IN_USE")

	resp, _ = f.call(t, http.MethodDelete, "/api/movement-types/"+mt.ID, admID, "admin", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestAPI_IssuePIN(t *testing.T) {
	f := newAPI(t)

	resp, body := f.call(t, http.MethodPost, "/api/actors/"+admID+"/pin", admID, "admin", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var out dto.IssuePINResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Len(t, out.PIN, auth.PINLength)

	// El PIN emitido sirve para operar.
	resp, body = f.call(t, http.MethodPost, "/api/inventory/entries", admID, "admin", fiber.Map{
		"pin": out.PIN, "sku_id": "sku-1", "location_id": "loc-a", "quantity": 1,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode, string(body))

	resp, _ = f.call(t, http.MethodPost, "/api/actors/nadie/pin", admID, "admin", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
