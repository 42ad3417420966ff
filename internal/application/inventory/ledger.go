package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventory-ledger/internal/application/audit"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

// LedgerConfig nombres de los tipos de movimiento que el ledger usa por defecto.
type LedgerConfig struct {
	EntryTypeName    string // tipo usado cuando una entrada no indica tipo
	ReversalTypeName string // tipo asignado a los movimientos compensatorios
}

// Repositories lecturas fuera de transacción (validación previa a cualquier escritura).
type Repositories struct {
	SKUs          repository.SKURepository
	Locations     repository.LocationRepository
	Assets        repository.AssetRepository
	MovementTypes repository.MovementTypeRepository
	Movements     repository.MovementRepository
	Balances      repository.BalanceRepository
}

// LedgerUseCase registra entradas, salidas y reversiones de forma transaccional:
// cada operación es exactamente una unidad de trabajo (movimiento + saldo).
type LedgerUseCase struct {
	txRunner TxRunner
	auth     Authorizer
	repos    Repositories
	events   audit.Sink
	cfg      LedgerConfig
	now      func() time.Time
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(
	txRunner TxRunner,
	auth Authorizer,
	repos Repositories,
	events audit.Sink,
	cfg LedgerConfig,
) *LedgerUseCase {
	if events == nil {
		events = audit.NopSink{}
	}
	return &LedgerUseCase{
		txRunner: txRunner,
		auth:     auth,
		repos:    repos,
		events:   events,
		cfg:      cfg,
		now:      time.Now,
	}
}

// SetClock reemplaza el reloj (tests).
func (uc *LedgerUseCase) SetClock(now func() time.Time) { uc.now = now }

// EntryInput entrada para RecordEntry. MovementTypeID vacío usa el tipo de entrada configurado.
type EntryInput struct {
	ActorID        string
	PIN            string
	SKUID          string
	LocationID     string
	Quantity       int64
	MovementTypeID string
	Reason         string
	AssetID        string
}

// ExitInput entrada para RecordExit y para solicitudes de aprobación de salida.
type ExitInput struct {
	ActorID        string
	PIN            string
	SKUID          string
	LocationID     string
	Quantity       int64
	MovementTypeID string
	Reason         string
	AssetID        string
}

// ExitSpec salida ya validada, lista para ejecutarse dentro de una transacción.
type ExitSpec struct {
	ActorID    string
	SKUID      string
	LocationID string
	Quantity   int64
	AssetID    string
	Reason     string
}

// RecordEntry valida SKU, ubicación, tipo y activo; luego en una sola transacción
// suma el saldo (upsert) y agrega el movimiento.
func (uc *LedgerUseCase) RecordEntry(ctx context.Context, in EntryInput) (*entity.Movement, error) {
	if err := uc.auth.Authorize(ctx, in.ActorID, in.PIN); err != nil {
		return nil, err
	}
	cat := uc.repos.catalog()
	mt, err := uc.resolveEntryType(ctx, cat, in.MovementTypeID)
	if err != nil {
		return nil, err
	}
	if err := cat.validateRefs(ctx, in.SKUID, in.LocationID, in.AssetID, in.Quantity, true); err != nil {
		return nil, err
	}

	now := uc.now()
	var mov *entity.Movement
	err = uc.txRunner.Run(ctx, func(repos TxRepos) error {
		if _, err := repos.Balances.Increment(ctx, in.SKUID, in.LocationID, in.Quantity, now); err != nil {
			return err
		}
		if err := lockAsset(ctx, repos, in.AssetID, true); err != nil {
			return err
		}
		m := &entity.Movement{
			ID:             uuid.New().String(),
			MovementTypeID: mt.ID,
			SKUID:          in.SKUID,
			Quantity:       in.Quantity,
			ToLocationID:   in.LocationID,
			ActorID:        in.ActorID,
			Reason:         in.Reason,
			AssetID:        in.AssetID,
			CreatedAt:      now,
		}
		if err := repos.Movements.Create(ctx, m); err != nil {
			return err
		}
		if err := applyAssetStatus(ctx, repos, mt, m, now); err != nil {
			return err
		}
		mov = m
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.events.Publish(ctx, audit.Event{
		Kind:     audit.KindEntryRecorded,
		ActorID:  mov.ActorID,
		EntityID: mov.ID,
		Summary:  fmt.Sprintf("entrada de %d x %s en %s (%s)", mov.Quantity, mov.SKUID, mov.ToLocationID, mt.Name),
		At:       now,
		Fields:   movementFields(mov),
	})
	return mov, nil
}

// RecordExit registra una salida directa. Si el tipo requiere aprobación devuelve
// domain.ErrApprovalRequired sin tocar el ledger: el caller debe usar el flujo de aprobación.
func (uc *LedgerUseCase) RecordExit(ctx context.Context, in ExitInput) (*entity.Movement, error) {
	if err := uc.auth.Authorize(ctx, in.ActorID, in.PIN); err != nil {
		return nil, err
	}
	mt, err := uc.ValidateExit(ctx, in)
	if err != nil {
		return nil, err
	}
	if mt.RequiresApproval {
		return nil, domain.ErrApprovalRequired
	}
	return uc.ExecuteExit(ctx, mt, in)
}

// ExecuteExit ejecuta una salida ya autorizada y validada (ValidateExit) con un tipo sin aprobación.
// No revisa el PIN.
func (uc *LedgerUseCase) ExecuteExit(ctx context.Context, mt *entity.MovementType, in ExitInput) (*entity.Movement, error) {
	if mt.RequiresApproval {
		return nil, domain.ErrApprovalRequired
	}
	now := uc.now()
	var mov *entity.Movement
	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		m, err := uc.ExitInTx(ctx, repos, mt, ExitSpec{
			ActorID:    in.ActorID,
			SKUID:      in.SKUID,
			LocationID: in.LocationID,
			Quantity:   in.Quantity,
			AssetID:    in.AssetID,
			Reason:     in.Reason,
		}, now)
		mov = m
		return err
	})
	if err != nil {
		return nil, err
	}

	uc.events.Publish(ctx, audit.Event{
		Kind:     audit.KindExitRecorded,
		ActorID:  mov.ActorID,
		EntityID: mov.ID,
		Summary:  fmt.Sprintf("salida de %d x %s desde %s (%s)", mov.Quantity, mov.SKUID, mov.FromLocationID, mt.Name),
		At:       now,
		Fields:   movementFields(mov),
	})
	return mov, nil
}

// ValidateExit verifica referencias de una salida y devuelve su tipo de movimiento.
// No consulta saldo ni modifica nada.
func (uc *LedgerUseCase) ValidateExit(ctx context.Context, in ExitInput) (*entity.MovementType, error) {
	return validateExit(ctx, uc.repos.catalog(), in)
}

// ValidateExitInTx igual que ValidateExit pero lee con los repositorios de la tx del caller.
func (uc *LedgerUseCase) ValidateExitInTx(ctx context.Context, repos TxRepos, in ExitInput) (*entity.MovementType, error) {
	return validateExit(ctx, repos.catalog(), in)
}

func validateExit(ctx context.Context, cat catalog, in ExitInput) (*entity.MovementType, error) {
	if in.MovementTypeID == "" {
		return nil, domain.ErrInvalidInput
	}
	mt, err := cat.types.GetByID(ctx, in.MovementTypeID)
	if err != nil {
		return nil, fmt.Errorf("obtener tipo de movimiento: %w", err)
	}
	if mt == nil {
		return nil, domain.ErrNotFound
	}
	if err := cat.validateRefs(ctx, in.SKUID, in.LocationID, in.AssetID, in.Quantity, false); err != nil {
		return nil, err
	}
	return mt, nil
}

// ExitInTx ejecuta una salida usando los repositorios de la transacción del caller.
// Bloquea la fila de saldo (SELECT FOR UPDATE), verifica suficiencia y descuenta en la misma unidad.
// No evalúa RequiresApproval: el flujo de aprobación lo invoca una vez aprobada la solicitud.
func (uc *LedgerUseCase) ExitInTx(
	ctx context.Context,
	repos TxRepos,
	mt *entity.MovementType,
	spec ExitSpec,
	now time.Time,
) (*entity.Movement, error) {
	balance, err := repos.Balances.GetForUpdate(ctx, spec.SKUID, spec.LocationID)
	if err != nil {
		return nil, err
	}
	if balance.Quantity < spec.Quantity {
		return nil, domain.NewInsufficientStock(spec.SKUID, spec.LocationID, balance.Quantity, spec.Quantity)
	}
	if _, err := repos.Balances.Decrement(ctx, spec.SKUID, spec.LocationID, spec.Quantity, now); err != nil {
		return nil, err
	}
	if err := lockAsset(ctx, repos, spec.AssetID, false); err != nil {
		return nil, err
	}
	m := &entity.Movement{
		ID:             uuid.New().String(),
		MovementTypeID: mt.ID,
		SKUID:          spec.SKUID,
		Quantity:       spec.Quantity,
		FromLocationID: spec.LocationID,
		ActorID:        spec.ActorID,
		Reason:         spec.Reason,
		AssetID:        spec.AssetID,
		CreatedAt:      now,
	}
	if err := repos.Movements.Create(ctx, m); err != nil {
		return nil, err
	}
	if err := applyAssetStatus(ctx, repos, mt, m, now); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordReversal crea el movimiento compensatorio de originalID en su propia transacción,
// sin solicitud de por medio. La API solo expone reversiones aprobadas (ReversalInTx).
func (uc *LedgerUseCase) RecordReversal(ctx context.Context, originalID, actorID, reason string) (*entity.Movement, error) {
	now := uc.now()
	var mov *entity.Movement
	err := uc.txRunner.Run(ctx, func(repos TxRepos) error {
		m, err := uc.ReversalInTx(ctx, repos, originalID, actorID, reason, now)
		mov = m
		return err
	})
	if err != nil {
		return nil, err
	}
	return mov, nil
}

// ReversalInTx: bloquea el movimiento original, verifica que no esté revertido, valida
// que las ubicaciones destino sigan activas, ajusta saldos en sentido inverso,
// agrega el movimiento compensatorio y marca el original. Todo en la tx del caller.
func (uc *LedgerUseCase) ReversalInTx(
	ctx context.Context,
	repos TxRepos,
	originalID, actorID, reason string,
	now time.Time,
) (*entity.Movement, error) {
	original, err := repos.Movements.GetForUpdate(ctx, originalID)
	if err != nil {
		return nil, err
	}
	if original == nil {
		return nil, domain.ErrNotFound
	}
	if original.IsReverted() {
		return nil, domain.ErrAlreadyReverted
	}
	if original.IsReversal() {
		return nil, fmt.Errorf("%w: un movimiento compensatorio no se revierte", domain.ErrInvalidInput)
	}
	cat := repos.catalog()
	mt, err := cat.namedType(ctx, uc.cfg.ReversalTypeName)
	if err != nil {
		return nil, err
	}

	comp := inventory.Compensation(original)
	for _, locID := range []string{comp.FromLocationID, comp.ToLocationID} {
		if locID == "" {
			continue
		}
		if err := cat.requireActiveLocation(ctx, locID); err != nil {
			return nil, err
		}
	}

	// Primero la fila que se descuenta (puede fallar por stock), después la que se suma.
	if comp.FromLocationID != "" {
		balance, err := repos.Balances.GetForUpdate(ctx, comp.SKUID, comp.FromLocationID)
		if err != nil {
			return nil, err
		}
		if balance.Quantity < comp.Quantity {
			return nil, domain.NewInsufficientStock(comp.SKUID, comp.FromLocationID, balance.Quantity, comp.Quantity)
		}
		if _, err := repos.Balances.Decrement(ctx, comp.SKUID, comp.FromLocationID, comp.Quantity, now); err != nil {
			return nil, err
		}
	}
	if comp.ToLocationID != "" {
		if _, err := repos.Balances.Increment(ctx, comp.SKUID, comp.ToLocationID, comp.Quantity, now); err != nil {
			return nil, err
		}
	}

	comp.ID = uuid.New().String()
	comp.MovementTypeID = mt.ID
	comp.ActorID = actorID
	comp.Reason = reason
	comp.CreatedAt = now
	if err := repos.Movements.Create(ctx, comp); err != nil {
		return nil, err
	}
	if err := repos.Movements.MarkReverted(ctx, original.ID, comp.ID); err != nil {
		return nil, err
	}
	if err := applyAssetStatus(ctx, repos, mt, comp, now); err != nil {
		return nil, err
	}
	return comp, nil
}

func (uc *LedgerUseCase) resolveEntryType(ctx context.Context, cat catalog, movementTypeID string) (*entity.MovementType, error) {
	if movementTypeID == "" {
		return cat.namedType(ctx, uc.cfg.EntryTypeName)
	}
	mt, err := cat.types.GetByID(ctx, movementTypeID)
	if err != nil {
		return nil, fmt.Errorf("obtener tipo de movimiento: %w", err)
	}
	if mt == nil {
		return nil, domain.ErrNotFound
	}
	return mt, nil
}

// namedType busca un tipo configurado por nombre; su ausencia es un error de configuración.
func (c catalog) namedType(ctx context.Context, name string) (*entity.MovementType, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: nombre de tipo de movimiento vacío", domain.ErrConfigurationMissing)
	}
	mt, err := c.types.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("obtener tipo %q: %w", name, err)
	}
	if mt == nil {
		return nil, fmt.Errorf("%w: tipo de movimiento %q no existe", domain.ErrConfigurationMissing, name)
	}
	return mt, nil
}

func (c catalog) validateRefs(ctx context.Context, skuID, locationID, assetID string, quantity int64, entry bool) error {
	if skuID == "" || locationID == "" || quantity <= 0 {
		return domain.ErrInvalidInput
	}
	sku, err := c.skus.GetByID(ctx, skuID)
	if err != nil {
		return fmt.Errorf("obtener SKU: %w", err)
	}
	if sku == nil {
		return domain.ErrNotFound
	}
	if err := c.requireActiveLocation(ctx, locationID); err != nil {
		return err
	}
	if assetID == "" {
		return nil
	}
	// Un activo serializado se mueve de a una unidad y debe ser del mismo SKU.
	if quantity != 1 {
		return domain.ErrInvalidInput
	}
	asset, err := c.assets.GetByID(ctx, assetID)
	if err != nil {
		return fmt.Errorf("obtener activo: %w", err)
	}
	if asset == nil {
		return domain.ErrNotFound
	}
	if asset.SKUID != skuID {
		return domain.ErrInvalidInput
	}
	return assetMovable(asset, entry)
}

func (c catalog) requireActiveLocation(ctx context.Context, locationID string) error {
	loc, err := c.locations.GetByID(ctx, locationID)
	if err != nil {
		return fmt.Errorf("obtener ubicación: %w", err)
	}
	if loc == nil || !loc.Active {
		return domain.ErrNotFound
	}
	return nil
}

// lockAsset bloquea el activo dentro de la tx y vuelve a validar su estado.
// Se toma después del candado de saldo, igual que UpdateStatus.
func lockAsset(ctx context.Context, repos TxRepos, assetID string, entry bool) error {
	if assetID == "" {
		return nil
	}
	asset, err := repos.Assets.GetForUpdate(ctx, assetID)
	if err != nil {
		return err
	}
	if asset == nil {
		return domain.ErrNotFound
	}
	return assetMovable(asset, entry)
}

func assetMovable(a *entity.Asset, entry bool) error {
	if !inventory.AssetMovable(a.Status, entry) {
		return fmt.Errorf("%w: el activo %s está en estado %s", domain.ErrInvalidInput, a.ID, a.Status)
	}
	return nil
}

func applyAssetStatus(ctx context.Context, repos TxRepos, mt *entity.MovementType, m *entity.Movement, now time.Time) error {
	status := inventory.AssetStatusAfter(mt, m)
	if status == "" {
		return nil
	}
	return repos.Assets.UpdateStatus(ctx, m.AssetID, status, now)
}

func movementFields(m *entity.Movement) map[string]string {
	f := map[string]string{
		"sku_id":           m.SKUID,
		"movement_type_id": m.MovementTypeID,
		"quantity":         fmt.Sprintf("%d", m.Quantity),
	}
	if m.FromLocationID != "" {
		f["from_location_id"] = m.FromLocationID
	}
	if m.ToLocationID != "" {
		f["to_location_id"] = m.ToLocationID
	}
	if m.AssetID != "" {
		f["asset_id"] = m.AssetID
	}
	if m.ReversalOfMovementID != "" {
		f["reversal_of"] = m.ReversalOfMovementID
	}
	return f
}
