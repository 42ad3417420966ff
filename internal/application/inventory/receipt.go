package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
)

// Receipt datos de un movimiento listos para presentarse como comprobante.
type Receipt struct {
	Movement *entity.Movement
	Type     *entity.MovementType
	SKU      *entity.SKU
	From     *entity.Location // nil en entradas
	To       *entity.Location // nil en salidas
}

// ReceiptRenderer convierte un comprobante en un documento (PDF).
type ReceiptRenderer interface {
	Render(ctx context.Context, r *Receipt) ([]byte, error)
}

// Receipt reúne el movimiento con su tipo, SKU y ubicaciones.
// Una ubicación ya dada de baja no impide emitir el comprobante.
func (uc *LedgerUseCase) Receipt(ctx context.Context, movementID string) (*Receipt, error) {
	m, err := uc.GetMovement(ctx, movementID)
	if err != nil {
		return nil, err
	}
	mt, err := uc.MovementType(ctx, m.MovementTypeID)
	if err != nil {
		return nil, err
	}
	sku, err := uc.repos.SKUs.GetByID(ctx, m.SKUID)
	if err != nil {
		return nil, fmt.Errorf("obtener SKU: %w", err)
	}
	if sku == nil {
		sku = &entity.SKU{ID: m.SKUID}
	}
	r := &Receipt{Movement: m, Type: mt, SKU: sku}
	if r.From, err = uc.location(ctx, m.FromLocationID); err != nil {
		return nil, err
	}
	if r.To, err = uc.location(ctx, m.ToLocationID); err != nil {
		return nil, err
	}
	return r, nil
}

func (uc *LedgerUseCase) location(ctx context.Context, id string) (*entity.Location, error) {
	if id == "" {
		return nil, nil
	}
	loc, err := uc.repos.Locations.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("obtener ubicación: %w", err)
	}
	if loc == nil {
		return &entity.Location{ID: id, Name: id}, nil
	}
	return loc, nil
}
