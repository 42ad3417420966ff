package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventory-ledger/internal/application/dto"
	"github.com/jhoicas/inventory-ledger/internal/domain"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
)

// MovementTypeUseCase casos de uso CRUD para tipos de movimiento.
type MovementTypeUseCase struct {
	repo      repository.MovementTypeRepository
	movements repository.MovementRepository
}

// NewMovementTypeUseCase construye el caso de uso.
func NewMovementTypeUseCase(repo repository.MovementTypeRepository, movements repository.MovementRepository) *MovementTypeUseCase {
	return &MovementTypeUseCase{repo: repo, movements: movements}
}

// Create crea un tipo de movimiento. El nombre es único.
func (uc *MovementTypeUseCase) Create(ctx context.Context, in dto.CreateMovementTypeRequest) (*dto.MovementTypeResponse, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.ensureNameFree(ctx, name, ""); err != nil {
		return nil, err
	}
	now := time.Now()
	mt := &entity.MovementType{
		ID:               uuid.New().String(),
		Name:             name,
		RequiresApproval: in.RequiresApproval,
		IsFinalWriteOff:  in.IsFinalWriteOff,
		SetsAssetStatus:  in.SetsAssetStatus,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := uc.repo.Create(ctx, mt); err != nil {
		return nil, err
	}
	return toMovementTypeResponse(mt), nil
}

// GetByID obtiene un tipo de movimiento por ID.
func (uc *MovementTypeUseCase) GetByID(ctx context.Context, id string) (*dto.MovementTypeResponse, error) {
	mt, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toMovementTypeResponse(mt), nil
}

// Update actualiza los campos presentes.
func (uc *MovementTypeUseCase) Update(ctx context.Context, id string, in dto.UpdateMovementTypeRequest) (*dto.MovementTypeResponse, error) {
	mt, err := uc.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		if name != mt.Name {
			if err := uc.ensureNameFree(ctx, name, mt.ID); err != nil {
				return nil, err
			}
		}
		mt.Name = name
	}
	if in.RequiresApproval != nil {
		mt.RequiresApproval = *in.RequiresApproval
	}
	if in.IsFinalWriteOff != nil {
		mt.IsFinalWriteOff = *in.IsFinalWriteOff
	}
	if in.SetsAssetStatus != nil {
		mt.SetsAssetStatus = *in.SetsAssetStatus
	}
	mt.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, mt); err != nil {
		return nil, err
	}
	return toMovementTypeResponse(mt), nil
}

// List lista todos los tipos de movimiento ordenados por nombre.
func (uc *MovementTypeUseCase) List(ctx context.Context) ([]dto.MovementTypeResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.MovementTypeResponse, 0, len(list))
	for _, mt := range list {
		items = append(items, *toMovementTypeResponse(mt))
	}
	return items, nil
}

// Delete elimina un tipo de movimiento; devuelve domain.ErrInUse si algún movimiento lo referencia.
func (uc *MovementTypeUseCase) Delete(ctx context.Context, id string) error {
	if _, err := uc.get(ctx, id); err != nil {
		return err
	}
	n, err := uc.movements.CountByType(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return domain.ErrInUse
	}
	return uc.repo.Delete(ctx, id)
}

func (uc *MovementTypeUseCase) get(ctx context.Context, id string) (*entity.MovementType, error) {
	mt, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if mt == nil {
		return nil, domain.ErrNotFound
	}
	return mt, nil
}

func (uc *MovementTypeUseCase) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := uc.repo.GetByName(ctx, name)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return domain.ErrDuplicate
	}
	return nil
}

func toMovementTypeResponse(mt *entity.MovementType) *dto.MovementTypeResponse {
	if mt == nil {
		return nil
	}
	return &dto.MovementTypeResponse{
		ID:               mt.ID,
		Name:             mt.Name,
		RequiresApproval: mt.RequiresApproval,
		IsFinalWriteOff:  mt.IsFinalWriteOff,
		SetsAssetStatus:  mt.SetsAssetStatus,
		CreatedAt:        mt.CreatedAt,
		UpdatedAt:        mt.UpdatedAt,
	}
}
