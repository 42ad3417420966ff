package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventory-ledger/internal/application/inventory"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/domain/repository"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/memory"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventory-ledger/pkg/config"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

// backend reúne lo que cada driver de almacenamiento aporta al resto de la app.
type backend struct {
	txRunner  inventory.TxRunner
	repos     inventory.Repositories
	approvals repository.ApprovalRepository
	actors    repository.ActorRepository
	close     func()

	// solo en memoria: permite sembrar un actor admin de arranque
	memory *memory.Store
}

func openBackend(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	switch cfg.Store.Driver {
	case "memory":
		return openMemory(cfg, log), nil
	default:
		return openPostgres(ctx, cfg, log)
	}
}

func openPostgres(ctx context.Context, cfg *config.Config, log *logger.Logger) (*backend, error) {
	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name)
	if err != nil {
		return nil, fmt.Errorf("conexión a PostgreSQL: %w", err)
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("esquema aplicado")
	}
	if err := postgres.SeedMovementTypes(ctx, pool, cfg.Ledger.EntryTypeName, cfg.Ledger.ReversalTypeName); err != nil {
		pool.Close()
		return nil, fmt.Errorf("sembrar tipos de movimiento: %w", err)
	}

	return &backend{
		txRunner: postgres.NewTxRunner(pool, cfg.DB.LockTimeout()),
		repos: inventory.Repositories{
			SKUs:          postgres.NewSKURepository(pool),
			Locations:     postgres.NewLocationRepository(pool),
			Assets:        postgres.NewAssetRepository(pool),
			MovementTypes: postgres.NewMovementTypeRepository(pool),
			Movements:     postgres.NewMovementRepository(pool),
			Balances:      postgres.NewBalanceRepository(pool),
		},
		approvals: postgres.NewApprovalRepository(pool),
		actors:    postgres.NewActorRepository(pool),
		close:     pool.Close,
	}, nil
}

func openMemory(cfg *config.Config, log *logger.Logger) *backend {
	s := memory.NewStore()
	s.SetLockTimeout(cfg.DB.LockTimeout())
	now := time.Now()
	for _, name := range []string{cfg.Ledger.EntryTypeName, cfg.Ledger.ReversalTypeName} {
		if name == "" {
			continue
		}
		s.AddMovementType(entity.MovementType{ID: uuid.New().String(), Name: name, CreatedAt: now, UpdatedAt: now})
	}
	log.Warn().Msg("STORE_DRIVER=memory: los datos se pierden al reiniciar")

	return &backend{
		txRunner: s,
		repos: inventory.Repositories{
			SKUs:          s.SKUs(),
			Locations:     s.Locations(),
			Assets:        s.Assets(),
			MovementTypes: s.MovementTypes(),
			Movements:     s.Movements(),
			Balances:      s.Balances(),
		},
		approvals: s.Approvals(),
		actors:    s.Actors(),
		close:     func() {},
		memory:    s,
	}
}
