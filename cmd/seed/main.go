// seed carga el catálogo (SKUs, ubicaciones, activos, actores y tipos de movimiento)
// en PostgreSQL y emite PINs para los actores marcados con issue_pin.
//
// Uso: go run ./cmd/seed [ruta/catalog.yaml]
// Por defecto lee config/catalog.yaml. Los PINs emitidos se imprimen una sola vez.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/inventory-ledger/internal/application/auth"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/audit"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventory-ledger/pkg/config"
	"github.com/jhoicas/inventory-ledger/pkg/logger"
)

func main() {
	path := "config/catalog.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel, Service: cfg.App.Name + "-seed", Out: os.Stderr})

	catalog, pinFor, err := loadCatalog(path)
	if err != nil {
		log.Fatal().Err(err).Str("file", path).Msg("catálogo")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.DB, cfg.App.Name+"-seed")
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a PostgreSQL")
	}
	defer pool.Close()

	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("esquema")
	}
	if err := postgres.SeedMovementTypes(ctx, pool, cfg.Ledger.EntryTypeName, cfg.Ledger.ReversalTypeName); err != nil {
		log.Fatal().Err(err).Msg("tipos de movimiento por defecto")
	}
	if err := postgres.SeedCatalog(ctx, pool, catalog); err != nil {
		log.Fatal().Err(err).Msg("cargar catálogo")
	}
	log.Info().
		Int("skus", len(catalog.SKUs)).
		Int("locations", len(catalog.Locations)).
		Int("assets", len(catalog.Assets)).
		Int("actors", len(catalog.Actors)).
		Int("movement_types", len(catalog.MovementTypes)).
		Msg("catálogo cargado")

	pins := auth.NewPINService(postgres.NewActorRepository(pool), audit.NewLogSink(log.Component("audit")), cfg.Ledger.PINCost, nil)
	for _, id := range pinFor {
		pin, err := pins.IssuePIN(ctx, "seed", id)
		if err != nil {
			log.Error().Err(err).Str("actor_id", id).Msg("emitir PIN")
			continue
		}
		fmt.Printf("%s\t%s\n", id, pin)
	}
}
