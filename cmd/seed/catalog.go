package main

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/jhoicas/inventory-ledger/internal/infrastructure/postgres"
	"github.com/spf13/viper"
)

// catalogFile estructura del archivo de catálogo (YAML, JSON o TOML según la extensión).
type catalogFile struct {
	SKUs []struct {
		ID   string `mapstructure:"id"`
		Code string `mapstructure:"code"`
		Name string `mapstructure:"name"`
	} `mapstructure:"skus"`
	Locations []struct {
		ID     string `mapstructure:"id"`
		Name   string `mapstructure:"name"`
		Active *bool  `mapstructure:"active"`
	} `mapstructure:"locations"`
	Assets []struct {
		ID     string `mapstructure:"id"`
		SKUID  string `mapstructure:"sku_id"`
		Serial string `mapstructure:"serial"`
	} `mapstructure:"assets"`
	Actors []struct {
		ID       string `mapstructure:"id"`
		Name     string `mapstructure:"name"`
		Role     string `mapstructure:"role"`
		Inactive bool   `mapstructure:"inactive"`
		IssuePIN bool   `mapstructure:"issue_pin"`
	} `mapstructure:"actors"`
	MovementTypes []struct {
		Name             string `mapstructure:"name"`
		RequiresApproval bool   `mapstructure:"requires_approval"`
		IsFinalWriteOff  bool   `mapstructure:"is_final_write_off"`
		SetsAssetStatus  string `mapstructure:"sets_asset_status"`
	} `mapstructure:"movement_types"`
}

// loadCatalog lee y valida el archivo. Devuelve el catálogo y los actores que deben recibir PIN.
func loadCatalog(path string) (postgres.Catalog, []string, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return postgres.Catalog{}, nil, fmt.Errorf("leer %s: %w", path, err)
	}
	var f catalogFile
	if err := v.Unmarshal(&f); err != nil {
		return postgres.Catalog{}, nil, fmt.Errorf("interpretar %s: %w", path, err)
	}
	return f.toCatalog()
}

func (f *catalogFile) toCatalog() (postgres.Catalog, []string, error) {
	var (
		c       postgres.Catalog
		pinFor  []string
		skus    = map[string]bool{}
		invalid []string
	)
	for _, s := range f.SKUs {
		if s.ID == "" || s.Code == "" {
			invalid = append(invalid, "sku sin id o code")
			continue
		}
		skus[s.ID] = true
		c.SKUs = append(c.SKUs, entity.SKU{ID: s.ID, Code: s.Code, Name: s.Name})
	}
	for _, l := range f.Locations {
		if l.ID == "" {
			invalid = append(invalid, "ubicación sin id")
			continue
		}
		active := l.Active == nil || *l.Active
		c.Locations = append(c.Locations, entity.Location{ID: l.ID, Name: l.Name, Active: active})
	}
	for _, a := range f.Assets {
		if a.ID == "" || !skus[a.SKUID] {
			invalid = append(invalid, fmt.Sprintf("activo %q con SKU desconocido %q", a.ID, a.SKUID))
			continue
		}
		c.Assets = append(c.Assets, entity.Asset{ID: a.ID, SKUID: a.SKUID, Serial: a.Serial, Status: entity.AssetStatusRegistered})
	}
	for _, a := range f.Actors {
		switch a.Role {
		case entity.RoleAdmin, entity.RoleSupervisor, entity.RoleBodeguero:
		default:
			invalid = append(invalid, fmt.Sprintf("actor %q con rol %q", a.ID, a.Role))
			continue
		}
		status := "active"
		if a.Inactive {
			status = "inactive"
		}
		c.Actors = append(c.Actors, entity.Actor{ID: a.ID, Name: a.Name, Role: a.Role, Status: status})
		if a.IssuePIN && !a.Inactive {
			pinFor = append(pinFor, a.ID)
		}
	}
	for _, mt := range f.MovementTypes {
		if strings.TrimSpace(mt.Name) == "" {
			invalid = append(invalid, "tipo de movimiento sin nombre")
			continue
		}
		c.MovementTypes = append(c.MovementTypes, entity.MovementType{
			ID:               uuid.New().String(),
			Name:             strings.TrimSpace(mt.Name),
			RequiresApproval: mt.RequiresApproval,
			IsFinalWriteOff:  mt.IsFinalWriteOff,
			SetsAssetStatus:  mt.SetsAssetStatus,
		})
	}
	if len(invalid) > 0 {
		return postgres.Catalog{}, nil, fmt.Errorf("catálogo inválido: %s", strings.Join(invalid, "; "))
	}
	return c, pinFor, nil
}
