package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/jhoicas/inventory-ledger/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadCatalog_YAML(t *testing.T) {
	path := writeFile(t, "catalog.yaml", `
skus:
  - {id: sku-1, code: TAL-001, name: Taladro}
locations:
  - {id: loc-a, name: Bodega A}
  - {id: loc-old, name: Bodega cerrada, active: false}
assets:
  - {id: as-1, sku_id: sku-1, serial: SN-1}
actors:
  - {id: sup-1, name: Supervisora, role: supervisor, issue_pin: true}
  - {id: op-9, name: Retirado, role: bodeguero, inactive: true, issue_pin: true}
movement_types:
  - {name: "Saída Especial", requires_approval: true}
  - {name: Baixa, is_final_write_off: true, sets_asset_status: WRITTEN_OFF}
`)
	c, pinFor, err := loadCatalog(path)
	require.NoError(t, err)

	require.Len(t, c.SKUs, 1)
	require.Len(t, c.Locations, 2)
	assert.True(t, c.Locations[0].Active, "active por defecto")
	assert.False(t, c.Locations[1].Active)
	require.Len(t, c.Assets, 1)
	assert.Equal(t, entity.AssetStatusRegistered, c.Assets[0].Status)
	require.Len(t, c.Actors, 2)
	assert.Equal(t, "inactive", c.Actors[1].Status)
	assert.Equal(t, []string{"sup-1"}, pinFor, "los inactivos no reciben PIN")
	require.Len(t, c.MovementTypes, 2)
	assert.True(t, c.MovementTypes[0].RequiresApproval)
	assert.NotEmpty(t, c.MovementTypes[0].ID)
}

func TestLoadCatalog_Invalid(t *testing.T) {
	path := writeFile(t, "catalog.yaml", `
skus:
  - {id: sku-1, code: TAL-001}
assets:
  - {id: as-1, sku_id: sku-x, serial: SN-1}
actors:
  - {id: a-1, role: gerente}
`)
	_, _, err := loadCatalog(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sku-x")
	assert.Contains(t, err.Error(), "gerente")

	_, _, err = loadCatalog(filepath.Join(t.TempDir(), "no-existe.yaml"))
	assert.Error(t, err)
}
