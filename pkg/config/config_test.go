package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	cfg, err := fromViper(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "Entrada", cfg.Ledger.EntryTypeName)
	assert.Equal(t, "Estorno", cfg.Ledger.ReversalTypeName)
	assert.False(t, cfg.Ledger.AllowSelfApproval)
	assert.Equal(t, 5*time.Second, cfg.DB.LockTimeout())
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr())
	assert.Equal(t, "postgres://postgres:@localhost:5432/inventory_ledger?sslmode=disable", cfg.DB.ConnectionString())
}

func TestFromViper_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("STORE_DRIVER", "MEMORY")
	v.Set("LEDGER_ALLOW_SELF_APPROVAL", "true")
	v.Set("DB_LOCK_TIMEOUT_MS", "250")
	v.Set("DATABASE_URL", "postgres://u:p@db:5432/x")
	v.Set("REDIS_ADDR", "redis:6379")

	cfg, err := fromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.True(t, cfg.Ledger.AllowSelfApproval)
	assert.Equal(t, 250*time.Millisecond, cfg.DB.LockTimeout())
	assert.Equal(t, "postgres://u:p@db:5432/x", cfg.DB.ConnectionString())
	assert.Equal(t, "redis:6379", cfg.Audit.RedisAddr)
}

func TestFromViper_RejectsUnknownDriver(t *testing.T) {
	v := viper.New()
	v.Set("STORE_DRIVER", "mongo")
	_, err := fromViper(v)
	require.Error(t, err)
}

func TestDSN_EscapesPassword(t *testing.T) {
	c := DBConfig{User: "app", Password: "p@ss:word", Host: "db", Port: 5432, DBName: "ledger", SSLMode: "require"}
	assert.Equal(t, "postgres://app:p%40ss%3Aword@db:5432/ledger?sslmode=require", c.DSN())
}
