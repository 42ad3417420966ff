package entity

import "time"

// StockBalance representa el saldo actual de un SKU en una ubicación.
// Se crea con el primer movimiento que toca el par (upsert) y nunca se elimina.
type StockBalance struct {
	SKUID      string
	LocationID string
	Quantity   int64 // nunca negativo
	UpdatedAt  time.Time
}

// BalanceKey identifica una fila de saldo.
type BalanceKey struct {
	SKUID      string
	LocationID string
}

// Key devuelve la clave (sku, ubicación) del saldo.
func (b *StockBalance) Key() BalanceKey {
	return BalanceKey{SKUID: b.SKUID, LocationID: b.LocationID}
}
