package entity

import "time"

// Estados de activo serializado.
const (
	AssetStatusRegistered = "REGISTERED" // dado de alta en catálogo, sin entrada aún
	AssetStatusInStock    = "IN_STOCK"
	AssetStatusIssued     = "ISSUED"
	AssetStatusWrittenOff = "WRITTEN_OFF"
)

// SKU definición de catálogo compartida por todas las unidades del producto.
type SKU struct {
	ID        string
	Code      string
	Name      string
	CreatedAt time.Time
}

// Location ubicación física (bodega, estante). Solo las activas reciben movimientos.
type Location struct {
	ID        string
	Name      string
	Active    bool
	CreatedAt time.Time
}

// Asset unidad física con seguimiento individual de un SKU.
type Asset struct {
	ID        string
	SKUID     string
	Serial    string
	Status    string
	UpdatedAt time.Time
}
