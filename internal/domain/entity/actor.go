package entity

import "time"

// Roles válidos para Actor.
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleBodeguero  = "bodeguero"
)

// Actor representa a quien opera el inventario. El PIN solo se guarda como hash bcrypt.
type Actor struct {
	ID        string
	Name      string
	Role      string
	PINHash   string
	Status    string // active, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}
