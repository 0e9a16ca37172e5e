package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin    = "admin"
	RoleStaff    = "staff"
	RoleMember   = "member"   // productor
	RoleCustomer = "customer" // cliente
	RoleLogistic = "logistic" // reparto
)

// IsValidRole indica si role es uno de los roles del sistema.
func IsValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleStaff, RoleMember, RoleCustomer, RoleLogistic:
		return true
	}
	return false
}

// Estados de usuario.
const (
	UserStatusActive    = "active"
	UserStatusSuspended = "suspended"
)

// User representa un usuario del sistema.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string
	Status       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Producer entrada del directorio de productores (miembros), usada en reportes.
type Producer struct {
	ID    string
	Name  string
	Email string
}
