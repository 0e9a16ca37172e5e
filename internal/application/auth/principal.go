package auth

import "github.com/jhoicas/Agromercado-api/internal/domain/entity"

// Principal identidad del request autenticado. La arma el middleware HTTP a partir del JWT
// y se pasa explícitamente a los casos de uso.
type Principal struct {
	UserID string
	Role   string
}

// HasRole indica si el principal tiene alguno de los roles dados.
func (p Principal) HasRole(roles ...string) bool {
	for _, r := range roles {
		if p.Role == r {
			return true
		}
	}
	return false
}

// IsBackoffice admin o staff.
func (p Principal) IsBackoffice() bool {
	return p.HasRole(entity.RoleAdmin, entity.RoleStaff)
}
