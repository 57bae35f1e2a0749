package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin       = "admin"
	RoleStoreKeeper = "storekeeper" // almacenista: colocaciones y traslados
	RoleCashier     = "cashier"     // cajero: ventas en sus tiendas
)

// User usuario del sistema. ShopIDs limita las tiendas en las que puede operar (vacío = todas).
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt
	Name         string
	Role         string
	Status       string // active, inactive
	ShopIDs      []string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CanOperateShop indica si el usuario puede operar en la tienda indicada.
func (u *User) CanOperateShop(shopID string) bool {
	if u.Role == RoleAdmin || len(u.ShopIDs) == 0 {
		return true
	}
	for _, id := range u.ShopIDs {
		if id == shopID {
			return true
		}
	}
	return false
}
