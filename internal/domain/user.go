package domain

import "time"

type Role string

const (
	RoleBuyer  Role = "BUYER"
	RoleVendor Role = "VENDOR"
	RoleAdmin  Role = "ADMIN"
)

type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// CanSell reports whether the user may manage products and see sales.
func (u *User) CanSell() bool {
	return u.Role == RoleVendor || u.Role == RoleAdmin
}
