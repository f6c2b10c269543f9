package user

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleAdmin    = "Admin"
	RoleCustomer = "Customer"
)

type User struct {
	ID               string
	Name             string
	Email            string
	PasswordHash     string
	Phone            string
	Address          string
	AvatarURL        string
	Role             string
	FailedLoginCount int
	LockoutEnd       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// LockedAt reports whether the account is locked out at t.
func (u User) LockedAt(t time.Time) bool {
	return u.LockoutEnd != nil && u.LockoutEnd.After(t)
}

type Profile struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	AvatarURL string    `json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Roles     []string  `json:"roles"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Address:   u.Address,
		AvatarURL: u.AvatarURL,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		Roles:     []string{u.Role},
	}
}

type ProfileInput struct {
	Name      string `json:"name" validate:"required,max=200"`
	Phone     string `json:"phone" validate:"max=50"`
	Address   string `json:"address" validate:"max=500"`
	AvatarURL string `json:"avatarUrl" validate:"omitempty,max=500,url"`
}

type AvatarInput struct {
	AvatarURL string `json:"avatarUrl" validate:"omitempty,max=500,url"`
}

type Stats struct {
	TotalOrders        int             `json:"totalOrders"`
	TotalWishlistItems int             `json:"totalWishlistItems"`
	TotalCartItems     int             `json:"totalCartItems"`
	TotalReviews       int             `json:"totalReviews"`
	TotalSpent         decimal.Decimal `json:"totalSpent"`
}
