package models

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCustomer
}

type User struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid"`
	Name         string    `json:"name" gorm:"not null"`
	Email        string    `json:"email" gorm:"uniqueIndex;not null"`
	PasswordHash string    `json:"passwordHash" gorm:"not null"`
	Role         Role      `json:"role" gorm:"not null"`
	CreatedAt    time.Time `json:"createdAt" gorm:"not null;index"`
}

// PublicUser is the view of a User that is safe to send to clients.
type PublicUser struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

type NewUser struct {
	Name     string
	Email    string
	Password string
	Role     Role
}
