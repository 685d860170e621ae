package user

import "time"

type User struct {
	ID           string     `json:"id" db:"user_id"`
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	Role         string     `json:"role" db:"role"`
	PasswordHash []byte     `json:"-" db:"password_hash"`
	PhotoURL     string     `json:"photoUrl" db:"photo_url"`
	BirthDate    *time.Time `json:"birthDate,omitempty" db:"birth_date"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time  `json:"updatedAt" db:"updated_at"`
}

type UserSignup struct {
	Name            string `json:"name" validate:"required,min=2,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"passwordConfirm" validate:"eqfield=Password"`
}

// UserNew creates a user with an explicit role, from the admin tool.
type UserNew struct {
	Name     string `validate:"required,min=2,max=100"`
	Email    string `validate:"required,email"`
	Role     string `validate:"required,oneof=ADMIN USER"`
	Password string `validate:"required,min=8,max=72"`
}

type UserUp struct {
	Name      *string    `json:"name" validate:"omitempty,min=2,max=100"`
	PhotoURL  *string    `json:"photoUrl" validate:"omitempty,url"`
	BirthDate *time.Time `json:"birthDate"`
}

type PasswordChange struct {
	Current         string `json:"current" validate:"required"`
	Password        string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirm string `json:"passwordConfirm" validate:"eqfield=Password"`
}

type Credentials struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
