package models

import "time"

type Address struct {
	Street      string `json:"street"`
	Ward        string `json:"ward"`
	District    string `json:"district"`
	City        string `json:"city"`
	FullAddress string `json:"fullAddress"`
}

// User is the storefront profile of the signed-in customer.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Phone     string    `json:"phone,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	Address   *Address  `json:"address,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"fullName" binding:"required"`
	Phone    string `json:"phone,omitempty"`
}

// ProfileUpdate carries only the fields being changed.
type ProfileUpdate struct {
	FullName *string  `json:"fullName,omitempty"`
	Phone    *string  `json:"phone,omitempty"`
	Avatar   *string  `json:"avatar,omitempty"`
	Address  *Address `json:"address,omitempty"`
}

// TokenPair is the credential pair issued by login, register and refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// AuthResult is the payload of login and register.
type AuthResult struct {
	User   User      `json:"user"`
	Tokens TokenPair `json:"tokens"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}
