package models

import (
	"errors"
	"strings"

	goval "github.com/go-passwd/validator"
	"github.com/google/uuid"
	"github.com/leebenson/conform"
	"golang.org/x/crypto/bcrypt"
)

// User represents a user of the application
type User struct {
	Model
	Fullname       string    `json:"fullname" binding:"required,min=2" conform:"trim"`
	Username       string    `json:"username" gorm:"unique;not null" binding:"required,min=2" conform:"trim,lower"`
	Email          string    `json:"email" gorm:"unique;not null" binding:"required,email" conform:"trim,lower"`
	Password       string    `json:"password,omitempty" gorm:"-" validate:"omitempty,min=4"`
	HashedPassword string    `json:"-"`
	IsEmailActive  bool      `json:"-"`
	Online         bool      `json:"online"`
	DeviceToken    string    `json:"-"`
	ThumbNailURL   string    `json:"thumbnail_url,omitempty"`
	RoleID         uuid.UUID `gorm:"type:uuid" json:"role_id"`
	Role           Role      `gorm:"foreignKey:RoleID" json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	UserID      uint   `json:"user_id"`
	Username    string `json:"username"`
	Fullname    string `json:"fullname"`
	Email       string `json:"email"`
	AccessToken string `json:"access_token"`
}

// Blacklist holds revoked access tokens checked by the auth middleware.
type Blacklist struct {
	Model
	Email string `json:"email"`
	Token string `json:"token" gorm:"index"`
}

// Sanitize normalizes struct fields in place per the conform tags.
func (u *User) Sanitize() error {
	return conform.Strings(u)
}

// ValidatePassword enforces the password policy before hashing.
func (u *User) ValidatePassword() error {
	passwordValidator := goval.New(
		goval.MinLength(4, errors.New("password must be at least 4 characters")),
		goval.MaxLength(72, errors.New("password must be at most 72 characters")),
	)
	return passwordValidator.Validate(u.Password)
}

// HashPassword hashes the plain password into HashedPassword and clears it.
func (u *User) HashPassword() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.HashedPassword = string(hashed)
	u.Password = ""
	return nil
}

// VerifyPassword compares a plain password against the stored hash.
func (u *User) VerifyPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password))
}

func (u *User) DisplayName() string {
	if name := strings.TrimSpace(u.Fullname); name != "" {
		return name
	}
	return u.Username
}
