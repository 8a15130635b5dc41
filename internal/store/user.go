// ABOUTME: User entity with bcrypt password hashing
// ABOUTME: Maps to the users table

package store

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/2389/gartrix/internal/database"
)

// ErrEmptyPassword is returned when setting an empty password
var ErrEmptyPassword = errors.New("password is empty")

// User is an account. Password holds a bcrypt hash, never the plain text.
type User struct {
	id       uuid.UUID
	Username string
	password string
}

// NewUser creates a user with a fresh id and the given password hashed
func NewUser(username, password string) (*User, error) {
	u := &User{id: uuid.New(), Username: username}
	if err := u.SetPassword(password); err != nil {
		return nil, err
	}
	return u, nil
}

// SetPassword replaces the stored hash with a hash of password
func (u *User) SetPassword(password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	u.password = string(hash)
	return nil
}

// CheckPassword reports whether password matches the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.password), []byte(password)) == nil
}

// PasswordHash returns the stored bcrypt hash
func (u *User) PasswordHash() string { return u.password }

func (u *User) TableName() string { return "users" }

func (u *User) ID() uuid.UUID { return u.id }

func (u *User) Columns() []string { return []string{"username", "password"} }

func (u *User) Values() []any { return []any{u.Username, u.password} }

func (u *User) Scan(row database.Row) error {
	id, err := row.UUID(0)
	if err != nil {
		return err
	}
	username, err := row.String(1)
	if err != nil {
		return err
	}
	password, err := row.String(2)
	if err != nil {
		return err
	}

	*u = User{id: id, Username: username, password: password}
	return nil
}

var _ Entity = (*User)(nil)
