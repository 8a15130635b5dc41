// ABOUTME: UserAltName entity, an alternate display name for a user
// ABOUTME: Maps to the user_alt_name table

package store

import (
	"github.com/google/uuid"

	"github.com/2389/gartrix/internal/database"
)

// UserAltName is an alternate display name owned by a user
type UserAltName struct {
	id       uuid.UUID
	User     uuid.UUID
	Nickname string
	Added    int64 // epoch value supplied by the caller
}

// NewUserAltName creates an alt name with a fresh id
func NewUserAltName(user uuid.UUID, nickname string, added int64) *UserAltName {
	return &UserAltName{
		id:       uuid.New(),
		User:     user,
		Nickname: nickname,
		Added:    added,
	}
}

func (a *UserAltName) TableName() string { return "user_alt_name" }

func (a *UserAltName) ID() uuid.UUID { return a.id }

func (a *UserAltName) Columns() []string {
	return []string{"user", "nickname", "added"}
}

func (a *UserAltName) Values() []any {
	return []any{a.User.String(), a.Nickname, a.Added}
}

func (a *UserAltName) Scan(row database.Row) error {
	id, err := row.UUID(0)
	if err != nil {
		return err
	}
	user, err := row.UUID(1)
	if err != nil {
		return err
	}
	nickname, err := row.String(2)
	if err != nil {
		return err
	}
	added, err := row.Int64(3)
	if err != nil {
		return err
	}

	*a = UserAltName{id: id, User: user, Nickname: nickname, Added: added}
	return nil
}

var _ Entity = (*UserAltName)(nil)
