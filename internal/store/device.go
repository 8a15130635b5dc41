// ABOUTME: Device entity, a device registered to a user
// ABOUTME: Maps to the devices table

package store

import (
	"github.com/google/uuid"

	"github.com/2389/gartrix/internal/database"
)

// Device is a device registered to a user
type Device struct {
	id   uuid.UUID
	User uuid.UUID
	Name string
}

// NewDevice creates a device with a fresh id
func NewDevice(user uuid.UUID, name string) *Device {
	return &Device{id: uuid.New(), User: user, Name: name}
}

func (d *Device) TableName() string { return "devices" }

func (d *Device) ID() uuid.UUID { return d.id }

func (d *Device) Columns() []string { return []string{"user", "name"} }

func (d *Device) Values() []any { return []any{d.User.String(), d.Name} }

func (d *Device) Scan(row database.Row) error {
	id, err := row.UUID(0)
	if err != nil {
		return err
	}
	user, err := row.UUID(1)
	if err != nil {
		return err
	}
	name, err := row.String(2)
	if err != nil {
		return err
	}

	*d = Device{id: id, User: user, Name: name}
	return nil
}

var _ Entity = (*Device)(nil)
