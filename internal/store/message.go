// ABOUTME: Message entity, a markdown message posted by a user
// ABOUTME: Maps to the messages table and renders its body to HTML with goldmark

package store

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"

	"github.com/2389/gartrix/internal/database"
)

// Message is a message posted by a user. Date is kept in UTC.
type Message struct {
	id   uuid.UUID
	User uuid.UUID
	Body string
	Date time.Time
}

// NewMessage creates a message with a fresh id
func NewMessage(user uuid.UUID, body string, date time.Time) *Message {
	return &Message{id: uuid.New(), User: user, Body: body, Date: date.UTC()}
}

// RenderHTML renders the markdown body. Raw HTML in the body is not passed through.
func (m *Message) RenderHTML() (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(m.Body), &buf); err != nil {
		return "", fmt.Errorf("rendering message %s: %w", m.id, err)
	}
	return buf.String(), nil
}

func (m *Message) TableName() string { return "messages" }

func (m *Message) ID() uuid.UUID { return m.id }

func (m *Message) Columns() []string { return []string{"user", "message", "date"} }

func (m *Message) Values() []any {
	return []any{m.User.String(), m.Body, m.Date.UTC().Format(time.RFC3339Nano)}
}

func (m *Message) Scan(row database.Row) error {
	id, err := row.UUID(0)
	if err != nil {
		return err
	}
	user, err := row.UUID(1)
	if err != nil {
		return err
	}
	body, err := row.String(2)
	if err != nil {
		return err
	}
	date, err := row.Time(3)
	if err != nil {
		return err
	}

	*m = Message{id: id, User: user, Body: body, Date: date}
	return nil
}

var _ Entity = (*Message)(nil)
