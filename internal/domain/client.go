package domain

import (
	"time"

	"github.com/google/uuid"
)

// Client owns one or more accounts. Accounts reference their client by id
// only; nothing in the ledger core needs the back-pointer.
type Client struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

func NewClient(name string) *Client {
	return &Client{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
}
