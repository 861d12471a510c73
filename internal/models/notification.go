package models

import "time"

// Notification is a queued message for a user. Delivery is out of scope:
// rows are only enqueued and listed, never pushed anywhere.
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
