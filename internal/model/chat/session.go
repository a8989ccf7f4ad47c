package chat

import "time"

// Session identifies one mount of the chat surface. It is never persisted.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}
