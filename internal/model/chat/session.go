package chat

import "time"

// Session captures one assistant conversation on the server side.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}
