package models

import "time"

type Sender string

const (
	SenderUser Sender = "user"
	SenderAI   Sender = "ai"
)

type ChatMessage struct {
	ID        int64     `json:"id" db:"id"`
	Text      string    `json:"text" db:"text"`
	Sender    Sender    `json:"sender" db:"sender"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type QueryRequest struct {
	Query string `json:"query"`
}

type QueryResponse struct {
	Response       string `json:"response"`
	ResponseTimeMS int64  `json:"response_time_ms"`
}
