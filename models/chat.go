package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Message is one persisted question/answer turn.
type Message struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID     string             `bson:"session_id" json:"session_id"`
	Vendor        string             `bson:"vendor" json:"vendor"`
	Role          string             `bson:"role,omitempty" json:"role,omitempty"` // user's project role, e.g. "driftsleder"
	Question      string             `bson:"question" json:"question"`
	Answer        string             `bson:"answer" json:"answer"`
	Sources       []string           `bson:"sources,omitempty" json:"sources,omitempty"`
	UsedRetrieval bool               `bson:"used_retrieval" json:"used_retrieval"`
	LatencyMs     int64              `bson:"latency_ms" json:"latency_ms"`
	Timestamp     time.Time          `bson:"timestamp" json:"timestamp"`
}

type AskRequest struct {
	Question  string `json:"question" binding:"required,min=1,max=2000"`
	Role      string `json:"role,omitempty"`
	Vendor    string `json:"vendor" binding:"required"`
	SessionID string `json:"session_id,omitempty"`
}

type AskResponse struct {
	Answer        string    `json:"answer"`
	Sources       []string  `json:"sources"`
	SessionID     string    `json:"session_id"`
	UsedRetrieval bool      `json:"used_retrieval"`
	LatencyMs     int64     `json:"latency_ms"`
	Timestamp     time.Time `json:"timestamp"`
}

type RetrieveRequest struct {
	Query     string `json:"query" binding:"required,min=1,max=2000"`
	Vendor    string `json:"vendor" binding:"required"`
	SessionID string `json:"session_id,omitempty"`
}

// ConversationHistory is the transcript of one session.
type ConversationHistory struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
}
