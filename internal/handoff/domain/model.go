package domain

import (
	"context"
	"errors"
	"time"
)

// State is the payload one page hands to the next. It lives in memory
// only and is never persisted.
type State struct {
	Product  string    `json:"product"`
	Quantity float64   `json:"quantity"`
	IssuedAt time.Time `json:"issued_at"`
}

type Service interface {
	Issue(ctx context.Context, req IssueRequest) (string, error)
	// Consume redeems a token exactly once. A second redemption or an
	// unknown token returns ErrNotFound.
	Consume(ctx context.Context, token string) (*State, error)
}

type IssueRequest struct {
	Product  string  `json:"product"`
	Quantity float64 `json:"quantity"`
}

var ErrNotFound = errors.New("handoff_not_found")
