package service

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/smallbiznis/prodline/internal/clock"
	"github.com/smallbiznis/prodline/internal/handoff/domain"
	"github.com/smallbiznis/prodline/internal/workflow"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log   *zap.Logger
	Clock clock.Clock
}

type Service struct {
	log   *zap.Logger
	clock clock.Clock

	mu     sync.Mutex
	states map[string]domain.State
}

func New(p Params) domain.Service {
	return &Service{
		log:    p.Log.Named("handoff.service"),
		clock:  p.Clock,
		states: map[string]domain.State{},
	}
}

func (s *Service) Issue(ctx context.Context, req domain.IssueRequest) (string, error) {
	errs := &workflow.FieldErrors{}
	if strings.TrimSpace(req.Product) == "" {
		errs.Add("product", "required", "product is required")
	}
	if req.Quantity <= 0 {
		errs.Add("quantity", "not_positive", "quantity must be greater than zero")
	}
	if !errs.Empty() {
		return "", errs
	}

	token := uuid.NewString()
	s.mu.Lock()
	s.states[token] = domain.State{
		Product:  strings.TrimSpace(req.Product),
		Quantity: req.Quantity,
		IssuedAt: s.clock.Now(),
	}
	s.mu.Unlock()

	return token, nil
}

func (s *Service) Consume(ctx context.Context, token string) (*domain.State, error) {
	token = strings.TrimSpace(token)

	s.mu.Lock()
	state, ok := s.states[token]
	if ok {
		delete(s.states, token)
	}
	s.mu.Unlock()

	if !ok {
		return nil, domain.ErrNotFound
	}
	return &state, nil
}
