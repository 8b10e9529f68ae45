package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/smallbiznis/prodline/internal/clock"
	"github.com/smallbiznis/prodline/internal/handoff/domain"
	"go.uber.org/zap"
)

func newService(t *testing.T) domain.Service {
	t.Helper()
	return New(Params{
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(time.Date(2026, 4, 7, 8, 0, 0, 0, time.UTC)),
	})
}

func TestIssueAndConsumeOnce(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	token, err := svc.Issue(ctx, domain.IssueRequest{Product: "Matcha Cake", Quantity: 10})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token == "" {
		t.Fatal("empty token")
	}

	state, err := svc.Consume(ctx, token)
	if err != nil {
		t.Fatalf("consume: %v", err)
	}
	if state.Product != "Matcha Cake" || state.Quantity != 10 {
		t.Fatalf("unexpected state: %+v", state)
	}

	// Second redemption must miss.
	if _, err := svc.Consume(ctx, token); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestConsumeUnknownToken(t *testing.T) {
	svc := newService(t)

	if _, err := svc.Consume(context.Background(), "no-such-token"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestIssueValidation(t *testing.T) {
	svc := newService(t)

	if _, err := svc.Issue(context.Background(), domain.IssueRequest{Product: " ", Quantity: 0}); err == nil {
		t.Fatal("expected field errors")
	}
}

func TestTokensAreIndependent(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	a, _ := svc.Issue(ctx, domain.IssueRequest{Product: "A", Quantity: 1})
	b, _ := svc.Issue(ctx, domain.IssueRequest{Product: "B", Quantity: 2})

	stateB, err := svc.Consume(ctx, b)
	if err != nil {
		t.Fatalf("consume b: %v", err)
	}
	if stateB.Product != "B" {
		t.Fatalf("unexpected state: %+v", stateB)
	}

	stateA, err := svc.Consume(ctx, a)
	if err != nil {
		t.Fatalf("consume a: %v", err)
	}
	if stateA.Product != "A" {
		t.Fatalf("unexpected state: %+v", stateA)
	}
}
