package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	handoffdomain "github.com/smallbiznis/prodline/internal/handoff/domain"
)

type fakeHandoffService struct {
	states map[string]handoffdomain.State
}

func (f *fakeHandoffService) Issue(ctx context.Context, req handoffdomain.IssueRequest) (string, error) {
	_ = ctx
	if f.states == nil {
		f.states = map[string]handoffdomain.State{}
	}
	f.states["tok-1"] = handoffdomain.State{Product: req.Product, Quantity: req.Quantity}
	return "tok-1", nil
}

func (f *fakeHandoffService) Consume(ctx context.Context, token string) (*handoffdomain.State, error) {
	_ = ctx
	state, ok := f.states[token]
	if !ok {
		return nil, handoffdomain.ErrNotFound
	}
	delete(f.states, token)
	return &state, nil
}

func TestHandoffConsumeTwiceReturns404(t *testing.T) {
	gin.SetMode(gin.TestMode)

	srv := &Server{handoffSvc: &fakeHandoffService{}}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.POST("/api/handoff", srv.IssueHandoff)
	router.POST("/api/handoff/:token/consume", srv.ConsumeHandoff)

	issue := httptest.NewRequest(http.MethodPost, "/api/handoff", bytes.NewBufferString(`{"product":"Matcha Cake","quantity":5}`))
	issue.Header.Set("Content-Type", "application/json")
	issueResp := httptest.NewRecorder()
	router.ServeHTTP(issueResp, issue)
	if issueResp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", issueResp.Code)
	}

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/handoff/tok-1/consume", nil))
	if first.Code != http.StatusOK {
		t.Fatalf("expected status 200 on first consume, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/handoff/tok-1/consume", nil))
	if second.Code != http.StatusNotFound {
		t.Fatalf("expected status 404 on second consume, got %d", second.Code)
	}
}
