package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	materialdomain "github.com/smallbiznis/prodline/internal/material/domain"
	"github.com/smallbiznis/prodline/internal/workflow"
)

type fakeMaterialService struct {
	created   *materialdomain.CreateRequest
	getErr    error
	deleteIDs []string
}

func (f *fakeMaterialService) List(ctx context.Context, req materialdomain.ListRequest) ([]materialdomain.Material, error) {
	_ = ctx
	_ = req
	return []materialdomain.Material{}, nil
}

func (f *fakeMaterialService) Get(ctx context.Context, id string) (*materialdomain.Material, error) {
	_ = ctx
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &materialdomain.Material{ID: id, Code: "RM-001", Name: "Cake Flour"}, nil
}

func (f *fakeMaterialService) Create(ctx context.Context, req materialdomain.CreateRequest) (*materialdomain.Material, error) {
	_ = ctx
	if strings.TrimSpace(req.Name) == "" {
		errs := &workflow.FieldErrors{}
		errs.Add("name", "required", "name is required")
		return nil, errs
	}
	f.created = &req
	return &materialdomain.Material{ID: "1", Code: req.Code, Name: req.Name}, nil
}

func (f *fakeMaterialService) Update(ctx context.Context, id string, req materialdomain.UpdateRequest) (*materialdomain.Material, error) {
	_ = ctx
	_ = req
	return &materialdomain.Material{ID: id}, nil
}

func (f *fakeMaterialService) Delete(ctx context.Context, id string) error {
	_ = ctx
	f.deleteIDs = append(f.deleteIDs, id)
	return nil
}

func (f *fakeMaterialService) LowStock(ctx context.Context) ([]materialdomain.LowStockItem, error) {
	_ = ctx
	return []materialdomain.LowStockItem{}, nil
}

func (f *fakeMaterialService) ExportCSV(ctx context.Context, req materialdomain.ListRequest) ([]byte, error) {
	_ = ctx
	_ = req
	return []byte("\"id\",\"code\",\"name\",\"category\",\"qty\",\"unit\",\"min_qty\",\"note\",\"created_at\"\n"), nil
}

func newMaterialRouter(svc materialdomain.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)

	srv := &Server{materialSvc: svc}

	router := gin.New()
	router.Use(ErrorHandlingMiddleware())
	router.GET("/api/materials/:id", srv.GetMaterial)
	router.POST("/api/materials", srv.CreateMaterial)
	router.DELETE("/api/materials/:id", srv.DeleteMaterial)
	router.GET("/api/materials-export", srv.ExportMaterialsCSV)
	return router
}

func TestCreateMaterialReturnsData(t *testing.T) {
	svc := &fakeMaterialService{}
	router := newMaterialRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/materials", bytes.NewBufferString(`{"code":"RM-001","name":"Cake Flour","qty":10,"min_qty":5}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if svc.created == nil {
		t.Fatal("expected create to reach the service")
	}

	var body struct {
		Data materialdomain.Material `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Data.Code != "RM-001" {
		t.Fatalf("expected code RM-001, got %q", body.Data.Code)
	}
}

func TestCreateMaterialValidationFailureReturns400(t *testing.T) {
	router := newMaterialRouter(&fakeMaterialService{})

	req := httptest.NewRequest(http.MethodPost, "/api/materials", bytes.NewBufferString(`{"code":"RM-001"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", resp.Code)
	}

	var body struct {
		Error struct {
			Type   string `json:"type"`
			Errors []struct {
				Field string `json:"field"`
			} `json:"errors"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Error.Type != "validation_error" {
		t.Fatalf("expected validation_error, got %q", body.Error.Type)
	}
	if len(body.Error.Errors) != 1 || body.Error.Errors[0].Field != "name" {
		t.Fatalf("expected one error on name, got %+v", body.Error.Errors)
	}
}

func TestGetMaterialNotFoundReturns404(t *testing.T) {
	router := newMaterialRouter(&fakeMaterialService{getErr: materialdomain.ErrNotFound})

	req := httptest.NewRequest(http.MethodGet, "/api/materials/99", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", resp.Code)
	}
}

func TestDeleteMaterialPassesID(t *testing.T) {
	svc := &fakeMaterialService{}
	router := newMaterialRouter(svc)

	req := httptest.NewRequest(http.MethodDelete, "/api/materials/42", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if len(svc.deleteIDs) != 1 || svc.deleteIDs[0] != "42" {
		t.Fatalf("expected delete of 42, got %v", svc.deleteIDs)
	}
}

func TestExportMaterialsCSVSetsHeaders(t *testing.T) {
	router := newMaterialRouter(&fakeMaterialService{})

	req := httptest.NewRequest(http.MethodGet, "/api/materials-export", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", resp.Code)
	}
	if ct := resp.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("expected text/csv content type, got %q", ct)
	}
	if cd := resp.Header().Get("Content-Disposition"); !strings.Contains(cd, "materials.csv") {
		t.Fatalf("expected attachment disposition, got %q", cd)
	}
	if !strings.HasPrefix(resp.Body.String(), "\"id\",\"code\"") {
		t.Fatalf("unexpected body %q", resp.Body.String())
	}
}
