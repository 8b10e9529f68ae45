package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/prodline/internal/clock"
	"github.com/smallbiznis/prodline/internal/production/domain"
	recipedomain "github.com/smallbiznis/prodline/internal/recipe/domain"
	slotdomain "github.com/smallbiznis/prodline/internal/slot/domain"
	slotrepo "github.com/smallbiznis/prodline/internal/slot/repository"
	"github.com/smallbiznis/prodline/internal/workflow"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// recipeStub answers Get from a fixed recipe set.
type recipeStub struct {
	recipes map[string]recipedomain.Recipe
}

func (s *recipeStub) List(ctx context.Context) ([]recipedomain.Recipe, error) {
	return nil, nil
}

func (s *recipeStub) Get(ctx context.Context, name string) (*recipedomain.Recipe, error) {
	if r, ok := s.recipes[workflow.NormalizeKey(name)]; ok {
		return &r, nil
	}
	return nil, recipedomain.ErrNotFound
}

func (s *recipeStub) Save(ctx context.Context, req recipedomain.SaveRequest) (*recipedomain.Recipe, error) {
	return nil, nil
}

func (s *recipeStub) Delete(ctx context.Context, name string) error {
	return nil
}

var dbSeq int

func newService(t *testing.T, recipes *recipeStub) domain.Service {
	t.Helper()
	dbSeq++
	gdb, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:prodtest%d?mode=memory&cache=shared", dbSeq)), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := gdb.AutoMigrate(&slotdomain.Slot{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	node, err := snowflake.NewNode(2)
	if err != nil {
		t.Fatalf("snowflake: %v", err)
	}
	if recipes == nil {
		recipes = &recipeStub{}
	}

	return New(Params{
		DB:      gdb,
		Log:     zap.NewNop(),
		GenID:   node,
		Slots:   slotrepo.Provide(),
		Clock:   clock.NewFakeClock(time.Date(2026, 4, 7, 8, 0, 0, 0, time.UTC)),
		Recipes: recipes,
	})
}

func mustCreateOrder(t *testing.T, svc domain.Service, name string, qty float64) *domain.Order {
	t.Helper()
	order, err := svc.Create(context.Background(), domain.CreateRequest{
		ProductName: name,
		Qty:         qty,
		StartDate:   "2026-04-08",
		DueDate:     "2026-04-20",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	return order
}

func TestCreateOrderNumberFormat(t *testing.T) {
	svc := newService(t, nil)
	order := mustCreateOrder(t, svc, "Matcha Cake", 10)

	// Clock is pinned to 2026-04-07.
	if ok, _ := regexp.MatchString(`^PO260407-\d{4}$`, order.OrderNo); !ok {
		t.Fatalf("unexpected order number %q", order.OrderNo)
	}
	if order.Status != domain.StatusInProgress {
		t.Fatalf("new order must start in_progress, got %s", order.Status)
	}
}

func TestCreateOrderPrepends(t *testing.T) {
	svc := newService(t, nil)
	mustCreateOrder(t, svc, "First", 1)
	second := mustCreateOrder(t, svc, "Second", 2)

	items, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 || items[0].OrderNo != second.OrderNo {
		t.Fatalf("expected newest order first, got %v", items)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	svc := newService(t, nil)

	_, err := svc.Create(context.Background(), domain.CreateRequest{ProductName: " ", Qty: 0})
	var fieldErrs *workflow.FieldErrors
	if !errors.As(err, &fieldErrs) {
		t.Fatalf("expected field errors, got %v", err)
	}
	fields := fieldErrs.Fields()
	if _, ok := fields["product_name"]; !ok {
		t.Fatalf("missing product_name error: %v", fields)
	}
	if _, ok := fields["qty"]; !ok {
		t.Fatalf("missing qty error: %v", fields)
	}
}

func TestUpdateStatus(t *testing.T) {
	svc := newService(t, nil)
	order := mustCreateOrder(t, svc, "Matcha Cake", 10)

	updated, err := svc.UpdateStatus(context.Background(), order.OrderNo, domain.StatusCompleted)
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != domain.StatusCompleted {
		t.Fatalf("status not applied: %s", updated.Status)
	}

	if _, err := svc.UpdateStatus(context.Background(), order.OrderNo, "shipped"); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), "PO000000-0000", domain.StatusCanceled); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateLot(t *testing.T) {
	svc := newService(t, nil)
	order := mustCreateOrder(t, svc, "Matcha Cake", 10)
	ctx := context.Background()

	lot, err := svc.CreateLot(ctx, order.OrderNo, domain.CreateLotRequest{LotNo: "L-260407", Qty: 40})
	if err != nil {
		t.Fatalf("create lot: %v", err)
	}
	if lot.ProductName != "Matcha Cake" {
		t.Fatalf("lot must inherit the order product, got %s", lot.ProductName)
	}
	if lot.Remain != 40 {
		t.Fatalf("fresh lot must have full remain, got %v", lot.Remain)
	}

	lots, err := svc.Lots(ctx)
	if err != nil {
		t.Fatalf("lots: %v", err)
	}
	if len(lots) != 1 || lots[0].LotNo != "L-260407" {
		t.Fatalf("lot not stored: %v", lots)
	}

	if _, err := svc.CreateLot(ctx, order.OrderNo, domain.CreateLotRequest{LotNo: " ", Qty: 0}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestSetLotQA(t *testing.T) {
	svc := newService(t, nil)
	order := mustCreateOrder(t, svc, "Matcha Cake", 10)
	ctx := context.Background()

	if _, err := svc.CreateLot(ctx, order.OrderNo, domain.CreateLotRequest{LotNo: "L-1", Qty: 40}); err != nil {
		t.Fatalf("create lot: %v", err)
	}

	if err := svc.SetLotQA(ctx, "L-1", domain.LotQAPass); err != nil {
		t.Fatalf("set qa: %v", err)
	}
	lots, _ := svc.Lots(ctx)
	if lots[0].QA != domain.LotQAPass {
		t.Fatalf("qa not applied: %v", lots[0])
	}

	if err := svc.SetLotQA(ctx, "L-404", domain.LotQAFail); !errors.Is(err, domain.ErrLotNotFound) {
		t.Fatalf("expected ErrLotNotFound, got %v", err)
	}
}

func TestWithdrawFromLot(t *testing.T) {
	svc := newService(t, nil)
	order := mustCreateOrder(t, svc, "Matcha Cake", 10)
	ctx := context.Background()

	if _, err := svc.CreateLot(ctx, order.OrderNo, domain.CreateLotRequest{LotNo: "L-1", Qty: 40}); err != nil {
		t.Fatalf("create lot: %v", err)
	}

	lot, err := svc.WithdrawFromLot(ctx, "L-1", 15)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if lot.Remain != 25 {
		t.Fatalf("expected remain 25, got %v", lot.Remain)
	}

	if _, err := svc.WithdrawFromLot(ctx, "L-1", 100); !errors.Is(err, domain.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	if _, err := svc.WithdrawFromLot(ctx, "L-1", 0); err == nil {
		t.Fatal("expected validation error for zero qty")
	}
}

func TestRecordMaterialUseDropsUnusableRows(t *testing.T) {
	svc := newService(t, nil)
	order := mustCreateOrder(t, svc, "Matcha Cake", 10)

	kept, err := svc.RecordMaterialUse(context.Background(), order.OrderNo, []domain.MaterialUseRow{
		{Name: "Flour", Amount: 2},
		{Name: "  ", Amount: 5},
		{Name: "Sugar", Amount: 0},
		{Name: "Matcha", Amount: -1},
		{Name: "Butter", Amount: 0.5},
	})
	if err != nil {
		t.Fatalf("record use: %v", err)
	}
	if len(kept) != 2 {
		t.Fatalf("expected 2 usable rows, got %v", kept)
	}
	if kept[0].Name != "Flour" || kept[1].Name != "Butter" {
		t.Fatalf("wrong rows kept: %v", kept)
	}
}

func TestRequirementsScaleWithOrderQty(t *testing.T) {
	recipes := &recipeStub{recipes: map[string]recipedomain.Recipe{
		"matcha cake": {
			Name: "Matcha Cake",
			Ingredients: []recipedomain.Ingredient{
				{MaterialName: "Flour", Quantity: 2, Unit: "kg"},
				{MaterialName: "Matcha", Quantity: 0.1, Unit: "kg"},
			},
		},
	}}
	svc := newService(t, recipes)
	order := mustCreateOrder(t, svc, "Matcha Cake", 10)

	reqs, err := svc.Requirements(context.Background(), order.OrderNo)
	if err != nil {
		t.Fatalf("requirements: %v", err)
	}
	if len(reqs) != 2 {
		t.Fatalf("expected 2 requirements, got %v", reqs)
	}
	if reqs[0].Required != 20 || reqs[1].Required != 1 {
		t.Fatalf("requirements not scaled by order qty: %v", reqs)
	}
}

func TestRequirementsWithoutRecipe(t *testing.T) {
	svc := newService(t, nil)
	order := mustCreateOrder(t, svc, "Unknown Product", 3)

	if _, err := svc.Requirements(context.Background(), order.OrderNo); !errors.Is(err, domain.ErrNoRecipe) {
		t.Fatalf("expected ErrNoRecipe, got %v", err)
	}
}
