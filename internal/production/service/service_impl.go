package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/prodline/internal/clock"
	"github.com/smallbiznis/prodline/internal/observability/metrics"
	"github.com/smallbiznis/prodline/internal/production/domain"
	recipedomain "github.com/smallbiznis/prodline/internal/recipe/domain"
	slotdomain "github.com/smallbiznis/prodline/internal/slot/domain"
	"github.com/smallbiznis/prodline/internal/store"
	"github.com/smallbiznis/prodline/internal/workflow"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Slots   slotdomain.Repository
	Clock   clock.Clock
	Recipes recipedomain.Service
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	recipes recipedomain.Service
	metrics *metrics.Metrics
	orders  *store.Store[domain.Order]
	lots    *store.Store[domain.Lot]
	usage   *store.Store[domain.MaterialUse]
}

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("production.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		recipes: p.Recipes,
		metrics: p.Metrics,
		orders:  store.New[domain.Order](domain.OrderSlotKey, p.DB, p.Slots, p.Clock, p.Log),
		lots:    store.New[domain.Lot](domain.LotSlotKey, p.DB, p.Slots, p.Clock, p.Log),
		usage:   store.New[domain.MaterialUse](domain.MaterialUseSlotKey, p.DB, p.Slots, p.Clock, p.Log),
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	return s.orders.List(ctx)
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Order, error) {
	errs := &workflow.FieldErrors{}
	if strings.TrimSpace(req.ProductName) == "" {
		errs.Add("product_name", "required", "product_name is required")
	}
	if req.Qty <= 0 {
		errs.Add("qty", "not_positive", "qty must be greater than zero")
	}
	if !errs.Empty() {
		s.metrics.RecordValidationFailure("orders")
		return nil, errs
	}

	now := s.clock.Now()
	order := domain.Order{
		OrderNo:     newOrderNo(now),
		ProductName: strings.TrimSpace(req.ProductName),
		Qty:         req.Qty,
		CreateDate:  now,
		StartDate:   strings.TrimSpace(req.StartDate),
		DueDate:     strings.TrimSpace(req.DueDate),
		Status:      domain.StatusInProgress,
	}

	if _, err := s.orders.Insert(ctx, order, store.Prepend); err != nil {
		return nil, err
	}

	s.metrics.RecordCommit("orders", "create")
	s.log.Info("order created", zap.String("order_no", order.OrderNo), zap.String("product", order.ProductName))
	return &order, nil
}

func (s *Service) UpdateStatus(ctx context.Context, orderNo, status string) (*domain.Order, error) {
	status = strings.TrimSpace(status)
	if !domain.ValidStatus(status) {
		return nil, domain.ErrInvalidStatus
	}

	var updated domain.Order
	_, err := s.orders.Update(ctx,
		func(o domain.Order) bool { return o.OrderNo == strings.TrimSpace(orderNo) },
		func(o domain.Order) domain.Order {
			o.Status = status
			updated = o
			return o
		},
	)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCommit("orders", "status")
	return &updated, nil
}

func (s *Service) CreateLot(ctx context.Context, orderNo string, req domain.CreateLotRequest) (*domain.Lot, error) {
	order, err := s.find(ctx, orderNo)
	if err != nil {
		return nil, err
	}

	errs := &workflow.FieldErrors{}
	if strings.TrimSpace(req.LotNo) == "" {
		errs.Add("lot_no", "required", "lot_no is required")
	}
	if req.Qty <= 0 {
		errs.Add("qty", "not_positive", "qty must be greater than zero")
	}
	name := strings.TrimSpace(req.ProductName)
	if name == "" {
		name = order.ProductName
	}
	if name == "" {
		errs.Add("product_name", "required", "product_name is required")
	}
	if !errs.Empty() {
		s.metrics.RecordValidationFailure("lots")
		return nil, errs
	}

	lot := domain.Lot{
		ID:          s.genID.Generate().String(),
		OrderNo:     order.OrderNo,
		LotNo:       strings.TrimSpace(req.LotNo),
		ProductName: name,
		Qty:         req.Qty,
		Remain:      req.Qty,
		QA:          domain.LotQAAwaiting,
		CreatedAt:   s.clock.Now(),
	}
	if _, err := s.lots.Insert(ctx, lot, store.Append); err != nil {
		return nil, err
	}

	s.metrics.RecordCommit("lots", "create")
	return &lot, nil
}

func (s *Service) Lots(ctx context.Context) ([]domain.Lot, error) {
	return s.lots.List(ctx)
}

// SetLotQA stamps a QA result on the lot.
func (s *Service) SetLotQA(ctx context.Context, lotNo, qa string) error {
	lotNo = strings.TrimSpace(lotNo)
	_, err := s.lots.Update(ctx,
		func(l domain.Lot) bool { return l.LotNo == lotNo },
		func(l domain.Lot) domain.Lot {
			l.QA = qa
			return l
		},
	)
	if errors.Is(err, store.ErrNotFound) {
		return domain.ErrLotNotFound
	}
	return err
}

// WithdrawFromLot reduces the lot remainder. The remainder never goes
// negative.
func (s *Service) WithdrawFromLot(ctx context.Context, lotNo string, qty float64) (*domain.Lot, error) {
	lotNo = strings.TrimSpace(lotNo)
	if qty <= 0 {
		errs := &workflow.FieldErrors{}
		errs.Add("qty", "not_positive", "qty must be greater than zero")
		return nil, errs
	}

	var updated domain.Lot
	var short bool
	_, err := s.lots.Update(ctx,
		func(l domain.Lot) bool { return l.LotNo == lotNo },
		func(l domain.Lot) domain.Lot {
			if l.Remain < qty {
				short = true
				return l
			}
			l.Remain -= qty
			updated = l
			return l
		},
	)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domain.ErrLotNotFound
	}
	if err != nil {
		return nil, err
	}
	if short {
		return nil, domain.ErrInsufficientStock
	}
	return &updated, nil
}

// RecordMaterialUse appends the usable rows. Rows with a blank name or
// non-positive amount are silently dropped.
func (s *Service) RecordMaterialUse(ctx context.Context, orderNo string, rows []domain.MaterialUseRow) ([]domain.MaterialUse, error) {
	order, err := s.find(ctx, orderNo)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	kept := make([]domain.MaterialUse, 0, len(rows))
	for _, row := range rows {
		name := strings.TrimSpace(row.Name)
		if name == "" || row.Amount <= 0 {
			continue
		}
		kept = append(kept, domain.MaterialUse{
			OrderNo:    order.OrderNo,
			Name:       name,
			Amount:     row.Amount,
			RecordedAt: now,
		})
	}
	if len(kept) == 0 {
		return []domain.MaterialUse{}, nil
	}

	_, err = s.usage.Mutate(ctx, func(items []domain.MaterialUse) ([]domain.MaterialUse, error) {
		return append(items, kept...), nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCommit("orders", "material_use")
	return kept, nil
}

// Requirements derives material demand: each recipe ingredient quantity
// multiplied by the order quantity.
func (s *Service) Requirements(ctx context.Context, orderNo string) ([]domain.Requirement, error) {
	order, err := s.find(ctx, orderNo)
	if err != nil {
		return nil, err
	}

	recipe, err := s.recipes.Get(ctx, order.ProductName)
	if errors.Is(err, recipedomain.ErrNotFound) {
		return nil, domain.ErrNoRecipe
	}
	if err != nil {
		return nil, err
	}

	out := make([]domain.Requirement, 0, len(recipe.Ingredients))
	for _, ing := range recipe.Ingredients {
		out = append(out, domain.Requirement{
			MaterialName: ing.MaterialName,
			Required:     ing.Quantity * order.Qty,
			Unit:         ing.Unit,
		})
	}
	return out, nil
}

func (s *Service) find(ctx context.Context, orderNo string) (*domain.Order, error) {
	orderNo = strings.TrimSpace(orderNo)
	items, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.OrderNo == orderNo {
			return &item, nil
		}
	}
	return nil, domain.ErrNotFound
}

// newOrderNo builds PO<yymmdd>-<4 digits>.
func newOrderNo(now time.Time) string {
	return fmt.Sprintf("PO%s-%04d", now.Format("060102"), rand.Intn(10000))
}
