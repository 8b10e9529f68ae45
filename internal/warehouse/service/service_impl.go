package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/prodline/internal/clock"
	"github.com/smallbiznis/prodline/internal/observability/metrics"
	productiondomain "github.com/smallbiznis/prodline/internal/production/domain"
	slotdomain "github.com/smallbiznis/prodline/internal/slot/domain"
	"github.com/smallbiznis/prodline/internal/store"
	"github.com/smallbiznis/prodline/internal/view"
	"github.com/smallbiznis/prodline/internal/warehouse/domain"
	"github.com/smallbiznis/prodline/internal/workflow"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Slots      slotdomain.Repository
	Clock      clock.Clock
	Production productiondomain.Service
	Metrics    *metrics.Metrics `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	production productiondomain.Service
	metrics    *metrics.Metrics
	stock      *store.Store[domain.StockRow]
	movements  *store.Store[domain.Movement]
	allocs     *store.Store[domain.Allocation]
	requests   *store.Store[domain.PurchaseRequest]
}

func New(p Params) domain.Service {
	return &Service{
		log:        p.Log.Named("warehouse.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		production: p.Production,
		metrics:    p.Metrics,
		stock:      store.New[domain.StockRow](domain.StockSlotKey, p.DB, p.Slots, p.Clock, p.Log),
		movements:  store.New[domain.Movement](domain.MovementSlotKey, p.DB, p.Slots, p.Clock, p.Log),
		allocs:     store.New[domain.Allocation](domain.AllocationSlotKey, p.DB, p.Slots, p.Clock, p.Log),
		requests:   store.New[domain.PurchaseRequest](domain.PurchaseRequestSlotKey, p.DB, p.Slots, p.Clock, p.Log),
	}
}

func (s *Service) ListStock(ctx context.Context) ([]domain.StockRow, error) {
	return s.stock.List(ctx)
}

func (s *Service) CreateStock(ctx context.Context, req domain.CreateStockRequest) (*domain.StockRow, error) {
	errs := &workflow.FieldErrors{}
	if strings.TrimSpace(req.MaterialName) == "" {
		errs.Add("material_name", "required", "material_name is required")
	}
	if req.RequiredQty <= 0 {
		errs.Add("required_qty", "not_positive", "required_qty must be greater than zero")
	}
	if !errs.Empty() {
		s.metrics.RecordValidationFailure("stock")
		return nil, errs
	}

	status := strings.TrimSpace(req.Status)
	if status == "" {
		status = domain.StockStatusPending
	}
	qa := strings.TrimSpace(req.QA)
	if qa == "" {
		qa = domain.StockQAAwaiting
	}

	row := domain.StockRow{
		ID:           s.genID.Generate().String(),
		OrderNo:      strings.TrimSpace(req.OrderNo),
		MaterialName: strings.TrimSpace(req.MaterialName),
		RequiredQty:  req.RequiredQty,
		Unit:         strings.TrimSpace(req.Unit),
		Status:       status,
		QA:           qa,
	}
	if _, err := s.stock.Insert(ctx, row, store.Append); err != nil {
		return nil, err
	}

	s.metrics.RecordCommit("stock", "create")
	return &row, nil
}

func (s *Service) Movements(ctx context.Context, req domain.MovementFilter) ([]domain.Movement, error) {
	items, err := s.movements.List(ctx)
	if err != nil {
		return nil, err
	}
	if direction := strings.TrimSpace(req.Direction); direction != "" {
		items = view.Where(items, func(m domain.Movement) bool { return m.Direction == direction })
	}
	if lotNo := strings.TrimSpace(req.LotNo); lotNo != "" {
		items = view.Where(items, func(m domain.Movement) bool { return m.LotNo == lotNo })
	}
	return items, nil
}

func (s *Service) RecordMovement(ctx context.Context, req domain.MovementRequest) (*domain.Movement, error) {
	direction := strings.TrimSpace(req.Direction)
	if direction != domain.DirectionInbound && direction != domain.DirectionOutbound {
		return nil, domain.ErrInvalidDirection
	}

	errs := &workflow.FieldErrors{}
	if strings.TrimSpace(req.LotNo) == "" {
		errs.Add("lot_no", "required", "lot_no is required")
	}
	if strings.TrimSpace(req.Name) == "" {
		errs.Add("name", "required", "name is required")
	}
	if req.Qty <= 0 {
		errs.Add("qty", "not_positive", "qty must be greater than zero")
	}
	if !errs.Empty() {
		s.metrics.RecordValidationFailure("movements")
		return nil, errs
	}

	now := s.clock.Now()
	movement := domain.Movement{
		ID:        s.newEntryID(now),
		LotNo:     strings.TrimSpace(req.LotNo),
		Code:      strings.TrimSpace(req.Code),
		Name:      strings.TrimSpace(req.Name),
		Qty:       req.Qty,
		Direction: direction,
		Category:  strings.TrimSpace(req.Category),
		RefNo:     strings.TrimSpace(req.RefNo),
		Date:      now,
		Note:      strings.TrimSpace(req.Note),
	}
	if _, err := s.movements.Insert(ctx, movement, store.Append); err != nil {
		return nil, err
	}

	s.metrics.RecordCommit("movements", "record")
	return &movement, nil
}

// Withdraw takes per-lot quantities out of product lots. Every usable
// line reduces the lot remainder and appends an outbound movement. At
// least one line with qty > 0 is required.
func (s *Service) Withdraw(ctx context.Context, req domain.WithdrawRequest) ([]domain.Movement, error) {
	lines := make([]domain.WithdrawLine, 0, len(req.Lines))
	for _, line := range req.Lines {
		if strings.TrimSpace(line.LotNo) == "" || line.Qty <= 0 {
			continue
		}
		lines = append(lines, domain.WithdrawLine{LotNo: strings.TrimSpace(line.LotNo), Qty: line.Qty})
	}
	if len(lines) == 0 {
		errs := &workflow.FieldErrors{}
		errs.Add("lines", "required", "at least one line with qty > 0 is required")
		s.metrics.RecordValidationFailure("withdrawals")
		return nil, errs
	}

	now := s.clock.Now()
	out := make([]domain.Movement, 0, len(lines))
	for _, line := range lines {
		lot, err := s.production.WithdrawFromLot(ctx, line.LotNo, line.Qty)
		if err != nil {
			return nil, err
		}

		movement := domain.Movement{
			ID:        s.newEntryID(now),
			LotNo:     lot.LotNo,
			Name:      lot.ProductName,
			Qty:       line.Qty,
			Direction: domain.DirectionOutbound,
			Category:  "withdrawal",
			RefNo:     strings.TrimSpace(req.RefNo),
			Date:      now,
			Note:      strings.TrimSpace(req.Note),
		}
		if _, err := s.movements.Insert(ctx, movement, store.Append); err != nil {
			return nil, err
		}
		out = append(out, movement)
	}

	s.metrics.RecordCommit("movements", "withdraw")
	return out, nil
}

// Allocate files raw-material allocation rows and cuts one purchase
// request for the submission.
func (s *Service) Allocate(ctx context.Context, req domain.AllocateRequest) (*domain.AllocateResult, error) {
	errs := &workflow.FieldErrors{}
	if len(req.Lines) == 0 {
		errs.Add("lines", "required", "at least one line is required")
		s.metrics.RecordValidationFailure("allocations")
		return nil, errs
	}
	for i, line := range req.Lines {
		prefix := fmt.Sprintf("lines.%d.", i)
		if strings.TrimSpace(line.Name) == "" {
			errs.Add(prefix+"name", "required", fmt.Sprintf("line %d: name is required", i+1))
		}
		if line.Qty <= 0 {
			errs.Add(prefix+"qty", "not_positive", fmt.Sprintf("line %d: qty must be greater than zero", i+1))
		}
	}
	if !errs.Empty() {
		s.metrics.RecordValidationFailure("allocations")
		return nil, errs
	}

	now := s.clock.Now()
	rows := make([]domain.Allocation, 0, len(req.Lines))
	for _, line := range req.Lines {
		rows = append(rows, domain.Allocation{
			ID:         s.genID.Generate().String(),
			LotID:      strings.TrimSpace(line.LotID),
			Code:       strings.TrimSpace(line.Code),
			Name:       strings.TrimSpace(line.Name),
			Qty:        line.Qty,
			Status:     domain.AllocationStatusAwaiting,
			ImportDate: now,
		})
	}

	if _, err := s.allocs.Mutate(ctx, func(items []domain.Allocation) ([]domain.Allocation, error) {
		return append(items, rows...), nil
	}); err != nil {
		return nil, err
	}

	request := domain.PurchaseRequest{
		RequestNo: fmt.Sprintf("PR-%05d", rand.Intn(100000)),
		Lines:     len(rows),
		CreatedAt: now,
	}
	if _, err := s.requests.Insert(ctx, request, store.Append); err != nil {
		return nil, err
	}

	s.metrics.RecordCommit("allocations", "create")
	s.log.Info("allocation filed",
		zap.String("request_no", request.RequestNo),
		zap.Int("lines", len(rows)),
	)
	return &domain.AllocateResult{Rows: rows, PurchaseRequest: request}, nil
}

func (s *Service) ListAllocations(ctx context.Context) ([]domain.Allocation, error) {
	return s.allocs.List(ctx)
}

func (s *Service) ListPurchaseRequests(ctx context.Context) ([]domain.PurchaseRequest, error) {
	return s.requests.List(ctx)
}

func (s *Service) newEntryID(now time.Time) string {
	return ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String()
}
