package service

import (
	"context"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/smallbiznis/prodline/internal/clock"
	"github.com/smallbiznis/prodline/internal/observability/metrics"
	productiondomain "github.com/smallbiznis/prodline/internal/production/domain"
	"github.com/smallbiznis/prodline/internal/qa/domain"
	slotdomain "github.com/smallbiznis/prodline/internal/slot/domain"
	"github.com/smallbiznis/prodline/internal/store"
	"github.com/smallbiznis/prodline/internal/view"
	warehousedomain "github.com/smallbiznis/prodline/internal/warehouse/domain"
	"github.com/smallbiznis/prodline/internal/workflow"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	Slots      slotdomain.Repository
	Clock      clock.Clock
	Production productiondomain.Service
	Metrics    *metrics.Metrics `optional:"true"`
}

type Service struct {
	log        *zap.Logger
	clock      clock.Clock
	production productiondomain.Service
	metrics    *metrics.Metrics
	histories  map[string]*store.Store[domain.Entry]
	// inbound movements are the material-lot source; read only here.
	movements *store.Store[warehousedomain.Movement]
}

func New(p Params) domain.Service {
	return &Service{
		log:        p.Log.Named("qa.service"),
		clock:      p.Clock,
		production: p.Production,
		metrics:    p.Metrics,
		histories: map[string]*store.Store[domain.Entry]{
			domain.TargetMaterial: store.New[domain.Entry](domain.MaterialHistorySlotKey, p.DB, p.Slots, p.Clock, p.Log),
			domain.TargetProduct:  store.New[domain.Entry](domain.ProductHistorySlotKey, p.DB, p.Slots, p.Clock, p.Log),
		},
		movements: store.New[warehousedomain.Movement](warehousedomain.MovementSlotKey, p.DB, p.Slots, p.Clock, p.Log),
	}
}

// Lots lists the judgeable lots for a target, split into lots with no
// history yet ("new") and lots already judged ("checked"). The two tabs
// are disjoint and together cover every lot.
func (s *Service) Lots(ctx context.Context, target, tab string) ([]domain.Lot, error) {
	history, err := s.historyStore(target)
	if err != nil {
		return nil, err
	}
	if tab != domain.TabNew && tab != domain.TabChecked {
		return nil, domain.ErrInvalidTab
	}

	lots, err := s.lotsFor(ctx, target)
	if err != nil {
		return nil, err
	}

	entries, err := history.List(ctx)
	if err != nil {
		return nil, err
	}
	judged := map[string]struct{}{}
	for _, e := range entries {
		judged[e.LotNo] = struct{}{}
	}

	checked, fresh := view.Partition(lots, func(l domain.Lot) bool {
		_, ok := judged[l.LotNo]
		return ok
	})
	if tab == domain.TabChecked {
		return checked, nil
	}
	return fresh, nil
}

// History returns judgment entries newest first, optionally for one lot.
func (s *Service) History(ctx context.Context, target, lotNo string) ([]domain.Entry, error) {
	history, err := s.historyStore(target)
	if err != nil {
		return nil, err
	}

	entries, err := history.List(ctx)
	if err != nil {
		return nil, err
	}
	if lotNo = strings.TrimSpace(lotNo); lotNo != "" {
		entries = view.Where(entries, func(e domain.Entry) bool { return e.LotNo == lotNo })
	}
	return entries, nil
}

// Judge records a pass or fail verdict. The history entry is the
// authoritative write; stamping the verdict onto the product lot is
// fire-and-forget and only logged on failure.
func (s *Service) Judge(ctx context.Context, target string, req domain.JudgeRequest) (*domain.Entry, error) {
	history, err := s.historyStore(target)
	if err != nil {
		return nil, err
	}
	if req.Result != domain.ResultPass && req.Result != domain.ResultFail {
		return nil, domain.ErrInvalidResult
	}

	errs := &workflow.FieldErrors{}
	if strings.TrimSpace(req.LotNo) == "" {
		errs.Add("lot_no", "required", "lot_no is required")
	}
	if strings.TrimSpace(req.CheckedBy) == "" {
		errs.Add("checked_by", "required", "checked_by is required")
	}
	if req.Count < 0 {
		errs.Add("count", "negative", "count must not be negative")
	}
	if !errs.Empty() {
		s.metrics.RecordValidationFailure("qa")
		return nil, errs
	}

	now := s.clock.Now()
	entry := domain.Entry{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		LotNo:     strings.TrimSpace(req.LotNo),
		Result:    req.Result,
		CheckedBy: strings.TrimSpace(req.CheckedBy),
		Time:      now,
		Producer:  strings.TrimSpace(req.Producer),
		Source:    strings.TrimSpace(req.Source),
		Location:  strings.TrimSpace(req.Location),
		Count:     req.Count,
	}
	if _, err := history.Insert(ctx, entry, store.Prepend); err != nil {
		return nil, err
	}

	if target == domain.TargetProduct {
		qa := productiondomain.LotQAPass
		if entry.Result == domain.ResultFail {
			qa = productiondomain.LotQAFail
		}
		if err := s.production.SetLotQA(ctx, entry.LotNo, qa); err != nil {
			s.log.Warn("lot status not updated",
				zap.String("lot_no", entry.LotNo),
				zap.Error(err),
			)
		}
	}

	s.metrics.RecordCommit("qa", "judge")
	return &entry, nil
}

// Clear wipes a target's history. Single entries are never deleted.
func (s *Service) Clear(ctx context.Context, target string) error {
	history, err := s.historyStore(target)
	if err != nil {
		return err
	}
	if _, err := history.Replace(ctx, nil); err != nil {
		return err
	}
	s.metrics.RecordCommit("qa", "clear")
	return nil
}

func (s *Service) historyStore(target string) (*store.Store[domain.Entry], error) {
	if h, ok := s.histories[target]; ok {
		return h, nil
	}
	return nil, domain.ErrInvalidTarget
}

func (s *Service) lotsFor(ctx context.Context, target string) ([]domain.Lot, error) {
	if target == domain.TargetProduct {
		lots, err := s.production.Lots(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]domain.Lot, 0, len(lots))
		for _, lot := range lots {
			out = append(out, domain.Lot{
				LotNo: lot.LotNo,
				Name:  lot.ProductName,
				Qty:   lot.Remain,
				QA:    lot.QA,
			})
		}
		return out, nil
	}

	// Material lots derive from inbound movements: one lot per lot
	// number, quantities summed across receipts.
	moves, err := s.movements.List(ctx)
	if err != nil {
		return nil, err
	}
	index := map[string]int{}
	out := []domain.Lot{}
	for _, m := range moves {
		if m.Direction != warehousedomain.DirectionInbound {
			continue
		}
		if i, ok := index[m.LotNo]; ok {
			out[i].Qty += m.Qty
			continue
		}
		index[m.LotNo] = len(out)
		out = append(out, domain.Lot{LotNo: m.LotNo, Name: m.Name, Qty: m.Qty})
	}
	return out, nil
}
