package service

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/prodline/internal/clock"
	"github.com/smallbiznis/prodline/internal/config"
	"github.com/smallbiznis/prodline/internal/material/domain"
	"github.com/smallbiznis/prodline/internal/observability/metrics"
	slotdomain "github.com/smallbiznis/prodline/internal/slot/domain"
	"github.com/smallbiznis/prodline/internal/store"
	"github.com/smallbiznis/prodline/internal/view"
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
	Alerts  *config.StockAlertHolder
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	alerts  *config.StockAlertHolder
	metrics *metrics.Metrics
	records *store.Store[domain.Material]
}

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("material.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		alerts:  p.Alerts,
		metrics: p.Metrics,
		records: store.New[domain.Material](domain.SlotKey, p.DB, p.Slots, p.Clock, p.Log),
	}
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.Material, error) {
	items, err := s.records.List(ctx)
	if err != nil {
		return nil, err
	}
	return project(items, req), nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Material, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrInvalidID
	}

	items, err := s.records.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item.ID == id {
			return &item, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (*domain.Material, error) {
	draft := workflow.NewDraft[form]()
	draft.OpenEmpty(form{})
	_ = draft.Set(func(f *form) {
		*f = form{req.Code, req.Name, req.Qty, req.MinQty}
	})
	if _, errs, err := draft.Commit(formRules()...); err != nil {
		return nil, err
	} else if !errs.Empty() {
		s.metrics.RecordValidationFailure("materials")
		return nil, errs
	}

	rec := domain.Material{
		ID:        s.genID.Generate().String(),
		Code:      strings.TrimSpace(req.Code),
		Name:      strings.TrimSpace(req.Name),
		Category:  strings.TrimSpace(req.Category),
		Qty:       req.Qty,
		Unit:      strings.TrimSpace(req.Unit),
		MinQty:    req.MinQty,
		Note:      strings.TrimSpace(req.Note),
		CreatedAt: s.clock.Now(),
	}

	items, err := s.records.Insert(ctx, rec, store.Prepend)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCommit("materials", "create")
	s.refreshLowStockGauge(items)
	s.log.Info("material created", zap.String("id", rec.ID), zap.String("code", rec.Code))
	return &rec, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpdateRequest) (*domain.Material, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrInvalidID
	}
	// Lookup by ID first, then by code as the natural key.
	existing, err := s.Get(ctx, id)
	if err == domain.ErrNotFound {
		code := workflow.NormalizeKey(req.Code)
		items, listErr := s.records.List(ctx)
		if listErr != nil {
			return nil, listErr
		}
		for _, item := range items {
			if workflow.NormalizeKey(item.Code) == code {
				m := item
				existing, err = &m, nil
				break
			}
		}
	}
	if err != nil {
		return nil, err
	}

	draft := workflow.NewDraft[form]()
	draft.OpenPrefilled(form{existing.Code, existing.Name, existing.Qty, existing.MinQty})
	_ = draft.Set(func(f *form) {
		*f = form{req.Code, req.Name, req.Qty, req.MinQty}
	})
	if _, errs, err := draft.Commit(formRules()...); err != nil {
		return nil, err
	} else if !errs.Empty() {
		s.metrics.RecordValidationFailure("materials")
		return nil, errs
	}

	var updated domain.Material
	apply := func(m domain.Material) domain.Material {
		m.Code = strings.TrimSpace(req.Code)
		m.Name = strings.TrimSpace(req.Name)
		m.Category = strings.TrimSpace(req.Category)
		m.Qty = req.Qty
		m.Unit = strings.TrimSpace(req.Unit)
		m.MinQty = req.MinQty
		m.Note = strings.TrimSpace(req.Note)
		updated = m
		return m
	}

	targetID := existing.ID
	items, err := s.records.Update(ctx, func(m domain.Material) bool { return m.ID == targetID }, apply)
	if err == store.ErrNotFound {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCommit("materials", "update")
	s.refreshLowStockGauge(items)
	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.ErrInvalidID
	}

	removed := false
	items, err := s.records.Mutate(ctx, func(items []domain.Material) ([]domain.Material, error) {
		kept := make([]domain.Material, 0, len(items))
		for _, item := range items {
			if item.ID == id {
				removed = true
				continue
			}
			kept = append(kept, item)
		}
		if !removed {
			return nil, domain.ErrNotFound
		}
		return kept, nil
	})
	if err != nil {
		return err
	}

	s.metrics.RecordCommit("materials", "delete")
	s.refreshLowStockGauge(items)
	return nil
}

func (s *Service) LowStock(ctx context.Context) ([]domain.LowStockItem, error) {
	items, err := s.records.List(ctx)
	if err != nil {
		return nil, err
	}

	low := view.Where(items, domain.Material.LowStock)
	s.metrics.SetLowStockMaterials(len(low))

	policy := s.alerts.Current()
	out := make([]domain.LowStockItem, 0, len(low))
	for _, item := range low {
		out = append(out, domain.LowStockItem{
			Material: item,
			Severity: severity(policy, item),
		})
	}
	return out, nil
}

// ExportCSV renders the filtered and sorted projection. Fixed column
// set, comma delimiter, header row, every field quoted.
func (s *Service) ExportCSV(ctx context.Context, req domain.ListRequest) ([]byte, error) {
	items, err := s.List(ctx, req)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	writeCSVRow(&b, []string{"id", "code", "name", "category", "qty", "unit", "min_qty", "note", "created_at"})
	for _, m := range items {
		writeCSVRow(&b, []string{
			m.ID,
			m.Code,
			m.Name,
			m.Category,
			formatQty(m.Qty),
			m.Unit,
			formatQty(m.MinQty),
			m.Note,
			m.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	s.metrics.RecordExportRows(len(items))
	return []byte(b.String()), nil
}

func (s *Service) refreshLowStockGauge(items []domain.Material) {
	s.metrics.SetLowStockMaterials(view.CountWhere(items, domain.Material.LowStock))
}

type form struct {
	Code   string
	Name   string
	Qty    float64
	MinQty float64
}

func formRules() []workflow.Rule[form] {
	return []workflow.Rule[form]{
		workflow.Required("code", func(f form) string { return f.Code }),
		workflow.Required("name", func(f form) string { return f.Name }),
		workflow.Positive("qty", func(f form) float64 { return f.Qty }),
		workflow.NonNegative("min_qty", func(f form) float64 { return f.MinQty }),
	}
}

func project(items []domain.Material, req domain.ListRequest) []domain.Material {
	out := view.FilterByText(items, req.Query, func(m domain.Material) []string {
		return []string{m.Code, m.Name, m.Category}
	})

	if category := strings.TrimSpace(req.Category); category != "" {
		out = view.Where(out, func(m domain.Material) bool { return m.Category == category })
	}

	sortBy := strings.TrimSpace(req.SortBy)
	if sortBy == "" {
		return out
	}
	desc := strings.EqualFold(strings.TrimSpace(req.OrderBy), "desc")

	less := func(a, b domain.Material) bool { return false }
	switch sortBy {
	case "code":
		less = func(a, b domain.Material) bool { return a.Code < b.Code }
	case "name":
		less = func(a, b domain.Material) bool { return a.Name < b.Name }
	case "category":
		less = func(a, b domain.Material) bool { return a.Category < b.Category }
	case "qty":
		less = func(a, b domain.Material) bool { return a.Qty < b.Qty }
	case "min_qty":
		less = func(a, b domain.Material) bool { return a.MinQty < b.MinQty }
	case "created_at":
		less = func(a, b domain.Material) bool { return a.CreatedAt.Before(b.CreatedAt) }
	default:
		return out
	}
	if desc {
		asc := less
		less = func(a, b domain.Material) bool { return asc(b, a) }
	}
	return view.SortedBy(out, less)
}

func severity(policy config.StockAlertConfig, m domain.Material) string {
	if m.MinQty <= 0 {
		return ""
	}
	ratio := m.Qty / m.MinQty
	level := ""
	for _, band := range policy.Bands {
		if ratio >= band.MinRatio {
			return band.Level
		}
		level = band.Level
	}
	return level
}

func formatQty(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// writeCSVRow quotes every field unconditionally, doubling embedded
// quotes, and terminates the row with \n.
func writeCSVRow(b *strings.Builder, fields []string) {
	for i, field := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(field, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}
