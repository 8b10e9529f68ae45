package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/smallbiznis/prodline/internal/clock"
	"github.com/smallbiznis/prodline/internal/observability/metrics"
	"github.com/smallbiznis/prodline/internal/recipe/domain"
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
	Slots   slotdomain.Repository
	Clock   clock.Clock
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	clock   clock.Clock
	metrics *metrics.Metrics
	records *store.Store[domain.Recipe]
}

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("recipe.service"),
		clock:   p.Clock,
		metrics: p.Metrics,
		records: store.New[domain.Recipe](domain.SlotKey, p.DB, p.Slots, p.Clock, p.Log),
	}
}

func (s *Service) List(ctx context.Context) ([]domain.Recipe, error) {
	return s.records.List(ctx)
}

func (s *Service) Get(ctx context.Context, name string) (*domain.Recipe, error) {
	key := workflow.NormalizeKey(name)
	if key == "" {
		return nil, domain.ErrInvalidName
	}

	items, err := s.records.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if workflow.NormalizeKey(item.Name) == key {
			return &item, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Save upserts by ID, then by normalized name, else inserts. An update
// keeps the original ID and CreatedAt.
func (s *Service) Save(ctx context.Context, req domain.SaveRequest) (*domain.Recipe, error) {
	if errs := validate(req); !errs.Empty() {
		s.metrics.RecordValidationFailure("recipes")
		return nil, errs
	}

	name := strings.TrimSpace(req.Name)
	key := workflow.NormalizeKey(name)
	id := strings.TrimSpace(req.ID)
	now := s.clock.Now()

	ingredients := make([]domain.Ingredient, 0, len(req.Ingredients))
	for _, ing := range req.Ingredients {
		ingredients = append(ingredients, domain.Ingredient{
			MaterialName: strings.TrimSpace(ing.MaterialName),
			Quantity:     ing.Quantity,
			Unit:         strings.TrimSpace(ing.Unit),
		})
	}

	var saved domain.Recipe
	_, err := s.records.Mutate(ctx, func(items []domain.Recipe) ([]domain.Recipe, error) {
		// An ID match wins over a name match anywhere in the list.
		idx := -1
		if id != "" {
			for i, item := range items {
				if item.ID == id {
					idx = i
					break
				}
			}
		}
		if idx < 0 {
			for i, item := range items {
				if workflow.NormalizeKey(item.Name) == key {
					idx = i
					break
				}
			}
		}

		if idx < 0 {
			saved = domain.Recipe{
				ID:          uuid.NewString(),
				Name:        name,
				Slug:        slug.Make(name),
				Note:        strings.TrimSpace(req.Note),
				Ingredients: ingredients,
				CreatedAt:   now,
				UpdatedAt:   now,
			}
			return append([]domain.Recipe{saved}, items...), nil
		}

		r := items[idx]
		r.Name = name
		r.Slug = slug.Make(name)
		r.Note = strings.TrimSpace(req.Note)
		r.Ingredients = ingredients
		r.UpdatedAt = now
		items[idx] = r
		saved = r
		return items, nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordCommit("recipes", "save")
	s.log.Info("recipe saved", zap.String("id", saved.ID), zap.String("slug", saved.Slug))
	return &saved, nil
}

func (s *Service) Delete(ctx context.Context, name string) error {
	key := workflow.NormalizeKey(name)
	if key == "" {
		return domain.ErrInvalidName
	}

	removed := false
	_, err := s.records.Mutate(ctx, func(items []domain.Recipe) ([]domain.Recipe, error) {
		kept := make([]domain.Recipe, 0, len(items))
		for _, item := range items {
			if workflow.NormalizeKey(item.Name) == key {
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

	s.metrics.RecordCommit("recipes", "delete")
	return nil
}

// validate checks the recipe head and every ingredient row. Row errors
// are keyed ingredients.<idx>.<field> so the caller can mark the exact
// cell, and duplicate materials within one submission are rejected.
func validate(req domain.SaveRequest) *workflow.FieldErrors {
	errs := &workflow.FieldErrors{}

	if strings.TrimSpace(req.Name) == "" {
		errs.Add("name", "required", "name is required")
	}
	if len(req.Ingredients) == 0 {
		errs.Add("ingredients", "required", "at least one ingredient is required")
		return errs
	}

	seen := map[string]int{}
	for i, ing := range req.Ingredients {
		prefix := fmt.Sprintf("ingredients.%d.", i)

		name := workflow.NormalizeKey(ing.MaterialName)
		if name == "" {
			errs.Add(prefix+"material_name", "required", fmt.Sprintf("ingredient %d: material name is required", i+1))
		} else if first, dup := seen[name]; dup {
			errs.Add(prefix+"material_name", "duplicate",
				fmt.Sprintf("ingredient %d: duplicates ingredient %d", i+1, first+1))
		} else {
			seen[name] = i
		}

		if ing.Quantity <= 0 {
			errs.Add(prefix+"quantity", "not_positive", fmt.Sprintf("ingredient %d: quantity must be greater than zero", i+1))
		}
		if strings.TrimSpace(ing.Unit) == "" {
			errs.Add(prefix+"unit", "required", fmt.Sprintf("ingredient %d: unit is required", i+1))
		}
	}
	return errs
}
