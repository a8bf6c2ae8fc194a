// Package gymplan serves the plan catalog. The active-plan list changes
// rarely and sits on the registration page, so it is kept in redis.
package gymplan

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/gymhub/gymhub/internal/models"
)

var ErrPlanNotFound = errors.New("gym plan not found")

const (
	catalogCacheKey = "gymplans:active"
	catalogCacheTTL = time.Hour
)

// Repository defines the storage methods the catalog needs.
type Repository interface {
	ListActiveGymPlans(ctx context.Context) ([]*models.GymPlan, error)
	GetGymPlan(ctx context.Context, id int64) (*models.GymPlan, error)
}

// PlanCache is the subset of the cache used by the catalog.
type PlanCache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// Service serves the plan catalog, caching the active-plan list.
type Service struct {
	repo  Repository
	cache PlanCache
	log   *slog.Logger
}

// New creates a Service.
func New(repo Repository, cache PlanCache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// ListActive returns the active plans ordered by price, from cache when
// possible. A cache failure falls through to the database.
func (s *Service) ListActive(ctx context.Context) ([]*models.GymPlan, error) {
	const op = "services.gymplan.ListActive"

	var cached []*models.GymPlan
	hit, err := s.cache.Get(catalogCacheKey, &cached)
	if err != nil {
		s.log.Warn("plan catalog cache read failed", slog.String("error", err.Error()))
	}
	if hit {
		return cached, nil
	}

	plans, err := s.repo.ListActiveGymPlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := s.cache.Set(catalogCacheKey, plans, catalogCacheTTL); err != nil {
		s.log.Warn("plan catalog cache write failed", slog.String("error", err.Error()))
	}
	return plans, nil
}

// Get returns one plan by id, active or not.
func (s *Service) Get(ctx context.Context, id int64) (*models.GymPlan, error) {
	const op = "services.gymplan.Get"

	plan, err := s.repo.GetGymPlan(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plan, nil
}

// InvalidateCatalog drops the cached active-plan list. Called after plan
// administration changes.
func (s *Service) InvalidateCatalog() {
	if err := s.cache.Invalidate(catalogCacheKey); err != nil {
		s.log.Warn("plan catalog cache invalidate failed", slog.String("error", err.Error()))
	}
}
