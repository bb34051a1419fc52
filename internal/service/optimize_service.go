package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Sohamiota/Target-JIT-org/internal/cache"
	"github.com/Sohamiota/Target-JIT-org/internal/domain"
	"github.com/Sohamiota/Target-JIT-org/internal/optimizer"
	"github.com/Sohamiota/Target-JIT-org/internal/repository"
)

// failRunTimeout bounds the bookkeeping write that marks a run failed,
// which must go through even when the triggering context is dead.
const failRunTimeout = 5 * time.Second

// OptimizeService owns the optimization lifecycle: policy resolution,
// catalog runs, result persistence and the cached dashboard summary.
type OptimizeService struct {
	items     repository.ItemRepository
	runs      repository.RunRepository
	policies  repository.PolicyRepository
	summaries repository.SummaryRepository
	cache     cache.SummaryCache
	store     *PolicyStore
	workers   int
}

func NewOptimizeService(
	items repository.ItemRepository,
	runs repository.RunRepository,
	policies repository.PolicyRepository,
	summaries repository.SummaryRepository,
	cacheImpl cache.SummaryCache,
	store *PolicyStore,
	workers int,
) *OptimizeService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopSummaryCache()
	}
	return &OptimizeService{
		items:     items,
		runs:      runs,
		policies:  policies,
		summaries: summaries,
		cache:     cacheImpl,
		store:     store,
		workers:   workers,
	}
}

// CurrentPolicy resolves the policy that drives the next run: the
// newest persisted version if one exists, otherwise the policy file,
// otherwise the built-in defaults. The returned version is 0 when the
// policy did not come from the database.
func (s *OptimizeService) CurrentPolicy(ctx context.Context) (domain.Policy, int, error) {
	pv, err := s.policies.CurrentPolicy(ctx)
	if err != nil {
		return domain.Policy{}, 0, fmt.Errorf("failed to resolve current policy: %w", err)
	}
	if pv != nil {
		return pv.Policy, pv.Version, nil
	}

	if s.store != nil {
		policy, found, err := s.store.Load()
		if err != nil {
			log.Warn().Err(err).Str("path", s.store.Path()).Msg("optimize: policy file unreadable, using defaults")
		} else if found {
			return policy, 0, nil
		}
	}

	return domain.DefaultPolicy(), 0, nil
}

// UpdatePolicy validates and persists a new policy version, and mirrors
// it to the policy file so CLI runs against an empty database pick up
// the same parameters.
func (s *OptimizeService) UpdatePolicy(ctx context.Context, policy domain.Policy) (*domain.PolicyVersion, error) {
	if err := policy.Validate(); err != nil {
		return nil, err
	}

	saved, err := s.policies.SavePolicy(ctx, policy)
	if err != nil {
		return nil, fmt.Errorf("failed to save policy: %w", err)
	}

	if s.store != nil {
		if err := s.store.Save(policy); err != nil {
			log.Warn().Err(err).Str("path", s.store.Path()).Msg("optimize: failed to mirror policy to file")
		}
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("optimize: cache invalidation failed")
	}

	log.Info().
		Int("version", saved.Version).
		Float64("holding_cost_rate", policy.HoldingCostRate).
		Float64("service_level", policy.ServiceLevel).
		Msg("policy updated")

	return saved, nil
}

// OptimizeBatch runs the optimizer over caller-supplied items under the
// current policy without touching the catalog or recording a run. A
// non-nil serviceLevel overrides the policy's target for this batch
// only.
func (s *OptimizeService) OptimizeBatch(ctx context.Context, items []domain.Item, serviceLevel *float64) (optimizer.Result, error) {
	policy, _, err := s.CurrentPolicy(ctx)
	if err != nil {
		return optimizer.Result{}, err
	}
	if serviceLevel != nil {
		policy.ServiceLevel = *serviceLevel
	}

	opt, err := optimizer.New(policy)
	if err != nil {
		return optimizer.Result{}, err
	}

	return opt.OptimizeInventoryLevelsParallel(ctx, items, s.workers)
}

// RunOptimization optimizes the stored catalog under the current policy
// and persists the run and its results. A non-nil scope narrows the run
// to matching SKUs or categories. Items that fail validation are
// reported back without sinking the run; infrastructure errors mark the
// run failed.
func (s *OptimizeService) RunOptimization(ctx context.Context, scope *domain.ItemFilter) (*domain.OptimizationRun, []domain.ItemFailure, error) {
	policy, version, err := s.CurrentPolicy(ctx)
	if err != nil {
		return nil, nil, err
	}

	opt, err := optimizer.New(policy)
	if err != nil {
		return nil, nil, err
	}

	catalog, err := s.items.GetAllItems(ctx, scope)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	if len(catalog) == 0 {
		reason := "catalog is empty"
		if scope != nil && (len(scope.SKUIDs) > 0 || len(scope.Categories) > 0) {
			reason = "no catalog items match the requested scope"
		}
		return nil, nil, &domain.DomainError{Op: "optimize", Reason: reason}
	}

	inputs := make([]domain.Item, len(catalog))
	for i, item := range catalog {
		inputs[i] = item.Item
	}

	run := &domain.OptimizationRun{
		ID:            uuid.New(),
		PolicyVersion: version,
		Status:        domain.RunStatusRunning,
		StartedAt:     time.Now().UTC(),
	}
	if err := s.runs.CreateRun(ctx, run); err != nil {
		return nil, nil, fmt.Errorf("failed to create run: %w", err)
	}

	log.Info().
		Str("run_id", run.ID.String()).
		Int("policy_version", version).
		Int("items", len(inputs)).
		Msg("optimization run started")

	result, err := opt.OptimizeInventoryLevelsParallel(ctx, inputs, s.workers)
	if err != nil {
		s.failRun(run.ID, err.Error())
		return nil, nil, err
	}

	if err := s.runs.SaveResults(ctx, run.ID, result.Items); err != nil {
		s.failRun(run.ID, err.Error())
		return nil, nil, fmt.Errorf("failed to save results: %w", err)
	}

	var totalCost float64
	for _, item := range result.Items {
		totalCost += item.TotalAnnualCost
	}

	run.ItemCount = len(result.Items)
	run.FailureCount = len(result.Failures)
	run.TotalAnnualCost = totalCost
	if err := s.runs.CompleteRun(ctx, run); err != nil {
		s.failRun(run.ID, err.Error())
		return nil, nil, fmt.Errorf("failed to complete run: %w", err)
	}

	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("optimize: cache invalidation failed")
	}

	log.Info().
		Str("run_id", run.ID.String()).
		Int("optimized", run.ItemCount).
		Int("failed", run.FailureCount).
		Float64("total_annual_cost", totalCost).
		Msg("optimization run completed")

	return run, result.Failures, nil
}

// failRun records the failure on its own context so a cancelled request
// still leaves the run in a terminal state.
func (s *OptimizeService) failRun(runID uuid.UUID, reason string) {
	ctx, cancel := context.WithTimeout(context.Background(), failRunTimeout)
	defer cancel()
	if err := s.runs.FailRun(ctx, runID, reason); err != nil {
		log.Error().Err(err).Str("run_id", runID.String()).Msg("optimize: failed to mark run failed")
	}
}

// GetSummary serves the dashboard summary cache-aside: a cache error
// degrades to the repository, never to the caller.
func (s *OptimizeService) GetSummary(ctx context.Context, filter *domain.SummaryFilter) (*domain.OptimizationSummary, error) {
	if summary, ok, err := s.cache.GetSummary(ctx, filter); err == nil && ok {
		return summary, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("optimize: cache get summary failed")
	}

	summary, err := s.summaries.GetSummary(ctx, filter)
	if err != nil {
		return nil, err
	}
	if summary == nil {
		return nil, nil
	}

	if err := s.cache.SetSummary(ctx, filter, summary); err != nil {
		log.Warn().Err(err).Msg("optimize: cache set summary failed")
	}

	return summary, nil
}

func (s *OptimizeService) GetRun(ctx context.Context, runID uuid.UUID) (*domain.OptimizationRun, error) {
	return s.runs.GetRun(ctx, runID)
}

func (s *OptimizeService) ListRuns(ctx context.Context, limit int) ([]domain.OptimizationRun, error) {
	return s.runs.ListRuns(ctx, limit)
}

func (s *OptimizeService) LatestCompletedRun(ctx context.Context) (*domain.OptimizationRun, error) {
	return s.runs.LatestCompletedRun(ctx)
}

func (s *OptimizeService) GetResults(ctx context.Context, runID uuid.UUID, filter *domain.ItemFilter) (*domain.ResultsPage, error) {
	return s.runs.GetResults(ctx, runID, filter)
}

func (s *OptimizeService) ListPolicyVersions(ctx context.Context, limit int) ([]domain.PolicyVersion, error) {
	return s.policies.ListPolicyVersions(ctx, limit)
}

func (s *OptimizeService) GetItems(ctx context.Context, filter *domain.ItemFilter) (*domain.ItemsPage, error) {
	return s.items.GetItems(ctx, filter)
}

func (s *OptimizeService) GetItem(ctx context.Context, skuID string) (*domain.CatalogItem, error) {
	return s.items.GetItem(ctx, skuID)
}
