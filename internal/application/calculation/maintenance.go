package calculation

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/calculation/backend/internal/domain/calculation"
	"github.com/calculation/backend/internal/domain/shared"
	"github.com/calculation/backend/internal/infrastructure/lock"
	"github.com/calculation/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Lock keys of the maintenance jobs
const (
	UpdateLockKey  = "calculation:update"
	ArchiveLockKey = "calculation:archive"
)

// DefaultArchiveAge is how old calculations must be when no date is given
const DefaultArchiveAge = 6 * 30 * 24 * time.Hour

// UpdateAll recomputes the totals of every calculation in an editable state.
// Calculations are processed in pages, each page by a bounded pool of workers.
// Only one update runs at a time across instances.
func (s *CalculationService) UpdateAll(ctx context.Context, query UpdateQuery, username string) (*UpdateResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "calculation", "update_all",
		telemetry.AttrDryRun, query.DryRun,
		telemetry.AttrUsername, username,
	)
	defer span.End()

	result := &UpdateResult{DryRun: query.DryRun, Changes: make([]UpdateChange, 0)}
	err := lock.WithLock(ctx, s.locker, UpdateLockKey, s.cfg.LockTTL, func(ctx context.Context) error {
		return s.updateAll(ctx, query, username, result)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.AttrCount, result.Updated)
	s.metrics.CalculationsRecomputed(ctx, result.Updated, query.DryRun)
	s.logger.Info("Calculations updated",
		zap.Int("total", result.Total),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", result.Skipped),
		zap.Bool("dry_run", query.DryRun),
		zap.Duration("duration", result.Duration),
		zap.String("trace_id", telemetry.TraceID(ctx)),
	)
	return result, nil
}

func (s *CalculationService) updateAll(ctx context.Context, query UpdateQuery, username string, result *UpdateResult) error {
	start := time.Now()
	params, err := s.params.Parameters(ctx)
	if err != nil {
		return err
	}
	calculator, err := s.calculator(ctx, params)
	if err != nil {
		return err
	}

	filter := shared.Filter{
		Page:     1,
		PageSize: s.cfg.UpdateBatch,
		OrderBy:  "created_at",
		OrderDir: "asc",
		Filters:  map[string]interface{}{"editable": true},
	}
	if query.Since != nil {
		filter.Filters["date_from"] = *query.Since
	}

	var mu sync.Mutex
	for {
		calcs, err := s.calcRepo.FindAllWithItems(ctx, filter)
		if err != nil {
			return err
		}
		if len(calcs) == 0 {
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(s.cfg.UpdateWorkers)
		for i := range calcs {
			calc := &calcs[i]
			g.Go(func() error {
				change, changed := s.recompute(calc, calculator, query, username)
				if !changed {
					mu.Lock()
					result.Skipped++
					mu.Unlock()
					return nil
				}
				if !query.DryRun {
					if err := s.calcRepo.Save(gctx, calc); err != nil {
						return err
					}
				}
				mu.Lock()
				result.Updated++
				result.Changes = append(result.Changes, change)
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		result.Total += len(calcs)
		if len(calcs) < filter.PageSize {
			break
		}
		filter.Page++
	}

	slices.SortFunc(result.Changes, func(a, b UpdateChange) int {
		return b.NewTotal.Sub(b.OldTotal).Abs().Cmp(a.NewTotal.Sub(a.OldTotal).Abs())
	})
	result.Duration = time.Since(start)
	return nil
}

// recompute applies the update options and the totals to calc. It reports
// whether anything changed.
func (s *CalculationService) recompute(calc *calculation.Calculation, calculator *calculation.Calculator, query UpdateQuery, username string) (UpdateChange, bool) {
	change := UpdateChange{
		ID:          calc.ID,
		Customer:    calc.Customer,
		Description: calc.Description,
		OldTotal:    calc.OverallTotal,
	}

	if query.EmptyItems {
		change.RemovedItems += calc.RemoveEmptyItems()
	}
	if query.DuplicateItems {
		change.RemovedItems += calc.RemoveDuplicateItems()
	}
	sorted := false
	if query.Sort {
		before := itemOrder(calc)
		calc.Sort()
		sorted = !slices.Equal(before, itemOrder(calc))
	}

	oldItems := calc.ItemsTotal
	calculator.Apply(calc)
	change.NewTotal = calc.OverallTotal

	changed := change.RemovedItems > 0 || sorted ||
		!change.OldTotal.Equal(change.NewTotal) || !oldItems.Equal(calc.ItemsTotal)
	if changed {
		calc.MarkUpdated(username)
	}
	// bulk runs must not trigger the below-margin notifications
	calc.ClearDomainEvents()
	return change, changed
}

func itemOrder(calc *calculation.Calculation) []uuid.UUID {
	refs := calc.Items()
	ids := make([]uuid.UUID, len(refs))
	for i, ref := range refs {
		ids[i] = ref.Item.ID
	}
	return ids
}

// Archive moves the calculations dated before query.Before from the source
// states to the target state. The target state must not be editable.
func (s *CalculationService) Archive(ctx context.Context, query ArchiveQuery, username string) (*ArchiveResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "calculation", "archive",
		telemetry.AttrDryRun, query.DryRun,
		telemetry.AttrUsername, username,
	)
	defer span.End()

	if query.Before.IsZero() {
		query.Before = time.Now().Add(-DefaultArchiveAge)
	}
	target, err := s.findState(ctx, query.TargetStateID)
	if err != nil {
		return nil, err
	}
	if target.Editable {
		return nil, shared.NewDomainError("INVALID_TARGET_STATE", "Archive target state must not be editable")
	}

	sources, err := s.archiveSources(ctx, query.SourceStateIDs, target.ID)
	if err != nil {
		return nil, err
	}

	result := &ArchiveResult{
		Before:      query.Before,
		TargetState: target.Code,
		DryRun:      query.DryRun,
		IDs:         make([]uuid.UUID, 0),
	}
	if len(sources) == 0 {
		return result, nil
	}

	err = lock.WithLock(ctx, s.locker, ArchiveLockKey, s.cfg.LockTTL, func(ctx context.Context) error {
		calcs, err := s.calcRepo.FindForArchive(ctx, query.Before, sources)
		if err != nil {
			return err
		}
		for i := range calcs {
			result.IDs = append(result.IDs, calcs[i].ID)
		}
		result.Count = int64(len(result.IDs))
		if query.DryRun || len(result.IDs) == 0 {
			return nil
		}
		result.Count, err = s.calcRepo.UpdateState(ctx, result.IDs, target, username)
		return err
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.AttrStateCode, target.Code, telemetry.AttrCount, result.Count)
	s.logger.Info("Calculations archived",
		zap.Int64("count", result.Count),
		zap.String("target_state", target.Code),
		zap.Time("before", query.Before),
		zap.Bool("dry_run", query.DryRun),
	)
	return result, nil
}

// ArchiveToState archives the calculations older than age into the state with the given code
func (s *CalculationService) ArchiveToState(ctx context.Context, code string, age time.Duration, dryRun bool, username string) (*ArchiveResult, error) {
	target, err := s.stateRepo.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_STATE", "Calculation state not found")
		}
		return nil, err
	}
	return s.Archive(ctx, ArchiveQuery{Before: time.Now().Add(-age), TargetStateID: target.ID, DryRun: dryRun}, username)
}

// archiveSources returns the requested source states, or the editable states, without the target
func (s *CalculationService) archiveSources(ctx context.Context, requested []uuid.UUID, targetID uuid.UUID) ([]uuid.UUID, error) {
	ids := requested
	if len(ids) == 0 {
		states, err := s.stateRepo.FindEditable(ctx)
		if err != nil {
			return nil, err
		}
		for _, st := range states {
			ids = append(ids, st.ID)
		}
	}
	return slices.DeleteFunc(slices.Clone(ids), func(id uuid.UUID) bool { return id == targetID }), nil
}
