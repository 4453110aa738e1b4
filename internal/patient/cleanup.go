package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/WailSalutem-Health-Care/patient-registry-service/internal/reports"
)

// OrphanGracePeriod protects files written by an intake whose row is not
// committed yet.
const OrphanGracePeriod = time.Hour

// ReportIndex lists the report files referenced by patient records.
type ReportIndex interface {
	ListReportFiles(ctx context.Context) ([]string, error)
}

// CleanupService removes report files that no patient record references
type CleanupService struct {
	index ReportIndex
	store ReportStore
	log   *zap.Logger
	now   func() time.Time
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(index ReportIndex, store ReportStore, log *zap.Logger) *CleanupService {
	return &CleanupService{
		index: index,
		store: store,
		log:   log,
		now:   time.Now,
	}
}

// FindOrphanedReports returns stored report files older than the grace period
// that no record points at.
func (s *CleanupService) FindOrphanedReports(ctx context.Context) ([]string, error) {
	referenced, err := s.index.ListReportFiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list referenced reports: %w", err)
	}

	keep := make(map[string]struct{}, len(referenced))
	for _, name := range referenced {
		keep[name] = struct{}{}
	}

	stored, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored reports: %w", err)
	}

	cutoff := s.now().Add(-OrphanGracePeriod)

	var orphans []string
	for _, name := range stored {
		if _, ok := keep[name]; ok {
			continue
		}

		modTime, err := s.modTime(ctx, name)
		if errors.Is(err, reports.ErrReportNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if modTime.After(cutoff) {
			continue
		}

		orphans = append(orphans, name)
	}

	return orphans, nil
}

// GetOrphanedReportsCount returns how many files CleanupOrphanedReports would remove
func (s *CleanupService) GetOrphanedReportsCount(ctx context.Context) (int, error) {
	orphans, err := s.FindOrphanedReports(ctx)
	if err != nil {
		return 0, err
	}
	return len(orphans), nil
}

// CleanupOrphanedReports deletes orphaned report files. A failure on one file
// is logged and the rest are still processed.
func (s *CleanupService) CleanupOrphanedReports(ctx context.Context) (int, error) {
	orphans, err := s.FindOrphanedReports(ctx)
	if err != nil {
		return 0, err
	}

	if len(orphans) == 0 {
		s.log.Info("no orphaned reports found")
		return 0, nil
	}

	deleted := 0
	for _, name := range orphans {
		if err := s.store.Delete(ctx, name); err != nil && !errors.Is(err, reports.ErrReportNotFound) {
			s.log.Warn("failed to delete orphaned report", zap.String("file", name), zap.Error(err))
			continue
		}
		deleted++
	}

	s.log.Info("orphaned report cleanup finished", zap.Int("deleted", deleted), zap.Int("found", len(orphans)))
	return deleted, nil
}

func (s *CleanupService) modTime(ctx context.Context, name string) (time.Time, error) {
	f, err := s.store.Open(ctx, name)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to stat report %s: %w", name, err)
	}
	return info.ModTime(), nil
}
