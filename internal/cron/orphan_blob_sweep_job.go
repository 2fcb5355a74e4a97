package cron

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/mvidal/promptgallery-backend/pkg/logger"
	"github.com/mvidal/promptgallery-backend/pkg/metrics"
	"github.com/mvidal/promptgallery-backend/pkg/storage/s3"
)

const (
	defaultSweepMinAge = time.Hour

	itemBlobRoot = "media/"
)

type sweepCatalog interface {
	GroupIDs(ctx context.Context) ([]string, error)
}

type sweepBlobStore interface {
	List(ctx context.Context, prefix string) ([]s3.ObjectInfo, error)
	Delete(ctx context.Context, key string) error
}

// OrphanBlobSweepJobParams configure the orphan blob sweep.
type OrphanBlobSweepJobParams struct {
	Logger  *logger.Logger
	Catalog sweepCatalog
	Blob    sweepBlobStore
	Metrics *metrics.CronJobMetrics
	// MinAge guards blobs written by in-flight group creations from being
	// swept before their catalog transaction commits.
	MinAge time.Duration
}

// NewOrphanBlobSweepJob builds the job that reclaims blobs whose group no
// longer exists in the catalog. Group creation writes blobs before the
// catalog transaction commits, so a rolled-back create leaves blobs behind;
// this sweep is the reconciliation path for those leaks.
func NewOrphanBlobSweepJob(params OrphanBlobSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Catalog == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if params.Blob == nil {
		return nil, fmt.Errorf("blob store required")
	}
	minAge := params.MinAge
	if minAge <= 0 {
		minAge = defaultSweepMinAge
	}
	return &orphanBlobSweepJob{
		logg:    params.Logger,
		catalog: params.Catalog,
		blob:    params.Blob,
		metrics: params.Metrics,
		minAge:  minAge,
		now:     time.Now,
	}, nil
}

type orphanBlobSweepJob struct {
	logg    *logger.Logger
	catalog sweepCatalog
	blob    sweepBlobStore
	metrics *metrics.CronJobMetrics
	minAge  time.Duration
	now     func() time.Time
}

func (j *orphanBlobSweepJob) Name() string { return "orphan-blob-sweep" }

func (j *orphanBlobSweepJob) Run(ctx context.Context) error {
	ids, err := j.catalog.GroupIDs(ctx)
	if err != nil {
		return fmt.Errorf("list catalog groups: %w", err)
	}
	known := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		known[id] = struct{}{}
	}

	objects, err := j.blob.List(ctx, itemBlobRoot)
	if err != nil {
		return fmt.Errorf("list item blobs: %w", err)
	}

	cutoff := j.now().Add(-j.minAge)
	var (
		swept    int
		skipped  int
		sweepErr error
	)
	for _, object := range objects {
		groupID := groupIDFromBlobKey(object.Key)
		if groupID == "" {
			skipped++
			continue
		}
		if _, ok := known[groupID]; ok {
			continue
		}
		if object.LastModified.After(cutoff) {
			skipped++
			continue
		}
		if err := j.blob.Delete(ctx, object.Key); err != nil {
			sweepErr = multierr.Append(sweepErr, fmt.Errorf("delete %s: %w", object.Key, err))
			continue
		}
		swept++
	}

	if j.metrics != nil {
		j.metrics.AddSwept(j.Name(), swept)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"groups_known": len(known),
		"blobs_listed": len(objects),
		"blobs_swept":  swept,
		"skipped":      skipped,
	})
	if sweepErr != nil {
		j.logg.Error(logCtx, "orphan blob sweep finished with failures", sweepErr)
		return fmt.Errorf("orphan blob sweep: %w", sweepErr)
	}
	j.logg.Info(logCtx, "orphan blob sweep complete")
	return nil
}

func groupIDFromBlobKey(key string) string {
	rest, ok := strings.CutPrefix(key, itemBlobRoot)
	if !ok {
		return ""
	}
	groupID, _, ok := strings.Cut(rest, "/")
	if !ok {
		return ""
	}
	return groupID
}
