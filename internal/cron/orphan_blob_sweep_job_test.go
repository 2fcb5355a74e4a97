package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mvidal/promptgallery-backend/pkg/logger"
	"github.com/mvidal/promptgallery-backend/pkg/storage/s3"
)

type fakeSweepCatalog struct {
	ids []string
	err error
}

func (f *fakeSweepCatalog) GroupIDs(context.Context) ([]string, error) {
	return f.ids, f.err
}

type fakeSweepBlobStore struct {
	objects   []s3.ObjectInfo
	listErr   error
	deleteErr map[string]error
	deleted   []string
}

func (f *fakeSweepBlobStore) List(ctx context.Context, prefix string) ([]s3.ObjectInfo, error) {
	return f.objects, f.listErr
}

func (f *fakeSweepBlobStore) Delete(ctx context.Context, key string) error {
	if err, ok := f.deleteErr[key]; ok {
		return err
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func newSweepJob(t *testing.T, catalog *fakeSweepCatalog, blob *fakeSweepBlobStore, minAge time.Duration, now time.Time) *orphanBlobSweepJob {
	t.Helper()
	job, err := NewOrphanBlobSweepJob(OrphanBlobSweepJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "cron-test"}),
		Catalog: catalog,
		Blob:    blob,
		MinAge:  minAge,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	sweep := job.(*orphanBlobSweepJob)
	sweep.now = func() time.Time { return now }
	return sweep
}

func TestOrphanBlobSweepDeletesOnlyOrphans(t *testing.T) {
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-2 * time.Hour)

	catalog := &fakeSweepCatalog{ids: []string{"live-group"}}
	blob := &fakeSweepBlobStore{objects: []s3.ObjectInfo{
		{Key: "media/live-group/item-1", LastModified: old},
		{Key: "media/dead-group/item-1", LastModified: old},
		{Key: "media/dead-group/item-2", LastModified: old},
	}}

	job := newSweepJob(t, catalog, blob, time.Hour, now)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(blob.deleted) != 2 {
		t.Fatalf("expected 2 deletions, got %d: %v", len(blob.deleted), blob.deleted)
	}
	for _, key := range blob.deleted {
		if key == "media/live-group/item-1" {
			t.Fatal("deleted a blob belonging to a live group")
		}
	}
}

func TestOrphanBlobSweepHonorsMinAge(t *testing.T) {
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

	catalog := &fakeSweepCatalog{}
	blob := &fakeSweepBlobStore{objects: []s3.ObjectInfo{
		{Key: "media/in-flight/item-1", LastModified: now.Add(-time.Minute)},
		{Key: "media/stale/item-1", LastModified: now.Add(-3 * time.Hour)},
	}}

	job := newSweepJob(t, catalog, blob, time.Hour, now)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(blob.deleted) != 1 || blob.deleted[0] != "media/stale/item-1" {
		t.Fatalf("expected only the stale blob to be swept, got %v", blob.deleted)
	}
}

func TestOrphanBlobSweepAggregatesDeleteErrors(t *testing.T) {
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	old := now.Add(-2 * time.Hour)

	catalog := &fakeSweepCatalog{}
	blob := &fakeSweepBlobStore{
		objects: []s3.ObjectInfo{
			{Key: "media/dead/item-1", LastModified: old},
			{Key: "media/dead/item-2", LastModified: old},
		},
		deleteErr: map[string]error{"media/dead/item-1": errors.New("denied")},
	}

	job := newSweepJob(t, catalog, blob, time.Hour, now)
	err := job.Run(context.Background())
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if len(blob.deleted) != 1 || blob.deleted[0] != "media/dead/item-2" {
		t.Fatalf("expected the second blob to still be swept, got %v", blob.deleted)
	}
}

func TestOrphanBlobSweepSkipsMalformedKeys(t *testing.T) {
	now := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

	catalog := &fakeSweepCatalog{}
	blob := &fakeSweepBlobStore{objects: []s3.ObjectInfo{
		{Key: "media/loose-object", LastModified: now.Add(-3 * time.Hour)},
		{Key: "unrelated/key", LastModified: now.Add(-3 * time.Hour)},
	}}

	job := newSweepJob(t, catalog, blob, time.Hour, now)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(blob.deleted) != 0 {
		t.Fatalf("expected nothing swept, got %v", blob.deleted)
	}
}

func TestNewOrphanBlobSweepJobValidation(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	if _, err := NewOrphanBlobSweepJob(OrphanBlobSweepJobParams{Catalog: &fakeSweepCatalog{}, Blob: &fakeSweepBlobStore{}}); err == nil {
		t.Fatal("expected error for missing logger")
	}
	if _, err := NewOrphanBlobSweepJob(OrphanBlobSweepJobParams{Logger: logg, Blob: &fakeSweepBlobStore{}}); err == nil {
		t.Fatal("expected error for missing catalog")
	}
	if _, err := NewOrphanBlobSweepJob(OrphanBlobSweepJobParams{Logger: logg, Catalog: &fakeSweepCatalog{}}); err == nil {
		t.Fatal("expected error for missing blob store")
	}
}
