package service

import (
	"context"
	"path"
	"time"

	"github.com/Mecho90/BuildingManagement/shared/logger"
)

// SweepStorage lists every stored path the metadata store still references.
type SweepStorage interface {
	AttachmentStoredPaths(ctx context.Context) ([]string, error)
}

// SweepObjects is the object-store surface the sweeper walks. Both storage
// backends implement it alongside ObjectStorage.
type SweepObjects interface {
	ListObjects(ctx context.Context) ([]string, error)
	ObjectModTime(ctx context.Context, storedPath string) (time.Time, error)
	Delete(ctx context.Context, storedPath string) error
}

// SweepStats summarizes one sweep run.
type SweepStats struct {
	RunAt          time.Time
	ObjectsScanned int
	Orphans        int
	Deleted        int
	Errors         []string
}

// MediaSweeper removes stored objects that no attachment record references.
// A failed delete leaves its object for the next run; the object store is
// the source of truth only for bytes, never for what should exist. The
// admin CLI drives it from cron alongside the notification sync.
type MediaSweeper struct {
	storage SweepStorage
	objects SweepObjects

	// minAge guards objects younger than this from deletion. An upload
	// writes the object before its metadata row commits, so a freshly
	// written object without a record may simply be mid-request.
	minAge time.Duration
}

func NewMediaSweeper(storage SweepStorage, objects SweepObjects, minAge time.Duration) *MediaSweeper {
	return &MediaSweeper{storage: storage, objects: objects, minAge: minAge}
}

// Sweep performs one pass: list referenced paths, walk the object store and
// delete unreferenced objects older than minAge. Per-object failures are
// collected in the stats rather than aborting the pass.
func (m *MediaSweeper) Sweep(ctx context.Context, now time.Time) (SweepStats, error) {
	stats := SweepStats{RunAt: now}

	referenced, err := m.storage.AttachmentStoredPaths(ctx)
	if err != nil {
		return stats, err
	}
	keep := make(map[string]struct{}, len(referenced))
	for _, p := range referenced {
		keep[path.Clean(p)] = struct{}{}
	}

	objects, err := m.objects.ListObjects(ctx)
	if err != nil {
		return stats, err
	}
	stats.ObjectsScanned = len(objects)

	for _, obj := range objects {
		if _, ok := keep[path.Clean(obj)]; ok {
			continue
		}

		modTime, err := m.objects.ObjectModTime(ctx, obj)
		if err != nil {
			stats.Errors = append(stats.Errors, "stat "+obj+": "+err.Error())
			continue
		}
		if now.Sub(modTime) < m.minAge {
			continue
		}

		stats.Orphans++
		if err := m.objects.Delete(ctx, obj); err != nil {
			stats.Errors = append(stats.Errors, "delete "+obj+": "+err.Error())
			continue
		}
		stats.Deleted++
		logger.Log.Info("removed orphaned media object", "path", obj)
	}

	return stats, nil
}
