package service

import (
	"strings"
	"time"

	"github.com/noah-isme/sma-finance-mirror/internal/models"
	"github.com/noah-isme/sma-finance-mirror/pkg/config"
	appErrors "github.com/noah-isme/sma-finance-mirror/pkg/errors"
)

// snapshotReader gives read services the current snapshot and the billing
// calendar they compute against.
type snapshotReader struct {
	snapshots SnapshotProvider
	loc       *time.Location
	now       func() time.Time
}

func newSnapshotReader(provider SnapshotProvider, billing config.BillingConfig) snapshotReader {
	return snapshotReader{snapshots: provider, loc: billing.Location(), now: time.Now}
}

// asOf is the current instant in the billing timezone.
func (r snapshotReader) asOf() time.Time {
	return r.now().In(r.loc)
}

// load returns the snapshot once every required collection has been loaded.
func (r snapshotReader) load(required ...models.Collection) (*models.Snapshot, error) {
	var snap *models.Snapshot
	if r.snapshots != nil {
		snap = r.snapshots.Snapshot()
	}
	if snap == nil {
		return nil, appErrors.ErrSnapshotUnavailable
	}
	var missing []string
	for _, c := range required {
		if !snap.Loaded[c] {
			missing = append(missing, string(c))
		}
	}
	if len(missing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrSnapshotUnavailable, "collections not loaded yet: "+strings.Join(missing, ", "))
	}
	return snap, nil
}
