package sync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/fieldtrack/mileage-backend-go/internal/models"
	"github.com/fieldtrack/mileage-backend-go/internal/repository"
)

// ErrSyncInProgress is returned when a cycle is already running.
// Concurrent cycles for the same store would double-count progress and
// race on the same local records.
var ErrSyncInProgress = errors.New("sync already in progress")

// ProgressFunc receives the engine's progress stream. ItemsSynced only
// ever advances within a cycle, and the stream always ends with one
// terminal emission, even when the whole cycle fails.
type ProgressFunc func(models.SyncProgress)

// Options configures an Engine
type Options struct {
	// BatchSize bounds both the request payload and the blast radius
	// of a single failed upload call.
	BatchSize int
	// OrphanAttemptLimit is the number of cycles a shift may leave its
	// points unresolved before they are quarantined.
	OrphanAttemptLimit int
	// Progress, if set, receives the progress stream.
	Progress ProgressFunc
	// OnPointsSynced, if set, is invoked fire-and-forget at the end of
	// a cycle with the completed shifts that received newly synced
	// points, to trigger trip re-detection.
	OnPointsSynced func(shiftIDs []int64)
}

// Engine moves shifts, gaps and GPS points from the local durable
// store to the central store. One cycle runs the ordered algorithm:
// shifts first (points need server-assigned shift ids), then gaps,
// then points in fixed-size batches with per-item reconciliation and
// orphan quarantine.
type Engine struct {
	shifts     *repository.ShiftRepository
	points     *repository.PointRepository
	gaps       *repository.GapRepository
	quarantine *repository.QuarantineRepository
	orphans    *repository.OrphanAttemptRepository

	transport   Transport
	batchSize   int
	orphanLimit int

	progress       ProgressFunc
	onPointsSynced func([]int64)

	mu sync.Mutex
}

// NewEngine creates a sync engine over the local store
func NewEngine(db *sql.DB, transport Transport, opts Options) *Engine {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}
	if opts.OrphanAttemptLimit <= 0 {
		opts.OrphanAttemptLimit = 3
	}
	return &Engine{
		shifts:         repository.NewShiftRepository(db),
		points:         repository.NewPointRepository(db),
		gaps:           repository.NewGapRepository(db),
		quarantine:     repository.NewQuarantineRepository(db),
		orphans:        repository.NewOrphanAttemptRepository(db),
		transport:      transport,
		batchSize:      opts.BatchSize,
		orphanLimit:    opts.OrphanAttemptLimit,
		progress:       opts.Progress,
		onPointsSynced: opts.OnPointsSynced,
	}
}

// SyncAll runs one full sync cycle for an employee. Shift-level and
// point-level failures accumulate into the result; only local storage
// corruption aborts the call.
func (e *Engine) SyncAll(ctx context.Context, employeeID int64) (*models.SyncResult, error) {
	if !e.mu.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer e.mu.Unlock()

	result := &models.SyncResult{}
	itemsSynced := 0
	emit := func(op string) {
		if e.progress != nil {
			e.progress(models.SyncProgress{ItemsSynced: itemsSynced, Operation: op})
		}
	}
	defer func() {
		if e.progress != nil {
			e.progress(models.SyncProgress{ItemsSynced: itemsSynced, Operation: "sync complete", Terminal: true})
		}
	}()

	logrus.Infof("[SyncEngine] Starting sync cycle for employee %d", employeeID)

	// Step 1: shift sync. No fail-fast: one bad shift must not block
	// the others.
	emit("syncing shifts")
	serverIDs, err := e.shifts.ServerIDMap(employeeID)
	if err != nil {
		return result, err
	}

	unsynced, err := e.shifts.GetUnsynced(employeeID)
	if err != nil {
		return result, err
	}
	for _, shift := range unsynced {
		serverID, err := e.transport.UploadShift(ctx, shift)
		if err != nil {
			result.FailedShifts++
			result.LastError = err.Error()
			if serr := e.shifts.MarkError(shift.ID, err.Error()); serr != nil {
				return result, serr
			}
			continue
		}
		if err := e.shifts.MarkSynced(shift.ID, serverID); err != nil {
			return result, err
		}
		serverIDs[shift.ID] = serverID
		result.SyncedShifts++
		itemsSynced++
		emit("syncing shifts")
	}

	// Step 2: gap sync. Gaps whose shift has no server id yet are
	// skipped this cycle; they are audit data with no orphan logic.
	emit("syncing gaps")
	if err := e.syncGaps(ctx, employeeID, serverIDs, result, &itemsSynced, emit); err != nil {
		return result, err
	}

	// Step 3: point sync in fixed-size batches.
	if err := e.syncPoints(ctx, employeeID, serverIDs, result, &itemsSynced, emit); err != nil {
		return result, err
	}

	logrus.Infof("[SyncEngine] Cycle complete: %d/%d shifts, %d gaps, %d points synced, %d failed, %d quarantined",
		result.SyncedShifts, result.SyncedShifts+result.FailedShifts,
		result.SyncedGaps, result.SyncedPoints, result.FailedPoints, result.QuarantinedPoints)
	return result, nil
}

func (e *Engine) syncGaps(ctx context.Context, employeeID int64, serverIDs map[int64]int64,
	result *models.SyncResult, itemsSynced *int, emit func(string)) error {

	pendingGaps, err := e.gaps.GetPending(employeeID)
	if err != nil {
		return err
	}

	var uploads []GapUpload
	var ids []int64
	for _, g := range pendingGaps {
		serverID, ok := serverIDs[g.ShiftID]
		if !ok {
			continue
		}
		uploads = append(uploads, GapUpload{
			ServerShiftID: serverID,
			StartedAt:     g.StartedAt,
			EndedAt:       g.EndedAt,
			Reason:        g.Reason,
		})
		ids = append(ids, g.ID)
	}
	if len(uploads) == 0 {
		return nil
	}

	if err := e.transport.UploadGaps(ctx, uploads); err != nil {
		result.LastError = err.Error()
		logrus.Warnf("[SyncEngine] Gap upload failed, retrying next cycle: %v", err)
		return nil
	}
	if err := e.gaps.MarkSynced(ids); err != nil {
		return err
	}
	result.SyncedGaps += len(ids)
	*itemsSynced += len(ids)
	emit("syncing gaps")
	return nil
}

func (e *Engine) syncPoints(ctx context.Context, employeeID int64, serverIDs map[int64]int64,
	result *models.SyncResult, itemsSynced *int, emit func(string)) error {

	pending, err := e.points.GetPending(employeeID, 0)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}

	emit("uploading points")

	inlineTried := make(map[int64]bool)      // one inline shift retry per shift per cycle
	counted := make(map[int64]bool)          // orphan counter bumps once per shift per cycle
	attempts := make(map[int64]int)          // counter value after this cycle's bump
	orphaned := make(map[int64][]models.GpsPoint)
	affected := make(map[int64]bool) // shifts that received newly synced points

batches:
	for start := 0; start < len(pending); start += e.batchSize {
		end := start + e.batchSize
		if end > len(pending) {
			end = len(pending)
		}

		var batch []PointUpload
		idToShift := make(map[string]int64)
		for _, p := range pending[start:end] {
			serverID, ok := serverIDs[p.ShiftID]
			if !ok {
				ok, serverID, err = e.resolveShiftInline(ctx, p.ShiftID, serverIDs, inlineTried, result, itemsSynced)
				if err != nil {
					return err
				}
			}
			if !ok {
				if open, err := e.shiftStillOpen(p.ShiftID); err != nil {
					return err
				} else if open {
					// Not orphaned, just not ready: points of an open
					// shift wait for clock-out.
					continue
				}
				if !counted[p.ShiftID] {
					counted[p.ShiftID] = true
					n, err := e.orphans.Increment(p.ShiftID)
					if err != nil {
						return err
					}
					attempts[p.ShiftID] = n
				}
				orphaned[p.ShiftID] = append(orphaned[p.ShiftID], p)
				continue
			}

			batch = append(batch, PointUpload{
				ID:            p.ID,
				ServerShiftID: serverID,
				Latitude:      p.Latitude,
				Longitude:     p.Longitude,
				Accuracy:      p.Accuracy,
				Speed:         p.Speed,
				Heading:       p.Heading,
				Altitude:      p.Altitude,
				CapturedAt:    p.CapturedAt,
			})
			idToShift[p.ID] = p.ShiftID
		}
		if len(batch) == 0 {
			continue
		}

		outcomes, err := e.transport.UploadPoints(ctx, batch)
		if err != nil {
			result.LastError = err.Error()
			var netErr *NetworkError
			if errors.As(err, &netErr) {
				// The connection is known bad; pushing the remaining
				// batches would burn battery for nothing.
				logrus.Warnf("[SyncEngine] Network failure, aborting remaining batches: %v", err)
				break batches
			}
			result.FailedPoints += len(batch)
			continue
		}

		var syncedIDs []string
		for _, outcome := range outcomes {
			switch outcome.Status {
			case OutcomeInserted, OutcomeDuplicate:
				syncedIDs = append(syncedIDs, outcome.ID)
			case OutcomeRejected:
				result.FailedPoints++
				result.LastError = fmt.Sprintf("point %s rejected: %s", outcome.ID, outcome.Reason)
			}
		}
		if len(syncedIDs) == 0 {
			continue
		}

		if err := e.points.MarkSynced(syncedIDs); err != nil {
			return err
		}
		for _, id := range syncedIDs {
			affected[idToShift[id]] = true
		}
		result.SyncedPoints += len(syncedIDs)
		*itemsSynced += len(syncedIDs)
		emit("uploading points")
	}

	// Orphan quarantine policy: at the attempt limit every point still
	// orphaned against the shift leaves the pending queue so a
	// permanently un-syncable shift cannot block it forever.
	for shiftID, points := range orphaned {
		if attempts[shiftID] < e.orphanLimit {
			result.FailedPoints += len(points)
			continue
		}
		msg := fmt.Sprintf("shift %d has no server id after %d sync attempts", shiftID, attempts[shiftID])
		if err := e.quarantine.QuarantinePoints(points, models.QuarantineReasonOrphanedShift, msg, attempts[shiftID]); err != nil {
			return err
		}
		result.QuarantinedPoints += len(points)
		logrus.Warnf("[SyncEngine] Quarantined %d points of shift %d: %s", len(points), shiftID, msg)
	}

	// Fire-and-forget re-detection for completed shifts that gained
	// synced points. Detection failure never fails the sync cycle.
	if len(affected) > 0 && e.onPointsSynced != nil {
		var shiftIDs []int64
		for shiftID := range affected {
			shift, err := e.shifts.GetByID(shiftID)
			if err != nil {
				return err
			}
			if shift != nil && shift.Completed() {
				shiftIDs = append(shiftIDs, shiftID)
			}
		}
		if len(shiftIDs) > 0 {
			e.onPointsSynced(shiftIDs)
		}
	}
	return nil
}

// resolveShiftInline gives an unresolved shift one more upload attempt
// within the point phase before its points count as orphaned.
func (e *Engine) resolveShiftInline(ctx context.Context, shiftID int64, serverIDs map[int64]int64,
	inlineTried map[int64]bool, result *models.SyncResult, itemsSynced *int) (bool, int64, error) {

	if inlineTried[shiftID] {
		return false, 0, nil
	}
	inlineTried[shiftID] = true

	shift, err := e.shifts.GetByID(shiftID)
	if err != nil {
		return false, 0, err
	}
	if shift == nil || shift.Status == models.ShiftStatusOpen || shift.Status == models.ShiftStatusSynced {
		return false, 0, nil
	}

	serverID, err := e.transport.UploadShift(ctx, *shift)
	if err != nil {
		if serr := e.shifts.MarkError(shift.ID, err.Error()); serr != nil {
			return false, 0, serr
		}
		return false, 0, nil
	}
	if err := e.shifts.MarkSynced(shift.ID, serverID); err != nil {
		return false, 0, err
	}
	serverIDs[shiftID] = serverID
	result.SyncedShifts++
	*itemsSynced++
	logrus.Infof("[SyncEngine] Inline shift sync resolved shift %d -> server id %d", shiftID, serverID)
	return true, serverID, nil
}

func (e *Engine) shiftStillOpen(shiftID int64) (bool, error) {
	shift, err := e.shifts.GetByID(shiftID)
	if err != nil {
		return false, err
	}
	return shift != nil && shift.Status == models.ShiftStatusOpen, nil
}
