package progress

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-lms-client/catalog"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// SaveStatus is the transient outcome indicator of the last progress save.
type SaveStatus int

const (
	StatusIdle SaveStatus = iota
	StatusSaved
	StatusFailed
)

func (s SaveStatus) String() string {
	switch s {
	case StatusSaved:
		return "saved"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Indicator timings carried over from the course viewer: a successful save
// shows "Saved" for 1.2s, a failure shows "Failed" for 2s.
const (
	defaultSavedStatusTTL  = 1200 * time.Millisecond
	defaultFailedStatusTTL = 2000 * time.Millisecond
)

// Tracker reconciles a course's lesson tree with the viewer's stored
// enrollment progress and keeps toggled completion state synchronized with
// the server with minimal write traffic.
//
// Toggles are local-first: the completion set reflects the user's click
// immediately and is never rolled back by a failed save. At most one save is
// in flight at a time; toggles landing while a save runs coalesce into a
// single follow-up save carrying the latest percentage.
type Tracker struct {
	api EnrollmentAPI
	log zerolog.Logger

	savedStatusTTL  time.Duration
	failedStatusTTL time.Duration

	mu         sync.Mutex
	cond       *sync.Cond
	flattened  []string
	completed  map[string]struct{}
	enrollment *Enrollment
	courseID   string
	saving     bool
	dirty      bool // percent moved while a save was in flight
	status     SaveStatus
	statusSeq  int // invalidates stale status-clear timers
}

// TrackerOption defines a function type to modify the Tracker instance.
type TrackerOption func(*Tracker)

// WithLogger sets the tracker's logger.
func WithLogger(log zerolog.Logger) TrackerOption {
	return func(t *Tracker) {
		t.log = log
	}
}

// WithStatusDelays overrides how long the Saved and Failed indicators linger
// (primarily for testing).
func WithStatusDelays(saved, failed time.Duration) TrackerOption {
	return func(t *Tracker) {
		t.savedStatusTTL = saved
		t.failedStatusTTL = failed
	}
}

// NewTracker initializes a Tracker over the enrollment API.
func NewTracker(api EnrollmentAPI, options ...TrackerOption) (*Tracker, error) {
	if api == nil {
		return nil, errors.New("[NewTracker] api is required")
	}

	tracker := &Tracker{
		api:             api,
		log:             zerolog.Nop(),
		savedStatusTTL:  defaultSavedStatusTTL,
		failedStatusTTL: defaultFailedStatusTTL,
		completed:       make(map[string]struct{}),
	}
	tracker.cond = sync.NewCond(&tracker.mu)

	for _, opt := range options {
		opt(tracker)
	}

	return tracker, nil
}

// ResolveEnrollment resolves the ambiguous route parameter into an enrollment
// and a course ID. The parameter may be an enrollment ID or a course ID:
// (a) try it as an enrollment ID; (b) failing that, scan the viewer's
// enrollments for a matching course ID; (c) failing that, there is no
// enrollment and the parameter is taken as a bare course ID for read-only
// preview. Every step tolerates failure independently.
func (t *Tracker) ResolveEnrollment(ctx context.Context, viewerUserID, routeParam string) (*Enrollment, string) {
	if enr, err := t.api.EnrollmentByID(ctx, routeParam); err != nil {
		t.log.Debug().Err(err).Str("param", routeParam).Msg("enrollment lookup by id failed")
	} else if enr != nil {
		t.adopt(enr, enr.CourseID)
		return enr, enr.CourseID
	}

	if viewerUserID != "" {
		if enrollments, err := t.api.EnrollmentsByUser(ctx, viewerUserID); err != nil {
			t.log.Debug().Err(err).Str("user_id", viewerUserID).Msg("enrollment lookup by user failed")
		} else {
			for i := range enrollments {
				if enrollments[i].CourseID == routeParam {
					enr := enrollments[i]
					t.adopt(&enr, enr.CourseID)
					return &enr, enr.CourseID
				}
			}
		}
	}

	// No enrollment anywhere: show the tree read-only, parameter is the
	// course ID.
	t.adopt(nil, routeParam)
	return nil, routeParam
}

func (t *Tracker) adopt(enr *Enrollment, courseID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.courseID = courseID
	t.applyEnrollmentLocked(enr)
}

// SetTree installs a freshly loaded lesson tree and re-derives the completion
// set against it from the current baseline percentage.
func (t *Tracker) SetTree(tree *catalog.Tree) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.flattened = tree.FlattenedLessonIDs()
	t.rederiveLocked()
}

// RefreshEnrollment re-fetches the enrollment from the server and re-derives
// the completion set from it. Re-derivation is keyed off this fresh fetch
// only; it never runs from a stale snapshot, and it is skipped while a local
// toggle has not yet round-tripped to the server.
func (t *Tracker) RefreshEnrollment(ctx context.Context) error {
	t.mu.Lock()
	if t.enrollment == nil {
		t.mu.Unlock()
		return errors.New("[Tracker.RefreshEnrollment] no enrollment to refresh")
	}
	id := t.enrollment.ID
	t.mu.Unlock()

	enr, err := t.api.EnrollmentByID(ctx, id)
	if err != nil {
		return errors.Wrap(err, "[Tracker.RefreshEnrollment] EnrollmentByID")
	}
	if enr == nil {
		return errors.New("[Tracker.RefreshEnrollment] enrollment no longer exists")
	}

	t.mu.Lock()
	t.applyEnrollmentLocked(enr)
	t.mu.Unlock()
	return nil
}

// applyEnrollmentLocked installs a freshly fetched enrollment as the new
// baseline. Caller holds t.mu.
func (t *Tracker) applyEnrollmentLocked(enr *Enrollment) {
	t.enrollment = enr
	t.rederiveLocked()
}

// rederiveLocked rebuilds the completion set from the baseline percentage,
// unless an unsaved local toggle would be stomped. Caller holds t.mu.
func (t *Tracker) rederiveLocked() {
	if t.saving || t.dirty {
		t.log.Debug().Msg("skipping completion re-derivation, local toggles not yet saved")
		return
	}
	percent := 0
	if t.enrollment != nil {
		percent = t.enrollment.Progress
	}
	t.completed = DeriveCompletion(percent, t.flattened)
}

// ToggleLesson applies a checkbox change. The local set mutates immediately;
// a save is scheduled only when the recomputed percentage differs from the
// server baseline, so a toggle that lands back on the stored percentage
// issues no network write at all.
func (t *Tracker) ToggleLesson(ctx context.Context, lessonID string, checked bool) {
	t.mu.Lock()
	if checked {
		t.completed[lessonID] = struct{}{}
	} else {
		delete(t.completed, lessonID)
	}

	if t.enrollment == nil || len(t.flattened) == 0 {
		// Read-only preview, or a course with no lessons; nothing to save.
		t.mu.Unlock()
		return
	}

	if t.saving {
		// The baseline is about to move; let the in-flight save's final
		// recheck decide whether a follow-up write is needed.
		t.dirty = true
		t.mu.Unlock()
		return
	}
	percent := PercentComplete(len(t.completed), len(t.flattened))
	if percent == t.enrollment.Progress {
		t.mu.Unlock()
		return
	}
	t.saving = true
	t.mu.Unlock()

	go t.saveLoop(ctx)
}

// saveLoop pushes the latest locally-computed percentage to the server,
// re-sending when the value moved again while a save was in flight. The
// percentage is always read at send time, so a late response can never
// install a staler value than the one it carried.
func (t *Tracker) saveLoop(ctx context.Context) {
	for {
		t.mu.Lock()
		percent := PercentComplete(len(t.completed), len(t.flattened))
		enrollmentID := t.enrollment.ID
		t.dirty = false
		t.mu.Unlock()

		err := t.api.SaveProgress(ctx, enrollmentID, percent)

		t.mu.Lock()
		if err != nil {
			t.log.Warn().Err(err).Int("percent", percent).Msg("progress save failed, keeping local state")
			t.setStatusLocked(StatusFailed)
		} else {
			// Only the baseline moves; the completed set stays exactly as
			// the user left it.
			t.enrollment.Progress = percent
			t.setStatusLocked(StatusSaved)
		}

		if t.dirty && PercentComplete(len(t.completed), len(t.flattened)) != t.enrollment.Progress {
			t.mu.Unlock()
			continue
		}
		t.dirty = false
		t.saving = false
		t.cond.Broadcast()
		t.mu.Unlock()
		return
	}
}

// setStatusLocked surfaces a transient save indicator and arms its clearing
// timer. Caller holds t.mu.
func (t *Tracker) setStatusLocked(status SaveStatus) {
	t.status = status
	t.statusSeq++
	seq := t.statusSeq

	ttl := t.savedStatusTTL
	if status == StatusFailed {
		ttl = t.failedStatusTTL
	}
	time.AfterFunc(ttl, func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		if t.statusSeq == seq {
			t.status = StatusIdle
		}
	})
}

// Wait blocks until no save is in flight. Intended for tests and for the CLI
// flushing before exit.
func (t *Tracker) Wait() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for t.saving {
		t.cond.Wait()
	}
}

// Status returns the current transient save indicator.
func (t *Tracker) Status() SaveStatus {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

// Pending reports whether a save is in flight or queued.
func (t *Tracker) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.saving || t.dirty
}

// Percent returns the completion percentage implied by the local set.
func (t *Tracker) Percent() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return PercentComplete(len(t.completed), len(t.flattened))
}

// Enrollment returns a copy of the current enrollment baseline, or nil in
// read-only preview mode.
func (t *Tracker) Enrollment() *Enrollment {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.enrollment == nil {
		return nil
	}
	enr := *t.enrollment
	return &enr
}

// CourseID returns the course the tracker resolved to.
func (t *Tracker) CourseID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.courseID
}

// IsCompleted reports whether a lesson is in the local completion set.
func (t *Tracker) IsCompleted(lessonID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.completed[lessonID]
	return ok
}

// CompletedCount returns the size of the local completion set.
func (t *Tracker) CompletedCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.completed)
}
