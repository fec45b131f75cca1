package progress_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-lms-client/catalog"
	"github.com/jrsteele09/go-lms-client/progress"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

type savedCall struct {
	enrollmentID string
	percent      int
}

type fakeEnrollmentAPI struct {
	mu        sync.Mutex
	byID      map[string]*progress.Enrollment
	byIDErr   error
	byUser    map[string][]progress.Enrollment
	byUserErr error
	saves     []savedCall
	saveErr   error
	block     chan struct{} // when non-nil, SaveProgress waits on it after recording
}

func (fa *fakeEnrollmentAPI) EnrollmentByID(_ context.Context, id string) (*progress.Enrollment, error) {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	if fa.byIDErr != nil {
		return nil, fa.byIDErr
	}
	enr, ok := fa.byID[id]
	if !ok {
		return nil, nil
	}
	copied := *enr
	return &copied, nil
}

func (fa *fakeEnrollmentAPI) EnrollmentsByUser(_ context.Context, userID string) ([]progress.Enrollment, error) {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	if fa.byUserErr != nil {
		return nil, fa.byUserErr
	}
	return fa.byUser[userID], nil
}

func (fa *fakeEnrollmentAPI) SaveProgress(_ context.Context, enrollmentID string, percent int) error {
	fa.mu.Lock()
	fa.saves = append(fa.saves, savedCall{enrollmentID: enrollmentID, percent: percent})
	block := fa.block
	err := fa.saveErr
	fa.mu.Unlock()

	if block != nil {
		<-block
	}
	return err
}

func (fa *fakeEnrollmentAPI) saveCount() int {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	return len(fa.saves)
}

func (fa *fakeEnrollmentAPI) lastSave() savedCall {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	return fa.saves[len(fa.saves)-1]
}

// twoModuleTree builds the scenario tree: 2 modules with 3 and 2 lessons.
func twoModuleTree() *catalog.Tree {
	return &catalog.Tree{
		CourseID: "c1",
		Modules: []catalog.ModuleNode{
			{
				Module: catalog.Module{ID: "m1", CourseID: "c1", Order: 1},
				Lessons: []catalog.Lesson{
					{ID: "l1", ModuleID: "m1", Order: 1},
					{ID: "l2", ModuleID: "m1", Order: 2},
					{ID: "l3", ModuleID: "m1", Order: 3},
				},
			},
			{
				Module: catalog.Module{ID: "m2", CourseID: "c1", Order: 2},
				Lessons: []catalog.Lesson{
					{ID: "l4", ModuleID: "m2", Order: 1},
					{ID: "l5", ModuleID: "m2", Order: 2},
				},
			},
		},
	}
}

func newTracker(t *testing.T, api progress.EnrollmentAPI, options ...progress.TrackerOption) *progress.Tracker {
	t.Helper()
	tracker, err := progress.NewTracker(api, options...)
	require.NoError(t, err)
	return tracker
}

func TestResolveEnrollmentByID(t *testing.T) {
	api := &fakeEnrollmentAPI{
		byID: map[string]*progress.Enrollment{
			"e1": {ID: "e1", UserID: "u1", CourseID: "c1", Progress: 40},
		},
	}
	tracker := newTracker(t, api)

	enr, courseID := tracker.ResolveEnrollment(context.Background(), "u1", "e1")
	require.NotNil(t, enr)
	require.Equal(t, "e1", enr.ID)
	require.Equal(t, "c1", courseID)
	require.Equal(t, "c1", tracker.CourseID())
}

func TestResolveEnrollmentFallsBackToUserScan(t *testing.T) {
	api := &fakeEnrollmentAPI{
		byIDErr: errors.New("not an enrollment id"),
		byUser: map[string][]progress.Enrollment{
			"u1": {
				{ID: "e9", UserID: "u1", CourseID: "other", Progress: 10},
				{ID: "e1", UserID: "u1", CourseID: "c1", Progress: 40},
			},
		},
	}
	tracker := newTracker(t, api)

	enr, courseID := tracker.ResolveEnrollment(context.Background(), "u1", "c1")
	require.NotNil(t, enr)
	require.Equal(t, "e1", enr.ID)
	require.Equal(t, "c1", courseID)
}

func TestResolveEnrollmentPreviewFallback(t *testing.T) {
	api := &fakeEnrollmentAPI{
		byIDErr:   errors.New("down"),
		byUserErr: errors.New("also down"),
	}
	tracker := newTracker(t, api)

	enr, courseID := tracker.ResolveEnrollment(context.Background(), "u1", "c1")
	require.Nil(t, enr)
	require.Equal(t, "c1", courseID)
	require.Nil(t, tracker.Enrollment())
}

func TestEndToEndScenario(t *testing.T) {
	// 5 lessons, 40% stored: the first round(0.4*5)=2 flattened lessons are
	// derived complete. Checking a third lesson saves exactly one PATCH
	// with 60, and the baseline follows.
	api := &fakeEnrollmentAPI{
		byID: map[string]*progress.Enrollment{
			"e1": {ID: "e1", UserID: "u1", CourseID: "c1", Progress: 40},
		},
	}
	tracker := newTracker(t, api)

	tracker.ResolveEnrollment(context.Background(), "u1", "e1")
	tracker.SetTree(twoModuleTree())

	require.Equal(t, 2, tracker.CompletedCount())
	require.True(t, tracker.IsCompleted("l1"))
	require.True(t, tracker.IsCompleted("l2"))
	require.False(t, tracker.IsCompleted("l3"))

	tracker.ToggleLesson(context.Background(), "l3", true)
	tracker.Wait()

	require.Equal(t, 1, api.saveCount())
	require.Equal(t, savedCall{enrollmentID: "e1", percent: 60}, api.lastSave())
	require.Equal(t, 60, tracker.Enrollment().Progress)
	require.Equal(t, 60, tracker.Percent())
}

func TestToggleIdempotence(t *testing.T) {
	api := &fakeEnrollmentAPI{
		byID: map[string]*progress.Enrollment{
			"e1": {ID: "e1", UserID: "u1", CourseID: "c1", Progress: 40},
		},
	}
	tracker := newTracker(t, api)
	tracker.ResolveEnrollment(context.Background(), "u1", "e1")
	tracker.SetTree(twoModuleTree())

	tracker.ToggleLesson(context.Background(), "l3", true)
	tracker.Wait()
	tracker.ToggleLesson(context.Background(), "l3", false)
	tracker.Wait()

	// Check then uncheck restores the prior set, one save per percent change.
	require.Equal(t, 2, tracker.CompletedCount())
	require.False(t, tracker.IsCompleted("l3"))
	require.Equal(t, 2, api.saveCount())
	require.Equal(t, 40, api.lastSave().percent)
	require.Equal(t, 40, tracker.Enrollment().Progress)
}

func TestNoRedundantSaveWhenPercentUnchanged(t *testing.T) {
	// 300 lessons at 50% derive 150 complete. One extra toggle moves the
	// count to 151, which still rounds to 50%: zero PATCH calls.
	ids := lessonIDs(300)
	tree := &catalog.Tree{
		CourseID: "c1",
		Modules: []catalog.ModuleNode{{Module: catalog.Module{ID: "m1", Order: 1}}},
	}
	for i, id := range ids {
		tree.Modules[0].Lessons = append(tree.Modules[0].Lessons, catalog.Lesson{
			ID: id, ModuleID: "m1", Order: i,
		})
	}

	api := &fakeEnrollmentAPI{
		byID: map[string]*progress.Enrollment{
			"e1": {ID: "e1", UserID: "u1", CourseID: "c1", Progress: 50},
		},
	}
	tracker := newTracker(t, api)
	tracker.ResolveEnrollment(context.Background(), "u1", "e1")
	tracker.SetTree(tree)
	require.Equal(t, 150, tracker.CompletedCount())

	tracker.ToggleLesson(context.Background(), "l151", true)
	tracker.Wait()

	require.Equal(t, 151, tracker.CompletedCount())
	require.Zero(t, api.saveCount())
}

func TestNoSaveWithoutEnrollment(t *testing.T) {
	api := &fakeEnrollmentAPI{}
	tracker := newTracker(t, api)
	tracker.ResolveEnrollment(context.Background(), "u1", "c1") // preview mode
	tracker.SetTree(twoModuleTree())

	tracker.ToggleLesson(context.Background(), "l1", true)
	tracker.Wait()

	require.True(t, tracker.IsCompleted("l1"))
	require.Zero(t, api.saveCount())
}

func TestNoSaveOnEmptyCourse(t *testing.T) {
	api := &fakeEnrollmentAPI{
		byID: map[string]*progress.Enrollment{
			"e1": {ID: "e1", UserID: "u1", CourseID: "c1", Progress: 0},
		},
	}
	tracker := newTracker(t, api)
	tracker.ResolveEnrollment(context.Background(), "u1", "e1")
	tracker.SetTree(&catalog.Tree{CourseID: "c1"})

	tracker.ToggleLesson(context.Background(), "ghost", true)
	tracker.Wait()

	require.Zero(t, tracker.Percent())
	require.Zero(t, api.saveCount())
}

func TestSaveFailureKeepsLocalState(t *testing.T) {
	api := &fakeEnrollmentAPI{
		byID: map[string]*progress.Enrollment{
			"e1": {ID: "e1", UserID: "u1", CourseID: "c1", Progress: 40},
		},
		saveErr: errors.New("server error"),
	}
	tracker := newTracker(t, api, progress.WithStatusDelays(time.Minute, time.Minute))
	tracker.ResolveEnrollment(context.Background(), "u1", "e1")
	tracker.SetTree(twoModuleTree())

	tracker.ToggleLesson(context.Background(), "l3", true)
	tracker.Wait()

	require.Equal(t, progress.StatusFailed, tracker.Status())
	// The optimistic local state is not rolled back, and the baseline did
	// not move.
	require.True(t, tracker.IsCompleted("l3"))
	require.Equal(t, 40, tracker.Enrollment().Progress)
	require.Equal(t, 60, tracker.Percent())
}

func TestTransientStatusClears(t *testing.T) {
	api := &fakeEnrollmentAPI{
		byID: map[string]*progress.Enrollment{
			"e1": {ID: "e1", UserID: "u1", CourseID: "c1", Progress: 40},
		},
	}
	tracker := newTracker(t, api, progress.WithStatusDelays(10*time.Millisecond, 10*time.Millisecond))
	tracker.ResolveEnrollment(context.Background(), "u1", "e1")
	tracker.SetTree(twoModuleTree())

	tracker.ToggleLesson(context.Background(), "l3", true)
	tracker.Wait()
	require.Equal(t, progress.StatusSaved, tracker.Status())

	require.Eventually(t, func() bool {
		return tracker.Status() == progress.StatusIdle
	}, time.Second, 5*time.Millisecond)
}

func TestTogglesCoalesceWhileSaveInFlight(t *testing.T) {
	block := make(chan struct{})
	api := &fakeEnrollmentAPI{
		byID: map[string]*progress.Enrollment{
			"e1": {ID: "e1", UserID: "u1", CourseID: "c1", Progress: 40},
		},
		block: block,
	}
	tracker := newTracker(t, api)
	tracker.ResolveEnrollment(context.Background(), "u1", "e1")
	tracker.SetTree(twoModuleTree())

	tracker.ToggleLesson(context.Background(), "l3", true)
	require.Eventually(t, func() bool { return api.saveCount() == 1 }, time.Second, time.Millisecond)

	// Two more toggles land while the first save is stuck in flight.
	tracker.ToggleLesson(context.Background(), "l4", true)
	tracker.ToggleLesson(context.Background(), "l5", true)

	close(block)
	tracker.Wait()

	// The queued toggles collapse into a single follow-up save carrying the
	// latest percent, never one request per click.
	require.Equal(t, 2, api.saveCount())
	require.Equal(t, 100, api.lastSave().percent)
	require.Equal(t, 100, tracker.Enrollment().Progress)
}

func TestRefreshSkipsRederiveWithUnsavedToggles(t *testing.T) {
	block := make(chan struct{})
	api := &fakeEnrollmentAPI{
		byID: map[string]*progress.Enrollment{
			"e1": {ID: "e1", UserID: "u1", CourseID: "c1", Progress: 40},
		},
		block: block,
	}
	tracker := newTracker(t, api)
	tracker.ResolveEnrollment(context.Background(), "u1", "e1")
	tracker.SetTree(twoModuleTree())

	// The user checks lesson 5 (not part of the derived prefix) and the
	// save hangs in flight.
	tracker.ToggleLesson(context.Background(), "l5", true)
	require.Eventually(t, func() bool { return api.saveCount() == 1 }, time.Second, time.Millisecond)

	// A refresh landing mid-save must not stomp the unsaved toggle.
	require.NoError(t, tracker.RefreshEnrollment(context.Background()))
	require.True(t, tracker.IsCompleted("l5"))

	close(block)
	tracker.Wait()

	// Once settled, a refresh re-derives from the fresh baseline: 60% of 5
	// reconstructs the earliest-3 prefix, replacing the actual l5 toggle.
	// The lossy earliest-N reconstruction is by contract.
	api.mu.Lock()
	api.byID["e1"].Progress = 60
	api.mu.Unlock()
	require.NoError(t, tracker.RefreshEnrollment(context.Background()))
	require.True(t, tracker.IsCompleted("l3"))
	require.False(t, tracker.IsCompleted("l5"))
	require.Equal(t, 3, tracker.CompletedCount())
}
