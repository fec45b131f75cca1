package catalog

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Fetcher is the slice of the REST API the tree loader needs.
type Fetcher interface {
	ModulesByCourse(ctx context.Context, courseID string) ([]Module, error)
	LessonsByModule(ctx context.Context, moduleID string) ([]Lesson, error)
}

// ModuleNode is a module together with its loaded lessons.
type ModuleNode struct {
	Module
	Lessons []Lesson
}

// Tree is the assembled module/lesson hierarchy for one course.
type Tree struct {
	CourseID string
	Modules  []ModuleNode
}

// TotalLessons counts lessons across all modules.
func (t *Tree) TotalLessons() int {
	total := 0
	for _, mod := range t.Modules {
		total += len(mod.Lessons)
	}
	return total
}

// FlattenedLessonIDs returns every lesson ID in flattened order: modules
// sorted by order, then each module's lessons sorted by order. This is the
// order progress percentages are reconstructed against.
func (t *Tree) FlattenedLessonIDs() []string {
	ids := make([]string, 0, t.TotalLessons())
	for _, mod := range t.Modules {
		for _, lesson := range mod.Lessons {
			ids = append(ids, lesson.ID)
		}
	}
	return ids
}

// TreeLoader assembles course trees from the REST API.
type TreeLoader struct {
	fetcher Fetcher
	log     zerolog.Logger
}

// TreeLoaderOption defines a function type to modify the TreeLoader instance.
type TreeLoaderOption func(*TreeLoader)

// WithLogger sets the loader's logger.
func WithLogger(log zerolog.Logger) TreeLoaderOption {
	return func(tl *TreeLoader) {
		tl.log = log
	}
}

// NewTreeLoader initializes a TreeLoader over the given fetcher.
func NewTreeLoader(fetcher Fetcher, options ...TreeLoaderOption) (*TreeLoader, error) {
	if fetcher == nil {
		return nil, errors.New("[NewTreeLoader] fetcher is required")
	}

	loader := &TreeLoader{
		fetcher: fetcher,
		log:     zerolog.Nop(),
	}

	for _, opt := range options {
		opt(loader)
	}

	return loader, nil
}

// LoadCourseTree fetches a course's modules, then the lessons of every module
// concurrently. One module's lesson fetch failing degrades that module to an
// empty lesson list rather than aborting the load; only the module fetch
// itself is fatal. Modules and lessons come back stable-sorted by order.
func (tl *TreeLoader) LoadCourseTree(ctx context.Context, courseID string) (*Tree, error) {
	modules, err := tl.fetcher.ModulesByCourse(ctx, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "[TreeLoader.LoadCourseTree] ModulesByCourse")
	}

	nodes := make([]ModuleNode, len(modules))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, mod := range modules {
		nodes[i].Module = mod
		group.Go(func() error {
			lessons, err := tl.fetcher.LessonsByModule(groupCtx, mod.ID)
			if err != nil {
				// Partial-failure tolerance: one broken module must not
				// blank the whole course view.
				tl.log.Warn().
					Err(err).
					Str("module_id", mod.ID).
					Msg("lesson fetch failed, showing module without lessons")
				return nil
			}
			nodes[i].Lessons = lessons
			return nil
		})
	}
	_ = group.Wait() // goroutines never return errors

	sort.SliceStable(nodes, func(a, b int) bool {
		return nodes[a].Order < nodes[b].Order
	})
	for i := range nodes {
		lessons := nodes[i].Lessons
		sort.SliceStable(lessons, func(a, b int) bool {
			return lessons[a].Order < lessons[b].Order
		})
	}

	return &Tree{CourseID: courseID, Modules: nodes}, nil
}
