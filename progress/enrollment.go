package progress

import "context"

// Enrollment links a viewer to a course with a stored completion percentage.
// The percentage is the sole persisted completion signal; which specific
// lessons were checked is reconstructed client-side, not stored.
type Enrollment struct {
	ID       string `json:"id"`
	UserID   string `json:"user_id"`
	CourseID string `json:"course_id"`
	Progress int    `json:"progress"` // 0..100
}

// EnrollmentAPI is the slice of the REST API the tracker needs.
type EnrollmentAPI interface {
	// EnrollmentByID fetches one enrollment, or nil when the id does not
	// name an enrollment.
	EnrollmentByID(ctx context.Context, id string) (*Enrollment, error)
	// EnrollmentsByUser fetches all of a viewer's enrollments.
	EnrollmentsByUser(ctx context.Context, userID string) ([]Enrollment, error)
	// SaveProgress PATCHes an absolute completion percentage.
	SaveProgress(ctx context.Context, enrollmentID string, percent int) error
}
