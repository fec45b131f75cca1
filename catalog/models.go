package catalog

// ContentType identifies what a lesson holds.
type ContentType string

const (
	ContentVideo   ContentType = "video"
	ContentText    ContentType = "text"
	ContentProject ContentType = "project"
)

// Course is owned by an instructor; read-only from this client for students
// and admins.
type Course struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	CategoryID   string `json:"category_id,omitempty"`
	InstructorID string `json:"instructor_id,omitempty"`
}

// Module is an ordered section within a course. Order is a display sort key;
// ties keep their original fetch order.
type Module struct {
	ID          string `json:"id"`
	CourseID    string `json:"course_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Order       int    `json:"order"`
}

// Lesson is a child of a module, with the same ordering contract.
type Lesson struct {
	ID              string      `json:"id"`
	ModuleID        string      `json:"module_id"`
	Title           string      `json:"title"`
	ContentType     ContentType `json:"content_type"`
	ContentURL      string      `json:"content_url,omitempty"`
	ContentText     string      `json:"content_text,omitempty"`
	DurationMinutes int         `json:"duration,omitempty"`
	Order           int         `json:"order"`
}
