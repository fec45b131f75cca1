package session

// Client route constants. All role-gated navigation targets are defined here
// to ensure consistency and prevent typos.
const (
	RouteLogin           = "/login"
	RouteAdminPanel      = "/adminPanel"
	RouteInstructorPanel = "/instructorPanel"
	RouteStudentPanel    = "/studentPanel"
)

// HomePath returns the landing route for a role. Anything that is not an
// admin or instructor lands on the student panel.
func HomePath(role Role) string {
	switch role {
	case RoleAdmin:
		return RouteAdminPanel
	case RoleInstructor:
		return RouteInstructorPanel
	default:
		return RouteStudentPanel
	}
}
