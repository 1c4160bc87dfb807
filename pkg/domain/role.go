package domain

// Role represents the caller's role within the hall.
type Role string

// Supported roles.
const (
	RoleStudent    Role = "student"
	RoleSupervisor Role = "supervisor"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleStudent || r == RoleSupervisor
}

// ActionClass partitions operations for capability checks.
type ActionClass string

// Operation classes.
const (
	// ActionAdmin covers structural mutations: block/floor/room CRUD,
	// adding, deleting, or moving students, and notice management.
	ActionAdmin ActionClass = "admin"
	// ActionSelfService covers a student editing the personal fields of
	// their own record.
	ActionSelfService ActionClass = "self-service"
	// ActionRead covers all queries.
	ActionRead ActionClass = "read"
)

// Allow is the capability predicate: supervisors may perform everything,
// students may read and patch only their own record. callerEmail and
// targetEmail are compared for self-service actions; the store itself never
// checks identity, callers gate mutations with this predicate.
func Allow(role Role, class ActionClass, callerEmail, targetEmail string) bool {
	if role == RoleSupervisor {
		return true
	}
	if role != RoleStudent {
		return false
	}
	switch class {
	case ActionRead:
		return true
	case ActionSelfService:
		return callerEmail != "" && callerEmail == targetEmail
	default:
		return false
	}
}
