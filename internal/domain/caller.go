package domain

// Role of the user acting on a booking
type Role string

const (
	RoleStudent    Role = "student"
	RoleInstructor Role = "instructor"
	RoleAdmin      Role = "admin"
)

// IsValid returns true for known roles
func (r Role) IsValid() bool {
	return r == RoleStudent || r == RoleInstructor || r == RoleAdmin
}

// Caller identifies who performs an operation
type Caller struct {
	UserID int64
	Role   Role
}

// IsStudent returns true when the caller acts as a student
func (c Caller) IsStudent() bool {
	return c.Role == RoleStudent
}

// IsStaff returns true for instructors and admins
func (c Caller) IsStaff() bool {
	return c.Role == RoleInstructor || c.Role == RoleAdmin
}
