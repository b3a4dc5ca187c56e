package models

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
)

// Session is what a successful login establishes. It is passed explicitly
// into every authorized operation.
type Session struct {
	Role     Role   `json:"role"`
	Course   string `json:"course"`
	UserID   string `json:"user_id"`
	FullName string `json:"fullname"`
}

func (s *Session) IsAdmin() bool {
	return s != nil && s.Role == RoleAdmin
}

func (s *Session) IsStudent() bool {
	return s != nil && s.Role == RoleStudent
}

// RoleFor assigns admin only to the reserved identity.
func RoleFor(course, userID string) Role {
	if IsAdminIdentity(course, userID) {
		return RoleAdmin
	}
	return RoleStudent
}
