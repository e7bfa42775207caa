// Package domain contains entities without logic, just meta-data.
package domain

type Role string

const (
	RoleInstructor Role = "instructor"
	RoleStudent    Role = "student"
)

// Valid reports whether r is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleInstructor || r == RoleStudent
}

// Participant is one identity's membership record within a room.
// The connection handle lives with the registry, not here.
type Participant struct {
	UserID        string `json:"userId"`
	UserName      string `json:"userName"`
	Role          Role   `json:"role"`
	AudioEnabled  bool   `json:"audioEnabled"`
	VideoEnabled  bool   `json:"videoEnabled"`
	ScreenSharing bool   `json:"screenSharing"`
}
