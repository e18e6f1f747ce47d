package profile

import (
	"github.com/darasahub/darasa/core"
)

// Roles
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

var AllRoles = []string{RoleStudent, RoleTeacher}

// Profile is the per-identity onboarding record, keyed 1:1 by the identity id.
// It is created on first onboarding submission and afterwards only editable by
// its owner; it is never deleted here.
type Profile struct {
	Name string `json:"name"`
	Age  int    `json:"age,omitempty"`
	Role string `json:"role"`
}

func (p Profile) IsTeacher() bool {
	return p.Role == RoleTeacher
}

func (p Profile) IsStudent() bool {
	return p.Role == RoleStudent
}

// NewProfile contains the onboarding submission.
type NewProfile struct {
	Name string `json:"name" validate:"required"`
	Age  int    `json:"age" validate:"gte=0"`
	Role string `json:"role" validate:"required,role"`
}

func (np *NewProfile) Validate() error {
	np.Name = core.CleanString(np.Name)
	np.Role = core.CleanString(np.Role, true /* lower */)
	return core.Validate.Struct(np)
}
