package domain

// Role differentiates patient vs doctor credentials.
type Role string

const (
	RolePatient Role = "PATIENT"
	RoleDoctor  Role = "DOCTOR"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RolePatient || r == RoleDoctor
}
