package domain

// Profile is the account profile returned by the backend. Doctor-only
// fields are nil for patients.
type Profile struct {
	Name         string
	Email        string
	MobileNumber string
	Role         Role
	Gender       string
	DOB          string
	Image        string

	Speciality *string
	Fee        *int
	City       *string
	Address    *string
}

// Doctor is a provider returned by discovery queries.
type Doctor struct {
	ID         string
	Name       string
	Speciality string
	Fee        int
	City       string
	Address    string
	Latitude   float64
	Longitude  float64
}
