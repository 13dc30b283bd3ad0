package ctdf

// Vehicle is one predicted arrival at the current stop. For buses ID is the registration number.
type Vehicle struct {
	ID          string
	Line        string
	Destination string

	// ETA is in whole minutes relative to the server clock, negative when overdue
	ETA int

	Towards  string
	Platform string

	Kind VehicleKind
}
