package ctdf

type JourneyProgressEntry struct {
	StopName string
	// ETA is the predicted arrival as epoch milliseconds
	ETA float64
}
