package ctdf

// StopMessage is a service message shown at a stop. ActiveFrom and ActiveUntil are epoch milliseconds.
type StopMessage struct {
	Priority int
	Text     string

	ActiveFrom  float64
	ActiveUntil float64
}

func (m StopMessage) IsActive(serverTime float64) bool {
	return m.ActiveFrom <= serverTime && serverTime <= m.ActiveUntil
}
