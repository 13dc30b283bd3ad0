package ctdf

type StopKind int

const (
	StopKindNone StopKind = iota
	StopKindBus
	StopKindRiver
)

func (k StopKind) String() string {
	switch k {
	case StopKindBus:
		return "Bus"
	case StopKindRiver:
		return "River"
	default:
		return "None"
	}
}

// RiverStopTypeCode is the StopPointType the countdown API uses for river bus piers
const RiverStopTypeCode = "SLRS"

// StopKindFromTypeCode classifies a StopPointType code. Only an exact match on the river code is River.
func StopKindFromTypeCode(code string) StopKind {
	if code == RiverStopTypeCode {
		return StopKindRiver
	}

	return StopKindBus
}

type Stop struct {
	ID        string
	Name      string
	Towards   string
	Indicator string

	Latitude  float64
	Longitude float64

	Kind StopKind

	Favourite bool
}

func (s *Stop) Clear() {
	*s = Stop{}
}
