package ura

import (
	"fmt"

	"github.com/travigo/countdown/pkg/ctdf"
)

// Minimum data array lengths for each response kind
const (
	ArrivalFields         = 6
	StopDetailFields      = 7
	StopListFields        = 8
	MessageFields         = 5
	JourneyProgressFields = 3
)

type ArityError struct {
	Mapper string
	Want   int
	Got    int
}

func (e *ArityError) Error() string {
	return fmt.Sprintf("%s record has %d fields, needs at least %d", e.Mapper, e.Got, e.Want)
}

func checkArity(mapper string, record Record, want int) error {
	if record.Len() < want {
		return &ArityError{Mapper: mapper, Want: want, Got: record.Len()}
	}

	return nil
}

// ListableStopTypes are the StopPointType codes shown in stop searches, as documented for the bus arrivals API
var ListableStopTypes = map[string]bool{
	"STBR": true,
	"STBC": true,
	"SRVA": true,
	"STZZ": true,
	"STBN": true,
	"SLRS": true,
	"STBS": true,
	"STSS": true,
}

type Arrival struct {
	Vehicle     ctdf.Vehicle
	DirectionID string

	// EstimatedTime is the predicted arrival as epoch milliseconds
	EstimatedTime float64
}

func MapArrival(record Record, serverTime float64) (Arrival, error) {
	if err := checkArity("arrival", record, ArrivalFields); err != nil {
		return Arrival{}, err
	}

	estimatedTime := record.Float(5)

	return Arrival{
		Vehicle: ctdf.Vehicle{
			Line:        record.String(1),
			Destination: record.String(3),
			ID:          record.String(4),
			ETA:         ETAMinutes(estimatedTime, serverTime),
			Kind:        ctdf.VehicleKindBus,
		},
		DirectionID:   record.Text(2),
		EstimatedTime: estimatedTime,
	}, nil
}

type StopDetail struct {
	Name      string
	TypeCode  string
	Towards   string
	Indicator string
	Latitude  float64
	Longitude float64
}

func MapStopDetail(record Record) (StopDetail, error) {
	if err := checkArity("stop detail", record, StopDetailFields); err != nil {
		return StopDetail{}, err
	}

	return StopDetail{
		Name:      record.String(1),
		TypeCode:  record.String(2),
		Towards:   record.String(3),
		Indicator: record.String(4),
		Latitude:  record.Float(5),
		Longitude: record.Float(6),
	}, nil
}

// ApplyTo updates the stop field by field, leaving its identity untouched
func (d StopDetail) ApplyTo(stop *ctdf.Stop) {
	stop.Name = d.Name
	stop.Towards = d.Towards
	stop.Indicator = d.Indicator
	stop.Latitude = d.Latitude
	stop.Longitude = d.Longitude
	stop.Kind = ctdf.StopKindFromTypeCode(d.TypeCode)
}

// MapStopListEntry returns ok=false for records that should be silently dropped: stop types
// outside ListableStopTypes and entries with a null stop code (multi stop stations such as
// Hammersmith Bus Station come back that way).
func MapStopListEntry(record Record) (ctdf.Stop, bool, error) {
	if err := checkArity("stop list", record, StopListFields); err != nil {
		return ctdf.Stop{}, false, err
	}

	typeCode := record.String(3)
	if !ListableStopTypes[typeCode] || record.IsNull(2) {
		return ctdf.Stop{}, false, nil
	}

	return ctdf.Stop{
		ID:        record.Text(2),
		Name:      record.String(1),
		Towards:   record.String(4),
		Indicator: record.String(5),
		Latitude:  record.Float(6),
		Longitude: record.Float(7),
		Kind:      ctdf.StopKindFromTypeCode(typeCode),
	}, true, nil
}

func MapMessage(record Record) (ctdf.StopMessage, error) {
	if err := checkArity("message", record, MessageFields); err != nil {
		return ctdf.StopMessage{}, err
	}

	return ctdf.StopMessage{
		Priority:    record.Int(1),
		Text:        record.String(2),
		ActiveFrom:  record.Float(3),
		ActiveUntil: record.Float(4),
	}, nil
}

func MapJourneyProgress(record Record) (ctdf.JourneyProgressEntry, error) {
	if err := checkArity("journey progress", record, JourneyProgressFields); err != nil {
		return ctdf.JourneyProgressEntry{}, err
	}

	return ctdf.JourneyProgressEntry{
		StopName: record.String(1),
		ETA:      record.Float(2),
	}, nil
}
