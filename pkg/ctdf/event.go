package ctdf

import (
	"time"
)

type Event struct {
	Type      EventType
	Timestamp time.Time
	Body      interface{}
}

type EventType string

const (
	EventTypeArrivalsChanged        EventType = "ArrivalsChanged"
	EventTypeJourneyProgressChanged EventType = "JourneyProgressChanged"
	EventTypeNextStopChanged        EventType = "NextStopChanged"
	EventTypeStopChanged            EventType = "StopChanged"
	EventTypeStopMessagesChanged    EventType = "StopMessagesChanged"
	EventTypeStopsQueryChanged      EventType = "StopsQueryChanged"
	EventTypeDownloadStateChanged   EventType = "DownloadStateChanged"
	EventTypeDisplayTick            EventType = "DisplayTick"
)

// IsDisplayOnly reports whether the event only drives countdown animation and carries no new data
func (e *Event) IsDisplayOnly() bool {
	return e.Type == EventTypeDisplayTick
}
