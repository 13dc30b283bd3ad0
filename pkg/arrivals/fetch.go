package arrivals

import (
	"github.com/rs/zerolog/log"
	"github.com/travigo/countdown/pkg/ctdf"
	"github.com/travigo/countdown/pkg/transport"
	"github.com/travigo/countdown/pkg/ura"
)

// responseBody logs transport failures and non 2xx responses, ok is false for both
func responseBody(kind string, requestURL string, resp *transport.Response, err error) ([]byte, bool) {
	if err != nil {
		log.Warn().Err(err).Str("request", kind).Str("url", requestURL).Msg("Countdown request failed")
		return nil, false
	}

	if !resp.IsSuccess() {
		log.Warn().Str("request", kind).Str("url", requestURL).Int("status", resp.StatusCode).Msg("Countdown request returned an error status")
		return nil, false
	}

	return resp.Body, true
}

// fetchArrivals polls the current stop. River piers share the bus endpoint.
func (t *Tracker) fetchArrivals() {
	if t.currentStop.Kind == ctdf.StopKindNone {
		return
	}

	generation, ok := t.arrivals.begin()
	if !ok {
		log.Debug().Msg("Arrivals request still outstanding, skipping tick")
		return
	}
	t.emitDownloadState()

	stopCode := t.currentStop.ID
	stopKind := t.currentStop.Kind
	requestURL := t.options.Requests.Arrivals(stopCode)

	t.request(t.options.Transport, requestURL, func(resp *transport.Response, err error) {
		if !t.arrivals.finish(generation) {
			log.Debug().Str("stop", stopCode).Msg("Discarding superseded arrivals response")
			return
		}
		t.emitDownloadState()

		if stopCode != t.currentStop.ID {
			log.Debug().Str("stop", stopCode).Msg("Discarding arrivals for a stop no longer selected")
			return
		}

		body, ok := responseBody("arrivals", requestURL, resp, err)
		if !ok {
			return
		}

		t.applyArrivals(body, stopCode, stopKind)
	})
}

func (t *Tracker) applyArrivals(body []byte, stopCode string, stopKind ctdf.StopKind) {
	decoder := ura.NewDecoderBytes(body)

	version, ok := decoder.Version()
	if !ok {
		log.Debug().Str("stop", stopCode).Msg("Arrivals response has no version array, no update")
		return
	}
	serverTime := version.ServerTime()

	vehicles := []ctdf.Vehicle{}
	directionID := ""
	skipped := 0

	for decoder.Next() {
		record, err := decoder.Record()
		if err != nil {
			log.Warn().Err(err).Str("stop", stopCode).Msg("Malformed arrivals response, keeping previous arrivals")
			return
		}

		arrival, err := ura.MapArrival(record, serverTime)
		if err != nil {
			log.Debug().Err(err).Str("stop", stopCode).Msg("Skipping arrivals record")
			skipped++
			continue
		}

		if stopKind == ctdf.StopKindRiver {
			arrival.Vehicle.Kind = ctdf.VehicleKindBoat
		}

		vehicles = append(vehicles, arrival.Vehicle)
		directionID = arrival.DirectionID
	}

	if err := decoder.Err(); err != nil {
		log.Warn().Err(err).Str("stop", stopCode).Msg("Failed to read arrivals response")
		return
	}

	if len(vehicles) == 0 && skipped > 0 {
		log.Warn().Int("skipped", skipped).Str("stop", stopCode).Msg("No usable arrivals records, keeping previous arrivals")
		return
	}

	if len(vehicles) > 0 {
		t.directionID = directionID
		t.publish()
	}

	t.Arrivals.Replace(vehicles)
	t.arrivals.ready()

	log.Debug().Str("stop", stopCode).Int("vehicles", len(vehicles)).Str("direction", directionID).Msg("Arrivals updated")

	t.emit(ctdf.EventTypeArrivalsChanged, SortedByETA(vehicles))
}

// fetchJourneyProgress polls the stops ahead of the selected vehicle, filtered by the
// direction of the last arrival seen
func (t *Tracker) fetchJourneyProgress() {
	vehicleID := t.currentVehicle.ID
	if vehicleID == "" {
		return
	}

	generation, ok := t.journey.begin()
	if !ok {
		log.Debug().Msg("Journey progress request still outstanding, skipping tick")
		return
	}
	t.emitDownloadState()

	requestURL := t.options.Requests.JourneyProgress(vehicleID, t.directionID)

	t.request(t.options.Transport, requestURL, func(resp *transport.Response, err error) {
		if !t.journey.finish(generation) {
			log.Debug().Str("vehicle", vehicleID).Msg("Discarding superseded journey progress response")
			return
		}
		t.emitDownloadState()

		if vehicleID != t.currentVehicle.ID {
			log.Debug().Str("vehicle", vehicleID).Msg("Discarding journey progress for a vehicle no longer selected")
			return
		}

		body, ok := responseBody("journey progress", requestURL, resp, err)
		if !ok {
			return
		}

		t.applyJourneyProgress(body, vehicleID)
	})
}

func (t *Tracker) applyJourneyProgress(body []byte, vehicleID string) {
	decoder := ura.NewDecoderBytes(body)

	version, ok := decoder.Version()
	if !ok {
		log.Debug().Str("vehicle", vehicleID).Msg("Journey progress response has no version array, no update")
		return
	}

	var entries []ctdf.JourneyProgressEntry
	for decoder.Next() {
		record, err := decoder.Record()
		if err != nil {
			log.Warn().Err(err).Str("vehicle", vehicleID).Msg("Malformed journey progress response, keeping previous progress")
			return
		}

		entry, err := ura.MapJourneyProgress(record)
		if err != nil {
			log.Debug().Err(err).Str("vehicle", vehicleID).Msg("Skipping journey progress record")
			continue
		}

		entries = append(entries, entry)
	}

	if err := decoder.Err(); err != nil {
		log.Warn().Err(err).Str("vehicle", vehicleID).Msg("Failed to read journey progress response")
		return
	}

	// The API sometimes answers with no stops at all for a vehicle that is still running
	if len(entries) == 0 {
		log.Debug().Str("vehicle", vehicleID).Str("direction", t.directionID).Msg("Empty journey progress, no update")
		return
	}

	t.JourneyProgress.Replace(version.ServerTime(), entries)
	t.journey.ready()

	log.Debug().Str("vehicle", vehicleID).Int("stops", len(entries)).Msg("Journey progress updated")

	t.emit(ctdf.EventTypeJourneyProgressChanged, t.JourneyProgressRows())
	t.updateNextStop()
}

func (t *Tracker) updateNextStop() {
	nextStop := t.JourneyProgress.NextStop()
	if nextStop == t.nextStop {
		return
	}

	t.nextStop = nextStop
	log.Debug().Str("nextstop", nextStop).Msg("Next stop changed")
	t.emit(ctdf.EventTypeNextStopChanged, nextStop)
}

func (t *Tracker) fetchStopDetail() {
	stopCode := t.currentStop.ID
	if stopCode == "" {
		return
	}

	generation := t.stopGeneration
	t.downloadingStop.Store(true)
	t.emitDownloadState()

	requestURL := t.options.Requests.StopDetail(stopCode)

	t.request(t.options.MetadataTransport, requestURL, func(resp *transport.Response, err error) {
		if generation != t.stopGeneration || stopCode != t.currentStop.ID {
			log.Debug().Str("stop", stopCode).Msg("Discarding stop detail for a stop no longer selected")
			return
		}
		t.downloadingStop.Store(false)
		t.emitDownloadState()

		body, ok := responseBody("stop detail", requestURL, resp, err)
		if !ok {
			return
		}

		t.applyStopDetail(body)
	})
}

// applyStopDetail updates the current stop in place from the single stop record
func (t *Tracker) applyStopDetail(body []byte) {
	stopCode := t.currentStop.ID
	decoder := ura.NewDecoderBytes(body)

	if _, ok := decoder.Version(); !ok {
		log.Debug().Str("stop", stopCode).Msg("Stop detail response has no version array, no update")
		return
	}

	if !decoder.Next() {
		log.Debug().Str("stop", stopCode).Msg("Stop detail response has no stop, no update")
		return
	}

	record, err := decoder.Record()
	if err != nil {
		log.Warn().Err(err).Str("stop", stopCode).Msg("Malformed stop detail response")
		return
	}

	detail, err := ura.MapStopDetail(record)
	if err != nil {
		log.Warn().Err(err).Str("stop", stopCode).Msg("Unusable stop detail record")
		return
	}

	previousKind := t.currentStop.Kind
	detail.ApplyTo(&t.currentStop)
	t.publish()

	log.Debug().Str("stop", stopCode).Str("name", t.currentStop.Name).Str("kind", t.currentStop.Kind.String()).Msg("Stop detail updated")

	t.emit(ctdf.EventTypeStopChanged, t.CurrentStop())

	// Arrivals polling started before the stop type was known has had nothing to fetch yet
	if previousKind == ctdf.StopKindNone && t.arrivals.active() {
		t.fetchArrivals()
	}
}

func (t *Tracker) fetchStopMessages() {
	stopCode := t.currentStop.ID
	if stopCode == "" {
		return
	}

	generation := t.stopGeneration
	requestURL := t.options.Requests.StopMessages(stopCode)

	t.request(t.options.Transport, requestURL, func(resp *transport.Response, err error) {
		if generation != t.stopGeneration || stopCode != t.currentStop.ID {
			log.Debug().Str("stop", stopCode).Msg("Discarding messages for a stop no longer selected")
			return
		}

		body, ok := responseBody("stop messages", requestURL, resp, err)
		if !ok {
			return
		}

		t.applyStopMessages(body, stopCode)
	})
}

func (t *Tracker) applyStopMessages(body []byte, stopCode string) {
	decoder := ura.NewDecoderBytes(body)

	version, ok := decoder.Version()
	if !ok {
		log.Debug().Str("stop", stopCode).Msg("Stop messages response has no version array, no update")
		return
	}

	var messages []ctdf.StopMessage
	skipped := 0

	for decoder.Next() {
		record, err := decoder.Record()
		if err != nil {
			log.Warn().Err(err).Str("stop", stopCode).Msg("Malformed stop messages response, keeping previous messages")
			return
		}

		message, err := ura.MapMessage(record)
		if err != nil {
			log.Debug().Err(err).Str("stop", stopCode).Msg("Skipping stop message record")
			skipped++
			continue
		}

		messages = append(messages, message)
	}

	if err := decoder.Err(); err != nil {
		log.Warn().Err(err).Str("stop", stopCode).Msg("Failed to read stop messages response")
		return
	}

	if len(messages) == 0 && skipped > 0 {
		log.Warn().Int("skipped", skipped).Str("stop", stopCode).Msg("No usable stop messages, keeping previous messages")
		return
	}

	t.messages = FilterMessages(messages, version.ServerTime()).Format(t.options.MessagePriorityCeiling)
	t.publish()

	t.emit(ctdf.EventTypeStopMessagesChanged, t.messages)
}
