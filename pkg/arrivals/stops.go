package arrivals

import (
	"context"

	"github.com/rs/zerolog/log"
	"github.com/travigo/countdown/pkg/ctdf"
	"github.com/travigo/countdown/pkg/stations"
	"github.com/travigo/countdown/pkg/transport"
	"github.com/travigo/countdown/pkg/ura"
)

// SearchStops looks up stops by name. Accepted stops are saved to the stations store and
// the current stop query is refreshed; without a store the results are shown as they are.
func (t *Tracker) SearchStops(name string) error {
	return t.do(func() {
		t.searchGeneration++
		generation := t.searchGeneration

		t.downloadingStops.Store(true)
		t.emitDownloadState()

		requestURL := t.options.Requests.StopsByName(name)

		t.request(t.options.MetadataTransport, requestURL, func(resp *transport.Response, err error) {
			if generation != t.searchGeneration {
				log.Debug().Str("name", name).Msg("Discarding superseded stop search")
				return
			}
			t.downloadingStops.Store(false)
			t.emitDownloadState()

			body, ok := responseBody("stop search", requestURL, resp, err)
			if !ok {
				return
			}

			t.applyStopSearch(body, name)
		})
	})
}

func (t *Tracker) applyStopSearch(body []byte, name string) {
	decoder := ura.NewDecoderBytes(body)

	if _, ok := decoder.Version(); !ok {
		log.Debug().Str("name", name).Msg("Stop search response has no version array, no update")
		return
	}

	var found []ctdf.Stop
	for decoder.Next() {
		record, err := decoder.Record()
		if err != nil {
			log.Warn().Err(err).Str("name", name).Msg("Malformed stop search response")
			return
		}

		stop, ok, err := ura.MapStopListEntry(record)
		if err != nil {
			log.Debug().Err(err).Str("name", name).Msg("Skipping stop search record")
			continue
		} else if !ok {
			continue
		}

		found = append(found, stop)
	}

	if err := decoder.Err(); err != nil {
		log.Warn().Err(err).Str("name", name).Msg("Failed to read stop search response")
		return
	}

	log.Debug().Str("name", name).Int("stops", len(found)).Msg("Stop search complete")

	if t.options.Stations == nil {
		t.queryGeneration++
		t.Stops.Replace(found)
		t.emit(ctdf.EventTypeStopsQueryChanged, t.Stops.Items())
		return
	}

	t.queryStops(func(ctx context.Context, store stations.Store) error {
		for _, stop := range found {
			if err := store.AddStop(ctx, stop); err != nil {
				return err
			}
		}

		return nil
	})
}

// SetStopsQuery shows one of the preset stop lists. The first time around the station
// reference list is downloaded and imported into the store.
func (t *Tracker) SetStopsQuery(category stations.Category) error {
	if t.options.Stations == nil {
		return ErrNoStationsStore
	}

	return t.do(func() {
		t.stopsCategory = category
		t.publish()

		t.queryStops(t.ensureStations)
	})
}

// FavourStop marks or unmarks a stop as a favourite and refreshes the current stop query
func (t *Tracker) FavourStop(ctx context.Context, code string, favourite bool) error {
	if t.options.Stations == nil {
		return ErrNoStationsStore
	}

	if err := t.options.Stations.SetFavourite(ctx, code, favourite); err != nil {
		return err
	}

	return t.do(func() {
		t.queryStops(nil)
	})
}

func (t *Tracker) IsStopFavourite(ctx context.Context, code string) (bool, error) {
	if t.options.Stations == nil {
		return false, ErrNoStationsStore
	}

	return t.options.Stations.IsFavourite(ctx, code)
}

// queryStops runs prepare and the current category query against the store off the tracker
// goroutine, then publishes the result unless a newer query has been issued since
func (t *Tracker) queryStops(prepare func(ctx context.Context, store stations.Store) error) {
	t.queryGeneration++
	generation := t.queryGeneration

	store := t.options.Stations
	category := t.stopsCategory
	ctx := t.ctx

	t.inflight.Go(func() {
		if prepare != nil {
			if err := prepare(ctx, store); err != nil {
				log.Error().Err(err).Msg("Failed to prepare stations store")
			}
		}

		stops, err := store.QueryStops(ctx, category)

		t.post(func() {
			if generation != t.queryGeneration {
				return
			}

			if err != nil {
				log.Error().Err(err).Str("category", string(category)).Msg("Failed to query stops")
				return
			}

			t.Stops.Replace(stops)
			t.emit(ctdf.EventTypeStopsQueryChanged, t.Stops.Items())
		})
	})
}

// ensureStations imports the station list when the store has none, downloading it first
// if there is no copy on disk
func (t *Tracker) ensureStations(ctx context.Context, store stations.Store) error {
	t.stationsImportLock.Lock()
	defer t.stationsImportLock.Unlock()

	hasStations, err := store.HasStations(ctx)
	if err != nil {
		return err
	}
	if hasStations {
		return nil
	}

	path := t.options.StationsPath
	if !stations.FileExists(path) {
		log.Info().Str("url", t.options.StationsURL).Str("path", path).Msg("Downloading station list")

		if err := stations.Download(ctx, t.options.Transport, t.options.StationsURL, path); err != nil {
			return err
		}
	}

	_, err = store.ImportStations(ctx, path)

	return err
}
