package arrivals

import (
	"context"
	"net/http"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/countdown/pkg/ctdf"
	"github.com/travigo/countdown/pkg/stations"
	"github.com/travigo/countdown/pkg/transport"
	"github.com/travigo/countdown/pkg/transport/transporttest"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond

	arrivalsRoute        = "ReturnList=LineName"
	stopDetailRoute      = "ReturnList=StopPointName,Towards"
	stopMessagesRoute    = "ReturnList=MessagePriority"
	journeyProgressRoute = "ReturnList=StopPointName,EstimatedTime"
	stopSearchRoute      = "ReturnList=StopPointName,StopCode1"

	versionOnly = `[4,"1.0",1000]`
)

type eventLog struct {
	mu     sync.Mutex
	events []ctdf.Event
}

func (l *eventLog) record(event ctdf.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events = append(l.events, event)
}

func (l *eventLog) count(eventType ctdf.EventType) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := 0
	for _, event := range l.events {
		if event.Type == eventType {
			count++
		}
	}

	return count
}

func (l *eventLog) last(eventType ctdf.EventType) (ctdf.Event, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := len(l.events) - 1; i >= 0; i-- {
		if l.events[i].Type == eventType {
			return l.events[i], true
		}
	}

	return ctdf.Event{}, false
}

type harness struct {
	tracker *Tracker
	client  *transporttest.Transport
	events  *eventLog
	cancel  context.CancelFunc
	done    chan error
	once    sync.Once
}

func startTracker(t *testing.T, client *transporttest.Transport, options Options) *harness {
	t.Helper()

	options.Transport = client
	if options.ArrivalsRefresh == 0 {
		options.ArrivalsRefresh = time.Hour
	}
	if options.JourneyRefresh == 0 {
		options.JourneyRefresh = time.Hour
	}
	if options.DisplayRefresh == 0 {
		options.DisplayRefresh = time.Hour
	}

	events := &eventLog{}
	tracker := NewTracker(options, events.record)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- tracker.Run(ctx)
	}()

	h := &harness{tracker: tracker, client: client, events: events, cancel: cancel, done: done}
	t.Cleanup(h.stop)

	return h
}

func (h *harness) stop() {
	h.once.Do(func() {
		h.cancel()
		select {
		case <-h.done:
		case <-time.After(waitFor):
		}
	})
}

// settle waits for every task queued on the tracker goroutine so far to complete
func (h *harness) settle(t *testing.T) {
	t.Helper()
	require.NoError(t, h.tracker.do(func() {}))
}

// gated holds responses until the gate is closed or the request context ends
func gated(gate <-chan struct{}, body string) transporttest.HandlerFunc {
	return func(ctx context.Context, requestURL string) (*transport.Response, error) {
		select {
		case <-gate:
			return transporttest.OK(requestURL, body), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func waterlooClient() *transporttest.Transport {
	client := transporttest.New()
	client.Respond(stopDetailRoute, versionOnly+"\n"+`[1,"Waterloo Station","STBR","Aldwych","N1",51.5035,-0.1143]`)
	client.Respond(stopMessagesRoute, versionOnly)
	client.Respond(arrivalsRoute, versionOnly+"\n"+`[1,"N1","5","Waterloo","LX07ABC",61000]`)

	return client
}

func TestTrackerArrivalsScenario(t *testing.T) {
	h := startTracker(t, waterlooClient(), Options{})

	require.NoError(t, h.tracker.SetCurrentStop("74640"))
	require.NoError(t, h.tracker.StartArrivalsUpdate())

	require.Eventually(t, func() bool { return h.tracker.Arrivals.Len() == 1 }, waitFor, tick)
	h.settle(t)

	assert.Equal(t, ctdf.Vehicle{
		ID:          "LX07ABC",
		Line:        "N1",
		Destination: "Waterloo",
		ETA:         1,
		Kind:        ctdf.VehicleKindBus,
	}, h.tracker.Arrivals.Items()[0])
	assert.Equal(t, "5", h.tracker.DirectionID())

	stop := h.tracker.CurrentStop()
	assert.Equal(t, "74640", stop.ID)
	assert.Equal(t, "Waterloo Station", stop.Name)
	assert.Equal(t, "Aldwych", stop.Towards)
	assert.Equal(t, "N1", stop.Indicator)
	assert.Equal(t, ctdf.StopKindBus, stop.Kind)

	assert.True(t, h.tracker.ArrivalsActive())
	assert.GreaterOrEqual(t, h.tracker.ArrivalsTimerProgress(), 0.0)
	assert.Less(t, h.tracker.ArrivalsTimerProgress(), 100.0)
	assert.False(t, h.tracker.DownloadState().Arrivals)

	event, ok := h.events.last(ctdf.EventTypeArrivalsChanged)
	require.True(t, ok)
	assert.Len(t, event.Body, 1)
	assert.Positive(t, h.events.count(ctdf.EventTypeStopChanged))

	require.NoError(t, h.tracker.StopArrivalsUpdate())
	assert.Equal(t, 0, h.tracker.Arrivals.Len())
	assert.False(t, h.tracker.ArrivalsActive())
	assert.Zero(t, h.tracker.ArrivalsTimerProgress())
}

func TestTrackerArrivalsWithoutStopKind(t *testing.T) {
	client := transporttest.New()
	h := startTracker(t, client, Options{})

	require.NoError(t, h.tracker.StartArrivalsUpdate())
	h.settle(t)

	assert.Empty(t, client.Requests())
	assert.True(t, h.tracker.ArrivalsActive())
}

func TestTrackerRiverStopArrivals(t *testing.T) {
	client := transporttest.New()
	client.Respond(stopDetailRoute, versionOnly+"\n"+`[1,"Westminster Pier","SLRS","Greenwich","",51.5013,-0.1234]`)
	client.Respond(stopMessagesRoute, versionOnly)
	client.Respond(arrivalsRoute, versionOnly+"\n"+`[1,"RB1","1","Greenwich","Hurricane Clipper",121000]`)
	h := startTracker(t, client, Options{})

	require.NoError(t, h.tracker.StartArrivalsUpdate())
	require.NoError(t, h.tracker.SetCurrentStop("930GWSM"))

	require.Eventually(t, func() bool { return h.tracker.Arrivals.Len() == 1 }, waitFor, tick)

	assert.Equal(t, ctdf.StopKindRiver, h.tracker.CurrentStop().Kind)
	vehicle := h.tracker.Arrivals.Items()[0]
	assert.Equal(t, ctdf.VehicleKindBoat, vehicle.Kind)
	assert.Equal(t, 2, vehicle.ETA)
	assert.Equal(t, 1, client.RequestCount(arrivalsRoute))
}

func TestTrackerStopMidCycle(t *testing.T) {
	gate := make(chan struct{})
	client := transporttest.New()
	client.Respond(stopDetailRoute, versionOnly+"\n"+`[1,"Waterloo Station","STBR","Aldwych","N1",51.5035,-0.1143]`)
	client.Respond(stopMessagesRoute, versionOnly)
	client.Handle(arrivalsRoute, gated(gate, versionOnly+"\n"+`[1,"N1","5","Waterloo","LX07ABC",61000]`))
	h := startTracker(t, client, Options{})

	require.NoError(t, h.tracker.SetCurrentStop("74640"))
	require.Eventually(t, func() bool { return h.tracker.CurrentStop().Kind == ctdf.StopKindBus }, waitFor, tick)

	require.NoError(t, h.tracker.StartArrivalsUpdate())
	require.Eventually(t, func() bool { return client.RequestCount(arrivalsRoute) == 1 }, waitFor, tick)
	assert.True(t, h.tracker.DownloadState().Arrivals)

	require.NoError(t, h.tracker.StopArrivalsUpdate())
	assert.Equal(t, 0, h.tracker.Arrivals.Len())
	assert.False(t, h.tracker.DownloadState().Arrivals)

	require.NoError(t, h.tracker.SetCurrentStop("74641"))
	close(gate)

	assert.Never(t, func() bool { return h.tracker.Arrivals.Len() > 0 }, 200*time.Millisecond, tick)
	assert.Empty(t, h.tracker.DirectionID())
}

func TestTrackerStaleStopDetail(t *testing.T) {
	gate := make(chan struct{})
	client := transporttest.New()
	client.Handle("StopCode1=A1&"+stopDetailRoute, gated(gate, versionOnly+"\n"+`[1,"Old Stop","STBR","Nowhere","A",51.0,-0.1]`))
	client.Respond(stopDetailRoute, versionOnly+"\n"+`[1,"New Stop","STBR","Somewhere","B",51.1,-0.2]`)
	client.Respond(stopMessagesRoute, versionOnly)
	h := startTracker(t, client, Options{})

	require.NoError(t, h.tracker.SetCurrentStop("A1"))
	require.NoError(t, h.tracker.SetCurrentStop("B2"))
	require.Eventually(t, func() bool { return h.tracker.CurrentStop().Name == "New Stop" }, waitFor, tick)

	close(gate)

	assert.Never(t, func() bool { return h.tracker.CurrentStop().Name != "New Stop" }, 200*time.Millisecond, tick)
	assert.Equal(t, "B2", h.tracker.CurrentStop().ID)
}

func TestTrackerSkipsShortArrivalsRecords(t *testing.T) {
	var calls atomic.Int32
	responses := []string{
		versionOnly + "\n" + `[1,"N1","5","Waterloo","LX07ABC",61000]`,
		versionOnly + "\n" + `[1,"N1","5","Waterloo"]`,
		versionOnly + "\n" + `[1,"N1","5"` + "\n" + `[1,"N1","5","Waterloo","LX07ABC",61000]`,
		versionOnly + "\n" + `[1,"N1"]` + "\n" + `[1,"68","7","Euston","LJ08CVS",181000]`,
	}
	client := transporttest.New()
	client.Respond(stopDetailRoute, versionOnly+"\n"+`[1,"Waterloo Station","STBR","Aldwych","N1",51.5035,-0.1143]`)
	client.Respond(stopMessagesRoute, versionOnly)
	client.Handle(arrivalsRoute, func(ctx context.Context, requestURL string) (*transport.Response, error) {
		call := int(calls.Add(1)) - 1
		return transporttest.OK(requestURL, responses[call]), nil
	})
	h := startTracker(t, client, Options{})

	require.NoError(t, h.tracker.SetCurrentStop("74640"))
	require.Eventually(t, func() bool { return h.tracker.CurrentStop().Kind == ctdf.StopKindBus }, waitFor, tick)

	fetch := func(expectedCalls int) {
		require.NoError(t, h.tracker.StartArrivalsUpdate())
		require.Eventually(t, func() bool {
			return client.RequestCount(arrivalsRoute) == expectedCalls && !h.tracker.DownloadState().Arrivals
		}, waitFor, tick)
		h.settle(t)
	}

	fetch(1)
	require.Equal(t, 1, h.tracker.Arrivals.Len())

	// Only short records: the previous arrivals stay
	fetch(2)
	require.Equal(t, 1, h.tracker.Arrivals.Len())
	assert.Equal(t, "LX07ABC", h.tracker.Arrivals.Items()[0].ID)

	// A malformed line aborts the cycle
	fetch(3)
	require.Equal(t, 1, h.tracker.Arrivals.Len())
	assert.Equal(t, "LX07ABC", h.tracker.Arrivals.Items()[0].ID)

	// Short records are skipped, valid ones are kept
	fetch(4)
	require.Equal(t, 1, h.tracker.Arrivals.Len())
	assert.Equal(t, "LJ08CVS", h.tracker.Arrivals.Items()[0].ID)
	assert.Equal(t, 3, h.tracker.Arrivals.Items()[0].ETA)
	assert.Equal(t, "7", h.tracker.DirectionID())
}

func TestTrackerTransportFailureKeepsPolling(t *testing.T) {
	client := transporttest.New()
	client.Respond(stopDetailRoute, versionOnly+"\n"+`[1,"Waterloo Station","STBR","Aldwych","N1",51.5035,-0.1143]`)
	client.Respond(stopMessagesRoute, versionOnly)
	client.Handle(arrivalsRoute, func(ctx context.Context, requestURL string) (*transport.Response, error) {
		return transporttest.Status(requestURL, http.StatusServiceUnavailable, ""), nil
	})
	h := startTracker(t, client, Options{ArrivalsRefresh: 20 * time.Millisecond})

	require.NoError(t, h.tracker.SetCurrentStop("74640"))
	require.NoError(t, h.tracker.StartArrivalsUpdate())

	require.Eventually(t, func() bool { return client.RequestCount(arrivalsRoute) >= 3 }, waitFor, tick)
	assert.Equal(t, 0, h.tracker.Arrivals.Len())
	assert.True(t, h.tracker.ArrivalsActive())
}

func TestTrackerStopMessages(t *testing.T) {
	client := transporttest.New()
	client.Respond(stopDetailRoute, versionOnly+"\n"+`[1,"Waterloo Station","STBR","Aldwych","N1",51.5035,-0.1143]`)
	client.Respond(stopMessagesRoute, versionOnly+"\n"+
		`[2,2,"Second",0,2000]`+"\n"+
		`[2,0,"First",500,1500]`+"\n"+
		`[2,1,"Expired",0,999]`+"\n"+
		`[2,7,"Hidden",0,2000]`+"\n"+
		`[2,1]`)
	h := startTracker(t, client, Options{})

	require.NoError(t, h.tracker.SetCurrentStop("74640"))
	require.Eventually(t, func() bool { return h.tracker.CurrentStopMessages() != "" }, waitFor, tick)

	assert.Equal(t, " * First * Second", h.tracker.CurrentStopMessages())

	require.NoError(t, h.tracker.ClearCurrentStop())
	assert.Equal(t, "", h.tracker.CurrentStopMessages())
	assert.Equal(t, ctdf.Stop{}, h.tracker.CurrentStop())
}

func TestTrackerJourneyProgress(t *testing.T) {
	client := waterlooClient()
	client.Respond(journeyProgressRoute, versionOnly+"\n"+
		`[1,"Aldwych",121000]`+"\n"+
		`[1,"Strand",181000]`)
	h := startTracker(t, client, Options{})

	require.NoError(t, h.tracker.SetCurrentStop("74640"))
	require.NoError(t, h.tracker.StartArrivalsUpdate())
	require.Eventually(t, func() bool { return h.tracker.DirectionID() == "5" }, waitFor, tick)

	require.NoError(t, h.tracker.SetCurrentVehicle("LX07ABC", "N1", "Waterloo"))
	require.NoError(t, h.tracker.StartJourneyProgressUpdate())

	require.Eventually(t, func() bool { return h.tracker.NextStop() == "Aldwych" }, waitFor, tick)

	requests := h.tracker.options.Requests
	assert.Equal(t, 1, client.RequestCount(requests.JourneyProgress("LX07ABC", "5")))
	assert.Equal(t, []JourneyProgressRow{
		{StopName: "Aldwych", ETA: 2},
		{StopName: "Strand", ETA: 3},
	}, h.tracker.JourneyProgressRows())
	assert.Equal(t, VehicleSelection{ID: "LX07ABC", Line: "N1", Destination: "Waterloo"}, h.tracker.CurrentVehicle())
	assert.True(t, h.tracker.JourneyProgressActive())

	h.settle(t)
	event, ok := h.events.last(ctdf.EventTypeNextStopChanged)
	require.True(t, ok)
	assert.Equal(t, "Aldwych", event.Body)

	require.NoError(t, h.tracker.StopJourneyProgressUpdate())
	assert.Equal(t, "", h.tracker.NextStop())
	assert.Equal(t, VehicleSelection{}, h.tracker.CurrentVehicle())
	assert.Equal(t, "", h.tracker.DirectionID())
	assert.False(t, h.tracker.JourneyProgressActive())
}

func TestTrackerSwitchingVehicleClearsJourneyProgress(t *testing.T) {
	client := transporttest.New()
	client.Respond(journeyProgressRoute, versionOnly+"\n"+`[1,"Aldwych",121000]`)
	h := startTracker(t, client, Options{})

	require.NoError(t, h.tracker.SetCurrentVehicle("LX07ABC", "N1", "Waterloo"))
	require.NoError(t, h.tracker.StartJourneyProgressUpdate())
	require.Eventually(t, func() bool { return h.tracker.NextStop() == "Aldwych" }, waitFor, tick)

	require.NoError(t, h.tracker.SetCurrentVehicle("LX07ABC", "N1", "Aldwych"))
	assert.Equal(t, "Aldwych", h.tracker.NextStop())
	assert.Len(t, h.tracker.JourneyProgressRows(), 1)

	require.NoError(t, h.tracker.SetCurrentVehicle("LJ10XYZ", "N1", "Waterloo"))
	assert.Equal(t, "", h.tracker.NextStop())
	assert.Empty(t, h.tracker.JourneyProgressRows())
	assert.True(t, h.tracker.JourneyProgressActive())

	h.settle(t)
	event, ok := h.events.last(ctdf.EventTypeNextStopChanged)
	require.True(t, ok)
	assert.Equal(t, "", event.Body)
}

func TestTrackerStopMessagesAreNeverCached(t *testing.T) {
	mr := miniredis.RunT(t)
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { redisClient.Close() })

	var calls atomic.Int32
	client := transporttest.New()
	client.Respond(stopDetailRoute, versionOnly+"\n"+`[1,"Waterloo Station","STBR","Aldwych","N1",51.5035,-0.1143]`)
	client.Handle(stopMessagesRoute, func(ctx context.Context, requestURL string) (*transport.Response, error) {
		if calls.Add(1) == 1 {
			return transporttest.OK(requestURL, versionOnly+"\n"+`[2,1,"Lifts out of service",0,2000]`), nil
		}

		return transporttest.OK(requestURL, `[4,"1.0",3000]`+"\n"+`[2,1,"Lifts out of service",0,2000]`), nil
	})

	h := startTracker(t, client, Options{
		MetadataTransport: transport.NewRedisCachingTransport(client, redisClient, time.Minute),
	})

	require.NoError(t, h.tracker.SetCurrentStop("74640"))
	require.Eventually(t, func() bool {
		return h.tracker.CurrentStopMessages() == " * Lifts out of service" && h.tracker.CurrentStop().Name != ""
	}, waitFor, tick)

	require.NoError(t, h.tracker.SetCurrentStop("74640"))
	require.Eventually(t, func() bool { return client.RequestCount(stopMessagesRoute) == 2 }, waitFor, tick)
	require.Eventually(t, func() bool { return h.tracker.CurrentStopMessages() == "" }, waitFor, tick)

	// Stop detail is still answered from the cache
	assert.Equal(t, 1, client.RequestCount(stopDetailRoute))
}

func TestTrackerEmptyJourneyProgressIsNoUpdate(t *testing.T) {
	var calls atomic.Int32
	client := transporttest.New()
	client.Handle(journeyProgressRoute, func(ctx context.Context, requestURL string) (*transport.Response, error) {
		if calls.Add(1) == 1 {
			return transporttest.OK(requestURL, versionOnly+"\n"+`[1,"Aldwych",121000]`), nil
		}
		return transporttest.OK(requestURL, versionOnly), nil
	})
	h := startTracker(t, client, Options{})

	require.NoError(t, h.tracker.SetCurrentVehicle("LX07ABC", "N1", "Waterloo"))
	require.NoError(t, h.tracker.StartJourneyProgressUpdate())
	require.Eventually(t, func() bool { return h.tracker.NextStop() == "Aldwych" }, waitFor, tick)

	require.NoError(t, h.tracker.StartJourneyProgressUpdate())
	require.Eventually(t, func() bool {
		return client.RequestCount(journeyProgressRoute) == 2 && !h.tracker.DownloadState().JourneyProgress
	}, waitFor, tick)
	h.settle(t)

	assert.Equal(t, "Aldwych", h.tracker.NextStop())
}

func TestTrackerJourneyProgressNeedsVehicle(t *testing.T) {
	client := transporttest.New()
	h := startTracker(t, client, Options{})

	require.NoError(t, h.tracker.StartJourneyProgressUpdate())

	assert.Empty(t, client.Requests())
	assert.False(t, h.tracker.JourneyProgressActive())
}

func TestTrackerDisplayTicks(t *testing.T) {
	h := startTracker(t, waterlooClient(), Options{DisplayRefresh: 5 * time.Millisecond})

	require.NoError(t, h.tracker.StartArrivalsUpdate())
	require.Eventually(t, func() bool { return h.events.count(ctdf.EventTypeDisplayTick) >= 3 }, waitFor, tick)

	require.NoError(t, h.tracker.StopArrivalsUpdate())
	h.settle(t)
	ticks := h.events.count(ctdf.EventTypeDisplayTick)

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, ticks, h.events.count(ctdf.EventTypeDisplayTick))
}

func TestTrackerStopped(t *testing.T) {
	h := startTracker(t, transporttest.New(), Options{})
	h.stop()

	assert.ErrorIs(t, h.tracker.StartArrivalsUpdate(), ErrTrackerStopped)
	assert.ErrorIs(t, h.tracker.SetCurrentStop("74640"), ErrTrackerStopped)
	assert.Error(t, h.tracker.Run(context.Background()))
}

const testStationsCSV = `code,name,latitude,longitude
940GZZLUWLO,Waterloo Underground Station,51.503299,-0.11478
940GZZLUBNK,Bank Underground Station,51.513347,-0.089001
`

func openStationsStore(t *testing.T) stations.Store {
	t.Helper()

	store, err := stations.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "countdown.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestTrackerStationsDownloadAndFavourites(t *testing.T) {
	client := transporttest.New()
	client.Handle("github.com", func(ctx context.Context, requestURL string) (*transport.Response, error) {
		return transporttest.Redirect(requestURL, http.StatusFound, "https://objects.example.com/stations.csv"), nil
	})
	client.Respond("objects.example.com", testStationsCSV)

	store := openStationsStore(t)
	h := startTracker(t, client, Options{
		Stations:     store,
		StationsPath: filepath.Join(t.TempDir(), "data", "stations.csv"),
	})

	require.NoError(t, h.tracker.SetStopsQuery(stations.CategoryStation))
	require.Eventually(t, func() bool { return h.tracker.Stops.Len() == 2 }, waitFor, tick)

	assert.Equal(t, stations.CategoryStation, h.tracker.StopsCategory())
	assert.Equal(t, "Bank Underground Station", h.tracker.Stops.Items()[0].Name)
	assert.Equal(t, 1, client.RequestCount("github.com"))
	assert.Equal(t, 1, client.RequestCount("objects.example.com"))

	require.NoError(t, h.tracker.FavourStop(context.Background(), "940GZZLUWLO", true))
	favourite, err := h.tracker.IsStopFavourite(context.Background(), "940GZZLUWLO")
	require.NoError(t, err)
	assert.True(t, favourite)

	require.NoError(t, h.tracker.SetStopsQuery(stations.CategoryFavourite))
	require.Eventually(t, func() bool { return h.tracker.Stops.Len() == 1 }, waitFor, tick)
	assert.Equal(t, "940GZZLUWLO", h.tracker.Stops.Items()[0].ID)

	require.NoError(t, h.tracker.FavourStop(context.Background(), "940GZZLUWLO", false))
	require.Eventually(t, func() bool { return h.tracker.Stops.Len() == 0 }, waitFor, tick)

	// Stations are only downloaded once
	assert.Equal(t, 1, client.RequestCount("github.com"))
}

const stopSearchResponse = versionOnly + "\n" +
	`[1,"Waterloo Station","74640","STBR","Aldwych","N1",51.5035,-0.1143]` + "\n" +
	`[1,"Hammersmith Bus Station",null,"STBS","","",51.49,-0.22]` + "\n" +
	`[1,"Waterloo Taxi Rank","99999","TXR","","",51.50,-0.11]` + "\n" +
	`[1,"Waterloo Pier","930GWAL","SLRS","Greenwich","",51.5039,-0.1199]` + "\n" +
	`[1,"Short"]`

func TestTrackerSearchStopsWithStore(t *testing.T) {
	client := transporttest.New()
	client.Respond(stopSearchRoute, stopSearchResponse)
	client.Respond("github.com", testStationsCSV)

	store := openStationsStore(t)
	h := startTracker(t, client, Options{
		Stations:     store,
		StationsPath: filepath.Join(t.TempDir(), "stations.csv"),
	})

	require.NoError(t, h.tracker.SetStopsQuery(stations.CategoryRiver))
	require.NoError(t, h.tracker.SearchStops("Waterloo"))

	require.Eventually(t, func() bool { return h.tracker.Stops.Len() == 1 }, waitFor, tick)
	assert.Equal(t, "930GWAL", h.tracker.Stops.Items()[0].ID)
	assert.Equal(t, ctdf.StopKindRiver, h.tracker.Stops.Items()[0].Kind)
	assert.False(t, h.tracker.DownloadState().Stops)

	bus, err := store.QueryStops(context.Background(), stations.CategoryBus)
	require.NoError(t, err)
	require.Len(t, bus, 1)
	assert.Equal(t, "74640", bus[0].ID)
}

func TestTrackerSearchStopsWithoutStore(t *testing.T) {
	client := transporttest.New()
	client.Respond(stopSearchRoute, stopSearchResponse)
	h := startTracker(t, client, Options{})

	require.NoError(t, h.tracker.SearchStops("Waterloo"))
	require.Eventually(t, func() bool { return h.tracker.Stops.Len() == 2 }, waitFor, tick)

	assert.Equal(t, "74640", h.tracker.Stops.Items()[0].ID)
	assert.Equal(t, "930GWAL", h.tracker.Stops.Items()[1].ID)

	assert.ErrorIs(t, h.tracker.SetStopsQuery(stations.CategoryAll), ErrNoStationsStore)
	_, err := h.tracker.IsStopFavourite(context.Background(), "74640")
	assert.ErrorIs(t, err, ErrNoStationsStore)
}
