package arrivals

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/travigo/countdown/pkg/ctdf"
	"github.com/travigo/countdown/pkg/stations"
	"github.com/travigo/countdown/pkg/transport"
	"github.com/travigo/countdown/pkg/ura"
)

var (
	ErrTrackerStopped  = errors.New("tracker is not running")
	ErrNoStationsStore = errors.New("no stations store configured")
)

const (
	DefaultArrivalsRefresh = 30 * time.Second
	DefaultJourneyRefresh  = 30 * time.Second
	DefaultDisplayRefresh  = 16 * time.Millisecond
)

type Options struct {
	Requests ura.Requests

	// Transport serves the arrivals, journey progress and stop message polls
	Transport transport.Transport
	// MetadataTransport serves stop detail and stop searches, defaults to Transport. Messages
	// never go through it since their activity window is judged against the response time.
	MetadataTransport transport.Transport

	Stations     stations.Store
	StationsURL  string
	StationsPath string

	ArrivalsRefresh time.Duration
	JourneyRefresh  time.Duration
	DisplayRefresh  time.Duration

	// MessagePriorityCeiling is the highest message band shown, DefaultMessagePriorityCeiling when unset
	MessagePriorityCeiling int
}

func (o Options) withDefaults() Options {
	if o.MetadataTransport == nil {
		o.MetadataTransport = o.Transport
	}
	if o.StationsURL == "" {
		o.StationsURL = stations.DefaultStationsURL
	}
	if o.StationsPath == "" {
		o.StationsPath = "stations.csv"
	}
	if o.ArrivalsRefresh <= 0 {
		o.ArrivalsRefresh = DefaultArrivalsRefresh
	}
	if o.JourneyRefresh <= 0 {
		o.JourneyRefresh = DefaultJourneyRefresh
	}
	if o.DisplayRefresh <= 0 {
		o.DisplayRefresh = DefaultDisplayRefresh
	}
	if o.MessagePriorityCeiling <= 0 {
		o.MessagePriorityCeiling = DefaultMessagePriorityCeiling
	}

	return o
}

// Subscriber receives tracker events on the tracker goroutine. It must return quickly and
// must not call back into blocking Tracker methods.
type Subscriber func(event ctdf.Event)

type VehicleSelection struct {
	ID          string
	Line        string
	Destination string
}

type DownloadState struct {
	Arrivals        bool
	JourneyProgress bool
	Stop            bool
	Stops           bool
}

// published is what readers on other goroutines see of the loop owned state
type published struct {
	stop          ctdf.Stop
	vehicle       VehicleSelection
	directionID   string
	messages      string
	stopsCategory stations.Category
}

// Tracker polls the countdown API for one stop and one vehicle at a time. All of its state
// is owned by the goroutine in Run; the exported methods hand work to it and the containers
// are safe to read from anywhere.
type Tracker struct {
	options     Options
	subscribers []Subscriber

	Arrivals        ArrivalsContainer
	JourneyProgress JourneyProgressContainer
	Stops           StopsContainer

	tasks    chan func()
	stopped  chan struct{}
	running  atomic.Bool
	ctx      context.Context
	inflight conc.WaitGroup

	arrivals *stream
	journey  *stream

	displayTicker *time.Ticker
	displayUsers  int

	currentStop        ctdf.Stop
	currentVehicle     VehicleSelection
	directionID        string
	messages           string
	nextStop           string
	stopGeneration     uint64
	searchGeneration   uint64
	queryGeneration    uint64
	stopsCategory      stations.Category
	stationsImportLock sync.Mutex

	downloadingStop  atomic.Bool
	downloadingStops atomic.Bool

	state atomic.Pointer[published]
}

func NewTracker(options Options, subscribers ...Subscriber) *Tracker {
	t := &Tracker{
		options:       options.withDefaults(),
		subscribers:   subscribers,
		tasks:         make(chan func()),
		stopped:       make(chan struct{}),
		ctx:           context.Background(),
		arrivals:      newStream("arrivals"),
		journey:       newStream("journey progress"),
		stopsCategory: stations.CategoryBus,
	}
	t.publish()

	return t
}

// Run processes commands, timer ticks and responses until ctx is cancelled. Requests
// still in flight are waited for before it returns.
func (t *Tracker) Run(ctx context.Context) error {
	if !t.running.CompareAndSwap(false, true) {
		return errors.New("tracker already running")
	}

	t.ctx = ctx

	defer t.inflight.Wait()
	defer close(t.stopped)
	defer t.shutdown()

	log.Info().
		Dur("arrivalsrefresh", t.options.ArrivalsRefresh).
		Dur("journeyrefresh", t.options.JourneyRefresh).
		Dur("displayrefresh", t.options.DisplayRefresh).
		Msg("Starting countdown tracker")

	// Show the default stop list straight away, importing stations on first use
	if t.options.Stations != nil {
		t.queryStops(t.ensureStations)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case task := <-t.tasks:
			task()
		case now := <-t.arrivals.tickC():
			t.arrivals.ticked(now)
			t.fetchArrivals()
		case now := <-t.journey.tickC():
			t.journey.ticked(now)
			t.fetchJourneyProgress()
		case <-t.displayC():
			t.emit(ctdf.EventTypeDisplayTick, nil)
		}
	}
}

func (t *Tracker) shutdown() {
	t.arrivals.disarm()
	t.journey.disarm()

	if t.displayTicker != nil {
		t.displayTicker.Stop()
		t.displayTicker = nil
	}

	log.Info().Msg("Countdown tracker stopped")
}

// do runs fn on the tracker goroutine and waits for it to finish
func (t *Tracker) do(fn func()) error {
	done := make(chan struct{})

	select {
	case t.tasks <- func() {
		defer close(done)
		fn()
	}:
	case <-t.stopped:
		return ErrTrackerStopped
	}

	<-done

	return nil
}

// post hands a continuation to the tracker goroutine, dropping it once Run has returned
func (t *Tracker) post(fn func()) {
	select {
	case t.tasks <- fn:
	case <-t.stopped:
	}
}

// request performs the GET off the tracker goroutine and runs continuation back on it
func (t *Tracker) request(client transport.Transport, requestURL string, continuation func(resp *transport.Response, err error)) {
	ctx := t.ctx

	t.inflight.Go(func() {
		resp, err := client.Get(ctx, requestURL)
		t.post(func() {
			continuation(resp, err)
		})
	})
}

func (t *Tracker) emit(eventType ctdf.EventType, body interface{}) {
	event := ctdf.Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Body:      body,
	}

	for _, subscriber := range t.subscribers {
		subscriber(event)
	}
}

func (t *Tracker) emitDownloadState() {
	t.emit(ctdf.EventTypeDownloadStateChanged, t.DownloadState())
}

// publish snapshots the loop owned state for readers
func (t *Tracker) publish() {
	snapshot := &published{
		vehicle:       t.currentVehicle,
		directionID:   t.directionID,
		messages:      t.messages,
		stopsCategory: t.stopsCategory,
	}

	if err := copier.Copy(&snapshot.stop, &t.currentStop); err != nil {
		log.Error().Err(err).Msg("Failed to snapshot current stop")
	}

	t.state.Store(snapshot)
}

func (t *Tracker) retainDisplay() {
	t.displayUsers++
	if t.displayTicker == nil {
		t.displayTicker = time.NewTicker(t.options.DisplayRefresh)
	}
}

func (t *Tracker) releaseDisplay() {
	if t.displayUsers > 0 {
		t.displayUsers--
	}

	if t.displayUsers == 0 && t.displayTicker != nil {
		t.displayTicker.Stop()
		t.displayTicker = nil
	}
}

func (t *Tracker) displayC() <-chan time.Time {
	if t.displayTicker == nil {
		return nil
	}

	return t.displayTicker.C
}

func (t *Tracker) StartArrivalsUpdate() error {
	return t.do(func() {
		t.fetchArrivals()

		if t.arrivals.arm(t.options.ArrivalsRefresh, time.Now()) {
			t.retainDisplay()
		}
	})
}

// StopArrivalsUpdate stops polling and clears the arrivals, a response still in flight is discarded
func (t *Tracker) StopArrivalsUpdate() error {
	return t.do(func() {
		if t.arrivals.disarm() {
			t.releaseDisplay()
		}

		t.Arrivals.Clear()
		t.emit(ctdf.EventTypeArrivalsChanged, []ctdf.Vehicle{})
		t.emitDownloadState()
	})
}

// StartJourneyProgressUpdate does nothing until a vehicle has been selected
func (t *Tracker) StartJourneyProgressUpdate() error {
	return t.do(func() {
		if t.currentVehicle.ID == "" {
			log.Debug().Msg("No vehicle selected, not starting journey progress updates")
			return
		}

		t.fetchJourneyProgress()

		if t.journey.arm(t.options.JourneyRefresh, time.Now()) {
			t.retainDisplay()
		}
	})
}

// StopJourneyProgressUpdate stops polling, clears the journey progress and forgets the
// selected vehicle and its direction
func (t *Tracker) StopJourneyProgressUpdate() error {
	return t.do(func() {
		if t.journey.disarm() {
			t.releaseDisplay()
		}

		t.currentVehicle = VehicleSelection{}
		t.directionID = ""
		t.publish()

		t.JourneyProgress.Clear()
		t.emit(ctdf.EventTypeJourneyProgressChanged, []JourneyProgressRow{})
		t.updateNextStop()
		t.emitDownloadState()
	})
}

// SetCurrentStop selects the stop to poll arrivals for and requests its details and messages.
// Selecting a different stop drops everything known about the previous one.
func (t *Tracker) SetCurrentStop(code string) error {
	return t.do(func() {
		if code != t.currentStop.ID {
			t.resetCurrentStop()
			t.currentStop.ID = code
			t.publish()
			t.emit(ctdf.EventTypeStopChanged, t.CurrentStop())
		}

		t.fetchStopDetail()
		t.fetchStopMessages()
	})
}

func (t *Tracker) ClearCurrentStop() error {
	return t.do(func() {
		t.resetCurrentStop()
		t.publish()
		t.emit(ctdf.EventTypeStopChanged, t.CurrentStop())
	})
}

func (t *Tracker) resetCurrentStop() {
	t.currentStop.Clear()
	t.stopGeneration++
	t.downloadingStop.Store(false)

	if t.messages != "" {
		t.messages = ""
		t.emit(ctdf.EventTypeStopMessagesChanged, "")
	}

	t.arrivals.invalidate()
	t.Arrivals.Clear()
	t.emit(ctdf.EventTypeArrivalsChanged, []ctdf.Vehicle{})
	t.emitDownloadState()
}

// SetCurrentVehicle selects the vehicle followed by journey progress updates
func (t *Tracker) SetCurrentVehicle(id string, line string, destination string) error {
	return t.do(func() {
		changed := id != t.currentVehicle.ID
		if changed {
			t.journey.invalidate()
		}

		t.currentVehicle = VehicleSelection{
			ID:          id,
			Line:        line,
			Destination: destination,
		}
		t.publish()

		// The previous vehicle's stops are not shown for the new one
		if changed && len(t.JourneyProgress.Entries()) > 0 {
			t.JourneyProgress.Clear()
			t.emit(ctdf.EventTypeJourneyProgressChanged, []JourneyProgressRow{})
			t.updateNextStop()
			t.emitDownloadState()
		}
	})
}

func (t *Tracker) load() *published {
	return t.state.Load()
}

// CurrentStop is a copy of the stop being tracked
func (t *Tracker) CurrentStop() ctdf.Stop {
	return t.load().stop
}

func (t *Tracker) CurrentVehicle() VehicleSelection {
	return t.load().vehicle
}

// DirectionID is the direction of the last arrival seen, sent with journey progress requests
func (t *Tracker) DirectionID() string {
	return t.load().directionID
}

func (t *Tracker) CurrentStopMessages() string {
	return t.load().messages
}

func (t *Tracker) StopsCategory() stations.Category {
	return t.load().stopsCategory
}

func (t *Tracker) NextStop() string {
	return t.JourneyProgress.NextStop()
}

func (t *Tracker) DownloadState() DownloadState {
	return DownloadState{
		Arrivals:        t.arrivals.downloading.Load(),
		JourneyProgress: t.journey.downloading.Load(),
		Stop:            t.downloadingStop.Load(),
		Stops:           t.downloadingStops.Load(),
	}
}

func (t *Tracker) ArrivalsActive() bool {
	return t.arrivals.armed()
}

func (t *Tracker) JourneyProgressActive() bool {
	return t.journey.armed()
}

// ArrivalsTimerProgress is how far through the current arrivals period we are, as a percentage
func (t *Tracker) ArrivalsTimerProgress() float64 {
	return t.arrivals.progress(time.Now())
}

func (t *Tracker) JourneyProgressTimerProgress() float64 {
	return t.journey.progress(time.Now())
}

// SortedArrivals is the arrivals container in display order
func (t *Tracker) SortedArrivals() []ctdf.Vehicle {
	return SortedByETA(t.Arrivals.Items())
}

func (t *Tracker) JourneyProgressRows() []JourneyProgressRow {
	return JourneyProgressRows(&t.JourneyProgress)
}
