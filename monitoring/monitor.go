// Package monitoring turns a running loop into a server that external tools
// can query.
//
// The loop's state may only be touched from the loop's own thread. HTTP
// handlers therefore never read it directly. They post a request to an inbox
// and raise an interrupt; a data source registered with the loop answers the
// request during its next pass.
package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/runloop/hal"
	"github.com/sarchlab/runloop/runloop"
)

var errLoopBusy = errors.New("the loop did not answer in time")

type loopRequest struct {
	query func(l *runloop.Embedded) any
	reply chan any
}

// Monitor serves the state of a run loop over HTTP.
type Monitor struct {
	loop        *runloop.Embedded
	raiser      hal.InterruptRaiser
	inbox       chan loopRequest
	source      *runloop.DataSource
	portNumber  int
	openBrowser bool
	timeout     time.Duration

	server *http.Server
}

// NewMonitor creates a new Monitor
func NewMonitor() *Monitor {
	return &Monitor{
		inbox:   make(chan loopRequest, 16),
		timeout: 2 * time.Second,
	}
}

// WithPortNumber sets the port number of the monitor.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the monitoring server, "+
				"which is not allowed. Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// WithBrowser opens the monitor in a web browser once the server starts.
func (m *Monitor) WithBrowser() *Monitor {
	m.openBrowser = true
	return m
}

// WithTimeout sets how long a request waits for the loop to answer.
func (m *Monitor) WithTimeout(d time.Duration) *Monitor {
	m.timeout = d
	return m
}

// RegisterLoop attaches the monitor to a loop. The raiser is used to wake the
// loop when a request arrives. It must be called from the loop's thread,
// usually before the loop runs.
func (m *Monitor) RegisterLoop(l *runloop.Embedded, raiser hal.InterruptRaiser) {
	m.loop = l
	m.raiser = raiser
	m.source = runloop.NewDataSource("monitor", m.serve)

	l.AddDataSource(m.source)
}

// serve answers every request waiting in the inbox. It runs as a data source.
func (m *Monitor) serve(_ *runloop.DataSource) {
	for {
		select {
		case req := <-m.inbox:
			req.reply <- req.query(m.loop)
		default:
			return
		}
	}
}

func (m *Monitor) wakeLoop() {
	if m.raiser != nil {
		m.raiser.RaiseInterrupt(m.loop.Trigger)
		return
	}

	m.loop.Trigger()
}

// ask runs query on the loop's thread and waits for the answer.
func (m *Monitor) ask(
	ctx context.Context,
	query func(l *runloop.Embedded) any,
) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	req := loopRequest{
		query: query,
		reply: make(chan any, 1),
	}

	select {
	case m.inbox <- req:
	case <-ctx.Done():
		return nil, errLoopBusy
	}

	m.wakeLoop()

	select {
	case rsp := <-req.reply:
		return rsp, nil
	case <-ctx.Done():
		return nil, errLoopBusy
	}
}

// Handler returns the routes of the monitor.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/now", m.now).Methods(http.MethodGet)
	r.HandleFunc("/api/timers", m.listTimers).Methods(http.MethodGet)
	r.HandleFunc("/api/sources", m.listSources).Methods(http.MethodGet)
	r.HandleFunc("/api/stats", m.stats).Methods(http.MethodGet)
	r.HandleFunc("/api/loop", m.loopDetails).Methods(http.MethodGet)
	r.HandleFunc("/api/trigger", m.trigger).Methods(http.MethodPost)
	r.HandleFunc("/api/resource", m.listResources).Methods(http.MethodGet)
	r.HandleFunc("/api/profile", m.collectProfile).Methods(http.MethodGet)

	return r
}

// StartServer starts the monitor as a web server and returns its address.
func (m *Monitor) StartServer() string {
	if m.loop == nil {
		panic("monitoring: no loop registered")
	}

	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	url := fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring run loop with %s\n", url)

	m.server = &http.Server{
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		err := m.server.Serve(listener)
		if !errors.Is(err, http.ErrServerClosed) {
			dieOnErr(err)
		}
	}()

	if m.openBrowser {
		err = browser.OpenURL(url)
		if err != nil {
			log.Printf("cannot open browser: %v", err)
		}
	}

	return url
}

// StopServer shuts the web server down.
func (m *Monitor) StopServer(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

type nowRsp struct {
	TimeBase string `json:"time_base"`
	Now      uint32 `json:"now"`
	Ticks    uint32 `json:"ticks"`
}

func (m *Monitor) now(w http.ResponseWriter, r *http.Request) {
	m.answer(w, r, func(l *runloop.Embedded) any {
		return nowRsp{
			TimeBase: l.TimeBase().String(),
			Now:      l.TimeMS(),
			Ticks:    l.Ticks(),
		}
	})
}

func (m *Monitor) listTimers(w http.ResponseWriter, r *http.Request) {
	dump := r.URL.Query().Get("dump") != ""

	m.answer(w, r, func(l *runloop.Embedded) any {
		if dump {
			l.DumpTimers()
		}

		timers := l.PendingTimers()
		if timers == nil {
			timers = []runloop.TimerInfo{}
		}

		return timers
	})
}

func (m *Monitor) listSources(w http.ResponseWriter, r *http.Request) {
	m.answer(w, r, func(l *runloop.Embedded) any {
		return l.DataSourceNames()
	})
}

func (m *Monitor) stats(w http.ResponseWriter, r *http.Request) {
	m.answer(w, r, func(l *runloop.Embedded) any {
		return l.Stats()
	})
}

// LoopSnapshot is a copy of the loop's state taken on the loop's thread.
type LoopSnapshot struct {
	TimeBase string
	Now      uint32
	Ticks    uint32
	Sources  []string
	Timers   []runloop.TimerInfo
	Stats    runloop.Stats
}

func takeSnapshot(l *runloop.Embedded) *LoopSnapshot {
	return &LoopSnapshot{
		TimeBase: l.TimeBase().String(),
		Now:      l.TimeMS(),
		Ticks:    l.Ticks(),
		Sources:  l.DataSourceNames(),
		Timers:   l.PendingTimers(),
		Stats:    l.Stats(),
	}
}

func (m *Monitor) loopDetails(w http.ResponseWriter, r *http.Request) {
	rsp, err := m.ask(r.Context(), func(l *runloop.Embedded) any {
		return takeSnapshot(l)
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	depth := 3
	if d := r.URL.Query().Get("depth"); d != "" {
		depth, err = strconv.Atoi(d)
		if err != nil {
			http.Error(w, "invalid depth "+d, http.StatusBadRequest)
			return
		}
	}

	serializer := goseth.NewSerializer()
	serializer.SetRoot(rsp)
	serializer.SetMaxDepth(depth)
	err = serializer.Serialize(w)

	dieOnErr(err)
}

func (m *Monitor) trigger(w http.ResponseWriter, _ *http.Request) {
	m.wakeLoop()
	w.WriteHeader(http.StatusOK)
}

func (m *Monitor) answer(
	w http.ResponseWriter,
	r *http.Request,
	query func(l *runloop.Embedded) any,
) {
	rsp, err := m.ask(r.Context(), query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}

	writeJSON(w, rsp)
}

type resourceRsp struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	pid := os.Getpid()
	process, err := process.NewProcess(int32(pid))
	dieOnErr(err)

	cpuPercent, err := process.CPUPercent()
	dieOnErr(err)

	memorySize, err := process.MemoryInfo()
	dieOnErr(err)

	writeJSON(w, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}

	time.Sleep(time.Second)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, prof)
}

func writeJSON(w http.ResponseWriter, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
