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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/memplace/datarecording"
	"github.com/sarchlab/memplace/instrumentation/tracing"
	"github.com/sarchlab/memplace/monitoring/web"
	"github.com/sarchlab/memplace/placement"
	"github.com/sarchlab/memplace/session"
)

// Monitor turns a session into a server that allows external monitoring and
// controlling of the address space.
type Monitor struct {
	session    *session.Session
	portNumber int

	registry *prometheus.Registry
	metrics  *Metrics

	recorder datarecording.DataRecorder
	reader   datarecording.DataReader

	profileDuration time.Duration

	server *http.Server
}

// NewMonitor creates a new Monitor over s. The monitor attaches its metrics
// hook to the address space of the session.
func NewMonitor(s *session.Session) *Monitor {
	m := &Monitor{
		session:         s,
		registry:        prometheus.NewRegistry(),
		profileDuration: time.Second,
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.metrics = NewMetrics(m.registry)

	s.Inspect(func(space *placement.AddressSpace) {
		space.AcceptHook(m.metrics)
		m.metrics.Observe(space.Stats())
	})

	return m
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

// WithTaskRecording lets the monitor serve the tasks that a tracing.DBTracer
// writes into recorder. The reader must read the same database.
func (m *Monitor) WithTaskRecording(
	recorder datarecording.DataRecorder,
	reader datarecording.DataReader,
) *Monitor {
	tracing.MapTaskTable(reader)

	m.recorder = recorder
	m.reader = reader

	return m
}

// WithProfileDuration sets how long /api/profile samples the CPU.
func (m *Monitor) WithProfileDuration(d time.Duration) *Monitor {
	m.profileDuration = d
	return m
}

// Handler returns the router that serves the monitoring API and the web
// page.
func (m *Monitor) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/api/state", m.state).Methods(http.MethodGet)
	r.HandleFunc("/api/render", m.render).Methods(http.MethodGet)
	r.HandleFunc("/api/regions", m.listRegions).Methods(http.MethodGet)
	r.HandleFunc("/api/regions/{owner}", m.listRegionsOf).
		Methods(http.MethodGet)
	r.HandleFunc("/api/allocate", m.allocate).Methods(http.MethodPost)
	r.HandleFunc("/api/release/{owner}", m.release).Methods(http.MethodPost)
	r.HandleFunc("/api/stats", m.stats).Methods(http.MethodGet)
	r.HandleFunc("/api/policy", m.getPolicy).Methods(http.MethodGet)
	r.HandleFunc("/api/policy", m.setPolicy).Methods(http.MethodPut)
	r.HandleFunc("/api/space", m.spaceDetails).Methods(http.MethodGet)
	r.HandleFunc("/api/tasks", m.listTasks).Methods(http.MethodGet)
	r.HandleFunc("/api/resource", m.listResources).Methods(http.MethodGet)
	r.HandleFunc("/api/profile", m.collectProfile).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	r.PathPrefix("/").Handler(http.FileServer(web.GetAssets()))

	return r
}

// StartServer starts the monitor as a web server and returns the port it
// listens on.
func (m *Monitor) StartServer() int {
	actualPort := ":0"
	if m.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	port := listener.Addr().(*net.TCPAddr).Port
	fmt.Fprintf(
		os.Stderr,
		"Monitoring %s with http://localhost:%d\n",
		m.session.Name(), port)

	m.server = &http.Server{
		Handler:           m.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		err := m.server.Serve(listener)
		if !errors.Is(err, http.ErrServerClosed) {
			dieOnErr(err)
		}
	}()

	return port
}

// Shutdown stops the server started by StartServer.
func (m *Monitor) Shutdown(ctx context.Context) error {
	if m.server == nil {
		return nil
	}

	return m.server.Shutdown(ctx)
}

func (m *Monitor) state(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, m.session.Snapshot())
}

func (m *Monitor) render(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	_, err := fmt.Fprintln(w, m.session.Render())
	dieOnErr(err)
}

func (m *Monitor) listRegions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, m.session.Regions())
}

func (m *Monitor) listRegionsOf(w http.ResponseWriter, r *http.Request) {
	owner := mux.Vars(r)["owner"]

	var regions []placement.Region
	m.session.Inspect(func(space *placement.AddressSpace) {
		regions = space.RegionsOf(owner)
	})

	if len(regions) == 0 {
		writeError(w, http.StatusNotFound,
			fmt.Errorf("process %s holds no region", owner))
		return
	}

	writeJSON(w, http.StatusOK, regions)
}

type allocateReq struct {
	Owner  string `json:"owner"`
	Length int    `json:"length"`
}

type allocateRsp struct {
	session.Outcome
	Report string `json:"report"`
}

func (m *Monitor) allocate(w http.ResponseWriter, r *http.Request) {
	req := allocateReq{}

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	outcome, err := m.session.Allocate(req.Owner, req.Length)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	status := http.StatusOK
	if !outcome.Placement.Placed {
		status = http.StatusConflict
	}

	writeJSON(w, status, allocateRsp{
		Outcome: outcome,
		Report:  outcome.Report(),
	})
}

type releaseRsp struct {
	Owner    string             `json:"owner"`
	Released []placement.Region `json:"released"`
	Report   string             `json:"report"`
}

func (m *Monitor) release(w http.ResponseWriter, r *http.Request) {
	owner := mux.Vars(r)["owner"]

	released := m.session.Release(owner)
	if released == nil {
		released = []placement.Region{}
	}

	writeJSON(w, http.StatusOK, releaseRsp{
		Owner:    owner,
		Released: released,
		Report:   "Released process " + owner,
	})
}

func (m *Monitor) stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, m.session.Stats())
}

type policyMsg struct {
	Policy string `json:"policy"`
}

func (m *Monitor) getPolicy(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, policyMsg{Policy: m.session.Policy().String()})
}

func (m *Monitor) setPolicy(w http.ResponseWriter, r *http.Request) {
	req := policyMsg{}

	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	p, err := placement.ParsePolicy(req.Policy)
	if err == nil {
		err = m.session.SetPolicy(p)
	}

	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, policyMsg{Policy: p.String()})
}

func (m *Monitor) spaceDetails(w http.ResponseWriter, r *http.Request) {
	depth := 1
	if v := r.URL.Query().Get("depth"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d < 1 {
			writeError(w, http.StatusBadRequest,
				fmt.Errorf("invalid depth %q", v))
			return
		}

		depth = d
	}

	buf := bytes.NewBuffer(nil)

	var err error
	m.session.Inspect(func(space *placement.AddressSpace) {
		serializer := goseth.NewSerializer()
		serializer.SetRoot(space)
		serializer.SetMaxDepth(depth)
		err = serializer.Serialize(buf)
	})
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")

	_, err = w.Write(buf.Bytes())
	dieOnErr(err)
}

type tasksRsp struct {
	Total int   `json:"total"`
	Tasks []any `json:"tasks"`
}

func (m *Monitor) listTasks(w http.ResponseWriter, r *http.Request) {
	if m.reader == nil {
		writeError(w, http.StatusNotFound,
			errors.New("task recording is not enabled"))
		return
	}

	params, err := taskQueryParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	// Inserts happen in hooks under the session lock.
	m.session.Inspect(func(*placement.AddressSpace) {
		m.recorder.Flush()
	})

	tasks, total, err := m.reader.Query(
		r.Context(), tracing.TaskTableName(), params)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	if tasks == nil {
		tasks = []any{}
	}

	writeJSON(w, http.StatusOK, tasksRsp{Total: total, Tasks: tasks})
}

func taskQueryParams(r *http.Request) (datarecording.QueryParams, error) {
	q := r.URL.Query()
	params := datarecording.QueryParams{OrderBy: "Seq"}

	if owner := q.Get("owner"); owner != "" {
		params.Where = "Owner = ?"
		params.Args = []any{owner}
	}

	for key, dst := range map[string]*int{
		"limit":  &params.Limit,
		"offset": &params.Offset,
	} {
		v := q.Get(key)
		if v == "" {
			continue
		}

		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return params, fmt.Errorf("invalid %s %q", key, v)
		}

		*dst = n
	}

	return params, nil
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

	writeJSON(w, http.StatusOK, resourceRsp{
		CPUPercent: cpuPercent,
		MemorySize: memorySize.RSS,
	})
}

func (m *Monitor) collectProfile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	err := pprof.StartCPUProfile(buf)
	if err != nil {
		writeError(w, http.StatusConflict, err)
		return
	}

	time.Sleep(m.profileDuration)

	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	dieOnErr(err)

	writeJSON(w, http.StatusOK, prof)
}

type errorRsp struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorRsp{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	bytes, err := json.Marshal(v)
	dieOnErr(err)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_, err = w.Write(bytes)
	dieOnErr(err)
}

func dieOnErr(err error) {
	if err != nil {
		log.Panic(err)
	}
}
