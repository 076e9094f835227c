package monitoring_test

import (
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/memplace/datarecording"
	"github.com/sarchlab/memplace/instrumentation/tracing"
	"github.com/sarchlab/memplace/monitoring"
	"github.com/sarchlab/memplace/placement"
	"github.com/sarchlab/memplace/session"
)

func doRequest(method, url, body string) (int, string) {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, url, reader)
	Expect(err).ToNot(HaveOccurred())

	rsp, err := http.DefaultClient.Do(req)
	Expect(err).ToNot(HaveOccurred())
	defer rsp.Body.Close()

	b, err := io.ReadAll(rsp.Body)
	Expect(err).ToNot(HaveOccurred())

	return rsp.StatusCode, string(b)
}

var _ = Describe("Monitor", func() {
	var (
		space   *placement.AddressSpace
		s       *session.Session
		monitor *monitoring.Monitor
		server  *httptest.Server
	)

	BeforeEach(func() {
		space = placement.NewAddressSpace("Mem", 10)
		s = session.New(space, placement.FirstFit)
		monitor = monitoring.NewMonitor(s).
			WithProfileDuration(10 * time.Millisecond)
	})

	JustBeforeEach(func() {
		server = httptest.NewServer(monitor.Handler())
	})

	AfterEach(func() {
		server.Close()
	})

	It("should attach the metrics hook", func() {
		Expect(space.NumHooks()).To(Equal(1))
	})

	It("should report the state", func() {
		_, _ = s.Allocate("P1", 3)

		status, body := doRequest(http.MethodGet, server.URL+"/api/state", "")

		Expect(status).To(Equal(http.StatusOK))

		snap := session.Snapshot{}
		Expect(json.Unmarshal([]byte(body), &snap)).To(Succeed())
		Expect(snap.Policy).To(Equal("First-Fit"))
		Expect(snap.Render).To(HavePrefix("[P][P][P][ ]"))
		Expect(snap.Regions).To(Equal([]placement.Region{
			{Owner: "P1", Start: 0, Length: 3},
		}))
	})

	It("should render as text", func() {
		status, body := doRequest(http.MethodGet, server.URL+"/api/render", "")

		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(Equal(strings.Repeat("[ ]", 10) + "\n"))
	})

	It("should allocate", func() {
		status, body := doRequest(http.MethodPost,
			server.URL+"/api/allocate", `{"owner":"P1","length":4}`)

		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(
			`"report":"First-Fit: allocated process P1 at position 0"`))
		Expect(body).To(ContainSubstring(`"placement":{"placed":true,"offset":0}`))
		Expect(s.Regions()).To(HaveLen(1))
	})

	It("should report insufficient memory as a conflict", func() {
		_, _ = s.Allocate("P1", 8)

		status, body := doRequest(http.MethodPost,
			server.URL+"/api/allocate", `{"owner":"P2","length":3}`)

		Expect(status).To(Equal(http.StatusConflict))
		Expect(body).To(ContainSubstring("insufficient memory for process P2"))
	})

	It("should reject invalid requests", func() {
		status, body := doRequest(http.MethodPost,
			server.URL+"/api/allocate", `{"owner":"P1","length":11}`)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(body).To(ContainSubstring("invalid request"))

		status, _ = doRequest(http.MethodPost,
			server.URL+"/api/allocate", `not json`)
		Expect(status).To(Equal(http.StatusBadRequest))
	})

	It("should release", func() {
		_, _ = s.Allocate("P1", 2)
		_, _ = s.Allocate("P2", 2)
		_, _ = s.Allocate("P1", 2)

		status, body := doRequest(http.MethodPost,
			server.URL+"/api/release/P1", "")

		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"report":"Released process P1"`))
		Expect(s.Regions()).To(Equal([]placement.Region{
			{Owner: "P2", Start: 2, Length: 2},
		}))

		_, body = doRequest(http.MethodPost, server.URL+"/api/release/P9", "")
		Expect(body).To(ContainSubstring(`"released":[]`))
	})

	It("should list regions of an owner", func() {
		_, _ = s.Allocate("P1", 2)

		status, body := doRequest(http.MethodGet,
			server.URL+"/api/regions/P1", "")
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(Equal(`[{"owner":"P1","start":0,"length":2}]`))

		status, _ = doRequest(http.MethodGet, server.URL+"/api/regions/P2", "")
		Expect(status).To(Equal(http.StatusNotFound))
	})

	It("should report stats", func() {
		_, _ = s.Allocate("P1", 4)

		status, body := doRequest(http.MethodGet, server.URL+"/api/stats", "")

		Expect(status).To(Equal(http.StatusOK))

		st := placement.Stats{}
		Expect(json.Unmarshal([]byte(body), &st)).To(Succeed())
		Expect(st.Used).To(Equal(4))
		Expect(st.Free).To(Equal(6))
	})

	It("should switch policies", func() {
		status, body := doRequest(http.MethodPut,
			server.URL+"/api/policy", `{"policy":"best"}`)
		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(Equal(`{"policy":"Best-Fit"}`))
		Expect(s.Policy()).To(Equal(placement.BestFit))

		_, body = doRequest(http.MethodGet, server.URL+"/api/policy", "")
		Expect(body).To(Equal(`{"policy":"Best-Fit"}`))

		status, _ = doRequest(http.MethodPut,
			server.URL+"/api/policy", `{"policy":"quick"}`)
		Expect(status).To(Equal(http.StatusBadRequest))
		Expect(s.Policy()).To(Equal(placement.BestFit))
	})

	It("should serialize the address space", func() {
		_, _ = s.Allocate("P1", 2)

		status, body := doRequest(http.MethodGet, server.URL+"/api/space", "")
		Expect(status).To(Equal(http.StatusOK))
		Expect(json.Valid([]byte(body))).To(BeTrue())

		status, _ = doRequest(http.MethodGet,
			server.URL+"/api/space?depth=zero", "")
		Expect(status).To(Equal(http.StatusBadRequest))
	})

	It("should export metrics", func() {
		_, _ = s.Allocate("P1", 4)
		_, _ = s.Allocate("P2", 7)
		s.Release("P1")

		status, body := doRequest(http.MethodGet, server.URL+"/metrics", "")

		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(
			`memplace_allocations_total{outcome="placed",policy="First-Fit"} 1`))
		Expect(body).To(ContainSubstring(
			`memplace_allocations_total{outcome="insufficient_space",policy="First-Fit"} 1`))
		Expect(body).To(ContainSubstring("memplace_releases_total 1"))
		Expect(body).To(ContainSubstring("memplace_released_units_total 4"))
		Expect(body).To(ContainSubstring("memplace_free_units 10"))
	})

	It("should report resources", func() {
		status, body := doRequest(http.MethodGet, server.URL+"/api/resource", "")

		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(ContainSubstring(`"memory_size"`))
	})

	It("should collect a profile", func() {
		status, body := doRequest(http.MethodGet, server.URL+"/api/profile", "")

		Expect(status).To(Equal(http.StatusOK))
		Expect(json.Valid([]byte(body))).To(BeTrue())
	})

	It("should serve the web page", func() {
		status, body := doRequest(http.MethodGet, server.URL+"/", "")

		Expect(status).To(Equal(http.StatusOK))
		Expect(body).To(HavePrefix("<!DOCTYPE html>"))
	})

	It("should not serve tasks when recording is off", func() {
		status, _ := doRequest(http.MethodGet, server.URL+"/api/tasks", "")

		Expect(status).To(Equal(http.StatusNotFound))
	})

	Context("when tasks are recorded", func() {
		var recorder datarecording.DataRecorder

		BeforeEach(func() {
			db, err := sql.Open("sqlite3",
				filepath.Join(GinkgoT().TempDir(), "tasks.sqlite3"))
			Expect(err).ToNot(HaveOccurred())

			recorder = datarecording.NewDataRecorderWithDB(db)
			reader := datarecording.NewReaderWithDB(db)

			space.AcceptHook(tracing.NewTracerHook(
				tracing.NewDBTracer(recorder), nil))
			monitor.WithTaskRecording(recorder, reader)
		})

		AfterEach(func() {
			Expect(recorder.Close()).To(Succeed())
		})

		It("should serve the recorded tasks", func() {
			_, _ = s.Allocate("P1", 4)
			_, _ = s.Allocate("P2", 4)
			s.Release("P1")

			status, body := doRequest(http.MethodGet,
				server.URL+"/api/tasks?owner=P1", "")

			Expect(status).To(Equal(http.StatusOK))

			rsp := struct {
				Total int            `json:"total"`
				Tasks []tracing.Task `json:"tasks"`
			}{}
			Expect(json.Unmarshal([]byte(body), &rsp)).To(Succeed())
			Expect(rsp.Total).To(Equal(2))
			Expect(rsp.Tasks[0].Kind).To(Equal(tracing.KindAllocate))
			Expect(rsp.Tasks[1].Kind).To(Equal(tracing.KindRelease))
			Expect(rsp.Tasks[1].Length).To(Equal(4))
		})

		It("should page the tasks", func() {
			_, _ = s.Allocate("P1", 1)
			_, _ = s.Allocate("P2", 1)
			_, _ = s.Allocate("P3", 1)

			_, body := doRequest(http.MethodGet,
				server.URL+"/api/tasks?limit=1&offset=1", "")
			Expect(body).To(ContainSubstring(`"total":3`))
			Expect(body).To(ContainSubstring(`"owner":"P2"`))
			Expect(body).ToNot(ContainSubstring(`"owner":"P1"`))

			status, _ := doRequest(http.MethodGet,
				server.URL+"/api/tasks?limit=-1", "")
			Expect(status).To(Equal(http.StatusBadRequest))
		})

		It("should skip tasks with only an offset", func() {
			_, _ = s.Allocate("P1", 1)
			_, _ = s.Allocate("P2", 1)
			_, _ = s.Allocate("P3", 1)

			status, body := doRequest(http.MethodGet,
				server.URL+"/api/tasks?offset=2", "")

			Expect(status).To(Equal(http.StatusOK))
			Expect(body).To(ContainSubstring(`"total":3`))
			Expect(body).To(ContainSubstring(`"owner":"P3"`))
			Expect(body).ToNot(ContainSubstring(`"owner":"P1"`))
			Expect(body).ToNot(ContainSubstring(`"owner":"P2"`))
		})
	})
})
