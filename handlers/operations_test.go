package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	"github.com/gorilla/mux"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/rengarajkamatchinathan/ig-fe/app"
	. "github.com/rengarajkamatchinathan/ig-fe/handlers"
	"github.com/rengarajkamatchinathan/ig-fe/models"
	"github.com/rengarajkamatchinathan/ig-fe/services"
)

func emptyhandler(w http.ResponseWriter, r *http.Request) {}

// requestWithContext attaches the RequestContext the middleware chain would
// have built, so handlers can be tested unraveled.
func requestWithContext(r *http.Request, orgID int, userID int) *http.Request {
	rc := app.NewRequestContext(r.Context(), r)
	rc.SetOrgID(orgID)
	rc.SetUserID(userID)
	ctx := context.WithValue(r.Context(), app.RequestContextKey, rc)
	return r.WithContext(ctx)
}

type fakeOperationService struct {
	tracker *services.StatusTracker
	output  *services.OutputBuffer
	targets []models.OperationKind
	runs    []services.RunContext
	chain   []models.OperationKind
	emit    []string
	err     error
}

func (f *fakeOperationService) RunChain(ctx context.Context, target models.OperationKind, rc services.RunContext) ([]models.OperationKind, error) {
	f.targets = append(f.targets, target)
	f.runs = append(f.runs, rc)
	if f.err != nil {
		return nil, f.err
	}
	for _, chunk := range f.emit {
		f.output.Append(chunk)
	}
	return f.chain, nil
}

func (f *fakeOperationService) Tracker() *services.StatusTracker { return f.tracker }
func (f *fakeOperationService) Output() *services.OutputBuffer   { return f.output }

type fakeFileSource struct {
	files     models.FileSet
	requested []string
}

func (f *fakeFileSource) ActiveFiles(workspaceID string) models.FileSet {
	f.requested = append(f.requested, workspaceID)
	return f.files
}

var _ = Describe("OperationHandler", func() {

	var (
		os       *fakeOperationService
		source   *fakeFileSource
		handler  http.Handler
		response *httptest.ResponseRecorder
		resp     *http.Response
	)

	BeforeEach(func() {
		os = &fakeOperationService{
			tracker: services.NewStatusTracker(),
			output:  services.NewOutputBuffer(),
		}
		source = &fakeFileSource{}
		response = httptest.NewRecorder()
	})

	runRequest := func(kind string, body interface{}) {
		var buf bytes.Buffer
		Expect(json.NewEncoder(&buf).Encode(body)).To(Succeed())

		// Unravel the middleware pattern to test only the handler
		oh := NewOperationHandler(os, source)
		adapter := oh.RunOperation()
		handler = adapter(http.HandlerFunc(emptyhandler))

		request := httptest.NewRequest("POST", "/workspaces/ws-1/operations/"+kind, &buf)
		request = mux.SetURLVars(request, map[string]string{"workspaceId": "ws-1", "kind": kind})
		handler.ServeHTTP(response, requestWithContext(request, 1, 2))
		resp = response.Result()
	}

	Describe("Running an operation chain", func() {
		Context("When the chain runs to completion", func() {
			BeforeEach(func() {
				os.chain = []models.OperationKind{models.OperationValidate, models.OperationPlan}
				os.emit = []string{"Running: validate -> plan\n\n", "plan ok\n"}
				runRequest("plan", map[string]interface{}{
					"project_id": "p-1",
					"tf_files":   map[string]string{"main.tf": "resource {}"},
				})
			})
			It("Should return a 200 OK with a plain text body", func() {
				Expect(resp.StatusCode).To(Equal(http.StatusOK))
				Expect(resp.Header.Get("Content-Type")).To(HavePrefix("text/plain"))
			})
			It("Should stream every appended chunk", func() {
				body, _ := io.ReadAll(resp.Body)
				Expect(string(body)).To(Equal("Running: validate -> plan\n\nplan ok\n"))
			})
			It("Should hand the request files and session org to the engine", func() {
				Expect(os.runs).To(HaveLen(1))
				Expect(os.runs[0].ProjectID).To(Equal("p-1"))
				Expect(os.runs[0].WorkspaceID).To(Equal("ws-1"))
				Expect(os.runs[0].OrgID).To(Equal(1))
				Expect(os.runs[0].Files).To(HaveKey("main.tf"))
				Expect(os.targets).To(Equal([]models.OperationKind{models.OperationPlan}))
			})
			It("Should not fall back to the workspace files", func() {
				Expect(source.requested).To(BeEmpty())
			})
		})

		Context("When the request carries no files", func() {
			BeforeEach(func() {
				source.files = models.FileSet{"main.tf": "resource {}"}
				os.chain = []models.OperationKind{models.OperationValidate}
				runRequest("validate", map[string]interface{}{"project_id": "p-1"})
			})
			It("Should run against the workspace's active files", func() {
				Expect(source.requested).To(Equal([]string{"ws-1"}))
				Expect(os.runs[0].Files).To(HaveKey("main.tf"))
			})
		})

		Context("When the kind is unknown", func() {
			BeforeEach(func() {
				runRequest("refresh", map[string]interface{}{"project_id": "p-1"})
			})
			It("Should return a 400 Bad Request without running anything", func() {
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
				Expect(os.targets).To(BeEmpty())
			})
		})

		Context("When the body is not valid json", func() {
			BeforeEach(func() {
				oh := NewOperationHandler(os, source)
				handler = oh.RunOperation()(http.HandlerFunc(emptyhandler))
				request := httptest.NewRequest("POST", "/workspaces/ws-1/operations/plan", bytes.NewBufferString("{"))
				request = mux.SetURLVars(request, map[string]string{"workspaceId": "ws-1", "kind": "plan"})
				handler.ServeHTTP(response, requestWithContext(request, 1, 2))
				resp = response.Result()
			})
			It("Should return a 400 Bad Request", func() {
				Expect(resp.StatusCode).To(Equal(http.StatusBadRequest))
			})
		})

		Context("When another chain is already running", func() {
			BeforeEach(func() {
				Expect(os.tracker.SetRunning(models.OperationApply)).To(Succeed())
				runRequest("plan", map[string]interface{}{"project_id": "p-1"})
			})
			It("Should return a 409 Conflict without running anything", func() {
				Expect(resp.StatusCode).To(Equal(http.StatusConflict))
				Expect(os.targets).To(BeEmpty())
			})
			It("Should not stream the active chain's output", func() {
				os.output.Append("apply in progress\n")
				body, _ := io.ReadAll(resp.Body)
				Expect(string(body)).NotTo(ContainSubstring("apply in progress"))
			})
		})

		Context("When the engine refuses the chain in a race", func() {
			BeforeEach(func() {
				os.err = services.ErrChainInFlight
				runRequest("plan", map[string]interface{}{"project_id": "p-1"})
			})
			It("Should end the stream without writing anything", func() {
				body, _ := io.ReadAll(resp.Body)
				Expect(body).To(BeEmpty())
			})
		})
	})

	Describe("Reading operation status", func() {
		BeforeEach(func() {
			Expect(os.tracker.SetRunning(models.OperationValidate)).To(Succeed())
			os.tracker.SetResult(models.OperationValidate, true)
			Expect(os.tracker.SetRunning(models.OperationPlan)).To(Succeed())

			oh := NewOperationHandler(os, source)
			handler = oh.GetStatus()(http.HandlerFunc(emptyhandler))
			request := httptest.NewRequest("GET", "/operations/status", nil)
			handler.ServeHTTP(response, requestWithContext(request, 1, 2))
			resp = response.Result()
		})
		It("Should return the full status snapshot", func() {
			Expect(resp.StatusCode).To(Equal(http.StatusOK))

			var payload struct {
				Statuses   map[string]string `json:"statuses"`
				Running    []string          `json:"running"`
				AnyRunning bool              `json:"any_running"`
			}
			Expect(json.NewDecoder(resp.Body).Decode(&payload)).To(Succeed())
			Expect(payload.Statuses["validate"]).To(Equal("succeeded"))
			Expect(payload.Statuses["plan"]).To(Equal("running"))
			Expect(payload.Statuses["apply"]).To(Equal("idle"))
			Expect(payload.Running).To(Equal([]string{"plan"}))
			Expect(payload.AnyRunning).To(BeTrue())
		})
	})

	Describe("Resetting operation status", func() {
		resetRequest := func() {
			oh := NewOperationHandler(os, source)
			handler = oh.ResetStatus()(http.HandlerFunc(emptyhandler))
			request := httptest.NewRequest("POST", "/operations/reset", nil)
			handler.ServeHTTP(response, requestWithContext(request, 1, 2))
			resp = response.Result()
		}

		Context("When nothing is running", func() {
			BeforeEach(func() {
				Expect(os.tracker.SetRunning(models.OperationValidate)).To(Succeed())
				os.tracker.SetResult(models.OperationValidate, true)
				os.output.Append("old output\n")
				resetRequest()
			})
			It("Should return a 204 No Content", func() {
				Expect(resp.StatusCode).To(Equal(http.StatusNoContent))
			})
			It("Should return every status to idle and clear the output", func() {
				Expect(os.tracker.StatusOf(models.OperationValidate)).To(Equal(models.StatusIdle))
				Expect(os.output.String()).To(BeEmpty())
			})
		})

		Context("When an operation is running", func() {
			BeforeEach(func() {
				Expect(os.tracker.SetRunning(models.OperationApply)).To(Succeed())
				resetRequest()
			})
			It("Should return a 409 Conflict and leave state alone", func() {
				Expect(resp.StatusCode).To(Equal(http.StatusConflict))
				Expect(os.tracker.StatusOf(models.OperationApply)).To(Equal(models.StatusRunning))
			})
		})
	})
})
