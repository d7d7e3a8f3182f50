package main_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/davecgh/go-spew/spew"
	"github.com/gorilla/mux"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	log "github.com/sirupsen/logrus"

	. "github.com/rengarajkamatchinathan/ig-fe"
	"github.com/rengarajkamatchinathan/ig-fe/app"
)

// fakeBackend stands in for the execution backend, recording every
// operation request it serves.
type fakeBackend struct {
	mutex      sync.Mutex
	operations []recordedOperation
	restores   []string
	server     *httptest.Server
}

type recordedOperation struct {
	Kind         string
	ProjectID    string            `json:"project_id"`
	WorkspaceID  string            `json:"workspace_id"`
	TfFiles      map[string]string `json:"tf_files"`
	CredentialID int               `json:"credential_id"`
}

func newFakeBackend() *fakeBackend {
	backend := &fakeBackend{}

	historyEntries := []map[string]interface{}{
		{
			"id":                "h-1",
			"prompt_content":    "a vpc with two subnets",
			"generated_content": nil,
		},
		{
			"id":             "h-2",
			"prompt_content": "add a bastion host",
			"generated_content": map[string]interface{}{
				"infrastructure": map[string]string{"main.tf": `resource "aws_vpc" "main" {}`},
			},
		},
	}

	router := mux.NewRouter()

	router.HandleFunc("/credentials/org/{id}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{"credential_id": 3, "cloud_provider_id": 1, "name": "aws-prod"},
			{"credential_id": 9, "cloud_provider_id": 2, "name": "azure-dev"},
		})
	}).Methods("GET")

	router.HandleFunc("/terraform/{kind}", func(w http.ResponseWriter, r *http.Request) {
		kind := mux.Vars(r)["kind"]

		var op recordedOperation
		Expect(json.NewDecoder(r.Body).Decode(&op)).To(Succeed())
		op.Kind = kind
		backend.mutex.Lock()
		backend.operations = append(backend.operations, op)
		backend.mutex.Unlock()

		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "%s: running\n", kind)
		flusher.Flush()
		fmt.Fprintf(w, "%s: complete\n", kind)
		flusher.Flush()
	}).Methods("POST")

	router.HandleFunc("/prompt-history/workspace/{id}", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(historyEntries)
	}).Methods("GET")

	router.HandleFunc("/restore", func(w http.ResponseWriter, r *http.Request) {
		backend.mutex.Lock()
		backend.restores = append(backend.restores, r.URL.Query().Get("prompt_id"))
		backend.mutex.Unlock()
		w.WriteHeader(http.StatusOK)
	}).Methods("POST")

	backend.server = httptest.NewServer(router)
	return backend
}

func (b *fakeBackend) recorded() []recordedOperation {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return append([]recordedOperation{}, b.operations...)
}

var _ = Describe("Igfe", func() {
	var (
		backend  *fakeBackend
		frontend *httptest.Server
		server   *Server
		err      error
	)

	BeforeEach(func() {
		log.SetLevel(log.FatalLevel)
		backend = newFakeBackend()

		server, err = NewServer(app.ServerConfig{
			APIBaseURL:     backend.server.URL,
			OrgID:          1,
			UserID:         7,
			CacheDir:       GinkgoT().TempDir(),
			SweepInterval:  "1h",
			StatusCooldown: "1h",
		})
		Expect(err).NotTo(HaveOccurred())

		frontend = httptest.NewServer(server.Router)
	})

	AfterEach(func() {
		frontend.Close()
		backend.server.Close()
	})

	Describe("Running an apply through the console", func() {
		var (
			response *http.Response
			body     []byte
		)

		BeforeEach(func() {
			payload := map[string]interface{}{
				"project_id": "p-1",
				"tf_files":   map[string]string{"main.tf": `resource "aws_vpc" "main" {}`},
			}
			response, body = httpRequest("POST", frontend.URL+"/workspaces/ws-1/operations/apply", payload)
		})

		It("Should return a 200 OK with a plain text stream", func() {
			Expect(response.StatusCode).To(Equal(http.StatusOK))
			Expect(response.Header.Get("Content-Type")).To(HavePrefix("text/plain"))
		})

		It("Should announce the chain and stream every step in order", func() {
			Expect(string(body)).To(HavePrefix("Running: validate -> plan -> apply\n\n"))
			Expect(string(body)).To(ContainSubstring("validate: complete\nplan: running"))
			Expect(string(body)).To(ContainSubstring("apply: complete\n"))
		})

		It("Should run every step with the resolved aws credential", func() {
			recorded := backend.recorded()
			Expect(recorded).To(HaveLen(3), spew.Sdump(recorded))
			for i, kind := range []string{"validate", "plan", "apply"} {
				Expect(recorded[i].Kind).To(Equal(kind))
				Expect(recorded[i].CredentialID).To(Equal(3))
				Expect(recorded[i].WorkspaceID).To(Equal("ws-1"))
				Expect(recorded[i].TfFiles).To(HaveKey("main.tf"))
			}
		})

		It("Should leave every chained operation succeeded", func() {
			statuses := fetchStatuses(frontend.URL)
			Expect(statuses["validate"]).To(Equal("succeeded"))
			Expect(statuses["plan"]).To(Equal("succeeded"))
			Expect(statuses["apply"]).To(Equal("succeeded"))
			Expect(statuses["destroy"]).To(Equal("idle"))
		})

		It("Should skip succeeded prerequisites on the next run", func() {
			_, rerun := httpRequest("POST", frontend.URL+"/workspaces/ws-1/operations/plan",
				map[string]interface{}{"project_id": "p-1", "tf_files": map[string]string{"main.tf": "{}"}})

			Expect(string(rerun)).NotTo(ContainSubstring("Running:"))
			Expect(string(rerun)).To(Equal("plan: running\nplan: complete\n"))
		})

		It("Should reset statuses on demand", func() {
			response, _ = httpRequest("POST", frontend.URL+"/operations/reset", nil)
			Expect(response.StatusCode).To(Equal(http.StatusNoContent))

			statuses := fetchStatuses(frontend.URL)
			for _, status := range statuses {
				Expect(status).To(Equal("idle"))
			}
		})
	})

	Describe("Reading workspace history", func() {
		It("Should return the backend entries with the derived state", func() {
			response, body := httpRequest("GET", frontend.URL+"/workspaces/ws-1/history", nil)
			Expect(response.StatusCode).To(Equal(http.StatusOK))

			var payload struct {
				Entries           []json.RawMessage `json:"entries"`
				CurrentVersion    int               `json:"current_version"`
				HasInfrastructure bool              `json:"has_infrastructure"`
			}
			Expect(json.Unmarshal(body, &payload)).To(Succeed())
			Expect(payload.Entries).To(HaveLen(2))
			Expect(payload.CurrentVersion).To(Equal(2))
			Expect(payload.HasInfrastructure).To(BeTrue())
		})
	})

	Describe("Restoring a history entry", func() {
		It("Should restore through the backend and refresh", func() {
			response, _ := httpRequest("POST", frontend.URL+"/workspaces/ws-1/history/h-1/restore", nil)
			Expect(response.StatusCode).To(Equal(http.StatusOK))
			Expect(backend.restores).To(Equal([]string{"h-1"}))
		})
	})

	Describe("Resolving the session credential", func() {
		It("Should select the first stored aws credential", func() {
			response, body := httpRequest("GET", frontend.URL+"/credentials/resolved?provider=aws", nil)
			Expect(response.StatusCode).To(Equal(http.StatusOK))

			var selection struct {
				CredentialID int    `json:"credential_id"`
				Reason       string `json:"reason"`
			}
			Expect(json.Unmarshal(body, &selection)).To(Succeed())
			Expect(selection.CredentialID).To(Equal(3))
			Expect(selection.Reason).To(BeEmpty())
		})
	})
})

func httpRequest(method string, url string, payload interface{}) (*http.Response, []byte) {
	var buf bytes.Buffer
	if payload != nil {
		Expect(json.NewEncoder(&buf).Encode(payload)).To(Succeed())
	}

	req, err := http.NewRequest(method, url, &buf)
	Expect(err).NotTo(HaveOccurred())
	req.Header.Set("Content-Type", "application/json")

	response, err := http.DefaultClient.Do(req)
	Expect(err).NotTo(HaveOccurred())
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	Expect(err).NotTo(HaveOccurred())

	return response, body
}

func fetchStatuses(baseURL string) map[string]string {
	_, body := httpRequest("GET", baseURL+"/operations/status", nil)

	var payload struct {
		Statuses map[string]string `json:"statuses"`
	}
	Expect(json.Unmarshal(body, &payload)).To(Succeed())
	return payload.Statuses
}
