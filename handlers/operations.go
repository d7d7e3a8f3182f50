package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/rengarajkamatchinathan/ig-fe/app"
	"github.com/rengarajkamatchinathan/ig-fe/middleware"
	"github.com/rengarajkamatchinathan/ig-fe/models"
	"github.com/rengarajkamatchinathan/ig-fe/services"
)

type operationRunner interface {
	RunChain(ctx context.Context, target models.OperationKind, rc services.RunContext) ([]models.OperationKind, error)
	Tracker() *services.StatusTracker
	Output() *services.OutputBuffer
}

type activeFileSource interface {
	ActiveFiles(workspaceID string) models.FileSet
}

type OperationHandler struct {
	os    operationRunner
	files activeFileSource
}

func NewOperationHandler(os operationRunner, files activeFileSource) *OperationHandler {
	return &OperationHandler{os: os, files: files}
}

func ServeOperationResources(router *mux.Router, os operationRunner, files activeFileSource, orgID int, userID int) {
	h := NewOperationHandler(os, files)

	router.Handle("/workspaces/{workspaceId}/operations/{kind}", app.Adapt(
		router,
		h.RunOperation(),
		middleware.Session(orgID, userID),
		middleware.Logging(),
		app.WithRequestContext(),
	)).Methods("POST")

	router.Handle("/operations/status", app.Adapt(
		router,
		h.GetStatus(),
		middleware.Logging(),
		app.WithRequestContext(),
	)).Methods("GET")

	router.Handle("/operations/reset", app.Adapt(
		router,
		h.ResetStatus(),
		middleware.Logging(),
		app.WithRequestContext(),
	)).Methods("POST")
}

type runOperationRequest struct {
	ProjectID string         `json:"project_id"`
	Provider  string         `json:"provider,omitempty"`
	TfFiles   models.FileSet `json:"tf_files,omitempty"`
}

// RunOperation executes the dependency chain for the requested kind and
// streams the shared output buffer to the caller as it grows.
func (oh *OperationHandler) RunOperation() app.Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := log.WithFields(log.Fields{
				"topic": "igfe",
				"event": "operation_handler",
			})

			vars := mux.Vars(r)
			rc := app.GetRequestContext(r)

			kind, err := models.ParseOperationKind(vars["kind"])
			if err != nil {
				respondError(w, http.StatusBadRequest, err.Error())
				return
			}
			workspaceID := vars["workspaceId"]

			var body runOperationRequest
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				respondError(w, http.StatusBadRequest, "invalid request body")
				return
			}

			// Advisory gate so a second request does not watch the active
			// chain's buffer. The engine re-checks before starting.
			if oh.os.Tracker().AnyRunning() {
				respondError(w, http.StatusConflict, services.ErrChainInFlight.Error())
				return
			}

			files := body.TfFiles
			if len(files) == 0 {
				files = oh.files.ActiveFiles(workspaceID)
			}

			run := services.RunContext{
				ProjectID:   body.ProjectID,
				WorkspaceID: workspaceID,
				OrgID:       rc.OrgID(),
				Provider:    models.CloudProvider(body.Provider),
				Files:       files,
			}

			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("X-Content-Type-Options", "nosniff")

			flusher, canFlush := w.(http.Flusher)
			cancel := oh.os.Output().Listen(func(chunk string) {
				w.Write([]byte(chunk))
				if canFlush {
					flusher.Flush()
				}
			})
			defer cancel()

			if _, err := oh.os.RunChain(r.Context(), kind, run); err != nil {
				if errors.Is(err, services.ErrChainInFlight) {
					// Lost the race to another chain; nothing was streamed.
					logger.Warn("chain refused mid-request")
					return
				}
				logger.Error(err)
			}
		})
	}
}

type statusResponse struct {
	Statuses   map[models.OperationKind]models.OperationStatus `json:"statuses"`
	Running    []models.OperationKind                          `json:"running"`
	AnyRunning bool                                            `json:"any_running"`
}

func (oh *OperationHandler) GetStatus() app.Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tracker := oh.os.Tracker()
			respondJSON(w, http.StatusOK, statusResponse{
				Statuses:   tracker.Snapshot(),
				Running:    tracker.Running(),
				AnyRunning: tracker.AnyRunning(),
			})
		})
	}
}

// ResetStatus is the explicit reset-all action: every status back to idle
// and the output buffer cleared.
func (oh *OperationHandler) ResetStatus() app.Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if oh.os.Tracker().AnyRunning() {
				respondError(w, http.StatusConflict, "cannot reset while an operation is running")
				return
			}
			oh.os.Tracker().Reset()
			oh.os.Output().Reset()
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
