package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"

	"github.com/rengarajkamatchinathan/ig-fe/app"
	"github.com/rengarajkamatchinathan/ig-fe/middleware"
	"github.com/rengarajkamatchinathan/ig-fe/models"
)

type historyService interface {
	Refresh(ctx context.Context, workspaceID string) ([]models.HistoryEntry, error)
	CurrentVersion(workspaceID string) int
	HasInfrastructure(workspaceID string) bool
	ActiveFiles(workspaceID string) models.FileSet
	ReplaceActiveFiles(workspaceID string, files models.FileSet)
	UpdateActiveFile(workspaceID string, path string, content string)
	View(ctx context.Context, workspaceID string, entryID string) (models.FileSet, error)
	RestoreEntry(ctx context.Context, workspaceID string, entryID string, userID int) ([]models.HistoryEntry, error)
	Generate(ctx context.Context, workspaceID string, prompt string, provider models.CloudProvider, userID int) ([]models.HistoryEntry, error)
}

type HistoryHandler struct {
	hs historyService
}

func NewHistoryHandler(hs historyService) *HistoryHandler {
	return &HistoryHandler{hs: hs}
}

func ServeHistoryResources(router *mux.Router, hs historyService, orgID int, userID int) {
	h := NewHistoryHandler(hs)

	session := middleware.Session(orgID, userID)

	router.Handle("/workspaces/{workspaceId}/history", app.Adapt(
		router,
		h.GetHistory(),
		session,
		middleware.Logging(),
		app.WithRequestContext(),
	)).Methods("GET")

	router.Handle("/workspaces/{workspaceId}/generate", app.Adapt(
		router,
		h.Generate(),
		session,
		middleware.Logging(),
		app.WithRequestContext(),
	)).Methods("POST")

	router.Handle("/workspaces/{workspaceId}/history/{id}/view", app.Adapt(
		router,
		h.ViewEntry(),
		session,
		middleware.Logging(),
		app.WithRequestContext(),
	)).Methods("POST")

	router.Handle("/workspaces/{workspaceId}/history/{id}/restore", app.Adapt(
		router,
		h.RestoreEntry(),
		session,
		middleware.Logging(),
		app.WithRequestContext(),
	)).Methods("POST")

	router.Handle("/workspaces/{workspaceId}/files", app.Adapt(
		router,
		h.GetFiles(),
		middleware.Logging(),
		app.WithRequestContext(),
	)).Methods("GET")

	router.Handle("/workspaces/{workspaceId}/files", app.Adapt(
		router,
		h.ReplaceFiles(),
		middleware.Logging(),
		app.WithRequestContext(),
	)).Methods("PUT")

	router.Handle("/workspaces/{workspaceId}/files", app.Adapt(
		router,
		h.UpdateFile(),
		middleware.Logging(),
		app.WithRequestContext(),
	)).Methods("PATCH")
}

// historyResponse is the canonical history view the UI renders: the entry
// list oldest-first, the derived version counter and whether the last entry
// carries any infrastructure.
type historyResponse struct {
	Entries           []models.HistoryEntry `json:"entries"`
	CurrentVersion    int                   `json:"current_version"`
	HasInfrastructure bool                  `json:"has_infrastructure"`
}

func (hh *HistoryHandler) historyPayload(workspaceID string, entries []models.HistoryEntry) historyResponse {
	if entries == nil {
		entries = []models.HistoryEntry{}
	}
	return historyResponse{
		Entries:           entries,
		CurrentVersion:    hh.hs.CurrentVersion(workspaceID),
		HasInfrastructure: hh.hs.HasInfrastructure(workspaceID),
	}
}

func (hh *HistoryHandler) GetHistory() app.Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := log.WithFields(log.Fields{
				"topic": "igfe",
				"event": "history_handler",
			})

			workspaceID := mux.Vars(r)["workspaceId"]
			entries, err := hh.hs.Refresh(r.Context(), workspaceID)
			if err != nil {
				logger.Error(err)
				respondError(w, http.StatusBadGateway, err.Error())
				return
			}

			respondJSON(w, http.StatusOK, hh.historyPayload(workspaceID, entries))
		})
	}
}

type generateRequest struct {
	Prompt   string `json:"prompt"`
	Provider string `json:"provider,omitempty"`
}

func (hh *HistoryHandler) Generate() app.Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := log.WithFields(log.Fields{
				"topic": "igfe",
				"event": "generate_handler",
			})

			workspaceID := mux.Vars(r)["workspaceId"]
			rc := app.GetRequestContext(r)

			var body generateRequest
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				respondError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			if body.Prompt == "" {
				respondError(w, http.StatusBadRequest, "prompt must not be empty")
				return
			}

			entries, err := hh.hs.Generate(r.Context(), workspaceID, body.Prompt, models.CloudProvider(body.Provider), rc.UserID())
			if err != nil {
				logger.Error(err)
				respondError(w, http.StatusBadGateway, err.Error())
				return
			}

			respondJSON(w, http.StatusOK, hh.historyPayload(workspaceID, entries))
		})
	}
}

// filesResponse pairs the flat FileSet with its display tree so the file
// explorer never rebuilds nesting client-side.
type filesResponse struct {
	Files      models.FileSet     `json:"files"`
	Tree       []*models.FileNode `json:"tree"`
	HasContent bool               `json:"has_content"`
}

func filesPayload(files models.FileSet) filesResponse {
	if files == nil {
		files = models.FileSet{}
	}
	return filesResponse{
		Files:      files,
		Tree:       files.Tree(),
		HasContent: files.HasContent(),
	}
}

func (hh *HistoryHandler) ViewEntry() app.Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := log.WithFields(log.Fields{
				"topic": "igfe",
				"event": "view_handler",
			})

			vars := mux.Vars(r)
			files, err := hh.hs.View(r.Context(), vars["workspaceId"], vars["id"])
			if err != nil {
				logger.Error(err)
				respondError(w, http.StatusBadGateway, err.Error())
				return
			}

			respondJSON(w, http.StatusOK, filesPayload(files))
		})
	}
}

func (hh *HistoryHandler) RestoreEntry() app.Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := log.WithFields(log.Fields{
				"topic": "igfe",
				"event": "restore_handler",
			})

			vars := mux.Vars(r)
			rc := app.GetRequestContext(r)

			entries, err := hh.hs.RestoreEntry(r.Context(), vars["workspaceId"], vars["id"], rc.UserID())
			if err != nil {
				logger.Error(err)
				respondError(w, http.StatusBadGateway, err.Error())
				return
			}

			respondJSON(w, http.StatusOK, hh.historyPayload(vars["workspaceId"], entries))
		})
	}
}

func (hh *HistoryHandler) GetFiles() app.Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			workspaceID := mux.Vars(r)["workspaceId"]
			respondJSON(w, http.StatusOK, filesPayload(hh.hs.ActiveFiles(workspaceID)))
		})
	}
}

type replaceFilesRequest struct {
	Files models.FileSet `json:"files"`
}

func (hh *HistoryHandler) ReplaceFiles() app.Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			workspaceID := mux.Vars(r)["workspaceId"]

			var body replaceFilesRequest
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				respondError(w, http.StatusBadRequest, "invalid request body")
				return
			}

			hh.hs.ReplaceActiveFiles(workspaceID, body.Files)
			w.WriteHeader(http.StatusNoContent)
		})
	}
}

type updateFileRequest struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

func (hh *HistoryHandler) UpdateFile() app.Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			workspaceID := mux.Vars(r)["workspaceId"]

			var body updateFileRequest
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				respondError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			if body.Path == "" {
				respondError(w, http.StatusBadRequest, "path must not be empty")
				return
			}

			hh.hs.UpdateActiveFile(workspaceID, body.Path, body.Content)
			w.WriteHeader(http.StatusNoContent)
		})
	}
}
