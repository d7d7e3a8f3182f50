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

type projectService interface {
	GetProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	CreateProject(ctx context.Context, name string, description string, provider models.CloudProvider, orgID int, ownerID int) (*models.Project, error)
	GetWorkspaces(ctx context.Context, projectID string) ([]models.Workspace, error)
	CreateWorkspace(ctx context.Context, projectID string, name string, environment string, description string) (*models.Workspace, error)
}

type ProjectHandler struct {
	ps projectService
}

func NewProjectHandler(ps projectService) *ProjectHandler {
	return &ProjectHandler{ps: ps}
}

func ServeProjectResources(router *mux.Router, ps projectService, orgID int, userID int) {
	h := NewProjectHandler(ps)

	session := middleware.Session(orgID, userID)

	router.Handle("/projects", app.Adapt(
		router,
		h.GetProjects(),
		middleware.Logging(),
		app.WithRequestContext(),
	)).Methods("GET")

	router.Handle("/projects", app.Adapt(
		router,
		h.CreateProject(),
		session,
		middleware.Logging(),
		app.WithRequestContext(),
	)).Methods("POST")

	router.Handle("/projects/{id}", app.Adapt(
		router,
		h.GetProject(),
		middleware.Logging(),
		app.WithRequestContext(),
	)).Methods("GET")

	router.Handle("/workspaces/project/{id}", app.Adapt(
		router,
		h.GetWorkspaces(),
		middleware.Logging(),
		app.WithRequestContext(),
	)).Methods("GET")

	router.Handle("/workspaces/", app.Adapt(
		router,
		h.CreateWorkspace(),
		middleware.Logging(),
		app.WithRequestContext(),
	)).Methods("POST")
}

// ProjectList represents a list of returned Projects
type ProjectList struct {
	TotalCount int              `json:"total_count"`
	Projects   []models.Project `json:"projects"`
}

func (ph *ProjectHandler) GetProjects() app.Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := log.WithFields(log.Fields{
				"topic": "igfe",
				"event": "project_handler",
			})

			projects, err := ph.ps.GetProjects(r.Context())
			if err != nil {
				logger.Error(err)
				respondError(w, http.StatusBadGateway, err.Error())
				return
			}
			if projects == nil {
				projects = []models.Project{}
			}

			respondJSON(w, http.StatusOK, ProjectList{
				TotalCount: len(projects),
				Projects:   projects,
			})
		})
	}
}

func (ph *ProjectHandler) GetProject() app.Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := log.WithFields(log.Fields{
				"topic": "igfe",
				"event": "project_handler",
			})

			project, err := ph.ps.GetProject(r.Context(), mux.Vars(r)["id"])
			if err != nil {
				logger.Error(err)
				respondError(w, http.StatusBadGateway, err.Error())
				return
			}

			respondJSON(w, http.StatusOK, project)
		})
	}
}

type createProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Provider    string `json:"provider"`
}

func (ph *ProjectHandler) CreateProject() app.Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := log.WithFields(log.Fields{
				"topic": "igfe",
				"event": "project_handler",
			})

			rc := app.GetRequestContext(r)

			var body createProjectRequest
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				respondError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			if body.Name == "" {
				respondError(w, http.StatusBadRequest, "name must not be empty")
				return
			}

			project, err := ph.ps.CreateProject(r.Context(), body.Name, body.Description, models.CloudProvider(body.Provider), rc.OrgID(), rc.UserID())
			if err != nil {
				logger.Error(err)
				respondError(w, http.StatusBadGateway, err.Error())
				return
			}

			respondJSON(w, http.StatusCreated, project)
		})
	}
}

// WorkspaceList represents a list of returned Workspaces
type WorkspaceList struct {
	TotalCount int                `json:"total_count"`
	Workspaces []models.Workspace `json:"workspaces"`
}

func (ph *ProjectHandler) GetWorkspaces() app.Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := log.WithFields(log.Fields{
				"topic": "igfe",
				"event": "workspace_handler",
			})

			workspaces, err := ph.ps.GetWorkspaces(r.Context(), mux.Vars(r)["id"])
			if err != nil {
				logger.Error(err)
				respondError(w, http.StatusBadGateway, err.Error())
				return
			}
			if workspaces == nil {
				workspaces = []models.Workspace{}
			}

			respondJSON(w, http.StatusOK, WorkspaceList{
				TotalCount: len(workspaces),
				Workspaces: workspaces,
			})
		})
	}
}

type createWorkspaceRequest struct {
	ProjectID   string `json:"project_id"`
	Name        string `json:"name"`
	Environment string `json:"environment"`
	Description string `json:"description"`
}

func (ph *ProjectHandler) CreateWorkspace() app.Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := log.WithFields(log.Fields{
				"topic": "igfe",
				"event": "workspace_handler",
			})

			var body createWorkspaceRequest
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				respondError(w, http.StatusBadRequest, "invalid request body")
				return
			}
			if body.ProjectID == "" || body.Name == "" {
				respondError(w, http.StatusBadRequest, "project_id and name must not be empty")
				return
			}

			workspace, err := ph.ps.CreateWorkspace(r.Context(), body.ProjectID, body.Name, body.Environment, body.Description)
			if err != nil {
				logger.Error(err)
				respondError(w, http.StatusBadGateway, err.Error())
				return
			}

			respondJSON(w, http.StatusCreated, workspace)
		})
	}
}
