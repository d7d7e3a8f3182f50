package services

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/rengarajkamatchinathan/ig-fe/models"
)

type projectAPI interface {
	ListProjects(ctx context.Context) ([]models.Project, error)
	GetProject(ctx context.Context, id string) (*models.Project, error)
	CreateProject(ctx context.Context, name string, description string, provider models.CloudProvider, orgID int, ownerID int) (*models.Project, error)
	ListWorkspaces(ctx context.Context, projectID string) ([]models.Workspace, error)
	CreateWorkspace(ctx context.Context, projectID string, name string, environment string, description string) (*models.Workspace, error)
}

type listCache interface {
	SaveProjects(projects []models.Project) error
	LoadProjects() ([]models.Project, error)
	SaveWorkspaces(projectID string, workspaces []models.Workspace) error
	LoadWorkspaces(projectID string) ([]models.Workspace, error)
}

// ProjectService fronts the backend's project and workspace CRUD. Lists are
// cached locally on every successful fetch and served from cache when the
// backend is unreachable; the cache may be stale or absent and both are
// tolerated.
type ProjectService struct {
	api   projectAPI
	cache listCache
}

func NewProjectService(api projectAPI, cache listCache) *ProjectService {
	return &ProjectService{api: api, cache: cache}
}

func (s *ProjectService) GetProjects(ctx context.Context) ([]models.Project, error) {
	logger := log.WithFields(log.Fields{
		"topic":   "igfe",
		"package": "services",
		"event":   "get_projects",
	})

	projects, err := s.api.ListProjects(ctx)
	if err != nil {
		logger.WithError(err).Warn("project list fetch failed, trying cache")
		cached, cerr := s.cache.LoadProjects()
		if cerr != nil {
			return nil, err
		}
		return cached, nil
	}

	if cerr := s.cache.SaveProjects(projects); cerr != nil {
		logger.WithError(cerr).Warn("project cache write failed")
	}
	return projects, nil
}

func (s *ProjectService) GetProject(ctx context.Context, id string) (*models.Project, error) {
	return s.api.GetProject(ctx, id)
}

func (s *ProjectService) CreateProject(ctx context.Context, name string, description string, provider models.CloudProvider, orgID int, ownerID int) (*models.Project, error) {
	if provider == "" {
		provider = models.DefaultProvider
	}
	return s.api.CreateProject(ctx, name, description, provider, orgID, ownerID)
}

func (s *ProjectService) GetWorkspaces(ctx context.Context, projectID string) ([]models.Workspace, error) {
	logger := log.WithFields(log.Fields{
		"topic":   "igfe",
		"package": "services",
		"event":   "get_workspaces",
		"project": projectID,
	})

	workspaces, err := s.api.ListWorkspaces(ctx, projectID)
	if err != nil {
		logger.WithError(err).Warn("workspace list fetch failed, trying cache")
		cached, cerr := s.cache.LoadWorkspaces(projectID)
		if cerr != nil {
			return nil, err
		}
		return cached, nil
	}

	if cerr := s.cache.SaveWorkspaces(projectID, workspaces); cerr != nil {
		logger.WithError(cerr).Warn("workspace cache write failed")
	}
	return workspaces, nil
}

func (s *ProjectService) CreateWorkspace(ctx context.Context, projectID string, name string, environment string, description string) (*models.Workspace, error) {
	return s.api.CreateWorkspace(ctx, projectID, name, environment, description)
}
