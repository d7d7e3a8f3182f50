package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rengarajkamatchinathan/ig-fe/models"
)

// OperationRequest is the body every /terraform/{kind} endpoint expects.
type OperationRequest struct {
	ProjectID    string         `json:"project_id"`
	WorkspaceID  string         `json:"workspace_id"`
	TfFiles      models.FileSet `json:"tf_files"`
	CredentialID int            `json:"credential_id"`
}

// RunOperation starts one remote Terraform operation and returns its live
// output stream.
func (c *Client) RunOperation(ctx context.Context, kind models.OperationKind, req OperationRequest) (*Stream, error) {
	return c.Stream(ctx, fmt.Sprintf("/terraform/%s", kind), req)
}

func (c *Client) ListCredentials(ctx context.Context, orgID int) ([]models.Credential, error) {
	var creds []models.Credential
	err := c.Invoke(ctx, http.MethodGet, fmt.Sprintf("/credentials/org/%d", orgID), nil, &creds)
	return creds, err
}

func (c *Client) FetchHistory(ctx context.Context, workspaceID string) ([]models.HistoryEntry, error) {
	var entries []models.HistoryEntry
	err := c.Invoke(ctx, http.MethodGet, fmt.Sprintf("/prompt-history/workspace/%s", url.PathEscape(workspaceID)), nil, &entries)
	return entries, err
}

func (c *Client) FetchHistoryEntry(ctx context.Context, entryID string) (*models.HistoryEntry, error) {
	var entry models.HistoryEntry
	err := c.Invoke(ctx, http.MethodGet, fmt.Sprintf("/prompt-history/%s", url.PathEscape(entryID)), nil, &entry)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// Restore asks the backend to roll the workspace back to one history entry.
// The response is opaque; callers must re-fetch history afterward.
func (c *Client) Restore(ctx context.Context, entryID string, userID int, workspaceID string) error {
	q := url.Values{}
	q.Set("prompt_id", entryID)
	q.Set("user_id", fmt.Sprintf("%d", userID))
	q.Set("workspace_id", workspaceID)
	return c.Invoke(ctx, http.MethodPost, "/restore?"+q.Encode(), nil, nil)
}

// GenerateRequest is the body of /terraform/generate.
type GenerateRequest struct {
	CloudProvider string `json:"cloud_provider"`
	Prompt        string `json:"prompt"`
	Provider      string `json:"provider"`
	UserID        int    `json:"user_id"`
	WorkspaceID   string `json:"workspace_id"`
}

// Generate submits a generation request. The response body is returned
// decoded but callers should re-fetch history for the canonical result,
// since generation may complete asynchronously server-side.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*models.GeneratedContent, error) {
	var content models.GeneratedContent
	if err := c.Invoke(ctx, http.MethodPost, "/terraform/generate", req, &content); err != nil {
		return nil, err
	}
	return &content, nil
}

// projectWire is the backend's snake_case project shape.
type projectWire struct {
	ProjectID       json.Number `json:"project_id"`
	ProjectName     string      `json:"project_name"`
	Description     string      `json:"description"`
	CloudProviderID int         `json:"cloud_provider_id"`
	CreatedAt       *wireTime   `json:"created_at"`
	LastModified    *wireTime   `json:"last_modified"`
}

func (w projectWire) model() models.Project {
	p := models.Project{
		ID:          w.ProjectID.String(),
		Name:        w.ProjectName,
		Description: w.Description,
		Provider:    models.ProviderFromID(w.CloudProviderID),
	}
	if w.CreatedAt != nil {
		p.CreatedAt = &w.CreatedAt.Time
	}
	if w.LastModified != nil {
		p.LastModified = &w.LastModified.Time
	}
	return p
}

func (c *Client) ListProjects(ctx context.Context) ([]models.Project, error) {
	var wires []projectWire
	if err := c.Invoke(ctx, http.MethodGet, "/projects", nil, &wires); err != nil {
		return nil, err
	}
	projects := make([]models.Project, 0, len(wires))
	for _, w := range wires {
		projects = append(projects, w.model())
	}
	return projects, nil
}

func (c *Client) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var w projectWire
	if err := c.Invoke(ctx, http.MethodGet, fmt.Sprintf("/projects/%s", url.PathEscape(id)), nil, &w); err != nil {
		return nil, err
	}
	p := w.model()
	return &p, nil
}

func (c *Client) CreateProject(ctx context.Context, name string, description string, provider models.CloudProvider, orgID int, ownerID int) (*models.Project, error) {
	body := map[string]interface{}{
		"project_name":      name,
		"description":       description,
		"cloud_provider_id": models.ProviderIDs[provider],
		"org_id":            orgID,
		"owner_id":          ownerID,
	}
	var w projectWire
	if err := c.Invoke(ctx, http.MethodPost, "/projects", body, &w); err != nil {
		return nil, err
	}
	p := w.model()
	return &p, nil
}

type workspaceWire struct {
	WorkspaceID   json.Number `json:"workspace_id"`
	WorkspaceName string      `json:"workspace_name"`
	Environment   string      `json:"environment"`
	Description   string      `json:"description"`
	ProjectID     json.Number `json:"project_id"`
}

func (w workspaceWire) model() models.Workspace {
	return models.Workspace{
		ID:          w.WorkspaceID.String(),
		Name:        w.WorkspaceName,
		Environment: w.Environment,
		Description: w.Description,
		ProjectID:   w.ProjectID.String(),
	}
}

func (c *Client) ListWorkspaces(ctx context.Context, projectID string) ([]models.Workspace, error) {
	var wires []workspaceWire
	if err := c.Invoke(ctx, http.MethodGet, fmt.Sprintf("/workspaces/project/%s", url.PathEscape(projectID)), nil, &wires); err != nil {
		return nil, err
	}
	workspaces := make([]models.Workspace, 0, len(wires))
	for _, w := range wires {
		workspaces = append(workspaces, w.model())
	}
	return workspaces, nil
}

func (c *Client) CreateWorkspace(ctx context.Context, projectID string, name string, environment string, description string) (*models.Workspace, error) {
	body := map[string]interface{}{
		"project_id":     projectID,
		"workspace_name": name,
		"environment":    environment,
		"description":    description,
	}
	var w workspaceWire
	if err := c.Invoke(ctx, http.MethodPost, "/workspaces/", body, &w); err != nil {
		return nil, err
	}
	ws := w.model()
	return &ws, nil
}
