// Package cache persists project and workspace lists to local YAML files so
// the console can fall back to the last known lists when the backend is
// unreachable. Entries are best-effort and may be stale.
package cache

import (
	"fmt"
	"os"
	"path/filepath"

	yamlv3 "gopkg.in/yaml.v3"

	"github.com/rengarajkamatchinathan/ig-fe/models"
)

type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) SaveProjects(projects []models.Project) error {
	return s.write("projects.yml", projects)
}

func (s *Store) LoadProjects() ([]models.Project, error) {
	var projects []models.Project
	if err := s.read("projects.yml", &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (s *Store) SaveWorkspaces(projectID string, workspaces []models.Workspace) error {
	return s.write(workspacesFile(projectID), workspaces)
}

func (s *Store) LoadWorkspaces(projectID string) ([]models.Workspace, error) {
	var workspaces []models.Workspace
	if err := s.read(workspacesFile(projectID), &workspaces); err != nil {
		return nil, err
	}
	return workspaces, nil
}

func workspacesFile(projectID string) string {
	return fmt.Sprintf("workspaces-%s.yml", projectID)
}

// write marshals data and lands it with a temp-file-plus-rename so readers
// never observe a half-written cache file.
func (s *Store) write(name string, data interface{}) error {
	content, err := yamlv3.Marshal(data)
	if err != nil {
		return fmt.Errorf("yaml marshal: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, ".igfe-cache-*.yml")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(content); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("atomic rename: %w", err)
	}
	return nil
}

func (s *Store) read(name string, out interface{}) error {
	content, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return err
	}
	if err := yamlv3.Unmarshal(content, out); err != nil {
		return fmt.Errorf("yaml unmarshal: %w", err)
	}
	return nil
}
