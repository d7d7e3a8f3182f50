package services

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/rengarajkamatchinathan/ig-fe/client"
	"github.com/rengarajkamatchinathan/ig-fe/models"
)

type historyAPI interface {
	FetchHistory(ctx context.Context, workspaceID string) ([]models.HistoryEntry, error)
	FetchHistoryEntry(ctx context.Context, entryID string) (*models.HistoryEntry, error)
	Restore(ctx context.Context, entryID string, userID int, workspaceID string) error
	Generate(ctx context.Context, req client.GenerateRequest) (*models.GeneratedContent, error)
}

// workspaceHistory is the client-visible state for one workspace: the
// entries as of the last fetch and the one FileSet materialized from them.
// The active FileSet is always derived from exactly one entry, never merged
// from two.
type workspaceHistory struct {
	entries []models.HistoryEntry
	active  models.FileSet
}

// HistoryService owns the generation history and the active FileSet per
// workspace. The entry list is only ever replaced wholesale by a fresh
// fetch; restore and generate responses are never trusted directly.
type HistoryService struct {
	api historyAPI

	mu         sync.Mutex
	workspaces map[string]*workspaceHistory
}

func NewHistoryService(api historyAPI) *HistoryService {
	return &HistoryService{
		api:        api,
		workspaces: make(map[string]*workspaceHistory),
	}
}

func (s *HistoryService) state(workspaceID string) *workspaceHistory {
	ws, ok := s.workspaces[workspaceID]
	if !ok {
		ws = &workspaceHistory{}
		s.workspaces[workspaceID] = ws
	}
	return ws
}

// Refresh fetches the canonical history (oldest first) and materializes the
// latest entry into the active FileSet. A last entry without infrastructure
// leaves the active FileSet empty, which is how "no infrastructure yet" is
// reported.
func (s *HistoryService) Refresh(ctx context.Context, workspaceID string) ([]models.HistoryEntry, error) {
	logger := log.WithFields(log.Fields{
		"topic":     "igfe",
		"package":   "services",
		"event":     "history_refresh",
		"workspace": workspaceID,
	})

	entries, err := s.api.FetchHistory(ctx, workspaceID)
	if err != nil {
		logger.Error(err)
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ws := s.state(workspaceID)
	ws.entries = entries
	ws.active = nil
	if len(entries) > 0 {
		last := entries[len(entries)-1]
		if last.HasInfrastructure() {
			ws.active = last.GeneratedContent.Infrastructure.Copy()
		}
	}

	logger.WithField("entries", len(entries)).Debug("history refreshed")
	return entries, nil
}

// Entries returns the history as of the last fetch.
func (s *HistoryService) Entries(workspaceID string) []models.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.HistoryEntry(nil), s.state(workspaceID).entries...)
}

// CurrentVersion is the 1-based count of entries at the time of the last
// fetch. It only moves by re-fetching, never speculatively.
func (s *HistoryService) CurrentVersion(workspaceID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state(workspaceID).entries)
}

// HasInfrastructure reports whether the workspace has anything generated:
// the last entry must carry a non-empty snapshot.
func (s *HistoryService) HasInfrastructure(workspaceID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.state(workspaceID).entries
	if len(entries) == 0 {
		return false
	}
	return entries[len(entries)-1].HasInfrastructure()
}

// ActiveFiles returns a copy of the active FileSet.
func (s *HistoryService) ActiveFiles(workspaceID string) models.FileSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state(workspaceID).active.Copy()
}

// ReplaceActiveFiles swaps in an edited FileSet wholesale. The editor owns
// content, this service owns the lifecycle.
func (s *HistoryService) ReplaceActiveFiles(workspaceID string, files models.FileSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state(workspaceID).active = files.Copy()
}

// UpdateActiveFile is the scoped-path variant for single-file edits.
func (s *HistoryService) UpdateActiveFile(workspaceID string, path string, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws := s.state(workspaceID)
	next := ws.active.Copy()
	if next == nil {
		next = models.FileSet{}
	}
	next[path] = content
	ws.active = next
}

// View materializes one past entry into the active FileSet without touching
// history. An entry without a snapshot yields an empty FileSet.
func (s *HistoryService) View(ctx context.Context, workspaceID string, entryID string) (models.FileSet, error) {
	entry, err := s.api.FetchHistoryEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}

	var files models.FileSet
	if entry.HasInfrastructure() {
		files = entry.GeneratedContent.Infrastructure.Copy()
	}

	s.mu.Lock()
	s.state(workspaceID).active = files
	s.mu.Unlock()

	return files.Copy(), nil
}

// RestoreEntry asks the backend to roll the workspace back to one entry,
// then re-fetches history for the new canonical state. The rollback
// response itself is never used as the snapshot.
func (s *HistoryService) RestoreEntry(ctx context.Context, workspaceID string, entryID string, userID int) ([]models.HistoryEntry, error) {
	if err := s.api.Restore(ctx, entryID, userID, workspaceID); err != nil {
		return nil, err
	}
	return s.Refresh(ctx, workspaceID)
}

// Generate submits a new generation prompt and re-fetches history so the
// new entry is seen through the canonical list. Generation may be
// asynchronous server-side, so the response body is not trusted as the
// result.
func (s *HistoryService) Generate(ctx context.Context, workspaceID string, prompt string, provider models.CloudProvider, userID int) ([]models.HistoryEntry, error) {
	logger := log.WithFields(log.Fields{
		"topic":     "igfe",
		"package":   "services",
		"event":     "generate",
		"workspace": workspaceID,
	})

	if provider == "" {
		provider = models.DefaultProvider
	}

	_, err := s.api.Generate(ctx, client.GenerateRequest{
		CloudProvider: string(provider),
		Prompt:        prompt,
		Provider:      string(provider),
		UserID:        userID,
		WorkspaceID:   workspaceID,
	})
	if err != nil {
		logger.Error(err)
		return nil, err
	}

	return s.Refresh(ctx, workspaceID)
}
