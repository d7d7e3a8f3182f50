package models

import (
	"encoding/json"
	"time"
)

// HistoryEntry is one recorded generation event for a workspace. Entries are
// append-only server-side; this tier only reads and replays them.
type HistoryEntry struct {
	ID               string            `json:"id"`
	PromptContent    string            `json:"prompt_content"`
	GeneratedContent *GeneratedContent `json:"generated_content"`
	CreatedAt        *time.Time        `json:"created_at,omitempty"`
}

// HasInfrastructure reports whether the entry carries a usable snapshot.
func (e HistoryEntry) HasInfrastructure() bool {
	return e.GeneratedContent != nil && len(e.GeneratedContent.Infrastructure) > 0
}

// GeneratedContent is the snapshot bundle stored alongside each prompt: the
// generated FileSet plus the analysis artifacts produced with it. Analysis
// payloads are opaque to this tier and passed through untouched.
type GeneratedContent struct {
	Infrastructure FileSet         `json:"infrastructure"`
	Security       json.RawMessage `json:"security,omitempty"`
	Costs          json.RawMessage `json:"costs,omitempty"`
	CostSummary    json.RawMessage `json:"cost_summary,omitempty"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	Documentation  json.RawMessage `json:"documentation,omitempty"`
}
