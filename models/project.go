package models

import "time"

// CloudProvider is the semantic provider name. The backend wire format uses
// numeric ids instead, see ProviderIDs.
type CloudProvider string

const (
	ProviderAWS   CloudProvider = "aws"
	ProviderAzure CloudProvider = "azure"
	ProviderGCP   CloudProvider = "gcp"

	// DefaultProvider is assumed whenever a project has no provider set.
	DefaultProvider = ProviderAWS
)

var ProviderIDs = map[CloudProvider]int{
	ProviderAWS:   1,
	ProviderAzure: 2,
	ProviderGCP:   3,
}

var ProviderNames = map[int]CloudProvider{
	1: ProviderAWS,
	2: ProviderAzure,
	3: ProviderGCP,
}

// ProviderFromID maps a wire cloud_provider_id to its name, falling back to
// the default provider for unknown or unset ids.
func ProviderFromID(id int) CloudProvider {
	if name, ok := ProviderNames[id]; ok {
		return name
	}
	return DefaultProvider
}

type Project struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	Provider     CloudProvider `json:"provider"`
	CreatedAt    *time.Time    `json:"created_at,omitempty"`
	LastModified *time.Time    `json:"last_modified,omitempty"`
}

type Workspace struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Environment string `json:"environment"`
	Description string `json:"description"`
	ProjectID   string `json:"project_id"`
}
