package credentials

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/rengarajkamatchinathan/ig-fe/models"
)

// Reasons surfaced when no credential could be selected.
const (
	ReasonMissingOrg  = "missing org"
	ReasonFetchFailed = "fetch failed"
	ReasonNoneStored  = "no credentials for organization"
	ReasonNoMatch     = "no matching credentials for provider"
)

// Selection is the outcome of resolving the one credential that should
// authorize operations for a project. Either CredentialID is positive, or
// Reason says why no credential applies.
type Selection struct {
	CredentialID int    `json:"credential_id,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

func (s Selection) Resolved() bool {
	return s.CredentialID > 0
}

type credentialLister interface {
	ListCredentials(ctx context.Context, orgID int) ([]models.Credential, error)
}

// Resolver selects the active credential for an organization and provider.
// Resolution is a pure function of the fetched list plus the provider; it
// holds no state and never retries.
type Resolver struct {
	api credentialLister
}

func NewResolver(api credentialLister) *Resolver {
	return &Resolver{api: api}
}

// Resolve picks the first stored credential matching the project provider.
// Stored order is stable, so the same inputs always select the same id.
func (r *Resolver) Resolve(ctx context.Context, orgID int, provider models.CloudProvider) Selection {
	logger := log.WithFields(log.Fields{
		"topic":   "igfe",
		"package": "credentials",
		"event":   "resolve",
		"org":     orgID,
	})

	if orgID <= 0 {
		logger.Warn("credential resolution without an organization")
		return Selection{Reason: ReasonMissingOrg}
	}

	if provider == "" {
		provider = models.DefaultProvider
	}

	creds, err := r.api.ListCredentials(ctx, orgID)
	if err != nil {
		logger.Error(err)
		return Selection{Reason: ReasonFetchFailed}
	}

	if len(creds) == 0 {
		return Selection{Reason: ReasonNoneStored}
	}

	wantID := models.ProviderIDs[provider]
	for _, cred := range creds {
		if cred.CloudProviderID == wantID {
			logger.WithField("credential", cred.CredentialID).Debug("credential selected")
			return Selection{CredentialID: cred.CredentialID}
		}
	}

	return Selection{Reason: ReasonNoMatch}
}
