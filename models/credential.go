package models

// Credential is one stored secret bundle owned by an organization. The
// secret payload itself never reaches this tier; selection only needs the
// id and the provider it authorizes.
type Credential struct {
	CredentialID    int    `json:"credential_id"`
	CloudProviderID int    `json:"cloud_provider_id"`
	Name            string `json:"name,omitempty"`
}
