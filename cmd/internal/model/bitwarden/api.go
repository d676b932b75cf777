package bitwarden

// The types below mirror the JSON exchanged with the Secrets Manager API.
// Names, keys, values and notes are EncStrings on the wire.

type ProjectReference struct {
	Id   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type ProjectResponse struct {
	Id             string `json:"id"`
	OrganizationId string `json:"organizationId"`
	Name           string `json:"name"`
	CreationDate   string `json:"creationDate,omitempty"`
	RevisionDate   string `json:"revisionDate,omitempty"`
}

type ProjectCollection struct {
	Data []ProjectResponse `json:"data"`
}

type ProjectCreateRequest struct {
	Name string `json:"name"`
}

type SecretListItem struct {
	Id             string             `json:"id"`
	OrganizationId string             `json:"organizationId"`
	Key            string             `json:"key"`
	CreationDate   string             `json:"creationDate,omitempty"`
	RevisionDate   string             `json:"revisionDate,omitempty"`
	Projects       []ProjectReference `json:"projects"`
}

type SecretCollection struct {
	Secrets  []SecretListItem   `json:"secrets"`
	Projects []ProjectReference `json:"projects"`
}

type SecretResponse struct {
	Id             string             `json:"id"`
	OrganizationId string             `json:"organizationId"`
	Key            string             `json:"key"`
	Value          string             `json:"value"`
	Note           string             `json:"note"`
	CreationDate   string             `json:"creationDate,omitempty"`
	RevisionDate   string             `json:"revisionDate,omitempty"`
	Projects       []ProjectReference `json:"projects"`
}

type SecretCreateRequest struct {
	Key        string   `json:"key"`
	Value      string   `json:"value"`
	Note       string   `json:"note"`
	ProjectIds []string `json:"projectIds"`
}

// TokenResponse is returned by the identity server's connect/token endpoint.
type TokenResponse struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int    `json:"expires_in"`
	TokenType        string `json:"token_type"`
	Scope            string `json:"scope"`
	EncryptedPayload string `json:"encrypted_payload"`
}

// TokenPayload is the decrypted content of TokenResponse.EncryptedPayload.
type TokenPayload struct {
	EncryptionKey string `json:"encryptionKey"`
}

// ErrorResponse is the body returned with most 4xx responses.
type ErrorResponse struct {
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}
