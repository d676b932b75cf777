package bitwarden

// SecretSummary is the lightweight listing view of a secret. It carries no value or note.
// ProjectId is empty when the secret is not assigned to a project.
type SecretSummary struct {
	Id             string
	OrganizationId string
	ProjectId      string
	Key            string
}

func (s SecretSummary) GetName() string {
	return s.Key
}

func (s SecretSummary) GetId() string {
	return s.Id
}

// Secret is the full, decrypted body of a secret.
type Secret struct {
	Id             string
	OrganizationId string
	ProjectId      string
	Key            string
	Value          string
	Note           string
}

func (s Secret) GetName() string {
	return s.Key
}

func (s Secret) GetId() string {
	return s.Id
}
