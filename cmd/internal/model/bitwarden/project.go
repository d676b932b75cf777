package bitwarden

// Project is a named grouping of secrets within an organization. Name is the decrypted name.
type Project struct {
	Id             string
	OrganizationId string
	Name           string
}

func (p Project) GetName() string {
	return p.Name
}

func (p Project) GetId() string {
	return p.Id
}
