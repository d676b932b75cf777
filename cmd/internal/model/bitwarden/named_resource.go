package bitwarden

// NamedResource provides a common interface for any resource that has a name and an ID.
type NamedResource interface {
	GetName() string
	GetId() string
}
