package writers

// Writer saves a set of named documents and returns where they were written.
type Writer interface {
	Write(files map[string]string) (string, error)
}
