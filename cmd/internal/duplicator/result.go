package duplicator

// Result summarises one duplication. It is built while the duplication runs and is only kept for reporting.
type Result struct {
	EnvironmentName  string
	ProjectName      string
	ProjectId        string
	SecretsTotal     int
	SecretsSucceeded int
	Errors           []error
}

// Failed is the number of secrets that were not duplicated.
func (r Result) Failed() int {
	return r.SecretsTotal - r.SecretsSucceeded
}

// Succeeded returns true if the project was created and every secret was duplicated.
func (r Result) Succeeded() bool {
	return r.ProjectId != "" && len(r.Errors) == 0 && r.SecretsSucceeded == r.SecretsTotal
}

// ErrorMessages returns the accumulated errors as strings.
func (r Result) ErrorMessages() []string {
	messages := make([]string, 0, len(r.Errors))
	for _, err := range r.Errors {
		messages = append(messages, err.Error())
	}

	return messages
}
