package failures

import (
	"errors"
	"strings"
)

// Kind classifies a failure so callers can decide whether to stop the run or record the failure and move on.
type Kind int

const (
	KindAuth Kind = iota + 1
	KindConfig
	KindSourceProject
	KindEmptySource
	KindProjectCreation
	KindSecretDuplication
	KindUnknownTemplate
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "AuthError"
	case KindConfig:
		return "ConfigError"
	case KindSourceProject:
		return "SourceProjectError"
	case KindEmptySource:
		return "EmptySourceError"
	case KindProjectCreation:
		return "ProjectCreationError"
	case KindSecretDuplication:
		return "SecretDuplicationError"
	case KindUnknownTemplate:
		return "UnknownTemplateError"
	default:
		return "UnknownError"
	}
}

// Fatal reports whether a failure of this kind aborts the whole run.
func (k Kind) Fatal() bool {
	return k == KindAuth || k == KindConfig || k == KindSourceProject
}

// Error is a failure with enough context (environment, project, secret key) to diagnose it without a retry.
type Error struct {
	Kind        Kind
	Environment string
	Project     string
	SecretKey   string
	Message     string
	Err         error
}

// Sentinels used with errors.Is. Only the Kind is compared.
var (
	ErrAuth              = &Error{Kind: KindAuth}
	ErrConfig            = &Error{Kind: KindConfig}
	ErrSourceProject     = &Error{Kind: KindSourceProject}
	ErrEmptySource       = &Error{Kind: KindEmptySource}
	ErrProjectCreation   = &Error{Kind: KindProjectCreation}
	ErrSecretDuplication = &Error{Kind: KindSecretDuplication}
	ErrUnknownTemplate   = &Error{Kind: KindUnknownTemplate}
)

func (e *Error) Error() string {
	parts := []string{e.Kind.String()}

	if e.Environment != "" {
		parts = append(parts, "environment "+e.Environment)
	}

	if e.Project != "" {
		parts = append(parts, "project "+e.Project)
	}

	if e.SecretKey != "" {
		parts = append(parts, "secret "+e.SecretKey)
	}

	msg := strings.Join(parts, ", ")

	if e.Message != "" {
		msg += ": " + e.Message
	}

	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}

	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind, so errors.Is(err, ErrAuth) works on a fully populated error.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return t.Kind == e.Kind
}

// New builds an error of the given kind with a message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an error of the given kind around a cause.
func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf returns the Kind of the first *Error in the chain, or 0 if there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return 0
}

// IsFatal reports whether err should abort the run. Errors without a Kind are treated as fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}

	kind := KindOf(err)
	if kind == 0 {
		return true
	}

	return kind.Fatal()
}

// WithEnvironment sets the environment name on the first *Error in the chain if it is not already set.
func WithEnvironment(err error, environment string) error {
	var e *Error
	if errors.As(err, &e) && e.Environment == "" {
		e.Environment = environment
	}

	return err
}
