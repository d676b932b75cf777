package failures

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMatchesKind(t *testing.T) {
	err := fmt.Errorf("outer: %w", &Error{Kind: KindProjectCreation, Project: "backend-dev", Message: "name conflict"})

	if !errors.Is(err, ErrProjectCreation) {
		t.Fatalf("error should have matched ErrProjectCreation")
	}

	if errors.Is(err, ErrAuth) {
		t.Fatalf("error should not have matched ErrAuth")
	}
}

func TestIsFatal(t *testing.T) {
	if !IsFatal(New(KindAuth, "token expired")) {
		t.Fatalf("auth errors should be fatal")
	}

	if !IsFatal(New(KindConfig, "bad template")) {
		t.Fatalf("config errors should be fatal")
	}

	if IsFatal(New(KindSecretDuplication, "create failed")) {
		t.Fatalf("secret duplication errors should not be fatal")
	}

	if IsFatal(New(KindUnknownTemplate, "qa")) {
		t.Fatalf("unknown template errors should not be fatal")
	}

	if !IsFatal(errors.New("plain error")) {
		t.Fatalf("errors without a kind should be fatal")
	}

	if IsFatal(nil) {
		t.Fatalf("nil should not be fatal")
	}
}

func TestErrorMessageIncludesContext(t *testing.T) {
	err := Wrap(KindSecretDuplication, errors.New("status 500"), "create failed")
	err.Environment = "staging"
	err.SecretKey = "DB_PASSWORD"

	expected := "SecretDuplicationError, environment staging, secret DB_PASSWORD: create failed: status 500"
	if err.Error() != expected {
		t.Fatalf("expected %q, got %q", expected, err.Error())
	}
}

func TestWithEnvironment(t *testing.T) {
	err := WithEnvironment(New(KindEmptySource, "no secrets"), "prod")

	if KindOf(err) != KindEmptySource {
		t.Fatalf("kind should have been preserved")
	}

	var e *Error
	if !errors.As(err, &e) || e.Environment != "prod" {
		t.Fatalf("environment should have been prod")
	}
}
