package ui

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintersWriteMessage(t *testing.T) {
	out := &bytes.Buffer{}

	PrintSuccess(out, IconSuccess, "created backend-dev")
	PrintError(out, IconError, "failed DB_PASSWORD")
	PrintListItem(out, IconItem, "dev")
	PrintMuted(out, "muted")

	for _, expected := range []string{"✓ created backend-dev", "✗ failed DB_PASSWORD", "• dev", "muted"} {
		if !strings.Contains(out.String(), expected) {
			t.Fatalf("Expected %q in %q", expected, out.String())
		}
	}
}

func TestPrintDividerWidth(t *testing.T) {
	out := &bytes.Buffer{}

	PrintDividerWidth(out, 3)

	if !strings.Contains(out.String(), "───") || strings.Contains(out.String(), "────") {
		t.Fatalf("The divider should be 3 characters wide, got %q", out.String())
	}
}
