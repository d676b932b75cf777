package writers

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFileWriter(t *testing.T) {
	dir := t.TempDir()

	dest, err := NewFileWriter(dir).Write(map[string]string{"report.yaml": "hello", "nested/report.json": "{}"})

	if err != nil {
		t.Fatalf("Should not have returned an error")
	}

	if !strings.HasSuffix(dest, string(os.PathSeparator)) {
		t.Fatalf("The destination should end with a path separator")
	}

	contents, err := os.ReadFile(filepath.Join(dir, "report.yaml"))

	if err != nil || string(contents) != "hello" {
		t.Fatalf("The file should have been written")
	}

	info, err := os.Stat(filepath.Join(dir, "nested", "report.json"))

	if err != nil {
		t.Fatalf("The nested file should have been written")
	}

	if info.Mode().Perm() != 0600 {
		t.Fatalf("The file should only be readable by the owner, got %v", info.Mode().Perm())
	}
}

func TestFileWriterDefaultsToWorkingDir(t *testing.T) {
	writer := NewFileWriter("")

	if writer.dest != "."+string(os.PathSeparator) {
		t.Fatalf("The writer should have defaulted to the working dir, got %s", writer.dest)
	}
}

func TestConsoleWriterSortsByName(t *testing.T) {
	out := &bytes.Buffer{}

	_, err := ConsoleWriter{Out: out}.Write(map[string]string{"b": "2", "a": "1"})

	if err != nil {
		t.Fatalf("Should not have returned an error")
	}

	if out.String() != "a\n1\nb\n2\n" {
		t.Fatalf("Unexpected output %q", out.String())
	}
}
