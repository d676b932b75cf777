package writers

import (
	"fmt"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
	"io"
)

// ConsoleWriter prints each document after its name, sorted by name.
type ConsoleWriter struct {
	Out io.Writer
}

func (c ConsoleWriter) Write(files map[string]string) (string, error) {
	names := maps.Keys(files)
	slices.Sort(names)

	for _, name := range names {
		if _, err := fmt.Fprintln(c.Out, name); err != nil {
			return "", err
		}

		if _, err := fmt.Fprintln(c.Out, files[name]); err != nil {
			return "", err
		}
	}

	return "", nil
}
