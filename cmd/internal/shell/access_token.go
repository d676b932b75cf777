package shell

import (
	"errors"
	"github.com/OctopusSolutionsEngineering/BitwardenProjectDuplicator/cmd/internal/ui"
	"golang.org/x/term"
	"io"
	"strings"
)

// PromptAccessToken reads the access token from the terminal without echoing it.
func PromptAccessToken(fd int, out io.Writer) (string, error) {
	if !term.IsTerminal(fd) {
		return "", errors.New("ACCESS_TOKEN is not set and the input is not a terminal")
	}

	ui.PrintPrompt(out, "Enter the machine account access token: ")
	token, err := term.ReadPassword(fd)
	_, _ = io.WriteString(out, "\n")

	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(token)), nil
}
