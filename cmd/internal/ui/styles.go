package ui

import (
	"fmt"
	"github.com/charmbracelet/lipgloss"
	"io"
	"strings"
)

var (
	primaryColor   = lipgloss.Color("#B4A7D6")
	successColor   = lipgloss.Color("#A8E6CF")
	errorColor     = lipgloss.Color("#FFB3BA")
	warningColor   = lipgloss.Color("#FFE5B4")
	mutedColor     = lipgloss.Color("#C5C6C8")
	highlightColor = lipgloss.Color("#B3D9FF")

	SuccessStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(successColor)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)

	WarningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	MutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	HighlightStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(highlightColor)

	PromptStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	ListItemStyle = lipgloss.NewStyle().
			Foreground(highlightColor).
			PaddingLeft(2)
)

const (
	IconSuccess = "✓"
	IconError   = "✗"
	IconWarning = "!"
	IconInfo    = "→"
	IconItem    = "•"
)

func PrintTitle(w io.Writer, text string) {
	banner := lipgloss.NewStyle().
		Bold(true).
		Foreground(primaryColor).
		Border(lipgloss.DoubleBorder()).
		BorderForeground(primaryColor).
		Padding(0, 2).
		Render(text)
	fmt.Fprintln(w)
	fmt.Fprintln(w, banner)
	fmt.Fprintln(w)
}

func PrintSuccess(w io.Writer, icon, message string) {
	fmt.Fprintln(w, SuccessStyle.Render(fmt.Sprintf("%s %s", icon, message)))
}

func PrintError(w io.Writer, icon, message string) {
	fmt.Fprintln(w, ErrorStyle.Render(fmt.Sprintf("%s %s", icon, message)))
}

func PrintWarning(w io.Writer, icon, message string) {
	fmt.Fprintln(w, WarningStyle.Render(fmt.Sprintf("%s %s", icon, message)))
}

func PrintInfo(w io.Writer, icon, message string) {
	fmt.Fprintln(w, HighlightStyle.Render(fmt.Sprintf("%s %s", icon, message)))
}

func PrintMuted(w io.Writer, message string) {
	fmt.Fprintln(w, MutedStyle.Render(message))
}

func PrintPrompt(w io.Writer, message string) {
	fmt.Fprint(w, PromptStyle.Render(message))
}

func PrintListItem(w io.Writer, icon, name string) {
	fmt.Fprintln(w, ListItemStyle.Render(fmt.Sprintf("%s %s", icon, name)))
}

func PrintDivider(w io.Writer) {
	PrintDividerWidth(w, 50)
}

func PrintDividerWidth(w io.Writer, width int) {
	if width < 1 {
		width = 50
	}
	divider := lipgloss.NewStyle().
		Foreground(primaryColor).
		Render(strings.Repeat("─", width))
	fmt.Fprintln(w, divider)
}
