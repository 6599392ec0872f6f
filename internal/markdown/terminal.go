package markdown

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// Theme is the persisted colour preference of the client.
type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

// ParseTheme validates s and returns the matching Theme.
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case ThemeLight, ThemeDark, ThemeSystem:
		return Theme(s), nil
	default:
		return "", fmt.Errorf("unknown theme %q (want light, dark or system)", s)
	}
}

// TerminalRenderer renders post bodies for display in a terminal using glamour.
type TerminalRenderer struct {
	theme Theme
	width int
	r     *glamour.TermRenderer
}

// NewTerminalRenderer builds a renderer for the given theme. Width defaults
// to 80 columns.
func NewTerminalRenderer(theme Theme, width int) (*TerminalRenderer, error) {
	if width <= 0 {
		width = 80
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	switch theme {
	case ThemeLight:
		opts = append(opts, glamour.WithStandardStyle("light"))
	case ThemeDark:
		opts = append(opts, glamour.WithStandardStyle("dark"))
	default:
		theme = ThemeSystem
		opts = append(opts, glamour.WithAutoStyle())
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}
	return &TerminalRenderer{theme: theme, width: width, r: r}, nil
}

// Theme reports the theme the renderer was built with.
func (t *TerminalRenderer) Theme() Theme {
	return t.theme
}

// Render formats text for the terminal. On renderer failure the raw text is
// returned so a post can always be displayed.
func (t *TerminalRenderer) Render(text string) string {
	if t == nil || t.r == nil {
		return text
	}
	out, err := t.r.Render(text)
	if err != nil {
		return text
	}
	return out
}
