package ui

import (
	"strings"

	chromastyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	glamourstyles "github.com/charmbracelet/glamour/styles"
)

// MarkdownRenderMargin is the left margin used for terminal markdown rendering.
const MarkdownRenderMargin = 2

const defaultCodeTheme = "monokai"

var markdownCodeTheme = defaultCodeTheme

// ConfigureMarkdownCodeTheme sets the syntax theme for fenced code in
// rendered descriptions. Unknown names fall back to the default.
func ConfigureMarkdownCodeTheme(theme string) {
	name := strings.ToLower(strings.TrimSpace(theme))
	if _, ok := chromastyles.Registry[name]; !ok {
		name = defaultCodeTheme
	}
	markdownCodeTheme = name
}

// RenderMarkdown renders markdown content, such as an item description, for
// terminal display.
func RenderMarkdown(content string, width int) (string, error) {
	if width <= 0 {
		width = DefaultTermWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(markdownStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(rendered, "\n") + "\n", nil
}

// markdownStyle is glamour's dark style with the accent color on headings
// and links, underlined top-level headings and the configured code theme.
func markdownStyle() ansi.StyleConfig {
	style := glamourstyles.DarkStyleConfig

	style.Document.Margin = uintPtr(MarkdownRenderMargin)
	style.Document.Color = nil

	if color, ok := AccentColor(); ok {
		style.Heading.Color = strPtr(color)
		style.Link.Color = strPtr(color)
		style.LinkText.Color = strPtr(color)
	}
	style.H1.Prefix = ""
	style.H1.Suffix = ""
	style.H1.BackgroundColor = nil
	style.H1.Underline = boolPtr(true)
	style.H2.Prefix = ""
	style.H2.Underline = boolPtr(true)
	style.H3.Prefix = ""

	style.Code.Color = strPtr("203")
	style.Code.BackgroundColor = nil
	style.Code.Prefix = ""
	style.Code.Suffix = ""

	// A Chroma block overrides Theme; drop it so the configured theme applies.
	style.CodeBlock.Chroma = nil
	style.CodeBlock.Theme = markdownCodeTheme
	style.CodeBlock.Color = strPtr("203")

	return style
}

func boolPtr(v bool) *bool { return &v }

func strPtr(v string) *string { return &v }

func uintPtr(v uint) *uint { return &v }
