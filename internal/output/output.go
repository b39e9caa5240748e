// Package output renders search results and answers for the terminal.
// Interactive terminals get styled output; pipes and CI get plain
// text.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/reportseek/reportseek/internal/answer"
	"github.com/reportseek/reportseek/internal/search"
	"github.com/reportseek/reportseek/internal/session"
)

// Color palette, single teal accent.
const (
	colorTeal     = "43"  // primary accent
	colorWhite    = "255" // headers
	colorGray     = "245" // secondary text
	colorDarkGray = "238" // separators
	colorYellow   = "220" // warnings
)

// Styles holds the terminal styles for rendering.
type Styles struct {
	Header    lipgloss.Style
	Filename  lipgloss.Style
	Score     lipgloss.Style
	Snippet   lipgloss.Style
	Warning   lipgloss.Style
	Dim       lipgloss.Style
	Separator lipgloss.Style
}

// DefaultStyles returns styled components for interactive terminals.
func DefaultStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorWhite)),
		Filename:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(colorTeal)),
		Score:     lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray)),
		Snippet:   lipgloss.NewStyle(),
		Warning:   lipgloss.NewStyle().Foreground(lipgloss.Color(colorYellow)),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color(colorGray)),
		Separator: lipgloss.NewStyle().Foreground(lipgloss.Color(colorDarkGray)),
	}
}

// NoColorStyles returns unstyled components for plain mode.
func NoColorStyles() Styles {
	return Styles{
		Header:    lipgloss.NewStyle(),
		Filename:  lipgloss.NewStyle(),
		Score:     lipgloss.NewStyle(),
		Snippet:   lipgloss.NewStyle(),
		Warning:   lipgloss.NewStyle(),
		Dim:       lipgloss.NewStyle(),
		Separator: lipgloss.NewStyle(),
	}
}

// Renderer writes formatted results to an output stream.
type Renderer struct {
	w      io.Writer
	styles Styles
}

// NewRenderer creates a renderer for w, picking styled or plain output
// based on whether w is an interactive terminal.
func NewRenderer(w io.Writer) *Renderer {
	styles := NoColorStyles()
	if IsTTY(w) && os.Getenv("NO_COLOR") == "" {
		styles = DefaultStyles()
	}
	return &Renderer{w: w, styles: styles}
}

// NewRendererWithStyles creates a renderer with explicit styles.
func NewRendererWithStyles(w io.Writer, styles Styles) *Renderer {
	return &Renderer{w: w, styles: styles}
}

// IsTTY checks if w is an interactive terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SearchResults renders a ranked result list.
func (r *Renderer) SearchResults(resp *search.Response) {
	if len(resp.Results) == 0 {
		fmt.Fprintln(r.w, r.styles.Dim.Render("No matching reports found."))
		return
	}

	if resp.Degraded {
		fmt.Fprintln(r.w, r.styles.Warning.Render("Note: relevance scores are approximate for this search."))
		fmt.Fprintln(r.w)
	}

	for i, res := range resp.Results {
		fmt.Fprintf(r.w, "%s %s %s\n",
			r.styles.Dim.Render(fmt.Sprintf("%d.", i+1)),
			r.styles.Filename.Render(res.Filename),
			r.styles.Score.Render(fmt.Sprintf("(score %.3f)", res.Score)))
		if res.Snippet != "" {
			fmt.Fprintf(r.w, "   %s\n", r.styles.Snippet.Render(res.Snippet))
		}
		fmt.Fprintln(r.w)
	}
}

// Answer renders a synthesized answer with its sources.
func (r *Renderer) Answer(ans *answer.Answer) {
	if ans.Extractive {
		fmt.Fprintln(r.w, r.styles.Warning.Render("(extractive answer, no model available)"))
		fmt.Fprintln(r.w)
	}
	fmt.Fprintln(r.w, ans.Text)
	if len(ans.Sources) > 0 && !strings.Contains(ans.Text, "Sources") {
		fmt.Fprintln(r.w)
		fmt.Fprintf(r.w, "%s %s\n",
			r.styles.Dim.Render("Sources:"),
			strings.Join(ans.Sources, ", "))
	}
}

// History renders past question/answer exchanges, newest first.
func (r *Renderer) History(records []session.Record) {
	if len(records) == 0 {
		fmt.Fprintln(r.w, r.styles.Dim.Render("No history."))
		return
	}

	sep := r.styles.Separator.Render(strings.Repeat("-", 60))
	for i, rec := range records {
		if i > 0 {
			fmt.Fprintln(r.w, sep)
		}
		fmt.Fprintf(r.w, "%s %s\n",
			r.styles.Dim.Render(rec.Timestamp.Format("2006-01-02 15:04")),
			r.styles.Header.Render(rec.Question))
		fmt.Fprintln(r.w, rec.Answer)
		if len(rec.Sources) > 0 {
			fmt.Fprintf(r.w, "%s %s\n",
				r.styles.Dim.Render("Sources:"),
				strings.Join(rec.Sources, ", "))
		}
	}
}

// FileList renders stored filenames.
func (r *Renderer) FileList(filenames []string) {
	if len(filenames) == 0 {
		fmt.Fprintln(r.w, r.styles.Dim.Render("No documents indexed."))
		return
	}
	for _, name := range filenames {
		fmt.Fprintln(r.w, r.styles.Filename.Render(name))
	}
}
