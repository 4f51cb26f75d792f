// Package report renders checker diagnostics and run summaries for humans.
package report

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"mlccheck/internal/checker"
)

// Color modes accepted by New.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Reporter writes diagnostics in the block layout:
//
//	There is ERROR
//	  regarding annotation MLC_INIT("x")
//	  at file "a.c":3
//	  appearing in mode "err"
//	---
//	Message
//	---
type Reporter struct {
	w      io.Writer
	styled bool

	errorStyle   lipgloss.Style
	warningStyle lipgloss.Style
	okStyle      lipgloss.Style
	dimStyle     lipgloss.Style
}

// New creates a reporter writing to w. colorMode is auto, always or never;
// unknown values behave like auto.
func New(w io.Writer, colorMode string) *Reporter {
	r := &Reporter{w: w}
	if colorMode == ColorNever {
		return r
	}

	renderer := lipgloss.NewRenderer(w)
	if colorMode == ColorAlways {
		renderer.SetColorProfile(termenv.ANSI256)
	}
	r.styled = true
	r.errorStyle = renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	r.warningStyle = renderer.NewStyle().Bold(true).Foreground(lipgloss.Color("11"))
	r.okStyle = renderer.NewStyle().Foreground(lipgloss.Color("10"))
	r.dimStyle = renderer.NewStyle().Faint(true)
	return r
}

func (r *Reporter) render(style lipgloss.Style, s string) string {
	if !r.styled {
		return s
	}
	return style.Render(s)
}

// Diagnostic prints d. Warnings are followed by a blank line so that the
// output of a continuing run stays readable.
func (r *Reporter) Diagnostic(d *checker.Diagnostic) {
	style := r.errorStyle
	if d.Severity == checker.SeverityWarning {
		style = r.warningStyle
	}

	var b strings.Builder
	fmt.Fprintf(&b, "There is %s\n", r.render(style, d.Severity.String()))
	if d.Token != nil {
		fmt.Fprintf(&b, "  regarding annotation %s\n", d.Token)
		fmt.Fprintf(&b, "  at file %s\n", d.Token.Position())
	}
	if d.Related != nil {
		fmt.Fprintf(&b, "  closed by %s at file %s\n", d.Related, d.Related.Position())
	}
	if d.Mode != "" {
		fmt.Fprintf(&b, "  appearing in mode \"%s\"\n", d.Mode)
	}
	sep := r.render(r.dimStyle, "---")
	fmt.Fprintf(&b, "%s\n%s\n%s\n", sep, capitalize(d.Message), sep)
	if d.Severity == checker.SeverityWarning {
		b.WriteString("\n")
	}
	_, _ = io.WriteString(r.w, b.String())
}

// Summary prints the success footer of a run.
func (r *Reporter) Summary(files, annotations int) {
	fmt.Fprintf(r.w, "%s\n", r.render(r.okStyle, "Everything seems to be OK"))
	fmt.Fprintf(r.w, "Processed files: %d\n", files)
	fmt.Fprintf(r.w, "Processed annotations: %d\n", annotations)
}

// MissingNewline reports a file without a trailing newline.
func (r *Reporter) MissingNewline(path string) {
	fmt.Fprintf(r.w, "File \"%s\" has no trailing newline!\n", path)
}

// Plain prints a free-form line.
func (r *Reporter) Plain(format string, args ...interface{}) {
	fmt.Fprintf(r.w, format+"\n", args...)
}

func capitalize(s string) string {
	first, size := utf8.DecodeRuneInString(s)
	if size == 0 {
		return s
	}
	return string(unicode.ToUpper(first)) + s[size:]
}
