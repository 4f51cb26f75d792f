package checker

import (
	"fmt"
	"strings"

	"mlccheck/internal/annotation"
)

// Severity separates fatal findings from advisory ones.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "WARNING"
	}
	return "ERROR"
}

// Class is the error taxonomy bucket a diagnostic belongs to.
type Class int

const (
	// ClassStructural covers scope nesting: empty pops, unclosed scopes, bad stages.
	ClassStructural Class = iota
	// ClassPlacement covers commands used where their scope or mode forbids them.
	ClassPlacement
	// ClassRegistry covers struct declaration registry conflicts and misses.
	ClassRegistry
	// ClassMatch covers set-match failures between two value lists.
	ClassMatch
)

func (c Class) String() string {
	switch c {
	case ClassStructural:
		return "structural"
	case ClassPlacement:
		return "placement"
	case ClassRegistry:
		return "registry"
	case ClassMatch:
		return "match"
	default:
		return fmt.Sprintf("Class(%d)", int(c))
	}
}

// Diagnostic is a positioned finding. Error-severity diagnostics are returned as errors.
type Diagnostic struct {
	Severity Severity
	Class    Class
	Message  string
	// Token is the annotation the finding is anchored at.
	Token *annotation.Token
	// Related is a secondary position, the MLC_POP_SCOPE that triggered a scope-close check.
	Related *annotation.Token
	// Mode is the effective mode under which the finding was made, "" for the default mode.
	Mode string
}

// WarningHandler receives non-fatal diagnostics.
type WarningHandler func(*Diagnostic)

func (d *Diagnostic) Error() string {
	var b strings.Builder
	if d.Token != nil {
		fmt.Fprintf(&b, "%s:%d: %s: ", d.Token.File, d.Token.Line, d.Token)
	}
	b.WriteString(d.Message)
	if d.Mode != "" {
		fmt.Fprintf(&b, " (mode %q)", d.Mode)
	}
	return b.String()
}

func newDiagnostic(sev Severity, class Class, tok annotation.Token, format string, args ...interface{}) *Diagnostic {
	t := tok
	return &Diagnostic{
		Severity: sev,
		Class:    class,
		Message:  fmt.Sprintf(format, args...),
		Token:    &t,
	}
}

func errorAt(class Class, tok annotation.Token, format string, args ...interface{}) *Diagnostic {
	return newDiagnostic(SeverityError, class, tok, format, args...)
}

func warningAt(class Class, tok annotation.Token, format string, args ...interface{}) *Diagnostic {
	return newDiagnostic(SeverityWarning, class, tok, format, args...)
}

func (d *Diagnostic) inMode(mode string) *Diagnostic {
	d.Mode = mode
	return d
}

func (d *Diagnostic) closedBy(tok annotation.Token) *Diagnostic {
	t := tok
	d.Related = &t
	return d
}
