// Package annotation defines the lifecycle marker tokens consumed by the checker.
// Tokens are produced by an extractor and are never mutated afterwards.
package annotation

import "fmt"

// Kind is the semantic command carried by a marker.
type Kind int

const (
	KindPushScope Kind = iota
	KindPopScope
	KindSetMode
	KindDeclare
	KindInit
	KindDeinit
)

func (k Kind) String() string {
	switch k {
	case KindPushScope:
		return "push-scope"
	case KindPopScope:
		return "pop-scope"
	case KindSetMode:
		return "set-mode"
	case KindDeclare:
		return "declare"
	case KindInit:
		return "init"
	case KindDeinit:
		return "deinit"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Spelling is the literal marker name as written in source.
// Several spellings may share one Kind (MLC_DEINIT and MLC_RETURN).
type Spelling string

const (
	SpellingPushScope Spelling = "MLC_PUSH_SCOPE"
	SpellingPopScope  Spelling = "MLC_POP_SCOPE"
	SpellingMode      Spelling = "MLC_MODE"
	SpellingDecl      Spelling = "MLC_DECL"
	SpellingInit      Spelling = "MLC_INIT"
	SpellingDeinit    Spelling = "MLC_DEINIT"
	SpellingReturn    Spelling = "MLC_RETURN"
)

var spellingKinds = map[Spelling]Kind{
	SpellingPushScope: KindPushScope,
	SpellingPopScope:  KindPopScope,
	SpellingMode:      KindSetMode,
	SpellingDecl:      KindDeclare,
	SpellingInit:      KindInit,
	SpellingDeinit:    KindDeinit,
	SpellingReturn:    KindDeinit,
}

// Spellings lists every recognised marker name.
func Spellings() []Spelling {
	return []Spelling{
		SpellingPushScope,
		SpellingPopScope,
		SpellingMode,
		SpellingDecl,
		SpellingInit,
		SpellingDeinit,
		SpellingReturn,
	}
}

// ParseSpelling validates a marker name.
func ParseSpelling(s string) (Spelling, error) {
	sp := Spelling(s)
	if !sp.Known() {
		return "", fmt.Errorf("unknown annotation spelling %q", s)
	}
	return sp, nil
}

// Known reports whether s is one of the recognised marker names.
func (s Spelling) Known() bool {
	_, ok := spellingKinds[s]
	return ok
}

// Kind returns the command the spelling stands for.
// It panics on an unknown spelling; check Known first for tokens of unknown origin.
func (s Spelling) Kind() Kind {
	k, ok := spellingKinds[s]
	if !ok {
		panic(fmt.Sprintf("annotation: unknown spelling %q", string(s)))
	}
	return k
}

// TakesValue reports whether the marker carries a string payload.
func (s Spelling) TakesValue() bool {
	return s != SpellingPopScope
}

// Token is one marker occurrence.
type Token struct {
	Spelling Spelling
	Value    string
	File     string
	Line     int
}

// New builds a token.
func New(sp Spelling, value, file string, line int) Token {
	return Token{Spelling: sp, Value: value, File: file, Line: line}
}

// Kind is shorthand for t.Spelling.Kind().
func (t Token) Kind() Kind {
	return t.Spelling.Kind()
}

// String renders the token the way it appears in source, e.g. MLC_INIT("x").
func (t Token) String() string {
	return fmt.Sprintf("%s(\"%s\")", t.Spelling, t.Value)
}

// Position renders the token location as "file":line.
func (t Token) Position() string {
	return fmt.Sprintf("\"%s\":%d", t.File, t.Line)
}

// Values projects a token list onto its payloads, preserving order.
func Values(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Value
	}
	return out
}
