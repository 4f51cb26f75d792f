package checker

import (
	"fmt"
	"strings"

	"mlccheck/internal/annotation"
)

// ScopeKind tags the variant of a Scope.
type ScopeKind int

const (
	ScopeFunction ScopeKind = iota
	ScopeStruct
)

// Stage is the lifecycle phase of a struct scope.
type Stage int

const (
	StageDecl Stage = iota
	StageInit
	StageDeinit
)

func (s Stage) String() string {
	switch s {
	case StageDecl:
		return "decl"
	case StageInit:
		return "init"
	case StageDeinit:
		return "deinit"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// ParseStage accepts the stage spellings used after the ':' of a struct scope.
func ParseStage(s string) (Stage, bool) {
	switch s {
	case "decl":
		return StageDecl, true
	case "init":
		return StageInit, true
	case "deinit":
		return StageDeinit, true
	default:
		return 0, false
	}
}

// Scope is one frame of the scope stack.
// FuncName is set for ScopeFunction; StructName and Stage for ScopeStruct.
type Scope struct {
	Kind       ScopeKind
	FuncName   string
	StructName string
	Stage      Stage

	Opening annotation.Token
	Mode    string

	Declared []annotation.Token
	Inited   []annotation.Token
	Deinited ModeBuckets
}

// newScope interprets a MLC_PUSH_SCOPE payload: "name" opens a function scope,
// "Struct:stage" opens a struct scope.
func newScope(tok annotation.Token) (*Scope, *Diagnostic) {
	name, stage, isStruct := strings.Cut(tok.Value, ":")
	if !isStruct {
		return &Scope{Kind: ScopeFunction, FuncName: tok.Value, Opening: tok}, nil
	}
	st, ok := ParseStage(stage)
	if !ok {
		return nil, errorAt(ClassStructural, tok, "invalid struct scope stage")
	}
	return &Scope{Kind: ScopeStruct, StructName: name, Stage: st, Opening: tok}, nil
}

// Name is a diagnostic label such as func/run or struct/Priv:init.
func (s *Scope) Name() string {
	if s.Kind == ScopeStruct {
		return fmt.Sprintf("struct/%s:%s", s.StructName, s.Stage)
	}
	return "func/" + s.FuncName
}

// ModeBuckets maps a mode to the deinit tokens seen under it, remembering
// the order in which modes first appeared.
type ModeBuckets struct {
	order []string
	lists map[string][]annotation.Token
}

// Add appends tok to the bucket for mode, creating the bucket if needed.
func (b *ModeBuckets) Add(mode string, tok annotation.Token) {
	if b.lists == nil {
		b.lists = make(map[string][]annotation.Token)
	}
	if _, ok := b.lists[mode]; !ok {
		b.order = append(b.order, mode)
	}
	b.lists[mode] = append(b.lists[mode], tok)
}

// Modes returns the modes in first-seen order.
func (b *ModeBuckets) Modes() []string {
	return append([]string(nil), b.order...)
}

// Get returns the tokens recorded under mode.
func (b *ModeBuckets) Get(mode string) ([]annotation.Token, bool) {
	l, ok := b.lists[mode]
	return l, ok
}

// Len is the number of modes with at least one token.
func (b *ModeBuckets) Len() int {
	return len(b.order)
}

// Stack is the per-file stack of open scopes.
type Stack struct {
	scopes []*Scope
}

func (s *Stack) Push(sc *Scope) {
	s.scopes = append(s.scopes, sc)
}

// Pop removes and returns the innermost scope, or nil when empty.
func (s *Stack) Pop() *Scope {
	if len(s.scopes) == 0 {
		return nil
	}
	top := s.scopes[len(s.scopes)-1]
	s.scopes[len(s.scopes)-1] = nil
	s.scopes = s.scopes[:len(s.scopes)-1]
	return top
}

// Top returns the innermost scope, or nil when empty.
func (s *Stack) Top() *Scope {
	if len(s.scopes) == 0 {
		return nil
	}
	return s.scopes[len(s.scopes)-1]
}

func (s *Stack) Len() int {
	return len(s.scopes)
}
