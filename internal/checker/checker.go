// Package checker validates lifecycle annotations: every resource initialized
// in a function scope must be deinitialized exactly once on every mode path,
// and struct init/deinit stages must cover exactly the values declared for
// the struct.
//
// A Checker consumes one file's token stream at a time. Struct declarations
// are kept in a Registry shared by all files of a run, so files must be
// checked sequentially.
package checker

import (
	"mlccheck/internal/annotation"
	"mlccheck/internal/logging"
)

// Settings are the run-wide checker options. They are read-only once a Checker exists.
type Settings struct {
	// AllowUndeclaredStructs lets a struct init stage with no known declaration
	// register its inited values as the declaration, with a warning.
	AllowUndeclaredStructs bool
}

// Checker drives the scope stack over token streams.
type Checker struct {
	settings  Settings
	registry  *Registry
	onWarning WarningHandler
}

// New creates a checker. A nil registry gets a fresh one; a nil warning
// handler logs warnings to the check category.
func New(settings Settings, registry *Registry, onWarning WarningHandler) *Checker {
	if registry == nil {
		registry = NewRegistry()
	}
	if onWarning == nil {
		onWarning = func(d *Diagnostic) {
			logging.CheckWarn("%s", d.Error())
		}
	}
	return &Checker{settings: settings, registry: registry, onWarning: onWarning}
}

// Registry exposes the struct declarations gathered so far.
func (c *Checker) Registry() *Registry {
	return c.registry
}

// CheckFile processes one file's tokens in order. It returns the number of
// tokens processed; on failure that is the count before the offending token
// and the error is a *Diagnostic.
func (c *Checker) CheckFile(tokens []annotation.Token) (int, error) {
	var stack Stack
	for i, tok := range tokens {
		if d := c.step(&stack, tok); d != nil {
			return i, d
		}
	}
	if top := stack.Top(); top != nil {
		return len(tokens), errorAt(ClassStructural, top.Opening, "scope \"%s\" was never popped off", top.Name())
	}
	return len(tokens), nil
}

func (c *Checker) step(stack *Stack, tok annotation.Token) *Diagnostic {
	if !tok.Spelling.Known() {
		return errorAt(ClassStructural, tok, "unknown annotation \"%s\"", tok.Spelling)
	}
	if tok.Kind() == annotation.KindPushScope {
		sc, d := newScope(tok)
		if d != nil {
			return d
		}
		stack.Push(sc)
		logging.CheckDebug("push %s at %s (depth %d)", sc.Name(), tok.Position(), stack.Len())
		return nil
	}

	top := stack.Top()
	if top == nil {
		return errorAt(ClassStructural, tok, "there are no opened scopes")
	}

	switch tok.Kind() {
	case annotation.KindPopScope:
		if d := c.close(top); d != nil {
			return d.closedBy(tok)
		}
		logging.CheckDebug("pop %s at %s", top.Name(), tok.Position())
		stack.Pop()
	case annotation.KindSetMode:
		top.Mode = tok.Value
	case annotation.KindDeclare:
		return declare(top, tok)
	case annotation.KindInit:
		return initialize(top, tok)
	case annotation.KindDeinit:
		return deinitialize(top, tok)
	}
	return nil
}

func declare(sc *Scope, tok annotation.Token) *Diagnostic {
	if sc.Kind != ScopeStruct {
		return errorAt(ClassPlacement, tok, "declarations are only possible in struct scope")
	}
	if sc.Stage != StageDecl {
		return errorAt(ClassPlacement, tok, "declarations are only possible in \"decl\" stage")
	}
	if sc.Mode != "" {
		return errorAt(ClassPlacement, tok, "only deinits are allowed under MLC_MODE(...)").inMode(sc.Mode)
	}
	sc.Declared = append(sc.Declared, tok)
	return nil
}

func initialize(sc *Scope, tok annotation.Token) *Diagnostic {
	if sc.Kind == ScopeStruct && sc.Stage != StageInit {
		return errorAt(ClassPlacement, tok, "for struct scopes, inits are only possible in \"init\" stage")
	}
	if sc.Mode != "" {
		return errorAt(ClassPlacement, tok, "only deinits are allowed under MLC_MODE(...)").inMode(sc.Mode)
	}
	sc.Inited = append(sc.Inited, tok)
	return nil
}

func deinitialize(sc *Scope, tok annotation.Token) *Diagnostic {
	if sc.Kind == ScopeStruct && sc.Stage != StageDeinit {
		return errorAt(ClassPlacement, tok, "for struct scopes, deinits are only possible in \"deinit\" stage")
	}
	sc.Deinited.Add(sc.Mode, tok)
	return nil
}

// close validates a scope that is about to be popped.
func (c *Checker) close(sc *Scope) *Diagnostic {
	anchor := sc.Opening
	logging.CheckDebug("closing %s: %d inited, %d deinit modes", sc.Name(), len(sc.Inited), sc.Deinited.Len())

	switch sc.Kind {
	case ScopeFunction:
		for _, set := range MergeModes(&sc.Deinited) {
			if d := checkMatch(sc.Inited, "inited", set.Tokens, "deinited", anchor, set.Mode); d != nil {
				return d
			}
		}
		return nil

	case ScopeStruct:
		switch sc.Stage {
		case StageDecl:
			if !c.registry.Register(sc.StructName, sc.Declared) {
				return errorAt(ClassRegistry, anchor, "struct \"%s\" already declared", sc.StructName)
			}
			return nil

		case StageInit:
			decls, ok := c.registry.Lookup(sc.StructName)
			if ok {
				return checkMatch(decls, "declared", sc.Inited, "inited", anchor, "")
			}
			if !c.settings.AllowUndeclaredStructs {
				return errorAt(ClassRegistry, anchor, "no decl list for struct \"%s\" available", sc.StructName)
			}
			c.onWarning(warningAt(ClassRegistry, anchor,
				"no decl list for struct \"%s\" available, using inited-list instead", sc.StructName))
			c.registry.Register(sc.StructName, sc.Inited)
			return nil

		case StageDeinit:
			decls, ok := c.registry.Lookup(sc.StructName)
			if !ok {
				return errorAt(ClassRegistry, anchor, "no decl list for struct \"%s\"", sc.StructName)
			}
			for _, set := range MergeModes(&sc.Deinited) {
				if d := checkMatch(decls, "declared", set.Tokens, "deinited", anchor, set.Mode); d != nil {
					return d
				}
			}
			return nil
		}
	}
	panic("checker: unhandled scope variant " + sc.Name())
}
