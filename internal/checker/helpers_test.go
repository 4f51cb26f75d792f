package checker

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"mlccheck/internal/annotation"
)

// stream assigns consecutive line numbers to tokens of one file.
type stream struct {
	file string
	toks []annotation.Token
}

func newStream(file string) *stream {
	return &stream{file: file}
}

func (s *stream) add(sp annotation.Spelling, value string) *stream {
	s.toks = append(s.toks, annotation.New(sp, value, s.file, len(s.toks)+1))
	return s
}

func (s *stream) push(v string) *stream   { return s.add(annotation.SpellingPushScope, v) }
func (s *stream) pop() *stream            { return s.add(annotation.SpellingPopScope, "") }
func (s *stream) mode(v string) *stream   { return s.add(annotation.SpellingMode, v) }
func (s *stream) decl(v string) *stream   { return s.add(annotation.SpellingDecl, v) }
func (s *stream) init(v string) *stream   { return s.add(annotation.SpellingInit, v) }
func (s *stream) deinit(v string) *stream { return s.add(annotation.SpellingDeinit, v) }
func (s *stream) ret(v string) *stream    { return s.add(annotation.SpellingReturn, v) }

func (s *stream) tokens() []annotation.Token {
	return s.toks
}

func requireDiagnostic(t *testing.T, err error) *Diagnostic {
	t.Helper()
	require.Error(t, err)
	var d *Diagnostic
	require.True(t, errors.As(err, &d), "expected *Diagnostic, got %T", err)
	return d
}

func tokensOf(values ...string) []annotation.Token {
	out := make([]annotation.Token, len(values))
	for i, v := range values {
		out[i] = annotation.New(annotation.SpellingInit, v, "t.c", i+1)
	}
	return out
}
