package extract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"mlccheck/internal/annotation"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func tok(sp annotation.Spelling, value string, line int) annotation.Token {
	return annotation.New(sp, value, "t.c", line)
}

func TestLineExtractor(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want []annotation.Token
	}{
		{
			name: "comment markers",
			src:  "//MLC_PUSH_SCOPE(\"run\")\nint x;\n//MLC_INIT(\"x\")\n//MLC_POP_SCOPE()\n",
			want: []annotation.Token{
				tok(annotation.SpellingPushScope, "run", 1),
				tok(annotation.SpellingInit, "x", 3),
				tok(annotation.SpellingPopScope, "", 4),
			},
		},
		{
			name: "several markers on one line keep column order",
			src:  `MLC_INIT("a"); MLC_POP_SCOPE(); MLC_RETURN("b")`,
			want: []annotation.Token{
				tok(annotation.SpellingInit, "a", 1),
				tok(annotation.SpellingPopScope, "", 1),
				tok(annotation.SpellingReturn, "b", 1),
			},
		},
		{
			name: "word boundary required",
			src:  "XMLC_INIT(\"a\") _MLC_INIT(\"b\") (MLC_MODE(\"err\"))",
			want: []annotation.Token{
				tok(annotation.SpellingMode, "err", 1),
			},
		},
		{
			name: "malformed markers ignored",
			src:  "MLC_POP_SCOPE( )\nMLC_INIT(x)\nMLC_DECL(\"unterminated)\nMLC_FREE(\"a\")",
			want: nil,
		},
		{
			name: "empty payload and CRLF",
			src:  "a\r\n//MLC_PUSH_SCOPE(\"\")\r\n//MLC_DEINIT(\"[this]\")\r\n",
			want: []annotation.Token{
				tok(annotation.SpellingPushScope, "", 2),
				tok(annotation.SpellingDeinit, "[this]", 3),
			},
		},
		{
			name: "lone CR ends a line",
			src:  "//MLC_PUSH_SCOPE(\"f\")\r//MLC_INIT(\"x\")\r\r//MLC_POP_SCOPE()",
			want: []annotation.Token{
				tok(annotation.SpellingPushScope, "f", 1),
				tok(annotation.SpellingInit, "x", 2),
				tok(annotation.SpellingPopScope, "", 4),
			},
		},
		{
			name: "word boundary is unicode aware",
			src:  "éMLC_INIT(\"a\") 数MLC_POP_SCOPE() é MLC_INIT(\"b\") «MLC_DEINIT(\"c\")",
			want: []annotation.Token{
				tok(annotation.SpellingInit, "b", 1),
				tok(annotation.SpellingDeinit, "c", 1),
			},
		},
		{
			name: "empty input",
			src:  "",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LineExtractor{}.Extract(context.Background(), "t.c", []byte(tt.src))
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

const cSource = `#define MLC_POP_SCOPE() /* nothing */
#include <stdlib.h>

//MLC_PUSH_SCOPE("run")
static void run(void)
{
    //MLC_INIT("buf")
    char *buf = malloc(10);
    /* MLC_MODE("err")
       MLC_RETURN("buf") */
    free(buf);
    //MLC_DEINIT("buf")
}
//MLC_POP_SCOPE()
`

func TestCommentExtractor(t *testing.T) {
	got, err := CommentExtractor{}.Extract(context.Background(), "t.c", []byte(cSource))
	require.NoError(t, err)

	want := []annotation.Token{
		tok(annotation.SpellingPushScope, "run", 4),
		tok(annotation.SpellingInit, "buf", 7),
		tok(annotation.SpellingMode, "err", 9),
		tok(annotation.SpellingReturn, "buf", 10),
		tok(annotation.SpellingDeinit, "buf", 12),
		tok(annotation.SpellingPopScope, "", 14),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestLineExtractorSeesCode(t *testing.T) {
	got, err := LineExtractor{}.Extract(context.Background(), "t.c", []byte(cSource))
	require.NoError(t, err)
	require.NotEmpty(t, got)
	assert.Equal(t, tok(annotation.SpellingPopScope, "", 1), got[0], "the #define line is code, not a comment")
	assert.Len(t, got, 7)
}

func TestNew(t *testing.T) {
	for _, name := range append(Names(), "") {
		ex, err := New(name)
		require.NoError(t, err)
		if name == "" {
			assert.Equal(t, NameLine, ex.Name())
		} else {
			assert.Equal(t, name, ex.Name())
		}
	}

	_, err := New("regex")
	assert.ErrorContains(t, err, "unknown extractor")
}

func TestFilesKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i, body := range []string{
		`//MLC_PUSH_SCOPE("a")`,
		"",
		`//MLC_INIT("c1") MLC_INIT("c2")`,
		`//MLC_POP_SCOPE()`,
	} {
		p := filepath.Join(dir, string(rune('a'+i))+".c")
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
		paths = append(paths, p)
	}

	got, err := Files(context.Background(), LineExtractor{}, paths, 2)
	require.NoError(t, err)
	require.Len(t, got, len(paths))

	for i, ft := range got {
		assert.Equal(t, paths[i], ft.Path)
	}
	assert.Len(t, got[0].Tokens, 1)
	assert.Empty(t, got[1].Tokens)
	assert.Equal(t, []string{"c1", "c2"}, annotation.Values(got[2].Tokens))
	assert.Equal(t, paths[3], got[3].Tokens[0].File)
}

func TestFilesMissingFile(t *testing.T) {
	dir := t.TempDir()
	ok := filepath.Join(dir, "ok.c")
	require.NoError(t, os.WriteFile(ok, []byte(`//MLC_PUSH_SCOPE("f")`), 0o644))
	missing := filepath.Join(dir, "missing.c")

	got, err := Files(context.Background(), LineExtractor{}, []string{missing, ok, filepath.Join(dir, "gone.c")}, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.c", "the first failure in argument order wins")
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.Len(t, got, 3)
	assert.ErrorIs(t, got[0].Err, os.ErrNotExist)
	assert.NoError(t, got[1].Err)
	assert.Len(t, got[1].Tokens, 1, "files next to a failing one are still extracted")
	assert.ErrorIs(t, got[2].Err, os.ErrNotExist)
	assert.Equal(t, ok, got[1].Path)
}

func TestFilesCancelled(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "a.c")
	require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := Files(ctx, LineExtractor{}, []string{p}, 1)
	assert.ErrorIs(t, err, context.Canceled)
	require.Len(t, got, 1)
	assert.ErrorIs(t, got[0].Err, context.Canceled)
}

func TestMarkerPatternFollowsSpellings(t *testing.T) {
	re := buildMarkerPattern([]annotation.Spelling{annotation.SpellingInit, annotation.SpellingPopScope})

	assert.True(t, re.MatchString(`MLC_INIT("a")`))
	assert.True(t, re.MatchString(`MLC_POP_SCOPE()`))
	assert.False(t, re.MatchString(`MLC_DECL("a")`))
	assert.False(t, re.MatchString(`MLC_POP_SCOPE("a")`), "bare markers take no payload")
}
