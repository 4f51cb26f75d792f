// Package extract turns source text into ordered annotation token streams.
package extract

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"mlccheck/internal/annotation"
	"mlccheck/internal/logging"
)

// Extractor finds lifecycle markers in one file.
type Extractor interface {
	// Name is the identifier used in configuration.
	Name() string
	// Extract returns the markers of src in source order.
	Extract(ctx context.Context, filename string, src []byte) ([]annotation.Token, error)
}

const (
	NameLine       = "line"
	NameCComments  = "c-comments"
	defaultWorkers = 8
)

// markerPattern recognises MLC_X("payload") and MLC_POP_SCOPE().
// Submatches: 1 = valued spelling, 2 = payload, 3 = bare spelling.
var markerPattern = buildMarkerPattern(annotation.Spellings())

func buildMarkerPattern(spellings []annotation.Spelling) *regexp.Regexp {
	var valued, bare []string
	for _, sp := range spellings {
		if sp.TakesValue() {
			valued = append(valued, regexp.QuoteMeta(string(sp)))
		} else {
			bare = append(bare, regexp.QuoteMeta(string(sp)))
		}
	}
	return regexp.MustCompile(`\b(` + strings.Join(valued, "|") + `)\("([^"]*)"\)|\b(` + strings.Join(bare, "|") + `)\(\)`)
}

// Names lists the available extractor names.
func Names() []string {
	return []string{NameLine, NameCComments}
}

// New returns the extractor registered under name.
func New(name string) (Extractor, error) {
	switch name {
	case "", NameLine:
		return LineExtractor{}, nil
	case NameCComments:
		return CommentExtractor{}, nil
	default:
		return nil, fmt.Errorf("unknown extractor %q (available: %v)", name, Names())
	}
}

// scanText appends the markers found in text, numbering lines from firstLine.
// \n, \r\n and a lone \r all end a line.
func scanText(dst []annotation.Token, text, filename string, firstLine int) []annotation.Token {
	matches := markerPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return dst
	}
	line := firstLine
	pos := 0
	for _, m := range matches {
		for ; pos < m[0]; pos++ {
			switch text[pos] {
			case '\n':
				line++
			case '\r':
				if pos+1 >= len(text) || text[pos+1] != '\n' {
					line++
				}
			}
		}
		if followsWordRune(text, m[0]) {
			continue
		}
		name, value := "", ""
		if m[2] >= 0 {
			name, value = text[m[2]:m[3]], text[m[4]:m[5]]
		} else {
			name = text[m[6]:m[7]]
		}
		sp, err := annotation.ParseSpelling(name)
		if err != nil {
			continue
		}
		dst = append(dst, annotation.New(sp, value, filename, line))
	}
	return dst
}

// followsWordRune reports whether the rune before offset i is a word character.
// RE2's \b only knows ASCII, so a marker glued to a non-ASCII letter slips
// through the regexp and is rejected here.
func followsWordRune(text string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}

// FileTokens is the extraction result for one path. Err is set when the file
// could not be read or extracted; Tokens is then nil.
type FileTokens struct {
	Path   string
	Tokens []annotation.Token
	Err    error
}

// Files reads and extracts paths concurrently with at most workers in flight.
// Every path gets a result, in the order of paths, even when another one
// failed. The returned error is the first per-file error in that order.
func Files(ctx context.Context, ex Extractor, paths []string, workers int) ([]FileTokens, error) {
	if workers <= 0 {
		workers = defaultWorkers
	}
	timer := logging.StartTimer(logging.CategoryExtract, fmt.Sprintf("extract %d files", len(paths)))
	defer timer.Stop()

	results := make([]FileTokens, len(paths))
	var g errgroup.Group
	g.SetLimit(workers)

	for i, path := range paths {
		i, path := i, path
		results[i].Path = path
		g.Go(func() error {
			results[i].Tokens, results[i].Err = extractFile(ctx, ex, path)
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range results {
		if r.Err != nil {
			return results, r.Err
		}
	}
	logging.Extract("extracted %d files via %s", len(paths), ex.Name())
	return results, nil
}

func extractFile(ctx context.Context, ex Extractor, path string) ([]annotation.Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	toks, err := ex.Extract(ctx, path, src)
	if err != nil {
		return nil, fmt.Errorf("failed to extract %s: %w", path, err)
	}
	logging.ExtractDebug("%s: %d markers via %s", path, len(toks), ex.Name())
	return toks, nil
}
