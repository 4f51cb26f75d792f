package extract

import (
	"context"

	"mlccheck/internal/annotation"
)

// LineExtractor matches markers anywhere in the text, one line at a time.
// A marker cannot span lines. \n, \r\n and a lone \r all end a line.
type LineExtractor struct{}

func (LineExtractor) Name() string { return NameLine }

func (LineExtractor) Extract(ctx context.Context, filename string, src []byte) ([]annotation.Token, error) {
	var toks []annotation.Token
	for i, line := range splitLines(src) {
		if i%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		toks = scanText(toks, string(line), filename, i+1)
	}
	return toks, nil
}

// splitLines splits src into lines without their terminators.
func splitLines(src []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i := 0; i < len(src); i++ {
		switch src[i] {
		case '\n':
			lines = append(lines, src[start:i])
			start = i + 1
		case '\r':
			lines = append(lines, src[start:i])
			if i+1 < len(src) && src[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	return append(lines, src[start:])
}
