package extract

import (
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"

	"mlccheck/internal/annotation"
)

// CommentExtractor parses the file as C and only reads markers inside
// comments, so string literals and disabled text never produce tokens.
// Markers in a block comment may sit on any of its lines.
type CommentExtractor struct{}

func (CommentExtractor) Name() string { return NameCComments }

func (CommentExtractor) Extract(ctx context.Context, filename string, src []byte) ([]annotation.Token, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(c.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("tree-sitter parse failed: %w", err)
	}
	defer tree.Close()

	var toks []annotation.Token
	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if n.Type() == "comment" {
			text := n.Content(src)
			if strings.Contains(text, "MLC_") {
				toks = scanText(toks, text, filename, int(n.StartPoint().Row)+1)
			}
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(tree.RootNode())
	return toks, nil
}
