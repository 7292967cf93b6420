package treesitter

import (
	"path/filepath"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/graphkernel/codegraph/internal/models"
)

// nodeText extracts text from a node using byte offsets, clamped to code's
// length in case the tree disagrees with a since-truncated buffer.
func nodeText(node *sitter.Node, code []byte) string {
	if node == nil {
		return ""
	}
	start, end := node.StartByte(), node.EndByte()
	if int(end) > len(code) {
		end = uint(len(code))
	}
	if int(start) > len(code) {
		return ""
	}
	return string(code[start:end])
}

// findParentOfKind walks up from node looking for the nearest ancestor
// whose Kind() is one of kinds, returning nil if none is found.
func findParentOfKind(node *sitter.Node, kinds ...string) *sitter.Node {
	current := node.Parent()
	for current != nil {
		k := current.Kind()
		for _, want := range kinds {
			if k == want {
				return current
			}
		}
		current = current.Parent()
	}
	return nil
}

// fileElement builds the synthetic CodeElement representing path itself.
func fileElement(path, lang string) models.CodeElement {
	id := models.ComputeID(path, path, models.KindFile, 0)
	return models.CodeElement{
		ID:            id,
		Kind:          models.KindFile,
		Name:          filepath.Base(path),
		QualifiedName: path,
		Path:          path,
		Language:      lang,
	}
}

// snippet returns up to maxLines lines of text starting at the element's
// declaration, used by the search index and CLI display.
func snippet(text string, maxLines int) string {
	lines := strings.Split(text, "\n")
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return strings.Join(lines, "\n")
}

// stripQuotes removes a single layer of matching quote characters from a
// raw import/include path literal.
func stripQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') || (first == '<' && last == '>') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
