package treesitter

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/graphkernel/codegraph/internal/models"
)

// extractCPP reuses the C walk for functions/structs/includes/calls, then
// adds a pass for class_specifier (C++ classes with base-class lists).
func extractCPP(path string, root *sitter.Node, code []byte) models.ParseResult {
	result := extractCFamily(path, root, code, models.LangCPP)

	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		if node.Kind() == "class_specifier" {
			extractCPPClass(node, code, path, &result)
		}
		for i := uint(0); i < node.ChildCount(); i++ {
			walk(node.Child(i))
		}
	}
	walk(root)
	return result
}

func extractCPPClass(node *sitter.Node, code []byte, path string, result *models.ParseResult) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, code)
	id := models.ComputeID(path, name, models.KindClass, int(node.StartByte()))

	if bases := node.ChildByFieldName("base_class_clause"); bases != nil {
		for i := uint(0); i < bases.NamedChildCount(); i++ {
			base := bases.NamedChild(i)
			baseName := nodeText(base, code)
			if baseName == "" {
				continue
			}
			result.Inheritance = append(result.Inheritance, models.InheritanceEdge{
				ChildID:    id,
				ParentName: baseName,
				Kind:       models.EdgeInherits,
				Line:       int(node.StartPosition().Row) + 1,
			})
		}
	}

	result.Elements = append(result.Elements, models.CodeElement{
		ID:            id,
		Kind:          models.KindClass,
		Name:          name,
		QualifiedName: name,
		Path:          path,
		Language:      models.LangCPP,
		StartByte:     int(node.StartByte()),
		EndByte:       int(node.EndByte()),
		StartLine:     int(node.StartPosition().Row) + 1,
		EndLine:       int(node.EndPosition().Row) + 1,
		Signature:     fmt.Sprintf("class %s", name),
		Exported:      true,
	})
}
