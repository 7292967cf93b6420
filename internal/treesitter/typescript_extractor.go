package treesitter

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/graphkernel/codegraph/internal/models"
)

// extractTypeScript reuses the JavaScript walk for functions/classes/
// imports/calls, then makes a second pass adding TypeScript-only
// declarations: interfaces (their own element kind, distinct from class)
// and type aliases.
func extractTypeScript(path string, root *sitter.Node, code []byte) models.ParseResult {
	return extractTSFamily(path, root, code, models.LangTypeScript)
}

func extractTSX(path string, root *sitter.Node, code []byte) models.ParseResult {
	return extractTSFamily(path, root, code, models.LangTSX)
}

func extractTSFamily(path string, root *sitter.Node, code []byte, lang string) models.ParseResult {
	result := walkJSFamily(path, root, code, lang)

	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		switch node.Kind() {
		case "interface_declaration":
			extractTSInterface(node, code, path, lang, &result)
		case "type_alias_declaration":
			extractTSTypeAlias(node, code, path, lang, &result)
		}
		for i := uint(0); i < node.ChildCount(); i++ {
			walk(node.Child(i))
		}
	}
	walk(root)
	return result
}

func extractTSInterface(node *sitter.Node, code []byte, path, lang string, result *models.ParseResult) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, code)

	if heritage := node.ChildByFieldName("extends"); heritage != nil {
		childID := models.ComputeID(path, name, models.KindInterface, int(node.StartByte()))
		for i := uint(0); i < heritage.NamedChildCount(); i++ {
			result.Inheritance = append(result.Inheritance, models.InheritanceEdge{
				ChildID:    childID,
				ParentName: nodeText(heritage.NamedChild(i), code),
				Kind:       models.EdgeInherits,
				Line:       int(node.StartPosition().Row) + 1,
			})
		}
	}

	id := models.ComputeID(path, name, models.KindInterface, int(node.StartByte()))
	result.Elements = append(result.Elements, models.CodeElement{
		ID:            id,
		Kind:          models.KindInterface,
		Name:          name,
		QualifiedName: name,
		Path:          path,
		Language:      lang,
		StartByte:     int(node.StartByte()),
		EndByte:       int(node.EndByte()),
		StartLine:     int(node.StartPosition().Row) + 1,
		EndLine:       int(node.EndPosition().Row) + 1,
		Signature:     fmt.Sprintf("interface %s", name),
		Exported:      true,
	})
}

func extractTSTypeAlias(node *sitter.Node, code []byte, path, lang string, result *models.ParseResult) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, code)
	value := nodeText(node.ChildByFieldName("value"), code)

	id := models.ComputeID(path, name, models.KindStruct, int(node.StartByte()))
	result.Elements = append(result.Elements, models.CodeElement{
		ID:            id,
		Kind:          models.KindStruct,
		Name:          name,
		QualifiedName: name,
		Path:          path,
		Language:      lang,
		StartByte:     int(node.StartByte()),
		EndByte:       int(node.EndByte()),
		StartLine:     int(node.StartPosition().Row) + 1,
		EndLine:       int(node.EndPosition().Row) + 1,
		Signature:     fmt.Sprintf("type %s = %s", name, value),
		Exported:      true,
	})
}
