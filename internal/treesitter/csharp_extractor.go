package treesitter

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/graphkernel/codegraph/internal/models"
)

func extractCSharp(path string, root *sitter.Node, code []byte) models.ParseResult {
	result := models.ParseResult{Elements: []models.CodeElement{fileElement(path, models.LangCSharp)}}

	var walk func(node *sitter.Node, enclosingID string)
	walk = func(node *sitter.Node, enclosingID string) {
		if node == nil {
			return
		}
		childEnclosing := enclosingID
		switch node.Kind() {
		case "class_declaration", "struct_declaration":
			childEnclosing = extractCSharpType(node, code, path, models.KindClass, "class", &result)
		case "interface_declaration":
			childEnclosing = extractCSharpType(node, code, path, models.KindInterface, "interface", &result)
		case "method_declaration", "constructor_declaration":
			childEnclosing = extractCSharpMethod(node, code, path, &result)
		case "using_directive":
			extractCSharpUsing(node, code, path, &result)
		case "invocation_expression":
			extractCSharpCall(node, code, enclosingID, &result)
		}
		for i := uint(0); i < node.ChildCount(); i++ {
			walk(node.Child(i), childEnclosing)
		}
	}
	walk(root, "")
	return result
}

func extractCSharpType(node *sitter.Node, code []byte, path string, kind, keyword string, result *models.ParseResult) string {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	name := nodeText(nameNode, code)
	id := models.ComputeID(path, name, kind, int(node.StartByte()))

	if bases := node.ChildByFieldName("bases"); bases != nil {
		for i := uint(0); i < bases.NamedChildCount(); i++ {
			result.Inheritance = append(result.Inheritance, models.InheritanceEdge{
				ChildID:    id,
				ParentName: nodeText(bases.NamedChild(i), code),
				Kind:       models.EdgeInherits,
				Line:       int(node.StartPosition().Row) + 1,
			})
		}
	}

	result.Elements = append(result.Elements, models.CodeElement{
		ID:            id,
		Kind:          kind,
		Name:          name,
		QualifiedName: name,
		Path:          path,
		Language:      models.LangCSharp,
		StartByte:     int(node.StartByte()),
		EndByte:       int(node.EndByte()),
		StartLine:     int(node.StartPosition().Row) + 1,
		EndLine:       int(node.EndPosition().Row) + 1,
		Signature:     fmt.Sprintf("%s %s", keyword, name),
		Exported:      isExportedCSharpName(node, code),
	})
	return id
}

func extractCSharpMethod(node *sitter.Node, code []byte, path string, result *models.ParseResult) string {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	name := nodeText(nameNode, code)

	qualified := name
	var parentID string
	if parentType := findParentOfKind(node, "class_declaration", "struct_declaration", "interface_declaration"); parentType != nil {
		if tn := parentType.ChildByFieldName("name"); tn != nil {
			typeName := nodeText(tn, code)
			qualified = fmt.Sprintf("%s.%s", typeName, name)
			parentID = models.ComputeID(path, typeName, models.KindClass, int(parentType.StartByte()))
		}
	}

	params := nodeText(node.ChildByFieldName("parameters"), code)
	id := models.ComputeID(path, qualified, models.KindMethod, int(node.StartByte()))
	result.Elements = append(result.Elements, models.CodeElement{
		ID:            id,
		Kind:          models.KindMethod,
		Name:          name,
		QualifiedName: qualified,
		Path:          path,
		Language:      models.LangCSharp,
		StartByte:     int(node.StartByte()),
		EndByte:       int(node.EndByte()),
		StartLine:     int(node.StartPosition().Row) + 1,
		EndLine:       int(node.EndPosition().Row) + 1,
		Signature:     fmt.Sprintf("%s%s", name, params),
		Snippet:       snippet(nodeText(node, code), 5),
		ParentID:      parentID,
		Exported:      isExportedCSharpName(node, code),
	})
	return id
}

func extractCSharpUsing(node *sitter.Node, code []byte, path string, result *models.ParseResult) {
	var raw string
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child.Kind() == "qualified_name" || child.Kind() == "identifier" {
			raw = nodeText(child, code)
		}
	}
	if raw == "" {
		return
	}
	result.Imports = append(result.Imports, models.ImportStatement{
		FromPath: path,
		RawPath:  raw,
		Line:     int(node.StartPosition().Row) + 1,
	})
}

func extractCSharpCall(node *sitter.Node, code []byte, enclosingID string, result *models.ParseResult) {
	if enclosingID == "" {
		return
	}
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return
	}
	name := nodeText(fn, code)
	if idx := lastDot(name); idx >= 0 {
		name = name[idx+1:]
	}
	result.Calls = append(result.Calls, models.CallSite{
		CallerID:   enclosingID,
		CalleeName: name,
		Line:       int(node.StartPosition().Row) + 1,
	})
}

// isExportedCSharpName reports whether node carries a public modifier.
// C# has no implicit export-by-case rule like Go, so this inspects the
// declaration's modifier list instead of the identifier spelling.
func isExportedCSharpName(node *sitter.Node, code []byte) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child.Kind() == "modifier" && nodeText(child, code) == "public" {
			return true
		}
	}
	return false
}

func lastDot(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == '.' {
			return i
		}
	}
	return -1
}
