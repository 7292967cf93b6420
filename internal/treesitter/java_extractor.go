package treesitter

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/graphkernel/codegraph/internal/models"
)

func extractJava(path string, root *sitter.Node, code []byte) models.ParseResult {
	result := models.ParseResult{Elements: []models.CodeElement{fileElement(path, models.LangJava)}}

	var walk func(node *sitter.Node, enclosingID string)
	walk = func(node *sitter.Node, enclosingID string) {
		if node == nil {
			return
		}
		childEnclosing := enclosingID
		switch node.Kind() {
		case "class_declaration":
			childEnclosing = extractJavaClass(node, code, path, &result)
		case "interface_declaration":
			childEnclosing = extractJavaInterface(node, code, path, &result)
		case "method_declaration", "constructor_declaration":
			childEnclosing = extractJavaMethod(node, code, path, &result)
		case "package_declaration":
			extractJavaPackage(node, code, &result)
		case "import_declaration":
			extractJavaImport(node, code, path, &result)
		case "method_invocation":
			extractJavaCall(node, code, enclosingID, &result)
		}
		for i := uint(0); i < node.ChildCount(); i++ {
			walk(node.Child(i), childEnclosing)
		}
	}
	walk(root, "")
	return result
}

func extractJavaClass(node *sitter.Node, code []byte, path string, result *models.ParseResult) string {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	name := nodeText(nameNode, code)
	id := models.ComputeID(path, name, models.KindClass, int(node.StartByte()))

	if super := node.ChildByFieldName("superclass"); super != nil {
		result.Inheritance = append(result.Inheritance, models.InheritanceEdge{
			ChildID:    id,
			ParentName: nodeText(super, code),
			Kind:       models.EdgeInherits,
			Line:       int(node.StartPosition().Row) + 1,
		})
	}
	if ifaces := node.ChildByFieldName("interfaces"); ifaces != nil {
		for i := uint(0); i < ifaces.NamedChildCount(); i++ {
			result.Inheritance = append(result.Inheritance, models.InheritanceEdge{
				ChildID:    id,
				ParentName: nodeText(ifaces.NamedChild(i), code),
				Kind:       models.EdgeImplements,
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
		Language:      models.LangJava,
		StartByte:     int(node.StartByte()),
		EndByte:       int(node.EndByte()),
		StartLine:     int(node.StartPosition().Row) + 1,
		EndLine:       int(node.EndPosition().Row) + 1,
		Signature:     fmt.Sprintf("class %s", name),
		Exported:      true,
	})
	return id
}

func extractJavaInterface(node *sitter.Node, code []byte, path string, result *models.ParseResult) string {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	name := nodeText(nameNode, code)
	id := models.ComputeID(path, name, models.KindInterface, int(node.StartByte()))

	if extends := node.ChildByFieldName("extends"); extends != nil {
		for i := uint(0); i < extends.NamedChildCount(); i++ {
			result.Inheritance = append(result.Inheritance, models.InheritanceEdge{
				ChildID:    id,
				ParentName: nodeText(extends.NamedChild(i), code),
				Kind:       models.EdgeInherits,
				Line:       int(node.StartPosition().Row) + 1,
			})
		}
	}

	result.Elements = append(result.Elements, models.CodeElement{
		ID:            id,
		Kind:          models.KindInterface,
		Name:          name,
		QualifiedName: name,
		Path:          path,
		Language:      models.LangJava,
		StartByte:     int(node.StartByte()),
		EndByte:       int(node.EndByte()),
		StartLine:     int(node.StartPosition().Row) + 1,
		EndLine:       int(node.EndPosition().Row) + 1,
		Signature:     fmt.Sprintf("interface %s", name),
		Exported:      true,
	})
	return id
}

func extractJavaMethod(node *sitter.Node, code []byte, path string, result *models.ParseResult) string {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	name := nodeText(nameNode, code)

	qualified := name
	var parentID string
	if parentClass := findParentOfKind(node, "class_declaration", "interface_declaration"); parentClass != nil {
		if cn := parentClass.ChildByFieldName("name"); cn != nil {
			className := nodeText(cn, code)
			qualified = fmt.Sprintf("%s.%s", className, name)
			parentID = models.ComputeID(path, className, models.KindClass, int(parentClass.StartByte()))
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
		Language:      models.LangJava,
		StartByte:     int(node.StartByte()),
		EndByte:       int(node.EndByte()),
		StartLine:     int(node.StartPosition().Row) + 1,
		EndLine:       int(node.EndPosition().Row) + 1,
		Signature:     fmt.Sprintf("%s%s", name, params),
		Snippet:       snippet(nodeText(node, code), 5),
		ParentID:      parentID,
		Exported:      true,
	})
	return id
}

// extractJavaPackage records the file's `package a.b;` declaration, used by
// the global index to build Java's package+filename module path (spec
// section 4.4) rather than as an ImportStatement.
func extractJavaPackage(node *sitter.Node, code []byte, result *models.ParseResult) {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child.Kind() == "scoped_identifier" || child.Kind() == "identifier" {
			result.Package = nodeText(child, code)
			return
		}
	}
}

func extractJavaImport(node *sitter.Node, code []byte, path string, result *models.ParseResult) {
	var raw string
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child.Kind() == "scoped_identifier" || child.Kind() == "identifier" {
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

func extractJavaCall(node *sitter.Node, code []byte, enclosingID string, result *models.ParseResult) {
	if enclosingID == "" {
		return
	}
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	result.Calls = append(result.Calls, models.CallSite{
		CallerID:   enclosingID,
		CalleeName: nodeText(nameNode, code),
		Line:       int(node.StartPosition().Row) + 1,
	})
}
