package treesitter

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/graphkernel/codegraph/internal/models"
)

func extractPython(path string, root *sitter.Node, code []byte) models.ParseResult {
	result := models.ParseResult{Elements: []models.CodeElement{fileElement(path, models.LangPython)}}

	var walk func(node *sitter.Node, enclosingID string)
	walk = func(node *sitter.Node, enclosingID string) {
		if node == nil {
			return
		}

		childEnclosing := enclosingID
		switch node.Kind() {
		case "function_definition":
			childEnclosing = extractPythonFunction(node, code, path, &result)
		case "class_definition":
			childEnclosing = extractPythonClass(node, code, path, &result)
		case "import_statement", "import_from_statement":
			extractPythonImport(node, code, path, &result)
		case "call":
			extractPythonCall(node, code, enclosingID, &result)
		}

		for i := uint(0); i < node.ChildCount(); i++ {
			walk(node.Child(i), childEnclosing)
		}
	}

	walk(root, "")
	return result
}

func extractPythonFunction(node *sitter.Node, code []byte, path string, result *models.ParseResult) string {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	name := nodeText(nameNode, code)

	parentClass := findParentOfKind(node, "class_definition")
	kind := models.KindFunction
	qualified := name
	var parentID string
	if parentClass != nil {
		kind = models.KindMethod
		if classNameNode := parentClass.ChildByFieldName("name"); classNameNode != nil {
			className := nodeText(classNameNode, code)
			qualified = fmt.Sprintf("%s.%s", className, name)
			parentID = models.ComputeID(path, className, models.KindClass, int(parentClass.StartByte()))
		}
	}

	params := nodeText(node.ChildByFieldName("parameters"), code)
	signature := fmt.Sprintf("def %s%s", name, params)
	if ret := node.ChildByFieldName("return_type"); ret != nil {
		signature += " -> " + nodeText(ret, code)
	}

	id := models.ComputeID(path, qualified, kind, int(node.StartByte()))
	result.Elements = append(result.Elements, models.CodeElement{
		ID:            id,
		Kind:          kind,
		Name:          name,
		QualifiedName: qualified,
		Path:          path,
		Language:      models.LangPython,
		StartByte:     int(node.StartByte()),
		EndByte:       int(node.EndByte()),
		StartLine:     int(node.StartPosition().Row) + 1,
		EndLine:       int(node.EndPosition().Row) + 1,
		Signature:     signature,
		Snippet:       snippet(nodeText(node, code), 5),
		ParentID:      parentID,
		Exported:      len(name) == 0 || name[0] != '_',
	})
	return id
}

func extractPythonClass(node *sitter.Node, code []byte, path string, result *models.ParseResult) string {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	name := nodeText(nameNode, code)

	signature := fmt.Sprintf("class %s", name)
	if super := node.ChildByFieldName("superclasses"); super != nil {
		signature += nodeText(super, code)
		for i := uint(0); i < super.NamedChildCount(); i++ {
			base := super.NamedChild(i)
			baseName := nodeText(base, code)
			if baseName == "" || baseName == "object" {
				continue
			}
			childID := models.ComputeID(path, name, models.KindClass, int(node.StartByte()))
			result.Inheritance = append(result.Inheritance, models.InheritanceEdge{
				ChildID:    childID,
				ParentName: baseName,
				Kind:       models.EdgeInherits,
				Line:       int(node.StartPosition().Row) + 1,
			})
		}
	}

	id := models.ComputeID(path, name, models.KindClass, int(node.StartByte()))
	result.Elements = append(result.Elements, models.CodeElement{
		ID:            id,
		Kind:          models.KindClass,
		Name:          name,
		QualifiedName: name,
		Path:          path,
		Language:      models.LangPython,
		StartByte:     int(node.StartByte()),
		EndByte:       int(node.EndByte()),
		StartLine:     int(node.StartPosition().Row) + 1,
		EndLine:       int(node.EndPosition().Row) + 1,
		Signature:     signature,
		Exported:      len(name) == 0 || name[0] != '_',
	})
	return id
}

func extractPythonImport(node *sitter.Node, code []byte, path string, result *models.ParseResult) {
	line := int(node.StartPosition().Row) + 1

	if node.Kind() == "import_statement" {
		for i := uint(0); i < node.NamedChildCount(); i++ {
			child := node.NamedChild(i)
			if child.Kind() != "dotted_name" && child.Kind() != "aliased_import" {
				continue
			}
			raw := nodeText(child, code)
			result.Imports = append(result.Imports, models.ImportStatement{
				FromPath: path,
				RawPath:  raw,
				Line:     line,
			})
		}
		return
	}

	// import_from_statement: from module import a, b as c
	moduleNode := node.ChildByFieldName("module_name")
	if moduleNode == nil {
		return
	}
	module := nodeText(moduleNode, code)
	isRelative := len(module) > 0 && module[0] == '.'

	var names []string
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		if child == moduleNode {
			continue
		}
		switch child.Kind() {
		case "dotted_name", "identifier", "aliased_import":
			names = append(names, nodeText(child, code))
		}
	}

	result.Imports = append(result.Imports, models.ImportStatement{
		FromPath:   path,
		RawPath:    module,
		Names:      names,
		IsRelative: isRelative,
		Line:       line,
	})
}

func extractPythonCall(node *sitter.Node, code []byte, enclosingID string, result *models.ParseResult) {
	if enclosingID == "" {
		return
	}
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return
	}
	name := nodeText(fn, code)
	if fn.Kind() == "attribute" {
		if attr := fn.ChildByFieldName("attribute"); attr != nil {
			name = nodeText(attr, code)
		}
	}
	result.Calls = append(result.Calls, models.CallSite{
		CallerID:   enclosingID,
		CalleeName: name,
		Line:       int(node.StartPosition().Row) + 1,
	})
}
