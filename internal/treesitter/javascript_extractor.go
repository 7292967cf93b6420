package treesitter

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/graphkernel/codegraph/internal/models"
)

func extractJavaScript(path string, root *sitter.Node, code []byte) models.ParseResult {
	return walkJSFamily(path, root, code, models.LangJavaScript)
}

// walkJSFamily is shared by the JavaScript and TypeScript extractors; the
// TypeScript extractor calls it and then layers interface/type-alias
// handling on top (see typescript_extractor.go).
func walkJSFamily(path string, root *sitter.Node, code []byte, lang string) models.ParseResult {
	result := models.ParseResult{Elements: []models.CodeElement{fileElement(path, lang)}}

	var walk func(node *sitter.Node, enclosingID string)
	walk = func(node *sitter.Node, enclosingID string) {
		if node == nil {
			return
		}

		childEnclosing := enclosingID
		switch node.Kind() {
		case "function_declaration", "function_expression", "generator_function_declaration":
			childEnclosing = extractJSFunction(node, code, path, lang, &result)
		case "arrow_function":
			childEnclosing = extractJSArrow(node, code, path, lang, &result)
		case "class_declaration", "class":
			childEnclosing = extractJSClass(node, code, path, lang, &result)
		case "method_definition":
			childEnclosing = extractJSMethod(node, code, path, lang, &result)
		case "import_statement":
			extractJSImport(node, code, path, &result)
		case "export_statement":
			// export_statement wraps its real declaration as a named child;
			// recurse into it directly so we don't also match it generically.
			for i := uint(0); i < node.NamedChildCount(); i++ {
				walk(node.NamedChild(i), enclosingID)
			}
			return
		case "call_expression":
			extractJSCall(node, code, enclosingID, &result)
		}

		for i := uint(0); i < node.ChildCount(); i++ {
			walk(node.Child(i), childEnclosing)
		}
	}

	walk(root, "")
	return result
}

func extractJSFunction(node *sitter.Node, code []byte, path, lang string, result *models.ParseResult) string {
	nameNode := node.ChildByFieldName("name")
	name := nodeText(nameNode, code)
	if name == "" {
		name = "<anonymous>"
	}

	parentClass := findParentOfKind(node, "class_declaration", "class")
	kind := models.KindFunction
	qualified := name
	var parentID string
	if parentClass != nil {
		kind = models.KindMethod
		if cn := parentClass.ChildByFieldName("name"); cn != nil {
			className := nodeText(cn, code)
			qualified = fmt.Sprintf("%s.%s", className, name)
			parentID = models.ComputeID(path, className, models.KindClass, int(parentClass.StartByte()))
		}
	}

	params := nodeText(node.ChildByFieldName("parameters"), code)
	signature := fmt.Sprintf("function %s%s", name, params)

	id := models.ComputeID(path, qualified, kind, int(node.StartByte()))
	result.Elements = append(result.Elements, models.CodeElement{
		ID:            id,
		Kind:          kind,
		Name:          name,
		QualifiedName: qualified,
		Path:          path,
		Language:      lang,
		StartByte:     int(node.StartByte()),
		EndByte:       int(node.EndByte()),
		StartLine:     int(node.StartPosition().Row) + 1,
		EndLine:       int(node.EndPosition().Row) + 1,
		Signature:     signature,
		Snippet:       snippet(nodeText(node, code), 5),
		ParentID:      parentID,
		Exported:      true,
	})
	return id
}

func extractJSArrow(node *sitter.Node, code []byte, path, lang string, result *models.ParseResult) string {
	name := arrowFunctionName(node, code)
	params := nodeText(node.ChildByFieldName("parameters"), code)
	signature := fmt.Sprintf("%s = %s => ...", name, params)

	id := models.ComputeID(path, name, models.KindFunction, int(node.StartByte()))
	result.Elements = append(result.Elements, models.CodeElement{
		ID:            id,
		Kind:          models.KindFunction,
		Name:          name,
		QualifiedName: name,
		Path:          path,
		Language:      lang,
		StartByte:     int(node.StartByte()),
		EndByte:       int(node.EndByte()),
		StartLine:     int(node.StartPosition().Row) + 1,
		EndLine:       int(node.EndPosition().Row) + 1,
		Signature:     signature,
		Snippet:       snippet(nodeText(node, code), 5),
		Exported:      true,
	})
	return id
}

// arrowFunctionName recovers the variable an arrow function is assigned to
// (`const f = () => ...`) or the property it is assigned to in an object
// literal or assignment expression, falling back to "<anonymous>".
func arrowFunctionName(node *sitter.Node, code []byte) string {
	parent := node.Parent()
	if parent == nil {
		return "<anonymous>"
	}
	switch parent.Kind() {
	case "variable_declarator":
		if n := parent.ChildByFieldName("name"); n != nil {
			return nodeText(n, code)
		}
	case "assignment_expression":
		if n := parent.ChildByFieldName("left"); n != nil {
			return nodeText(n, code)
		}
	case "pair":
		if n := parent.ChildByFieldName("key"); n != nil {
			return nodeText(n, code)
		}
	}
	return "<anonymous>"
}

func extractJSClass(node *sitter.Node, code []byte, path, lang string, result *models.ParseResult) string {
	nameNode := node.ChildByFieldName("name")
	name := nodeText(nameNode, code)
	if name == "" {
		name = "<anonymous>"
	}

	if heritage := node.ChildByFieldName("superclass"); heritage != nil {
		childID := models.ComputeID(path, name, models.KindClass, int(node.StartByte()))
		result.Inheritance = append(result.Inheritance, models.InheritanceEdge{
			ChildID:    childID,
			ParentName: nodeText(heritage, code),
			Kind:       models.EdgeInherits,
			Line:       int(node.StartPosition().Row) + 1,
		})
	}

	id := models.ComputeID(path, name, models.KindClass, int(node.StartByte()))
	result.Elements = append(result.Elements, models.CodeElement{
		ID:            id,
		Kind:          models.KindClass,
		Name:          name,
		QualifiedName: name,
		Path:          path,
		Language:      lang,
		StartByte:     int(node.StartByte()),
		EndByte:       int(node.EndByte()),
		StartLine:     int(node.StartPosition().Row) + 1,
		EndLine:       int(node.EndPosition().Row) + 1,
		Signature:     fmt.Sprintf("class %s", name),
		Exported:      true,
	})
	return id
}

func extractJSMethod(node *sitter.Node, code []byte, path, lang string, result *models.ParseResult) string {
	nameNode := node.ChildByFieldName("name")
	name := nodeText(nameNode, code)

	className := ""
	parentID := ""
	if parentClass := findParentOfKind(node, "class_declaration", "class"); parentClass != nil {
		if cn := parentClass.ChildByFieldName("name"); cn != nil {
			className = nodeText(cn, code)
			parentID = models.ComputeID(path, className, models.KindClass, int(parentClass.StartByte()))
		}
	}
	qualified := name
	if className != "" {
		qualified = fmt.Sprintf("%s.%s", className, name)
	}

	params := nodeText(node.ChildByFieldName("parameters"), code)
	id := models.ComputeID(path, qualified, models.KindMethod, int(node.StartByte()))
	result.Elements = append(result.Elements, models.CodeElement{
		ID:            id,
		Kind:          models.KindMethod,
		Name:          name,
		QualifiedName: qualified,
		Path:          path,
		Language:      lang,
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

func extractJSImport(node *sitter.Node, code []byte, path string, result *models.ParseResult) {
	source := node.ChildByFieldName("source")
	if source == nil {
		return
	}
	raw := stripQuotes(nodeText(source, code))

	var names []string
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch child.Kind() {
		case "import_clause":
			collectImportNames(child, code, &names)
		}
	}

	result.Imports = append(result.Imports, models.ImportStatement{
		FromPath:   path,
		RawPath:    raw,
		Names:      names,
		IsRelative: len(raw) > 0 && (raw[0] == '.' || raw[0] == '/'),
		Line:       int(node.StartPosition().Row) + 1,
	})
}

func collectImportNames(node *sitter.Node, code []byte, names *[]string) {
	switch node.Kind() {
	case "identifier":
		*names = append(*names, nodeText(node, code))
	case "named_imports", "namespace_import":
		for i := uint(0); i < node.NamedChildCount(); i++ {
			collectImportNames(node.NamedChild(i), code, names)
		}
	case "import_specifier":
		if n := node.ChildByFieldName("name"); n != nil {
			*names = append(*names, nodeText(n, code))
		}
	default:
		for i := uint(0); i < node.NamedChildCount(); i++ {
			collectImportNames(node.NamedChild(i), code, names)
		}
	}
}

func extractJSCall(node *sitter.Node, code []byte, enclosingID string, result *models.ParseResult) {
	if enclosingID == "" {
		return
	}
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return
	}
	name := nodeText(fn, code)
	if fn.Kind() == "member_expression" {
		if prop := fn.ChildByFieldName("property"); prop != nil {
			name = nodeText(prop, code)
		}
	}
	result.Calls = append(result.Calls, models.CallSite{
		CallerID:   enclosingID,
		CalleeName: name,
		Line:       int(node.StartPosition().Row) + 1,
	})
}
