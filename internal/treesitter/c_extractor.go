package treesitter

import (
	"fmt"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/graphkernel/codegraph/internal/models"
)

func extractC(path string, root *sitter.Node, code []byte) models.ParseResult {
	return extractCFamily(path, root, code, models.LangC)
}

// extractCFamily is shared by C and C++; cpp_extractor.go calls it and then
// layers class handling on top.
func extractCFamily(path string, root *sitter.Node, code []byte, lang string) models.ParseResult {
	result := models.ParseResult{Elements: []models.CodeElement{fileElement(path, lang)}}

	var walk func(node *sitter.Node, enclosingID string)
	walk = func(node *sitter.Node, enclosingID string) {
		if node == nil {
			return
		}
		childEnclosing := enclosingID
		switch node.Kind() {
		case "function_definition":
			childEnclosing = extractCFunction(node, code, path, lang, &result)
		case "struct_specifier":
			extractCStruct(node, code, path, lang, &result)
		case "preproc_include":
			extractCInclude(node, code, path, &result)
		case "call_expression":
			extractCCall(node, code, enclosingID, &result)
		}
		for i := uint(0); i < node.ChildCount(); i++ {
			walk(node.Child(i), childEnclosing)
		}
	}
	walk(root, "")
	return result
}

// cFunctionName walks a (possibly pointer-wrapped) declarator down to the
// function_declarator and returns its identifier.
func cFunctionName(declarator *sitter.Node, code []byte) (string, *sitter.Node) {
	for declarator != nil {
		switch declarator.Kind() {
		case "function_declarator":
			name := declarator.ChildByFieldName("declarator")
			return nodeText(name, code), declarator
		case "pointer_declarator":
			declarator = declarator.ChildByFieldName("declarator")
		default:
			return "", nil
		}
	}
	return "", nil
}

func extractCFunction(node *sitter.Node, code []byte, path, lang string, result *models.ParseResult) string {
	declarator := node.ChildByFieldName("declarator")
	name, fnDeclarator := cFunctionName(declarator, code)
	if name == "" || fnDeclarator == nil {
		return ""
	}

	params := nodeText(fnDeclarator.ChildByFieldName("parameters"), code)
	retType := nodeText(node.ChildByFieldName("type"), code)
	signature := fmt.Sprintf("%s %s%s", retType, name, params)

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

func extractCStruct(node *sitter.Node, code []byte, path, lang string, result *models.ParseResult) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, code)

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
		Signature:     fmt.Sprintf("struct %s", name),
		Exported:      true,
	})
}

// extractCInclude records #include directives. System headers
// (<stdio.h>) have no file on disk to resolve against, so the global index
// leaves IsRelative false and the graph records them as unresolved
// external imports rather than erroring (see the Open Question on system
// includes in SPEC_FULL.md).
func extractCInclude(node *sitter.Node, code []byte, path string, result *models.ParseResult) {
	pathNode := node.ChildByFieldName("path")
	if pathNode == nil {
		return
	}
	raw := stripQuotes(nodeText(pathNode, code))
	result.Imports = append(result.Imports, models.ImportStatement{
		FromPath:   path,
		RawPath:    raw,
		IsRelative: pathNode.Kind() == "string_literal",
		Line:       int(node.StartPosition().Row) + 1,
	})
}

func extractCCall(node *sitter.Node, code []byte, enclosingID string, result *models.ParseResult) {
	if enclosingID == "" {
		return
	}
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return
	}
	name := nodeText(fn, code)
	if fn.Kind() == "field_expression" {
		if field := fn.ChildByFieldName("field"); field != nil {
			name = nodeText(field, code)
		}
	}
	result.Calls = append(result.Calls, models.CallSite{
		CallerID:   enclosingID,
		CalleeName: name,
		Line:       int(node.StartPosition().Row) + 1,
	})
}
