package treesitter

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/graphkernel/codegraph/internal/models"
)

func extractGo(path string, root *sitter.Node, code []byte) models.ParseResult {
	result := models.ParseResult{Elements: []models.CodeElement{fileElement(path, models.LangGo)}}

	var walk func(node *sitter.Node, enclosingID string)
	walk = func(node *sitter.Node, enclosingID string) {
		if node == nil {
			return
		}
		childEnclosing := enclosingID
		switch node.Kind() {
		case "function_declaration":
			childEnclosing = extractGoFunc(node, code, path, &result)
		case "method_declaration":
			childEnclosing = extractGoMethod(node, code, path, &result)
		case "type_declaration":
			extractGoTypeDecl(node, code, path, &result)
		case "import_declaration":
			extractGoImport(node, code, path, &result)
		case "call_expression":
			extractGoCall(node, code, enclosingID, &result)
		}
		for i := uint(0); i < node.ChildCount(); i++ {
			walk(node.Child(i), childEnclosing)
		}
	}
	walk(root, "")
	linkGoReceivers(&result)
	return result
}

// linkGoReceivers patches each method's ParentID to the real struct element
// declared in this file, now that every type declaration has been seen.
// extractGoMethod runs before a method's receiver type is necessarily
// walked, so it can only guess at the struct's ID; a receiver type declared
// in another file of the same package is left unlinked.
func linkGoReceivers(result *models.ParseResult) {
	typeIDs := map[string]string{}
	for _, el := range result.Elements {
		if el.Kind == models.KindStruct || el.Kind == models.KindInterface {
			typeIDs[el.Name] = el.ID
		}
	}
	for i := range result.Elements {
		el := &result.Elements[i]
		if el.Kind != models.KindMethod {
			continue
		}
		recvType := el.QualifiedName
		if idx := strings.IndexByte(recvType, '.'); idx >= 0 {
			recvType = recvType[:idx]
		}
		if id, ok := typeIDs[recvType]; ok {
			el.ParentID = id
		} else {
			el.ParentID = ""
		}
	}
}

func extractGoFunc(node *sitter.Node, code []byte, path string, result *models.ParseResult) string {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	name := nodeText(nameNode, code)
	params := nodeText(node.ChildByFieldName("parameters"), code)
	signature := fmt.Sprintf("func %s%s", name, params)
	if res := node.ChildByFieldName("result"); res != nil {
		signature += " " + nodeText(res, code)
	}

	id := models.ComputeID(path, name, models.KindFunction, int(node.StartByte()))
	result.Elements = append(result.Elements, models.CodeElement{
		ID:            id,
		Kind:          models.KindFunction,
		Name:          name,
		QualifiedName: name,
		Path:          path,
		Language:      models.LangGo,
		StartByte:     int(node.StartByte()),
		EndByte:       int(node.EndByte()),
		StartLine:     int(node.StartPosition().Row) + 1,
		EndLine:       int(node.EndPosition().Row) + 1,
		Signature:     signature,
		Snippet:       snippet(nodeText(node, code), 5),
		Exported:      isExportedGoName(name),
	})
	return id
}

func extractGoMethod(node *sitter.Node, code []byte, path string, result *models.ParseResult) string {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	name := nodeText(nameNode, code)

	receiver := node.ChildByFieldName("receiver")
	recvType := goReceiverTypeName(receiver, code)
	qualified := name
	var parentID string
	if recvType != "" {
		qualified = fmt.Sprintf("%s.%s", recvType, name)
		parentID = models.ComputeID(path, recvType, models.KindStruct, 0)
	}

	params := nodeText(node.ChildByFieldName("parameters"), code)
	signature := fmt.Sprintf("func (%s) %s%s", nodeText(receiver, code), name, params)

	id := models.ComputeID(path, qualified, models.KindMethod, int(node.StartByte()))
	result.Elements = append(result.Elements, models.CodeElement{
		ID:            id,
		Kind:          models.KindMethod,
		Name:          name,
		QualifiedName: qualified,
		Path:          path,
		Language:      models.LangGo,
		StartByte:     int(node.StartByte()),
		EndByte:       int(node.EndByte()),
		StartLine:     int(node.StartPosition().Row) + 1,
		EndLine:       int(node.EndPosition().Row) + 1,
		Signature:     signature,
		Snippet:       snippet(nodeText(node, code), 5),
		ParentID:      parentID,
		Exported:      isExportedGoName(name),
	})
	return id
}

// goReceiverTypeName pulls the base type name out of a method receiver's
// parameter_list, stripping a leading pointer star if present.
func goReceiverTypeName(receiver *sitter.Node, code []byte) string {
	if receiver == nil {
		return ""
	}
	for i := uint(0); i < receiver.NamedChildCount(); i++ {
		param := receiver.NamedChild(i)
		if param.Kind() != "parameter_declaration" {
			continue
		}
		t := param.ChildByFieldName("type")
		if t == nil {
			continue
		}
		name := nodeText(t, code)
		return strings.TrimPrefix(name, "*")
	}
	return ""
}

func extractGoTypeDecl(node *sitter.Node, code []byte, path string, result *models.ParseResult) {
	for i := uint(0); i < node.NamedChildCount(); i++ {
		spec := node.NamedChild(i)
		if spec.Kind() != "type_spec" {
			continue
		}
		nameNode := spec.ChildByFieldName("name")
		typeNode := spec.ChildByFieldName("type")
		if nameNode == nil || typeNode == nil {
			continue
		}
		name := nodeText(nameNode, code)

		kind := models.KindStruct
		signature := fmt.Sprintf("type %s %s", name, typeNode.Kind())
		switch typeNode.Kind() {
		case "interface_type":
			kind = models.KindInterface
			signature = fmt.Sprintf("type %s interface", name)
		case "struct_type":
			kind = models.KindStruct
			signature = fmt.Sprintf("type %s struct", name)
		}

		id := models.ComputeID(path, name, kind, int(spec.StartByte()))
		result.Elements = append(result.Elements, models.CodeElement{
			ID:            id,
			Kind:          kind,
			Name:          name,
			QualifiedName: name,
			Path:          path,
			Language:      models.LangGo,
			StartByte:     int(spec.StartByte()),
			EndByte:       int(spec.EndByte()),
			StartLine:     int(spec.StartPosition().Row) + 1,
			EndLine:       int(spec.EndPosition().Row) + 1,
			Signature:     signature,
			Exported:      isExportedGoName(name),
		})
	}
}

func extractGoImport(node *sitter.Node, code []byte, path string, result *models.ParseResult) {
	var specs []*sitter.Node
	for i := uint(0); i < node.NamedChildCount(); i++ {
		child := node.NamedChild(i)
		switch child.Kind() {
		case "import_spec":
			specs = append(specs, child)
		case "import_spec_list":
			for j := uint(0); j < child.NamedChildCount(); j++ {
				if s := child.NamedChild(j); s.Kind() == "import_spec" {
					specs = append(specs, s)
				}
			}
		}
	}

	for _, spec := range specs {
		pathNode := spec.ChildByFieldName("path")
		if pathNode == nil {
			continue
		}
		raw := stripQuotes(nodeText(pathNode, code))
		alias := ""
		if n := spec.ChildByFieldName("name"); n != nil {
			alias = nodeText(n, code)
		}
		result.Imports = append(result.Imports, models.ImportStatement{
			FromPath: path,
			RawPath:  raw,
			Alias:    alias,
			Line:     int(spec.StartPosition().Row) + 1,
		})
	}
}

func extractGoCall(node *sitter.Node, code []byte, enclosingID string, result *models.ParseResult) {
	if enclosingID == "" {
		return
	}
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return
	}
	name := nodeText(fn, code)
	if fn.Kind() == "selector_expression" {
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

func isExportedGoName(name string) bool {
	return len(name) > 0 && strings.ToUpper(name[:1]) == name[:1]
}
