package treesitter

import (
	"fmt"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/graphkernel/codegraph/internal/models"
)

func extractRust(path string, root *sitter.Node, code []byte) models.ParseResult {
	result := models.ParseResult{Elements: []models.CodeElement{fileElement(path, models.LangRust)}}

	var walk func(node *sitter.Node, enclosingID string)
	walk = func(node *sitter.Node, enclosingID string) {
		if node == nil {
			return
		}
		childEnclosing := enclosingID
		switch node.Kind() {
		case "function_item":
			childEnclosing = extractRustFn(node, code, path, &result)
		case "struct_item":
			extractRustStructOrEnum(node, code, path, models.KindStruct, "struct", &result)
		case "enum_item":
			extractRustStructOrEnum(node, code, path, models.KindEnum, "enum", &result)
		case "trait_item":
			extractRustTrait(node, code, path, &result)
		case "impl_item":
			extractRustImpl(node, code, path, &result)
		case "use_declaration":
			extractRustUse(node, code, path, &result)
		case "mod_item":
			extractRustModDecl(node, code, path, &result)
		case "call_expression":
			extractRustCall(node, code, enclosingID, &result)
		}
		for i := uint(0); i < node.ChildCount(); i++ {
			walk(node.Child(i), childEnclosing)
		}
	}
	walk(root, "")
	linkRustImplTargets(&result)
	return result
}

// linkRustImplTargets patches method ParentIDs and impl-trait inheritance
// edges to the real struct/enum element declared in this file, now that
// every type declaration has been seen. extractRustFn and extractRustImpl
// run before their target type is necessarily walked, so they can only
// guess at its ID; a type declared in another file is left unlinked.
func linkRustImplTargets(result *models.ParseResult) {
	typeIDs := map[string]string{}
	for _, el := range result.Elements {
		if el.Kind == models.KindStruct || el.Kind == models.KindEnum {
			typeIDs[el.Name] = el.ID
		}
	}
	for i := range result.Elements {
		el := &result.Elements[i]
		if el.Kind != models.KindMethod || el.ParentID == "" {
			continue
		}
		implType := el.QualifiedName
		if idx := strings.IndexByte(implType, '.'); idx >= 0 {
			implType = implType[:idx]
		}
		if id, ok := typeIDs[implType]; ok {
			el.ParentID = id
		} else {
			el.ParentID = ""
		}
	}

	kept := result.Inheritance[:0]
	for _, edge := range result.Inheritance {
		// extractRustImpl stashes the implementing type's plain name in
		// ChildID, since the type's real element (and ID) may not have
		// been walked yet; resolve it to the real ID now.
		if id, ok := typeIDs[edge.ChildID]; ok {
			edge.ChildID = id
			kept = append(kept, edge)
		}
	}
	result.Inheritance = kept
}

func extractRustFn(node *sitter.Node, code []byte, path string, result *models.ParseResult) string {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	name := nodeText(nameNode, code)

	kind := models.KindFunction
	qualified := name
	var parentID string
	if impl := findParentOfKind(node, "impl_item"); impl != nil {
		kind = models.KindMethod
		implType := nodeText(impl.ChildByFieldName("type"), code)
		qualified = fmt.Sprintf("%s.%s", implType, name)
		parentID = models.ComputeID(path, implType, models.KindStruct, 0)
	}

	params := nodeText(node.ChildByFieldName("parameters"), code)
	signature := fmt.Sprintf("fn %s%s", name, params)
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
		Language:      models.LangRust,
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

func extractRustStructOrEnum(node *sitter.Node, code []byte, path string, kind models.ElementKind, keyword string, result *models.ParseResult) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, code)

	id := models.ComputeID(path, name, kind, int(node.StartByte()))
	result.Elements = append(result.Elements, models.CodeElement{
		ID:            id,
		Kind:          kind,
		Name:          name,
		QualifiedName: name,
		Path:          path,
		Language:      models.LangRust,
		StartByte:     int(node.StartByte()),
		EndByte:       int(node.EndByte()),
		StartLine:     int(node.StartPosition().Row) + 1,
		EndLine:       int(node.EndPosition().Row) + 1,
		Signature:     fmt.Sprintf("%s %s", keyword, name),
		Exported:      true,
	})
}

func extractRustTrait(node *sitter.Node, code []byte, path string, result *models.ParseResult) {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := nodeText(nameNode, code)

	id := models.ComputeID(path, name, models.KindInterface, int(node.StartByte()))
	result.Elements = append(result.Elements, models.CodeElement{
		ID:            id,
		Kind:          models.KindInterface,
		Name:          name,
		QualifiedName: name,
		Path:          path,
		Language:      models.LangRust,
		StartByte:     int(node.StartByte()),
		EndByte:       int(node.EndByte()),
		StartLine:     int(node.StartPosition().Row) + 1,
		EndLine:       int(node.EndPosition().Row) + 1,
		Signature:     fmt.Sprintf("trait %s", name),
		Exported:      true,
	})
}

// extractRustImpl handles `impl Trait for Type` (an Implements edge) and
// leaves plain `impl Type` blocks alone, since those declare no relationship.
func extractRustImpl(node *sitter.Node, code []byte, path string, result *models.ParseResult) {
	traitNode := node.ChildByFieldName("trait")
	typeNode := node.ChildByFieldName("type")
	if traitNode == nil || typeNode == nil {
		return
	}
	// ChildID holds the implementing type's plain name, not yet a real
	// element ID: linkRustImplTargets resolves it once the whole file has
	// been walked and the type's actual element (and ID) are known.
	result.Inheritance = append(result.Inheritance, models.InheritanceEdge{
		ChildID:    nodeText(typeNode, code),
		ParentName: nodeText(traitNode, code),
		Kind:       models.EdgeImplements,
		Line:       int(node.StartPosition().Row) + 1,
	})
}

// extractRustModDecl records a local submodule declaration (`mod m;`), the
// import-like fact spec section 4.2 calls out separately from `use`. An
// inline module (`mod m { ... }`) declares no separate file to reference,
// so it is left alone here; its body is still walked generically for the
// items it contains.
func extractRustModDecl(node *sitter.Node, code []byte, path string, result *models.ParseResult) {
	if node.ChildByFieldName("body") != nil {
		return
	}
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	result.Imports = append(result.Imports, models.ImportStatement{
		FromPath: path,
		RawPath:  nodeText(nameNode, code),
		Line:     int(node.StartPosition().Row) + 1,
	})
}

func extractRustUse(node *sitter.Node, code []byte, path string, result *models.ParseResult) {
	arg := node.ChildByFieldName("argument")
	if arg == nil {
		return
	}
	raw := nodeText(arg, code)
	result.Imports = append(result.Imports, models.ImportStatement{
		FromPath: path,
		RawPath:  raw,
		Line:     int(node.StartPosition().Row) + 1,
	})
}

func extractRustCall(node *sitter.Node, code []byte, enclosingID string, result *models.ParseResult) {
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
	} else if fn.Kind() == "scoped_identifier" {
		if n := fn.ChildByFieldName("name"); n != nil {
			name = nodeText(n, code)
		}
	}
	result.Calls = append(result.Calls, models.CallSite{
		CallerID:   enclosingID,
		CalleeName: name,
		Line:       int(node.StartPosition().Row) + 1,
	})
}
