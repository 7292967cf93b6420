// Package treesitter wraps the tree-sitter grammars for each supported
// language behind a single ParseFile entry point and a per-language
// extractor that walks the resulting syntax tree into models.ParseResult.
package treesitter

import (
	"fmt"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_csharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/graphkernel/codegraph/internal/models"
)

// grammarCache holds one constructed *sitter.Language per language tag so
// concurrent walker workers never rebuild a grammar.
var (
	grammarCache   = map[string]*sitter.Language{}
	grammarCacheMu sync.Mutex
)

func grammarFor(lang string) (*sitter.Language, error) {
	grammarCacheMu.Lock()
	defer grammarCacheMu.Unlock()

	if g, ok := grammarCache[lang]; ok {
		return g, nil
	}

	var g *sitter.Language
	switch lang {
	case models.LangPython:
		g = sitter.NewLanguage(tree_sitter_python.Language())
	case models.LangJavaScript, models.LangJSX:
		g = sitter.NewLanguage(tree_sitter_javascript.Language())
	case models.LangTypeScript:
		g = sitter.NewLanguage(tree_sitter_typescript.LanguageTypescript())
	case models.LangTSX:
		g = sitter.NewLanguage(tree_sitter_typescript.LanguageTSX())
	case models.LangGo:
		g = sitter.NewLanguage(tree_sitter_go.Language())
	case models.LangRust:
		g = sitter.NewLanguage(tree_sitter_rust.Language())
	case models.LangJava:
		g = sitter.NewLanguage(tree_sitter_java.Language())
	case models.LangC:
		g = sitter.NewLanguage(tree_sitter_c.Language())
	case models.LangCPP:
		g = sitter.NewLanguage(tree_sitter_cpp.Language())
	case models.LangCSharp:
		g = sitter.NewLanguage(tree_sitter_csharp.Language())
	default:
		return nil, fmt.Errorf("treesitter: unsupported language %q", lang)
	}
	grammarCache[lang] = g
	return g, nil
}

// extractorFunc walks a parsed root node into a models.ParseResult.
type extractorFunc func(path string, root *sitter.Node, code []byte) models.ParseResult

var extractors = map[string]extractorFunc{
	models.LangPython:     extractPython,
	models.LangJavaScript: extractJavaScript,
	models.LangJSX:        extractJavaScript,
	models.LangTypeScript: extractTypeScript,
	models.LangTSX:        extractTSX,
	models.LangGo:         extractGo,
	models.LangRust:       extractRust,
	models.LangJava:       extractJava,
	models.LangC:          extractC,
	models.LangCPP:        extractCPP,
	models.LangCSharp:     extractCSharp,
}

// ParseFile parses code (the contents of path, already read by the caller)
// as lang and extracts its elements, calls, imports, and inheritance edges.
// Callers must have already detected lang via internal/langdetect; an
// unrecognized lang is reported as models.ParseResult.Error, not a panic.
func ParseFile(path string, code []byte, lang string) models.ParseResult {
	extract, ok := extractors[lang]
	if !ok {
		return models.ParseResult{Path: path, Language: lang, Error: fmt.Errorf("treesitter: no extractor for language %q", lang)}
	}

	grammar, err := grammarFor(lang)
	if err != nil {
		return models.ParseResult{Path: path, Language: lang, Error: err}
	}

	parser := sitter.NewParser()
	if parser == nil {
		return models.ParseResult{Path: path, Language: lang, Error: fmt.Errorf("treesitter: failed to create parser")}
	}
	defer parser.Close()

	if err := parser.SetLanguage(grammar); err != nil {
		return models.ParseResult{Path: path, Language: lang, Error: fmt.Errorf("treesitter: set language %s: %w", lang, err)}
	}

	tree := parser.Parse(code, nil)
	if tree == nil {
		return models.ParseResult{Path: path, Language: lang, Error: fmt.Errorf("treesitter: failed to parse %s", path)}
	}
	defer tree.Close()

	result := extract(path, tree.RootNode(), code)
	result.Path = path
	result.Language = lang
	return result
}
