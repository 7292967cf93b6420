// Package models holds the data types shared by the parser, walker, global
// index, graph, and search packages.
package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeID derives a stable handle for a CodeElement from its path,
// qualified name, kind, and start byte, the way quantmind-br-codemap's
// GenerateNodeID hashes path+symbol for its graph nodes. The same four
// inputs always produce the same ID, so re-parsing an unchanged file
// reproduces identical handles.
func ComputeID(path, qualifiedName string, kind ElementKind, startByte int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%s|%d", path, qualifiedName, kind, startByte)))
	return hex.EncodeToString(sum[:16])
}

// ElementKind identifies the structural role of a CodeElement.
type ElementKind string

const (
	KindFile      ElementKind = "file"
	KindFunction  ElementKind = "function"
	KindMethod    ElementKind = "method"
	KindClass     ElementKind = "class"
	KindInterface ElementKind = "interface"
	KindStruct    ElementKind = "struct"
	KindEnum      ElementKind = "enum"
	KindVariable  ElementKind = "variable"
)

// EdgeKind identifies the relationship a GraphEdge represents.
type EdgeKind string

const (
	EdgeDefines    EdgeKind = "defines"
	EdgeImports    EdgeKind = "imports"
	EdgeCalls      EdgeKind = "calls"
	EdgeInherits   EdgeKind = "inherits"
	EdgeImplements EdgeKind = "implements"
	EdgeReferences EdgeKind = "references"
)

// Language tags produced by the dispatcher and consumed by the extractors.
const (
	LangPython     = "python"
	LangJavaScript = "javascript"
	LangJSX        = "jsx"
	LangTypeScript = "typescript"
	LangTSX        = "tsx"
	LangGo         = "go"
	LangRust       = "rust"
	LangJava       = "java"
	LangC          = "c"
	LangCPP        = "cpp"
	LangCSharp     = "csharp"
)

// CodeElement is a single structural unit extracted from a source file: the
// file itself, a function, method, class, interface, struct, enum, or
// module-level variable.
type CodeElement struct {
	ID            string `json:"id"`
	Kind          ElementKind `json:"kind"`
	Name          string      `json:"name"`           // simple name, e.g. "parse"
	QualifiedName string      `json:"qualified_name"` // dotted/namespaced name, e.g. "pkg.Class.method"
	Path          string      `json:"path"`           // file path as the walker produced it: the indexed root joined with the file's path under it
	Language      string      `json:"language"`
	StartByte     int         `json:"start_byte"`
	EndByte       int         `json:"end_byte"`
	StartLine     int         `json:"start_line"` // 1-based
	EndLine       int         `json:"end_line"`
	Signature     string      `json:"signature"` // best-effort source text of the declaration header
	Snippet       string      `json:"snippet"`   // short excerpt used for search and display
	ParentID      string      `json:"parent_id"` // enclosing element's ID, "" for files and top-level decls
	Exported      bool        `json:"exported"`
}

// GraphEdge is a resolved relationship between two CodeElement IDs, stored
// in the repository graph once both endpoints are known.
type GraphEdge struct {
	From string   `json:"from"`
	To   string   `json:"to"`
	Kind EdgeKind `json:"kind"`
	Line int      `json:"line"`
}

// ImportStatement is a single import/include/use declaration found in a file.
type ImportStatement struct {
	FromPath   string   `json:"from_path"` // importing file path
	RawPath    string   `json:"raw_path"`  // as written in source, e.g. "./util" or "os/exec"
	Alias      string   `json:"alias"`
	Names      []string `json:"names"` // named imports, empty for whole-module imports
	IsRelative bool      `json:"is_relative"`
	Line       int       `json:"line"`
}

// CallSite is an unresolved call expression found inside some element.
type CallSite struct {
	CallerID   string `json:"caller_id"` // ID of the enclosing CodeElement
	CalleeName string `json:"callee_name"` // simple or dotted name as written at the call site
	Line       int    `json:"line"`
}

// InheritanceEdge is an unresolved extends/implements/impl-trait relationship.
type InheritanceEdge struct {
	ChildID    string   `json:"child_id"`
	ParentName string   `json:"parent_name"` // name of the superclass/interface/trait as written
	Kind       EdgeKind `json:"kind"`         // EdgeInherits or EdgeImplements
	Line       int      `json:"line"`
}

// ParseResult is everything a language extractor produces for one file.
type ParseResult struct {
	Path        string
	Language    string
	Elements    []CodeElement
	Calls       []CallSite
	Imports     []ImportStatement
	Inheritance []InheritanceEdge
	// Package is the file's declared package/namespace, when the language
	// has one separate from its import statements (Java's `package a.b;`).
	// Empty for languages with no such declaration.
	Package string
	Error   error
}
