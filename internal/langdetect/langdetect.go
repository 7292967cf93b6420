// Package langdetect maps file paths to the language tags the treesitter
// package knows how to parse.
package langdetect

import (
	"path/filepath"
	"strings"

	"github.com/graphkernel/codegraph/internal/models"
)

var extensionTable = map[string]string{
	".py":  models.LangPython,
	".pyi": models.LangPython,
	".pyw": models.LangPython,

	".js":  models.LangJavaScript,
	".mjs": models.LangJavaScript,
	".cjs": models.LangJavaScript,
	".jsx": models.LangJSX,

	".ts":  models.LangTypeScript,
	".mts": models.LangTypeScript,
	".cts": models.LangTypeScript,
	".tsx": models.LangTSX,

	".rs": models.LangRust,
	".go": models.LangGo,

	".java": models.LangJava,

	".c": models.LangC,
	".h": models.LangC,

	".cc":  models.LangCPP,
	".cpp": models.LangCPP,
	".cxx": models.LangCPP,
	".hpp": models.LangCPP,
	".hh":  models.LangCPP,

	".cs": models.LangCSharp,
}

// Detect returns the language tag for path and whether it is supported at
// all. csharp additionally requires the caller to have it enabled via
// enabledLanguages (nil enables every other language, but not csharp).
func Detect(path string, enabledLanguages map[string]bool) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	lang, ok := extensionTable[ext]
	if !ok {
		return "", false
	}
	if enabledLanguages != nil && !enabledLanguages[lang] {
		return "", false
	}
	if lang == models.LangCSharp && !enabledLanguages[lang] {
		return "", false
	}
	return lang, true
}

// IsKnownExtension reports whether ext (including the leading dot) maps to a
// language this package can detect, ignoring any enabled-language filter.
func IsKnownExtension(ext string) bool {
	_, ok := extensionTable[strings.ToLower(ext)]
	return ok
}
