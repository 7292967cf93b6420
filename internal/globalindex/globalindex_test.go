package globalindex

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphkernel/codegraph/internal/models"
)

func TestIndex_AddFile_PopulatesSymbolAndExportMaps(t *testing.T) {
	idx := New()
	idx.AddFile(models.ParseResult{
		Path: "/repo/a.go",
		Elements: []models.CodeElement{
			{ID: "f1", Kind: models.KindFile, Name: "a.go", Path: "/repo/a.go"},
			{ID: "e1", Kind: models.KindFunction, Name: "Greet", QualifiedName: "Greet", Path: "/repo/a.go", Exported: true},
			{ID: "e2", Kind: models.KindFunction, Name: "helper", QualifiedName: "helper", Path: "/repo/a.go", Exported: false},
		},
	})

	assert.Equal(t, []string{"e1"}, idx.SymbolsNamed("Greet"))
	assert.Equal(t, []string{"e2"}, idx.SymbolsNamed("helper"))
	assert.Empty(t, idx.SymbolsNamed("f1")) // file elements are not registered as symbols

	assert.Equal(t, "e1", idx.exportMap[exportKey("/repo/a.go", "Greet")])
	_, helperExported := idx.exportMap[exportKey("/repo/a.go", "helper")]
	assert.False(t, helperExported) // unexported elements stay out of the export map

	info, ok := idx.File("/repo/a.go")
	require.True(t, ok)
	assert.Len(t, info.Elements, 3)
}

func TestIndex_RemoveFile_ClearsSymbols(t *testing.T) {
	idx := New()
	idx.AddFile(models.ParseResult{
		Path: "/repo/a.go",
		Elements: []models.CodeElement{
			{ID: "e1", Kind: models.KindFunction, Name: "Greet", Exported: true},
		},
	})
	idx.RemoveFile("/repo/a.go")

	assert.Empty(t, idx.SymbolsNamed("Greet"))
	_, ok := idx.File("/repo/a.go")
	assert.False(t, ok)
}

func TestIndex_ResolveImportPath_RelativeWithExtension(t *testing.T) {
	idx := New()
	idx.AddFile(models.ParseResult{Path: "/repo/util.js"})

	resolved, ok := idx.ResolveImportPath("/repo/main.js", models.ImportStatement{RawPath: "./util", IsRelative: true})
	require.True(t, ok)
	assert.Equal(t, "/repo/util.js", resolved)
}

func TestIndex_ResolveImportPath_IndexFileFallback(t *testing.T) {
	idx := New()
	idx.AddFile(models.ParseResult{Path: "/repo/lib/index.ts"})

	resolved, ok := idx.ResolveImportPath("/repo/main.ts", models.ImportStatement{RawPath: "./lib", IsRelative: true})
	require.True(t, ok)
	assert.Equal(t, "/repo/lib/index.ts", resolved)
}

func TestIndex_ResolveImportPath_StdlibImportIsUnresolved(t *testing.T) {
	idx := New()
	idx.AddFile(models.ParseResult{Path: "/repo/main.go", Language: models.LangGo})

	_, ok := idx.ResolveImportPath("/repo/main.go", models.ImportStatement{RawPath: "fmt"})
	assert.False(t, ok)
}

func TestIndex_ResolveImportPath_UnknownRelativeIsUnresolved(t *testing.T) {
	idx := New()
	_, ok := idx.ResolveImportPath("/repo/main.go", models.ImportStatement{RawPath: "./missing", IsRelative: true})
	assert.False(t, ok)
}

func TestIndex_ResolveImportPath_GoModulePathThroughDirectoryMap(t *testing.T) {
	idx := New()
	idx.SetGoModulePrefix("example.com/widget")
	idx.AddFile(models.ParseResult{Path: "internal/util/util.go", Language: models.LangGo})
	idx.AddFile(models.ParseResult{Path: "main.go", Language: models.LangGo})

	resolved, ok := idx.ResolveImportPath("main.go", models.ImportStatement{RawPath: "example.com/widget/internal/util"})
	require.True(t, ok)
	assert.Equal(t, "internal/util/util.go", resolved)
}

func TestIndex_ResolveImportPath_PythonDottedPackagePath(t *testing.T) {
	idx := New()
	idx.AddFile(models.ParseResult{Path: "pkg/a.py", Language: models.LangPython})
	idx.AddFile(models.ParseResult{Path: "pkg/b.py", Language: models.LangPython})

	resolved, ok := idx.ResolveImportPath("pkg/b.py", models.ImportStatement{RawPath: "pkg.a"})
	require.True(t, ok)
	assert.Equal(t, "pkg/a.py", resolved)
}
