package treesitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphkernel/codegraph/internal/models"
)

const goFixture = `package sample

import (
	"fmt"
	other "sample/util"
)

type Greeter struct {
	Name string
}

type Speaker interface {
	Speak() string
}

func (g *Greeter) Speak() string {
	return fmt.Sprintf("hi %s", g.Name)
}

func NewGreeter(name string) *Greeter {
	g := &Greeter{Name: name}
	g.Speak()
	return g
}

func unexported() {
	other.Noop()
}
`

func TestParseFile_Go_ExtractsElements(t *testing.T) {
	result := ParseFile("sample.go", []byte(goFixture), models.LangGo)
	require.NoError(t, result.Error)
	assert.Equal(t, models.LangGo, result.Language)

	byName := map[string]models.CodeElement{}
	for _, el := range result.Elements {
		byName[el.QualifiedName] = el
	}

	require.Contains(t, byName, "Greeter")
	assert.Equal(t, models.KindStruct, byName["Greeter"].Kind)
	assert.True(t, byName["Greeter"].Exported)

	require.Contains(t, byName, "Speaker")
	assert.Equal(t, models.KindInterface, byName["Speaker"].Kind)

	require.Contains(t, byName, "Greeter.Speak")
	assert.Equal(t, models.KindMethod, byName["Greeter.Speak"].Kind)
	assert.NotEmpty(t, byName["Greeter.Speak"].ParentID)

	require.Contains(t, byName, "NewGreeter")
	assert.Equal(t, models.KindFunction, byName["NewGreeter"].Kind)
	assert.True(t, byName["NewGreeter"].Exported)

	require.Contains(t, byName, "unexported")
	assert.False(t, byName["unexported"].Exported)
}

func TestParseFile_Go_ExtractsImports(t *testing.T) {
	result := ParseFile("sample.go", []byte(goFixture), models.LangGo)
	require.NoError(t, result.Error)

	var raws []string
	aliasFound := false
	for _, imp := range result.Imports {
		raws = append(raws, imp.RawPath)
		if imp.Alias == "other" {
			aliasFound = true
			assert.Equal(t, "sample/util", imp.RawPath)
		}
	}
	assert.Contains(t, raws, "fmt")
	assert.True(t, aliasFound, "expected aliased import sample/util to be captured")
}

func TestParseFile_Go_ExtractsCalls(t *testing.T) {
	result := ParseFile("sample.go", []byte(goFixture), models.LangGo)
	require.NoError(t, result.Error)

	var callees []string
	for _, call := range result.Calls {
		require.NotEmpty(t, call.CallerID)
		callees = append(callees, call.CalleeName)
	}
	assert.Contains(t, callees, "Sprintf")
	assert.Contains(t, callees, "Speak")
	assert.Contains(t, callees, "Noop")
}

func TestParseFile_UnsupportedLanguage(t *testing.T) {
	result := ParseFile("sample.xyz", []byte("whatever"), "cobol")
	require.Error(t, result.Error)
}

func TestIsExportedGoName(t *testing.T) {
	assert.True(t, isExportedGoName("Foo"))
	assert.False(t, isExportedGoName("foo"))
	assert.False(t, isExportedGoName(""))
}
