package treesitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/graphkernel/codegraph/internal/models"
)

const pythonFixture = `import os
from .util import helper as h


class Animal:
    def speak(self):
        return "..."


class Dog(Animal):
    def speak(self):
        h.log()
        return super().speak() + " woof"


def _private():
    pass
`

func TestParseFile_Python_ExtractsElements(t *testing.T) {
	result := ParseFile("sample.py", []byte(pythonFixture), models.LangPython)
	require.NoError(t, result.Error)

	byName := map[string]models.CodeElement{}
	for _, el := range result.Elements {
		byName[el.QualifiedName] = el
	}

	require.Contains(t, byName, "Animal")
	assert.Equal(t, models.KindClass, byName["Animal"].Kind)

	require.Contains(t, byName, "Dog")
	assert.Equal(t, models.KindClass, byName["Dog"].Kind)

	require.Contains(t, byName, "Dog.speak")
	assert.Equal(t, models.KindMethod, byName["Dog.speak"].Kind)
	assert.NotEmpty(t, byName["Dog.speak"].ParentID)

	require.Contains(t, byName, "_private")
	assert.False(t, byName["_private"].Exported)
}

func TestParseFile_Python_ExtractsInheritance(t *testing.T) {
	result := ParseFile("sample.py", []byte(pythonFixture), models.LangPython)
	require.NoError(t, result.Error)
	require.Len(t, result.Inheritance, 1)
	assert.Equal(t, "Animal", result.Inheritance[0].ParentName)
	assert.Equal(t, models.EdgeInherits, result.Inheritance[0].Kind)
}

func TestParseFile_Python_ExtractsImports(t *testing.T) {
	result := ParseFile("sample.py", []byte(pythonFixture), models.LangPython)
	require.NoError(t, result.Error)

	var raws []string
	for _, imp := range result.Imports {
		raws = append(raws, imp.RawPath)
	}
	assert.Contains(t, raws, "os")
	assert.Contains(t, raws, ".util")
}
