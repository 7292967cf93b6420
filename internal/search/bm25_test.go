package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/graphkernel/codegraph/internal/models"
)

func TestTokenize_SplitsCamelCaseAndSnakeCase(t *testing.T) {
	assert.Equal(t, []string{"parse", "file"}, tokenize("parseFile"))
	assert.Equal(t, []string{"parse", "file"}, tokenize("parse_file"))
	assert.Equal(t, []string{"new", "config"}, tokenize("NewConfig"))
	assert.Nil(t, tokenize(""))
}

func TestIndex_SearchRanksExactNameMatchFirst(t *testing.T) {
	ix := New(1.2, 0.75)
	ix.Index(models.CodeElement{ID: "a", Name: "ParseConfig", QualifiedName: "config.ParseConfig", Snippet: "func ParseConfig() error"})
	ix.Index(models.CodeElement{ID: "b", Name: "WriteReport", QualifiedName: "report.WriteReport", Snippet: "calls ParseConfig internally"})

	results := ix.Search("parse config", 10)
	if assert.NotEmpty(t, results) {
		assert.Equal(t, "a", results[0].ID)
	}
}

func TestIndex_SearchRespectsLimit(t *testing.T) {
	ix := New(1.2, 0.75)
	for _, id := range []string{"a", "b", "c"} {
		ix.Index(models.CodeElement{ID: id, Name: "helper", QualifiedName: "pkg.helper", Snippet: "a generic helper"})
	}
	results := ix.Search("helper", 2)
	assert.Len(t, results, 2)
}

func TestIndex_SearchIsDeterministicUnderTies(t *testing.T) {
	ix := New(1.2, 0.75)
	ix.Index(models.CodeElement{ID: "z", Name: "helper", QualifiedName: "pkg.helper"})
	ix.Index(models.CodeElement{ID: "a", Name: "helper", QualifiedName: "pkg.helper"})

	results := ix.Search("helper", 10)
	if assert.Len(t, results, 2) {
		assert.Equal(t, "a", results[0].ID)
		assert.Equal(t, "z", results[1].ID)
	}
}

func TestIndex_Remove(t *testing.T) {
	ix := New(1.2, 0.75)
	ix.Index(models.CodeElement{ID: "a", Name: "helper"})
	ix.Remove("a")
	assert.Empty(t, ix.Search("helper", 10))
}

func TestIndex_SearchNoMatch(t *testing.T) {
	ix := New(1.2, 0.75)
	ix.Index(models.CodeElement{ID: "a", Name: "helper"})
	assert.Empty(t, ix.Search("nonexistentterm", 10))
}
