// Package search implements a BM25 keyword index over indexed code
// elements. No BM25 library is available, so the inverted index and
// scoring loop are hand-written against the standard library; see
// DESIGN.md for the reasoning. The tokenizer's lowercase/split/
// identifier-splitting shape follows the same camelCase/snake_case
// handling used elsewhere in this codebase's keyword extraction.
package search

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/graphkernel/codegraph/internal/models"
)

const (
	fieldName          = "name"
	fieldQualifiedName = "qualified_name"
	fieldSnippet       = "snippet"
)

var fieldWeights = map[string]float64{
	fieldName:          3.0,
	fieldQualifiedName: 2.0,
	fieldSnippet:       1.0,
}

// Index is a BM25 inverted index over CodeElement name, qualified name,
// and snippet fields.
type Index struct {
	mu sync.RWMutex

	k1 float64
	b  float64

	docs    map[string]*document // element ID -> document
	postings map[string]map[string]struct{} // token -> set of element IDs containing it in any field

	fieldLen map[string]map[string]int // field -> docID -> token count
	avgLen   map[string]float64        // field -> average token count across docs with that field non-empty
}

type document struct {
	id     string
	tokens map[string][]string // field -> tokens
}

// Result is one scored match.
type Result struct {
	ID    string
	Score float64
}

// New returns an empty index tuned with k1 and b (defaults 1.2/0.75 when
// either is zero).
func New(k1, b float64) *Index {
	if k1 <= 0 {
		k1 = 1.2
	}
	if b <= 0 {
		b = 0.75
	}
	return &Index{
		k1:       k1,
		b:        b,
		docs:     map[string]*document{},
		postings: map[string]map[string]struct{}{},
		fieldLen: map[string]map[string]int{fieldName: {}, fieldQualifiedName: {}, fieldSnippet: {}},
		avgLen:   map[string]float64{},
	}
}

// Index adds or replaces the document for el.
func (ix *Index) Index(el models.CodeElement) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	ix.removeLocked(el.ID)

	doc := &document{
		id: el.ID,
		tokens: map[string][]string{
			fieldName:          tokenize(el.Name),
			fieldQualifiedName: tokenize(el.QualifiedName),
			fieldSnippet:       tokenize(el.Snippet),
		},
	}
	ix.docs[el.ID] = doc

	for field, toks := range doc.tokens {
		ix.fieldLen[field][el.ID] = len(toks)
		seen := map[string]bool{}
		for _, tok := range toks {
			if seen[tok] {
				continue
			}
			seen[tok] = true
			set, ok := ix.postings[tok]
			if !ok {
				set = map[string]struct{}{}
				ix.postings[tok] = set
			}
			set[el.ID] = struct{}{}
		}
	}
	ix.recomputeAverages()
}

// Remove deletes id's document from the index, if present.
func (ix *Index) Remove(id string) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.removeLocked(id)
	ix.recomputeAverages()
}

func (ix *Index) removeLocked(id string) {
	doc, ok := ix.docs[id]
	if !ok {
		return
	}
	for field, toks := range doc.tokens {
		for _, tok := range toks {
			if set, ok := ix.postings[tok]; ok {
				delete(set, id)
				if len(set) == 0 {
					delete(ix.postings, tok)
				}
			}
		}
		delete(ix.fieldLen[field], id)
	}
	delete(ix.docs, id)
}

func (ix *Index) recomputeAverages() {
	for field, lens := range ix.fieldLen {
		if len(lens) == 0 {
			ix.avgLen[field] = 0
			continue
		}
		total := 0
		for _, l := range lens {
			total += l
		}
		ix.avgLen[field] = float64(total) / float64(len(lens))
	}
}

// Search ranks documents against query and returns the top limit results
// in descending score order, breaking ties by ID so results are always
// in a deterministic total order.
func (ix *Index) Search(query string, limit int) []Result {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	queryTokens := tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}

	scores := map[string]float64{}
	n := float64(len(ix.docs))

	for _, term := range dedupe(queryTokens) {
		docIDs, ok := ix.postings[term]
		if !ok {
			continue
		}
		idf := math.Log(1 + (n-float64(len(docIDs))+0.5)/(float64(len(docIDs))+0.5))

		for id := range docIDs {
			var docScore float64
			for field, weight := range fieldWeights {
				tf := termFrequency(ix.docs[id].tokens[field], term)
				if tf == 0 {
					continue
				}
				dl := float64(ix.fieldLen[field][id])
				avgdl := ix.avgLen[field]
				if avgdl == 0 {
					avgdl = 1
				}
				norm := (1 - ix.b + ix.b*dl/avgdl)
				docScore += weight * idf * (tf * (ix.k1 + 1)) / (tf + ix.k1*norm)
			}
			scores[id] += docScore
		}
	}

	results := make([]Result, 0, len(scores))
	for id, score := range scores {
		if score > 0 {
			results = append(results, Result{ID: id, Score: score})
		}
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].ID < results[j].ID
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

func termFrequency(tokens []string, term string) float64 {
	count := 0
	for _, t := range tokens {
		if t == term {
			count++
		}
	}
	return float64(count)
}

func dedupe(tokens []string) []string {
	seen := map[string]bool{}
	out := tokens[:0]
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

var wordPattern = regexp.MustCompile(`[a-z0-9]+`)

// tokenize lowercases text, splits CamelCase and snake_case identifiers
// into their component words, and drops single-character tokens, so a
// search for "parseFile" also matches documents containing "parse" and
// "file" separately.
func tokenize(text string) []string {
	if text == "" {
		return nil
	}
	var tokens []string
	for _, word := range splitIdentifiers(text) {
		word = strings.ToLower(word)
		for _, tok := range wordPattern.FindAllString(word, -1) {
			if len(tok) > 1 {
				tokens = append(tokens, tok)
			}
		}
	}
	return tokens
}

// splitIdentifiers breaks whitespace/punctuation-separated words further on
// camelCase and snake_case/kebab-case boundaries.
func splitIdentifiers(text string) []string {
	raw := regexp.MustCompile(`[\s_\-./\\:()<>{}\[\],;]+`).Split(text, -1)
	var out []string
	for _, word := range raw {
		if word == "" {
			continue
		}
		out = append(out, camelCaseParts(word)...)
	}
	return out
}

func camelCaseParts(word string) []string {
	var parts []string
	var current strings.Builder
	runes := []rune(word)
	for i, r := range runes {
		if i > 0 && isUpper(r) && !isUpper(runes[i-1]) {
			parts = append(parts, current.String())
			current.Reset()
		}
		current.WriteRune(r)
	}
	if current.Len() > 0 {
		parts = append(parts, current.String())
	}
	return parts
}

func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }
