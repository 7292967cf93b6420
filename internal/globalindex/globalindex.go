// Package globalindex builds the cross-file module map, symbol map, and
// export map the repository graph's import and call resolution passes
// consult, grounded on the file-registry/symbol-table shape of the
// standardbeagle-lci SymbolLinkerEngine.
package globalindex

import (
	"path/filepath"
	"strings"

	"github.com/graphkernel/codegraph/internal/models"
)

// FileInfo is one file's contribution to the global index.
type FileInfo struct {
	Path     string
	Language string
	Elements []models.CodeElement // all elements defined in this file
	Imports  []models.ImportStatement
}

// Index is the incrementally-maintained module/symbol/export map. It holds
// no locking of its own: internal/graph.Repository serializes access under
// its own RWMutex, the same single writer lock that covers the graph and
// the keyword index.
type Index struct {
	files     map[string]*FileInfo // path -> file info
	symbolMap map[string][]string  // simple name -> element IDs, across the whole repo
	exportMap map[string]string    // "path:exportedName" -> element ID

	// modulePaths/moduleCandidates/moduleMap implement the module map from
	// spec section 4.4: module_path -> file path, one entry per module path
	// discoverable from the repository's files, collisions resolved by
	// shortest path then lexicographic (see resolveModuleWinner).
	modulePaths      map[string][]string // file path -> module paths it registers
	moduleCandidates map[string][]string // module path -> every file path currently claiming it
	moduleMap        map[string]string   // module path -> winning file path

	// goModulePrefix is the module directive read from the indexed repo's
	// go.mod (e.g. "github.com/graphkernel/codegraph"). Go import paths are
	// always fully qualified from the module root, so it must be stripped
	// before a raw import path can match the directory-based module keys
	// this index stores for Go files.
	goModulePrefix string
}

// New returns an empty Index.
func New() *Index {
	return &Index{
		files:            map[string]*FileInfo{},
		symbolMap:        map[string][]string{},
		exportMap:        map[string]string{},
		modulePaths:      map[string][]string{},
		moduleCandidates: map[string][]string{},
		moduleMap:        map[string]string{},
	}
}

// SetGoModulePrefix records the root module path declared by the indexed
// repository's go.mod, so Go import resolution can strip it down to the
// directory-relative form the module map stores. A no-op for repositories
// without a go.mod or with no Go files.
func (idx *Index) SetGoModulePrefix(prefix string) {
	idx.goModulePrefix = strings.TrimSuffix(prefix, "/")
}

// GoModulePrefix returns the module prefix set by SetGoModulePrefix, for
// Repository.Snapshot to persist across a save/load round trip.
func (idx *Index) GoModulePrefix() string {
	return idx.goModulePrefix
}

// AddFile registers path's parsed elements, replacing any prior entry for
// the same path (callers should RemoveFile first if this is a re-parse, so
// stale symbol/export/module entries don't linger).
func (idx *Index) AddFile(result models.ParseResult) {
	info := &FileInfo{Path: result.Path, Language: result.Language, Elements: result.Elements, Imports: result.Imports}
	idx.files[result.Path] = info

	for _, el := range result.Elements {
		if el.Kind == models.KindFile {
			continue
		}
		idx.symbolMap[el.Name] = append(idx.symbolMap[el.Name], el.ID)
		if el.Exported {
			idx.exportMap[exportKey(el.Path, el.Name)] = el.ID
			if el.QualifiedName != el.Name {
				idx.exportMap[exportKey(el.Path, el.QualifiedName)] = el.ID
			}
		}
	}

	for _, mp := range modulePathsFor(result) {
		idx.modulePaths[result.Path] = append(idx.modulePaths[result.Path], mp)
		idx.moduleCandidates[mp] = append(idx.moduleCandidates[mp], result.Path)
		idx.resolveModuleWinner(mp)
	}
}

// RemoveFile drops path's contribution to the symbol, export, and module
// maps.
func (idx *Index) RemoveFile(path string) {
	info, ok := idx.files[path]
	if !ok {
		return
	}
	for _, el := range info.Elements {
		idx.symbolMap[el.Name] = removeID(idx.symbolMap[el.Name], el.ID)
		if len(idx.symbolMap[el.Name]) == 0 {
			delete(idx.symbolMap, el.Name)
		}
		delete(idx.exportMap, exportKey(el.Path, el.Name))
		delete(idx.exportMap, exportKey(el.Path, el.QualifiedName))
	}

	for _, mp := range idx.modulePaths[path] {
		idx.moduleCandidates[mp] = removeID(idx.moduleCandidates[mp], path)
		idx.resolveModuleWinner(mp)
	}
	delete(idx.modulePaths, path)
	delete(idx.files, path)
}

// resolveModuleWinner recomputes moduleMap[mp] from moduleCandidates[mp]
// after an add or remove, applying the collision rule: shortest path wins,
// ties broken lexicographically.
func (idx *Index) resolveModuleWinner(mp string) {
	candidates := idx.moduleCandidates[mp]
	if len(candidates) == 0 {
		delete(idx.moduleMap, mp)
		delete(idx.moduleCandidates, mp)
		return
	}
	winner := candidates[0]
	for _, c := range candidates[1:] {
		if len(c) < len(winner) || (len(c) == len(winner) && c < winner) {
			winner = c
		}
	}
	idx.moduleMap[mp] = winner
}

// File returns the registered info for path, if any.
func (idx *Index) File(path string) (*FileInfo, bool) {
	info, ok := idx.files[path]
	return info, ok
}

// SymbolsNamed returns every element ID anywhere in the repository whose
// simple name is name — the tier-4 global fallback of call resolution.
func (idx *Index) SymbolsNamed(name string) []string {
	return idx.symbolMap[name]
}

// ResolveImportPath turns an import's raw path into the file path it
// refers to. Relative imports (IsRelative) are resolved by joining against
// fromPath's directory; everything else is resolved through the per-language
// module map built in AddFile. Unresolvable imports ("external"
// packages/modules, stdlib, third-party) are left unresolved: the graph
// simply adds no Imports edge for them and counts the miss in stats, per
// the spec's "unresolvable imports are dropped, not an error" policy.
func (idx *Index) ResolveImportPath(fromPath string, imp models.ImportStatement) (string, bool) {
	if imp.RawPath == "" {
		return "", false
	}
	if imp.IsRelative {
		return idx.resolveRelative(fromPath, imp.RawPath)
	}
	info, ok := idx.files[fromPath]
	if !ok {
		return "", false
	}
	return idx.resolveViaModuleMap(fromPath, info.Language, imp.RawPath)
}

func (idx *Index) resolveRelative(fromPath, rawPath string) (string, bool) {
	base := filepath.Dir(fromPath)
	candidate := filepath.Clean(filepath.Join(base, rawPath))

	if _, ok := idx.files[candidate]; ok {
		return candidate, true
	}
	for ext := range extensionCandidates {
		if _, ok := idx.files[candidate+ext]; ok {
			return candidate + ext, true
		}
	}
	for ext := range extensionCandidates {
		indexPath := filepath.Join(candidate, "index"+ext)
		if _, ok := idx.files[indexPath]; ok {
			return indexPath, true
		}
	}
	return "", false
}

// resolveViaModuleMap looks up a non-relative import's raw path against the
// module map, applying each language's own naming convention so the lookup
// key matches what modulePathsFor registered for the target file.
func (idx *Index) resolveViaModuleMap(fromPath, lang, rawPath string) (string, bool) {
	switch lang {
	case models.LangGo:
		key := rawPath
		if idx.goModulePrefix != "" && (key == idx.goModulePrefix || strings.HasPrefix(key, idx.goModulePrefix+"/")) {
			key = strings.TrimPrefix(strings.TrimPrefix(key, idx.goModulePrefix), "/")
		}
		if key == "" {
			key = "."
		}
		if p, ok := idx.moduleMap[key]; ok {
			return p, true
		}
		return "", false

	case models.LangPython:
		if p, ok := idx.moduleMap[rawPath]; ok {
			return p, true
		}
		return "", false

	case models.LangJava:
		if p, ok := idx.moduleMap[rawPath]; ok {
			return p, true
		}
		return "", false

	case models.LangRust:
		key := strings.TrimPrefix(rawPath, "crate::")
		key = strings.TrimPrefix(key, "self::")
		if p, ok := idx.moduleMap[key]; ok {
			return p, true
		}
		// `use a::b::Item` names an item, not a module; retry one segment
		// shallower.
		if i := strings.LastIndex(key, "::"); i >= 0 {
			if p, ok := idx.moduleMap[key[:i]]; ok {
				return p, true
			}
		}
		// `mod m;` declares a submodule of the current file's own module,
		// not a crate-rooted path.
		owner := rustModulePath(filepath.ToSlash(fromPath))
		nested := key
		if owner != "crate" {
			nested = owner + "::" + key
		}
		if p, ok := idx.moduleMap[nested]; ok {
			return p, true
		}
		return "", false

	default:
		return "", false
	}
}

var extensionCandidates = map[string]bool{
	".py": true, ".js": true, ".jsx": true, ".ts": true, ".tsx": true,
	".go": true, ".rs": true, ".java": true, ".c": true, ".h": true, ".cpp": true, ".hpp": true,
}

// modulePathsFor computes the module path(s) a file contributes to the
// module map, per the per-language conventions of spec section 4.4.
func modulePathsFor(result models.ParseResult) []string {
	path := filepath.ToSlash(result.Path)
	switch result.Language {
	case models.LangGo:
		dir := filepath.ToSlash(filepath.Dir(path))
		return []string{dir}
	case models.LangPython:
		return []string{pythonModulePath(path)}
	case models.LangJavaScript, models.LangJSX, models.LangTypeScript, models.LangTSX:
		return jsModulePaths(path)
	case models.LangJava:
		return []string{javaModulePath(path, result.Package)}
	case models.LangRust:
		return []string{rustModulePath(path)}
	default:
		return nil
	}
}

func pythonModulePath(path string) string {
	trimmed := strings.TrimSuffix(path, filepath.Ext(path))
	segments := strings.Split(trimmed, "/")
	if len(segments) > 0 && segments[len(segments)-1] == "__init__" {
		segments = segments[:len(segments)-1]
	}
	return strings.Join(segments, ".")
}

func jsModulePaths(path string) []string {
	trimmed := strings.TrimSuffix(path, filepath.Ext(path))
	paths := []string{trimmed}
	if filepath.Base(trimmed) == "index" {
		paths = append(paths, filepath.Dir(trimmed))
	}
	return paths
}

func javaModulePath(path, pkg string) string {
	base := filepath.Base(path)
	class := strings.TrimSuffix(base, filepath.Ext(base))
	if pkg == "" {
		return class
	}
	return pkg + "." + class
}

// rustModulePath derives a file's module path from its conventional
// location in the crate layout: lib.rs/main.rs are the crate root, mod.rs
// collapses into its containing directory, and every other file's module
// name is its path with "/" replaced by "::". This matches the module tree
// `mod` declarations are required to follow in any crate that doesn't use
// #[path] overrides, so walking file paths gives the same answer as walking
// the mod tree for the layouts this engine can see without a cargo
// manifest.
func rustModulePath(path string) string {
	trimmed := strings.TrimSuffix(path, ".rs")
	trimmed = strings.TrimPrefix(trimmed, "src/")
	switch filepath.Base(trimmed) {
	case "mod":
		trimmed = filepath.Dir(trimmed)
	case "lib", "main":
		trimmed = filepath.Dir(trimmed)
	}
	if trimmed == "." || trimmed == "" {
		return "crate"
	}
	return strings.ReplaceAll(trimmed, "/", "::")
}

func exportKey(path, name string) string { return path + ":" + name }

func removeID(ids []string, target string) []string {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}
