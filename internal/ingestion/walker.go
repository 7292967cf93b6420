// Package ingestion walks a repository tree, honoring ignore rules, and
// parses the files it finds in parallel via internal/treesitter.
package ingestion

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"

	"github.com/graphkernel/codegraph/internal/langdetect"
)

// defaultSkipDirs mirrors a source tree's usual non-source directories;
// RespectGitignore adds the repository's own .gitignore rules on top.
var defaultSkipDirs = []string{
	".git", "node_modules", "vendor", "venv", "__pycache__",
	".next", ".nuxt", "dist", "build", "out", "target",
	".cache", ".parcel-cache", "coverage", ".nyc_output",
	".pytest_cache", ".tox", ".venv", "env", "__mocks__",
	".idea", ".vscode",
}

var generatedSuffixes = []string{
	".min.js", ".bundle.js", ".generated.ts", ".generated.js",
	".pb.js", ".pb.ts", "_pb.js", "_pb.ts",
}

// WalkOptions configures a repository walk.
type WalkOptions struct {
	Root             string
	RespectGitignore bool
	ExtraIgnoreGlobs []string
	Languages        map[string]bool // nil = all languages except csharp enabled
}

// WalkSourceFiles walks opts.Root and yields paths to every file whose
// extension internal/langdetect recognizes, skipping ignored directories,
// generated files, and anything excluded by opts.ExtraIgnoreGlobs or the
// repository's own .gitignore. The channel closes when the walk finishes or
// ctx is canceled.
func WalkSourceFiles(ctx context.Context, opts WalkOptions) (<-chan string, error) {
	ignorer := loadIgnoreMatcher(opts)
	files := make(chan string, 128)

	go func() {
		defer close(files)

		_ = filepath.WalkDir(opts.Root, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			rel, relErr := filepath.Rel(opts.Root, path)
			if relErr != nil {
				rel = path
			}

			if d.IsDir() {
				if rel != "." && (shouldSkipDir(d.Name()) || (ignorer != nil && ignorer.MatchesPath(rel))) {
					return filepath.SkipDir
				}
				return nil
			}

			if ignorer != nil && ignorer.MatchesPath(rel) {
				return nil
			}
			if !isCandidateFile(path, opts.Languages) {
				return nil
			}

			select {
			case files <- path:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
	}()

	return files, nil
}

func loadIgnoreMatcher(opts WalkOptions) *gitignore.GitIgnore {
	var lines []string
	if opts.RespectGitignore {
		if data, err := os.ReadFile(filepath.Join(opts.Root, ".gitignore")); err == nil {
			lines = append(lines, strings.Split(string(data), "\n")...)
		}
	}
	lines = append(lines, opts.ExtraIgnoreGlobs...)
	if len(lines) == 0 {
		return nil
	}
	return gitignore.CompileIgnoreLines(lines...)
}

func shouldSkipDir(name string) bool {
	for _, skip := range defaultSkipDirs {
		if name == skip {
			return true
		}
	}
	return false
}

func isCandidateFile(path string, enabled map[string]bool) bool {
	if _, ok := langdetect.Detect(path, enabled); !ok {
		return false
	}
	if isGeneratedFile(path) || isTestFixture(path) {
		return false
	}
	return true
}

func isGeneratedFile(path string) bool {
	for _, suffix := range generatedSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	for _, dir := range []string{"/dist/", "/build/", "/out/", "/.next/", "/.nuxt/"} {
		if strings.Contains(path, dir) {
			return true
		}
	}
	return false
}

func isTestFixture(path string) bool {
	for _, dir := range []string{"/__tests__/fixtures/", "/__mocks__/", "/test/fixtures/", "/tests/fixtures/", "/spec/fixtures/"} {
		if strings.Contains(path, dir) {
			return true
		}
	}
	return false
}

// FileStats summarizes a walk by language, for CLI/status reporting.
type FileStats struct {
	Total    int
	ByLang   map[string]int
	Skipped  int
}

// CountFiles walks opts.Root and tallies files by language without parsing
// them, used by `codegraph status`.
func CountFiles(ctx context.Context, opts WalkOptions) (*FileStats, error) {
	stats := &FileStats{ByLang: map[string]int{}}
	files, err := WalkSourceFiles(ctx, opts)
	if err != nil {
		return nil, err
	}
	for path := range files {
		lang, ok := langdetect.Detect(path, opts.Languages)
		if !ok {
			continue
		}
		stats.Total++
		stats.ByLang[lang]++
	}
	return stats, nil
}
