package ingestion

import (
	"context"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/graphkernel/codegraph/internal/langdetect"
	"github.com/graphkernel/codegraph/internal/logging"
	"github.com/graphkernel/codegraph/internal/models"
	"github.com/graphkernel/codegraph/internal/treesitter"
)

// ProcessorConfig controls the walker/parser pipeline's parallelism.
type ProcessorConfig struct {
	Workers int // 0 means runtime.NumCPU()
}

// DefaultProcessorConfig defaults to one worker per CPU, which in turn
// bounds the number of concurrent tree-sitter parsers.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{Workers: runtime.NumCPU()}
}

// ParseRepository walks opts.Root and parses every discovered file,
// bounding parallelism with errgroup.SetLimit. A per-file parse or read
// error is recorded on that file's models.ParseResult.Error rather than
// aborting the walk; only a canceled context stops everything early.
func ParseRepository(ctx context.Context, opts WalkOptions, cfg ProcessorConfig) ([]models.ParseResult, error) {
	if cfg.Workers <= 0 {
		cfg = DefaultProcessorConfig()
	}

	files, err := WalkSourceFiles(ctx, opts)
	if err != nil {
		return nil, err
	}

	resultsCh := make(chan models.ParseResult, cfg.Workers*2)
	var results []models.ParseResult

	collectDone := make(chan struct{})
	go func() {
		defer close(collectDone)
		for r := range resultsCh {
			results = append(results, r)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)

	for path := range files {
		path := path
		select {
		case <-gctx.Done():
		default:
			g.Go(func() error {
				select {
				case <-gctx.Done():
					return gctx.Err()
				default:
				}
				resultsCh <- parseOneFile(path, opts.Languages)
				return nil
			})
		}
	}

	groupErr := g.Wait()
	close(resultsCh)
	<-collectDone

	return results, groupErr
}

func parseOneFile(path string, enabled map[string]bool) models.ParseResult {
	lang, ok := langdetect.Detect(path, enabled)
	if !ok {
		return models.ParseResult{Path: path, Error: models.UnsupportedLanguage(path)}
	}

	code, err := os.ReadFile(path)
	if err != nil {
		logging.Warn("failed to read file", "path", path, "error", err)
		return models.ParseResult{Path: path, Language: lang, Error: models.IoError(path, err.Error())}
	}

	result := treesitter.ParseFile(path, code, lang)
	if result.Error != nil {
		logging.Warn("failed to parse file", "path", path, "error", result.Error)
		result.Error = models.ParseError(path, result.Error.Error())
	}
	return result
}
