// Package ingestion bulk-imports trades from semicolon separated files.
// Every row goes through the lifecycle service, so imported trades obey
// the same validation and notifications as trades opened over HTTP.
package ingestion

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/guttosm/tradeflow/internal/domain/models"
	"github.com/guttosm/tradeflow/internal/lifecycle"
	"github.com/guttosm/tradeflow/internal/logger"
)

const (
	fileSuffix  = ".csv"
	maxParallel = 8
)

var log = logger.For("ingestion")

// TradeCreator opens trades. *lifecycle.Service implements it.
type TradeCreator interface {
	CreateTrade(ctx context.Context, caller models.Caller, p lifecycle.CreateParams) (*models.Trade, error)
}

// Summary aggregates the results of an import run.
type Summary struct {
	Files    int
	Imported int
	Rejected int
}

// ImportDirectory imports every *.csv file in dir.
//
// Parameters:
//   - dir: directory containing the import files.
//   - creator: lifecycle service used to open each trade.
//   - caller: identity the trades are opened as (normally an admin).
//   - parallel: files processed concurrently; 0 picks min(NumCPU, 8).
//
// Behavior:
//   - Files are processed in name order, up to `parallel` at a time.
//   - If any file fails, the remaining ones are cancelled and the first
//     error is returned together with the partial summary.
func ImportDirectory(ctx context.Context, dir string, creator TradeCreator, caller models.Caller, parallel int) (Summary, error) {
	var sum Summary

	entries, err := os.ReadDir(dir)
	if err != nil {
		return sum, fmt.Errorf("read dir %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), fileSuffix) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	if len(files) == 0 {
		return sum, fmt.Errorf("no %s files in %s", fileSuffix, dir)
	}

	limit := parallel
	if limit <= 0 {
		limit = runtime.NumCPU()
	}
	if limit > maxParallel {
		limit = maxParallel
	}

	log.Info().Int("files", len(files)).Str("dir", dir).Int("max_parallel", limit).Msg("import start")

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			start := time.Now()
			base := filepath.Base(file)
			log.Info().Int("idx", i+1).Int("total", len(files)).Str("file", base).Msg("file start")

			res, err := importFile(gctx, file, creator, caller)

			mu.Lock()
			sum.Files++
			sum.Imported += res.Imported
			sum.Rejected += res.Rejected
			mu.Unlock()

			if err != nil {
				log.Error().Str("file", base).Dur("elapsed", time.Since(start)).Err(err).Msg("file failed")
				return fmt.Errorf("file %s: %w", file, err)
			}
			log.Info().Str("file", base).Int("imported", res.Imported).Int("rejected", res.Rejected).Dur("elapsed", time.Since(start)).Msg("file done")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return sum, err
	}
	log.Info().Int("files", sum.Files).Int("imported", sum.Imported).Int("rejected", sum.Rejected).Msg("import completed")
	return sum, nil
}
