package corpus

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// IsRecordName reports whether a directory entry name is a record file under
// the context's exclusion rules: a visible *.json file that is not excluded.
func (c Context) IsRecordName(name string) bool {
	if strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
		return false
	}
	if c.Exclude[name] {
		return false
	}
	for _, g := range c.Patterns {
		if g.Match(name) {
			return false
		}
	}
	return true
}

// List returns the record files directly under the corpus root, sorted by
// name. The corpus is a flat directory; subdirectories are not descended.
func (c Context) List() ([]string, error) {
	entries, err := os.ReadDir(c.Root)
	if err != nil {
		return nil, fmt.Errorf("read corpus root: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !c.IsRecordName(e.Name()) {
			continue
		}
		paths = append(paths, filepath.Join(c.Root, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Each runs fn over every path with at most c.Concurrency calls in flight and
// returns the results in path order. fn reports per-record failures inside its
// result; only cancellation of ctx ends the run early.
func Each[T any](ctx context.Context, c Context, paths []string, fn func(context.Context, string) T) ([]T, error) {
	limit := c.Concurrency
	if limit <= 0 {
		limit = 1
	}

	results := make([]T, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = fn(gctx, path)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}
