package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"mica/internal/diag"
	"mica/internal/hir"
	"mica/internal/mir"
	"mica/internal/project"
	"mica/internal/source"
)

// UnitExt is the HIR interchange file extension produced by front ends.
const UnitExt = ".hir.json"

// ListUnitFiles returns every interchange file under dir, sorted so the
// link order (and therefore FuncIDs) is deterministic.
func ListUnitFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, UnitExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// LoadUnits reads and decodes interchange files in parallel. Results
// keep the input order regardless of goroutine scheduling; the first
// failing file aborts the group. The returned FileSet registers the
// inputs in order, so span file ids line up with unit indexes.
func LoadUnits(ctx context.Context, paths []string, jobs int) ([]*hir.Module, []project.Digest, *source.FileSet, error) {
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	units := make([]*hir.Module, len(paths))
	digests := make([]project.Digest, len(paths))
	contents := make([][]byte, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, max(len(paths), 1)))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			content, err := os.ReadFile(path) // #nosec G304 -- path comes from the caller
			if err != nil {
				return fmt.Errorf("loading unit %s: %w", path, err)
			}
			unit, err := hir.FromJSON(content)
			if err != nil {
				return fmt.Errorf("decoding unit %s: %w", path, err)
			}
			// Index i is unique per goroutine, no mutex needed.
			units[i] = unit
			digests[i] = project.HashBytes(content)
			contents[i] = content
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	// FileSet ids are positional; register after the group so the order
	// is the input order, not the completion order.
	files := source.NewFileSet()
	for i, path := range paths {
		files.Add(path, contents[i])
	}
	return units, digests, files, nil
}

// CompileDir loads every interchange unit under dir and runs the back
// half of the pipeline over them. With a cache configured, an unchanged
// input set returns the cached MIR without lowering.
func CompileDir(ctx context.Context, dir string, opts Options) (*Result, error) {
	paths, err := ListUnitFiles(dir)
	if err != nil {
		return nil, err
	}
	return CompileFiles(ctx, paths, opts)
}

// CompileFiles is CompileDir over an explicit file list.
func CompileFiles(ctx context.Context, paths []string, opts Options) (*Result, error) {
	units, digests, files, err := LoadUnits(ctx, paths, opts.Jobs)
	if err != nil {
		return nil, err
	}
	key := project.Combine(digests)

	if opts.Cache != nil {
		if m, ok := cachedModule(opts.Cache, key); ok {
			return &Result{HIR: units, MIR: m, Bag: diag.NewBag(opts.maxDiagnostics()), Files: files}, nil
		}
	}

	res, err := LinkHIR(units, opts)
	res.Files = files
	if err != nil {
		return res, err
	}
	if opts.Cache != nil && res.MIR != nil {
		// Cache failures are not compile failures; the artifact is
		// already in memory.
		_ = storeModule(opts.Cache, key, res.MIR)
	}
	return res, nil
}

func cachedModule(cache *DiskCache, key project.Digest) (*mir.Module, bool) {
	var payload DiskPayload
	ok, err := cache.Get(key, &payload)
	if err != nil || !ok {
		return nil, false
	}
	m, err := mir.FromJSON(payload.MIRJSON)
	if err != nil {
		return nil, false
	}
	return m, true
}

func storeModule(cache *DiskCache, key project.Digest, m *mir.Module) error {
	data, err := mir.ToJSON(m)
	if err != nil {
		return err
	}
	return cache.Put(key, &DiskPayload{
		InputHash: key,
		MIRJSON:   data,
	})
}
