package expand

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gnolang/macrokit/internal"
	"github.com/gnolang/macrokit/scanner"
)

type Expander interface {
	Run(filePath string) (*internal.Result, error)
	RunSource(filename string, source []byte) (*internal.Result, error)
	IgnoreMacro(name string)
}

// Options selects the files a directory run visits.
type Options struct {
	Extensions  []string
	IgnorePaths []string
	// Progress receives the progress bar of directory runs; nil hides it.
	Progress io.Writer
	// Workers bounds concurrent files; zero means one per CPU.
	Workers int
}

// New loads the configuration and builds an engine from it.
func New(configurationPath string) (*internal.Engine, Config, error) {
	config, err := LoadConfig(configurationPath)
	if err != nil {
		return nil, Config{}, err
	}
	engine, err := internal.NewEngine(config.EngineOptions())
	if err != nil {
		return nil, Config{}, err
	}
	return engine, config, nil
}

type Processor func(Expander, string) (*internal.Result, error)

func ProcessFile(engine Expander, filePath string) (*internal.Result, error) {
	return engine.Run(filePath)
}

func ProcessSource(engine Expander, filename string, source []byte) (*internal.Result, error) {
	return engine.RunSource(filename, source)
}

func ProcessFiles(
	ctx context.Context,
	logger *zap.Logger,
	engine Expander,
	opts Options,
	paths []string,
	processor Processor,
) ([]*internal.Result, error) {
	var results []*internal.Result
	for _, path := range paths {
		res, err := ProcessPath(ctx, logger, engine, opts, path, processor)
		results = append(results, res...)
		if err != nil {
			if logger != nil {
				logger.Error("Error processing path", zap.String("path", path), zap.Error(err))
			}
			return results, err
		}
	}

	return results, nil
}

// ProcessPath expands a single file, or every matching file below a
// directory on a bounded worker pool. Results keep the scan order. A
// file that fails does not stop the others; the failures are returned
// together once all files are done.
func ProcessPath(
	ctx context.Context,
	logger *zap.Logger,
	engine Expander,
	opts Options,
	path string,
	processor Processor,
) ([]*internal.Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("error accessing %s: %w", path, err)
	}

	s := scanner.New(path, opts.extensions()...)
	if err := s.Ignore(opts.IgnorePaths...); err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if !hasDesiredExtension(path, opts.extensions()) || s.IsIgnored(path) {
			return []*internal.Result{}, nil
		}
		res, err := processor(engine, path)
		if err != nil {
			return []*internal.Result{}, err
		}
		return []*internal.Result{res}, nil
	}

	files, err := s.Scan()
	if err != nil {
		return nil, fmt.Errorf("error scanning %s: %w", path, err)
	}

	progress := opts.Progress
	if progress == nil {
		progress = io.Discard
	}
	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription(path),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var (
		g       errgroup.Group
		mu      sync.Mutex
		errs    []error
		results = make([]*internal.Result, len(files))
	)
	g.SetLimit(workers)

	for i, file := range files {
		i, file := i, file
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			defer bar.Add(1)

			res, err := processor(engine, file.Path)
			if err != nil {
				if logger != nil {
					logger.Error("Error processing file", zap.String("file", file.Path), zap.Error(err))
				}
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", file.Path, err))
				mu.Unlock()
				return nil
			}
			results[i] = res
			return nil
		})
	}
	waitErr := g.Wait()
	if progress != io.Discard {
		fmt.Fprintln(progress)
	}

	collected := make([]*internal.Result, 0, len(files))
	for _, res := range results {
		if res != nil {
			collected = append(collected, res)
		}
	}

	if err := ctx.Err(); err != nil {
		return collected, err
	}
	if waitErr != nil {
		return collected, waitErr
	}
	return collected, errors.Join(errs...)
}

func (o Options) extensions() []string {
	if len(o.Extensions) == 0 {
		return []string{".swift"}
	}
	return o.Extensions
}

func hasDesiredExtension(path string, extensions []string) bool {
	ext := filepath.Ext(path)
	for _, e := range extensions {
		if e == ext {
			return true
		}
	}
	return false
}

// Write stores the expanded output of res over its source file,
// keeping the file mode. Unchanged files are not touched.
func Write(res *internal.Result) error {
	if !res.Changed() {
		return nil
	}
	return WriteTo(res, res.Filename)
}

// WriteTo stores the expanded output of res at path.
func WriteTo(res *internal.Result, path string) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.WriteFile(path, []byte(res.Output), mode); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
