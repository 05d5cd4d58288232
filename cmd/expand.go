package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gnolang/macrokit/expand"
	"github.com/gnolang/macrokit/formatter"
	"github.com/gnolang/macrokit/internal"
	tt "github.com/gnolang/macrokit/internal/types"
)

// stdinName is the filename reported for source read from stdin.
const stdinName = "<stdin>"

type expandFlags struct {
	write       bool
	diff        bool
	json        bool
	output      string
	ignore      string
	ignorePaths string
	watch       bool
	workers     int
}

var expandOpts expandFlags

var expandCmd = &cobra.Command{
	Use:   "expand [paths...]",
	Short: "Expand the macros of files or directories",
	Long: `Expands every macro invocation found in the given files or directories.
Use "-" to read a single source from stdin and print its expansion.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("please provide file or directory paths")
		}

		engine, config, err := expand.New(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to initialize engine: %w", err)
		}
		for _, name := range splitList(expandOpts.ignore) {
			engine.IgnoreMacro(name)
		}

		opts := config.Options()
		opts.IgnorePaths = append(opts.IgnorePaths, splitList(expandOpts.ignorePaths)...)
		opts.Workers = expandOpts.workers
		if verbose {
			opts.Progress = cmd.ErrOrStderr()
		}

		if expandOpts.watch {
			return runWatch(cmd.OutOrStdout(), engine, opts, args)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		var results []*internal.Result
		if len(args) == 1 && args[0] == "-" {
			source, err := io.ReadAll(cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("error reading stdin: %w", err)
			}
			res, err := expand.ProcessSource(engine, stdinName, source)
			if err != nil {
				return err
			}
			results = append(results, res)
		} else {
			results, err = expand.ProcessFiles(ctx, logger, engine, opts, args, expand.ProcessFile)
			if err != nil {
				return err
			}
		}
		return report(cmd.OutOrStdout(), logger, results, expandOpts)
	},
}

func init() {
	expandCmd.Flags().BoolVarP(&expandOpts.write, "write", "w", false, "Write the expanded source back to the files")
	expandCmd.Flags().BoolVar(&expandOpts.diff, "diff", false, "Print a unified diff of every expanded file")
	expandCmd.Flags().BoolVar(&expandOpts.json, "json", false, "Output results in JSON format")
	expandCmd.Flags().StringVarP(&expandOpts.output, "output", "o", "", "Output path (when using JSON)")
	expandCmd.Flags().StringVar(&expandOpts.ignore, "ignore", "", "Comma-separated list of macros to leave unexpanded")
	expandCmd.Flags().StringVar(&expandOpts.ignorePaths, "ignore-paths", "", "Comma-separated list of path globs to ignore")
	expandCmd.Flags().BoolVar(&expandOpts.watch, "watch", false, "Keep running and expand files as they change")
	expandCmd.Flags().IntVar(&expandOpts.workers, "workers", 0, "Number of files expanded concurrently (default one per CPU)")
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// fileReport is the JSON form of one expanded file.
type fileReport struct {
	Filename string     `json:"filename"`
	Changed  bool       `json:"changed"`
	Expanded int        `json:"expanded"`
	Issues   []tt.Issue `json:"issues"`
	Output   string     `json:"output,omitempty"`
}

// report prints results according to flags and returns ErrIssuesFound
// when an error-level issue was reported.
func report(w io.Writer, logger *zap.Logger, results []*internal.Result, flags expandFlags) error {
	failed := false
	for _, res := range results {
		for _, issue := range res.Issues {
			if issue.Severity == tt.SeverityError {
				failed = true
			}
		}
	}

	if flags.json {
		if err := printJSON(w, results, flags); err != nil {
			return err
		}
	} else if err := printText(w, logger, results, flags); err != nil {
		return err
	}

	if flags.write {
		for _, res := range results {
			if res.Filename == stdinName {
				continue
			}
			if err := expand.Write(res); err != nil {
				return err
			}
			if res.Changed() {
				logger.Info("File expanded", zap.String("file", res.Filename), zap.Int("expansions", res.Expanded))
			}
		}
	}

	if failed {
		return ErrIssuesFound
	}
	return nil
}

func printText(w io.Writer, logger *zap.Logger, results []*internal.Result, flags expandFlags) error {
	changed := 0
	for _, res := range results {
		if len(res.Issues) > 0 {
			fmt.Fprint(w, formatter.GenerateFormattedIssue(res.Issues, res.Source))
		}
		if res.Filename == stdinName {
			fmt.Fprint(w, res.Output)
			continue
		}
		if !res.Changed() {
			continue
		}
		changed++
		if flags.diff {
			diff, err := formatter.Diff(res)
			if err != nil {
				return fmt.Errorf("error rendering diff: %w", err)
			}
			fmt.Fprint(w, diff)
		}
	}
	if changed > 0 && !flags.write && !flags.diff {
		logger.Info("Files with expansions (use --write to apply or --diff to review)", zap.Int("files", changed))
	}
	return nil
}

func printJSON(w io.Writer, results []*internal.Result, flags expandFlags) error {
	reports := make([]fileReport, 0, len(results))
	for _, res := range results {
		r := fileReport{
			Filename: res.Filename,
			Changed:  res.Changed(),
			Expanded: res.Expanded,
			Issues:   res.Issues,
		}
		if r.Issues == nil {
			r.Issues = []tt.Issue{}
		}
		if res.Filename == stdinName {
			r.Output = res.Output
		}
		reports = append(reports, r)
	}

	d, err := json.MarshalIndent(reports, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshalling results to JSON: %w", err)
	}
	if flags.output == "" {
		_, err = fmt.Fprintln(w, string(d))
		return err
	}
	if err := os.WriteFile(flags.output, d, 0o644); err != nil {
		return fmt.Errorf("error writing JSON output file: %w", err)
	}
	return nil
}

// runWatch expands the files below paths whenever they change and writes
// the result back, until interrupted.
func runWatch(w io.Writer, engine *internal.Engine, opts expand.Options, paths []string) error {
	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = []string{".swift"}
	}

	watcher, err := internal.NewWatcher(engine, logger, extensions, func(res *internal.Result, err error) {
		if err != nil {
			logger.Error("Error expanding file", zap.Error(err))
			return
		}
		if len(res.Issues) > 0 {
			fmt.Fprint(w, formatter.GenerateFormattedIssue(res.Issues, res.Source))
		}
		if err := expand.Write(res); err != nil {
			logger.Error("Error writing file", zap.String("file", res.Filename), zap.Error(err))
			return
		}
		if res.Changed() {
			logger.Info("File expanded", zap.String("file", res.Filename), zap.Int("expansions", res.Expanded))
		}
	})
	if err != nil {
		return err
	}

	dirs := make([]string, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("error accessing %s: %w", path, err)
		}
		if !info.IsDir() {
			path = filepath.Dir(path)
		}
		dirs = append(dirs, path)
	}
	if err := watcher.Add(dirs...); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	logger.Info("Watching for changes", zap.Strings("paths", dirs))
	return watcher.Watch(ctx)
}
