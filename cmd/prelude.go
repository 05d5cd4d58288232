package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/gnolang/macrokit/prelude"
)

var preludeDir string

var preludeCmd = &cobra.Command{
	Use:   "prelude",
	Short: "Print the Swift declarations expanded code depends on",
	Long: `Prints the declarations that expanded code refers to, such as UnwrapError.
With --dir the files are written to that directory instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := prelude.List()
		if err != nil {
			return err
		}
		for _, name := range names {
			src, err := prelude.Source(name)
			if err != nil {
				return err
			}
			if preludeDir == "" {
				fmt.Fprint(cmd.OutOrStdout(), string(src))
				continue
			}
			path := filepath.Join(preludeDir, name)
			if err := os.WriteFile(path, src, 0o644); err != nil {
				return fmt.Errorf("error writing prelude: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Prelude written: %s\n", path)
		}
		return nil
	},
}

func init() {
	preludeCmd.Flags().StringVar(&preludeDir, "dir", "", "Directory to write the prelude files to")
}
