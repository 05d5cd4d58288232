package cmd

import (
	"io"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/gnolang/macrokit/expand"
	"github.com/gnolang/macrokit/internal/macros"
	tt "github.com/gnolang/macrokit/internal/types"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the available macros",
	RunE: func(cmd *cobra.Command, args []string) error {
		config, err := expand.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		listMacros(cmd.OutOrStdout(), macros.Builtin(config.Hierarchy), config.Macros)
		return nil
	},
}

func listMacros(w io.Writer, registry *macros.Registry, configured map[string]tt.ConfigMacro) {
	var data [][]string
	for _, entry := range registry.Entries() {
		severity := tt.SeverityError
		if m, ok := configured[entry.Name]; ok {
			severity = m.Severity
		}
		data = append(data, []string{entry.Name, entry.Role.String(), entry.Usage, severity.String()})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"NAME", "ROLE", "USAGE", "SEVERITY"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
}
