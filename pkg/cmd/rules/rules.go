package rules

import (
	"github.com/spf13/cobra"

	"github.com/tilerace/race-engine/pkg/config"
	"github.com/tilerace/race-engine/pkg/rules"
)

func NewRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "prints the effective event rules as YAML",
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := rules.LoadFile(config.RulesFile)
			if err != nil {
				return err
			}
			data, err := table.Marshal()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	return cmd
}
