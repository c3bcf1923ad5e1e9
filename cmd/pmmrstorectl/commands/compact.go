package commands

import (
	"github.com/spf13/cobra"

	"github.com/sumtree/pmmrstore/record"
	"github.com/sumtree/pmmrstore/store"
)

var compactMaxLen int

var compactCmd = &cobra.Command{
	Use:   "compact",
	Short: "Compact the data file if the removal log exceeds the threshold",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		width := cfg.SumWidth
		b, err := store.Open(cfg.DataDir, func() record.Sum { return record.NewFixedWidthSum(width) })
		if err != nil {
			return err
		}
		defer b.Close()

		maxLen := compactMaxLen
		if maxLen == 0 {
			maxLen = cfg.RemoveLogMaxNodes
		}
		if err := b.CheckCompact(maxLen); err != nil {
			return err
		}
		cmd.Println("compaction check complete")
		return nil
	},
}

func init() {
	compactCmd.Flags().IntVar(&compactMaxLen, "max-len", 0, "removal-log threshold (0 = use config/package default)")
}
