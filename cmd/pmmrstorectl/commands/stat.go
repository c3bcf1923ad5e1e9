package commands

import "github.com/spf13/cobra"

var statCmd = &cobra.Command{
	Use:   "stat",
	Short: "Print buffer/removal-log/prune-list/data-file sizes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackend()
		if err != nil {
			return err
		}
		defer b.Close()

		stats, err := b.Stats()
		if err != nil {
			return err
		}
		cmd.Printf("buffer_len=%d\n", stats.BufferLen)
		cmd.Printf("remove_log_len=%d\n", stats.RemoveLogLen)
		cmd.Printf("prune_list_len=%d\n", stats.PruneListLen)
		cmd.Printf("data_file_bytes=%d\n", stats.DataFileSize)
		return nil
	},
}
