package commands

import "github.com/spf13/cobra"

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Flush the write buffer and fsync the data file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		b, err := openBackend()
		if err != nil {
			return err
		}
		defer b.Close()

		if err := b.Sync(); err != nil {
			return err
		}
		cmd.Println("synced")
		return nil
	},
}
