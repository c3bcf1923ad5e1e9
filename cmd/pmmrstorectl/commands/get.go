package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <position>",
	Short: "Read the record at a position",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var position uint64
		if _, err := fmt.Sscanf(args[0], "%d", &position); err != nil {
			return fmt.Errorf("invalid position %q: %w", args[0], err)
		}

		b, err := openBackend()
		if err != nil {
			return err
		}
		defer b.Close()

		rec, ok := b.Get(position)
		if !ok {
			cmd.Println("not found")
			return nil
		}
		cmd.Printf("hash=%s\n", hex.EncodeToString(rec.Hash[:]))
		return nil
	},
}
