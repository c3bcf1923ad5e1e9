package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <position> [position...]",
	Short: "Stage one or more positions for removal",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		positions := make([]uint64, len(args))
		for i, a := range args {
			if _, err := fmt.Sscanf(a, "%d", &positions[i]); err != nil {
				return fmt.Errorf("invalid position %q: %w", a, err)
			}
		}

		b, err := openBackend()
		if err != nil {
			return err
		}
		defer b.Close()

		if err := b.Remove(positions); err != nil {
			return err
		}
		cmd.Println("removed", len(positions), "position(s)")
		return nil
	},
}
