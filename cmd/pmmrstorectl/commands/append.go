package commands

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sumtree/pmmrstore/record"
)

var appendSumHex string

var appendCmd = &cobra.Command{
	Use:   "append <position> <hash-hex>",
	Short: "Append a single node record at the given position",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var position uint64
		if _, err := fmt.Sscanf(args[0], "%d", &position); err != nil {
			return fmt.Errorf("invalid position %q: %w", args[0], err)
		}

		hashBytes, err := hex.DecodeString(args[1])
		if err != nil {
			return fmt.Errorf("invalid hash hex: %w", err)
		}
		if len(hashBytes) != record.HashLen {
			return fmt.Errorf("hash must be %d bytes, got %d", record.HashLen, len(hashBytes))
		}

		b, err := openBackend()
		if err != nil {
			return err
		}
		defer b.Close()

		sum := record.NewFixedWidthSum(b.RecordLen() - record.HashLen)
		if appendSumHex != "" {
			sumBytes, err := hex.DecodeString(appendSumHex)
			if err != nil {
				return fmt.Errorf("invalid sum hex: %w", err)
			}
			if err := sum.(*record.FixedWidthSum).SetBytes(sumBytes); err != nil {
				return err
			}
		}

		rec := record.Record{Sum: sum}
		copy(rec.Hash[:], hashBytes)

		if err := b.Append(position, []record.Record{rec}); err != nil {
			return err
		}
		cmd.Println("appended position", position)
		return nil
	},
}

func init() {
	appendCmd.Flags().StringVar(&appendSumHex, "sum", "", "hex-encoded sum bytes (defaults to all zero)")
}
