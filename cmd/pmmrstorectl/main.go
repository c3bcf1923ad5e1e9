package main

import (
	"fmt"
	"os"

	"github.com/sumtree/pmmrstore/cmd/pmmrstorectl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
