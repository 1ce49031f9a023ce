// goslin - lipid name normalization tool
package main

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/goslin/cmd/goslin/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
