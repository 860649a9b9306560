package main

import (
	"fmt"
	"os"

	"github.com/tinovyatkin/pinscan/cmd/pinscan/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
