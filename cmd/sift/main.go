// Command sift resolves filter specifications against tabular datasets.
package main

import (
	"os"

	"github.com/roach88/sift/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
