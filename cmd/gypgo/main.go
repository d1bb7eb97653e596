// Command gypgo drives the configure/build pipeline for native addons.
package main

import (
	"os"

	"github.com/gypgo/gypgo/pkg/cli"
)

// version is overridden at link time via -ldflags.
var version = "dev"

func main() {
	if err := cli.Execute(version); err != nil {
		os.Exit(1)
	}
}
