// Command cardfill resolves card queries against prioritised image sources
// and composes print projects from card lists.
package main

import (
	"os"

	"github.com/custodia-labs/cardfill/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
