// Command docrag builds vector indexes from PDF documents and serves
// attributed retrieval context.
package main

import (
	"os"

	"github.com/custodia-labs/docrag/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
