// cmd/pulse/main.go
package main

import (
	"os"

	"package-pulse/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
