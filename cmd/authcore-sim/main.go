// Command authcore-sim is a demo/smoke-test binary: it wires a single
// station's authorization service from a config file and a seeded local
// list, then issues sample authorize requests against it from the command
// line.
package main

import (
	"fmt"
	"os"

	"github.com/ocppauth/core/cmd/authcore-sim/app"
)

func main() {
	if err := app.NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "authcore-sim: %v\n", err)
		os.Exit(1)
	}
}
