// Command fleetdiag-agent is the fleet diagnostic edge agent binary.
package main

import (
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/zeroclaw-io/fleetdiag/cmd/fleetdiag-agent/app"
)

func main() {
	if _, err := maxprocs.Set(); err != nil {
		fmt.Fprintln(os.Stderr, "fleetdiag-agent: maxprocs:", err)
	}

	if err := app.NewApp().Run(); err != nil {
		fmt.Fprintln(os.Stderr, "fleetdiag-agent:", err)
		os.Exit(1)
	}
}
