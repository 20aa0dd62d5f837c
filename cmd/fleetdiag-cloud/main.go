// Command fleetdiag-cloud is the cloud-side fleet command dispatcher.
package main

import (
	"fmt"
	"os"

	"go.uber.org/automaxprocs/maxprocs"

	"github.com/zeroclaw-io/fleetdiag/cmd/fleetdiag-cloud/app"
)

func main() {
	if _, err := maxprocs.Set(); err != nil {
		fmt.Fprintln(os.Stderr, "fleetdiag-cloud: maxprocs:", err)
	}

	if err := app.NewApp().Run(); err != nil {
		fmt.Fprintln(os.Stderr, "fleetdiag-cloud:", err)
		os.Exit(1)
	}
}
