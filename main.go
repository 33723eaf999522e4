// Package main is the entry point of the fcst CLI.
package main

import (
	"os"

	"github.com/mccforecast/fcst/cmd"
	"github.com/mccforecast/fcst/internal/contract"
	"github.com/mccforecast/fcst/internal/iocache"
)

func main() {
	cmd.SetStoreManager(iocache.Manager)

	err := cmd.Execute()

	if perr := cmd.StopProfiling(); perr != nil {
		contract.LogWarn("Failed to stop profiling", perr)
	}
	iocache.CloseStores()

	if err != nil {
		contract.LogFatal("Error", err)
	}
	os.Exit(0)
}
