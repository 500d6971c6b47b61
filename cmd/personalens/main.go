// main is the entry point of the personalens CLI.
package main

import (
	"os"

	"github.com/personalens/personalens/cmd"
	"github.com/personalens/personalens/internal/contract"
	"github.com/personalens/personalens/internal/iocache"
)

func main() {
	cmd.SetStoreManager(iocache.Manager)

	err := cmd.Execute()
	iocache.CloseStores()
	if stopErr := cmd.StopProfiling(); stopErr != nil {
		contract.LogWarn("Failed to stop profiling", stopErr)
	}
	if err != nil {
		contract.LogWarn("Command failed", err)
		os.Exit(1)
	}
}
