package iocache

import (
	"fmt"
	"maps"
	"slices"

	"github.com/personalens/personalens/schema"
)

const statusTimeLayout = "2006-01-02 15:04:05"

// PrintVaultStatus prints report vault status information.
func PrintVaultStatus(status schema.VaultStatus) {
	fmt.Printf("Vault Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	fmt.Printf("Saved Sections: %d\n", status.TotalSections)
	if status.TotalSections > 0 {
		fmt.Printf("Last Saved: %s\n", status.LastSavedTime.Format(statusTimeLayout))
		fmt.Printf("Oldest Saved: %s\n", status.OldestSavedTime.Format(statusTimeLayout))
	}
	if status.Connected {
		fmt.Printf("Table Size: %d bytes\n", status.TableSizeBytes)
	}
}

// PrintVaultSections prints which sections hold a snapshot.
func PrintVaultSections(entries map[schema.Section]schema.VaultEntry) {
	if len(entries) == 0 {
		fmt.Println("Vault is empty.")
		return
	}
	fmt.Printf("Sections: %s\n", sectionNames(entries))
}

// PrintRunStatus prints run store status information.
func PrintRunStatus(status schema.RunStatus) {
	fmt.Printf("Runs Backend: %s\n", status.Backend)
	fmt.Printf("Connected: %t\n", status.Connected)
	if !status.Connected {
		return
	}
	fmt.Printf("Total Runs: %d\n", status.TotalRuns)
	if status.TotalRuns > 0 {
		fmt.Printf("Last Run ID: %d\n", status.LastRunID)
		fmt.Printf("Last Run: %s\n", status.LastRunTime.Format(statusTimeLayout))
		fmt.Printf("Oldest Run: %s\n", status.OldestRunTime.Format(statusTimeLayout))
		fmt.Printf("Total Segments Scored: %d\n", status.TotalSegments)
	}
	fmt.Println("Table Sizes:")
	for _, table := range slices.Sorted(maps.Keys(status.TableSizes)) {
		fmt.Printf("  %s: %d rows\n", table, status.TableSizes[table])
	}
}
