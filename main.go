// =============================================================================
// Shelf Inventory Reconciler - Main Entry Point
// =============================================================================
//
// USAGE:
//   shelf-inventory report     - Reconcile a scan list against the catalog
//   shelf-inventory serve      - Serve the reconciliation HTTP API
//   shelf-inventory normalize  - Print call number sort keys
//   shelf-inventory history    - List past runs
//   shelf-inventory version    - Display the application version
//
// ARCHITECTURE:
//   - cmd/      : CLI command definitions (Cobra)
//   - internal/ : Reconciliation core, ingestion, storage and HTTP adapter
//   - pkg/      : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/shelf-inventory/cmd"
)

func main() {
	cmd.Execute()
}
