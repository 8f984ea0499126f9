// =============================================================================
// Gridcheck - Main Entry Point
// =============================================================================
//
// USAGE:
//   gridcheck extract   - Build a template from a template workbook
//   gridcheck validate  - Validate uploads against a template
//   gridcheck fix       - Auto-fix an upload and export it
//   gridcheck export    - Export filtered rows as xlsx or txt
//   gridcheck version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : Template extraction, mapping, auto-fix, validation, export
//   - pkg/       : File discovery and report writers
//   - templates/ : Stored templates (.json, .yaml, .hjson)
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/gridcheck/cmd"
)

func main() {
	cmd.Execute()
}
