// logsync - summary-to-log correlation tool
//
// logsync resolves rows of a summary log to the nearest lines of a raw log
// by approximate timestamp, and searches logs incrementally.
package main

import (
	"os"

	"github.com/ccollicutt/logsync/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
