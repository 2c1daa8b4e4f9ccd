// Command caldora-share manages calendar shares, publications and
// notifications in a caldora-share SQLite database.
//
// Commands:
//   - principal: add and list directory principals
//   - calendar: create calendars and show a principal's merged listing
//   - share: invite, remove, list and answer shares
//   - publish: turn the public subscription of a calendar on or off
//   - notification: list and acknowledge queued notifications
//   - version: display version information
package main

import (
	"os"
)

// version will be set at build time
var version = "dev"

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
