// This program performs administrative tasks for the civic ledger node.
package main

import (
	"fmt"
	"os"

	"github.com/civicledger/civicledger/app/tooling/admin/commands"
	"github.com/civicledger/civicledger/foundation/logger"
)

// build is the git version of this program. It is set using build flags in the makefile.
var build = "develop"

func main() {

	// Construct the application logger. Command output goes to stdout so
	// the logs are kept on stderr.
	log, err := logger.New("ADMIN", "stderr")
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := commands.Execute(log, build); err != nil {
		log.Sync()
		os.Exit(1)
	}
}
