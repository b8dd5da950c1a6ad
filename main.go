package main

import (
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"
	_ "go.uber.org/automaxprocs"

	server "github.com/goto/pulse/server/cmd"
	"github.com/goto/pulse/server/cmd/migration"
)

const defaultExitCode = 1

//nolint:forbidigo
func main() {
	rand.Seed(time.Now().UTC().UnixNano())

	command := &cobra.Command{
		Use:          "pulse <command>",
		Short:        "Workflow health monitoring scheduler",
		SilenceUsage: true,
	}
	command.AddCommand(
		server.NewServeCommand(),
		migration.NewMigrationCommand(),
	)

	if err := command.Execute(); err != nil {
		fmt.Println("🔥 unable to complete request successfully")
		os.Exit(defaultExitCode)
	}
}
