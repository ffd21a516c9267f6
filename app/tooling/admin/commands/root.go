// Package commands contains the admin commands for working with a node.
package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	nodeURL      string
	profilesPath string
	blocksPath   string
)

// log is set by Execute. It defaults to a no-op logger for tests.
var log = zap.NewNop().Sugar()

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:           "admin",
	Short:         "Administer a civic ledger node",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute(l *zap.SugaredLogger, build string) error {
	log = l
	RootCmd.Version = build

	if err := RootCmd.Execute(); err != nil {
		log.Errorw("admin", "ERROR", err)
		return err
	}

	return nil
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&nodeURL, "url", "u", "http://localhost:8080", "Base url of the node public API.")
	RootCmd.PersistentFlags().StringVar(&profilesPath, "profiles-db", "zblock/profiles.db", "Path to the profiles database.")
	RootCmd.PersistentFlags().StringVar(&blocksPath, "blocks-db", "zblock/blocks.db", "Path to the blocks database.")
}

// printJSON writes the value as indented JSON.
func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, string(data))
	return err
}
