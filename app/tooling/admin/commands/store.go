package commands

import (
	"context"
	"fmt"

	"github.com/civicledger/civicledger/business/sys/database"
	"github.com/civicledger/civicledger/foundation/blockchain/storage/sqlite"
	ledger "github.com/civicledger/civicledger/foundation/blockchain/database"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the profiles and blocks schemas",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stores := []struct {
			path   string
			schema database.Schema
		}{
			{profilesPath, database.ProfilesSchema},
			{blocksPath, database.BlocksSchema},
		}

		for _, store := range stores {
			db, err := database.Open(database.Config{Path: store.path})
			if err != nil {
				return err
			}

			err = database.Migrate(db, store.schema)
			if err != nil {
				db.Close()
				return fmt.Errorf("migrating %s: %w", store.path, err)
			}

			version, _, err := database.Version(db, store.schema)
			db.Close()
			if err != nil {
				return err
			}

			log.Infow("migrate", "path", store.path, "version", version)
			fmt.Fprintf(cmd.OutOrStdout(), "%s: schema version %d\n", store.path, version)
		}

		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Walk the blocks table and validate the hash chain",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		db, err := database.Open(database.Config{Path: blocksPath})
		if err != nil {
			return err
		}
		defer db.Close()

		var total int64
		if err := db.GetContext(ctx, &total, `SELECT COUNT(*) FROM blocks`); err != nil {
			return fmt.Errorf("counting blocks: %w", err)
		}

		strg, err := sqlite.New(db)
		if err != nil {
			return err
		}

		bar := progressbar.NewOptions64(
			total,
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionClearOnFinish(),
			progressbar.OptionSetDescription("Verifying blocks..."),
			progressbar.OptionShowCount(),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)

		var last ledger.Block
		n, err := ledger.Verify(ctx, strg, nil, func(block ledger.Block) {
			last = block
			bar.Add(1)
		})
		bar.Finish()

		if err != nil {
			return fmt.Errorf("%d valid blocks through block %d: %w", n, last.Number, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "chain valid: %d blocks\n", n)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd, verifyCmd)
}
