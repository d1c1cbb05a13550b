package cmd

import (
	"fmt"
	"geo-registry/internal/loader"
	"geo-registry/internal/migrate"
	"geo-registry/internal/registry"
	"geo-registry/internal/utils"

	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed-pg",
	Short: "Write the data directory into the PostgreSQL source tables",
	Long: `Parse the data directory and upsert its places, areas and links into
reg_places, reg_areas and reg_area_links, creating the tables if needed.
Connection settings come from PG_HOST, PG_PORT, PG_USER, PG_PASSWORD and PG_DB.`,
	Annotations: map[string]string{"skipLoad": "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		b, err := loader.ReadDir(ctx, dataDir)
		if err != nil {
			return err
		}
		db, err := utils.OpenPostgresFromEnv()
		if err != nil {
			return err
		}
		defer db.Close()
		if err := migrate.EnsureSchema(ctx, db); err != nil {
			return err
		}
		sum, err := loader.SeedPostgres(ctx, db, b)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "places=%d areas=%d links=%d skipped=%d\n", sum.Places, sum.Areas, sum.Links, sum.Skipped)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print place and area counts after loading",
	RunE: func(cmd *cobra.Command, args []string) error {
		places, areas := 0, 0
		handle.Do(func(r *registry.Registry) { places, areas = r.Count(), r.AreaCount() })
		fmt.Fprintf(cmd.OutOrStdout(), "places=%d areas=%d\n", places, areas)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(seedCmd, statsCmd)
}
