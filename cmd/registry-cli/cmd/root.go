package cmd

import (
	"encoding/json"
	"fmt"
	"geo-registry/internal/loader"
	"geo-registry/internal/logger"
	"geo-registry/internal/registry"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
)

var (
	dataDir string
	asJSON  bool
	verbose bool
	handle  *registry.Handle
)

var rootCmd = &cobra.Command{
	Use:   "registry-cli",
	Short: "Query a place and area registry loaded from a data directory",
	Long: `registry-cli loads places.json, areas.json and *.geojson from a data
directory into an in-memory registry and runs a single query against it.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			logger.Setup()
		} else {
			logger.Discard()
		}
		if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Annotations["skipLoad"] == "true" {
			return nil
		}
		handle = registry.NewHandle(nil)
		_, err := loader.LoadDir(cmd.Context(), dataDir, handle)
		return err
	},
}

// Execute：运行根命令，失败时以非零状态退出
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	def := os.Getenv("REGISTRY_DATA_DIR")
	if def == "" {
		def = filepath.Join("data", "registry")
	}
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data", "d", def, "path to the registry data directory")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "print results as JSON")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "write logs to stderr (LOG_LEVEL applies)")
}

func printIDs[T ~int64](cmd *cobra.Command, ids []T) error {
	if asJSON {
		if ids == nil {
			ids = []T{}
		}
		return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]any{"ids": ids})
	}
	for _, id := range ids {
		fmt.Fprintln(cmd.OutOrStdout(), int64(id))
	}
	return nil
}

func parseID(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return n, nil
}
