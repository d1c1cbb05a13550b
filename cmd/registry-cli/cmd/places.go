package cmd

import (
	"fmt"
	"geo-registry/internal/registry"

	"github.com/spf13/cobra"
)

var (
	nearX, nearY int32
	nearCat      string
)

var orderCmd = &cobra.Command{
	Use:   "order name|coord",
	Short: "List place ids in name or coordinate order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var ids []registry.PlaceID
		switch args[0] {
		case "name":
			handle.Do(func(r *registry.Registry) { ids = r.PlacesByName() })
		case "coord":
			handle.Do(func(r *registry.Registry) { ids = r.PlacesByCoord() })
		default:
			return fmt.Errorf("order must be name or coord, got %q", args[0])
		}
		return printIDs(cmd, ids)
	},
}

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Find place ids by exact name or by category",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		cat, _ := cmd.Flags().GetString("category")
		var ids []registry.PlaceID
		switch {
		case cmd.Flags().Changed("name"):
			handle.Do(func(r *registry.Registry) { ids = r.FindByName(name) })
		case cmd.Flags().Changed("category"):
			c, ok := registry.ParseCategory(cat)
			if !ok {
				return fmt.Errorf("unknown category %q", cat)
			}
			handle.Do(func(r *registry.Registry) { ids = r.FindByCategory(c) })
		default:
			return fmt.Errorf("one of --name or --category is required")
		}
		return printIDs(cmd, ids)
	},
}

var nearestCmd = &cobra.Command{
	Use:   "nearest",
	Short: "List up to three places closest to a point",
	Long: `List up to three places closest to (x, y), optionally restricted to one
category. Ties are broken by smaller y, then by smaller id.

Example:
  registry-cli nearest --x 10 --y 20 --category SHELTER`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, ok := registry.ParseCategory(nearCat)
		if !ok {
			return fmt.Errorf("unknown category %q", nearCat)
		}
		var ids []registry.PlaceID
		handle.Do(func(r *registry.Registry) { ids = r.Nearest(registry.Coord{X: nearX, Y: nearY}, c) })
		return printIDs(cmd, ids)
	},
}

func init() {
	findCmd.Flags().String("name", "", "exact place name")
	findCmd.Flags().String("category", "", "place category, e.g. PEAK")
	nearestCmd.Flags().Int32Var(&nearX, "x", 0, "x coordinate")
	nearestCmd.Flags().Int32Var(&nearY, "y", 0, "y coordinate")
	nearestCmd.Flags().StringVar(&nearCat, "category", "", "restrict to one category (default: all)")
	rootCmd.AddCommand(orderCmd, findCmd, nearestCmd)
}
