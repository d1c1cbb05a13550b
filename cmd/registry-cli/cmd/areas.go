package cmd

import (
	"fmt"
	"geo-registry/internal/registry"
	"strings"

	"github.com/spf13/cobra"
)

var ancestorsCmd = &cobra.Command{
	Use:   "ancestors <area-id>",
	Short: "List the ancestor chain of an area, nearest parent first",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		var (
			ids []registry.AreaID
			ok  bool
		)
		handle.Do(func(r *registry.Registry) { ids, ok = r.AncestorChain(registry.AreaID(id)) })
		if !ok {
			return fmt.Errorf("area %d not found", id)
		}
		return printIDs(cmd, ids)
	},
}

var descendantsCmd = &cobra.Command{
	Use:   "descendants <area-id>",
	Short: "List all subareas of an area in post-order",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		var (
			ids []registry.AreaID
			ok  bool
		)
		handle.Do(func(r *registry.Registry) { ids, ok = r.AllDescendants(registry.AreaID(id)) })
		if !ok {
			return fmt.Errorf("area %d not found", id)
		}
		return printIDs(cmd, ids)
	},
}

var commonCmd = &cobra.Command{
	Use:   "common <area-a> <area-b>",
	Short: "Print the lowest common ancestor of two areas",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := parseID(args[0])
		if err != nil {
			return err
		}
		b, err := parseID(args[1])
		if err != nil {
			return err
		}
		var (
			id registry.AreaID
			ok bool
		)
		handle.Do(func(r *registry.Registry) { id, ok = r.LowestCommonAncestor(registry.AreaID(a), registry.AreaID(b)) })
		if !ok {
			return fmt.Errorf("no common ancestor for %d and %d", a, b)
		}
		return printIDs(cmd, []registry.AreaID{id})
	},
}

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Display the area hierarchy",
	RunE: func(cmd *cobra.Command, args []string) error {
		handle.Do(func(r *registry.Registry) {
			for _, id := range r.AllAreas() {
				if p, _ := r.Parent(id); p == registry.NoArea {
					printTree(cmd, r, id, 0)
				}
			}
		})
		return nil
	},
}

func printTree(cmd *cobra.Command, r *registry.Registry, id registry.AreaID, depth int) {
	name, _ := r.AreaName(id)
	fmt.Fprintf(cmd.OutOrStdout(), "%s%d %s\n", strings.Repeat("  ", depth), id, name)
	kids, _ := r.Children(id)
	for _, k := range kids {
		printTree(cmd, r, k, depth+1)
	}
}

func init() {
	rootCmd.AddCommand(ancestorsCmd, descendantsCmd, commonCmd, treeCmd)
}
