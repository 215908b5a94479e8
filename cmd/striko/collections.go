package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/holps-7/striko/pkg/core"
	"github.com/holps-7/striko/pkg/model"
	"github.com/holps-7/striko/pkg/storage"
)

var addCollection string

var collectionsCmd = &cobra.Command{
	Use:     "collections",
	Aliases: []string{"col"},
	Short:   "Manage saved collections",
}

var collectionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved collections",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		cols, err := a.session.Collections(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(cols) == 0 {
			fmt.Fprintln(out, "No collections yet. Create one with `striko collections new NAME`.")
			return nil
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tREQUESTS")
		for _, c := range cols {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", c.ID, c.Name, len(c.Flatten()))
		}
		return tw.Flush()
	},
}

var collectionsShowCmd = &cobra.Command{
	Use:   "show <collection>",
	Short: "Print a collection as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		c, err := findCollection(cmd.Context(), a, args[0])
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), c)
	},
}

var collectionsNewCmd = &cobra.Command{
	Use:   "new <name>",
	Short: "Create an empty collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		c, err := a.session.SaveCollection(cmd.Context(), model.Collection{Name: args[0]})
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created collection %q (%s)\n", c.Name, c.ID)
		return nil
	},
}

var collectionsAddCmd = &cobra.Command{
	Use:   "add <request-file>",
	Short: "Save a request file into a collection",
	Long: `Save a JSON or YAML request definition into a collection. Without
--collection you pick one interactively. A request with an id already in the
collection replaces it and the change is printed as a diff.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cmd.Context()

		req, err := storage.LoadRequestFile(args[0])
		if err != nil {
			return err
		}

		var target core.SaveTarget
		if addCollection != "" {
			c, err := findCollection(ctx, a, addCollection)
			if err != nil {
				return err
			}
			target.CollectionID = c.ID
		} else {
			target.CollectionID, target.NewName, err = pickCollection(ctx, a)
			if err != nil {
				return err
			}
		}

		a.session.LoadRequest(req)
		result, err := a.session.SaveToCollection(ctx, target)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch {
		case result.Created:
			fmt.Fprintf(out, "Created collection %q with %s\n", result.Collection.Name, req.DisplayName())
		case result.Replaced != nil:
			fmt.Fprintf(out, "Updated %s in %q\n", req.DisplayName(), result.Collection.Name)
			if result.Diff != "" {
				printMarkdown(out, "```diff\n"+result.Diff+"```\n")
			}
		default:
			fmt.Fprintf(out, "Added %s to %q\n", req.DisplayName(), result.Collection.Name)
		}
		return nil
	},
}

func init() {
	collectionsAddCmd.Flags().StringVarP(&addCollection, "collection", "c", "", "collection id or name")
	collectionsCmd.AddCommand(collectionsListCmd, collectionsShowCmd, collectionsNewCmd, collectionsAddCmd)
	rootCmd.AddCommand(collectionsCmd)
}
