package main

import (
	"fmt"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/holps-7/striko/pkg/model"
)

var importName string

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Manage environments",
}

var envListCmd = &cobra.Command{
	Use:   "list",
	Short: "List environments",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		envs, err := a.session.Environments(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(envs) == 0 {
			fmt.Fprintln(out, "No environments yet.")
			return nil
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tVARIABLES")
		for _, e := range envs {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", e.ID, e.Name, len(e.Variables))
		}
		return tw.Flush()
	},
}

var envShowCmd = &cobra.Command{
	Use:   "show <environment>",
	Short: "Print the variables of an environment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		env, found, err := a.environments.Find(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("environment %q not found", args[0])
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s (%s)\n", env.Name, env.ID)
		keys := make([]string, 0, len(env.Variables))
		for k := range env.Variables {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "  %s=%s\n", k, env.Variables[k])
		}
		return nil
	},
}

var envSetCmd = &cobra.Command{
	Use:   "set <environment> KEY=VALUE...",
	Short: "Set variables, creating the environment if needed",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		vars, err := parseAssignments(args[1:])
		if err != nil {
			return err
		}

		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cmd.Context()

		env, found, err := a.environments.Find(ctx, args[0])
		if err != nil {
			return err
		}
		if !found {
			env = model.Environment{Name: args[0], Variables: map[string]string{}}
		}
		if env.Variables == nil {
			env.Variables = map[string]string{}
		}
		for k, v := range vars {
			env.Variables[k] = v
		}

		env, err = a.session.SaveEnvironment(ctx, env)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %d variable(s) to %q\n", len(vars), env.Name)
		return nil
	},
}

var envImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Import a flat YAML file of variables",
	Long: `Import a flat YAML map of variables as a new environment. Values of the
form {{env:NAME}} are replaced with the NAME environment variable.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()

		env, err := a.environments.Import(cmd.Context(), args[0], importName)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %q with %d variable(s)\n", env.Name, len(env.Variables))
		return nil
	},
}

// parseAssignments splits KEY=VALUE arguments.
func parseAssignments(args []string) (map[string]string, error) {
	vars := make(map[string]string, len(args))
	for _, arg := range args {
		k, v, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid assignment %q, expected KEY=VALUE", arg)
		}
		vars[strings.TrimSpace(k)] = v
	}
	return vars, nil
}

func init() {
	envImportCmd.Flags().StringVar(&importName, "name", "", "environment name (default is the file name)")
	envCmd.AddCommand(envListCmd, envShowCmd, envSetCmd, envImportCmd)
	rootCmd.AddCommand(envCmd)
}
