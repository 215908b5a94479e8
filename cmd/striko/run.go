package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holps-7/striko/pkg/runner"
)

var (
	runRPS           float64
	runStopOnFailure bool
	runJSON          bool
)

var runCmd = &cobra.Command{
	Use:   "run <collection>",
	Short: "Send every request of a collection in order",
	Long: `Send the requests of a collection one after another, top-level requests
first and then each folder, and print a summary. The command fails when any
request fails (network error or a 4xx/5xx status).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cmd.Context()

		c, err := findCollection(ctx, a, args[0])
		if err != nil {
			return err
		}

		r := runner.New(a.executor, a.session, a.logger)
		summary, runErr := r.Run(ctx, c, runner.Options{
			RPS:           runRPS,
			StopOnFailure: runStopOnFailure,
		})

		out := cmd.OutOrStdout()
		if runJSON {
			if err := printJSON(out, summary); err != nil {
				return err
			}
		} else {
			fmt.Fprint(out, runner.Format(summary))
		}

		if runErr != nil {
			return runErr
		}
		if summary.Failed > 0 {
			return fmt.Errorf("%d of %d requests failed", summary.Failed, summary.Total)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().Float64Var(&runRPS, "rps", 0, "maximum requests per second (0 for no limit)")
	runCmd.Flags().BoolVar(&runStopOnFailure, "stop-on-failure", false, "stop after the first failed request")
	runCmd.Flags().BoolVar(&runJSON, "json", false, "print the summary as JSON")
	rootCmd.AddCommand(runCmd)
}
