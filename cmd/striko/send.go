package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/holps-7/striko/pkg/model"
	"github.com/holps-7/striko/pkg/storage"
)

var (
	sendFile       string
	sendCollection string
	sendRequest    string
	sendRaw        bool
)

var sendCmd = &cobra.Command{
	Use:   "send [url]",
	Short: "Send one request and print the response",
	Long: `Send a request from a JSON or YAML file (-f), from a saved collection
(--collection and --request), or a plain GET to the given URL.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(false)
		if err != nil {
			return err
		}
		defer a.Close()
		ctx := cmd.Context()

		var req model.Request
		switch {
		case sendFile != "":
			req, err = storage.LoadRequestFile(sendFile)
			if err != nil {
				return err
			}
		case sendCollection != "":
			if sendRequest == "" {
				return errors.New("--request is required with --collection")
			}
			c, err := findCollection(ctx, a, sendCollection)
			if err != nil {
				return err
			}
			r, ok := c.FindRequest(sendRequest)
			if !ok {
				r, ok = c.FindRequestByName(sendRequest)
			}
			if !ok {
				return fmt.Errorf("request %q not found in %s", sendRequest, c.Name)
			}
			req = r
		case len(args) == 1:
			req = model.NewRequest()
			req.URL = args[0]
		default:
			return errors.New("nothing to send: pass a URL, -f FILE or --collection with --request")
		}

		resp, err := a.session.SendRequest(ctx, req)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if sendRaw {
			if err := printJSON(out, resp); err != nil {
				return err
			}
		} else {
			printMarkdown(out, responseMarkdown(req, resp))
		}

		if resp.Failed() {
			return fmt.Errorf("request failed: %s", resp.ErrorMessage())
		}
		return nil
	},
}

func init() {
	sendCmd.Flags().StringVarP(&sendFile, "file", "f", "", "request definition (.json, .yaml or .yml)")
	sendCmd.Flags().StringVar(&sendCollection, "collection", "", "collection id or name")
	sendCmd.Flags().StringVar(&sendRequest, "request", "", "request id or name inside --collection")
	sendCmd.Flags().BoolVar(&sendRaw, "raw", false, "print the response as JSON")
	rootCmd.AddCommand(sendCmd)
}
