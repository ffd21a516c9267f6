package commands

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

var requestCmd = &cobra.Command{
	Use:   "request <shareable-address> <service>",
	Short: "Request a service for the holder of a shareable address",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		body := struct {
			ShareableAddress string `json:"shareable_address"`
			Service          string `json:"service"`
		}{
			ShareableAddress: args[0],
			Service:          args[1],
		}

		var resp map[string]any
		if _, err := newClient(nodeURL).call(http.MethodPost, "/v1/requests", body, &resp); err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), resp)
	},
}

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Show the transactions waiting to be mined",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]any
		if _, err := newClient(nodeURL).call(http.MethodGet, "/v1/tx/queue", nil, &resp); err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), resp)
	},
}

var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Start a mining run on the node",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp map[string]any
		if _, err := newClient(nodeURL).call(http.MethodPost, "/v1/mining/start", nil, &resp); err != nil {
			return err
		}

		return printJSON(cmd.OutOrStdout(), resp)
	},
}

var blocksCmd = &cobra.Command{
	Use:   "blocks [shareable-address]",
	Short: "Show the blocks, optionally only those holding requests for an address",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "/v1/blocks/list"
		if len(args) == 1 {
			path += "/" + args[0]
		}

		var resp []any
		found, err := newClient(nodeURL).call(http.MethodGet, path, nil, &resp)
		if err != nil {
			return err
		}

		if !found {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "no blocks")
			return err
		}

		return printJSON(cmd.OutOrStdout(), resp)
	},
}

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "Show the services a request can be made for",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp []string
		if _, err := newClient(nodeURL).call(http.MethodGet, "/v1/services", nil, &resp); err != nil {
			return err
		}

		for _, service := range resp {
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), service); err != nil {
				return err
			}
		}

		return nil
	},
}

func init() {
	RootCmd.AddCommand(requestCmd, queueCmd, mineCmd, blocksCmd, servicesCmd)
}
