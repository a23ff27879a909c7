// Command zippy is a terminal client for the ZippyBoards API.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zippyboards/backend/internal/config"
	"github.com/zippyboards/backend/pkg/client"
)

var (
	cfg    config.Client
	apiURL string
)

var rootCmd = &cobra.Command{
	Use:           "zippy",
	Short:         "Work with ZippyBoards projects and boards",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.LoadDotEnv()
		c, err := config.LoadClient()
		if err != nil {
			return err
		}
		if apiURL != "" {
			c.APIURL = apiURL
		}
		cfg = c
		return nil
	},
}

func newClient() *client.RealClient {
	return client.NewClient(cfg.APIURL, cfg.Token)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "API base URL (default $ZIPPY_API_URL)")
	rootCmd.AddCommand(loginCmd, projectsCmd, boardCmd, membersCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "zippy:", err)
		os.Exit(1)
	}
}
