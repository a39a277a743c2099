package main

import (
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/poofware/application-service/internal/client"
)

const defaultServer = "http://localhost:8080"

type rootFlags struct {
	server  string
	timeout time.Duration
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	server := os.Getenv("APPLYCTL_SERVER")
	if server == "" {
		server = defaultServer
	}

	cmd := &cobra.Command{
		Use:           "applyctl",
		Short:         "Fill out and submit insurance applications",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&flags.server, "server", server, "Base URL of the application service (env APPLYCTL_SERVER)")
	cmd.PersistentFlags().DurationVar(&flags.timeout, "timeout", 30*time.Second, "Per-request timeout")

	cmd.AddCommand(newStartCmd(flags))
	cmd.AddCommand(newGetCmd(flags))
	cmd.AddCommand(newUpdateCmd(flags))
	cmd.AddCommand(newSubmitCmd(flags))
	cmd.AddCommand(newCheckCmd())

	return cmd
}

func (f *rootFlags) form() (*client.FormController, error) {
	api, err := client.NewHTTPClient(f.server, &http.Client{Timeout: f.timeout})
	if err != nil {
		return nil, err
	}
	return client.NewFormController(api, nil), nil
}
