package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	apiclient "github.com/echomap/echomap/client"
)

var (
	apiFlag   string
	tokenFlag string
	rootCmd   = &cobra.Command{
		Use:   "souvenirctl",
		Short: "CLI client for the souvenir service REST API",
	}
)

// newClient builds an API client from the persistent flags.
func newClient() *apiclient.Client {
	opts := []apiclient.Option{}
	if tokenFlag != "" {
		opts = append(opts, apiclient.WithToken(tokenFlag))
	}
	return apiclient.New(apiFlag, opts...)
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Souvenir service base URL")
	rootCmd.PersistentFlags().StringVarP(&tokenFlag, "token", "t", "", "Session token (from signup)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
