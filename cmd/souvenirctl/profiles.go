package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	var username, email string
	signupCmd := &cobra.Command{
		Use:   "signup",
		Short: "Register a profile and print a session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := newClient().SignUp(cmd.Context(), username, email)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "profile %s created\ntoken: %s\n", res.Profile.Username, res.Token)
			return nil
		},
	}
	signupCmd.Flags().StringVarP(&username, "username", "u", "", "Username (required)")
	signupCmd.Flags().StringVarP(&email, "email", "e", "", "Email (required)")
	_ = signupCmd.MarkFlagRequired("username")
	_ = signupCmd.MarkFlagRequired("email")
	rootCmd.AddCommand(signupCmd)

	checkCmd := &cobra.Command{
		Use:   "check-username NAME",
		Short: "Check whether a username is available",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			available, err := newClient().CheckUsername(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if available {
				fmt.Fprintf(os.Stdout, "%s is available\n", args[0])
			} else {
				fmt.Fprintf(os.Stdout, "%s is taken\n", args[0])
			}
			return nil
		},
	}
	rootCmd.AddCommand(checkCmd)

	meCmd := &cobra.Command{
		Use:   "me",
		Short: "Show the authenticated profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := newClient().Me(cmd.Context())
			if err != nil {
				return err
			}
			data, _ := json.MarshalIndent(p, "", "  ")
			fmt.Fprintln(os.Stdout, string(data))
			return nil
		},
	}
	rootCmd.AddCommand(meCmd)
}
