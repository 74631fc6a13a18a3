package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// seedCmd sets up a development tenant through the public API.
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Quick setup commands for development/test environments",
	Long: `Seed commands create a working tenant through the same API endpoints as production.

Example workflow:
  1. eval "$(outreach-cli seed company --name acme --email owner@acme.io --password SecurePass123 -o env)"
  2. outreach-cli users import customers.csv
  3. outreach-cli senders add news@acme.io`,
}

var seedCompanyCmd = &cobra.Command{
	Use:   "company",
	Short: "Register a company and its first operator",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := RegisterInput{}
		in.Company, _ = cmd.Flags().GetString("name")
		in.EmailAddress, _ = cmd.Flags().GetString("email")
		in.Password, _ = cmd.Flags().GetString("password")
		in.FirstName, _ = cmd.Flags().GetString("first-name")
		in.LastName, _ = cmd.Flags().GetString("last-name")

		sess, err := newClient().Register(in)
		if err != nil {
			return fmt.Errorf("failed to register company: %w", err)
		}
		w := cmd.OutOrStdout()
		switch outputFmt {
		case "env":
			fmt.Fprintf(w, "OUTREACH_API_TOKEN=%s\n", sess.Token)
			fmt.Fprintf(w, "OUTREACH_TENANT_ID=%s\n", sess.User.CompanyID)
		case "table":
			fmt.Fprintf(w, "Company created: %s\n", in.Company)
			fmt.Fprintf(w, "Tenant ID: %s\n", sess.User.CompanyID)
			fmt.Fprintf(w, "Operator: %s\n", sess.User.EmailAddress)
			fmt.Fprintf(w, "Token: %s\n", sess.Token)
		default:
			return formatOutput(w, sess)
		}
		return nil
	},
}

func init() {
	seedCompanyCmd.Flags().String("name", "test", "company name")
	seedCompanyCmd.Flags().String("email", "", "operator email address")
	seedCompanyCmd.Flags().String("password", "", "operator password (min 8 characters)")
	seedCompanyCmd.Flags().String("first-name", "Dev", "operator first name")
	seedCompanyCmd.Flags().String("last-name", "Operator", "operator last name")
	_ = seedCompanyCmd.MarkFlagRequired("email")
	_ = seedCompanyCmd.MarkFlagRequired("password")
	seedCmd.AddCommand(seedCompanyCmd)
}
