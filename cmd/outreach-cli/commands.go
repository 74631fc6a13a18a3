package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and print or save an access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		save, _ := cmd.Flags().GetBool("save")
		sess, err := newClient().Login(email, password)
		if err != nil {
			return err
		}
		if save {
			path, err := saveConfig(Config{APIURL: apiURL, APIToken: sess.Token})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token saved to %s\n", path)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), sess.Token)
		return nil
	},
}

func init() {
	loginCmd.Flags().String("email", "", "account email address")
	loginCmd.Flags().String("password", "", "account password")
	loginCmd.Flags().Bool("save", false, "store the token in the config file")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")
}

// Company users commands
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Company users and audience exploration",
}

var usersImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import a .csv or .xlsx file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := newClient().Import(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d records\n", n)
		return nil
	},
}

var usersKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the fields most records share",
	RunE: func(cmd *cobra.Command, args []string) error {
		keys, err := newClient().FilterKeys()
		if err != nil {
			return err
		}
		return formatOutput(cmd.OutOrStdout(), keys)
	},
}

var usersValuesCmd = &cobra.Command{
	Use:   "values [key]",
	Short: "List the distinct values of a field",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vals, err := newClient().FilterValues(args[0])
		if err != nil {
			return err
		}
		return formatOutput(cmd.OutOrStdout(), vals)
	},
}

var usersCountCmd = &cobra.Command{
	Use:   "count [filters-json]",
	Short: "Count matching records per filter key",
	Long:  `Count records per key, e.g. outreach-cli users count '{"plan":["gold","silver"],"city":"Oslo"}'`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readJSONArg(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}
		counts, err := newClient().FilterCount(raw)
		if err != nil {
			return err
		}
		if outputFmt != "table" {
			return formatOutput(cmd.OutOrStdout(), counts)
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "KEY\tVALUES\tCOUNT")
		for _, c := range counts {
			fmt.Fprintf(tw, "%s\t%s\t%d\n", c.FilterKey, strings.Join(c.FilterValues, ","), c.FilterCount)
		}
		return tw.Flush()
	},
}

var usersSearchCmd = &cobra.Command{
	Use:   "search [prefix]",
	Short: "Prefix search over the given fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fields, _ := cmd.Flags().GetStringSlice("fields")
		out, err := newClient().Search(args[0], fields)
		if err != nil {
			return err
		}
		return printRecords(cmd.OutOrStdout(), out)
	},
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List company users page by page",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")
		size, _ := cmd.Flags().GetInt("size")
		out, err := newClient().ListUsers(page, size)
		if err != nil {
			return err
		}
		return printRecords(cmd.OutOrStdout(), out)
	},
}

func init() {
	usersSearchCmd.Flags().StringSlice("fields", []string{"email"}, "fields to search")
	usersListCmd.Flags().Int("page", 1, "page number")
	usersListCmd.Flags().Int("size", 10, "page size")
	usersCmd.AddCommand(usersImportCmd, usersKeysCmd, usersValuesCmd, usersCountCmd, usersSearchCmd, usersListCmd)
}

// printRecords prints one JSON object per line in table mode since records have no fixed columns.
func printRecords(w io.Writer, recs []map[string]any) error {
	if outputFmt != "table" {
		return formatOutput(w, recs)
	}
	for _, r := range recs {
		b, err := json.Marshal(r)
		if err != nil {
			return err
		}
		fmt.Fprintln(w, string(b))
	}
	fmt.Fprintf(w, "\nTotal: %d records\n", len(recs))
	return nil
}

// Sender identity commands
var sendersCmd = &cobra.Command{
	Use:   "senders",
	Short: "Sender addresses and domains",
}

var sendersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List verified sender addresses",
	RunE: func(cmd *cobra.Command, args []string) error {
		addrs, err := newClient().VerifiedAddresses()
		if err != nil {
			return err
		}
		return formatOutput(cmd.OutOrStdout(), addrs)
	},
}

var sendersAddCmd = &cobra.Command{
	Use:   "add [email]",
	Short: "Register a sender address and request verification",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := newClient().RegisterAddress(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Verification requested for %s\n", args[0])
		return nil
	},
}

var sendersAddDomainCmd = &cobra.Command{
	Use:   "add-domain [domain]",
	Short: "Register a sender domain and print its DNS record",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rec, err := newClient().RegisterDomain(args[0])
		if err != nil {
			return err
		}
		if outputFmt != "table" {
			return formatOutput(cmd.OutOrStdout(), rec)
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tTYPE\tVALUE")
		fmt.Fprintf(tw, "%s\t%s\t%s\n", rec.Name, rec.Type, rec.Value)
		return tw.Flush()
	},
}

func init() {
	sendersCmd.AddCommand(sendersListCmd, sendersAddCmd, sendersAddDomainCmd)
}

var interactCmd = &cobra.Command{
	Use:   "interact [request.json|-]",
	Short: "Run a bulk interaction",
	Long: `Send a bulk interaction described by a JSON file ("-" reads stdin):

  {"filters": {"plan": ["gold"]}, "channel": "email",
   "format": {"subject": "Hi", "content": "Hello #firstName"},
   "sourceEmailAddress": "news@acme.io"}`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readJSONFile(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}
		sum, err := newClient().Interact(raw)
		if err != nil {
			return err
		}
		if outputFmt != "table" {
			return formatOutput(cmd.OutOrStdout(), sum)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Matched: %d\nDispatched: %d\nRecorded: %d\n", sum.Matched, sum.Dispatched, sum.Recorded)
		return nil
	},
}

// Settings commands
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Tenant sending settings",
}

var settingsGetCmd = &cobra.Command{
	Use:   "get",
	Short: "Show tenant settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newClient().Settings()
		if err != nil {
			return err
		}
		return formatOutput(cmd.OutOrStdout(), s)
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [patch-json]",
	Short: `Update settings, e.g. '{"bulkConcurrency": 8}'`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := readJSONArg(cmd.InOrStdin(), args[0])
		if err != nil {
			return err
		}
		s, err := newClient().PutSettings(raw)
		if err != nil {
			return err
		}
		return formatOutput(cmd.OutOrStdout(), s)
	},
}

func init() {
	settingsCmd.AddCommand(settingsGetCmd, settingsSetCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check API health",
	RunE: func(cmd *cobra.Command, args []string) error {
		h, err := newClient().Health()
		if err != nil {
			return err
		}
		return formatOutput(cmd.OutOrStdout(), h)
	},
}

// readJSONArg accepts inline JSON or "-" for stdin.
func readJSONArg(stdin io.Reader, arg string) (json.RawMessage, error) {
	var b []byte
	if arg == "-" {
		var err error
		if b, err = io.ReadAll(stdin); err != nil {
			return nil, err
		}
	} else {
		b = []byte(arg)
	}
	if !json.Valid(b) {
		return nil, fmt.Errorf("argument is not valid JSON")
	}
	return b, nil
}

// readJSONFile reads a JSON document from path or stdin when path is "-".
func readJSONFile(stdin io.Reader, path string) (json.RawMessage, error) {
	if path == "-" {
		return readJSONArg(stdin, "-")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !json.Valid(b) {
		return nil, fmt.Errorf("%s is not valid JSON", path)
	}
	return b, nil
}
