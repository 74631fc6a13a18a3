package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const defaultAPIURL = "http://localhost:8080"

var (
	cfgFile   string
	apiURL    string
	apiToken  string
	verbose   bool
	outputFmt string
)

// Config holds CLI configuration
type Config struct {
	APIURL   string `mapstructure:"api_url" yaml:"api_url"`
	APIToken string `mapstructure:"api_token" yaml:"api_token"`
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "outreach-cli",
	Short: "Outreach CLI - audience and campaign tool",
	Long: `Outreach CLI provides command-line access to the Outreach API.
Import company users, explore filters, manage senders and run bulk interactions.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			fmt.Fprintf(cmd.ErrOrStderr(), "API URL: %s\n", apiURL)
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.outreach-cli.yaml)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Outreach API base URL")
	rootCmd.PersistentFlags().StringVar(&apiToken, "token", "", "API access token")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "output format (table, json, yaml)")

	_ = viper.BindPFlag("api_url", rootCmd.PersistentFlags().Lookup("api-url"))
	_ = viper.BindPFlag("api_token", rootCmd.PersistentFlags().Lookup("token"))

	rootCmd.AddCommand(configCmd, loginCmd, seedCmd, usersCmd, sendersCmd, interactCmd, settingsCmd, healthCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".outreach-cli")
	}

	viper.SetEnvPrefix("OUTREACH")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}

	if apiURL == "" {
		apiURL = viper.GetString("api_url")
	}
	if apiToken == "" {
		apiToken = viper.GetString("api_token")
	}
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
}

func newClient() *Client { return NewClient(apiURL, apiToken) }

// Configuration commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long:  "Prompt for the API URL and token and write them to the config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := promptConfig(cmd.InOrStdin(), cmd.OutOrStdout())
		path, err := saveConfig(cfg)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "API URL: %s\n", apiURL)
		fmt.Fprintf(w, "API Token: %s\n", maskToken(apiToken))
		if f := viper.ConfigFileUsed(); f != "" {
			fmt.Fprintf(w, "Config file: %s\n", f)
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd, configShowCmd)
}

func promptConfig(in io.Reader, out io.Writer) Config {
	r := bufio.NewReader(in)
	ask := func(label, def string) string {
		if def != "" {
			fmt.Fprintf(out, "%s [%s]: ", label, def)
		} else {
			fmt.Fprintf(out, "%s: ", label)
		}
		line, _ := r.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			return line
		}
		return def
	}
	fmt.Fprintln(out, "Outreach CLI Configuration Setup")
	return Config{
		APIURL:   ask("Outreach API URL", defaultAPIURL),
		APIToken: ask("API Token", ""),
	}
}

func saveConfig(cfg Config) (string, error) {
	viper.Set("api_url", cfg.APIURL)
	viper.Set("api_token", cfg.APIToken)
	path := cfgFile
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(home, ".outreach-cli.yaml")
	}
	if err := viper.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("failed to write config file: %w", err)
	}
	return path, nil
}

func maskToken(token string) string {
	if len(token) <= 8 {
		return strings.Repeat("*", len(token))
	}
	return token[:4] + strings.Repeat("*", len(token)-8) + token[len(token)-4:]
}

// formatOutput renders data as JSON, YAML or a two-column table.
func formatOutput(w io.Writer, data any) error {
	switch outputFmt {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	default:
		return formatTable(w, data)
	}
}

func formatTable(w io.Writer, data any) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	switch v := data.(type) {
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(tw, "%s\t%v\n", k, v[k])
		}
	case []string:
		for _, s := range v {
			fmt.Fprintln(tw, s)
		}
	case []any:
		for i, item := range v {
			fmt.Fprintf(tw, "%d\t%v\n", i+1, item)
		}
	default:
		fmt.Fprintf(tw, "%v\n", data)
	}
	return tw.Flush()
}

func logVerbose(format string, args ...any) {
	if verbose {
		log.Printf("[VERBOSE] "+format, args...)
	}
}
