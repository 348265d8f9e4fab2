// Package cli implements the wrapctl commands.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/AsmusAB/wrap-tz-contracts/internal/storage"
	"github.com/AsmusAB/wrap-tz-contracts/internal/storage/migrations"
	"github.com/AsmusAB/wrap-tz-contracts/internal/storage/postgres"
	"github.com/AsmusAB/wrap-tz-contracts/internal/tezos"
)

// DefaultNode is the RPC endpoint used when none is configured.
const DefaultNode = "http://localhost:8732"

var (
	// Version is set at build time.
	Version = "dev"

	// Global flags
	cfgFile   string
	nodeURL   string
	secretKey string
	dbDSN     string
	network   string
	workdir   string
	verbose   bool
	jsonOut   bool
)

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "wrapctl",
	Short: "Deploy and operate the wrap protocol contracts on Tezos",
	Long: `wrapctl deploys the wrap protocol contract trio (FA2 token, multisig
quorum, minter) to a Tezos network and keeps track of the deployment.

Configuration (in order of priority):
  1. Command-line flags (--node, --secret-key, --db, ...)
  2. Environment variables (WRAP_NODE, WRAP_SECRET_KEY, WRAP_DB, ...)
  3. Config file (~/.wrapctl.yaml)

Get started:
  $ wrapctl deploy --secret-key edsk... --network ghostnet
  $ wrapctl status
  $ wrapctl runs --db postgres://...`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("wrapctl version %s\n", Version)
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.wrapctl.yaml)")
	rootCmd.PersistentFlags().StringVar(&nodeURL, "node", "", "Tezos node RPC endpoint (or WRAP_NODE)")
	rootCmd.PersistentFlags().StringVar(&secretKey, "secret-key", "", "edsk secret key of the deploying account (or WRAP_SECRET_KEY)")
	rootCmd.PersistentFlags().StringVar(&dbDSN, "db", "", "postgres DSN for the deployment journal (or WRAP_DB)")
	rootCmd.PersistentFlags().StringVar(&network, "network", "", "network name for block-explorer links (or WRAP_NETWORK)")
	rootCmd.PersistentFlags().StringVar(&workdir, "workdir", "", "directory holding deploy.yaml and state.json (default .)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log RPC traffic and retries")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")

	// Add commands
	rootCmd.AddCommand(versionCmd)
}

// initConfig initializes viper configuration.
func initConfig() {
	// Set defaults
	viper.SetDefault("node", DefaultNode)
	viper.SetDefault("workdir", ".")

	// Config file
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName(".wrapctl")
		}
	}

	// Environment variables
	viper.SetEnvPrefix("WRAP")
	viper.AutomaticEnv()
	_ = viper.BindEnv("node", "WRAP_NODE")
	_ = viper.BindEnv("secret_key", "WRAP_SECRET_KEY")
	_ = viper.BindEnv("db", "WRAP_DB")
	_ = viper.BindEnv("network", "WRAP_NETWORK")
	_ = viper.BindEnv("workdir", "WRAP_WORKDIR")

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// getNode returns the node endpoint from flags, env, or config.
func getNode() string {
	if nodeURL != "" {
		return nodeURL
	}
	return viper.GetString("node")
}

// getSecretKey returns the secret key from flags, env, or config.
func getSecretKey() (string, error) {
	if secretKey != "" {
		return secretKey, nil
	}
	key := viper.GetString("secret_key")
	if key == "" {
		return "", fmt.Errorf("secret key required. Set via --secret-key, WRAP_SECRET_KEY, or ~/.wrapctl.yaml")
	}
	return key, nil
}

// getSigner parses the configured secret key.
func getSigner() (*tezos.Key, error) {
	raw, err := getSecretKey()
	if err != nil {
		return nil, err
	}
	return tezos.ParseKey(raw)
}

// getDB returns the journal DSN from flags, env, or config.
func getDB() string {
	if dbDSN != "" {
		return dbDSN
	}
	return viper.GetString("db")
}

// getNetwork returns the network name from flags, env, or config.
func getNetwork() string {
	if network != "" {
		return network
	}
	return viper.GetString("network")
}

// getWorkdir returns the working directory from flags, env, or config.
func getWorkdir() string {
	if workdir != "" {
		return workdir
	}
	return viper.GetString("workdir")
}

// getClient builds the RPC client from the current configuration.
func getClient() (*tezos.RPCClient, error) {
	key, err := getSigner()
	if err != nil {
		return nil, err
	}
	logf := func(string, ...any) {}
	if verbose {
		logf = log.New(os.Stderr, "", log.LstdFlags).Printf
	}
	return tezos.NewRPCClient(getNode(), key, tezos.WithLogf(logf)), nil
}

// openJournal opens the postgres journal when a DSN is configured. A
// nil store means the journal is disabled.
func openJournal(ctx context.Context) (storage.RunStore, func(), error) {
	dsn := getDB()
	if dsn == "" {
		return nil, func() {}, nil
	}
	pool, err := postgres.NewPool(ctx, dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to journal: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migrate journal: %w", err)
	}
	return postgres.NewRunStore(pool), pool.Close, nil
}

// resolvePath anchors a manifest-relative path at the workdir.
func resolvePath(workdir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workdir, path)
}

// Output helpers

// printJSON outputs data as formatted JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// newTable creates a new tabwriter for formatted output.
func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

// printTableHeader prints a bold header row.
func printTableHeader(w *tabwriter.Writer, columns ...string) {
	for i, col := range columns {
		if i > 0 {
			fmt.Fprint(w, "\t")
		}
		fmt.Fprint(w, colorBold(col))
	}
	fmt.Fprintln(w)
}

// Terminal colors

func colorGreen(s string) string {
	if !isTTY() {
		return s
	}
	return "\033[32m" + s + "\033[0m"
}

func colorYellow(s string) string {
	if !isTTY() {
		return s
	}
	return "\033[33m" + s + "\033[0m"
}

func colorBold(s string) string {
	if !isTTY() {
		return s
	}
	return "\033[1m" + s + "\033[0m"
}

func isTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

// truncate truncates a string to maxLen characters.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
