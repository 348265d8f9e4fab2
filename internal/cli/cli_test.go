package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetConfig clears flag globals and viper state around a test.
func resetConfig(t *testing.T) {
	t.Helper()
	reset := func() {
		cfgFile = ""
		nodeURL = ""
		secretKey = ""
		dbDSN = ""
		network = ""
		workdir = ""
		verbose = false
		jsonOut = false
		viper.Reset()
	}
	reset()
	t.Cleanup(reset)
}

func TestRootCmdWiring(t *testing.T) {
	assert.Equal(t, "wrapctl", rootCmd.Use)

	for _, use := range []string{"deploy", "status", "runs", "mint <contract>", "version"} {
		found := false
		for _, cmd := range rootCmd.Commands() {
			if cmd.Use == use {
				found = true
				break
			}
		}
		assert.True(t, found, "%s subcommand should exist", use)
	}
}

func TestRootPersistentFlags(t *testing.T) {
	for _, name := range []string{"config", "node", "secret-key", "db", "network", "workdir", "verbose", "json"} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(name), "flag --%s should exist", name)
	}
}

func TestDeployFlagDefaults(t *testing.T) {
	timeout, err := deployCmd.Flags().GetDuration("timeout")
	require.NoError(t, err)
	assert.Equal(t, 15*time.Minute, timeout)

	ligoBin, err := deployCmd.Flags().GetString("ligo")
	require.NoError(t, err)
	assert.Equal(t, "", ligoBin)
}

func TestMintArgs(t *testing.T) {
	assert.Error(t, mintCmd.Args(mintCmd, []string{}))
	assert.NoError(t, mintCmd.Args(mintCmd, []string{"KT1abc"}))
	assert.Error(t, mintCmd.Args(mintCmd, []string{"KT1abc", "KT1def"}))
}

func TestMintValue(t *testing.T) {
	node := mintValue("tz1abc", 77)
	raw, err := json.Marshal(node)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"prim":"Pair","args":[{"string":"tz1abc"},{"int":"77"}]}]`, string(raw))
}

func TestSecretKeyResolution(t *testing.T) {
	resetConfig(t)

	_, err := getSecretKey()
	assert.Error(t, err, "missing key should error")

	viper.Set("secret_key", "edsk-from-config")
	got, err := getSecretKey()
	require.NoError(t, err)
	assert.Equal(t, "edsk-from-config", got)

	secretKey = "edsk-from-flag"
	got, err = getSecretKey()
	require.NoError(t, err)
	assert.Equal(t, "edsk-from-flag", got, "flag should win over config")
}

func TestNodeResolution(t *testing.T) {
	resetConfig(t)

	viper.SetDefault("node", DefaultNode)
	assert.Equal(t, DefaultNode, getNode())

	viper.Set("node", "https://rpc.example.com")
	assert.Equal(t, "https://rpc.example.com", getNode())

	nodeURL = "https://flag.example.com"
	assert.Equal(t, "https://flag.example.com", getNode())
}

func TestWorkdirResolution(t *testing.T) {
	resetConfig(t)

	viper.SetDefault("workdir", ".")
	assert.Equal(t, ".", getWorkdir())

	workdir = "/tmp/testnet"
	assert.Equal(t, "/tmp/testnet", getWorkdir())
}

func TestResolvePath(t *testing.T) {
	assert.Equal(t, filepath.Join("work", "ligo", "fa2.tz"), resolvePath("work", "ligo/fa2.tz"))
	assert.Equal(t, "/abs/fa2.tz", resolvePath("work", "/abs/fa2.tz"))
	assert.Equal(t, "", resolvePath("work", ""))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly10!", truncate("exactly10!", 10))
	assert.Equal(t, "long st...", truncate("long string here", 10))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}

func TestOrDash(t *testing.T) {
	assert.Equal(t, "-", orDash(""))
	assert.Equal(t, "KT1abc", orDash("KT1abc"))
}
