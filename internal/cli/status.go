package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/AsmusAB/wrap-tz-contracts/internal/deploy"
	"github.com/AsmusAB/wrap-tz-contracts/internal/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the persisted deployment state",
	Long: `Show the deployment state persisted in <workdir>/state.json: how far
the deployment progressed and the contract addresses originated so far.`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	dir := getWorkdir()
	state, err := deploy.ReadState(filepath.Join(dir, deploy.StateFile))
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(state)
	}
	if state.Status == domain.StatusInit {
		fmt.Printf("No deployment in %s\n", dir)
		return nil
	}

	fmt.Printf("Status:     %s\n", state.Status)
	fmt.Printf("Network:    %s\n", orDash(state.Network))
	fmt.Printf("FA2:        %s\n", orDash(state.FA2Address))
	fmt.Printf("Quorum:     %s\n", orDash(state.QuorumAddress))
	fmt.Printf("Minter:     %s\n", orDash(state.MinterAddress))
	fmt.Printf("Tokens:     %d\n", len(state.Tokens))
	fmt.Printf("Threshold:  %d\n", state.Threshold)
	fmt.Printf("Updated:    %s\n", state.UpdatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
