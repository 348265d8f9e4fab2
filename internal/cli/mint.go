package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/AsmusAB/wrap-tz-contracts/internal/micheline"
	"github.com/AsmusAB/wrap-tz-contracts/internal/tezos"
)

var mintCmd = &cobra.Command{
	Use:   "mint <contract>",
	Short: "Mint wrapped tokens for development",
	Long: `Invoke mint_tokens on a deployed token contract. This is a
development helper for test networks; production minting goes through
the minter and its quorum.

Examples:
  wrapctl mint KT1... --amount 100000000
  wrapctl mint KT1... --amount 5000 --owner tz1...`,
	Args: cobra.ExactArgs(1),
	RunE: runMint,
}

func init() {
	mintCmd.Flags().String("owner", "", "recipient address (defaults to the caller)")
	mintCmd.Flags().Int64("amount", 0, "amount to mint in base units (required)")
	mintCmd.Flags().Duration("timeout", 5*time.Minute, "operation deadline")
	_ = mintCmd.MarkFlagRequired("amount")

	rootCmd.AddCommand(mintCmd)
}

func runMint(cmd *cobra.Command, args []string) error {
	contract := args[0]
	if err := tezos.ValidateContractAddress(contract); err != nil {
		return fmt.Errorf("invalid contract: %w", err)
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	owner, _ := cmd.Flags().GetString("owner")
	if owner == "" {
		owner = client.AccountHash()
	} else if err := tezos.ValidateAddress(owner); err != nil {
		return fmt.Errorf("invalid owner: %w", err)
	}

	amount, _ := cmd.Flags().GetInt64("amount")
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %d", amount)
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	opHash, err := client.Call(ctx, contract, "mint_tokens", mintValue(owner, amount))
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(map[string]any{
			"operation": opHash,
			"contract":  contract,
			"owner":     owner,
			"amount":    amount,
		})
	}
	fmt.Printf("%s minted %d base units to %s\n", colorGreen("✓"), amount, owner)
	fmt.Printf("  Operation: %s\n", opHash)
	return nil
}

// mintValue builds the mint_tokens parameter, a single-entry list of
// {owner, amount}.
func mintValue(owner string, amount int64) *micheline.Node {
	return micheline.Seq(micheline.Prim("Pair", micheline.String(owner), micheline.Int(amount)))
}
