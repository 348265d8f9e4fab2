package deploy

import (
	"context"
	"encoding/hex"
	"strconv"

	"github.com/AsmusAB/wrap-tz-contracts/internal/domain"
	"github.com/AsmusAB/wrap-tz-contracts/internal/ligo"
	"github.com/AsmusAB/wrap-tz-contracts/internal/micheline"
	"github.com/AsmusAB/wrap-tz-contracts/internal/tzip16"
)

// ViewSpec names one off-chain view to compile into the FA2 metadata.
type ViewSpec struct {
	Name        string
	ReturnType  string
	Description string
}

// FA2ViewSpecs lists the four TZIP-12 views the FA2 metadata publishes.
func FA2ViewSpecs() []ViewSpec {
	return []ViewSpec{
		{"get_balance", "nat", "get_balance as defined in tzip-12"},
		{"total_supply", "nat", "get_total supply as defined in tzip-12"},
		{"is_operator", "bool", "is_operator as defined in tzip-12"},
		{"token_metadata", "(pair nat (map string bytes))", "token_metadata as defined in tzip-12"},
	}
}

// CompileFA2Views compiles the published views from the views source.
func CompileFA2Views(ctx context.Context, views *ligo.Views) ([]*tzip16.View, error) {
	specs := FA2ViewSpecs()
	out := make([]*tzip16.View, 0, len(specs))
	for _, s := range specs {
		v, err := views.CompileView(ctx, s.Name, s.ReturnType, s.Description)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// FA2Metadata builds the FA2 contract's TZIP-16 document.
func FA2Metadata(views []*tzip16.View) (*tzip16.Document, error) {
	items := make([]any, 0, len(views))
	for _, v := range views {
		raw, err := v.Raw()
		if err != nil {
			return nil, err
		}
		items = append(items, raw)
	}
	return tzip16.NewDocument().
		Set("interfaces", []any{"TZIP-12", "TZIP-16"}).
		Set("name", "Wrap protocol FA2 tokens").
		Set("homepage", homepage).
		Set("license", licenseDoc()).
		Set("permissions", tzip16.NewDocument().
			Set("operator", "owner-or-operator-transfer").
			Set("receiver", "owner-no-hook").
			Set("sender", "owner-no-hook").
			Set("custom", tzip16.NewDocument().Set("tag", "PAUSABLE_TOKENS"))).
		Set("views", items), nil
}

// FA2Storage builds the FA2 contract's initial storage record. Each
// token takes its position in the list as token id; no supply is
// pre-minted. Extras hold the token description as hex of its UTF-8
// text.
func FA2Storage(admin string, tokens []domain.TokenSpec, metadata map[string]string) *micheline.Doc {
	tokenMeta := micheline.NewDoc()
	supply := micheline.NewDoc()
	for i, tok := range tokens {
		id := strconv.Itoa(i)
		tokenMeta.Set(id, micheline.NewDoc().
			Set("token_id", i).
			Set("extras", map[string]string{
				"decimals":     hexText(strconv.Itoa(tok.Decimals)),
				"eth_contract": hexText(tok.EthContract),
				"eth_symbol":   hexText(tok.EthSymbol),
				"name":         hexText(tok.Name),
				"symbol":       hexText(tok.Symbol),
			}))
		supply.Set(id, 0)
	}
	return micheline.NewDoc().
		Set("admin", micheline.NewDoc().
			Set("admin", admin).
			Set("pending_admin", nil).
			Set("paused", nil)).
		Set("assets", micheline.NewDoc().
			Set("ledger", nil).
			Set("operators", nil).
			Set("token_metadata", tokenMeta).
			Set("token_total_supply", supply)).
		Set("metadata", metadata)
}

func hexText(s string) string {
	return hex.EncodeToString([]byte(s))
}
