// wrapctl deploys the wrap protocol contracts (FA2 token, multisig
// quorum, minter) to a Tezos network and operates the deployment.
package main

import "github.com/AsmusAB/wrap-tz-contracts/internal/cli"

func main() {
	cli.Execute()
}
