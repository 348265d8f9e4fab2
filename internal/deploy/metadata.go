package deploy

import "github.com/AsmusAB/wrap-tz-contracts/internal/tzip16"

const homepage = "https://github.com/bender-labs/wrap-tz-contracts"

func licenseDoc() *tzip16.Document {
	return tzip16.NewDocument().Set("name", "MIT")
}

// contractMetadata builds the minimal TZIP-16 document shared by the
// quorum and minter contracts.
func contractMetadata(name string) *tzip16.Document {
	return tzip16.NewDocument().
		Set("name", name).
		Set("homepage", homepage).
		Set("license", licenseDoc())
}
