package tzip16

import (
	"encoding/json"

	"github.com/AsmusAB/wrap-tz-contracts/internal/micheline"
)

// View describes a TZIP-16 off-chain view backed by a Michelson
// storage view implementation.
type View struct {
	Name            string               `json:"name"`
	Description     string               `json:"description"`
	Pure            bool                 `json:"pure"`
	Implementations []ViewImplementation `json:"implementations"`
}

// ViewImplementation wraps one implementation variant.
type ViewImplementation struct {
	MichelsonStorageView MichelsonStorageView `json:"michelsonStorageView"`
}

// MichelsonStorageView carries the view's return type and code as
// Micheline expressions. The optional parameter type is omitted; the
// deployed views take their arguments through the code's input pair.
type MichelsonStorageView struct {
	ReturnType *micheline.Node `json:"returnType"`
	Code       *micheline.Node `json:"code"`
}

// StorageView builds a single-implementation view descriptor.
func StorageView(name, description string, returnType, code *micheline.Node) *View {
	return &View{
		Name:        name,
		Description: description,
		Pure:        true,
		Implementations: []ViewImplementation{
			{MichelsonStorageView: MichelsonStorageView{ReturnType: returnType, Code: code}},
		},
	}
}

// Raw serializes the view for insertion into a metadata document.
func (v *View) Raw() (json.RawMessage, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, &EncodingError{Key: v.Name, Msg: err.Error()}
	}
	return json.RawMessage(b), nil
}
