package micheline

// Doc is an insertion-ordered string-keyed mapping used to describe a
// structured storage value before it is lowered against a Michelson
// type. Values may be Go scalars, nested *Doc records, slices, raw
// *Node expressions, or nil (absent option).
type Doc struct {
	keys []string
	vals map[string]any
}

// NewDoc returns an empty document.
func NewDoc() *Doc {
	return &Doc{vals: make(map[string]any)}
}

// Set stores a value under key, keeping first-insertion order. It
// returns the document for chaining.
func (d *Doc) Set(key string, value any) *Doc {
	if _, ok := d.vals[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.vals[key] = value
	return d
}

// Get returns the value stored under key.
func (d *Doc) Get(key string) (any, bool) {
	if d == nil {
		return nil, false
	}
	v, ok := d.vals[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (d *Doc) Keys() []string {
	if d == nil {
		return nil
	}
	out := make([]string, len(d.keys))
	copy(out, d.keys)
	return out
}

// Len returns the number of entries.
func (d *Doc) Len() int {
	if d == nil {
		return 0
	}
	return len(d.keys)
}
