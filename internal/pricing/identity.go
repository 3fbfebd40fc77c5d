package pricing

import "strings"

const (
	keySeparator = "|"
	notePrefix   = "note="
)

// free-text segments are escaped so the flat key stays injective
var segmentEscaper = strings.NewReplacer("%", "%25", keySeparator, "%7C")

// Identity is the merge key of a cart entry. Two selections with the same
// item, size, flags and trimmed notes share an Identity; any other difference
// yields a distinct one. It is comparable and can be used as a map key.
type Identity struct {
	ItemID    string
	Size      Size
	ExtraShot bool
	OatMilk   bool
	NoSugar   bool
	NoFoam    bool
	Notes     string
}

// Options lists the enabled flags in their fixed key order.
func (id Identity) Options() []Option {
	opts := make([]Option, 0, 4)
	if id.ExtraShot {
		opts = append(opts, OptionExtraShot)
	}
	if id.OatMilk {
		opts = append(opts, OptionOatMilk)
	}
	if id.NoSugar {
		opts = append(opts, OptionNoSugar)
	}
	if id.NoFoam {
		opts = append(opts, OptionNoFoam)
	}
	return opts
}

func (id Identity) Tokens() []string {
	tokens := []string{segmentEscaper.Replace(id.ItemID), string(id.Size)}
	for _, opt := range id.Options() {
		tokens = append(tokens, string(opt))
	}
	if id.Notes != "" {
		tokens = append(tokens, notePrefix+segmentEscaper.Replace(id.Notes))
	}
	return tokens
}

// String renders the flat key, e.g. "latte|medium|extra-shot|note=extra hot".
func (id Identity) String() string {
	return strings.Join(id.Tokens(), keySeparator)
}
