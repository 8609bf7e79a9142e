package domain

// Other is the catch-all sentinel every vocabulary carries. Codes outside a
// vocabulary normalize to it, and the aggregation pipeline buckets
// out-of-watchlist airports under it.
const Other = "OTHER"

// Vocabulary is a fixed set of accepted categorical codes plus the Other
// sentinel. Vocabularies are built once at startup and never mutated.
type Vocabulary struct {
	members map[string]struct{}
	codes   []string
}

// NewVocabulary builds a vocabulary from the given codes. The Other sentinel
// is always a member and does not need to be listed.
func NewVocabulary(codes ...string) Vocabulary {
	members := make(map[string]struct{}, len(codes)+1)
	kept := make([]string, 0, len(codes))
	for _, c := range codes {
		if _, dup := members[c]; dup || c == Other {
			continue
		}
		members[c] = struct{}{}
		kept = append(kept, c)
	}
	members[Other] = struct{}{}
	return Vocabulary{members: members, codes: kept}
}

// Normalize returns code unchanged if it is a member of the vocabulary and
// Other otherwise. It is total over all strings and idempotent.
func (v Vocabulary) Normalize(code string) string {
	if v.Contains(code) {
		return code
	}
	return Other
}

// Contains reports whether code is a member, including the Other sentinel.
func (v Vocabulary) Contains(code string) bool {
	_, ok := v.members[code]
	return ok
}

// Codes returns the explicit members in declaration order, sentinel excluded.
// The aggregation pipeline uses this as its airline allow-list.
func (v Vocabulary) Codes() []string {
	out := make([]string, len(v.codes))
	copy(out, v.codes)
	return out
}

// AirlineVocabulary returns the authoritative carrier vocabulary — the
// carriers present in the training data. This single list backs both
// prediction-time encoding and report-time filtering.
func AirlineVocabulary() Vocabulary {
	return NewVocabulary(
		"CO", "US", "AA", "AS", "DL", "B6", "HA", "OO", "9E", "OH",
		"EV", "XE", "YV", "UA", "MQ", "FL", "F9", "WN",
	)
}

// AirportVocabulary returns the top-10 airport watchlist the model was
// trained against. Everything else buckets to Other.
func AirportVocabulary() Vocabulary {
	return NewVocabulary(
		"JFK", "LAX", "ORD", "ATL", "SFO", "MIA", "SEA", "DFW", "DEN", "BOS",
	)
}
