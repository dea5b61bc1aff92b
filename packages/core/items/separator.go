package items

import (
	"sort"
	"strings"
)

// Separator is the literal text that splits an item into key and value.
type Separator string

const (
	SepHeader               Separator = ":"
	SepCredentials          Separator = ":"
	SepQuery                Separator = "=="
	SepData                 Separator = "="
	SepDataRawJSON          Separator = ":="
	SepFile                 Separator = "@"
	SepDataEmbedFile        Separator = "=@"
	SepDataEmbedRawJSONFile Separator = ":=@"
)

// Role is the semantic meaning of a separator.
type Role int

const (
	RoleHeader Role = iota
	RoleQuery
	RoleFile
	RoleData
	RoleDataEmbedFile
	RoleDataRawJSON
	RoleDataEmbedRawJSONFile

	roleCount
)

func (r Role) String() string {
	switch r {
	case RoleHeader:
		return "header"
	case RoleQuery:
		return "query-param"
	case RoleFile:
		return "file"
	case RoleData:
		return "data-field"
	case RoleDataEmbedFile:
		return "data-field-embedded-file"
	case RoleDataRawJSON:
		return "data-field-raw-json"
	case RoleDataEmbedRawJSONFile:
		return "data-field-embedded-raw-json-file"
	default:
		return "unknown"
	}
}

// Role reports the role of an item separator. ok is false for a literal
// that is not an item separator.
func (s Separator) Role() (role Role, ok bool) {
	switch s {
	case SepHeader:
		return RoleHeader, true
	case SepQuery:
		return RoleQuery, true
	case SepFile:
		return RoleFile, true
	case SepData:
		return RoleData, true
	case SepDataEmbedFile:
		return RoleDataEmbedFile, true
	case SepDataRawJSON:
		return RoleDataRawJSON, true
	case SepDataEmbedRawJSONFile:
		return RoleDataEmbedRawJSONFile, true
	}
	return 0, false
}

// SeparatorSet is a set of candidate separators.
type SeparatorSet map[Separator]struct{}

func NewSeparatorSet(seps ...Separator) SeparatorSet {
	s := make(SeparatorSet, len(seps))
	for _, sep := range seps {
		s[sep] = struct{}{}
	}
	return s
}

func (s SeparatorSet) Has(sep Separator) bool {
	_, ok := s[sep]
	return ok
}

// byLength returns the separators ordered by ascending length, ties broken
// lexically so the order is deterministic.
func (s SeparatorSet) byLength() []Separator {
	out := make([]Separator, 0, len(s))
	for sep := range s {
		out = append(out, sep)
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) < len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

var (
	// GroupDataItems are separators whose items become request data.
	GroupDataItems = NewSeparatorSet(
		SepData,
		SepDataRawJSON,
		SepFile,
		SepDataEmbedFile,
		SepDataEmbedRawJSONFile,
	)

	// GroupDataEmbedItems are separators whose value is a file to embed.
	GroupDataEmbedItems = NewSeparatorSet(
		SepDataEmbedFile,
		SepDataEmbedRawJSONFile,
	)

	// GroupRawJSONItems are separators whose value is raw JSON.
	GroupRawJSONItems = NewSeparatorSet(
		SepDataRawJSON,
		SepDataEmbedRawJSONFile,
	)

	// GroupAllItems are all separators allowed in request item arguments.
	GroupAllItems = NewSeparatorSet(
		SepHeader,
		SepQuery,
		SepData,
		SepDataRawJSON,
		SepFile,
		SepDataEmbedFile,
		SepDataEmbedRawJSONFile,
	)
)

// Split is an item divided at its separator. Key and Value are unescaped.
type Split struct {
	Key   string
	Value string
	Sep   Separator
	Orig  string
}

// Resolve finds the first literal token containing any candidate separator
// and splits there. Within that token the match at the smallest position
// wins, and at equal positions the longest separator wins. Escaped tokens
// never take part in a match.
func Resolve(tokens Tokens, candidates SeparatorSet) (Split, bool) {
	ordered := candidates.byLength()

	for i, tok := range tokens {
		if tok.IsEscaped() {
			continue
		}

		// Ascending length means a longer separator at the same position
		// overwrites a shorter one.
		found := make(map[int]Separator)
		for _, sep := range ordered {
			if pos := strings.Index(tok.Text, string(sep)); pos != -1 {
				found[pos] = sep
			}
		}
		if len(found) == 0 {
			continue
		}

		first := -1
		for pos := range found {
			if first == -1 || pos < first {
				first = pos
			}
		}
		sep := found[first]

		key := tokens[:i].Unescaped() + tok.Text[:first]
		value := tok.Text[first+len(sep):] + tokens[i+1:].Unescaped()

		return Split{
			Key:   key,
			Value: value,
			Sep:   sep,
			Orig:  tokens.Escaped(EscapeChar),
		}, true
	}

	return Split{}, false
}

// SplitItem tokenizes arg and resolves it against candidates.
func SplitItem(arg string, candidates SeparatorSet) (Split, error) {
	split, ok := Resolve(Tokenize(arg, EscapeChar), candidates)
	if !ok {
		return Split{}, newNoSeparatorError(arg)
	}
	split.Orig = arg
	return split, nil
}
