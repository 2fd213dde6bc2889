package qualify

import (
	"strings"

	"github.com/ecr-group/leadqual-cli/internal/model"
)

// SplitName splits a full name on whitespace: the first token becomes the
// first name and the remaining tokens, joined by single spaces, the last
// name. Zero tokens yield two empty strings; one token yields only a first
// name.
func SplitName(full string) (first, last string) {
	tokens := strings.Fields(full)
	switch len(tokens) {
	case 0:
		return "", ""
	case 1:
		return tokens[0], ""
	default:
		return tokens[0], strings.Join(tokens[1:], " ")
	}
}

// Dedupe removes duplicate leads across domain batches, keyed by
// case-insensitive email. The first occurrence wins.
func Dedupe(leads []model.QualifiedLead) []model.QualifiedLead {
	seen := make(map[string]bool, len(leads))
	out := make([]model.QualifiedLead, 0, len(leads))

	for _, l := range leads {
		key := strings.ToLower(l.Email)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, l)
	}

	return out
}
