// Package qualify applies the admission rules that turn raw provider
// contacts into qualified leads, and normalizes the survivors.
package qualify

import (
	"strings"

	"github.com/ecr-group/leadqual-cli/internal/model"
)

// TitleMatchPolicy selects the job-title relevance rule.
type TitleMatchPolicy string

const (
	// MatchTokenSubset accepts a title when every whitespace token of some
	// keyword appears among the title's tokens, case-insensitively. This is
	// the default: it keeps short keywords like "FC" from matching inside
	// unrelated words.
	MatchTokenSubset TitleMatchPolicy = "token_subset"
	// MatchSubstring accepts a title when any keyword appears as a
	// case-insensitive substring of it.
	MatchSubstring TitleMatchPolicy = "substring"
)

// publicDomains is the denylist of consumer email providers. Leads with a
// public email address are never qualified.
var publicDomains = map[string]struct{}{
	"gmail.com":   {},
	"yahoo.com":   {},
	"hotmail.com": {},
	"outlook.com": {},
}

// Options configures the admission rules.
type Options struct {
	// ConfidenceThreshold rejects contacts whose provider confidence score is
	// below it. Contacts without a score skip this check.
	ConfidenceThreshold int
	// Keywords is the job-title relevance keyword set.
	Keywords []string
	// Policy selects the title matching rule; empty means MatchTokenSubset.
	Policy TitleMatchPolicy
}

// IsPublicEmail reports whether the address belongs to a known consumer
// email provider.
func IsPublicEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	_, ok := publicDomains[strings.ToLower(email[at+1:])]
	return ok
}

// TitleMatches applies the configured title-relevance rule.
func TitleMatches(position string, keywords []string, policy TitleMatchPolicy) bool {
	if position == "" {
		return false
	}

	if policy == MatchSubstring {
		lower := strings.ToLower(position)
		for _, kw := range keywords {
			if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
				return true
			}
		}
		return false
	}

	titleTokens := tokenSet(position)
	for _, kw := range keywords {
		kwTokens := strings.Fields(strings.ToLower(kw))
		if len(kwTokens) == 0 {
			continue
		}
		all := true
		for _, tok := range kwTokens {
			if _, ok := titleTokens[tok]; !ok {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(strings.ToLower(s)) {
		set[tok] = struct{}{}
	}
	return set
}

// Filter applies the admission rules to a batch of raw contacts, in order:
// email present, not a public-domain email, confidence at or above the
// threshold (when the provider supplies a score), and a relevant job title.
// Each check short-circuits; survivors become qualified leads with split
// name parts.
func Filter(contacts []model.RawContact, opts Options) []model.QualifiedLead {
	var qualified []model.QualifiedLead

	for _, c := range contacts {
		if c.Email == "" {
			continue
		}
		if IsPublicEmail(c.Email) {
			continue
		}
		if c.Confidence != nil && *c.Confidence < opts.ConfidenceThreshold {
			continue
		}
		if !TitleMatches(c.Position, opts.Keywords, opts.Policy) {
			continue
		}

		first, last := SplitName(strings.TrimSpace(c.FirstName + " " + c.LastName))
		qualified = append(qualified, model.QualifiedLead{
			Email:       c.Email,
			FirstName:   first,
			LastName:    last,
			Position:    c.Position,
			LinkedInURL: c.LinkedInURL,
			Company:     c.Company,
			Domain:      c.Domain,
			Mobile:      c.Mobile,
			DirectPhone: c.DirectPhone,
			HQPhone:     c.HQPhone,
			Confidence:  c.Confidence,
		})
	}

	return qualified
}
