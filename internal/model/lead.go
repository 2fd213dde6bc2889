package model

// RawContact is a single contact record as returned by the contact-discovery
// provider. Optional provider fields are resolved to explicit defaults at
// ingestion; Confidence is nil when the provider does not expose a score.
type RawContact struct {
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Position    string `json:"position"`
	LinkedInURL string `json:"linkedin_url"`
	Company     string `json:"company"`
	Domain      string `json:"domain"`
	Mobile      string `json:"mobile"`
	DirectPhone string `json:"direct_phone"`
	HQPhone     string `json:"hq_phone"`
	Confidence  *int   `json:"confidence,omitempty"`
}

// QualifiedLead is a contact that survived all admission filters.
type QualifiedLead struct {
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Position    string `json:"position"`
	LinkedInURL string `json:"linkedin_url"`
	Company     string `json:"company"`
	Domain      string `json:"domain"`
	Mobile      string `json:"mobile,omitempty"`
	DirectPhone string `json:"direct_phone,omitempty"`
	HQPhone     string `json:"hq_phone,omitempty"`
	Confidence  *int   `json:"confidence,omitempty"`
}

// FullName joins the split name parts back into a display name.
func (l QualifiedLead) FullName() string {
	if l.FirstName == "" {
		return l.LastName
	}
	if l.LastName == "" {
		return l.FirstName
	}
	return l.FirstName + " " + l.LastName
}

// GenerationMode identifies how an outreach message was produced.
type GenerationMode string

const (
	ModeTemplated GenerationMode = "templated"
	ModeGenerated GenerationMode = "generated"
)

// Tone is a message style directive for generated outreach messages.
type Tone string

const (
	ToneFriendly   Tone = "Friendly"
	ToneFormal     Tone = "Formal"
	ToneDataDriven Tone = "Data-driven"
	ToneShortPunch Tone = "Short & Punchy"
)

// Tones lists the supported tones in display order.
func Tones() []Tone {
	return []Tone{ToneFriendly, ToneFormal, ToneDataDriven, ToneShortPunch}
}

// ValidTone reports whether s names a supported tone.
func ValidTone(s string) bool {
	for _, t := range Tones() {
		if string(t) == s {
			return true
		}
	}
	return false
}

// OutreachMessage is one personalized message, keyed to its lead by email.
type OutreachMessage struct {
	LeadEmail   string         `json:"lead_email"`
	Text        string         `json:"text"`
	Mode        GenerationMode `json:"mode"`
	Tone        Tone           `json:"tone,omitempty"`
	Instruction string         `json:"instruction,omitempty"`
	Fallback    bool           `json:"fallback,omitempty"`
}
