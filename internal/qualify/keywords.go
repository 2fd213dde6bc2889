package qualify

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// defaultKeywords targets financial decision-makers. Overridable via a
// keywords YAML file (see LoadKeywords).
var defaultKeywords = []string{
	"CFO",
	"Chief Financial Officer",
	"Finance Director",
	"Director of Finance",
	"VP Finance",
	"Head of Finance",
	"Financial Controller",
	"Controller",
	"Treasurer",
	"Finance Manager",
	"Head of Treasury",
	"Financial Director",
}

// DefaultKeywords returns a copy of the built-in job-title keyword set.
func DefaultKeywords() []string {
	out := make([]string, len(defaultKeywords))
	copy(out, defaultKeywords)
	return out
}

// keywordFile is the YAML schema for a keyword override file.
type keywordFile struct {
	Keywords []string `yaml:"keywords"`
}

// LoadKeywords reads a job-title keyword set from a YAML file.
func LoadKeywords(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "qualify: read keywords file")
	}

	var kf keywordFile
	if err := yaml.Unmarshal(raw, &kf); err != nil {
		return nil, eris.Wrap(err, "qualify: parse keywords file")
	}
	if len(kf.Keywords) == 0 {
		return nil, eris.New("qualify: keywords file has no keywords")
	}

	return kf.Keywords, nil
}
