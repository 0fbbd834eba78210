package venue

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Canonicalizer maps raw venue spellings to canonical names. The alias
// table is read-only at runtime; unknown venues pass through unchanged.
type Canonicalizer struct {
	aliases map[string]string
}

// Trailing city/country suffixes that listing sites append to venue names.
var suffixPattern = regexp.MustCompile(`(?i),\s*(dublin|ireland)\b.*$`)

// Spellings seen in the wild across the configured sources. An external
// alias file replaces this table entirely.
var builtinAliases = map[string]string{
	"Vicar St.":                  "Vicar Street",
	"Vicar St":                   "Vicar Street",
	"Whelans":                    "Whelan's",
	"Whelan’s":                   "Whelan's",
	"The Abbey Theatre":          "Abbey Theatre",
	"Abbey Theatre (Main Stage)": "Abbey Theatre",
	"Lighthouse Cinema":          "Light House Cinema",
	"Light House":                "Light House Cinema",
	"3 Arena":                    "3Arena",
	"The 3Arena":                 "3Arena",
}

// Defaults returns a Canonicalizer backed by the built-in alias table.
func Defaults() *Canonicalizer {
	return New(builtinAliases)
}

// New creates a Canonicalizer from an alias map (raw spelling -> canonical).
func New(aliases map[string]string) *Canonicalizer {
	if aliases == nil {
		aliases = map[string]string{}
	}
	return &Canonicalizer{aliases: aliases}
}

// Load reads an alias table from a YAML file of raw -> canonical pairs.
func Load(path string) (*Canonicalizer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading alias table: %w", err)
	}
	var aliases map[string]string
	if err := yaml.Unmarshal(data, &aliases); err != nil {
		return nil, fmt.Errorf("parsing alias table: %w", err)
	}
	return New(aliases), nil
}

// Canonical normalizes a raw venue string. Pure and total: trim, strip the
// trailing ", Dublin…" / ", Ireland…" suffix, then exact-match the cleaned
// string (case-sensitive) against the alias table. No mapping found means
// the cleaned string is returned as-is.
func (c *Canonicalizer) Canonical(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = suffixPattern.ReplaceAllString(cleaned, "")
	cleaned = strings.TrimSpace(cleaned)

	if canonical, ok := c.aliases[cleaned]; ok {
		return canonical
	}
	return cleaned
}
