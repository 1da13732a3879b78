// Package text loads the banner and message of the day shown to new
// connections.
package text

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultBanner is shown when no text file is configured.
const DefaultBanner = "Welcome to Hearth!"

// Text is the contents of the text file.
type Text struct {
	Banner string   `yaml:"banner"`
	MOTD   []string `yaml:"motd"`
}

// Default returns the built-in text.
func Default() *Text {
	return &Text{
		Banner: DefaultBanner,
		MOTD:   []string{"Type 'login <name> <password>' or 'register <name> <password>'."},
	}
}

// Load reads a text file. Missing keys fall back to Default.
func Load(path string) (*Text, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read text file: %w", err)
	}

	t := Default()
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to parse text file: %w", err)
	}
	if strings.TrimSpace(t.Banner) == "" {
		t.Banner = DefaultBanner
	}
	return t, nil
}

// Welcome is the banner followed by the message of the day, one entry per
// line, without trailing whitespace.
func (t *Text) Welcome() string {
	lines := append([]string{strings.TrimRight(t.Banner, "\n ")}, t.MOTD...)
	return strings.Join(lines, "\n")
}
