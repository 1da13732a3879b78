// Package chat moderates what players say: a banned-word filter and a
// per-speaker flood limiter.
package chat

import (
	"regexp"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Mode is what the filter does with a banned word.
type Mode string

const (
	ModeReplace Mode = "replace" // mask the word with asterisks
	ModeBlock   Mode = "block"   // refuse the whole message
)

// Config is the "chat" section of the server config.
type Config struct {
	Enabled     bool        `yaml:"enabled"`
	Mode        Mode        `yaml:"mode" validate:"omitempty,oneof=replace block"`
	BannedWords []string    `yaml:"banned_words"`
	Flood       FloodConfig `yaml:"flood"`
}

// FloodConfig limits how fast one speaker may talk.
type FloodConfig struct {
	Enabled        bool          `yaml:"enabled"`
	MaxMessages    int           `yaml:"max_messages" validate:"gte=0"`
	Window         time.Duration `yaml:"window" validate:"gte=0"`
	RepeatCooldown time.Duration `yaml:"repeat_cooldown" validate:"gte=0"`
}

// DefaultConfig filters nothing and allows five messages per ten seconds.
func DefaultConfig() Config {
	return Config{
		Mode: ModeReplace,
		Flood: FloodConfig{
			Enabled:        true,
			MaxMessages:    5,
			Window:         10 * time.Second,
			RepeatCooldown: 30 * time.Second,
		},
	}
}

// Result is the outcome of filtering one message.
type Result struct {
	Text     string
	Blocked  bool
	Violated []string
}

// Filter matches banned words on word boundaries, case-insensitively.
type Filter struct {
	mode     Mode
	words    []string
	patterns []*regexp.Regexp
}

// NewFilter compiles cfg. A nil or disabled config passes everything.
func NewFilter(cfg *Config) *Filter {
	f := &Filter{mode: ModeReplace}
	if cfg == nil || !cfg.Enabled {
		return f
	}
	if cfg.Mode != "" {
		f.mode = cfg.Mode
	}
	f.words = lo.Uniq(lo.FilterMap(cfg.BannedWords, func(w string, _ int) (string, bool) {
		w = strings.ToLower(strings.TrimSpace(w))
		return w, w != ""
	}))
	f.patterns = lo.Map(f.words, func(w string, _ int) *regexp.Regexp {
		return regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(w) + `\b`)
	})
	return f
}

// Enabled reports whether any word is banned.
func (f *Filter) Enabled() bool {
	return len(f.patterns) > 0
}

// Check filters msg. In replace mode Text has every banned word masked;
// in block mode a violation sets Blocked and Text is unchanged.
func (f *Filter) Check(msg string) Result {
	res := Result{Text: msg}
	for i, p := range f.patterns {
		if !p.MatchString(msg) {
			continue
		}
		res.Violated = append(res.Violated, f.words[i])
		if f.mode == ModeBlock {
			res.Blocked = true
			continue
		}
		res.Text = p.ReplaceAllStringFunc(res.Text, func(m string) string {
			return strings.Repeat("*", len(m))
		})
	}
	return res
}
