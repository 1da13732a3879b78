// Package namefilter rejects character names that are reserved or offensive.
package namefilter

import (
	"errors"
	"strings"

	"github.com/samber/lo"
)

var (
	// ErrBannedName means the whole name is reserved.
	ErrBannedName = errors.New("that name is not allowed")
	// ErrBannedWord means the name contains a banned word.
	ErrBannedWord = errors.New("that name contains a word that is not allowed")
)

// Config is the "names" section of the server config.
type Config struct {
	Enabled     bool     `yaml:"enabled"`
	BannedWords []string `yaml:"banned_words"`
	BannedNames []string `yaml:"banned_names"`
}

// Filter checks names case-insensitively. Banned names match exactly,
// banned words match anywhere in the name.
type Filter struct {
	enabled bool
	words   []string
	names   []string
}

func normalize(list []string) []string {
	return lo.Uniq(lo.FilterMap(list, func(s string, _ int) (string, bool) {
		s = strings.ToLower(strings.TrimSpace(s))
		return s, s != ""
	}))
}

// New builds a filter. A nil config yields a filter that allows everything.
func New(cfg *Config) *Filter {
	if cfg == nil {
		return &Filter{}
	}
	return &Filter{
		enabled: cfg.Enabled,
		words:   normalize(cfg.BannedWords),
		names:   normalize(cfg.BannedNames),
	}
}

// Check returns nil when name is allowed.
func (f *Filter) Check(name string) error {
	if !f.enabled {
		return nil
	}
	lower := strings.ToLower(name)
	if lo.Contains(f.names, lower) {
		return ErrBannedName
	}
	if lo.SomeBy(f.words, func(w string) bool { return strings.Contains(lower, w) }) {
		return ErrBannedWord
	}
	return nil
}

// Enabled reports whether the filter rejects anything.
func (f *Filter) Enabled() bool {
	return f.enabled
}
