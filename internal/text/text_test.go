package text

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "text.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeFile(t, `
banner: |
  ==============
   Test Hearth
  ==============
motd:
  - "Be kind."
  - "Have fun."
`)
	txt, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	exp := "==============\n Test Hearth\n==============\nBe kind.\nHave fun."
	if got := txt.Welcome(); got != exp {
		t.Errorf("Welcome() = %q, want %q", got, exp)
	}
}

func TestLoadBlankBannerUsesDefault(t *testing.T) {
	txt, err := Load(writeFile(t, "motd: []\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if txt.Banner != DefaultBanner {
		t.Errorf("Expected default banner, got %q", txt.Banner)
	}
	if txt.Welcome() != DefaultBanner {
		t.Errorf("Expected only the banner, got %q", txt.Welcome())
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
	if _, err := Load(writeFile(t, "banner: [unclosed")); err == nil {
		t.Error("Expected error for invalid YAML")
	}
}
