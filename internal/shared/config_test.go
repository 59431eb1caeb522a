package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Credentials.AppleMusic.Storefront != "us" {
		t.Errorf("Storefront = %q, want %q", config.Credentials.AppleMusic.Storefront, "us")
	}
	if config.Matching.FuzzyThreshold != 0.7 {
		t.Errorf("FuzzyThreshold = %v, want 0.7", config.Matching.FuzzyThreshold)
	}
	if config.Matching.Workers != 10 {
		t.Errorf("Workers = %d, want 10", config.Matching.Workers)
	}
	if !config.Matching.EnableFuzzy {
		t.Error("EnableFuzzy = false, want true")
	}
	if config.Pacing.AppleMusicMS != 110 {
		t.Errorf("AppleMusicMS = %d, want 110", config.Pacing.AppleMusicMS)
	}
	if config.Pacing.MusicBrainzMS != 1000 {
		t.Errorf("MusicBrainzMS = %d, want 1000", config.Pacing.MusicBrainzMS)
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	content := `
[credentials.spotify]
client_id = "abc"
client_secret = "def"

[credentials.apple_music]
developer_token = "devtok"
storefront = "fr"

[matching]
fuzzy_threshold = 0.8
workers = 4
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}

	if config.Credentials.Spotify.ClientID != "abc" {
		t.Errorf("ClientID = %q, want %q", config.Credentials.Spotify.ClientID, "abc")
	}
	if config.Credentials.AppleMusic.Storefront != "fr" {
		t.Errorf("Storefront = %q, want %q", config.Credentials.AppleMusic.Storefront, "fr")
	}
	if config.Matching.FuzzyThreshold != 0.8 {
		t.Errorf("FuzzyThreshold = %v, want 0.8", config.Matching.FuzzyThreshold)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("LoadConfig() succeeded for missing file")
	}
}

func TestLoadConfigInvalidTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(path, []byte("[credentials\nbroken"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("LoadConfig() succeeded for invalid TOML")
	}
}

func TestSaveConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	config := DefaultConfig()
	config.Credentials.Spotify.AccessToken = "tok123"
	config.Credentials.Spotify.RefreshToken = "ref456"

	if err := SaveConfig(path, config); err != nil {
		t.Fatalf("SaveConfig() returned error: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("file mode = %v, want 0600", info.Mode().Perm())
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() returned error: %v", err)
	}
	if loaded.Credentials.Spotify.AccessToken != "tok123" {
		t.Errorf("AccessToken = %q, want %q", loaded.Credentials.Spotify.AccessToken, "tok123")
	}
	if loaded.Credentials.Spotify.RefreshToken != "ref456" {
		t.Errorf("RefreshToken = %q, want %q", loaded.Credentials.Spotify.RefreshToken, "ref456")
	}
}

func TestCreateConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := CreateConfigFile(path); err != nil {
		t.Fatalf("CreateConfigFile() returned error: %v", err)
	}

	if err := CreateConfigFile(path); err == nil {
		t.Error("CreateConfigFile() succeeded for existing file")
	}
}
