package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	t.Run("Valid File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
[spotify]
client_id = "cid"
client_secret = "secret"
refresh_token = "rt"

[server]
host = "0.0.0.0"
port = 8080
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if config.Spotify.ClientID != "cid" || config.Spotify.RefreshToken != "rt" {
			t.Errorf("unexpected spotify config: %+v", config.Spotify)
		}
		if config.Server.Addr() != "0.0.0.0:8080" {
			t.Errorf("unexpected addr %s", config.Server.Addr())
		}
		if !config.Spotify.Complete() {
			t.Error("expected complete credentials")
		}
	})

	t.Run("Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected an error for a missing file")
		}
	})

	t.Run("Invalid TOML", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("not [valid"), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		if _, err := LoadConfig(path); err == nil {
			t.Error("expected a parse error")
		}
	})

	t.Run("Environment Overrides File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		content := `
[spotify]
client_id = "file_cid"
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		t.Setenv("SPOTIFY_CLIENT_ID", "env_cid")
		t.Setenv("SPOTIFY_REFRESH_TOKEN", "env_rt")

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if config.Spotify.ClientID != "env_cid" {
			t.Errorf("expected env override, got %s", config.Spotify.ClientID)
		}
		if config.Spotify.RefreshToken != "env_rt" {
			t.Errorf("expected env refresh token, got %s", config.Spotify.RefreshToken)
		}
	})
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	if config.Server.Host != "localhost" || config.Server.Port != 4321 {
		t.Errorf("unexpected default server config: %+v", config.Server)
	}
	if config.Server.Addr() != "localhost:4321" {
		t.Errorf("unexpected default addr %s", config.Server.Addr())
	}
}

func TestSpotifyConfigComplete(t *testing.T) {
	cases := []struct {
		name  string
		creds SpotifyConfig
		want  bool
	}{
		{"all present", SpotifyConfig{ClientID: "a", ClientSecret: "b", RefreshToken: "c"}, true},
		{"missing refresh token", SpotifyConfig{ClientID: "a", ClientSecret: "b"}, false},
		{"empty", SpotifyConfig{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.creds.Complete(); got != tc.want {
				t.Errorf("Complete() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestCreateConfigFile(t *testing.T) {
	t.Run("Creates File", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		config, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("generated config failed to load: %v", err)
		}
		if config.Server.Port != 4321 {
			t.Errorf("unexpected port %d", config.Server.Port)
		}
	})

	t.Run("Refuses To Overwrite", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(path, []byte("existing"), 0644); err != nil {
			t.Fatalf("failed to seed file: %v", err)
		}

		if err := CreateConfigFile(path); err == nil {
			t.Error("expected an error for an existing file")
		}
	})
}
