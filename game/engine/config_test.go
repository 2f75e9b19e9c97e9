package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultGameConfig(t *testing.T) {
	config := DefaultGameConfig()
	if err := ValidateGameConfig(config); err != nil {
		t.Fatalf("default config failed validation: %v", err)
	}
	if config.Board != DefaultBoard {
		t.Errorf("default board = %q, want %q", config.Board, DefaultBoard)
	}
}

func TestValidateGameConfig(t *testing.T) {
	tests := []struct {
		name    string
		config  *GameConfig
		wantErr bool
	}{
		{"valid", &GameConfig{Name: "ok", Board: DefaultBoard}, false},
		{"nil config", nil, true},
		{"missing name", &GameConfig{Board: DefaultBoard}, true},
		{"missing board", &GameConfig{Name: "ok"}, true},
		{"too few sections", &GameConfig{Name: "ok", Board: "3|3"}, true},
		{"non-numeric rows", &GameConfig{Name: "ok", Board: "x|3|00"}, true},
		{"oversized board", &GameConfig{Name: "ok", Board: "65|3|00"}, true},
		{"zero rows", &GameConfig{Name: "ok", Board: "0|3|00"}, true},
		{"two bare keys", &GameConfig{Name: "ok", Board: "1|5|13|00|14|02|14"}, true},
		{"bare key plus locked pair", &GameConfig{Name: "ok", Board: "2|3|13|00|14|12|00|14"}, false},
	}

	for _, tt := range tests {
		err := ValidateGameConfig(tt.config)
		if (err != nil) != tt.wantErr {
			t.Errorf("%s: error = %v, wantErr %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestLoadGameConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "level.json")
	contents := `{"name":"level","description":"test level","board":"` + DefaultBoard + `","seed":7}`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := LoadGameConfig(path)
	if err != nil {
		t.Fatalf("LoadGameConfig failed: %v", err)
	}
	if config.Name != "level" || config.Seed != 7 {
		t.Errorf("loaded config = %+v", config)
	}

	if _, err := LoadGameConfig(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected an error for a missing file")
	}

	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte(`{"name":""}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadGameConfig(bad); err == nil {
		t.Error("expected a validation error for an invalid config")
	}
}

func TestLoadConfigByNameUsesConfigDir(t *testing.T) {
	dir := t.TempDir()
	contents := `{"name":"alt","board":"` + DefaultBoard + `"}`
	if err := os.WriteFile(filepath.Join(dir, "alt.json"), []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_DIR", dir)

	config, err := LoadConfigByName("alt")
	if err != nil {
		t.Fatalf("LoadConfigByName failed: %v", err)
	}
	if config.Name != "alt" {
		t.Errorf("loaded config name = %q, want %q", config.Name, "alt")
	}
}
