package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/multierr"

	"github.com/ironsheep/scan-highlights/internal/transform"
)

func mapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv(mapLookup(nil))
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if cfg.ResizeMode != transform.Cover {
		t.Errorf("ResizeMode: got %q", cfg.ResizeMode)
	}
	if cfg.Platform != transform.Android {
		t.Errorf("Platform: got %q", cfg.Platform)
	}
	if cfg.FuzzyDistance != 15 {
		t.Errorf("FuzzyDistance: got %g", cfg.FuzzyDistance)
	}
	if cfg.FrameRateHint != 30 {
		t.Errorf("FrameRateHint: got %g", cfg.FrameRateHint)
	}
	if len(cfg.AxisTable) != 8 {
		t.Errorf("AxisTable: got %d entries", len(cfg.AxisTable))
	}
}

func TestFromEnv_Overrides(t *testing.T) {
	cfg, err := FromEnv(mapLookup(map[string]string{
		EnvResizeMode:    "contain",
		EnvPlatform:      "ios",
		EnvFuzzyDistance: "7.5",
		EnvFrameRate:     "60",
		EnvLogLevel:      "debug",
		EnvFeedURL:       "ws://detector.local/frames",
		EnvListen:        ":8090",
	}))
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}
	if cfg.ResizeMode != transform.Contain || cfg.Platform != transform.IOS {
		t.Errorf("mode/platform: got %q/%q", cfg.ResizeMode, cfg.Platform)
	}
	if cfg.FuzzyDistance != 7.5 || cfg.FrameRateHint != 60 {
		t.Errorf("fuzzy/fps: got %g/%g", cfg.FuzzyDistance, cfg.FrameRateHint)
	}
	if cfg.LogLevel != "debug" || cfg.FeedURL != "ws://detector.local/frames" || cfg.ListenAddr != ":8090" {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestFromEnv_ReportsEveryProblem(t *testing.T) {
	_, err := FromEnv(mapLookup(map[string]string{
		EnvResizeMode:    "zoom",
		EnvPlatform:      "symbian",
		EnvFuzzyDistance: "near",
	}))
	if err == nil {
		t.Fatal("expected an error")
	}
	if n := len(multierr.Errors(err)); n != 3 {
		t.Errorf("expected 3 errors, got %d: %v", n, err)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.FuzzyDistance = -1
	cfg.FrameRateHint = -30
	cfg.LogLevel = "shouty"

	err := cfg.Validate()
	if n := len(multierr.Errors(err)); n != 3 {
		t.Errorf("expected 3 errors, got %d: %v", n, err)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte(EnvResizeMode+"=stretch\n"), 0o644); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	t.Setenv(EnvResizeMode, "")
	os.Unsetenv(EnvResizeMode)

	cfg, err := Load(filepath.Join(dir, "missing.env"), path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ResizeMode != transform.Stretch {
		t.Errorf("ResizeMode: got %q, want stretch", cfg.ResizeMode)
	}
}

func TestFromEnv_AxisTableFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "axis.json")
	table := `{
		"axis": [{"platform": "ios", "orientation": "landscape-left", "transform": {"mirrorX": true}}],
		"layout": [{"platform": "android", "orientation": "portrait", "swap": true}]
	}`
	if err := os.WriteFile(path, []byte(table), 0o644); err != nil {
		t.Fatalf("write table: %v", err)
	}

	cfg, err := FromEnv(mapLookup(map[string]string{EnvAxisTable: path}))
	if err != nil {
		t.Fatalf("FromEnv failed: %v", err)
	}

	key := transform.TableKey{Platform: transform.IOS, Orientation: transform.LandscapeLeft}
	if cfg.AxisTable[key] != (transform.AxisTransform{MirrorX: true}) {
		t.Errorf("override not applied: %+v", cfg.AxisTable[key])
	}
	portrait := transform.TableKey{Platform: transform.IOS, Orientation: transform.Portrait}
	if cfg.AxisTable[portrait] != (transform.AxisTransform{SwapXY: true}) {
		t.Errorf("default entry lost: %+v", cfg.AxisTable[portrait])
	}
	if !cfg.LayoutTable[transform.TableKey{Platform: transform.Android, Orientation: transform.Portrait}] {
		t.Error("layout override not applied")
	}
}

func TestParseTables_RejectsBadKeys(t *testing.T) {
	data := []byte(`{
		"axis": [
			{"platform": "ios", "orientation": "sideways"},
			{"orientation": "portrait"}
		],
		"layout": [{"platform": "palm", "orientation": "portrait", "swap": true}]
	}`)

	_, _, err := ParseTables(data, transform.DefaultAxisTable(), transform.DefaultLayoutTable())
	if n := len(multierr.Errors(err)); n != 3 {
		t.Fatalf("expected 3 errors, got %d: %v", n, err)
	}
	if !strings.Contains(err.Error(), "axis[0]") || !strings.Contains(err.Error(), "layout[0]") {
		t.Errorf("errors should name the entry: %v", err)
	}
}

func TestParseTables_DoesNotMutateInputs(t *testing.T) {
	axis := transform.DefaultAxisTable()
	data := []byte(`{"axis": [{"platform": "android", "orientation": "portrait", "transform": {"swapXY": true}}]}`)

	if _, _, err := ParseTables(data, axis, transform.DefaultLayoutTable()); err != nil {
		t.Fatalf("ParseTables failed: %v", err)
	}
	if axis[transform.TableKey{Platform: transform.Android, Orientation: transform.Portrait}] != transform.Identity {
		t.Error("input table was modified")
	}
}
