package theme

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadGPL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.gpl")
	data := "GIMP Palette\nName: Test\nColumns: 2\n# comment\n0 0 0\tblack\n255 255 255 white\n300 0 0 bad\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadGPL(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "Test" || len(p.Colors) != 2 {
		t.Fatalf("unexpected palette %+v", p)
	}
}

func TestLoadGPLEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.gpl")
	if err := os.WriteFile(path, []byte("GIMP Palette\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadGPL(path); err == nil {
		t.Error("expected an error for a palette without colors")
	}
}

func TestLoadOrDefault(t *testing.T) {
	p, err := LoadOrDefault("")
	if err != nil || p.Name != "Plasma" {
		t.Errorf("empty path should give Plasma, got %v %v", p.Name, err)
	}
	p, err = LoadOrDefault(filepath.Join(t.TempDir(), "missing.gpl"))
	if err == nil || p == nil || len(p.Colors) == 0 {
		t.Error("missing file should report an error and still return a palette")
	}
}

func TestLookupEndpoints(t *testing.T) {
	p := &Palette{Colors: []RGB{{0, 0, 0}, {255, 255, 255}}}
	if p.Lookup(-1) != (RGB{0, 0, 0}) || p.Lookup(2) != (RGB{255, 255, 255}) {
		t.Error("lookup should clamp to the ends")
	}
	mid := p.Lookup(0.5)
	for _, c := range mid {
		if c < 50 || c > 205 {
			t.Errorf("expected a mid grey, got %v", mid)
		}
	}
}

func TestIndexClamps(t *testing.T) {
	p := Plasma()
	if p.Index(-3) != p.Colors[0] || p.Index(99) != p.Colors[len(p.Colors)-1] {
		t.Error("index should clamp")
	}
}
