package sequencer

import (
	"os"
	"path/filepath"
	"testing"

	"go-melodium/slew"
)

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested", "state.json"))
	bank := newTestBank(t, 3)
	snap := &Snapshot{
		PatternBank: bank.Patterns(),
		CycleMode:   true,
		PatternSlot: 1,
		Shape:       slew.ShapeSharkTooth,
		CycleCode:   "0012",
	}
	if err := store.Save(snap); err != nil {
		t.Fatal(err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if loaded.CycleMode != snap.CycleMode || loaded.PatternSlot != snap.PatternSlot ||
		loaded.Shape != snap.Shape || loaded.CycleCode != snap.CycleCode {
		t.Errorf("loaded %+v, want %+v", loaded, snap)
	}
	for ch := range snap.PatternBank {
		for s := range snap.PatternBank[ch] {
			if loaded.PatternBank[ch][s] != snap.PatternBank[ch][s] {
				t.Fatalf("pattern %d/%d differs after round trip", ch, s)
			}
		}
	}

	// saving what was loaded changes nothing
	first, _ := os.ReadFile(store.Path)
	if err := store.Save(loaded); err != nil {
		t.Fatal(err)
	}
	second, _ := os.ReadFile(store.Path)
	if string(first) != string(second) {
		t.Error("save(load()) is not idempotent")
	}
}

func TestStoreLoadMissing(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "state.json"))
	snap, err := store.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.PatternBank) != 0 {
		t.Errorf("expected empty snapshot, got %d channels", len(snap.PatternBank))
	}
}

func TestStoreLoadCorrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewStore(path).Load(); err == nil {
		t.Error("expected an error for a corrupt file")
	}
}

func TestValidCycleCode(t *testing.T) {
	for _, code := range CycleCodes {
		if !ValidCycleCode(code) {
			t.Errorf("preset %q should be valid", code)
		}
	}
	for _, code := range []string{"", "0a", "0124", "-1"} {
		if ValidCycleCode(code) {
			t.Errorf("%q should be invalid", code)
		}
	}
	if NextCycleCode("0123") != "0000" {
		t.Errorf("expected wrap to the first preset")
	}
	if NextCycleCode("9999") != "0000" {
		t.Errorf("unknown codes should restart at the first preset")
	}
}

func TestFormatPattern(t *testing.T) {
	p := Pattern{1, 2.5, 8.125}
	if got := FormatPattern(&p, 3); got != "1.000 2.500 8.125" {
		t.Errorf("unexpected %q", got)
	}
}
