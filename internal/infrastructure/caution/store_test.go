package caution

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeCautions(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cautions.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing caution file: %v", err)
	}
	return path
}

func TestNewStore(t *testing.T) {
	path := writeCautions(t, `{
		"Salicylic Acid": ["keep away from eyes", "not for children under 3"],
		"Retinol": ["avoid during pregnancy"],
		"No Texts": []
	}`)

	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}

	out, err := store.CautionsFor(context.Background(), []string{"SALICYLIC ACID", "Glycerin", "retinol"})
	if err != nil {
		t.Fatalf("CautionsFor returned error: %v", err)
	}

	// Keys are the submitted originals, lookup is normalized.
	want := map[string][]string{
		"SALICYLIC ACID": {"keep away from eyes", "not for children under 3"},
		"retinol":        {"avoid during pregnancy"},
	}
	if !reflect.DeepEqual(out, want) {
		t.Errorf("cautions = %v, want %v", out, want)
	}
}

func TestNewStoreErrors(t *testing.T) {
	if _, err := NewStore(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := NewStore(writeCautions(t, "[1,2,3]")); err == nil {
		t.Error("expected error for wrong JSON shape")
	}
}

func TestEmpty(t *testing.T) {
	store := Empty()
	out, err := store.CautionsFor(context.Background(), []string{"Anything"})
	if err != nil {
		t.Fatalf("CautionsFor returned error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("cautions = %v, want empty", out)
	}
}
