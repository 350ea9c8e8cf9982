package i18n_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"github.com/artpar/rpcgate/adapters/i18n"
)

func writeBundle(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatalf("write bundle: %v", err)
	}
}

func newTestCatalog(t *testing.T) (*i18n.Catalog, string) {
	t.Helper()
	dir := t.TempDir()
	writeBundle(t, dir, "en.yaml", "add: Adds two numbers.\nadd_a: First addend.\n")
	writeBundle(t, dir, "fr.yaml", "add: Additionne deux nombres.\n")

	cat, err := i18n.NewCatalog(dir, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	return cat, dir
}

func TestCatalog_Lookup(t *testing.T) {
	cat, _ := newTestCatalog(t)

	got, ok := cat.Lookup(language.English, "add")
	if !ok || got != "Adds two numbers." {
		t.Errorf("en add = %q, %v", got, ok)
	}

	got, ok = cat.Lookup(language.French, "add")
	if !ok || got != "Additionne deux nombres." {
		t.Errorf("fr add = %q, %v", got, ok)
	}
}

func TestCatalog_Lookup_RegionalVariantMatchesBase(t *testing.T) {
	cat, _ := newTestCatalog(t)

	got, ok := cat.Lookup(language.MustParse("fr-CA"), "add")
	if !ok || got != "Additionne deux nombres." {
		t.Errorf("fr-CA add = %q, %v", got, ok)
	}
}

func TestCatalog_Lookup_UnknownLocaleFallsBack(t *testing.T) {
	cat, _ := newTestCatalog(t)

	// No Japanese bundle; the fallback bundle (English) serves it.
	got, ok := cat.Lookup(language.Japanese, "add")
	if !ok || got != "Adds two numbers." {
		t.Errorf("ja add = %q, %v", got, ok)
	}
}

func TestCatalog_Lookup_MissingKey(t *testing.T) {
	cat, _ := newTestCatalog(t)

	if _, ok := cat.Lookup(language.English, "nope"); ok {
		t.Error("expected miss for unknown key")
	}
}

func TestCatalog_EmptyDirectory(t *testing.T) {
	cat, err := i18n.NewCatalog(t.TempDir(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	if _, ok := cat.Lookup(language.English, "add"); ok {
		t.Error("empty catalog should always miss")
	}
	if got := len(cat.Locales()); got != 0 {
		t.Errorf("expected no locales, got %d", got)
	}
}

func TestCatalog_MissingDirectory(t *testing.T) {
	if _, err := i18n.NewCatalog(filepath.Join(t.TempDir(), "absent"), zerolog.Nop()); err == nil {
		t.Error("expected error for missing directory")
	}
}

func TestCatalog_BadLocaleTag(t *testing.T) {
	dir := t.TempDir()
	writeBundle(t, dir, "not a tag.yaml", "add: x\n")

	if _, err := i18n.NewCatalog(dir, zerolog.Nop()); err == nil {
		t.Error("expected error for unparseable locale tag")
	}
}

func TestCatalog_Reload(t *testing.T) {
	cat, dir := newTestCatalog(t)

	writeBundle(t, dir, "en.yaml", "add: Updated text.\n")
	if err := cat.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	got, ok := cat.Lookup(language.English, "add")
	if !ok || got != "Updated text." {
		t.Errorf("after reload add = %q, %v", got, ok)
	}
}

func TestCatalog_Reload_BadFileKeepsOldTables(t *testing.T) {
	cat, dir := newTestCatalog(t)

	writeBundle(t, dir, "en.yaml", ":\n  - not a flat map\n")
	if err := cat.Reload(); err == nil {
		t.Fatal("expected reload error")
	}

	got, ok := cat.Lookup(language.English, "add")
	if !ok || got != "Adds two numbers." {
		t.Errorf("old tables should survive a failed reload, got %q, %v", got, ok)
	}
}

func TestCatalog_OnReload(t *testing.T) {
	cat, _ := newTestCatalog(t)

	var calls int
	var lastErr error
	cat.OnReload(func(err error) {
		calls++
		lastErr = err
	})

	if err := cat.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if calls != 1 || lastErr != nil {
		t.Errorf("calls = %d, err = %v", calls, lastErr)
	}
}

func TestCatalog_Watch(t *testing.T) {
	cat, dir := newTestCatalog(t)

	if err := cat.Watch(); err != nil {
		t.Fatalf("Watch: %v", err)
	}
	defer cat.Stop()

	writeBundle(t, dir, "en.yaml", "add: Watched text.\n")

	deadline := time.Now().Add(2 * time.Second)
	for {
		if got, ok := cat.Lookup(language.English, "add"); ok && got == "Watched text." {
			return
		}
		if time.Now().After(deadline) {
			t.Fatal("watched change was not picked up")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
