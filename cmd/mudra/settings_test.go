package main

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSetSetting(t *testing.T) {
	st := newTestStore(t)

	if err := setSetting(st, "particles=800"); err != nil {
		t.Fatalf("setSetting() error = %v", err)
	}
	if v, err := st.Settings().Get("particles"); err != nil || v != "800" {
		t.Errorf("Get(particles) = %q, %v; want 800", v, err)
	}

	for _, pair := range []string{"particles", "=3", "colour=red", "particles=lots", "majority=2"} {
		if err := setSetting(st, pair); !errors.Is(err, config.ErrInvalid) {
			t.Errorf("setSetting(%q) error = %v, want ErrInvalid", pair, err)
		}
	}
	if _, err := st.Settings().Get("majority"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("rejected value was stored: %v", err)
	}
}

func TestSetSetting_RepairsBrokenStore(t *testing.T) {
	st := newTestStore(t)
	if err := st.Settings().Set("majority", "2"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := setSetting(st, "majority=0.6"); err != nil {
		t.Fatalf("setSetting() error = %v", err)
	}
	tun, err := loadTunables(st)
	if err != nil {
		t.Fatalf("loadTunables() error = %v", err)
	}
	if tun.Majority != 0.6 {
		t.Errorf("Majority = %g, want 0.6", tun.Majority)
	}
}

func TestGetSetting(t *testing.T) {
	st := newTestStore(t)

	v, stored, err := getSetting(st, "rasterizer")
	if err != nil {
		t.Fatalf("getSetting() error = %v", err)
	}
	if stored || v != config.Defaults().Settings()["rasterizer"] {
		t.Errorf("getSetting(rasterizer) = %q, %v; want default", v, stored)
	}

	if err := st.Settings().Set("rasterizer", "hershey"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	v, stored, err = getSetting(st, "rasterizer")
	if err != nil || !stored || v != "hershey" {
		t.Errorf("getSetting(rasterizer) = %q, %v, %v; want hershey stored", v, stored, err)
	}

	if _, _, err := getSetting(st, "colour"); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("getSetting(colour) error = %v, want ErrInvalid", err)
	}
}

func TestResetSetting(t *testing.T) {
	st := newTestStore(t)
	if err := st.Settings().SetAll(map[string]string{"particles": "500", "rasterizer": "hershey", "window": "4"}); err != nil {
		t.Fatalf("SetAll() error = %v", err)
	}

	n, err := resetSetting(st, "particles")
	if err != nil || n != 1 {
		t.Fatalf("resetSetting(particles) = %d, %v; want 1", n, err)
	}
	n, err = resetSetting(st, "particles")
	if err != nil || n != 0 {
		t.Errorf("second resetSetting(particles) = %d, %v; want 0", n, err)
	}

	n, err = resetSetting(st, "all")
	if err != nil || n != 2 {
		t.Fatalf("resetSetting(all) = %d, %v; want 2", n, err)
	}
	all, err := st.Settings().All()
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(all) != 0 {
		t.Errorf("All() = %v, want empty", all)
	}
}
