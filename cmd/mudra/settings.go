package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/store"
)

var (
	getKey   = flag.String("get", "", "Print a stored setting and exit")
	resetKey = flag.String("reset", "", "Delete a stored setting (or \"all\") and exit")
	setPairs []string
)

func init() {
	flag.Func("set", "Store a setting as key=value and exit (repeatable)", func(s string) error {
		setPairs = append(setPairs, s)
		return nil
	})
}

// runSettings handles -set, -get and -reset. It reports whether one of
// them was given, in which case the app should not start.
func runSettings(st *store.Store, w io.Writer) (bool, error) {
	switch {
	case len(setPairs) > 0:
		for _, pair := range setPairs {
			if err := setSetting(st, pair); err != nil {
				return true, err
			}
			fmt.Fprintf(w, "set %s\n", pair)
		}
		return true, nil

	case *getKey != "":
		v, stored, err := getSetting(st, *getKey)
		if err != nil {
			return true, err
		}
		if stored {
			fmt.Fprintf(w, "%s=%s\n", *getKey, v)
		} else {
			fmt.Fprintf(w, "%s=%s (default)\n", *getKey, v)
		}
		return true, nil

	case *resetKey != "":
		n, err := resetSetting(st, *resetKey)
		if err != nil {
			return true, err
		}
		fmt.Fprintf(w, "reset %d setting(s)\n", n)
		return true, nil
	}
	return false, nil
}

// setSetting validates key=value against the tunables stored so far and
// persists it.
func setSetting(st *store.Store, pair string) error {
	key, value, ok := strings.Cut(pair, "=")
	if !ok || key == "" {
		return fmt.Errorf("%w: %q is not key=value", config.ErrInvalid, pair)
	}
	if !slices.Contains(config.Keys(), key) {
		return fmt.Errorf("%w: unknown setting %q", config.ErrInvalid, key)
	}

	tun := config.Defaults()
	stored, err := st.Settings().All()
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	// A broken stored set should not block repairing it.
	_ = tun.Apply(stored)
	if err := tun.Apply(map[string]string{key: value}); err != nil {
		return err
	}

	if err := st.Settings().Set(key, value); err != nil {
		return fmt.Errorf("save setting %s: %w", key, err)
	}
	return nil
}

// getSetting returns the stored value of key, or its default when unset.
func getSetting(st *store.Store, key string) (string, bool, error) {
	v, err := st.Settings().Get(key)
	if err == nil {
		return v, true, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return "", false, fmt.Errorf("load setting %s: %w", key, err)
	}

	def, ok := config.Defaults().Settings()[key]
	if !ok {
		return "", false, fmt.Errorf("%w: unknown setting %q", config.ErrInvalid, key)
	}
	return def, false, nil
}

// resetSetting deletes key, or every stored setting for "all", and returns
// how many were removed.
func resetSetting(st *store.Store, key string) (int, error) {
	keys := []string{key}
	if key == "all" {
		stored, err := st.Settings().All()
		if err != nil {
			return 0, fmt.Errorf("load settings: %w", err)
		}
		keys = keys[:0]
		for k := range stored {
			keys = append(keys, k)
		}
	}

	n := 0
	for _, k := range keys {
		err := st.Settings().Delete(k)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return n, fmt.Errorf("delete setting %s: %w", k, err)
		}
		n++
	}
	return n, nil
}
