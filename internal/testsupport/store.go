package testsupport

import (
	"context"
	"testing"

	"wallcrop/internal/config"
	"wallcrop/internal/store"
	"wallcrop/internal/wallpaper"
)

// MustLoadStore loads the metadata store named by cfg, empty if absent.
func MustLoadStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	s, err := store.Load(context.Background(), cfg.Paths.StorePath, store.Options{})
	if err != nil {
		t.Fatalf("store.Load: %v", err)
	}
	return s
}

// SeedStore writes infos to the store at cfg.Paths.StorePath with default
// crops for every configured ratio, then reloads it.
func SeedStore(t testing.TB, cfg *config.Config, infos ...wallpaper.Info) *store.Store {
	t.Helper()

	s := MustLoadStore(t, cfg)
	for _, info := range infos {
		s.Insert(info)
	}
	if err := s.Save(context.Background(), cfg.SortedResolutions()); err != nil {
		t.Fatalf("store.Save: %v", err)
	}
	return MustLoadStore(t, cfg)
}
