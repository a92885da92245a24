package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/cv-studio/internal/observability"
	"github.com/jonathan/cv-studio/internal/persist"
	"github.com/jonathan/cv-studio/internal/schemas"
	"github.com/jonathan/cv-studio/internal/store"
)

// session is the saved editor state opened from the configured backend.
type session struct {
	storage persist.Storage
	store   *store.Store
	report  persist.LoadReport
}

// openSession restores the saved state. The caller must close the session.
func openSession(ctx context.Context) (*session, error) {
	storage, err := persist.Open(ctx, settings.StorageOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", settings.Storage, err)
	}

	report := persist.Load(ctx, storage, settings.StorageKey, observability.Component(logger, "persist"))
	if !report.FromStorage && !report.Discarded {
		report.State.Templates.SelectedTemplate = settings.Template
	}
	st := store.New(report.State, store.WithLogger(observability.Component(logger, "store")))

	return &session{storage: storage, store: st, report: report}, nil
}

// newPersister returns a persister writing to the session storage with the
// configured debounce.
func (s *session) newPersister() *persist.Persister {
	return persist.NewPersister(s.storage,
		persist.WithKey(settings.StorageKey),
		persist.WithDebounce(settings.Debounce()),
		persist.WithMaxBytes(settings.MaxPayloadBytes),
		persist.WithPersistLogger(observability.Component(logger, "persist")),
	)
}

// save writes the current state immediately.
func (s *session) save(ctx context.Context) error {
	return s.newPersister().Save(ctx, s.store.State())
}

func (s *session) Close() error {
	return s.storage.Close()
}

// readDocument loads a CV document from a JSON file. The file holds either
// the saved envelope {"cv": ..., "templates": ...} or a bare CV object.
func readDocument(path string) (store.State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return store.State{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := schemas.ValidateDocument(data); err != nil {
		return store.State{}, fmt.Errorf("%s is not a CV document: %w", path, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return store.State{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if _, ok := fields["cv"]; !ok {
		data, err = json.Marshal(map[string]json.RawMessage{"cv": data})
		if err != nil {
			return store.State{}, err
		}
	}

	report, ok := persist.Decode(data)
	if !ok {
		return store.State{}, fmt.Errorf("failed to parse %s", path)
	}
	if len(report.Repaired) > 0 {
		logger.Warn("ignored malformed fields", "file", path, "fields", report.Repaired)
	}
	return report.State, nil
}

// loadState returns the document at path, or the saved session when path is
// empty.
func loadState(ctx context.Context, path string) (store.State, error) {
	if path != "" {
		return readDocument(path)
	}
	sess, err := openSession(ctx)
	if err != nil {
		return store.State{}, err
	}
	defer sess.Close()
	return sess.store.State(), nil
}
