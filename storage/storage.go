package storage

import (
	"context"
	"errors"
	"fmt"

	"vidpace-sender/models"
)

// KeyPrefix is prepended to every field name to build its storage key.
const KeyPrefix = "vidpace_"

// ErrSecretField is returned when a caller tries to persist a credential.
var ErrSecretField = errors.New("storage: credential fields are never persisted")

// Store is a string key/value store with the shape of browser local storage.
// A missing key is reported as ok == false with a nil error.
type Store interface {
	GetItem(ctx context.Context, key string) (value string, ok bool, err error)
	SetItem(ctx context.Context, key, value string) error
	RemoveItem(ctx context.Context, key string) error
}

// FieldKey returns the storage key for a form field.
func FieldKey(field string) string {
	return KeyPrefix + field
}

// LoadFields reads every non-credential field. Fields never saved are left empty.
func LoadFields(ctx context.Context, s Store) (models.EmailRequest, error) {
	var req models.EmailRequest
	for _, f := range models.Fields {
		if models.IsSecret(f) {
			continue
		}
		v, ok, err := s.GetItem(ctx, FieldKey(f))
		if err != nil {
			return req, fmt.Errorf("load %s: %w", f, err)
		}
		if ok && v != "" {
			req.Set(f, v)
		}
	}
	return req, nil
}

// SaveField writes one field. Credentials are rejected with ErrSecretField.
func SaveField(ctx context.Context, s Store, field, value string) error {
	if models.IsSecret(field) {
		return ErrSecretField
	}
	if err := s.SetItem(ctx, FieldKey(field), value); err != nil {
		return fmt.Errorf("save %s: %w", field, err)
	}
	return nil
}

// ClearFields removes the key of every form field, credential included, so
// nothing written by an older version survives a clear.
func ClearFields(ctx context.Context, s Store) error {
	var errs []error
	for _, f := range models.Fields {
		if err := s.RemoveItem(ctx, FieldKey(f)); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", f, err))
		}
	}
	return errors.Join(errs...)
}

type scoped struct {
	inner Store
	scope string
}

// Scoped namespaces keys under scope, giving each browser session its own
// view of a shared store.
func Scoped(s Store, scope string) Store {
	return &scoped{inner: s, scope: scope}
}

func (s *scoped) key(k string) string { return s.scope + ":" + k }

func (s *scoped) GetItem(ctx context.Context, key string) (string, bool, error) {
	return s.inner.GetItem(ctx, s.key(key))
}

func (s *scoped) SetItem(ctx context.Context, key, value string) error {
	return s.inner.SetItem(ctx, s.key(key), value)
}

func (s *scoped) RemoveItem(ctx context.Context, key string) error {
	return s.inner.RemoveItem(ctx, s.key(key))
}
