// Package storage reads and writes JSON records through a kv.Repository.
//
// A missing key is reported as found == false, never as an error. Content
// that does not decode into the destination fails with *ParseError; it is
// never silently replaced by an empty value.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/accessflow/internal/common"
	"github.com/dmitrijs2005/accessflow/internal/repositories/kv"
)

// Record keys used by the services.
const (
	KeyAccounts = "users"
	KeySession  = "user"
	KeyCart     = "cart"
)

// ParseError reports a stored record that is not valid JSON for its type.
type ParseError struct {
	Key string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("corrupted record %q: %v", e.Key, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, common.ErrStorageCorrupted) match any ParseError.
func (e *ParseError) Is(target error) bool {
	return target == common.ErrStorageCorrupted
}

// Record is one key/value pair for WriteMany. Value is encoded as JSON.
type Record struct {
	Key   string
	Value any
}

// Adapter is the persistence adapter shared by the account and cart services.
type Adapter struct {
	repo      kv.Repository
	namespace string
}

// New wraps repo. A non-empty namespace prefixes every key with "namespace:".
func New(repo kv.Repository, namespace string) *Adapter {
	return &Adapter{repo: repo, namespace: namespace}
}

func (a *Adapter) key(k string) string {
	if a.namespace == "" {
		return k
	}
	return a.namespace + ":" + k
}

// Read decodes the record under key into dest.
func (a *Adapter) Read(ctx context.Context, key string, dest any) (bool, error) {
	raw, err := a.repo.Get(ctx, a.key(key))
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if raw == nil {
		return false, nil
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		return false, &ParseError{Key: key, Err: err}
	}
	return true, nil
}

// Write replaces the record under key with the JSON encoding of v.
func (a *Adapter) Write(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := a.repo.Set(ctx, a.key(key), raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Remove deletes the record under key. Removing an absent record succeeds.
func (a *Adapter) Remove(ctx context.Context, key string) error {
	if err := a.repo.Delete(ctx, a.key(key)); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// WriteMany writes all records in one transaction when the repository
// implements kv.Batcher, and one after another otherwise. Nothing is written
// if any record fails to encode.
func (a *Adapter) WriteMany(ctx context.Context, records ...Record) error {
	entries := make([]kv.Entry, 0, len(records))
	for _, r := range records {
		raw, err := json.Marshal(r.Value)
		if err != nil {
			return fmt.Errorf("encode %s: %w", r.Key, err)
		}
		entries = append(entries, kv.Entry{Key: a.key(r.Key), Value: raw})
	}

	if b, ok := a.repo.(kv.Batcher); ok {
		if err := b.SetMany(ctx, entries...); err != nil {
			return fmt.Errorf("write batch: %w", err)
		}
		return nil
	}

	var errs []error
	for i, e := range entries {
		if err := a.repo.Set(ctx, e.Key, e.Value); err != nil {
			errs = append(errs, fmt.Errorf("write %s: %w", records[i].Key, err))
		}
	}
	return errors.Join(errs...)
}
