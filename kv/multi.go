package kv

import (
	"context"

	"github.com/jrsteele09/go-employee-console/internal/errors"
)

var (
	_ KeyValueStore = (*Multi)(nil)
	_ Watcher       = (*Multi)(nil)
	_ BatchWriter   = (*Multi)(nil)
)

// Multi writes to every backing store and reads from the first store that
// has the key. Del removes the key from all of them, so a session written
// to several places is cleared from every place.
//
// Each Get is resolved on its own, so two keys read one after another can
// come from different backends. Use GetAll when values must be read
// together.
type Multi struct {
	stores []KeyValueStore
}

func NewMulti(stores ...KeyValueStore) *Multi {
	return &Multi{stores: stores}
}

func (m *Multi) Get(ctx context.Context, key string) (string, error) {
	var errs []error
	for _, s := range m.stores {
		value, err := s.Get(ctx, key)
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, ErrNotFound) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return "", errors.Join(errs...)
	}
	return "", ErrNotFound
}

func (m *Multi) Set(ctx context.Context, key, value string) error {
	var errs []error
	for _, s := range m.stores {
		if err := s.Set(ctx, key, value); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SetAll writes values to every backend, in one operation on backends
// that support it
func (m *Multi) SetAll(ctx context.Context, values map[string]string) error {
	var errs []error
	for _, s := range m.stores {
		if bw, ok := s.(BatchWriter); ok {
			if err := bw.SetAll(ctx, values); err != nil {
				errs = append(errs, err)
			}
			continue
		}
		for key, value := range values {
			if err := s.Set(ctx, key, value); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) Del(ctx context.Context, key string) error {
	var errs []error
	for _, s := range m.stores {
		if err := s.Del(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// GetAll reads keys from the first backend that holds the first key, so
// related values are never mixed across backends. Missing later keys are
// left out of the result.
func (m *Multi) GetAll(ctx context.Context, keys ...string) (map[string]string, error) {
	if len(keys) == 0 {
		return map[string]string{}, nil
	}

	var errs []error
	for _, s := range m.stores {
		first, err := s.Get(ctx, keys[0])
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}

		values := map[string]string{keys[0]: first}
		for _, key := range keys[1:] {
			value, err := s.Get(ctx, key)
			if errors.Is(err, ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, err
			}
			values[key] = value
		}
		return values, nil
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return nil, ErrNotFound
}

// Watch watches every backend that supports it. It returns ErrUnsupported
// when none does.
func (m *Multi) Watch(ctx context.Context, onChange func()) error {
	watched := 0
	for _, s := range m.stores {
		w, ok := s.(Watcher)
		if !ok {
			continue
		}
		if err := w.Watch(ctx, onChange); err != nil {
			return err
		}
		watched++
	}
	if watched == 0 {
		return errors.ErrUnsupported
	}
	return nil
}
