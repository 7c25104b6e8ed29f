package kv

import (
	"context"

	"hrdesk/internal/platform/crypto"
)

// Encrypted seals values before they reach the wrapped backend. Keys stay in
// the clear so collections can still be listed.
type Encrypted struct {
	Backend
	svc *crypto.Service
}

func NewEncrypted(inner Backend, svc *crypto.Service) *Encrypted {
	return &Encrypted{Backend: inner, svc: svc}
}

func (e *Encrypted) Get(ctx context.Context, key string) (string, bool, error) {
	value, ok, err := e.Backend.Get(ctx, key)
	if err != nil || !ok {
		return value, ok, err
	}
	plain, err := e.svc.OpenText(value)
	if err != nil {
		return "", false, err
	}
	return plain, true, nil
}

func (e *Encrypted) Set(ctx context.Context, key, value string) error {
	sealed, err := e.svc.SealText(value)
	if err != nil {
		return err
	}
	return e.Backend.Set(ctx, key, sealed)
}

func (e *Encrypted) SetMulti(ctx context.Context, entries map[string]string) error {
	sealed := make(map[string]string, len(entries))
	for key, value := range entries {
		s, err := e.svc.SealText(value)
		if err != nil {
			return err
		}
		sealed[key] = s
	}
	return e.Backend.SetMulti(ctx, sealed)
}
