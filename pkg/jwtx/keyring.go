package jwtx

import (
	"errors"
	"fmt"
	"sync"
)

// MinSecretLength is the minimum accepted HMAC secret length in bytes.
// Anything shorter than 32 bytes undercuts the SHA-256 security level.
const MinSecretLength = 32

// LegacyKID is the synthetic key id assigned when only a single unkeyed
// secret is configured.
const LegacyKID = "legacy"

var (
	// ErrNoKeys reports that no usable signing key was configured. The
	// service cannot start in this state.
	ErrNoKeys = errors.New("jwtx: no signing keys configured")

	// ErrUnknownKID reports a rotation attempt to a kid that is not
	// registered in the ring.
	ErrUnknownKID = errors.New("jwtx: unknown kid")
)

// KeyConfig is a single configured signing key.
type KeyConfig struct {
	KID    string
	Secret string
}

// KeyRing holds the symmetric signing keys for token issuance and
// validation. Exactly one kid is active for signing new tokens; every
// registered key remains valid for verification so tokens signed before a
// rotation keep working. The ring is immutable after construction except
// for Rotate, which swaps the active kid under the write lock so readers
// never observe a partial update.
type KeyRing struct {
	mu     sync.RWMutex
	keys   map[string][]byte
	active string
}

// NewKeyRing builds a ring from the configured key list.
//
// Entries with a blank kid or a secret shorter than MinSecretLength are
// silently dropped. The active kid defaults to the last configured entry
// unless activeKID overrides it. When the keyed list yields nothing but a
// legacy secret is present, that secret becomes the sole key under
// LegacyKID. With neither, construction fails with ErrNoKeys.
func NewKeyRing(keys []KeyConfig, activeKID, legacySecret string) (*KeyRing, error) {
	ring := &KeyRing{keys: make(map[string][]byte, len(keys))}

	lastAccepted := ""
	for _, k := range keys {
		if k.KID == "" || len(k.Secret) < MinSecretLength {
			continue
		}
		ring.keys[k.KID] = []byte(k.Secret)
		lastAccepted = k.KID
	}

	switch {
	case len(ring.keys) > 0:
		ring.active = lastAccepted
		if activeKID != "" {
			ring.active = activeKID
		}
		if _, ok := ring.keys[ring.active]; !ok {
			return nil, fmt.Errorf("%w: active kid %q", ErrUnknownKID, ring.active)
		}
	case legacySecret != "":
		ring.active = LegacyKID
		ring.keys[LegacyKID] = []byte(legacySecret)
	default:
		return nil, ErrNoKeys
	}

	return ring, nil
}

// ActiveKID returns the kid currently used for signing.
func (r *KeyRing) ActiveKID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active
}

// SigningKey returns the active kid and its secret.
func (r *KeyRing) SigningKey() (string, []byte) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active, r.keys[r.active]
}

// Lookup returns the secret for kid, or false when the kid is not
// registered.
func (r *KeyRing) Lookup(kid string) ([]byte, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	secret, ok := r.keys[kid]
	return secret, ok
}

// AllSecrets returns every registered secret. Verifiers fall back to this
// set when a token carries no kid or an unrecognised one.
func (r *KeyRing) AllSecrets() [][]byte {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([][]byte, 0, len(r.keys))
	for _, secret := range r.keys {
		out = append(out, secret)
	}
	return out
}

// KIDs returns the registered key ids. Order is unspecified.
func (r *KeyRing) KIDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.keys))
	for kid := range r.keys {
		out = append(out, kid)
	}
	return out
}

// Rotate makes kid the active signing key. The kid must already be
// registered; rotation never adds or removes key material. Safe to call
// concurrently with ongoing validations.
func (r *KeyRing) Rotate(kid string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.keys[kid]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownKID, kid)
	}
	r.active = kid
	return nil
}
