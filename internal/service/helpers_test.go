package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/MKhiriev/go-note-vault/internal/crypto"
	"github.com/MKhiriev/go-note-vault/internal/logger"
	"github.com/MKhiriev/go-note-vault/internal/store"
	"github.com/MKhiriev/go-note-vault/internal/validators"
	"github.com/stretchr/testify/require"
)

// testIterations keeps PBKDF2 fast; every component in a test shares one
// key chain so envelopes stay readable across them.
const testIterations = 64

const testNotesFile = "notes.enc"

// ─────────────────────────────────────────────
// Fakes
// ─────────────────────────────────────────────

// memCredentials is an in-memory store.CredentialStore.
type memCredentials struct {
	mu     sync.Mutex
	values map[string]string

	putAllErr error
}

func newMemCredentials() *memCredentials {
	return &memCredentials{values: make(map[string]string)}
}

func (m *memCredentials) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return "", store.ErrCredentialNotFound
	}
	return v, nil
}

func (m *memCredentials) Put(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

func (m *memCredentials) PutAll(_ context.Context, values map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.putAllErr != nil {
		return m.putAllErr
	}
	for k, v := range values {
		m.values[k] = v
	}
	return nil
}

func (m *memCredentials) Remove(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.values, k)
	}
	return nil
}

func (m *memCredentials) snapshot() map[string]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]string, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}

// countingBlobs wraps a store.BlobStorage and counts writes per name.
type countingBlobs struct {
	store.BlobStorage

	mu     sync.Mutex
	writes map[string]int
}

func newCountingBlobs(inner store.BlobStorage) *countingBlobs {
	return &countingBlobs{BlobStorage: inner, writes: make(map[string]int)}
}

func (c *countingBlobs) Write(ctx context.Context, name string, data []byte) error {
	c.mu.Lock()
	c.writes[name]++
	c.mu.Unlock()
	return c.BlobStorage.Write(ctx, name, data)
}

func (c *countingBlobs) total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, v := range c.writes {
		n += v
	}
	return n
}

// seqIDs hands out "att-1", "att-2", ...
type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (s *seqIDs) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("att-%d", s.n)
}

// ─────────────────────────────────────────────
// Fixture
// ─────────────────────────────────────────────

type fixture struct {
	keyChain    crypto.KeyChainService
	credentials *memCredentials
	blobs       *countingBlobs
	notesBlobs  store.BlobStorage
	attachments AttachmentStore
	notes       NoteVault
	pin         PinAuthority
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	root := t.TempDir()
	log := logger.Nop()

	notesBlobs, err := store.NewBlobFileStorage(root, log)
	require.NoError(t, err)
	attBlobs, err := store.NewBlobFileStorage(root+"/attachments", log)
	require.NoError(t, err)

	f := &fixture{
		keyChain:    crypto.NewKeyChainService(crypto.WithIterations(testIterations)),
		credentials: newMemCredentials(),
		blobs:       newCountingBlobs(attBlobs),
		notesBlobs:  notesBlobs,
	}
	f.attachments = NewAttachmentService(f.blobs, f.keyChain, &seqIDs{}, log)
	f.notes = NewNoteVaultService(notesBlobs, testNotesFile, f.attachments, f.keyChain, log)
	f.pin = NewPinAuthorityService(f.credentials, f.notes, f.attachments, f.keyChain, validators.NewPINValidator(), log)
	return f
}
