package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-note-vault/internal/crypto"
	"github.com/MKhiriev/go-note-vault/internal/logger"
	"github.com/MKhiriev/go-note-vault/internal/store"
	"github.com/MKhiriev/go-note-vault/models"
)

type noteVaultService struct {
	blobs       store.BlobStorage
	fileName    string
	attachments AttachmentStore
	keyChain    crypto.KeyChainService
	logger      *logger.Logger
}

// NewNoteVaultService returns a [NoteVault] keeping the envelope as fileName
// inside blobs.
func NewNoteVaultService(blobs store.BlobStorage, fileName string, attachments AttachmentStore, keyChain crypto.KeyChainService, logger *logger.Logger) NoteVault {
	return &noteVaultService{
		blobs:       blobs,
		fileName:    fileName,
		attachments: attachments,
		keyChain:    keyChain,
		logger:      logger,
	}
}

func (n *noteVaultService) Load(ctx context.Context, secret string) ([]models.Note, error) {
	log := logger.FromContext(ctx)

	envelope, err := n.blobs.Read(ctx, n.fileName)
	if errors.Is(err, store.ErrBlobNotFound) {
		return []models.Note{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read notes: %w", err)
	}

	plain, err := n.keyChain.Open(secret, envelope)
	switch {
	case errors.Is(err, crypto.ErrMalformedEnvelope):
		log.Warn().Err(err).Str("func", "*noteVaultService.Load").Msg("notes envelope is truncated, treating as empty")
		return []models.Note{}, nil
	case err != nil:
		return nil, fmt.Errorf("open notes: %w", err)
	}

	notes, err := decodeNotes(plain)
	crypto.Zeroize(plain)
	if err != nil {
		log.Err(err).Str("func", "*noteVaultService.Load").Msg("failed to decode notes")
		return nil, err
	}

	if n.migrateInline(ctx, notes, secret) > 0 {
		if err = n.persist(ctx, notes, secret); err != nil {
			// the new attachments exist; the next load migrates again
			log.Err(err).Str("func", "*noteVaultService.Load").Msg("failed to re-save migrated notes")
		}
	}

	return notes, nil
}

func (n *noteVaultService) Save(ctx context.Context, notes []models.Note, secret string) ([]models.Note, error) {
	out := make([]models.Note, len(notes))
	for i := range notes {
		out[i] = notes[i].Clone()
	}

	n.migrateInline(ctx, out, secret)

	if err := n.persist(ctx, out, secret); err != nil {
		return nil, err
	}
	return out, nil
}

func (n *noteVaultService) AttachmentIDs(notes []models.Note) []string {
	seen := make(map[string]struct{})
	ids := make([]string, 0)

	add := func(id string) {
		if id == "" {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, note := range notes {
		for _, img := range note.Images {
			add(img.AttachmentID)
		}
		for _, f := range note.Files {
			add(f.AttachmentID)
		}
	}

	return ids
}

// persist seals the collection and replaces the envelope file.
func (n *noteVaultService) persist(ctx context.Context, notes []models.Note, secret string) error {
	plain, err := json.Marshal(models.NoteEnvelope{
		Version: models.NoteEnvelopeVersion,
		Notes:   notes,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	defer crypto.Zeroize(plain)

	envelope, err := n.keyChain.Seal(secret, plain)
	if err != nil {
		return fmt.Errorf("seal notes: %w", err)
	}

	if err = n.blobs.Write(ctx, n.fileName, envelope); err != nil {
		return fmt.Errorf("write notes: %w", err)
	}

	logger.FromContext(ctx).Debug().Str("func", "*noteVaultService.persist").Int("count", len(notes)).Msg("notes saved")
	return nil
}

// migrateInline moves every decodable inline payload into the attachment
// store and rewrites the entry in place. Entries that cannot be decoded or
// saved are left as they are. Returns the number of migrated entries.
func (n *noteVaultService) migrateInline(ctx context.Context, notes []models.Note, secret string) int {
	log := logger.FromContext(ctx)
	migrated := 0

	move := func(noteID int64, data string) (string, bool) {
		raw, err := base64.StdEncoding.DecodeString(data)
		if err != nil {
			log.Warn().Err(err).Str("func", "*noteVaultService.migrateInline").Int64("note_id", noteID).Msg("inline attachment is not valid base64, keeping it inline")
			return "", false
		}
		id, err := n.attachments.Save(ctx, secret, raw, "")
		if err != nil {
			log.Warn().Err(err).Str("func", "*noteVaultService.migrateInline").Int64("note_id", noteID).Msg("failed to move inline attachment")
			return "", false
		}
		return id, true
	}

	for i := range notes {
		note := &notes[i]
		for j := range note.Images {
			if !note.Images[j].IsLegacy() {
				continue
			}
			if id, ok := move(note.ID, note.Images[j].Data); ok {
				note.Images[j] = models.ImageRef{AttachmentID: id}
				migrated++
			}
		}
		for j := range note.Files {
			if !note.Files[j].IsLegacy() {
				continue
			}
			if id, ok := move(note.ID, note.Files[j].Data); ok {
				note.Files[j].AttachmentID = id
				note.Files[j].Data = ""
				migrated++
			}
		}
	}

	if migrated > 0 {
		log.Info().Str("func", "*noteVaultService.migrateInline").Int("count", migrated).Msg("inline attachments migrated")
	}
	return migrated
}

// decodeNotes accepts the versioned envelope and the bare legacy array.
func decodeNotes(plain []byte) ([]models.Note, error) {
	trimmed := bytes.TrimSpace(plain)

	var notes []models.Note
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &notes); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
		}
	} else {
		var env models.NoteEnvelope
		if err := json.Unmarshal(trimmed, &env); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
		}
		if env.Version > models.NoteEnvelopeVersion {
			return nil, fmt.Errorf("%w: unsupported version %d", ErrSerialization, env.Version)
		}
		notes = env.Notes
	}

	if notes == nil {
		notes = []models.Note{}
	}
	for i := range notes {
		notes[i].Normalize()
	}
	return notes, nil
}
