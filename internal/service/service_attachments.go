package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/MKhiriev/go-note-vault/internal/crypto"
	"github.com/MKhiriev/go-note-vault/internal/logger"
	"github.com/MKhiriev/go-note-vault/internal/store"
)

type attachmentService struct {
	blobs    store.BlobStorage
	keyChain crypto.KeyChainService
	ids      IDGenerator
	logger   *logger.Logger
}

// NewAttachmentService returns an [AttachmentStore] that keeps each
// attachment as one envelope in blobs.
func NewAttachmentService(blobs store.BlobStorage, keyChain crypto.KeyChainService, ids IDGenerator, logger *logger.Logger) AttachmentStore {
	return &attachmentService{
		blobs:    blobs,
		keyChain: keyChain,
		ids:      ids,
		logger:   logger,
	}
}

func (a *attachmentService) Save(ctx context.Context, secret string, data []byte, id string) (string, error) {
	log := logger.FromContext(ctx)

	if id == "" {
		id = a.ids.Generate()
	}
	if !store.ValidBlobName(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidAttachmentID, id)
	}

	envelope, err := a.keyChain.Seal(secret, data)
	if err != nil {
		log.Err(err).Str("func", "*attachmentService.Save").Str("attachment_id", id).Msg("failed to seal attachment")
		return "", fmt.Errorf("seal attachment %s: %w", id, err)
	}

	if err = a.blobs.Write(ctx, id, envelope); err != nil {
		return "", fmt.Errorf("write attachment %s: %w", id, err)
	}

	log.Debug().Str("func", "*attachmentService.Save").Str("attachment_id", id).Int("size", len(data)).Msg("attachment saved")
	return id, nil
}

func (a *attachmentService) Open(ctx context.Context, secret, id string) ([]byte, error) {
	if !store.ValidBlobName(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAttachmentID, id)
	}

	envelope, err := a.blobs.Read(ctx, id)
	if errors.Is(err, store.ErrBlobNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrAttachmentNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("read attachment %s: %w", id, err)
	}

	plain, err := a.keyChain.Open(secret, envelope)
	switch {
	case errors.Is(err, crypto.ErrMalformedEnvelope):
		// a truncated file cannot be told apart from a wrong secret
		return nil, fmt.Errorf("attachment %s: %w: %w", id, crypto.ErrDecryptionFailed, err)
	case err != nil:
		return nil, fmt.Errorf("attachment %s: %w", id, err)
	}

	return plain, nil
}

func (a *attachmentService) Delete(ctx context.Context, id string) error {
	if !store.ValidBlobName(id) {
		return fmt.Errorf("%w: %q", ErrInvalidAttachmentID, id)
	}

	if err := a.blobs.Remove(ctx, id); err != nil {
		logger.FromContext(ctx).Warn().Err(err).
			Str("func", "*attachmentService.Delete").
			Str("attachment_id", id).
			Msg("attachment was not removed")
	}
	return nil
}

func (a *attachmentService) Reencrypt(ctx context.Context, oldSecret, newSecret, id string) (bool, error) {
	plain, err := a.Open(ctx, oldSecret, id)
	if err != nil {
		return false, err
	}
	defer crypto.Zeroize(plain)

	if _, err = a.Save(ctx, newSecret, plain, id); err != nil {
		return false, err
	}

	return true, nil
}

func (a *attachmentService) Exists(ctx context.Context, id string) bool {
	return a.blobs.Exists(ctx, id)
}

func (a *attachmentService) List(ctx context.Context) ([]string, error) {
	ids, err := a.blobs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}
	return ids, nil
}
