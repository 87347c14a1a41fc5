package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"

	"github.com/MKhiriev/go-note-vault/internal/crypto"
	"github.com/MKhiriev/go-note-vault/internal/logger"
	"github.com/MKhiriev/go-note-vault/internal/store"
	"github.com/MKhiriev/go-note-vault/internal/validators"
	"github.com/MKhiriev/go-note-vault/models"
)

type pinAuthorityService struct {
	credentials store.CredentialStore
	notes       NoteVault
	attachments AttachmentStore
	keyChain    crypto.KeyChainService
	validator   validators.Validator
	logger      *logger.Logger
}

// NewPinAuthorityService returns a [PinAuthority] over the given credential
// store. notes and attachments are re-keyed on PIN change.
func NewPinAuthorityService(
	credentials store.CredentialStore,
	notes NoteVault,
	attachments AttachmentStore,
	keyChain crypto.KeyChainService,
	validator validators.Validator,
	logger *logger.Logger,
) PinAuthority {
	return &pinAuthorityService{
		credentials: credentials,
		notes:       notes,
		attachments: attachments,
		keyChain:    keyChain,
		validator:   validator,
		logger:      logger,
	}
}

func (p *pinAuthorityService) IsSet(ctx context.Context) (bool, error) {
	if _, ok, err := p.get(ctx, models.CredentialKeyHash); ok || err != nil {
		return ok, err
	}
	_, ok, err := p.get(ctx, models.CredentialKeyLegacyPIN)
	return ok, err
}

func (p *pinAuthorityService) Set(ctx context.Context, pin string) error {
	if err := p.validator.Validate(ctx, models.PIN(pin)); err != nil {
		return err
	}

	biometric, err := p.BiometricEnabled(ctx)
	if err != nil {
		return err
	}

	if err = p.installCredential(ctx, pin, biometric); err != nil {
		return err
	}

	logger.FromContext(ctx).Info().Str("func", "*pinAuthorityService.Set").Msg("PIN set")
	return nil
}

func (p *pinAuthorityService) Check(ctx context.Context, pin string) (bool, error) {
	record, ok, err := p.record(ctx)
	if err != nil {
		return false, err
	}

	if ok {
		salt, err := base64.StdEncoding.DecodeString(record.Salt)
		if err != nil || len(salt) != crypto.SaltSize {
			return false, fmt.Errorf("%w: salt", ErrCorruptRecord)
		}
		stored, err := base64.StdEncoding.DecodeString(record.Hash)
		if err != nil {
			return false, fmt.Errorf("%w: hash", ErrCorruptRecord)
		}

		computed := p.keyChain.DeriveKey(pin, salt, crypto.PurposeVerification)
		defer crypto.Zeroize(computed)

		return crypto.ConstantTimeEqual(computed, stored), nil
	}

	legacy, ok, err := p.get(ctx, models.CredentialKeyLegacyPIN)
	if err != nil || !ok {
		return false, err
	}
	return crypto.ConstantTimeEqual([]byte(pin), []byte(legacy)), nil
}

func (p *pinAuthorityService) Update(ctx context.Context, oldPin, newPin string) (models.ReencryptReport, error) {
	log := logger.FromContext(ctx)

	if err := p.validator.Validate(ctx, models.PINChange{Old: models.PIN(oldPin), New: models.PIN(newPin)}); err != nil {
		return models.ReencryptReport{}, err
	}

	set, err := p.IsSet(ctx)
	if err != nil {
		return models.ReencryptReport{}, err
	}
	if !set {
		return models.ReencryptReport{}, ErrPINNotSet
	}

	ok, err := p.Check(ctx, oldPin)
	if err != nil {
		return models.ReencryptReport{}, err
	}
	if !ok {
		log.Warn().Str("func", "*pinAuthorityService.Update").Msg("PIN update rejected: wrong current PIN")
		return models.ReencryptReport{}, ErrWrongPIN
	}

	biometric, err := p.BiometricEnabled(ctx)
	if err != nil {
		return models.ReencryptReport{}, err
	}

	report, err := p.rekey(ctx, oldPin, newPin, biometric)
	if err != nil {
		return report, err
	}

	log.Info().Str("func", "*pinAuthorityService.Update").
		Int("reencrypted", len(report.Succeeded)).
		Int("failed", len(report.Failed)).
		Msg("PIN updated")
	return report, nil
}

func (p *pinAuthorityService) MigrateLegacyIfNeeded(ctx context.Context) (models.ReencryptReport, bool, error) {
	log := logger.FromContext(ctx)

	legacy, hasLegacy, err := p.get(ctx, models.CredentialKeyLegacyPIN)
	if err != nil || !hasLegacy {
		return models.ReencryptReport{}, false, err
	}

	_, hasCurrent, err := p.get(ctx, models.CredentialKeyHash)
	if err != nil {
		return models.ReencryptReport{}, false, err
	}
	if hasCurrent {
		// a current record already wins; the legacy key is just stale
		if err = p.credentials.Remove(ctx, models.CredentialKeyLegacyPIN); err != nil {
			return models.ReencryptReport{}, false, fmt.Errorf("remove legacy credential: %w", err)
		}
		log.Info().Str("func", "*pinAuthorityService.MigrateLegacyIfNeeded").Msg("stale legacy credential removed")
		return models.ReencryptReport{}, true, nil
	}

	biometric, err := p.BiometricEnabled(ctx)
	if err != nil {
		return models.ReencryptReport{}, false, err
	}

	report, err := p.rekey(ctx, legacy, legacy, biometric)
	if err != nil {
		log.Err(err).Str("func", "*pinAuthorityService.MigrateLegacyIfNeeded").Msg("legacy credential migration failed")
		return report, false, err
	}

	log.Info().Str("func", "*pinAuthorityService.MigrateLegacyIfNeeded").
		Int("reencrypted", len(report.Succeeded)).
		Int("failed", len(report.Failed)).
		Msg("legacy credential migrated")
	return report, true, nil
}

func (p *pinAuthorityService) Clear(ctx context.Context) error {
	err := p.credentials.Remove(ctx,
		models.CredentialKeyHash,
		models.CredentialKeySalt,
		models.CredentialKeyPINLength,
		models.CredentialKeyBiometricEnabled,
		models.CredentialKeyLegacyPIN,
	)
	if err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}

	logger.FromContext(ctx).Info().Str("func", "*pinAuthorityService.Clear").Msg("PIN cleared")
	return nil
}

func (p *pinAuthorityService) PinLength(ctx context.Context) (int, error) {
	value, ok, err := p.get(ctx, models.CredentialKeyPINLength)
	if err != nil {
		return 0, err
	}
	if ok {
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("%w: pin length %q", ErrCorruptRecord, value)
		}
		return n, nil
	}

	legacy, ok, err := p.get(ctx, models.CredentialKeyLegacyPIN)
	if err != nil || !ok {
		return 0, err
	}
	return models.PIN(legacy).Len(), nil
}

func (p *pinAuthorityService) SetBiometricEnabled(ctx context.Context, enabled bool) error {
	set, err := p.IsSet(ctx)
	if err != nil {
		return err
	}
	if !set {
		return ErrPINNotSet
	}

	if err = p.credentials.Put(ctx, models.CredentialKeyBiometricEnabled, strconv.FormatBool(enabled)); err != nil {
		return fmt.Errorf("store biometric flag: %w", err)
	}
	return nil
}

func (p *pinAuthorityService) BiometricEnabled(ctx context.Context) (bool, error) {
	value, ok, err := p.get(ctx, models.CredentialKeyBiometricEnabled)
	if err != nil || !ok {
		return false, err
	}
	enabled, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%w: biometric flag %q", ErrCorruptRecord, value)
	}
	return enabled, nil
}

// rekey runs the bulk re-encryption shared by Update and legacy migration:
// load notes under oldPin, move every referenced attachment to newPin, save
// the notes under newPin, then install the credential for newPin. When the
// notes or the credential cannot be written, the attachments moved so far
// are moved back and the error is returned.
func (p *pinAuthorityService) rekey(ctx context.Context, oldPin, newPin string, biometric bool) (models.ReencryptReport, error) {
	log := logger.FromContext(ctx)
	report := models.ReencryptReport{Succeeded: []string{}, Failed: []string{}}

	notes, err := p.notes.Load(ctx, oldPin)
	if err != nil {
		return report, fmt.Errorf("load notes: %w", err)
	}

	for _, id := range p.notes.AttachmentIDs(notes) {
		if ok, err := p.attachments.Reencrypt(ctx, oldPin, newPin, id); !ok {
			log.Warn().Err(err).Str("func", "*pinAuthorityService.rekey").Str("attachment_id", id).Msg("attachment skipped during re-encryption")
			report.Failed = append(report.Failed, id)
			continue
		}
		report.Succeeded = append(report.Succeeded, id)
	}

	if _, err = p.notes.Save(ctx, notes, newPin); err != nil {
		p.rollback(ctx, oldPin, newPin, report.Succeeded)
		return report, fmt.Errorf("save notes: %w", err)
	}

	if err = p.installCredential(ctx, newPin, biometric); err != nil {
		if _, saveErr := p.notes.Save(ctx, notes, oldPin); saveErr != nil {
			log.Err(saveErr).Str("func", "*pinAuthorityService.rekey").Msg("failed to restore notes under the old PIN")
		}
		p.rollback(ctx, oldPin, newPin, report.Succeeded)
		return report, err
	}

	return report, nil
}

// rollback moves ids back from newPin to oldPin.
func (p *pinAuthorityService) rollback(ctx context.Context, oldPin, newPin string, ids []string) {
	if oldPin == newPin {
		return
	}
	for _, id := range ids {
		if ok, err := p.attachments.Reencrypt(ctx, newPin, oldPin, id); !ok {
			logger.FromContext(ctx).Err(err).Str("func", "*pinAuthorityService.rollback").Str("attachment_id", id).Msg("failed to restore attachment under the old PIN")
		}
	}
}

// installCredential writes a fresh record for pin and drops the legacy key.
func (p *pinAuthorityService) installCredential(ctx context.Context, pin string, biometric bool) error {
	salt, err := p.keyChain.GenerateSalt()
	if err != nil {
		return err
	}
	hash := p.keyChain.DeriveKey(pin, salt, crypto.PurposeVerification)
	defer crypto.Zeroize(hash)

	err = p.credentials.PutAll(ctx, map[string]string{
		models.CredentialKeyHash:             base64.StdEncoding.EncodeToString(hash),
		models.CredentialKeySalt:             base64.StdEncoding.EncodeToString(salt),
		models.CredentialKeyPINLength:        strconv.Itoa(models.PIN(pin).Len()),
		models.CredentialKeyBiometricEnabled: strconv.FormatBool(biometric),
	})
	if err != nil {
		return fmt.Errorf("store credential: %w", err)
	}

	if err = p.credentials.Remove(ctx, models.CredentialKeyLegacyPIN); err != nil {
		return fmt.Errorf("remove legacy credential: %w", err)
	}
	return nil
}

// record returns the current credential record, if any.
func (p *pinAuthorityService) record(ctx context.Context) (models.CredentialRecord, bool, error) {
	hash, ok, err := p.get(ctx, models.CredentialKeyHash)
	if err != nil || !ok {
		return models.CredentialRecord{}, false, err
	}
	salt, ok, err := p.get(ctx, models.CredentialKeySalt)
	if err != nil {
		return models.CredentialRecord{}, false, err
	}
	if !ok {
		return models.CredentialRecord{}, false, fmt.Errorf("%w: hash without salt", ErrCorruptRecord)
	}
	return models.CredentialRecord{Hash: hash, Salt: salt}, true, nil
}

// get maps ErrCredentialNotFound to ok == false.
func (p *pinAuthorityService) get(ctx context.Context, key string) (string, bool, error) {
	value, err := p.credentials.Get(ctx, key)
	if errors.Is(err, store.ErrCredentialNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("read credential %s: %w", key, err)
	}
	return value, true, nil
}
