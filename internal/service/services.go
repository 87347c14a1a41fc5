package service

import (
	"github.com/MKhiriev/go-note-vault/internal/crypto"
	"github.com/MKhiriev/go-note-vault/internal/logger"
	"github.com/MKhiriev/go-note-vault/internal/store"
	"github.com/MKhiriev/go-note-vault/internal/utils"
	"github.com/MKhiriev/go-note-vault/internal/validators"
)

// Services wires the three vault components over one set of storages and
// one key chain.
type Services struct {
	Attachments AttachmentStore
	Notes       NoteVault
	PIN         PinAuthority
}

// NewServices builds the components in dependency order. notesFile is the
// name of the note envelope inside storages.Notes.
func NewServices(storages *store.Storages, keyChain crypto.KeyChainService, notesFile string, logger *logger.Logger) *Services {
	attachments := NewAttachmentService(storages.Attachments, keyChain, utils.NewUUIDGenerator(), logger)
	notes := NewNoteVaultService(storages.Notes, notesFile, attachments, keyChain, logger)
	pin := NewPinAuthorityService(storages.Credentials, notes, attachments, keyChain, validators.NewPINValidator(), logger)

	return &Services{
		Attachments: attachments,
		Notes:       notes,
		PIN:         pin,
	}
}
