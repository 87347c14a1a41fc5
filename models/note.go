// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/json"
	"time"
)

// NoteEnvelopeVersion is the schema version written into every note envelope.
const NoteEnvelopeVersion = 1

// Note is a single user note as held by the host application.
//
// Images and Files reference binary payloads either by attachment id
// (current form) or by inline base64 data (legacy form). The vault rewrites
// legacy entries into attachment references on load and on save.
type Note struct {
	ID           int64         `json:"id"`
	Title        string        `json:"title"`
	Content      string        `json:"content"`
	Date         int64         `json:"date"`
	Images       []ImageRef    `json:"images"`
	Files        []FileRef     `json:"files"`
	LinkPreviews []LinkPreview `json:"linkPreviews"`
	Summary      string        `json:"summary"`
	Event        *Event        `json:"event,omitempty"`
	Locked       bool          `json:"locked"`
}

// NewNote builds a note whose id and date are derived from the creation time
// (unix milliseconds).
func NewNote(title, content string, now time.Time) Note {
	ms := now.UnixMilli()
	return Note{
		ID:           ms,
		Title:        title,
		Content:      content,
		Date:         ms,
		Images:       []ImageRef{},
		Files:        []FileRef{},
		LinkPreviews: []LinkPreview{},
	}
}

// Normalize replaces nil collections with empty ones so that a note read back
// from disk compares equal to the note that was written.
func (n *Note) Normalize() {
	if n.Images == nil {
		n.Images = []ImageRef{}
	}
	if n.Files == nil {
		n.Files = []FileRef{}
	}
	if n.LinkPreviews == nil {
		n.LinkPreviews = []LinkPreview{}
	}
}

// Clone returns a deep copy of the note.
func (n Note) Clone() Note {
	out := n
	out.Images = append([]ImageRef(nil), n.Images...)
	out.Files = append([]FileRef(nil), n.Files...)
	out.LinkPreviews = append([]LinkPreview(nil), n.LinkPreviews...)
	if n.Event != nil {
		ev := *n.Event
		out.Event = &ev
	}
	out.Normalize()
	return out
}

// ImageRef is an image attached to a note.
// Exactly one of AttachmentID or Data is expected to be set.
type ImageRef struct {
	// AttachmentID references a blob in the attachment store.
	AttachmentID string `json:"id,omitempty"`
	// Data is the legacy inline payload, standard base64.
	Data string `json:"data,omitempty"`
}

// IsLegacy reports whether the image still carries its payload inline.
func (r ImageRef) IsLegacy() bool {
	return r.AttachmentID == "" && r.Data != ""
}

// UnmarshalJSON accepts both "id" and "attachmentId" for the attachment reference.
func (r *ImageRef) UnmarshalJSON(data []byte) error {
	var aux struct {
		ID           string `json:"id"`
		AttachmentID string `json:"attachmentId"`
		Data         string `json:"data"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.AttachmentID = firstNonEmpty(aux.ID, aux.AttachmentID)
	r.Data = aux.Data
	return nil
}

// FileRef is a generic file attached to a note.
type FileRef struct {
	Name         string `json:"name"`
	Mime         string `json:"mime"`
	AttachmentID string `json:"id,omitempty"`
	Data         string `json:"data,omitempty"`
}

// IsLegacy reports whether the file still carries its payload inline.
func (r FileRef) IsLegacy() bool {
	return r.AttachmentID == "" && r.Data != ""
}

// UnmarshalJSON accepts both "id" and "attachmentId" for the attachment reference.
func (r *FileRef) UnmarshalJSON(data []byte) error {
	var aux struct {
		Name         string `json:"name"`
		Mime         string `json:"mime"`
		ID           string `json:"id"`
		AttachmentID string `json:"attachmentId"`
		Data         string `json:"data"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	r.Name = aux.Name
	r.Mime = aux.Mime
	r.AttachmentID = firstNonEmpty(aux.ID, aux.AttachmentID)
	r.Data = aux.Data
	return nil
}

// LinkPreview is cached metadata of a URL mentioned in a note.
type LinkPreview struct {
	URL             string `json:"url"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	ImageURL        string `json:"imageUrl"`
	CachedImagePath string `json:"cachedImagePath"`
}

// NoteEnvelope is the plaintext JSON document sealed into the notes file.
type NoteEnvelope struct {
	Version int    `json:"version"`
	Notes   []Note `json:"notes"`
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
