package service

import "errors"

var (
	ErrAttachmentNotFound  = errors.New("attachment not found")
	ErrInvalidAttachmentID = errors.New("invalid attachment id")
	ErrSerialization       = errors.New("malformed note collection")

	ErrWrongPIN      = errors.New("wrong PIN")
	ErrPINNotSet     = errors.New("PIN is not set")
	ErrPINAlreadySet = errors.New("PIN is already set")
	ErrCorruptRecord = errors.New("corrupt credential record")
)
