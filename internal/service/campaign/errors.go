package campaign

import "errors"

// Sentinel errors for the campaign service layer.
var (
	ErrNotFound         = errors.New("campaign not found")
	ErrInvalid          = errors.New("invalid campaign input")
	ErrTemplateNotFound = errors.New("template not found or not owned by caller")
	ErrNotEditable      = errors.New("campaign can no longer be edited")
	ErrNotDeletable     = errors.New("campaign cannot be deleted while sending")
)
