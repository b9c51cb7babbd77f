package okr

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrVersionConflict = errors.New("stale version, reload and retry")
	ErrCheckInTarget   = errors.New("check-in requires an objective or key result")
	ErrCommentTarget   = errors.New("comment requires an objective or key result")
)
