package models

import "errors"

// ErrValidation is the sentinel wrapped by model-level BeforeSave checks so the
// error translator can map them to a 422 without knowing each field rule.
var ErrValidation = errors.New("validation failed")
