package model

import "errors"

// ErrSessionInvalid is the uniform verification failure. It covers
// malformed, tampered, expired and unmatched refresh tokens alike,
// so callers cannot distinguish why a token was rejected.
var ErrSessionInvalid = errors.New("session invalid")
