package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
	ErrSoldOut      = errors.New("sold out")
	ErrConflict     = errors.New("conflict")
	ErrBadSignature = errors.New("bad signature")
	ErrUpstream     = errors.New("upstream failure")
)
