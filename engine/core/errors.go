package core

import (
	"errors"
)

var (
	ErrQueueFull        = errors.New("queue is full")
	ErrQueueEmpty       = errors.New("queue is empty")
	ErrInvalidConfig    = errors.New("invalid configuration")
	ErrUnknownBackend   = errors.New("unknown render backend")
	ErrUnknownKey       = errors.New("unknown key")
	ErrEngineNotRunning = errors.New("engine is not initialized")
	ErrKeyNotAccepted   = errors.New("key not accepted from remote input")
)
