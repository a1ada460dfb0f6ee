package httpserver

import "errors"

var (
	ErrStart          = errors.New("httpserver.start_failed")
	ErrShutdown       = errors.New("httpserver.shutdown_failed")
	ErrAlreadyRunning = errors.New("httpserver.already_running")
)
