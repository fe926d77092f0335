package core

import (
	"errors"
)

var (
	// ErrWorkerInit means the shared worker context could not be created.
	// Fatal to the upload pipeline; the caller must abort startup.
	ErrWorkerInit = errors.New("upload worker initialization failed")
	// ErrAlreadyRunning is reported when Start is called on a running worker.
	ErrAlreadyRunning = errors.New("upload worker already running")
	// ErrNotRunning is reported when work is submitted before the worker
	// consumer loop has been started.
	ErrNotRunning = errors.New("upload pipeline not running")
	// ErrPipelineClosed is reported for submissions after Shutdown.
	ErrPipelineClosed = errors.New("upload pipeline closed")
	// ErrDrainTimeout means a Flush exceeded its timeout. Recoverable; the
	// caller may retry or treat the pipeline as stalled.
	ErrDrainTimeout = errors.New("drain wait timed out")
)
