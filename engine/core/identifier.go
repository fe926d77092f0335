package core

import "github.com/google/uuid"

// NewRunID returns a unique identifier for one benchmark run. It tags the
// final report so runs can be told apart when comparing logs.
func NewRunID() string {
	return uuid.New().String()
}
