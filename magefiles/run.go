//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the benchmark with the async upload pipeline.
func (Run) Async() error {
	fmt.Println("Run benchmark (async mode)...")
	if _, err := executeCmd("go", withArgs("run", ".", "configs/async.toml"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs the benchmark with synchronous render-thread uploads.
func (Run) Sync() error {
	fmt.Println("Run benchmark (sync mode)...")
	if _, err := executeCmd("go", withArgs("run", ".", "configs/sync.toml"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs both modes headless, back to back, for comparison.
func (Run) Compare() error {
	fmt.Println("Run headless comparison...")
	if _, err := executeCmd("go", withArgs("run", ".", "configs/headless-async.toml"), withStream()); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("run", ".", "configs/headless-sync.toml"), withStream()); err != nil {
		return err
	}
	return nil
}
