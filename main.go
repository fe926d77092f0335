/*
Benchmark harness comparing synchronous and asynchronous upload of
procedurally generated terrain to the graphics device. Configuration is
read from config.toml next to the binary; see testbed.DefaultConfig for
the defaults.
*/
package main

import (
	"os"

	"github.com/tectonic3d/tectonic/engine/core"
	"github.com/tectonic3d/tectonic/testbed"
)

func main() {
	configPath := "config.toml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	config, err := testbed.LoadConfig(configPath)
	if err != nil {
		core.LogFatal("failed to load config: %s", err)
	}

	app := testbed.New(config)
	if err := app.Run(); err != nil {
		core.LogFatal("benchmark failed: %s", err)
	}
}
