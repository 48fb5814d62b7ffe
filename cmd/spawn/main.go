//go:build linux

/*
Spawn
Copyright (c) 2026 The Spawn Project Contributors.

This file is part of Spawn.

Spawn is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

Spawn is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with Spawn.  If not, see <http://www.gnu.org/licenses/>.
*/

package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/spawn-cli/spawn/pkg/cli"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	flags := cli.SetupFlags()
	flag.Usage = func() {
		_, _ = fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: spawn [options] <archive|AppImage|directory|name>\n\n"+
				"Installs Linux games from archives into your games directory,\n"+
				"with a desktop entry and optional Steam shortcut.\n\nOptions:\n")
		flag.PrintDefaults()
	}
	flags.Pre()

	if os.Geteuid() == 0 {
		_, _ = fmt.Fprintln(os.Stderr, "spawn cannot be run as root")
		return errors.New("running as root")
	}

	cfg := cli.Setup(*flags.Debug, nil)

	defer func() {
		if err := recover(); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Panic: %s\n", err)
			log.Fatal().Msgf("panic: %v", err)
		}
	}()

	app := cli.NewApp(cfg, *flags.Yes)
	return app.Run(flags, flag.Args())
}
