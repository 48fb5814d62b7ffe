// Spawn
// Copyright (c) 2026 The Spawn Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Spawn.
//
// Spawn is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Spawn is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Spawn.  If not, see <http://www.gnu.org/licenses/>.

// Package cli holds the flag surface, prompts, and terminal output for the
// spawn command.
package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"

	"github.com/spawn-cli/spawn/pkg/config"
	"github.com/spawn-cli/spawn/pkg/helpers"
)

type Flags struct {
	Name          *string
	Icon          *string
	Uninstall     *string
	SetSearchDir  *string
	SetInstallDir *string
	DryRun        *bool
	Steam         *bool
	Yes           *bool
	Debug         *bool
	Update        *bool
	Version       *bool
}

// SetupFlags defines all CLI flags. Call before flag.Parse.
func SetupFlags() *Flags {
	return &Flags{
		Name: flag.String(
			"name",
			"",
			"override the display name of the game",
		),
		Icon: flag.String(
			"icon",
			"",
			"path to an icon for the desktop entry",
		),
		Uninstall: flag.String(
			"uninstall",
			"",
			"uninstall the named game",
		),
		SetSearchDir: flag.String(
			"set-search-dir",
			"",
			"set the directory searched for downloaded games",
		),
		SetInstallDir: flag.String(
			"set-install-dir",
			"",
			"set the directory games are installed into",
		),
		DryRun: flag.Bool(
			"dry-run",
			false,
			"report what an install would do without doing it",
		),
		Steam: flag.Bool(
			"steam",
			false,
			"also add the game to Steam as a non-Steam shortcut",
		),
		Yes: flag.Bool(
			"yes",
			false,
			"assume yes for all prompts",
		),
		Debug: flag.Bool(
			"debug",
			false,
			"enable debug logging for this run",
		),
		Update: flag.Bool(
			"update",
			false,
			"update spawn to the latest release and exit",
		),
		Version: flag.Bool(
			"version",
			false,
			"print version and exit",
		),
	}
}

// Pre runs flag parsing and actions any immediate flags that don't require
// environment setup.
func (f *Flags) Pre() {
	flag.Parse()

	if *f.Version {
		_, _ = fmt.Printf("%s v%s\n", config.AppName, config.AppVersion)
		os.Exit(0)
	}
}

// Setup initializes logging and the user config. The debug argument forces
// debug logging for this run on top of the persisted config setting. Returns
// a user config object.
func Setup(debug bool, writers []io.Writer) *config.Instance {
	logDir := filepath.Join(xdg.StateHome, config.AppName)
	if err := helpers.InitLogging(logDir, debug, writers); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.NewConfig(filepath.Join(xdg.ConfigHome, config.AppName), config.BaseDefaults())
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if debug {
		cfg.SetDebugLogging(true)
	}
	if cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	return cfg
}
