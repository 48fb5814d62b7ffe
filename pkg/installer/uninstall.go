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

package installer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/spawn-cli/spawn/pkg/matcher"
)

// UninstallResult lists everything an uninstall removed.
type UninstallResult struct {
	Name         string
	InstallPath  string
	DesktopFiles []string
	SteamRemoved bool
}

// Uninstall removes the installed game matching query: its directory, its
// desktop entries, and its Steam shortcut if one exists. A query matching
// nothing returns ErrGameNotFound without touching anything; a query matching
// several games returns AmbiguousError so the caller can disambiguate.
func (ins *Installer) Uninstall(installDir, query string) (*UninstallResult, error) {
	matches, err := matcher.FindInstalled(installDir, query)
	if err != nil {
		return nil, err
	}
	switch {
	case len(matches) == 0:
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, query)
	case len(matches) > 1:
		return nil, &AmbiguousError{Query: query, Candidates: matches}
	}

	gameDir := matches[0]
	// matcher only returns children of installDir; keep the invariant anyway
	if filepath.Dir(gameDir) != filepath.Clean(installDir) {
		return nil, fmt.Errorf("refusing to remove %s: outside install directory", gameDir)
	}

	name := strings.ReplaceAll(filepath.Base(gameDir), "_", " ")
	result := &UninstallResult{Name: name, InstallPath: gameDir}

	removed, err := ins.Desktop.Remove(name)
	if err != nil {
		return nil, err
	}
	result.DesktopFiles = removed

	steamRemoved, err := ins.Steam.RemoveShortcut(name, "")
	if err != nil {
		// the shortcut store may be unreadable; not fatal for uninstall
		log.Warn().Err(err).Msg("failed to remove steam shortcut")
	}
	result.SteamRemoved = steamRemoved

	if err := os.RemoveAll(gameDir); err != nil {
		return nil, fmt.Errorf("failed to remove %s: %w", gameDir, err)
	}

	log.Info().Str("name", name).Str("path", gameDir).Msg("game uninstalled")
	return result, nil
}
