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

// Package desktop writes and removes freedesktop.org desktop entries for
// installed games. File names derive deterministically from the game name so
// the uninstaller can find them without a side database.
package desktop

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog/log"
)

// Entry is the minimal desktop-entry contents for a launchable game.
type Entry struct {
	Name    string
	Exec    string
	WorkDir string
	Icon    string // optional; Icon= is omitted when empty
}

// Integrator knows where shortcut files live. Fields are exposed so tests
// can point them at temporary directories.
type Integrator struct {
	ApplicationsDir string
	DesktopDir      string // user's Desktop; skipped when it does not exist
}

func NewIntegrator() *Integrator {
	return &Integrator{
		ApplicationsDir: filepath.Join(xdg.DataHome, "applications"),
		DesktopDir:      xdg.UserDirs.Desktop,
	}
}

// FileName is the deterministic shortcut file name for a game name.
// "Stardew Valley" -> "stardew-valley.desktop".
func FileName(gameName string) string {
	return strings.ToLower(strings.ReplaceAll(gameName, " ", "-")) + ".desktop"
}

func render(e Entry) string {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	fmt.Fprintf(&b, "Name=%s\n", e.Name)
	fmt.Fprintf(&b, "Exec=%q\n", e.Exec)
	fmt.Fprintf(&b, "Path=%s\n", e.WorkDir)
	b.WriteString("Terminal=false\n")
	b.WriteString("Categories=Game;\n")
	if e.Icon != "" {
		fmt.Fprintf(&b, "Icon=%s\n", e.Icon)
	}
	return b.String()
}

// Write creates the shortcut in the applications dir and, if the user has a
// Desktop directory, there too. Returns every file written.
func (i *Integrator) Write(e Entry) ([]string, error) {
	content := render(e)
	fileName := FileName(e.Name)

	if err := os.MkdirAll(i.ApplicationsDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create applications directory: %w", err)
	}

	appPath := filepath.Join(i.ApplicationsDir, fileName)
	if err := os.WriteFile(appPath, []byte(content), 0o644); err != nil { //nolint:gosec // desktop entries are world-readable
		return nil, fmt.Errorf("failed to write desktop entry %s: %w", appPath, err)
	}
	written := []string{appPath}

	if i.DesktopDir != "" {
		if _, err := os.Stat(i.DesktopDir); err == nil {
			desktopPath := filepath.Join(i.DesktopDir, fileName)
			if err := os.WriteFile(desktopPath, []byte(content), 0o755); err != nil { //nolint:gosec // desktop shortcuts need the exec bit
				// the applications entry is the one that matters
				log.Warn().Err(err).Str("path", desktopPath).Msg("failed to write Desktop shortcut")
			} else {
				written = append(written, desktopPath)
			}
		}
	}

	return written, nil
}

// Remove deletes the shortcut files for gameName and returns the paths it
// actually removed. Missing files are not an error.
func (i *Integrator) Remove(gameName string) ([]string, error) {
	fileName := FileName(gameName)

	var removed []string
	for _, dir := range []string{i.ApplicationsDir, i.DesktopDir} {
		if dir == "" {
			continue
		}
		path := filepath.Join(dir, fileName)
		err := os.Remove(path)
		switch {
		case err == nil:
			removed = append(removed, path)
		case os.IsNotExist(err):
		default:
			return removed, fmt.Errorf("failed to remove desktop entry %s: %w", path, err)
		}
	}
	return removed, nil
}
