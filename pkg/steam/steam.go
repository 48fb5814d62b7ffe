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

// Package steam registers installed games as non-Steam game shortcuts. All
// edits to shortcuts.vdf are read-modify-write: entries this tool does not
// own are carried through byte-for-byte equivalent, never dropped.
package steam

import (
	"bytes"
	"errors"
	"fmt"
	"hash/crc32"
	"os"
	"path/filepath"
	"strconv"

	"github.com/adrg/xdg"
	"github.com/andygrunwald/vdf"
	"github.com/rs/zerolog/log"

	"github.com/spawn-cli/spawn/internal/vdfbinary"
)

// ErrSteamNotFound means no usable Steam installation was located.
var ErrSteamNotFound = errors.New("steam installation not found")

// Client locates and edits one Steam installation's shortcuts store.
type Client struct {
	SteamDir string // Steam root, e.g. ~/.steam/steam
}

func NewClient() *Client {
	return &Client{SteamDir: filepath.Join(xdg.Home, ".steam", "steam")}
}

// GenerateAppID derives the stable shortcut AppID Steam computes for
// non-Steam games: CRC32 of exe+name with the high bit set.
func GenerateAppID(exe, name string) uint32 {
	return crc32.ChecksumIEEE([]byte(exe+name)) | 0x80000000
}

// ShortcutsPath finds the shortcuts.vdf for the active Steam user, preferring
// the most recent login from loginusers.vdf and falling back to scanning
// userdata for numeric account directories.
func (c *Client) ShortcutsPath() (string, error) {
	userdataDir := filepath.Join(c.SteamDir, "userdata")
	if _, err := os.Stat(userdataDir); err != nil {
		return "", fmt.Errorf("%w: %s", ErrSteamNotFound, userdataDir)
	}

	if accountID, ok := c.mostRecentUser(); ok {
		userDir := filepath.Join(userdataDir, accountID)
		if _, err := os.Stat(userDir); err == nil {
			return filepath.Join(userDir, "config", "shortcuts.vdf"), nil
		}
	}

	entries, err := os.ReadDir(userdataDir)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", userdataDir, err)
	}

	var fallback string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := strconv.ParseUint(e.Name(), 10, 64); err != nil {
			continue
		}
		path := filepath.Join(userdataDir, e.Name(), "config", "shortcuts.vdf")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
		if fallback == "" {
			fallback = path
		}
	}
	if fallback != "" {
		return fallback, nil
	}

	return "", fmt.Errorf("%w: no user directories in %s", ErrSteamNotFound, userdataDir)
}

// mostRecentUser reads loginusers.vdf and returns the account ID (the
// userdata directory name) of the most recent login.
func (c *Client) mostRecentUser() (string, bool) {
	path := filepath.Join(c.SteamDir, "config", "loginusers.vdf")
	//nolint:gosec // reads Steam's own config file
	f, err := os.Open(path)
	if err != nil {
		return "", false
	}
	defer func() { _ = f.Close() }()

	p := vdf.NewParser(f)
	m, err := p.Parse()
	if err != nil {
		log.Warn().Err(err).Str("path", path).Msg("error parsing loginusers.vdf")
		return "", false
	}

	users, ok := m["users"].(map[string]any)
	if !ok {
		return "", false
	}

	for steam64Str, v := range users {
		user, ok := v.(map[string]any)
		if !ok {
			continue
		}
		if recent, _ := user["MostRecent"].(string); recent != "1" {
			continue
		}
		steam64, err := strconv.ParseUint(steam64Str, 10, 64)
		if err != nil {
			continue
		}
		// userdata dirs are 32-bit account IDs, not full steam64 IDs
		return strconv.FormatUint(steam64&0xFFFFFFFF, 10), true
	}

	return "", false
}

// AddShortcut appends a non-Steam game shortcut, or updates the existing
// entry when one with the same name is already present.
func (c *Client) AddShortcut(name, exe, icon string) error {
	path, err := c.ShortcutsPath()
	if err != nil {
		return err
	}

	shortcuts, err := readShortcuts(path)
	if err != nil {
		return err
	}

	entry := vdfbinary.Shortcut{
		AppID:    GenerateAppID(exe, name),
		AppName:  name,
		Exe:      exe,
		StartDir: filepath.Dir(exe),
		Icon:     icon,
	}

	updated := false
	for i := range shortcuts {
		if shortcuts[i].AppName == name {
			entry.Tags = shortcuts[i].Tags
			shortcuts[i] = entry
			updated = true
			break
		}
	}
	if !updated {
		shortcuts = append(shortcuts, entry)
	}

	if err := writeShortcutsAtomic(path, shortcuts); err != nil {
		return err
	}

	log.Info().Str("name", name).Str("exe", exe).Bool("updated", updated).
		Msg("steam shortcut written")
	return nil
}

// RemoveShortcut deletes the shortcut matching name (or, when provided, the
// executable path). Reports whether anything was removed.
func (c *Client) RemoveShortcut(name, exe string) (bool, error) {
	path, err := c.ShortcutsPath()
	if err != nil {
		if errors.Is(err, ErrSteamNotFound) {
			return false, nil
		}
		return false, err
	}
	if _, err := os.Stat(path); err != nil {
		return false, nil
	}

	shortcuts, err := readShortcuts(path)
	if err != nil {
		return false, err
	}

	kept := shortcuts[:0]
	removed := false
	for _, s := range shortcuts {
		if s.AppName == name || (exe != "" && s.Exe == exe) {
			removed = true
			continue
		}
		kept = append(kept, s)
	}
	if !removed {
		return false, nil
	}

	if err := writeShortcutsAtomic(path, kept); err != nil {
		return false, err
	}

	log.Info().Str("name", name).Msg("steam shortcut removed")
	return true, nil
}

func readShortcuts(path string) ([]vdfbinary.Shortcut, error) {
	//nolint:gosec // path is derived from the Steam install location
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		// no shortcuts yet; Steam creates the file on first use
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	shortcuts, err := vdfbinary.ParseShortcuts(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return shortcuts, nil
}

// writeShortcutsAtomic serializes next to the target and renames into place
// so a crash can never truncate the user's shortcuts store.
func writeShortcutsAtomic(path string, shortcuts []vdfbinary.Shortcut) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}

	var buf bytes.Buffer
	if err := vdfbinary.WriteShortcuts(&buf, shortcuts); err != nil {
		return fmt.Errorf("failed to serialize shortcuts: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil { //nolint:gosec // matches Steam's own file mode
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
