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

package discovery

import (
	"path/filepath"
	"strings"
)

// Engine runtimes ship several executable-looking files next to the real game
// binary (crash handlers, server builds, the player runtime itself). Each rule
// recognizes one engine's layout and names the binary that convention says is
// the game. The table is ordered; first match wins the engine tier.
type engineRule struct {
	match func(files []fileInfo) (fileInfo, bool)
	name  string
}

var engineRules = []engineRule{
	{name: "Godot", match: matchGodot},
	{name: "Unity", match: matchUnity},
}

// matchGodot looks for a Godot export: a .pck data pack (or a project.godot
// source marker) alongside a .x86_64/.x86 binary. The binary sharing the
// pack's stem is the game.
func matchGodot(files []fileInfo) (fileInfo, bool) {
	var pckStems []string
	marker := false
	for _, f := range files {
		lower := strings.ToLower(f.name)
		switch {
		case lower == "project.godot":
			marker = true
		case strings.HasSuffix(lower, ".pck"):
			marker = true
			pckStems = append(pckStems, strings.TrimSuffix(f.name, filepath.Ext(f.name)))
		}
	}
	if !marker {
		return fileInfo{}, false
	}

	var fallback fileInfo
	found := false
	for _, f := range files {
		lower := strings.ToLower(f.name)
		if !strings.HasSuffix(lower, ".x86_64") && !strings.HasSuffix(lower, ".x86") {
			continue
		}
		if !isELFExecutable(f.abs) {
			continue
		}
		stem := strings.TrimSuffix(f.name, filepath.Ext(f.name))
		for _, pckStem := range pckStems {
			if stem == pckStem {
				return f, true
			}
		}
		if !found {
			fallback = f
			found = true
		}
	}
	return fallback, found
}

// matchUnity looks for a Unity player layout: a <Name>_Data directory with a
// sibling binary named <Name>. UnityCrashHandler and the UnityPlayer runtime
// are never the game.
func matchUnity(files []fileInfo) (fileInfo, bool) {
	// infer data dirs from file paths since scanTree only records files
	dataStems := make(map[string]string) // stem -> parent dir (rel, "." for root)
	for _, f := range files {
		dir := filepath.Dir(f.rel)
		for dir != "." {
			base := filepath.Base(dir)
			if strings.HasSuffix(base, "_Data") {
				dataStems[strings.TrimSuffix(base, "_Data")] = filepath.Dir(dir)
			}
			dir = filepath.Dir(dir)
		}
	}
	if len(dataStems) == 0 {
		return fileInfo{}, false
	}

	for _, f := range files {
		if strings.HasPrefix(f.name, "UnityCrashHandler") || isSharedObjectName(f.name) {
			continue
		}
		stem := strings.TrimSuffix(f.name, filepath.Ext(f.name))
		parent, ok := dataStems[stem]
		if !ok || filepath.Dir(f.rel) != parent {
			continue
		}
		if isELFExecutable(f.abs) {
			return f, true
		}
	}
	return fileInfo{}, false
}
