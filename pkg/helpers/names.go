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

package helpers

import (
	"path/filepath"
	"strings"
)

// archive suffixes stripped when inferring a game name from a file name,
// longest first so ".tar.gz" wins over ".gz".
var archiveSuffixes = []string{
	".tar.gz", ".tar.xz", ".tar.bz2",
	".tgz", ".txz", ".tbz2",
	".zip", ".appimage",
}

// FormatGameName turns a raw directory or archive name into a display name:
// separators become spaces and each word is title-cased.
// "stardew_valley-1.6" -> "Stardew Valley 1.6".
func FormatGameName(name string) string {
	s := strings.NewReplacer("_", " ", "-", " ").Replace(name)

	words := strings.Fields(s)
	for i, w := range words {
		r := []rune(w)
		words[i] = strings.ToUpper(string(r[0])) + strings.ToLower(string(r[1:]))
	}
	return strings.Join(words, " ")
}

// DirName is the install directory name for a game: the display name with
// spaces replaced by underscores. This naming convention is what the
// uninstaller relies on to find installs without a side database.
func DirName(gameName string) string {
	return strings.ReplaceAll(FormatGameName(gameName), " ", "_")
}

// InferGameName derives a game name from a source path by stripping any
// archive suffix from its base name.
func InferGameName(path string) string {
	base := filepath.Base(path)
	lower := strings.ToLower(base)
	for _, suffix := range archiveSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return base[:len(base)-len(suffix)]
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}
