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
	"sort"
	"strings"

	"github.com/rs/zerolog/log"
)

var iconExtensions = map[string]struct{}{
	".png": {},
	".svg": {},
	".ico": {},
}

// FindIcon scans the tree for the best icon asset for the game. Proximity to
// the selected executable wins, then name hints ("icon", "logo", the game
// name itself), then raster size as a cheap stand-in for pixel dimensions.
// No icon is a valid outcome, not an error.
func FindIcon(root, gameName, exePath string) (string, bool) {
	files, err := scanTree(root)
	if err != nil {
		log.Warn().Err(err).Str("root", root).Msg("icon scan failed")
		return "", false
	}

	exeDir := filepath.Dir(exePath)
	normalized := normalizeName(gameName)

	type scored struct {
		f         fileInfo
		nameScore int
		proximity int
	}

	var icons []scored
	for _, f := range files {
		if _, ok := iconExtensions[strings.ToLower(filepath.Ext(f.name))]; !ok {
			continue
		}

		s := scored{f: f, proximity: dirDistance(exeDir, filepath.Dir(f.abs))}
		lower := strings.ToLower(f.name)
		if strings.Contains(lower, "icon") || strings.Contains(lower, "logo") {
			s.nameScore += 10
		}
		if normalized != "" && strings.Contains(normalizeName(lower), normalized) {
			s.nameScore += 5
		}
		icons = append(icons, s)
	}

	if len(icons) == 0 {
		return "", false
	}

	sort.SliceStable(icons, func(i, j int) bool {
		a, b := icons[i], icons[j]
		if a.nameScore != b.nameScore {
			return a.nameScore > b.nameScore
		}
		if a.proximity != b.proximity {
			return a.proximity < b.proximity
		}
		if a.f.size != b.f.size {
			return a.f.size > b.f.size
		}
		return a.f.rel < b.f.rel
	})

	return icons[0].f.abs, true
}

// dirDistance counts the path segments separating two directories.
func dirDistance(a, b string) int {
	if a == b {
		return 0
	}
	rel, err := filepath.Rel(a, b)
	if err != nil {
		return len(strings.Split(b, string(filepath.Separator)))
	}
	return len(strings.Split(rel, string(filepath.Separator)))
}
