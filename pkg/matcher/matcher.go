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

// Package matcher resolves loose user-typed names against the filesystem:
// download archives in the search directory and game directories under the
// install root. Matching is case-insensitive substring over normalized names,
// ranked by string similarity so the closest hit lists first.
package matcher

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/spawn-cli/spawn/pkg/helpers"
)

// in-progress download suffixes, never candidates
var partialSuffixes = []string{".aria2", ".part", ".tmp", ".crdownload"}

func isPartialDownload(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range partialSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

func normalize(s string) string {
	s = strings.ToLower(s)
	for _, r := range []string{" ", "_", "-", "."} {
		s = strings.ReplaceAll(s, r, "")
	}
	return s
}

// rank orders names by similarity to the query, most similar first, with the
// name itself as the deterministic tie-break.
func rank(names []string, query string) {
	nq := normalize(query)
	sort.SliceStable(names, func(i, j int) bool {
		si := edlib.JaroWinklerSimilarity(normalize(filepath.Base(names[i])), nq)
		sj := edlib.JaroWinklerSimilarity(normalize(filepath.Base(names[j])), nq)
		if si != sj {
			return si > sj
		}
		return names[i] < names[j]
	})
}

// FindSources returns entries in searchDir whose names contain the query,
// ranked best match first. Both archives and plain directories qualify;
// partially downloaded files never do.
func FindSources(searchDir, query string) ([]string, error) {
	entries, err := os.ReadDir(searchDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read search directory %s: %w", searchDir, err)
	}

	nq := normalize(query)
	var matches []string
	for _, e := range entries {
		if isPartialDownload(e.Name()) {
			continue
		}
		if strings.Contains(normalize(e.Name()), nq) {
			matches = append(matches, filepath.Join(searchDir, e.Name()))
		}
	}

	rank(matches, query)
	return matches, nil
}

// FindInstalled returns game directories under installDir matching the query.
// An exact directory-name match short-circuits to a single result so "Sub"
// never shadows an installed "Sub" with "Subnautica".
func FindInstalled(installDir, query string) ([]string, error) {
	entries, err := os.ReadDir(installDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read install directory %s: %w", installDir, err)
	}

	exact := helpers.DirName(query)
	nq := normalize(query)
	var matches []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		// hidden dirs are never installs; staging leftovers live there
		if strings.HasPrefix(e.Name(), ".") {
			continue
		}
		if e.Name() == exact {
			return []string{filepath.Join(installDir, e.Name())}, nil
		}
		if strings.Contains(normalize(e.Name()), nq) {
			matches = append(matches, filepath.Join(installDir, e.Name()))
		}
	}

	rank(matches, query)
	return matches, nil
}
