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

package matcher_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spawn-cli/spawn/pkg/matcher"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func TestFindSources(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "stardew-valley-1.6.tar.gz")
	touch(t, dir, "StardewValley-linux.zip")
	touch(t, dir, "factorio_2.0.tar.xz")
	touch(t, dir, "stardew-valley-1.6.tar.gz.aria2")
	touch(t, dir, "celeste.zip.part")

	matches, err := matcher.FindSources(dir, "stardew valley")
	require.NoError(t, err)
	require.Len(t, matches, 2)
	for _, m := range matches {
		assert.NotContains(t, m, ".aria2")
		assert.NotContains(t, m, ".part")
	}
}

func TestFindSources_NoMatch(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "factorio_2.0.tar.xz")

	matches, err := matcher.FindSources(dir, "stardew")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFindSources_IncludesDirectories(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Celeste_Linux"), 0o755))

	matches, err := matcher.FindSources(dir, "celeste")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, filepath.Join(dir, "Celeste_Linux"), matches[0])
}

func TestFindInstalled_ExactWinsOverSubstring(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Sub"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Subnautica"), 0o755))

	matches, err := matcher.FindInstalled(dir, "Sub")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, filepath.Join(dir, "Sub"), matches[0])
}

func TestFindInstalled_FuzzyRanked(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Stardew_Valley"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Star_Ruler"), 0o755))

	matches, err := matcher.FindInstalled(dir, "stardew")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, filepath.Join(dir, "Stardew_Valley"), matches[0])
}

func TestFindInstalled_SkipsHiddenDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "Celeste"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".spawn-staging-Celeste-12345"), 0o755))

	matches, err := matcher.FindInstalled(dir, "celeste")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, filepath.Join(dir, "Celeste"), matches[0])

	// a crashed run's leftover alone must not look like an install
	require.NoError(t, os.RemoveAll(filepath.Join(dir, "Celeste")))
	matches, err = matcher.FindInstalled(dir, "celeste")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFindInstalled_MissingRoot(t *testing.T) {
	t.Parallel()

	matches, err := matcher.FindInstalled(filepath.Join(t.TempDir(), "nope"), "game")
	require.NoError(t, err)
	assert.Empty(t, matches)
}
