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

package cli

import (
	"bytes"
	"flag"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spawn-cli/spawn/pkg/config"
	"github.com/spawn-cli/spawn/pkg/installer"
)

func testApp(t *testing.T, stdin string) (*App, *bytes.Buffer) {
	t.Helper()
	tmp := t.TempDir()
	searchDir := filepath.Join(tmp, "Downloads")
	require.NoError(t, os.MkdirAll(searchDir, 0o755))

	cfg, err := config.NewConfig(filepath.Join(tmp, "config"), config.Values{
		ConfigSchema: config.SchemaVersion,
		SearchDir:    searchDir,
		InstallDir:   filepath.Join(tmp, "Games"),
	})
	require.NoError(t, err)

	out := &bytes.Buffer{}
	return &App{
		Cfg:       cfg,
		Installer: installer.New(),
		Stdin:     strings.NewReader(stdin),
		Stdout:    out,
		Stderr:    io.Discard,
	}, out
}

func TestSetupFlags_RegistersAll(t *testing.T) {
	// registers on the global FlagSet, so no t.Parallel and no second call
	SetupFlags()

	for _, name := range []string{
		"name", "icon", "uninstall", "set-search-dir", "set-install-dir",
		"dry-run", "steam", "yes", "debug", "update", "version",
	} {
		assert.NotNil(t, flag.Lookup(name), name)
	}
}

func TestConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		stdin string
		yes   bool
		want  bool
	}{
		{name: "answer y", stdin: "y\n", want: true},
		{name: "answer yes", stdin: "yes\n", want: true},
		{name: "answer n", stdin: "n\n", want: false},
		{name: "empty answer declines", stdin: "\n", want: false},
		{name: "eof declines", stdin: "", want: false},
		{name: "assume yes skips prompt", stdin: "", yes: true, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			app, _ := testApp(t, tt.stdin)
			app.AssumeYes = tt.yes
			assert.Equal(t, tt.want, app.Confirm("replace?"))
		})
	}
}

func TestPick(t *testing.T) {
	t.Parallel()

	options := []string{"alpha", "beta", "gamma"}

	app, out := testApp(t, "2\n")
	choice, err := app.Pick("choose:", options)
	require.NoError(t, err)
	assert.Equal(t, "beta", choice)
	assert.Contains(t, out.String(), "1) alpha")
	assert.Contains(t, out.String(), "3) gamma")

	app, _ = testApp(t, "7\n")
	_, err = app.Pick("choose:", options)
	require.Error(t, err)

	app, _ = testApp(t, "")
	app.AssumeYes = true
	choice, err = app.Pick("choose:", options)
	require.NoError(t, err)
	assert.Equal(t, "alpha", choice)
}

func TestResolveSource_ExistingPath(t *testing.T) {
	t.Parallel()

	app, _ := testApp(t, "")
	path := filepath.Join(t.TempDir(), "game.tar.gz")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	resolved, err := app.ResolveSource(path)
	require.NoError(t, err)
	assert.Equal(t, path, resolved)
}

func TestResolveSource_SearchDirMatch(t *testing.T) {
	t.Parallel()

	app, _ := testApp(t, "")
	archive := filepath.Join(app.Cfg.SearchDir(), "stardew-valley.tar.gz")
	require.NoError(t, os.WriteFile(archive, []byte("x"), 0o644))

	resolved, err := app.ResolveSource("stardew")
	require.NoError(t, err)
	assert.Equal(t, archive, resolved)
}

func TestResolveSource_NoMatch(t *testing.T) {
	t.Parallel()

	app, _ := testApp(t, "")
	_, err := app.ResolveSource("nothing here")
	assert.ErrorIs(t, err, installer.ErrSourceNotFound)
}

func TestResolveSource_MultiMatchPrompts(t *testing.T) {
	t.Parallel()

	app, out := testApp(t, "2\n")
	require.NoError(t, os.WriteFile(filepath.Join(app.Cfg.SearchDir(), "game-a.zip"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(app.Cfg.SearchDir(), "game-b.zip"), []byte("x"), 0o644))

	resolved, err := app.ResolveSource("game")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "matches several")
	assert.Contains(t, []string{
		filepath.Join(app.Cfg.SearchDir(), "game-a.zip"),
		filepath.Join(app.Cfg.SearchDir(), "game-b.zip"),
	}, resolved)
}

func TestUpdateConfig(t *testing.T) {
	t.Parallel()

	app, out := testApp(t, "")
	tmp := t.TempDir()

	require.NoError(t, app.updateConfig(filepath.Join(tmp, "dl"), filepath.Join(tmp, "games")))
	assert.Equal(t, filepath.Join(tmp, "dl"), app.Cfg.SearchDir())
	assert.Equal(t, filepath.Join(tmp, "games"), app.Cfg.InstallDir())
	assert.Contains(t, out.String(), "Search directory set")

	// persisted
	data, err := os.ReadFile(app.Cfg.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), filepath.Join(tmp, "dl"))
}
