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

package archive_test

import (
	"archive/tar"
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/spawn-cli/spawn/pkg/archive"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

type tarEntry struct {
	name     string
	content  string
	linkName string
	mode     int64
	dir      bool
	symlink  bool
}

func writeTarGz(t *testing.T, path string, entries []tarEntry) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	gzw := gzip.NewWriter(f)
	writeTarEntries(t, gzw, entries)
	require.NoError(t, gzw.Close())
}

func writeTarXz(t *testing.T, path string, entries []tarEntry) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	xzw, err := xz.NewWriter(f)
	require.NoError(t, err)
	writeTarEntries(t, xzw, entries)
	require.NoError(t, xzw.Close())
}

func writeTarEntries(t *testing.T, w interface{ Write([]byte) (int, error) }, entries []tarEntry) {
	t.Helper()

	tw := tar.NewWriter(w)
	for _, e := range entries {
		mode := e.mode
		if mode == 0 {
			mode = 0o644
		}
		hdr := &tar.Header{
			Name: e.name,
			Mode: mode,
			Size: int64(len(e.content)),
		}
		switch {
		case e.dir:
			hdr.Typeflag = tar.TypeDir
			hdr.Size = 0
		case e.symlink:
			hdr.Typeflag = tar.TypeSymlink
			hdr.Linkname = e.linkName
			hdr.Size = 0
		default:
			hdr.Typeflag = tar.TypeReg
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if !e.dir && !e.symlink {
			_, err := tw.Write([]byte(e.content))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
}

func writeZip(t *testing.T, path string, files map[string]string) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	zw := zip.NewWriter(f)
	for name, content := range files {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

func TestDetect_ByExtension(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		path     string
		expected archive.Format
	}{
		{name: "tar_gz", path: "game.tar.gz", expected: archive.FormatTarGz},
		{name: "tgz", path: "game.tgz", expected: archive.FormatTarGz},
		{name: "tar_xz", path: "game.tar.xz", expected: archive.FormatTarXz},
		{name: "tar_bz2", path: "game.tar.bz2", expected: archive.FormatTarBz2},
		{name: "zip", path: "game.zip", expected: archive.FormatZip},
		{name: "appimage", path: "Game.AppImage", expected: archive.FormatAppImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			format, err := archive.Detect(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, format)
		})
	}
}

func TestDetect_ByMagic(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		header   []byte
		expected archive.Format
	}{
		{name: "gzip", header: []byte{0x1f, 0x8b, 0x08, 0x00}, expected: archive.FormatTarGz},
		{name: "xz", header: []byte{0xfd, '7', 'z', 'X', 'Z', 0x00}, expected: archive.FormatTarXz},
		{name: "bzip2", header: []byte("BZh91AY"), expected: archive.FormatTarBz2},
		{name: "zip", header: []byte{'P', 'K', 0x03, 0x04}, expected: archive.FormatZip},
		{name: "elf_appimage", header: []byte{0x7f, 'E', 'L', 'F', 2, 1, 1}, expected: archive.FormatAppImage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			// no known extension, force the magic check
			path := filepath.Join(t.TempDir(), "payload.bin")
			require.NoError(t, os.WriteFile(path, tt.header, 0o600))

			format, err := archive.Detect(path)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, format)
		})
	}
}

func TestDetect_Unsupported(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "notes.bin")
	require.NoError(t, os.WriteFile(path, []byte("hello world"), 0o600))

	_, err := archive.Detect(path)
	assert.ErrorIs(t, err, archive.ErrUnsupportedFormat)
}

func TestExtract_TarGz(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	src := filepath.Join(tmp, "game.tar.gz")
	writeTarGz(t, src, []tarEntry{
		{name: "game/", dir: true, mode: 0o755},
		{name: "game/run.sh", content: "#!/bin/sh\n", mode: 0o755},
		{name: "game/data.pak", content: "DATA"},
		{name: "game/link.sh", symlink: true, linkName: "run.sh"},
	})

	dest := filepath.Join(tmp, "out")
	require.NoError(t, os.MkdirAll(dest, 0o755))
	require.NoError(t, archive.Extract(src, dest, nil))

	assert.FileExists(t, filepath.Join(dest, "game", "run.sh"))
	data, err := os.ReadFile(filepath.Join(dest, "game", "data.pak"))
	require.NoError(t, err)
	assert.Equal(t, "DATA", string(data))

	link, err := os.Readlink(filepath.Join(dest, "game", "link.sh"))
	require.NoError(t, err)
	assert.Equal(t, "run.sh", link)

	info, err := os.Stat(filepath.Join(dest, "game", "run.sh"))
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&0o100, "executable bit from the archive should survive")
}

func TestExtract_TarXz(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	src := filepath.Join(tmp, "game.tar.xz")
	writeTarXz(t, src, []tarEntry{
		{name: "bin/game.x86_64", content: "ELFDATA", mode: 0o755},
	})

	dest := filepath.Join(tmp, "out")
	require.NoError(t, os.MkdirAll(dest, 0o755))
	require.NoError(t, archive.Extract(src, dest, nil))

	assert.FileExists(t, filepath.Join(dest, "bin", "game.x86_64"))
}

func TestExtract_Zip(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	src := filepath.Join(tmp, "game.zip")
	writeZip(t, src, map[string]string{
		"Game/readme.txt": "hi",
		"Game/game":       "bin",
	})

	dest := filepath.Join(tmp, "out")
	require.NoError(t, os.MkdirAll(dest, 0o755))
	require.NoError(t, archive.Extract(src, dest, nil))

	assert.FileExists(t, filepath.Join(dest, "Game", "readme.txt"))
	assert.FileExists(t, filepath.Join(dest, "Game", "game"))
}

func TestExtract_ProgressReceivesBytes(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	src := filepath.Join(tmp, "game.tar.gz")
	writeTarGz(t, src, []tarEntry{
		{name: "blob.dat", content: "0123456789"},
	})

	dest := filepath.Join(tmp, "out")
	require.NoError(t, os.MkdirAll(dest, 0o755))

	var progress bytes.Buffer
	require.NoError(t, archive.Extract(src, dest, &progress))
	assert.NotZero(t, progress.Len())
}

func TestExtract_PathTraversalRejected(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		entry string
	}{
		{name: "dotdot_segment", entry: "../evil.sh"},
		{name: "nested_dotdot", entry: "good/../../evil.sh"},
		{name: "absolute", entry: "/etc/evil.sh"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tmp := t.TempDir()
			src := filepath.Join(tmp, "evil.tar.gz")
			writeTarGz(t, src, []tarEntry{
				{name: tt.entry, content: "payload"},
			})

			dest := filepath.Join(tmp, "out")
			require.NoError(t, os.MkdirAll(dest, 0o755))

			err := archive.Extract(src, dest, nil)
			require.ErrorIs(t, err, archive.ErrPathTraversal)
			assert.NoFileExists(t, filepath.Join(tmp, "evil.sh"))
			assert.NoFileExists(t, "/etc/evil.sh")
		})
	}
}

func TestExtract_SymlinkEscapeRejected(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	src := filepath.Join(tmp, "evil.tar.gz")
	writeTarGz(t, src, []tarEntry{
		{name: "link", symlink: true, linkName: "../../outside"},
	})

	dest := filepath.Join(tmp, "out")
	require.NoError(t, os.MkdirAll(dest, 0o755))

	err := archive.Extract(src, dest, nil)
	assert.ErrorIs(t, err, archive.ErrPathTraversal)
}

func TestExtract_SymlinkChainEscapeRejected(t *testing.T) {
	t.Parallel()

	// each entry passes the lexical checks on its own, but chaining the two
	// links resolves sub/a/b to the directory above the extraction root
	tmp := t.TempDir()
	src := filepath.Join(tmp, "evil.tar.gz")
	writeTarGz(t, src, []tarEntry{
		{name: "sub/a", symlink: true, linkName: ".."},
		{name: "sub/a/b", symlink: true, linkName: ".."},
		{name: "sub/a/b/pwned", content: "escaped"},
	})

	dest := filepath.Join(tmp, "out")
	require.NoError(t, os.MkdirAll(dest, 0o755))

	err := archive.Extract(src, dest, nil)
	assert.ErrorIs(t, err, archive.ErrPathTraversal)

	assert.NoFileExists(t, filepath.Join(tmp, "pwned"))
	assert.NoFileExists(t, filepath.Join(filepath.Dir(tmp), "pwned"))
	assert.NoFileExists(t, filepath.Join(dest, "pwned"))
}

func TestExtract_WriteThroughSymlinkRejected(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	src := filepath.Join(tmp, "evil.tar.gz")
	writeTarGz(t, src, []tarEntry{
		{name: "lib", symlink: true, linkName: "."},
		{name: "lib/x", content: "redirected"},
	})

	dest := filepath.Join(tmp, "out")
	require.NoError(t, os.MkdirAll(dest, 0o755))

	err := archive.Extract(src, dest, nil)
	assert.ErrorIs(t, err, archive.ErrPathTraversal)
}

func TestExtract_SymlinkAtFilePathReplaced(t *testing.T) {
	t.Parallel()

	// a file entry whose path is occupied by an earlier symlink must replace
	// the link, never write through it
	tmp := t.TempDir()
	src := filepath.Join(tmp, "sneaky.tar.gz")
	writeTarGz(t, src, []tarEntry{
		{name: "data.cfg", content: "original"},
		{name: "alias", symlink: true, linkName: "data.cfg"},
		{name: "alias", content: "replacement"},
	})

	dest := filepath.Join(tmp, "out")
	require.NoError(t, os.MkdirAll(dest, 0o755))

	require.NoError(t, archive.Extract(src, dest, nil))

	data, err := os.ReadFile(filepath.Join(dest, "data.cfg"))
	require.NoError(t, err)
	assert.Equal(t, "original", string(data))

	info, err := os.Lstat(filepath.Join(dest, "alias"))
	require.NoError(t, err)
	assert.True(t, info.Mode().IsRegular())
}

func TestExtract_CorruptArchive(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	src := filepath.Join(tmp, "broken.tar.gz")
	// gzip magic followed by garbage
	require.NoError(t, os.WriteFile(src, []byte{0x1f, 0x8b, 0xff, 0xfe, 0xfd, 0xfc}, 0o600))

	dest := filepath.Join(tmp, "out")
	require.NoError(t, os.MkdirAll(dest, 0o755))

	err := archive.Extract(src, dest, nil)
	assert.ErrorIs(t, err, archive.ErrCorruptArchive)
}

func TestExtract_AppImagePassthroughRefused(t *testing.T) {
	t.Parallel()

	tmp := t.TempDir()
	src := filepath.Join(tmp, "Game.AppImage")
	require.NoError(t, os.WriteFile(src, []byte{0x7f, 'E', 'L', 'F'}, 0o755))

	err := archive.Extract(src, t.TempDir(), nil)
	assert.ErrorIs(t, err, archive.ErrUnsupportedFormat)
}
