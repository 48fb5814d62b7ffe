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

// Package archive reads the container formats games ship in: tar with
// gzip/xz/bzip2 compression, zip, and AppImage as a degenerate single-file
// payload. Format support is a closed set; adding a format means adding a
// variant and a handler, not ad hoc branching at call sites.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Format identifies a supported container format.
type Format int

const (
	FormatUnknown Format = iota
	FormatTarGz
	FormatTarXz
	FormatTarBz2
	FormatZip
	// FormatAppImage is a single already-executable payload. It bypasses
	// extraction entirely; the installer copies it into place.
	FormatAppImage
)

var (
	ErrUnsupportedFormat = errors.New("unsupported archive format")
	ErrCorruptArchive    = errors.New("corrupt archive")
	ErrPathTraversal     = errors.New("archive entry escapes destination root")
)

func (f Format) String() string {
	switch f {
	case FormatTarGz:
		return "tar+gzip"
	case FormatTarXz:
		return "tar+xz"
	case FormatTarBz2:
		return "tar+bzip2"
	case FormatZip:
		return "zip"
	case FormatAppImage:
		return "AppImage"
	case FormatUnknown:
		return "unknown"
	default:
		return "unknown"
	}
}

// entryKind distinguishes the entry types we materialize on disk.
type entryKind int

const (
	entryFile entryKind = iota
	entryDir
	entrySymlink
)

// entry is the format-independent view of one archive member. It only lives
// for the duration of extraction.
type entry struct {
	path       string
	linkTarget string
	mode       fs.FileMode
	size       int64
	kind       entryKind
}

var extFormats = map[string]Format{
	".tar.gz":   FormatTarGz,
	".tgz":      FormatTarGz,
	".tar.xz":   FormatTarXz,
	".txz":      FormatTarXz,
	".tar.bz2":  FormatTarBz2,
	".tbz2":     FormatTarBz2,
	".zip":      FormatZip,
	".appimage": FormatAppImage,
}

var magicFormats = []struct {
	magic  []byte
	format Format
}{
	{[]byte{0x1f, 0x8b}, FormatTarGz},
	{[]byte{0xfd, '7', 'z', 'X', 'Z', 0x00}, FormatTarXz},
	{[]byte{'B', 'Z', 'h'}, FormatTarBz2},
	{[]byte{'P', 'K', 0x03, 0x04}, FormatZip},
	{[]byte{0x7f, 'E', 'L', 'F'}, FormatAppImage},
}

// Detect determines the container format of the file at path, by extension
// first and by magic bytes when the extension is unrecognized.
func Detect(path string) (Format, error) {
	lower := strings.ToLower(path)
	for ext, format := range extFormats {
		if strings.HasSuffix(lower, ext) {
			return format, nil
		}
	}
	return detectMagic(path)
}

func detectMagic(path string) (Format, error) {
	//nolint:gosec // path comes from the user's own install request
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	header := make([]byte, 8)
	n, err := f.Read(header)
	if err != nil && n == 0 {
		return FormatUnknown, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	header = header[:n]

	for _, m := range magicFormats {
		if bytes.HasPrefix(header, m.magic) {
			return m.format, nil
		}
	}

	return FormatUnknown, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
}
