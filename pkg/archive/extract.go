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

package archive

import (
	"archive/tar"
	"compress/bzip2"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"
	"github.com/rs/zerolog/log"
	"github.com/ulikunitz/xz"
)

// Extract unpacks the archive at src into dest, which must already exist.
// progress, when non-nil, receives the compressed bytes as they are consumed
// so callers can drive a progress bar against the archive's file size.
// Entry paths are sanitized; anything resolving outside dest is rejected with
// ErrPathTraversal before a single byte is written for it.
func Extract(src, dest string, progress io.Writer) error {
	format, err := Detect(src)
	if err != nil {
		return err
	}

	switch format {
	case FormatTarGz, FormatTarXz, FormatTarBz2:
		return extractTar(src, dest, format, progress)
	case FormatZip:
		return extractZip(src, dest, progress)
	case FormatAppImage, FormatUnknown:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, src)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, src)
	}
}

func extractTar(src, dest string, format Format, progress io.Writer) error {
	//nolint:gosec // path comes from the user's own install request
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = f.Close() }()

	var raw io.Reader = f
	if progress != nil {
		raw = io.TeeReader(f, progress)
	}

	var decompressed io.Reader
	switch format {
	case FormatTarGz:
		gzr, gzErr := gzip.NewReader(raw)
		if gzErr != nil {
			return fmt.Errorf("%w: %s: %s", ErrCorruptArchive, src, gzErr)
		}
		defer func() { _ = gzr.Close() }()
		decompressed = gzr
	case FormatTarXz:
		xzr, xzErr := xz.NewReader(raw)
		if xzErr != nil {
			return fmt.Errorf("%w: %s: %s", ErrCorruptArchive, src, xzErr)
		}
		decompressed = xzr
	case FormatTarBz2:
		decompressed = bzip2.NewReader(raw)
	case FormatZip, FormatAppImage, FormatUnknown:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, src)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, src)
	}

	tr := tar.NewReader(decompressed)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %s", ErrCorruptArchive, src, err)
		}

		e := entry{
			path: hdr.Name,
			mode: fs.FileMode(hdr.Mode & 0o777), //nolint:gosec // masked to permission bits
			size: hdr.Size,
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			e.kind = entryDir
		case tar.TypeReg:
			e.kind = entryFile
		case tar.TypeSymlink:
			e.kind = entrySymlink
			e.linkTarget = hdr.Linkname
		default:
			log.Debug().Str("path", hdr.Name).Msgf("skipping tar entry type %d", hdr.Typeflag)
			continue
		}

		if err := writeEntry(dest, e, tr); err != nil {
			return err
		}
	}
}

func extractZip(src, dest string, progress io.Writer) error {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("%w: %s: %s", ErrCorruptArchive, src, err)
	}
	defer func() { _ = zr.Close() }()

	for _, zf := range zr.File {
		e := entry{
			path: zf.Name,
			mode: zf.Mode() & 0o777,
			size: int64(zf.UncompressedSize64), //nolint:gosec // sizes well below overflow
		}

		switch {
		case zf.FileInfo().IsDir():
			e.kind = entryDir
		case zf.Mode()&fs.ModeSymlink != 0:
			e.kind = entrySymlink
		default:
			e.kind = entryFile
		}

		rc, err := zf.Open()
		if err != nil {
			return fmt.Errorf("%w: %s: %s", ErrCorruptArchive, zf.Name, err)
		}

		if e.kind == entrySymlink {
			// zip stores the link target as the file contents
			target, readErr := io.ReadAll(io.LimitReader(rc, 4096))
			_ = rc.Close()
			if readErr != nil {
				return fmt.Errorf("%w: %s: %s", ErrCorruptArchive, zf.Name, readErr)
			}
			e.linkTarget = string(target)
			if err := writeEntry(dest, e, nil); err != nil {
				return err
			}
			continue
		}

		var content io.Reader = rc
		if progress != nil {
			// approximates compressed progress with decompressed bytes
			content = io.TeeReader(rc, progress)
		}

		err = writeEntry(dest, e, content)
		_ = rc.Close()
		if err != nil {
			return err
		}
	}

	return nil
}

// writeEntry materializes one archive entry under dest. This is the single
// chokepoint where the path-traversal guard runs for every format.
func writeEntry(dest string, e entry, content io.Reader) error {
	target, err := securePath(dest, e.path)
	if err != nil {
		return err
	}

	switch e.kind {
	case entryDir:
		if err := ensureParent(dest, target); err != nil {
			return err
		}
		if err := os.MkdirAll(target, dirMode(e.mode)); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", target, err)
		}
		return nil

	case entrySymlink:
		if err := secureLinkTarget(dest, target, e.linkTarget); err != nil {
			return err
		}
		if err := ensureParent(dest, target); err != nil {
			return err
		}
		if err := os.Symlink(e.linkTarget, target); err != nil {
			return fmt.Errorf("failed to create symlink %s: %w", target, err)
		}
		return nil

	case entryFile:
		if err := ensureParent(dest, target); err != nil {
			return err
		}
		mode := e.mode
		if mode&0o400 == 0 {
			mode |= 0o644
		}
		//nolint:gosec // target is validated by securePath above
		out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
		if err != nil {
			return fmt.Errorf("failed to create file %s: %w", target, err)
		}
		//nolint:gosec // archive sizes are bounded by the user's own download
		if _, err := io.Copy(out, content); err != nil {
			_ = out.Close()
			return fmt.Errorf("%w: %s: %s", ErrCorruptArchive, e.path, err)
		}
		if err := out.Close(); err != nil {
			return fmt.Errorf("failed to close %s: %w", target, err)
		}
		return nil

	default:
		return nil
	}
}

// ensureParent creates target's parent directory and verifies it resolves to
// exactly where its lexical path says it should under dest. The lexical check
// in securePath is not enough on its own: a chain of individually-valid
// symlinks laid down by earlier entries can redirect a later write outside
// the root, so writes through any symlinked component are refused.
func ensureParent(dest, target string) error {
	parent := filepath.Dir(target)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", target, err)
	}

	resolvedRoot, err := filepath.EvalSymlinks(dest)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", dest, err)
	}
	resolvedParent, err := filepath.EvalSymlinks(parent)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", parent, err)
	}
	rel, err := filepath.Rel(filepath.Clean(dest), parent)
	if err != nil || resolvedParent != filepath.Join(resolvedRoot, rel) {
		return fmt.Errorf("%w: %s", ErrPathTraversal, target)
	}

	// a symlink already occupying the target path would redirect the write
	if info, lerr := os.Lstat(target); lerr == nil && info.Mode()&fs.ModeSymlink != 0 {
		if err := os.Remove(target); err != nil {
			return fmt.Errorf("failed to replace symlink at %s: %w", target, err)
		}
	}
	return nil
}

// securePath joins an archive entry path onto dest, rejecting absolute paths
// and any ".." climb above the extraction root.
func securePath(dest, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("%w: %s", ErrPathTraversal, name)
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrPathTraversal, name)
	}

	target := filepath.Join(dest, cleaned)
	root := filepath.Clean(dest)
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrPathTraversal, name)
	}
	return target, nil
}

// secureLinkTarget rejects symlinks whose resolved target would land outside
// the extraction root.
func secureLinkTarget(dest, linkPath, linkTarget string) error {
	if filepath.IsAbs(linkTarget) {
		return fmt.Errorf("%w: symlink %s -> %s", ErrPathTraversal, linkPath, linkTarget)
	}

	resolved := filepath.Join(filepath.Dir(linkPath), linkTarget)
	root := filepath.Clean(dest)
	if resolved != root && !strings.HasPrefix(resolved, root+string(os.PathSeparator)) {
		return fmt.Errorf("%w: symlink %s -> %s", ErrPathTraversal, linkPath, linkTarget)
	}
	return nil
}

func dirMode(mode fs.FileMode) fs.FileMode {
	if mode&0o700 != 0o700 {
		mode |= 0o755
	}
	return mode
}
