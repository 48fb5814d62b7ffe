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
	"encoding/binary"
	"io"
	"os"
	"regexp"
)

// ELF identification header offsets
const (
	elfClassOffset = 4
	elfDataOffset  = 5
	elfTypeOffset  = 16
	elfHeaderLen   = 18
)

const (
	elfData2LSB = 1
	elfData2MSB = 2

	elfTypeExec = 2
	elfTypeDyn  = 3
)

var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

// matches libfoo.so, libfoo.so.1, libfoo.so.1.2.3
var sharedObjectRe = regexp.MustCompile(`\.so(\.\d+)*$`)

func isSharedObjectName(name string) bool {
	return sharedObjectRe.MatchString(name)
}

// isELFExecutable reports whether the file starts with the ELF magic and its
// type field declares an executable. Position-independent executables are
// typed ET_DYN like shared libraries, so .so-named files must be filtered by
// name before calling this.
func isELFExecutable(path string) bool {
	//nolint:gosec // path is inside the tree this tool extracted
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer func() { _ = f.Close() }()

	header := make([]byte, elfHeaderLen)
	if _, err := io.ReadFull(f, header); err != nil {
		return false
	}

	for i, b := range elfMagic {
		if header[i] != b {
			return false
		}
	}

	var elfType uint16
	switch header[elfDataOffset] {
	case elfData2LSB:
		elfType = binary.LittleEndian.Uint16(header[elfTypeOffset:])
	case elfData2MSB:
		elfType = binary.BigEndian.Uint16(header[elfTypeOffset:])
	default:
		return false
	}

	return elfType == elfTypeExec || elfType == elfTypeDyn
}
