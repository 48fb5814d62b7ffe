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

package helpers_test

import (
	"testing"

	"github.com/spawn-cli/spawn/pkg/helpers"
	"github.com/stretchr/testify/assert"
)

func TestFormatGameName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{name: "underscores", in: "stardew_valley", expected: "Stardew Valley"},
		{name: "dashes", in: "hollow-knight", expected: "Hollow Knight"},
		{name: "mixed_case", in: "CELESTE", expected: "Celeste"},
		{name: "already_clean", in: "Factorio", expected: "Factorio"},
		{name: "version_suffix", in: "noita-v1.2", expected: "Noita V1.2"},
		{name: "empty", in: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, helpers.FormatGameName(tt.in))
		})
	}
}

func TestDirName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Stardew_Valley", helpers.DirName("stardew valley"))
	assert.Equal(t, "Hollow_Knight", helpers.DirName("hollow-knight"))
}

func TestInferGameName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{name: "tar_gz", in: "/tmp/Stardew_Valley.tar.gz", expected: "Stardew_Valley"},
		{name: "tar_xz", in: "noita.tar.xz", expected: "noita"},
		{name: "tar_bz2", in: "celeste.tar.bz2", expected: "celeste"},
		{name: "zip", in: "Factorio.zip", expected: "Factorio"},
		{name: "appimage_mixed_case", in: "Overcooked.AppImage", expected: "Overcooked"},
		{name: "plain_folder", in: "/games/Undertale", expected: "Undertale"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, helpers.InferGameName(tt.in))
		})
	}
}
