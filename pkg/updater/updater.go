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

// Package updater checks GitHub releases for newer builds and replaces the
// running binary in place.
package updater

import (
	"context"
	"fmt"

	"github.com/creativeprojects/go-selfupdate"

	"github.com/spawn-cli/spawn/pkg/config"
)

// CheckLatest reports whether a newer release is published. Development
// builds never report an update. Callers wanting a quiet best-effort check
// should pass a context with a short deadline.
func CheckLatest(ctx context.Context) (string, bool, error) {
	if config.AppVersion == "DEVELOPMENT" {
		return "", false, nil
	}

	latest, found, err := selfupdate.DetectLatest(ctx, selfupdate.ParseSlug(config.GithubSlug))
	if err != nil {
		return "", false, fmt.Errorf("failed to check for updates: %w", err)
	}
	if !found || latest.LessOrEqual(config.AppVersion) {
		return "", false, nil
	}
	return latest.Version(), true, nil
}

// SelfUpdate downloads the latest release and swaps the current executable.
// Returns the installed version.
func SelfUpdate(ctx context.Context) (string, error) {
	if config.AppVersion == "DEVELOPMENT" {
		return "", fmt.Errorf("development builds cannot self-update")
	}

	release, err := selfupdate.UpdateSelf(ctx, config.AppVersion, selfupdate.ParseSlug(config.GithubSlug))
	if err != nil {
		return "", fmt.Errorf("failed to update: %w", err)
	}
	return release.Version(), nil
}
