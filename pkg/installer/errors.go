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

package installer

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSourceNotFound means the install source path does not exist.
	ErrSourceNotFound = errors.New("source not found")
	// ErrAlreadyInstalled means the target directory exists and the user
	// declined to replace it.
	ErrAlreadyInstalled = errors.New("game already installed")
	// ErrGameNotFound means no installed game matched an uninstall query.
	ErrGameNotFound = errors.New("game not found")
)

// AmbiguousError reports a query that matched more than one installed game.
// Candidates are install directory paths, best match first.
type AmbiguousError struct {
	Query      string
	Candidates []string
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("%q matches %d installed games: %s",
		e.Query, len(e.Candidates), strings.Join(e.Candidates, ", "))
}
