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
	"fmt"
	"os"
	"path/filepath"
)

// CollapseWrapper removes redundant single-directory nesting: archives often
// wrap their payload in "Game-v1.2/". The loop repeats until the root holds
// more than one entry or a file, so double wrappers collapse too. Running it
// on an already-flat tree is a no-op.
func CollapseWrapper(root string) error {
	for {
		entries, err := os.ReadDir(root)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", root, err)
		}
		if len(entries) != 1 || !entries[0].IsDir() {
			return nil
		}

		// move the wrapper aside first so a child sharing its name can
		// take its place at the root
		wrapper := filepath.Join(root, entries[0].Name())
		staging := wrapper + ".unwrap"
		if err := os.Rename(wrapper, staging); err != nil {
			return fmt.Errorf("failed to rename wrapper %s: %w", wrapper, err)
		}

		children, err := os.ReadDir(staging)
		if err != nil {
			return fmt.Errorf("failed to read wrapper %s: %w", staging, err)
		}
		for _, child := range children {
			from := filepath.Join(staging, child.Name())
			to := filepath.Join(root, child.Name())
			if err := os.Rename(from, to); err != nil {
				return fmt.Errorf("failed to lift %s: %w", from, err)
			}
		}
		if err := os.Remove(staging); err != nil {
			return fmt.Errorf("failed to remove empty wrapper: %w", err)
		}
	}
}
