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

// Package installer turns a game archive, AppImage, or loose directory into
// an installed, desktop-integrated game. All filesystem work happens inside a
// hidden staging directory next to the final location; the install becomes
// visible only through a single rename, so an interrupted run never leaves a
// half-written game directory behind.
package installer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/spawn-cli/spawn/pkg/archive"
	"github.com/spawn-cli/spawn/pkg/desktop"
	"github.com/spawn-cli/spawn/pkg/discovery"
	"github.com/spawn-cli/spawn/pkg/helpers"
	"github.com/spawn-cli/spawn/pkg/steam"
)

// stagingPrefix marks in-progress install directories. Anything with this
// prefix under the install root is a leftover from a crashed run and is safe
// to delete.
const stagingPrefix = ".spawn-staging-"

// Options configures one install.
type Options struct {
	Source     string // archive, AppImage, or directory
	InstallDir string
	Name       string // display name override; inferred from Source when empty
	Icon       string // icon path override; discovered when empty
	DryRun     bool
	Steam      bool
	Progress   io.Writer // receives extraction progress bytes, may be nil
	// Confirm is asked before replacing an existing install. Nil declines.
	Confirm func(prompt string) bool
}

// Result describes what an install did, or for a dry run, would do.
type Result struct {
	Name         string
	InstallPath  string
	Executable   string
	ExecReason   string
	Icon         string
	DesktopFiles []string
	SteamAdded   bool
	Replaced     bool
	DryRun       bool
}

// Installer wires the desktop and Steam integrations. Either can be swapped
// out in tests.
type Installer struct {
	Desktop *desktop.Integrator
	Steam   *steam.Client
}

func New() *Installer {
	return &Installer{
		Desktop: desktop.NewIntegrator(),
		Steam:   steam.NewClient(),
	}
}

// Install runs the full pipeline: stage, extract or copy, flatten, pick the
// executable, then promote and integrate. A dry run stops after the pick and
// removes the staging directory untouched.
func (ins *Installer) Install(opts Options) (*Result, error) {
	srcInfo, err := os.Stat(opts.Source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, opts.Source)
	}

	name := opts.Name
	if name == "" {
		name = helpers.FormatGameName(helpers.InferGameName(opts.Source))
	}
	target := filepath.Join(opts.InstallDir, helpers.DirName(name))

	replacing := false
	if _, err := os.Stat(target); err == nil {
		if opts.DryRun {
			replacing = true
		} else if opts.Confirm == nil || !opts.Confirm(fmt.Sprintf("%s is already installed. Replace it?", name)) {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyInstalled, target)
		} else {
			replacing = true
		}
	}

	cleanStaleStaging(opts.InstallDir)

	if err := os.MkdirAll(opts.InstallDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create install directory: %w", err)
	}
	staging, err := os.MkdirTemp(opts.InstallDir, stagingPrefix+helpers.DirName(name)+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to create staging directory: %w", err)
	}
	defer func() {
		// no-op after a successful promote
		if rmErr := os.RemoveAll(staging); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Warn().Err(rmErr).Str("path", staging).Msg("failed to remove staging directory")
		}
	}()

	exePath, reason, err := ins.stage(opts, srcInfo.IsDir(), staging, name)
	if err != nil {
		return nil, err
	}

	if err := EnsureExecutable(exePath); err != nil {
		return nil, err
	}

	icon := opts.Icon
	if icon != "" {
		if _, err := os.Stat(icon); err != nil {
			log.Warn().Str("path", icon).Msg("icon override does not exist, discovering instead")
			icon = ""
		}
	}
	if icon == "" {
		icon, _ = discovery.FindIcon(staging, name, exePath)
	}

	result := &Result{
		Name:        name,
		InstallPath: target,
		Executable:  rebase(exePath, staging, target),
		ExecReason:  reason,
		Icon:        rebase(icon, staging, target),
		Replaced:    replacing,
		DryRun:      opts.DryRun,
	}

	if opts.DryRun {
		return result, nil
	}

	if err := promote(staging, target, replacing); err != nil {
		return nil, err
	}

	written, err := ins.Desktop.Write(desktop.Entry{
		Name:    name,
		Exec:    result.Executable,
		WorkDir: filepath.Dir(result.Executable),
		Icon:    result.Icon,
	})
	if err != nil {
		return nil, err
	}
	result.DesktopFiles = written

	if opts.Steam {
		if err := ins.Steam.AddShortcut(name, result.Executable, result.Icon); err != nil {
			// the game is installed either way
			log.Warn().Err(err).Msg("steam registration failed")
		} else {
			result.SteamAdded = true
		}
	}

	log.Info().Str("name", name).Str("path", target).Str("exe", result.Executable).
		Msg("game installed")
	return result, nil
}

// stage fills the staging directory from the source and returns the selected
// executable inside it.
func (ins *Installer) stage(opts Options, sourceIsDir bool, staging, name string) (string, string, error) {
	if sourceIsDir {
		if err := copyTree(opts.Source, staging); err != nil {
			return "", "", err
		}
		return selectStaged(staging, name)
	}

	format, err := archive.Detect(opts.Source)
	if err != nil {
		return "", "", err
	}

	if format == archive.FormatAppImage {
		dest := filepath.Join(staging, filepath.Base(opts.Source))
		if err := copyFile(opts.Source, dest, 0o755); err != nil {
			return "", "", err
		}
		return dest, "AppImage payload", nil
	}

	if err := archive.Extract(opts.Source, staging, opts.Progress); err != nil {
		return "", "", err
	}
	return selectStaged(staging, name)
}

func selectStaged(staging, name string) (string, string, error) {
	if err := CollapseWrapper(staging); err != nil {
		return "", "", err
	}
	candidates, err := discovery.ClassifyExecutables(staging, name)
	if err != nil {
		return "", "", err
	}
	if len(candidates) == 0 {
		return "", "", fmt.Errorf("%w in %s", discovery.ErrNoExecutableFound, staging)
	}

	// the game may launch through a script the selection skipped, or the
	// selected script may invoke a binary; repair exec bits on the other
	// root-level candidates too, best effort
	for _, c := range candidates[1:] {
		if c.Depth != 0 || c.Tier == discovery.TierFallback {
			continue
		}
		if err := EnsureExecutable(c.Path); err != nil {
			log.Warn().Err(err).Str("path", c.Path).Msg("failed to restore exec bit")
		}
	}

	return candidates[0].Path, candidates[0].Reason, nil
}

// promote makes the staged tree the live install. When replacing, the old
// directory moves aside first so there is never a moment with the name
// pointing at a partial tree.
func promote(staging, target string, replacing bool) error {
	var old string
	if replacing {
		old = filepath.Join(filepath.Dir(target), stagingPrefix+"old-"+filepath.Base(target))
		if err := os.Rename(target, old); err != nil {
			return fmt.Errorf("failed to move previous install aside: %w", err)
		}
	}

	if err := os.Rename(staging, target); err != nil {
		if old != "" {
			if restoreErr := os.Rename(old, target); restoreErr != nil {
				log.Error().Err(restoreErr).Str("path", old).Msg("failed to restore previous install")
			}
		}
		return fmt.Errorf("failed to move install into place: %w", err)
	}

	if old != "" {
		if err := os.RemoveAll(old); err != nil {
			log.Warn().Err(err).Str("path", old).Msg("failed to remove previous install")
		}
	}
	return nil
}

// cleanStaleStaging removes leftovers from interrupted runs.
func cleanStaleStaging(installDir string) {
	entries, err := os.ReadDir(installDir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), stagingPrefix) {
			continue
		}
		path := filepath.Join(installDir, e.Name())
		if err := os.RemoveAll(path); err != nil {
			log.Warn().Err(err).Str("path", path).Msg("failed to remove stale staging directory")
		} else {
			log.Debug().Str("path", path).Msg("removed stale staging directory")
		}
	}
}

// rebase rewrites a path under the staging directory to where it will live
// after the promote rename.
func rebase(path, staging, target string) string {
	if path == "" {
		return ""
	}
	rel, err := filepath.Rel(staging, path)
	if err != nil {
		return path
	}
	return filepath.Join(target, rel)
}

func copyFile(src, dest string, mode os.FileMode) error {
	//nolint:gosec // source path is user input by design
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer func() { _ = in.Close() }()

	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to copy to %s: %w", dest, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", dest, err)
	}
	return nil
}

// copyTree duplicates a directory, preserving file modes and symlinks.
func copyTree(src, dest string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		out := filepath.Join(dest, rel)

		switch {
		case d.IsDir():
			if rel == "." {
				return nil
			}
			return os.MkdirAll(out, 0o755)
		case d.Type()&os.ModeSymlink != 0:
			linkTarget, err := os.Readlink(path)
			if err != nil {
				return fmt.Errorf("failed to read symlink %s: %w", path, err)
			}
			return os.Symlink(linkTarget, out)
		default:
			info, err := d.Info()
			if err != nil {
				return err
			}
			return copyFile(path, out, info.Mode().Perm())
		}
	})
}
