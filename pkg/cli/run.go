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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/spawn-cli/spawn/pkg/config"
	"github.com/spawn-cli/spawn/pkg/installer"
	"github.com/spawn-cli/spawn/pkg/matcher"
	"github.com/spawn-cli/spawn/pkg/updater"
)

// status line glyphs
const (
	glyphStep = "▶"
	glyphOK   = "✔"
	glyphWarn = "⚠"
	glyphFail = "✖"
)

// App binds the installer to a terminal. Streams are fields so tests can
// script the prompts.
type App struct {
	Cfg       *config.Instance
	Installer *installer.Installer
	Stdin     io.Reader
	Stdout    io.Writer
	Stderr    io.Writer
	AssumeYes bool
}

func NewApp(cfg *config.Instance, assumeYes bool) *App {
	return &App{
		Cfg:       cfg,
		Installer: installer.New(),
		Stdin:     os.Stdin,
		Stdout:    os.Stdout,
		Stderr:    os.Stderr,
		AssumeYes: assumeYes,
	}
}

func (a *App) step(format string, args ...any) {
	_, _ = fmt.Fprintf(a.Stdout, glyphStep+" "+format+"\n", args...)
}

func (a *App) ok(format string, args ...any) {
	_, _ = fmt.Fprintf(a.Stdout, glyphOK+" "+format+"\n", args...)
}

func (a *App) warn(format string, args ...any) {
	_, _ = fmt.Fprintf(a.Stderr, glyphWarn+" "+format+"\n", args...)
}

func (a *App) fail(format string, args ...any) {
	_, _ = fmt.Fprintf(a.Stderr, glyphFail+" "+format+"\n", args...)
}

// Confirm asks a yes/no question. -yes answers every prompt with yes.
func (a *App) Confirm(prompt string) bool {
	if a.AssumeYes {
		return true
	}
	_, _ = fmt.Fprintf(a.Stdout, "%s [y/N]: ", prompt)
	scanner := bufio.NewScanner(a.Stdin)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

// Pick presents a numbered list and returns the chosen option. -yes takes
// the first, which callers order best match first.
func (a *App) Pick(prompt string, options []string) (string, error) {
	if a.AssumeYes {
		return options[0], nil
	}

	_, _ = fmt.Fprintf(a.Stdout, "%s\n", prompt)
	for i, opt := range options {
		_, _ = fmt.Fprintf(a.Stdout, "  %d) %s\n", i+1, opt)
	}
	_, _ = fmt.Fprintf(a.Stdout, "Enter a number (1-%d): ", len(options))

	scanner := bufio.NewScanner(a.Stdin)
	if !scanner.Scan() {
		return "", errors.New("no selection made")
	}
	n, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil || n < 1 || n > len(options) {
		return "", fmt.Errorf("invalid selection %q", scanner.Text())
	}
	return options[n-1], nil
}

// ResolveSource turns the positional argument into a concrete path: an
// existing path is taken as-is, anything else is matched against the search
// directory.
func (a *App) ResolveSource(arg string) (string, error) {
	if _, err := os.Stat(arg); err == nil {
		return filepath.Abs(arg)
	}

	searchDir := a.Cfg.SearchDir()
	matches, err := matcher.FindSources(searchDir, arg)
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: nothing matching %q in %s", installer.ErrSourceNotFound, arg, searchDir)
	case 1:
		return matches[0], nil
	default:
		return a.Pick(fmt.Sprintf("%q matches several files in %s:", arg, searchDir), matches)
	}
}

// progressFor builds an extraction progress bar sized to the source archive.
// Directories have no single size worth reporting.
func (a *App) progressFor(source string) io.Writer {
	info, err := os.Stat(source)
	if err != nil || info.IsDir() {
		return nil
	}
	return progressbar.NewOptions64(
		info.Size(),
		progressbar.OptionSetDescription("extracting"),
		progressbar.OptionSetWriter(a.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionClearOnFinish(),
	)
}

// Install resolves the source and runs the installer, narrating each step.
func (a *App) Install(arg, nameOverride, iconOverride string, dryRun, addSteam bool) error {
	source, err := a.ResolveSource(arg)
	if err != nil {
		a.fail("%v", err)
		return err
	}

	a.step("Installing from %s", source)

	res, err := a.Installer.Install(installer.Options{
		Source:     source,
		InstallDir: a.Cfg.InstallDir(),
		Name:       nameOverride,
		Icon:       iconOverride,
		DryRun:     dryRun,
		Steam:      addSteam,
		Progress:   a.progressFor(source),
		Confirm:    a.Confirm,
	})
	if err != nil {
		a.fail("%v", err)
		return err
	}

	if res.DryRun {
		a.ok("Dry run: would install %s to %s", res.Name, res.InstallPath)
		a.ok("Dry run: would launch %s (%s)", res.Executable, res.ExecReason)
		if res.Icon != "" {
			a.ok("Dry run: would use icon %s", res.Icon)
		}
		if res.Replaced {
			a.warn("Dry run: would replace an existing install")
		}
		return nil
	}

	a.ok("Installed %s to %s", res.Name, res.InstallPath)
	a.ok("Launches %s (%s)", res.Executable, res.ExecReason)
	for _, f := range res.DesktopFiles {
		a.ok("Created %s", f)
	}
	if res.Icon == "" {
		a.warn("No icon found")
	}
	if addSteam {
		if res.SteamAdded {
			a.ok("Added to Steam (restart Steam to see it)")
		} else {
			a.warn("Could not add to Steam")
		}
	}

	a.notifyUpdate()
	return nil
}

// Uninstall removes an installed game, prompting when the query is
// ambiguous.
func (a *App) Uninstall(query string) error {
	installDir := a.Cfg.InstallDir()

	res, err := a.Installer.Uninstall(installDir, query)
	var ambiguous *installer.AmbiguousError
	if errors.As(err, &ambiguous) {
		choice, pickErr := a.Pick(fmt.Sprintf("%q matches several installed games:", query), ambiguous.Candidates)
		if pickErr != nil {
			a.fail("%v", pickErr)
			return pickErr
		}
		res, err = a.Installer.Uninstall(installDir, filepath.Base(choice))
	}
	if err != nil {
		a.fail("%v", err)
		return err
	}

	a.ok("Uninstalled %s from %s", res.Name, res.InstallPath)
	for _, f := range res.DesktopFiles {
		a.ok("Removed %s", f)
	}
	if res.SteamRemoved {
		a.ok("Removed Steam shortcut")
	}
	return nil
}

// SelfUpdate replaces the running binary with the latest release.
func (a *App) SelfUpdate() error {
	a.step("Checking for updates")
	version, err := updater.SelfUpdate(context.Background())
	if err != nil {
		a.fail("%v", err)
		return err
	}
	a.ok("Updated to v%s", version)
	return nil
}

// notifyUpdate mentions a newer release if one is out. Best effort with a
// short deadline; a slow or offline network prints nothing.
func (a *App) notifyUpdate() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	version, available, err := updater.CheckLatest(ctx)
	if err != nil || !available {
		return
	}
	a.warn("spawn v%s is available, run with -update to upgrade", version)
}

// Run dispatches the parsed flags. Config changes and uninstalls are
// terminal actions; otherwise the positional argument installs a game.
func (a *App) Run(flags *Flags, args []string) error {
	if *flags.Update {
		return a.SelfUpdate()
	}

	if *flags.SetSearchDir != "" || *flags.SetInstallDir != "" {
		return a.updateConfig(*flags.SetSearchDir, *flags.SetInstallDir)
	}

	if *flags.Uninstall != "" {
		return a.Uninstall(*flags.Uninstall)
	}

	if len(args) == 0 {
		return errors.New("nothing to do: pass a game archive, name, or see -help")
	}
	return a.Install(args[0], *flags.Name, *flags.Icon, *flags.DryRun, *flags.Steam)
}

func (a *App) updateConfig(searchDir, installDir string) error {
	if searchDir != "" {
		abs, err := filepath.Abs(searchDir)
		if err != nil {
			return fmt.Errorf("invalid search directory: %w", err)
		}
		a.Cfg.SetSearchDir(abs)
		a.ok("Search directory set to %s", abs)
	}
	if installDir != "" {
		abs, err := filepath.Abs(installDir)
		if err != nil {
			return fmt.Errorf("invalid install directory: %w", err)
		}
		a.Cfg.SetInstallDir(abs)
		a.ok("Install directory set to %s", abs)
	}
	if err := a.Cfg.Save(); err != nil {
		a.fail("%v", err)
		return err
	}
	return nil
}
