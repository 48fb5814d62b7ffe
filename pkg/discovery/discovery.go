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

// Package discovery decides which file inside an extracted game tree is the
// actual executable, and which asset makes the best icon. Classification is
// an explicit priority ladder so results are reproducible:
//
//	engine-specific match > verified ELF executable > launcher script > fallback
//
// Within a tier, shallower files win, then the file whose name is closest to
// the game's name.
package discovery

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/hbollon/go-edlib"
	"github.com/rs/zerolog/log"
)

// ErrNoExecutableFound means classification produced zero candidates. The
// caller should suggest specifying the executable manually, since the archive
// may not contain a Linux build at all.
var ErrNoExecutableFound = errors.New("no executable found")

// Tier orders candidate classes by priority; lower values win.
type Tier int

const (
	TierEngine Tier = iota
	TierBinary
	TierLauncher
	TierFallback
)

func (t Tier) String() string {
	switch t {
	case TierEngine:
		return "engine match"
	case TierBinary:
		return "ELF executable"
	case TierLauncher:
		return "launcher script"
	case TierFallback:
		return "heuristic fallback"
	default:
		return "unknown"
	}
}

// Candidate is one file that could plausibly be the game executable.
type Candidate struct {
	Path   string // absolute
	Reason string
	Tier   Tier
	Depth  int
}

// walk depth bound; game binaries deeper than this are runtime internals
const maxScanDepth = 3

type fileInfo struct {
	rel   string
	abs   string
	name  string
	size  int64
	mode  fs.FileMode
	depth int
}

// scanTree collects regular files under root up to maxScanDepth.
func scanTree(root string) ([]fileInfo, error) {
	var (
		mu    sync.Mutex
		files []fileInfo
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("error walking tree")
			return nil
		}

		rel, relErr := filepath.Rel(root, path)
		if relErr != nil || rel == "." {
			return nil
		}
		depth := strings.Count(rel, string(filepath.Separator))

		if d.IsDir() {
			if depth >= maxScanDepth {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			return nil
		}

		mu.Lock()
		files = append(files, fileInfo{
			rel:   rel,
			abs:   path,
			name:  d.Name(),
			size:  info.Size(),
			mode:  info.Mode(),
			depth: depth,
		})
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].rel < files[j].rel })
	return files, nil
}

var launcherNames = map[string]struct{}{
	"start.sh":    {},
	"run.sh":      {},
	"launch.sh":   {},
	"launcher.sh": {},
}

// non-executable extensions excluded from the heuristic fallback tier
var ignoredExtensions = map[string]struct{}{
	".txt": {}, ".md": {}, ".pdf": {}, ".html": {}, ".css": {}, ".json": {},
	".xml": {}, ".ini": {}, ".cfg": {}, ".log": {},
	".so": {}, ".dll": {}, ".a": {},
	".png": {}, ".jpg": {}, ".jpeg": {}, ".svg": {}, ".ico": {}, ".bmp": {}, ".gif": {},
	".zip": {}, ".tar": {}, ".gz": {}, ".xz": {}, ".bz2": {}, ".7z": {},
	".pak": {}, ".pck": {}, ".dat": {}, ".bin": {}, ".wad": {},
	".wav": {}, ".ogg": {}, ".mp3": {}, ".ttf": {}, ".otf": {},
}

// ClassifyExecutables returns every plausible executable under root, best
// first. The ranking is stable for a given tree.
func ClassifyExecutables(root, gameName string) ([]Candidate, error) {
	files, err := scanTree(root)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate

	for _, rule := range engineRules {
		if match, ok := rule.match(files); ok {
			log.Debug().Str("engine", rule.name).Str("path", match.rel).Msg("engine rule matched")
			candidates = append(candidates, Candidate{
				Path:   match.abs,
				Tier:   TierEngine,
				Reason: rule.name + " binary",
				Depth:  match.depth,
			})
		}
	}

	for _, f := range files {
		switch {
		case isSharedObjectName(f.name):
			continue
		case isELFExecutable(f.abs):
			candidates = append(candidates, Candidate{
				Path:   f.abs,
				Tier:   TierBinary,
				Reason: "ELF executable",
				Depth:  f.depth,
			})
		}
	}

	for _, f := range files {
		lower := strings.ToLower(f.name)
		if _, ok := launcherNames[lower]; ok {
			candidates = append(candidates, Candidate{
				Path:   f.abs,
				Tier:   TierLauncher,
				Reason: "launcher script",
				Depth:  f.depth,
			})
		} else if strings.HasSuffix(lower, ".appimage") {
			candidates = append(candidates, Candidate{
				Path:   f.abs,
				Tier:   TierLauncher,
				Reason: "bundled AppImage",
				Depth:  f.depth,
			})
		}
	}

	if len(candidates) == 0 {
		for _, f := range files {
			if f.size == 0 {
				continue
			}
			if _, ignored := ignoredExtensions[strings.ToLower(filepath.Ext(f.name))]; ignored {
				continue
			}
			candidates = append(candidates, Candidate{
				Path:   f.abs,
				Tier:   TierFallback,
				Reason: "heuristic fallback",
				Depth:  f.depth,
			})
		}
	}

	rankCandidates(candidates, gameName)
	return candidates, nil
}

// SelectExecutable picks the single best candidate under root.
func SelectExecutable(root, gameName string) (Candidate, error) {
	candidates, err := ClassifyExecutables(root, gameName)
	if err != nil {
		return Candidate{}, err
	}
	if len(candidates) == 0 {
		return Candidate{}, fmt.Errorf("%w in %s", ErrNoExecutableFound, root)
	}

	log.Debug().
		Str("path", candidates[0].Path).
		Str("reason", candidates[0].Reason).
		Int("candidates", len(candidates)).
		Msg("selected executable")
	return candidates[0], nil
}

// rankCandidates sorts by tier, then depth, then name similarity to the game
// name, with path order as the final deterministic tie-break.
func rankCandidates(candidates []Candidate, gameName string) {
	normalized := normalizeName(gameName)

	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Tier != b.Tier {
			return a.Tier < b.Tier
		}
		if a.Depth != b.Depth {
			return a.Depth < b.Depth
		}
		simA := nameSimilarity(a.Path, normalized)
		simB := nameSimilarity(b.Path, normalized)
		if simA != simB {
			return simA > simB
		}
		return a.Path < b.Path
	})
}

func nameSimilarity(path, normalizedGameName string) float32 {
	if normalizedGameName == "" {
		return 0
	}
	stem := normalizeName(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	return edlib.JaroWinklerSimilarity(stem, normalizedGameName)
}

func normalizeName(name string) string {
	s := strings.ToLower(name)
	return strings.NewReplacer("_", "", "-", "", " ", "").Replace(s)
}
