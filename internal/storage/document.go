/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package storage persists drawing documents on disk.
// Saves are transactional (temp file plus rename) with timestamped backups
// of the previous file; opens fall back to the latest backup when the
// current file is unreadable. A small SQLite catalog under the user config
// dir remembers recently opened drawings; it is derived data and
// disposable by design.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"vecdraft/internal/document"
	"vecdraft/internal/export"
	applog "vecdraft/internal/log"
)

// BackupsDirName is the per-drawing backup folder, a sibling of the file.
const BackupsDirName = ".vecdraft-backups"

// SaveText writes text to path with transactional semantics and a
// timestamped backup of the previous file (if present).
func SaveText(path, text string) error {
	if strings.TrimSpace(path) == "" {
		return errors.New("path is required")
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create target dir: %w", err)
	}

	// If a current file exists, copy it to a timestamped backup before replacing
	if _, statErr := os.Stat(path); statErr == nil {
		bdir := filepath.Join(dir, BackupsDirName)
		if err := os.MkdirAll(bdir, 0o755); err != nil {
			return fmt.Errorf("ensure backups dir: %w", err)
		}
		stamp := time.Now().Format("20060102-150405")
		bpath := filepath.Join(bdir, fmt.Sprintf("%s.%s.bak", filepath.Base(path), stamp))
		if cerr := copyFile(path, bpath); cerr != nil {
			return fmt.Errorf("backup current file: %w", cerr)
		}
	}

	// Transactional write: to temp file in same directory, then rename over target
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", filepath.Base(path), os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, []byte(text)); werr != nil {
		return fmt.Errorf("write temp file: %w", werr)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(path); err == nil {
		_ = os.Remove(path)
	}
	if rerr := os.Rename(temp, path); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace file: %w", rerr)
	}
	return nil
}

// Save serializes the document to canonical JSON and writes it to path.
func Save(path string, doc *document.Document) error {
	text, err := export.CanonicalJSON(doc)
	if err != nil {
		return fmt.Errorf("serialize document: %w", err)
	}
	return SaveText(path, text)
}

// Open reads path and returns the decoded JSON document, falling back to
// the latest backup if the current file cannot be read or parsed. Content
// that does not match the canonical schema is still returned; the
// normalizer copes with foreign shapes, so a schema miss is only logged.
func Open(path string) (any, error) {
	l := applog.WithOperation(applog.WithComponent("storage"), "open").With(
		slog.String("path", path),
	)
	b, err := os.ReadFile(path)
	if err != nil {
		raw, berr := openFromLatestBackup(path)
		if berr != nil {
			return nil, fmt.Errorf("open document: %w; backup attempt: %v", err, berr)
		}
		l.Warn("document unreadable, loaded latest backup")
		return raw, nil
	}
	raw, perr := decodeDocument(b)
	if perr != nil {
		braw, berr := openFromLatestBackup(path)
		if berr != nil {
			return nil, fmt.Errorf("parse document: %w; backup attempt: %v", perr, berr)
		}
		l.Warn("document corrupt, loaded latest backup", slog.Any("err", perr))
		return braw, nil
	}
	if verr := ValidateCanonical(b); verr != nil {
		l.Info("not a canonical document, importing tolerantly", slog.Any("err", verr))
	}
	return raw, nil
}

func decodeDocument(b []byte) (any, error) {
	dec := json.NewDecoder(strings.NewReader(string(b)))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// openFromLatestBackup tries the newest timestamped backup of path.
func openFromLatestBackup(path string) (any, error) {
	bdir := filepath.Join(filepath.Dir(path), BackupsDirName)
	base := filepath.Base(path)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	var candidates []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, base+".") && strings.HasSuffix(name, ".bak") {
			candidates = append(candidates, filepath.Join(bdir, name))
		}
	}
	if len(candidates) == 0 {
		return nil, errors.New("no backups found")
	}
	sort.Strings(candidates) // timestamp in name yields lexicographic order
	latest := candidates[len(candidates)-1]
	b, err := os.ReadFile(latest)
	if err != nil {
		return nil, fmt.Errorf("read latest backup: %w", err)
	}
	raw, err := decodeDocument(b)
	if err != nil {
		return nil, fmt.Errorf("parse latest backup: %w", err)
	}
	return raw, nil
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	return nil
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	if err := df.Sync(); err != nil {
		return err
	}
	return nil
}
