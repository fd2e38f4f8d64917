/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns panics into a crash report on disk plus an
// emergency snapshot of the drawing being edited.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "vecdraft/internal/log"
	"vecdraft/internal/storage"
	"vecdraft/internal/telemetry"
	"vecdraft/internal/version"
)

// exitFn is swapped in tests so Recover does not kill the test process.
var exitFn = os.Exit

// Autosave describes where the current drawing lives and how to
// serialize it. Path may be empty for an unsaved document; Canonical
// may be nil when there is nothing to snapshot.
type Autosave struct {
	Path      string
	Canonical func() (string, error)
}

// Recover captures a panic, logs it with the stack, writes a crash
// report file, and attempts an emergency save of the current drawing.
//
// Usage: defer crash.Recover(as)
func Recover(as *Autosave) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	reportPath, _ := writeReport(as, r, stack)
	if as != nil && as.Canonical != nil {
		if path, err := snapshot(as); err != nil {
			l.Error("emergency save failed", slog.Any("err", err))
		} else if path != "" {
			l.Info("emergency save written", slog.String("path", path))
		}
	}

	fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath)
	fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

// reportDir is the backups directory next to the drawing, or the OS
// temp dir when no file path is known.
func reportDir(as *Autosave) string {
	if as != nil && as.Path != "" {
		dir := filepath.Join(filepath.Dir(as.Path), storage.BackupsDirName)
		if err := os.MkdirAll(dir, 0o755); err == nil {
			return dir
		}
	}
	return os.TempDir()
}

// snapshot writes the current document next to the drawing file so a
// restart can recover unsaved edits.
func snapshot(as *Autosave) (string, error) {
	text, err := as.Canonical()
	if err != nil {
		return "", fmt.Errorf("serialize document: %w", err)
	}
	stamp := time.Now().Format("20060102-150405")
	base := "unsaved"
	if as.Path != "" {
		base = filepath.Base(as.Path)
	}
	path := filepath.Join(reportDir(as), fmt.Sprintf("%s.crash-%s.json", base, stamp))
	if err := storage.SaveText(path, text); err != nil {
		return "", err
	}
	return path, nil
}

func writeReport(as *Autosave, panicVal any, stack []byte) (string, error) {
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(reportDir(as), fmt.Sprintf("crash-%s.log", stamp))

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Vecdraft Crash Report\n")
	fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&buf, "Version: %s\n", version.String())
	fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if as != nil && as.Path != "" {
		fmt.Fprintf(&buf, "Drawing: %s\n", as.Path)
	}
	fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return path, err
	}

	// optionally upload the anonymized report (opt-in via env)
	telemetry.UploadCrash(buf.Bytes())
	return path, nil
}
