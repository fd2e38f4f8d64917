/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package log

import (
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"bogus":   slog.LevelInfo,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Fatalf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestConsoleHandlerOutput(t *testing.T) {
	var sb strings.Builder
	h := &consoleHandler{lvl: slog.LevelInfo, w: &sb}
	l := slog.New(h).With(slog.String("component", "test"))
	l.Info("hello", slog.Int("n", 3), slog.Float64("f", 1.5))
	out := sb.String()
	for _, want := range []string{"INF", "hello", "component=test", "n=3", "f=1.5"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}
}

func TestConsoleHandlerLevelGate(t *testing.T) {
	h := &consoleHandler{lvl: slog.LevelWarn, w: &strings.Builder{}}
	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Fatalf("info should be disabled at warn level")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Fatalf("error should be enabled at warn level")
	}
}

func TestInitAndL(t *testing.T) {
	Init(Options{Level: "debug", Format: "console"})
	if L() == nil {
		t.Fatalf("expected default logger after Init")
	}
	if WithComponent("x") == nil {
		t.Fatalf("expected component logger")
	}
}
