/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"vecdraft/internal/config"
	"vecdraft/internal/crash"
	"vecdraft/internal/editor"
	"vecdraft/internal/export"
	applog "vecdraft/internal/log"
	"vecdraft/internal/share"
	"vecdraft/internal/storage"
	"vecdraft/internal/ui"
	"vecdraft/internal/version"
)

func usage() {
	fmt.Println("Vecdraft - 2D polyline drawing viewer and editor")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  vecdraft version|-v|--version             Show version")
	fmt.Println("  vecdraft open <file>                      Open a drawing and print a summary")
	fmt.Println("  vecdraft convert <in> <out>               Convert; output format by extension (.json .dxf .svg .pdf .png)")
	fmt.Println("  vecdraft recent [n]                       List recently opened drawings")
	fmt.Println("  vecdraft forget <file>                    Drop a drawing from the recent list")
	fmt.Println("  vecdraft share login <token>              Store the share service token in the OS keychain")
	fmt.Println("  vecdraft share logout                     Remove the stored token")
	fmt.Println("  vecdraft share list                       List drawings on the share service")
	fmt.Println("  vecdraft share get <id> <out.json>        Download the latest snapshot of a drawing")
	fmt.Println("  vecdraft share publish <file> [name]      Publish a drawing")
	fmt.Println("  vecdraft ui [<file>]                      Launch desktop UI (build with -tags fyne for full UI)")
}

func main() {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	as := &crash.Autosave{}
	defer crash.Recover(as)

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("Vecdraft - 2D polyline drawing viewer and editor")
			fmt.Println(version.String())
			return
		case "open":
			if len(args) < 3 {
				fmt.Println("open requires <file>")
				usage()
				os.Exit(2)
			}
			cmdOpen(l, as, args[2])
			return
		case "convert":
			if len(args) < 4 {
				fmt.Println("convert requires <in> and <out>")
				usage()
				os.Exit(2)
			}
			cmdConvert(l, as, args[2], args[3])
			return
		case "recent":
			limit := 10
			if len(args) >= 3 {
				if n, err := strconv.Atoi(args[2]); err == nil && n > 0 {
					limit = n
				}
			}
			cmdRecent(l, limit)
			return
		case "forget":
			if len(args) < 3 {
				fmt.Println("forget requires <file>")
				usage()
				os.Exit(2)
			}
			cmdForget(l, args[2])
			return
		case "share":
			if len(args) < 3 {
				usage()
				os.Exit(2)
			}
			cmdShare(l, args[2:])
			return
		case "ui":
			var file string
			if len(args) >= 3 {
				file = args[2]
			}
			if err := ui.Run(file); err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		}
	}

	usage()
}

func fatal(l *slog.Logger, msg string, err error) {
	l.Error(msg, slog.Any("err", err))
	fmt.Println("Error:", err)
	os.Exit(1)
}

// loadSession opens a drawing file into a fresh editing session.
func loadSession(l *slog.Logger, as *crash.Autosave, path string) *editor.Session {
	abs, _ := filepath.Abs(path)
	raw, err := storage.Open(abs)
	if err != nil {
		fatal(l, "open failed", err)
	}
	sess := editor.NewSession(editor.Hooks{})
	if err := sess.Load(raw); err != nil {
		fatal(l, "load failed", err)
	}
	as.Path = abs
	as.Canonical = sess.CanonicalJSON
	touchRecent(abs, sess.Doc().Len())
	return sess
}

func touchRecent(path string, items int) {
	dir, err := storage.DefaultCatalogDir()
	if err != nil {
		return
	}
	cat, err := storage.OpenCatalog(dir)
	if err != nil {
		return
	}
	defer cat.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = cat.Touch(ctx, path, items)
}

func cmdOpen(l *slog.Logger, as *crash.Autosave, path string) {
	sess := loadSession(l, as, path)
	doc := sess.Doc()
	fmt.Printf("Opened %s\n", as.Path)
	fmt.Printf("Items: %d\n", doc.Len())
	for _, st := range doc.LayerStats() {
		vis := "visible"
		if !doc.LayerVisible(st.Layer) {
			vis = "hidden"
		}
		fmt.Printf("  layer %-12s %3d items %5d points (%s)\n", st.Layer, st.Items, st.Points, vis)
	}
	if b, ok := doc.ContentBounds(); ok {
		fmt.Printf("Bounds: [%g, %g] - [%g, %g]\n", b.MinX, b.MinY, b.MaxX, b.MaxY)
	}
}

func cmdConvert(l *slog.Logger, as *crash.Autosave, in, out string) {
	sess := loadSession(l, as, in)
	doc := sess.Doc()
	view := sess.View().Bounds()

	var err error
	switch strings.ToLower(filepath.Ext(out)) {
	case ".json":
		var text string
		if text, err = export.CanonicalJSON(doc); err == nil {
			err = storage.SaveText(out, text)
		}
	case ".dxf":
		err = storage.SaveText(out, export.DXFText(doc.VisibleItems()))
	case ".svg":
		var text string
		if text, err = export.SVG(doc, view, export.SVGOptions{}); err == nil {
			err = storage.SaveText(out, text)
		}
	case ".pdf":
		title := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))
		err = export.WritePDF(doc, view, out, export.PDFOptions{Title: title})
	case ".png":
		err = export.WritePNG(doc, view, out, export.PNGOptions{Labels: true})
	default:
		fmt.Printf("unsupported output format %q (use .json .dxf .svg .pdf .png)\n", filepath.Ext(out))
		os.Exit(2)
	}
	if err != nil {
		fatal(l, "convert failed", err)
	}
	fmt.Println("Wrote", out)
}

func cmdRecent(l *slog.Logger, limit int) {
	dir, err := storage.DefaultCatalogDir()
	if err != nil {
		fatal(l, "recent catalog unavailable", err)
	}
	cat, err := storage.OpenCatalog(dir)
	if err != nil {
		fatal(l, "recent catalog unavailable", err)
	}
	defer cat.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	entries, err := cat.Recent(ctx, limit)
	if err != nil {
		fatal(l, "recent query failed", err)
	}
	if len(entries) == 0 {
		fmt.Println("No recent drawings.")
		return
	}
	for _, e := range entries {
		fmt.Printf("%s  %4d items  %s\n", e.OpenedAt.Format(time.RFC3339), e.Items, e.Path)
	}
}

func cmdForget(l *slog.Logger, path string) {
	dir, err := storage.DefaultCatalogDir()
	if err != nil {
		fatal(l, "recent catalog unavailable", err)
	}
	cat, err := storage.OpenCatalog(dir)
	if err != nil {
		fatal(l, "recent catalog unavailable", err)
	}
	defer cat.Close()
	abs, _ := filepath.Abs(path)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := cat.Forget(ctx, abs); err != nil {
		fatal(l, "forget failed", err)
	}
	fmt.Println("Forgot", abs)
}

func shareClient(l *slog.Logger) (*share.Client, config.AppConfig) {
	cfg, token, err := config.Load()
	if err != nil {
		fatal(l, "config load failed", err)
	}
	if token == "" {
		fmt.Println("No share token configured. Run: vecdraft share login <token>")
		os.Exit(2)
	}
	cli := share.NewClient(cfg.Share.BaseURL, token, share.ClientOptions{
		Timeout:     time.Duration(cfg.Share.TimeoutMs) * time.Millisecond,
		TLSInsecure: cfg.Share.TLSInsecure,
	})
	return cli, cfg
}

func cmdShare(l *slog.Logger, args []string) {
	switch args[0] {
	case "login":
		if len(args) < 2 {
			fmt.Println("share login requires <token>")
			os.Exit(2)
		}
		cfg, _, err := config.Load()
		if err != nil {
			cfg = config.Defaults()
		}
		if err := config.Save(cfg, args[1]); err != nil {
			fatal(l, "storing token failed", err)
		}
		fmt.Println("Token stored in the OS keychain.")
	case "logout":
		if err := config.ForgetToken(); err != nil {
			fatal(l, "removing token failed", err)
		}
		fmt.Println("Token removed.")
	case "list":
		cli, _ := shareClient(l)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		drawings, err := cli.ListDrawings(ctx)
		if err != nil {
			fatal(l, "list failed", err)
		}
		if len(drawings) == 0 {
			fmt.Println("No drawings on the share service.")
			return
		}
		for _, d := range drawings {
			fmt.Printf("%4d  v%-3d  %-30s  %s\n", d.ID, d.Version, d.Name, d.UpdatedAt)
		}
	case "get":
		if len(args) < 3 {
			fmt.Println("share get requires <id> and <out.json>")
			os.Exit(2)
		}
		id, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			fmt.Println("invalid drawing id:", args[1])
			os.Exit(2)
		}
		cli, _ := shareClient(l)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		env, err := cli.GetDrawing(ctx, id)
		if err != nil {
			fatal(l, "get failed", err)
		}
		blob, err := json.MarshalIndent(env.Document, "", "  ")
		if err != nil {
			fatal(l, "encode failed", err)
		}
		if err := storage.SaveText(args[2], string(blob)); err != nil {
			fatal(l, "write failed", err)
		}
		fmt.Printf("Wrote drawing %d v%d to %s\n", env.DrawingID, env.Version, args[2])
	case "publish":
		if len(args) < 2 {
			fmt.Println("share publish requires <file>")
			os.Exit(2)
		}
		as := &crash.Autosave{}
		sess := loadSession(l, as, args[1])
		text, err := sess.CanonicalJSON()
		if err != nil {
			fatal(l, "serialize failed", err)
		}
		name := strings.TrimSuffix(filepath.Base(args[1]), filepath.Ext(args[1]))
		if len(args) >= 3 {
			name = args[2]
		}
		cli, _ := shareClient(l)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		dw, err := cli.Publish(ctx, name, text)
		if err != nil {
			fatal(l, "publish failed", err)
		}
		fmt.Printf("Published %q as drawing %d v%d\n", dw.Name, dw.ID, dw.Version)
	default:
		fmt.Println("unknown share subcommand:", args[0])
		usage()
		os.Exit(2)
	}
}
