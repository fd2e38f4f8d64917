//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"fmt"
	"image/color"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	fstorage "fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"

	"vecdraft/internal/config"
	"vecdraft/internal/crash"
	"vecdraft/internal/editor"
	"vecdraft/internal/geom"
	applog "vecdraft/internal/log"
	"vecdraft/internal/share"
	"vecdraft/internal/storage"
	"vecdraft/internal/telemetry"
	"vecdraft/internal/version"
)

// Run starts the Fyne-based desktop editor. filePath may name a drawing
// to open immediately; pass "" to start with an empty document.
func Run(filePath string) error {
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("version", version.String()))

	cfg, shareToken, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}
	tel := telemetry.Default()

	sess := editor.NewSession(editor.Hooks{})
	sess.SetNudgeStep(cfg.Editor.NudgeStep)

	// as.Path tracks the open drawing so a panic snapshot lands next to it.
	as := &crash.Autosave{Canonical: sess.CanonicalJSON}
	defer crash.Recover(as)

	fyneApp := app.NewWithID("vecdraft")
	w := fyneApp.NewWindow("Vecdraft")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1200)
	winH := prefs.IntWithFallback("window.height", 800)
	w.Resize(fyne.NewSize(float32(max(winW, 800)), float32(max(winH, 600))))

	status := widget.NewLabel("Ready")
	setStatus := func(res editor.Result) {
		switch res.Status {
		case editor.StatusOK:
			status.SetText("ok: " + res.Message)
		case editor.StatusFail:
			status.SetText("error: " + res.Message)
		default:
			status.SetText(res.Message)
		}
	}

	cv := newDrawingCanvas(sess)

	jsonEntry := widget.NewMultiLineEntry()
	jsonEntry.SetPlaceHolder("Canonical drawing JSON")
	jsonEntry.TextStyle = fyne.TextStyle{Monospace: true}

	layersBox := container.NewVBox()
	refreshLayers := func() {
		layersBox.Objects = nil
		doc := sess.Doc()
		for _, st := range doc.LayerStats() {
			name := st.Layer
			chk := widget.NewCheck(fmt.Sprintf("%s (%d)", name, st.Items), func(v bool) {
				doc.SetLayerVisible(name, v)
				cv.Refresh()
			})
			chk.SetChecked(doc.LayerVisible(name))
			layersBox.Add(chk)
		}
		layersBox.Refresh()
	}

	refreshAll := func() {
		refreshLayers()
		if text, err := sess.CanonicalJSON(); err == nil {
			jsonEntry.SetText(text)
		}
		cv.Refresh()
	}

	// Clipboard and export hooks need the window, so they are wired after
	// the session exists.
	sess.SetHooks(editor.Hooks{
		CopyText: func(text string) error {
			w.Clipboard().SetContent(text)
			return nil
		},
		SaveExport: func(name, text string) error {
			dir := "."
			if as.Path != "" {
				dir = filepath.Dir(as.Path)
			}
			return storage.SaveText(filepath.Join(dir, name), text)
		},
		JSONText:    func() string { return jsonEntry.Text },
		SetJSONText: func(text string) { jsonEntry.SetText(text) },
	})

	openDrawing := func(path string) {
		raw, err := storage.Open(path)
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		if err := sess.Load(raw); err != nil {
			dialog.ShowError(err, w)
			return
		}
		as.Path = path
		w.SetTitle("Vecdraft - " + filepath.Base(path))
		status.SetText(fmt.Sprintf("opened %s (%d items)", filepath.Base(path), sess.Doc().Len()))
		tel.Event("drawing_opened", map[string]any{"items": sess.Doc().Len()})
		if dir, err := storage.DefaultCatalogDir(); err == nil {
			if cat, err := storage.OpenCatalog(dir); err == nil {
				ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				_ = cat.Touch(ctx, path, sess.Doc().Len())
				cancel()
				_ = cat.Close()
			}
		}
		refreshAll()
	}

	saveDrawing := func() {
		if as.Path == "" {
			dialog.ShowFileSave(func(wr fyne.URIWriteCloser, err error) {
				if err != nil || wr == nil {
					return
				}
				path := wr.URI().Path()
				_ = wr.Close()
				as.Path = path
				saveTo(sess, path, w, status)
				w.SetTitle("Vecdraft - " + filepath.Base(path))
			}, w)
			return
		}
		saveTo(sess, as.Path, w, status)
	}

	publish := func() {
		if shareToken == "" {
			dialog.ShowInformation("Share", "No share token configured. Set one with: vecdraft share login", w)
			return
		}
		text, err := sess.CanonicalJSON()
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		name := "untitled"
		if as.Path != "" {
			name = strings.TrimSuffix(filepath.Base(as.Path), filepath.Ext(as.Path))
		}
		cli := share.NewClient(cfg.Share.BaseURL, shareToken, share.ClientOptions{
			Timeout:     time.Duration(cfg.Share.TimeoutMs) * time.Millisecond,
			TLSInsecure: cfg.Share.TLSInsecure,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		dw, err := cli.Publish(ctx, name, text)
		if err != nil {
			dialog.ShowError(err, w)
			return
		}
		status.SetText(fmt.Sprintf("published %q as drawing %d v%d", dw.Name, dw.ID, dw.Version))
		tel.Event("drawing_published", nil)
	}

	cmdEntry := widget.NewEntry()
	cmdEntry.SetPlaceHolder("command (clear, delete, copy, export, fit, move dx dy, scale sx [sy], rotate deg)")
	cmdEntry.OnSubmitted = func(line string) {
		res := sess.Exec(line)
		setStatus(res)
		cmdEntry.SetText("")
		refreshAll()
	}

	toolbar := container.NewHBox(
		widget.NewButton("Open", func() {
			fd := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
				if err != nil || r == nil {
					return
				}
				path := r.URI().Path()
				_ = r.Close()
				openDrawing(path)
			}, w)
			fd.SetFilter(fstorage.NewExtensionFileFilter([]string{".json"}))
			fd.Show()
		}),
		widget.NewButton("Save", saveDrawing),
		widget.NewButton("Fit", func() {
			sess.FitView()
			cv.Refresh()
		}),
		widget.NewButton("Apply JSON", func() {
			setStatus(sess.Exec("apply-json"))
			refreshAll()
		}),
		widget.NewButton("Refresh JSON", func() {
			setStatus(sess.Exec("refresh-json"))
		}),
		widget.NewButton("Publish", publish),
	)

	right := container.NewBorder(
		container.NewVBox(widget.NewLabel("Layers"), widget.NewSeparator()),
		nil, nil, nil,
		container.NewVSplit(layersBox, jsonEntry),
	)

	bottom := container.NewVBox(cmdEntry, status)
	content := container.NewBorder(toolbar, bottom, nil, right, cv)
	w.SetContent(content)

	// Keyboard editing: arrows nudge, Delete removes the selection.
	shiftDown := false
	if dc, ok := w.Canvas().(desktop.Canvas); ok {
		dc.SetOnKeyDown(func(ev *fyne.KeyEvent) {
			if ev.Name == desktop.KeyShiftLeft || ev.Name == desktop.KeyShiftRight {
				shiftDown = true
			}
		})
		dc.SetOnKeyUp(func(ev *fyne.KeyEvent) {
			if ev.Name == desktop.KeyShiftLeft || ev.Name == desktop.KeyShiftRight {
				shiftDown = false
			}
		})
	}
	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		changed := false
		switch ev.Name {
		case fyne.KeyUp:
			changed = sess.Nudge(0, 1, shiftDown)
		case fyne.KeyDown:
			changed = sess.Nudge(0, -1, shiftDown)
		case fyne.KeyLeft:
			changed = sess.Nudge(-1, 0, shiftDown)
		case fyne.KeyRight:
			changed = sess.Nudge(1, 0, shiftDown)
		case fyne.KeyDelete, fyne.KeyBackspace:
			changed = sess.DeleteSelected()
			if changed {
				refreshLayers()
			}
		case fyne.KeyEscape:
			sess.ClearSelection()
			changed = true
		}
		if changed {
			cv.Refresh()
		}
	})

	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		tel.Close()
	})

	if filePath != "" {
		openDrawing(filePath)
	} else {
		refreshAll()
	}

	w.ShowAndRun()
	return nil
}

func saveTo(sess *editor.Session, path string, w fyne.Window, status *widget.Label) {
	if err := storage.Save(path, sess.Doc()); err != nil {
		dialog.ShowError(err, w)
		return
	}
	status.SetText("saved " + filepath.Base(path))
}

// drawingCanvas renders the session's document and feeds pointer events
// into the editing state machine. Widget coordinates are the viewport's
// device coordinates.
type drawingCanvas struct {
	widget.BaseWidget
	sess *editor.Session
}

func newDrawingCanvas(sess *editor.Session) *drawingCanvas {
	c := &drawingCanvas{sess: sess}
	c.ExtendBaseWidget(c)
	return c
}

func (c *drawingCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 250, G: 250, B: 248, A: 255})
	return &drawingRenderer{cv: c, bg: bg, objects: []fyne.CanvasObject{bg}}
}

func (c *drawingCanvas) MinSize() fyne.Size { return fyne.NewSize(400, 300) }

func devPt(pos fyne.Position) geom.Pt {
	return geom.Pt{X: float64(pos.X), Y: float64(pos.Y)}
}

func (c *drawingCanvas) MouseDown(ev *desktop.MouseEvent) {
	c.sess.PointerDown(devPt(ev.Position), editor.Modifiers{
		Middle: ev.Button == desktop.MouseButtonTertiary,
		Shift:  ev.Modifier&fyne.KeyModifierShift != 0,
		Alt:    ev.Modifier&fyne.KeyModifierAlt != 0,
	})
	c.Refresh()
}

func (c *drawingCanvas) MouseUp(*desktop.MouseEvent) {
	c.sess.PointerUp()
	c.Refresh()
}

// Hoverable gives motion events regardless of button state; the session
// ignores moves outside an active gesture.
func (c *drawingCanvas) MouseIn(*desktop.MouseEvent) {}
func (c *drawingCanvas) MouseOut()                   {}
func (c *drawingCanvas) MouseMoved(ev *desktop.MouseEvent) {
	c.sess.PointerMove(devPt(ev.Position))
	c.Refresh()
}

func (c *drawingCanvas) Dragged(ev *fyne.DragEvent) {
	c.sess.PointerMove(devPt(ev.Position))
	c.Refresh()
}

func (c *drawingCanvas) DragEnd() {
	c.sess.PointerUp()
	c.Refresh()
}

func (c *drawingCanvas) DoubleTapped(ev *fyne.PointEvent) {
	c.sess.DoubleClick(devPt(ev.Position))
	c.Refresh()
}

func (c *drawingCanvas) Tapped(*fyne.PointEvent) {}

func (c *drawingCanvas) Scrolled(ev *fyne.ScrollEvent) {
	// Wheel up zooms in (shrinks the model window).
	c.sess.View().ZoomAt(devPt(ev.Position), -float64(ev.Scrolled.DY)*0.002)
	c.Refresh()
}

type drawingRenderer struct {
	cv      *drawingCanvas
	bg      *canvas.Rectangle
	lines   []*canvas.Line
	markers []*canvas.Rectangle
	objects []fyne.CanvasObject
}

func (r *drawingRenderer) Destroy()                     {}
func (r *drawingRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *drawingRenderer) MinSize() fyne.Size           { return r.cv.MinSize() }
func (r *drawingRenderer) Refresh()                     { r.Layout(r.cv.Size()); canvas.Refresh(r.cv) }

const markerPx = float32(7)

func (r *drawingRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))

	sess := r.cv.sess
	view := sess.View()
	view.SetSurfaceSize(float64(size.Width), float64(size.Height))

	doc := sess.Doc()
	items := doc.VisibleItems()

	segs := 0
	for _, it := range items {
		if len(it.Points) > 1 {
			segs += len(it.Points) - 1
		}
	}
	r.ensureLines(segs)

	li := 0
	for _, it := range items {
		style := doc.EffectiveLineStyle(it)
		col := colorFromHex(style.Color)
		width := float32(style.Width)
		if width < 1 {
			width = 1
		}
		for i := 0; i+1 < len(it.Points); i++ {
			a := view.ModelToDevice(it.Points[i])
			b := view.ModelToDevice(it.Points[i+1])
			ln := r.lines[li]
			li++
			ln.StrokeColor = col
			ln.StrokeWidth = width
			ln.Position1 = fyne.NewPos(float32(a.X), float32(a.Y))
			ln.Position2 = fyne.NewPos(float32(b.X), float32(b.Y))
			ln.Show()
			ln.Refresh()
		}
	}
	for j := li; j < len(r.lines); j++ {
		r.lines[j].Hide()
	}

	// Point markers on the selected item only.
	sel := sess.Selection()
	var pts []geom.Pt
	if it := sess.SelectedItem(); it != nil {
		pts = it.Points
	}
	r.ensureMarkers(len(pts))
	for i, p := range pts {
		d := view.ModelToDevice(p)
		m := r.markers[i]
		m.FillColor = color.RGBA{R: 0, G: 120, B: 215, A: 255}
		if i == sel.PointIndex {
			m.FillColor = color.RGBA{R: 255, G: 140, B: 0, A: 255}
		}
		m.Resize(fyne.NewSize(markerPx, markerPx))
		m.Move(fyne.NewPos(float32(d.X)-markerPx/2, float32(d.Y)-markerPx/2))
		m.Show()
		m.Refresh()
	}
	for j := len(pts); j < len(r.markers); j++ {
		r.markers[j].Hide()
	}
}

func (r *drawingRenderer) ensureLines(n int) {
	for len(r.lines) < n {
		ln := canvas.NewLine(color.Black)
		r.lines = append(r.lines, ln)
		// markers draw above lines; insert before the first marker
		r.objects = insertBeforeMarkers(r.objects, ln, len(r.markers))
	}
}

func (r *drawingRenderer) ensureMarkers(n int) {
	for len(r.markers) < n {
		m := canvas.NewRectangle(color.RGBA{R: 0, G: 120, B: 215, A: 255})
		m.Hide()
		r.markers = append(r.markers, m)
		r.objects = append(r.objects, m)
	}
}

func insertBeforeMarkers(objs []fyne.CanvasObject, obj fyne.CanvasObject, markers int) []fyne.CanvasObject {
	ins := len(objs) - markers
	out := make([]fyne.CanvasObject, 0, len(objs)+1)
	out = append(out, objs[:ins]...)
	out = append(out, obj)
	out = append(out, objs[ins:]...)
	return out
}

func colorFromHex(hex string) color.Color {
	if len(hex) != 6 {
		return color.Black
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
		return color.Black
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}
}
