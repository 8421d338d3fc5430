package ui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/charmbracelet/log"

	"github.com/DeveloperAJ2799/Chronosonic/internal/engine"
	"github.com/DeveloperAJ2799/Chronosonic/internal/extractor"
	"github.com/DeveloperAJ2799/Chronosonic/internal/model"
	"github.com/DeveloperAJ2799/Chronosonic/internal/platform"
	"github.com/DeveloperAJ2799/Chronosonic/internal/player"
	"github.com/DeveloperAJ2799/Chronosonic/internal/queue"
	"github.com/DeveloperAJ2799/Chronosonic/internal/resolver"
	"github.com/DeveloperAJ2799/Chronosonic/internal/search"
	"github.com/DeveloperAJ2799/Chronosonic/internal/store"
)

const historyDropdownLimit = 20

// Deps bundles the collaborators the root view is built from.
type Deps struct {
	Client   extractor.Client
	Resolver *resolver.Resolver
	Queue    *queue.Queue
	Store    *store.Store
	Parser   *platform.PlaylistParser
	CacheDir string
	Logger   *log.Logger
	Dispatch func(func())

	// CapabilityErr is the startup extraction-service check result; when
	// non-nil, search and playback actions are disabled.
	CapabilityErr error
}

// RootUI is the main window: search row, results and queue lists,
// transport controls, playlist row, and status bar.
type RootUI struct {
	window fyne.Window
	app    fyne.App
	logger *log.Logger
	deps   Deps

	session    *search.Session
	controller *player.Controller
	thumbs     *ThumbnailFetcher

	cfg     store.Config
	results []model.Track

	selectedResult int
	selectedQueued int

	searchEntry   *widget.Entry
	historySelect *widget.Select
	searchBtn     *widget.Button
	loadMoreBtn   *widget.Button

	resultsList *widget.List
	queueList   *widget.List

	playBtn      *widget.Button
	prevBtn      *widget.Button
	nextBtn      *widget.Button
	shuffleCheck *widget.Check
	repeatBtn    *widget.Button
	speedSelect  *widget.Select
	pointABtn    *widget.Button
	pointBBtn    *widget.Button
	clearLoopBtn *widget.Button

	posSlider  *widget.Slider
	volSlider  *widget.Slider
	timeLabel  *widget.Label
	trackLabel *widget.Label
	thumbImage *canvas.Image

	playlistSelect *widget.Select
	statusLabel    *widget.Label

	statusGen int
	dragging  bool
}

// NewRootUI creates and wires the main window content.
func NewRootUI(window fyne.Window, app fyne.App, deps Deps) *RootUI {
	ui := &RootUI{
		window:         window,
		app:            app,
		logger:         deps.Logger,
		deps:           deps,
		cfg:            deps.Store.LoadConfig(),
		selectedResult: -1,
		selectedQueued: -1,
	}

	ui.session = search.NewSession(deps.Client, deps.Dispatch, ui.onSearchResult, deps.Logger)
	ui.controller = player.NewController(deps.Queue, deps.Resolver, deps.Logger, player.Callbacks{
		OnStateChanged: ui.onStateChanged,
		OnTrackChanged: ui.onTrackChanged,
		OnProgress:     ui.onProgress,
		OnStatus:       func(msg string) { ui.showStatus(msg, StatusShort) },
	})
	ui.controller.AttachEngine(engine.New(deps.Dispatch, ui.controller.EngineEvents(), deps.Logger))
	ui.thumbs = NewThumbnailFetcher(deps.CacheDir, deps.Dispatch, deps.Logger)

	window.SetTitle("Chronosonic")
	ui.setupUI()
	ui.applyConfig()

	if deps.CapabilityErr != nil {
		ui.logger.Error("Extraction service unavailable", "error", deps.CapabilityErr)
		ui.searchBtn.Disable()
		ui.loadMoreBtn.Disable()
		ui.showStatus("yt-dlp not found: search and playback are disabled", StatusLong)
	}

	return ui
}

// Controller exposes the playback controller for shutdown handling.
func (ui *RootUI) Controller() *player.Controller {
	return ui.controller
}

// setupUI creates and arranges all widgets.
func (ui *RootUI) setupUI() {
	// Search row
	ui.searchEntry = widget.NewEntry()
	ui.searchEntry.SetPlaceHolder("Search, or paste a playlist URL")
	ui.searchEntry.OnSubmitted = func(string) { ui.onSearchClick() }
	ui.searchBtn = widget.NewButton("Search", ui.onSearchClick)
	ui.loadMoreBtn = widget.NewButton("More", ui.onLoadMoreClick)
	ui.historySelect = widget.NewSelect(nil, func(q string) {
		if q != "" {
			ui.searchEntry.SetText(q)
		}
	})
	ui.historySelect.PlaceHolder = "History"
	ui.refreshHistory()
	settingsBtn := widget.NewButton(IconSettings, ui.onShowSettings)
	settingsBtn.Importance = widget.LowImportance

	searchRow := container.NewBorder(nil, nil, ui.historySelect,
		container.NewHBox(ui.searchBtn, ui.loadMoreBtn, settingsBtn), ui.searchEntry)

	// Results list
	ui.resultsList = widget.NewList(
		func() int { return len(ui.results) },
		func() fyne.CanvasObject { return newTrackRow() },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id < len(ui.results) {
				obj.(*trackRow).SetTrack(ui.results[id], false)
			}
		},
	)
	ui.resultsList.OnSelected = func(id widget.ListItemID) { ui.selectedResult = id }

	addBtn := widget.NewButton("Add to queue", ui.onAddSelected)
	addAllBtn := widget.NewButton("Add all", ui.onAddAll)
	resultsPane := container.NewBorder(
		widget.NewLabel("Results"), container.NewHBox(addBtn, addAllBtn), nil, nil,
		ui.resultsList,
	)

	// Queue list
	ui.queueList = widget.NewList(
		func() int { return ui.deps.Queue.Len() },
		func() fyne.CanvasObject { return newTrackRow() },
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if track, ok := ui.deps.Queue.Track(id); ok {
				obj.(*trackRow).SetTrack(track, id == ui.deps.Queue.Cursor())
			}
		},
	)
	ui.queueList.OnSelected = func(id widget.ListItemID) { ui.selectedQueued = id }

	playSelBtn := widget.NewButton("Play", ui.onPlaySelected)
	upBtn := widget.NewButton("↑", func() { ui.onMoveSelected(-1) })
	downBtn := widget.NewButton("↓", func() { ui.onMoveSelected(1) })
	removeBtn := widget.NewButton("Remove", ui.onRemoveSelected)
	clearBtn := widget.NewButton("Clear", ui.onClearQueue)
	queuePane := container.NewBorder(
		widget.NewLabel("Queue"),
		container.NewHBox(playSelBtn, upBtn, downBtn, removeBtn, clearBtn),
		nil, nil,
		ui.queueList,
	)

	lists := container.NewHSplit(resultsPane, queuePane)
	lists.SetOffset(0.5)

	// Now-playing block
	ui.thumbImage = canvas.NewImageFromResource(nil)
	ui.thumbImage.SetMinSize(fyne.NewSize(ThumbnailWidth, ThumbnailHeight))
	ui.thumbImage.FillMode = canvas.ImageFillContain
	ui.trackLabel = widget.NewLabel(DashPlaceholder)
	ui.trackLabel.Truncation = fyne.TextTruncateEllipsis
	ui.timeLabel = widget.NewLabel("00:00" + TimeSeparator + "00:00")

	ui.posSlider = widget.NewSlider(0, 1000)
	ui.posSlider.OnChanged = func(float64) { ui.dragging = true }
	ui.posSlider.OnChangeEnded = func(v float64) {
		ui.dragging = false
		ui.controller.SeekRatio(v / 1000)
	}

	// Transport row
	ui.prevBtn = widget.NewButton(IconPrevious, ui.controller.Previous)
	ui.playBtn = widget.NewButton(IconPlay, ui.controller.TogglePlay)
	ui.nextBtn = widget.NewButton(IconNext, ui.controller.Next)
	ui.shuffleCheck = widget.NewCheck(IconShuffle, ui.controller.SetShuffle)
	ui.repeatBtn = widget.NewButton("Repeat: Off", ui.onCycleRepeat)
	ui.speedSelect = widget.NewSelect(SpeedOptions, ui.onSpeedChanged)
	ui.speedSelect.SetSelected("1x")

	ui.pointABtn = widget.NewButton("A", ui.controller.SetPointA)
	ui.pointBBtn = widget.NewButton("B", ui.controller.SetPointB)
	ui.clearLoopBtn = widget.NewButton("A-B "+IconClear, ui.controller.ClearAB)

	ui.volSlider = widget.NewSlider(0, 100)
	ui.volSlider.OnChanged = func(v float64) { ui.controller.SetVolume(int(v)) }

	transport := container.NewHBox(
		ui.prevBtn, ui.playBtn, ui.nextBtn,
		widget.NewSeparator(),
		ui.shuffleCheck, ui.repeatBtn, ui.speedSelect,
		widget.NewSeparator(),
		ui.pointABtn, ui.pointBBtn, ui.clearLoopBtn,
	)

	volumeRow := container.NewBorder(nil, nil, widget.NewLabel("Vol"), ui.timeLabel, ui.volSlider)
	nowPlaying := container.NewBorder(nil, nil, ui.thumbImage, nil,
		container.NewVBox(ui.trackLabel, ui.posSlider, transport, volumeRow))

	// Playlist row
	ui.playlistSelect = widget.NewSelect(ui.deps.Store.PlaylistNames(), nil)
	ui.playlistSelect.PlaceHolder = "Playlist"
	loadBtn := widget.NewButton("Load", ui.onLoadPlaylist)
	saveBtn := widget.NewButton("Save", ui.onSavePlaylist)
	deleteBtn := widget.NewButton("Delete", ui.onDeletePlaylist)
	importBtn := widget.NewButton("Import", ui.onImportPlaylist)
	exportBtn := widget.NewButton("Export", ui.onExportPlaylist)
	playlistRow := container.NewBorder(nil, nil, nil,
		container.NewHBox(loadBtn, saveBtn, deleteBtn, importBtn, exportBtn),
		ui.playlistSelect)

	ui.statusLabel = widget.NewLabel("")
	ui.statusLabel.Truncation = fyne.TextTruncateEllipsis

	bottom := container.NewVBox(nowPlaying, playlistRow, ui.statusLabel)
	ui.window.SetContent(container.NewBorder(searchRow, bottom, nil, nil, lists))
}

// applyConfig restores persisted settings into the widgets.
func (ui *RootUI) applyConfig() {
	ui.volSlider.SetValue(float64(ui.cfg.Volume))
	ui.controller.SetVolume(ui.cfg.Volume)

	if ui.cfg.LastPlaylist != "" {
		ui.playlistSelect.SetSelected(ui.cfg.LastPlaylist)
	}

	w, h := parseGeometry(ui.cfg.Geometry)
	ui.window.Resize(fyne.NewSize(w, h))
}

// Config returns the current settings for persistence on close.
func (ui *RootUI) Config() store.Config {
	size := ui.window.Canvas().Size()
	return store.Config{
		Volume:       int(ui.volSlider.Value),
		Geometry:     fmt.Sprintf("%.0fx%.0f", size.Width, size.Height),
		Theme:        ui.cfg.Theme,
		LastPlaylist: ui.playlistSelect.Selected,
		Quality:      ui.cfg.Quality,
	}
}

func parseGeometry(geometry string) (float32, float32) {
	parts := strings.SplitN(geometry, "x", 2)
	if len(parts) == 2 {
		w, errW := strconv.Atoi(parts[0])
		h, errH := strconv.Atoi(parts[1])
		if errW == nil && errH == nil && w > 0 && h > 0 {
			return float32(w), float32(h)
		}
	}
	return WindowDefaultWidth, WindowDefaultHeight
}

// --- search ---

func (ui *RootUI) onSearchClick() {
	text := strings.TrimSpace(ui.searchEntry.Text)
	if text == "" {
		ui.showStatus("Enter a search query", StatusShort)
		return
	}

	if platform.IsPlaylistURL(text) {
		ui.queuePlaylistURL(text)
		return
	}

	ui.logger.Info("Searching", "query", text)
	ui.session.StartQuery(text)
	ui.showStatus("Searching for "+text, StatusLong)

	if _, err := ui.deps.Store.AddHistory(text); err != nil {
		ui.logger.Warn("Failed to save search history", "error", err)
	}
	ui.refreshHistory()
}

func (ui *RootUI) onLoadMoreClick() {
	ui.session.LoadMore()
}

func (ui *RootUI) onSearchResult(r search.Result) {
	if r.Err != nil {
		ui.logger.Error("Search failed", "query", r.Query, "error", r.Err)
		ui.showStatus("Search failed: "+r.Err.Error(), StatusLong)
		return
	}

	if r.More {
		ui.results = append(ui.results, r.Tracks...)
	} else {
		ui.results = r.Tracks
		ui.selectedResult = -1
		ui.resultsList.UnselectAll()
	}
	ui.resultsList.Refresh()
	ui.showStatus(fmt.Sprintf("%d results for %s", len(ui.results), r.Query), StatusShort)
}

// queuePlaylistURL lists a pasted playlist URL in the background and
// appends every item to the queue.
func (ui *RootUI) queuePlaylistURL(url string) {
	ui.showStatus("Loading playlist...", StatusLong)
	go func() {
		tracks, err := ui.deps.Parser.Parse(context.Background(), url)
		ui.deps.Dispatch(func() {
			if err != nil {
				ui.logger.Error("Playlist parse failed", "url", url, "error", err)
				ui.showStatus("Could not load playlist: "+err.Error(), StatusLong)
				return
			}
			for _, t := range tracks {
				ui.deps.Queue.Append(t)
			}
			ui.queueList.Refresh()
			ui.searchEntry.SetText("")
			ui.showStatus(fmt.Sprintf("Queued %d playlist tracks", len(tracks)), StatusShort)
		})
	}()
}

func (ui *RootUI) refreshHistory() {
	history := ui.deps.Store.LoadHistory()
	if len(history) > historyDropdownLimit {
		history = history[:historyDropdownLimit]
	}
	ui.historySelect.Options = history
	ui.historySelect.Refresh()
}

// --- queue editing ---

func (ui *RootUI) onAddSelected() {
	if ui.selectedResult < 0 || ui.selectedResult >= len(ui.results) {
		ui.showStatus("Select a result first", StatusShort)
		return
	}
	ui.deps.Queue.Append(ui.results[ui.selectedResult])
	ui.queueList.Refresh()
}

func (ui *RootUI) onAddAll() {
	for _, t := range ui.results {
		ui.deps.Queue.Append(t)
	}
	ui.queueList.Refresh()
}

func (ui *RootUI) onPlaySelected() {
	if ui.selectedQueued < 0 {
		return
	}
	if ui.deps.CapabilityErr != nil {
		ui.showStatus("Playback unavailable: yt-dlp not found", StatusLong)
		return
	}
	ui.controller.PlayIndex(ui.selectedQueued)
}

// onMoveSelected shifts the selected queue row up or down by one.
func (ui *RootUI) onMoveSelected(delta int) {
	row := ui.selectedQueued
	target := row + delta
	tracks := ui.deps.Queue.Tracks()
	if row < 0 || row >= len(tracks) || target < 0 || target >= len(tracks) {
		return
	}

	tracks[row], tracks[target] = tracks[target], tracks[row]
	ui.deps.Queue.Reorder(tracks, target)
	ui.selectedQueued = target
	ui.queueList.Select(target)
	ui.queueList.Refresh()
}

func (ui *RootUI) onRemoveSelected() {
	row := ui.selectedQueued
	tracks := ui.deps.Queue.Tracks()
	if row < 0 || row >= len(tracks) {
		return
	}

	tracks = append(tracks[:row], tracks[row+1:]...)
	ui.deps.Queue.Reorder(tracks, row)
	ui.selectedQueued = -1
	ui.queueList.UnselectAll()
	ui.queueList.Refresh()
}

func (ui *RootUI) onClearQueue() {
	ui.controller.Stop()
	ui.deps.Queue.Clear()
	ui.selectedQueued = -1
	ui.queueList.UnselectAll()
	ui.queueList.Refresh()
}

// --- transport ---

func (ui *RootUI) onCycleRepeat() {
	mode := ui.controller.CycleRepeat()
	ui.repeatBtn.SetText("Repeat: " + mode.String())
}

func (ui *RootUI) onSpeedChanged(option string) {
	rate, err := strconv.ParseFloat(strings.TrimSuffix(option, "x"), 64)
	if err != nil {
		return
	}
	ui.controller.SetRate(rate)
}

func (ui *RootUI) onStateChanged(state model.PlayerState) {
	switch state {
	case model.StatePlaying:
		ui.playBtn.SetText(IconPause)
	default:
		ui.playBtn.SetText(IconPlay)
	}

	if state.IsBusy() {
		ui.prevBtn.Disable()
		ui.nextBtn.Disable()
	} else {
		ui.prevBtn.Enable()
		ui.nextBtn.Enable()
	}
}

func (ui *RootUI) onTrackChanged(index int, track model.Track) {
	ui.trackLabel.SetText(track.DisplayTitle())
	ui.queueList.Refresh()

	ui.thumbs.Fetch(track.Thumbnail, func(res fyne.Resource) {
		ui.thumbImage.Resource = res
		ui.thumbImage.Refresh()
	})
}

func (ui *RootUI) onProgress(pos, dur time.Duration) {
	ui.timeLabel.SetText(model.FormatDurationMS(pos.Milliseconds()) +
		TimeSeparator + model.FormatDurationMS(dur.Milliseconds()))

	if ui.dragging || dur <= 0 {
		return
	}
	ui.posSlider.SetValue(float64(pos) / float64(dur) * 1000)
}

// --- playlists ---

func (ui *RootUI) onLoadPlaylist() {
	name := ui.playlistSelect.Selected
	if name == "" {
		return
	}
	snapshots, ok := ui.deps.Store.LoadPlaylists()[name]
	if !ok {
		ui.showStatus("Playlist not found: "+name, StatusShort)
		return
	}

	ui.controller.Stop()
	ui.deps.Queue.Clear()
	for _, s := range snapshots {
		ui.deps.Queue.Append(model.FromSnapshot(s))
	}
	ui.queueList.Refresh()
	ui.showStatus(fmt.Sprintf("Loaded %s (%d tracks)", name, len(snapshots)), StatusShort)
}

func (ui *RootUI) onSavePlaylist() {
	if ui.deps.Queue.Len() == 0 {
		ui.showStatus("Queue is empty", StatusShort)
		return
	}

	entry := widget.NewEntry()
	entry.SetText(ui.playlistSelect.Selected)
	dialog.ShowForm("Save Playlist", "Save", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Name", entry)},
		func(ok bool) {
			if !ok || strings.TrimSpace(entry.Text) == "" {
				return
			}
			name := strings.TrimSpace(entry.Text)
			if err := ui.deps.Store.SavePlaylist(name, ui.queueSnapshots()); err != nil {
				ui.showStatus("Save failed: "+err.Error(), StatusLong)
				return
			}
			ui.playlistSelect.Options = ui.deps.Store.PlaylistNames()
			ui.playlistSelect.SetSelected(name)
			ui.showStatus("Saved "+name, StatusShort)
		}, ui.window)
}

func (ui *RootUI) onDeletePlaylist() {
	name := ui.playlistSelect.Selected
	if name == "" {
		return
	}
	dialog.ShowConfirm("Delete Playlist", "Delete "+name+"?", func(ok bool) {
		if !ok {
			return
		}
		if err := ui.deps.Store.DeletePlaylist(name); err != nil {
			ui.showStatus("Delete failed: "+err.Error(), StatusLong)
			return
		}
		ui.playlistSelect.ClearSelected()
		ui.playlistSelect.Options = ui.deps.Store.PlaylistNames()
		ui.playlistSelect.Refresh()
	}, ui.window)
}

func (ui *RootUI) onImportPlaylist() {
	dialog.ShowFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		path := reader.URI().Path()
		reader.Close()

		pf, err := ui.deps.Store.ImportPlaylist(path)
		if err != nil {
			ui.showStatus("Import failed: "+err.Error(), StatusLong)
			return
		}
		if err := ui.deps.Store.SavePlaylist(pf.Name, pf.Tracks); err != nil {
			ui.showStatus("Import failed: "+err.Error(), StatusLong)
			return
		}
		ui.playlistSelect.Options = ui.deps.Store.PlaylistNames()
		ui.playlistSelect.SetSelected(pf.Name)
		ui.showStatus(fmt.Sprintf("Imported %s (%d tracks)", pf.Name, len(pf.Tracks)), StatusShort)
	}, ui.window)
}

func (ui *RootUI) onExportPlaylist() {
	if ui.deps.Queue.Len() == 0 {
		ui.showStatus("Queue is empty", StatusShort)
		return
	}
	name := ui.playlistSelect.Selected
	if name == "" {
		name = "queue"
	}

	dialog.ShowFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil || writer == nil {
			return
		}
		path := writer.URI().Path()
		writer.Close()

		if err := ui.deps.Store.ExportPlaylist(path, name, ui.queueSnapshots()); err != nil {
			ui.showStatus("Export failed: "+err.Error(), StatusLong)
			return
		}
		ui.showStatus("Exported to "+path, StatusShort)
	}, ui.window)
}

func (ui *RootUI) queueSnapshots() []model.TrackSnapshot {
	tracks := ui.deps.Queue.Tracks()
	out := make([]model.TrackSnapshot, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, t.Snapshot())
	}
	return out
}

// --- settings ---

func (ui *RootUI) onShowSettings() {
	quality := widget.NewSelect([]string{"best", "medium", "audio"}, nil)
	quality.SetSelected(ui.cfg.Quality)

	dialog.ShowForm("Settings", "Save", "Cancel",
		[]*widget.FormItem{widget.NewFormItem("Quality", quality)},
		func(ok bool) {
			if !ok {
				return
			}
			ui.cfg.Quality = quality.Selected
			ui.showStatus("Settings saved", StatusShort)
		}, ui.window)
}

// --- status ---

// showStatus displays a message that clears itself after d, unless a newer
// message replaced it.
func (ui *RootUI) showStatus(msg string, d time.Duration) {
	ui.statusGen++
	gen := ui.statusGen
	ui.statusLabel.SetText(msg)

	time.AfterFunc(d, func() {
		ui.deps.Dispatch(func() {
			if gen == ui.statusGen {
				ui.statusLabel.SetText("")
			}
		})
	})
}
