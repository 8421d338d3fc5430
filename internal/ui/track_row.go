package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/DeveloperAJ2799/Chronosonic/internal/model"
)

// trackRow is a compact list row showing a track title, uploader and
// duration. The row for the playing track is rendered in bold.
type trackRow struct {
	widget.BaseWidget

	titleLabel    *widget.Label
	uploaderLabel *widget.Label
	durationLabel *widget.Label
}

func newTrackRow() *trackRow {
	r := &trackRow{
		titleLabel:    widget.NewLabel(DashPlaceholder),
		uploaderLabel: widget.NewLabel(""),
		durationLabel: widget.NewLabel(""),
	}
	r.titleLabel.Truncation = fyne.TextTruncateEllipsis
	r.uploaderLabel.Truncation = fyne.TextTruncateEllipsis
	r.ExtendBaseWidget(r)
	return r
}

// SetTrack updates the row contents for the given track.
func (r *trackRow) SetTrack(track model.Track, current bool) {
	title := track.Title
	if title == "" {
		title = track.DisplayTitle()
	}
	r.titleLabel.SetText(title)
	r.titleLabel.TextStyle = fyne.TextStyle{Bold: current}
	r.uploaderLabel.SetText(track.Uploader)

	if track.DurationMS > 0 {
		r.durationLabel.SetText(model.FormatDurationMS(track.DurationMS))
	} else {
		r.durationLabel.SetText(DashPlaceholder)
	}
	r.Refresh()
}

func (r *trackRow) CreateRenderer() fyne.WidgetRenderer {
	content := container.NewBorder(nil, nil, nil, r.durationLabel,
		container.NewVBox(r.titleLabel, r.uploaderLabel))
	return widget.NewSimpleRenderer(content)
}
