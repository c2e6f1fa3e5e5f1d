package timetable

import (
	"strings"

	"github.com/AHSANooo/Clashes-Detector/internal/models"
)

const (
	legendRows   = 4
	batchMarker  = "BS"
	headerRows   = 5
	timeRowScan  = 10
	fallbackTime = 4
)

// BatchColorMap maps a colour signature to the batch it stands for.
// The first header cell registering a colour or a batch wins.
type BatchColorMap struct {
	byColor map[string]string
	byBatch map[string]string
}

// BuildBatchColorMap scans the legend rows of every weekday sheet.
func BuildBatchColorMap(doc *models.Document) BatchColorMap {
	legend := BatchColorMap{byColor: map[string]string{}, byBatch: map[string]string{}}
	if doc == nil {
		return legend
	}
	for _, ds := range doc.WeekdaySheets() {
		sheet := ds.Sheet
		for r := 0; r < legendRows && r < len(sheet.Rows); r++ {
			for _, cell := range sheet.Rows[r] {
				text := strings.TrimSpace(cell.Text)
				if !strings.Contains(text, batchMarker) || !cell.HasFill() {
					continue
				}
				legend.register(cell.Color, text)
			}
		}
	}
	return legend
}

func (m BatchColorMap) register(color, batch string) {
	if _, ok := m.byColor[color]; !ok {
		m.byColor[color] = batch
	}
	if _, ok := m.byBatch[batch]; !ok {
		m.byBatch[batch] = color
	}
}

// BatchFor returns the batch registered for a colour signature.
func (m BatchColorMap) BatchFor(color string) (string, bool) {
	if color == "" {
		return "", false
	}
	batch, ok := m.byColor[color]
	return batch, ok
}

// ColorFor returns the colour signature of a batch.
func (m BatchColorMap) ColorFor(batch string) (string, bool) {
	color, ok := m.byBatch[strings.TrimSpace(batch)]
	return color, ok
}

// Len is the number of registered colours.
func (m BatchColorMap) Len() int {
	return len(m.byColor)
}
