package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()

	raw, err := exporter.Render(Dataset{
		Headers: []string{"date", "title", "start"},
		Rows: [][]string{
			{"2025-03-10", "Checkup", "10:00"},
			{"2025-03-11", "Follow-up"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "date,title,start\n2025-03-10,Checkup,10:00\n2025-03-11,Follow-up,\n", string(raw))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()

	_, err := exporter.Render(Dataset{})
	require.Error(t, err)
}

func TestPDFWeekGridRejectsEmptyGrid(t *testing.T) {
	exporter := NewPDFExporter()

	_, err := exporter.RenderWeekGrid(WeekGrid{})
	require.Error(t, err)
}

func TestPDFWeekGridRendersDocument(t *testing.T) {
	exporter := NewPDFExporter()

	raw, err := exporter.RenderWeekGrid(WeekGrid{
		Title:      "Week of 2025-03-10",
		GridHeight: 24 * 72,
		Columns: []WeekGridColumn{
			{Label: "Mon 03/10", Blocks: []WeekGridBlock{
				{Label: "Unavailable", Top: 0, Height: 9 * 72, Shaded: true},
				{Label: "10:00 Checkup", Top: 10 * 72, Height: 36},
			}},
			{Label: "Tue 03/11"},
		},
	})
	require.NoError(t, err)
	assert.True(t, len(raw) > 0)
	assert.Equal(t, "%PDF", string(raw[:4]))
}
