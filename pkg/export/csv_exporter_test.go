package export

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	exporter := NewCSVExporter()
	data, err := exporter.Render(Dataset{
		Headers: []string{"Name", "Note"},
		Rows: [][]string{
			{"Jane Doe", "plain"},
			{"John, Smith", "said \"hello\"\nand left"},
		},
	})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "John, Smith", records[2][0])
	require.Equal(t, "said \"hello\"\nand left", records[2][1])
}

func TestCSVExporterPadsShortRows(t *testing.T) {
	exporter := NewCSVExporter()
	data, err := exporter.Render(Dataset{
		Headers: []string{"A", "B", "C"},
		Rows:    [][]string{{"only"}},
	})
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	require.Equal(t, []string{"only", "", ""}, records[1])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	exporter := NewCSVExporter()
	_, err := exporter.Render(Dataset{})
	require.Error(t, err)
}
