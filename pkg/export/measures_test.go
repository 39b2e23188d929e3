package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestMeasures(t *testing.T) {
	date := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	bcs := 5.5
	bw := 0.0
	rows := []MeasureRow{
		{ID: 1, Date: &date, AlgorithmBW: &bw, AlgorithmBCS: &bcs, Favorite: true},
		{ID: 2},
	}

	data, err := Measures("Trovão/II", rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"TrovãoII"}, f.GetSheetList())

	got, err := f.GetRows("TrovãoII")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, measureHeaders, got[0])
	assert.Equal(t, "1", got[1][0])
	assert.Equal(t, "2024-03-09", got[1][1])
	assert.Equal(t, "5.5", got[1][6])
	assert.Equal(t, "Yes", got[1][7])
	assert.Equal(t, "No", got[2][7])
}

func TestSheetName(t *testing.T) {
	assert.Equal(t, "Measures", sheetName(""))
	assert.Equal(t, "Measures", sheetName("[]"))
	assert.Len(t, []rune(sheetName("A very long horse name that exceeds the limit")), 31)
}
