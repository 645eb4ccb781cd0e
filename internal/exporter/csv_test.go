package exporter

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuspulse/internal/shared/testutil"
	"campuspulse/pkg/contracts/domain"
)

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, utf8BOM))).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestWriteCSV(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	w := NewCSVWriter(logger)

	var buf bytes.Buffer
	require.NoError(t, w.WriteCSV(&buf, testutil.SampleRecords(), WriteOptions{}))

	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"Name", "Facility", "Department", "Year", "Rating", "Comment", "Date", "Sentiment"}, rows[0])
	assert.Equal(t, []string{"Aisha", "Library", "CS", "2", "5", "great", "2025-02-03", "Positive"}, rows[1])
	assert.Equal(t, []string{"Lena", "Library", "Arts", "1", "3", "", domain.DefaultDate, "Neutral"}, rows[3])
}

func TestWriteCSVOptions(t *testing.T) {
	w := NewCSVWriter(nil)

	t.Run("bom", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, w.WriteCSV(&buf, nil, WriteOptions{BOMPrefix: true}))
		assert.True(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))
		assert.Len(t, readCSV(t, buf.Bytes()), 1)
	})

	t.Run("omit header", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, w.WriteCSV(&buf, testutil.SampleRecords()[:1], WriteOptions{OmitHeader: true}))
		rows := readCSV(t, buf.Bytes())
		require.Len(t, rows, 1)
		assert.Equal(t, "Aisha", rows[0][0])
	})
}

func TestWriteCSVQuotesComments(t *testing.T) {
	records := []domain.Record{{Name: "Ali", Comment: "slow, \"very\" slow", Sentiment: domain.SentimentNegative}}

	var buf bytes.Buffer
	require.NoError(t, NewCSVWriter(nil).WriteCSV(&buf, records, WriteOptions{}))
	rows := readCSV(t, buf.Bytes())
	assert.Equal(t, `slow, "very" slow`, rows[1][5])
}

func TestWriteCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "nested", "survey.csv")

	w := NewCSVWriter(nil)
	require.NoError(t, w.WriteCSVFile(path, testutil.SampleRecords(), WriteOptions{BOMPrefix: true}))
	// a second write replaces the file
	require.NoError(t, w.WriteCSVFile(path, testutil.SampleRecords()[:1], WriteOptions{BOMPrefix: true}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, readCSV(t, data), 2)
}

func TestStreamWriter(t *testing.T) {
	var buf bytes.Buffer
	sw, err := NewStreamWriter(&buf, false)
	require.NoError(t, err)

	for _, r := range testutil.SampleRecords() {
		require.NoError(t, sw.WriteRecord(r))
	}
	require.NoError(t, sw.Flush())

	assert.Equal(t, 3, sw.Count())
	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, 4)
	assert.Equal(t, "Negative", rows[2][7])
}

func TestFormatForPath(t *testing.T) {
	f, err := FormatForPath("out/Survey.CSV")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	f, err = FormatForPath("survey.xlsx")
	require.NoError(t, err)
	assert.Equal(t, FormatXLSX, f)

	_, err = FormatForPath("survey.json")
	assert.Error(t, err)
}
