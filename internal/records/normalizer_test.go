package records

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "ID,Name, Image RGB ,Architecture,Theatre,Film\n" +
	"a1,Alpha,https://cdn.example/a.jpg,Architecture,,\n" +
	",Nobody,https://cdn.example/x.jpg,,,\n" +
	"\n" +
	"b2, Beta ,,,Theatre,0\n"

func TestReadCSVNormalizesHeaders(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "https://cdn.example/a.jpg", rows[0]["image_rgb"])
	assert.Equal(t, "Architecture", rows[0]["architecture"])
}

func TestNormalizeDropsRowsWithoutID(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(sample))
	require.NoError(t, err)

	recs := Normalize(rows)
	require.Len(t, recs, 2)
	assert.Equal(t, "a1", recs[0].ID)
	assert.Equal(t, "b2", recs[1].ID)
	assert.Equal(t, "Beta", recs[1].Name)
	assert.Empty(t, recs[1].SourceURL)
	assert.Equal(t, map[string]bool{"architecture": true}, recs[0].Flags)
	assert.Equal(t, map[string]bool{"theatre": true}, recs[1].Flags)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	rows := []Row{{"id": "1", "name": "One"}, {"id": " "}, {"id": "2"}}
	first := Normalize(rows)
	second := Normalize(rows)
	assert.Equal(t, first, second)
	assert.Len(t, first, 2)
}

func TestNormalizeKeepsFirstDuplicate(t *testing.T) {
	recs := Normalize([]Row{{"id": "1", "name": "first"}, {"id": "1", "name": "second"}})
	require.Len(t, recs, 1)
	assert.Equal(t, "first", recs[0].Name)
}

func TestNormalizeFallsBackToCMYKImage(t *testing.T) {
	recs := Normalize([]Row{{"id": "1", "image_cmyk": "https://cdn.example/c.tif"}})
	require.Len(t, recs, 1)
	assert.Equal(t, "https://cdn.example/c.tif", recs[0].SourceURL)
}
