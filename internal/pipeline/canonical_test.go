package pipeline

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"showcase_ingest/internal/models"
)

func TestCanonicalizeFillsOnlyProducedFields(t *testing.T) {
	records := []models.RawRecord{
		{ID: "1", Name: "One", Website: "https://one.example", Flags: map[string]bool{"film": true, "video": true, "animation": true}},
		{ID: "2", Name: "Two"},
	}
	full := models.NewSubmissionAsset("1")
	full.FilePath = "/ws/originals/1.png"
	full.ThumbPath = "/ws/thumbs/400/1.jpg"
	full.Width, full.Height = 400, 200
	full.Color = "#aabbcc"

	subs, assocs := Canonicalize(records, []*models.SubmissionAsset{full, models.NewSubmissionAsset("2")})
	require.Len(t, subs, 2)

	one := subs[0]
	assert.Equal(t, []string{"animation", "film_and_video"}, one.Categories)
	require.NotNil(t, one.Ratio)
	assert.Equal(t, 2.0, *one.Ratio)
	assert.Equal(t, "1.png", *one.FileName)
	assert.Equal(t, "1.jpg", *one.ThumbName)
	assert.Equal(t, "#aabbcc", *one.Color)

	two := subs[1]
	assert.NotNil(t, two.Categories)
	assert.Empty(t, two.Categories)
	assert.Nil(t, two.Width)
	assert.Nil(t, two.Ratio)
	assert.Nil(t, two.Color)

	assert.Equal(t, []models.Association{
		{SubmissionID: "1", CategoryID: "animation"},
		{SubmissionID: "1", CategoryID: "film_and_video"},
	}, assocs)
}

func TestCanonicalizeSerializesNulls(t *testing.T) {
	subs, _ := Canonicalize([]models.RawRecord{{ID: "x"}}, nil)
	data, err := json.Marshal(subs[0])
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	for _, k := range []string{"width", "height", "ratio", "colour", "file_name", "thumb_name"} {
		v, ok := m[k]
		assert.True(t, ok, k)
		assert.Nil(t, v, k)
	}
	assert.Equal(t, []any{}, m["categories"])
}

func TestCanonicalizeHalfDimensionsHasNoRatio(t *testing.T) {
	asset := models.NewSubmissionAsset("x")
	asset.Width = 10
	subs, _ := Canonicalize([]models.RawRecord{{ID: "x"}}, []*models.SubmissionAsset{asset})
	require.NotNil(t, subs[0].Width)
	assert.Nil(t, subs[0].Height)
	assert.Nil(t, subs[0].Ratio)
}
