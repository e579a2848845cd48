package categories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"showcase_ingest/internal/models"
)

func record(flags ...string) models.RawRecord {
	r := models.RawRecord{ID: "x", Flags: map[string]bool{}}
	for _, f := range flags {
		r.Flags[f] = true
	}
	return r
}

func TestReconcileMergesLegacyFlags(t *testing.T) {
	assert.Equal(t, []string{"architecture_and_set_design"}, Reconcile(record("architecture")))
	assert.Equal(t, []string{"architecture_and_set_design"}, Reconcile(record("theatre")))
	assert.Equal(t, []string{"architecture_and_set_design"}, Reconcile(record("architecture", "theatre")))
}

func TestReconcileKeepsCanonicalFlags(t *testing.T) {
	got := Reconcile(record("illustration", "advertising", "photo"))
	assert.Equal(t, []string{"advertising", "illustration", "photography"}, got)
}

func TestReconcileIgnoresFalseAndUnknownFlags(t *testing.T) {
	r := models.RawRecord{ID: "x", Flags: map[string]bool{"film": false, "knitting": true}}
	got := Reconcile(r)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestReconcileIsOrderIndependent(t *testing.T) {
	a := Reconcile(record("video", "graphic", "film"))
	b := Reconcile(record("film", "film", "graphic", "video"))
	assert.Equal(t, a, b)
	assert.Equal(t, []string{"film_and_video", "graphic_design"}, a)
}

func TestRulesTargetCanonicalIDs(t *testing.T) {
	for _, rule := range Rules() {
		assert.Truef(t, IsCanonical(rule.To), "rule %s -> %s targets unknown id", rule.From, rule.To)
	}
	for _, flag := range Legacy() {
		r := Reconcile(record(flag))
		assert.Lenf(t, r, 1, "legacy flag %s should map to exactly one category", flag)
	}
}
