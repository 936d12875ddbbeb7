package detector

import (
	"fmt"
	"testing"
	"time"

	"github.com/quillnote/quill-sync/internal/fingerprint"
	"github.com/quillnote/quill-sync/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	tMinus1 = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	t0      = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	t1      = t0.Add(time.Minute)
	t2      = t0.Add(2 * time.Minute)
	detTime = time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)
)

func newTestDetector() *Detector {
	return NewWithClock(func() time.Time { return detTime })
}

func note(id, content string, modified time.Time) models.Record {
	return models.Record{
		ID:           id,
		Title:        "Title",
		Content:      content,
		LastModified: modified,
		LastSynced:   tMinus1,
	}
}

// ── Detect ───────────────────────────────────────────────────────────────────

func TestDetect_BothEdited_ContentModified(t *testing.T) {
	d := newTestDetector()

	local := note("n1", "A", t0)
	remote := note("n1", "B", t1)

	c, found := d.Detect(local, remote, tMinus1)
	require.True(t, found)
	assert.Equal(t, models.ConflictContentModified, c.Type)
	assert.Equal(t, []string{"content"}, c.Fields)
	assert.Equal(t, models.SeverityMedium, c.Severity)
	assert.Equal(t, models.ConflictID("n1", detTime), c.ID)
}

func TestDetect_RemoteDeletedLocalEdited_DeleteModified(t *testing.T) {
	d := newTestDetector()

	// Remote marked deleted at T1, local modified at T2 > T1, lastSynced T0 < T1.
	local := note("n1", "edited after deletion", t2)
	remote := note("n1", "old", t1)
	remote.Deleted = true

	c, found := d.Detect(local, remote, t0)
	require.True(t, found)
	assert.Equal(t, models.ConflictDeleteModified, c.Type)
	assert.Equal(t, models.SeverityHigh, c.Severity, "deletion-involved conflicts are always high")
	assert.Contains(t, c.Fields, "deleted")
}

func TestDetect_LocalDeletedRemoteEdited_DeleteModified(t *testing.T) {
	d := newTestDetector()

	local := note("n1", "old", t1)
	local.Deleted = true
	remote := note("n1", "remote kept editing", t2)

	c, found := d.Detect(local, remote, t0)
	require.True(t, found)
	assert.Equal(t, models.ConflictDeleteModified, c.Type)
	assert.Equal(t, models.SeverityHigh, c.Severity)
}

func TestDetect_OnlyTagsDiffer_MetadataMismatch(t *testing.T) {
	d := newTestDetector()

	local := note("n1", "same", t0)
	local.Tags = []string{"work"}
	remote := note("n1", "same", t1)
	remote.Tags = []string{"personal"}

	c, found := d.Detect(local, remote, tMinus1)
	require.True(t, found)
	assert.Equal(t, models.ConflictMetadataMismatch, c.Type)
	assert.Equal(t, []string{"tags"}, c.Fields)
	assert.Equal(t, models.SeverityLow, c.Severity)
}

func TestDetect_OnlyMetaDiffers_MetadataMismatch(t *testing.T) {
	d := newTestDetector()

	local := note("n1", "same", t0)
	local.Meta = map[string]string{"color": "red"}
	remote := note("n1", "same", t1)
	remote.Meta = map[string]string{"color": "blue"}

	c, found := d.Detect(local, remote, tMinus1)
	require.True(t, found)
	assert.Equal(t, models.ConflictMetadataMismatch, c.Type)
	assert.Equal(t, []string{"meta"}, c.Fields)
}

func TestDetect_DuplicateCreation(t *testing.T) {
	d := newTestDetector()

	// Neither side has ever synced and both carry the same title.
	local := models.Record{ID: "n1", Title: "Meeting notes", Content: "local draft", LastModified: t0}
	remote := models.Record{ID: "n1", Title: "Meeting notes", Content: "remote draft", LastModified: t1}

	c, found := d.Detect(local, remote, time.Time{})
	require.True(t, found)
	assert.Equal(t, models.ConflictDuplicateCreation, c.Type)
	assert.Equal(t, models.SeverityMedium, c.Severity)
}

func TestDetect_OnlyOneSideChanged_NoConflict(t *testing.T) {
	d := newTestDetector()

	local := note("n1", "unchanged", t0)
	local.LastModified = tMinus1 // not edited since last sync
	remote := note("n1", "remote edit", t1)

	_, found := d.Detect(local, remote, tMinus1)
	assert.False(t, found, "single-sided change wins without a conflict")
}

func TestDetect_IdenticalRecords_NoConflict(t *testing.T) {
	d := newTestDetector()

	local := note("n1", "same", t1)
	remote := note("n1", "same", t1)

	_, found := d.Detect(local, remote, tMinus1)
	assert.False(t, found)
}

func TestDetect_ResolvedMarkerSuppressesRedetection(t *testing.T) {
	d := newTestDetector()

	local := note("n1", "merged value", t2)
	local.Resolved = true
	remote := note("n1", "old remote", t1)

	_, found := d.Detect(local, remote, t0)
	assert.False(t, found, "a freshly resolved value must not re-detect")
}

func TestDetect_Deterministic(t *testing.T) {
	d := newTestDetector()

	local := note("n1", "A", t0)
	remote := note("n1", "B", t1)

	first, foundFirst := d.Detect(local, remote, tMinus1)
	second, foundSecond := d.Detect(local, remote, tMinus1)

	require.True(t, foundFirst)
	require.True(t, foundSecond)
	assert.Equal(t, first, second)
}

// ── DetectAll ────────────────────────────────────────────────────────────────

func TestDetectAll_MatchesByID(t *testing.T) {
	d := newTestDetector()

	local := []models.Record{
		note("n1", "A", t0),
		note("n2", "only local", t0), // absent remotely — not a conflict
	}
	remote := []models.Record{
		note("n1", "B", t1),
		note("n3", "only remote", t1), // absent locally — not a conflict
	}

	conflicts := d.DetectAll(local, remote)
	require.Len(t, conflicts, 1)
	assert.Equal(t, "n1", conflicts[0].Local.ID)
}

// ── Fingerprint soundness (§ fast path must never mask a real difference) ────

func TestFingerprintSoundness(t *testing.T) {
	mutations := []struct {
		name   string
		mutate func(*models.Record)
	}{
		{"title", func(r *models.Record) { r.Title = "changed" }},
		{"content", func(r *models.Record) { r.Content = "changed" }},
		{"tags", func(r *models.Record) { r.Tags = append(r.Tags, "extra") }},
		{"deleted", func(r *models.Record) { r.Deleted = !r.Deleted }},
		{"meta-add", func(r *models.Record) { r.Meta = map[string]string{"k": "v"} }},
		{"meta-change", func(r *models.Record) { r.Meta = map[string]string{"color": "blue"} }},
	}

	base := note("n1", "line1\nline2", t0)
	base.Tags = []string{"a", "b"}
	base.Meta = map[string]string{"color": "red"}

	for _, m := range mutations {
		t.Run(m.name, func(t *testing.T) {
			other := base
			other.Tags = append([]string(nil), base.Tags...)
			m.mutate(&other)

			fields := Fields(base, other)
			if len(fields) == 0 {
				t.Fatalf("mutation %s produced no differing fields", m.name)
			}
			assert.False(t, fingerprint.Equal(base, other),
				fmt.Sprintf("fields %v differ but fingerprints match", fields))
		})
	}
}

func TestFields_Order(t *testing.T) {
	local := note("n1", "A", t0)
	local.Tags = []string{"x"}
	remote := note("n1", "B", t1)
	remote.Title = "Other"
	remote.Deleted = true

	fields := Fields(local, remote)
	assert.Equal(t, []string{"title", "content", "tags", "deleted"}, fields)
}
