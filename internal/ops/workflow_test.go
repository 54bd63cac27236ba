package ops

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/specpress/specpress/internal/digest"
	"github.com/specpress/specpress/internal/errors"
)

// TestFullWorkflow exercises the complete digest lifecycle:
// digest → reload → metrics → history → preview → forced re-digest
func TestFullWorkflow(t *testing.T) {
	database, cfg, path := testEnv(t)

	// 1. Digest
	out, err := Digest(database, cfg, DigestInput{Path: path})
	require.NoError(t, err)
	require.NotEmpty(t, out.RunID)
	require.True(t, out.MeetsMinimum)
	require.Less(t, out.DigestTokens, out.OriginalTokens)

	// 2. Reload the written digest and verify provenance
	d, err := digest.FromFile(out.DigestFile)
	require.NoError(t, err)
	require.Equal(t, "default", d.Metadata.OptimizationProfile)
	require.Equal(t, digest.FormatVersion, d.Metadata.FormatVersion)
	require.Equal(t, path, d.Source.FilePath)
	require.Contains(t, d.Content, "**FR-001**:")
	require.NotContains(t, d.Content, "Assumptions")

	// 3. Metrics report matches the recorded run
	m, err := Metrics(cfg, path, "")
	require.NoError(t, err)
	require.Equal(t, out.OriginalTokens, m.OriginalTokens)
	require.Equal(t, out.DigestTokens, m.DigestTokens)
	require.NotEmpty(t, m.Sections)

	// 4. History shows the run
	runs, err := History(database, path, 0)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, out.RunID, runs[0].ID)

	// 5. Preview renders the digest
	html, err := Preview(out.DigestFile)
	require.NoError(t, err)
	require.Contains(t, html, "<!DOCTYPE html>")

	// 6. Re-digest without force fails, with force succeeds
	_, err = Digest(database, cfg, DigestInput{Path: path})
	require.Error(t, err)
	var appErr *errors.Error
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, errors.ErrValidation, appErr.Code)

	second, err := Digest(database, cfg, DigestInput{Path: path, Force: true})
	require.NoError(t, err)
	require.NotEqual(t, out.RunID, second.RunID)

	runs, err = History(database, "", 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
}

// TestCrossFormatWorkflow digests markdown into JSON and reloads it.
func TestCrossFormatWorkflow(t *testing.T) {
	database, cfg, path := testEnv(t)
	outPath := filepath.Join(filepath.Dir(path), "queue.digest.json")

	out, err := Digest(database, cfg, DigestInput{Path: path, Format: "json", Output: outPath})
	require.NoError(t, err)
	require.Equal(t, outPath, out.DigestFile)

	d, err := digest.FromFile(outPath)
	require.NoError(t, err)
	require.NotContains(t, d.Content, "_digest_metadata")
	require.Contains(t, d.Content, "sections")
}
