package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"ai-inspector/internal/domain/entity"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadLabels(t *testing.T) {
	path := writeFile(t, "labels.txt", "OK\r\nScratch\n\nDent\n\n\n")

	labels, err := LoadLabels(path)
	require.NoError(t, err)
	require.Equal(t, []string{"OK", "Scratch", "", "Dent"}, labels)
}

func TestLoadLabels_Empty(t *testing.T) {
	path := writeFile(t, "labels.txt", "\n\n")

	_, err := LoadLabels(path)
	require.Error(t, err)
}

func TestLoadLabels_Missing(t *testing.T) {
	_, err := LoadLabels(filepath.Join(t.TempDir(), "nope.txt"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadResultTable(t *testing.T) {
	path := writeFile(t, "results.yaml", `
results:
  OK:
    display: Good
    category: "0"
  "ERR,ERR_NoROI":
    display: ROI not found
    category: E01
  Dent:
    category: "7"
`)

	table, err := LoadResultTable(path)
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	name, code := table.Lookup("OK")
	require.Equal(t, "Good", name)
	require.Equal(t, "0", code)

	name, code = table.Lookup("ERR,ERR_NoROI")
	require.Equal(t, "ROI not found", name)
	require.Equal(t, "E01", code)

	name, code = table.Lookup("Dent")
	require.Equal(t, "Dent", name)
	require.Equal(t, "7", code)

	name, code = table.Lookup("Unknown")
	require.Equal(t, "Unknown", name)
	require.Empty(t, code)
}

func TestLoadResultTable_Malformed(t *testing.T) {
	path := writeFile(t, "results.yaml", "results: [1, 2")

	_, err := LoadResultTable(path)
	require.Error(t, err)
}

func TestMemoryOperatorRepository(t *testing.T) {
	repo := NewMemoryOperatorRepository()
	ctx := context.Background()

	op, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, op.State)

	require.NoError(t, repo.UpdateState(ctx, 1, entity.StateAwaitingPhoto))

	again, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Same(t, op, again)
	require.Equal(t, entity.StateAwaitingPhoto, again.State)

	// неизвестный оператор не создаётся
	require.NoError(t, repo.UpdateState(ctx, 2, entity.StateProcessing))
}

func TestShippedResultTableCoversLabels(t *testing.T) {
	labels, err := LoadLabels(filepath.Join("..", "..", "..", "models", "labels.txt"))
	require.NoError(t, err)
	table, err := LoadResultTable(filepath.Join("..", "..", "..", "programs", "results.yaml"))
	require.NoError(t, err)

	for _, label := range labels {
		_, category := table.Lookup(label)
		require.NotEmpty(t, category, label)
	}
	for _, code := range []string{entity.ErrCodeUndefined, entity.ErrCodeNoPositive, entity.ErrCodeLabelOutOfRange} {
		_, category := table.Lookup(entity.ErrorLabel(code))
		require.NotEmpty(t, category, code)
	}
}
