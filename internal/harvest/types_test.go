package harvest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPartitionKey(t *testing.T) {
	t.Parallel()

	from, err := time.Parse(DateLayout, "06/01/2024")
	require.NoError(t, err)
	require.Equal(t, "06-01-2024", Partition{From: from}.Key())
}

func TestHarvestRecordComplete(t *testing.T) {
	t.Parallel()

	rec := HarvestRecord{
		ID:          "ADJ-1",
		DocumentURL: "http://wrc.test/docs/ADJ-1.pdf",
		FileType:    "pdf",
		RawContent:  []byte("x"),
	}
	require.NoError(t, rec.Complete())

	noID := rec
	noID.ID = ""
	require.Error(t, noID.Complete())

	noURL := rec
	noURL.DocumentURL = ""
	require.Error(t, noURL.Complete())

	noType := rec
	noType.FileType = ""
	require.Error(t, noType.Complete())

	noContent := rec
	noContent.RawContent = nil
	require.Error(t, noContent.Complete())
}
