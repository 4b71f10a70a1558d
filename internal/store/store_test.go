package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	root := t.TempDir()
	s, err := Open(root)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func upsertFile(t *testing.T, s *Store, path, language, digest string, lineCount int) (int64, bool) {
	t.Helper()
	tx, err := s.db.Begin()
	require.NoError(t, err)
	id, changed, err := s.UpsertFile(tx, path, language, digest, lineCount)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())
	return id, changed
}

func TestOpenCreatesSchema(t *testing.T) {
	root := t.TempDir()
	s, err := Open(root)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.db.Exec("SELECT 1 FROM symbols_fts LIMIT 0")
	assert.NoError(t, err, "symbols_fts virtual table should exist")

	v, err := GetSchemaVersion(s.db)
	require.NoError(t, err)
	assert.Equal(t, "1", v)

	assert.FileExists(t, filepath.Join(root, ".codex", "index.db"))
}

func TestUpsertFileTracksChange(t *testing.T) {
	s := openTestStore(t)

	id1, changed1 := upsertFile(t, s, "a.go", "go", "deadbeefdeadbeef", 10)
	assert.True(t, changed1)

	id2, changed2 := upsertFile(t, s, "a.go", "go", "deadbeefdeadbeef", 10)
	assert.Equal(t, id1, id2)
	assert.False(t, changed2, "unchanged digest should report changed=false")

	id3, changed3 := upsertFile(t, s, "a.go", "go", "cafebabecafebabe", 12)
	assert.Equal(t, id1, id3)
	assert.True(t, changed3)
}

func TestClearFileDataRemovesOwnedRows(t *testing.T) {
	s := openTestStore(t)

	fileID, _ := upsertFile(t, s, "a.go", "go", "deadbeefdeadbeef", 3)

	tx, err := s.db.Begin()
	require.NoError(t, err)

	sid1, err := s.InsertSymbol(tx, Symbol{FileID: fileID, Name: "Foo", Kind: KindFunction, StartLine: 1, EndLine: 2})
	require.NoError(t, err)
	sid2, err := s.InsertSymbol(tx, Symbol{FileID: fileID, Name: "Bar", Kind: KindFunction, StartLine: 3, EndLine: 4})
	require.NoError(t, err)
	require.NoError(t, s.InsertEdgeIgnore(tx, sid1, sid2, EdgeCalls))
	require.NoError(t, tx.Commit())

	n, err := s.SymbolCount()
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	tx, err = s.db.Begin()
	require.NoError(t, err)
	require.NoError(t, s.ClearFileData(tx, fileID))
	require.NoError(t, tx.Commit())

	n, err = s.SymbolCount()
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	ec, err := s.EdgeCounts()
	require.NoError(t, err)
	assert.Equal(t, 0, ec)
}

func TestRemoveStaleDropsUnlistedFiles(t *testing.T) {
	s := openTestStore(t)

	keepID, _ := upsertFile(t, s, "keep.go", "go", "11111111", 1)
	upsertFile(t, s, "gone.go", "go", "22222222", 1)

	tx, err := s.db.Begin()
	require.NoError(t, err)
	_, err = s.InsertSymbol(tx, Symbol{FileID: keepID, Name: "Keep", Kind: KindFunction, StartLine: 1, EndLine: 1})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	tx, err = s.db.Begin()
	require.NoError(t, err)
	require.NoError(t, s.RemoveStale(tx, map[string]struct{}{"keep.go": {}}))
	require.NoError(t, tx.Commit())

	paths, err := s.AllFilePaths()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"keep.go"}, paths)
}

func TestSearchFTSRanksAndHighlights(t *testing.T) {
	s := openTestStore(t)

	fileID, _ := upsertFile(t, s, "a.go", "go", "11111111", 2)

	tx, err := s.db.Begin()
	require.NoError(t, err)
	_, err = s.InsertSymbol(tx, Symbol{
		FileID: fileID, Name: "ParseConfig", Kind: KindFunction,
		StartLine: 1, EndLine: 5, Body: "func ParseConfig() error { return nil }",
		Exported: true,
	})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	results, err := s.SearchFTS("ParseConfig", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "ParseConfig", results[0].Name)
	assert.Contains(t, results[0].Snippet, ">>>")
}

func TestSearchFTSEmptyQuery(t *testing.T) {
	s := openTestStore(t)
	results, err := s.SearchFTS("", 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = s.SearchFTS("!!!", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestWriteRankingsReplacesWholesale(t *testing.T) {
	s := openTestStore(t)
	fileID, _ := upsertFile(t, s, "a.go", "go", "11111111", 1)

	tx, err := s.db.Begin()
	require.NoError(t, err)
	sid, err := s.InsertSymbol(tx, Symbol{FileID: fileID, Name: "F", Kind: KindFunction, StartLine: 1, EndLine: 1})
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	tx, err = s.db.Begin()
	require.NoError(t, err)
	require.NoError(t, s.WriteRankings(tx, []Ranking{{SymbolID: sid, Rank: 1.0, InDegree: 0, OutDegree: 0}}))
	require.NoError(t, tx.Commit())

	rc, err := s.RankingCount()
	require.NoError(t, err)
	assert.Equal(t, 1, rc)

	rank, err := s.RankOf(sid)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, rank, 1e-9)
}
