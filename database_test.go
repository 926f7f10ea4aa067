package offersearch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/offersearch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCSV = `OFFER,RETAILER,BRAND,BRAND_BELONGS_TO_CATEGORY,RECEIPTS
10% off Acme snacks,Walmart,Acme,Snacks,10
Spend $20 on Globex soda,Target,Globex,Beverages,5
,Walmart,Initech,Snacks,1
`

func writeCSV(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "offers.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		assert.NotNil(t, db.OfferRepository())
		assert.NotNil(t, db.backend)
		assert.NotNil(t, db.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to create a database at a file path instead of directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		db, err := NewDatabase(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, db)
	})
}

func TestDatabase_Close(t *testing.T) {
	db, err := NewDatabase(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, db)

	assert.NoError(t, db.Close())
}

func TestDatabase_ImportAndSearch(t *testing.T) {
	db, err := NewDatabase("", WithInMemory(), WithPoolSize(2))
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	info, err := db.Import(ctx, writeCSV(t, testCSV))
	require.NoError(t, err)
	assert.Equal(t, 3, info.Rows)

	cat, err := db.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, info.Fingerprint, cat.Fingerprint())

	searcher, err := db.NewSearcher(ctx)
	require.NoError(t, err)
	defer searcher.Close()

	ranking, err := searcher.Search(ctx, "snacks", 0)
	require.NoError(t, err)
	assert.Equal(t, core.TierCategory, ranking.Tier)
	assert.Len(t, ranking.Offers, 2)
}

func TestDatabase_EmptyStore(t *testing.T) {
	db, err := NewDatabase("", WithInMemory())
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	_, err = db.LoadCatalog(ctx)
	assert.ErrorIs(t, err, core.ErrNoData)

	searcher, err := db.NewSearcher(ctx)
	require.NoError(t, err)
	defer searcher.Close()

	_, err = searcher.Search(ctx, "snacks", 0)
	assert.ErrorIs(t, err, core.ErrNoData)

	assert.ErrorIs(t, db.Reload(ctx, searcher), core.ErrNoData)
}

func TestDatabase_Reload(t *testing.T) {
	db, err := NewDatabase("", WithInMemory())
	require.NoError(t, err)
	defer db.Close()
	ctx := context.Background()

	searcher, err := db.NewSearcher(ctx)
	require.NoError(t, err)
	defer searcher.Close()
	assert.Nil(t, searcher.Catalog())

	_, err = db.Import(ctx, writeCSV(t, testCSV))
	require.NoError(t, err)
	require.NoError(t, db.Reload(ctx, searcher))
	require.NotNil(t, searcher.Catalog())
	assert.Equal(t, 3, searcher.Catalog().Len())

	replacement := strings.Replace(testCSV, "Globex", "Hooli", -1)
	_, err = db.Import(ctx, writeCSV(t, replacement))
	require.NoError(t, err)
	require.NoError(t, db.Reload(ctx, searcher))

	ranking, err := searcher.Search(ctx, "hooli", 1)
	require.NoError(t, err)
	assert.Equal(t, core.TierBrand, ranking.Tier)
	assert.Equal(t, core.ID(2), ranking.Offers[0].Id)
}

func TestDatabase_PersistsAcrossOpen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db, err := NewDatabase(dir)
	require.NoError(t, err)
	info, err := db.Import(ctx, writeCSV(t, testCSV))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = NewDatabase(dir)
	require.NoError(t, err)
	defer db.Close()

	stored, err := db.SnapshotInfo(ctx)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, info.Fingerprint, stored.Fingerprint)

	cat, err := db.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, info.Fingerprint, cat.Fingerprint())
}
