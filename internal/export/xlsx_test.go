package export

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/moodytx/directory/internal/model"
)

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "directory.xlsx")

	categories := []model.Category{
		{ID: "c1", Name: "Restaurants", Description: "Places to eat", Order: 1},
		{ID: "c2", Name: "Shopping", Order: 2},
	}
	businesses := []model.Business{
		{Name: "Joe's Diner", Address: "305 6th St", PhoneNumber: "(254) 555-0100", Rating: 4.5, CategoryID: "c1", PlaceID: "p-1"},
		{Name: "The Corner Cafe", CategoryID: "c1", PlaceID: "p-2"},
		{Name: "Moody Feed Store", CategoryID: "c2", PlaceID: "p-3"},
	}

	require.NoError(t, WriteXLSX(path, categories, businesses))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)

	bs, ok := f.Sheet["Businesses"]
	require.True(t, ok)
	require.Len(t, bs.Rows, 4, "header plus one row per business")
	assert.Equal(t, "Name", bs.Rows[0].Cells[0].Value)
	assert.Equal(t, "Joe's Diner", bs.Rows[1].Cells[0].Value)
	assert.Equal(t, "Restaurants", bs.Rows[1].Cells[1].Value, "category id resolved to its name")
	assert.Equal(t, "p-1", bs.Rows[1].Cells[6].Value)

	cs, ok := f.Sheet["Categories"]
	require.True(t, ok)
	require.Len(t, cs.Rows, 3)
	assert.Equal(t, "Restaurants", cs.Rows[1].Cells[1].Value)
	count, err := cs.Rows[1].Cells[3].Int()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestWriteXLSXEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, WriteXLSX(path, nil, nil))

	f, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Contains(t, f.Sheet, "Businesses")
	assert.Len(t, f.Sheet["Businesses"].Rows, 1)
}

func TestWriteXLSXBadPath(t *testing.T) {
	err := WriteXLSX(filepath.Join(t.TempDir(), "no-such-dir", "x.xlsx"), nil, nil)
	assert.Error(t, err)
}
