package importer

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bartmanten/neolea-velocity-dashboard/internal/model"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/parser"
	"github.com/bartmanten/neolea-velocity-dashboard/internal/profile"
)

func TestSuggest_AutoLocate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "SPINS ending 01-26-25.xlsx")
	buildWorkbook(t, path,
		sheetData{name: "Notes", rows: [][]interface{}{{"x"}}},
		sheetData{name: "Ret_Brand_Pivot", rows: pivotRows()},
	)
	repo := profile.NewFileStore(filepath.Join(dir, profile.DefaultFileName), nil)

	coord := newTestCoordinator(repo)
	res, err := coord.Suggest(SuggestRequest{Path: path})
	require.NoError(t, err)

	assert.Equal(t, "Ret_Brand_Pivot", res.Sheet)
	assert.Equal(t, []string{"Notes", "Ret_Brand_Pivot"}, res.Sheets)
	assert.Equal(t, model.HeaderBlock{Start: 0, End: 1}, res.HeaderBlock)
	assert.Equal(t, 2, res.DataStart)
	assert.Equal(t, "Latest 4 Wks | Sum of Units", res.Suggestion[model.RoleUnits])
	assert.Equal(t, model.Period4Weeks, res.Period)
	assert.Nil(t, res.Saved)
	require.Len(t, res.Preview, 4)
	assert.Equal(t, "KROGER", res.Preview[0]["chain"])
	assert.Equal(t, "n/a", res.Preview[1]["units"])

	// 保存后再次建议能带出已保存映射
	require.NoError(t, repo.Put(res.ProfileKey, res.Suggestion))
	res, err = coord.Suggest(SuggestRequest{Path: path, Sheet: "Ret_Brand_Pivot"})
	require.NoError(t, err)
	assert.Equal(t, "Sum of Dollars", res.Saved[model.RoleDollars])
}

func TestSuggest_ManualRows(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "manual.xlsx")
	buildWorkbook(t, path, sheetData{name: "Data", rows: [][]interface{}{
		{"Retailer", "Units", "Dollars"},
		{"(subtotal)", "", ""},
		{"SPROUTS", 4, 8},
	}})
	coord := newTestCoordinator(nil)

	res, err := coord.Suggest(SuggestRequest{Path: path, Sheet: "Data", Block: &model.HeaderBlock{Start: 0, End: 0}, DataStart: 2})
	require.NoError(t, err)
	assert.Equal(t, "Retailer", res.Suggestion[model.RoleChain])
	require.Len(t, res.Preview, 1)
	assert.Equal(t, "SPROUTS", res.Preview[0]["chain"])

	_, err = coord.Suggest(SuggestRequest{Path: path, Sheet: "Data", Block: &model.HeaderBlock{Start: 0, End: 1}, DataStart: 1})
	assert.True(t, errors.Is(err, ErrInvalidHeaderRows))

	_, err = coord.Suggest(SuggestRequest{Path: path, Sheet: "Data", Block: &model.HeaderBlock{Start: 2, End: 9}})
	assert.True(t, errors.Is(err, ErrInvalidHeaderRows))

	_, err = coord.Suggest(SuggestRequest{Path: path, Sheet: "Data"})
	assert.True(t, errors.Is(err, parser.ErrHeaderNotFound))
}
