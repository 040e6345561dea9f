package xlsx

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]any) *bytes.Reader {
	t.Helper()

	workbook := excelize.NewFile()
	sheet := workbook.GetSheetName(workbook.GetActiveSheetIndex())
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, workbook.SetSheetRow(sheet, cellRef, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, workbook.Write(&buf))
	require.NoError(t, workbook.Close())

	return bytes.NewReader(buf.Bytes())
}

func TestParseTasksMapsHeaderColumns(t *testing.T) {
	t.Parallel()

	reader := buildWorkbook(t, [][]any{
		{"TASK_TARGET_TYPE", "TASK_URL"},
		{"1", "https://x.com/status/1"},
		{"", "https://x.com/status/2"},
		{"2", ""},
	})

	tasks, err := ParseTasks(reader)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "https://x.com/status/1", tasks[0].URL)
	assert.Equal(t, "1", tasks[0].TargetType)
	assert.Equal(t, "", tasks[1].TargetType)
}

func TestParseTasksMissingURLColumn(t *testing.T) {
	t.Parallel()

	reader := buildWorkbook(t, [][]any{
		{"SOMETHING_ELSE"},
		{"x"},
	})

	_, err := ParseTasks(reader)
	require.Error(t, err)
}

func TestParseAccountsMapsAllColumns(t *testing.T) {
	t.Parallel()

	reader := buildWorkbook(t, [][]any{
		{"ACCOUNT_NAME", "ACCOUNT_ID", "ACCOUNT_LINK", "ACCOUNT_STATUS",
			"ACCOUNT_CATEGORY", "ACCOUNT_TYPE", "PUBLISHING_LEVEL", "ACCESS_LEVEL"},
		{"press", "100", "https://x.com/press", "active", "media", "1", "2", "3"},
		{"", "ignored"},
	})

	accounts, err := ParseAccounts(reader)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "press", accounts[0].Name)
	assert.Equal(t, "100", accounts[0].AccountID)
	assert.Equal(t, "https://x.com/press", accounts[0].Link)
	assert.Equal(t, "1", accounts[0].Type)
	assert.Equal(t, "2", accounts[0].PublishingLevel)
	assert.Equal(t, "3", accounts[0].AccessLevel)
}

func TestParseAccountsToleratesMissingOptionalColumns(t *testing.T) {
	t.Parallel()

	reader := buildWorkbook(t, [][]any{
		{"ACCOUNT_NAME", "ACCOUNT_TYPE"},
		{"press", "1"},
	})

	accounts, err := ParseAccounts(reader)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "", accounts[0].AccountID)
	assert.Equal(t, "1", accounts[0].Type)
}
