// Package xlsx extracts task and account rows from uploaded spreadsheets.
// Columns are located by header name, so sheet column order is free.
package xlsx

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/isnadmansour/IsnadTasks/internal/domain"
)

const (
	colTaskURL        = "TASK_URL"
	colTaskTargetType = "TASK_TARGET_TYPE"

	colAccountName     = "ACCOUNT_NAME"
	colAccountID       = "ACCOUNT_ID"
	colAccountLink     = "ACCOUNT_LINK"
	colAccountStatus   = "ACCOUNT_STATUS"
	colAccountCategory = "ACCOUNT_CATEGORY"
	colAccountType     = "ACCOUNT_TYPE"
	colPublishingLevel = "PUBLISHING_LEVEL"
	colAccessLevel     = "ACCESS_LEVEL"
)

// ParseTasks reads the active sheet and returns one row per non-blank
// TASK_URL cell.
func ParseTasks(r io.Reader) ([]domain.TaskRow, error) {
	rows, header, err := sheetRows(r)
	if err != nil {
		return nil, err
	}

	urlIdx := index(header, colTaskURL)
	if urlIdx < 0 {
		return nil, fmt.Errorf("missing column %s", colTaskURL)
	}
	typeIdx := index(header, colTaskTargetType)

	tasks := make([]domain.TaskRow, 0, len(rows))
	for _, row := range rows {
		url := cell(row, urlIdx)
		if url == "" {
			continue
		}

		tasks = append(tasks, domain.TaskRow{
			URL:        url,
			TargetType: cell(row, typeIdx),
		})
	}

	return tasks, nil
}

// ParseAccounts reads the active sheet and returns one row per non-blank
// ACCOUNT_NAME cell.
func ParseAccounts(r io.Reader) ([]domain.AccountRow, error) {
	rows, header, err := sheetRows(r)
	if err != nil {
		return nil, err
	}

	nameIdx := index(header, colAccountName)
	if nameIdx < 0 {
		return nil, fmt.Errorf("missing column %s", colAccountName)
	}

	accounts := make([]domain.AccountRow, 0, len(rows))
	for _, row := range rows {
		name := cell(row, nameIdx)
		if name == "" {
			continue
		}

		accounts = append(accounts, domain.AccountRow{
			Name:            name,
			AccountID:       cell(row, index(header, colAccountID)),
			Link:            cell(row, index(header, colAccountLink)),
			Status:          cell(row, index(header, colAccountStatus)),
			Category:        cell(row, index(header, colAccountCategory)),
			Type:            cell(row, index(header, colAccountType)),
			PublishingLevel: cell(row, index(header, colPublishingLevel)),
			AccessLevel:     cell(row, index(header, colAccessLevel)),
		})
	}

	return accounts, nil
}

// sheetRows returns the active sheet's data rows and a header-name to
// column-index map built from the first row.
func sheetRows(r io.Reader) ([][]string, map[string]int, error) {
	workbook, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer workbook.Close()

	sheet := workbook.GetSheetName(workbook.GetActiveSheetIndex())
	rows, err := workbook.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %q is empty", sheet)
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		name = strings.ToUpper(strings.TrimSpace(name))
		if name != "" {
			header[name] = i
		}
	}

	return rows[1:], header, nil
}

func index(header map[string]int, name string) int {
	if idx, ok := header[name]; ok {
		return idx
	}
	return -1
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
