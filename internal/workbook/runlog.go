package workbook

import (
	"fmt"
	"time"
)

const (
	// RunLogSheetName names the worksheet recording one row per pipeline run.
	RunLogSheetName = "Run Log"

	runLogSheetCreationErrorTemplateConstant = "failed to create run log sheet: %w"
	runLogTimestampHeaderConstant            = "Timestamp (UTC)"
	runLogClassifiedHeaderConstant           = "Reviews Classified"
	runLogErrorsHeaderConstant               = "Errors"
	runLogTimestampLayoutConstant            = time.RFC3339
	runLogTimestampColumnConstant            = 1
	runLogClassifiedColumnConstant           = 2
	runLogErrorsColumnConstant               = 3
)

// RunLogEntry describes a single pipeline run recorded in the workbook.
type RunLogEntry struct {
	Timestamp         time.Time
	ReviewsClassified int
	ErrorCount        int
}

// AppendRunLogEntry appends one row describing a pipeline run, creating the run log sheet on first use.
func (store *Store) AppendRunLogEntry(entry RunLogEntry) error {
	sheetIndex, lookupError := store.file.GetSheetIndex(RunLogSheetName)
	if lookupError != nil {
		return fmt.Errorf(runLogSheetCreationErrorTemplateConstant, lookupError)
	}

	if sheetIndex == -1 {
		if _, creationError := store.file.NewSheet(RunLogSheetName); creationError != nil {
			return fmt.Errorf(runLogSheetCreationErrorTemplateConstant, creationError)
		}
		if headerError := store.writeRunLogRow(headerRowNumberConstant, runLogTimestampHeaderConstant, runLogClassifiedHeaderConstant, runLogErrorsHeaderConstant); headerError != nil {
			return headerError
		}
	}

	existingRows, rowsError := store.file.GetRows(RunLogSheetName)
	if rowsError != nil {
		return fmt.Errorf(sheetRowsErrorTemplateConstant, RunLogSheetName, rowsError)
	}

	nextRowNumber := len(existingRows) + 1
	return store.writeRunLogRow(
		nextRowNumber,
		entry.Timestamp.UTC().Format(runLogTimestampLayoutConstant),
		entry.ReviewsClassified,
		entry.ErrorCount,
	)
}

func (store *Store) writeRunLogRow(rowNumber int, timestampValue any, classifiedValue any, errorsValue any) error {
	if writeError := store.setCell(RunLogSheetName, runLogTimestampColumnConstant, rowNumber, timestampValue); writeError != nil {
		return writeError
	}
	if writeError := store.setCell(RunLogSheetName, runLogClassifiedColumnConstant, rowNumber, classifiedValue); writeError != nil {
		return writeError
	}
	return store.setCell(RunLogSheetName, runLogErrorsColumnConstant, rowNumber, errorsValue)
}
