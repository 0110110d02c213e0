package workbook

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	// ReviewsColumnHeader names the column holding review text.
	ReviewsColumnHeader = "Reviews"
	// SentimentColumnHeader names the column holding classification labels.
	SentimentColumnHeader = "Sentiment"

	workbookPathRequiredMessageConstant    = "workbook path must be provided"
	workbookOpenErrorTemplateConstant      = "failed to open workbook %s: %w"
	workbookSaveErrorTemplateConstant      = "failed to save workbook: %w"
	sheetRowsErrorTemplateConstant         = "failed to read rows of sheet %s: %w"
	cellCoordinateErrorTemplateConstant    = "failed to build cell coordinate: %w"
	cellWriteErrorTemplateConstant         = "failed to write cell %s on sheet %s: %w"
	skipReasonSentimentPresentConstant     = "sentiment column already present"
	skipReasonReviewsColumnMissingConstant = "reviews column not found"
	headerRowNumberConstant                = 1
	firstDataRowNumberConstant             = 2
)

// ErrWorkbookPathRequired indicates the workbook path option was empty.
var ErrWorkbookPathRequired = errors.New(workbookPathRequiredMessageConstant)

// Review pairs a review text with its workbook coordinates.
type Review struct {
	SheetName string
	RowNumber int
	Text      string
}

// SheetPreparation describes how a sheet participates in a classification pass.
type SheetPreparation struct {
	SheetName       string
	Skipped         bool
	SkipReason      string
	ReviewsColumn   int
	SentimentColumn int
}

// Store wraps an open xlsx workbook.
type Store struct {
	filePath string
	file     *excelize.File
}

// Open loads the workbook at filePath.
func Open(filePath string) (*Store, error) {
	trimmedFilePath := strings.TrimSpace(filePath)
	if len(trimmedFilePath) == 0 {
		return nil, ErrWorkbookPathRequired
	}

	workbookFile, openError := excelize.OpenFile(trimmedFilePath)
	if openError != nil {
		return nil, fmt.Errorf(workbookOpenErrorTemplateConstant, trimmedFilePath, openError)
	}

	return &Store{filePath: trimmedFilePath, file: workbookFile}, nil
}

// Close releases the underlying workbook handle.
func (store *Store) Close() error {
	return store.file.Close()
}

// Save writes the workbook back to its original path.
func (store *Store) Save() error {
	if saveError := store.file.Save(); saveError != nil {
		return fmt.Errorf(workbookSaveErrorTemplateConstant, saveError)
	}
	return nil
}

// FilePath reports the path the workbook was opened from.
func (store *Store) FilePath() string {
	return store.filePath
}

// ReviewSheetNames lists every worksheet except the run log.
func (store *Store) ReviewSheetNames() []string {
	sheetNames := make([]string, 0)
	for _, sheetName := range store.file.GetSheetList() {
		if sheetName == RunLogSheetName {
			continue
		}
		sheetNames = append(sheetNames, sheetName)
	}
	return sheetNames
}

// PrepareSentimentColumn decides whether a sheet needs classification and appends the sentiment header when it does.
// Sheets already carrying a sentiment column, and sheets without a reviews column, are skipped.
func (store *Store) PrepareSentimentColumn(sheetName string) (SheetPreparation, error) {
	headerRow, headerError := store.headerRow(sheetName)
	if headerError != nil {
		return SheetPreparation{}, headerError
	}

	if _, sentimentExists := findHeaderColumn(headerRow, SentimentColumnHeader); sentimentExists {
		return SheetPreparation{SheetName: sheetName, Skipped: true, SkipReason: skipReasonSentimentPresentConstant}, nil
	}

	reviewsColumn, reviewsExists := findHeaderColumn(headerRow, ReviewsColumnHeader)
	if !reviewsExists {
		return SheetPreparation{SheetName: sheetName, Skipped: true, SkipReason: skipReasonReviewsColumnMissingConstant}, nil
	}

	sentimentColumn := store.maxColumnCount(sheetName) + 1
	if writeError := store.setCell(sheetName, sentimentColumn, headerRowNumberConstant, SentimentColumnHeader); writeError != nil {
		return SheetPreparation{}, writeError
	}

	return SheetPreparation{
		SheetName:       sheetName,
		ReviewsColumn:   reviewsColumn,
		SentimentColumn: sentimentColumn,
	}, nil
}

// PendingReviews extracts the non-empty review texts of a sheet with their row coordinates.
func (store *Store) PendingReviews(sheetName string, reviewsColumn int) ([]Review, error) {
	sheetRows, rowsError := store.file.GetRows(sheetName)
	if rowsError != nil {
		return nil, fmt.Errorf(sheetRowsErrorTemplateConstant, sheetName, rowsError)
	}

	pendingReviews := make([]Review, 0)
	for rowIndex, sheetRow := range sheetRows {
		rowNumber := rowIndex + 1
		if rowNumber < firstDataRowNumberConstant {
			continue
		}
		if len(sheetRow) < reviewsColumn {
			continue
		}
		reviewText := strings.TrimSpace(sheetRow[reviewsColumn-1])
		if len(reviewText) == 0 {
			continue
		}
		pendingReviews = append(pendingReviews, Review{SheetName: sheetName, RowNumber: rowNumber, Text: reviewText})
	}

	return pendingReviews, nil
}

// SetSentiment writes a classification label into the sentiment column of the given row.
func (store *Store) SetSentiment(sheetName string, rowNumber int, sentimentColumn int, label string) error {
	return store.setCell(sheetName, sentimentColumn, rowNumber, label)
}

func (store *Store) headerRow(sheetName string) ([]string, error) {
	sheetRows, rowsError := store.file.GetRows(sheetName)
	if rowsError != nil {
		return nil, fmt.Errorf(sheetRowsErrorTemplateConstant, sheetName, rowsError)
	}
	if len(sheetRows) == 0 {
		return nil, nil
	}
	return sheetRows[0], nil
}

func (store *Store) maxColumnCount(sheetName string) int {
	sheetRows, rowsError := store.file.GetRows(sheetName)
	if rowsError != nil {
		return 0
	}
	maxColumns := 0
	for _, sheetRow := range sheetRows {
		if len(sheetRow) > maxColumns {
			maxColumns = len(sheetRow)
		}
	}
	return maxColumns
}

func (store *Store) setCell(sheetName string, columnNumber int, rowNumber int, value any) error {
	cellName, coordinateError := excelize.CoordinatesToCellName(columnNumber, rowNumber)
	if coordinateError != nil {
		return fmt.Errorf(cellCoordinateErrorTemplateConstant, coordinateError)
	}
	if writeError := store.file.SetCellValue(sheetName, cellName, value); writeError != nil {
		return fmt.Errorf(cellWriteErrorTemplateConstant, cellName, sheetName, writeError)
	}
	return nil
}

func findHeaderColumn(headerRow []string, headerName string) (int, bool) {
	for columnIndex, headerValue := range headerRow {
		if strings.EqualFold(strings.TrimSpace(headerValue), headerName) {
			return columnIndex + 1, true
		}
	}
	return 0, false
}
