// Package workbook reads and mutates the reviews spreadsheet: locating the
// review and sentiment columns, extracting pending reviews, writing
// classification labels back, and appending run-log rows.
package workbook
