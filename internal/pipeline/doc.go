// Package pipeline orchestrates one end-to-end sentiment run: ensuring the
// repository working copy, classifying pending reviews in the workbook,
// recording the run log, and committing and pushing the result.
package pipeline
