// Package schedule triggers pipeline runs on a cron expression while
// suppressing overlapping executions.
package schedule
