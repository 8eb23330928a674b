// ABOUTME: Metric record operations for SQLite storage.
// ABOUTME: Saves are a single transaction per call; queries order by date then insertion.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/harperreed/labtrack/internal/models"
)

const recordColumns = `id, username, category, metric_name, metric_value, date, source_file_path, created_at`

// SaveMetrics appends one record per metric.
func (d *DB) SaveMetrics(username, category string, metrics []models.ExtractedMetric, sourceFile string) ([]*models.Record, error) {
	records := buildRecords(username, category, metrics, sourceFile)
	if err := d.AppendRecords(records); err != nil {
		return nil, err
	}
	return records, nil
}

// AppendRecords inserts records in one transaction; either all land or none.
func (d *DB) AppendRecords(records []*models.Record) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`INSERT INTO health_metrics (` + recordColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		_, err := stmt.Exec(
			r.ID.String(),
			r.Username,
			r.Category,
			string(r.MetricName),
			r.Value,
			r.Date.Format(models.DateLayout),
			r.SourceFile,
			formatTimestamp(r.CreatedAt),
		)
		if err != nil {
			return fmt.Errorf("insert metric record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit metric records: %w", err)
	}
	return nil
}

// QueryTrend returns (date, value) pairs ascending by date. Same-day values
// keep insertion order.
func (d *DB) QueryTrend(username string, name models.MetricName) ([]models.TrendPoint, error) {
	rows, err := d.db.Query(`
		SELECT date, metric_value
		FROM health_metrics
		WHERE username = ? AND metric_name = ?
		ORDER BY date ASC, created_at ASC, rowid ASC
	`, username, string(name))
	if err != nil {
		return nil, fmt.Errorf("query trend: %w", err)
	}
	defer rows.Close()

	points := []models.TrendPoint{}
	for rows.Next() {
		var date string
		var p models.TrendPoint
		if err := rows.Scan(&date, &p.Value); err != nil {
			return nil, fmt.Errorf("scan trend point: %w", err)
		}
		p.Date, _ = models.ParseDay(date)
		points = append(points, p)
	}
	return points, rows.Err()
}

// QueryLatest returns the newest value for a metric.
func (d *DB) QueryLatest(username string, name models.MetricName) (*models.TrendPoint, error) {
	var date string
	var p models.TrendPoint

	err := d.db.QueryRow(`
		SELECT date, metric_value
		FROM health_metrics
		WHERE username = ? AND metric_name = ?
		ORDER BY date DESC, created_at DESC, rowid DESC
		LIMIT 1
	`, username, string(name)).Scan(&date, &p.Value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("no %s values for %s: %w", name, username, ErrNotFound)
		}
		return nil, fmt.Errorf("query latest: %w", err)
	}

	p.Date, _ = models.ParseDay(date)
	return &p, nil
}

// ListRecords returns records matching filter, newest first.
func (d *DB) ListRecords(filter models.RecordFilter, limit int) ([]*models.Record, error) {
	var where []string
	var args []interface{}

	if filter.Username != "" {
		where = append(where, "username = ?")
		args = append(args, filter.Username)
	}
	if filter.Category != "" {
		where = append(where, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.MetricName != "" {
		where = append(where, "metric_name = ?")
		args = append(args, string(filter.MetricName))
	}

	query := `SELECT ` + recordColumns + ` FROM health_metrics`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY date DESC, created_at DESC, rowid DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// scanRecords scans multiple rows into a slice of Records.
func scanRecords(rows *sql.Rows) ([]*models.Record, error) {
	records := []*models.Record{}

	for rows.Next() {
		var r models.Record
		var idStr, name, date, createdAt string

		err := rows.Scan(&idStr, &r.Username, &r.Category, &name, &r.Value, &date, &r.SourceFile, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}

		r.ID, _ = uuid.Parse(idStr)
		r.MetricName = models.MetricName(name)
		r.Date, _ = models.ParseDay(date)
		r.CreatedAt = parseTimestamp(createdAt)

		records = append(records, &r)
	}

	return records, rows.Err()
}
