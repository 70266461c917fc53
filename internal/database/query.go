package database

import "time"

const recordColumns = `id, timestamp, action, path, file_name, size, manifest_path, dest_dir, error_message, created_at`

// GetRecentRemovals returns the N most recent removal events
func (d *RemovalDB) GetRecentRemovals(limit int) ([]RemovalRecord, error) {
	query := `
	SELECT ` + recordColumns + `
	FROM removals
	ORDER BY timestamp DESC
	LIMIT ?
	`

	return d.queryRemovals(query, limit)
}

// GetRemovalsByAction returns records filtered by action type
func (d *RemovalDB) GetRemovalsByAction(action string) ([]RemovalRecord, error) {
	query := `
	SELECT ` + recordColumns + `
	FROM removals
	WHERE action = ?
	ORDER BY timestamp DESC
	`

	return d.queryRemovals(query, action)
}

// GetRemovalsByPath returns records matching a path pattern
func (d *RemovalDB) GetRemovalsByPath(pathPattern string) ([]RemovalRecord, error) {
	query := `
	SELECT ` + recordColumns + `
	FROM removals
	WHERE path LIKE ?
	ORDER BY timestamp DESC
	`

	return d.queryRemovals(query, pathPattern)
}

// GetLargestRemovals returns the N largest removed files by size
func (d *RemovalDB) GetLargestRemovals(limit int) ([]RemovalRecord, error) {
	query := `
	SELECT ` + recordColumns + `
	FROM removals
	WHERE action = 'REMOVE'
	ORDER BY size DESC
	LIMIT ?
	`

	return d.queryRemovals(query, limit)
}

// GetRemovalStats aggregates history over the last N days
func (d *RemovalDB) GetRemovalStats(days int) (*RemovalStats, error) {
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -days)

	stats := &RemovalStats{
		StartDate: start,
		EndDate:   end,
		ByAction:  make(map[string]int),
	}

	query := `
	SELECT action, COUNT(*), COALESCE(SUM(size), 0)
	FROM removals
	WHERE timestamp BETWEEN ? AND ?
	GROUP BY action
	`

	rows, err := d.db.Query(query, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var action string
		var count int
		var bytes int64
		if err := rows.Scan(&action, &count, &bytes); err != nil {
			return nil, err
		}
		stats.ByAction[action] = count
		switch action {
		case ActionRemove:
			stats.TotalRemoved += int64(count)
			stats.TotalBytesFreed += bytes
		case ActionSkipMissing:
			stats.TotalSkipped += int64(count)
		case ActionError:
			stats.TotalErrors += int64(count)
		}
	}

	return stats, rows.Err()
}

func (d *RemovalDB) queryRemovals(query string, args ...interface{}) ([]RemovalRecord, error) {
	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []RemovalRecord
	for rows.Next() {
		var r RemovalRecord
		if err := rows.Scan(
			&r.ID,
			&r.Timestamp,
			&r.Action,
			&r.Path,
			&r.FileName,
			&r.Size,
			&r.ManifestPath,
			&r.DestDir,
			&r.ErrorMessage,
			&r.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	return records, rows.Err()
}
