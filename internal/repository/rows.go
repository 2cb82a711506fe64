package repository

import (
	"database/sql"
	"fmt"

	"itumy-key-api/internal/model"
)

// scanUserKeyRows scans a users-left-join-api_keys result set. Key columns
// are nullable: a user without a key yields nil key fields. The status
// label is derived at the service layer, not here.
func scanUserKeyRows(rows *sql.Rows) ([]model.UserWithKey, error) {
	var out []model.UserWithKey
	for rows.Next() {
		var (
			row       model.UserWithKey
			lastLogin sql.NullTime
			apiKey    sql.NullString
			outOfDate sql.NullTime
			isActive  sql.NullBool
		)
		if err := rows.Scan(
			&row.UserID,
			&row.FirstName,
			&row.LastName,
			&row.Email,
			&lastLogin,
			&apiKey,
			&outOfDate,
			&isActive,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user row: %w", err)
		}

		if lastLogin.Valid {
			t := lastLogin.Time
			row.LastLogin = &t
		}
		if apiKey.Valid {
			k := apiKey.String
			row.APIKey = &k
		}
		if outOfDate.Valid {
			t := outOfDate.Time
			row.OutOfDate = &t
		}
		row.IsActive = isActive.Valid && isActive.Bool

		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read user rows: %w", err)
	}
	return out, nil
}
