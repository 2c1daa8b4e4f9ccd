package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const schemaName = "caldora-share"

// migrations[i] upgrades the schema from version i to i+1.
var migrations = [][]string{
	{
		`CREATE TABLE IF NOT EXISTS principals (
			id TEXT PRIMARY KEY,
			uri TEXT NOT NULL UNIQUE,
			email TEXT UNIQUE,
			displayname TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS calendars (
			id TEXT PRIMARY KEY,
			principaluri TEXT NOT NULL,
			uri TEXT NOT NULL,
			displayname TEXT,
			description TEXT,
			calendarcolor TEXT,
			timezone TEXT,
			calendarorder INTEGER NOT NULL DEFAULT 0,
			components TEXT,
			transparent INTEGER NOT NULL DEFAULT 0,
			synctoken INTEGER NOT NULL DEFAULT 0,
			UNIQUE (principaluri, uri)
		)`,
		`CREATE TABLE IF NOT EXISTS calendarshares (
			calendarid TEXT NOT NULL REFERENCES calendars (id) ON DELETE CASCADE,
			member TEXT NOT NULL REFERENCES principals (id) ON DELETE CASCADE,
			status INTEGER NOT NULL,
			readonly INTEGER NOT NULL DEFAULT 0,
			summary TEXT NULL,
			commonname TEXT NULL,
			UNIQUE (calendarid, member)
		)`,
		`CREATE TABLE IF NOT EXISTS notifications (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			principaluri TEXT NOT NULL,
			notification TEXT NOT NULL,
			dtstamp INTEGER NOT NULL,
			id TEXT NOT NULL,
			etag TEXT,
			href TEXT,
			type INTEGER,
			readonly INTEGER,
			hosturl TEXT,
			organizer TEXT,
			commonname TEXT,
			firstname TEXT,
			lastname TEXT,
			summary TEXT,
			inreplyto TEXT,
			description TEXT,
			priority INTEGER
		)`,
	},
	{
		`CREATE TABLE IF NOT EXISTS calendarpublications (
			calendarid TEXT PRIMARY KEY REFERENCES calendars (id) ON DELETE CASCADE,
			url TEXT NOT NULL UNIQUE,
			created INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS calendarshares_member ON calendarshares (member, status)`,
		`CREATE INDEX IF NOT EXISTS notifications_principal ON notifications (principaluri, dtstamp, seq)`,
	},
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS db_version (
		name TEXT PRIMARY KEY,
		version INTEGER
	)`)
	if err != nil {
		return fmt.Errorf("error creating db_version table: %w", err)
	}

	version, err := schemaVersion(ctx, db)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err = db.ExecContext(ctx, `INSERT INTO db_version (name, version) VALUES (?, 0)`, schemaName); err != nil {
			return fmt.Errorf("error initializing db_version table: %w", err)
		}
		version = 0
	} else if err != nil {
		return fmt.Errorf("error reading schema version: %w", err)
	}

	for v := version; v < len(migrations); v++ {
		if err := applyMigration(ctx, db, v); err != nil {
			return fmt.Errorf("error migrating schema to version %d: %w", v+1, err)
		}
	}
	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, from int) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range migrations[from] {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE db_version SET version = ? WHERE name = ?`, from+1, schemaName); err != nil {
		return err
	}
	return tx.Commit()
}

func schemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var version int
	err := db.QueryRowContext(ctx, `SELECT version FROM db_version WHERE name = ?`, schemaName).Scan(&version)
	return version, err
}
