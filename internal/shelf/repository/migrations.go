package repository

import "github.com/trackshelf/trackshelf-backend/pkg/database"

// Migrations creates the shelf schema. Append only; applied versions are never edited.
var Migrations = []database.Migration{
	{
		Version: 1,
		Name:    "create_shelf_items",
		SQL: `
			CREATE TABLE IF NOT EXISTS shelf_items (
				owner_id      TEXT        NOT NULL,
				id            TEXT        NOT NULL,
				name          TEXT        NOT NULL CONSTRAINT shelf_items_name_check CHECK (btrim(name) <> ''),
				quantity      INTEGER     NOT NULL CONSTRAINT shelf_items_quantity_check CHECK (quantity >= 1),
				unit          TEXT        NOT NULL,
				category      TEXT        NOT NULL,
				acquired_date DATE        NOT NULL,
				expiry_date   DATE,
				image_url     TEXT        NOT NULL DEFAULT '',
				position      INTEGER     NOT NULL DEFAULT 0,
				created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				PRIMARY KEY (owner_id, id)
			);
			CREATE INDEX IF NOT EXISTS idx_shelf_items_owner_position ON shelf_items (owner_id, position);
			CREATE INDEX IF NOT EXISTS idx_shelf_items_expiry ON shelf_items (expiry_date) WHERE expiry_date IS NOT NULL;
		`,
	},
	{
		Version: 2,
		Name:    "create_user_settings",
		SQL: `
			CREATE TABLE IF NOT EXISTS user_settings (
				owner_id           TEXT        PRIMARY KEY,
				soon_days          INTEGER     NOT NULL CONSTRAINT user_settings_soon_days_check CHECK (soon_days BETWEEN 1 AND 30),
				expired_grace_days INTEGER     NOT NULL CONSTRAINT user_settings_grace_check CHECK (expired_grace_days >= 0 AND expired_grace_days < soon_days),
				updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
		`,
	},
	{
		Version: 3,
		Name:    "create_shopping_list",
		SQL: `
			CREATE TABLE IF NOT EXISTS shopping_groups (
				owner_id   TEXT    NOT NULL,
				id         TEXT    NOT NULL,
				name       TEXT    NOT NULL,
				sort_order INTEGER NOT NULL DEFAULT 0,
				PRIMARY KEY (owner_id, id)
			);
			CREATE TABLE IF NOT EXISTS shopping_items (
				owner_id   TEXT    NOT NULL,
				id         TEXT    NOT NULL,
				group_id   TEXT,
				name       TEXT    NOT NULL,
				amount     TEXT    NOT NULL DEFAULT '',
				done       BOOLEAN NOT NULL DEFAULT FALSE,
				sort_order INTEGER NOT NULL DEFAULT 0,
				PRIMARY KEY (owner_id, id),
				FOREIGN KEY (owner_id, group_id) REFERENCES shopping_groups (owner_id, id)
			);
		`,
	},
}
