package export

import (
	"database/sql"
	"fmt"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/vanderheijden86/cooc/pkg/model"
	"github.com/vanderheijden86/cooc/pkg/version"

	_ "modernc.org/sqlite"
)

// SchemaVersion is bumped whenever the snapshot tables change.
const SchemaVersion = 1

func saveSQLite(opts SnapshotOptions) error {
	if err := os.Remove(opts.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove existing database: %w", err)
	}

	db, err := sql.Open("sqlite", opts.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := createSchema(db); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if err := insertNodes(db, opts); err != nil {
		return fmt.Errorf("insert nodes: %w", err)
	}
	if err := insertLinks(db, opts); err != nil {
		return fmt.Errorf("insert links: %w", err)
	}
	if err := insertMeta(db, opts); err != nil {
		return fmt.Errorf("insert meta: %w", err)
	}
	return db.Close()
}

func createSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS nodes (
			id TEXT NOT NULL,
			label TEXT NOT NULL,
			bw_count INTEGER,
			bw_diff INTEGER,
			bw_which TEXT,
			b_count INTEGER,
			w_count INTEGER,
			louvain INTEGER,
			fstgrdy INTEGER,
			x REAL,
			y REAL,
			r REAL,
			fill TEXT,
			opacity REAL,
			label_visible INTEGER NOT NULL DEFAULT 0,
			pinned INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS links (
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			x1 REAL,
			y1 REAL,
			x2 REAL,
			y2 REAL,
			opacity REAL
		)`,
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_nodes_id ON nodes(id)`,
		`CREATE INDEX IF NOT EXISTS idx_links_source ON links(source)`,
		`CREATE INDEX IF NOT EXISTS idx_links_target ON links(target)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func insertNodes(db *sql.DB, opts SnapshotOptions) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO nodes (id, label, bw_count, bw_diff, bw_which, b_count, w_count, louvain, fstgrdy,
			x, y, r, fill, opacity, label_visible, pinned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, v := range opts.Scene.Nodes {
		n := v.Node()
		if n == nil {
			n = &model.Node{ID: v.ID, Label: v.Label}
		}
		_, err := stmt.Exec(
			v.ID,
			v.Label,
			nullCount(n.BWCount),
			nullCount(n.BWDiff),
			n.BWWhich,
			nullCount(n.BCount),
			nullCount(n.WCount),
			nullCount(n.Louvain),
			nullCount(n.Fstgrdy),
			nullFloat(v.X),
			nullFloat(v.Y),
			nullFloat(v.R),
			v.Fill,
			nullFloat(v.Opacity),
			v.LabelVisible,
			n.Pinned(),
		)
		if err != nil {
			return fmt.Errorf("insert node %s: %w", v.ID, err)
		}
	}
	return tx.Commit()
}

func insertLinks(db *sql.DB, opts SnapshotOptions) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO links (source, target, x1, y1, x2, y2, opacity) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, l := range opts.Scene.Links {
		_, err := stmt.Exec(l.SourceID, l.TargetID,
			nullFloat(l.X1), nullFloat(l.Y1), nullFloat(l.X2), nullFloat(l.Y2), nullFloat(l.Opacity))
		if err != nil {
			return fmt.Errorf("insert link %s-%s: %w", l.SourceID, l.TargetID, err)
		}
	}
	return tx.Commit()
}

func insertMeta(db *sql.DB, opts SnapshotOptions) error {
	meta := map[string]string{
		"version":        version.Version,
		"schema_version": strconv.Itoa(SchemaVersion),
		"generated_at":   time.Now().UTC().Format(time.RFC3339),
		"node_count":     strconv.Itoa(len(opts.Scene.Nodes)),
		"link_count":     strconv.Itoa(len(opts.Scene.Links)),
		"width":          strconv.FormatFloat(opts.Scene.Width, 'g', -1, 64),
		"height":         strconv.FormatFloat(opts.Scene.Height, 'g', -1, 64),
		"transform":      opts.Transform.Attr(),
	}
	if opts.Title != "" {
		meta["title"] = opts.Title
	}
	if opts.Hovered != "" {
		meta["hovered"] = opts.Hovered
	}
	if opts.Stats != nil {
		meta["components"] = strconv.Itoa(opts.Stats.Components)
	}

	for key, value := range meta {
		if _, err := db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value); err != nil {
			return fmt.Errorf("insert meta %s: %w", key, err)
		}
	}
	return nil
}

func nullCount(c model.Count) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(c.Value), Valid: c.Valid}
}

func nullFloat(f float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: f, Valid: !math.IsNaN(f) && !math.IsInf(f, 0)}
}
