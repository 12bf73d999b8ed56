package safari

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/agentic-research/tabdex/api"
	"github.com/agentic-research/tabdex/internal/logger"
	_ "modernc.org/sqlite"
)

// PersonalProfileName is the implicit profile owning root-level tab groups.
// It is always emitted first, even with zero groups.
const PersonalProfileName = "Personal"

const (
	rootGroupsQuery = `
	SELECT id, IFNULL(title, '')
	FROM bookmarks
	WHERE type = 1 AND parent = 0 AND subtype = 0 AND num_children > 0 AND hidden = 0
	ORDER BY id DESC`

	profileMarkersQuery = `
	SELECT id, IFNULL(title, '')
	FROM bookmarks
	WHERE parent = 0 AND subtype = 2 AND IFNULL(title, '') != ''
	ORDER BY id`

	subGroupsQuery = `
	SELECT id, IFNULL(title, '')
	FROM bookmarks
	WHERE parent = ? AND subtype = 0 AND num_children > 0 AND IFNULL(url, '') = ''
	ORDER BY id DESC`

	childrenQuery = `
	SELECT id, parent, type, subtype, IFNULL(title, ''), IFNULL(url, ''),
	       num_children, hidden, order_index
	FROM bookmarks
	WHERE parent = ?
	ORDER BY order_index ASC`
)

// Reader reconstructs profiles from a snapshot copy of the SafariTabs
// database. It opens its own handle; it never reads the live source.
type Reader struct {
	cachePath string
	log       logger.Logger
}

func NewReader(cachePath string, log logger.Logger) *Reader {
	return &Reader{cachePath: cachePath, log: log}
}

// Profiles reads the whole hierarchy. Index 0 is always "Personal",
// followed by one profile per marker row. Groups within a profile are in
// reverse creation order (id descending); tabs keep the user's arrangement
// (order_index ascending).
func (r *Reader) Profiles(ctx context.Context) ([]api.Profile, error) {
	if _, err := os.Stat(r.cachePath); err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", r.cachePath, err)
	}

	db, err := sql.Open("sqlite", r.cachePath)
	if err != nil {
		return nil, fmt.Errorf("open snapshot %s: %w", r.cachePath, err)
	}
	defer func() { _ = db.Close() }() // safe to ignore

	// Safety net for callers that skipped sync; the sync path has already
	// checkpointed in the normal flow, so a failure here is not fatal.
	if _, err := db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE);"); err != nil {
		r.log.Warn("checkpoint on read failed", logger.Error(err))
	}

	personal := api.Profile{Name: PersonalProfileName}
	personal.TabGroups, err = r.readGroups(ctx, db, rootGroupsQuery, nil)
	if err != nil {
		return nil, err
	}
	profiles := []api.Profile{personal}

	markers, err := r.readNamedRows(ctx, db, profileMarkersQuery)
	if err != nil {
		return nil, err
	}
	for _, marker := range markers {
		groups, err := r.readGroups(ctx, db, subGroupsQuery, []any{marker.id})
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, api.Profile{Name: marker.title, TabGroups: groups})
	}

	return profiles, nil
}

type namedRow struct {
	id    int64
	title string
}

// readGroups runs a group query and fills each group with its surviving
// tabs. Groups left with zero tabs after filtering are dropped: num_children
// counts all children, not just well-formed tabs.
func (r *Reader) readGroups(ctx context.Context, db *sql.DB, query string, args []any) ([]api.TabGroup, error) {
	rows, err := r.readNamedRowsArgs(ctx, db, query, args)
	if err != nil {
		return nil, err
	}

	var groups []api.TabGroup
	for _, g := range rows {
		tabs, err := r.readTabs(ctx, db, g.id)
		if err != nil {
			return nil, err
		}
		if len(tabs) == 0 {
			continue
		}
		name := g.title
		if name == "" {
			name = api.UntitledName
		}
		groups = append(groups, api.TabGroup{Name: name, Tabs: tabs})
	}
	return groups, nil
}

// readTabs scans a group's children in order_index order and keeps only rows
// Classify resolves as tabs.
func (r *Reader) readTabs(ctx context.Context, db *sql.DB, groupID int64) ([]api.Tab, error) {
	rows, err := db.QueryContext(ctx, childrenQuery, groupID)
	if err != nil {
		return nil, fmt.Errorf("query children of %d: %w", groupID, err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	var tabs []api.Tab
	for rows.Next() {
		var row Row
		if err := rows.Scan(&row.ID, &row.Parent, &row.Type, &row.Subtype,
			&row.Title, &row.URL, &row.NumChildren, &row.Hidden, &row.OrderIndex); err != nil {
			return nil, fmt.Errorf("scan child row: %w", err)
		}
		if Classify(row) != KindTab {
			continue
		}
		tabs = append(tabs, api.Tab{Title: row.Title, URL: row.URL})
	}
	return tabs, rows.Err()
}

func (r *Reader) readNamedRows(ctx context.Context, db *sql.DB, query string) ([]namedRow, error) {
	return r.readNamedRowsArgs(ctx, db, query, nil)
}

func (r *Reader) readNamedRowsArgs(ctx context.Context, db *sql.DB, query string, args []any) ([]namedRow, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bookmarks: %w", err)
	}
	defer func() { _ = rows.Close() }() // safe to ignore

	var out []namedRow
	for rows.Next() {
		var n namedRow
		if err := rows.Scan(&n.id, &n.title); err != nil {
			return nil, fmt.Errorf("scan bookmark row: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}
