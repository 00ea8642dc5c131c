package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a search id does not exist.
var ErrNotFound = errors.New("search not found")

// SQLiteDB implements the DB interface using SQLite.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (or creates) the database at path.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for better concurrency under the HTTP layer.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Migrate creates the schema.
func (s *SQLiteDB) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS searches (
			id TEXT PRIMARY KEY,
			method TEXT NOT NULL,
			version TEXT NOT NULL,
			pid INTEGER NOT NULL,
			gender_ratio INTEGER NOT NULL DEFAULT 0,
			seed_start INTEGER NOT NULL,
			seed_end INTEGER NOT NULL,
			lead_filter TEXT NOT NULL DEFAULT '',
			script TEXT NOT NULL DEFAULT '',
			hit_count INTEGER NOT NULL DEFAULT 0,
			total_evaluated INTEGER NOT NULL DEFAULT 0,
			hit_rate TEXT NOT NULL DEFAULT '0',
			timed_out INTEGER NOT NULL DEFAULT 0,
			engine_version TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS frames (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			search_id TEXT NOT NULL,
			origin_seed INTEGER NOT NULL,
			frame_seed INTEGER NOT NULL,
			esv INTEGER NOT NULL,
			lead TEXT NOT NULL,
			FOREIGN KEY (search_id) REFERENCES searches(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_frames_search_id ON frames(search_id)`,
		`CREATE INDEX IF NOT EXISTS idx_frames_origin ON frames(search_id, origin_seed)`,
		`CREATE INDEX IF NOT EXISTS idx_searches_created_at ON searches(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_searches_method ON searches(method)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// SaveSearch inserts a search record, assigning an id if absent.
func (s *SQLiteDB) SaveSearch(search *Search) error {
	if search.ID == "" {
		search.ID = uuid.New().String()
	}

	timedOut := 0
	if search.TimedOut {
		timedOut = 1
	}

	query := `INSERT INTO searches (
		id, method, version, pid, gender_ratio, seed_start, seed_end,
		lead_filter, script, hit_count, total_evaluated, hit_rate, timed_out,
		engine_version
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query,
		search.ID, search.Method, search.Version, int64(search.PID), search.GenderRatio,
		int64(search.SeedStart), int64(search.SeedEnd), search.LeadFilter, search.Script,
		search.HitCount, int64(search.TotalEvaluated), search.HitRate, timedOut,
		search.EngineVersion,
	)
	return err
}

// SaveFrames inserts the frames of one search in a single transaction.
func (s *SQLiteDB) SaveFrames(searchID string, frames []FrameRow) error {
	if len(frames) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO frames (search_id, origin_seed, frame_seed, esv, lead) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range frames {
		if _, err := stmt.Exec(searchID, int64(f.OriginSeed), int64(f.FrameSeed), int64(f.ESV), f.Lead); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetSearch loads one search by id.
func (s *SQLiteDB) GetSearch(id string) (*Search, error) {
	query := `SELECT id, method, version, pid, gender_ratio, seed_start, seed_end,
		lead_filter, script, hit_count, total_evaluated, hit_rate, timed_out,
		engine_version, created_at
		FROM searches WHERE id = ?`

	var search Search
	var pid, seedStart, seedEnd, totalEvaluated int64
	var timedOut int
	err := s.db.QueryRow(query, id).Scan(
		&search.ID, &search.Method, &search.Version, &pid, &search.GenderRatio,
		&seedStart, &seedEnd, &search.LeadFilter, &search.Script,
		&search.HitCount, &totalEvaluated, &search.HitRate, &timedOut,
		&search.EngineVersion, &search.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	search.PID = uint32(pid)
	search.SeedStart = uint32(seedStart)
	search.SeedEnd = uint32(seedEnd)
	search.TotalEvaluated = uint64(totalEvaluated)
	search.TimedOut = timedOut != 0
	return &search, nil
}

// ListSearches returns a page of searches, newest first.
func (s *SQLiteDB) ListSearches(query SearchQuery) (*SearchList, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.PerPage < 1 || query.PerPage > 200 {
		query.PerPage = 50
	}

	where := ""
	args := []any{}
	if query.Method != "" {
		where = " WHERE method = ?"
		args = append(args, query.Method)
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM searches"+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	offset := (query.Page - 1) * query.PerPage
	listArgs := append(args, query.PerPage, offset)
	rows, err := s.db.Query(
		`SELECT id, method, version, pid, gender_ratio, seed_start, seed_end,
			lead_filter, script, hit_count, total_evaluated, hit_rate, timed_out,
			engine_version, created_at
		FROM searches`+where+` ORDER BY created_at DESC, id LIMIT ? OFFSET ?`, listArgs...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	searches := []Search{}
	for rows.Next() {
		var search Search
		var pid, seedStart, seedEnd, totalEvaluated int64
		var timedOut int
		if err := rows.Scan(
			&search.ID, &search.Method, &search.Version, &pid, &search.GenderRatio,
			&seedStart, &seedEnd, &search.LeadFilter, &search.Script,
			&search.HitCount, &totalEvaluated, &search.HitRate, &timedOut,
			&search.EngineVersion, &search.CreatedAt,
		); err != nil {
			return nil, err
		}
		search.PID = uint32(pid)
		search.SeedStart = uint32(seedStart)
		search.SeedEnd = uint32(seedEnd)
		search.TotalEvaluated = uint64(totalEvaluated)
		search.TimedOut = timedOut != 0
		searches = append(searches, search)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &SearchList{
		Searches:   searches,
		TotalCount: total,
		Page:       query.Page,
		PerPage:    query.PerPage,
		TotalPages: (total + query.PerPage - 1) / query.PerPage,
	}, nil
}

// GetFrames returns one page of a search's frames in stored order.
func (s *SQLiteDB) GetFrames(searchID string, page, perPage int) (*FramePage, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 1000 {
		perPage = 100
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM frames WHERE search_id = ?", searchID).Scan(&total); err != nil {
		return nil, err
	}

	offset := (page - 1) * perPage
	rows, err := s.db.Query(
		`SELECT id, search_id, origin_seed, frame_seed, esv, lead
		FROM frames WHERE search_id = ? ORDER BY id LIMIT ? OFFSET ?`,
		searchID, perPage, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	frames := []FrameRow{}
	for rows.Next() {
		var f FrameRow
		var origin, frameSeed, esv int64
		if err := rows.Scan(&f.ID, &f.SearchID, &origin, &frameSeed, &esv, &f.Lead); err != nil {
			return nil, err
		}
		f.OriginSeed = uint32(origin)
		f.FrameSeed = uint32(frameSeed)
		f.ESV = uint16(esv)
		frames = append(frames, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &FramePage{
		Frames:     frames,
		TotalCount: total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: (total + perPage - 1) / perPage,
	}, nil
}
