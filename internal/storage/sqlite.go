package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Storage mirrors the final result set into SQLite for ad-hoc querying.
// The JSON checkpoint stays the source of truth for resume.
type Storage struct {
	db *sql.DB
}

// NewStorage creates a new Storage instance, opening/creating the DB and initializing schema
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	storage := &Storage{db: db}

	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// initSchema creates tables and indices if they don't exist
func (s *Storage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		url TEXT PRIMARY KEY,
		domain TEXT NOT NULL,
		path TEXT NOT NULL,
		depth INTEGER NOT NULL DEFAULT 0,
		discovered_from TEXT,
		title TEXT,
		description TEXT,
		word_count INTEGER DEFAULT 0,
		unique_words INTEGER DEFAULT 0,
		text_length INTEGER DEFAULT 0,
		incoming INTEGER DEFAULT 0,
		outgoing INTEGER DEFAULT 0,
		record TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS links (
		link_id INTEGER PRIMARY KEY AUTOINCREMENT,
		from_url TEXT NOT NULL,
		to_url TEXT NOT NULL,
		weight INTEGER DEFAULT 1,
		UNIQUE(from_url, to_url)
	);

	CREATE INDEX IF NOT EXISTS idx_pages_domain ON pages(domain);
	CREATE INDEX IF NOT EXISTS idx_links_from ON links(from_url);
	CREATE INDEX IF NOT EXISTS idx_links_to ON links(to_url);
	`

	_, err := s.db.Exec(schema)
	return err
}

// execer is satisfied by both *sql.DB and *sql.Tx
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// UpsertPage inserts a page or replaces the stored row for the same URL
func (s *Storage) UpsertPage(page *PageResult) error {
	return upsertPage(s.db, page)
}

func upsertPage(db execer, page *PageResult) error {
	record, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to encode page %s: %w", page.URL, err)
	}

	_, err = db.Exec(`
		INSERT INTO pages (url, domain, path, depth, discovered_from, title, description,
			word_count, unique_words, text_length, incoming, outgoing, record, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(url) DO UPDATE SET
			domain = EXCLUDED.domain,
			path = EXCLUDED.path,
			depth = EXCLUDED.depth,
			discovered_from = EXCLUDED.discovered_from,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			word_count = EXCLUDED.word_count,
			unique_words = EXCLUDED.unique_words,
			text_length = EXCLUDED.text_length,
			incoming = EXCLUDED.incoming,
			outgoing = EXCLUDED.outgoing,
			record = EXCLUDED.record,
			updated_at = CURRENT_TIMESTAMP
	`, page.URL, page.Domain, page.Path, page.Crawl.Depth, page.Crawl.DiscoveredFrom,
		page.Content.Title, page.Content.Description,
		page.Signals.WordCount, page.Signals.UniqueWords, page.Signals.TextLength,
		page.Links.Incoming, page.Links.Outgoing, string(record))
	if err != nil {
		return fmt.Errorf("failed to upsert page %s: %w", page.URL, err)
	}
	return nil
}

// GetPage retrieves a page by URL, returns nil if not found
func (s *Storage) GetPage(url string) (*PageResult, error) {
	var record string
	err := s.db.QueryRow("SELECT record FROM pages WHERE url = ?", url).Scan(&record)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page: %w", err)
	}

	var page PageResult
	if err := json.Unmarshal([]byte(record), &page); err != nil {
		return nil, fmt.Errorf("failed to decode page %s: %w", url, err)
	}
	return &page, nil
}

// CountPages returns the number of stored pages
func (s *Storage) CountPages() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM pages").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count pages: %w", err)
	}
	return n, nil
}

// UpsertLink sets the weight of a directed link, inserting it if missing
func (s *Storage) UpsertLink(fromURL, toURL string, weight int) error {
	_, err := s.db.Exec(`
		INSERT INTO links (from_url, to_url, weight)
		VALUES (?, ?, ?)
		ON CONFLICT(from_url, to_url) DO UPDATE SET
			weight = EXCLUDED.weight
	`, fromURL, toURL, weight)

	if err != nil {
		return fmt.Errorf("failed to upsert link: %w", err)
	}
	return nil
}

// LinkWeight returns the stored weight of a link, 0 if absent
func (s *Storage) LinkWeight(fromURL, toURL string) (int, error) {
	var weight int
	err := s.db.QueryRow("SELECT weight FROM links WHERE from_url = ? AND to_url = ?", fromURL, toURL).Scan(&weight)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get link: %w", err)
	}
	return weight, nil
}

// WritePages upserts every page inside one transaction
func (s *Storage) WritePages(pages []PageResult) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for i := range pages {
		if err := upsertPage(tx, &pages[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pages: %w", err)
	}
	return nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}
