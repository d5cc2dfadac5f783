package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/cardfill/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/cardfill/internal/core/domain"
	"github.com/custodia-labs/cardfill/internal/core/ports/driven"
)

// Store is a SQLite database that provides the catalog and project ports
// through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// Catalog is a bulk snapshot of sources, cards and DFC pairs.
type Catalog struct {
	Sources  []domain.SourceDocument `json:"sources"`
	Cards    []domain.CardDocument   `json:"cards"`
	DFCPairs domain.DFCPairs         `json:"dfc_pairs"`
}

// NewStore creates a new SQLite store in the specified data directory.
// If dataDir is empty, defaults to ~/.cardfill/data/catalog.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".cardfill", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "catalog.db")

	// Pragmas go in the DSN so every pooled connection gets them.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// SourceRegistry returns a SourceRegistry backed by this store.
func (s *Store) SourceRegistry() driven.SourceRegistry {
	return &sourceRegistry{store: s}
}

// SearchBackend returns a SearchBackend backed by this store.
func (s *Store) SearchBackend() driven.SearchBackend {
	return &searchBackend{store: s}
}

// DFCSource returns a DFCSource backed by this store.
func (s *Store) DFCSource() driven.DFCSource {
	return &dfcSource{store: s}
}

// CardStore returns a CardStore backed by this store.
func (s *Store) CardStore() driven.CardStore {
	return &cardStore{store: s}
}

// ProjectStore returns a ProjectStore backed by this store.
func (s *Store) ProjectStore() driven.ProjectStore {
	return &projectStore{store: s}
}

// ImportCatalog replaces the sources and DFC pairs and upserts the cards,
// all in one transaction. Cards of sources no longer listed are removed.
func (s *Store) ImportCatalog(ctx context.Context, catalog *Catalog) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	keys := make([]string, 0, len(catalog.Sources))
	for i, src := range catalog.Sources {
		if src.Key == "" {
			return fmt.Errorf("%w: source %d has no key", domain.ErrValidation, i)
		}
		if !src.Type.IsValid() {
			return fmt.Errorf("%w: source %q has unknown type %q", domain.ErrValidation, src.Key, src.Type)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO sources (key, identifier, name, source_type, external_link, description, position)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET
				identifier = excluded.identifier,
				name = excluded.name,
				source_type = excluded.source_type,
				external_link = excluded.external_link,
				description = excluded.description,
				position = excluded.position
		`, src.Key, src.Identifier, src.Name, string(src.Type), src.ExternalLink, src.Description, i); err != nil {
			return fmt.Errorf("saving source %s: %w", src.Key, err)
		}
		keys = append(keys, src.Key)
	}

	if err := deleteSourcesExcept(ctx, tx, keys); err != nil {
		return err
	}
	if err := saveCards(ctx, tx, catalog.Cards); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM dfc_pairs"); err != nil {
		return fmt.Errorf("clearing DFC pairs: %w", err)
	}
	for front, back := range catalog.DFCPairs {
		if _, err := tx.ExecContext(ctx, "INSERT INTO dfc_pairs (front, back) VALUES (?, ?)", front, back); err != nil {
			return fmt.Errorf("saving DFC pair %q: %w", front, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing import: %w", err)
	}
	return nil
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Source Registry ====================

// sourceRegistry implements driven.SourceRegistry.
type sourceRegistry struct {
	store *Store
}

var _ driven.SourceRegistry = (*sourceRegistry)(nil)

// ListSources returns every source in registry order.
func (s *sourceRegistry) ListSources(ctx context.Context) ([]domain.SourceDocument, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT key, identifier, name, source_type, external_link, description
		FROM sources ORDER BY position, key
	`)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	defer rows.Close()

	var sources []domain.SourceDocument
	for rows.Next() {
		var src domain.SourceDocument
		var sourceType string
		if err := rows.Scan(&src.Key, &src.Identifier, &src.Name, &sourceType,
			&src.ExternalLink, &src.Description); err != nil {
			return nil, fmt.Errorf("scanning source: %w", err)
		}
		src.Type = domain.SourceType(sourceType)
		sources = append(sources, src)
	}
	return sources, rows.Err()
}

// ==================== Search Backend ====================

// searchBackend implements driven.SearchBackend.
type searchBackend struct {
	store *Store
}

var _ driven.SearchBackend = (*searchBackend)(nil)

// Search returns one source's cards of the requested type whose name matches.
// Exact matching is an indexed lookup on the searchable name; fuzzy matching
// scans the source's cards of that type.
func (s *searchBackend) Search(ctx context.Context, req driven.SearchRequest) ([]domain.CardDocument, error) {
	query := domain.SearchableName(req.Query)

	var rows *sql.Rows
	var err error
	if req.FuzzySearch {
		rows, err = s.store.db.QueryContext(ctx, `
			SELECT `+cardColumns+` FROM cards
			WHERE source_key = ? AND card_type = ?
			ORDER BY priority, identifier
		`, req.Source, string(req.CardType))
	} else {
		rows, err = s.store.db.QueryContext(ctx, `
			SELECT `+cardColumns+` FROM cards
			WHERE source_key = ? AND card_type = ? AND searchable_name = ?
			ORDER BY priority, identifier
		`, req.Source, string(req.CardType), query)
	}
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", req.Source, err)
	}
	defer rows.Close()

	var result []domain.CardDocument
	for rows.Next() {
		card, searchable, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		if req.FuzzySearch && !fuzzy.MatchNormalizedFold(query, searchable) {
			continue
		}
		result = append(result, *card)
	}
	return result, rows.Err()
}

// ==================== DFC Source ====================

// dfcSource implements driven.DFCSource.
type dfcSource struct {
	store *Store
}

var _ driven.DFCSource = (*dfcSource)(nil)

// DFCPairs returns the full pairing table.
func (s *dfcSource) DFCPairs(ctx context.Context) (domain.DFCPairs, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT front, back FROM dfc_pairs")
	if err != nil {
		return nil, fmt.Errorf("listing DFC pairs: %w", err)
	}
	defer rows.Close()

	pairs := make(domain.DFCPairs)
	for rows.Next() {
		var front, back string
		if err := rows.Scan(&front, &back); err != nil {
			return nil, fmt.Errorf("scanning DFC pair: %w", err)
		}
		pairs[front] = back
	}
	return pairs, rows.Err()
}

// ==================== Card Store ====================

// cardStore implements driven.CardStore.
type cardStore struct {
	store *Store
}

var _ driven.CardStore = (*cardStore)(nil)

// SaveCards stores or replaces documents by identifier.
// Every document's source must already be registered.
func (s *cardStore) SaveCards(ctx context.Context, cards []domain.CardDocument) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning card save: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := saveCards(ctx, tx, cards); err != nil {
		return err
	}
	return tx.Commit()
}

// GetCard retrieves a document by identifier.
func (s *cardStore) GetCard(ctx context.Context, identifier string) (*domain.CardDocument, error) {
	rows, err := s.store.db.QueryContext(ctx, "SELECT "+cardColumns+" FROM cards WHERE identifier = ?", identifier)
	if err != nil {
		return nil, fmt.Errorf("getting card: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, domain.ErrNotFound
	}
	card, _, err := scanCard(rows)
	return card, err
}

// GetCards retrieves documents in identifier order, skipping unknown ones.
func (s *cardStore) GetCards(ctx context.Context, identifiers []string) ([]domain.CardDocument, error) {
	result := make([]domain.CardDocument, 0, len(identifiers))
	for _, id := range identifiers {
		card, err := s.GetCard(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, *card)
	}
	return result, nil
}

// ==================== Project Store ====================

// projectStore implements driven.ProjectStore.
type projectStore struct {
	store *Store
}

var _ driven.ProjectStore = (*projectStore)(nil)

// Save stores or updates a project.
func (s *projectStore) Save(ctx context.Context, project *domain.Project) error {
	if project == nil || project.ID == "" {
		return domain.ErrValidation
	}
	membersJSON, err := json.Marshal(project.Members)
	if err != nil {
		return fmt.Errorf("marshalling members: %w", err)
	}

	now := time.Now().UTC()
	createdAt := project.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	updatedAt := project.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, cardback, members, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			cardback = excluded.cardback,
			members = excluded.members,
			updated_at = excluded.updated_at
	`, project.ID, project.Name, project.Cardback, string(membersJSON), createdAt.UTC(), updatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving project: %w", err)
	}
	return nil
}

// Get retrieves a project by ID.
func (s *projectStore) Get(ctx context.Context, id string) (*domain.Project, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, cardback, members, created_at, updated_at
		FROM projects WHERE id = ?
	`, id)
	return scanProject(row)
}

// Delete removes a project.
func (s *projectStore) Delete(ctx context.Context, id string) error {
	result, err := s.store.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List returns all projects, most recently updated first.
func (s *projectStore) List(ctx context.Context) ([]domain.Project, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, cardback, members, created_at, updated_at
		FROM projects ORDER BY updated_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	return projects, rows.Err()
}

// ==================== Helpers ====================

const cardColumns = `identifier, card_type, name, searchable_name, priority, source_key, source_name,
	source_type, dpi, size, extension, language, tags, date_created, date_modified,
	download_link, small_thumbnail_url, medium_thumbnail_url`

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func saveCards(ctx context.Context, tx *sql.Tx, cards []domain.CardDocument) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cards (`+cardColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(identifier) DO UPDATE SET
			card_type = excluded.card_type,
			name = excluded.name,
			searchable_name = excluded.searchable_name,
			priority = excluded.priority,
			source_key = excluded.source_key,
			source_name = excluded.source_name,
			source_type = excluded.source_type,
			dpi = excluded.dpi,
			size = excluded.size,
			extension = excluded.extension,
			language = excluded.language,
			tags = excluded.tags,
			date_created = excluded.date_created,
			date_modified = excluded.date_modified,
			download_link = excluded.download_link,
			small_thumbnail_url = excluded.small_thumbnail_url,
			medium_thumbnail_url = excluded.medium_thumbnail_url
	`)
	if err != nil {
		return fmt.Errorf("preparing card insert: %w", err)
	}
	defer stmt.Close()

	for i := range cards {
		c := &cards[i]
		if !c.CardType.IsValid() {
			return fmt.Errorf("%w: card %s has unknown type %q", domain.ErrValidation, c.Identifier, c.CardType)
		}
		tags := c.Tags
		if tags == nil {
			tags = []string{}
		}
		tagsJSON, err := json.Marshal(tags)
		if err != nil {
			return fmt.Errorf("marshalling tags: %w", err)
		}
		if _, err := stmt.ExecContext(ctx,
			c.Identifier, string(c.CardType), c.Name, domain.SearchableName(c.Name), c.Priority,
			c.Source, c.SourceName, string(c.SourceType), c.DPI, c.Size, c.Extension, c.Language,
			string(tagsJSON), nullTime(c.DateCreated), nullTime(c.DateModified),
			c.DownloadLink, c.SmallThumbnailURL, c.MediumThumbnailURL,
		); err != nil {
			return fmt.Errorf("saving card %s: %w", c.Identifier, err)
		}
	}
	return nil
}

func deleteSourcesExcept(ctx context.Context, tx *sql.Tx, keys []string) error {
	if len(keys) == 0 {
		_, err := tx.ExecContext(ctx, "DELETE FROM sources")
		return err
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]any, len(keys))
	for i, k := range keys {
		args[i] = k
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM sources WHERE key NOT IN ("+placeholders+")", args...); err != nil {
		return fmt.Errorf("removing stale sources: %w", err)
	}
	return nil
}

func scanCard(row scanner) (*domain.CardDocument, string, error) {
	var card domain.CardDocument
	var cardType, sourceType, tagsJSON, searchable string
	var created, modified sql.NullTime
	if err := row.Scan(&card.Identifier, &cardType, &card.Name, &searchable, &card.Priority,
		&card.Source, &card.SourceName, &sourceType, &card.DPI, &card.Size, &card.Extension,
		&card.Language, &tagsJSON, &created, &modified,
		&card.DownloadLink, &card.SmallThumbnailURL, &card.MediumThumbnailURL); err != nil {
		return nil, "", fmt.Errorf("scanning card: %w", err)
	}
	card.CardType = domain.CardType(cardType)
	card.SourceType = domain.SourceType(sourceType)
	if err := json.Unmarshal([]byte(tagsJSON), &card.Tags); err != nil {
		return nil, "", fmt.Errorf("unmarshalling tags: %w", err)
	}
	if len(card.Tags) == 0 {
		card.Tags = nil
	}
	if created.Valid {
		card.DateCreated = created.Time
	}
	if modified.Valid {
		card.DateModified = modified.Time
	}
	return &card, searchable, nil
}

func scanProject(row scanner) (*domain.Project, error) {
	var project domain.Project
	var membersJSON string
	var createdAt, updatedAt sql.NullTime
	if err := row.Scan(&project.ID, &project.Name, &project.Cardback, &membersJSON,
		&createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	if err := json.Unmarshal([]byte(membersJSON), &project.Members); err != nil {
		return nil, fmt.Errorf("unmarshalling members: %w", err)
	}
	if createdAt.Valid {
		project.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		project.UpdatedAt = updatedAt.Time
	}
	return &project, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
