// Package database provides the storage layer for saved pages.
//
// It implements the Store interface using SQLite. Projects and templates
// keep their component forest as a JSON text column; the database never
// looks inside it. The DBService struct is the primary entry point for all
// database operations.
package database

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/Mr-Dark-debug/lowcode/pkg/timeutil"
)

//go:embed schema.sql seed.json
var schemaFS embed.FS

// ErrNotFound is returned when a project or template id has no row.
var ErrNotFound = errors.New("database: record not found")

// Store defines the interface for page persistence.
// This abstraction allows for mocking in tests and potential
// future backends beyond SQLite.
type Store interface {
	// ListProjects returns every project, most recently updated first.
	ListProjects(ctx context.Context) ([]*Project, error)
	// GetProject returns one project.
	GetProject(ctx context.Context, id int64) (*Project, error)
	// CreateProject inserts a project and returns the stored row.
	CreateProject(ctx context.Context, p NewProject) (*Project, error)
	// UpdateProject applies a patch and bumps updated_at.
	UpdateProject(ctx context.Context, id int64, patch ProjectPatch) (*Project, error)
	// DeleteProject removes a project.
	DeleteProject(ctx context.Context, id int64) error
	// SearchProjects matches name and description case-insensitively.
	SearchProjects(ctx context.Context, query string, limit int) ([]*Project, error)

	ListTemplates(ctx context.Context) ([]*Template, error)
	GetTemplate(ctx context.Context, id int64) (*Template, error)
	CreateTemplate(ctx context.Context, t NewTemplate) (*Template, error)

	// Stats returns row counts for the health endpoint.
	Stats(ctx context.Context) (*Stats, error)

	// Close gracefully shuts down the database connection.
	Close() error
}

// ============================================================
// Domain Models
// ============================================================

// Project is a saved page.
type Project struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Components  json.RawMessage `json:"components"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewProject holds the fields of a project to create.
type NewProject struct {
	Name        string
	Description string
	Components  json.RawMessage
}

// ProjectPatch is a partial project update. Nil fields keep their value.
type ProjectPatch struct {
	Name        *string
	Description *string
	Components  json.RawMessage
}

// Template is a reusable starting page.
type Template struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Components  json.RawMessage `json:"components"`
	Thumbnail   string          `json:"thumbnail"`
	CreatedAt   time.Time       `json:"created_at"`
}

// NewTemplate holds the fields of a template to create.
type NewTemplate struct {
	Name        string
	Description string
	Components  json.RawMessage
	Thumbnail   string
}

// Stats holds row counts.
type Stats struct {
	Projects      int        `json:"projects"`
	Templates     int        `json:"templates"`
	LastUpdatedAt *time.Time `json:"last_updated_at,omitempty"`
}

// ============================================================
// DBService Implementation
// ============================================================

// DBService implements the Store interface using SQLite.
// It manages the connection, prepared statements, and ensures
// thread-safe access through a read-write mutex.
type DBService struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string
	now  func() time.Time

	// Prepared statements for single-row operations
	stmtGetProject     *sql.Stmt
	stmtInsertProject  *sql.Stmt
	stmtUpdateProject  *sql.Stmt
	stmtDeleteProject  *sql.Stmt
	stmtGetTemplate    *sql.Stmt
	stmtInsertTemplate *sql.Stmt
}

// NewDBService opens the database, initializes the schema, seeds the
// default templates on first use and prepares frequently-used statements.
//
// Use ":memory:" for in-memory databases (useful for testing).
func NewDBService(path string) (*DBService, error) {
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=ON", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", path, err)
	}

	// SQLite only supports one writer at a time. A single connection also
	// keeps ":memory:" databases alive for the life of the service.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	svc := &DBService{
		db:   db,
		path: path,
		now:  time.Now,
	}

	if err := svc.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	if err := svc.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing statements: %w", err)
	}

	if err := svc.seedTemplates(context.Background()); err != nil {
		svc.Close()
		return nil, fmt.Errorf("seeding templates: %w", err)
	}

	return svc, nil
}

// Path returns the database location the service was opened with.
func (s *DBService) Path() string {
	return s.path
}

func (s *DBService) initSchema() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("reading embedded schema: %w", err)
	}

	if _, err := s.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}

	return nil
}

func (s *DBService) prepareStatements() error {
	var err error

	s.stmtGetProject, err = s.db.Prepare(`
		SELECT id, name, description, components, created_at, updated_at
		FROM projects WHERE id = ?
	`)
	if err != nil {
		return fmt.Errorf("preparing GetProject: %w", err)
	}

	s.stmtInsertProject, err = s.db.Prepare(`
		INSERT INTO projects (name, description, components, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing InsertProject: %w", err)
	}

	s.stmtUpdateProject, err = s.db.Prepare(`
		UPDATE projects SET
			name = COALESCE(?, name),
			description = COALESCE(?, description),
			components = COALESCE(?, components),
			updated_at = ?
		WHERE id = ?
	`)
	if err != nil {
		return fmt.Errorf("preparing UpdateProject: %w", err)
	}

	s.stmtDeleteProject, err = s.db.Prepare(`DELETE FROM projects WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("preparing DeleteProject: %w", err)
	}

	s.stmtGetTemplate, err = s.db.Prepare(`
		SELECT id, name, description, components, thumbnail, created_at
		FROM templates WHERE id = ?
	`)
	if err != nil {
		return fmt.Errorf("preparing GetTemplate: %w", err)
	}

	s.stmtInsertTemplate, err = s.db.Prepare(`
		INSERT INTO templates (name, description, components, thumbnail, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing InsertTemplate: %w", err)
	}

	return nil
}

// seedTemplates inserts the built-in templates when the table is empty.
func (s *DBService) seedTemplates(ctx context.Context) error {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM templates`).Scan(&count); err != nil {
		return fmt.Errorf("counting templates: %w", err)
	}
	if count > 0 {
		return nil
	}

	raw, err := schemaFS.ReadFile("seed.json")
	if err != nil {
		return fmt.Errorf("reading embedded seed: %w", err)
	}
	var seeds []struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Components  json.RawMessage `json:"components"`
	}
	if err := json.Unmarshal(raw, &seeds); err != nil {
		return fmt.Errorf("decoding seed templates: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer tx.Rollback()

	stmt := tx.StmtContext(ctx, s.stmtInsertTemplate)
	now := timeutil.ToNano(s.now())
	for _, t := range seeds {
		if _, err := stmt.ExecContext(ctx, t.Name, t.Description, string(t.Components), "", now); err != nil {
			return fmt.Errorf("seeding template %q: %w", t.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing seed transaction: %w", err)
	}
	return nil
}

// ============================================================
// Projects
// ============================================================

// ListProjects returns every project ordered by updated_at descending.
func (s *DBService) ListProjects(ctx context.Context) ([]*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, components, created_at, updated_at
		FROM projects
		ORDER BY updated_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	return scanProjects(rows)
}

// GetProject returns the project with the given id, or ErrNotFound.
func (s *DBService) GetProject(ctx context.Context, id int64) (*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getProject(ctx, s.stmtGetProject, id)
}

func (s *DBService) getProject(ctx context.Context, stmt *sql.Stmt, id int64) (*Project, error) {
	p, err := scanProject(stmt.QueryRowContext(ctx, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying project %d: %w", id, err)
	}
	return p, nil
}

// CreateProject persists a new project. Missing components are stored as
// an empty forest.
func (s *DBService) CreateProject(ctx context.Context, in NewProject) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := timeutil.ToNano(s.now())
	res, err := s.stmtInsertProject.ExecContext(ctx,
		in.Name, in.Description, componentsText(in.Components), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting project %q: %w", in.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading project id: %w", err)
	}
	return s.getProject(ctx, s.stmtGetProject, id)
}

// UpdateProject applies patch to the project. Fields left nil keep their
// stored value; updated_at is always bumped.
func (s *DBService) UpdateProject(ctx context.Context, id int64, patch ProjectPatch) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var components *string
	if patch.Components != nil {
		c := string(patch.Components)
		components = &c
	}

	res, err := s.stmtUpdateProject.ExecContext(ctx,
		patch.Name, patch.Description, components, timeutil.ToNano(s.now()), id,
	)
	if err != nil {
		return nil, fmt.Errorf("updating project %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	return s.getProject(ctx, s.stmtGetProject, id)
}

// DeleteProject removes the project with the given id.
func (s *DBService) DeleteProject(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.stmtDeleteProject.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("deleting project %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting project %d: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("project %d: %w", id, ErrNotFound)
	}
	return nil
}

// SearchProjects returns projects whose name or description contains
// query, most recently updated first.
func (s *DBService) SearchProjects(ctx context.Context, query string, limit int) ([]*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + query + "%"

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, components, created_at, updated_at
		FROM projects
		WHERE name LIKE ? OR description LIKE ?
		ORDER BY updated_at DESC, id DESC
		LIMIT ?
	`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("searching projects for %q: %w", query, err)
	}
	defer rows.Close()

	return scanProjects(rows)
}

// ============================================================
// Templates
// ============================================================

// ListTemplates returns every template in creation order.
func (s *DBService) ListTemplates(ctx context.Context) ([]*Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, description, components, thumbnail, created_at
		FROM templates
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying templates: %w", err)
	}
	defer rows.Close()

	var templates []*Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning template row: %w", err)
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

// GetTemplate returns the template with the given id, or ErrNotFound.
func (s *DBService) GetTemplate(ctx context.Context, id int64) (*Template, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.getTemplate(ctx, id)
}

func (s *DBService) getTemplate(ctx context.Context, id int64) (*Template, error) {
	t, err := scanTemplate(s.stmtGetTemplate.QueryRowContext(ctx, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("template %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("querying template %d: %w", id, err)
	}
	return t, nil
}

// CreateTemplate persists a new template.
func (s *DBService) CreateTemplate(ctx context.Context, in NewTemplate) (*Template, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.stmtInsertTemplate.ExecContext(ctx,
		in.Name, in.Description, componentsText(in.Components), in.Thumbnail,
		timeutil.ToNano(s.now()),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting template %q: %w", in.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("reading template id: %w", err)
	}
	return s.getTemplate(ctx, id)
}

// Stats returns row counts and the latest project update time.
func (s *DBService) Stats(ctx context.Context) (*Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := &Stats{}
	var last sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM projects),
			(SELECT COUNT(*) FROM templates),
			(SELECT MAX(updated_at) FROM projects)
	`).Scan(&st.Projects, &st.Templates, &last)
	if err != nil {
		return nil, fmt.Errorf("computing stats: %w", err)
	}
	if last.Valid {
		t := timeutil.FromNano(last.Int64)
		st.LastUpdatedAt = &t
	}
	return st, nil
}

// Close gracefully shuts down the database, closing all prepared statements
// and the underlying connection pool.
func (s *DBService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stmts := []*sql.Stmt{
		s.stmtGetProject, s.stmtInsertProject, s.stmtUpdateProject,
		s.stmtDeleteProject, s.stmtGetTemplate, s.stmtInsertTemplate,
	}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}

	return s.db.Close()
}

// ============================================================
// Scan Helpers
// ============================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func componentsText(c json.RawMessage) string {
	if len(c) == 0 {
		return "[]"
	}
	return string(c)
}

func scanProject(row rowScanner) (*Project, error) {
	p := &Project{}
	var components string
	var created, updated int64
	if err := row.Scan(&p.ID, &p.Name, &p.Description, &components, &created, &updated); err != nil {
		return nil, err
	}
	p.Components = json.RawMessage(components)
	p.CreatedAt = timeutil.FromNano(created)
	p.UpdatedAt = timeutil.FromNano(updated)
	return p, nil
}

func scanProjects(rows *sql.Rows) ([]*Project, error) {
	var projects []*Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project row: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func scanTemplate(row rowScanner) (*Template, error) {
	t := &Template{}
	var components string
	var created int64
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &components, &t.Thumbnail, &created); err != nil {
		return nil, err
	}
	t.Components = json.RawMessage(components)
	t.CreatedAt = timeutil.FromNano(created)
	return t, nil
}
