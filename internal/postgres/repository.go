// Package postgres implements the document store and the indexed
// similarity search on PostgreSQL with the pgvector extension.
//
// Repository satisfies the ingestion store interface (Put,
// CountByWorkspace), the linear index candidate source (ListByWorkspace,
// ListAll), and the search.Index contract itself: Search delegates ranking
// to pgvector's cosine distance operator so the index, not the
// application, evaluates candidates. Ranked output is identical to the
// linear reference in internal/search.
//
// Writes are append-only inserts. Readers never block writers and vice
// versa; that property is part of the design, not an accident of the
// backend.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvector "github.com/pgvector/pgvector-go/pgx"

	"github.com/finsight/finsight/internal/document"
)

const (
	documentsTable = "documents"

	// searchTimeout bounds a single vector search so a degenerate query
	// cannot block callers.
	searchTimeout = 10 * time.Second
)

// DB is the minimal pgx surface the repository needs. *pgxpool.Pool
// satisfies it.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Connect opens a pgx connection pool with pgvector type support and
// verifies it with a ping. The vector extension must already exist
// (migrations create it), since type registration resolves the vector OID
// per connection.
func Connect(ctx context.Context, connString string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return pool, nil
}

// Repository persists and searches documents.
//
// Repository is safe for concurrent use.
type Repository struct {
	db     DB
	logger *slog.Logger
}

// NewRepository creates a Repository over db. A nil logger falls back to
// slog.Default.
func NewRepository(db DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

// docRow is the scany target for document reads.
type docRow struct {
	ID           string          `db:"id"`
	Content      string          `db:"content"`
	Embedding    pgvector.Vector `db:"embedding"`
	Metadata     []byte          `db:"metadata"`
	WorkspaceID  string          `db:"workspace_id"`
	DocumentType string          `db:"document_type"`
	CreatedAt    time.Time       `db:"created_at"`
}

// scoredRow adds the similarity score computed by pgvector.
type scoredRow struct {
	docRow
	Score float64 `db:"score"`
}

func (r *Repository) rowToDocument(row docRow) document.Document {
	var metadata document.Metadata
	if len(row.Metadata) > 0 {
		if err := json.Unmarshal(row.Metadata, &metadata); err != nil {
			r.logger.Warn("failed to parse metadata", "document_id", row.ID, "error", err)
			metadata = document.Metadata{}
		}
	}

	return document.Document{
		ID:          row.ID,
		Content:     row.Content,
		Embedding:   row.Embedding.Slice(),
		Metadata:    metadata,
		WorkspaceID: row.WorkspaceID,
		Type:        document.Type(row.DocumentType),
		CreatedAt:   row.CreatedAt,
	}
}

// Put assigns an id and creation time and inserts the document in a single
// statement; the record either exists in full or not at all. Fails with
// ErrInvalidInput when the document carries no embedding: an unembedded
// document must never become searchable.
func (r *Repository) Put(ctx context.Context, doc document.Document) (document.Document, error) {
	if len(doc.Embedding) == 0 {
		return document.Document{}, fmt.Errorf("%w: document has no embedding", document.ErrInvalidInput)
	}

	doc.ID = uuid.NewString()
	doc.CreatedAt = time.Now().UTC()
	if doc.Type == "" {
		doc.Type = document.TypeOther
	}

	metadata := doc.Metadata
	if metadata == nil {
		metadata = document.Metadata{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return document.Document{}, fmt.Errorf("%w: marshaling metadata: %w", document.ErrPersistence, err)
	}

	query, args, err := squirrel.Insert(documentsTable).
		Columns("id", "content", "embedding", "metadata", "workspace_id", "document_type", "created_at").
		Values(doc.ID, doc.Content, pgvector.NewVector(doc.Embedding), metadataJSON, doc.WorkspaceID, string(doc.Type), doc.CreatedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return document.Document{}, fmt.Errorf("%w: building insert query: %w", document.ErrPersistence, err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return document.Document{}, fmt.Errorf("%w: inserting document: %w", document.ErrPersistence, err)
	}

	r.logger.Debug("inserted document", "id", doc.ID, "workspace", doc.WorkspaceID, "type", doc.Type)
	return doc, nil
}

// ListByWorkspace returns every document in workspaceID, ordered by
// creation time. Feeds the linear reference index.
func (r *Repository) ListByWorkspace(ctx context.Context, workspaceID string) ([]document.Document, error) {
	return r.list(ctx, &workspaceID)
}

// ListAll returns every stored document, ordered by creation time.
func (r *Repository) ListAll(ctx context.Context) ([]document.Document, error) {
	return r.list(ctx, nil)
}

func (r *Repository) list(ctx context.Context, workspaceID *string) ([]document.Document, error) {
	qb := squirrel.Select("id", "content", "embedding", "metadata", "workspace_id", "document_type", "created_at").
		From(documentsTable).
		OrderBy("created_at ASC", "id ASC").
		PlaceholderFormat(squirrel.Dollar)
	if workspaceID != nil {
		qb = qb.Where(squirrel.Eq{"workspace_id": *workspaceID})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: building select query: %w", document.ErrPersistence, err)
	}

	var rows []docRow
	if err := pgxscan.Select(ctx, r.db, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("%w: listing documents: %w", document.ErrPersistence, err)
	}

	docs := make([]document.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, r.rowToDocument(row))
	}
	return docs, nil
}

// searchQuery builds the ranked similarity query. Score is cosine
// similarity (1 - cosine distance); ordering by the distance operator lets
// pgvector answer from its HNSW index, with created_at and id as
// deterministic tie-breaks.
func searchQuery(vec pgvector.Vector, workspaceID string, limit int) (string, []any, error) {
	qb := squirrel.Select("id", "content", "embedding", "metadata", "workspace_id", "document_type", "created_at").
		Column(squirrel.Expr("1 - (embedding <=> ?) AS score", vec)).
		From(documentsTable).
		OrderByClause("embedding <=> ?", vec).
		OrderBy("created_at ASC", "id ASC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)
	if workspaceID != "" {
		qb = qb.Where(squirrel.Eq{"workspace_id": workspaceID})
	}
	return qb.ToSql()
}

// Search implements search.Index on pgvector. The workspace filter is part
// of the SQL predicate, applied before ranking: scoping is a hard
// partition.
func (r *Repository) Search(ctx context.Context, query []float32, workspaceID string, limit int) ([]document.Result, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive, got %d", document.ErrInvalidInput, limit)
	}
	if len(query) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", document.ErrInvalidInput)
	}

	queryCtx, cancel := context.WithTimeout(ctx, searchTimeout)
	defer cancel()

	sql, args, err := searchQuery(pgvector.NewVector(query), workspaceID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: building search query: %w", document.ErrPersistence, err)
	}

	var rows []scoredRow
	if err := pgxscan.Select(queryCtx, r.db, &rows, sql, args...); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: search query timeout: %w", document.ErrPersistence, err)
		}
		return nil, fmt.Errorf("%w: searching documents: %w", document.ErrPersistence, err)
	}

	results := make([]document.Result, 0, len(rows))
	for _, row := range rows {
		results = append(results, document.Result{
			Document: r.rowToDocument(row.docRow),
			Score:    row.Score,
		})
	}
	return results, nil
}

// CountByWorkspace counts stored documents; empty workspaceID counts all.
func (r *Repository) CountByWorkspace(ctx context.Context, workspaceID string) (int64, error) {
	qb := squirrel.Select("COUNT(*)").
		From(documentsTable).
		PlaceholderFormat(squirrel.Dollar)
	if workspaceID != "" {
		qb = qb.Where(squirrel.Eq{"workspace_id": workspaceID})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: building count query: %w", document.ErrPersistence, err)
	}

	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: counting documents: %w", document.ErrPersistence, err)
	}
	return count, nil
}
