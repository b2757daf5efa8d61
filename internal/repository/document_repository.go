package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-finance-mirror/internal/models"
)

// DocumentRepository reads the mirrored upstream documents. The table is
// written by the desktop sync job; this service never modifies it.
type DocumentRepository struct {
	db *sqlx.DB
}

type documentRow struct {
	Collection string    `db:"collection"`
	DocID      string    `db:"doc_id"`
	Payload    []byte    `db:"payload"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// NewDocumentRepository instantiates a document repository.
func NewDocumentRepository(db *sqlx.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// ListByCollection returns every document of a collection ordered by id.
func (r *DocumentRepository) ListByCollection(ctx context.Context, collection models.Collection) ([]models.Document, error) {
	const query = `SELECT collection, doc_id, payload, updated_at FROM mirror_documents WHERE collection = $1 ORDER BY doc_id`

	var rows []documentRow
	if err := r.db.SelectContext(ctx, &rows, query, string(collection)); err != nil {
		return nil, fmt.Errorf("list %s documents: %w", collection, err)
	}

	docs := make([]models.Document, 0, len(rows))
	for _, row := range rows {
		docs = append(docs, models.Document{
			Collection: models.Collection(row.Collection),
			ID:         row.DocID,
			Payload:    row.Payload,
			UpdatedAt:  row.UpdatedAt,
		})
	}
	return docs, nil
}

// Fingerprint returns the document count and latest update of a collection.
func (r *DocumentRepository) Fingerprint(ctx context.Context, collection models.Collection) (models.CollectionFingerprint, error) {
	const query = `SELECT COUNT(*) AS count, COALESCE(MAX(updated_at), to_timestamp(0)) AS updated_at FROM mirror_documents WHERE collection = $1`

	var fp models.CollectionFingerprint
	if err := r.db.GetContext(ctx, &fp, query, string(collection)); err != nil {
		return models.CollectionFingerprint{}, fmt.Errorf("fingerprint %s: %w", collection, err)
	}
	return fp, nil
}

// Ping verifies the database connection.
func (r *DocumentRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}
