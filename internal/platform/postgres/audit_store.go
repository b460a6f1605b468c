package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/thermoledger/thermoledger/internal/domain"
	"github.com/thermoledger/thermoledger/internal/platform/logger"
	"github.com/thermoledger/thermoledger/internal/store"
)

// PostgresAuditNoteStore implements the store.AuditNoteStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAuditNoteStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAuditNoteStore creates a new PostgreSQL implementation of the
// AuditNoteStore interface. If logger is nil, a default logger will be used.
func NewPostgresAuditNoteStore(db store.DBTX, logger *slog.Logger) *PostgresAuditNoteStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAuditNoteStore{
		db:     db,
		logger: logger.With(slog.String("component", "audit_store")),
	}
}

// Ensure PostgresAuditNoteStore implements store.AuditNoteStore interface
var _ store.AuditNoteStore = (*PostgresAuditNoteStore)(nil)

// Create implements store.AuditNoteStore.Create.
func (s *PostgresAuditNoteStore) Create(ctx context.Context, note *domain.AuditNote) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := note.Validate(); err != nil {
		log.Warn("audit note validation failed during create",
			slog.String("error", err.Error()),
			slog.String("proposal_ref", note.ProposalRef))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO audit_notes (id, proposal_ref, validator_id, note, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		note.ID,
		note.ProposalRef,
		note.ValidatorID,
		note.Note,
		note.CreatedAt,
	)
	if err != nil {
		log.Error("failed to create audit note",
			slog.String("error", err.Error()),
			slog.String("proposal_ref", note.ProposalRef))
		return err
	}

	log.Debug("audit note created",
		slog.String("note_id", note.ID.String()),
		slog.String("proposal_ref", note.ProposalRef))
	return nil
}

// ListByProposal implements store.AuditNoteStore.ListByProposal.
func (s *PostgresAuditNoteStore) ListByProposal(ctx context.Context, proposalRef string) ([]domain.AuditNote, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, proposal_ref, validator_id, note, created_at
		FROM audit_notes
		WHERE proposal_ref = $1
		ORDER BY created_at ASC
	`

	rows, err := s.db.QueryContext(ctx, query, proposalRef)
	if err != nil {
		log.Error("failed to query audit notes",
			slog.String("error", err.Error()),
			slog.String("proposal_ref", proposalRef))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	notes := []domain.AuditNote{}
	for rows.Next() {
		var note domain.AuditNote
		err := rows.Scan(
			&note.ID,
			&note.ProposalRef,
			&note.ValidatorID,
			&note.Note,
			&note.CreatedAt,
		)
		if err != nil {
			log.Error("failed to scan audit note row",
				slog.String("error", err.Error()))
			return nil, err
		}
		notes = append(notes, note)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return notes, nil
}
