package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/thermoledger/thermoledger/internal/domain"
	"github.com/thermoledger/thermoledger/internal/platform/logger"
	"github.com/thermoledger/thermoledger/internal/store"
)

// PostgreSQL error codes
const pgUniqueViolationCode = "23505"

// PostgresLedgerStore implements the store.LedgerStore interface using a
// PostgreSQL database as the storage backend. The ledger_entries table has
// the sequence number as its primary key, so a concurrent append to the
// same sequence surfaces as a unique violation and maps to
// store.ErrSequenceExists.
type PostgresLedgerStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresLedgerStore creates a new PostgreSQL implementation of the
// LedgerStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller. If logger is nil,
// a default logger will be used.
func NewPostgresLedgerStore(db store.DBTX, logger *slog.Logger) *PostgresLedgerStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresLedgerStore{
		db:     db,
		logger: logger.With(slog.String("component", "ledger_store")),
	}
}

// Ensure PostgresLedgerStore implements store.LedgerStore interface
var _ store.LedgerStore = (*PostgresLedgerStore)(nil)

// Append implements store.LedgerStore.Append.
// Returns store.ErrSequenceExists when the sequence number is already
// occupied (unique violation), letting the manager detect append races.
func (s *PostgresLedgerStore) Append(ctx context.Context, entry *domain.LedgerEntry) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := entry.Validate(); err != nil {
		log.Warn("ledger entry validation failed during append",
			slog.String("error", err.Error()),
			slog.Uint64("sequence", entry.Sequence))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	votes, err := json.Marshal(entry.Votes)
	if err != nil {
		return fmt.Errorf("failed to marshal votes: %w", err)
	}

	query := `
		INSERT INTO ledger_entries (sequence, kind, payload, votes, verdict, entry_hash, prev_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = s.db.ExecContext(
		ctx,
		query,
		int64(entry.Sequence),
		string(entry.Kind),
		[]byte(entry.Payload),
		votes,
		string(entry.Verdict),
		entry.EntryHash,
		entry.PrevHash,
		entry.CreatedAt,
	)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolationCode {
			log.Warn("sequence conflict during ledger append",
				slog.Uint64("sequence", entry.Sequence))
			return fmt.Errorf("%w: %d", store.ErrSequenceExists, entry.Sequence)
		}

		log.Error("failed to append ledger entry",
			slog.String("error", err.Error()),
			slog.Uint64("sequence", entry.Sequence))
		return err
	}

	log.Info("ledger entry appended",
		slog.Uint64("sequence", entry.Sequence),
		slog.String("kind", string(entry.Kind)))
	return nil
}

// GetBySequence implements store.LedgerStore.GetBySequence.
// Returns store.ErrEntryNotFound if the entry does not exist.
func (s *PostgresLedgerStore) GetBySequence(ctx context.Context, seq uint64) (*domain.LedgerEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT sequence, kind, payload, votes, verdict, entry_hash, prev_hash, created_at
		FROM ledger_entries
		WHERE sequence = $1
	`

	entry, err := scanEntry(s.db.QueryRowContext(ctx, query, int64(seq)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("ledger entry not found", slog.Uint64("sequence", seq))
			return nil, store.ErrEntryNotFound
		}
		log.Error("failed to get ledger entry",
			slog.String("error", err.Error()),
			slog.Uint64("sequence", seq))
		return nil, err
	}

	return entry, nil
}

// GetRange implements store.LedgerStore.GetRange.
func (s *PostgresLedgerStore) GetRange(ctx context.Context, from, to uint64) ([]domain.LedgerEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT sequence, kind, payload, votes, verdict, entry_hash, prev_hash, created_at
		FROM ledger_entries
		WHERE sequence >= $1 AND sequence <= $2
		ORDER BY sequence ASC
	`

	rows, err := s.db.QueryContext(ctx, query, int64(from), int64(to))
	if err != nil {
		log.Error("failed to query ledger range",
			slog.String("error", err.Error()),
			slog.Uint64("from", from),
			slog.Uint64("to", to))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	entries := []domain.LedgerEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			log.Error("failed to scan ledger entry row",
				slog.String("error", err.Error()))
			return nil, err
		}
		entries = append(entries, *entry)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, err
	}

	return entries, nil
}

// Tail implements store.LedgerStore.Tail.
// Returns store.ErrLedgerEmpty when no entries exist.
func (s *PostgresLedgerStore) Tail(ctx context.Context) (*domain.LedgerEntry, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT sequence, kind, payload, votes, verdict, entry_hash, prev_hash, created_at
		FROM ledger_entries
		ORDER BY sequence DESC
		LIMIT 1
	`

	entry, err := scanEntry(s.db.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrLedgerEmpty
		}
		log.Error("failed to get ledger tail", slog.String("error", err.Error()))
		return nil, err
	}

	return entry, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*domain.LedgerEntry, error) {
	var entry domain.LedgerEntry
	var seq int64
	var kind, verdict string
	var payload, votes []byte

	err := row.Scan(
		&seq,
		&kind,
		&payload,
		&votes,
		&verdict,
		&entry.EntryHash,
		&entry.PrevHash,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	entry.Sequence = uint64(seq)
	entry.Kind = domain.ProposalKind(kind)
	entry.Verdict = domain.VoteVerdict(verdict)
	entry.Payload = payload

	if err := json.Unmarshal(votes, &entry.Votes); err != nil {
		return nil, fmt.Errorf("failed to unmarshal votes for sequence %d: %w", seq, err)
	}

	return &entry, nil
}
