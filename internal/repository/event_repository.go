package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/JohnPierce/PersonalFinance/internal/apperrors"
	"github.com/JohnPierce/PersonalFinance/internal/model"
)

// EventRepository provides data access methods for the taxable_event table.
type EventRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewEventRepository creates a new EventRepository with the provided database connection.
func NewEventRepository(db *sql.DB) *EventRepository {
	return &EventRepository{db: db}
}

// WithTx returns a new EventRepository scoped to the provided transaction.
func (r *EventRepository) WithTx(tx *sql.Tx) *EventRepository {
	return &EventRepository{db: r.db, tx: tx}
}

func (r *EventRepository) querier() querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Insert creates a new taxable event record.
func (r *EventRepository) Insert(ctx context.Context, e *model.TaxableEvent) error {
	query := `
		INSERT INTO taxable_event (id, account_id, transaction_id, event_type, amount, date)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := r.querier().ExecContext(ctx, query,
		e.ID,
		e.AccountID,
		e.TransactionID,
		string(e.EventType),
		e.Amount.String(),
		e.Date.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert taxable event: %w", err)
	}

	return nil
}

// GetByTransactionID retrieves the taxable events recorded for one source
// transaction. Used to detect already-processed DIVIDEND notifications.
func (r *EventRepository) GetByTransactionID(transactionID string) ([]model.TaxableEvent, error) {
	query := `
		SELECT id, account_id, transaction_id, event_type, amount, date, created_at
		FROM taxable_event
		WHERE transaction_id = ?
		ORDER BY created_at ASC, rowid ASC
	`
	return r.queryEvents(query, transactionID)
}

// GetByAccount retrieves all taxable events for an account in date order.
// Returns ErrAccountNotFound via the caller's account lookup; an unknown
// account here just yields an empty slice.
func (r *EventRepository) GetByAccount(accountID string) ([]model.TaxableEvent, error) {
	if accountID == "" {
		return r.queryEvents(`
			SELECT id, account_id, transaction_id, event_type, amount, date, created_at
			FROM taxable_event
			ORDER BY date ASC, rowid ASC
		`)
	}

	query := `
		SELECT id, account_id, transaction_id, event_type, amount, date, created_at
		FROM taxable_event
		WHERE account_id = ?
		ORDER BY date ASC, rowid ASC
	`
	return r.queryEvents(query, accountID)
}

// GetByID retrieves a single taxable event by its ID.
func (r *EventRepository) GetByID(eventID string) (model.TaxableEvent, error) {
	query := `
		SELECT id, account_id, transaction_id, event_type, amount, date, created_at
		FROM taxable_event
		WHERE id = ?
	`

	events, err := r.queryEvents(query, eventID)
	if err != nil {
		return model.TaxableEvent{}, err
	}
	if len(events) == 0 {
		return model.TaxableEvent{}, apperrors.ErrTaxableEventNotFound
	}

	return events[0], nil
}

func (r *EventRepository) queryEvents(query string, args ...any) ([]model.TaxableEvent, error) {
	rows, err := r.querier().Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query taxable_event table: %w", err)
	}
	defer rows.Close()

	events := []model.TaxableEvent{}

	for rows.Next() {
		var e model.TaxableEvent
		var eventType, amountStr, dateStr, createdAtStr string

		err := rows.Scan(&e.ID, &e.AccountID, &e.TransactionID, &eventType, &amountStr, &dateStr, &createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan taxable_event table results: %w", err)
		}

		e.EventType = model.TaxableEventType(eventType)

		if e.Amount, err = decimal.NewFromString(amountStr); err != nil {
			return nil, fmt.Errorf("failed to parse event amount: %w", err)
		}
		if e.Date, err = ParseTime(dateStr); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = ParseTime(createdAtStr); err != nil {
			return nil, err
		}

		events = append(events, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating taxable_event table: %w", err)
	}

	return events, nil
}
