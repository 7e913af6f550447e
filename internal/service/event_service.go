package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/JohnPierce/PersonalFinance/internal/apperrors"
	"github.com/JohnPierce/PersonalFinance/internal/model"
	"github.com/JohnPierce/PersonalFinance/internal/repository"
)

// EventService records and retrieves taxable events that are not lot
// dispositions: dividends, return of capital, and the realized gain entries
// written by the matching engine.
type EventService struct {
	accountRepo *repository.AccountRepository
	eventRepo   *repository.EventRepository
}

// NewEventService creates a new EventService with the provided dependencies.
func NewEventService(accountRepo *repository.AccountRepository, eventRepo *repository.EventRepository) *EventService {
	return &EventService{accountRepo: accountRepo, eventRepo: eventRepo}
}

// RecordEvent stores one taxable event. Replaying the same source transaction
// with the same event type returns the existing record instead of creating a
// duplicate.
func (s *EventService) RecordEvent(ctx context.Context, accountID string, transaction model.Transaction, eventType model.TaxableEventType, amount decimal.Decimal) (model.TaxableEvent, error) {
	if !amount.IsPositive() {
		return model.TaxableEvent{}, fmt.Errorf("%w: event amount must be positive, got %s",
			apperrors.ErrInvalidQuantity, amount)
	}
	if _, err := s.accountRepo.GetByID(accountID); err != nil {
		return model.TaxableEvent{}, err
	}

	existing, err := s.eventRepo.GetByTransactionID(transaction.ReferenceID)
	if err != nil {
		return model.TaxableEvent{}, err
	}
	for _, e := range existing {
		if e.EventType == eventType {
			return e, nil
		}
	}

	event := model.TaxableEvent{
		ID:            uuid.New().String(),
		AccountID:     accountID,
		TransactionID: transaction.ReferenceID,
		EventType:     eventType,
		Amount:        amount,
		Date:          transaction.TransactionDate,
	}
	if err := s.eventRepo.Insert(ctx, &event); err != nil {
		return model.TaxableEvent{}, err
	}
	return event, nil
}

// GetEvent retrieves a single taxable event by ID.
func (s *EventService) GetEvent(eventID string) (model.TaxableEvent, error) {
	return s.eventRepo.GetByID(eventID)
}

// GetEventsByAccount retrieves all taxable events for an account, newest first.
func (s *EventService) GetEventsByAccount(accountID string) ([]model.TaxableEvent, error) {
	if _, err := s.accountRepo.GetByID(accountID); err != nil {
		return nil, err
	}
	return s.eventRepo.GetByAccount(accountID)
}
