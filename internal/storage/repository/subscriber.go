package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/newsletter-optin/internal/models"
)

// UpsertPendingSubscriber создаёт запись подписчика со статусом pending и выданным
// токеном либо обновляет существующую одним условным запросом: unsubscribed
// возвращается в pending с новым токеном, pending получает новый токен,
// confirmed не понижается и сохраняет пустой токен.
func (s *Storage) UpsertPendingSubscriber(ctx context.Context, email, token string) (*models.Subscriber, error) {
	const op = "storage.UpsertPendingSubscriber"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscribers (email, status, confirmation_token)
			  VALUES ($1, $2, $3)
			  ON CONFLICT (email) DO UPDATE SET
			      status = CASE WHEN subscribers.status = 'confirmed'
			                    THEN subscribers.status ELSE 'pending' END,
			      confirmation_token = CASE WHEN subscribers.status = 'confirmed'
			                    THEN subscribers.confirmation_token ELSE EXCLUDED.confirmation_token END,
			      updated_at = now()
			  RETURNING id, email, status, confirmation_token, created_at, updated_at`
	row := s.DB.QueryRowContext(ctx, query, email, models.StatusPending, token)

	var result models.Subscriber
	var confirmationToken sql.NullString
	if err := row.Scan(&result.ID, &result.Email, &result.Status, &confirmationToken,
		&result.CreatedAt, &result.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if confirmationToken.Valid {
		result.ConfirmationToken = &confirmationToken.String
	}
	return &result, nil
}

// ConfirmByToken атомарно переводит подписчика из pending в confirmed по токену
// и обнуляет токен. Возвращает ErrSubscriberNotFound, если токен не найден,
// уже использован или запись не в статусе pending.
func (s *Storage) ConfirmByToken(ctx context.Context, token string) (*models.Subscriber, error) {
	const op = "storage.ConfirmByToken"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscribers
			  SET status = 'confirmed', confirmation_token = NULL, updated_at = now()
			  WHERE confirmation_token = $1 AND status = 'pending'
			  RETURNING id, email, status, created_at, updated_at`
	row := s.DB.QueryRowContext(ctx, query, token)

	var result models.Subscriber
	if err := row.Scan(&result.ID, &result.Email, &result.Status,
		&result.CreatedAt, &result.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrSubscriberNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// GetSubscriberByEmail возвращает подписчика по адресу, сравнение точное.
func (s *Storage) GetSubscriberByEmail(ctx context.Context, email string) (*models.Subscriber, error) {
	const op = "storage.GetSubscriberByEmail"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, email, status, confirmation_token, created_at, updated_at
			  FROM subscribers
			  WHERE email = $1`
	row := s.DB.QueryRowContext(ctx, query, email)

	var result models.Subscriber
	var confirmationToken sql.NullString
	if err := row.Scan(&result.ID, &result.Email, &result.Status, &confirmationToken,
		&result.CreatedAt, &result.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrSubscriberNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if confirmationToken.Valid {
		result.ConfirmationToken = &confirmationToken.String
	}
	return &result, nil
}
