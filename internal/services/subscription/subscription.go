// Package services содержит бизнес-логику двойного подтверждения подписки на рассылку.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/newsletter-optin/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/newsletter-optin/internal/lib/sl"
	"github.com/magabrotheeeer/newsletter-optin/internal/models"
)

// SubscriberRepository определяет методы для работы с подписчиками в хранилище.
// Обе операции записи должны быть атомарными условными запросами.
type SubscriberRepository interface {
	// UpsertPendingSubscriber создает или обновляет запись подписчика с выданным токеном.
	UpsertPendingSubscriber(ctx context.Context, email, token string) (*models.Subscriber, error)
	// ConfirmByToken переводит pending-подписчика в confirmed по токену.
	ConfirmByToken(ctx context.Context, token string) (*models.Subscriber, error)
	// GetSubscriberByEmail возвращает подписчика по адресу.
	GetSubscriberByEmail(ctx context.Context, email string) (*models.Subscriber, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(key string) error
}

// Notifier отправляет письмо со ссылкой подтверждения.
type Notifier interface {
	SendConfirmation(to, token string) error
}

// EventPublisher публикует события жизненного цикла подписчика.
// Может быть nil, тогда события не публикуются.
type EventPublisher interface {
	Publish(routingKey string, event rabbitmq.SubscriberEvent) error
}

// SubscribeResult описывает результат операции подписки.
type SubscribeResult struct {
	Email            string
	Status           string
	AlreadyConfirmed bool
}

// SubscriptionService реализует бизнес-логику подписки и подтверждения.
type SubscriptionService struct {
	repo     SubscriberRepository
	cache    Cache
	notifier Notifier
	events   EventPublisher
	log      *slog.Logger
}

// NewSubscriptionService создает новый экземпляр SubscriptionService.
func NewSubscriptionService(repo SubscriberRepository, cache Cache, notifier Notifier,
	events EventPublisher, log *slog.Logger) *SubscriptionService {
	return &SubscriptionService{
		repo:     repo,
		cache:    cache,
		notifier: notifier,
		events:   events,
		log:      log,
	}
}

// Subscribe выдает новый токен и создает или обновляет запись подписчика одним
// условным запросом. Для уже подтвержденного адреса письмо не отправляется.
// Запись и отправка выполняются двумя отдельными шагами: зависший SMTP
// не держит операцию в хранилище.
//
// Сбой отправки письма не возвращается клиенту: запись с живым токеном уже
// сохранена, доставку можно повторить извне. Сбой логируется на уровне Error.
func (s *SubscriptionService) Subscribe(ctx context.Context, email string) (*SubscribeResult, error) {
	token := uuid.NewString()

	sub, err := s.repo.UpsertPendingSubscriber(ctx, email, token)
	if err != nil {
		return nil, err
	}
	s.log.Info("upserted subscriber", slog.String("email", sub.Email), slog.String("status", sub.Status))

	s.cacheStatus(sub)

	if sub.Status == models.StatusConfirmed {
		return &SubscribeResult{
			Email:            sub.Email,
			Status:           sub.Status,
			AlreadyConfirmed: true,
		}, nil
	}

	s.publishEvent(rabbitmq.RoutingKeyPending, sub)

	if err := s.notifier.SendConfirmation(sub.Email, token); err != nil {
		s.log.Error("failed to send confirmation email",
			slog.String("email", sub.Email), sl.Err(err))
	}

	return &SubscribeResult{
		Email:  sub.Email,
		Status: sub.Status,
	}, nil
}

// Confirm атомарно подтверждает подписку по токену. Для неизвестного или уже
// использованного токена возвращает ошибку хранилища ErrSubscriberNotFound.
func (s *SubscriptionService) Confirm(ctx context.Context, token string) (*models.Subscriber, error) {
	sub, err := s.repo.ConfirmByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	s.log.Info("subscription confirmed", slog.String("email", sub.Email))

	s.cacheStatus(sub)
	s.publishEvent(rabbitmq.RoutingKeyConfirmed, sub)

	return sub, nil
}

// Status возвращает статус подписчика по адресу, используя кеш или репозиторий.
func (s *SubscriptionService) Status(ctx context.Context, email string) (*models.SubscriberStatus, error) {
	var result models.SubscriberStatus
	cacheKey := cacheKeyFor(email)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read from cache", slog.String("key", cacheKey), slog.Any("err", err))
	}
	if found {
		return &result, nil
	}

	sub, err := s.repo.GetSubscriberByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	s.cacheStatus(sub)

	return &models.SubscriberStatus{Email: sub.Email, Status: sub.Status}, nil
}

func (s *SubscriptionService) cacheStatus(sub *models.Subscriber) {
	cacheKey := cacheKeyFor(sub.Email)
	status := models.SubscriberStatus{Email: sub.Email, Status: sub.Status}
	if err := s.cache.Set(cacheKey, status, time.Hour); err != nil {
		s.log.Warn("failed to cache subscriber", slog.String("key", cacheKey), slog.Any("err", err))
	}
}

// publishEvent публикует событие, сбой публикации не влияет на результат операции.
func (s *SubscriptionService) publishEvent(routingKey string, sub *models.Subscriber) {
	if s.events == nil {
		return
	}
	event := rabbitmq.SubscriberEvent{
		Email:      sub.Email,
		Status:     sub.Status,
		OccurredAt: time.Now().UTC(),
	}
	if err := s.events.Publish(routingKey, event); err != nil {
		s.log.Warn("failed to publish subscriber event",
			slog.String("routing_key", routingKey), sl.Err(err))
	}
}

func cacheKeyFor(email string) string {
	return fmt.Sprintf("subscriber:%s", email)
}
