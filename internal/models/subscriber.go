// Package models содержит доменные структуры подписчика рассылки,
// а также вспомогательные типы для работы с данными из внешних источников (например, JSON-запросы).
package models

import (
	"regexp"
	"time"
)

// Статусы подписчика.
const (
	// StatusPending — адрес заявлен, но ещё не подтверждён по ссылке.
	StatusPending = "pending"
	// StatusConfirmed — владелец адреса подтвердил подписку.
	StatusConfirmed = "confirmed"
	// StatusUnsubscribed — подписчик ранее отписался; повторная подписка возвращает его в pending.
	StatusUnsubscribed = "unsubscribed"
)

// Subscriber представляет запись подписчика рассылки,
// используемую в бизнес-логике и хранилище.
// ConfirmationToken равен nil для всех статусов, кроме pending.
type Subscriber struct {
	ID                int64     // Идентификатор записи
	Email             string    // Электронная почта, уникальный ключ (без нормализации регистра)
	Status            string    // Один из StatusPending, StatusConfirmed, StatusUnsubscribed
	ConfirmationToken *string   // Одноразовый токен подтверждения, nil после подтверждения
	CreatedAt         time.Time // Дата создания записи
	UpdatedAt         time.Time // Дата последнего изменения
}

// SubscribeRequest используется для приёма данных из JSON-запроса на подписку.
type SubscribeRequest struct {
	Email string `json:"email" validate:"required"` // Адрес подписчика
}

// Нестрогая проверка формы local@domain.tld. Пропускает часть невалидных
// по RFC адресов, это осознанное упрощение.
var emailShape = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// IsEmailShaped проверяет, что строка похожа на адрес электронной почты.
func IsEmailShaped(email string) bool {
	return emailShape.MatchString(email)
}

// SubscriberStatus используется для выдачи статуса подписчика в JSON-ответе.
type SubscriberStatus struct {
	Email  string `json:"email"`
	Status string `json:"status"`
}
