// Package subscribe реализует HTTP-обработчик заявки на подписку.
//
// Handler принимает JSON-запрос с адресом, валидирует его, вызывает бизнес-логику
// подписки через сервис и возвращает сообщение для клиента в JSON-формате.
// Проверка адреса нестрогая (форма local@domain.tld), это осознанное упрощение.
//
// В случае ошибок формируются соответствующие HTTP-ответы с описанием проблемы.
package subscribe

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/newsletter-optin/internal/http/response"
	"github.com/magabrotheeeer/newsletter-optin/internal/lib/sl"
	"github.com/magabrotheeeer/newsletter-optin/internal/models"
	subservice "github.com/magabrotheeeer/newsletter-optin/internal/services/subscription"
)

// Handler управляет HTTP-запросами на подписку.
//
// Использует логгер для записи операций и ошибок,
// сервис бизнес-логики для оформления подписки,
// а также валидатор для проверки структуры входных данных.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики подписки
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики подписки.
type Service interface {
	Subscribe(ctx context.Context, email string) (*subservice.SubscribeResult, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Подписаться на рассылку
// @Description Создает или обновляет запись подписчика и отправляет письмо со ссылкой подтверждения.
// @Tags Subscriptions
// @Accept  json
// @Produce  json
// @Param request body models.SubscribeRequest true "Адрес подписчика"
// @Success 200 {object} response.Response "Заявка принята или адрес уже подтвержден"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON или адрес"
// @Failure 503 {object} response.ErrorResponse "Хранилище недоступно"
// @Router /subscriptions [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.subscribe"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.SubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.String("email", req.Email))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if !models.IsEmailShaped(req.Email) {
		log.Error("email failed shape check", slog.String("email", req.Email))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid email address"))
		return
	}

	result, err := h.service.Subscribe(r.Context(), req.Email)
	if err != nil {
		log.Error("failed to subscribe", sl.Err(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		render.JSON(w, r, response.Error("could not process subscription"))
		return
	}

	if result.AlreadyConfirmed {
		log.Info("address already confirmed", slog.String("email", result.Email))
		render.JSON(w, r, response.OKWithMessage("You are already subscribed."))
		return
	}

	log.Info("subscription pending, confirmation email requested", slog.String("email", result.Email))
	render.JSON(w, r, response.OKWithMessage("Please check your email to confirm the subscription."))
}
