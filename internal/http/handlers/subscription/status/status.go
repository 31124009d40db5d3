// Package status реализует HTTP-обработчик чтения статуса подписчика по адресу.
package status

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/newsletter-optin/internal/http/response"
	"github.com/magabrotheeeer/newsletter-optin/internal/lib/sl"
	"github.com/magabrotheeeer/newsletter-optin/internal/models"
	"github.com/magabrotheeeer/newsletter-optin/internal/storage/repository"
)

// Handler управляет HTTP-запросами на чтение статуса подписчика.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения статуса.
type Service interface {
	Status(ctx context.Context, email string) (*models.SubscriberStatus, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Статус подписчика
// @Description Возвращает текущий статус подписчика по адресу.
// @Tags Subscribers
// @Produce  json
// @Param email query string true "Адрес подписчика"
// @Success 200 {object} response.Response "Статус подписчика"
// @Failure 400 {object} response.ErrorResponse "Адрес не передан"
// @Failure 404 {object} response.ErrorResponse "Подписчик не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscribers/status [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.status"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	// Адрес передается query-параметром: URLFormat срезал бы ".com" из сегмента пути.
	email := r.URL.Query().Get("email")
	if email == "" {
		log.Error("email is missing in query")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing email"))
		return
	}

	status, err := h.service.Status(r.Context(), email)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriberNotFound) {
			log.Info("subscriber not found", slog.String("email", email))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("subscriber not found"))
			return
		}
		log.Error("failed to read subscriber status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read subscriber status"))
		return
	}

	log.Info("subscriber status read", slog.String("email", status.Email))
	render.JSON(w, r, response.OKWithData(status))
}
