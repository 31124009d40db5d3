// Package confirm реализует HTTP-обработчик подтверждения подписки по токену из ссылки.
package confirm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/newsletter-optin/internal/http/response"
	"github.com/magabrotheeeer/newsletter-optin/internal/lib/sl"
	"github.com/magabrotheeeer/newsletter-optin/internal/models"
	"github.com/magabrotheeeer/newsletter-optin/internal/storage/repository"
)

// Handler управляет HTTP-запросами на подтверждение подписки.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики подтверждения.
type Service interface {
	Confirm(ctx context.Context, token string) (*models.Subscriber, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Подтвердить подписку
// @Description Переводит подписчика из pending в confirmed по одноразовому токену из письма.
// @Tags Subscriptions
// @Produce  json
// @Param token query string true "Токен подтверждения"
// @Success 200 {object} response.Response "Подписка подтверждена"
// @Failure 400 {object} response.ErrorResponse "Токен не передан"
// @Failure 404 {object} response.ErrorResponse "Токен не найден или уже использован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /subscriptions/confirm [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.subscription.confirm"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token := r.URL.Query().Get("token")
	if token == "" {
		log.Error("confirmation token is missing")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing token"))
		return
	}

	sub, err := h.service.Confirm(r.Context(), token)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriberNotFound) {
			log.Info("token not found or already used")
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("token not found or already used"))
			return
		}
		log.Error("failed to confirm subscription", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not confirm subscription"))
		return
	}

	log.Info("subscription confirmed", slog.String("email", sub.Email))
	render.JSON(w, r, response.OKWithMessage(
		fmt.Sprintf("Subscription for %s successfully confirmed.", sub.Email)))
}
