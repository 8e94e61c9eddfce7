// Package webhook реализует HTTP-обработчик вебхуков Lemon Squeezy.
//
// Подпись проверяется по сырому телу запроса до разбора JSON; при
// несовпадении запрос отклоняется без каких-либо изменений состояния.
// Формат ответов задан контрактом провайдера, а не общим конвертом API.
package webhook

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/launchboard/launch-board/internal/lemonsqueezy"
	"github.com/launchboard/launch-board/internal/lib/sl"
)

// Service описывает интерфейс бизнес-логики обработки событий вебхука.
type Service interface {
	ProcessWebhookEvent(ctx context.Context, payload *lemonsqueezy.WebhookPayload, rawBody []byte) error
}

// Handler управляет HTTP-запросами вебхуков платежного провайдера.
type Handler struct {
	log           *slog.Logger
	service       Service
	webhookSecret string
}

// New создает новый Handler с переданными логгером, сервисом и секретом подписи.
func New(log *slog.Logger, service Service, webhookSecret string) *Handler {
	return &Handler{
		log:           log,
		service:       service,
		webhookSecret: webhookSecret,
	}
}

// ServeHTTP godoc
// @Summary Вебхук Lemon Squeezy
// @Description Принимает события оплаты и возврата. Подпись X-Signature обязательна.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Success 200 {object} map[string]bool "Событие принято"
// @Failure 400 {object} map[string]string "Некорректное тело"
// @Failure 401 {object} map[string]string "Неверная подпись"
// @Failure 500 {object} map[string]string "Ошибка обработки"
// @Router /webhooks/lemon-squeezy [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("failed to read request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "failed to read body"})
		return
	}

	signature := r.Header.Get("X-Signature")
	if !lemonsqueezy.VerifySignature(h.webhookSecret, rawBody, signature) {
		log.Error("invalid webhook signature")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, map[string]string{"error": "invalid signature"})
		return
	}

	var payload lemonsqueezy.WebhookPayload
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		log.Error("failed to decode webhook payload", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, map[string]string{"error": "invalid payload"})
		return
	}

	if err := h.service.ProcessWebhookEvent(r.Context(), &payload, rawBody); err != nil {
		log.Error("failed to process webhook event",
			slog.String("event", payload.Meta.EventName), sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, map[string]string{"error": "failed to process event"})
		return
	}

	log.Info("webhook event processed", slog.String("event", payload.Meta.EventName))
	render.JSON(w, r, map[string]bool{"received": true})
}
