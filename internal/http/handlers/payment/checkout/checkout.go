// Package checkout реализует HTTP-обработчик начала оплаты.
//
// Handler принимает тип платежа и продукт, создает pending-платеж и возвращает
// ссылку на страницу оплаты провайдера. Цена тарифа определяется на сервере,
// клиент её не передает. Без авторизации запись платежа не создается.
package checkout

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/launchboard/launch-board/internal/http/middlewarectx"
	"github.com/launchboard/launch-board/internal/http/response"
	"github.com/launchboard/launch-board/internal/lib/sl"
	"github.com/launchboard/launch-board/internal/models"
)

// Service описывает интерфейс бизнес-логики создания чекаута.
type Service interface {
	CreateCheckout(ctx context.Context, userUID string, req models.DummyCheckout) (string, error)
}

// Handler управляет HTTP-запросами начала оплаты.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
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
// @Summary Начать оплату
// @Description Создает pending-платеж и возвращает ссылку на чекаут провайдера.
// @Tags Payments
// @Accept  json
// @Produce  json
// @Param request body models.DummyCheckout true "Тип платежа и продукт"
// @Success 200 {object} map[string]string "Ссылка на чекаут"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /simple-checkout [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.checkout"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	var req models.DummyCheckout
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	checkoutURL, err := h.service.CreateCheckout(r.Context(), userUID, req)
	if err != nil {
		log.Error("failed to create checkout", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create checkout"))
		return
	}

	log.Info("checkout created",
		slog.String("user_uid", userUID),
		slog.String("payment_type", req.PaymentType))
	render.JSON(w, r, map[string]string{"checkoutUrl": checkoutURL})
}
