// Package productstatus реализует HTTP-обработчик решения модератора по продукту.
//
// Handler валидирует запрос целиком до каких-либо побочных эффектов:
// при отсутствии обязательного поля возвращается 400 и ни запись в базе,
// ни публикация уведомления не происходят.
package productstatus

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/launchboard/launch-board/internal/http/response"
	"github.com/launchboard/launch-board/internal/lib/sl"
	"github.com/launchboard/launch-board/internal/models"
	productsrv "github.com/launchboard/launch-board/internal/services/product"
)

// Service описывает интерфейс бизнес-логики модерации продукта.
type Service interface {
	Moderate(ctx context.Context, req models.DummyProductStatus) error
}

// Handler управляет HTTP-запросами модерации продуктов.
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
// @Summary Изменить статус продукта
// @Description Обновляет статус заявки и публикует уведомление владельцу.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Param request body models.DummyProductStatus true "Решение модератора"
// @Success 200 {object} map[string]bool "Статус обновлён"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Продукт не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /admin/product-status [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.productstatus"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyProductStatus
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

	if err := h.service.Moderate(r.Context(), req); err != nil {
		if errors.Is(err, productsrv.ErrProductNotFound) {
			log.Error("product not found", slog.Int("product_id", req.ProductID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("product not found"))
			return
		}
		log.Error("failed to update product status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update product status"))
		return
	}

	log.Info("product status updated",
		slog.Int("product_id", req.ProductID),
		slog.String("status", req.Status))
	render.JSON(w, r, map[string]bool{"success": true})
}
