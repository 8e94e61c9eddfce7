// Package list реализует HTTP-обработчик витрины недели:
// одобренные продукты в порядке очереди запуска.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/launchboard/launch-board/internal/http/response"
	"github.com/launchboard/launch-board/internal/lib/sl"
	"github.com/launchboard/launch-board/internal/models"
)

// Service описывает интерфейс бизнес-логики витрины.
type Service interface {
	ListApproved(ctx context.Context, weekID string) ([]*models.Product, error)
}

// Handler управляет HTTP-запросами на список продуктов недели.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список продуктов недели
// @Description Возвращает одобренные продукты недели в порядке очереди.
// @Tags Products
// @Produce  json
// @Param week_id query string true "Неделя запуска, формат 2006-W02"
// @Success 200 {object} map[string]any "Продукты недели"
// @Failure 400 {object} response.ErrorResponse "Не указана неделя"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /products [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.product.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	weekID := r.URL.Query().Get("week_id")
	if weekID == "" {
		log.Error("week_id query parameter missing")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("week_id is required"))
		return
	}

	products, err := h.service.ListApproved(r.Context(), weekID)
	if err != nil {
		log.Error("failed to list products", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list products"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"products": products,
	}))
}
