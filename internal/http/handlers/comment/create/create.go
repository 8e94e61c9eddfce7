// Package create реализует HTTP-обработчик создания комментария к продукту.
package create

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

// Service описывает интерфейс бизнес-логики комментариев.
type Service interface {
	Create(ctx context.Context, authorUID, authorUsername string, req models.DummyComment) (*models.Comment, error)
}

// Handler управляет HTTP-запросами на создание комментариев.
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
// @Summary Оставить комментарий
// @Description Создает комментарий к продукту. Владельцу продукта отправляется уведомление, если комментирует не он сам.
// @Tags Comments
// @Accept  json
// @Produce  json
// @Param request body models.DummyComment true "Данные комментария"
// @Success 200 {object} map[string]any "Созданный комментарий"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /comments [post]
// @Security BearerAuth
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.comment.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.DummyComment
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	authorUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || authorUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}
	authorUsername, _ := r.Context().Value(middlewarectx.User).(string)

	comment, err := h.service.Create(r.Context(), authorUID, authorUsername, req)
	if err != nil {
		log.Error("failed to create comment", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create comment"))
		return
	}

	log.Info("comment created",
		slog.Int("id", comment.ID),
		slog.Int("product_id", comment.ProductID))
	render.JSON(w, r, map[string]any{
		"success": true,
		"comment": comment,
	})
}
