// Package services содержит бизнес-логику для управления продуктами,
// модерацией и кешированием витрины недели.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/launchboard/launch-board/internal/lib/rabbitmq"
	"github.com/launchboard/launch-board/internal/lib/sl"
	"github.com/launchboard/launch-board/internal/models"
)

// ErrProductNotFound продукт с указанным ID отсутствует.
var ErrProductNotFound = errors.New("product not found")

// ProductRepository определяет методы для работы с продуктами в хранилище.
type ProductRepository interface {
	// CreateProduct добавляет новую заявку и возвращает её ID.
	CreateProduct(ctx context.Context, product models.Product) (int, error)
	// ReadProduct возвращает продукт по ID.
	ReadProduct(ctx context.Context, id int) (*models.Product, error)
	// ListApprovedProducts возвращает одобренные продукты недели.
	ListApprovedProducts(ctx context.Context, weekID string) ([]*models.Product, error)
	// ListPendingProducts возвращает очередь модерации.
	ListPendingProducts(ctx context.Context, limit, offset int) ([]*models.Product, error)
	// UpdateProductStatus применяет решение модератора.
	UpdateProductStatus(ctx context.Context, id int, status string, queuePosition *int, adminNotes string) (int, error)
	// GetProductOwner возвращает владельца продукта и название продукта.
	GetProductOwner(ctx context.Context, productID int) (*models.User, string, error)
}

// Publisher описывает публикацию уведомлений в брокер.
type Publisher interface {
	Publish(exchange, routingKey string, message any) error
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
	Invalidate(key string) error
}

// ProductService реализует бизнес-логику работы с продуктами, включая кеширование
// витрины и публикацию писем о решении модерации.
type ProductService struct {
	repo      ProductRepository
	cache     Cache
	publisher Publisher
	log       *slog.Logger
}

// NewProductService создает новый экземпляр ProductService.
func NewProductService(repo ProductRepository, cache Cache, publisher Publisher, log *slog.Logger) *ProductService {
	return &ProductService{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		log:       log,
	}
}

func weekCacheKey(weekID string) string {
	return "products:week:" + weekID
}

// Submit создает заявку на запуск продукта в статусе pending
// со следующей позицией в очереди недели.
func (s *ProductService) Submit(ctx context.Context, ownerUID string, req models.DummyProduct) (int, error) {
	product := models.Product{
		Name:        req.Name,
		Tagline:     req.Tagline,
		Description: req.Description,
		WebsiteURL:  req.WebsiteURL,
		LogoURL:     req.LogoURL,
		OwnerUID:    ownerUID,
		Status:      models.ProductStatusPending,
		WeekID:      req.WeekID,
	}
	id, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return 0, fmt.Errorf("failed to create product: %w", err)
	}
	return id, nil
}

// Read возвращает продукт по ID.
func (s *ProductService) Read(ctx context.Context, id int) (*models.Product, error) {
	return s.repo.ReadProduct(ctx, id)
}

// ListApproved возвращает одобренные продукты недели, используя кеш.
func (s *ProductService) ListApproved(ctx context.Context, weekID string) ([]*models.Product, error) {
	key := weekCacheKey(weekID)

	var cached []*models.Product
	found, err := s.cache.Get(key, &cached)
	if err != nil {
		s.log.Warn("cache read failed", sl.Err(err))
	}
	if found {
		return cached, nil
	}

	result, err := s.repo.ListApprovedProducts(ctx, weekID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(key, result, 5*time.Minute); err != nil {
		s.log.Warn("cache write failed", sl.Err(err))
	}
	return result, nil
}

// ListPending возвращает очередь модерации.
func (s *ProductService) ListPending(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	return s.repo.ListPendingProducts(ctx, limit, offset)
}

// Moderate применяет решение модератора и публикует ровно одно письмо:
// об одобрении или об отклонении. Решение уже принято вызывающей стороной,
// сервис его не пересматривает.
func (s *ProductService) Moderate(ctx context.Context, req models.DummyProductStatus) error {
	count, err := s.repo.UpdateProductStatus(ctx, req.ProductID, req.Status, req.QueuePosition, req.AdminNotes)
	if err != nil {
		return fmt.Errorf("failed to update product status: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("product %d: %w", req.ProductID, ErrProductNotFound)
	}

	product, err := s.repo.ReadProduct(ctx, req.ProductID)
	if err == nil {
		if err := s.cache.Invalidate(weekCacheKey(product.WeekID)); err != nil {
			s.log.Warn("cache invalidation failed", sl.Err(err))
		}
	}

	info := models.ProductStatusInfo{
		Email:       req.UserEmail,
		ProductName: req.ProductName,
		Status:      req.Status,
		AdminNotes:  req.AdminNotes,
	}
	if err := s.publisher.Publish(rabbitmq.Exchange, rabbitmq.RoutingKeyProductStatus, info); err != nil {
		return fmt.Errorf("failed to publish status notification: %w", err)
	}
	return nil
}
