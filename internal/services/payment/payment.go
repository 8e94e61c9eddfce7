// Package services содержит бизнес-логику платежей: создание чекаутов
// у провайдера и применение событий его вебхуков.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/launchboard/launch-board/internal/config"
	"github.com/launchboard/launch-board/internal/lemonsqueezy"
	"github.com/launchboard/launch-board/internal/lib/sl"
	"github.com/launchboard/launch-board/internal/models"
)

// Фиксированные тарифы. Цена выводится из типа платежа, клиент её не передает.
const (
	priceSkipQueue       int64 = 900  // USD, минорные единицы
	priceFeaturedProduct int64 = 2900 // USD, минорные единицы
)

// ErrOrderNotFound заказ с указанным идентификатором отсутствует в платежах.
var ErrOrderNotFound = errors.New("order not found")

// PaymentRepository определяет методы хранилища, которые нужны платежам.
type PaymentRepository interface {
	CreatePayment(ctx context.Context, payment models.Payment) error
	UpdatePaymentCheckoutURL(ctx context.Context, paymentID, checkoutURL string) error
	MarkPaymentPaid(ctx context.Context, paymentID, orderID, customerID, receiptURL string) (*models.Payment, error)
	MarkPaymentRefundedByOrderID(ctx context.Context, orderID string) (int, error)
	ListPaymentsByUser(ctx context.Context, userUID string, limit, offset int) ([]*models.Payment, error)
	PromoteProductToFront(ctx context.Context, id int) error
	SetProductFeatured(ctx context.Context, id int) error
	ReadProduct(ctx context.Context, id int) (*models.Product, error)
	RecordWebhookEvent(ctx context.Context, provider, eventID, eventType string, payload []byte) (int, bool, error)
	MarkWebhookEventProcessed(ctx context.Context, id int, processingError string) error
}

// ProviderClient определяет интерфейс для работы с платежным провайдером.
type ProviderClient interface {
	CreateCheckout(variantID, redirectURL string, custom lemonsqueezy.CustomData) (*lemonsqueezy.CreateCheckoutResponse, error)
}

// Cache описывает методы для инвалидации кеша витрины.
type Cache interface {
	Invalidate(key string) error
}

// PaymentService реализует создание чекаутов и обработку вебхуков провайдера.
type PaymentService struct {
	repo     PaymentRepository
	provider ProviderClient
	cache    Cache
	cfg      config.LemonSqueezy
	log      *slog.Logger
}

// New создает новый экземпляр PaymentService.
func New(repo PaymentRepository, provider ProviderClient, cache Cache, cfg config.LemonSqueezy, log *slog.Logger) *PaymentService {
	return &PaymentService{
		repo:     repo,
		provider: provider,
		cache:    cache,
		cfg:      cfg,
		log:      log,
	}
}

// priceFor возвращает цену и идентификатор варианта для типа платежа.
func (s *PaymentService) priceFor(paymentType string) (int64, string, error) {
	switch paymentType {
	case models.PaymentTypeSkipQueue:
		return priceSkipQueue, s.cfg.SkipQueueVariantID, nil
	case models.PaymentTypeFeaturedProduct:
		return priceFeaturedProduct, s.cfg.FeaturedVariantID, nil
	default:
		return 0, "", fmt.Errorf("unknown payment type: %s", paymentType)
	}
}

// CreateCheckout создает платеж в статусе pending, запрашивает у провайдера
// чекаут с вложенными идентификаторами платежа, пользователя и продукта,
// сохраняет ссылку и возвращает её. Проверки на уже оплаченный продукт нет:
// повторные pending-платежи допустимы.
func (s *PaymentService) CreateCheckout(ctx context.Context, userUID string, req models.DummyCheckout) (string, error) {
	amount, variantID, err := s.priceFor(req.PaymentType)
	if err != nil {
		return "", err
	}

	payment := models.Payment{
		ID:          uuid.New().String(),
		UserUID:     userUID,
		ProductID:   req.ProductID,
		PaymentType: req.PaymentType,
		Status:      models.PaymentStatusPending,
		Amount:      amount,
		Currency:    "USD",
	}
	if err := s.repo.CreatePayment(ctx, payment); err != nil {
		return "", fmt.Errorf("failed to create payment: %w", err)
	}

	custom := lemonsqueezy.CustomData{
		PaymentID: payment.ID,
		UserUID:   userUID,
		ProductID: fmt.Sprintf("%d", req.ProductID),
	}
	checkout, err := s.provider.CreateCheckout(variantID, s.cfg.CheckoutRedirectURL, custom)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout: %w", err)
	}

	checkoutURL := checkout.Data.Attributes.URL
	if err := s.repo.UpdatePaymentCheckoutURL(ctx, payment.ID, checkoutURL); err != nil {
		return "", fmt.Errorf("failed to persist checkout url: %w", err)
	}
	return checkoutURL, nil
}

// ListPayments возвращает платежи пользователя.
func (s *PaymentService) ListPayments(ctx context.Context, userUID string, limit, offset int) ([]*models.Payment, error) {
	return s.repo.ListPaymentsByUser(ctx, userUID, limit, offset)
}

// ProcessWebhookEvent применяет событие вебхука. Доставка сначала фиксируется
// в журнале: успешно обработанное событие подтверждается без повторной
// обработки, а повторная доставка после сбоя обрабатывается заново.
// Неизвестные типы событий принимаются и игнорируются.
func (s *PaymentService) ProcessWebhookEvent(ctx context.Context, payload *lemonsqueezy.WebhookPayload, rawBody []byte) error {
	eventID := payload.Meta.WebhookID
	if eventID == "" {
		eventID = payload.Meta.EventName + ":" + payload.Data.ID
	}

	ledgerID, first, err := s.repo.RecordWebhookEvent(ctx, "lemonsqueezy", eventID, payload.Meta.EventName, rawBody)
	if err != nil {
		return fmt.Errorf("failed to record webhook event: %w", err)
	}
	if !first {
		s.log.Info("duplicate webhook delivery ignored",
			slog.String("event", payload.Meta.EventName), slog.String("event_id", eventID))
		return nil
	}

	processErr := s.applyEvent(ctx, payload)

	errText := ""
	if processErr != nil {
		errText = processErr.Error()
	}
	if err := s.repo.MarkWebhookEventProcessed(ctx, ledgerID, errText); err != nil {
		s.log.Error("failed to mark webhook event processed", sl.Err(err))
	}
	return processErr
}

func (s *PaymentService) applyEvent(ctx context.Context, payload *lemonsqueezy.WebhookPayload) error {
	switch payload.Meta.EventName {
	case lemonsqueezy.EventOrderCreated:
		return s.handleOrderCreated(ctx, payload)
	case lemonsqueezy.EventOrderRefunded:
		return s.handleOrderRefunded(ctx, payload)
	default:
		// Неизвестные события принимаются без обработки: задел на новые
		// типы событий провайдера.
		s.log.Info("ignored webhook event", slog.String("event", payload.Meta.EventName))
		return nil
	}
}

// handleOrderCreated находит pending-платеж по payment_id из custom data,
// переводит его в paid и открывает купленную возможность: пропуск очереди
// или продвижение продукта.
func (s *PaymentService) handleOrderCreated(ctx context.Context, payload *lemonsqueezy.WebhookPayload) error {
	paymentID := payload.Meta.CustomData.PaymentID
	if paymentID == "" {
		return errors.New("order_created without payment_id in custom data")
	}

	customerID := fmt.Sprintf("%d", payload.Data.Attributes.CustomerID)
	payment, err := s.repo.MarkPaymentPaid(ctx, paymentID,
		payload.Data.ID, customerID, payload.Data.Attributes.URLs.Receipt)
	if err != nil {
		return fmt.Errorf("failed to mark payment paid: %w", err)
	}
	if payment.Status == models.PaymentStatusRefunded {
		// Возврат необратим: поздний или повторно отправленный order_created
		// не возвращает платеж в paid и не открывает купленную возможность.
		s.log.Info("order_created for refunded payment ignored",
			slog.String("payment_id", payment.ID))
		return nil
	}

	switch payment.PaymentType {
	case models.PaymentTypeSkipQueue:
		if err := s.repo.PromoteProductToFront(ctx, payment.ProductID); err != nil {
			return fmt.Errorf("failed to promote product: %w", err)
		}
	case models.PaymentTypeFeaturedProduct:
		if err := s.repo.SetProductFeatured(ctx, payment.ProductID); err != nil {
			return fmt.Errorf("failed to feature product: %w", err)
		}
	}
	s.invalidateWeekCache(ctx, payment.ProductID)

	s.log.Info("payment marked paid",
		slog.String("payment_id", payment.ID),
		slog.String("order_id", payment.OrderID),
		slog.String("type", payment.PaymentType))
	return nil
}

// handleOrderRefunded переводит платеж в refunded по идентификатору заказа,
// независимо от текущего статуса. Повторная доставка — no-op.
func (s *PaymentService) handleOrderRefunded(ctx context.Context, payload *lemonsqueezy.WebhookPayload) error {
	count, err := s.repo.MarkPaymentRefundedByOrderID(ctx, payload.Data.ID)
	if err != nil {
		return fmt.Errorf("failed to mark payment refunded: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("order %s: %w", payload.Data.ID, ErrOrderNotFound)
	}
	s.log.Info("payment refunded", slog.String("order_id", payload.Data.ID))
	return nil
}

func (s *PaymentService) invalidateWeekCache(ctx context.Context, productID int) {
	product, err := s.repo.ReadProduct(ctx, productID)
	if err != nil {
		s.log.Warn("failed to read product for cache invalidation", sl.Err(err))
		return
	}
	if err := s.cache.Invalidate("products:week:" + product.WeekID); err != nil {
		s.log.Warn("cache invalidation failed", sl.Err(err))
	}
}
