package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/launchboard/launch-board/internal/config"
	"github.com/launchboard/launch-board/internal/lemonsqueezy"
	"github.com/launchboard/launch-board/internal/models"
)

// MockRepository реализует интерфейс PaymentRepository
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreatePayment(ctx context.Context, payment models.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *MockRepository) UpdatePaymentCheckoutURL(ctx context.Context, paymentID, checkoutURL string) error {
	args := m.Called(ctx, paymentID, checkoutURL)
	return args.Error(0)
}

func (m *MockRepository) MarkPaymentPaid(ctx context.Context, paymentID, orderID, customerID, receiptURL string) (*models.Payment, error) {
	args := m.Called(ctx, paymentID, orderID, customerID, receiptURL)
	if res := args.Get(0); res != nil {
		return res.(*models.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) MarkPaymentRefundedByOrderID(ctx context.Context, orderID string) (int, error) {
	args := m.Called(ctx, orderID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepository) ListPaymentsByUser(ctx context.Context, userUID string, limit, offset int) ([]*models.Payment, error) {
	args := m.Called(ctx, userUID, limit, offset)
	if res := args.Get(0); res != nil {
		return res.([]*models.Payment), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) PromoteProductToFront(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) SetProductFeatured(ctx context.Context, id int) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) ReadProduct(ctx context.Context, id int) (*models.Product, error) {
	args := m.Called(ctx, id)
	if res := args.Get(0); res != nil {
		return res.(*models.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRepository) RecordWebhookEvent(ctx context.Context, provider, eventID, eventType string, payload []byte) (int, bool, error) {
	args := m.Called(ctx, provider, eventID, eventType, payload)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *MockRepository) MarkWebhookEventProcessed(ctx context.Context, id int, processingError string) error {
	args := m.Called(ctx, id, processingError)
	return args.Error(0)
}

// MockProvider реализует интерфейс ProviderClient
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) CreateCheckout(variantID, redirectURL string, custom lemonsqueezy.CustomData) (*lemonsqueezy.CreateCheckoutResponse, error) {
	args := m.Called(variantID, redirectURL, custom)
	if res := args.Get(0); res != nil {
		return res.(*lemonsqueezy.CreateCheckoutResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockCache реализует интерфейс Cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Invalidate(key string) error {
	args := m.Called(key)
	return args.Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func testConfig() config.LemonSqueezy {
	return config.LemonSqueezy{
		SkipQueueVariantID:  "variant-skip",
		FeaturedVariantID:   "variant-featured",
		CheckoutRedirectURL: "https://board.dev/thanks",
	}
}

func orderCreatedPayload(paymentID, orderID string) *lemonsqueezy.WebhookPayload {
	p := &lemonsqueezy.WebhookPayload{}
	p.Meta.EventName = lemonsqueezy.EventOrderCreated
	p.Meta.WebhookID = "wh-" + orderID
	p.Meta.CustomData.PaymentID = paymentID
	p.Data.ID = orderID
	p.Data.Attributes.CustomerID = 77
	p.Data.Attributes.URLs.Receipt = "https://app.lemonsqueezy.com/receipt/" + orderID
	return p
}

func TestCreateCheckout(t *testing.T) {
	tests := []struct {
		name          string
		req           models.DummyCheckout
		setupMocks    func(*MockRepository, *MockProvider)
		expectedURL   string
		expectedError bool
	}{
		{
			name: "пропуск очереди: фиксированная цена и вариант",
			req:  models.DummyCheckout{PaymentType: models.PaymentTypeSkipQueue, ProductID: 42},
			setupMocks: func(r *MockRepository, p *MockProvider) {
				r.On("CreatePayment", mock.Anything, mock.MatchedBy(func(pay models.Payment) bool {
					return pay.Amount == 900 && pay.Status == models.PaymentStatusPending &&
						pay.PaymentType == models.PaymentTypeSkipQueue && pay.ID != ""
				})).Return(nil).Once()
				resp := &lemonsqueezy.CreateCheckoutResponse{}
				resp.Data.Attributes.URL = "https://store.lemonsqueezy.com/checkout/abc"
				p.On("CreateCheckout", "variant-skip", "https://board.dev/thanks", mock.MatchedBy(func(c lemonsqueezy.CustomData) bool {
					return c.PaymentID != "" && c.UserUID == "user-1" && c.ProductID == "42"
				})).Return(resp, nil).Once()
				r.On("UpdatePaymentCheckoutURL", mock.Anything, mock.Anything, "https://store.lemonsqueezy.com/checkout/abc").
					Return(nil).Once()
			},
			expectedURL: "https://store.lemonsqueezy.com/checkout/abc",
		},
		{
			name: "продвижение продукта: свой тариф",
			req:  models.DummyCheckout{PaymentType: models.PaymentTypeFeaturedProduct, ProductID: 7},
			setupMocks: func(r *MockRepository, p *MockProvider) {
				r.On("CreatePayment", mock.Anything, mock.MatchedBy(func(pay models.Payment) bool {
					return pay.Amount == 2900
				})).Return(nil).Once()
				resp := &lemonsqueezy.CreateCheckoutResponse{}
				resp.Data.Attributes.URL = "https://store.lemonsqueezy.com/checkout/def"
				p.On("CreateCheckout", "variant-featured", mock.Anything, mock.Anything).Return(resp, nil).Once()
				r.On("UpdatePaymentCheckoutURL", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
			},
			expectedURL: "https://store.lemonsqueezy.com/checkout/def",
		},
		{
			name:          "неизвестный тип платежа",
			req:           models.DummyCheckout{PaymentType: "free_lunch", ProductID: 1},
			setupMocks:    func(_ *MockRepository, _ *MockProvider) {},
			expectedError: true,
		},
		{
			name: "ошибка провайдера: ссылка не возвращается",
			req:  models.DummyCheckout{PaymentType: models.PaymentTypeSkipQueue, ProductID: 1},
			setupMocks: func(r *MockRepository, p *MockProvider) {
				r.On("CreatePayment", mock.Anything, mock.Anything).Return(nil).Once()
				p.On("CreateCheckout", mock.Anything, mock.Anything, mock.Anything).
					Return(nil, errors.New("provider unavailable")).Once()
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			provider := new(MockProvider)
			cache := new(MockCache)
			tt.setupMocks(repo, provider)

			service := New(repo, provider, cache, testConfig(), newNoopLogger())

			url, err := service.CreateCheckout(context.Background(), "user-1", tt.req)
			if tt.expectedError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedURL, url)
			}

			repo.AssertExpectations(t)
			provider.AssertExpectations(t)
		})
	}
}

func TestProcessWebhookEvent_OrderCreated(t *testing.T) {
	tests := []struct {
		name          string
		payload       *lemonsqueezy.WebhookPayload
		setupMocks    func(*MockRepository, *MockCache)
		expectedError bool
	}{
		{
			name:    "оплата пропуска очереди продвигает продукт",
			payload: orderCreatedPayload("pay-1", "order-1"),
			setupMocks: func(r *MockRepository, c *MockCache) {
				r.On("RecordWebhookEvent", mock.Anything, "lemonsqueezy", "wh-order-1", "order_created", mock.Anything).
					Return(1, true, nil).Once()
				paid := &models.Payment{
					ID: "pay-1", ProductID: 42, OrderID: "order-1",
					PaymentType: models.PaymentTypeSkipQueue, Status: models.PaymentStatusPaid,
				}
				r.On("MarkPaymentPaid", mock.Anything, "pay-1", "order-1", "77",
					"https://app.lemonsqueezy.com/receipt/order-1").Return(paid, nil).Once()
				r.On("PromoteProductToFront", mock.Anything, 42).Return(nil).Once()
				r.On("ReadProduct", mock.Anything, 42).
					Return(&models.Product{ID: 42, WeekID: "2026-W35"}, nil).Once()
				c.On("Invalidate", "products:week:2026-W35").Return(nil).Once()
				r.On("MarkWebhookEventProcessed", mock.Anything, 1, "").Return(nil).Once()
			},
		},
		{
			name:    "оплата продвижения помечает продукт featured",
			payload: orderCreatedPayload("pay-2", "order-2"),
			setupMocks: func(r *MockRepository, c *MockCache) {
				r.On("RecordWebhookEvent", mock.Anything, "lemonsqueezy", "wh-order-2", "order_created", mock.Anything).
					Return(2, true, nil).Once()
				paid := &models.Payment{
					ID: "pay-2", ProductID: 7, OrderID: "order-2",
					PaymentType: models.PaymentTypeFeaturedProduct, Status: models.PaymentStatusPaid,
				}
				r.On("MarkPaymentPaid", mock.Anything, "pay-2", "order-2", "77", mock.Anything).
					Return(paid, nil).Once()
				r.On("SetProductFeatured", mock.Anything, 7).Return(nil).Once()
				r.On("ReadProduct", mock.Anything, 7).
					Return(&models.Product{ID: 7, WeekID: "2026-W35"}, nil).Once()
				c.On("Invalidate", "products:week:2026-W35").Return(nil).Once()
				r.On("MarkWebhookEventProcessed", mock.Anything, 2, "").Return(nil).Once()
			},
		},
		{
			name:    "повторная доставка игнорируется по журналу",
			payload: orderCreatedPayload("pay-1", "order-1"),
			setupMocks: func(r *MockRepository, _ *MockCache) {
				r.On("RecordWebhookEvent", mock.Anything, "lemonsqueezy", "wh-order-1", "order_created", mock.Anything).
					Return(0, false, nil).Once()
				// MarkPaymentPaid не ожидается: событие уже обработано
			},
		},
		{
			name:    "поздний order_created после возврата не отменяет его",
			payload: orderCreatedPayload("pay-1", "order-9"),
			setupMocks: func(r *MockRepository, _ *MockCache) {
				r.On("RecordWebhookEvent", mock.Anything, "lemonsqueezy", "wh-order-9", "order_created", mock.Anything).
					Return(9, true, nil).Once()
				refunded := &models.Payment{
					ID: "pay-1", ProductID: 42, OrderID: "order-1",
					PaymentType: models.PaymentTypeSkipQueue, Status: models.PaymentStatusRefunded,
				}
				r.On("MarkPaymentPaid", mock.Anything, "pay-1", "order-9", "77", mock.Anything).
					Return(refunded, nil).Once()
				// Ни продвижения, ни сброса кеша: возврат необратим
				r.On("MarkWebhookEventProcessed", mock.Anything, 9, "").Return(nil).Once()
			},
		},
		{
			name: "событие без payment_id в custom data",
			payload: func() *lemonsqueezy.WebhookPayload {
				p := orderCreatedPayload("", "order-3")
				return p
			}(),
			setupMocks: func(r *MockRepository, _ *MockCache) {
				r.On("RecordWebhookEvent", mock.Anything, "lemonsqueezy", "wh-order-3", "order_created", mock.Anything).
					Return(3, true, nil).Once()
				r.On("MarkWebhookEventProcessed", mock.Anything, 3,
					mock.MatchedBy(func(s string) bool { return s != "" })).Return(nil).Once()
			},
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockRepository)
			cache := new(MockCache)
			tt.setupMocks(repo, cache)

			service := New(repo, new(MockProvider), cache, testConfig(), newNoopLogger())

			err := service.ProcessWebhookEvent(context.Background(), tt.payload, []byte(`{}`))
			if tt.expectedError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			repo.AssertExpectations(t)
			cache.AssertExpectations(t)
		})
	}
}

func TestProcessWebhookEvent_OrderRefunded(t *testing.T) {
	payload := &lemonsqueezy.WebhookPayload{}
	payload.Meta.EventName = lemonsqueezy.EventOrderRefunded
	payload.Meta.WebhookID = "wh-refund-1"
	payload.Data.ID = "order-1"

	t.Run("возврат применяется независимо от прежнего статуса", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("RecordWebhookEvent", mock.Anything, "lemonsqueezy", "wh-refund-1", "order_refunded", mock.Anything).
			Return(5, true, nil).Once()
		repo.On("MarkPaymentRefundedByOrderID", mock.Anything, "order-1").Return(1, nil).Once()
		repo.On("MarkWebhookEventProcessed", mock.Anything, 5, "").Return(nil).Once()

		service := New(repo, new(MockProvider), new(MockCache), testConfig(), newNoopLogger())

		err := service.ProcessWebhookEvent(context.Background(), payload, []byte(`{}`))
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})

	t.Run("неизвестный заказ", func(t *testing.T) {
		repo := new(MockRepository)
		repo.On("RecordWebhookEvent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(6, true, nil).Once()
		repo.On("MarkPaymentRefundedByOrderID", mock.Anything, "order-1").Return(0, nil).Once()
		repo.On("MarkWebhookEventProcessed", mock.Anything, 6,
			mock.MatchedBy(func(s string) bool { return s != "" })).Return(nil).Once()

		service := New(repo, new(MockProvider), new(MockCache), testConfig(), newNoopLogger())

		err := service.ProcessWebhookEvent(context.Background(), payload, []byte(`{}`))
		assert.ErrorIs(t, err, ErrOrderNotFound)
		repo.AssertExpectations(t)
	})
}

func TestProcessWebhookEvent_UnknownEvent(t *testing.T) {
	payload := &lemonsqueezy.WebhookPayload{}
	payload.Meta.EventName = "subscription_created"
	payload.Meta.WebhookID = "wh-x-1"
	payload.Data.ID = "sub-1"

	repo := new(MockRepository)
	repo.On("RecordWebhookEvent", mock.Anything, "lemonsqueezy", "wh-x-1", "subscription_created", mock.Anything).
		Return(9, true, nil).Once()
	repo.On("MarkWebhookEventProcessed", mock.Anything, 9, "").Return(nil).Once()

	service := New(repo, new(MockProvider), new(MockCache), testConfig(), newNoopLogger())

	err := service.ProcessWebhookEvent(context.Background(), payload, []byte(`{}`))
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

// ledgerEntry состояние записи журнала: в работе, завершена, завершена с ошибкой.
type ledgerEntry struct {
	id     int
	done   bool
	failed bool
}

// fakeLedgerRepo потокобезопасная подделка хранилища с семантикой журнала:
// доставку обрабатывает ровно один вызов, дубликаты отклоняются, но событие,
// чья обработка завершилась ошибкой, забирается в работу повторно.
type fakeLedgerRepo struct {
	MockRepository

	mu        sync.Mutex
	events    map[string]*ledgerEntry
	nextID    int
	failPaid  int
	paidCalls int
	promotes  int
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{events: make(map[string]*ledgerEntry)}
}

func (f *fakeLedgerRepo) RecordWebhookEvent(_ context.Context, provider, eventID, _ string, _ []byte) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := provider + ":" + eventID
	if entry, ok := f.events[key]; ok {
		if entry.done && entry.failed {
			entry.done = false
			entry.failed = false
			return entry.id, true, nil
		}
		return 0, false, nil
	}
	f.nextID++
	f.events[key] = &ledgerEntry{id: f.nextID}
	return f.nextID, true, nil
}

func (f *fakeLedgerRepo) MarkWebhookEventProcessed(_ context.Context, id int, processingError string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, entry := range f.events {
		if entry.id == id {
			entry.done = true
			entry.failed = processingError != ""
		}
	}
	return nil
}

func (f *fakeLedgerRepo) MarkPaymentPaid(_ context.Context, paymentID, orderID, customerID, receiptURL string) (*models.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPaid > 0 {
		f.failPaid--
		return nil, errors.New("connection reset")
	}
	f.paidCalls++
	return &models.Payment{
		ID: paymentID, ProductID: 42, OrderID: orderID,
		PaymentType: models.PaymentTypeSkipQueue, Status: models.PaymentStatusPaid,
	}, nil
}

func (f *fakeLedgerRepo) PromoteProductToFront(_ context.Context, _ int) error {
	f.mu.Lock()
	f.promotes++
	f.mu.Unlock()
	return nil
}

func (f *fakeLedgerRepo) ReadProduct(_ context.Context, id int) (*models.Product, error) {
	return &models.Product{ID: id, WeekID: "2026-W35"}, nil
}

// Две конкурентные доставки одного события: журнал пропускает ровно одну,
// побочный эффект применяется один раз.
func TestProcessWebhookEvent_ConcurrentDeliveries(t *testing.T) {
	payload := orderCreatedPayload("pay-1", "order-1")

	repo := newFakeLedgerRepo()
	cache := new(MockCache)
	cache.On("Invalidate", "products:week:2026-W35").Return(nil)

	service := New(repo, new(MockProvider), cache, testConfig(), newNoopLogger())

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = service.ProcessWebhookEvent(context.Background(), payload, []byte(`{}`))
		}(i)
	}
	wg.Wait()

	assert.NoError(t, errs[0])
	assert.NoError(t, errs[1])
	assert.Equal(t, 1, repo.paidCalls, "payment must be marked paid exactly once")
	assert.Equal(t, 1, repo.promotes, "product must be promoted exactly once")
}

// Сбой обработки не теряет платеж: провайдер повторяет доставку после не-2xx
// ответа, и журнал обязан пропустить её в обработку заново.
func TestProcessWebhookEvent_RetryAfterFailure(t *testing.T) {
	payload := orderCreatedPayload("pay-1", "order-1")

	repo := newFakeLedgerRepo()
	repo.failPaid = 1
	cache := new(MockCache)
	cache.On("Invalidate", "products:week:2026-W35").Return(nil)

	service := New(repo, new(MockProvider), cache, testConfig(), newNoopLogger())

	err := service.ProcessWebhookEvent(context.Background(), payload, []byte(`{}`))
	require.Error(t, err)
	assert.Equal(t, 0, repo.paidCalls)

	err = service.ProcessWebhookEvent(context.Background(), payload, []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, 1, repo.paidCalls, "retried delivery must mark the payment paid")
	assert.Equal(t, 1, repo.promotes)

	// Успешно обработанное событие больше не обрабатывается.
	err = service.ProcessWebhookEvent(context.Background(), payload, []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, 1, repo.paidCalls)
	assert.Equal(t, 1, repo.promotes)
}
