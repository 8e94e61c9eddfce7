package models

import "time"

// Типы платежей: пропуск очереди и продвижение продукта.
const (
	PaymentTypeSkipQueue       = "skip_queue"
	PaymentTypeFeaturedProduct = "featured_product"
)

// Статусы платежа. Переход статусов однонаправленный:
// pending -> paid, paid -> refunded; возврата из refunded нет.
const (
	PaymentStatusPending  = "pending"
	PaymentStatusPaid     = "paid"
	PaymentStatusRefunded = "refunded"
)

// Payment представляет платеж за пропуск очереди или продвижение продукта.
// Создается в статусе pending при начале оплаты; в paid и refunded
// переводится только обработчиком вебхука провайдера.
type Payment struct {
	ID          string     `json:"id"`           // UUID платежа, передается провайдеру как custom data
	UserUID     string     `json:"user_uid"`     // Плательщик
	ProductID   int        `json:"product_id"`   // Продукт, за который платят
	PaymentType string     `json:"payment_type"` // skip_queue или featured_product
	Status      string     `json:"status"`       // pending, paid, refunded
	Amount      int64      `json:"amount"`       // Сумма в минорных единицах
	Currency    string     `json:"currency"`     // Валюта, ISO 4217
	OrderID     string     `json:"order_id"`     // Идентификатор заказа у провайдера
	CustomerID  string     `json:"customer_id"`  // Идентификатор покупателя у провайдера
	CheckoutURL string     `json:"checkout_url"` // Ссылка на страницу оплаты
	ReceiptURL  string     `json:"receipt_url"`  // Ссылка на чек
	CreatedAt   time.Time  `json:"created_at"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
}

// DummyCheckout используется для приёма данных из JSON-запроса начала оплаты.
type DummyCheckout struct {
	PaymentType string `json:"paymentType" validate:"required,oneof=skip_queue featured_product"`
	ProductID   int    `json:"productId" validate:"required"`
}
