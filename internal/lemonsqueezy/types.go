// Package lemonsqueezy реализует клиент платежного провайдера Lemon Squeezy:
// создание чекаутов и типы для разбора вебхуков.
package lemonsqueezy

// Имена событий вебхука, которые обрабатывает сервис.
// Остальные события принимаются и игнорируются.
const (
	EventOrderCreated  = "order_created"
	EventOrderRefunded = "order_refunded"
)

// CustomData непрозрачные поля, которые сервис вкладывает в чекаут
// и получает обратно в вебхуке.
type CustomData struct {
	PaymentID string `json:"payment_id"`
	UserUID   string `json:"user_id"`
	ProductID string `json:"product_id"`
}

// WebhookPayload полезная нагрузка вебхука Lemon Squeezy.
type WebhookPayload struct {
	Meta struct {
		EventName  string     `json:"event_name"`
		WebhookID  string     `json:"webhook_id"`
		CustomData CustomData `json:"custom_data"`
	} `json:"meta"`
	Data struct {
		Type       string `json:"type"`
		ID         string `json:"id"` // идентификатор заказа
		Attributes struct {
			StoreID    int    `json:"store_id"`
			CustomerID int64  `json:"customer_id"`
			Identifier string `json:"identifier"`
			UserEmail  string `json:"user_email"`
			Currency   string `json:"currency"`
			Status     string `json:"status"`
			Total      int64  `json:"total"` // сумма в минорных единицах
			Refunded   bool   `json:"refunded"`
			URLs       struct {
				Receipt string `json:"receipt"`
			} `json:"urls"`
		} `json:"attributes"`
	} `json:"data"`
}

// CreateCheckoutRequest запрос создания чекаута в формате JSON:API.
type CreateCheckoutRequest struct {
	Data CheckoutData `json:"data"`
}

// CheckoutData тело запроса чекаута.
type CheckoutData struct {
	Type          string                `json:"type"`
	Attributes    CheckoutAttributes    `json:"attributes"`
	Relationships CheckoutRelationships `json:"relationships"`
}

// CheckoutAttributes атрибуты чекаута: custom data и настройки страницы.
type CheckoutAttributes struct {
	CheckoutData struct {
		Custom CustomData `json:"custom"`
	} `json:"checkout_data"`
	ProductOptions struct {
		RedirectURL string `json:"redirect_url,omitempty"`
	} `json:"product_options"`
}

// CheckoutRelationships связи чекаута с магазином и вариантом (тарифом).
type CheckoutRelationships struct {
	Store   Relationship `json:"store"`
	Variant Relationship `json:"variant"`
}

// Relationship единичная связь JSON:API.
type Relationship struct {
	Data RelationshipData `json:"data"`
}

// RelationshipData идентификатор связанного ресурса.
type RelationshipData struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// CreateCheckoutResponse ответ провайдера на создание чекаута.
type CreateCheckoutResponse struct {
	Data struct {
		ID         string `json:"id"`
		Attributes struct {
			URL string `json:"url"`
		} `json:"attributes"`
	} `json:"data"`
}
