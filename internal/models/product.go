package models

import "time"

// Статусы модерации продукта.
const (
	ProductStatusPending  = "pending"
	ProductStatusApproved = "approved"
	ProductStatusRejected = "rejected"
)

// Product представляет заявку на запуск продукта,
// используемую в бизнес-логике и хранилище.
type Product struct {
	ID            int       // Идентификатор продукта
	Name          string    // Название продукта
	Tagline       string    // Короткий слоган
	Description   string    // Описание продукта
	WebsiteURL    string    // Ссылка на сайт продукта
	LogoURL       string    // Ссылка на логотип
	OwnerUID      string    // Владелец продукта
	Status        string    // Статус модерации: pending, approved, rejected
	QueuePosition int       // Позиция в очереди запуска недели
	WeekID        string    // Неделя запуска, формат 2006-W02
	IsFeatured    bool      // Оплаченное продвижение в топ страницы
	AdminNotes    string    // Заметки модератора
	CreatedAt     time.Time // Дата подачи заявки
}

// DummyProduct используется для приёма данных из JSON-запроса на подачу продукта,
// прежде чем конвертировать их в Product.
type DummyProduct struct {
	Name        string `json:"name" validate:"required"`         // Название продукта
	Tagline     string `json:"tagline" validate:"required"`      // Слоган
	Description string `json:"description" validate:"required"`  // Описание
	WebsiteURL  string `json:"website_url" validate:"required"`  // Сайт
	LogoURL     string `json:"logo_url" validate:"omitempty"`    // Логотип (опционально)
	WeekID      string `json:"week_id" validate:"required"`      // Неделя запуска
}

// DummyProductStatus используется для приёма решения модератора.
// Все обязательные поля проверяются до каких-либо побочных эффектов.
type DummyProductStatus struct {
	ProductID     int    `json:"productId" validate:"required"`                            // Идентификатор продукта
	ProductName   string `json:"productName" validate:"required"`                          // Название для письма
	Status        string `json:"status" validate:"required,oneof=approved rejected"`       // Новый статус
	UserEmail     string `json:"userEmail" validate:"required,email"`                      // Почта владельца
	UserUID       string `json:"userId" validate:"required,uuid"`                          // Владелец продукта
	QueuePosition *int   `json:"queuePosition,omitempty" validate:"omitempty,gt=0"`        // Позиция в очереди (опционально)
	AdminNotes    string `json:"adminNotes,omitempty" validate:"omitempty"`                // Заметки модератора
}
