package models

import "time"

// Comment представляет комментарий к продукту. Комментарии неизменяемы
// после создания: путей редактирования и удаления нет.
type Comment struct {
	ID        int       `json:"id"`
	Content   string    `json:"content"`
	AuthorUID string    `json:"author_uid"`
	ProductID int       `json:"product_id"`
	WeekID    string    `json:"week_id"`
	CreatedAt time.Time `json:"created_at"`
}

// DummyComment используется для приёма данных из JSON-запроса на создание комментария.
type DummyComment struct {
	Content   string `json:"content" validate:"required"`    // Текст комментария
	ProductID int    `json:"productId" validate:"required"`  // Продукт
	WeekID    string `json:"weekId" validate:"required"`     // Неделя запуска
}
