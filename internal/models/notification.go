package models

// ProductStatusInfo сообщение для очереди notification.product_status:
// письмо владельцу о решении модерации.
type ProductStatusInfo struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	ProductName string `json:"product_name"`
	Status      string `json:"status"` // approved или rejected
	AdminNotes  string `json:"admin_notes,omitempty"`
}

// CommentInfo сообщение для очереди notification.comment:
// письмо владельцу продукта о новом комментарии.
type CommentInfo struct {
	Email          string `json:"email"` // Почта владельца продукта
	OwnerUsername  string `json:"owner_username"`
	ProductName    string `json:"product_name"`
	AuthorUsername string `json:"author_username"`
	Content        string `json:"content"`
}
