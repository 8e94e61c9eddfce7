package repository

import (
	"context"
	"fmt"

	"github.com/launchboard/launch-board/internal/models"
)

// CreateProduct вставляет новую заявку на запуск продукта и возвращает её ID.
// Позиция в очереди назначается следующей свободной в рамках недели.
func (s *Storage) CreateProduct(ctx context.Context, product models.Product) (int, error) {
	const op = "storage.CreateProduct"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO products (name, tagline, description, website_url, logo_url,
			      owner_uid, status, queue_position, week_id, is_featured, admin_notes)
			  VALUES ($1, $2, $3, $4, $5, $6, $7,
			      (SELECT COALESCE(MAX(queue_position), 0) + 1 FROM products WHERE week_id = $8),
			      $8, false, '')
			  RETURNING id`
	var newID int
	err := s.DB.QueryRowContext(ctx, query,
		product.Name, product.Tagline, product.Description, product.WebsiteURL, product.LogoURL,
		product.OwnerUID, product.Status, product.WeekID).Scan(&newID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return newID, nil
}

// ReadProduct возвращает данные продукта по его ID.
func (s *Storage) ReadProduct(ctx context.Context, id int) (*models.Product, error) {
	const op = "storage.ReadProduct"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, tagline, description, website_url, logo_url, owner_uid,
			      status, queue_position, week_id, is_featured, admin_notes, created_at
			  FROM products WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.Product
	if err := row.Scan(&result.ID, &result.Name, &result.Tagline, &result.Description,
		&result.WebsiteURL, &result.LogoURL, &result.OwnerUID, &result.Status,
		&result.QueuePosition, &result.WeekID, &result.IsFeatured, &result.AdminNotes,
		&result.CreatedAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &result, nil
}

// ListApprovedProducts возвращает одобренные продукты недели
// в порядке позиции в очереди, продвигаемые первыми.
func (s *Storage) ListApprovedProducts(ctx context.Context, weekID string) ([]*models.Product, error) {
	const op = "storage.ListApprovedProducts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, tagline, description, website_url, logo_url, owner_uid,
			      status, queue_position, week_id, is_featured, admin_notes, created_at
			  FROM products
			  WHERE week_id = $1 AND status = 'approved'
			  ORDER BY is_featured DESC, queue_position`
	rows, err := s.DB.QueryContext(ctx, query, weekID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Product
	for rows.Next() {
		var item models.Product
		if err := rows.Scan(&item.ID, &item.Name, &item.Tagline, &item.Description,
			&item.WebsiteURL, &item.LogoURL, &item.OwnerUID, &item.Status,
			&item.QueuePosition, &item.WeekID, &item.IsFeatured, &item.AdminNotes,
			&item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListPendingProducts возвращает ожидающие модерации продукты для панели администратора.
func (s *Storage) ListPendingProducts(ctx context.Context, limit, offset int) ([]*models.Product, error) {
	const op = "storage.ListPendingProducts"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, tagline, description, website_url, logo_url, owner_uid,
			      status, queue_position, week_id, is_featured, admin_notes, created_at
			  FROM products
			  WHERE status = 'pending'
			  ORDER BY created_at
			  LIMIT $1 OFFSET $2`
	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Product
	for rows.Next() {
		var item models.Product
		if err := rows.Scan(&item.ID, &item.Name, &item.Tagline, &item.Description,
			&item.WebsiteURL, &item.LogoURL, &item.OwnerUID, &item.Status,
			&item.QueuePosition, &item.WeekID, &item.IsFeatured, &item.AdminNotes,
			&item.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// UpdateProductStatus применяет решение модератора: статус, позицию в очереди
// и заметки. Позиция меняется только если передан ненулевой указатель.
// Возвращает количество изменённых строк.
func (s *Storage) UpdateProductStatus(ctx context.Context, id int, status string, queuePosition *int, adminNotes string) (int, error) {
	const op = "storage.UpdateProductStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE products
			  SET status = $1,
			      queue_position = COALESCE($2, queue_position),
			      admin_notes = $3
			  WHERE id = $4`
	result, err := s.DB.ExecContext(ctx, query, status, queuePosition, adminNotes, id)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapError(err))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// PromoteProductToFront перемещает продукт в начало очереди своей недели.
// Позиция очереди справочная: конкурентные правки администраторов не сериализуются.
func (s *Storage) PromoteProductToFront(ctx context.Context, id int) error {
	const op = "storage.PromoteProductToFront"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE products
			  SET queue_position = (
			      SELECT COALESCE(MIN(queue_position), 1) - 1
			      FROM products
			      WHERE week_id = (SELECT week_id FROM products WHERE id = $1)
			  )
			  WHERE id = $1`
	_, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// SetProductFeatured отмечает продукт как продвигаемый.
func (s *Storage) SetProductFeatured(ctx context.Context, id int) error {
	const op = "storage.SetProductFeatured"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE products SET is_featured = true WHERE id = $1`
	_, err := s.DB.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// GetProductOwner возвращает владельца продукта вместе с названием продукта.
// Используется для адресации писем-уведомлений.
func (s *Storage) GetProductOwner(ctx context.Context, productID int) (*models.User, string, error) {
	const op = "storage.GetProductOwner"
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT u.uid, u.email, u.username, u.password_hash, u.role, u.created_at, p.name
			  FROM products p
			  JOIN users u ON p.owner_uid = u.uid
			  WHERE p.id = $1`
	u := &models.User{}
	var productName string
	row := s.DB.QueryRowContext(ctx, query, productID)
	if err := row.Scan(&u.UID, &u.Email, &u.Username, &u.PasswordHash,
		&u.Role, &u.CreatedAt, &productName); err != nil {
		return nil, "", fmt.Errorf("%s: %w", op, mapError(err))
	}
	return u, productName, nil
}
