package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/launchboard/launch-board/internal/models"
)

// CreatePayment сохраняет новый платеж в статусе pending.
func (s *Storage) CreatePayment(ctx context.Context, payment models.Payment) error {
	const op = "storage.CreatePayment"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO payments (id, user_uid, product_id, payment_type, status,
			      amount, currency, checkout_url)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := s.DB.ExecContext(ctx, query,
		payment.ID, payment.UserUID, payment.ProductID, payment.PaymentType,
		payment.Status, payment.Amount, payment.Currency, payment.CheckoutURL)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// UpdatePaymentCheckoutURL сохраняет ссылку на страницу оплаты после создания чекаута.
func (s *Storage) UpdatePaymentCheckoutURL(ctx context.Context, paymentID, checkoutURL string) error {
	const op = "storage.UpdatePaymentCheckoutURL"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payments SET checkout_url = $1 WHERE id = $2`
	_, err := s.DB.ExecContext(ctx, query, checkoutURL, paymentID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, mapError(err))
	}
	return nil
}

// ReadPayment возвращает платеж по его ID.
func (s *Storage) ReadPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	const op = "storage.ReadPayment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, product_id, payment_type, status, amount, currency,
			      order_id, customer_id, checkout_url, receipt_url, created_at, paid_at
			  FROM payments WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, paymentID)

	var result models.Payment
	if err := row.Scan(&result.ID, &result.UserUID, &result.ProductID, &result.PaymentType,
		&result.Status, &result.Amount, &result.Currency, &result.OrderID, &result.CustomerID,
		&result.CheckoutURL, &result.ReceiptURL, &result.CreatedAt, &result.PaidAt); err != nil {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}
	return &result, nil
}

// MarkPaymentPaid переводит платеж в статус paid, записывая данные заказа
// провайдера. Запись идемпотентна: повторное применение к уже оплаченному
// платежу не меняет результат. Возврат необратим: платеж в статусе refunded
// не трогается и возвращается как есть.
func (s *Storage) MarkPaymentPaid(ctx context.Context, paymentID, orderID, customerID, receiptURL string) (*models.Payment, error) {
	const op = "storage.MarkPaymentPaid"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payments
			  SET status = 'paid',
			      order_id = $1,
			      customer_id = $2,
			      receipt_url = $3,
			      paid_at = COALESCE(paid_at, NOW())
			  WHERE id = $4 AND status <> 'refunded'
			  RETURNING id, user_uid, product_id, payment_type, status, amount, currency,
			      order_id, customer_id, checkout_url, receipt_url, created_at, paid_at`
	row := s.DB.QueryRowContext(ctx, query, orderID, customerID, receiptURL, paymentID)

	var result models.Payment
	err := row.Scan(&result.ID, &result.UserUID, &result.ProductID, &result.PaymentType,
		&result.Status, &result.Amount, &result.Currency, &result.OrderID, &result.CustomerID,
		&result.CheckoutURL, &result.ReceiptURL, &result.CreatedAt, &result.PaidAt)
	if err == nil {
		return &result, nil
	}
	if !errors.Is(mapError(err), ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, mapError(err))
	}

	// Либо платежа нет, либо он уже возвращен.
	payment, readErr := s.ReadPayment(ctx, paymentID)
	if readErr != nil {
		return nil, fmt.Errorf("%s: %w", op, readErr)
	}
	return payment, nil
}

// MarkPaymentRefundedByOrderID переводит платеж в статус refunded по
// идентификатору заказа провайдера, независимо от текущего статуса.
// Возвращает количество изменённых строк.
func (s *Storage) MarkPaymentRefundedByOrderID(ctx context.Context, orderID string) (int, error) {
	const op = "storage.MarkPaymentRefundedByOrderID"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE payments SET status = 'refunded' WHERE order_id = $1`
	result, err := s.DB.ExecContext(ctx, query, orderID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, mapError(err))
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// ListPaymentsByUser возвращает платежи пользователя с пагинацией.
func (s *Storage) ListPaymentsByUser(ctx context.Context, userUID string, limit, offset int) ([]*models.Payment, error) {
	const op = "storage.ListPaymentsByUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, user_uid, product_id, payment_type, status, amount, currency,
			      order_id, customer_id, checkout_url, receipt_url, created_at, paid_at
			  FROM payments
			  WHERE user_uid = $1
			  ORDER BY created_at DESC
			  LIMIT $2 OFFSET $3`
	rows, err := s.DB.QueryContext(ctx, query, userUID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []*models.Payment
	for rows.Next() {
		var item models.Payment
		if err := rows.Scan(&item.ID, &item.UserUID, &item.ProductID, &item.PaymentType,
			&item.Status, &item.Amount, &item.Currency, &item.OrderID, &item.CustomerID,
			&item.CheckoutURL, &item.ReceiptURL, &item.CreatedAt, &item.PaidAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
