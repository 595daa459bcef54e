package conditions

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// StockAlert is one inventory item at or below its reorder level.
type StockAlert struct {
	UserID       string
	ItemID       int64
	Name         string
	Quantity     int
	ReorderLevel int
}

// ProjectAlert is one project past its due date and still open.
type ProjectAlert struct {
	UserID    string
	ProjectID int64
	Name      string
}

// Scanner reads the ERP tables the notification checks are defined over.
type Scanner interface {
	LowStock(ctx context.Context, userID string) ([]StockAlert, error)
	OverdueProjects(ctx context.Context, userID string) ([]ProjectAlert, error)
}

// pgxScanner runs the condition scans as raw SQL over a pgx pool. These are
// read-only cross-table scans, cheaper to state directly than through the ORM.
type pgxScanner struct {
	pool *pgxpool.Pool
}

func NewScanner(pool *pgxpool.Pool) Scanner {
	return &pgxScanner{pool: pool}
}

func (s *pgxScanner) LowStock(ctx context.Context, userID string) ([]StockAlert, error) {
	query := `
		SELECT user_id, id, name, quantity, reorder_level
		FROM inventory_items
		WHERE user_id = $1 AND quantity <= reorder_level
		ORDER BY id
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to scan low stock: %w", err)
	}
	defer rows.Close()

	var alerts []StockAlert
	for rows.Next() {
		var a StockAlert
		if err := rows.Scan(&a.UserID, &a.ItemID, &a.Name, &a.Quantity, &a.ReorderLevel); err != nil {
			return nil, fmt.Errorf("failed to scan stock row: %w", err)
		}
		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}

func (s *pgxScanner) OverdueProjects(ctx context.Context, userID string) ([]ProjectAlert, error) {
	query := `
		SELECT user_id, id, name
		FROM projects
		WHERE user_id = $1
		  AND due_date IS NOT NULL
		  AND due_date < NOW()
		  AND status NOT IN ('completed', 'cancelled')
		ORDER BY due_date
	`

	rows, err := s.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to scan overdue projects: %w", err)
	}
	defer rows.Close()

	var alerts []ProjectAlert
	for rows.Next() {
		var a ProjectAlert
		if err := rows.Scan(&a.UserID, &a.ProjectID, &a.Name); err != nil {
			return nil, fmt.Errorf("failed to scan project row: %w", err)
		}
		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}
