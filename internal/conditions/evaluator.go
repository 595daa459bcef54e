package conditions

import (
	"context"
	"fmt"
	"log"

	"bizhub/internal/httpapi/models"
	"bizhub/internal/httpapi/repository"
)

// Evaluator materializes notification records from current business state.
// It backs POST /api/notifications/check: each call re-runs the enabled
// checks for one user and inserts a warning per newly triggering subject.
//
// Dedup rule: a subject that already has an unread notification with the same
// details tag is skipped, so a low-stock item does not produce a new record
// on every 60s poll until the user reads or clears the old one.
type Evaluator struct {
	scanner  Scanner
	notifs   repository.NotificationRepository
	prefs    repository.PreferenceRepository
	lowStock bool
	overdue  bool
}

func NewEvaluator(
	scanner Scanner,
	notifs repository.NotificationRepository,
	prefs repository.PreferenceRepository,
	lowStockEnabled, overdueEnabled bool,
) *Evaluator {
	return &Evaluator{
		scanner:  scanner,
		notifs:   notifs,
		prefs:    prefs,
		lowStock: lowStockEnabled,
		overdue:  overdueEnabled,
	}
}

// Run evaluates all enabled checks for the user and returns the number of
// notifications created. A failing check is logged and does not abort the
// remaining checks.
func (e *Evaluator) Run(ctx context.Context, userID string) (int, error) {
	prefs, err := e.prefs.Get(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load preferences: %w", err)
	}

	created := 0

	if e.lowStock && prefs.LowStock {
		n, err := e.runLowStock(ctx, userID)
		if err != nil {
			log.Printf("[Conditions] Low stock check failed for user %s: %v", userID, err)
		}
		created += n
	}

	if e.overdue && prefs.OverdueWork {
		n, err := e.runOverdue(ctx, userID)
		if err != nil {
			log.Printf("[Conditions] Overdue check failed for user %s: %v", userID, err)
		}
		created += n
	}

	return created, nil
}

func (e *Evaluator) runLowStock(ctx context.Context, userID string) (int, error) {
	alerts, err := e.scanner.LowStock(ctx, userID)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, a := range alerts {
		details := StockDetails(a.ItemID)

		exists, err := e.notifs.HasUnreadWithDetails(ctx, userID, details)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}

		notification := &models.Notification{
			UserID:  userID,
			Type:    models.TypeWarning,
			Message: fmt.Sprintf("Low stock: %s (%d left, reorder at %d)", a.Name, a.Quantity, a.ReorderLevel),
			Details: details,
		}
		if err := e.notifs.Create(ctx, notification); err != nil {
			return created, err
		}
		created++
	}

	return created, nil
}

func (e *Evaluator) runOverdue(ctx context.Context, userID string) (int, error) {
	alerts, err := e.scanner.OverdueProjects(ctx, userID)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, a := range alerts {
		details := ProjectDetails(a.ProjectID)

		exists, err := e.notifs.HasUnreadWithDetails(ctx, userID, details)
		if err != nil {
			return created, err
		}
		if exists {
			continue
		}

		notification := &models.Notification{
			UserID:  userID,
			Type:    models.TypeWarning,
			Message: fmt.Sprintf("Project overdue: %s", a.Name),
			Details: details,
		}
		if err := e.notifs.Create(ctx, notification); err != nil {
			return created, err
		}
		created++
	}

	return created, nil
}

// ProjectDetails builds the details tag clients split to reconstruct the
// invoice deep link.
func ProjectDetails(projectID int64) string {
	return fmt.Sprintf("ProjectID:%d", projectID)
}

// StockDetails tags a low-stock notification with its inventory item.
func StockDetails(itemID int64) string {
	return fmt.Sprintf("ItemID:%d", itemID)
}
