package rental

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gamevault/gamevault/pkg/store"
)

// Tracking provides shipment tracking reads and staff-only updates.
type Tracking struct {
	db    *store.DB
	clock func() time.Time
}

// NewTracking creates a Tracking service.
func NewTracking(db *store.DB) *Tracking {
	return &Tracking{db: db, clock: time.Now}
}

// WithClock overrides the time source. Used by tests.
func (t *Tracking) WithClock(clock func() time.Time) *Tracking {
	t.clock = clock
	return t
}

// ForOrder fetches the tracking row attached to an order. Customers may
// only look at their own orders; employees and managers may look at any.
func (t *Tracking) ForOrder(ctx context.Context, actor Session, orderID string) (*TrackingInfo, error) {
	var owner string
	err := t.db.QueryRow(ctx, `
		SELECT login FROM rental_order WHERE rental_order_id = $1
	`, orderID).Scan(&owner)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("order %s: %w", orderID, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch order %s: %w", orderID, err)
	}

	if owner != actor.Login && !actor.Role.CanUpdateTracking() {
		return nil, fmt.Errorf("tracking for order %s: %w", orderID, ErrPermissionDenied)
	}

	info, err := t.get(ctx, `SELECT tracking_id, rental_order_id, status, current_location,
		courier_name, last_update_date, additional_comments
		FROM tracking_info WHERE rental_order_id = $1`, orderID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("tracking for order %s: %w", orderID, store.ErrNotFound)
	}
	return info, err
}

// Get fetches a tracking row by its own id. Staff only.
func (t *Tracking) Get(ctx context.Context, actor Session, trackingID string) (*TrackingInfo, error) {
	if !actor.Role.CanUpdateTracking() {
		return nil, fmt.Errorf("tracking %s: %w", trackingID, ErrPermissionDenied)
	}

	info, err := t.get(ctx, `SELECT tracking_id, rental_order_id, status, current_location,
		courier_name, last_update_date, additional_comments
		FROM tracking_info WHERE tracking_id = $1`, trackingID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("tracking %s: %w", trackingID, store.ErrNotFound)
	}
	return info, err
}

func (t *Tracking) get(ctx context.Context, query, arg string) (*TrackingInfo, error) {
	var info TrackingInfo
	var status string
	err := t.db.QueryRow(ctx, query, arg).Scan(&info.TrackingID, &info.RentalOrderID,
		&status, &info.CurrentLocation, &info.CourierName, &info.LastUpdateDate,
		&info.AdditionalComments)
	if err != nil {
		return nil, err
	}
	info.Status = ShipmentStatus(status)
	return &info, nil
}

// TrackingChanges describes a staff update. Nil fields are untouched.
type TrackingChanges struct {
	Status             *ShipmentStatus
	CurrentLocation    *string
	CourierName        *string
	AdditionalComments *string
}

// Update applies staff-only changes to a tracking row. The status value is
// validated against the enum, but transitions between statuses are free:
// the store does not enforce an ordering.
func (t *Tracking) Update(ctx context.Context, actor Session, trackingID string, changes TrackingChanges) error {
	if !actor.Role.CanUpdateTracking() {
		return fmt.Errorf("update tracking %s: %w", trackingID, ErrPermissionDenied)
	}

	var exists string
	err := t.db.QueryRow(ctx, `
		SELECT tracking_id FROM tracking_info WHERE tracking_id = $1
	`, trackingID).Scan(&exists)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("tracking %s: %w", trackingID, store.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to fetch tracking %s: %w", trackingID, err)
	}

	if changes.Status != nil {
		status, err := ParseShipmentStatus(string(*changes.Status))
		if err != nil {
			return err
		}
		if _, err := t.db.Exec(ctx, `
			UPDATE tracking_info SET status = $1, last_update_date = $2 WHERE tracking_id = $3
		`, string(status), t.clock(), trackingID); err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}
	}

	if changes.CurrentLocation != nil {
		if _, err := t.db.Exec(ctx, `
			UPDATE tracking_info SET current_location = $1, last_update_date = $2 WHERE tracking_id = $3
		`, *changes.CurrentLocation, t.clock(), trackingID); err != nil {
			return fmt.Errorf("failed to update location: %w", err)
		}
	}

	if changes.CourierName != nil {
		if _, err := t.db.Exec(ctx, `
			UPDATE tracking_info SET courier_name = $1, last_update_date = $2 WHERE tracking_id = $3
		`, *changes.CourierName, t.clock(), trackingID); err != nil {
			return fmt.Errorf("failed to update courier: %w", err)
		}
	}

	if changes.AdditionalComments != nil {
		if _, err := t.db.Exec(ctx, `
			UPDATE tracking_info SET additional_comments = $1, last_update_date = $2 WHERE tracking_id = $3
		`, *changes.AdditionalComments, t.clock(), trackingID); err != nil {
			return fmt.Errorf("failed to update comments: %w", err)
		}
	}

	return nil
}
