package rental

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gamevault/gamevault/pkg/store"
)

const (
	orderIDPrefix    = "gamerentalorder"
	trackingIDPrefix = "trackingid"

	// rentalPeriodDays is how long a rental runs before it is due back.
	rentalPeriodDays = 20

	// DefaultCourier ships every new order until staff reassign it.
	DefaultCourier = "FedEx"
)

// ErrInvalidQuantity is returned when an ordered quantity is not positive.
var ErrInvalidQuantity = errors.New("quantity must be a positive integer")

// OrderItem is one (game, quantity) pair submitted by the buyer.
type OrderItem struct {
	GameID string
	Units  int
}

// PlacedOrder is the result of a successful order placement.
type PlacedOrder struct {
	Order    RentalOrder
	Tracking TrackingInfo
	Lines    []OrderLine
}

// Orders implements order placement and order history reads.
//
// Placement performs the full insert sequence (order row, tracking row,
// line-item rows) inside a single serializable transaction, so a failure at
// any step leaves no orphaned rows and two sessions can never be handed the
// same identifier.
type Orders struct {
	db *store.DB

	// trackingIncrement is the step used when allocating tracking ids.
	// It exists because an earlier version of this system stepped tracking
	// ids by 2 while order ids stepped by 1, leaving gaps; the default here
	// is 1 and should stay 1 unless the schema owner says otherwise.
	trackingIncrement int

	clock func() time.Time
}

// NewOrders creates an Orders service.
func NewOrders(db *store.DB) *Orders {
	return &Orders{
		db:                db,
		trackingIncrement: 1,
		clock:             time.Now,
	}
}

// WithTrackingIncrement overrides the tracking id allocation step.
func (o *Orders) WithTrackingIncrement(step int) *Orders {
	if step > 0 {
		o.trackingIncrement = step
	}
	return o
}

// WithClock overrides the time source. Used by tests.
func (o *Orders) WithClock(clock func() time.Time) *Orders {
	o.clock = clock
	return o
}

// Place creates a rental order for the buyer. The whole operation is
// atomic: either the order row, its tracking row, and every line item are
// all inserted, or nothing is.
func (o *Orders) Place(ctx context.Context, buyer string, items []OrderItem) (*PlacedOrder, error) {
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}
	for _, item := range items {
		if item.Units <= 0 {
			return nil, fmt.Errorf("game %s: %w", item.GameID, ErrInvalidQuantity)
		}
	}

	// Duplicate game ids collapse into one line item.
	merged := mergeItems(items)

	tx, err := o.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return nil, fmt.Errorf("failed to begin order transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	orderID, err := nextID(ctx, tx, "rental_order", "rental_order_id", orderIDPrefix, 1)
	if err != nil {
		return nil, err
	}
	trackingID, err := nextID(ctx, tx, "tracking_info", "tracking_id", trackingIDPrefix, o.trackingIncrement)
	if err != nil {
		return nil, err
	}

	now := o.clock()
	placed := PlacedOrder{
		Order: RentalOrder{
			RentalOrderID:  orderID,
			Login:          buyer,
			OrderTimestamp: now,
			DueDate:        DueDate(now),
		},
		Tracking: TrackingInfo{
			TrackingID:     trackingID,
			RentalOrderID:  orderID,
			Status:         StatusOutForDelivery,
			CourierName:    DefaultCourier,
			LastUpdateDate: now,
		},
	}

	// Price every item before writing anything: an unknown game id aborts
	// the whole order.
	for _, item := range merged {
		var price float64
		err := tx.QueryRow(ctx, `
			SELECT price FROM catalog WHERE game_id = $1
		`, item.GameID).Scan(&price)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("game %s: %w", item.GameID, ErrUnknownGame)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to price game %s: %w", item.GameID, err)
		}

		placed.Order.TotalPrice += price * float64(item.Units)
		placed.Order.NoOfGames += item.Units
		placed.Lines = append(placed.Lines, OrderLine{
			RentalOrderID: orderID,
			GameID:        item.GameID,
			UnitsOrdered:  item.Units,
		})
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO rental_order (rental_order_id, login, no_of_games, total_price, order_timestamp, due_date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, placed.Order.RentalOrderID, buyer, placed.Order.NoOfGames, placed.Order.TotalPrice,
		placed.Order.OrderTimestamp, placed.Order.DueDate); err != nil {
		return nil, fmt.Errorf("failed to insert order: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO tracking_info (tracking_id, rental_order_id, status, current_location, courier_name, last_update_date, additional_comments)
		VALUES ($1, $2, $3, '', $4, $5, '')
	`, placed.Tracking.TrackingID, orderID, string(placed.Tracking.Status),
		placed.Tracking.CourierName, placed.Tracking.LastUpdateDate); err != nil {
		return nil, fmt.Errorf("failed to insert tracking info: %w", err)
	}

	for _, line := range placed.Lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO games_in_order (rental_order_id, game_id, units_ordered)
			VALUES ($1, $2, $3)
		`, line.RentalOrderID, line.GameID, line.UnitsOrdered); err != nil {
			return nil, fmt.Errorf("failed to insert line item for %s: %w", line.GameID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	return &placed, nil
}

// History returns every order the user has placed, newest first.
func (o *Orders) History(ctx context.Context, login string) ([]RentalOrder, error) {
	return o.history(ctx, login, 0)
}

// Recent returns the user's most recent orders, newest first.
func (o *Orders) Recent(ctx context.Context, login string, limit int) ([]RentalOrder, error) {
	if limit <= 0 {
		limit = 5
	}
	return o.history(ctx, login, limit)
}

func (o *Orders) history(ctx context.Context, login string, limit int) ([]RentalOrder, error) {
	query := `
		SELECT rental_order_id, login, no_of_games, total_price, order_timestamp, due_date
		FROM rental_order WHERE login = $1
		ORDER BY order_timestamp DESC, rental_order_id DESC
	`
	args := []interface{}{login}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := o.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []RentalOrder
	for rows.Next() {
		var ord RentalOrder
		if err := rows.Scan(&ord.RentalOrderID, &ord.Login, &ord.NoOfGames,
			&ord.TotalPrice, &ord.OrderTimestamp, &ord.DueDate); err != nil {
			return nil, fmt.Errorf("failed to scan order row: %w", err)
		}
		orders = append(orders, ord)
	}
	return orders, rows.Err()
}

// Info fetches one order with its line items. Customers may only look at
// their own orders; employees and managers may look at any.
func (o *Orders) Info(ctx context.Context, actor Session, orderID string) (*RentalOrder, []OrderLine, error) {
	var ord RentalOrder
	err := o.db.QueryRow(ctx, `
		SELECT rental_order_id, login, no_of_games, total_price, order_timestamp, due_date
		FROM rental_order WHERE rental_order_id = $1
	`, orderID).Scan(&ord.RentalOrderID, &ord.Login, &ord.NoOfGames,
		&ord.TotalPrice, &ord.OrderTimestamp, &ord.DueDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil, fmt.Errorf("order %s: %w", orderID, store.ErrNotFound)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch order %s: %w", orderID, err)
	}

	if ord.Login != actor.Login && !actor.Role.CanUpdateTracking() {
		return nil, nil, fmt.Errorf("order %s: %w", orderID, ErrPermissionDenied)
	}

	rows, err := o.db.Query(ctx, `
		SELECT g.rental_order_id, g.game_id, c.game_name, g.units_ordered
		FROM games_in_order g JOIN catalog c ON c.game_id = g.game_id
		WHERE g.rental_order_id = $1
		ORDER BY g.game_id
	`, orderID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch line items: %w", err)
	}
	defer rows.Close()

	var lines []OrderLine
	for rows.Next() {
		var line OrderLine
		if err := rows.Scan(&line.RentalOrderID, &line.GameID, &line.GameName, &line.UnitsOrdered); err != nil {
			return nil, nil, fmt.Errorf("failed to scan line item: %w", err)
		}
		lines = append(lines, line)
	}
	return &ord, lines, rows.Err()
}

// DueDate returns when an order placed at orderTime must be returned.
// Calendar-day arithmetic, so month and year rollover behave as a person
// counting days on a calendar would expect.
func DueDate(orderTime time.Time) time.Time {
	return orderTime.AddDate(0, 0, rentalPeriodDays)
}

// nextID allocates the next suffix-encoded identifier for a table. It reads
// the maximum numeric suffix currently stored and steps it by increment.
// Callers must run it inside the same transaction as the insert that uses
// the id.
func nextID(ctx context.Context, tx pgx.Tx, table, column, prefix string, increment int) (string, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(MAX(CAST(substring(%s from '[0-9]+$') AS INTEGER)), 0)
		FROM %s
	`, column, table)

	var maxSuffix int
	if err := tx.QueryRow(ctx, query).Scan(&maxSuffix); err != nil {
		return "", fmt.Errorf("failed to allocate id for %s: %w", table, err)
	}
	return formatID(prefix, maxSuffix+increment), nil
}

// formatID renders a suffix-encoded identifier.
func formatID(prefix string, n int) string {
	return prefix + strconv.Itoa(n)
}

// suffixOf parses the trailing decimal suffix of a suffix-encoded id.
// Returns 0 when the id carries no suffix.
func suffixOf(id string) int {
	end := len(id)
	start := end
	for start > 0 && id[start-1] >= '0' && id[start-1] <= '9' {
		start--
	}
	if start == end {
		return 0
	}
	n, err := strconv.Atoi(id[start:end])
	if err != nil {
		return 0
	}
	return n
}

// mergeItems collapses duplicate game ids, summing their quantities, while
// keeping first-seen order.
func mergeItems(items []OrderItem) []OrderItem {
	index := make(map[string]int, len(items))
	var merged []OrderItem
	for _, item := range items {
		if i, ok := index[item.GameID]; ok {
			merged[i].Units += item.Units
			continue
		}
		index[item.GameID] = len(merged)
		merged = append(merged, item)
	}
	return merged
}
