package rental

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/gamevault/gamevault/pkg/store"
)

// PriceOrder is the sort direction for price searches.
type PriceOrder string

const (
	PriceAscending  PriceOrder = "asc"
	PriceDescending PriceOrder = "desc"
)

// ErrInvalidOrder is returned when a sort direction is neither asc nor desc.
var ErrInvalidOrder = errors.New("sort order must be asc or desc")

// ParsePriceOrder validates a sort direction.
func ParsePriceOrder(s string) (PriceOrder, error) {
	switch PriceOrder(s) {
	case PriceAscending, PriceDescending:
		return PriceOrder(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidOrder, s)
}

// Catalog provides read access to the game catalog plus manager-only edits.
type Catalog struct {
	db *store.DB
}

// NewCatalog creates a Catalog service.
func NewCatalog(db *store.DB) *Catalog {
	return &Catalog{db: db}
}

// Get fetches a single catalog entry.
func (c *Catalog) Get(ctx context.Context, gameID string) (*CatalogEntry, error) {
	var entry CatalogEntry
	err := c.db.QueryRow(ctx, `
		SELECT game_id, game_name, genre, price FROM catalog WHERE game_id = $1
	`, gameID).Scan(&entry.GameID, &entry.GameName, &entry.Genre, &entry.Price)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("game %s: %w", gameID, ErrUnknownGame)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog entry %s: %w", gameID, err)
	}
	return &entry, nil
}

// Genres lists every distinct genre in the catalog.
func (c *Catalog) Genres(ctx context.Context) ([]string, error) {
	rows, err := c.db.Query(ctx, `SELECT DISTINCT genre FROM catalog ORDER BY genre`)
	if err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	defer rows.Close()

	var genres []string
	for rows.Next() {
		var genre string
		if err := rows.Scan(&genre); err != nil {
			return nil, fmt.Errorf("failed to scan genre: %w", err)
		}
		genres = append(genres, genre)
	}
	return genres, rows.Err()
}

// ByGenre returns all games of one genre, cheapest first.
func (c *Catalog) ByGenre(ctx context.Context, genre string) ([]CatalogEntry, error) {
	rows, err := c.db.Query(ctx, `
		SELECT game_id, game_name, genre, price FROM catalog
		WHERE genre = $1 ORDER BY price ASC
	`, genre)
	if err != nil {
		return nil, fmt.Errorf("failed to search by genre: %w", err)
	}
	return scanCatalogRows(rows)
}

// ByPriceRange returns all games priced within [min, max], sorted by price
// in the requested direction.
func (c *Catalog) ByPriceRange(ctx context.Context, min, max float64, order PriceOrder) ([]CatalogEntry, error) {
	if _, err := ParsePriceOrder(string(order)); err != nil {
		return nil, err
	}

	// The direction cannot be bound as a parameter; it is validated above
	// against the two-value enum before being spliced in.
	direction := "ASC"
	if order == PriceDescending {
		direction = "DESC"
	}

	rows, err := c.db.Query(ctx, `
		SELECT game_id, game_name, genre, price FROM catalog
		WHERE price >= $1 AND price <= $2 ORDER BY price `+direction,
		min, max)
	if err != nil {
		return nil, fmt.Errorf("failed to search by price: %w", err)
	}
	return scanCatalogRows(rows)
}

// CatalogChanges describes a manager edit. Nil fields are untouched.
type CatalogChanges struct {
	NewGenre *string
	NewPrice *float64
}

// Update applies manager-only changes to a catalog entry.
func (c *Catalog) Update(ctx context.Context, actor Session, gameID string, changes CatalogChanges) error {
	if !actor.Role.CanManageUsers() {
		return fmt.Errorf("update catalog: %w", ErrPermissionDenied)
	}

	if _, err := c.Get(ctx, gameID); err != nil {
		return err
	}

	if changes.NewGenre != nil {
		if _, err := c.db.Exec(ctx, `
			UPDATE catalog SET genre = $1 WHERE game_id = $2
		`, *changes.NewGenre, gameID); err != nil {
			return fmt.Errorf("failed to update genre: %w", err)
		}
	}

	if changes.NewPrice != nil {
		if _, err := c.db.Exec(ctx, `
			UPDATE catalog SET price = $1 WHERE game_id = $2
		`, *changes.NewPrice, gameID); err != nil {
			return fmt.Errorf("failed to update price: %w", err)
		}
	}

	return nil
}

func scanCatalogRows(rows pgx.Rows) ([]CatalogEntry, error) {
	defer rows.Close()

	var entries []CatalogEntry
	for rows.Next() {
		var entry CatalogEntry
		if err := rows.Scan(&entry.GameID, &entry.GameName, &entry.Genre, &entry.Price); err != nil {
			return nil, fmt.Errorf("failed to scan catalog row: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
