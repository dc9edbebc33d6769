//go:build integration
// +build integration

package gamevault_test

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/gamevault/gamevault/pkg/rental"
	"github.com/gamevault/gamevault/pkg/store"
)

// setupTestDB creates a PostgreSQL container and returns connection details
func setupTestDB(t *testing.T) (string, func()) {
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("Failed to get connection string: %v", err)
	}

	cleanup := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	}

	return connStr, cleanup
}

// setupStore connects, creates the schema, and loads a known test catalog.
func setupStore(t *testing.T) (*store.DB, func()) {
	ctx := context.Background()

	connStr, cleanup := setupTestDB(t)

	db, err := store.ConnectWithURL(ctx, connStr, zap.NewNop())
	if err != nil {
		cleanup()
		t.Fatalf("Failed to connect: %v", err)
	}

	if err := db.Initialize(ctx); err != nil {
		db.Close()
		cleanup()
		t.Fatalf("Failed to create schema: %v", err)
	}

	catalog := []struct {
		id    string
		name  string
		genre string
		price float64
	}{
		{"game10", "Ten Dollar Game", "Racing", 10.00},
		{"game5", "Five Dollar Game", "Puzzle", 5.00},
		{"game20", "Twenty Dollar Game", "RPG", 19.99},
	}
	for _, c := range catalog {
		if _, err := db.Exec(ctx, `
			INSERT INTO catalog (game_id, game_name, genre, price) VALUES ($1, $2, $3, $4)
		`, c.id, c.name, c.genre, c.price); err != nil {
			db.Close()
			cleanup()
			t.Fatalf("Failed to seed catalog: %v", err)
		}
	}

	return db, func() {
		db.Close()
		cleanup()
	}
}

// mustCreateUser registers an account and optionally promotes its role
// directly, sidestepping the manager gate for fixture setup.
func mustCreateUser(t *testing.T, db *store.DB, login, password, phone string, role rental.Role) {
	ctx := context.Background()

	if err := rental.NewUsers(db).Create(ctx, login, password, phone); err != nil {
		t.Fatalf("Failed to create user %s: %v", login, err)
	}
	if role != rental.RoleCustomer {
		if _, err := db.Exec(ctx, `UPDATE users SET role = $1 WHERE login = $2`, string(role), login); err != nil {
			t.Fatalf("Failed to promote user %s: %v", login, err)
		}
	}
}

func countRows(t *testing.T, db *store.DB, query string, args ...interface{}) int {
	var n int
	if err := db.QueryRow(context.Background(), query, args...).Scan(&n); err != nil {
		t.Fatalf("Failed to count rows: %v", err)
	}
	return n
}

func TestIntegration_Login(t *testing.T) {
	db, cleanup := setupStore(t)
	defer cleanup()

	ctx := context.Background()
	users := rental.NewUsers(db)

	mustCreateUser(t, db, "alice", "hunter2", "5551234567", rental.RoleCustomer)

	t.Run("all three values match", func(t *testing.T) {
		session, err := users.Authenticate(ctx, "alice", "hunter2", "5551234567")
		if err != nil {
			t.Fatalf("Expected session, got error: %v", err)
		}
		if session.Login != "alice" || session.Role != rental.RoleCustomer {
			t.Errorf("Unexpected session: %+v", session)
		}
	})

	t.Run("duplicate login is rejected", func(t *testing.T) {
		err := users.Create(ctx, "alice", "other", "5557654321")
		if !errors.Is(err, store.ErrDuplicateKey) {
			t.Errorf("Expected ErrDuplicateKey, got %v", err)
		}
	})

	mismatches := []struct {
		name                   string
		login, password, phone string
	}{
		{"wrong password", "alice", "nope", "5551234567"},
		{"wrong phone", "alice", "hunter2", "5550000000"},
		{"unknown login", "bob", "hunter2", "5551234567"},
	}
	for _, tt := range mismatches {
		t.Run(tt.name, func(t *testing.T) {
			_, err := users.Authenticate(ctx, tt.login, tt.password, tt.phone)
			if !errors.Is(err, rental.ErrNoSession) {
				t.Errorf("Expected ErrNoSession, got %v", err)
			}
		})
	}
}

func TestIntegration_PlaceOrder(t *testing.T) {
	db, cleanup := setupStore(t)
	defer cleanup()

	ctx := context.Background()
	mustCreateUser(t, db, "buyer", "pw", "5550001111", rental.RoleCustomer)

	orderTime := time.Date(2024, time.July, 20, 9, 30, 0, 0, time.UTC)
	orders := rental.NewOrders(db).WithClock(func() time.Time { return orderTime })

	t.Run("two games, three units", func(t *testing.T) {
		placed, err := orders.Place(ctx, "buyer", []rental.OrderItem{
			{GameID: "game10", Units: 2},
			{GameID: "game5", Units: 1},
		})
		if err != nil {
			t.Fatalf("Failed to place order: %v", err)
		}

		if placed.Order.RentalOrderID != "gamerentalorder1" {
			t.Errorf("Expected gamerentalorder1, got %s", placed.Order.RentalOrderID)
		}
		if placed.Tracking.TrackingID != "trackingid1" {
			t.Errorf("Expected trackingid1, got %s", placed.Tracking.TrackingID)
		}
		if math.Abs(placed.Order.TotalPrice-25.00) > 0.001 {
			t.Errorf("Expected total 25.00, got %.2f", placed.Order.TotalPrice)
		}

		// 20 calendar days out: July 20 + 20 days lands on August 9.
		wantDue := time.Date(2024, time.August, 9, 9, 30, 0, 0, time.UTC)
		if !placed.Order.DueDate.Equal(wantDue) {
			t.Errorf("Expected due date %v, got %v", wantDue, placed.Order.DueDate)
		}

		if n := countRows(t, db, `SELECT COUNT(*) FROM rental_order`); n != 1 {
			t.Errorf("Expected 1 order row, got %d", n)
		}
		if n := countRows(t, db, `SELECT COUNT(*) FROM tracking_info`); n != 1 {
			t.Errorf("Expected 1 tracking row, got %d", n)
		}
		if n := countRows(t, db, `SELECT COUNT(*) FROM games_in_order WHERE rental_order_id = $1`,
			placed.Order.RentalOrderID); n != 2 {
			t.Errorf("Expected 2 line items, got %d", n)
		}

		var status string
		if err := db.QueryRow(ctx, `SELECT status FROM tracking_info WHERE rental_order_id = $1`,
			placed.Order.RentalOrderID).Scan(&status); err != nil {
			t.Fatalf("Failed to read tracking status: %v", err)
		}
		if status != "Out for Delivery" {
			t.Errorf("Expected status 'Out for Delivery', got %q", status)
		}

		var total float64
		if err := db.QueryRow(ctx, `SELECT total_price FROM rental_order WHERE rental_order_id = $1`,
			placed.Order.RentalOrderID).Scan(&total); err != nil {
			t.Fatalf("Failed to read total: %v", err)
		}
		if math.Abs(total-25.00) > 0.001 {
			t.Errorf("Expected stored total 25.00, got %.2f", total)
		}
	})

	t.Run("identifiers step by one", func(t *testing.T) {
		placed, err := orders.Place(ctx, "buyer", []rental.OrderItem{{GameID: "game5", Units: 1}})
		if err != nil {
			t.Fatalf("Failed to place second order: %v", err)
		}
		if placed.Order.RentalOrderID != "gamerentalorder2" {
			t.Errorf("Expected gamerentalorder2, got %s", placed.Order.RentalOrderID)
		}
		if placed.Tracking.TrackingID != "trackingid2" {
			t.Errorf("Expected trackingid2, got %s", placed.Tracking.TrackingID)
		}
	})

	t.Run("unknown game aborts with nothing inserted", func(t *testing.T) {
		before := countRows(t, db, `SELECT COUNT(*) FROM rental_order`)

		_, err := orders.Place(ctx, "buyer", []rental.OrderItem{
			{GameID: "game10", Units: 1},
			{GameID: "no-such-game", Units: 1},
		})
		if !errors.Is(err, rental.ErrUnknownGame) {
			t.Fatalf("Expected ErrUnknownGame, got %v", err)
		}

		if after := countRows(t, db, `SELECT COUNT(*) FROM rental_order`); after != before {
			t.Errorf("Order count changed across a failed placement: %d -> %d", before, after)
		}
		if n := countRows(t, db, `SELECT COUNT(*) FROM tracking_info`); n != before {
			t.Errorf("Tracking count out of step after failed placement: %d", n)
		}
	})

	t.Run("duplicate game ids collapse into one line", func(t *testing.T) {
		placed, err := orders.Place(ctx, "buyer", []rental.OrderItem{
			{GameID: "game10", Units: 1},
			{GameID: "game10", Units: 2},
		})
		if err != nil {
			t.Fatalf("Failed to place order: %v", err)
		}
		if n := countRows(t, db, `SELECT COUNT(*) FROM games_in_order WHERE rental_order_id = $1`,
			placed.Order.RentalOrderID); n != 1 {
			t.Errorf("Expected 1 merged line item, got %d", n)
		}
		var units int
		if err := db.QueryRow(ctx, `SELECT units_ordered FROM games_in_order WHERE rental_order_id = $1`,
			placed.Order.RentalOrderID).Scan(&units); err != nil {
			t.Fatalf("Failed to read units: %v", err)
		}
		if units != 3 {
			t.Errorf("Expected 3 units, got %d", units)
		}
	})
}

func TestIntegration_OrderHistory(t *testing.T) {
	db, cleanup := setupStore(t)
	defer cleanup()

	ctx := context.Background()
	mustCreateUser(t, db, "collector", "pw", "5552223333", rental.RoleCustomer)

	when := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	orders := rental.NewOrders(db).WithClock(func() time.Time {
		when = when.Add(time.Hour)
		return when
	})

	for i := 0; i < 7; i++ {
		if _, err := orders.Place(ctx, "collector", []rental.OrderItem{{GameID: "game5", Units: 1}}); err != nil {
			t.Fatalf("Failed to place order %d: %v", i, err)
		}
	}

	all, err := orders.History(ctx, "collector")
	if err != nil {
		t.Fatalf("Failed to fetch history: %v", err)
	}
	if len(all) != 7 {
		t.Errorf("Expected 7 orders, got %d", len(all))
	}

	recent, err := orders.Recent(ctx, "collector", 5)
	if err != nil {
		t.Fatalf("Failed to fetch recent orders: %v", err)
	}
	if len(recent) != 5 {
		t.Fatalf("Expected 5 recent orders, got %d", len(recent))
	}
	// Newest first.
	if recent[0].RentalOrderID != "gamerentalorder7" {
		t.Errorf("Expected newest order first, got %s", recent[0].RentalOrderID)
	}

	// A customer can read their own order info, but not someone else's.
	mustCreateUser(t, db, "nosy", "pw", "5559998888", rental.RoleCustomer)
	if _, _, err := orders.Info(ctx, rental.Session{Login: "collector", Role: rental.RoleCustomer}, "gamerentalorder1"); err != nil {
		t.Errorf("Owner could not read own order: %v", err)
	}
	_, _, err = orders.Info(ctx, rental.Session{Login: "nosy", Role: rental.RoleCustomer}, "gamerentalorder1")
	if !errors.Is(err, rental.ErrPermissionDenied) {
		t.Errorf("Expected ErrPermissionDenied for foreign order, got %v", err)
	}
}

func TestIntegration_RoleGating(t *testing.T) {
	db, cleanup := setupStore(t)
	defer cleanup()

	ctx := context.Background()
	users := rental.NewUsers(db)
	tracking := rental.NewTracking(db)
	orders := rental.NewOrders(db)

	mustCreateUser(t, db, "cust", "pw", "5550000001", rental.RoleCustomer)
	mustCreateUser(t, db, "emp", "pw", "5550000002", rental.RoleEmployee)
	mustCreateUser(t, db, "mgr", "pw", "5550000003", rental.RoleManager)

	placed, err := orders.Place(ctx, "cust", []rental.OrderItem{{GameID: "game10", Units: 1}})
	if err != nil {
		t.Fatalf("Failed to place fixture order: %v", err)
	}
	trackingID := placed.Tracking.TrackingID

	shipped := rental.StatusShipped

	t.Run("customer cannot update tracking", func(t *testing.T) {
		err := tracking.Update(ctx, rental.Session{Login: "cust", Role: rental.RoleCustomer},
			trackingID, rental.TrackingChanges{Status: &shipped})
		if !errors.Is(err, rental.ErrPermissionDenied) {
			t.Fatalf("Expected ErrPermissionDenied, got %v", err)
		}

		var status string
		if err := db.QueryRow(ctx, `SELECT status FROM tracking_info WHERE tracking_id = $1`,
			trackingID).Scan(&status); err != nil {
			t.Fatalf("Failed to read status: %v", err)
		}
		if status != "Out for Delivery" {
			t.Errorf("Status mutated despite rejection: %q", status)
		}
	})

	t.Run("employee can update tracking", func(t *testing.T) {
		location := "Riverside depot"
		err := tracking.Update(ctx, rental.Session{Login: "emp", Role: rental.RoleEmployee},
			trackingID, rental.TrackingChanges{Status: &shipped, CurrentLocation: &location})
		if err != nil {
			t.Fatalf("Expected update to succeed, got %v", err)
		}

		info, err := tracking.Get(ctx, rental.Session{Login: "emp", Role: rental.RoleEmployee}, trackingID)
		if err != nil {
			t.Fatalf("Failed to read tracking: %v", err)
		}
		if info.Status != rental.StatusShipped || info.CurrentLocation != "Riverside depot" {
			t.Errorf("Unexpected tracking row: %+v", info)
		}
	})

	t.Run("backwards status transitions are allowed", func(t *testing.T) {
		received := rental.StatusOrderReceived
		err := tracking.Update(ctx, rental.Session{Login: "emp", Role: rental.RoleEmployee},
			trackingID, rental.TrackingChanges{Status: &received})
		if err != nil {
			t.Errorf("Expected free transition, got %v", err)
		}
	})

	t.Run("employee cannot update users", func(t *testing.T) {
		role := rental.RoleManager
		err := users.AdminUpdate(ctx, rental.Session{Login: "emp", Role: rental.RoleEmployee},
			"cust", rental.UserChanges{NewRole: &role})
		if !errors.Is(err, rental.ErrPermissionDenied) {
			t.Fatalf("Expected ErrPermissionDenied, got %v", err)
		}

		got, err := users.Get(ctx, "cust")
		if err != nil {
			t.Fatalf("Failed to read user: %v", err)
		}
		if got.Role != rental.RoleCustomer {
			t.Errorf("Role mutated despite rejection: %s", got.Role)
		}
	})

	t.Run("manager can update users", func(t *testing.T) {
		role := rental.RoleEmployee
		overdue := 3
		err := users.AdminUpdate(ctx, rental.Session{Login: "mgr", Role: rental.RoleManager},
			"cust", rental.UserChanges{NewRole: &role, NumOverdueGames: &overdue})
		if err != nil {
			t.Fatalf("Expected update to succeed, got %v", err)
		}

		got, err := users.Get(ctx, "cust")
		if err != nil {
			t.Fatalf("Failed to read user: %v", err)
		}
		if got.Role != rental.RoleEmployee || got.NumOverdueGames != 3 {
			t.Errorf("Unexpected user row: %+v", got)
		}
	})

	t.Run("invalid role is rejected at write time", func(t *testing.T) {
		bad := rental.Role("superuser")
		err := users.AdminUpdate(ctx, rental.Session{Login: "mgr", Role: rental.RoleManager},
			"cust", rental.UserChanges{NewRole: &bad})
		if !errors.Is(err, rental.ErrInvalidRole) {
			t.Errorf("Expected ErrInvalidRole, got %v", err)
		}
	})
}

func TestIntegration_Favorites(t *testing.T) {
	db, cleanup := setupStore(t)
	defer cleanup()

	ctx := context.Background()
	users := rental.NewUsers(db)

	mustCreateUser(t, db, "fan", "pw", "5554445555", rental.RoleCustomer)

	for _, game := range []string{"Neon Vanguard", "Riddle Array", "Neon Vanguard"} {
		if err := users.AddFavorite(ctx, "fan", game); err != nil {
			t.Fatalf("Failed to add favorite: %v", err)
		}
	}

	if err := users.RemoveFavorite(ctx, "fan", "Neon Vanguard"); err != nil {
		t.Fatalf("Failed to remove favorite: %v", err)
	}

	got, err := users.Get(ctx, "fan")
	if err != nil {
		t.Fatalf("Failed to read user: %v", err)
	}
	// Exactly one of the duplicates is gone, and the stored field has no
	// stray separators.
	if got.FavoriteGames != "Riddle Array, Neon Vanguard" {
		t.Errorf("Unexpected favorites field: %q", got.FavoriteGames)
	}
}

func TestIntegration_Catalog(t *testing.T) {
	db, cleanup := setupStore(t)
	defer cleanup()

	ctx := context.Background()
	catalog := rental.NewCatalog(db)

	genres, err := catalog.Genres(ctx)
	if err != nil {
		t.Fatalf("Failed to list genres: %v", err)
	}
	if len(genres) != 3 {
		t.Errorf("Expected 3 genres, got %d: %v", len(genres), genres)
	}

	byGenre, err := catalog.ByGenre(ctx, "Racing")
	if err != nil {
		t.Fatalf("Failed to search by genre: %v", err)
	}
	if len(byGenre) != 1 || byGenre[0].GameID != "game10" {
		t.Errorf("Unexpected genre results: %+v", byGenre)
	}

	ranged, err := catalog.ByPriceRange(ctx, 4.00, 15.00, rental.PriceDescending)
	if err != nil {
		t.Fatalf("Failed to search by price: %v", err)
	}
	if len(ranged) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(ranged))
	}
	if ranged[0].Price < ranged[1].Price {
		t.Errorf("Expected descending prices, got %v then %v", ranged[0].Price, ranged[1].Price)
	}

	t.Run("manager can edit the catalog", func(t *testing.T) {
		mustCreateUser(t, db, "boss", "pw", "5556667777", rental.RoleManager)

		price := 8.75
		err := catalog.Update(ctx, rental.Session{Login: "boss", Role: rental.RoleManager},
			"game5", rental.CatalogChanges{NewPrice: &price})
		if err != nil {
			t.Fatalf("Failed to update catalog: %v", err)
		}

		entry, err := catalog.Get(ctx, "game5")
		if err != nil {
			t.Fatalf("Failed to read entry: %v", err)
		}
		if math.Abs(entry.Price-8.75) > 0.001 {
			t.Errorf("Expected price 8.75, got %.2f", entry.Price)
		}
	})

	t.Run("customer cannot edit the catalog", func(t *testing.T) {
		mustCreateUser(t, db, "shopper", "pw", "5558883333", rental.RoleCustomer)

		price := 0.01
		err := catalog.Update(ctx, rental.Session{Login: "shopper", Role: rental.RoleCustomer},
			"game5", rental.CatalogChanges{NewPrice: &price})
		if !errors.Is(err, rental.ErrPermissionDenied) {
			t.Errorf("Expected ErrPermissionDenied, got %v", err)
		}
	})
}

func TestIntegration_PasswordUpdate(t *testing.T) {
	db, cleanup := setupStore(t)
	defer cleanup()

	ctx := context.Background()
	users := rental.NewUsers(db)

	mustCreateUser(t, db, "pat", "oldpw", "5551112222", rental.RoleCustomer)

	if err := users.UpdatePassword(ctx, "pat", "wrong", "newpw"); !errors.Is(err, rental.ErrWrongPassword) {
		t.Fatalf("Expected ErrWrongPassword, got %v", err)
	}

	if err := users.UpdatePassword(ctx, "pat", "oldpw", "newpw"); err != nil {
		t.Fatalf("Expected password update to succeed, got %v", err)
	}

	if _, err := users.Authenticate(ctx, "pat", "newpw", "5551112222"); err != nil {
		t.Errorf("Expected login with new password, got %v", err)
	}
	if _, err := users.Authenticate(ctx, "pat", "oldpw", "5551112222"); !errors.Is(err, rental.ErrNoSession) {
		t.Errorf("Expected old password to stop working, got %v", err)
	}
}
