package rental

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/gamevault/gamevault/pkg/store"
)

// Users provides account creation, login, and profile management.
type Users struct {
	db *store.DB
}

// NewUsers creates a Users service.
func NewUsers(db *store.DB) *Users {
	return &Users{db: db}
}

// Create registers a new account. New accounts always start as customers
// with no favorites and no overdue games.
func (u *Users) Create(ctx context.Context, login, password, phoneNum string) error {
	_, err := u.db.Exec(ctx, `
		INSERT INTO users (login, password, role, favorite_games, phone_num, num_overdue_games)
		VALUES ($1, $2, $3, '', $4, 0)
	`, login, password, string(RoleCustomer), phoneNum)
	if err != nil {
		return fmt.Errorf("failed to create user %s: %w", login, err)
	}
	return nil
}

// Authenticate checks login credentials. All three values must match the
// stored row exactly; any mismatch, including an unknown login, yields
// ErrNoSession.
func (u *Users) Authenticate(ctx context.Context, login, password, phoneNum string) (*Session, error) {
	var role string
	err := u.db.QueryRow(ctx, `
		SELECT role FROM users
		WHERE login = $1 AND password = $2 AND phone_num = $3
	`, login, password, phoneNum).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check credentials: %w", err)
	}

	parsed, err := ParseRole(role)
	if err != nil {
		return nil, err
	}
	return &Session{Login: login, Role: parsed}, nil
}

// Get fetches a single user row.
func (u *Users) Get(ctx context.Context, login string) (*User, error) {
	var user User
	var role string
	err := u.db.QueryRow(ctx, `
		SELECT login, password, role, favorite_games, phone_num, num_overdue_games
		FROM users WHERE login = $1
	`, login).Scan(&user.Login, &user.Password, &role, &user.FavoriteGames, &user.PhoneNum, &user.NumOverdueGames)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", login, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user %s: %w", login, err)
	}
	user.Role = Role(role)
	return &user, nil
}

// UpdatePassword replaces the password after verifying the current one.
// The comparison is plain equality against the stored value.
func (u *Users) UpdatePassword(ctx context.Context, login, current, next string) error {
	user, err := u.Get(ctx, login)
	if err != nil {
		return err
	}
	if strings.TrimSpace(current) != strings.TrimSpace(user.Password) {
		return ErrWrongPassword
	}

	if _, err := u.db.Exec(ctx, `
		UPDATE users SET password = $1 WHERE login = $2
	`, next, login); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// UpdatePhone sets a new phone number unconditionally.
func (u *Users) UpdatePhone(ctx context.Context, login, phoneNum string) error {
	if _, err := u.db.Exec(ctx, `
		UPDATE users SET phone_num = $1 WHERE login = $2
	`, phoneNum, login); err != nil {
		return fmt.Errorf("failed to update phone number: %w", err)
	}
	return nil
}

// Favorites returns the user's favorite games as a list.
func (u *Users) Favorites(ctx context.Context, login string) ([]string, error) {
	user, err := u.Get(ctx, login)
	if err != nil {
		return nil, err
	}
	return splitFavorites(user.FavoriteGames), nil
}

// AddFavorite appends a game to the favorites list. Duplicates are allowed.
func (u *Users) AddFavorite(ctx context.Context, login, game string) error {
	user, err := u.Get(ctx, login)
	if err != nil {
		return err
	}

	games := append(splitFavorites(user.FavoriteGames), strings.TrimSpace(game))
	return u.writeFavorites(ctx, login, games)
}

// RemoveFavorite deletes exactly one matching entry from the favorites
// list. Removing a game that is not listed is a no-op.
func (u *Users) RemoveFavorite(ctx context.Context, login, game string) error {
	user, err := u.Get(ctx, login)
	if err != nil {
		return err
	}

	games := removeOneFavorite(splitFavorites(user.FavoriteGames), game)
	return u.writeFavorites(ctx, login, games)
}

func (u *Users) writeFavorites(ctx context.Context, login string, games []string) error {
	if _, err := u.db.Exec(ctx, `
		UPDATE users SET favorite_games = $1 WHERE login = $2
	`, joinFavorites(games), login); err != nil {
		return fmt.Errorf("failed to update favorite games: %w", err)
	}
	return nil
}

// UserChanges describes an administrative update. Nil fields are untouched.
type UserChanges struct {
	NewLogin        *string
	NewRole         *Role
	NumOverdueGames *int
}

// AdminUpdate applies manager-only changes to another user's row. The role
// value is validated before anything is written.
func (u *Users) AdminUpdate(ctx context.Context, actor Session, target string, changes UserChanges) error {
	if !actor.Role.CanManageUsers() {
		return fmt.Errorf("update user: %w", ErrPermissionDenied)
	}

	if _, err := u.Get(ctx, target); err != nil {
		return err
	}

	if changes.NewRole != nil {
		if _, err := ParseRole(string(*changes.NewRole)); err != nil {
			return err
		}
		if _, err := u.db.Exec(ctx, `
			UPDATE users SET role = $1 WHERE login = $2
		`, string(*changes.NewRole), target); err != nil {
			return fmt.Errorf("failed to update role: %w", err)
		}
	}

	if changes.NumOverdueGames != nil {
		if _, err := u.db.Exec(ctx, `
			UPDATE users SET num_overdue_games = $1 WHERE login = $2
		`, *changes.NumOverdueGames, target); err != nil {
			return fmt.Errorf("failed to update overdue count: %w", err)
		}
	}

	// Login rename last: it is the key every other update addresses.
	if changes.NewLogin != nil {
		if _, err := u.db.Exec(ctx, `
			UPDATE users SET login = $1 WHERE login = $2
		`, *changes.NewLogin, target); err != nil {
			return fmt.Errorf("failed to update login: %w", err)
		}
	}

	return nil
}

// splitFavorites parses the comma-joined favorites field. Empty fields and
// surrounding whitespace are dropped.
func splitFavorites(s string) []string {
	var games []string
	for _, part := range strings.Split(s, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			games = append(games, trimmed)
		}
	}
	return games
}

// joinFavorites re-joins the list with no stray separators.
func joinFavorites(games []string) string {
	return strings.Join(games, ", ")
}

// removeOneFavorite removes the first exact match from the list.
func removeOneFavorite(games []string, game string) []string {
	target := strings.TrimSpace(game)
	for i, g := range games {
		if g == target {
			return append(games[:i:i], games[i+1:]...)
		}
	}
	return games
}
