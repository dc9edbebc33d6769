package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/gamevault/gamevault/cmd/gamevault/output"
	"github.com/gamevault/gamevault/cmd/gamevault/tui"
	"github.com/gamevault/gamevault/pkg/rental"
	"github.com/gamevault/gamevault/pkg/store"
)

// services bundles everything a menu handler needs. It is built once per
// shell invocation and passed explicitly; there is no global session state.
type services struct {
	users    *rental.Users
	catalog  *rental.Catalog
	orders   *rental.Orders
	tracking *rental.Tracking
	prompt   *tui.Prompter
}

// shellCmd runs the interactive store session.
var shellCmd = &cobra.Command{
	Use:   "shell <dbname> <port> <user>",
	Short: "Run the interactive store session",
	Long: `Run the interactive store session against an existing database.

Examples:
  gamevault shell gamerental 5432 postgres
  GAMEVAULT_PASSWORD=secret gamevault shell gamerental 5432 app`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell(cmd.Context(), args)
	},
}

func init() {
	rootCmd.AddCommand(shellCmd)
}

func runShell(ctx context.Context, args []string) error {
	output.Banner(
		"Game Rental Store",
		"",
		"Welcome to the GameVault rental desk",
	)

	log := newLogger()
	defer func() { _ = log.Sync() }()

	db, err := connect(ctx, args, log)
	if err != nil {
		return err
	}
	defer db.Close()

	svc := newServices(db)

	for {
		choice, ok, err := tui.RunMenu("Main Menu", []tui.MenuItem{
			{Key: 1, Label: "Create an account"},
			{Key: 2, Label: "Log in"},
			{Key: 9, Label: "Exit"},
		})
		if err != nil {
			return err
		}
		if !ok || choice == 9 {
			output.Muted("Bye!")
			return nil
		}

		switch choice {
		case 1:
			createAccount(ctx, svc)
		case 2:
			session, err := logIn(ctx, svc)
			if err != nil {
				reportError(err)
				continue
			}
			if session != nil {
				output.Success("Welcome back, %s!", session.Login)
				if err := homeLoop(ctx, svc, *session); err != nil {
					return err
				}
			}
		}
	}
}

func newServices(db *store.DB) *services {
	return &services{
		users:    rental.NewUsers(db),
		catalog:  rental.NewCatalog(db),
		orders:   rental.NewOrders(db),
		tracking: rental.NewTracking(db),
		prompt:   tui.NewPrompter(),
	}
}

func createAccount(ctx context.Context, svc *services) {
	output.Section("Create Account")

	login, outcome, err := svc.prompt.Line("Login name")
	if err != nil || outcome == tui.Abandoned || login == "" {
		return
	}
	password, outcome, err := svc.prompt.Password("Password")
	if err != nil || outcome == tui.Abandoned {
		return
	}
	phone, outcome, err := svc.prompt.Line("Phone number (just the 10 digits)")
	if err != nil || outcome == tui.Abandoned {
		return
	}

	if err := svc.users.Create(ctx, login, password, phone); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			output.Warning("Login %s is already taken", login)
			return
		}
		reportError(err)
		return
	}
	output.Success("User %s created", login)
}

// logIn checks credentials and returns a session, or nil when the user
// backed out. All three values must match the stored row.
func logIn(ctx context.Context, svc *services) (*rental.Session, error) {
	output.Section("Log In")

	login, outcome, err := svc.prompt.Line("Login name")
	if err != nil || outcome == tui.Abandoned {
		return nil, err
	}
	password, outcome, err := svc.prompt.Password("Password")
	if err != nil || outcome == tui.Abandoned {
		return nil, err
	}
	phone, outcome, err := svc.prompt.Line("Phone number (just the 10 digits)")
	if err != nil || outcome == tui.Abandoned {
		return nil, err
	}

	session, err := svc.users.Authenticate(ctx, login, password, phone)
	if errors.Is(err, rental.ErrNoSession) {
		output.Warning("Login failed: no matching account")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// reportError prints a handler failure and hands control back to the menu.
// Nothing in the session is retried automatically.
func reportError(err error) {
	output.Error("%v", err)
}
