package commands

import (
	"context"

	"github.com/gamevault/gamevault/cmd/gamevault/output"
	"github.com/gamevault/gamevault/cmd/gamevault/tui"
	"github.com/gamevault/gamevault/pkg/rental"
)

// homeLoop dispatches the logged-in menu until the user logs out. Handler
// failures are printed and control returns to the menu; only UI-level
// errors (a broken terminal) abort the session.
func homeLoop(ctx context.Context, svc *services, session rental.Session) error {
	items := []tui.MenuItem{
		{Key: 1, Label: "View Profile"},
		{Key: 2, Label: "Update Profile"},
		{Key: 3, Label: "View Catalog"},
		{Key: 4, Label: "Place Rental Order"},
		{Key: 5, Label: "View Full Rental Order History"},
		{Key: 6, Label: "View Past 5 Rental Orders"},
		{Key: 7, Label: "View Rental Order Information"},
		{Key: 8, Label: "View Tracking Information"},
		{Key: 9, Label: "Update Tracking Information", Note: "employee and manager access"},
		{Key: 10, Label: "Update Catalog", Note: "manager access"},
		{Key: 11, Label: "Update User", Note: "manager access"},
		{Key: 20, Label: "Log out"},
	}

	for {
		choice, ok, err := tui.RunMenu("My Home ("+session.Login+")", items)
		if err != nil {
			return err
		}
		if !ok || choice == 20 {
			output.Muted("Logged out.")
			return nil
		}

		switch choice {
		case 1:
			viewProfile(ctx, svc, session)
		case 2:
			updateProfile(ctx, svc, session)
		case 3:
			viewCatalog(ctx, svc)
		case 4:
			placeOrder(ctx, svc, session)
		case 5:
			viewOrderHistory(ctx, svc, session, 0)
		case 6:
			viewOrderHistory(ctx, svc, session, 5)
		case 7:
			viewOrderInfo(ctx, svc, session)
		case 8:
			viewTrackingInfo(ctx, svc, session)
		case 9:
			updateTrackingInfo(ctx, svc, session)
		case 10:
			updateCatalog(ctx, svc, session)
		case 11:
			updateUser(ctx, svc, session)
		}
	}
}
