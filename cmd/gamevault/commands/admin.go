package commands

import (
	"context"

	"github.com/gamevault/gamevault/cmd/gamevault/output"
	"github.com/gamevault/gamevault/cmd/gamevault/tui"
	"github.com/gamevault/gamevault/pkg/rental"
)

// updateTrackingInfo lets employees and managers edit a tracking row. The
// role check itself lives in the domain layer; the menu only surfaces the
// rejection.
func updateTrackingInfo(ctx context.Context, svc *services, session rental.Session) {
	trackingID, outcome, err := svc.prompt.Line("Tracking ID")
	if err != nil || outcome == tui.Abandoned || trackingID == "" {
		return
	}

	info, err := svc.tracking.Get(ctx, session, trackingID)
	if err != nil {
		reportError(err)
		return
	}
	printTracking(info)

	choice, ok, err := tui.RunMenu("Update Tracking Information", []tui.MenuItem{
		{Key: 1, Label: "Update status"},
		{Key: 2, Label: "Update current location"},
		{Key: 3, Label: "Update courier"},
		{Key: 4, Label: "Update comments"},
	})
	if err != nil || !ok {
		return
	}

	var changes rental.TrackingChanges
	switch choice {
	case 1:
		items := make([]tui.MenuItem, len(rental.ShipmentStatuses))
		for i, status := range rental.ShipmentStatuses {
			items[i] = tui.MenuItem{Key: i + 1, Label: string(status)}
		}
		picked, ok, err := tui.RunMenu("New Status", items)
		if err != nil || !ok {
			return
		}
		status := rental.ShipmentStatuses[picked-1]
		changes.Status = &status
	case 2:
		location, outcome, err := svc.prompt.Line("Current location")
		if err != nil || outcome == tui.Abandoned {
			return
		}
		changes.CurrentLocation = &location
	case 3:
		courier, outcome, err := svc.prompt.Line("Courier name")
		if err != nil || outcome == tui.Abandoned {
			return
		}
		changes.CourierName = &courier
	case 4:
		comments, outcome, err := svc.prompt.Line("Comments")
		if err != nil || outcome == tui.Abandoned {
			return
		}
		changes.AdditionalComments = &comments
	}

	if err := svc.tracking.Update(ctx, session, trackingID, changes); err != nil {
		reportError(err)
		return
	}
	output.Success("Tracking %s updated", trackingID)
}

// updateUser lets a manager edit another account's login, role, or overdue
// count.
func updateUser(ctx context.Context, svc *services, session rental.Session) {
	target, outcome, err := svc.prompt.Line("User login to update")
	if err != nil || outcome == tui.Abandoned || target == "" {
		return
	}

	choice, ok, err := tui.RunMenu("Update User "+target, []tui.MenuItem{
		{Key: 1, Label: "Change login"},
		{Key: 2, Label: "Change role"},
		{Key: 3, Label: "Change overdue game count"},
	})
	if err != nil || !ok {
		return
	}

	var changes rental.UserChanges
	switch choice {
	case 1:
		newLogin, outcome, err := svc.prompt.Line("New login")
		if err != nil || outcome == tui.Abandoned || newLogin == "" {
			return
		}
		changes.NewLogin = &newLogin
	case 2:
		picked, ok, err := tui.RunMenu("New Role", []tui.MenuItem{
			{Key: 1, Label: string(rental.RoleCustomer)},
			{Key: 2, Label: string(rental.RoleEmployee)},
			{Key: 3, Label: string(rental.RoleManager)},
		})
		if err != nil || !ok {
			return
		}
		role := []rental.Role{rental.RoleCustomer, rental.RoleEmployee, rental.RoleManager}[picked-1]
		changes.NewRole = &role
	case 3:
		count, outcome, err := svc.prompt.Int("Overdue game count")
		if err != nil || outcome == tui.Abandoned {
			return
		}
		changes.NumOverdueGames = &count
	}

	if err := svc.users.AdminUpdate(ctx, session, target, changes); err != nil {
		reportError(err)
		return
	}
	output.Success("User %s updated", target)
}
