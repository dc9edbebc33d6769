package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gamevault/gamevault/cmd/gamevault/output"
	"github.com/gamevault/gamevault/cmd/gamevault/tui"
	"github.com/gamevault/gamevault/pkg/rental"
)

const timeFormat = "2006-01-02 15:04:05"

// placeOrder collects the item list and submits it as one atomic order.
// Nothing is written until every item has been priced.
func placeOrder(ctx context.Context, svc *services, session rental.Session) {
	output.Section("Place Rental Order")

	count, outcome, err := svc.prompt.Int("How many games?")
	if err != nil || outcome == tui.Abandoned {
		return
	}
	if count <= 0 {
		output.Warning("An order needs at least one game.")
		return
	}

	items := make([]rental.OrderItem, 0, count)
	for i := 0; i < count; i++ {
		gameID, outcome, err := svc.prompt.Line(fmt.Sprintf("Game %d of %d: game ID", i+1, count))
		if err != nil || outcome == tui.Abandoned || gameID == "" {
			output.Warning("Order abandoned, nothing was placed.")
			return
		}
		units, outcome, err := svc.prompt.Int("Quantity")
		if err != nil || outcome == tui.Abandoned {
			output.Warning("Order abandoned, nothing was placed.")
			return
		}
		items = append(items, rental.OrderItem{GameID: gameID, Units: units})
	}

	placed, err := svc.orders.Place(ctx, session.Login, items)
	if err != nil {
		reportError(err)
		return
	}

	output.Success("Order %s placed", placed.Order.RentalOrderID)
	output.Table(
		[]string{"ORDER ID", "GAMES", "TOTAL", "DUE DATE", "TRACKING ID"},
		[][]string{{
			placed.Order.RentalOrderID,
			strconv.Itoa(placed.Order.NoOfGames),
			fmt.Sprintf("$%.2f", placed.Order.TotalPrice),
			placed.Order.DueDate.Format("2006-01-02"),
			placed.Tracking.TrackingID,
		}},
	)
}

// viewOrderHistory prints the session user's orders; limit 0 means all.
func viewOrderHistory(ctx context.Context, svc *services, session rental.Session, limit int) {
	var (
		orders []rental.RentalOrder
		err    error
	)
	if limit > 0 {
		output.Section(fmt.Sprintf("Past %d Rental Orders", limit))
		orders, err = svc.orders.Recent(ctx, session.Login, limit)
	} else {
		output.Section("Full Rental Order History")
		orders, err = svc.orders.History(ctx, session.Login)
	}
	if err != nil {
		reportError(err)
		return
	}
	if len(orders) == 0 {
		output.Muted("No orders yet.")
		return
	}

	rows := make([][]string, len(orders))
	for i, ord := range orders {
		rows[i] = []string{
			ord.RentalOrderID,
			strconv.Itoa(ord.NoOfGames),
			fmt.Sprintf("$%.2f", ord.TotalPrice),
			ord.OrderTimestamp.Format(timeFormat),
			ord.DueDate.Format("2006-01-02"),
		}
	}
	output.Table([]string{"ORDER ID", "GAMES", "TOTAL", "PLACED", "DUE"}, rows)
}

func viewOrderInfo(ctx context.Context, svc *services, session rental.Session) {
	orderID, outcome, err := svc.prompt.Line("Rental order ID")
	if err != nil || outcome == tui.Abandoned || orderID == "" {
		return
	}

	order, lines, err := svc.orders.Info(ctx, session, orderID)
	if err != nil {
		reportError(err)
		return
	}

	output.Section("Order " + order.RentalOrderID)
	output.Info("Placed %s by %s, due %s, total $%.2f",
		order.OrderTimestamp.Format(timeFormat),
		order.Login,
		order.DueDate.Format("2006-01-02"),
		order.TotalPrice,
	)

	rows := make([][]string, len(lines))
	for i, line := range lines {
		rows[i] = []string{line.GameID, line.GameName, strconv.Itoa(line.UnitsOrdered)}
	}
	output.Table([]string{"GAME ID", "NAME", "UNITS"}, rows)
}

func viewTrackingInfo(ctx context.Context, svc *services, session rental.Session) {
	orderID, outcome, err := svc.prompt.Line("Rental order ID")
	if err != nil || outcome == tui.Abandoned || orderID == "" {
		return
	}

	info, err := svc.tracking.ForOrder(ctx, session, orderID)
	if err != nil {
		reportError(err)
		return
	}
	printTracking(info)
}

func printTracking(info *rental.TrackingInfo) {
	output.Section("Tracking " + info.TrackingID)
	fmt.Println(tui.FormatShipmentStatus(string(info.Status)))
	output.Table(
		[]string{"ORDER ID", "LOCATION", "COURIER", "LAST UPDATE"},
		[][]string{{
			info.RentalOrderID,
			info.CurrentLocation,
			info.CourierName,
			info.LastUpdateDate.Format(timeFormat),
		}},
	)
	if info.AdditionalComments != "" {
		output.Muted("Comments: %s", info.AdditionalComments)
	}
}
