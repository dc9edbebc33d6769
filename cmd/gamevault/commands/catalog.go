package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/gamevault/gamevault/cmd/gamevault/output"
	"github.com/gamevault/gamevault/cmd/gamevault/tui"
	"github.com/gamevault/gamevault/pkg/rental"
)

func viewCatalog(ctx context.Context, svc *services) {
	choice, ok, err := tui.RunMenu("View Catalog", []tui.MenuItem{
		{Key: 1, Label: "Browse by genre"},
		{Key: 2, Label: "Search by price range"},
	})
	if err != nil || !ok {
		return
	}

	switch choice {
	case 1:
		browseByGenre(ctx, svc)
	case 2:
		searchByPrice(ctx, svc)
	}
}

func browseByGenre(ctx context.Context, svc *services) {
	for {
		genres, err := svc.catalog.Genres(ctx)
		if err != nil {
			reportError(err)
			return
		}
		if len(genres) == 0 {
			output.Muted("The catalog is empty.")
			return
		}

		items := make([]tui.MenuItem, len(genres))
		for i, genre := range genres {
			items[i] = tui.MenuItem{Key: i + 1, Label: genre}
		}
		choice, ok, err := tui.RunMenu("Genres", items)
		if err != nil || !ok {
			return
		}

		entries, err := svc.catalog.ByGenre(ctx, genres[choice-1])
		if err != nil {
			reportError(err)
			return
		}
		printCatalog(entries)

		again, err := tui.Confirm("Browse again?", "Look at another genre?")
		if err != nil || !again {
			return
		}
	}
}

func searchByPrice(ctx context.Context, svc *services) {
	for {
		min, outcome, err := svc.prompt.Float("Minimum price")
		if err != nil || outcome == tui.Abandoned {
			return
		}
		max, outcome, err := svc.prompt.Float("Maximum price")
		if err != nil || outcome == tui.Abandoned {
			return
		}

		choice, ok, err := tui.RunMenu("Sort by price", []tui.MenuItem{
			{Key: 1, Label: "Lowest first"},
			{Key: 2, Label: "Highest first"},
		})
		if err != nil || !ok {
			return
		}
		order := rental.PriceAscending
		if choice == 2 {
			order = rental.PriceDescending
		}

		entries, err := svc.catalog.ByPriceRange(ctx, min, max, order)
		if err != nil {
			reportError(err)
			return
		}
		printCatalog(entries)

		again, err := tui.Confirm("Search again?", "Run another price search?")
		if err != nil || !again {
			return
		}
	}
}

func printCatalog(entries []rental.CatalogEntry) {
	if len(entries) == 0 {
		output.Muted("No games matched.")
		return
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.GameID, e.GameName, e.Genre, fmt.Sprintf("$%.2f", e.Price)}
	}
	output.Table([]string{"GAME ID", "NAME", "GENRE", "PRICE"}, rows)
}

// updateCatalog lets a manager change an entry's genre and/or price.
// Leaving a field blank keeps the stored value.
func updateCatalog(ctx context.Context, svc *services, session rental.Session) {
	gameID, outcome, err := svc.prompt.Line("Game ID")
	if err != nil || outcome == tui.Abandoned || gameID == "" {
		return
	}

	entry, err := svc.catalog.Get(ctx, gameID)
	if err != nil {
		reportError(err)
		return
	}
	printCatalog([]rental.CatalogEntry{*entry})

	var changes rental.CatalogChanges

	genre, outcome, err := svc.prompt.Line("New genre (blank to keep)")
	if err != nil || outcome == tui.Abandoned {
		return
	}
	if genre != "" {
		changes.NewGenre = &genre
	}

	raw, outcome, err := svc.prompt.Line("New price (blank to keep)")
	if err != nil || outcome == tui.Abandoned {
		return
	}
	if raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			output.Warning("Not a number: %s", raw)
			return
		}
		changes.NewPrice = &price
	}

	if changes.NewGenre == nil && changes.NewPrice == nil {
		output.Muted("Nothing to change.")
		return
	}

	if err := svc.catalog.Update(ctx, session, gameID, changes); err != nil {
		reportError(err)
		return
	}
	output.Success("Catalog entry %s updated", gameID)
}
