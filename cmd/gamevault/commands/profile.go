package commands

import (
	"context"
	"errors"
	"strconv"

	"github.com/gamevault/gamevault/cmd/gamevault/output"
	"github.com/gamevault/gamevault/cmd/gamevault/tui"
	"github.com/gamevault/gamevault/pkg/rental"
)

func viewProfile(ctx context.Context, svc *services, session rental.Session) {
	user, err := svc.users.Get(ctx, session.Login)
	if err != nil {
		reportError(err)
		return
	}

	output.Section("Profile")
	output.Table(
		[]string{"LOGIN", "ROLE", "PHONE", "FAVORITE GAMES", "OVERDUE"},
		[][]string{{
			user.Login,
			string(user.Role),
			user.PhoneNum,
			user.FavoriteGames,
			strconv.Itoa(user.NumOverdueGames),
		}},
	)
}

func updateProfile(ctx context.Context, svc *services, session rental.Session) {
	choice, ok, err := tui.RunMenu("Update Your Profile", []tui.MenuItem{
		{Key: 1, Label: "Update password"},
		{Key: 2, Label: "Update phone number"},
		{Key: 3, Label: "Update favorite games"},
	})
	if err != nil || !ok {
		return
	}

	switch choice {
	case 1:
		updatePassword(ctx, svc, session)
	case 2:
		updatePhone(ctx, svc, session)
	case 3:
		updateFavorites(ctx, svc, session)
	}
}

// updatePassword gates the change on the current password. Mismatches are
// reprompted up to the attempt limit, then the operation is abandoned.
func updatePassword(ctx context.Context, svc *services, session rental.Session) {
	for attempt := 0; attempt < svc.prompt.MaxAttempts; attempt++ {
		current, outcome, err := svc.prompt.Password("Current password")
		if err != nil || outcome == tui.Abandoned {
			return
		}
		next, outcome, err := svc.prompt.Password("New password")
		if err != nil || outcome == tui.Abandoned {
			return
		}

		err = svc.users.UpdatePassword(ctx, session.Login, current, next)
		if errors.Is(err, rental.ErrWrongPassword) {
			output.Warning("Wrong password, try again.")
			continue
		}
		if err != nil {
			reportError(err)
			return
		}

		output.Success("Password updated")
		return
	}
	output.Warning("Too many wrong attempts, going back.")
}

func updatePhone(ctx context.Context, svc *services, session rental.Session) {
	phone, outcome, err := svc.prompt.Line("New phone number")
	if err != nil || outcome == tui.Abandoned {
		return
	}

	if err := svc.users.UpdatePhone(ctx, session.Login, phone); err != nil {
		reportError(err)
		return
	}
	output.Success("Phone number updated")
}

func updateFavorites(ctx context.Context, svc *services, session rental.Session) {
	for {
		games, err := svc.users.Favorites(ctx, session.Login)
		if err != nil {
			reportError(err)
			return
		}
		if len(games) == 0 {
			output.Muted("No favorite games yet.")
		} else {
			rows := make([][]string, len(games))
			for i, g := range games {
				rows[i] = []string{strconv.Itoa(i + 1), g}
			}
			output.Table([]string{"#", "GAME"}, rows)
		}

		choice, ok, err := tui.RunMenu("Favorite Games", []tui.MenuItem{
			{Key: 1, Label: "Add a game"},
			{Key: 2, Label: "Remove a game"},
			{Key: 9, Label: "Done"},
		})
		if err != nil || !ok || choice == 9 {
			return
		}

		name, outcome, err := svc.prompt.Line("Game name")
		if err != nil || outcome == tui.Abandoned || name == "" {
			continue
		}

		switch choice {
		case 1:
			err = svc.users.AddFavorite(ctx, session.Login, name)
		case 2:
			err = svc.users.RemoveFavorite(ctx, session.Login, name)
		}
		if err != nil {
			reportError(err)
			return
		}
		output.Success("Favorite games updated")
	}
}
