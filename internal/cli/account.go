package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/accessflow/internal/common"
	"github.com/dmitrijs2005/accessflow/internal/models"
)

// askText returns value, or prompts for it when it is empty.
func (a *App) askText(value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	return getSimpleText(a.reader, prompt, a.out)
}

// askPassword returns value, or prompts for it when it is empty.
func (a *App) askPassword(value string) (string, error) {
	if value != "" {
		return value, nil
	}
	pw, err := getPassword(a.reader, a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(pw)
	return string(pw), nil
}

// Register creates an account, prompting for the fields not given.
func (a *App) Register(ctx context.Context, name, email, password string) error {
	var err error
	if name, err = a.askText(name, "Enter name"); err != nil {
		return err
	}
	if email, err = a.askText(email, "Enter email"); err != nil {
		return err
	}
	if password, err = a.askPassword(password); err != nil {
		return err
	}

	acc, err := a.accounts.Register(ctx, models.NewAccountInput{Name: name, Email: email, Password: password})
	if err != nil {
		return err
	}

	a.printf("Welcome, %s! Your account has been created.\n", displayName(acc))
	return nil
}

// Login starts a session, prompting for the fields not given.
func (a *App) Login(ctx context.Context, email, password string) error {
	var err error
	if email, err = a.askText(email, "Enter email"); err != nil {
		return err
	}
	if password, err = a.askPassword(password); err != nil {
		return err
	}

	acc, err := a.accounts.Login(ctx, email, password)
	if err != nil {
		return err
	}

	a.printf("Logged in as %s.\n", displayName(acc))
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.accounts.Logout(ctx); err != nil {
		return err
	}
	a.println("Logged out.")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	acc, err := a.accounts.Current(ctx)
	if err != nil {
		return err
	}
	if acc == nil {
		a.println("Not logged in.")
		return nil
	}

	a.printf("%s <%s>\n", acc.Name, acc.Email)
	a.printf("Member since %s, %d order(s)\n", acc.CreatedAt.Format("2006-01-02"), len(acc.Orders))
	return nil
}

func (a *App) UpdateProfile(ctx context.Context, upd models.ProfileUpdate) error {
	if upd.Name == nil && upd.Email == nil && upd.Password == nil {
		return fmt.Errorf("nothing to update: %w", common.ErrInvalidInput)
	}

	acc, err := a.accounts.UpdateProfile(ctx, upd)
	if err != nil {
		return err
	}

	a.printf("Profile updated: %s <%s>\n", acc.Name, acc.Email)
	return nil
}

// DeleteAccount asks for confirmation unless confirmed is set.
func (a *App) DeleteAccount(ctx context.Context, confirmed bool) error {
	if !confirmed {
		answer, err := getSimpleText(a.reader, "Type 'delete' to remove your account permanently", a.out)
		if err != nil {
			return err
		}
		if answer != "delete" {
			a.println("Cancelled.")
			return nil
		}
	}

	if err := a.accounts.DeleteAccount(ctx); err != nil {
		return err
	}
	a.println("Account deleted.")
	return nil
}

func (a *App) Orders(ctx context.Context) error {
	acc, err := a.accounts.Current(ctx)
	if err != nil {
		return err
	}
	if acc == nil {
		return common.ErrUnauthorized
	}

	if len(acc.Orders) == 0 {
		a.println("No orders yet.")
		return nil
	}

	for _, o := range acc.Orders {
		units := 0
		for _, it := range o.Items {
			units += it.Quantity
		}
		a.printf("#%d  %s  %d item(s)  $%s  %s\n",
			o.ID, o.Date.Format("2006-01-02 15:04"), units, o.Total.StringFixed(2), o.Reference)
	}
	return nil
}

func displayName(acc *models.Account) string {
	if acc.Name != "" {
		return acc.Name
	}
	return acc.Email
}
