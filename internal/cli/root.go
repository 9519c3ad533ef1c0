package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/accessflow/internal/buildinfo"
	"github.com/dmitrijs2005/accessflow/internal/config"
	"github.com/dmitrijs2005/accessflow/internal/models"
)

// appHolder hands the App built in PersistentPreRunE to the subcommands.
type appHolder struct {
	app *App
}

// Run executes the command line in args. The App is built once the command
// is resolved and closed afterwards, also when the command fails.
func Run(ctx context.Context, cfg *config.Config, factory AppFactory, args []string, in io.Reader, out io.Writer) (err error) {
	h := &appHolder{}
	root := newRootCommand(cfg, factory, h)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(out)

	defer func() {
		if h.app != nil {
			err = errors.Join(err, h.app.Close(ctx))
		}
	}()

	return root.ExecuteContext(ctx)
}

// newRootCommand builds the storefront command tree. cfg already carries
// defaults and the config file; the persistent flags override it.
func newRootCommand(cfg *config.Config, factory AppFactory, h *appHolder) *cobra.Command {
	root := &cobra.Command{
		Use:           "storefront",
		Short:         "AccessFlow demo storefront",
		Long:          "Browse products, manage the cart and place orders from the command line.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !needsApp(cmd) {
				return nil
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			app, err := factory(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			app.SetIO(cmd.OutOrStdout(), cmd.InOrStdin())
			h.app = app
			return nil
		},
	}

	config.BindFlags(root.PersistentFlags(), cfg)

	root.AddCommand(
		newVersionCommand(),
		newRegisterCommand(h),
		newLoginCommand(h),
		newLogoutCommand(h),
		newWhoAmICommand(h),
		newProfileCommand(h),
		newAccountCommand(h),
		newOrdersCommand(h),
		newProductsCommand(h),
		newCartCommand(h),
		newCheckoutCommand(h),
		newResetCommand(h),
		newShellCommand(h),
	)
	return root
}

func needsApp(cmd *cobra.Command) bool {
	return cmd.Name() != "help" && cmd.Annotations["skipApp"] != "true"
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print build information",
		Annotations: map[string]string{"skipApp": "true"},
		Run: func(cmd *cobra.Command, args []string) {
			buildinfo.PrintBuildData(cmd.OutOrStdout())
		},
	}
}

func newRegisterCommand(h *appHolder) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account and log in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return h.app.Register(cmd.Context(), name, email, password)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address (prompted when empty)")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted without echo when empty)")
	return cmd
}

func newLoginCommand(h *appHolder) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in with email and password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return h.app.Login(cmd.Context(), email, password)
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "email address (prompted when empty)")
	cmd.Flags().StringVar(&password, "password", "", "password (prompted without echo when empty)")
	return cmd
}

func newLogoutCommand(h *appHolder) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return h.app.Logout(cmd.Context())
		},
	}
}

func newWhoAmICommand(h *appHolder) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return h.app.WhoAmI(cmd.Context())
		},
	}
}

func newProfileCommand(h *appHolder) *cobra.Command {
	profile := &cobra.Command{
		Use:   "profile",
		Short: "Manage the profile of the logged-in account",
	}

	var name, email, password string
	update := &cobra.Command{
		Use:   "update",
		Short: "Change name, email or password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var upd models.ProfileUpdate
			if cmd.Flags().Changed("name") {
				upd.Name = &name
			}
			if cmd.Flags().Changed("email") {
				upd.Email = &email
			}
			if cmd.Flags().Changed("password") {
				upd.Password = &password
			}
			return h.app.UpdateProfile(cmd.Context(), upd)
		},
	}
	update.Flags().StringVar(&name, "name", "", "new display name")
	update.Flags().StringVar(&email, "email", "", "new email address")
	update.Flags().StringVar(&password, "password", "", "new password")

	profile.AddCommand(update)
	return profile
}

func newAccountCommand(h *appHolder) *cobra.Command {
	account := &cobra.Command{
		Use:   "account",
		Short: "Manage the logged-in account",
	}

	var yes bool
	del := &cobra.Command{
		Use:   "delete",
		Short: "Delete the account and log out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return h.app.DeleteAccount(cmd.Context(), yes)
		},
	}
	del.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	account.AddCommand(del)
	return account
}

func newOrdersCommand(h *appHolder) *cobra.Command {
	return &cobra.Command{
		Use:   "orders",
		Short: "List the orders of the logged-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return h.app.Orders(cmd.Context())
		},
	}
}

func newProductsCommand(h *appHolder) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "products",
		Short: "List catalog products",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return h.app.Products(category)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only show this category")
	return cmd
}

func parseInt(name, s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, s)
	}
	return n, nil
}

func newCartCommand(h *appHolder) *cobra.Command {
	cart := &cobra.Command{
		Use:   "cart",
		Short: "Show or change the shopping cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return h.app.CartShow(cmd.Context())
		},
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show cart contents and total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return h.app.CartShow(cmd.Context())
		},
	}

	add := &cobra.Command{
		Use:   "add <product-id> [quantity]",
		Short: "Add a product; quantity is capped at the available stock",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseInt("product id", args[0])
			if err != nil {
				return err
			}
			qty := 1
			if len(args) == 2 {
				if qty, err = parseInt("quantity", args[1]); err != nil {
					return err
				}
			}
			return h.app.CartAdd(cmd.Context(), id, qty)
		},
	}

	set := &cobra.Command{
		Use:   "set <product-id> <quantity>",
		Short: "Set the quantity of a cart line; 0 removes it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseInt("product id", args[0])
			if err != nil {
				return err
			}
			qty, err := parseInt("quantity", args[1])
			if err != nil {
				return err
			}
			return h.app.CartSet(cmd.Context(), id, qty)
		},
	}

	remove := &cobra.Command{
		Use:   "remove <product-id>",
		Short: "Remove a product from the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseInt("product id", args[0])
			if err != nil {
				return err
			}
			return h.app.CartRemove(cmd.Context(), id)
		},
	}

	clear := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return h.app.CartClear(cmd.Context())
		},
	}

	cart.AddCommand(show, add, set, remove, clear)
	return cart
}

func newCheckoutCommand(h *appHolder) *cobra.Command {
	var ship models.ShippingInfo
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart contents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return h.app.Checkout(cmd.Context(), ship)
		},
	}
	cmd.Flags().StringVar(&ship.FullName, "full-name", "", "recipient name")
	cmd.Flags().StringVar(&ship.Address, "address", "", "street address")
	cmd.Flags().StringVar(&ship.City, "city", "", "city")
	cmd.Flags().StringVar(&ship.PostalCode, "postal-code", "", "postal code")
	cmd.Flags().StringVar(&ship.Country, "country", "", "country")
	return cmd
}

func newResetCommand(h *appHolder) *cobra.Command {
	return &cobra.Command{
		Use:       "reset [accounts|session|cart|all]",
		Short:     "Delete stored records, for example after corruption",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"accounts", "session", "cart", "all"},
		RunE: func(cmd *cobra.Command, args []string) error {
			what := "all"
			if len(args) == 1 {
				what = args[0]
			}
			return h.app.Reset(cmd.Context(), what)
		},
	}
}

func newShellCommand(h *appHolder) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive shell",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			h.app.Shell(cmd.Context())
			return nil
		},
	}
}
