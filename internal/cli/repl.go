package cli

import (
	"bufio"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/accessflow/internal/models"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface is the command surface the shell needs. *App satisfies it; tests
// provide a recording stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context, name, email, password string) error
	Login(ctx context.Context, email, password string) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	DeleteAccount(ctx context.Context, confirmed bool) error
	Orders(ctx context.Context) error
	Products(category string) error
	CartShow(ctx context.Context) error
	CartAdd(ctx context.Context, productID, qty int) error
	CartSet(ctx context.Context, productID, qty int) error
	CartRemove(ctx context.Context, productID int) error
	CartClear(ctx context.Context) error
	Checkout(ctx context.Context, ship models.ShippingInfo) error
}

const (
	helpGuest    = "Available commands: register, login, products [category], cart, add <id> [qty], set <id> <qty>, remove <id>, clear, exit"
	helpLoggedIn = "Available commands: whoami, orders, products [category], cart, add <id> [qty], set <id> <qty>, remove <id>, clear, checkout, logout, delete-account, exit"
)

// runREPL reads commands line by line from reader and dispatches them to a.
// Commands that prompt read from the same reader, so no input is buffered
// away from them. Errors are printed and the loop continues. It returns on
// EOF or when the user types "exit" or "quit".
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("shop %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		err = nil
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpGuest)
			}

		case "register":
			err = a.Register(ctx, "", "", "")
		case "login":
			err = a.Login(ctx, "", "")
		case "logout":
			err = a.Logout(ctx)
		case "whoami":
			err = a.WhoAmI(ctx)
		case "delete-account":
			err = a.DeleteAccount(ctx, false)
		case "orders":
			err = a.Orders(ctx)

		case "products", "p":
			category := ""
			if len(args) > 0 {
				category = strings.Join(args, " ")
			}
			err = a.Products(category)

		case "cart", "c":
			err = a.CartShow(ctx)

		case "add":
			var id, qty int
			if id, qty, err = parseIDQty(args, 1); err == nil {
				err = a.CartAdd(ctx, id, qty)
			}

		case "set":
			var id, qty int
			if id, qty, err = parseIDQty(args, -1); err == nil {
				err = a.CartSet(ctx, id, qty)
			}

		case "remove", "rm":
			var id int
			if id, _, err = parseIDQty(args, 0); err == nil {
				err = a.CartRemove(ctx, id)
			}

		case "clear":
			err = a.CartClear(ctx)

		case "checkout":
			err = a.Checkout(ctx, models.ShippingInfo{})

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			printlnFn(UserMessage(err))
		}
	}
}

// parseIDQty parses "<id> [qty]". defQty is used when qty is omitted; a
// negative defQty makes qty mandatory.
func parseIDQty(args []string, defQty int) (int, int, error) {
	if len(args) == 0 {
		return 0, 0, fmt.Errorf("product id is required")
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid product id %q", args[0])
	}

	if len(args) < 2 {
		if defQty < 0 {
			return 0, 0, fmt.Errorf("quantity is required")
		}
		return id, defQty, nil
	}
	qty, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid quantity %q", args[1])
	}
	return id, qty, nil
}

// Shell runs the interactive loop on the App's input.
func (a *App) Shell(ctx context.Context) {
	printlnFn("Welcome to the AccessFlow storefront (type 'help' for commands)")
	runREPL(ctx, a, a.status, a.reader)
}
