package cli

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/accessflow/internal/common"
	"github.com/dmitrijs2005/accessflow/internal/logging"
	"github.com/dmitrijs2005/accessflow/internal/models"
	"github.com/dmitrijs2005/accessflow/internal/repositories/kv"
)

type fakeExec struct {
	loggedIn bool
	failWith error

	calls []string
}

func (f *fakeExec) record(format string, args ...any) error {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
	return f.failWith
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }
func (f *fakeExec) Register(ctx context.Context, name, email, password string) error {
	f.loggedIn = true
	return f.record("register")
}
func (f *fakeExec) Login(ctx context.Context, email, password string) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(ctx context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) WhoAmI(ctx context.Context) error { return f.record("whoami") }
func (f *fakeExec) DeleteAccount(ctx context.Context, confirmed bool) error {
	return f.record("delete confirmed=%v", confirmed)
}
func (f *fakeExec) Orders(ctx context.Context) error    { return f.record("orders") }
func (f *fakeExec) Products(category string) error      { return f.record("products %q", category) }
func (f *fakeExec) CartShow(ctx context.Context) error  { return f.record("cart") }
func (f *fakeExec) CartClear(ctx context.Context) error { return f.record("clear") }
func (f *fakeExec) CartAdd(ctx context.Context, productID, qty int) error {
	return f.record("add %d %d", productID, qty)
}
func (f *fakeExec) CartSet(ctx context.Context, productID, qty int) error {
	return f.record("set %d %d", productID, qty)
}
func (f *fakeExec) CartRemove(ctx context.Context, productID int) error {
	return f.record("remove %d", productID)
}
func (f *fakeExec) Checkout(ctx context.Context, ship models.ShippingInfo) error {
	return f.record("checkout")
}

// capturePrintln replaces printlnFn and returns everything printed.
func capturePrintln(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func script(lines ...string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(strings.Join(lines, "\n")))
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	out := capturePrintln(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "(guest, cart: 0)" }, script(
		"help",
		"login",
		"help",
		"products",
		"p Home Goods",
		"c",
		"add 4",
		"add 4 3",
		"set 4 2",
		"rm 4",
		"remove 5",
		"clear",
		"checkout",
		"whoami",
		"orders",
		"delete-account",
		"logout",
		"register",
		"",
		"foobar",
		"exit",
		"cart",
	))

	assert.Equal(t, []string{
		"login",
		`products ""`,
		`products "Home Goods"`,
		"cart",
		"add 4 1",
		"add 4 3",
		"set 4 2",
		"remove 4",
		"remove 5",
		"clear",
		"checkout",
		"whoami",
		"orders",
		"delete confirmed=false",
		"logout",
		"register",
	}, exec.calls)

	assert.Contains(t, *out, helpGuest)
	assert.Contains(t, *out, helpLoggedIn)
	assert.Contains(t, *out, "Unknown command: foobar")
	assert.Contains(t, *out, "Bye!")
	assert.Equal(t, "shop (guest, cart: 0) > ", (*out)[0])
}

func TestRunREPL_PrintsErrorsAndContinues(t *testing.T) {
	out := capturePrintln(t)

	exec := &fakeExec{failWith: common.ErrEmptyCart}
	runREPL(context.Background(), exec, func() string { return "" }, script(
		"checkout",
		"add",
		"add x",
		"set 1",
		"set 1 y",
		"cart",
	))

	assert.Equal(t, []string{"checkout", "cart"}, exec.calls)
	assert.Contains(t, *out, "Your cart is empty.")
	assert.Contains(t, *out, "Error: product id is required")
	assert.Contains(t, *out, `Error: invalid product id "x"`)
	assert.Contains(t, *out, "Error: quantity is required")
	assert.Contains(t, *out, `Error: invalid quantity "y"`)
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	capturePrintln(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, script("whoami"))

	assert.Equal(t, []string{"whoami"}, exec.calls)
}

func TestParseIDQty(t *testing.T) {
	id, qty, err := parseIDQty([]string{"7"}, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, id)
	assert.Equal(t, 1, qty)

	id, qty, err = parseIDQty([]string{"7", "-2"}, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, id)
	assert.Equal(t, -2, qty)

	_, _, err = parseIDQty([]string{"7"}, -1)
	assert.ErrorContains(t, err, "quantity is required")

	_, _, err = parseIDQty(nil, 1)
	assert.ErrorContains(t, err, "product id is required")
}

// The shell and the prompts of its commands read the same input.
func TestShell_PromptsShareInput(t *testing.T) {
	out := capturePrintln(t)

	oldTerm := isTerminal
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() { isTerminal = oldTerm })

	repo := kv.NewMemoryRepository()
	ctx := context.Background()
	app, err := newApp(ctx, testConfig(), repo, nil, logging.NewNop())
	require.NoError(t, err)

	var buf bytes.Buffer
	app.SetIO(&buf, strings.NewReader(strings.Join([]string{
		"register",
		"Carol",
		"carol@example.com",
		"Secret1",
		"add 1 2",
		"exit",
	}, "\n")))

	app.Shell(ctx)

	assert.Contains(t, buf.String(), "Welcome, Carol!")
	assert.Contains(t, buf.String(), "2 item(s)")
	assert.Contains(t, *out, "shop (carol@example.com, cart: 0) > ")
	assert.Contains(t, *out, "shop (carol@example.com, cart: 2) > ")
}
