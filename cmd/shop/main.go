// Command shop is a terminal storefront: it signs in against the API, fills a
// cart from product ids and checks out.
//
//	shop [-a addr] products
//	shop [-a addr] -email you@example.com buy <productID>[:qty] ...
//	shop [-a addr] -email you@example.com -name "You" -register buy ...
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/geocoder89/storefront/internal/cart"
	"github.com/geocoder89/storefront/internal/client"
	"github.com/geocoder89/storefront/internal/notifications"
	"golang.org/x/term"
)

// readPassword is swapped out in tests.
var readPassword = func(in io.Reader, out io.Writer) (string, error) {
	fmt.Fprint(out, "Password: ")
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		return string(pw), err
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

type options struct {
	addr          string
	email         string
	name          string
	register      bool
	checkoutDelay time.Duration
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "shop:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	var opts options

	fs := flag.NewFlagSet("shop", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&opts.addr, "a", "http://localhost:5000", "storefront API base URL")
	fs.StringVar(&opts.email, "email", "", "account email")
	fs.StringVar(&opts.name, "name", "", "display name when registering")
	fs.BoolVar(&opts.register, "register", false, "create the account instead of signing in")
	fs.DurationVar(&opts.checkoutDelay, "checkout-delay", 1500*time.Millisecond, "simulated payment time")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() == 0 {
		return errors.New("missing command: products or buy")
	}

	api := client.New(opts.addr)

	switch fs.Arg(0) {
	case "products":
		return listProducts(ctx, api, out)
	case "buy":
		if err := signIn(ctx, api, opts, in, out); err != nil {
			return err
		}
		return buy(ctx, api, opts, fs.Args()[1:], out)
	default:
		return fmt.Errorf("unknown command %q", fs.Arg(0))
	}
}

func listProducts(ctx context.Context, api *client.Client, out io.Writer) error {
	page, err := api.ListProducts(ctx, 100, 0)
	if err != nil {
		return err
	}

	for _, p := range page.Items {
		fmt.Fprintf(out, "%s  %-30s %10s  stock %d\n", p.ID, p.Name, p.Price.StringFixed(2), p.CountInStock)
	}
	fmt.Fprintf(out, "%d of %d products\n", page.Count, page.Total)
	return nil
}

func signIn(ctx context.Context, api *client.Client, opts options, in io.Reader, out io.Writer) error {
	if opts.email == "" {
		return errors.New("-email is required to buy")
	}

	password, err := readPassword(in, out)
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}

	var p client.Profile
	if opts.register {
		p, err = api.Register(ctx, client.RegisterInput{Name: opts.name, Email: opts.email, Password: password})
	} else {
		p, err = api.Login(ctx, opts.email, password)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Signed in as %s <%s>\n", p.Name, p.Email)
	return nil
}

func buy(ctx context.Context, api *client.Client, opts options, items []string, out io.Writer) error {
	if len(items) == 0 {
		return errors.New("buy needs at least one <productID>[:qty]")
	}

	board := notifications.NewBoard()
	unsubscribe := board.Subscribe(func(s notifications.State) {
		if s.Visible {
			fmt.Fprintf(out, "[%s] %s\n", s.Notice.Kind, s.Notice.Message)
		}
	})
	defer unsubscribe()
	defer board.Hide()

	c := cart.New(
		cart.WithCheckoutDelay(opts.checkoutDelay),
		cart.WithNotifier(notifications.Multi(board, notifications.NewLogNotifier(slog.Default()))),
	)

	for _, item := range items {
		id, qty, err := parseItem(item)
		if err != nil {
			return err
		}

		p, err := api.GetProduct(ctx, id)
		if err != nil {
			return fmt.Errorf("product %s: %w", id, err)
		}
		if err := c.AddItem(cart.RefFromProduct(p), qty); err != nil {
			return err
		}
	}

	s := c.Summary()
	for _, l := range c.Lines() {
		fmt.Fprintf(out, "%3d x %-30s %10s\n", l.Quantity, l.Name, l.Subtotal().StringFixed(2))
	}
	fmt.Fprintf(out, "Subtotal %s  Shipping %s  Tax %s  Total %s\n",
		s.Subtotal.StringFixed(2), s.Shipping.StringFixed(2), s.Tax.StringFixed(2), s.Total.StringFixed(2))

	receipt, err := c.Checkout(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Paid %s for %d items\n", receipt.Summary.Total.StringFixed(2), receipt.Summary.Count)
	return nil
}

func parseItem(raw string) (string, int, error) {
	id, qtyStr, found := strings.Cut(raw, ":")
	if id == "" {
		return "", 0, fmt.Errorf("bad item %q", raw)
	}
	if !found {
		return id, 1, nil
	}

	qty, err := strconv.Atoi(qtyStr)
	if err != nil || qty < 1 {
		return "", 0, fmt.Errorf("bad quantity in %q", raw)
	}
	return id, qty, nil
}
