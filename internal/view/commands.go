package view

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/guard"
	"github.com/aaravmahajanofficial/storefront/internal/models"
)

type command struct {
	usage string
	args  int
	run   func(ctx context.Context, v *View, args []string) error
}

var commands = map[string]command{
	"login": {"login <email> <password>", 2, func(ctx context.Context, v *View, args []string) error {
		return v.Login(ctx, args[0], args[1])
	}},
	"signup": {"signup <username> <email> <password> [Customer|Administrator]", 3, func(ctx context.Context, v *View, args []string) error {
		req := models.RegisterRequest{Username: args[0], Email: args[1], Password: args[2]}
		if len(args) > 3 {
			req.UserType = models.Role(args[3])
		}
		return v.Signup(ctx, req)
	}},
	"logout": {"logout", 0, func(ctx context.Context, v *View, _ []string) error {
		return v.Logout(ctx)
	}},
	"whoami": {"whoami", 0, func(ctx context.Context, v *View, _ []string) error {
		return v.WhoAmI(ctx)
	}},
	"open": {"open <login|signup|admin|products|cart|invoice>", 1, func(ctx context.Context, v *View, args []string) error {
		return v.Show(ctx, guard.Screen(args[0]))
	}},
	"products": {"products", 0, func(ctx context.Context, v *View, _ []string) error {
		return v.Show(ctx, guard.Products)
	}},
	"refresh": {"refresh", 0, func(ctx context.Context, v *View, _ []string) error {
		return v.Refresh(ctx)
	}},
	"cart": {"cart", 0, func(ctx context.Context, v *View, _ []string) error {
		return v.Show(ctx, guard.Cart)
	}},
	"add": {"add <product#> <qty>", 2, func(ctx context.Context, v *View, args []string) error {
		position, err := parseNumber(args[0], "Product number")
		if err != nil {
			return v.fail(ctx, err)
		}
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			// same outcome as any other non-positive quantity
			qty = 0
		}
		return v.Add(ctx, position, qty)
	}},
	"inc": {"inc <line#>", 1, func(ctx context.Context, v *View, args []string) error {
		return updateLine(ctx, v, args[0], models.Increment)
	}},
	"dec": {"dec <line#>", 1, func(ctx context.Context, v *View, args []string) error {
		return updateLine(ctx, v, args[0], models.Decrement)
	}},
	"clear": {"clear", 0, func(ctx context.Context, v *View, _ []string) error {
		return v.Clear(ctx)
	}},
	"checkout": {"checkout", 0, func(ctx context.Context, v *View, _ []string) error {
		return v.Checkout(ctx)
	}},
	"invoice": {"invoice <order-id>", 1, func(ctx context.Context, v *View, args []string) error {
		return v.Invoice(ctx, args[0])
	}},
	"add-product": {"add-product <name> <category> <price> <quantity>", 4, func(ctx context.Context, v *View, args []string) error {
		price, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return v.fail(ctx, appErrors.AddValidationError("price", "must be a number"))
		}
		qty, err := strconv.Atoi(args[3])
		if err != nil {
			return v.fail(ctx, appErrors.AddValidationError("quantity", "must be a whole number"))
		}
		return v.AddProduct(ctx, models.AddProductRequest{Name: args[0], Category: args[1], Price: price, Quantity: qty})
	}},
}

// Dispatch runs one command line already split into words.
func (v *View) Dispatch(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return nil
	}

	name := strings.ToLower(args[0])
	if name == "help" {
		Usage(v.out)
		return nil
	}

	cmd, ok := commands[name]
	if !ok {
		return v.fail(ctx, appErrors.ValidationError(fmt.Sprintf("Unknown command %q, try help", args[0])))
	}

	if len(args)-1 < cmd.args {
		return v.fail(ctx, appErrors.ValidationError("Usage: "+cmd.usage))
	}

	return cmd.run(ctx, v, args[1:])
}

// Usage lists every screen command.
func Usage(w io.Writer) {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(w, "  %s\n", commands[name].usage)
	}
}

func IsCommand(name string) bool {
	_, ok := commands[strings.ToLower(name)]
	return ok || strings.EqualFold(name, "help")
}

func updateLine(ctx context.Context, v *View, raw string, direction models.Direction) error {
	line, err := parseNumber(raw, "Line number")
	if err != nil {
		return v.fail(ctx, err)
	}

	return v.Update(ctx, line, direction)
}

func parseNumber(raw, field string) (int, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, appErrors.ValidationError(fmt.Sprintf("%s must be a number", field))
	}

	return n, nil
}
