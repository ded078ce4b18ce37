// Package view renders the storefront screens as text and routes user
// actions through the navigation guard.
package view

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/app"
	"github.com/aaravmahajanofficial/storefront/internal/cart"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/guard"
	"github.com/aaravmahajanofficial/storefront/internal/logging"
	"github.com/aaravmahajanofficial/storefront/internal/models"
)

type View struct {
	app     *app.App
	out     io.Writer
	current guard.Screen
}

func New(a *app.App, out io.Writer) *View {
	return &View{app: a, out: out, current: guard.Login}
}

func (v *View) Current() guard.Screen {
	return v.current
}

// Show navigates to target, or wherever the guard sends the user instead.
func (v *View) Show(ctx context.Context, target guard.Screen) error {
	d, err := v.app.Guard.Check(ctx, target)
	if err != nil {
		return v.fail(ctx, err)
	}

	return v.render(ctx, d.Target)
}

func (v *View) Login(ctx context.Context, email, password string) error {
	next, err := v.app.Auth.Login(ctx, email, password)
	if err != nil {
		return v.fail(ctx, err)
	}

	return v.Show(ctx, next)
}

func (v *View) Signup(ctx context.Context, req models.RegisterRequest) error {
	next, err := v.app.Auth.Signup(ctx, req)
	if err != nil {
		return v.fail(ctx, err)
	}

	fmt.Fprintln(v.out, "Signup successful! Please login.")

	return v.Show(ctx, next)
}

func (v *View) Logout(ctx context.Context) error {
	next, err := v.app.Auth.Logout(ctx)
	if err != nil {
		return v.fail(ctx, err)
	}

	fmt.Fprintln(v.out, "Logged out.")

	return v.Show(ctx, next)
}

func (v *View) WhoAmI(ctx context.Context) error {
	id, err := v.app.Auth.WhoAmI(ctx)
	if err != nil {
		return v.fail(ctx, err)
	}

	fmt.Fprintf(v.out, "Role: %s\n", id.Role)
	if id.Subject != "" {
		fmt.Fprintf(v.out, "User: %s\n", id.Subject)
	}
	if id.ExpiresAt != nil {
		fmt.Fprintf(v.out, "Token expires: %s\n", id.ExpiresAt.Local().Format(time.RFC1123))
	}

	return nil
}

// Add puts qty units of the product at the 1-based position of the current
// listing into the cart.
func (v *View) Add(ctx context.Context, position, qty int) error {
	if err := v.enter(ctx, guard.Products); err != nil {
		return err
	}

	snapshot := v.app.Catalog.Snapshot()
	if snapshot.Len() == 0 {
		if err := v.app.Catalog.Refresh(ctx); err != nil {
			return v.fail(ctx, err)
		}
	}

	product, err := snapshot.At(position - 1)
	if err != nil {
		return v.fail(ctx, err)
	}

	if _, err := v.app.Cart.AddToCart(ctx, product, qty); err != nil {
		return v.fail(ctx, err)
	}

	fmt.Fprintf(v.out, "%s has been added to your cart!\n", product.Name)

	return nil
}

func (v *View) Update(ctx context.Context, line int, direction models.Direction) error {
	if err := v.enter(ctx, guard.Cart); err != nil {
		return err
	}

	if _, err := v.app.Cart.UpdateQuantity(ctx, line-1, direction); err != nil {
		return v.fail(ctx, err)
	}

	return v.renderCart(ctx)
}

func (v *View) Clear(ctx context.Context) error {
	if err := v.enter(ctx, guard.Cart); err != nil {
		return err
	}

	if err := v.app.Cart.Clear(ctx); err != nil {
		return v.fail(ctx, err)
	}

	return v.renderCart(ctx)
}

func (v *View) Checkout(ctx context.Context) error {
	if err := v.enter(ctx, guard.Cart); err != nil {
		return err
	}

	fmt.Fprintln(v.out, "Processing...")

	result, err := v.app.Orders.Submit(ctx)
	if err != nil {
		return v.fail(ctx, err)
	}

	fmt.Fprintf(v.out, "Order placed successfully! Invoice downloaded to %s\n", result.Invoice.Path)

	return v.Show(ctx, result.Next)
}

func (v *View) Invoice(ctx context.Context, orderID string) error {
	if err := v.enter(ctx, guard.Invoice); err != nil {
		return err
	}

	inv, err := v.app.Invoices.Fetch(ctx, orderID)
	if err != nil {
		return v.fail(ctx, err)
	}

	fmt.Fprintln(v.out, "== Invoice ==")
	if inv == nil {
		return nil
	}

	fmt.Fprintf(v.out, "Order ID: %s\n", inv.OrderID)
	fmt.Fprintf(v.out, "User: %s\n", inv.User.Username)
	fmt.Fprintf(v.out, "Email: %s\n", inv.User.Email)
	fmt.Fprintf(v.out, "Total: $%s\n", cart.FormatAmount(inv.Total))
	fmt.Fprintf(v.out, "Date: %s\n", inv.Timestamp.Local().Format(time.RFC1123))

	return nil
}

func (v *View) AddProduct(ctx context.Context, req models.AddProductRequest) error {
	if err := v.enter(ctx, guard.Admin); err != nil {
		return err
	}

	if err := v.app.Catalog.AddProduct(ctx, req); err != nil {
		if appErrors.HasCode(err, appErrors.ErrCodeServer) || appErrors.HasCode(err, appErrors.ErrCodeNetwork) {
			err = appErrors.ServerError("Failed to add product", 0).WithDetail(err.Error()).WithError(err)
		}
		return v.fail(ctx, err)
	}

	fmt.Fprintln(v.out, "Product added successfully")

	return nil
}

// enter runs the guard for an action on target. A redirect renders the
// screen the user is sent to and aborts the action.
func (v *View) enter(ctx context.Context, target guard.Screen) error {
	d, err := v.app.Guard.Check(ctx, target)
	if err != nil {
		return v.fail(ctx, err)
	}

	if d.Allowed() {
		v.current = target
		return nil
	}

	var reason *appErrors.AppError
	if d.Target == guard.Login {
		reason = appErrors.UnauthenticatedError("Please login to continue")
	} else {
		reason = appErrors.ForbiddenError("Administrator access required")
	}

	fmt.Fprintf(v.out, "%s\n", reason.Message)
	if err := v.render(ctx, d.Target); err != nil {
		return err
	}

	return reason
}

// fail prints err inline. Authentication failures also send the user to the
// login screen.
func (v *View) fail(ctx context.Context, err error) error {
	logging.FromContext(ctx).Debug("Action failed", slog.String("error", err.Error()))

	fmt.Fprintf(v.out, "Error: %s\n", err.Error())
	if appErr, ok := appErrors.IsAppError(err); ok && appErr.Detail != "" {
		fmt.Fprintf(v.out, "       %s\n", appErr.Detail)
	}

	if appErrors.IsUnauthenticated(err) && v.current != guard.Login {
		_ = v.render(ctx, guard.Login)
	}

	return err
}

func (v *View) render(ctx context.Context, screen guard.Screen) error {
	v.current = screen

	switch screen {
	case guard.Signup:
		fmt.Fprintln(v.out, "== Signup ==")
		fmt.Fprintln(v.out, "signup <username> <email> <password> [Customer|Administrator]")
	case guard.Admin:
		fmt.Fprintln(v.out, "== Add Product ==")
		fmt.Fprintln(v.out, "add-product <name> <category> <price> <quantity>")
	case guard.Products:
		return v.renderProducts(ctx)
	case guard.Cart:
		return v.renderCart(ctx)
	case guard.Invoice:
		fmt.Fprintln(v.out, "== Invoice ==")
		fmt.Fprintln(v.out, "invoice <order-id>")
	default:
		fmt.Fprintln(v.out, "== Login ==")
		fmt.Fprintln(v.out, "login <email> <password>")
		fmt.Fprintln(v.out, "Don't have an account? signup <username> <email> <password>")
	}

	return nil
}

// Refresh refetches the listing, dropping any locally taken stock.
func (v *View) Refresh(ctx context.Context) error {
	if err := v.enter(ctx, guard.Products); err != nil {
		return err
	}

	if err := v.app.Catalog.Refresh(ctx); err != nil {
		return v.fail(ctx, err)
	}

	return v.renderProducts(ctx)
}

// renderProducts shows the snapshot, fetching it only when nothing is held yet.
func (v *View) renderProducts(ctx context.Context) error {
	if v.app.Catalog.Snapshot().Len() == 0 {
		if err := v.app.Catalog.Refresh(ctx); err != nil {
			return v.fail(ctx, err)
		}
	}

	fmt.Fprintln(v.out, "== Products ==")

	tw := tabwriter.NewWriter(v.out, 0, 4, 2, ' ', 0)
	for i, p := range v.app.Catalog.Snapshot().Products() {
		fmt.Fprintf(tw, "%d\t%s\t$%s\t%s\t%d available\n", i+1, p.Name, cart.FormatAmount(p.Price), p.Category, int(p.Quantity))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(v.out, "add <product#> <qty> | refresh | cart")

	return nil
}

func (v *View) renderCart(ctx context.Context) error {
	state, err := v.app.Cart.State(ctx)
	if err != nil {
		return v.fail(ctx, err)
	}

	fmt.Fprintln(v.out, "== Shopping Cart ==")

	if len(state.Lines) == 0 {
		fmt.Fprintln(v.out, "Your cart is empty.")
		fmt.Fprintln(v.out, "products")
		return nil
	}

	tw := tabwriter.NewWriter(v.out, 0, 4, 2, ' ', 0)
	for i, line := range state.Lines {
		fmt.Fprintf(tw, "%d\t%s\t$%s\tx %d\n", i+1, line.Name, cart.FormatAmount(line.Price), line.Quantity)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(v.out, "Total: $%s\n", cart.FormatAmount(state.Total))
	fmt.Fprintln(v.out, "inc <line#> | dec <line#> | clear | checkout | products")

	return nil
}
