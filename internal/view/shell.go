package view

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aaravmahajanofficial/storefront/internal/cart"
	appErrors "github.com/aaravmahajanofficial/storefront/internal/errors"
	"github.com/aaravmahajanofficial/storefront/internal/models"
)

// RunShell reads commands from in until EOF, exit, or ctx is cancelled. The
// catalog snapshot lives as long as the shell does, so stock taken by add
// stays taken until refresh is run.
func (v *View) RunShell(ctx context.Context, in io.Reader) error {
	unsubscribeCart := v.app.Cart.Subscribe(func(s models.CartState) {
		fmt.Fprintf(v.out, "[cart: %d line(s), total $%s]\n", len(s.Lines), cart.FormatAmount(s.Total))
	})
	defer unsubscribeCart()

	unsubscribeSession := v.app.Sessions.Subscribe(func(s *models.Session) {
		if s == nil {
			fmt.Fprintln(v.out, "[signed out]")
			return
		}
		fmt.Fprintf(v.out, "[signed in as %s]\n", s.Role)
	})
	defer unsubscribeSession()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)

	// The reader may stay blocked in Scan on a terminal after RunShell
	// returns. Nothing can interrupt a read on stdin; the process exit reaps it.
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	_ = v.Show(ctx, v.current)

	for {
		fmt.Fprintf(v.out, "storefront:%s> ", v.current)

		select {
		case <-ctx.Done():
			fmt.Fprintln(v.out)
			return nil
		case line, ok := <-lines:
			if !ok {
				fmt.Fprintln(v.out)
				select {
				case err := <-scanErr:
					return err
				default:
					return nil
				}
			}

			args, err := SplitArgs(line)
			if err != nil {
				_ = v.fail(ctx, appErrors.ValidationError(err.Error()))
				continue
			}

			if len(args) > 0 && (args[0] == "exit" || args[0] == "quit") {
				return nil
			}

			// Errors were already printed; the shell keeps going.
			_ = v.Dispatch(ctx, args)
		}
	}
}

// SplitArgs splits a command line on whitespace, keeping single- or
// double-quoted words together.
func SplitArgs(line string) ([]string, error) {
	var (
		args    []string
		current strings.Builder
		quote   rune
		inWord  bool
	)

	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
				continue
			}
			current.WriteRune(r)
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				args = append(args, current.String())
				current.Reset()
				inWord = false
			}
		default:
			current.WriteRune(r)
			inWord = true
		}
	}

	if quote != 0 {
		return nil, fmt.Errorf("unterminated %c quote", quote)
	}

	if inWord {
		args = append(args, current.String())
	}

	return args, nil
}
