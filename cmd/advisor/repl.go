package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/ashureev/beauty-advisor/internal/catalog"
	"github.com/ashureev/beauty-advisor/internal/config"
	"github.com/ashureev/beauty-advisor/internal/console"
	"github.com/ashureev/beauty-advisor/internal/conversation"
	"github.com/ashureev/beauty-advisor/internal/domain"
	"github.com/ashureev/beauty-advisor/internal/profile"
	"github.com/ashureev/beauty-advisor/internal/relay"
	"github.com/ashureev/beauty-advisor/internal/session"
)

var errUnknownCommand = errors.New("unknown command; type /help")

type options struct {
	config.Advisor
	Memory bool
	Plain  bool
}

// run wires a session to the terminal and reads input until EOF, /quit or
// cancellation.
func run(ctx context.Context, opts options, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	blobs, err := openStore(ctx, opts)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := blobs.Close(); closeErr != nil {
			slog.Error("Failed to close store", "error", closeErr)
		}
	}()

	view, err := console.New(out, opts.Plain)
	if err != nil {
		return err
	}

	prof := profile.Load(ctx, blobs)
	deps := session.Deps{
		History: conversation.Load(ctx, blobs, prof),
		Profile: prof,
		Catalog: catalog.NewLoader(opts.Catalog, nil),
		View:    view,
	}
	if client, err := relay.NewClient(opts.RelayURL, nil); err != nil {
		slog.Error("Relay client disabled", "error", err)
		view.ShowError(err)
	} else {
		deps.Relay = client
	}

	sess := session.New(deps)
	// Final persist runs even after cancellation.
	defer sess.Close(context.WithoutCancel(ctx))

	sess.Mount(ctx)

	r := &repl{sess: sess, view: view}
	lines := readLines(ctx, in)
	for {
		_, _ = fmt.Fprint(out, view.Prompt())
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if r.handle(ctx, line) {
				return nil
			}
		}
	}
}

// readLines stops at EOF or when ctx is done. A Scan blocked on input
// returns only when the reader does.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
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
	}()
	return lines
}

type repl struct {
	sess *session.Session
	view *console.Console
}

// handle runs one input line and reports whether the user asked to quit.
func (r *repl) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		if err := r.sess.Submit(ctx, line); err != nil {
			// Already shown as an apology.
			slog.Debug("Submit failed", "error", err)
		}
		return false
	}

	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch cmd {
	case "/quit", "/exit":
		return true
	case "/help":
		r.view.ShowMessage(domain.RoleAssistant, helpText)
	case "/categories":
		cats, err := r.sess.Categories(ctx)
		if err != nil {
			slog.Warn("Failed to load categories", "error", err)
			r.view.ShowListing(session.Listing{Placeholder: catalog.PlaceholderLoadFailed}, nil)
			return false
		}
		r.view.ShowCategories(cats)
	case "/products":
		r.view.ShowListing(r.sess.Products(ctx, arg), r.sess.IsSelected)
	case "/select":
		id, err := parseID(arg)
		if err != nil {
			r.view.ShowError(err)
			return false
		}
		if _, err := r.sess.Toggle(ctx, id); err != nil {
			r.view.ShowError(err)
			return false
		}
		r.view.ShowSelected(r.sess.Selected(ctx), catalog.PlaceholderNoSelection)
	case "/remove":
		id, err := parseID(arg)
		if err != nil {
			r.view.ShowError(err)
			return false
		}
		r.sess.Remove(id)
		r.view.ShowSelected(r.sess.Selected(ctx), catalog.PlaceholderNoSelection)
	case "/selected":
		r.view.ShowSelected(r.sess.Selected(ctx), catalog.PlaceholderNoSelection)
	case "/routine":
		if err := r.sess.GenerateRoutine(ctx); err != nil {
			slog.Debug("Routine failed", "error", err)
		}
	default:
		r.view.ShowError(errUnknownCommand)
	}
	return false
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("expected a product id, got %q", arg)
	}
	return id, nil
}

const helpText = "**Commands**\n\n" +
	"- `/categories` list product categories\n" +
	"- `/products <category>` list products in a category\n" +
	"- `/select <id>` select or deselect a product\n" +
	"- `/remove <id>` deselect a product\n" +
	"- `/selected` list selected products\n" +
	"- `/routine` generate a routine from the selection\n" +
	"- `/quit` leave"
