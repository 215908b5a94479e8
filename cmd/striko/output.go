package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/huh"
	"github.com/dustin/go-humanize"

	"github.com/holps-7/striko/pkg/model"
)

// printJSON writes v as indented JSON.
func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printMarkdown renders md with glamour, falling back to the raw text.
func printMarkdown(w io.Writer, md string) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		fmt.Fprintln(w, md)
		return
	}
	out, err := renderer.Render(md)
	if err != nil {
		fmt.Fprintln(w, md)
		return
	}
	fmt.Fprint(w, out)
}

// responseMarkdown formats a response for printMarkdown.
func responseMarkdown(req model.Request, resp model.Response) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s %s\n\n", model.NormalizeMethod(req.Method), req.URL)

	if resp.Failed() {
		fmt.Fprintf(&b, "**%s** after %d ms\n\n", resp.StatusText, resp.Time)
		fmt.Fprintf(&b, "> %s\n", resp.ErrorMessage())
		return b.String()
	}

	fmt.Fprintf(&b, "**%d %s** · %d ms · %s\n\n", resp.Status, resp.StatusText, resp.Time, humanize.Bytes(uint64(resp.Size)))

	if len(resp.Headers) > 0 {
		keys := make([]string, 0, len(resp.Headers))
		for k := range resp.Headers {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("| Header | Value |\n|---|---|\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "| %s | %s |\n", k, strings.ReplaceAll(resp.Headers[k], "|", `\|`))
		}
		b.WriteString("\n")
	}

	switch data := resp.Data.(type) {
	case nil:
	case string:
		if data != "" {
			fmt.Fprintf(&b, "```\n%s\n```\n", data)
		}
	default:
		body, err := json.MarshalIndent(data, "", "  ")
		if err == nil {
			fmt.Fprintf(&b, "```json\n%s\n```\n", body)
		}
	}
	return b.String()
}

// confirm asks a yes/no question on the terminal.
func confirm(question string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(question).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// newCollectionOption is the picker value that asks for a new collection.
const newCollectionOption = "\x00new"

// pickCollection lets the user choose a saved collection or name a new one.
// It returns the collection id, or an empty id and the new name.
func pickCollection(ctx context.Context, a *app) (id, newName string, err error) {
	cols, err := a.session.Collections(ctx)
	if err != nil {
		return "", "", err
	}

	choice := newCollectionOption
	if len(cols) > 0 {
		opts := make([]huh.Option[string], 0, len(cols)+1)
		for _, c := range cols {
			opts = append(opts, huh.NewOption(fmt.Sprintf("%s (%d)", c.Name, len(c.Requests)), c.ID))
		}
		opts = append(opts, huh.NewOption("+ New collection", newCollectionOption))

		err := huh.NewSelect[string]().
			Title("Save to collection").
			Options(opts...).
			Value(&choice).
			Run()
		if err != nil {
			return "", "", err
		}
	}
	if choice != newCollectionOption {
		return choice, "", nil
	}

	err = huh.NewInput().
		Title("New collection name").
		Value(&newName).
		Validate(func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("name is required")
			}
			return nil
		}).
		Run()
	if err != nil {
		return "", "", err
	}
	return "", newName, nil
}

// findCollection resolves ref as a collection id, then as a case-insensitive
// name.
func findCollection(ctx context.Context, a *app, ref string) (model.Collection, error) {
	c, found, err := a.session.Collection(ctx, ref)
	if err == nil && found {
		return c, nil
	}
	cols, listErr := a.session.Collections(ctx)
	if listErr != nil {
		return model.Collection{}, listErr
	}
	for _, c := range cols {
		if strings.EqualFold(c.Name, ref) {
			return c, nil
		}
	}
	if err != nil {
		return model.Collection{}, err
	}
	return model.Collection{}, fmt.Errorf("collection %q not found", ref)
}
