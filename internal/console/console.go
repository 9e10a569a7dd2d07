// Package console implements the interactive, menu-driven tracker used by the
// "track" command.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/starford/bptracker/internal/entryservice"
	"github.com/starford/bptracker/internal/reading"
	"github.com/starford/bptracker/internal/report"
)

const menu = `=== Blood Pressure Tracker ===
1. Add new entry
2. View all entries
3. View statistics
4. Exit
`

// Console runs the menu loop over an input and output stream.
type Console struct {
	svc      *entryservice.Service
	defaults reading.Defaults
	in       *bufio.Scanner
	out      io.Writer
}

// New creates a console. defaults is the entry-creation policy; its Now
// supplies the timestamp when the user presses Enter.
func New(svc *entryservice.Service, defaults reading.Defaults, in io.Reader, out io.Writer) *Console {
	return &Console{svc: svc, defaults: defaults, in: bufio.NewScanner(in), out: out}
}

// Run shows the menu until the user exits or input ends. End of input is a
// clean exit.
func (c *Console) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(c.out, "\n"+menu)
		choice, err := c.prompt("\nChoose an option (1-4): ")
		if err != nil {
			return c.finish(err)
		}

		switch choice {
		case "1":
			err = c.addEntry(ctx)
		case "2":
			err = c.viewHistory(ctx)
		case "3":
			err = c.viewStats(ctx)
		case "4":
			fmt.Fprint(c.out, "\nGoodbye! Stay healthy!\n\n")
			return nil
		default:
			fmt.Fprint(c.out, "\nInvalid option. Please choose 1-4.\n")
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return c.finish(err)
			}
			slog.Error("console action failed", slog.String("choice", choice), slog.String("error", err.Error()))
			fmt.Fprintf(c.out, "\nError: %v\n", err)
		}
	}
}

func (c *Console) finish(err error) error {
	if errors.Is(err, io.EOF) {
		fmt.Fprintln(c.out)
		return nil
	}
	return err
}

// prompt prints label and returns the next trimmed input line.
func (c *Console) prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	if !c.in.Scan() {
		if err := c.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(c.in.Text()), nil
}

// ask re-prompts until check accepts the input, printing each rejection.
func ask[T any](c *Console, label string, check func(string) (T, error)) (T, error) {
	for {
		raw, err := c.prompt(label)
		if err != nil {
			var zero T
			return zero, err
		}
		v, err := check(raw)
		if err == nil {
			return v, nil
		}
		var ve *reading.ValidationError
		if !errors.As(err, &ve) {
			var zero T
			return zero, err
		}
		fmt.Fprintf(c.out, "Invalid input: %s\n", ve.Message)
	}
}

func (c *Console) addEntry(ctx context.Context) error {
	fmt.Fprint(c.out, "\n=== New Blood Pressure Entry ===\n\n")
	if c.defaults.Now != nil {
		fmt.Fprintf(c.out, "Default: %s\n", c.defaults.Now().Format(reading.TimeLayout))
	}

	ts, err := ask(c, "Date/Time (YYYY-MM-DD HH:MM:SS) or press Enter for now: ", func(s string) (string, error) {
		t, err := reading.ValidateTimestamp(s, c.defaults)
		return t.Format(reading.TimeLayout), err
	})
	if err != nil {
		return err
	}
	sys, err := ask(c, "Systolic (top number): ", keep(reading.ValidateSystolic))
	if err != nil {
		return err
	}
	dia, err := ask(c, "Diastolic (bottom number): ", keep(reading.ValidateDiastolic))
	if err != nil {
		return err
	}
	hr, err := ask(c, "Heart Rate (bpm): ", keep(reading.ValidateHeartRate))
	if err != nil {
		return err
	}
	loc, err := c.prompt(fmt.Sprintf("Location (press Enter for %q): ", c.defaults.Location))
	if err != nil {
		return err
	}
	notes, err := c.prompt("Notes (optional): ")
	if err != nil {
		return err
	}

	r, err := c.svc.Create(ctx, reading.Input{
		Timestamp: ts,
		Systolic:  sys,
		Diastolic: dia,
		HeartRate: hr,
		Location:  loc,
		Notes:     notes,
	}, c.defaults)
	if err != nil {
		return err
	}

	fmt.Fprint(c.out, "\nEntry saved successfully!\n\n")
	cat := r.Category()
	fmt.Fprintf(c.out, "BP: %d/%d mmHg - %s %s\n", r.Systolic, r.Diastolic, report.Marker(cat), cat)
	fmt.Fprintf(c.out, "Heart Rate: %d bpm\n", r.HeartRate)
	return nil
}

// keep adapts a numeric field check so the accepted raw text is passed on
// to the service unchanged.
func keep(check func(string) (int, error)) func(string) (string, error) {
	return func(s string) (string, error) {
		_, err := check(s)
		return s, err
	}
}

func (c *Console) viewHistory(ctx context.Context) error {
	all, err := c.svc.List(ctx)
	if err != nil {
		return err
	}
	return report.WriteHistory(c.out, all)
}

func (c *Console) viewStats(ctx context.Context) error {
	s, ok, err := c.svc.Stats(ctx)
	if err != nil {
		return err
	}
	return report.WriteSummary(c.out, s, ok)
}
