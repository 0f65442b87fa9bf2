package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/at-ishikawa/studytrack/internal/learning"
	"github.com/at-ishikawa/studytrack/internal/review"
)

//go:generate mockgen -source=session.go -destination=../mocks/cli/mock_session.go -package=mock_cli

type Reviewer interface {
	DueItems(ctx context.Context, userID, topicID string, now time.Time) ([]learning.Item, error)
	Review(ctx context.Context, req review.Request) (*review.Outcome, error)
}

var (
	errEnd = errors.New("end")
)

// ReviewSessionCLI asks the user to grade due items one by one.
type ReviewSessionCLI struct {
	reviewer    Reviewer
	printer     *Printer
	stdinReader *bufio.Reader
	userID      string
	topicID     string
	now         func() time.Time

	items  []learning.Item
	loaded bool
}

// NewReviewSessionCLI creates a session over the due items of userID, limited to topicID when set.
func NewReviewSessionCLI(reviewer Reviewer, printer *Printer, in io.Reader, userID, topicID string) *ReviewSessionCLI {
	if in == nil {
		in = os.Stdin
	}
	return &ReviewSessionCLI{
		reviewer:    reviewer,
		printer:     printer,
		stdinReader: bufio.NewReader(in),
		userID:      userID,
		topicID:     topicID,
		now:         time.Now,
	}
}

// Remaining returns the number of items left in the session.
func (r *ReviewSessionCLI) Remaining() int {
	return len(r.items)
}

func (r *ReviewSessionCLI) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(
		ctx,
		os.Interrupt,
	)
	defer cancel()

	errCh := make(chan error)
	go func() {
		defer close(errCh)

	LOOP:
		for {
			select {
			case <-ctx.Done():
				break LOOP
			default:
			}

			if err := r.Session(ctx); err != nil {
				if errors.Is(err, errEnd) {
					break
				}
				errCh <- err
				break
			}
		}
	}()
	select {
	case <-ctx.Done():
		fmt.Fprintln(r.printer.out, "Received interrupt signal, exiting...")
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("error: %w", err)
		}
	}
	return nil
}

// Session reviews the next due item. It returns errEnd when nothing is left or the user quits.
func (r *ReviewSessionCLI) Session(ctx context.Context) error {
	if !r.loaded {
		items, err := r.reviewer.DueItems(ctx, r.userID, r.topicID, r.now())
		if err != nil {
			return fmt.Errorf("reviewer.DueItems() > %w", err)
		}
		r.items = items
		r.loaded = true
	}
	if len(r.items) == 0 {
		fmt.Fprintln(r.printer.out, "No more items to review!")
		return errEnd
	}

	p := r.printer
	item := r.items[0]
	p.bold.Fprintf(p.out, "%s", item.Content)
	fmt.Fprintf(p.out, " (%d reviews)\n", item.ReviewCount)
	fmt.Fprint(p.out, "again, hard, good or easy (q to quit): ")

	input, err := r.stdinReader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && strings.TrimSpace(input) == "" {
			fmt.Fprintln(p.out)
			return errEnd
		}
		if !errors.Is(err, io.EOF) {
			return fmt.Errorf("error reading input: %w", err)
		}
	}
	input = strings.ToLower(strings.TrimSpace(input))
	if input == "q" || input == "quit" {
		return errEnd
	}

	difficulty, err := learning.ParseDifficulty(input)
	if err != nil {
		p.red.Fprintln(p.out, err.Error())
		return nil
	}

	outcome, err := r.reviewer.Review(ctx, review.Request{
		UserID:     r.userID,
		ItemID:     item.ID,
		Difficulty: difficulty,
		ReviewedAt: r.now(),
	})
	var validationErr *learning.ValidationError
	if errors.As(err, &validationErr) {
		p.red.Fprintln(p.out, err.Error())
		r.items = r.items[1:]
		return nil
	}
	if err != nil {
		return fmt.Errorf("reviewer.Review() > %w", err)
	}
	p.Outcome(outcome)
	fmt.Fprintln(p.out)

	r.items = r.items[1:]
	return nil
}
