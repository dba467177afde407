package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/myaiplug/saasify/internal/account"
	"github.com/myaiplug/saasify/internal/creation"
	"github.com/myaiplug/saasify/internal/export"
	"github.com/myaiplug/saasify/internal/gate"
	"github.com/myaiplug/saasify/internal/pricing"
	"github.com/myaiplug/saasify/internal/usage"
	"github.com/myaiplug/saasify/pkg/models"
)

// Shell is the interactive studio. All reads and writes go through the
// injected streams so tests can drive it end to end.
type Shell struct {
	in       io.Reader
	out      io.Writer
	errOut   io.Writer
	studio   *creation.Studio
	sess     *creation.Session
	accounts *account.Manager
	gateway  *gate.Gate
	ledger   *usage.Ledger
	calc     *pricing.Calculator
	exporter *export.Exporter
	commands map[string]Command
	scanner  *bufio.Scanner
	running  bool
}

type Config struct {
	In       io.Reader
	Out      io.Writer
	Err      io.Writer
	Studio   *creation.Studio
	Accounts *account.Manager
	Gateway  *gate.Gate
	Ledger   *usage.Ledger
	Calc     *pricing.Calculator
	Exporter *export.Exporter
}

func New(cfg *Config) *Shell {
	s := &Shell{
		in:       cfg.In,
		out:      cfg.Out,
		errOut:   cfg.Err,
		studio:   cfg.Studio,
		accounts: cfg.Accounts,
		gateway:  cfg.Gateway,
		ledger:   cfg.Ledger,
		calc:     cfg.Calc,
		exporter: cfg.Exporter,
		commands: make(map[string]Command),
	}
	s.registerCommands()
	return s
}

func (s *Shell) Run(ctx context.Context) error {
	var err error
	s.sess, err = s.studio.Open(ctx, s.accounts.CurrentOwnerID())
	if err != nil {
		return err
	}
	defer s.sess.Close()

	s.running = true
	s.printWelcome()

	s.scanner = bufio.NewScanner(s.in)
	for s.running {
		s.printPrompt()
		if !s.scanner.Scan() {
			break
		}

		line := strings.TrimSpace(s.scanner.Text())
		if line == "" {
			continue
		}

		if err := s.execute(ctx, line); err != nil {
			s.reportError(err)
		}
	}

	return s.scanner.Err()
}

func (s *Shell) execute(ctx context.Context, line string) error {
	parts := parseCommand(line)
	if len(parts) == 0 {
		return nil
	}

	cmdName := strings.ToLower(parts[0])
	args := parts[1:]

	cmd, ok := s.commands[cmdName]
	if !ok {
		return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmdName)
	}

	return cmd.Execute(ctx, s, args)
}

func (s *Shell) Stop() {
	s.running = false
}

// reopenSession swaps the live session after a sign-in or sign-out so
// the studio sees the new owner's history and quota.
func (s *Shell) reopenSession(ctx context.Context) error {
	s.sess.Close()
	sess, err := s.studio.Open(ctx, s.accounts.CurrentOwnerID())
	if err != nil {
		return err
	}
	s.sess = sess
	return nil
}

// reportError gives payment denials their own rendering: the quote is
// the product, not a failure detail.
func (s *Shell) reportError(err error) {
	var denied *gate.DeniedError
	if errors.As(err, &denied) {
		s.printDenial(denied)
		return
	}
	fmt.Fprintf(s.errOut, "Error: %v\n", err)
}

func (s *Shell) printDenial(denied *gate.DeniedError) {
	d := denied.Decision
	switch {
	case d.Reason == models.ReasonNoSession || d.Quote == nil:
		fmt.Fprintln(s.out, "Sign in required. Use 'signup <email>' or 'signin <email>' first.")
	default:
		q := d.Quote
		fmt.Fprintln(s.out, "Payment required to continue.")
		fmt.Fprintf(s.out, "  Quote:      $%.2f %s (%s tier)\n", q.Amount, q.Currency, q.Tier)
		fmt.Fprintf(s.out, "  Est. units: %d\n", q.Breakdown.EstimatedTokens)
		fmt.Fprintf(s.out, "  Margin:     %s\n", q.Breakdown.MarginPercent)
		fmt.Fprintf(s.out, "  Buffer:     %s\n", q.Breakdown.BufferLabel)
		fmt.Fprintln(s.out, "Run 'upgrade' to unlock unlimited generations, then retry.")
	}
}

func (s *Shell) printWelcome() {
	fmt.Fprintln(s.out, "MyAiPlug Saasify studio")
	fmt.Fprintln(s.out, "Type 'help' for available commands, 'quit' to exit.")
	fmt.Fprintln(s.out)
}

func (s *Shell) printPrompt() {
	owner := "anonymous"
	if id := s.sess.OwnerID(); id != "" {
		owner = id[:min(6, len(id))]
	}
	if active := s.sess.Active(); active != nil {
		fmt.Fprintf(s.out, "saasify [%s] (%s)> ", owner, active.Name)
	} else {
		fmt.Fprintf(s.out, "saasify [%s]> ", owner)
	}
}

func parseCommand(line string) []string {
	var parts []string
	var current strings.Builder
	inQuotes := false
	quoteChar := rune(0)

	for _, ch := range line {
		switch {
		case ch == '"' || ch == '\'':
			if inQuotes && ch == quoteChar {
				inQuotes = false
				quoteChar = 0
			} else if !inQuotes {
				inQuotes = true
				quoteChar = ch
			} else {
				current.WriteRune(ch)
			}
		case ch == ' ' && !inQuotes:
			if current.Len() > 0 {
				parts = append(parts, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(ch)
		}
	}

	if current.Len() > 0 {
		parts = append(parts, current.String())
	}

	return parts
}
