package shell

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/myaiplug/saasify/internal/account"
	"github.com/myaiplug/saasify/internal/gate"
	"github.com/myaiplug/saasify/internal/security"
	"github.com/myaiplug/saasify/internal/templates"
	"github.com/myaiplug/saasify/pkg/models"
)

type Command interface {
	Name() string
	Aliases() []string
	Description() string
	Usage() string
	Execute(ctx context.Context, s *Shell, args []string) error
}

func (s *Shell) registerCommands() {
	for _, cmd := range allCommands() {
		s.commands[cmd.Name()] = cmd
		for _, alias := range cmd.Aliases() {
			s.commands[alias] = cmd
		}
	}
}

func allCommands() []Command {
	return []Command{
		&GenerateCommand{},
		&VisionCommand{},
		&RefineCommand{},
		&InsertCommand{},
		&UndoCommand{},
		&HistoryCommand{},
		&OpenCommand{},
		&CloseCommand{},
		&ArchiveCommand{},
		&TemplateCommand{},
		&PriceCommand{},
		&UpgradeCommand{},
		&ExportCommand{},
		&SignUpCommand{},
		&SignInCommand{},
		&SignOutCommand{},
		&WhoAmICommand{},
		&UsageCommand{},
		&HelpCommand{},
		&QuitCommand{},
	}
}

// GenerateCommand builds a new creation from a prompt or repo URL
type GenerateCommand struct{}

func (c *GenerateCommand) Name() string        { return "generate" }
func (c *GenerateCommand) Aliases() []string   { return []string{"gen", "g"} }
func (c *GenerateCommand) Description() string { return "Generate a creation from a prompt or repo URL" }
func (c *GenerateCommand) Usage() string       { return "generate <prompt>" }

func (c *GenerateCommand) Execute(ctx context.Context, s *Shell, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	prompt := strings.Join(args, " ")
	if security.IsRepoPrompt(prompt) && strings.HasPrefix(prompt, "http") {
		if err := security.ValidateRepoURL(prompt); err != nil {
			return err
		}
	}

	fmt.Fprintln(s.out, "Generating...")
	created, err := s.sess.Create(ctx, prompt, nil)
	if err != nil {
		return err
	}
	if created == nil {
		fmt.Fprintln(s.out, "The engine produced no artifact for that prompt. Try rephrasing.")
		return nil
	}

	fmt.Fprintf(s.out, "Created %q (%s, %d bytes)\n", created.Name, shortID(created.ID), len(created.Content))
	return nil
}

// VisionCommand builds a creation from a screenshot
type VisionCommand struct{}

func (c *VisionCommand) Name() string        { return "vision" }
func (c *VisionCommand) Aliases() []string   { return []string{"v"} }
func (c *VisionCommand) Description() string { return "Generate a creation from a screenshot file" }
func (c *VisionCommand) Usage() string       { return "vision <image-path> [prompt]" }

func (c *VisionCommand) Execute(ctx context.Context, s *Shell, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	image := &models.ImageInput{
		Data: base64.StdEncoding.EncodeToString(data),
		Mime: mimeForPath(args[0]),
	}
	prompt := strings.Join(args[1:], " ")

	fmt.Fprintln(s.out, "Analyzing blueprint...")
	created, err := s.sess.Create(ctx, prompt, image)
	if err != nil {
		return err
	}
	if created == nil {
		fmt.Fprintln(s.out, "The engine produced no artifact from that screenshot.")
		return nil
	}

	fmt.Fprintf(s.out, "Created %q (%s, %d bytes)\n", created.Name, shortID(created.ID), len(created.Content))
	return nil
}

func mimeForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/png"
	}
}

// RefineCommand edits the active creation
type RefineCommand struct{}

func (c *RefineCommand) Name() string        { return "refine" }
func (c *RefineCommand) Aliases() []string   { return []string{"edit", "r"} }
func (c *RefineCommand) Description() string { return "Refine the active creation with an instruction" }
func (c *RefineCommand) Usage() string       { return "refine <instruction>" }

func (c *RefineCommand) Execute(ctx context.Context, s *Shell, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	fmt.Fprintln(s.out, "Refining...")
	updated, err := s.sess.Edit(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Updated %q (%d bytes, %d undo frame(s))\n",
		updated.Name, len(updated.Content), s.sess.UndoDepth())
	return nil
}

// InsertCommand previews a component and splices it into the creation
type InsertCommand struct{}

func (c *InsertCommand) Name() string        { return "insert" }
func (c *InsertCommand) Aliases() []string   { return []string{"component"} }
func (c *InsertCommand) Description() string { return "Generate a UI component and insert it" }
func (c *InsertCommand) Usage() string       { return "insert <description>" }

func (c *InsertCommand) Execute(ctx context.Context, s *Shell, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	fmt.Fprintln(s.out, "Building component...")
	snippet, err := s.sess.PreviewComponent(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Preview (%d bytes):\n%s\n", len(snippet), truncate(snippet, 200))

	updated, err := s.sess.InsertComponent(ctx, snippet)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Inserted into %q (%d bytes)\n", updated.Name, len(updated.Content))
	return nil
}

// UndoCommand rolls the active creation back one frame
type UndoCommand struct{}

func (c *UndoCommand) Name() string        { return "undo" }
func (c *UndoCommand) Aliases() []string   { return []string{"u", "back"} }
func (c *UndoCommand) Description() string { return "Revert the active creation one step" }
func (c *UndoCommand) Usage() string       { return "undo" }

func (c *UndoCommand) Execute(ctx context.Context, s *Shell, _ []string) error {
	reverted, err := s.sess.Undo(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Reverted %q (%d undo frame(s) left)\n", reverted.Name, s.sess.UndoDepth())
	return nil
}

// HistoryCommand lists the session's creations
type HistoryCommand struct{}

func (c *HistoryCommand) Name() string        { return "history" }
func (c *HistoryCommand) Aliases() []string   { return []string{"h", "hist"} }
func (c *HistoryCommand) Description() string { return "List generated creations, newest first" }
func (c *HistoryCommand) Usage() string       { return "history" }

func (c *HistoryCommand) Execute(_ context.Context, s *Shell, _ []string) error {
	list := s.sess.History()
	if len(list) == 0 {
		fmt.Fprintln(s.out, "No creations yet")
		return nil
	}

	activeID := ""
	if active := s.sess.Active(); active != nil {
		activeID = active.ID
	}

	for i, entry := range list {
		marker := "  "
		if entry.ID == activeID {
			marker = "> "
		}
		fmt.Fprintf(s.out, "%s[%d] %s  %-16s  %d bytes\n",
			marker, i+1, shortID(entry.ID), entry.Name, len(entry.Content))
	}
	return nil
}

// OpenCommand selects a history entry as the active creation
type OpenCommand struct{}

func (c *OpenCommand) Name() string        { return "open" }
func (c *OpenCommand) Aliases() []string   { return []string{"o", "select"} }
func (c *OpenCommand) Description() string { return "Open a creation from history" }
func (c *OpenCommand) Usage() string       { return "open <number|id>" }

func (c *OpenCommand) Execute(_ context.Context, s *Shell, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	id, err := resolveCreation(s, args[0])
	if err != nil {
		return err
	}
	if err := s.sess.Select(id); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Opened %q\n", s.sess.Active().Name)
	return nil
}

// CloseCommand clears the active creation
type CloseCommand struct{}

func (c *CloseCommand) Name() string        { return "close" }
func (c *CloseCommand) Aliases() []string   { return nil }
func (c *CloseCommand) Description() string { return "Close the active creation" }
func (c *CloseCommand) Usage() string       { return "close" }

func (c *CloseCommand) Execute(_ context.Context, s *Shell, _ []string) error {
	s.sess.Reset()
	fmt.Fprintln(s.out, "Workspace cleared")
	return nil
}

// ArchiveCommand replays a named action against a history entry
type ArchiveCommand struct{}

func (c *ArchiveCommand) Name() string      { return "archive" }
func (c *ArchiveCommand) Aliases() []string { return []string{"a"} }
func (c *ArchiveCommand) Description() string {
	return "Apply an action (remix, edit, analyze, roadmap) to a history entry"
}
func (c *ArchiveCommand) Usage() string { return "archive <number|id> <action>" }

func (c *ArchiveCommand) Execute(ctx context.Context, s *Shell, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	id, err := resolveCreation(s, args[0])
	if err != nil {
		return err
	}
	action := models.ArchiveAction(strings.ToLower(args[1]))
	if !action.IsValid() {
		return fmt.Errorf("%w: %q (valid: remix, edit, analyze, roadmap)", models.ErrUnknownAction, args[1])
	}

	fmt.Fprintf(s.out, "Applying %s...\n", action)
	updated, err := s.sess.ApplyArchiveAction(ctx, id, action)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Updated %q (%d bytes)\n", updated.Name, len(updated.Content))
	return nil
}

// TemplateCommand serves the starter gallery
type TemplateCommand struct{}

func (c *TemplateCommand) Name() string      { return "template" }
func (c *TemplateCommand) Aliases() []string { return []string{"templates", "t"} }
func (c *TemplateCommand) Description() string {
	return "Browse the gallery (list, open, build)"
}
func (c *TemplateCommand) Usage() string { return "template <list|open|build> [id]" }

func (c *TemplateCommand) Execute(ctx context.Context, s *Shell, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}

	switch strings.ToLower(args[0]) {
	case "list", "ls":
		for _, tpl := range templates.All() {
			fmt.Fprintf(s.out, "  %-14s %-22s %s\n", tpl.ID, tpl.Name, tpl.Description)
		}
		return nil
	case "open":
		if len(args) < 2 {
			return fmt.Errorf("usage: template open <id>")
		}
		tpl, ok := templates.Find(args[1])
		if !ok {
			return fmt.Errorf("unknown template: %s", args[1])
		}
		installed, err := s.sess.Install(ctx, tpl.Name, tpl.Starter)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Opened starter %q (%s)\n", installed.Name, shortID(installed.ID))
		return nil
	case "build":
		if len(args) < 2 {
			return fmt.Errorf("usage: template build <id>")
		}
		tpl, ok := templates.Find(args[1])
		if !ok {
			return fmt.Errorf("unknown template: %s", args[1])
		}
		if err := security.ValidateRepoURL(tpl.Repo); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "Architecting %s...\n", tpl.Repo)
		created, err := s.sess.Create(ctx, tpl.Prompt(), nil)
		if err != nil {
			return err
		}
		if created == nil {
			fmt.Fprintln(s.out, "The engine produced no artifact for that template.")
			return nil
		}
		fmt.Fprintf(s.out, "Created %q (%s)\n", created.Name, shortID(created.ID))
		return nil
	default:
		return fmt.Errorf("unknown template command: %s", args[0])
	}
}

// PriceCommand quotes a prompt without running it
type PriceCommand struct{}

func (c *PriceCommand) Name() string        { return "price" }
func (c *PriceCommand) Aliases() []string   { return []string{"quote"} }
func (c *PriceCommand) Description() string { return "Show the price quote for a prompt" }
func (c *PriceCommand) Usage() string       { return "price <prompt>" }

func (c *PriceCommand) Execute(_ context.Context, s *Shell, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	existing := ""
	if active := s.sess.Active(); active != nil {
		existing = active.Content
	}
	q := s.calc.Quote(strings.Join(args, " "), existing)
	fmt.Fprintf(s.out, "Quote: $%.2f %s (%s tier)\n", q.Amount, q.Currency, q.Tier)
	fmt.Fprintf(s.out, "  Est. units: %d\n", q.Breakdown.EstimatedTokens)
	fmt.Fprintf(s.out, "  Margin:     %s\n", q.Breakdown.MarginPercent)
	fmt.Fprintf(s.out, "  Buffer:     %s\n", q.Breakdown.BufferLabel)
	return nil
}

// UpgradeCommand applies an external payment outcome
type UpgradeCommand struct{}

func (c *UpgradeCommand) Name() string        { return "upgrade" }
func (c *UpgradeCommand) Aliases() []string   { return nil }
func (c *UpgradeCommand) Description() string { return "Unlock paid tier after payment confirmation" }
func (c *UpgradeCommand) Usage() string       { return "upgrade [confirmed|failed]" }

func (c *UpgradeCommand) Execute(ctx context.Context, s *Shell, args []string) error {
	owner := s.accounts.CurrentOwnerID()
	if owner == "" {
		return account.ErrNotSignedIn
	}

	result := gate.PaymentConfirmed
	if len(args) > 0 && strings.ToLower(args[0]) == "failed" {
		result = gate.PaymentFailed
	}

	rec, err := s.gateway.ConfirmPayment(ctx, owner, result)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Paid tier active for %s. Generations are now unlimited.\n", shortID(rec.OwnerID))
	return nil
}

// ExportCommand writes the active creation to disk
type ExportCommand struct{}

func (c *ExportCommand) Name() string        { return "export" }
func (c *ExportCommand) Aliases() []string   { return []string{"x"} }
func (c *ExportCommand) Description() string { return "Export the active creation (html, zip, flutter)" }
func (c *ExportCommand) Usage() string       { return "export <html|zip|flutter>" }

func (c *ExportCommand) Execute(ctx context.Context, s *Shell, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}
	active := s.sess.Active()
	if active == nil {
		return fmt.Errorf("no active creation to export")
	}

	var path string
	var err error
	switch strings.ToLower(args[0]) {
	case "html":
		path, err = s.exporter.WriteHTML(active)
	case "zip", "web":
		path, err = s.exporter.WriteZip(active)
	case "flutter":
		fmt.Fprintln(s.out, "Converting to Flutter...")
		path, err = s.exporter.WriteFlutter(ctx, active)
	default:
		return fmt.Errorf("%w: %q", models.ErrUnknownTarget, args[0])
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(s.out, "Exported: %s\n", path)
	return nil
}

// SignUpCommand creates an account and signs in
type SignUpCommand struct{}

func (c *SignUpCommand) Name() string        { return "signup" }
func (c *SignUpCommand) Aliases() []string   { return nil }
func (c *SignUpCommand) Description() string { return "Create an account" }
func (c *SignUpCommand) Usage() string       { return "signup <email> [name]" }

func (c *SignUpCommand) Execute(ctx context.Context, s *Shell, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	password, err := s.promptPassword("Password: ")
	if err != nil {
		return err
	}

	acct, err := s.accounts.SignUp(ctx, args[0], strings.Join(args[1:], " "), password)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Welcome, %s. Your first generation is free.\n", acct.Email)
	return s.reopenSession(ctx)
}

// SignInCommand authenticates an existing account
type SignInCommand struct{}

func (c *SignInCommand) Name() string        { return "signin" }
func (c *SignInCommand) Aliases() []string   { return []string{"login"} }
func (c *SignInCommand) Description() string { return "Sign in to an account" }
func (c *SignInCommand) Usage() string       { return "signin <email>" }

func (c *SignInCommand) Execute(ctx context.Context, s *Shell, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: %s", c.Usage())
	}

	password, err := s.promptPassword("Password: ")
	if err != nil {
		return err
	}

	acct, err := s.accounts.SignIn(ctx, args[0], password)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "Signed in as %s\n", acct.Email)
	return s.reopenSession(ctx)
}

// SignOutCommand clears the current session
type SignOutCommand struct{}

func (c *SignOutCommand) Name() string        { return "signout" }
func (c *SignOutCommand) Aliases() []string   { return []string{"logout"} }
func (c *SignOutCommand) Description() string { return "Sign out" }
func (c *SignOutCommand) Usage() string       { return "signout" }

func (c *SignOutCommand) Execute(ctx context.Context, s *Shell, _ []string) error {
	if err := s.accounts.SignOut(); err != nil {
		return err
	}
	fmt.Fprintln(s.out, "Signed out")
	return s.reopenSession(ctx)
}

// WhoAmICommand shows the signed-in account
type WhoAmICommand struct{}

func (c *WhoAmICommand) Name() string        { return "whoami" }
func (c *WhoAmICommand) Aliases() []string   { return nil }
func (c *WhoAmICommand) Description() string { return "Show the signed-in account" }
func (c *WhoAmICommand) Usage() string       { return "whoami" }

func (c *WhoAmICommand) Execute(ctx context.Context, s *Shell, _ []string) error {
	acct, err := s.accounts.Current(ctx)
	if err != nil {
		fmt.Fprintln(s.out, "Anonymous (not signed in)")
		return nil
	}
	fmt.Fprintf(s.out, "%s (%s)\n", acct.Email, shortID(acct.ID))
	return nil
}

// UsageCommand shows quota consumption
type UsageCommand struct{}

func (c *UsageCommand) Name() string        { return "usage" }
func (c *UsageCommand) Aliases() []string   { return nil }
func (c *UsageCommand) Description() string { return "Show quota and tier status" }
func (c *UsageCommand) Usage() string       { return "usage" }

func (c *UsageCommand) Execute(ctx context.Context, s *Shell, _ []string) error {
	owner := s.accounts.CurrentOwnerID()
	if owner == "" {
		fmt.Fprintln(s.out, "Sign in to track usage.")
		return nil
	}

	rec, err := s.ledger.Get(ctx, owner)
	if err != nil {
		return err
	}

	tier := "free"
	if rec.PaidTier {
		tier = "paid"
	}
	fmt.Fprintf(s.out, "Generations used: %d\n", rec.GenerationsUsed)
	fmt.Fprintf(s.out, "Tier:             %s\n", tier)
	if !rec.PaidTier && rec.GenerationsUsed >= 1 {
		fmt.Fprintln(s.out, "Free quota exhausted. The next generation will require payment.")
	}
	return nil
}

// HelpCommand shows available commands
type HelpCommand struct{}

func (c *HelpCommand) Name() string        { return "help" }
func (c *HelpCommand) Aliases() []string   { return []string{"?"} }
func (c *HelpCommand) Description() string { return "Show available commands" }
func (c *HelpCommand) Usage() string       { return "help" }

func (c *HelpCommand) Execute(_ context.Context, s *Shell, _ []string) error {
	fmt.Fprintln(s.out, "Available commands:")
	fmt.Fprintln(s.out)
	for _, cmd := range allCommands() {
		aliases := ""
		if len(cmd.Aliases()) > 0 {
			aliases = fmt.Sprintf(" (%s)", strings.Join(cmd.Aliases(), ", "))
		}
		fmt.Fprintf(s.out, "  %-12s%s\n", cmd.Name()+aliases, cmd.Description())
		fmt.Fprintf(s.out, "               Usage: %s\n", cmd.Usage())
	}
	return nil
}

// QuitCommand exits the shell
type QuitCommand struct{}

func (c *QuitCommand) Name() string        { return "quit" }
func (c *QuitCommand) Aliases() []string   { return []string{"exit", "q"} }
func (c *QuitCommand) Description() string { return "Exit the studio" }
func (c *QuitCommand) Usage() string       { return "quit" }

func (c *QuitCommand) Execute(_ context.Context, s *Shell, _ []string) error {
	fmt.Fprintln(s.out, "Goodbye!")
	s.Stop()
	return nil
}

// promptPassword reads a password without echo when attached to a
// terminal, and falls back to a plain line read when the input stream
// is not a TTY (tests, pipes).
func (s *Shell) promptPassword(label string) (string, error) {
	fmt.Fprint(s.out, label)
	if f, ok := s.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		data, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(s.out)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	if !s.scanner.Scan() {
		return "", fmt.Errorf("no password input")
	}
	return strings.TrimSpace(s.scanner.Text()), nil
}

// resolveCreation accepts a 1-based history index or an id prefix.
func resolveCreation(s *Shell, ref string) (string, error) {
	list := s.sess.History()
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(list) {
			return "", fmt.Errorf("no history entry %d", n)
		}
		return list[n-1].ID, nil
	}
	for _, entry := range list {
		if strings.HasPrefix(entry.ID, ref) {
			return entry.ID, nil
		}
	}
	return "", fmt.Errorf("creation not found: %s", ref)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
