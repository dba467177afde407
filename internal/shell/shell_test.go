package shell

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myaiplug/saasify/internal/account"
	"github.com/myaiplug/saasify/internal/creation"
	"github.com/myaiplug/saasify/internal/export"
	"github.com/myaiplug/saasify/internal/gate"
	"github.com/myaiplug/saasify/internal/pricing"
	"github.com/myaiplug/saasify/internal/store"
	"github.com/myaiplug/saasify/internal/store/localcache"
	"github.com/myaiplug/saasify/internal/transform"
	"github.com/myaiplug/saasify/internal/usage"
)

type harness struct {
	out    *bytes.Buffer
	errBuf *bytes.Buffer
	engine *transform.Fake
	ledger *usage.Ledger
}

// runScript wires a full offline stack and feeds the shell a newline
// separated command script.
func runScript(t *testing.T, script string) *harness {
	t.Helper()
	dir := t.TempDir()

	db, err := store.Open(filepath.Join(dir, "saasify.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	engine := &transform.Fake{}
	ledger := usage.NewLedger(db, nil)
	calc := pricing.NewCalculator()
	gw := gate.New(ledger, calc, nil)
	cache := localcache.New(dir)
	mirror := store.NewHistoryMirror(db, cache)
	studio := creation.NewStudio(gw, engine, ledger, mirror, nil)
	accounts := account.NewManager(db, dir, nil)

	out := &bytes.Buffer{}
	errBuf := &bytes.Buffer{}
	sh := New(&Config{
		In:       strings.NewReader(script),
		Out:      out,
		Err:      errBuf,
		Studio:   studio,
		Accounts: accounts,
		Gateway:  gw,
		Ledger:   ledger,
		Calc:     calc,
		Exporter: export.New(engine, filepath.Join(dir, "exports")),
	})

	require.NoError(t, sh.Run(context.Background()))
	return &harness{out: out, errBuf: errBuf, engine: engine, ledger: ledger}
}

func TestAnonymousGenerationPromptsSignIn(t *testing.T) {
	h := runScript(t, "generate a dashboard\nquit\n")

	assert.Contains(t, h.out.String(), "Sign in required")
	assert.Zero(t, h.engine.Calls, "denied request never reaches the engine")
}

func TestSignUpGenerateAndPaywall(t *testing.T) {
	script := strings.Join([]string{
		"signup ada@example.com Ada",
		"hunter2hunter2", // password
		"generate a pro audio dashboard",
		"generate a second app",
		"usage",
		"quit",
	}, "\n") + "\n"

	h := runScript(t, script)
	out := h.out.String()

	assert.Contains(t, out, "first generation is free")
	assert.Contains(t, out, `Created "Neural Artifact"`)
	assert.Contains(t, out, "Payment required to continue.")
	assert.Contains(t, out, "Margin:     250%")
	assert.Contains(t, out, "Buffer:     +25% volatility")
	assert.Contains(t, out, "Generations used: 1")
	assert.Contains(t, out, "Free quota exhausted")
	assert.Equal(t, 1, h.engine.Calls)
}

func TestUpgradeUnlocksGeneration(t *testing.T) {
	script := strings.Join([]string{
		"signup ada@example.com Ada",
		"hunter2hunter2",
		"generate first app",
		"upgrade",
		"generate second app",
		"history",
		"quit",
	}, "\n") + "\n"

	h := runScript(t, script)
	out := h.out.String()

	assert.Contains(t, out, "Paid tier active")
	assert.Equal(t, 2, h.engine.Calls)
	assert.Contains(t, out, "[1]")
	assert.Contains(t, out, "[2]")
}

func TestRefineUndoFlow(t *testing.T) {
	script := strings.Join([]string{
		"signup ada@example.com Ada",
		"hunter2hunter2",
		"upgrade",
		"generate a meter",
		"refine make it glow",
		"undo",
		"quit",
	}, "\n") + "\n"

	h := runScript(t, script)
	out := h.out.String()

	assert.Contains(t, out, "Updated \"Neural Artifact\"")
	assert.Contains(t, out, "Reverted \"Neural Artifact\" (0 undo frame(s) left)")
}

func TestTemplateOpenAndExport(t *testing.T) {
	script := strings.Join([]string{
		"template list",
		"template open growth-crm",
		"export zip",
		"quit",
	}, "\n") + "\n"

	h := runScript(t, script)
	out := h.out.String()

	assert.Contains(t, out, "Growth CRM")
	assert.Contains(t, out, `Opened starter "Growth CRM"`)
	assert.Contains(t, out, "growth_crm_web.zip")
}

func TestPriceQuoteWithoutGenerating(t *testing.T) {
	h := runScript(t, "price a small landing page\nquit\n")
	out := h.out.String()

	assert.Contains(t, out, "Quote: $2.99 USD (Standard tier)")
	assert.Zero(t, h.engine.Calls)
}

func TestUnknownCommandIsReported(t *testing.T) {
	h := runScript(t, "frobnicate\nquit\n")

	assert.Contains(t, h.errBuf.String(), "unknown command: frobnicate")
}

func TestGenerateRejectsUntrustedRepoURL(t *testing.T) {
	script := strings.Join([]string{
		"signup ada@example.com Ada",
		"hunter2hunter2",
		"generate https://evil.example.com/repo",
		"quit",
	}, "\n") + "\n"

	h := runScript(t, script)

	assert.Contains(t, h.errBuf.String(), "not trusted")
	assert.Zero(t, h.engine.Calls)
}

func TestParseCommandQuoting(t *testing.T) {
	got := parseCommand(`refine "add a dark header" now`)
	assert.Equal(t, []string{"refine", "add a dark header", "now"}, got)

	got = parseCommand("   ")
	assert.Empty(t, got)
}
