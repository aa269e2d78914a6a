package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync"

	"github.com/dmitrenko/passlock/internal/bridge"
	"github.com/dmitrenko/passlock/internal/clipboard"
	"github.com/dmitrenko/passlock/internal/config"
	"github.com/dmitrenko/passlock/internal/logging"
	"github.com/dmitrenko/passlock/internal/session"
	"github.com/dmitrenko/passlock/internal/shared"
	"github.com/dmitrenko/passlock/internal/vault"
)

// tokenBytes sizes the per-process extension pairing token (hex-encoded).
const tokenBytes = 32

// App owns the interactive session: the vault store, the shared session
// handle that the bridge / native host / auto-lock all reach the open vault
// through, the clipboard manager and the pairing token.
type App struct {
	config *config.Config
	logger logging.Logger
	store  *vault.Store
	handle *session.Handle
	clip   *clipboard.Manager
	token  string
	reader *bufio.Reader
	out    io.Writer
}

func NewApp(c *config.Config, logger logging.Logger) (*App, error) {
	store, err := vault.NewStore(c.VaultsDir)
	if err != nil {
		return nil, err
	}

	token, err := shared.MakeRandHexString(tokenBytes)
	if err != nil {
		return nil, err
	}

	return &App{
		config: c,
		logger: logger,
		store:  store,
		handle: session.NewHandle(),
		clip:   clipboard.NewManager(logger),
		token:  token,
		reader: bufio.NewReader(os.Stdin),
		out:    os.Stdout,
	}, nil
}

// Handle exposes the shared session handle so alternate front ends (the
// native messaging host) can be wired to the same session.
func (a *App) Handle() *session.Handle {
	return a.handle
}

func (a *App) isUnlocked() bool {
	unlocked := false
	a.handle.Visit(func(s *session.Session) {
		unlocked = s != nil && s.Active()
	})
	return unlocked
}

// touch stamps the activity clock after a completed command, keeping the
// auto-lock at bay while the user is actually working.
func (a *App) touch() {
	a.handle.Visit(func(s *session.Session) {
		if s != nil && s.Active() {
			s.UpdateActivity()
		}
	})
}

func (a *App) getStatus() string {
	name := ""
	a.handle.Visit(func(s *session.Session) {
		if s != nil && s.Active() {
			name = s.VaultName
		}
	})
	if name == "" {
		return "(locked)"
	}
	return "(" + name + ")"
}

// Run starts the auto-lock monitor and the extension bridge in their own
// goroutines, then blocks in the REPL until the user exits or stdin closes.
// On the way out any open session is ended (which persists the vault) and
// pending clipboard contents are cleared.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	monitor := session.NewAutoLockMonitor(a.handle, a.config.AutolockPollInterval, a.logger, func(msg string) {
		printlnFn(msg)
	})
	wg.Add(1)
	go func() {
		defer wg.Done()
		monitor.Run(ctx)
	}()

	srv := bridge.NewServer(a.config.BridgeAddr, a.token, a.handle, a.logger)
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := srv.Run(ctx); err != nil {
			a.logger.Error(ctx, "extension bridge stopped", "error", err)
		}
	}()

	printlnFn("passlock (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.getStatus, scanner)

	a.shutdown(ctx)
	cancel()
	wg.Wait()
}

func (a *App) shutdown(ctx context.Context) {
	a.handle.Visit(func(s *session.Session) {
		if s == nil || !s.Active() {
			return
		}
		if err := s.EndSession(); err != nil {
			a.logger.Error(ctx, "closing vault on exit failed", "error", err)
		}
	})
	if err := a.clip.Clear(); err != nil {
		a.logger.Warn(ctx, "clipboard clear on exit failed", "error", err)
	}
	a.clip.Close()
}
