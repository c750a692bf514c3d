package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http/cookiejar"
	"os"
	"os/signal"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/naveenspark/moneta/internal/browser"
	"github.com/naveenspark/moneta/internal/config"
	"github.com/naveenspark/moneta/internal/logging"
	"github.com/naveenspark/moneta/internal/tui"
	"github.com/naveenspark/moneta/pkg/client"
	"github.com/naveenspark/moneta/pkg/domain"
	"github.com/naveenspark/moneta/pkg/session"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// cli carries what every command needs.
type cli struct {
	cfg    *config.Config
	base   zerolog.Logger
	log    zerolog.Logger
	client *client.Client
	guard  *session.Guard
	router *session.Router
	stdin  io.Reader
	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer
	// expired is set when the guard redirects a one-shot command to landing.
	expired bool
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cmd := ""
	if len(args) > 0 {
		cmd, args = args[0], args[1:]
	}

	switch cmd {
	case "--version", "version", "-v":
		fmt.Fprintln(stdout, "moneta "+version)
		return nil
	case "help", "--help", "-h":
		printHelp(stdout)
		return nil
	}

	config.LoadDotEnv()
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, closer, err := logging.Open(cfg.LogFile(), cfg.Level())
	if err != nil {
		fmt.Fprintf(stderr, "warning: logging disabled: %v\n", err)
		logger = zerolog.Nop()
	} else {
		defer closer.Close() //nolint:errcheck // best-effort close
	}

	c, err := newCLI(cfg, logger, stdin, stdout, stderr)
	if err != nil {
		return err
	}
	c.log.Debug().Str(logging.FieldCommand, cmd).Msg("start")

	if cmd == "" {
		return c.runTUI()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch cmd {
	case "login":
		err = c.runLogin(ctx, args)
	case "register":
		err = c.runRegister(ctx, args)
	case "logout":
		err = c.runLogout(ctx)
	case "status":
		err = c.runStatus(ctx)
	case "summary":
		err = c.runSummary(ctx, args)
	case "docs":
		err = c.runDocs()
	default:
		return fmt.Errorf("unknown command %q, run 'moneta help'", cmd)
	}
	if c.expired || client.IsSessionExpired(err) {
		fmt.Fprintln(c.errOut, "Your session has expired. Run: moneta login")
		if err != nil {
			c.log.Info().Err(err).Str(logging.FieldCommand, cmd).Msg("session expired")
			return nil
		}
	}
	return err
}

func newCLI(cfg *config.Config, logger zerolog.Logger, stdin io.Reader, stdout, stderr io.Writer) (*cli, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	creds := session.WithEnvOverride(session.NewFileStore(cfg.Home), session.KeyToken, config.EnvToken)
	router := session.NewRouter(session.RouteLanding)
	guard := session.NewGuard(session.Config{
		BaseURL:        cfg.APIURL,
		Credentials:    creds,
		Flags:          session.NewMemoryStore(),
		Navigator:      router,
		Jar:            jar,
		RefreshTimeout: cfg.Timeout,
		Logger:         logger,
	})
	api := client.New(cfg.APIURL, guard,
		client.WithTimeout(cfg.Timeout),
		client.WithCookieJar(jar),
		client.WithLogger(logger),
	)

	return &cli{
		cfg:    cfg,
		base:   logger,
		log:    logging.Component(logger, logging.ComponentCLI),
		client: api,
		guard:  guard,
		router: router,
		stdin:  stdin,
		in:     bufio.NewReader(stdin),
		out:    stdout,
		errOut: stderr,
	}, nil
}

func (c *cli) runTUI() error {
	app := tui.NewApp(c.client, c.router)
	p := tea.NewProgram(app, tea.WithAltScreen())
	tuiLog := logging.Component(c.base, logging.ComponentTUI)
	c.router.OnRedirect(func(route string) {
		tuiLog.Info().Str(logging.FieldRoute, route).Msg("session lost, redirecting")
		p.Send(tui.RedirectMsg{Route: route})
	})
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

// protect marks the command as running on a protected route so a failed
// refresh reaches the redirect hook.
func (c *cli) protect(route string) {
	c.router.OnRedirect(func(string) { c.expired = true })
	c.router.Navigate(route)
}

func (c *cli) runLogin(ctx context.Context, args []string) error {
	email, err := c.argOrPrompt(args, "Email: ")
	if err != nil {
		return err
	}
	password, err := c.readPassword("Password: ")
	if err != nil {
		return err
	}

	if _, err := c.client.Login(ctx, email, password); err != nil {
		if client.IsStatus(err, 401) {
			return errors.New("incorrect email or password")
		}
		return fmt.Errorf("login: %w", err)
	}

	c.protect(session.RouteTransactions)
	me, err := c.client.GetMe(ctx)
	if err != nil {
		fmt.Fprintf(c.out, "Logged in, but could not load your profile: %v\n", err)
		return nil
	}
	fmt.Fprintf(c.out, "Logged in as %s\n", me.Email)
	return nil
}

func (c *cli) runRegister(ctx context.Context, args []string) error {
	email, err := c.argOrPrompt(args, "Email: ")
	if err != nil {
		return err
	}
	password, err := c.readPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := c.readPassword("Confirm password: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}

	user, err := c.client.Register(ctx, domain.Credentials{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("register: %w", err)
	}
	fmt.Fprintf(c.out, "Account created for %s. Run: moneta login %s\n", user.Email, user.Email)
	return nil
}

func (c *cli) runLogout(ctx context.Context) error {
	if c.guard.Token() == "" {
		fmt.Fprintln(c.out, "Already logged out.")
		return nil
	}
	if err := c.client.Logout(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	fmt.Fprintln(c.out, "Logged out.")
	return nil
}

func (c *cli) runStatus(ctx context.Context) error {
	tok := c.guard.Token()
	if tok == "" {
		fmt.Fprintln(c.out, "Not logged in. Run: moneta login")
		return nil
	}

	c.protect(session.RouteSettings)
	me, err := c.client.GetMe(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Logged in as %s\n", me.Email)
	if claims, err := domain.ParseClaims(tok); err == nil && !claims.ExpiresAt.IsZero() {
		fmt.Fprintf(c.out, "Token for %s expires %s\n", claims.Subject, claims.ExpiresAt.Local().Format(time.DateTime))
	}
	fmt.Fprintf(c.out, "API: %s\n", c.cfg.APIURL)
	return nil
}

// runSummary prints totals, optionally limited to the days strictly between
// two dates: moneta summary [after] [before].
func (c *cli) runSummary(ctx context.Context, args []string) error {
	if c.guard.Token() == "" {
		return errors.New("not logged in, run 'moneta login'")
	}

	var filters domain.TransactionFilters
	if len(args) > 0 {
		d, err := domain.ParseDate(args[0])
		if err != nil {
			return fmt.Errorf("invalid start date %q (want YYYY-MM-DD)", args[0])
		}
		filters.DateAfter = &d
	}
	if len(args) > 1 {
		d, err := domain.ParseDate(args[1])
		if err != nil {
			return fmt.Errorf("invalid end date %q (want YYYY-MM-DD)", args[1])
		}
		filters.DateBefore = &d
	}

	c.protect(session.RouteTransactions)
	s, err := c.client.Summary(ctx, filters)
	if err != nil {
		return err
	}
	printSummary(c.out, s)
	return nil
}

func (c *cli) runDocs() error {
	url := c.cfg.DocsURL()
	if err := browser.Open(url); err != nil {
		fmt.Fprintf(c.out, "Could not open browser. Visit this URL manually:\n  %s\n", url)
		return nil
	}
	fmt.Fprintf(c.out, "Opened %s\n", url)
	return nil
}

func (c *cli) argOrPrompt(args []string, prompt string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0]), nil
	}
	fmt.Fprint(c.out, prompt)
	line, err := c.readLine()
	return strings.TrimSpace(line), err
}

func (c *cli) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword reads without echo from a terminal, or a plain line otherwise.
func (c *cli) readPassword(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	if f, ok := c.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(c.out)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(b), nil
	}
	return c.readLine()
}
