package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/matzehuels/teamtree/pkg/errors"
	"github.com/matzehuels/teamtree/pkg/session"
)

// captchaAttempts is how many codes a login may fail before giving up.
const captchaAttempts = 3

// authCommand creates the auth command with subcommands.
func (c *CLI) authCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Log in to the back office and manage the stored credential",
		Long: `Log in with your back-office username and password. The bearer token is
stored in ~/.config/teamtree/sessions/ (or Redis, see session.backend) and
used by fetch, render, watch and serve.

TEAMTREE_TOKEN takes precedence over the stored credential.`,
	}

	cmd.AddCommand(c.loginCommand())
	cmd.AddCommand(c.logoutCommand())
	cmd.AddCommand(c.whoamiCommand())

	return cmd
}

// loginOpts holds the flags for the login subcommand.
type loginOpts struct {
	username      string
	passwordStdin bool
	baseURL       string
}

func (c *CLI) loginCommand() *cobra.Command {
	var opts loginOpts

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and store the credential",
		Long: `Prompt for username and password, confirm a one-time code, and exchange
the credentials for a bearer token.

With --password-stdin the password is read from standard input and the code
check is skipped, for use in scripts.`,
		Example: `  teamtree auth login -u alice
  echo "$PASSWORD" | teamtree auth login -u alice --password-stdin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLogin(cmd.Context(), opts, newPrompter(os.Stdin, uiOut))
		},
	}

	cmd.Flags().StringVarP(&opts.username, "username", "u", "", "back-office username")
	cmd.Flags().BoolVar(&opts.passwordStdin, "password-stdin", false, "read the password from stdin")
	cmd.Flags().StringVar(&opts.baseURL, "base-url", "", "backend base URL (default from config)")

	return cmd
}

func (c *CLI) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, closeStore, err := c.credentialStore(ctx)
			if err != nil {
				return fmt.Errorf("open session store: %w", err)
			}
			defer closeStore()

			if err := store.Clear(ctx); err != nil {
				return fmt.Errorf("delete credential: %w", err)
			}
			printSuccess("Logged out")
			return nil
		},
	}
}

func (c *CLI) whoamiCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cred, err := c.credential(cmd.Context())
			if err != nil {
				return err
			}
			if err := cred.Check(); err != nil {
				return err
			}
			printCredential(cred)
			return nil
		},
	}
}

func printCredential(cred *session.Credential) {
	printSuccess("Back-office session")
	if cred.Username != "" {
		printKeyValue("Username", cred.Username)
	}
	if cred.BaseURL != "" {
		printKeyValue("Backend", cred.BaseURL)
	}
	if cred.ID == "env" {
		printKeyValue("Source", "TEAMTREE_TOKEN")
		return
	}
	printKeyValue("Logged in", cred.CreatedAt.Format("Jan 2, 2006 15:04"))
	if cred.ExpiresAt.IsZero() {
		printKeyValue("Expires", "never")
	} else {
		printKeyValue("Expires", cred.ExpiresAt.Format("Jan 2, 2006 15:04"))
	}
}

// =============================================================================
// Login
// =============================================================================

func (c *CLI) runLogin(ctx context.Context, opts loginOpts, p *prompter) error {
	baseURL := opts.baseURL
	if baseURL == "" {
		baseURL = c.cfg.Backend.BaseURL
	}
	cfg := c.cfg
	cfg.Backend.BaseURL = baseURL
	if err := cfg.RequireBackend(); err != nil {
		return err
	}

	store, closeStore, err := c.credentialStore(ctx)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	defer closeStore()

	username := strings.TrimSpace(opts.username)
	if username == "" {
		if username, err = p.line("Username"); err != nil {
			return err
		}
	}

	var password string
	if opts.passwordStdin {
		password, err = p.rest()
	} else {
		password, err = p.secret("Password")
	}
	if err != nil {
		return err
	}

	if !opts.passwordStdin {
		if err := c.confirmCaptcha(ctx, p); err != nil {
			return err
		}
	}

	cl, err := c.clientFor(baseURL, nil)
	if err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Logging in...")
	spinner.Start()
	resp, err := cl.Login(ctx, username, password)
	if err != nil {
		spinner.StopWithError("Login failed")
		return err
	}
	spinner.Stop()

	cred, err := session.New(resp.Token, cl.BaseURL(), username, time.Duration(c.cfg.Session.TTL))
	if err != nil {
		return fmt.Errorf("create credential: %w", err)
	}
	if err := store.Save(ctx, cred); err != nil {
		return fmt.Errorf("save credential: %w", err)
	}

	printSuccess("Logged in as %s", username)
	if resp.Role != "" {
		printKeyValue("Role", resp.Role)
	}
	printDetail("Credential: %s", store.Path())
	printNextStep("Show your tree", "teamtree watch")
	return nil
}

// confirmCaptcha shows a one-time code and asks for it back. Each code is
// consumed on the first answer, right or wrong.
func (c *CLI) confirmCaptcha(ctx context.Context, p *prompter) error {
	captchas, closeCaptchas := c.captchaStore(ctx)
	defer closeCaptchas()
	for attempt := 1; attempt <= captchaAttempts; attempt++ {
		captcha, err := captchas.Issue(ctx, session.DefaultCaptchaTTL)
		if err != nil {
			return fmt.Errorf("issue code: %w", err)
		}
		printCode("Confirmation code", captcha.Code)
		answer, err := p.line("Type the code")
		if err != nil {
			return err
		}
		ok, err := captchas.Verify(ctx, captcha.ID, answer)
		if err != nil {
			return fmt.Errorf("verify code: %w", err)
		}
		if ok {
			return nil
		}
		printWarning("Code did not match (%d of %d)", attempt, captchaAttempts)
	}
	return errors.New(errors.ErrCodeCaptcha, "confirmation code did not match after %d attempts", captchaAttempts)
}

// captchaStore issues codes from the session Redis when there is one, so a
// code can be confirmed from another terminal on a shared host.
func (c *CLI) captchaStore(ctx context.Context) (session.CaptchaStore, func() error) {
	if c.cfg.Session.Backend == "redis" {
		rs, err := session.NewRedisStore(ctx, session.RedisConfig{Addr: c.cfg.Session.RedisAddr, Prefix: sessionPrefix})
		if err == nil {
			return rs, rs.Close
		}
		c.Logger.Warn("redis unavailable, issuing codes locally", "error", err)
	}
	return session.NewMemoryCaptchaStore(), func() error { return nil }
}

// =============================================================================
// Prompts
// =============================================================================

// prompter reads answers from the terminal. Secrets are read without echo
// when in is a terminal.
type prompter struct {
	in  *bufio.Reader
	fd  uintptr
	tty bool
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	p := &prompter{in: bufio.NewReader(in), out: out}
	if f, ok := in.(*os.File); ok {
		p.fd = f.Fd()
		p.tty = term.IsTerminal(p.fd)
	}
	return p
}

func (p *prompter) line(label string) (string, error) {
	fmt.Fprint(p.out, StyleDim.Render(label+": "))
	s, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || s == "") {
		return "", errors.New(errors.ErrCodeInvalidInput, "%s: no input", strings.ToLower(label))
	}
	return strings.TrimSpace(s), nil
}

func (p *prompter) secret(label string) (string, error) {
	if !p.tty {
		return p.line(label)
	}
	fmt.Fprint(p.out, StyleDim.Render(label+": "))
	b, err := term.ReadPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return string(b), nil
}

// rest reads everything left on the input, minus the trailing newline.
func (p *prompter) rest() (string, error) {
	b, err := io.ReadAll(p.in)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(b), "\r\n"), nil
}
