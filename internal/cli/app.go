package cli

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/fitkeeper/internal/common"
	"github.com/dmitrijs2005/fitkeeper/internal/flagx"
	"github.com/dmitrijs2005/fitkeeper/internal/server/models"
)

// Operator is satisfied by *services.AccountService.
type Operator interface {
	BootstrapAdmin(ctx context.Context, email, password string) (*models.Account, error)
	SetActive(ctx context.Context, email string, active bool) (*models.Account, error)
}

var (
	ErrUsage            = errors.New("usage")
	ErrPasswordMismatch = errors.New("passwords do not match")
)

const usage = `Usage: memberctl <command> [flags]

Commands:
  create-admin -email <email>                 create an admin, or promote an existing account
  set-active   -email <email> -active=<bool>  activate or deactivate an account

Server config flags (-d, -c, ...) and FITKEEPER_* variables are honoured.
`

type App struct {
	ops Operator
	out io.Writer
}

func NewApp(ops Operator, out io.Writer) *App {
	return &App{ops: ops, out: out}
}

// Usage writes the command summary.
func Usage(w io.Writer) {
	fmt.Fprint(w, usage)
}

var commands = map[string]struct{}{
	"create-admin": {},
	"set-active":   {},
	"help":         {},
}

// Command returns the first known subcommand in args. Server flags may come
// before it.
func Command(args []string) string {
	for _, a := range args {
		if _, ok := commands[a]; ok {
			return a
		}
	}
	return ""
}

// Run executes the subcommand named in args.
func (a *App) Run(ctx context.Context, args []string) error {
	switch Command(args) {
	case "create-admin":
		return a.createAdmin(ctx, args)
	case "set-active":
		return a.setActive(ctx, args)
	case "help":
		Usage(a.out)
		return nil
	default:
		Usage(a.out)
		return ErrUsage
	}
}

type commandFlags struct {
	email  string
	active bool
}

func parseCommandFlags(args []string) (commandFlags, error) {
	var f commandFlags

	fs := flag.NewFlagSet("memberctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&f.email, "email", "", "account email")
	fs.BoolVar(&f.active, "active", true, "active flag")

	if err := fs.Parse(flagx.FilterArgs(args, []string{"-email", "--email", "-active", "--active"})); err != nil {
		return f, fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if strings.TrimSpace(f.email) == "" {
		return f, fmt.Errorf("%w: -email is required", ErrUsage)
	}
	return f, nil
}

func (a *App) createAdmin(ctx context.Context, args []string) error {
	f, err := parseCommandFlags(args)
	if err != nil {
		return err
	}

	pw, err := GetPassword(a.out, "Password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	confirm, err := GetPassword(a.out, "Repeat password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(pw, confirm) {
		return ErrPasswordMismatch
	}

	account, err := a.ops.BootstrapAdmin(ctx, f.email, string(pw))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "admin %s (id %d) is ready\n", account.Email, account.ID)
	return nil
}

func (a *App) setActive(ctx context.Context, args []string) error {
	f, err := parseCommandFlags(args)
	if err != nil {
		return err
	}

	account, err := a.ops.SetActive(ctx, f.email, f.active)
	if err != nil {
		return err
	}

	state := "inactive"
	if account.IsActive {
		state = "active"
	}
	fmt.Fprintf(a.out, "account %s (id %d) is now %s\n", account.Email, account.ID, state)
	return nil
}
