package admincli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/carshow/internal/server/models"
)

var ErrUnknownCommand = errors.New("unknown command")

// AdminCreator is the part of the admin service the CLI needs.
type AdminCreator interface {
	CreateAccepted(ctx context.Context, cmd models.InviteAdminCommand, password string) (*models.Admin, error)
}

type App struct {
	admins  AdminCreator
	migrate func(ctx context.Context) error
	reader  *bufio.Reader
	out     io.Writer
}

func NewApp(admins AdminCreator, migrate func(ctx context.Context) error, in io.Reader, out io.Writer) *App {
	return &App{admins: admins, migrate: migrate, reader: bufio.NewReader(in), out: out}
}

var commands = map[string]struct{}{
	"create-admin": {},
	"migrate":      {},
	"help":         {},
}

// commandArgs skips the global flags that precede the command name, e.g.
// "-d postgres://... create-admin -name Ann" yields "create-admin -name Ann".
func commandArgs(args []string) []string {
	for i, arg := range args {
		if _, ok := commands[arg]; ok {
			return args[i:]
		}
	}
	return args
}

// Run executes the first command named in args. Global flags placed before
// the command are ignored here; config.LoadConfig reads them.
func (a *App) Run(ctx context.Context, args []string) error {
	args = commandArgs(args)
	if len(args) == 0 {
		a.usage()
		return ErrUnknownCommand
	}

	switch args[0] {
	case "create-admin":
		return a.CreateAdmin(ctx, args[1:])
	case "migrate":
		return a.Migrate(ctx)
	case "help", "-h", "--help":
		a.usage()
		return nil
	default:
		a.usage()
		return fmt.Errorf("%w: %s", ErrUnknownCommand, args[0])
	}
}

func (a *App) usage() {
	fmt.Fprintln(a.out, "Usage: carshow-cli [-d DSN] <command> [flags]")
	fmt.Fprintln(a.out, "Commands:")
	fmt.Fprintln(a.out, "  create-admin [-name NAME] [-email EMAIL] [-role admin|organizer]")
	fmt.Fprintln(a.out, "  migrate")
}

// CreateAdmin creates an account that can log in right away. Name and email
// are prompted for when the flags are omitted; the password always comes
// from the terminal.
func (a *App) CreateAdmin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create-admin", flag.ContinueOnError)
	fs.SetOutput(a.out)
	name := fs.String("name", "", "display name")
	email := fs.String("email", "", "login email")
	role := fs.String("role", string(models.RoleAdmin), "role: admin or organizer")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	if *name == "" {
		if *name, err = GetSimpleText(a.reader, "Name", a.out); err != nil {
			return err
		}
	}
	if *email == "" {
		if *email, err = GetSimpleText(a.reader, "Email", a.out); err != nil {
			return err
		}
	}

	cmd, err := models.NewInviteAdminCommand(*name, *email, models.Role(*role))
	if err != nil {
		return err
	}

	pw, err := GetNewPassword(a.out)
	if err != nil {
		return err
	}
	defer wipe(pw)

	admin, err := a.admins.CreateAccepted(ctx, cmd, string(pw))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Created %s %s <%s> (%s)\n", admin.Role, admin.Name, admin.Email, admin.ID)
	return nil
}

func (a *App) Migrate(ctx context.Context) error {
	if err := a.migrate(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Migrations applied")
	return nil
}
