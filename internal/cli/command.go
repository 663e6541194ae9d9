// Пакет cli — консольный клиент doc-console (docctl).
// Дерево команд с флагами pflag; каждая команда работает через те же
// модели, что и веб-консоль (entity, docquery, tagedit), а сессия
// хранится в файле.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// ErrUsage — неверные аргументы команды.
var ErrUsage = errors.New("неверное использование команды")

// Command — команда или группа подкоманд.
type Command struct {
	// Name — имя команды, как его вводит пользователь
	Name string
	// Summary — однострочное описание для списка команд
	Summary string
	// Usage — строка использования (пусто — строится из пути команды)
	Usage string
	// Flags возвращает набор флагов команды; вызывается при каждом разборе
	Flags func() *pflag.FlagSet
	// Subcommands — подкоманды, выбираются первым аргументом
	Subcommands []*Command
	// Run выполняет команду с аргументами после разбора флагов
	Run func(ctx context.Context, args []string) error

	parent *Command
}

// Execute разбирает аргументы и выполняет команду или подкоманду.
// Справка (-h, --help) пишется в help.
func (c *Command) Execute(ctx context.Context, args []string, help io.Writer) error {
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.PrintHelp(help)
		return nil
	}

	if len(c.Subcommands) > 0 && len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		for _, sub := range c.Subcommands {
			if sub.Name == args[0] {
				sub.parent = c
				return sub.Execute(ctx, args[1:], help)
			}
		}
		return fmt.Errorf("%w: неизвестная команда %q, см. '%s --help'", ErrUsage, args[0], c.fullName())
	}

	if c.Run == nil {
		c.PrintHelp(help)
		return fmt.Errorf("%w: требуется подкоманда", ErrUsage)
	}

	if c.Flags != nil {
		fs := c.Flags()
		fs.SetOutput(io.Discard)
		if err := fs.Parse(args); err != nil {
			if errors.Is(err, pflag.ErrHelp) {
				c.PrintHelp(help)
				return nil
			}
			return fmt.Errorf("%w: %s, см. '%s --help'", ErrUsage, err.Error(), c.fullName())
		}
		args = fs.Args()
	}

	return c.Run(ctx, args)
}

// PrintHelp пишет справку по команде.
func (c *Command) PrintHelp(w io.Writer) {
	if c.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", c.Summary)
	}

	switch {
	case c.Usage != "":
		fmt.Fprintf(w, "Usage:\n  %s\n", c.Usage)
	case len(c.Subcommands) > 0:
		fmt.Fprintf(w, "Usage:\n  %s <command> [flags]\n", c.fullName())
	default:
		fmt.Fprintf(w, "Usage:\n  %s [flags]\n", c.fullName())
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nCommands:\n")
		tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, sub := range c.Subcommands {
			fmt.Fprintf(tw, "  %s\t%s\n", sub.Name, sub.Summary)
		}
		_ = tw.Flush()
	}

	if c.Flags != nil {
		var flagHelp strings.Builder
		fs := c.Flags()
		fs.SetOutput(&flagHelp)
		fs.PrintDefaults()
		if flagHelp.Len() > 0 {
			fmt.Fprintf(w, "\nFlags:\n%s", flagHelp.String())
		}
	}
}

func (c *Command) fullName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.fullName() + " " + c.Name
}

func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}

// noArgs проверяет, что у команды нет позиционных аргументов.
func noArgs(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: лишний аргумент %q", ErrUsage, args[0])
	}
	return nil
}
