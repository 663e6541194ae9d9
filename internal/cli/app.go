package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/aventuscto/doc-console/internal/apiclient"
	"github.com/aventuscto/doc-console/internal/docservice"
	"github.com/aventuscto/doc-console/internal/domain/model"
	"github.com/aventuscto/doc-console/internal/entity"
	"github.com/aventuscto/doc-console/internal/session"
	"github.com/aventuscto/doc-console/internal/userservice"
)

// ErrNotLoggedIn — команда требует сессии, а её нет.
var ErrNotLoggedIn = errors.New("not logged in, run 'docctl login'")

// DocumentService — операции document-service, нужные командам.
type DocumentService interface {
	entity.DocumentAPI
	entity.TagAPI
	DownloadURL(filename string) string
}

// UserService — операции user-service, нужные командам.
type UserService interface {
	Login(ctx context.Context, username, password string) (model.Credential, error)
	entity.UserAPI
	entity.GroupAPI
	entity.RoleAPI
}

// Options — зависимости App.
type Options struct {
	Store  *session.Store
	Docs   DocumentService
	Users  UserService
	In     io.Reader
	Out    io.Writer
	Err    io.Writer
	Logger *slog.Logger
}

// App — состояние docctl: сессия, клиенты сервисов и потоки ввода-вывода.
type App struct {
	store  *session.Store
	docs   DocumentService
	users  UserService
	in     io.Reader
	lines  *bufio.Reader
	out    io.Writer
	errOut io.Writer
	logger *slog.Logger
}

// New создаёт App из готовых зависимостей.
func New(o Options) *App {
	if o.In == nil {
		o.In = os.Stdin
	}
	if o.Out == nil {
		o.Out = os.Stdout
	}
	if o.Err == nil {
		o.Err = os.Stderr
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(o.Err, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	return &App{
		store:  o.Store,
		docs:   o.Docs,
		users:  o.Users,
		in:     o.In,
		out:    o.Out,
		errOut: o.Err,
		logger: o.Logger,
	}
}

// Build создаёт App по конфигурации: файловая сессия и клиенты backend.
// Отказ backend в авторизации (401/403) закрывает сессию.
func Build(cfg Config, logger *slog.Logger) (*App, error) {
	store := session.NewStore(session.FilePersister{Path: cfg.SessionFile}, logger)
	if err := store.Restore(); err != nil {
		logger.Warn("Файл сессии повреждён, требуется вход", slog.String("error", err.Error()))
	}

	timeout, err := cfg.RequestTimeout()
	if err != nil {
		return nil, err
	}

	opts := []apiclient.Option{
		apiclient.WithCACert(cfg.CACertPath),
		apiclient.WithTimeout(timeout),
		apiclient.WithLogger(logger),
		apiclient.WithUnauthorizedHandler(func(context.Context) {
			if err := store.Logout(); err != nil {
				logger.Warn("Ошибка закрытия сессии", slog.String("error", err.Error()))
			}
		}),
	}

	docsAPI, err := apiclient.New(apiclient.ServiceDocuments, cfg.DocumentServiceURL, store, opts...)
	if err != nil {
		return nil, err
	}
	usersAPI, err := apiclient.New(apiclient.ServiceUsers, cfg.UserServiceURL, store, opts...)
	if err != nil {
		return nil, err
	}

	return New(Options{
		Store:  store,
		Docs:   docservice.New(docsAPI, cfg.UploadsBaseURL, nil, logger),
		Users:  userservice.New(usersAPI, cfg.LoginPath, logger),
		Logger: logger,
	}), nil
}

// Run выполняет команду docctl с аргументами args.
func (a *App) Run(ctx context.Context, args []string) error {
	return a.Root().Execute(ctx, args, a.errOut)
}

// Root возвращает дерево команд docctl.
func (a *App) Root() *Command {
	return &Command{
		Name:    "docctl",
		Summary: "Console client for the document management service",
		Subcommands: []*Command{
			a.loginCommand(),
			a.logoutCommand(),
			a.whoamiCommand(),
			a.docsCommand(),
			a.tagsCommand(),
			a.usersCommand(),
			a.groupsCommand(),
			a.rolesCommand(),
			a.permissionsCommand(),
		},
	}
}

// requireSession оборачивает команду проверкой сессии.
func (a *App) requireSession(run func(ctx context.Context, args []string) error) func(context.Context, []string) error {
	return func(ctx context.Context, args []string) error {
		if !a.store.Authenticated() {
			return ErrNotLoggedIn
		}
		err := run(ctx, args)
		if errors.Is(err, apiclient.ErrUnauthorized) && !a.store.Authenticated() {
			return fmt.Errorf("session rejected by the server, run 'docctl login': %w", err)
		}
		return err
	}
}

// readSecret читает секрет: с терминала без эха или строку из потока ввода.
func (a *App) readSecret(prompt string) (string, error) {
	if f, ok := a.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(a.errOut, prompt)
		secret, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.errOut)
		if err != nil {
			return "", fmt.Errorf("чтение пароля: %w", err)
		}
		return string(secret), nil
	}
	return a.readLine()
}

// readLine читает одну строку из потока ввода без перевода строки.
func (a *App) readLine() (string, error) {
	if a.lines == nil {
		a.lines = bufio.NewReader(a.in)
	}
	line, err := a.lines.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("чтение ввода: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// userError — ошибка с текстом для пользователя; причина доступна через errors.Is.
type userError struct {
	message string
	err     error
}

func (e *userError) Error() string { return e.message }
func (e *userError) Unwrap() error { return e.err }

// modelError возвращает ошибку с текстом модели для пользователя.
func modelError(message string, err error) error {
	if message == "" {
		return err
	}
	return &userError{message: message, err: err}
}
