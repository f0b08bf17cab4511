package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/eringen/askengine"
	"github.com/eringen/askengine/views"
)

func configPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return askengine.EnvOr("ASKENGINE_CONFIG", "")
}

func runServe(args []string) error {
	cfg, err := askengine.LoadConfig(configPath(args))
	if err != nil {
		return err
	}
	if cfg.SessionSecret == "" {
		cfg.SessionSecret = askengine.MustEnv("ASKENGINE_SESSION_SECRET")
	}
	app := askengine.New(cfg, views.Default())
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return app.Echo.Shutdown(shutdownCtx)
}

func runAddUser(args []string) error {
	login := args[0]
	role := askengine.RoleSubscriber
	if len(args) > 1 {
		role = askengine.ParseRole(args[1])
	}

	cfg, err := askengine.LoadConfig(askengine.EnvOr("ASKENGINE_CONFIG", ""))
	if err != nil {
		return err
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "data/askengine.db"
	}
	store, err := askengine.NewStore(cfg.DatabasePath)
	if err != nil {
		return err
	}
	defer store.Close()

	password, err := readPassword()
	if err != nil {
		return err
	}
	u, err := store.CreateUser(context.Background(), login, login, password, role)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	fmt.Printf("Created %s %q (id %d)\n", u.Role, u.Login, u.ID)
	return nil
}

// readPassword prompts without echo on a terminal and reads a line otherwise.
func readPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	fmt.Fprint(os.Stderr, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	fmt.Fprint(os.Stderr, "Repeat password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	if len(first) < 8 {
		return "", errors.New("password must have at least 8 characters")
	}
	return string(first), nil
}
