package main

import (
	"context"
	"errors"
	"fmt"
	"net/http/httptest"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-employee-console/console"
	"github.com/jrsteele09/go-employee-console/employees"
	"github.com/jrsteele09/go-employee-console/employees/apifake"
	"github.com/jrsteele09/go-employee-console/internal/config"
	"github.com/jrsteele09/go-employee-console/internal/logger"
	"github.com/jrsteele09/go-employee-console/kv"
	"github.com/jrsteele09/go-employee-console/session"
	"github.com/rs/zerolog/log"
)

const (
	maxRestarts = 3
	dialTimeout = 5 * time.Second
)

func main() {
	for attempt := 1; ; attempt++ {
		err := run()
		if err == nil {
			break
		}
		fmt.Fprintf(os.Stderr, "Error running console: %s\n", err)
		if attempt >= maxRestarts {
			os.Exit(1)
		}
		time.Sleep(1 * time.Second)
	}
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	closer, err := logger.Init(c)
	if err != nil {
		return err
	}
	defer closer.Close()

	displayAppname(c.GetAppName())

	ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
	backing, cleanup, err := openStore(ctx, c)
	cancel()
	if err != nil {
		return err
	}
	defer cleanup()
	store := session.NewStore(backing)

	baseURL := c.GetAPIBaseURL()
	if c.GetDemo() {
		demo, err := startDemoAPI(c)
		if err != nil {
			return err
		}
		defer demo.Close()
		baseURL = demo.URL + apifake.BasePath
	}

	client := employees.NewClient(baseURL, store,
		employees.WithPageSize(c.GetPageSize()),
		employees.WithTimeout(c.GetRequestTimeout()),
	)

	router := console.NewRouter()
	app := console.NewApp(console.Deps{
		AppName:       c.GetAppName(),
		Store:         store,
		Client:        client,
		Warning:       c.GetWarningThreshold(),
		NotifyTimeout: c.GetLogoutNotifyTimeout(),
	}, router)

	program := tea.NewProgram(app, tea.WithAltScreen())
	router.Bind(program.Send)
	go waitForStopSignal(program)

	log.Info().Str("api", baseURL).Str("store", string(c.GetStoreKind())).Msg("console starting")
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("program.Run: %w", err)
	}
	app.Wait()
	log.Info().Msg("console stopped")
	return nil
}

// openStore builds the key value store selected by SESSION_STORE
func openStore(ctx context.Context, c config.Config) (kv.KeyValueStore, func(), error) {
	noop := func() {}
	file := func() kv.KeyValueStore {
		var opts []kv.FileOption
		if passphrase := c.GetSessionPassphrase(); passphrase != "" {
			opts = append(opts, kv.WithPassphrase(passphrase))
		}
		return kv.NewFile(c.GetSessionFile(), opts...)
	}

	switch c.GetStoreKind() {
	case config.StoreMemory:
		return kv.NewMemory(), noop, nil
	case config.StoreRedis, config.StoreMulti:
		r, err := kv.DialRedis(ctx, c.GetRedisAddr(), c.GetRedisPassword(), c.GetRedisDB(), c.GetRedisPrefix())
		if err != nil {
			return nil, noop, err
		}
		cleanup := func() {
			if err := r.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close redis")
			}
		}
		if c.GetStoreKind() == config.StoreRedis {
			return r, cleanup, nil
		}
		return kv.NewMulti(file(), r), cleanup, nil
	default:
		return file(), noop, nil
	}
}

func startDemoAPI(c config.Config) (*httptest.Server, error) {
	api := apifake.New(apifake.WithTokenTTL(c.GetDemoTokenTTL()))
	if _, err := api.AddUser("admin", "admin@example.com", "admin123", employees.RoleAdmin); err != nil {
		return nil, fmt.Errorf("seed demo admin: %w", err)
	}
	for _, e := range demoEmployees {
		api.AddEmployee(e)
	}
	srv := httptest.NewServer(api)
	log.Info().Str("url", srv.URL).Dur("token_ttl", c.GetDemoTokenTTL()).Msg("demo api started, log in as admin@example.com / admin123")
	return srv, nil
}

var demoEmployees = []employees.Employee{
	{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Department: "Research", Designation: "Analyst"},
	{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com", Department: "Engineering", Designation: "Rear Admiral"},
	{FirstName: "Alan", LastName: "Turing", Email: "alan@example.com", Department: "Research", Designation: "Cryptanalyst"},
	{FirstName: "Edsger", LastName: "Dijkstra", Email: "edsger@example.com", Department: "Engineering", Designation: "Professor"},
	{FirstName: "Barbara", LastName: "Liskov", Email: "barbara@example.com", Department: "Engineering", Designation: "Architect"},
	{FirstName: "Ken", LastName: "Thompson", Email: "ken@example.com", Department: "Systems", Designation: "Engineer"},
	{FirstName: "Margaret", LastName: "Hamilton", Email: "margaret@example.com", Department: "Systems", Designation: "Director"},
}

func waitForStopSignal(program *tea.Program) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	program.Quit()
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
