package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"

	"github.com/brainbin/go-web-gateway/api"
	"github.com/brainbin/go-web-gateway/auth"
	"github.com/brainbin/go-web-gateway/internal/config"
	"github.com/brainbin/go-web-gateway/internal/metrics"
	"github.com/brainbin/go-web-gateway/server"
	"github.com/brainbin/go-web-gateway/session"
	"github.com/brainbin/go-web-gateway/upload"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Fatalf("Error running server: %s\n", err)
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Printf("Server stopped\n")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	displayAppname(c.GetAppName())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := newSessionStore(c)
	if err != nil {
		return fmt.Errorf("session store: %w", err)
	}

	collector := metrics.NewCollector()
	apiClient := api.New(c)
	cookies := server.NewCookieState(c)

	manager, err := auth.NewManager(apiClient, store, cookies, c, auth.WithMetrics(collector))
	if err != nil {
		return fmt.Errorf("session manager: %w", err)
	}
	if err := manager.Start(ctx); err != nil {
		return fmt.Errorf("session manager start: %w", err)
	}

	tracker, err := upload.NewTracker(apiClient, c, upload.WithTrackerMetrics(collector))
	if err != nil {
		return fmt.Errorf("upload tracker: %w", err)
	}
	defer tracker.Stop()

	gateway, err := server.New(c, apiClient, store, manager, tracker, cookies, collector)
	if err != nil {
		return fmt.Errorf("server: %w", err)
	}

	httpServer := &http.Server{Addr: c.GetPort(), Handler: gateway}
	go listenAndServe(httpServer)
	waitForStopSignal()
	returnError = shutdown(httpServer)
	return returnError
}

// newSessionStore wires the encrypted at-rest persister when a master
// key is configured, and falls back to a memory-only store otherwise.
func newSessionStore(c config.Config) (*session.Store, error) {
	masterKey := c.GetMasterKeyHex()
	if masterKey == "" {
		log.Printf("MASTER_KEY_HEX not set, sessions will not survive restarts\n")
		return session.NewStore(), nil
	}

	persister, err := session.NewFilePersister(c.GetSessionFile(), masterKey)
	if err != nil {
		return nil, fmt.Errorf("session.NewFilePersister: %w", err)
	}
	return session.NewStore(session.WithPersister(persister)), nil
}

func listenAndServe(server *http.Server) error {
	log.Printf("Server listening on %s\n", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
