package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"

	"github.com/comanda-pos/api/internal/config"
	"github.com/comanda-pos/api/internal/enum"
	"github.com/comanda-pos/api/internal/menu"
	"github.com/comanda-pos/api/internal/metrics"
	"github.com/comanda-pos/api/internal/mirror"
	"github.com/comanda-pos/api/internal/router"
	"github.com/comanda-pos/api/internal/state"
	"github.com/comanda-pos/api/internal/store"
	"github.com/comanda-pos/api/internal/user"
	"github.com/comanda-pos/api/internal/ws"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

func run() error {
	cfg := config.Load()

	db, err := store.Open(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	var sinks []store.Sink
	if cfg.RemoteAPIURL != "" {
		remote := mirror.New(cfg.RemoteAPIURL)
		if !remote.Healthy() {
			log.Printf("WARN: remote API %s not reachable, mirroring will retry on flush", cfg.RemoteAPIURL)
		}
		sinks = append(sinks, remote)
	}
	outbox := store.NewOutbox(db, cfg.FlushDebounce, sinks...)

	reg := metrics.NewRegistry()
	outbox.OnFlush(func(failed bool) {
		if failed {
			reg.OutboxFailed.Inc()
		} else {
			reg.OutboxFlushed.Inc()
		}
	})

	extraPrice, err := decimal.NewFromString(cfg.MenuExtraPrice)
	if err != nil {
		return fmt.Errorf("invalid MENU_EXTRA_PRICE %q: %w", cfg.MenuExtraPrice, err)
	}

	container := state.NewContainer(
		state.WithJournal(outbox),
		state.WithExtraPrice(extraPrice),
	)
	catalog := menu.NewCatalog(outbox, enum.SectionMenuItems, enum.SectionDrinkOptions)
	users := user.NewStore(outbox, enum.SectionUsers)

	if err := restore(db, container, catalog, users); err != nil {
		return fmt.Errorf("restore state: %w", err)
	}
	registerSections(outbox, container, catalog, users)

	hub := ws.NewHub()
	go hub.Run()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cleanup := state.NewCleanupLoop(container, cfg.CleanupPoll, nil)
	settings, err := restoreSettings(db)
	if err != nil {
		return fmt.Errorf("restore settings: %w", err)
	}
	cleanup.Restore(settings.LastCleanupDate)
	outbox.Register(enum.SectionAppSettings, func() ([]byte, error) {
		return json.Marshal(appSettings{LastCleanupDate: cleanup.LastDate()})
	})
	cleanup.OnCleanup(func() {
		reg.CleanupRuns.Inc()
		outbox.MarkDirty(enum.SectionAppSettings)
	})
	go cleanup.Run(ctx)

	srv := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: router.New(router.Deps{
			Config:    cfg,
			Container: container,
			Catalog:   catalog,
			Users:     users,
			Outbox:    outbox,
			Hub:       hub,
			Metrics:   reg,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("server listening on :%s", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Println("shutting down")
	case err := <-errCh:
		return fmt.Errorf("listen: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("ERROR: server shutdown: %v", err)
	}

	// Final flush so the debounce window cannot swallow the last mutations.
	outbox.Stop()
	if err := outbox.Flush(); err != nil {
		log.Printf("ERROR: final flush: %v", err)
	}
	return nil
}

// appSettings is the app_settings section blob. The cleanup date lives
// here so a restart across midnight still triggers the daily wipe.
type appSettings struct {
	LastCleanupDate string `json:"last_cleanup_date"`
}

func restoreSettings(db *store.PebbleStore) (appSettings, error) {
	var settings appSettings
	data, err := db.Get(enum.SectionAppSettings)
	if err != nil {
		return settings, err
	}
	if len(data) == 0 {
		return settings, nil
	}
	if err := json.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("load %s: %w", enum.SectionAppSettings, err)
	}
	return settings, nil
}

// restore loads every persisted section into the in-memory owners. A key
// that has never been written restores to empty.
func restore(db *store.PebbleStore, container *state.Container, catalog *menu.Catalog, users *user.Store) error {
	for _, section := range state.Sections() {
		data, err := db.Get(section)
		if err != nil {
			return err
		}
		if err := container.LoadSection(section, data); err != nil {
			return err
		}
	}

	itemData, err := db.Get(enum.SectionMenuItems)
	if err != nil {
		return err
	}
	var items []menu.Item
	if len(itemData) > 0 {
		if err := json.Unmarshal(itemData, &items); err != nil {
			return fmt.Errorf("load %s: %w", enum.SectionMenuItems, err)
		}
	}

	drinkData, err := db.Get(enum.SectionDrinkOptions)
	if err != nil {
		return err
	}
	var drinks []string
	if len(drinkData) > 0 {
		if err := json.Unmarshal(drinkData, &drinks); err != nil {
			return fmt.Errorf("load %s: %w", enum.SectionDrinkOptions, err)
		}
	}
	catalog.Load(items, drinks)

	userData, err := db.Get(enum.SectionUsers)
	if err != nil {
		return err
	}
	if err := users.Load(userData); err != nil {
		return fmt.Errorf("load %s: %w", enum.SectionUsers, err)
	}
	return nil
}

// registerSections attaches each section's render function to the outbox.
func registerSections(outbox *store.Outbox, container *state.Container, catalog *menu.Catalog, users *user.Store) {
	for _, section := range state.Sections() {
		section := section
		outbox.Register(section, func() ([]byte, error) {
			return container.Section(section)
		})
	}
	outbox.Register(enum.SectionMenuItems, func() ([]byte, error) {
		items, _ := catalog.Snapshot()
		return json.Marshal(items)
	})
	outbox.Register(enum.SectionDrinkOptions, func() ([]byte, error) {
		_, drinks := catalog.Snapshot()
		return json.Marshal(drinks)
	})
	outbox.Register(enum.SectionUsers, users.Snapshot)
}
