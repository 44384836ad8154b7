package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/platinummonkey/poolguide/pkg/audit"
	"github.com/platinummonkey/poolguide/pkg/catalog"
	"github.com/platinummonkey/poolguide/pkg/config"
	"github.com/platinummonkey/poolguide/pkg/observability"
	"github.com/platinummonkey/poolguide/pkg/storage"
	"github.com/platinummonkey/poolguide/pkg/storage/sqlstore"
	"github.com/platinummonkey/poolguide/pkg/validation"
)

func main() {
	seedFile := flag.String("file", "", "YAML seed file (defaults to the bundled Reykjavik pools)")
	skipPools := flag.Bool("skip-pools", false, "Only apply migrations and promotions")
	promote := flag.String("promote", "", "Email of an existing user to grant admin")
	demote := flag.String("demote", "", "Email of an existing user to revoke admin from")
	flag.Parse()

	logger := observability.NewLogger(observability.ParseLogLevel(os.Getenv("POOLGUIDE_LOG_LEVEL")), os.Stdout).
		WithField("service", "poolguide-seed")

	opts := options{
		seedFile:  *seedFile,
		skipPools: *skipPools,
		promote:   *promote,
		demote:    *demote,
	}
	if err := run(context.Background(), logger, opts); err != nil {
		logger.WithError(err).Error("Seeding failed")
		os.Exit(1)
	}
}

type options struct {
	seedFile  string
	skipPools bool
	promote   string
	demote    string
}

func run(ctx context.Context, logger *observability.Logger, opts options) error {
	cfg, err := config.LoadStorageConfig()
	if err != nil {
		return err
	}

	// Open applies pending migrations
	store, err := sqlstore.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()
	logger.WithField("storage", cfg.Type).Info("Migrations applied")

	if !opts.skipPools {
		pools, err := loadPools(opts.seedFile)
		if err != nil {
			return err
		}
		added, skipped, err := seedPools(ctx, store, pools)
		if err != nil {
			return err
		}
		logger.WithFields(map[string]interface{}{
			"added":   added,
			"skipped": skipped,
		}).Info("Pools seeded")
	}

	auditCfg, err := config.LoadAuditConfig()
	if err != nil {
		return err
	}
	sink, err := audit.NewSink(auditCfg.Sink(), logger)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer sink.Close()

	if opts.promote != "" {
		if err := setAdmin(ctx, store, sink, opts.promote, true); err != nil {
			return err
		}
	}
	if opts.demote != "" {
		if err := setAdmin(ctx, store, sink, opts.demote, false); err != nil {
			return err
		}
	}

	return nil
}

func loadPools(path string) ([]catalog.SeedPool, error) {
	if path == "" {
		return catalog.DefaultSeed()
	}
	return catalog.LoadSeedFile(path)
}

// seedPools inserts every pool whose name is not already present.
// Entries are validated with the same rules as the API.
func seedPools(ctx context.Context, store storage.PoolStore, pools []catalog.SeedPool) (added, skipped int, err error) {
	v := validation.New()
	catalog.RegisterMessages(v)

	existing, err := store.ListPools(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list pools: %w", err)
	}
	names := make(map[string]bool, len(existing))
	for _, p := range existing {
		names[p.Name] = true
	}

	for i, sp := range pools {
		req := sp.Request()
		if err := v.Struct(req); err != nil {
			return added, skipped, fmt.Errorf("seed pool %d (%q): %w", i, sp.Name, err)
		}
		if names[req.Name] {
			skipped++
			continue
		}
		if err := store.CreatePool(ctx, req.Pool(), req.Facilities.Facility()); err != nil {
			return added, skipped, fmt.Errorf("failed to create pool %q: %w", req.Name, err)
		}
		names[req.Name] = true
		added++
	}
	return added, skipped, nil
}

// setAdmin changes the admin flag and records the change in the audit log
func setAdmin(ctx context.Context, store storage.UserStore, sink audit.Logger, email string, isAdmin bool) error {
	err := store.SetAdmin(ctx, email, isAdmin)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("no user registered with email %s", email)
	}
	if err != nil {
		return err
	}

	event := audit.NewEvent(audit.EventTypeAdminRevoke, audit.EventStatusSuccess)
	event.Message = "Admin rights revoked"
	if isAdmin {
		event = audit.NewEvent(audit.EventTypeAdminGrant, audit.EventStatusSuccess)
		event.Message = "User promoted to admin"
	}
	event.ResourceType = audit.ResourceTypeUser
	event.Metadata = map[string]interface{}{"email": email, "actor": "poolguide-seed"}
	return sink.Log(ctx, event)
}
