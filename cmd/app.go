package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/topiq/internal/account"
	"github.com/abhisek/topiq/internal/auth"
	"github.com/abhisek/topiq/internal/cache"
	"github.com/abhisek/topiq/internal/engine"
	"github.com/abhisek/topiq/internal/remote"
)

// app bundles the wired-up services a command needs. Everything is
// constructed here and injected; no package-level client handles.
type app struct {
	remote  *remote.SQLiteRemote
	cache   cache.ProfileCache
	engine  *engine.Engine
	account *account.Service
	auth    auth.Provider
	log     *zap.Logger
}

// openApp assembles the stores, engine and account service from flags
// and environment.
func openApp(cmd *cobra.Command) (*app, error) {
	log := zap.NewNop()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		var err error
		log, err = zap.NewDevelopment()
		if err != nil {
			return nil, fmt.Errorf("init logger: %w", err)
		}
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	r, err := remote.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open backend store: %w", err)
	}

	dataDir, err := resolveDataDir(cmd)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	kv, err := cache.NewFileKV(dataDir)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("open local cache: %w", err)
	}
	profileCache := cache.NewProfileCache(kv)

	authProvider, err := auth.NewSQLiteProvider(r.DB(), kv)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("init auth: %w", err)
	}

	return &app{
		remote:  r,
		cache:   profileCache,
		engine:  engine.New(profileCache, r, engine.WithLogger(log)),
		account: account.NewService(authProvider, r, profileCache, log),
		auth:    authProvider,
		log:     log,
	}, nil
}

// close drains background refreshes before releasing the store.
func (a *app) close() {
	a.engine.Wait()
	a.remote.Close()
	_ = a.log.Sync()
}

// resolveDBPath returns the backend database path using the --db flag
// (highest priority), then TOPIQ_DB, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, remote.EnsureDir(p)
	}
	return remote.DefaultDBPath()
}

// resolveDataDir returns the local cache directory using the --data-dir
// flag, then TOPIQ_DATA_DIR, then the default XDG path.
func resolveDataDir(cmd *cobra.Command) (string, error) {
	if d, _ := cmd.Flags().GetString("data-dir"); d != "" {
		return d, nil
	}
	return cache.DefaultDataDir()
}

// requireSession returns the signed-in user or an instructive error.
func (a *app) requireSession(cmd *cobra.Command) (*auth.Session, error) {
	session, err := a.auth.CurrentSession(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("read session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("not signed in (run 'topiq login' or 'topiq signup')")
	}
	return session, nil
}
