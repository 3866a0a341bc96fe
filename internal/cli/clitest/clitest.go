// Package clitest runs client commands against an in-process server.
package clitest

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/tracked/internal/analyzer"
	"github.com/julianstephens/tracked/internal/api"
	"github.com/julianstephens/tracked/internal/cache"
	"github.com/julianstephens/tracked/internal/cli"
	"github.com/julianstephens/tracked/internal/config"
	"github.com/julianstephens/tracked/internal/models"
	"github.com/julianstephens/tracked/internal/server"
	"github.com/julianstephens/tracked/internal/storage/sqlite"
)

// Env is a client context wired to a live test server.
type Env struct {
	Ctx    *cli.Context
	Out    *bytes.Buffer
	Store  *sqlite.Store
	Server *server.Server
}

// Options tweak the test server.
type Options struct {
	Async    bool
	Analyzer analyzer.Analyzer
	Now      time.Time
}

// New starts a server over a fresh SQLite database and returns a context
// whose client points at it. Now defaults to 2024-03-15 09:30 UTC.
func New(t *testing.T, opts Options) *Env {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "tracked.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if opts.Now.IsZero() {
		opts.Now = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)
	}
	if opts.Analyzer == nil {
		opts.Analyzer = analyzer.NewLocal()
	}
	now := opts.Now

	srv := server.New(store, cache.NewMemory(time.Minute), opts.Analyzer, server.Options{
		Async:         opts.Async,
		GenerateRate:  1000,
		GenerateBurst: 1000,
		Location:      time.UTC,
		Now:           func() time.Time { return now },
	})
	if opts.Async {
		srv.Tasks().Start()
		t.Cleanup(func() { _ = srv.Tasks().Stop(context.Background()) })
	}
	hs := httptest.NewServer(srv.Handler())
	t.Cleanup(hs.Close)

	out := &bytes.Buffer{}
	ctx := &cli.Context{
		Config: &config.Config{ServerURL: hs.URL, Timezone: "UTC"},
		Client: api.New(hs.URL, ""),
		Out:    out,
		Now:    func() time.Time { return now },
	}
	return &Env{Ctx: ctx, Out: out, Store: store, Server: srv}
}

// AddTracker creates an active tracker directly in the store.
func (e *Env) AddTracker(t *testing.T, tr models.Tracker) models.Tracker {
	t.Helper()
	tr.IsActive = true
	created, err := e.Store.CreateTracker(context.Background(), tr)
	if err != nil {
		t.Fatalf("create tracker: %v", err)
	}
	return created
}
