// Package sqlexec runs approved SQL against the dataset store,
// enforcing a read-only, wall-clock-capped contract. It never decides
// whether SQL is safe to run — the Orchestrator only reaches this
// package after human approval — it only enforces that "safe to run"
// still means read-only.
package sqlexec

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/queryloom/queryloom/internal/datastore"
	"github.com/queryloom/queryloom/internal/stageerr"
)

// defaultTimeout is the wall-clock cap on a single execution.
const defaultTimeout = 30 * time.Second

var forbiddenRe = regexp.MustCompile(`(?i)\b(INSERT|UPDATE|DELETE|DROP|ALTER|ATTACH|PRAGMA)\b`)

// Executor runs a single approved statement and returns its rows.
type Executor struct {
	store   *datastore.Store
	timeout time.Duration
}

// New creates an Executor bound to store, using the default 30s
// wall-clock cap.
func New(store *datastore.Store) *Executor {
	return &Executor{store: store, timeout: defaultTimeout}
}

// WithTimeout returns a copy of e using a custom wall-clock cap.
func (e *Executor) WithTimeout(d time.Duration) *Executor {
	return &Executor{store: e.store, timeout: d}
}

// Run executes sqlText and returns its rows. It refuses to run a
// statement containing a write/DDL/pragma keyword even if it somehow
// reached this far: the executor is the last line of defense on the
// read-only contract.
func (e *Executor) Run(ctx context.Context, sqlText string) (*datastore.Result, error) {
	if forbiddenRe.MatchString(sqlText) {
		return nil, stageerr.New(stageerr.Exec, fmt.Sprintf("refusing to execute non-read-only statement: %s", strings.TrimSpace(sqlText)))
	}

	execCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	result, err := e.store.Query(execCtx, sqlText)
	if err != nil {
		return nil, stageerr.Wrap(stageerr.Exec, "engine rejected statement", err)
	}
	return result, nil
}
