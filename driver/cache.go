package driver

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"time"

	"github.com/google/uuid"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"stylc/compile"
	"stylc/misc"
	"stylc/state"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS outputs (
	key     TEXT PRIMARY KEY,
	source  TEXT NOT NULL,
	run_id  TEXT NOT NULL,
	created INTEGER NOT NULL,
	output  BLOB
);
CREATE INDEX IF NOT EXISTS outputs_source ON outputs (source);
`

// Cache keeps compiled results keyed by everything that affects them, so
// unchanged sources are never compiled twice. Not safe for concurrent use.
type Cache struct {
	conn  *sqlite.Conn
	path  string
	runID uuid.UUID
	log   *zap.Logger
}

// CacheStats describes cache content.
type CacheStats struct {
	Entries int64
	Bytes   int64
	Runs    int64
}

// OpenCache opens (creating if necessary) cache database at path. Entries
// written through returned cache are marked with runID.
func OpenCache(path string, runID uuid.UUID, log *zap.Logger) (*Cache, error) {
	if log == nil {
		log = zap.NewNop()
	}
	conn, err := sqlite.OpenConn(path, sqlite.OpenReadWrite, sqlite.OpenCreate, sqlite.OpenWAL)
	if err != nil {
		return nil, fmt.Errorf("unable to open cache (%s): %w", path, err)
	}
	if err := sqlitex.ExecuteScript(conn, cacheSchema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to prepare cache (%s): %w", path, err)
	}
	return &Cache{conn: conn, path: path, runID: runID, log: log.Named("cache")}, nil
}

// Close releases database.
func (c *Cache) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// Get returns cached output for the key.
func (c *Cache) Get(key string) ([]byte, bool, error) {
	var (
		out   []byte
		found bool
	)
	err := sqlitex.Execute(c.conn, `SELECT output FROM outputs WHERE key = ?`,
		&sqlitex.ExecOptions{
			Args: []any{key},
			ResultFunc: func(stmt *sqlite.Stmt) (err error) {
				found = true
				out, err = io.ReadAll(stmt.ColumnReader(0))
				return err
			}})
	if err != nil {
		return nil, false, fmt.Errorf("unable to query cache: %w", err)
	}
	return out, found, nil
}

// Put stores output produced from the source under the key.
func (c *Cache) Put(key, source string, out []byte) error {
	err := sqlitex.Execute(c.conn,
		`INSERT OR REPLACE INTO outputs (key, source, run_id, created, output) VALUES (?, ?, ?, ?, ?)`,
		&sqlitex.ExecOptions{
			Args: []any{key, source, c.runID.String(), time.Now().Unix(), out},
		})
	if err != nil {
		return fmt.Errorf("unable to update cache: %w", err)
	}
	c.log.Debug("Stored", zap.String("source", source), zap.String("key", key), zap.Int("bytes", len(out)))
	return nil
}

// Stats returns number of entries, their total size and number of distinct
// runs which produced them.
func (c *Cache) Stats() (CacheStats, error) {
	var st CacheStats
	err := sqlitex.Execute(c.conn,
		`SELECT count(*), coalesce(sum(length(output)), 0), count(DISTINCT run_id) FROM outputs`,
		&sqlitex.ExecOptions{
			ResultFunc: func(stmt *sqlite.Stmt) error {
				st.Entries = stmt.ColumnInt64(0)
				st.Bytes = stmt.ColumnInt64(1)
				st.Runs = stmt.ColumnInt64(2)
				return nil
			}})
	if err != nil {
		return st, fmt.Errorf("unable to query cache: %w", err)
	}
	return st, nil
}

// Clear removes all entries, returns number of removed entries.
func (c *Cache) Clear() (int, error) {
	if err := sqlitex.Execute(c.conn, `DELETE FROM outputs`, nil); err != nil {
		return 0, fmt.Errorf("unable to clear cache: %w", err)
	}
	return c.conn.Changes(), nil
}

// CacheKey identifies compilation result: it covers program version, source
// name (diagnostics refer to it), every option and source content.
func CacheKey(data []byte, name string, opts compile.Options) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s\x00%s\x00%s\x00%s\x00%s\x00%T\x00",
		misc.GetVersion(), name, opts.Style, opts.Diagnostics, opts.BasePath, opts.Interpolator)
	for _, k := range slices.Sorted(maps.Keys(opts.Variables)) {
		fmt.Fprintf(h, "%s=%s\x00", k, opts.Variables[k])
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

func openConfiguredCache(ctx context.Context, name string) (*Cache, *zap.Logger, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	env := state.EnvFromContext(ctx)
	log := env.Log.Named(name)
	if len(env.Cfg.Cache.Path) == 0 {
		return nil, log, errors.New("cache location is not configured")
	}
	if _, err := os.Stat(env.Cfg.Cache.Path); err != nil {
		return nil, log, fmt.Errorf("cache is not available: %w", err)
	}
	cache, err := OpenCache(env.Cfg.Cache.Path, env.RunID, env.Log)
	return cache, log, err
}

// ShowCache reports cache content.
func ShowCache(ctx context.Context, _ *cli.Command) error {
	cache, log, err := openConfiguredCache(ctx, "cache")
	if err != nil {
		return err
	}
	defer cache.Close()

	st, err := cache.Stats()
	if err != nil {
		return err
	}
	log.Info("Cache content", zap.String("location", cache.path),
		zap.Int64("entries", st.Entries), zap.Int64("bytes", st.Bytes), zap.Int64("runs", st.Runs))
	return nil
}

// ClearCache removes all cached results.
func ClearCache(ctx context.Context, _ *cli.Command) error {
	cache, log, err := openConfiguredCache(ctx, "cache")
	if err != nil {
		return err
	}
	defer cache.Close()

	n, err := cache.Clear()
	if err != nil {
		return err
	}
	log.Info("Cache cleared", zap.String("location", cache.path), zap.Int("removed", n))
	return nil
}
