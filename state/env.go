// Package state defines shared program state.
package state

import (
	"context"
	"maps"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stylc/config"
)

type envKey struct{}

// LocalEnv keeps everything program needs in a single place.
type LocalEnv struct {
	Cfg *config.Config
	Rpt *config.Report
	Log *zap.Logger

	// RunID identifies program run in logs, reports and cache entries.
	RunID uuid.UUID

	// used by compile and watch subcommands
	Overwrite bool
	ToStdout  bool
	Defines   map[string]string

	start         time.Time
	restoreStdLog func()
}

func EnvFromContext(ctx context.Context) *LocalEnv {
	if env, ok := ctx.Value(envKey{}).(*LocalEnv); ok {
		return env
	}
	// this should never happen
	panic("localenv not found in context")
}

func ContextWithEnv(ctx context.Context) context.Context {
	return context.WithValue(ctx, envKey{}, newLocalEnv())
}

func (e *LocalEnv) Uptime() time.Duration {
	return time.Since(e.start)
}

// Variables returns interpolation variables: configured ones overridden by
// the ones defined on command line.
func (e *LocalEnv) Variables() map[string]string {
	vars := make(map[string]string)
	if e.Cfg != nil {
		maps.Copy(vars, e.Cfg.Compiler.Variables)
	}
	maps.Copy(vars, e.Defines)
	return vars
}

func (e *LocalEnv) RedirectStdLog() {
	if e.Log == nil {
		return
	}
	e.restoreStdLog = zap.RedirectStdLog(e.Log)
}

func (e *LocalEnv) RestoreStdLog() {
	if e.Log != nil {
		_ = e.Log.Sync()
	}
	if e.restoreStdLog != nil {
		e.restoreStdLog()
	}
}
