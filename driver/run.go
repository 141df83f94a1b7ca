// Package driver implements program commands: compiling stylesheet sources
// kept in files, directories and zip archives, watching sources for changes
// and maintaining compile cache.
package driver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/maruel/natural"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"stylc/archive"
	"stylc/common"
	"stylc/compile"
	"stylc/config"
	"stylc/source"
	"stylc/state"
	"stylc/tree"
)

// job is a single invocation of compile or watch command.
type job struct {
	env      *state.LocalEnv
	log      *zap.Logger
	compiler *compile.Compiler
	cache    *Cache
	stdout   io.Writer

	src, dst string

	// filled when source is located: root is directory relative names are
	// computed from, file is set for single file source, arc for archive.
	root, file, arc string

	compiled, cached int
	debounce         time.Duration
}

// Flags returns command line flags understood by compile and watch.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "style", Aliases: []string{"s"},
			Usage: "output `STYLE` (supported styles: " + strings.Join(common.StyleNames(), ", ") + "), overrides configuration"},
		&cli.StringFlag{Name: "diagnostics",
			Usage: "source position `KIND` attached to rules (supported: " + strings.Join(common.DiagnosticsNames(), ", ") + "), overrides configuration"},
		&cli.StringSliceFlag{Name: "define", Aliases: []string{"D"}, Usage: "define interpolation variable as `NAME=VALUE`, may be repeated"},
		&cli.BoolFlag{Name: "overwrite", Aliases: []string{"ow"}, Usage: "continue even if destination exists, overwrite files"},
		&cli.BoolFlag{Name: "stdout", Usage: "write results to STDOUT instead of files"},
	}
}

// Run compiles sources according to command line.
func Run(ctx context.Context, cmd *cli.Command) error {
	j, err := prepare(ctx, cmd, "compile")
	if err != nil {
		return err
	}
	defer j.close()

	j.log.Info("Processing starting", zap.String("source", j.src), zap.String("destination", j.dst),
		zap.Stringer("style", j.compiler.Options().Style))
	defer func(start time.Time) {
		j.log.Info("Processing completed", zap.Duration("elapsed", time.Since(start)),
			zap.Int("compiled", j.compiled), zap.Int("cached", j.cached))
	}(time.Now())

	return j.process(ctx)
}

func prepare(ctx context.Context, cmd *cli.Command, name string) (_ *job, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	env := state.EnvFromContext(ctx)
	log := env.Log.Named(name)

	src := cmd.Args().Get(0)
	if len(src) == 0 {
		return nil, errors.New("no input source has been specified")
	}
	if src, err = filepath.Abs(src); err != nil {
		return nil, err
	}

	dst := cmd.Args().Get(1)
	if len(dst) > 0 {
		if dst, err = filepath.Abs(dst); err != nil {
			return nil, err
		}
	}
	if cmd.Args().Len() > 2 {
		log.Warn("Malformed command line, too many destinations", zap.Strings("ignoring", cmd.Args().Slice()[2:]))
	}

	if err := applyFlags(env, cmd, log); err != nil {
		return nil, err
	}
	return newJob(env, src, dst, log)
}

// applyFlags superimposes command line on top of configuration.
func applyFlags(env *state.LocalEnv, cmd *cli.Command, log *zap.Logger) error {
	if name := cmd.String("style"); len(name) > 0 {
		style, err := common.ParseStyle(name)
		if err != nil {
			log.Warn("Unknown output style requested, using configured one", zap.String("style", name), zap.Error(err))
		} else {
			env.Cfg.Compiler.Style = style
		}
	}
	if name := cmd.String("diagnostics"); len(name) > 0 {
		diag, err := common.ParseDiagnostics(name)
		if err != nil {
			log.Warn("Unknown diagnostics requested, using configured one", zap.String("diagnostics", name), zap.Error(err))
		} else {
			env.Cfg.Compiler.Diagnostics = diag
		}
	}
	for _, def := range cmd.StringSlice("define") {
		name, value, ok := strings.Cut(def, "=")
		if !ok || len(strings.TrimSpace(name)) == 0 {
			return fmt.Errorf("malformed variable definition %q, expected NAME=VALUE", def)
		}
		env.Defines[strings.TrimSpace(name)] = value
	}
	env.Overwrite, env.ToStdout = cmd.Bool("overwrite"), cmd.Bool("stdout")
	return nil
}

func newJob(env *state.LocalEnv, src, dst string, log *zap.Logger) (*job, error) {
	opts := compile.Options{
		Style:        env.Cfg.Compiler.Style,
		Diagnostics:  env.Cfg.Compiler.Diagnostics,
		BasePath:     env.Cfg.Compiler.BasePath,
		Variables:    env.Variables(),
		Interpolator: source.NewTemplateInterpolator(env.Log),
	}
	j := &job{
		env:      env,
		log:      log,
		compiler: compile.New(opts, env.Log),
		stdout:   os.Stdout,
		src:      src,
		dst:      dst,
		debounce: 100 * time.Millisecond,
	}
	if env.Cfg.Cache.Enable {
		cache, err := OpenCache(env.Cfg.Cache.Path, env.RunID, env.Log)
		if err != nil {
			return nil, err
		}
		j.cache = cache
	}
	return j, nil
}

func (j *job) close() {
	if err := j.cache.Close(); err != nil {
		j.log.Warn("Unable to close cache", zap.Error(err))
	}
}

// locate finds out what source is: directory, archive (possibly with path
// inside it) or a single stylesheet.
func (j *job) locate() error {
	src := j.src

	var head, tail string
	for head = src; len(head) != 0; head, tail = filepath.Split(head) {
		head = strings.TrimSuffix(head, string(filepath.Separator))

		fi, err := os.Stat(head)
		if err != nil {
			// does not exists - probably path in archive
			continue
		}

		if fi.Mode().IsDir() {
			if len(tail) != 0 {
				// directory cannot have tail - it would be simple file
				return fmt.Errorf("input source was not found (%s) => (%s)", head, strings.TrimPrefix(src, head))
			}
			j.root = head
			break
		}

		if !fi.Mode().IsRegular() {
			return fmt.Errorf("unexpected path mode for (%s) => (%s)", head, strings.TrimPrefix(src, head))
		}

		isArchive, err := archive.IsArchive(head)
		if err != nil {
			return fmt.Errorf("unable to check archive type: %w", err)
		}
		if isArchive {
			j.root, j.arc = filepath.Dir(head), head
			break
		}

		if len(tail) != 0 || !j.env.Cfg.Compiler.HasInputExt(head) {
			return fmt.Errorf("input was not recognized as stylesheet source (%s)", head)
		}
		j.root, j.file = filepath.Dir(head), head
		break
	}
	if len(head) == 0 {
		return fmt.Errorf("input source was not found (%s)", src)
	}

	if len(j.dst) == 0 {
		j.dst = j.root
	}
	if len(j.env.Cfg.Compiler.BasePath) == 0 {
		j.compiler = j.compiler.WithBasePath(j.root)
	}
	return nil
}

// process compiles everything source refers to. Failure of a single
// stylesheet does not stop processing, all failures are returned together.
func (j *job) process(ctx context.Context) error {
	if err := j.locate(); err != nil {
		return err
	}

	var err error
	switch {
	case len(j.arc) > 0:
		prefix := filepath.ToSlash(strings.TrimPrefix(strings.TrimPrefix(j.src, j.arc), string(filepath.Separator)))
		err = j.processArchive(ctx, j.arc, prefix)
	case len(j.file) > 0:
		err = j.compileFile(ctx, j.file, filepath.Base(j.file))
	default:
		err = j.processDir(ctx, j.root)
	}
	if errs := multierr.Errors(err); len(errs) > 1 {
		return fmt.Errorf("%d stylesheets failed: %w", len(errs), err)
	}
	return err
}

// isSource reports whether file should be compiled when found during
// directory or archive walk.
func (j *job) isSource(name string) bool {
	return j.env.Cfg.Compiler.HasInputExt(name) && !isPartial(name) && !config.IsHidden(name)
}

// sources returns stylesheets under dir in natural order. Hidden directories
// are not entered, symbolic links are not followed.
func (j *job) sources(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			j.log.Warn("Skipping path", zap.String("path", path), zap.Error(err))
			return nil
		}
		if d.IsDir() {
			if path != dir && config.IsHidden(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !j.isSource(path) {
			j.log.Debug("Skipping file, not a stylesheet", zap.String("file", path))
			return nil
		}
		files = append(files, path)
		return nil
	})
	sort.Sort(natural.StringSlice(files))
	return files, err
}

func (j *job) processDir(ctx context.Context, dir string) error {
	files, err := j.sources(dir)
	if err != nil {
		return fmt.Errorf("unable to process directory: %w", err)
	}
	if len(files) == 0 {
		j.log.Debug("Nothing to process", zap.String("dir", dir))
		return nil
	}

	for _, file := range files {
		if er := ctx.Err(); er != nil {
			return multierr.Append(err, er)
		}
		rel, er := filepath.Rel(j.root, file)
		if er != nil {
			rel = filepath.Base(file)
		}
		err = multierr.Append(err, j.compileFile(ctx, file, rel))
	}
	return err
}

func (j *job) processArchive(ctx context.Context, arc, prefix string) (err error) {
	count := 0
	walkErr := archive.Walk(arc, prefix, func(name string) bool { return j.isSource(path.Base(name)) },
		func(arc, name string, r io.Reader) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			count++

			display := filepath.Join(arc, filepath.FromSlash(name))
			data, er := io.ReadAll(r)
			if er != nil {
				er = fmt.Errorf("unable to read %s: %w", display, er)
				j.log.Error("Unable to process file in archive", zap.String("archive", arc), zap.String("file", name), zap.Error(er))
				err = multierr.Append(err, er)
				return nil
			}
			if j.env.Rpt != nil {
				j.env.Rpt.StoreData("sources/"+name, data)
			}
			err = multierr.Append(err, j.compileUnit(ctx, data, display, filepath.FromSlash(name)))
			return nil
		})
	if walkErr != nil {
		return multierr.Append(err, fmt.Errorf("unable to process archive: %w", walkErr))
	}
	if count == 0 {
		j.log.Debug("Nothing to process", zap.String("archive", arc), zap.String("path", prefix))
	}
	return err
}

// compileFile compiles stylesheet at path. "rel" is path relative to the
// root being processed.
func (j *job) compileFile(ctx context.Context, path, rel string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		err = fmt.Errorf("unable to read source: %w", err)
		j.log.Error("Unable to process file", zap.String("file", path), zap.Error(err))
		return err
	}
	if j.env.Rpt != nil {
		if err := j.env.Rpt.StoreCopy("sources/"+filepath.ToSlash(rel), path); err != nil {
			j.log.Warn("Unable to store source in report", zap.String("file", path), zap.Error(err))
		}
	}
	return j.compileUnit(ctx, data, path, rel)
}

// compileUnit compiles single stylesheet and writes result. "name" is used in
// diagnostics and errors, "rel" determines output location.
// compilerFor returns compiler which saves intermediate trees into debug
// report when one is requested.
func (j *job) compilerFor(rel string) *compile.Compiler {
	if j.env.Rpt == nil {
		return j.compiler
	}
	base := "trees/" + filepath.ToSlash(rel)
	return j.compiler.WithTrace(func(stage string, nodes []tree.Node) {
		j.env.Rpt.StoreData(base+"."+stage+".txt", []byte(tree.Dump(nodes)))
	})
}

func (j *job) compileUnit(ctx context.Context, data []byte, name, rel string) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}

	var (
		outputName string
		hit        bool
	)
	defer func(start time.Time) {
		if err != nil {
			j.log.Error("Unable to compile", zap.String("from", name), zap.Error(err))
			return
		}
		j.log.Info("Compilation completed", zap.String("from", name), zap.String("to", outputName),
			zap.Bool("cached", hit), zap.Duration("elapsed", time.Since(start)))
	}(time.Now())

	key := CacheKey(data, name, j.compiler.Options())

	var out []byte
	if out, hit = j.lookup(key); hit {
		j.cached++
	} else {
		if out, err = j.compilerFor(rel).Compile(data, name); err != nil {
			return err
		}
		j.compiled++
		j.store(key, name, out)
	}

	if j.env.ToStdout {
		outputName = "STDOUT"
		if _, err := j.stdout.Write(out); err != nil {
			return fmt.Errorf("unable to write output: %w", err)
		}
		return nil
	}

	outputName = buildOutputPath(rel, j.dst, j.env.Cfg)
	if err := writeOutput(outputName, out, j.env.Overwrite, j.log); err != nil {
		return err
	}
	if j.env.Rpt != nil {
		if r, er := filepath.Rel(j.dst, outputName); er == nil {
			j.env.Rpt.StoreData("outputs/"+filepath.ToSlash(r), bytes.Clone(out))
		}
	}
	return nil
}

func (j *job) lookup(key string) ([]byte, bool) {
	if j.cache == nil {
		return nil, false
	}
	out, ok, err := j.cache.Get(key)
	if err != nil {
		j.log.Warn("Cache is not available", zap.Error(err))
		return nil, false
	}
	return out, ok
}

func (j *job) store(key, name string, out []byte) {
	if j.cache == nil {
		return
	}
	if err := j.cache.Put(key, name, out); err != nil {
		j.log.Warn("Unable to cache result", zap.String("source", name), zap.Error(err))
	}
}
