package driver

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"stylc/config"
)

// buildOutputPath returns output file name for the source. "rel" is path of
// the source relative to the root being processed (just base name for a
// single file), "dst" is destination directory. Source directory structure
// is kept under destination, source extension is replaced with configured
// output one and, if requested, base name is transliterated.
func buildOutputPath(rel, dst string, cfg *config.Config) string {
	base := cfg.Compiler.TrimInputExt(filepath.Base(rel))
	if cfg.Output.SlugNames {
		base = slug.Make(base)
	}
	return filepath.Join(dst, filepath.Dir(rel), config.CleanFileName(base)+cfg.Output.Extension)
}

// isPartial reports whether source is a partial: such files exist to be
// shared and never produce output of their own.
func isPartial(name string) bool {
	return strings.HasPrefix(filepath.Base(name), "_")
}

// writeOutput stores compiled result, existing files are replaced only when
// overwrite is requested.
func writeOutput(name string, data []byte, overwrite bool, log *zap.Logger) error {
	if _, err := os.Stat(name); err == nil {
		if !overwrite {
			return fmt.Errorf("output file already exists: %s", name)
		}
		log.Debug("Overwriting existing file", zap.String("file", name))
	} else if !os.IsNotExist(err) {
		return err
	} else if err := os.MkdirAll(filepath.Dir(name), 0755); err != nil {
		return fmt.Errorf("unable to create output directory: %w", err)
	}

	if err := os.WriteFile(name, data, 0644); err != nil {
		return fmt.Errorf("unable to write output: %w", err)
	}
	return nil
}
