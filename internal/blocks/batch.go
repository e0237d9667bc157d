package blocks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Sanitize returns a filename-safe version of a display name.
func Sanitize(name string) string {
	name = strings.ReplaceAll(name, " ", "_")
	return strings.ReplaceAll(name, "/", "_")
}

// BatchCreateDesigns renders one design per color scheme into outDir and
// returns the paths written. A nil scheme map means DefaultSchemes. Every
// scheme is validated before any file is created; after that, a failing
// scheme is logged and skipped so the remaining schemes still render.
func (d *Designer) BatchCreateDesigns(ctx context.Context, name, outDir string, schemes map[string][]string, suffix string, opts Options) ([]string, error) {
	if schemes == nil {
		schemes = DefaultSchemes
	}
	for schemeName, colors := range schemes {
		if len(colors) != 3 {
			return nil, eris.Wrapf(ErrInvalidParameter,
				"color scheme %q must have exactly 3 colors, got %d", schemeName, len(colors))
		}
	}

	log := zap.L().With(zap.String("design", name))

	var created []string
	for _, schemeName := range SchemeNames(schemes) {
		if err := ctx.Err(); err != nil {
			return created, err
		}

		filename := fmt.Sprintf("%s_%s%s.png", Sanitize(name), schemeName, suffix)
		outPath := filepath.Join(outDir, filename)

		schemeOpts := opts
		schemeOpts.Colors = schemes[schemeName]

		if err := d.CreateBlockDesign(name, outPath, schemeOpts); err != nil {
			log.Warn("scheme failed",
				zap.String("scheme", schemeName),
				zap.Error(err),
			)
			continue
		}
		created = append(created, outPath)
	}

	return created, nil
}

// ProcessMountain loads one subject's layers and renders every scheme.
func ProcessMountain(ctx context.Context, contourPath, borderPath, name, outDir string, suffix string, opts Options) ([]string, error) {
	d, err := NewDesigner(contourPath, borderPath)
	if err != nil {
		return nil, err
	}
	return d.BatchCreateDesigns(ctx, name, outDir, nil, suffix, opts)
}

// BatchProcessMountains processes every subject directory under dataDir into
// per-subject output directories under outBase, returning a map from display
// name to created paths. Subjects run on a bounded worker pool; each
// subject's failure is isolated to its own (empty) entry, so the batch never
// aborts after the up-front directory scan.
func BatchProcessMountains(ctx context.Context, dataDir, outBase string, suffix string, opts Options, concurrency int) (map[string][]string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, eris.Wrapf(err, "blocks: read data dir %s", dataDir)
	}

	var dirs []os.DirEntry
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e)
		}
	}
	if len(dirs) == 0 {
		return nil, eris.Wrapf(ErrInvalidParameter, "no subject folders found in %s", dataDir)
	}

	if concurrency < 1 {
		concurrency = 1
	}

	log := zap.L().With(zap.String("run_id", uuid.NewString()))
	log.Info("processing subjects",
		zap.Int("subjects", len(dirs)),
		zap.Int("concurrency", concurrency),
	)

	titler := cases.Title(language.AmericanEnglish)

	results := make(map[string][]string, len(dirs))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, dir := range dirs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			name := titler.String(strings.ReplaceAll(dir.Name(), "_", " "))
			slog := log.With(zap.String("subject", name))

			contourPath, borderPath := findLayerFiles(filepath.Join(dataDir, dir.Name()))
			if contourPath == "" {
				slog.Warn("no shapefile found, skipping subject")
				mu.Lock()
				results[name] = nil
				mu.Unlock()
				return nil
			}

			created, err := ProcessMountain(gctx, contourPath, borderPath, name,
				filepath.Join(outBase, dir.Name()), suffix, opts)
			if err != nil {
				if gctx.Err() != nil {
					return err
				}
				slog.Warn("subject failed", zap.Error(err))
				created = nil
			} else {
				slog.Info("subject complete", zap.Int("designs", len(created)))
			}

			mu.Lock()
			results[name] = created
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// findLayerFiles picks the contour and border shapefiles inside a subject
// directory. A filename containing "contour" wins; otherwise the first .shp
// in name order is used. The border is the first .shp containing "border".
func findLayerFiles(dir string) (contourPath, borderPath string) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", ""
	}

	var shapefiles []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".shp") {
			shapefiles = append(shapefiles, e.Name())
		}
	}
	sort.Strings(shapefiles)

	for _, name := range shapefiles {
		lower := strings.ToLower(name)
		if contourPath == "" && strings.Contains(lower, "contour") {
			contourPath = filepath.Join(dir, name)
		}
		if borderPath == "" && strings.Contains(lower, "border") {
			borderPath = filepath.Join(dir, name)
		}
	}
	if contourPath == "" && len(shapefiles) > 0 {
		contourPath = filepath.Join(dir, shapefiles[0])
	}
	return contourPath, borderPath
}
