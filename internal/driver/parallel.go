package driver

import (
	"context"
	"io/fs"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"estcheck/internal/diag"
	"estcheck/internal/source"
	"estcheck/internal/trace"
)

// InputSuffix is the extension of the ESTree documents picked up from a
// directory.
const InputSuffix = ".json"

// listInputFiles возвращает отсортированный список всех *.json файлов в
// директории. node_modules и скрытые каталоги пропускаются.
func listInputFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != dir && (name == "node_modules" || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, InputSuffix) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Сортируем для детерминированного порядка
	sort.Strings(files)
	return files, nil
}

// DiagnoseDir checks every *.json file under dir with at most jobs workers
// (0 = GOMAXPROCS). Results are returned in path order. A file that cannot
// be read yields a result holding an INP diagnostic.
func DiagnoseDir(ctx context.Context, dir string, opts *DiagnoseOptions, jobs int) (*source.FileSet, []DiagnoseResult, error) {
	if err := opts.validate(); err != nil {
		return nil, nil, err
	}
	files, err := listInputFiles(dir)
	if err != nil {
		return nil, nil, err
	}

	fileSet := source.NewFileSetWithBase(dir)
	if len(files) == 0 {
		return fileSet, nil, nil
	}

	span := trace.BeginWith(trace.FromContext(ctx), trace.ScopePass, "check_dir", trace.ParentID(ctx), trace.Attrs{Path: dir})
	var checked atomic.Int64
	defer func() { span.Files(int(checked.Load()), len(files)).End("") }()
	ctx = trace.WithParent(ctx, span)

	progress := trace.ProgressFrom(ctx)
	progress.Expect(len(files))

	// FileSet не потокобезопасен: загружаем всё заранее
	loadErrors := make(map[string]error, len(files))
	for _, path := range files {
		if _, loadErr := fileSet.Load(path); loadErr != nil {
			loadErrors[path] = loadErr
		}
	}

	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	// Результаты (индексы уникальны для каждой горутины, мьютекс не нужен)
	results := make([]DiagnoseResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))

	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			defer checked.Add(1)
			if loadErr, hadError := loadErrors[path]; hadError {
				bag := diag.NewBag(opts.MaxDiagnostics)
				diag.ReportError(diag.BagReporter{Bag: bag}, diag.InpMalformed, source.Location{}, "failed to load file").
					WithNote(source.Location{}, loadErr.Error()).
					Emit()
				results[i] = DiagnoseResult{Path: path, Bag: bag}
				progress.Finish()
				return nil
			}

			fileID, _ := fileSet.GetLatest(path)
			results[i] = *diagnoseLoaded(gctx, fileSet.Get(fileID), opts)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fileSet, results, err
	}
	return fileSet, results, nil
}
