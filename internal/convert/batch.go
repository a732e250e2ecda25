package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"sha1link/internal/errs"
	"sha1link/internal/progress"
	"sha1link/internal/walker"
)

// Job converts one input to the other representation.
type Job struct {
	Input  string
	Output string
	Format walker.Format // format of Input
}

type JobResult struct {
	Job   Job
	Stats Stats
	Err   error
}

// Plan discovers inputs under dir and maps each to an output under outDir
// with the same relative path and the opposite extension.
func Plan(dir, outDir string, skip []string) ([]Job, []error, error) {
	found, err := walker.Walk(dir, skip)
	if err != nil {
		return nil, nil, err
	}

	jobs := make([]Job, 0, len(found.Files))
	for _, f := range found.Files {
		ext := ".json"
		if f.Format == walker.Tree {
			ext = ".txt"
		}
		rel := strings.TrimSuffix(f.Rel, filepath.Ext(f.Rel)) + ext
		jobs = append(jobs, Job{
			Input:  f.Path,
			Output: filepath.Join(outDir, rel),
			Format: f.Format,
		})
	}
	return jobs, found.Errors, nil
}

// Batch runs jobs on up to workers goroutines. A failing job does not stop
// the others; results keep the order of jobs. Cancelling ctx skips jobs
// that have not started yet.
func Batch(ctx context.Context, jobs []Job, workers int, bar *progress.Bar, opts Options) []JobResult {
	if workers <= 0 {
		workers = 1
	}
	opts = opts.withDefaults()

	results := make([]JobResult, len(jobs))
	seen := make(map[string]bool, len(jobs))
	for i, job := range jobs {
		results[i].Job = job
		if seen[job.Output] {
			results[i].Err = &errs.IOError{Op: "create", Path: job.Output, Err: errs.ErrOutputExists}
			continue
		}
		seen[job.Output] = true
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range results {
		if results[i].Err != nil {
			bar.Done(results[i].Job.Input, results[i].Err)
			continue
		}
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			bar.Done(results[i].Job.Input, err)
			continue
		}

		g.Go(func() error {
			job := results[i].Job
			bar.Start(job.Input)
			stats, err := runJob(job, opts)
			results[i].Stats = stats
			results[i].Err = err
			bar.Done(job.Input, err)
			if err != nil {
				opts.Log.WithField("input", job.Input).WithError(err).Error("conversion failed")
			}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func runJob(job Job, opts Options) (Stats, error) {
	if err := os.MkdirAll(filepath.Dir(job.Output), 0755); err != nil {
		return Stats{}, errs.Wrap("mkdir", filepath.Dir(job.Output), err)
	}

	switch job.Format {
	case walker.Lines:
		return LinesToTree(job.Input, job.Output, opts)
	case walker.Tree:
		return TreeToLines(job.Input, job.Output, opts)
	default:
		return Stats{}, fmt.Errorf("%s: unsupported input format %v", job.Input, job.Format)
	}
}
