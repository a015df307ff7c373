package snestile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
)

func isImage(file string) bool {
	return strings.EqualFold(filepath.Ext(file), ".png")
}

func skipDir(info os.FileInfo) bool {
	// Ignore any hidden directories and anything we wrote ourselves
	return info.Name()[0] == '.' || info.Name() == ConvertedDir
}

func (c *Converter) findImages(ctx context.Context, base string) (<-chan string, <-chan error, error) {
	out := make(chan string)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			if info.Mode().IsDir() {
				if file != base && skipDir(info) {
					return filepath.SkipDir
				}
				return nil
			}

			if info.Name()[0] == '.' || !info.Mode().IsRegular() || !isImage(file) {
				return nil
			}

			select {
			case out <- file:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (c *Converter) imageWorker(ctx context.Context, in <-chan string, out string, opts Options) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for file := range in {
			if _, err := c.ConvertFile(file, out, opts); err != nil {
				errc <- err
				return
			}
		}
	}()
	return errc, nil
}

func waitForPipeline(errs ...<-chan error) error {
	errc := mergeErrors(errs...)
	for err := range errc {
		if err != nil {
			return err
		}
	}
	return nil
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Batch converts every PNG image below path using workers concurrent
// conversions, or one per CPU if workers is less than one. Artifacts are
// written as described by OutputDir. The first error stops the batch.
func (c *Converter) Batch(path, out string, opts Options, workers int) error {
	dir, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	if err := opts.validate(); err != nil {
		return err
	}

	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	files, errc, err := c.findImages(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < workers; i++ {
		errc, err := c.imageWorker(ctx, files, out, opts)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(errcList...)
}
