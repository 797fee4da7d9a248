package scanner

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
	"github.com/gabriel-vasile/mimetype"
	"github.com/lumipallolabs/dupedive/internal/hasher"
	"github.com/lumipallolabs/dupedive/internal/logging"
	"github.com/lumipallolabs/dupedive/internal/model"
)

// sniffLen is how much of each file is kept for type detection
const sniffLen = 3072

// openFile opens files for hashing; tests wrap it to observe workers
var openFile = os.Open

// Options configures a DirScanner
type Options struct {
	Workers   int
	Hasher    *hasher.Hasher
	Verify    bool // byte-compare group members before reporting
	SkipEmpty bool // ignore zero-length files
}

// DirScanner hashes the entries of a single directory without recursing.
// It is single-shot: create a new one for every scan.
type DirScanner struct {
	opts       Options
	progressCh chan Progress

	filesSeen   atomic.Int64
	filesHashed atomic.Int64
	bytesHashed atomic.Int64
	skipped     atomic.Int64
	currentPath atomic.Value
}

// NewDirScanner creates a directory scanner
func NewDirScanner(opts Options) *DirScanner {
	if opts.Workers < 1 {
		opts.Workers = 8
	}
	if opts.Hasher == nil {
		opts.Hasher, _ = hasher.New(string(hasher.Default))
	}
	return &DirScanner{
		opts:       opts,
		progressCh: make(chan Progress, 100),
	}
}

// Progress returns the progress channel
func (s *DirScanner) Progress() <-chan Progress {
	return s.progressCh
}

// Scan hashes every regular file directly inside dir using fastwalk
func (s *DirScanner) Scan(ctx context.Context, dir string) (*Result, error) {
	defer close(s.progressCh)

	root, err := openRoot(dir)
	if err != nil {
		return nil, err
	}

	// fastwalk only enumerates; a flat directory is listed on a single
	// goroutine, so hashing is fanned out to Workers goroutines
	pathCh := make(chan string, s.opts.Workers*4)
	recordCh := make(chan model.FileRecord, 1024)
	var records []model.FileRecord
	var collectWg, hashWg sync.WaitGroup

	collectWg.Add(1)
	go func() {
		defer collectWg.Done()
		for rec := range recordCh {
			records = append(records, rec)
		}
	}()

	for i := 0; i < s.opts.Workers; i++ {
		hashWg.Add(1)
		go func() {
			defer hashWg.Done()
			for path := range pathCh {
				if ctx.Err() != nil {
					continue // drain
				}
				rec, ok, err := s.hashFile(ctx, path)
				if err != nil {
					if ctx.Err() == nil {
						s.skip(path, err)
					}
					continue
				}
				if ok {
					recordCh <- rec
				}
			}
		}()
	}

	conf := &fastwalk.Config{
		Follow:     false,
		NumWorkers: s.opts.Workers,
	}

	walkErr := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if path == root {
			// err is set when the root listing itself failed
			return err
		}
		if err != nil {
			s.skip(path, err)
			return nil
		}
		if d.IsDir() {
			return fs.SkipDir
		}

		s.filesSeen.Add(1)
		if !d.Type().IsRegular() {
			s.skip(path, nil)
			return nil
		}

		select {
		case pathCh <- path:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	close(pathCh)
	hashWg.Wait()
	close(recordCh)
	collectWg.Wait()

	if ctx.Err() != nil {
		logging.Scanner.Printf("[Scanner] cancelled after %d files", len(records))
		return nil, ctx.Err()
	}
	if walkErr != nil {
		return nil, &DirectoryError{Path: root, Err: walkErr}
	}

	// Name order is the enumeration order groups inherit
	sort.Slice(records, func(i, j int) bool {
		return records[i].Name < records[j].Name
	})

	buckets := model.NewBuckets()
	var bytesRead int64
	for _, rec := range records {
		buckets.Add(rec)
		bytesRead += rec.Size
	}

	groups := model.DeriveGroups(buckets)
	if s.opts.Verify {
		groups, err = verify(ctx, groups)
		if err != nil {
			return nil, err
		}
	}
	model.SortByWasted(groups)

	result := &Result{
		Dir:       root,
		Algorithm: s.opts.Hasher.Algorithm(),
		Verified:  s.opts.Verify,
		Groups:    groups,
		FilesRead: buckets.Total(),
		Skipped:   int(s.skipped.Load()),
		BytesRead: bytesRead,
	}
	result.Unique = result.FilesRead - result.Duplicates()

	logging.Scanner.Printf("[Scanner] %s: %d files, %d distinct, %d groups, %d skipped",
		root, result.FilesRead, buckets.Len(), len(groups), result.Skipped)

	return result, nil
}

// openRoot resolves dir and checks that it is a readable directory
func openRoot(dir string) (string, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", &DirectoryError{Path: dir, Err: err}
	}

	// fastwalk does not descend into a symlinked root
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}

	f, err := os.Open(abs)
	if err != nil {
		return "", &DirectoryError{Path: abs, Err: err}
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", &DirectoryError{Path: abs, Err: err}
	}
	if !info.IsDir() {
		return "", &DirectoryError{Path: abs, Err: ErrNotDirectory}
	}
	return abs, nil
}

// hashFile reads one file and builds its record.
// ok is false when the file is deliberately ignored.
func (s *DirScanner) hashFile(ctx context.Context, path string) (rec model.FileRecord, ok bool, err error) {
	s.currentPath.Store(path)

	f, err := openFile(path)
	if err != nil {
		return rec, false, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return rec, false, err
	}
	if !info.Mode().IsRegular() {
		// Replaced by something else since it was listed
		return rec, false, &fs.PathError{Op: "read", Path: path, Err: fs.ErrInvalid}
	}
	if s.opts.SkipEmpty && info.Size() == 0 {
		return rec, false, nil
	}

	head := &headBuffer{limit: sniffLen}
	sum, n, err := s.opts.Hasher.Sum(ctx, io.TeeReader(f, head))
	if err != nil {
		return rec, false, err
	}

	var kind string
	if n > 0 {
		kind = mimetype.Detect(head.buf).String()
	}

	s.filesHashed.Add(1)
	s.bytesHashed.Add(n)
	s.report()

	return model.FileRecord{
		Path:    path,
		Name:    filepath.Base(path),
		Hash:    sum,
		Size:    n,
		ModTime: info.ModTime(),
		Kind:    kind,
		ID:      fileIdentity(f),
	}, true, nil
}

// skip counts an entry that could not be used
func (s *DirScanner) skip(path string, err error) {
	s.skipped.Add(1)
	if err != nil {
		logging.Scanner.Printf("[Scanner] skipping %s: %v", path, err)
	}
	s.report()
}

// report publishes a progress snapshot without blocking the walk
func (s *DirScanner) report() {
	current, _ := s.currentPath.Load().(string)
	p := Progress{
		FilesSeen:   s.filesSeen.Load(),
		FilesHashed: s.filesHashed.Load(),
		BytesHashed: s.bytesHashed.Load(),
		Skipped:     s.skipped.Load(),
		CurrentPath: current,
	}
	select {
	case s.progressCh <- p:
	default:
	}
}

// verify replaces each hash group with its byte-identical classes
func verify(ctx context.Context, groups []*model.DuplicateGroup) ([]*model.DuplicateGroup, error) {
	var out []*model.DuplicateGroup
	for _, g := range groups {
		classes, err := hasher.Partition(ctx, g)
		if err != nil {
			return nil, err
		}
		out = append(out, classes...)
	}
	return out, nil
}

// headBuffer keeps the first limit bytes written to it
type headBuffer struct {
	buf   []byte
	limit int
}

func (h *headBuffer) Write(p []byte) (int, error) {
	if room := h.limit - len(h.buf); room > 0 {
		if len(p) < room {
			room = len(p)
		}
		h.buf = append(h.buf, p[:room]...)
	}
	return len(p), nil
}

// Ensure DirScanner implements Scanner
var _ Scanner = (*DirScanner)(nil)
