package scanner

import (
	"context"
	"time"

	"pairdex/internal/catalog"
	"pairdex/internal/index"
	"pairdex/internal/pairing"
)

// Catalog receives run and directory summaries. *catalog.Store satisfies it.
type Catalog interface {
	BeginRun(ctx context.Context, root string) (catalog.Run, error)
	FinishRun(ctx context.Context, id string, directories, errCount int) error
	RecordDirectory(ctx context.Context, summary catalog.DirectorySummary) error
}

// Listing is the classified content of one directory.
type Listing struct {
	Path        string
	Contents    []index.ContentFile
	Previews    []pairing.PreviewFile
	Subdirs     []string
	SubdirCount int
	TotalSize   int64
	FileCount   int
	// Partial is set when the folder timeout cut the listing short.
	Partial bool
}

// Basenames returns the content basenames in listing order.
func (l Listing) Basenames() []string {
	out := make([]string, 0, len(l.Contents))
	for _, c := range l.Contents {
		out = append(out, c.Basename)
	}
	return out
}

// DirectoryOutcome is the result of processing one directory.
type DirectoryOutcome struct {
	Path     string
	Record   *index.Record
	Result   pairing.Result
	Partial  bool
	Attempts int
	Err      error
}

// Failed reports whether the directory could not be processed.
func (o DirectoryOutcome) Failed() bool {
	return o.Err != nil
}

// Summary aggregates a batch.
type Summary struct {
	RunID        string
	Root         string
	Directories  int
	Failed       int
	Partial      int
	Contents     int
	Matched      int
	Unmatched    int
	OtherImages  int
	MethodCounts map[pairing.Method]int
	Failures     []DirectoryOutcome
	Duration     time.Duration
}

func (s *Summary) add(o DirectoryOutcome) {
	if o.Failed() {
		s.Failed++
		s.Failures = append(s.Failures, o)
		return
	}
	s.Directories++
	if o.Partial {
		s.Partial++
	}
	if s.MethodCounts == nil {
		s.MethodCounts = make(map[pairing.Method]int)
	}
	for method, n := range o.Result.MethodCounts() {
		s.MethodCounts[method] += n
	}
	s.Contents += len(o.Result.Pairs)
	matched := len(o.Result.Matched())
	s.Matched += matched
	s.Unmatched += len(o.Result.Pairs) - matched
	s.OtherImages += len(o.Result.Unmatched)
}
