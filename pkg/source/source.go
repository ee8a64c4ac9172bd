// Package source fetches the connections feed and the central host summary
// from files, HTTP endpoints or S3 objects, and turns them into typed records.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dd0wney/cluso-eyeball/pkg/logging"
	"github.com/dd0wney/cluso-eyeball/pkg/metrics"
	"github.com/dd0wney/cluso-eyeball/pkg/records"
)

// ErrNotFound is returned when the document does not exist.
var ErrNotFound = errors.New("source: document not found")

// MaxDocumentBytes bounds the size of one fetched document.
const MaxDocumentBytes = 64 << 20

// Fetcher retrieves one raw JSON document.
type Fetcher interface {
	Fetch(ctx context.Context) (io.ReadCloser, error)
	// Kind names the backend for logs and metrics: file, http or s3.
	Kind() string
	String() string
}

// RecordSource yields the current connection records. A nil slice means
// the feed had no record collection at all.
type RecordSource interface {
	Records(ctx context.Context) ([]records.ConnectionRecord, error)
}

// SummarySource yields the central host summary.
type SummarySource interface {
	Summary(ctx context.Context) (records.HostSummary, error)
}

// Records reads connection records through a Fetcher. Rows that fail
// validation are logged and skipped.
type Records struct {
	fetcher Fetcher
	logger  logging.Logger
	metrics *metrics.Registry
}

// NewRecords wraps a fetcher as a RecordSource.
func NewRecords(f Fetcher, logger logging.Logger, m *metrics.Registry) *Records {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Records{fetcher: f, logger: logger, metrics: m}
}

// Records fetches and decodes the connections document.
func (s *Records) Records(ctx context.Context) ([]records.ConnectionRecord, error) {
	start := time.Now()
	recs, rejected, err := s.load(ctx)
	s.observe(start, err, len(rejected))
	if err != nil {
		return nil, err
	}

	for _, rerr := range rejected {
		s.logger.Warn("skipping invalid row",
			logging.Source(s.fetcher.String()),
			logging.Error(rerr),
		)
	}
	s.logger.Debug("records fetched",
		logging.Source(s.fetcher.String()),
		logging.Count(len(recs)),
		logging.Int("rejected", len(rejected)),
		logging.Latency(time.Since(start)),
	)
	return recs, nil
}

func (s *Records) load(ctx context.Context) ([]records.ConnectionRecord, []error, error) {
	body, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, nil, err
	}
	defer body.Close()

	doc, err := records.DecodeSample(io.LimitReader(body, MaxDocumentBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", s.fetcher, err)
	}
	recs, rejected := records.FromRows(doc.ColumnData)
	return recs, rejected, nil
}

func (s *Records) observe(start time.Time, err error, rejected int) {
	if s.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.RecordSourceFetch(s.fetcher.Kind(), status, time.Since(start), rejected)
}

// Summary reads the central host summary through a Fetcher.
type Summary struct {
	fetcher Fetcher
	logger  logging.Logger
	metrics *metrics.Registry
}

// NewSummary wraps a fetcher as a SummarySource.
func NewSummary(f Fetcher, logger logging.Logger, m *metrics.Registry) *Summary {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Summary{fetcher: f, logger: logger, metrics: m}
}

// Summary fetches and decodes the request document.
func (s *Summary) Summary(ctx context.Context) (records.HostSummary, error) {
	start := time.Now()
	summary, err := s.load(ctx)
	if s.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		s.metrics.RecordSourceFetch(s.fetcher.Kind(), status, time.Since(start), 0)
	}
	return summary, err
}

func (s *Summary) load(ctx context.Context) (records.HostSummary, error) {
	body, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return records.HostSummary{}, err
	}
	defer body.Close()

	doc, err := records.DecodeRequest(io.LimitReader(body, MaxDocumentBytes))
	if err != nil {
		return records.HostSummary{}, fmt.Errorf("%s: %w", s.fetcher, err)
	}
	return doc.Summary(), nil
}

// StaticSummary is a SummarySource that always returns the same summary.
type StaticSummary records.HostSummary

// Summary returns the fixed summary.
func (s StaticSummary) Summary(context.Context) (records.HostSummary, error) {
	return records.HostSummary(s), nil
}

// StaticRecords is a RecordSource over an in-memory slice.
type StaticRecords []records.ConnectionRecord

// Records returns a copy of the slice, preserving nil.
func (s StaticRecords) Records(context.Context) ([]records.ConnectionRecord, error) {
	if s == nil {
		return nil, nil
	}
	out := make([]records.ConnectionRecord, len(s))
	copy(out, s)
	return out, nil
}
