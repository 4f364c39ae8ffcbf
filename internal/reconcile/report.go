package reconcile

import (
	"io"
	"log/slog"

	"github.com/aidanlsb/roadmap/internal/board"
	"github.com/aidanlsb/roadmap/internal/roadmap"
	"github.com/aidanlsb/roadmap/internal/status"
)

// Warning codes.
const (
	WarnAmbiguousMatch = "AMBIGUOUS_MATCH"
	WarnUnknownColumn  = "UNKNOWN_COLUMN"
	WarnOrphanLocal    = "ORPHAN_LOCAL"
	WarnAlreadyMatched = "ALREADY_MATCHED"
)

// Reasons attached to item failures.
const (
	ReasonUnavailable     = "board unavailable"
	ReasonRemovedUpstream = "removed upstream; will be re-created on next push"
	ReasonAlreadyMatched  = "board item already matched by another local item"
	ReasonColumnNotSet    = "created but the column could not be set; next push will retry"
)

// Warning is a non-fatal finding surfaced to the operator.
type Warning struct {
	Code    string `json:"code"`
	Label   string `json:"label,omitempty"`
	Message string `json:"message"`
}

// ItemFailure records one item whose remote operation failed.
type ItemFailure struct {
	Label    string `json:"label"`
	Title    string `json:"title"`
	Op       string `json:"op"`
	RemoteID string `json:"remote_id,omitempty"`
	Reason   string `json:"reason"`
	Err      error  `json:"-"`
}

// Error returns the underlying error text, for display.
func (f ItemFailure) Error() string {
	if f.Err == nil {
		return f.Reason
	}
	return f.Err.Error()
}

// StatusMapper translates between local statuses and board columns.
type StatusMapper interface {
	ToRemote(roadmap.Status) string
	ToLocal(column string) (roadmap.Status, error)
}

// Options tunes a sync run. The zero value is usable.
type Options struct {
	Mapper      StatusMapper
	Concurrency int
	DryRun      bool
	Logger      *slog.Logger
}

// DefaultConcurrency bounds parallel board writes when Options leaves it 0.
const DefaultConcurrency = 4

func (o Options) mapper() StatusMapper {
	if o.Mapper == nil {
		return status.Mapper{}
	}
	return o.Mapper
}

func (o Options) concurrency() int {
	if o.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return o.Concurrency
}

func (o Options) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

func failureReason(err error) string {
	if board.IsNotFound(err) {
		return ReasonRemovedUpstream
	}
	return ReasonUnavailable
}

func ambiguityWarning(w *AmbiguousMatchWarning) Warning {
	return Warning{Code: WarnAmbiguousMatch, Label: w.Label, Message: w.Error()}
}
