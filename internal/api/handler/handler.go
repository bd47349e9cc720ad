package handler

import (
	"context"
	"log/slog"

	"github.com/cuongbtq/jobboard/internal/domain"
	"github.com/cuongbtq/jobboard/internal/metrics"
	"github.com/cuongbtq/jobboard/internal/storage"
	"github.com/cuongbtq/jobboard/shared/postgresql"
)

// PostingStore lists the postings search runs over
type PostingStore interface {
	ListActivePostings(ctx context.Context, filter storage.PostingFilter) ([]domain.Posting, error)
}

// TriggerPublisher publishes pass trigger messages
type TriggerPublisher interface {
	PublishWithRetry(ctx context.Context, body []byte, contentType string) error
}

// HealthChecker reports whether the database is reachable and how its pool is doing
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
	Stats() postgresql.PoolStats
}

// BrokerStatus reports the trigger publisher's connection state
type BrokerStatus interface {
	IsConnected() bool
}

// Dependencies holds all dependencies needed by handlers
type Dependencies struct {
	Logger      *slog.Logger
	Postings    PostingStore
	Publisher   TriggerPublisher
	Database    HealthChecker
	Broker      BrokerStatus
	Metrics     *metrics.Collector
	ServiceName string
	// SearchLimit caps the postings loaded per search request.
	SearchLimit int
}

const defaultSearchLimit = 500

// PostingHandler handles posting search requests
type PostingHandler struct {
	logger      *slog.Logger
	postings    PostingStore
	metrics     *metrics.Collector
	searchLimit int
}

// NewPostingHandler creates a new PostingHandler instance
func NewPostingHandler(deps *Dependencies) *PostingHandler {
	limit := deps.SearchLimit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	return &PostingHandler{
		logger:      deps.Logger,
		postings:    deps.Postings,
		metrics:     deps.Metrics,
		searchLimit: limit,
	}
}

// PassHandler handles manual pass triggers
type PassHandler struct {
	logger    *slog.Logger
	publisher TriggerPublisher
}

// NewPassHandler creates a new PassHandler instance
func NewPassHandler(deps *Dependencies) *PassHandler {
	return &PassHandler{
		logger:    deps.Logger,
		publisher: deps.Publisher,
	}
}
