package service

import (
	"log/slog"

	"github.com/arko-chat/nativekit/internal/dispatch"
	"github.com/arko-chat/nativekit/internal/metrics"
)

type BaseService struct {
	name       string
	dispatcher *dispatch.Dispatcher
	metrics    *metrics.Collector
	logger     *slog.Logger
}

func NewBaseService(
	name string,
	dispatcher *dispatch.Dispatcher,
	collector *metrics.Collector,
	logger *slog.Logger,
) *BaseService {
	return &BaseService{
		name:       name,
		dispatcher: dispatcher,
		metrics:    collector,
		logger:     logger.With("service", name),
	}
}

func (s *BaseService) record(outcome metrics.Outcome) {
	s.metrics.RecordRequest(s.name, outcome)
}
