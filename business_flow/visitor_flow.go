package businessflow

import (
	"context"

	"github.com/amirphl/cereal-box/app/dto"
	"github.com/amirphl/cereal-box/app/services"
	"github.com/amirphl/cereal-box/repository"
)

// VisitorFlow records visits against the persisted counter.
// It never retries: a failed increment is reported once and the caller degrades.
type VisitorFlow interface {
	// RecordVisit returns (nil, nil) when the database is not connected
	RecordVisit(ctx context.Context) (*dto.VisitorSnapshot, error)
	DatabaseStatus() DatabaseStatus
}

type VisitorFlowImpl struct {
	gateway repository.Gateway
	metrics services.MetricsService
}

func NewVisitorFlow(gateway repository.Gateway, metrics services.MetricsService) VisitorFlow {
	return &VisitorFlowImpl{
		gateway: gateway,
		metrics: metrics,
	}
}

func (f *VisitorFlowImpl) RecordVisit(ctx context.Context) (*dto.VisitorSnapshot, error) {
	row, err := f.gateway.IncrementAndFetch(ctx)
	if err != nil {
		f.metrics.ObserveVisit(services.VisitOutcomeFailed)
		return nil, NewBusinessError(CodeVisitRecordFailed, "Failed to record visit", err)
	}
	if row == nil {
		f.metrics.ObserveVisit(services.VisitOutcomeUnavailable)
		return nil, nil
	}

	f.metrics.ObserveVisit(services.VisitOutcomeRecorded)
	snapshot := ToVisitorSnapshot(*row)
	return &snapshot, nil
}

// DatabaseStatus reports the flags cached by the gateway at startup; it does not ping
func (f *VisitorFlowImpl) DatabaseStatus() DatabaseStatus {
	return DatabaseStatus{
		Configured: f.gateway.Configured(),
		Connected:  f.gateway.Connected(),
	}
}
