package services

import (
	"context"
	"fmt"
	"log/slog"
)

// InternRefresher recomputes an intern's progress and then re-checks their
// certificate eligibility. Every mutation that can move either input calls it.
type InternRefresher struct {
	progress     *ProgressService
	certificates *CertificateService
	logger       *slog.Logger
}

// NewInternRefresher creates a new InternRefresher.
func NewInternRefresher(progress *ProgressService, certificates *CertificateService, logger *slog.Logger) *InternRefresher {
	return &InternRefresher{
		progress:     progress,
		certificates: certificates,
		logger:       logger,
	}
}

// Refresh recomputes progress then runs the issuer for one intern.
func (r *InternRefresher) Refresh(ctx context.Context, userID uint64) (int, bool, error) {
	value, err := r.progress.Recompute(ctx, userID)
	if err != nil {
		return 0, false, fmt.Errorf("failed to recompute progress: %w", err)
	}

	issued, err := r.certificates.CheckAndIssue(ctx, userID)
	if err != nil {
		return value, false, fmt.Errorf("failed to check certificate: %w", err)
	}

	return value, issued, nil
}

// RefreshAll refreshes several interns. Failures are logged and do not stop
// the remaining refreshes.
func (r *InternRefresher) RefreshAll(ctx context.Context, userIDs []uint64) {
	for _, id := range uniqueUint64(userIDs) {
		if _, _, err := r.Refresh(ctx, id); err != nil {
			r.logger.ErrorContext(ctx, "failed to refresh intern", "user_id", id, "error", err)
		}
	}
}
