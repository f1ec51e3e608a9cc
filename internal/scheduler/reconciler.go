package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/yukikurage/intern-management-api/internal/clock"
	"github.com/yukikurage/intern-management-api/internal/models"
	"github.com/yukikurage/intern-management-api/internal/repository"
	"gorm.io/datatypes"
)

// Refresher recomputes an intern's progress and re-checks certificate
// eligibility, reporting the new progress and whether a certificate was
// issued by this call.
type Refresher interface {
	Refresh(ctx context.Context, userID uint64) (int, bool, error)
}

// TickReport summarises one reconciliation pass.
type TickReport struct {
	Scanned     int
	Deactivated int
	Issued      int
	Failed      int
}

// Reconciler deactivates interns whose internship has ended and refreshes
// the progress and certificate of every active intern.
type Reconciler struct {
	users     repository.UserRepository
	refresher Refresher
	logger    *slog.Logger
}

// NewReconciler creates a new Reconciler.
func NewReconciler(users repository.UserRepository, refresher Refresher, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		users:     users,
		refresher: refresher,
		logger:    logger,
	}
}

// Tick runs one pass. An intern is expired when their end date is strictly
// before the calendar day of now. Failures for one intern are logged and
// counted; the pass always visits every intern.
func (r *Reconciler) Tick(ctx context.Context, now time.Time) TickReport {
	var report TickReport

	intern := models.RoleIntern
	interns, err := r.users.List(repository.UserFilter{Role: &intern, ActiveOnly: true})
	if err != nil {
		r.logger.ErrorContext(ctx, "reconcile: failed to list interns", "error", err)
		report.Failed++
		return report
	}

	today := clock.ToDate(now)
	for i := range interns {
		u := &interns[i]
		report.Scanned++

		deactivated, issued, err := r.reconcile(ctx, u, today)
		if deactivated {
			report.Deactivated++
		}
		if issued {
			report.Issued++
		}
		if err != nil {
			report.Failed++
			r.logger.ErrorContext(ctx, "reconcile: intern failed", "user_id", u.ID, "error", err)
		}
	}

	return report
}

func (r *Reconciler) reconcile(ctx context.Context, u *models.User, today datatypes.Date) (deactivated, issued bool, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	if u.EndDate != nil && clock.Before(*u.EndDate, today) {
		deactivated, err = r.users.Deactivate(u.ID)
		if err != nil {
			return false, false, fmt.Errorf("failed to deactivate: %w", err)
		}
		if deactivated {
			r.logger.InfoContext(ctx, "reconcile: internship ended", "user_id", u.ID, "end_date", clock.FormatDate(u.EndDate))
		}
	}

	_, issued, err = r.refresher.Refresh(ctx, u.ID)
	return deactivated, issued, err
}

// Job adapts the reconciler to a Timer job that logs each report.
func (r *Reconciler) Job() Job {
	return func(ctx context.Context, now time.Time) {
		started := time.Now()
		report := r.Tick(ctx, now)
		r.logger.InfoContext(ctx, "reconcile tick",
			"scanned", report.Scanned,
			"deactivated", report.Deactivated,
			"issued", report.Issued,
			"failed", report.Failed,
			"duration", time.Since(started),
		)
	}
}
