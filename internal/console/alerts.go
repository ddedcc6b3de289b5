package console

import (
	"context"

	"github.com/technosupport/cctv-console/internal/gateway"
	"github.com/technosupport/cctv-console/internal/metrics"
	"github.com/technosupport/cctv-console/internal/session"
)

// AlertActions carries the verify/reject operation shared by every alerts
// panel. Verification never mutates a local alert list: the server accepts
// the verdict and the next poll tick reflects it.
type AlertActions struct {
	GW       *gateway.Client
	Sessions *session.Store
	Notifier *Notifier
}

// Verify sends the operator's verdict for one alert. isValid is 1 (verify)
// or 0 (reject). Exactly one transient notification is queued per attempt.
func (a *AlertActions) Verify(ctx context.Context, alertID string, isValid int) error {
	verifiedBy := a.Sessions.Username(ctx)

	if err := a.GW.VerifyAlert(ctx, alertID, verifiedBy, isValid); err != nil {
		a.Notifier.Error("Error", failureDetail(err, "Unable to verify alert"))
		metrics.RecordAction("alert_verify", false)
		return err
	}

	a.Notifier.Success("Alert updated", "")
	metrics.RecordAction("alert_verify", true)
	return nil
}
