package tuition

import (
	"context"
	"time"

	"github.com/trezcool/schoolops/core"
)

// Provider payment statuses
const (
	PaymentPending   = "pending"
	PaymentSucceeded = "succeeded"
	PaymentFailed    = "failed"
)

type (
	// PaymentProvider is the online payment gateway.
	PaymentProvider interface {
		CreatePayment(ctx context.Context, req PaymentRequest) (PaymentSession, error)
		// PaymentStatus returns one of PaymentPending, PaymentSucceeded or PaymentFailed.
		PaymentStatus(ctx context.Context, ref string) (string, error)
	}

	PaymentRequest struct {
		OrderID     string
		Amount      int64
		Description string
	}

	// PaymentSession is where the payer is sent: a redirect URL and a QR code payload.
	PaymentSession struct {
		Ref        string `json:"payment_ref"`
		PaymentURL string `json:"payment_url"`
		QRCode     string `json:"qr_code"`
	}
)

// Poller refreshes the processing tuitions at a fixed interval.
type Poller struct {
	svc      Service
	interval time.Duration
	logger   core.Logger
}

func NewPoller(svc Service, interval time.Duration, logger core.Logger) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{svc: svc, interval: interval, logger: logger}
}

// Run polls until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := p.Poll(ctx); err != nil && ctx.Err() == nil {
				p.logger.Error("polling payments", err)
			}
		}
	}
}

// Poll refreshes every processing Tuition once and returns how many got settled.
// A failing refresh is logged and does not stop the pass.
func (p *Poller) Poll(ctx context.Context) (int, error) {
	tuitions, err := p.svc.Processing(ctx)
	if err != nil {
		return 0, err
	}

	settled := 0
	for _, t := range tuitions {
		if ctx.Err() != nil {
			return settled, ctx.Err()
		}
		t2, err := p.svc.RefreshPayment(ctx, t)
		if err != nil {
			p.logger.Warn("refreshing payment", err, map[string]interface{}{"tuition_id": t.ID, "payment_ref": t.PaymentRef})
			continue
		}
		if t2.Status != StatusProcessing {
			settled++
		}
	}
	return settled, nil
}
