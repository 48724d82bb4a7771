package paymentsvc

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/owais185-web/LuminaLMSPush/core"
	"github.com/owais185-web/LuminaLMSPush/core/billing"
)

// SimulatedGateway stands in for a card processor: every charge takes
// some latency and a share of them is declined at random.
type SimulatedGateway struct {
	latency     time.Duration
	declineRate float64
	randFunc    func() float64
}

var _ billing.Gateway = (*SimulatedGateway)(nil)

func NewSimulatedGateway(conf core.PaymentConfig) *SimulatedGateway {
	return &SimulatedGateway{
		latency:     conf.Latency,
		declineRate: conf.DeclineRate,
		randFunc:    rand.Float64,
	}
}

// ForceSuccess returns a gateway that accepts every charge immediately.
func ForceSuccess() *SimulatedGateway {
	return &SimulatedGateway{randFunc: rand.Float64}
}

func (g *SimulatedGateway) Charge(ctx context.Context, _ billing.Charge) error {
	if err := core.Sleep(ctx, g.latency); err != nil {
		return err
	}
	if g.declineRate > 0 && g.randFunc() < g.declineRate {
		return billing.ErrCardDeclined
	}
	return nil
}
