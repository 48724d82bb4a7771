package meetingsvc

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/owais185-web/LuminaLMSPush/core"
	"github.com/owais185-web/LuminaLMSPush/core/liveclass"
)

const pwdAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// SimulatedProvider generates meeting details the way a video-conferencing API would.
type SimulatedProvider struct {
	latency time.Duration
	baseURL string

	mu  sync.Mutex
	rnd *rand.Rand
}

var _ liveclass.MeetingProvider = (*SimulatedProvider)(nil)

func NewSimulatedProvider(conf core.MeetingConfig) *SimulatedProvider {
	base := strings.TrimRight(conf.BaseURL, "/")
	if base == "" {
		base = "https://zoom.us"
	}
	return &SimulatedProvider{
		latency: conf.Latency,
		baseURL: base,
		rnd:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}
}

func (p *SimulatedProvider) CreateMeeting(ctx context.Context, _ string, _ time.Time, _ int) (liveclass.ZoomDetails, error) {
	if err := core.Sleep(ctx, p.latency); err != nil {
		return liveclass.ZoomDetails{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	id := strconv.FormatInt(1_000_000_000+p.rnd.Int64N(9_000_000_000), 10)
	pwd := make([]byte, 8)
	for i := range pwd {
		pwd[i] = pwdAlphabet[p.rnd.IntN(len(pwdAlphabet))]
	}
	return liveclass.ZoomDetails{
		MeetingID: id,
		JoinURL:   fmt.Sprintf("%s/w/%s?tk=student", p.baseURL, id),
		StartURL:  fmt.Sprintf("%s/s/%s?zpk=host", p.baseURL, id),
		Password:  string(pwd),
	}, nil
}
