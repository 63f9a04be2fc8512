// Package netmon watches the link to the camera and bounces the right
// network interface when the neighbour table says the camera is gone.
package netmon

import (
	"context"
	"log/slog"
	"net"
	"sync/atomic"
	"time"

	"github.com/ayoisaiah/lapse/internal/config"
	"github.com/ayoisaiah/lapse/supervisor"
)

// Neighbor is one entry from the kernel neighbour (ARP) table.
type Neighbor struct {
	IP     string
	Device string
	// State is the NUD state: REACHABLE, STALE, FAILED, INCOMPLETE, ...
	State string
}

// Failed reports whether the entry marks the host as unreachable.
func (n Neighbor) Failed() bool {
	return n.State == "FAILED" || n.State == "INCOMPLETE"
}

// NeighborProber reads the neighbour table.
type NeighborProber interface {
	Neighbors(ctx context.Context) ([]Neighbor, error)
}

// LinkController brings network interfaces up and down.
type LinkController interface {
	SetLink(ctx context.Context, iface string, up bool) error
}

// SafetyCheck asks whether a disruptive recovery may run right now.
type SafetyCheck func() supervisor.Safety

// Monitor periodically checks camera reachability and recovers the
// interface carrying the camera link when it fails.
type Monitor struct {
	cfg      config.NetworkConfig
	cameraIP string
	iface    string
	prober   NeighborProber
	link     LinkController
	safe     SafetyCheck
	onResult func(recovered bool, err error)
	log      *slog.Logger

	// recovering guards against overlapping recoveries: a check that
	// fires while one is in flight is skipped, never queued.
	recovering atomic.Bool
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithResultCallback registers a function invoked after every recovery
// attempt.
func WithResultCallback(fn func(recovered bool, err error)) Option {
	return func(m *Monitor) {
		m.onResult = fn
	}
}

// WithProber replaces the neighbour table reader.
func WithProber(p NeighborProber) Option {
	return func(m *Monitor) {
		m.prober = p
	}
}

// WithLinkController replaces the interface controller.
func WithLinkController(l LinkController) Option {
	return func(m *Monitor) {
		m.link = l
	}
}

// New returns a monitor for the camera at cameraIP. The interface to
// recover is chosen from the camera address: an address inside the
// access point subnet means the camera joined our AP, anything else
// means we joined the camera's network on the client interface.
func New(
	cfg config.NetworkConfig,
	cameraIP string,
	safe SafetyCheck,
	logger *slog.Logger,
	opts ...Option,
) (*Monitor, error) {
	iface, err := chooseInterface(cfg, cameraIP)
	if err != nil {
		return nil, err
	}

	m := &Monitor{
		cfg:      cfg,
		cameraIP: cameraIP,
		iface:    iface,
		prober:   &ipCommand{},
		link:     &ipCommand{},
		safe:     safe,
		log:      logger,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m, nil
}

func chooseInterface(cfg config.NetworkConfig, cameraIP string) (string, error) {
	ip := net.ParseIP(cameraIP)
	if ip == nil {
		return "", errBadCameraIP.Fmt(cameraIP)
	}

	_, subnet, err := net.ParseCIDR(cfg.APSubnet)
	if err != nil {
		return "", err
	}

	if subnet.Contains(ip) {
		return cfg.APInterface, nil
	}

	return cfg.ClientInterface, nil
}

// Run checks camera reachability until ctx is cancelled. The first
// check waits out the initial delay so a freshly booted system can
// settle before being judged.
func (m *Monitor) Run(ctx context.Context) {
	m.log.Info("network monitor started",
		slog.String("camera_ip", m.cameraIP),
		slog.String("interface", m.iface),
		slog.Duration("check_interval", m.cfg.CheckInterval),
	)

	select {
	case <-ctx.Done():
		return
	case <-time.After(m.cfg.InitialDelay):
	}

	m.check(ctx)

	ticker := time.NewTicker(m.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.check(ctx)
		}
	}
}

// check inspects the neighbour table for the camera address and starts
// a recovery when the kernel marks it unreachable. A missing entry is
// not a failure: the kernel simply has not probed the host recently.
func (m *Monitor) check(ctx context.Context) {
	neighbors, err := m.prober.Neighbors(ctx)
	if err != nil {
		m.log.Warn("unable to read neighbour table", slog.Any("error", err))
		return
	}

	for _, n := range neighbors {
		if n.IP != m.cameraIP {
			continue
		}

		if n.Failed() {
			m.log.Warn("camera link is down",
				slog.String("camera_ip", m.cameraIP),
				slog.String("nud_state", n.State),
			)

			m.recover(ctx)
		}

		return
	}
}

// recover bounces the interface carrying the camera link: down, settle,
// up, settle. At most one recovery runs at a time; overlapping triggers
// are skipped. A live capture session also blocks recovery, because
// bouncing the link would fail its shots.
func (m *Monitor) recover(ctx context.Context) {
	if !m.recovering.CompareAndSwap(false, true) {
		m.log.Info("recovery already in flight, skipping")
		return
	}
	defer m.recovering.Store(false)

	if safety := m.safe(); !safety.Safe {
		m.log.Info("skipping network recovery",
			slog.String("reason", safety.Reason),
		)

		return
	}

	m.log.Info("recovering network interface", slog.String("interface", m.iface))

	err := m.bounceInterface(ctx)
	if err != nil {
		err = ErrRecoveryFailed.Fmt(m.iface, err)
	}

	if m.onResult != nil {
		m.onResult(err == nil, err)
	}

	if err != nil {
		m.log.Error("network recovery failed",
			slog.String("interface", m.iface),
			slog.Any("error", err),
		)

		return
	}

	m.log.Info("network recovery complete", slog.String("interface", m.iface))
}

func (m *Monitor) bounceInterface(ctx context.Context) error {
	err := m.link.SetLink(ctx, m.iface, false)
	if err != nil {
		return err
	}

	if !m.settle(ctx) {
		return ctx.Err()
	}

	err = m.link.SetLink(ctx, m.iface, true)
	if err != nil {
		return err
	}

	if !m.settle(ctx) {
		return ctx.Err()
	}

	return nil
}

func (m *Monitor) settle(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(m.cfg.SettleDelay):
		return true
	}
}
