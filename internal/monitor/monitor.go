package monitor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/satwatch/lnbits-tracker/internal/config"
	"github.com/satwatch/lnbits-tracker/internal/lnbits"
	"github.com/satwatch/lnbits-tracker/internal/notifier"
	"github.com/satwatch/lnbits-tracker/internal/snapshot"
	"github.com/satwatch/lnbits-tracker/internal/storage"
)

// authAlertCooldown rate-limits the fatal-auth chat alert so a broken
// key does not alarm the operator on every tick.
const authAlertCooldown = 6 * time.Hour

// WalletClient is the read-only provider surface the engine needs
type WalletClient interface {
	GetWalletBalance(ctx context.Context) (int64, error)
	ListPayments(ctx context.Context, limit int) ([]lnbits.Payment, error)
}

// Status is a point-in-time view of the engine state for the dashboard
type Status struct {
	BalanceSats    int64    `json:"balance_sats"`
	LastChange     string   `json:"last_change"`
	RecentPayments []string `json:"recent_payments"`
}

// Monitor is the poll-and-diff engine: it owns the in-memory wallet
// state, diffs provider responses against the last persisted snapshot
// and drives the notifier. All mutable state lives here, guarded by a
// single mutex, with the snapshot store as the only persistence
// boundary.
type Monitor struct {
	cfg     *config.Config
	wallet  WalletClient
	snap    *snapshot.Store
	storage *storage.Storage
	notify  *notifier.Notifier
	log     *slog.Logger

	mu            sync.Mutex
	seeded        bool
	persistedBal  int64 // sats, last value written (or pending write) to the snapshot
	memBal        int64 // sats, last observed value, may drift below threshold
	processed     map[string]struct{}
	saveDirty     bool
	lastChange    string
	recentHashes  []string
	lastAuthAlert time.Time
}

// New creates a Monitor seeded from the snapshot store
func New(cfg *config.Config, wallet WalletClient, snap *snapshot.Store, store *storage.Storage, notify *notifier.Notifier, log *slog.Logger) (*Monitor, error) {
	balance, found, processed, err := snap.Load()
	if err != nil {
		return nil, err
	}

	m := &Monitor{
		cfg:          cfg,
		wallet:       wallet,
		snap:         snap,
		storage:      store,
		notify:       notify,
		log:          log,
		seeded:       found,
		persistedBal: balance,
		memBal:       balance,
		processed:    processed,
	}

	log.Info("monitor state loaded",
		"balance_sats", balance,
		"first_run", !found,
		"processed_payments", len(processed),
	)

	return m, nil
}

// Run starts one loop per enabled timer and blocks until ctx is
// cancelled. A period of 0 disables that timer entirely. Each handler
// runs synchronously inside its loop, so a slow tick delays the next
// fire of the same timer instead of overlapping it.
func (m *Monitor) Run(ctx context.Context) {
	var wg sync.WaitGroup
	m.startLoop(ctx, &wg, "balance", m.cfg.BalanceCheckInterval, m.BalanceTick)
	m.startLoop(ctx, &wg, "payments", m.cfg.PaymentsFetchInterval, m.PaymentsTick)
	m.startLoop(ctx, &wg, "summary", m.cfg.DailySummaryInterval, m.DailyTick)
	wg.Wait()
}

func (m *Monitor) startLoop(ctx context.Context, wg *sync.WaitGroup, name string, interval time.Duration, tick func(context.Context)) {
	if interval <= 0 {
		m.log.Info("timer disabled", "timer", name)
		return
	}

	wg.Add(1)
	go func() {
		defer wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		m.log.Info("timer started", "timer", name, "interval", interval)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tick(ctx)
			}
		}
	}()
}

// BalanceTick fetches the balance and notifies when the delta against
// the last persisted value reaches the threshold. Sub-threshold
// changes only move the in-memory value, so drift accumulates until a
// single tick's delta crosses the threshold.
func (m *Monitor) BalanceTick(ctx context.Context) {
	msat, err := m.wallet.GetWalletBalance(ctx)
	if err != nil {
		m.walletError(ctx, "balance check", err)
		return
	}
	sats := lnbits.MsatToSats(msat)

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.seeded {
		m.seeded = true
		m.persistedBal = sats
		m.memBal = sats
		m.saveDirty = true
		m.lastChange = "Initial balance set."
		m.flush()
		m.log.Info("initial balance set", "balance_sats", sats)
		return
	}

	delta := sats - m.persistedBal
	abs := delta
	if abs < 0 {
		abs = -abs
	}

	if abs < m.cfg.BalanceThresholdSats {
		m.memBal = sats
		m.flush()
		m.log.Debug("balance change below threshold",
			"delta_sats", delta,
			"threshold_sats", m.cfg.BalanceThresholdSats,
		)
		return
	}

	m.notify.BalanceChanged(ctx, m.persistedBal, delta, sats)

	direction := "increased"
	if delta < 0 {
		direction = "decreased"
	}
	m.lastChange = "Balance " + direction + " by " + notifier.FormatSats(abs) + "."

	m.persistedBal = sats
	m.memBal = sats
	m.saveDirty = true
	m.flush()

	m.log.Info("balance change notified",
		"previous_sats", sats-delta,
		"delta_sats", delta,
		"current_sats", sats,
	)
}

// PaymentsTick fetches recent payments and notifies once per settled
// payment hash, in provider order. The processed set is persisted once
// per tick to bound write amplification.
func (m *Monitor) PaymentsTick(ctx context.Context) {
	payments, err := m.wallet.ListPayments(ctx, m.cfg.TransactionsCount)
	if err != nil {
		m.walletError(ctx, "payments fetch", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range payments {
		if p.PaymentHash == "" || p.Pending {
			continue
		}
		if _, seen := m.processed[p.PaymentHash]; seen {
			continue
		}

		m.notify.NewPayment(ctx, p)
		m.processed[p.PaymentHash] = struct{}{}
		m.saveDirty = true

		m.recentHashes = append(m.recentHashes, p.PaymentHash)
		if len(m.recentHashes) > m.cfg.TransactionsCount {
			m.recentHashes = m.recentHashes[len(m.recentHashes)-m.cfg.TransactionsCount:]
		}

		m.recordDonation(p)
	}

	m.flush()
}

// DailyTick sends one summary over the fetched window regardless of
// the balance threshold.
func (m *Monitor) DailyTick(ctx context.Context) {
	msat, err := m.wallet.GetWalletBalance(ctx)
	if err != nil {
		m.walletError(ctx, "daily summary", err)
		return
	}
	balance := lnbits.MsatToSats(msat)

	payments, err := m.wallet.ListPayments(ctx, m.cfg.TransactionsCount)
	if err != nil {
		m.walletError(ctx, "daily summary", err)
		return
	}

	var incomingTotal, outgoingTotal int64
	var incomingCount, outgoingCount int
	for _, p := range payments {
		if p.Pending {
			continue
		}
		sats := lnbits.MsatToSats(p.Amount)
		switch {
		case sats > 0:
			incomingTotal += sats
			incomingCount++
		case sats < 0:
			outgoingTotal += -sats
			outgoingCount++
		}
	}

	m.notify.DailySummary(ctx, balance, incomingTotal, outgoingTotal, incomingCount, outgoingCount)

	m.mu.Lock()
	m.memBal = balance
	m.lastChange = "Daily balance report."
	m.mu.Unlock()
}

// Status returns the current engine state for the dashboard
func (m *Monitor) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	recent := make([]string, len(m.recentHashes))
	copy(recent, m.recentHashes)

	return Status{
		BalanceSats:    m.memBal,
		LastChange:     m.lastChange,
		RecentPayments: recent,
	}
}

// recordDonation stores payments that came in through the configured
// pay link. Callers hold m.mu.
func (m *Monitor) recordDonation(p lnbits.Payment) {
	if m.cfg.PayLinkID == "" || p.Extra == nil || p.Extra.Link != m.cfg.PayLinkID {
		return
	}

	amount := lnbits.MsatToSats(p.Extra.Extra)
	if amount <= 0 {
		amount = lnbits.MsatToSats(p.Amount)
	}
	if amount < 0 {
		amount = -amount
	}

	memo := p.Extra.Comment
	if memo == "" {
		memo = p.Memo
	}

	isNew, err := m.storage.AddDonation(p.PaymentHash, memo, amount)
	if err != nil {
		m.log.Error("record donation", "error", err, "payment_hash", p.PaymentHash)
		return
	}
	if isNew {
		m.log.Info("donation recorded", "amount_sats", amount, "payment_hash", p.PaymentHash)
	}
}

// flush persists the snapshot when it has pending changes. A failed
// write keeps the in-memory state and is retried on the next tick;
// persistence failure never crashes the scheduler. Callers hold m.mu.
func (m *Monitor) flush() {
	if !m.saveDirty {
		return
	}

	if err := m.snap.Save(m.persistedBal, m.processed); err != nil {
		m.log.Error("persist snapshot", "error", err)
		return
	}

	m.saveDirty = false
}

// walletError classifies a provider failure: auth errors raise a
// rate-limited operator alert, everything else is logged and the tick
// is skipped until the next fire.
func (m *Monitor) walletError(ctx context.Context, op string, err error) {
	if errors.Is(err, lnbits.ErrUnauthorized) {
		m.log.Error("provider rejected API key", "op", op, "error", err)

		m.mu.Lock()
		alert := time.Since(m.lastAuthAlert) >= authAlertCooldown
		if alert {
			m.lastAuthAlert = time.Now()
		}
		m.mu.Unlock()

		if alert {
			m.notify.AuthAlert(ctx)
		}
		return
	}

	m.log.Warn("tick skipped", "op", op, "error", err)
}
