package task

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tpodg/wakenrun/internal/config"
	"github.com/tpodg/wakenrun/internal/server"
	"github.com/tpodg/wakenrun/internal/wol"
)

const StageWake = "wake"

// WakeStage sends the wake signal and waits for the host to come up.
type WakeStage struct {
	cfg      config.WakeConfig
	sender   wol.Sender
	pinger   ReachabilityChecker
	sessions SessionChecker
	now      clock
	logger   *slog.Logger
}

func NewWakeStage(cfg config.WakeConfig, sender wol.Sender, pinger ReachabilityChecker, sessions SessionChecker, logger *slog.Logger) *WakeStage {
	return &WakeStage{
		cfg:      cfg,
		sender:   sender,
		pinger:   pinger,
		sessions: sessions,
		now:      time.Now,
		logger:   logger,
	}
}

func (w *WakeStage) Name() string { return StageWake }

func (w *WakeStage) NeedsExecution(context.Context, server.Server) (bool, error) {
	return w.cfg.Enabled, nil
}

// Execute broadcasts one magic packet, then runs the requested validations.
// Ping and session validation share a single deadline started after the send.
func (w *WakeStage) Execute(ctx context.Context, s server.Server) error {
	mac, err := wol.ParseMAC(w.cfg.MAC)
	if err != nil {
		return &config.Error{Field: "wakeup_instructions.mac", Err: err}
	}

	w.logger.Info("Sending wake signal", "mac", mac.String(), "broadcast", w.cfg.Broadcast)
	if err := w.sender.Wake(ctx, mac); err != nil {
		return fmt.Errorf("failed to send wake signal: %w", err)
	}

	d := w.now.deadline(w.cfg.BootTimeout())
	if w.cfg.ValidatePing {
		if err := w.pinger.WaitUntilReachable(ctx, s.Address(), d); err != nil {
			return err
		}
	}
	if w.cfg.ValidateSSHConnection {
		if err := w.sessions.WaitUntilReady(ctx, s, d); err != nil {
			return err
		}
	}
	return nil
}
