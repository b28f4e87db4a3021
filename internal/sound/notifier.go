package sound

import (
	"context"
	"sync/atomic"

	"github.com/ahmedmed7t/smartcookly/internal/domain"
	"github.com/ahmedmed7t/smartcookly/internal/logger"
)

// Compile-time interface check.
var _ domain.Notifier = (*ChimeNotifier)(nil)

// pcmPlayer is what ChimeNotifier needs from a Player.
type pcmPlayer interface {
	PlayPCM(pcm []byte) error
}

// ChimeNotifier rings a chime for urgent messages and ignores normal
// ones. Pair it with a text notifier. Playback runs in the background; a
// chime requested while one is still playing is dropped.
type ChimeNotifier struct {
	player  pcmPlayer
	chime   []byte
	playing atomic.Bool
	log     *logger.Logger
}

// NewChimeNotifier creates a notifier that rings player.
func NewChimeNotifier(player pcmPlayer, log *logger.Logger) *ChimeNotifier {
	return &ChimeNotifier{
		player: player,
		chime:  Render(DefaultChime, 0.6),
		log:    log,
	}
}

// Notify does nothing; only urgent messages make a sound.
func (n *ChimeNotifier) Notify(ctx context.Context, message string) error {
	return nil
}

// NotifyUrgent starts the chime and returns without waiting for it.
func (n *ChimeNotifier) NotifyUrgent(ctx context.Context, message string) error {
	if !n.playing.CompareAndSwap(false, true) {
		n.log.Debug("chime already playing, skipping")
		return nil
	}
	go func() {
		defer n.playing.Store(false)
		if err := n.player.PlayPCM(n.chime); err != nil {
			n.log.Warn("chime playback failed: %v", err)
		}
	}()
	return nil
}
