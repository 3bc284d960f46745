// lobby/reconcile.go
package lobby

import (
	"github.com/iWeeti/bancho-autohost/bancho"
	"github.com/iWeeti/bancho-autohost/logger"
	"github.com/iWeeti/bancho-autohost/models"
)

// reconcileConfig diffs the stored configuration against the live room
// settings and re-applies whatever drifted. When mods or freemod had to
// be forced back, any in-progress match was running under invalid
// settings, so the session aborts it defensively and rotates the host.
// Returns true when that defensive path ran.
func (m *Manager) reconcileConfig() bool {
	cfg := m.Config()

	if err := m.deps.Channel.RefreshSettings(); err != nil {
		logger.Log.Errorf("%s: refreshing settings: %v", m.logName(), err)
	}
	state := m.deps.Channel.State()

	if int(state.TeamMode) != cfg.TeamMode || int(state.WinCondition) != cfg.WinCondition || state.Size != cfg.Size {
		if err := m.deps.Channel.SetSettings(bancho.TeamMode(cfg.TeamMode), bancho.WinCondition(cfg.WinCondition), cfg.Size); err != nil {
			logger.Log.Errorf("%s: applying room settings: %v", m.logName(), err)
		}
	}

	forced := false
	if cfg.Mods != 0 && int64(state.Mods) != cfg.Mods {
		forced = true
	}
	if cfg.Freemod != state.Freemod {
		forced = true
	}
	if forced {
		if err := m.deps.Channel.SetMods(bancho.Mods(cfg.Mods), cfg.Freemod); err != nil {
			logger.Log.Errorf("%s: applying mods: %v", m.logName(), err)
		}
		m.abortInvalidMatch()
	}

	if cfg.Name != "" && state.Name != cfg.Name {
		if err := m.deps.Channel.SetName(cfg.Name); err != nil {
			logger.Log.Errorf("%s: renaming lobby: %v", m.logName(), err)
		}
	}

	present := state.Players()
	m.queue.Sync(present)

	if len(present) > 0 {
		users := make([]models.User, 0, len(present))
		for _, p := range present {
			if p.ID == 0 {
				continue
			}
			users = append(users, models.User{OsuID: p.ID, Username: p.Username})
		}
		if len(users) > 0 {
			if err := m.deps.Store.UpsertUsers(m.ctx, users); err != nil {
				logger.Log.Errorf("%s: upserting users: %v", m.logName(), err)
			}
		}
	}

	return forced
}
