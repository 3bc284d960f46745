// persistence/listener.go
package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"

	"github.com/iWeeti/bancho-autohost/logger"
	"github.com/iWeeti/bancho-autohost/models"
)

const configChannel = "lobby_config_changed"

func pqDSN(host string, port int, user, password, dbname string) string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)
}

// installNotifyTriggers makes the lobbies table emit a NOTIFY on every
// change so running lobbies pick up configuration edits without
// polling.
func installNotifyTriggers(db *sql.DB) error {
	_, err := db.Exec(`
        CREATE OR REPLACE FUNCTION notify_lobby_config() RETURNS trigger AS $$
        DECLARE
            payload JSON;
        BEGIN
            IF TG_OP = 'DELETE' THEN
                payload = json_build_object('lobby_id', OLD.lobby_id, 'deleted', true);
            ELSE
                payload = json_build_object('lobby_id', NEW.lobby_id, 'deleted', NEW.deleted_at IS NOT NULL);
            END IF;
            PERFORM pg_notify('` + configChannel + `', payload::text);
            RETURN NULL;
        END;
        $$ LANGUAGE plpgsql
    `)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
        DROP TRIGGER IF EXISTS lobbies_notify_config ON lobbies;
        CREATE TRIGGER lobbies_notify_config
            AFTER INSERT OR UPDATE OR DELETE ON lobbies
            FOR EACH ROW EXECUTE FUNCTION notify_lobby_config()
    `)
	return err
}

type configNotification struct {
	LobbyID int64 `json:"lobby_id"`
	Deleted bool  `json:"deleted"`
}

// ConfigListener fans PostgreSQL LISTEN/NOTIFY events out to per-lobby
// subscriptions.
type ConfigListener struct {
	listener *pq.Listener
	db       Database

	mu   sync.Mutex
	subs map[int64]*LobbySubscription
	done chan struct{}
}

func NewConfigListener(host string, port int, user, password, dbname string, db Database) (*ConfigListener, error) {
	dsn := pqDSN(host, port, user, password, dbname)

	listener := pq.NewListener(dsn, 10*time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Log.Errorf("config listener event %d: %v", ev, err)
		}
	})
	if err := listener.Listen(configChannel); err != nil {
		listener.Close()
		return nil, err
	}

	l := &ConfigListener{
		listener: listener,
		db:       db,
		subs:     make(map[int64]*LobbySubscription),
		done:     make(chan struct{}),
	}
	go l.run()
	return l, nil
}

func (l *ConfigListener) run() {
	for {
		select {
		case <-l.done:
			return
		case n := <-l.listener.Notify:
			if n == nil {
				// reconnect, re-fetch everything we watch
				l.refreshAll()
				continue
			}
			l.dispatch(n.Extra)
		case <-time.After(90 * time.Second):
			go l.listener.Ping()
		}
	}
}

func (l *ConfigListener) dispatch(payload string) {
	var n configNotification
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		logger.Log.Errorf("config listener: bad payload %q: %v", payload, err)
		return
	}

	l.mu.Lock()
	sub := l.subs[n.LobbyID]
	l.mu.Unlock()
	if sub == nil {
		return
	}

	if n.Deleted {
		sub.deliver(models.ConfigUpdate{Deleted: true})
		return
	}
	l.push(sub, n.LobbyID)
}

// refreshAll re-reads every subscribed lobby after the connection was
// re-established, since notifications may have been lost meanwhile.
func (l *ConfigListener) refreshAll() {
	l.mu.Lock()
	ids := make([]int64, 0, len(l.subs))
	for id := range l.subs {
		ids = append(ids, id)
	}
	l.mu.Unlock()

	for _, id := range ids {
		l.mu.Lock()
		sub := l.subs[id]
		l.mu.Unlock()
		if sub != nil {
			l.push(sub, id)
		}
	}
}

func (l *ConfigListener) push(sub *LobbySubscription, lobbyID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cfg, err := l.db.Lobby(ctx, lobbyID)
	if err == ErrRecordNotFound {
		sub.deliver(models.ConfigUpdate{Deleted: true})
		return
	}
	if err != nil {
		logger.Log.Errorf("config listener: fetch lobby %d: %v", lobbyID, err)
		return
	}
	sub.deliver(models.ConfigUpdate{Config: &cfg})
}

// Subscribe returns the update stream for one lobby. A second call for
// the same lobby replaces the first.
func (l *ConfigListener) Subscribe(lobbyID int64) *LobbySubscription {
	sub := &LobbySubscription{
		lobbyID:  lobbyID,
		listener: l,
		updates:  make(chan models.ConfigUpdate, 4),
	}
	l.mu.Lock()
	l.subs[lobbyID] = sub
	l.mu.Unlock()
	return sub
}

func (l *ConfigListener) unsubscribe(lobbyID int64) {
	l.mu.Lock()
	delete(l.subs, lobbyID)
	l.mu.Unlock()
}

func (l *ConfigListener) Close() error {
	close(l.done)
	return l.listener.Close()
}

// LobbySubscription implements lobby.Subscription.
type LobbySubscription struct {
	lobbyID  int64
	listener *ConfigListener
	updates  chan models.ConfigUpdate

	closeOnce sync.Once
}

func (s *LobbySubscription) Updates() <-chan models.ConfigUpdate {
	return s.updates
}

// deliver drops the update when the lobby's event loop is not keeping
// up; a newer snapshot will follow or be re-fetched on reconnect.
func (s *LobbySubscription) deliver(update models.ConfigUpdate) {
	select {
	case s.updates <- update:
	default:
	}
}

func (s *LobbySubscription) Close() error {
	s.closeOnce.Do(func() {
		s.listener.unsubscribe(s.lobbyID)
	})
	return nil
}
