package bot

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	tele "gopkg.in/telebot.v3"

	"dice-games-bot/internal/config"
)

// requestIDKey is the context key holding the per-update request id.
const requestIDKey = "request_id"

// privateAccess tracks users who have used the bot in a whitelisted group.
// Those users may also talk to the bot in private chat.
type privateAccess struct {
	mu    sync.RWMutex
	users map[int64]bool
}

func newPrivateAccess() *privateAccess {
	return &privateAccess{users: make(map[int64]bool)}
}

func (p *privateAccess) allow(userID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.users[userID] = true
}

func (p *privateAccess) allowed(userID int64) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.users[userID]
}

// WhitelistMiddleware drops updates from chats outside the whitelist.
// With an empty whitelist every chat is served. Private chats are served for
// users already seen in a whitelisted group.
func WhitelistMiddleware(cfg *config.Config) tele.MiddlewareFunc {
	access := newPrivateAccess()

	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			chat := c.Chat()
			sender := c.Sender()
			if chat == nil || sender == nil {
				return nil
			}

			if len(cfg.Whitelist.Chats) == 0 {
				return next(c)
			}

			if chat.Type == tele.ChatPrivate {
				if access.allowed(sender.ID) || cfg.IsChatAllowed(chat.ID) {
					return next(c)
				}
				log.Debug().
					Int64("user_id", sender.ID).
					Msg("Ignoring private chat from user not seen in a whitelisted group")
				return nil
			}

			if !cfg.IsChatAllowed(chat.ID) {
				log.Debug().
					Int64("chat_id", chat.ID).
					Msg("Ignoring update from non-whitelisted chat")
				return nil
			}

			access.allow(sender.ID)
			return next(c)
		}
	}
}

// LoggingMiddleware tags each update with a request id and logs it along
// with how long the handler took.
func LoggingMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			requestID := uuid.NewString()
			c.Set(requestIDKey, requestID)

			start := time.Now()
			err := next(c)

			logEvent := log.Debug().Str(requestIDKey, requestID)
			if sender := c.Sender(); sender != nil {
				logEvent = logEvent.
					Int64("user_id", sender.ID).
					Str("username", sender.Username)
			}
			if chat := c.Chat(); chat != nil {
				logEvent = logEvent.
					Int64("chat_id", chat.ID).
					Str("chat_type", string(chat.Type))
			}
			if cb := c.Callback(); cb != nil {
				logEvent = logEvent.Str("callback", cb.Data)
			} else {
				logEvent = logEvent.Str("text", c.Text())
			}
			logEvent.
				Dur("elapsed", time.Since(start)).
				AnErr("error", err).
				Msg("Handled update")

			return err
		}
	}
}

// RecoveryMiddleware turns a handler panic into a logged error and a
// generic failure message.
func RecoveryMiddleware() tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Interface("panic", r).
						Interface(requestIDKey, c.Get(requestIDKey)).
						Msg("Recovered from panic in handler")
					err = c.Send("Произошла ошибка :(")
				}
			}()
			return next(c)
		}
	}
}
