// Пакет state — серверное состояние UI-сессий: множество выбранных записей,
// таблица цветов монтажёров, последняя показанная страница и признак отзыва.
// Обёртка над hashicorp/golang-lru/v2/expirable: состояние живёт не дольше
// сессии и вытесняется при превышении лимита.
package state

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/prodplan/internal/domain/model"
	"github.com/bigkaa/prodplan/internal/palette"
	"github.com/bigkaa/prodplan/internal/selection"
)

var activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "pp_ui_sessions",
	Help: "Количество отслеживаемых UI-сессий.",
})

// Session — состояние одной UI-сессии.
// Поля Selection, Palette, Page и PageRequest защищены встроенным мьютексом.
type Session struct {
	sync.Mutex

	ID       string
	Token    string
	Username string

	Selection   *selection.Set
	Palette     *palette.Assigner
	Page        *model.VideoPage
	PageRequest model.PageRequest

	revoked atomic.Bool
}

// Revoked сообщает, что токен сессии отозван.
func (s *Session) Revoked() bool {
	return s.revoked.Load()
}

// Store — хранилище состояний сессий.
type Store struct {
	sessions    *expirable.LRU[string, *Session]
	paletteSize int
}

// NewStore создаёт хранилище на maxSessions сессий с временем жизни ttl.
func NewStore(maxSessions int, ttl time.Duration, paletteSize int) *Store {
	onEvict := func(string, *Session) { activeSessions.Dec() }
	return &Store{
		sessions:    expirable.NewLRU[string, *Session](maxSessions, onEvict, ttl),
		paletteSize: paletteSize,
	}
}

// Create регистрирует новую сессию после входа.
func (st *Store) Create(id, token, username string) *Session {
	s := &Session{
		ID:        id,
		Token:     token,
		Username:  username,
		Selection: selection.New(),
		Palette:   palette.NewAssigner(st.paletteSize),
	}
	st.sessions.Add(id, s)
	activeSessions.Inc()
	return s
}

// Get возвращает состояние сессии.
func (st *Store) Get(id string) (*Session, bool) {
	return st.sessions.Get(id)
}

// Remove удаляет состояние сессии (выход).
func (st *Store) Remove(id string) {
	st.sessions.Remove(id)
}

// Revoke помечает сессию отозванной. Состояние остаётся до следующего
// запроса пользователя, который переводит его на страницу входа.
func (st *Store) Revoke(id string) {
	if s, ok := st.sessions.Peek(id); ok {
		s.revoked.Store(true)
	}
}

// Credentials возвращает токены всех неотозванных сессий.
func (st *Store) Credentials() map[string]string {
	out := make(map[string]string)
	for _, s := range st.sessions.Values() {
		if !s.Revoked() {
			out[s.ID] = s.Token
		}
	}
	return out
}

// Len возвращает число отслеживаемых сессий.
func (st *Store) Len() int {
	return st.sessions.Len()
}
