// Package session holds the single source of truth for the current battle
// room. All writes to the persistent backend go through the Store; no other
// component touches the battleData or userCode entries.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/YM-Solutions-Official/leetcompete-client/internal/battle"
	"github.com/YM-Solutions-Official/leetcompete-client/internal/storage"
)

const (
	sessionKey = "battleData"
	codeKey    = "userCode"
)

// Store wraps a battle.Session and the per-problem per-language code drafts
// with write-through persistence. Storage failures are logged and swallowed:
// state keeps working in memory even if the backend is unavailable.
type Store struct {
	mu        sync.Mutex
	backend   storage.Backend
	log       *zap.Logger
	state     battle.Session
	code      map[string]map[string]string // problemID -> language -> source
	resetting bool
}

// New seeds the store from persisted state. A stored opponentJoined flag is
// never trusted: presence must be re-observed through a live handshake, so it
// is forced false on every load.
func New(backend storage.Backend, log *zap.Logger) *Store {
	s := &Store{
		backend: backend,
		log:     log,
		state:   battle.NewSession(),
		code:    make(map[string]map[string]string),
	}

	ctx := context.Background()
	if raw, err := backend.Load(ctx, sessionKey); err == nil {
		var loaded battle.Session
		if jerr := json.Unmarshal(raw, &loaded); jerr != nil {
			log.Error("corrupt persisted session, starting fresh", zap.Error(jerr))
		} else {
			loaded.OpponentJoined = false
			if loaded.Problems == nil {
				loaded.Problems = []battle.Problem{}
			}
			s.state = loaded
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		log.Error("loading persisted session", zap.Error(err))
	}

	if raw, err := backend.Load(ctx, codeKey); err == nil {
		var drafts map[string]map[string]string
		if jerr := json.Unmarshal(raw, &drafts); jerr != nil {
			log.Error("corrupt persisted drafts, starting fresh", zap.Error(jerr))
		} else if drafts != nil {
			s.code = drafts
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		log.Error("loading persisted drafts", zap.Error(err))
	}

	return s
}

// Snapshot returns a read-only copy of the current session.
func (s *Store) Snapshot() battle.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Update applies a mutation to the session and persists the result.
// No validation happens here; callers own the invariants.
func (s *Store) Update(mutate func(*battle.Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	mutate(&s.state)
	s.persistSession()
}

// Replace swaps the whole session in, persisting it. Used by the controller
// to write back the result of a pure transition.
func (s *Store) Replace(next battle.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = next
	s.persistSession()
}

// Reset restores defaults for both the session and the drafts and purges both
// persisted entries. The resetting flag suppresses write-through while the
// entries are being erased so the reset cannot be overwritten by a persist
// triggered off the state it just cleared.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetting = true
	defer func() { s.resetting = false }()

	s.state = battle.NewSession()
	s.code = make(map[string]map[string]string)

	ctx := context.Background()
	if err := s.backend.Delete(ctx, sessionKey); err != nil {
		s.log.Error("clearing persisted session", zap.Error(err))
	}
	if err := s.backend.Delete(ctx, codeKey); err != nil {
		s.log.Error("clearing persisted drafts", zap.Error(err))
	}
}

// ResetSession restores the session to defaults and purges its persisted
// entry, leaving code drafts alone. Room cancellation and leaving use this:
// drafts outlive a room that was never played, and only an explicit full
// reset or reset-to-template touches them.
func (s *Store) ResetSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetting = true
	defer func() { s.resetting = false }()

	s.state = battle.NewSession()
	if err := s.backend.Delete(context.Background(), sessionKey); err != nil {
		s.log.Error("clearing persisted session", zap.Error(err))
	}
}

// SaveCode upserts the draft for one (problem, language) pair, overwriting
// any prior text.
func (s *Store) SaveCode(problemID, language, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byLang, ok := s.code[problemID]
	if !ok {
		byLang = make(map[string]string)
		s.code[problemID] = byLang
	}
	byLang[language] = code
	s.persistCode()
}

// GetCode returns the stored draft, or "" when absent. Callers fall back to
// the problem's starter snippet on empty.
func (s *Store) GetCode(problemID, language string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.code[problemID][language]
}

// ClearCode removes the stored draft for one (problem, language) pair, so a
// reset-to-template cannot be resurrected by a later load.
func (s *Store) ClearCode(problemID, language string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if byLang, ok := s.code[problemID]; ok {
		delete(byLang, language)
		if len(byLang) == 0 {
			delete(s.code, problemID)
		}
	}
	s.persistCode()
}

func (s *Store) persistSession() {
	if s.resetting {
		return
	}
	raw, err := json.Marshal(s.state)
	if err != nil {
		s.log.Error("marshaling session", zap.Error(err))
		return
	}
	if err := s.backend.Save(context.Background(), sessionKey, raw); err != nil {
		s.log.Error("persisting session", zap.Error(err))
	}
}

func (s *Store) persistCode() {
	if s.resetting {
		return
	}
	raw, err := json.Marshal(s.code)
	if err != nil {
		s.log.Error("marshaling drafts", zap.Error(err))
		return
	}
	if err := s.backend.Save(context.Background(), codeKey, raw); err != nil {
		s.log.Error("persisting drafts", zap.Error(err))
	}
}
