// Package sessions owns the in-memory session collection and keeps it mirrored
// to the local cache and the remote document store.
package sessions

import (
	"context"
	"errors"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/verte-zerg/meeple/internal/model"
)

// Remote is the document store the sessions are mirrored to.
type Remote interface {
	AddSession(ctx context.Context, session model.Session) (model.Session, error)
	ListSessions(ctx context.Context) ([]model.Session, error)
	DeleteSession(ctx context.Context, id model.ID) error
	UpdateSessions(ctx context.Context, sessions []model.Session) error
}

// Cache is the local fallback copy of the session collection.
type Cache interface {
	LoadSessions(ctx context.Context) ([]model.Session, error)
	SaveSessions(ctx context.Context, sessions []model.Session) error
}

// Store holds the ordered session collection. Local state is authoritative;
// the remote is a best-effort mirror.
type Store struct {
	mu       sync.RWMutex
	sessions []model.Session

	remote Remote
	cache  Cache
	logger *log.Logger
	now    func() time.Time

	pending sync.WaitGroup
}

// New creates an empty store. Either remote or cache may be nil.
func New(remote Remote, cache Cache, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Store{
		remote: remote,
		cache:  cache,
		logger: logger,
		now:    time.Now,
	}
}

// Load replaces the collection from the remote store, falling back to the
// local cache. It only fails when ctx is done.
func (s *Store) Load(ctx context.Context) error {
	var cached []model.Session
	cacheErr := errors.New("no local cache")
	if s.cache != nil {
		cached, cacheErr = s.cache.LoadSessions(ctx)
	}

	if s.remote != nil {
		list, err := s.remote.ListSessions(ctx)
		if err == nil {
			if cacheErr == nil {
				list = append(list, s.pushLocal(ctx, cached)...)
			}
			s.replace(list)
			s.saveCache(ctx)
			s.logger.Printf("loaded %d sessions from remote", len(list))
			return nil
		}
		s.logger.Printf("warning: remote store unavailable, using local cache: %v", err)
	} else {
		s.logger.Printf("warning: remote store not configured, using local cache")
	}

	if cacheErr != nil {
		s.logger.Printf("warning: failed to load local cache: %v", cacheErr)
		s.replace(nil)
		return ctx.Err()
	}
	s.replace(cached)
	return ctx.Err()
}

// pushLocal uploads cached sessions that never reached the remote store.
func (s *Store) pushLocal(ctx context.Context, cached []model.Session) []model.Session {
	var out []model.Session
	for _, session := range cached {
		if !session.ID.IsLocal() {
			continue
		}
		stored, err := s.remote.AddSession(ctx, session)
		if err != nil {
			s.logger.Printf("warning: failed to upload session %s: %v", session.ID, err)
			out = append(out, session)
			continue
		}
		out = append(out, stored)
	}
	if len(out) > 0 {
		s.logger.Printf("uploaded %d locally recorded sessions", len(out))
	}
	return out
}

// Add validates the session, derives its totals and winner, and stores it.
// The record is kept locally even when the remote write fails.
func (s *Store) Add(ctx context.Context, in model.Session) (model.Session, error) {
	session, err := Prepare(in)
	if err != nil {
		return model.Session{}, err
	}

	s.mu.Lock()
	session.ID = s.nextLocalIDLocked()
	session.CreatedAt = s.now().UTC()
	s.sessions = append(s.sessions, session)
	s.mu.Unlock()
	s.saveCache(ctx)

	if s.remote == nil {
		return session.Clone(), nil
	}
	stored, err := s.remote.AddSession(ctx, session)
	if err != nil {
		s.logger.Printf("warning: failed to save session remotely, kept locally as %s: %v", session.ID, err)
		return session.Clone(), nil
	}

	s.mu.Lock()
	if i := s.indexLocked(session.ID); i >= 0 {
		s.sessions[i].ID = stored.ID
	}
	s.mu.Unlock()
	s.saveCache(ctx)

	session.ID = stored.ID
	return session.Clone(), nil
}

// Delete removes the session immediately. The remote deletion runs in the
// background and its failure is only logged.
func (s *Store) Delete(ctx context.Context, id model.ID) error {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return ErrSessionNotFound
	}
	s.sessions = append(s.sessions[:i:i], s.sessions[i+1:]...)
	s.mu.Unlock()
	s.saveCache(ctx)

	if s.remote == nil || id.IsLocal() {
		return nil
	}
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		if err := s.remote.DeleteSession(context.WithoutCancel(ctx), id); err != nil {
			s.logger.Printf("warning: remote delete of session %s failed: %v", id, err)
		}
	}()
	return nil
}

// Wait blocks until background remote deletions have finished.
func (s *Store) Wait() {
	s.pending.Wait()
}

// Close waits for background work.
func (s *Store) Close() error {
	s.Wait()
	return nil
}

// RenamePlayer rewrites every reference to oldName and returns how many
// sessions changed. The changed documents are pushed to the remote as one batch.
func (s *Store) RenamePlayer(ctx context.Context, oldName, newName string) (int, error) {
	oldName = strings.TrimSpace(oldName)
	newName = strings.TrimSpace(newName)
	if oldName == "" || newName == "" {
		return 0, ErrEmptyName
	}
	if oldName == newName {
		return 0, nil
	}

	s.mu.Lock()
	var changed []model.Session
	for i := range s.sessions {
		if renameIn(&s.sessions[i], oldName, newName) {
			changed = append(changed, s.sessions[i].Clone())
		}
	}
	s.mu.Unlock()
	if len(changed) == 0 {
		return 0, nil
	}
	s.saveCache(ctx)

	if s.remote != nil {
		mirrored := changed[:0:0]
		for _, session := range changed {
			if !session.ID.IsLocal() {
				mirrored = append(mirrored, session)
			}
		}
		if err := s.remote.UpdateSessions(ctx, mirrored); err != nil {
			s.logger.Printf("warning: failed to update %d sessions remotely: %v", len(mirrored), err)
		}
	}
	s.logger.Printf("renamed %q to %q in %d sessions", oldName, newName, len(changed))
	return len(changed), nil
}

func renameIn(session *model.Session, oldName, newName string) bool {
	changed := false
	for i, p := range session.Players {
		if p == oldName {
			session.Players[i] = newName
			changed = true
		}
	}
	if session.Winner == oldName {
		session.Winner = newName
		changed = true
	}
	if rounds, ok := session.Scores[oldName]; ok {
		delete(session.Scores, oldName)
		session.Scores[newName] = rounds
		changed = true
	}
	if total, ok := session.TotalScores[oldName]; ok {
		delete(session.TotalScores, oldName)
		session.TotalScores[newName] = total
		changed = true
	}
	for t := range session.Teams {
		for i, p := range session.Teams[t].Players {
			if p == oldName {
				session.Teams[t].Players[i] = newName
				changed = true
			}
		}
	}
	return changed
}

// Get returns a copy of the session with the given id.
func (s *Store) Get(id model.ID) (model.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.sessions[i].Clone(), true
	}
	return model.Session{}, false
}

// All returns a copy of every session in store order.
func (s *Store) All() []model.Session {
	return s.filter(func(model.Session) bool { return true })
}

// ByGame returns the sessions of a game, matched case-insensitively.
func (s *Store) ByGame(name string) []model.Session {
	return s.filter(func(session model.Session) bool {
		return model.SameName(session.Game, name)
	})
}

// ByPlayer returns the sessions the player took part in.
func (s *Store) ByPlayer(name string) []model.Session {
	return s.filter(func(session model.Session) bool {
		return hasPlayer(session, name)
	})
}

// Len returns the number of sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) filter(keep func(model.Session) bool) []model.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		if keep(session) {
			out = append(out, session.Clone())
		}
	}
	return out
}

func (s *Store) replace(list []model.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make([]model.Session, 0, len(list))
	for _, session := range list {
		s.sessions = append(s.sessions, session.Clone())
	}
}

func (s *Store) saveCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	snapshot := s.All()
	if err := s.cache.SaveSessions(ctx, snapshot); err != nil {
		s.logger.Printf("warning: failed to save local cache: %v", err)
	}
}

func (s *Store) indexLocked(id model.ID) int {
	for i, session := range s.sessions {
		if session.ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) nextLocalIDLocked() model.ID {
	highest := 0
	for _, session := range s.sessions {
		if n, ok := session.ID.LocalNumber(); ok && n > highest {
			highest = n
		}
	}
	return model.LocalID(highest + 1)
}

func hasPlayer(session model.Session, name string) bool {
	for _, p := range session.Players {
		if model.SameName(p, name) {
			return true
		}
	}
	return false
}
