package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/DoyleJ11/battleship-backend/internal/session"
)

var (
	ErrMatchNotFound = errors.New("game not found")
	ErrCodeSpace     = errors.New("could not find a free game id")
	ErrClosed        = errors.New("registry closed")
)

const maxCodeAttempts = 32

// Registry is the process-wide directory of live matches. It indexes every
// session by match id, and the players and connections bound to it.
type Registry struct {
	mu      sync.RWMutex
	matches map[string]*session.Session
	players map[string]string
	conns   map[string]string
	closed  bool

	opts    session.Options
	log     *zap.Logger
	newCode func() (string, error)

	ctx    context.Context
	cancel context.CancelFunc
}

// New builds a registry whose sessions share opts and live under parent.
func New(parent context.Context, opts session.Options) *Registry {
	ctx, cancel := context.WithCancel(parent)
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Registry{
		matches: make(map[string]*session.Session),
		players: make(map[string]string),
		conns:   make(map[string]string),
		opts:    opts,
		log:     opts.Logger,
		newCode: CodeGenerator(CodeAlphabet, CodeLength),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// CreateMatch starts a session under a fresh id, regenerating on collision.
func (r *Registry) CreateMatch() (*session.Session, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := r.newCode()
		if err != nil {
			return nil, fmt.Errorf("generate game id: %w", err)
		}

		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			return nil, ErrClosed
		}
		if _, taken := r.matches[code]; taken {
			r.mu.Unlock()
			r.log.Debug("game id collision, regenerating", zap.String("game_id", code))
			continue
		}
		s := session.New(r.ctx, code, r, r.opts)
		r.matches[code] = s
		r.mu.Unlock()
		return s, nil
	}
	return nil, ErrCodeSpace
}

func (r *Registry) Match(id string) (*session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.matches[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, id)
	}
	return s, nil
}

func (r *Registry) MatchOfPlayer(playerID string) (*session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.indexed(r.players, playerID)
}

func (r *Registry) MatchOfConnection(connID string) (*session.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.indexed(r.conns, connID)
}

// indexed resolves key through index; callers hold at least the read lock.
func (r *Registry) indexed(index map[string]string, key string) (*session.Session, error) {
	id, ok := index[key]
	if !ok {
		return nil, ErrMatchNotFound
	}
	s, ok := r.matches[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMatchNotFound, id)
	}
	return s, nil
}

func (r *Registry) BindPlayer(playerID, matchID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.players[playerID] = matchID
}

func (r *Registry) UnbindPlayer(playerID, matchID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.players[playerID] == matchID {
		delete(r.players, playerID)
	}
}

func (r *Registry) BindConnection(connID, matchID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[connID] = matchID
}

func (r *Registry) UnbindConnection(connID, matchID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conns[connID] == matchID {
		delete(r.conns, connID)
	}
}

// Remove drops a match and every index entry still pointing at it.
func (r *Registry) Remove(matchID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.matches, matchID)
	for pid, id := range r.players {
		if id == matchID {
			delete(r.players, pid)
		}
	}
	for cid, id := range r.conns {
		if id == matchID {
			delete(r.conns, cid)
		}
	}
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.matches)
}

// Shutdown stops every session and waits for their loops to exit or for
// ctx to end, whichever comes first.
func (r *Registry) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	r.closed = true
	sessions := make([]*session.Session, 0, len(r.matches))
	for _, s := range r.matches {
		sessions = append(sessions, s)
	}
	clear(r.matches)
	clear(r.players)
	clear(r.conns)
	r.mu.Unlock()

	var err error
	for _, s := range sessions {
		if sendErr := s.Send(ctx, session.Shutdown{}); sendErr != nil && !errors.Is(sendErr, session.ErrSessionClosed) {
			err = multierr.Append(err, fmt.Errorf("stop game %s: %w", s.ID(), sendErr))
		}
	}
	for _, s := range sessions {
		select {
		case <-s.Done():
		case <-ctx.Done():
			err = multierr.Append(err, fmt.Errorf("wait for game %s: %w", s.ID(), ctx.Err()))
		}
	}
	r.cancel()
	return err
}
