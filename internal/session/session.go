package session

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/battleship-backend/internal/engine"
)

var ErrSessionClosed = errors.New("session closed")

type Msg interface{ isSessionMsg() }

// FromClient carries a decoded command and the connection it came from.
type FromClient struct {
	Client *Client
	Cmd    engine.Command
}

// Leave reports that a connection went away.
type Leave struct{ ConnID string }

type GetState struct {
	Reply chan engine.View
}

type Shutdown struct{}

type deletionDue struct{ gen int }

func (FromClient) isSessionMsg()  {}
func (Leave) isSessionMsg()       {}
func (GetState) isSessionMsg()    {}
func (Shutdown) isSessionMsg()    {}
func (deletionDue) isSessionMsg() {}

// Directory is the slice of the process-wide registry a session keeps in
// sync with its roster. Unbinds name the match so a stale session cannot
// erase a newer binding.
type Directory interface {
	BindPlayer(playerID, matchID string)
	UnbindPlayer(playerID, matchID string)
	BindConnection(connID, matchID string)
	UnbindConnection(connID, matchID string)
	Remove(matchID string)
}

// Recorder receives the final view of every concluded match.
type Recorder interface {
	Record(ctx context.Context, result engine.View) error
}

type Options struct {
	Rules         engine.Rules
	InboxSize     int
	Recorder      Recorder
	RecordTimeout time.Duration
	Logger        *zap.Logger
	Rand          *rand.Rand
}

// Session owns one match. Its loop goroutine is the only code that touches
// the match, so every command, disconnect and timer fire is serialized.
type Session struct {
	id      string
	inbox   chan Msg
	match   *engine.Match
	clients map[string]*Client
	dir     Directory
	rec     Recorder
	recWait time.Duration
	log     *zap.Logger

	timer *time.Timer
	gen   int

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func New(parent context.Context, id string, dir Directory, opts Options) *Session {
	ctx, cancel := context.WithCancel(parent)
	if opts.Rules == (engine.Rules{}) {
		opts.Rules = engine.DefaultRules()
	}
	if opts.InboxSize <= 0 {
		opts.InboxSize = 64
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.RecordTimeout <= 0 {
		opts.RecordTimeout = 5 * time.Second
	}

	s := &Session{
		id:      id,
		inbox:   make(chan Msg, opts.InboxSize),
		match:   engine.NewMatch(id, opts.Rules, opts.Rand),
		clients: make(map[string]*Client),
		dir:     dir,
		rec:     opts.Recorder,
		recWait: opts.RecordTimeout,
		log:     opts.Logger.With(zap.String("game_id", id)),
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	// Nobody is connected yet; the first join cancels this.
	s.scheduleDeletion(opts.Rules.LobbyGrace)
	go s.loop()
	return s
}

func (s *Session) ID() string { return s.id }

// Done is closed once the loop has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// Inbox exposes the queue directly for callers that already own a deadline.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

// Send queues msg, giving up when ctx ends or the session has exited.
func (s *Session) Send(ctx context.Context, msg Msg) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	select {
	case s.inbox <- msg:
		return nil
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State asks the loop for a snapshot of the match.
func (s *Session) State(ctx context.Context) (engine.View, error) {
	reply := make(chan engine.View, 1)
	if err := s.Send(ctx, GetState{Reply: reply}); err != nil {
		return engine.View{}, err
	}
	select {
	case v := <-reply:
		return v, nil
	case <-s.done:
		return engine.View{}, ErrSessionClosed
	case <-ctx.Done():
		return engine.View{}, ctx.Err()
	}
}

func (s *Session) loop() {
	defer s.stop()
	s.log.Info("session started")

	for {
		select {
		case <-s.ctx.Done():
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case FromClient:
				if s.apply(msg.Client, msg.Cmd) {
					return
				}

			case Leave:
				if _, ok := s.clients[msg.ConnID]; !ok {
					break
				}
				if s.apply(nil, engine.Disconnect{ConnID: msg.ConnID}) {
					return
				}

			case deletionDue:
				if msg.gen != s.gen {
					break // cancelled or rescheduled since
				}
				s.timer = nil
				if s.apply(nil, engine.Expire{}) {
					return
				}

			case GetState:
				msg.Reply <- s.match.View()

			case Shutdown:
				return
			}
		}
	}
}

// apply runs cmd against the match and carries out every event it produced.
// It reports whether the match was deleted.
func (s *Session) apply(sender *Client, cmd engine.Command) bool {
	events, err := s.match.Apply(cmd)
	if err != nil {
		s.log.Debug("command rejected", zap.String("command", commandName(cmd)), zap.Error(err))
		if sender != nil {
			s.deliver(sender, engine.Event{Type: engine.EvtError, Text: err.Error()})
		}
		return false
	}

	deleted := s.dispatch(sender, events)

	// Slow clients found while dispatching are disconnected after the batch
	// so their seat sees the same order of events as everyone else.
	for !deleted {
		slow := s.slowClient()
		if slow == nil {
			break
		}
		s.log.Warn("dropping slow client", zap.String("conn_id", slow.ID))
		events, err = s.match.Apply(engine.Disconnect{ConnID: slow.ID})
		if err != nil {
			delete(s.clients, slow.ID)
			s.dir.UnbindConnection(slow.ID, s.id)
			continue
		}
		deleted = s.dispatch(nil, events)
	}
	return deleted
}

func (s *Session) slowClient() *Client {
	for _, c := range s.clients {
		select {
		case <-c.Dropped():
			return c
		default:
		}
	}
	return nil
}

func (s *Session) dispatch(sender *Client, events []engine.Event) bool {
	deleted := false
	for _, ev := range events {
		if !ev.Internal() {
			s.route(sender, ev)
			continue
		}

		switch ev.Type {
		case engine.EvtBind:
			if sender != nil {
				s.clients[ev.ConnID] = sender
			}
			s.dir.BindPlayer(ev.PlayerID, s.id)
			s.dir.BindConnection(ev.ConnID, s.id)
		case engine.EvtUnbindConn:
			delete(s.clients, ev.ConnID)
			s.dir.UnbindConnection(ev.ConnID, s.id)
		case engine.EvtUnbindPlayer:
			s.dir.UnbindPlayer(ev.PlayerID, s.id)
		case engine.EvtScheduleDeletion:
			s.scheduleDeletion(ev.After)
		case engine.EvtCancelDeletion:
			s.cancelDeletion()
		case engine.EvtConcluded:
			s.log.Info("match concluded", zap.String("winner", ev.PlayerID))
			s.record(s.match.View())
		case engine.EvtDeleted:
			s.log.Info("match deleted")
			s.dir.Remove(s.id)
			deleted = true
		}
	}
	return deleted
}

func (s *Session) route(sender *Client, ev engine.Event) {
	switch {
	case ev.Sender:
		if sender != nil {
			s.deliver(sender, ev)
		}
	case len(ev.To) > 0:
		for _, pid := range ev.To {
			if seat := s.match.Seat(pid); seat != nil && seat.Connected() {
				s.deliverTo(seat.ConnID, ev)
			}
		}
	default:
		for _, seat := range s.match.Roster {
			if seat.Connected() {
				s.deliverTo(seat.ConnID, ev)
			}
		}
	}
}

func (s *Session) deliverTo(connID string, ev engine.Event) {
	if c := s.clients[connID]; c != nil {
		s.deliver(c, ev)
	}
}

func (s *Session) deliver(c *Client, ev engine.Event) {
	if !c.Deliver(ev) {
		c.Drop()
	}
}

func (s *Session) scheduleDeletion(after time.Duration) {
	s.cancelDeletion()
	gen := s.gen
	s.timer = time.AfterFunc(after, func() {
		select {
		case s.inbox <- deletionDue{gen: gen}:
		case <-s.done:
		}
	})
	s.log.Debug("deletion scheduled", zap.Duration("after", after))
}

// cancelDeletion stops the timer and invalidates any fire already queued.
func (s *Session) cancelDeletion() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Session) record(result engine.View) {
	if s.rec == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.recWait)
		defer cancel()
		if err := s.rec.Record(ctx, result); err != nil {
			s.log.Error("record match result", zap.Error(err))
		}
	}()
}

func (s *Session) stop() {
	s.cancelDeletion()
	s.cancel()
	close(s.done)
	s.log.Info("session stopped")
}

func commandName(cmd engine.Command) string {
	switch cmd.(type) {
	case engine.Join:
		return "join"
	case engine.Disconnect:
		return "disconnect"
	case engine.Remove:
		return "remove"
	case engine.PlaceShip:
		return "placeShip"
	case engine.PlaceMine:
		return "placeMine"
	case engine.PlaceShield:
		return "placeShield"
	case engine.Ready:
		return "ready"
	case engine.Unready:
		return "unready"
	case engine.Start:
		return "start"
	case engine.Attack:
		return "attack"
	case engine.ListShips:
		return "listShips"
	case engine.ListReady:
		return "listReady"
	case engine.TurnOf:
		return "turnOf"
	case engine.Delete:
		return "delete"
	case engine.Expire:
		return "expire"
	default:
		return "unknown"
	}
}
