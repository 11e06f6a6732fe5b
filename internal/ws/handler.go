package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/battleship-backend/internal/engine"
	"github.com/DoyleJ11/battleship-backend/internal/protocol"
	"github.com/DoyleJ11/battleship-backend/internal/registry"
	"github.com/DoyleJ11/battleship-backend/internal/session"
)

var ErrAlreadyInGame = errors.New("already in another game")

type Options struct {
	OutboxSize     int
	WriteTimeout   time.Duration
	SendTimeout    time.Duration
	OriginPatterns []string
	Logger         *zap.Logger
}

func (o *Options) defaults() {
	if o.OutboxSize <= 0 {
		o.OutboxSize = 64
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 3 * time.Second
	}
	if o.SendTimeout <= 0 {
		o.SendTimeout = 2 * time.Second
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
}

// Handler upgrades the request and serves one client until it goes away.
func Handler(reg *registry.Registry, opts Options) http.HandlerFunc {
	opts.defaults()
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: opts.OriginPatterns,
		})
		if err != nil {
			opts.Logger.Debug("websocket accept", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		c := &connection{
			conn:   conn,
			client: session.NewClient(uuid.NewString(), opts.OutboxSize),
			reg:    reg,
			opts:   opts,
			joined: make(map[string]*session.Session),
		}
		c.log = opts.Logger.With(zap.String("conn_id", c.client.ID))
		c.serve(r.Context())
	}
}

type connection struct {
	conn   *websocket.Conn
	client *session.Client
	reg    *registry.Registry
	opts   Options
	log    *zap.Logger

	// joined holds every session this connection sent a join to, so the
	// disconnect still reaches a session that has not processed it yet.
	joined map[string]*session.Session
}

func (c *connection) serve(parent context.Context) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()
	defer c.leave()

	c.log.Debug("client connected")
	go c.writeLoop(ctx, cancel)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				c.log.Debug("client closed")
			default:
				c.log.Debug("read failed", zap.Error(err))
			}
			return
		}

		msg, err := protocol.Decode(data)
		if err != nil {
			continue // undecodable frames are dropped without a reply
		}
		req, err := msg.Request(c.client.ID)
		if err != nil {
			c.reply(err)
			continue
		}
		if err := c.route(ctx, req); err != nil {
			c.reply(err)
		}
	}
}

func (c *connection) route(ctx context.Context, req protocol.Request) error {
	var (
		s   *session.Session
		err error
	)
	switch req.Route {
	case protocol.RouteCreate:
		s, err = c.reg.CreateMatch()
		if err != nil {
			return err
		}
		c.log.Info("game created", zap.String("game_id", s.ID()))
		c.client.Deliver(engine.Event{Type: engine.EvtGameCreated, GameID: s.ID()})
		return nil

	case protocol.RouteGame:
		s, err = c.reg.Match(req.GameID)
		if err != nil {
			return err
		}
		if _, joining := req.Cmd.(engine.Join); joining {
			if err := c.checkFree(s.ID(), req.PlayerID); err != nil {
				return err
			}
			c.joined[s.ID()] = s
		}

	case protocol.RoutePlayer:
		s, err = c.reg.MatchOfPlayer(req.PlayerID)
		if err != nil {
			return fmt.Errorf("%w: %s", engine.ErrPlayerNotFound, req.PlayerID)
		}
	}

	sendCtx, cancel := context.WithTimeout(ctx, c.opts.SendTimeout)
	defer cancel()
	if err := s.Send(sendCtx, session.FromClient{Client: c.client, Cmd: req.Cmd}); err != nil {
		if errors.Is(err, session.ErrSessionClosed) {
			return fmt.Errorf("%w: %s", registry.ErrMatchNotFound, s.ID())
		}
		return err
	}
	return nil
}

// checkFree rejects joining a second game from the same connection or with
// a player id that is already seated elsewhere.
func (c *connection) checkFree(gameID, playerID string) error {
	if s, err := c.reg.MatchOfConnection(c.client.ID); err == nil && s.ID() != gameID {
		return fmt.Errorf("%w: %s", ErrAlreadyInGame, s.ID())
	}
	if s, err := c.reg.MatchOfPlayer(playerID); err == nil && s.ID() != gameID {
		return fmt.Errorf("%w: %s", ErrAlreadyInGame, s.ID())
	}
	return nil
}

func (c *connection) reply(err error) {
	if !c.client.Deliver(engine.Event{Type: engine.EvtError, Text: err.Error()}) {
		c.client.Drop()
	}
}

func (c *connection) writeLoop(ctx context.Context, cancel context.CancelFunc) {
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return

		case <-c.client.Dropped():
			c.log.Warn("client outbox overflowed")
			c.conn.Close(websocket.StatusPolicyViolation, "too slow")
			return

		case ev := <-c.client.Outbox():
			msg, ok := protocol.Encode(ev)
			if !ok {
				continue
			}
			writeCtx, writeCancel := context.WithTimeout(ctx, c.opts.WriteTimeout)
			err := wsjson.Write(writeCtx, c.conn, msg)
			writeCancel()
			if err != nil {
				c.log.Debug("write failed", zap.Error(err))
				return
			}
		}
	}
}

// leave reports the lost connection to every match it joined. Sessions the
// connection is no longer bound to ignore it.
func (c *connection) leave() {
	if s, err := c.reg.MatchOfConnection(c.client.ID); err == nil {
		c.joined[s.ID()] = s
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.opts.SendTimeout)
	defer cancel()
	for id, s := range c.joined {
		err := s.Send(ctx, session.Leave{ConnID: c.client.ID})
		if err != nil && !errors.Is(err, session.ErrSessionClosed) {
			c.log.Warn("report disconnect", zap.String("game_id", id), zap.Error(err))
		}
	}
}
