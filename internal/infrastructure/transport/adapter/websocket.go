package adapter

import (
	"context"
	"errors"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"chatsync/internal/infrastructure/transport/port"
)

const (
	readTimeout      = 60 * time.Second
	writeWait        = 10 * time.Second
	pingPeriod       = 30 * time.Second
	maxFrameSize     = 1 << 20 // 1MB payload cap
	reconnectBaseOff = time.Second
	reconnectMaxOff  = 30 * time.Second
)

// WSStream implements port.Stream over a websocket to the push endpoint.
// It owns the dial/redial loop: a dropped connection is retried with capped
// exponential backoff until the run context is canceled. Every inbound frame
// is normalized before it reaches the events channel; frames that do not
// decode are logged and dropped so one malformed event cannot wedge the
// stream.
type WSStream struct {
	url    string
	header http.Header
	log    zerolog.Logger

	events chan port.Event
	once   sync.Once
	closed chan struct{}
}

// NewWSStream constructs a stream for the given websocket URL. token, when
// non-empty, is sent as a bearer Authorization header on the dial request.
func NewWSStream(url, token string, log zerolog.Logger) (*WSStream, error) {
	if url == "" {
		return nil, errors.New("transport: websocket URL is required")
	}
	header := http.Header{}
	if token != "" {
		header.Set("Authorization", "Bearer "+token)
	}
	return &WSStream{
		url:    url,
		header: header,
		log:    log.With().Str("component", "ws_stream").Logger(),
		events: make(chan port.Event, 128),
		closed: make(chan struct{}),
	}, nil
}

// NewWSStreamFromEnv constructs a stream from CHAT_WS_URL and
// CHAT_AUTH_TOKEN.
func NewWSStreamFromEnv(log zerolog.Logger) (*WSStream, error) {
	url := os.Getenv("CHAT_WS_URL")
	if url == "" {
		return nil, errors.New("transport: CHAT_WS_URL environment variable is not set")
	}
	return NewWSStream(url, os.Getenv("CHAT_AUTH_TOKEN"), log)
}

// Ensure interface compliance at compile time
var _ port.Stream = (*WSStream)(nil)

// Events returns the normalized event channel. It stays open for the
// lifetime of the stream and is closed when Run returns.
func (s *WSStream) Events() <-chan port.Event {
	return s.events
}

// Run connects and consumes frames until ctx is canceled or Close is
// called, reconnecting on failure.
func (s *WSStream) Run(ctx context.Context) error {
	defer close(s.events)

	backoff := reconnectBaseOff
	for {
		if err := s.stopped(ctx); err != nil {
			return nil
		}

		conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, s.header)
		if err != nil {
			s.log.Warn().Err(err).Dur("retry_in", backoff).Msg("dial failed")
			if err := s.sleep(ctx, backoff); err != nil {
				return nil
			}
			if backoff *= 2; backoff > reconnectMaxOff {
				backoff = reconnectMaxOff
			}
			continue
		}

		backoff = reconnectBaseOff
		s.log.Info().Str("url", s.url).Msg("connected")
		s.consume(ctx, conn)
		_ = conn.Close()

		if err := s.stopped(ctx); err != nil {
			return nil
		}
		s.log.Warn().Msg("connection lost, reconnecting")
	}
}

// Close stops the stream. Safe to call more than once.
func (s *WSStream) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

// consume reads frames off one connection until it fails or the stream
// stops. A ping keepalive guards the read deadline the way the server side
// of this protocol does.
func (s *WSStream) consume(ctx context.Context, conn *websocket.Conn) {
	conn.SetReadLimit(maxFrameSize)
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-s.closed:
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "stream closed"),
					time.Now().Add(writeWait))
				_ = conn.Close()
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			}
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				s.log.Warn().Err(err).Msg("read failed")
			}
			return
		}

		ev, err := decodeEvent(data)
		if err != nil {
			s.log.Warn().Err(err).Msg("dropping undecodable frame")
			continue
		}

		select {
		case s.events <- ev:
		case <-ctx.Done():
			return
		case <-s.closed:
			return
		}
	}
}

func (s *WSStream) stopped(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.closed:
		return errors.New("transport: stream closed")
	default:
		return nil
	}
}

func (s *WSStream) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-s.closed:
		return errors.New("transport: stream closed")
	case <-timer.C:
		return nil
	}
}
