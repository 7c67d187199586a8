package feed

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/ironsheep/scan-highlights/internal/session"
)

// DefaultBuffer is the number of frames held for a slow consumer.
const DefaultBuffer = 1

// Options configures a feed.
type Options struct {
	// Buffer is the channel capacity; values below 1 mean DefaultBuffer.
	Buffer int
	Logger *zap.SugaredLogger
}

func (o Options) logger() *zap.SugaredLogger {
	if o.Logger == nil {
		return zap.NewNop().Sugar()
	}
	return o.Logger
}

// Feed is one websocket connection delivering frames.
type Feed struct {
	conn    *websocket.Conn
	frames  chan session.Frame
	done    chan struct{}
	err     error
	dropped atomic.Uint64
	decoded atomic.Uint64
	logger  *zap.SugaredLogger
}

// Dial connects to a detector at url and starts reading frames. The feed
// stops when ctx is done or the connection closes.
func Dial(ctx context.Context, url string, opts Options) (*Feed, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", url)
	}
	return start(ctx, conn, opts), nil
}

func start(ctx context.Context, conn *websocket.Conn, opts Options) *Feed {
	buffer := opts.Buffer
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	f := &Feed{
		conn:   conn,
		frames: make(chan session.Frame, buffer),
		done:   make(chan struct{}),
		logger: opts.logger(),
	}

	go func() {
		select {
		case <-ctx.Done():
			f.conn.Close()
		case <-f.done:
		}
	}()
	go f.readLoop()
	return f
}

// Frames returns the delivery channel. It is closed when the feed ends.
func (f *Feed) Frames() <-chan session.Frame {
	return f.frames
}

// Done is closed when the feed ends.
func (f *Feed) Done() <-chan struct{} {
	return f.done
}

// Err returns the error that ended the feed, nil for a normal close. It is
// only meaningful after Done is closed.
func (f *Feed) Err() error {
	return f.err
}

// Dropped returns how many frames were discarded in favour of newer ones.
func (f *Feed) Dropped() uint64 {
	return f.dropped.Load()
}

// Decoded returns how many frames were decoded successfully.
func (f *Feed) Decoded() uint64 {
	return f.decoded.Load()
}

// Close ends the feed.
func (f *Feed) Close() error {
	return f.conn.Close()
}

func (f *Feed) readLoop() {
	defer close(f.done)
	defer close(f.frames)
	defer f.conn.Close()

	for {
		kind, msg, err := f.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				f.err = errors.Wrap(err, "read frame")
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}

		var frame session.Frame
		if err := json.Unmarshal(msg, &frame); err != nil {
			f.logger.Warnw("skipping undecodable frame", "error", err, "bytes", len(msg))
			continue
		}
		f.decoded.Inc()
		f.deliver(frame)
	}
}

// deliver never blocks: when the buffer is full the oldest frame is dropped.
// readLoop is the only sender, so the loop always makes progress.
func (f *Feed) deliver(frame session.Frame) {
	for {
		select {
		case f.frames <- frame:
			return
		default:
		}
		select {
		case <-f.frames:
			f.dropped.Inc()
		default:
		}
	}
}

// Handler accepts detector connections and hands each resulting Feed to
// onFeed. onFeed runs on the request goroutine and should return once the
// feed is done.
type Handler struct {
	Upgrader websocket.Upgrader
	Options  Options
	OnFeed   func(*Feed)
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Options.logger().Warnw("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}
	f := start(r.Context(), conn, h.Options)
	if h.OnFeed != nil {
		h.OnFeed(f)
	}
	<-f.Done()
}
