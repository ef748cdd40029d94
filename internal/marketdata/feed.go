package marketdata

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/zstd"
	"github.com/novaex/tradepipe/internal/bus"
	"github.com/novaex/tradepipe/internal/pipeerr"
	"go.uber.org/zap"
)

// Feed subscribes to one venue/symbol websocket stream and republishes each
// frame, decompressed if needed, as a rawEnvelope on market_data.raw.
// Grounded on the original market-data handler's per-venue websocket
// connector; `gorilla/websocket` is the transport, `klauspost/compress`
// covers venues that ship zstd-compressed order book snapshots above
// CompressSnapshotBytes.
type Feed struct {
	logger      *zap.Logger
	bus         bus.Bus
	venueID     string
	symbol      string
	url         string
	compressMin int
	dialer      *websocket.Dialer
}

// NewFeed builds a Feed for one venue/symbol pair.
func NewFeed(logger *zap.Logger, b bus.Bus, venueID, symbol, url string, compressMin int) *Feed {
	return &Feed{
		logger:      logger.Named("marketdata-feed").With(zap.String("venue", venueID), zap.String("symbol", symbol)),
		bus:         b,
		venueID:     venueID,
		symbol:      symbol,
		url:         url,
		compressMin: compressMin,
		dialer:      websocket.DefaultDialer,
	}
}

// Run dials the venue's websocket and republishes frames until ctx is
// cancelled or the connection fails; callers reconnect by re-invoking Run.
func (f *Feed) Run(ctx context.Context) error {
	conn, _, err := f.dialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return pipeerr.Wrap(err, pipeerr.ErrFeedDisconnect, "dialing venue websocket")
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return pipeerr.Wrap(err, pipeerr.ErrFeedDisconnect, "reading venue websocket frame")
		}

		decoded, err := f.maybeDecompress(payload)
		if err != nil {
			f.logger.Error("dropping undecodable frame", zap.Error(err))
			continue
		}

		env := rawEnvelope{VenueID: f.venueID, Symbol: f.symbol, Payload: decoded}
		body, err := json.Marshal(env)
		if err != nil {
			f.logger.Error("encoding raw envelope failed", zap.Error(err))
			continue
		}
		if err := f.bus.Publish(ctx, bus.TopicMarketDataRaw, body); err != nil {
			f.logger.Error("publishing raw tick failed", zap.Error(err))
		}
	}
}

// maybeDecompress zstd-decompresses payload when it's at or above
// compressMin bytes; smaller frames are assumed to be plain JSON already.
func (f *Feed) maybeDecompress(payload []byte) ([]byte, error) {
	if f.compressMin <= 0 || len(payload) < f.compressMin {
		return payload, nil
	}
	decoder, err := zstd.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, pipeerr.Wrap(err, pipeerr.ErrInvalidOrder, "opening zstd reader")
	}
	defer decoder.Close()
	out, err := io.ReadAll(decoder)
	if err != nil {
		return nil, pipeerr.Wrap(err, pipeerr.ErrInvalidOrder, "decompressing zstd snapshot")
	}
	return out, nil
}

// reconnectLoop keeps Run running across transient disconnects with a
// fixed backoff, stopping only when ctx is cancelled.
func (f *Feed) reconnectLoop(ctx context.Context, backoff time.Duration) {
	for ctx.Err() == nil {
		if err := f.Run(ctx); err != nil {
			f.logger.Warn("feed disconnected, reconnecting", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
		}
	}
}
