package api

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/dmdmdm-nz/reachd/pkg/version"
)

func accept(w http.ResponseWriter, r *http.Request) (*websocket.Conn, context.Context, error) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		return nil, nil, err
	}
	return c, r.Context(), nil
}

// StreamReachability upgrades the request and pushes the latest value followed
// by every committed transition until either side goes away.
func StreamReachability(s *Service, w http.ResponseWriter, r *http.Request) {
	if p := r.URL.Query().Get("protocol"); p != "" {
		ok, err := version.ProtocolCompatible(p)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if !ok {
			w.Header().Set("X-Reachd-Protocol", version.ProtocolVersion)
			http.Error(w, "unsupported protocol version "+p, http.StatusUpgradeRequired)
			return
		}
	}

	c, ctx, err := accept(w, r)
	if err != nil {
		log.WithError(err).Error("Failed to accept client")
		return
	}
	defer c.Close(websocket.StatusNormalClosure, "closing")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	session := uuid.NewString()
	logger := log.WithFields(log.Fields{
		"session": session,
		"remote":  r.RemoteAddr,
	})

	hello := HelloMessage{
		Type:      MessageHello,
		SessionID: session,
		Protocol:  version.ProtocolVersion,
		Version:   version.Version,
	}
	if err := wsjson.Write(ctx, c, hello); err != nil {
		logger.WithError(err).Debug("Failed to send hello")
		return
	}

	ch, unsub := s.source.Subscribe()
	defer unsub()
	logger.Info("Reachability subscriber connected")
	defer logger.Info("Reachability subscriber disconnected")

	// Clients only ever send control frames; a failed read means they left.
	go func() {
		for {
			if _, _, err := c.Read(ctx); err != nil {
				cancel()
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case reachable, ok := <-ch:
			if !ok {
				c.Close(websocket.StatusGoingAway, "reachability monitor closed")
				return
			}
			msg := StateMessage{
				Type:      MessageState,
				Reachable: reachable,
				Timestamp: time.Now().UTC(),
			}
			if err := wsjson.Write(ctx, c, msg); err != nil {
				logger.WithError(err).Debug("Failed to send state")
				return
			}
		}
	}
}
