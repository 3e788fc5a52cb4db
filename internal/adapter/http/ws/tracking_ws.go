// Package wshandler serves the live-tracking websocket endpoints. Each
// accepted connection is one subscription to one channel; events flow
// one way, server to client.
package wshandler

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/cliniktrak/ambulance-dispatch/internal/domain/models"
	"github.com/cliniktrak/ambulance-dispatch/internal/domain/types"
	"github.com/cliniktrak/ambulance-dispatch/pkg/logger"
	wrap "github.com/cliniktrak/ambulance-dispatch/pkg/logger/wrapper"
	"github.com/cliniktrak/ambulance-dispatch/pkg/metrics"
	"github.com/cliniktrak/ambulance-dispatch/pkg/uuid"
	"github.com/cliniktrak/ambulance-dispatch/pkg/wshub"
)

const serviceName = "tracking"

type Subscriber interface {
	Subscribe(channel types.Channel) <-chan models.LocationEvent
	Unsubscribe(channel types.Channel, sub <-chan models.LocationEvent)
}

type Authorizer interface {
	Authorize(ctx context.Context, caller *models.User, channel types.Channel) error
}

type TrackingWS struct {
	subscriber Subscriber
	gateway    Authorizer
	hub        *wshub.Hub
	upgrader   websocket.Upgrader
	l          logger.Logger
}

func NewTrackingWS(subscriber Subscriber, gateway Authorizer, hub *wshub.Hub, l logger.Logger) *TrackingWS {
	return &TrackingWS{
		subscriber: subscriber,
		gateway:    gateway,
		hub:        hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Auth happens via bearer token, not origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		l: l,
	}
}

// HandleAll streams every ambulance's position snapshots.
func (h *TrackingWS) HandleAll(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "ws_subscribe_all_ambulances")
	h.serve(ctx, w, r, types.ChannelAllAmbulances)
}

// HandleOne streams a single ambulance's position snapshots.
func (h *TrackingWS) HandleOne(w http.ResponseWriter, r *http.Request) {
	ctx := wrap.WithAction(r.Context(), "ws_subscribe_ambulance")

	ambulanceID, err := uuid.Parse(r.PathValue("ambulance_id"))
	if err != nil {
		h.l.Warn(ctx, "invalid ambulance uuid format")
		http.Error(w, "invalid ambulance uuid format", http.StatusBadRequest)
		return
	}

	h.serve(ctx, w, r, types.AmbulanceChannel(ambulanceID))
}

func (h *TrackingWS) serve(ctx context.Context, w http.ResponseWriter, r *http.Request, channel types.Channel) {
	user := models.UserFromContext(ctx)

	// Authorization runs before the upgrade so a refused caller gets a
	// plain HTTP status, not a half-open socket.
	if err := h.gateway.Authorize(ctx, user, channel); err != nil {
		h.l.Warn(ctx, "channel subscription refused", "channel", channel.String())
		status := http.StatusForbidden
		if user == nil || user.IsAnonymous() {
			status = http.StatusUnauthorized
		}
		http.Error(w, "not permitted for this channel", status)
		return
	}

	socket, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "websocket upgrade failed", err)
		return
	}

	conn := wshub.NewConn(ctx, uuid.MustNew(), socket)
	if err := h.hub.Add(conn); err != nil {
		h.l.Error(wrap.ErrorCtx(ctx, err), "failed to register connection", err)
		_ = conn.Close()
		return
	}

	events := h.subscriber.Subscribe(channel)

	metrics.WebSocketConnectionsGauge.WithLabelValues(serviceName, channel.String()).Inc()
	h.l.Info(ctx, "ws subscriber attached", "channel", channel.String(), "conn_id", conn.ID())

	// The read pump only exists to notice the peer going away.
	go func() {
		defer conn.Close()
		for {
			if _, _, err := socket.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go h.writePump(ctx, conn, channel, events)
}

func (h *TrackingWS) writePump(ctx context.Context, conn *wshub.Conn, channel types.Channel, events <-chan models.LocationEvent) {
	defer func() {
		h.subscriber.Unsubscribe(channel, events)
		_ = h.hub.Delete(conn.ID())
		metrics.WebSocketConnectionsGauge.WithLabelValues(serviceName, channel.String()).Dec()
		h.l.Info(ctx, "ws subscriber detached", "channel", channel.String(), "conn_id", conn.ID())
	}()

	for {
		select {
		case <-conn.Done():
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if err := conn.Send(e); err != nil {
				h.l.Warn(ctx, "ws send failed, dropping subscriber",
					"channel", channel.String(),
					"conn_id", conn.ID(),
					"err", err.Error(),
				)
				return
			}
		}
	}
}
