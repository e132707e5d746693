package httpserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/goccy/go-json"
	"nhooyr.io/websocket"

	"github.com/SurajBakawat-Ra/profiler-visualizer/internal/api"
	"github.com/SurajBakawat-Ra/profiler-visualizer/internal/telemetry"
)

// wsState is the per-connection view: the bound document and enabled groups.
type wsState struct {
	sessionID string
	selection telemetry.Selection
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	reqLogger := s.loggerFromContext(r.Context())
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if !s.reserveWS() {
		reqLogger.Warn("websocket rejected", "reason", "capacity")
		http.Error(w, "websocket capacity reached", http.StatusServiceUnavailable)
		return
	}
	defer s.releaseWS()

	opts := &websocket.AcceptOptions{
		OriginPatterns: originPatterns(s.cfg.AllowedOrigins),
	}

	conn, err := websocket.Accept(w, r, opts)
	if err != nil {
		reqLogger.Warn("websocket accept failed", "err", err)
		return
	}

	connID := s.wsConnIDs.Add(1)
	s.wsTotal.Add(1)
	logger := reqLogger.With("ws_id", connID)
	defer closeWebsocket(logger, conn)

	outbound := newWSOutbound(wsSendQueueSize, &s.wsDropped)

	features := map[string]bool{
		"png":        true,
		"prometheus": s.cfg.EnablePrometheus,
	}
	hello := api.NewHelloMessage(telemetry.Groups(), features)

	ctx, cancel := context.WithCancel(r.Context())

	writerDone := make(chan struct{})
	go s.wsWriter(ctx, conn, outbound, cancel, logger, writerDone)

	defer func() {
		outbound.close()
		cancel()
		<-writerDone
	}()

	if !s.enqueueMessage(outbound, hello, logger) {
		return
	}

	messageCh := make(chan []byte, 8)
	readErrCh := make(chan error, 1)
	go s.readMessages(ctx, conn, messageCh, readErrCh)

	state := &wsState{selection: telemetry.Selection{}}

	for {
		select {
		case data, ok := <-messageCh:
			if !ok {
				messageCh = nil
				continue
			}
			if err := s.handleClientMessage(outbound, data, state, logger); err != nil {
				logger.Warn("client message handling error", "err", err)
				return
			}
		case err := <-readErrCh:
			if err != nil && websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				logger.Warn("websocket read error", "err", err)
			}
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) readMessages(ctx context.Context, conn *websocket.Conn, out chan<- []byte, errCh chan<- error) {
	defer close(out)
	for {
		readCtx := ctx
		var cancel context.CancelFunc
		if s.cfg.WS.ReadTimeout > 0 {
			readCtx, cancel = context.WithTimeout(ctx, s.cfg.WS.ReadTimeout)
		}
		msgType, data, err := conn.Read(readCtx)
		if cancel != nil {
			cancel()
		}
		if err != nil {
			errCh <- err
			return
		}
		if msgType != websocket.MessageText {
			continue
		}
		select {
		case out <- data:
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) handleClientMessage(outbound *wsOutbound, data []byte, state *wsState, logger *slog.Logger) error {
	var envelope api.ClientMessage
	if err := json.Unmarshal(data, &envelope); err != nil {
		logger.Debug("invalid client message", "err", err)
		return nil
	}

	switch envelope.Type {
	case "subscribe":
		var msg api.SubscribeMessage
		if err := json.Unmarshal(data, &msg); err != nil || msg.SessionID == "" {
			return s.replyError(outbound, "invalid subscribe payload", logger)
		}
		entry, err := s.lookupSession(msg.SessionID)
		if err != nil {
			return s.replyError(outbound, fmt.Sprintf("%s: %s", err, msg.SessionID), logger)
		}
		state.sessionID = entry.ID
		logger.Info("ws subscribed", "session_id", entry.ID)
		if !s.enqueueMessage(outbound, api.NewSubscribedMessage(entry.ID, len(entry.Document.Frames)), logger) {
			return errors.New("failed to enqueue subscribed message")
		}
		return s.pushCharts(outbound, state, logger)
	case "toggle":
		var msg api.ToggleMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return s.replyError(outbound, "invalid toggle payload", logger)
		}
		sel, err := telemetry.ParseSelection(msg.Groups)
		if err != nil {
			return s.replyError(outbound, err.Error(), logger)
		}
		state.selection = sel
		if state.sessionID == "" {
			return s.replyError(outbound, "no document subscribed", logger)
		}
		return s.pushCharts(outbound, state, logger)
	case "ping":
		if !s.enqueueMessage(outbound, api.PongMessage{Type: "pong"}, logger) {
			return errors.New("failed to enqueue pong response")
		}
	default:
		logger.Debug("unknown message type", "type", envelope.Type)
	}
	return nil
}

func (s *Server) pushCharts(outbound *wsOutbound, state *wsState, logger *slog.Logger) error {
	entry, err := s.lookupSession(state.sessionID)
	if err != nil {
		state.sessionID = ""
		return s.replyError(outbound, "document expired", logger)
	}
	charts := telemetry.BuildCharts(entry.Document.Frames, state.selection)
	s.chartsRendered.Add(uint64(len(charts)))
	msg := api.NewChartsMessage(entry.ID, state.selection.IDs(), charts)
	if !s.enqueueMessage(outbound, msg, logger) {
		return errors.New("failed to enqueue charts message")
	}
	return nil
}

func (s *Server) replyError(outbound *wsOutbound, msg string, logger *slog.Logger) error {
	if !s.enqueueMessage(outbound, api.ErrorMessage{Type: "error", Message: msg}, logger) {
		return errors.New("failed to enqueue error message")
	}
	return nil
}

func (s *Server) wsWriter(ctx context.Context, conn *websocket.Conn, outbound *wsOutbound, cancel context.CancelFunc, logger *slog.Logger, done chan<- struct{}) {
	defer close(done)
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-outbound.channel():
			if !ok {
				return
			}
			if err := s.writeRaw(ctx, conn, msg); err != nil {
				if websocket.CloseStatus(err) != websocket.StatusNormalClosure {
					logger.Warn("websocket write failed", "err", err)
				}
				cancel()
				return
			}
			s.wsSent.Add(1)
		}
	}
}

func (s *Server) writeRaw(ctx context.Context, conn *websocket.Conn, data []byte) error {
	writeCtx := ctx
	var cancel context.CancelFunc
	if s.cfg.WS.WriteTimeout > 0 {
		writeCtx, cancel = context.WithTimeout(ctx, s.cfg.WS.WriteTimeout)
	}
	if cancel != nil {
		defer cancel()
	}
	return conn.Write(writeCtx, websocket.MessageText, data)
}

func (s *Server) enqueueMessage(outbound *wsOutbound, payload any, logger *slog.Logger) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		logger.Error("failed to marshal websocket payload", "err", err)
		return false
	}
	if !outbound.enqueue(data) {
		logger.Warn("websocket outbound queue unavailable")
		return false
	}
	return true
}

func (s *Server) reserveWS() bool {
	if s.maxWSClients <= 0 {
		s.wsActive.Add(1)
		return true
	}

	for {
		current := s.wsActive.Load()
		if current >= s.maxWSClients {
			s.wsRejected.Add(1)
			return false
		}
		if s.wsActive.CompareAndSwap(current, current+1) {
			return true
		}
	}
}

func (s *Server) releaseWS() {
	s.wsActive.Add(-1)
}

// wsOutbound is a bounded send queue that drops the oldest message when full.
type wsOutbound struct {
	ch     chan []byte
	closed atomic.Bool
	drops  *atomic.Uint64
}

func newWSOutbound(size int, dropCounter *atomic.Uint64) *wsOutbound {
	if size <= 0 {
		size = 1
	}
	return &wsOutbound{
		ch:    make(chan []byte, size),
		drops: dropCounter,
	}
}

func (o *wsOutbound) enqueue(msg []byte) bool {
	if o.closed.Load() {
		o.countDrop()
		return false
	}

	select {
	case o.ch <- msg:
		return true
	default:
	}

	select {
	case <-o.ch:
		o.countDrop()
	default:
	}

	select {
	case o.ch <- msg:
		return true
	default:
		o.countDrop()
		return false
	}
}

func (o *wsOutbound) close() {
	if o.closed.CompareAndSwap(false, true) {
		close(o.ch)
	}
}

func (o *wsOutbound) channel() <-chan []byte {
	return o.ch
}

func (o *wsOutbound) countDrop() {
	if o.drops != nil {
		o.drops.Add(1)
	}
}
