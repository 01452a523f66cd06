package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/terra-clan/box-office/internal/catalog"
	"github.com/terra-clan/box-office/internal/render"
)

// Page session message types
const (
	MessageConnected = "connected"
	MessageView      = "view"
	MessageSelect    = "select"
	MessageError     = "error"
)

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// PageMessage is exchanged over the page session websocket
type PageMessage struct {
	Type     string           `json:"type"`
	Category catalog.Category `json:"category,omitempty"`
	Page     *render.Page     `json:"page,omitempty"`
	State    *catalog.Summary `json:"state,omitempty"`
	Message  string           `json:"message,omitempty"`
}

// handlePageWS serves one interactive page. The state pinned at connect
// is used for the whole session and released when the socket closes.
func (s *Server) handlePageWS(w http.ResponseWriter, r *http.Request) {
	state := s.stateFor(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("failed to upgrade to websocket", "error", err)
		return
	}
	defer conn.Close()

	session := &pageSession{server: s, conn: conn, state: state}
	slog.Info("page session connected", "state_id", stateID(state), "remote_addr", r.RemoteAddr)

	summary := state.Summary()
	if err := session.send(PageMessage{Type: MessageConnected, State: &summary}); err != nil {
		return
	}
	if err := session.sendView(s.defaultCategory); err != nil {
		return
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("websocket read error", "error", err)
			}
			break
		}

		var msg PageMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			if session.sendError("invalid message format") != nil {
				break
			}
			continue
		}

		if msg.Type != MessageSelect {
			if session.sendError("unsupported message type: "+msg.Type) != nil {
				break
			}
			continue
		}

		category, err := catalog.ParseCategory(string(msg.Category))
		if err != nil {
			if session.sendError(err.Error()) != nil {
				break
			}
			continue
		}

		if err := session.sendView(category); err != nil {
			break
		}
	}

	slog.Info("page session disconnected", "state_id", stateID(state))
}

type pageSession struct {
	server *Server
	conn   *websocket.Conn
	state  *catalog.State
}

func (p *pageSession) sendView(category catalog.Category) error {
	view, err := p.server.engine.View(p.state, category)
	if err != nil {
		if errors.Is(err, catalog.ErrUnknownCategory) {
			return p.sendError(err.Error())
		}
		slog.Error("failed to compute view", "error", err)
		return p.sendError("failed to compute view")
	}

	page := render.Build(view, catalog.Categories())
	return p.send(PageMessage{Type: MessageView, Category: view.Category, Page: &page})
}

func (p *pageSession) sendError(message string) error {
	return p.send(PageMessage{Type: MessageError, Message: message})
}

func (p *pageSession) send(msg PageMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal page message", "error", err)
		return err
	}

	p.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := p.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.Debug("failed to send page message", "error", err)
		return err
	}
	return nil
}

func stateID(state *catalog.State) string {
	if state == nil {
		return ""
	}
	return state.ID
}
