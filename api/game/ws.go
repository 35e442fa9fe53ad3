package gameapi

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/beka-birhanu/vinom-maze/game"
	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/beka-birhanu/vinom-maze/service"
	"github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var errBadCommand = errors.New("bad command")

var commandNargs = map[string]int{
	"a": 2, // append
	"r": 0, // retract
	"t": 2, // truncate
	"e": 2, // erase
	"x": 0, // reset
	"v": 0, // reveal
	"h": 0, // hint
	"g": 0, // refresh
}

var commandKinds = map[string]i.CommandKind{
	"a": i.CommandAppend,
	"r": i.CommandRetract,
	"t": i.CommandTruncate,
	"e": i.CommandErase,
	"x": i.CommandReset,
	"v": i.CommandReveal,
}

// wsCommand is one parsed websocket line.
type wsCommand struct {
	name string
	node maze.Node
}

func parseCommand(line string) (wsCommand, error) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return wsCommand{}, fmt.Errorf("%w: empty", errBadCommand)
	}

	nargs, ok := commandNargs[parts[0]]
	if !ok {
		return wsCommand{}, fmt.Errorf("%w: unknown command %q", errBadCommand, parts[0])
	}
	if nargs != len(parts)-1 {
		return wsCommand{}, fmt.Errorf("%w: %q takes %d arguments", errBadCommand, parts[0], nargs)
	}

	cmd := wsCommand{name: parts[0]}
	if nargs == 2 {
		row, errRow := strconv.Atoi(parts[1])
		col, errCol := strconv.Atoi(parts[2])
		if errRow != nil || errCol != nil {
			return wsCommand{}, fmt.Errorf("%w: row and column must be integers", errBadCommand)
		}
		cmd.node = maze.Node{Row: row, Col: col}
	}
	return cmd, nil
}

// connectWS streams commands for one session. Every line of a text
// message is answered with one JSON frame.
func (gc *GameController) connectWS(ctx *gin.Context) {
	playerID, sessionID, ok := ids(ctx)
	if !ok {
		return
	}
	if _, err := gc.gameSessionManager.Snapshot(playerID, sessionID); err != nil {
		writeError(ctx, err)
		return
	}

	conn, err := gc.upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		gc.logger.Warning(fmt.Sprintf("unable to upgrade game %s: %s", sessionID, err))
		return
	}
	defer conn.Close()

	reqCtx := ctx.Request.Context()
	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				gc.logger.Warning(fmt.Sprintf("abnormal ws break on game %s: %s", sessionID, err))
			}
			return
		}
		if mt != websocket.TextMessage {
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseUnsupportedData, "text frames only"))
			return
		}

		for _, line := range strings.Split(strings.TrimSpace(string(message)), "\n") {
			frame, done := gc.handleLine(reqCtx, playerID, sessionID, strings.TrimSpace(line))
			if err := conn.WriteJSON(frame); err != nil {
				gc.logger.Warning(fmt.Sprintf("unable to write frame on game %s: %s", sessionID, err))
				return
			}
			if done {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, "session ended"))
				return
			}
		}
	}
}

// handleLine runs one command and reports whether the session is gone.
func (gc *GameController) handleLine(ctx context.Context, playerID, sessionID uuid.UUID, line string) (Frame, bool) {
	frame := Frame{Command: line}

	cmd, err := parseCommand(line)
	if err != nil {
		frame.Error = err.Error()
		return frame, false
	}

	switch cmd.name {
	case "g":
		snap, err := gc.gameSessionManager.Snapshot(playerID, sessionID)
		if err != nil {
			frame.Error = err.Error()
			return frame, errors.Is(err, service.ErrSessionNotFound)
		}
		frame.Accepted = true
		frame.Solved = snap.State == game.Solved
		frame.Snapshot = &snap
		return frame, false
	case "h":
		hint, err := gc.gameSessionManager.Hint(playerID, sessionID)
		if err != nil {
			frame.Error = err.Error()
			return frame, errors.Is(err, service.ErrSessionNotFound)
		}
		frame.Accepted = true
		frame.Hint = hint
		return frame, false
	}

	outcome, err := gc.gameSessionManager.Move(ctx, playerID, sessionID, i.Command{Kind: commandKinds[cmd.name], Node: cmd.node})
	if err != nil {
		frame.Error = err.Error()
		return frame, errors.Is(err, service.ErrSessionNotFound)
	}
	frame.Accepted = outcome.Accepted
	frame.Solved = outcome.Solved
	frame.Snapshot = &outcome.Snapshot
	return frame, false
}
