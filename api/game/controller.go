package gameapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/beka-birhanu/vinom-maze/api/identity"
	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/beka-birhanu/vinom-maze/service"
	"github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	maxImportBytes     = 1 << 20
	defaultBoardLength = 10
	maxBoardLength     = 100
)

// GameController manages game sessions over HTTP.
type GameController struct {
	gameSessionManager i.GameSessionManager
	logger             i.Logger
	upgrader           websocket.Upgrader
}

// NewGameController initializes a GameController. Websocket upgrades are
// accepted from allowedOrigins only; an empty list accepts any origin.
func NewGameController(gsm i.GameSessionManager, logger i.Logger, allowedOrigins []string) (*GameController, error) {
	if gsm == nil || logger == nil {
		return nil, errors.New("game controller requires a session manager and a logger")
	}
	return &GameController{
		gameSessionManager: gsm,
		logger:             logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
	}, nil
}

// originChecker accepts requests without an Origin header, which come from
// non-browser clients, and browser requests from one of allowed.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}

	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[strings.ToLower(strings.TrimSuffix(o, "/"))] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[strings.ToLower(origin)]
		return ok
	}
}

// RegisterPublic registers public routes.
func (gc *GameController) RegisterPublic(route *gin.RouterGroup) {
	route.GET("/leaderboard/:rows/:cols", gc.leaderboard)
}

// RegisterProtected registers protected routes.
func (gc *GameController) RegisterProtected(route *gin.RouterGroup) {
	games := route.Group("/games")
	{
		games.POST("", gc.newGame)
		games.POST("/import", gc.importGame)
		games.GET("/:ID", gc.snapshot)
		games.DELETE("/:ID", gc.endGame)
		games.POST("/:ID/append", gc.nodeCommand(i.CommandAppend))
		games.POST("/:ID/truncate", gc.nodeCommand(i.CommandTruncate))
		games.POST("/:ID/erase", gc.nodeCommand(i.CommandErase))
		games.POST("/:ID/retract", gc.command(i.CommandRetract))
		games.POST("/:ID/reset", gc.command(i.CommandReset))
		games.POST("/:ID/reveal", gc.command(i.CommandReveal))
		games.GET("/:ID/hint", gc.hint)
		games.GET("/:ID/export", gc.export)
		games.POST("/:ID/save", gc.save)
		games.GET("/:ID/ws", gc.connectWS)
	}
	route.POST("/mazes/:ID/play", gc.playSaved)
	route.DELETE("/mazes/:ID", gc.deleteSaved)
}

func (gc *GameController) newGame(ctx *gin.Context) {
	playerID, ok := identity.PlayerID(ctx)
	if !ok {
		ctx.Status(http.StatusUnauthorized)
		return
	}

	var request NewGameRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&request); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	snap, err := gc.gameSessionManager.NewSession(ctx.Request.Context(), playerID, i.NewSessionRequest{
		Rows:      request.Rows,
		Cols:      request.Cols,
		Seed:      request.Seed,
		Algorithm: request.Algorithm,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, snap)
}

func (gc *GameController) importGame(ctx *gin.Context) {
	playerID, ok := identity.PlayerID(ctx)
	if !ok {
		ctx.Status(http.StatusUnauthorized)
		return
	}

	raw, err := io.ReadAll(http.MaxBytesReader(ctx.Writer, ctx.Request.Body, maxImportBytes))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "could not read maze document"})
		return
	}

	snap, err := gc.gameSessionManager.ImportSession(ctx.Request.Context(), playerID, raw)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, snap)
}

func (gc *GameController) playSaved(ctx *gin.Context) {
	playerID, mazeID, ok := ids(ctx)
	if !ok {
		return
	}

	snap, err := gc.gameSessionManager.PlaySaved(ctx.Request.Context(), playerID, mazeID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, snap)
}

func (gc *GameController) deleteSaved(ctx *gin.Context) {
	playerID, mazeID, ok := ids(ctx)
	if !ok {
		return
	}

	if err := gc.gameSessionManager.DeleteSaved(ctx.Request.Context(), playerID, mazeID); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

func (gc *GameController) snapshot(ctx *gin.Context) {
	playerID, sessionID, ok := ids(ctx)
	if !ok {
		return
	}

	snap, err := gc.gameSessionManager.Snapshot(playerID, sessionID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, snap)
}

func (gc *GameController) endGame(ctx *gin.Context) {
	playerID, sessionID, ok := ids(ctx)
	if !ok {
		return
	}

	if err := gc.gameSessionManager.EndSession(playerID, sessionID); err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// nodeCommand handles commands aimed at a lattice node.
func (gc *GameController) nodeCommand(kind i.CommandKind) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		playerID, sessionID, ok := ids(ctx)
		if !ok {
			return
		}

		var request NodeRequest
		if err := ctx.ShouldBindJSON(&request); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		gc.move(ctx, playerID, sessionID, i.Command{Kind: kind, Node: request.node()})
	}
}

// command handles commands without arguments.
func (gc *GameController) command(kind i.CommandKind) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		playerID, sessionID, ok := ids(ctx)
		if !ok {
			return
		}
		gc.move(ctx, playerID, sessionID, i.Command{Kind: kind})
	}
}

func (gc *GameController) move(ctx *gin.Context, playerID, sessionID uuid.UUID, cmd i.Command) {
	outcome, err := gc.gameSessionManager.Move(ctx.Request.Context(), playerID, sessionID, cmd)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, outcome)
}

func (gc *GameController) hint(ctx *gin.Context) {
	playerID, sessionID, ok := ids(ctx)
	if !ok {
		return
	}

	nodes, err := gc.gameSessionManager.Hint(playerID, sessionID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, HintResponse{Nodes: nodes})
}

func (gc *GameController) export(ctx *gin.Context) {
	playerID, sessionID, ok := ids(ctx)
	if !ok {
		return
	}

	raw, err := gc.gameSessionManager.ExportMaze(playerID, sessionID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", sessionID.String()+".bson"))
	ctx.Data(http.StatusOK, "application/bson", raw)
}

func (gc *GameController) save(ctx *gin.Context) {
	playerID, sessionID, ok := ids(ctx)
	if !ok {
		return
	}

	mazeID, err := gc.gameSessionManager.SaveMaze(ctx.Request.Context(), playerID, sessionID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, SaveResponse{MazeID: mazeID.String()})
}

func (gc *GameController) leaderboard(ctx *gin.Context) {
	rows, errRows := strconv.Atoi(ctx.Param("rows"))
	cols, errCols := strconv.Atoi(ctx.Param("cols"))
	if errRows != nil || errCols != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "rows and cols must be integers"})
		return
	}

	limit := int64(defaultBoardLength)
	if raw := ctx.Query("limit"); raw != "" {
		parsed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || parsed < 1 || parsed > maxBoardLength {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("limit must be between 1 and %d", maxBoardLength)})
			return
		}
		limit = parsed
	}

	entries, err := gc.gameSessionManager.Leaderboard(ctx.Request.Context(), rows, cols, limit)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, LeaderboardResponse{Rows: rows, Cols: cols, Entries: entries})
}

// ids returns the authenticated player and the ID path parameter. It
// writes the error response itself when either is missing.
func ids(ctx *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	playerID, ok := identity.PlayerID(ctx)
	if !ok {
		ctx.Status(http.StatusUnauthorized)
		return uuid.Nil, uuid.Nil, false
	}

	ID, err := uuid.Parse(ctx.Params.ByName("ID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return uuid.Nil, uuid.Nil, false
	}
	return playerID, ID, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, maze.ErrInvalidSize),
		errors.Is(err, maze.ErrOutOfBounds),
		errors.Is(err, service.ErrUnknownCommand):
		return http.StatusBadRequest
	case errors.Is(err, maze.ErrCorruptMaze):
		return http.StatusUnprocessableEntity
	case errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, i.ErrMazeNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrPersistenceDisabled),
		errors.Is(err, service.ErrLeaderboardDisabled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(ctx *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		ctx.JSON(status, gin.H{"error": "internal error"})
		return
	}
	ctx.JSON(status, gin.H{"error": err.Error()})
}
