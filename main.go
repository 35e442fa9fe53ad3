package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/beka-birhanu/vinom-maze/api"
	gameapi "github.com/beka-birhanu/vinom-maze/api/game"
	api_i "github.com/beka-birhanu/vinom-maze/api/i"
	"github.com/beka-birhanu/vinom-maze/api/identity"
	"github.com/beka-birhanu/vinom-maze/config"
	"github.com/beka-birhanu/vinom-maze/infrastruture/repo"
	"github.com/beka-birhanu/vinom-maze/infrastruture/sortedstorage"
	"github.com/beka-birhanu/vinom-maze/infrastruture/token"
	"github.com/beka-birhanu/vinom-maze/logger"
	"github.com/beka-birhanu/vinom-maze/maze"
	"github.com/beka-birhanu/vinom-maze/service"
	"github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/sync/errgroup"
)

const pruneInterval = time.Minute

// Global variables for dependencies
var (
	mongoClient        *mongo.Client
	redisClient        *redis.Client
	mazeRepo           i.MazeRepo
	leaderboard        i.Leaderboard
	gameSessionManager *service.GameSessionManager
	gameController     api_i.Controller
	jwtTokenizer       i.Tokenizer
	authService        i.Authenticator
	authController     api_i.Controller
	router             *api.Router
	logBase            *logger.Base
	appLogger          *logger.Logger
)

// initLogging builds the one logrus logger, and the rotating file hook if
// LOG_FILE is set, that every component logger is derived from.
func initLogging() {
	opts := []logger.Option{logger.WithLevel(config.Envs.LogLevel)}
	if config.Envs.LogFile != "" {
		opts = append(opts, logger.WithRotatingFile(config.Envs.LogFile, 50, 3, 28))
	}

	var err error
	logBase, err = logger.NewBase(os.Stdout, opts...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[APP] [FATAL] creating logger: %v\n", err)
		os.Exit(1)
	}
	initLogging()
}

// newLogger derives a component logger from the shared base.
func newLogger(prefix, color string) *logger.Logger {
	l, err := logBase.Named(prefix, color)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[APP] [FATAL] creating %s logger: %v\n", prefix, err)
		os.Exit(1)
	}
	return l
}

func initMongo(ctx context.Context) {
	if config.Envs.DBHost == "" {
		appLogger.Warning("DB_HOST not set, saved mazes are disabled")
		return
	}

	uri := fmt.Sprintf("mongodb://%s:%s@%s:%v", config.Envs.DBUser, config.Envs.DBPassword, config.Envs.DBHost, config.Envs.DBPort)

	clientOptions := options.Client().ApplyURI(uri)
	var err error
	mongoClient, err = mongo.Connect(ctx, clientOptions)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Failed to connect to MongoDB: %v", err))
		os.Exit(1)
	}
	if err = mongoClient.Ping(ctx, nil); err != nil {
		appLogger.Error(fmt.Sprintf("MongoDB ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to MongoDB")
}

func initMazeRepo() {
	if mongoClient == nil {
		return
	}
	mazeRepo = repo.NewMazeRepo(mongoClient, config.Envs.DBName, "mazes")
	appLogger.Info("Maze repository initialized")
}

func initRedis(ctx context.Context) {
	if config.Envs.RedisAddr == "" {
		appLogger.Warning("REDIS_ADDR not set, leaderboard is disabled")
		return
	}

	redisClient = redis.NewClient(&redis.Options{
		Addr:     config.Envs.RedisAddr,
		Password: config.Envs.RedisPassword,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		appLogger.Error(fmt.Sprintf("Redis ping failed: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Connected to Redis")
}

func initLeaderboard() {
	if redisClient == nil {
		return
	}

	board, err := sortedstorage.NewRedisLeaderboard(redisClient, config.Envs.LeaderboardTTLSeconds)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating leaderboard: %v", err))
		os.Exit(1)
	}
	leaderboard = board
	appLogger.Info("Leaderboard initialized")
}

func initSessionManager() {
	alg, err := maze.ParseAlgorithm(config.Envs.MazeAlgorithm)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Parsing MAZE_ALGORITHM: %v", err))
		os.Exit(1)
	}

	gameSessionManager, err = service.NewGameSessionManager(&service.Config{
		MazeRepo:         mazeRepo,
		Leaderboard:      leaderboard,
		Logger:           newLogger("SESSION-MANAGER", logger.ColorCyan),
		DefaultSize:      config.Envs.MazeSize,
		DefaultAlgorithm: alg,
	})
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating session manager: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Session manager initialized")
}

func initGameController() {
	var err error
	gameController, err = gameapi.NewGameController(gameSessionManager, newLogger("GAME-API", logger.ColorMagenta), config.Envs.AllowedOrigins)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating game controller: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Game controller initialized")
}

func initJWTTokenizer() {
	jwtTokenizer = token.NewJwtService(config.Envs.JWTSecret, config.Envs.JWTIssuer)
	appLogger.Info("JWT Tokenizer initialized")
}

func initAuthService() {
	var err error
	authService, err = service.NewAuth(jwtTokenizer, time.Duration(config.Envs.TokenTTLHours)*time.Hour)
	if err != nil {
		appLogger.Error(fmt.Sprintf("Creating auth service: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Auth service initialized")
}

func initAuthController() {
	authController = identity.NewIdentityServer(authService)
	appLogger.Info("Auth controller initialized")
}

func initRouter(a i.Authenticator) {
	gin.SetMode(config.Envs.GinMode)
	router = api.NewRouter(api.Config{
		BaseURL:                 "/api",
		Controllers:             []api_i.Controller{authController, gameController},
		AuthorizationMiddleware: identity.Authoriz(a),
		AllowedOrigins:          config.Envs.AllowedOrigins,
		Logger:                  newLogger("HTTP", logger.ColorBlue),
	})
	appLogger.Info("Router initialized")
}

func main() {
	mainCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appLogger = newLogger("APP", logger.ColorGreen)

	initCtx, cancel := context.WithTimeout(mainCtx, 30*time.Second)
	defer cancel()

	initMongo(initCtx)
	defer func() {
		if mongoClient != nil {
			_ = mongoClient.Disconnect(context.Background())
		}
	}()
	initRedis(initCtx)
	defer func() {
		if redisClient != nil {
			_ = redisClient.Close()
		}
	}()

	initMazeRepo()
	initLeaderboard()
	initSessionManager()
	initGameController()
	initJWTTokenizer()
	initAuthService()
	initAuthController()
	initRouter(authService)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%v", config.Envs.HostIP, config.Envs.RESTPort),
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(l net.Listener) context.Context {
			return mainCtx
		},
	}

	g, gCtx := errgroup.WithContext(mainCtx)
	g.Go(func() error {
		appLogger.WithField("addr", server.Addr).Info("Ready to serve")
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		gameSessionManager.Run(gCtx, pruneInterval, time.Duration(config.Envs.SessionIdleMinutes)*time.Minute)
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		appLogger.Error(fmt.Sprintf("Exit reason: %v", err))
		os.Exit(1)
	}
	appLogger.Info("Server stopped")
}
