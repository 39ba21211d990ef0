package httpapi

import (
	"context"
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/hxnx/radiowave/internal/radio"
	"github.com/labstack/echo"
	"github.com/labstack/echo/middleware"
)

const tokenTTL = 72 * time.Hour

type Options struct {
	Addr string
	// JWTSecret protects the guild routes. Without it they are open and
	// login is disabled.
	JWTSecret     string
	AdminPassword string
}

// Server exposes the radio sessions over a REST API.
type Server struct {
	echo  *echo.Echo
	radio *radio.Manager
	opts  Options
}

func New(manager *radio.Manager, opts Options) *Server {
	s := &Server{
		echo:  echo.New(),
		radio: manager,
		opts:  opts,
	}
	s.echo.HideBanner = true
	s.routes()
	return s
}

func (s *Server) routes() {
	s.echo.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: "method=${method}, uri=${uri}, status=${status}\n",
	}))
	s.echo.Use(middleware.Recover())

	router := s.echo.Group("/api")
	router.GET("/health", s.health)
	router.POST("/login", s.login)

	guild := router.Group("/guilds/:guild")
	if s.opts.JWTSecret != "" {
		guild.Use(middleware.JWTWithConfig(middleware.JWTConfig{
			SigningKey:    []byte(s.opts.JWTSecret),
			SigningMethod: middleware.AlgorithmHS256,
		}))
	}
	{
		guild.GET("/stations", s.listStations)
		guild.POST("/stations", s.addStation)
		guild.DELETE("/stations", s.deleteAllStations)
		guild.PUT("/stations/:index", s.updateStation)
		guild.DELETE("/stations/:index", s.deleteStation)
		guild.POST("/stations/:index/favorite", s.toggleFavorite)
		guild.POST("/stations/:index/play", s.playStation)

		guild.POST("/playback/stop", s.stop)
		guild.POST("/playback/pause", s.pause)
		guild.POST("/playback/resume", s.resume)
		guild.POST("/playback/next", s.next)
		guild.POST("/playback/previous", s.previous)

		guild.PUT("/settings/volume", s.setVolume)
		guild.POST("/settings/mute", s.toggleMute)
		guild.POST("/settings/theme", s.toggleTheme)
		guild.PUT("/sleep", s.setSleepTimer)
		guild.DELETE("/sleep", s.clearSleepTimer)

		guild.GET("/export", s.export)
		guild.POST("/import", s.importStations)
		guild.GET("/status", s.status)
	}
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start blocks serving on opts.Addr until Shutdown is called.
func (s *Server) Start() error {
	err := s.echo.Start(s.opts.Addr)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "ok",
		"playing": s.radio.Playing(),
	})
}

func (s *Server) login(c echo.Context) error {
	if s.opts.JWTSecret == "" {
		return echo.NewHTTPError(http.StatusNotFound, "login is disabled")
	}

	form := struct {
		Password string `json:"password" form:"password"`
	}{}
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing password")
	}
	if subtle.ConstantTimeCompare([]byte(form.Password), []byte(s.opts.AdminPassword)) != 1 {
		return echo.ErrUnauthorized
	}

	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["sub"] = "admin"
	claims["exp"] = time.Now().Add(tokenTTL).Unix()
	signed, err := token.SignedString([]byte(s.opts.JWTSecret))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token": signed,
	})
}
