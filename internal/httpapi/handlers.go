package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/hxnx/radiowave/internal/radio"
	"github.com/hxnx/radiowave/internal/station"
	"github.com/hxnx/radiowave/internal/store"
	"github.com/hxnx/radiowave/internal/voice"
	"github.com/labstack/echo"
)

const (
	requestTimeout = 30 * time.Second
	maxImportSize  = 1 << 20
)

type stationItem struct {
	Index    int    `json:"index"`
	ID       string `json:"id"`
	Favorite bool   `json:"favorite"`
	Current  bool   `json:"current"`
	station.Station
}

type statusResponse struct {
	Stations      int              `json:"stations"`
	Current       *int             `json:"current"`
	Station       *station.Station `json:"station,omitempty"`
	Playing       bool             `json:"playing"`
	Volume        float64          `json:"volume"`
	Muted         bool             `json:"muted"`
	DarkMode      bool             `json:"darkMode"`
	SleepDeadline *time.Time       `json:"sleepDeadline"`
}

// statusFor maps session errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, station.ErrValidation), errors.Is(err, station.ErrFormat), errors.Is(err, store.ErrOwnerRequired):
		return http.StatusBadRequest
	case errors.Is(err, station.ErrIndex):
		return http.StatusNotFound
	case errors.Is(err, radio.ErrCancelled), errors.Is(err, radio.ErrNothingToDelete), errors.Is(err, radio.ErrNoStations):
		return http.StatusConflict
	case errors.Is(err, radio.ErrPlayerNil), errors.Is(err, voice.ErrVoiceNotConnected),
		errors.Is(err, voice.ErrNotPlaying), errors.Is(err, voice.ErrNotPaused):
		return http.StatusConflict
	case errors.Is(err, radio.ErrPlaybackFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func fail(err error) error {
	return echo.NewHTTPError(statusFor(err), err.Error())
}

func requestContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

func (s *Server) session(c echo.Context) (*radio.Session, error) {
	ctx, cancel := requestContext(c)
	defer cancel()

	session, err := s.radio.Session(ctx, c.Param("guild"))
	if err != nil {
		return nil, fail(err)
	}
	return session, nil
}

func indexParam(c echo.Context) (int, error) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid station index")
	}
	return index, nil
}

// confirmer answers prompts from the confirm query parameter, so destructive
// calls must opt in with confirm=true.
func confirmer(c echo.Context) radio.Confirmer {
	if ok, _ := strconv.ParseBool(c.QueryParam("confirm")); ok {
		return radio.StaticConfirmer(radio.Confirmed)
	}
	return radio.StaticConfirmer(radio.Undecided)
}

func (s *Server) listStations(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return err
	}

	tab, err := station.ParseTab(c.QueryParam("tab"))
	if err != nil {
		return fail(err)
	}

	view := session.View(tab, c.QueryParam("q"))
	items := make([]stationItem, 0, len(view))
	for _, item := range view {
		items = append(items, stationItem{
			Index:    item.Index,
			ID:       item.ID,
			Favorite: item.Favorite,
			Current:  item.Current,
			Station:  item.Station,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"stations": items,
	})
}

func (s *Server) addStation(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return err
	}

	var st station.Station
	if err := c.Bind(&st); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid station body")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	index, err := session.Add(ctx, st)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"index": index,
	})
}

func (s *Server) updateStation(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return err
	}
	index, err := indexParam(c)
	if err != nil {
		return err
	}

	var st station.Station
	if err := c.Bind(&st); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid station body")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := session.Update(ctx, index, st); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) deleteStation(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return err
	}
	index, err := indexParam(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	deleted, err := session.Delete(ctx, index, confirmer(c))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"deleted": deleted,
	})
}

func (s *Server) deleteAllStations(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := session.DeleteAll(ctx, confirmer(c)); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) toggleFavorite(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return err
	}
	index, err := indexParam(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	favorite, err := session.ToggleFavorite(ctx, index)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"favorite": favorite,
	})
}

func (s *Server) playStation(c echo.Context) error {
	index, err := indexParam(c)
	if err != nil {
		return err
	}
	return s.play(c, func(ctx context.Context, session *radio.Session) (station.Station, error) {
		return session.Play(ctx, index)
	})
}

func (s *Server) next(c echo.Context) error {
	return s.play(c, func(ctx context.Context, session *radio.Session) (station.Station, error) {
		return session.Next(ctx)
	})
}

func (s *Server) previous(c echo.Context) error {
	return s.play(c, func(ctx context.Context, session *radio.Session) (station.Station, error) {
		return session.Previous(ctx)
	})
}

func (s *Server) play(c echo.Context, play func(context.Context, *radio.Session) (station.Station, error)) error {
	session, err := s.session(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	played, err := play(ctx, session)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"playing": played,
	})
}

func (s *Server) stop(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return err
	}
	session.Stop()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) pause(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return err
	}
	if err := session.Pause(); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) resume(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return err
	}
	if err := session.Resume(); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) setVolume(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return err
	}

	form := struct {
		Volume *float64 `json:"volume" form:"volume"`
	}{}
	if err := c.Bind(&form); err != nil || form.Volume == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "missing volume")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	return c.JSON(http.StatusOK, echo.Map{
		"volume": session.SetVolume(ctx, *form.Volume),
	})
}

func (s *Server) toggleMute(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"muted": session.ToggleMute(),
	})
}

func (s *Server) toggleTheme(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	return c.JSON(http.StatusOK, echo.Map{
		"darkMode": session.ToggleDarkMode(ctx),
	})
}

func (s *Server) setSleepTimer(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return err
	}

	form := struct {
		Hours   int `json:"hours" form:"hours"`
		Minutes int `json:"minutes" form:"minutes"`
	}{}
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid sleep timer body")
	}

	deadline := session.SetSleepTimer(form.Hours, form.Minutes)
	if deadline.IsZero() {
		return c.JSON(http.StatusOK, echo.Map{"deadline": nil})
	}
	return c.JSON(http.StatusOK, echo.Map{"deadline": deadline})
}

func (s *Server) clearSleepTimer(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return err
	}
	session.ClearSleepTimer()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) export(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return err
	}

	data, err := session.Export().MarshalIndent()
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="radiowave-stations.json"`)
	return c.JSONBlob(http.StatusOK, data)
}

func (s *Server) importStations(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return err
	}

	mode, err := station.ParseImportMode(c.QueryParam("mode"))
	if err != nil {
		return fail(err)
	}

	data, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, maxImportSize))
	if err != nil {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, fmt.Sprintf("import body: %v", err))
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	count, err := session.ImportMode(ctx, data, mode)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"mode":     mode,
		"imported": count,
	})
}

func (s *Server) status(c echo.Context) error {
	session, err := s.session(c)
	if err != nil {
		return err
	}

	st := session.Status()
	resp := statusResponse{
		Stations: st.Stations,
		Playing:  st.Playing,
		Volume:   st.Volume,
		Muted:    st.Muted,
		DarkMode: st.DarkMode,
	}
	if st.HasCurrent {
		current, playing := st.Current, st.Station
		resp.Current, resp.Station = &current, &playing
	}
	if !st.SleepDeadline.IsZero() {
		deadline := st.SleepDeadline
		resp.SleepDeadline = &deadline
	}
	return c.JSON(http.StatusOK, resp)
}
