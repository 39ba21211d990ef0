package voice

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
)

var (
	ErrNoVoiceChannel    = errors.New("user is not in a voice channel")
	ErrVoiceNotConnected = errors.New("voice connection not established")
	ErrNotPlaying        = errors.New("nothing is playing")
	ErrNotPaused         = errors.New("playback is not paused")
	ErrStartTimeout      = errors.New("stream did not start in time")

	errRestart = errors.New("stream restart requested")
)

const (
	defaultStartTimeout = 15 * time.Second
	frameDuration       = 20 * time.Millisecond
)

// Player streams one radio station at a time into a guild voice connection.
type Player struct {
	guildID      string
	startTimeout time.Duration
	ffmpeg       string

	// playMu serializes Play, Pause, Resume and Stop.
	playMu sync.Mutex

	mu       sync.Mutex
	vc       *discordgo.VoiceConnection
	url      string
	volume   float64
	paused   bool
	playing  bool
	cancel   context.CancelFunc
	done     chan struct{}
	restartC chan struct{}
}

func newPlayer(guildID string, startTimeout time.Duration) *Player {
	if startTimeout <= 0 {
		startTimeout = defaultStartTimeout
	}
	return &Player{
		guildID:      guildID,
		startTimeout: startTimeout,
		ffmpeg:       "ffmpeg",
		volume:       1,
		restartC:     make(chan struct{}, 1),
	}
}

func safeSpeaking(vc *discordgo.VoiceConnection, speaking bool) {
	if vc == nil || !vc.Ready {
		return
	}
	_ = vc.Speaking(speaking)
}

func (p *Player) HasVoiceConnection() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.vc != nil
}

// ChannelID is the voice channel the player is connected to, if any.
func (p *Player) ChannelID() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.vc == nil {
		return ""
	}
	return p.vc.ChannelID
}

func (p *Player) JoinVoice(s *discordgo.Session, channelID string) error {
	if s == nil {
		return fmt.Errorf("discord session is nil")
	}
	if channelID == "" {
		return fmt.Errorf("channel ID is empty")
	}

	vc, err := s.ChannelVoiceJoin(p.guildID, channelID, false, true)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.vc = vc
	p.mu.Unlock()
	return nil
}

// JoinUser connects to the voice channel the user is currently in.
func (p *Player) JoinUser(s *discordgo.Session, userID string) error {
	channelID, err := findUserVoiceChannel(s, p.guildID, userID)
	if err != nil {
		return err
	}
	if p.ChannelID() == channelID {
		return nil
	}
	return p.JoinVoice(s, channelID)
}

// Play replaces whatever is streaming with url and returns once the first
// audio page came out of ffmpeg, or with the reason it never did.
func (p *Player) Play(ctx context.Context, url string) error {
	p.playMu.Lock()
	defer p.playMu.Unlock()
	return p.play(ctx, url)
}

func (p *Player) play(ctx context.Context, url string) error {
	p.haltStream()

	// a volume change made before this call is already in the new filter
	select {
	case <-p.restartC:
	default:
	}

	p.mu.Lock()
	vc := p.vc
	if vc == nil {
		p.mu.Unlock()
		return ErrVoiceNotConnected
	}
	streamCtx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	p.url = url
	p.paused = false
	p.playing = true
	p.cancel = cancel
	p.done = done
	p.mu.Unlock()

	started := make(chan error, 1)
	go p.run(streamCtx, vc, url, started, done)

	timer := time.NewTimer(p.startTimeout)
	defer timer.Stop()

	var err error
	select {
	case err = <-started:
	case <-ctx.Done():
		err = ctx.Err()
	case <-timer.C:
		err = ErrStartTimeout
	}
	if err != nil {
		cancel()
		<-done
		p.mu.Lock()
		if p.done == done {
			p.cancel = nil
			p.playing = false
		}
		p.mu.Unlock()
	}
	return err
}

func (p *Player) run(ctx context.Context, vc *discordgo.VoiceConnection, url string, started chan<- error, done chan struct{}) {
	defer close(done)

	var once sync.Once
	signal := func(err error) {
		once.Do(func() { started <- err })
	}

	for {
		err := p.stream(ctx, vc, url, func() { signal(nil) })
		if errors.Is(err, errRestart) {
			continue
		}
		if err == nil {
			err = io.EOF
		}
		signal(err)
		break
	}

	p.mu.Lock()
	if p.done == done {
		p.playing = false
	}
	p.mu.Unlock()
}

// Stop ends the stream and leaves the voice channel.
func (p *Player) Stop() {
	p.playMu.Lock()
	defer p.playMu.Unlock()

	p.haltStream()

	p.mu.Lock()
	defer p.mu.Unlock()

	p.url = ""
	p.paused = false
	p.playing = false
	if p.vc != nil {
		_ = p.vc.Disconnect()
		p.vc = nil
	}
}

// Pause drops the live stream but remembers the station so Resume can
// reconnect to it.
func (p *Player) Pause() error {
	p.playMu.Lock()
	defer p.playMu.Unlock()

	p.mu.Lock()
	if !p.playing || p.paused {
		p.mu.Unlock()
		return ErrNotPlaying
	}
	p.paused = true
	p.mu.Unlock()

	p.haltStream()
	return nil
}

func (p *Player) Resume() error {
	p.playMu.Lock()
	defer p.playMu.Unlock()

	p.mu.Lock()
	paused, url := p.paused, p.url
	p.mu.Unlock()

	if !paused || url == "" {
		return ErrNotPaused
	}
	return p.play(context.Background(), url)
}

func (p *Player) IsPlaying() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing && !p.paused
}

// SetVolume takes effect by restarting ffmpeg with the new filter.
func (p *Player) SetVolume(volume float64) {
	p.mu.Lock()
	changed := p.volume != volume
	p.volume = volume
	streaming := p.playing && !p.paused
	p.mu.Unlock()

	if changed && streaming {
		select {
		case p.restartC <- struct{}{}:
		default:
		}
	}
}

func (p *Player) haltStream() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func ffmpegArgs(url string, volume float64) []string {
	return []string{
		"-reconnect", "1",
		"-reconnect_streamed", "1",
		"-reconnect_delay_max", "5",
		"-i", url,
		"-vn",
		"-af", fmt.Sprintf("volume=%.2f", volume),
		"-c:a", "libopus",
		"-ar", "48000",
		"-ac", "2",
		"-b:a", "96k",
		"-vbr", "on",
		"-frame_duration", "20",
		"-application", "audio",
		"-f", "ogg",
		"-loglevel", "warning",
		"pipe:1",
	}
}

func (p *Player) stream(ctx context.Context, vc *discordgo.VoiceConnection, url string, onAudio func()) error {
	p.mu.Lock()
	volume, binary := p.volume, p.ffmpeg
	p.mu.Unlock()

	ffmpegCtx, ffmpegCancel := context.WithCancel(ctx)
	defer ffmpegCancel()

	cmd := exec.CommandContext(ffmpegCtx, binary, ffmpegArgs(url, volume)...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create ffmpeg stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create ffmpeg stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	var lastLine string
	var stderrMu sync.Mutex
	go func() {
		scanner := bufio.NewScanner(stderr)
		for scanner.Scan() {
			stderrMu.Lock()
			lastLine = strings.TrimSpace(scanner.Text())
			stderrMu.Unlock()
		}
	}()

	defer func() {
		ffmpegCancel()
		_ = cmd.Wait()
	}()

	safeSpeaking(vc, true)
	defer safeSpeaking(vc, false)

	err = p.sendOpus(ctx, newOggReader(stdout), vc, onAudio)
	if err != nil && !errors.Is(err, errRestart) {
		stderrMu.Lock()
		if lastLine != "" {
			err = fmt.Errorf("%w (ffmpeg: %s)", err, lastLine)
		}
		stderrMu.Unlock()
	}
	return err
}

func (p *Player) sendOpus(ctx context.Context, reader *oggReader, vc *discordgo.VoiceConnection, onAudio func()) error {
	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()

	framesSent := 0
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-p.restartC:
			log.Printf("Restarting stream for guild %s after %d frames", p.guildID, framesSent)
			return errRestart
		default:
		}

		page, err := reader.ReadPage()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if err == io.EOF {
				log.Printf("Stream for guild %s ended after %d frames", p.guildID, framesSent)
				return io.EOF
			}
			return err
		}
		if page.isHeader {
			continue
		}
		onAudio()

		for _, packet := range page.packets {
			if len(packet) == 0 {
				continue
			}

			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}

			select {
			case vc.OpusSend <- packet:
				framesSent++
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
				log.Printf("Timeout sending opus frame %d for guild %s", framesSent, p.guildID)
			}
		}
	}
}

func findUserVoiceChannel(s *discordgo.Session, guildID string, userID string) (string, error) {
	if s == nil {
		return "", fmt.Errorf("discord session is nil")
	}

	guild := guildWithVoiceStates(s, guildID)
	if guild == nil {
		return "", fmt.Errorf("guild %s not found", guildID)
	}
	for _, vs := range guild.VoiceStates {
		if vs.UserID == userID && vs.ChannelID != "" {
			return vs.ChannelID, nil
		}
	}
	return "", ErrNoVoiceChannel
}

func guildWithVoiceStates(s *discordgo.Session, guildID string) *discordgo.Guild {
	if s.State != nil {
		if g, err := s.State.Guild(guildID); err == nil {
			return g
		}
	}
	g, err := s.Guild(guildID)
	if err != nil {
		return nil
	}
	return g
}

// AloneInChannel reports whether the bot's voice channel in the guild has no
// other members. It is false when the bot is not in a voice channel.
func AloneInChannel(s *discordgo.Session, guildID string) bool {
	if s == nil || s.State == nil || s.State.User == nil {
		return false
	}
	botID := s.State.User.ID

	guild := guildWithVoiceStates(s, guildID)
	if guild == nil {
		return false
	}

	botChannelID := ""
	for _, state := range guild.VoiceStates {
		if state.UserID == botID && state.ChannelID != "" {
			botChannelID = state.ChannelID
			break
		}
	}
	if botChannelID == "" {
		return false
	}

	for _, state := range guild.VoiceStates {
		if state.ChannelID == botChannelID && state.UserID != botID {
			return false
		}
	}
	return true
}
