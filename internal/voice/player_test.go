package voice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
)

// fakeFfmpeg writes a script that logs each start, emits an Opus header and a
// few audio pages, then stays alive like a live stream.
func fakeFfmpeg(t *testing.T) (path string, runs func() int) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("needs a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("needs a POSIX shell")
	}

	dir := t.TempDir()
	var pages bytes.Buffer
	pages.Write(buildPage(0x02, []byte("OpusHead\x01\x02")))
	for i := 0; i < 5; i++ {
		pages.Write(buildPage(0, []byte{byte(i), 1, 2}))
	}
	pagesPath := filepath.Join(dir, "pages.ogg")
	if err := os.WriteFile(pagesPath, pages.Bytes(), 0o644); err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	runsPath := filepath.Join(dir, "runs")
	script := fmt.Sprintf("#!/bin/sh\necho run >> '%s'\ncat '%s'\nexec sleep 30\n", runsPath, pagesPath)
	path = filepath.Join(dir, "ffmpeg")
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	return path, func() int {
		raw, err := os.ReadFile(runsPath)
		if err != nil {
			return 0
		}
		return strings.Count(string(raw), "run")
	}
}

func connectedPlayer(t *testing.T, ffmpeg string) *Player {
	t.Helper()
	p := newPlayer("1", 5*time.Second)
	p.ffmpeg = ffmpeg
	p.vc = &discordgo.VoiceConnection{OpusSend: make(chan []byte, 1024)}
	t.Cleanup(p.haltStream)
	return p
}

func streamLive(p *Player) bool {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

func TestPlayer_PlayWithoutVoiceConnection(t *testing.T) {
	uut := NewManager(0).Get("1")

	err := uut.Play(context.Background(), "https://radio.example/stream")

	if !errors.Is(err, ErrVoiceNotConnected) {
		t.Errorf("Expected ErrVoiceNotConnected, got %v", err)
	}
	if uut.IsPlaying() {
		t.Errorf("Expected player not to be playing")
	}
}

func TestPlayer_PauseAndResumeWhenIdle(t *testing.T) {
	uut := NewManager(0).Get("1")

	if err := uut.Pause(); !errors.Is(err, ErrNotPlaying) {
		t.Errorf("Expected ErrNotPlaying, got %v", err)
	}
	if err := uut.Resume(); !errors.Is(err, ErrNotPaused) {
		t.Errorf("Expected ErrNotPaused, got %v", err)
	}
}

func TestManager_GetReturnsSamePlayer(t *testing.T) {
	uut := NewManager(0)

	if uut.Get("1") != uut.Get("1") {
		t.Errorf("Expected one player per guild")
	}
	if uut.Get("1") == uut.Get("2") {
		t.Errorf("Expected separate players for separate guilds")
	}
}

func TestFfmpegArgs_VolumeFilter(t *testing.T) {
	args := ffmpegArgs("https://radio.example/stream", 0.5)

	found := false
	for i, arg := range args {
		if arg == "-af" && i+1 < len(args) && args[i+1] == "volume=0.50" {
			found = true
		}
	}
	if !found {
		t.Errorf("Expected volume filter in %v", args)
	}
	if args[len(args)-1] != "pipe:1" {
		t.Errorf("Expected output to stdout, got %s", args[len(args)-1])
	}
}

func TestPlayer_ConcurrentPlayKeepsLastStreamAlive(t *testing.T) {
	ffmpeg, _ := fakeFfmpeg(t)
	uut := connectedPlayer(t, ffmpeg)

	for round := 0; round < 20; round++ {
		// given
		start := make(chan struct{})
		errs := make([]error, 2)
		var wg sync.WaitGroup
		for n := range errs {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				<-start
				errs[n] = uut.Play(context.Background(), fmt.Sprintf("https://radio.example/%d", n))
			}(n)
		}

		// when
		close(start)
		wg.Wait()

		// then
		if errs[0] != nil && errs[1] != nil {
			t.Fatalf("Expected at least one Play to succeed in round %d, got %v", round, errs)
		}
		if !uut.IsPlaying() {
			t.Fatalf("Expected player to be playing after round %d", round)
		}
		if !streamLive(uut) {
			t.Fatalf("Expected a live stream after round %d", round)
		}
	}
}

func TestPlayer_VolumeChangeBeforePlayDoesNotRestart(t *testing.T) {
	// given
	ffmpeg, runs := fakeFfmpeg(t)
	uut := connectedPlayer(t, ffmpeg)
	if err := uut.Play(context.Background(), "https://radio.example/a"); err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	time.Sleep(300 * time.Millisecond)

	// when
	uut.SetVolume(0.5)
	if err := uut.Play(context.Background(), "https://radio.example/b"); err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	time.Sleep(300 * time.Millisecond)

	// then
	if got := runs(); got != 2 {
		t.Errorf("Expected ffmpeg to start twice, started %d times", got)
	}
	if !streamLive(uut) {
		t.Errorf("Expected the second stream to be live")
	}
}
