// Package soundtrack loops a directory of MP3 files behind the sky, either through the local
// audio device or as raw PCM into a stream muxer.
package soundtrack

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dhowden/tag"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/go-mp3"
)

const (
	SampleRate   = 44100
	fadeDuration = 5 * time.Second
	retryDelay   = 5 * time.Second
)

// ErrNoAudio is returned by Playlist when the directory holds no MP3 files.
var ErrNoAudio = errors.New("no mp3 files found")

// TrackFunc receives the metadata of every track as it starts.
type TrackFunc func(song, artist string)

type Player struct {
	Dir string
	// Writer receives 16-bit little endian stereo PCM when set. Otherwise tracks play through
	// the local audio device.
	Writer  io.Writer
	OnTrack TrackFunc

	audioContext *audio.Context
	stopping     atomic.Bool
	stopChan     chan struct{}
	stoppedChan  chan struct{}
}

func NewPlayer(dir string, w io.Writer, onTrack TrackFunc) *Player {
	return &Player{
		Dir:         dir,
		Writer:      w,
		OnTrack:     onTrack,
		stopChan:    make(chan struct{}),
		stoppedChan: make(chan struct{}),
	}
}

// Playlist lists every MP3 below dir.
func Playlist(dir string) ([]string, error) {
	var tracks []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(d.Name()), ".mp3") {
			tracks = append(tracks, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("reading audio directory: %w", err)
	}
	if len(tracks) == 0 {
		return nil, ErrNoAudio
	}
	return tracks, nil
}

// Start plays random tracks until Shutdown.
func (p *Player) Start() {
	go func() {
		defer close(p.stoppedChan)
		for !p.stopping.Load() {
			tracks, err := Playlist(p.Dir)
			if err == nil {
				path := tracks[rand.Intn(len(tracks))]
				err = p.playTrack(path)
				if err != nil {
					err = fmt.Errorf("playing %s: %w", path, err)
				}
			}
			if err != nil {
				log.Printf("[soundtrack] %v", err)
				select {
				case <-time.After(retryDelay):
				case <-p.stopChan:
					return
				}
			}
		}
	}()
}

// Shutdown fades the current track out and waits for the player goroutine.
func (p *Player) Shutdown() {
	log.Println("[soundtrack] Shutting down with fade-out...")
	p.stopping.Store(true)
	close(p.stopChan)
	<-p.stoppedChan
	log.Println("[soundtrack] Stopped.")
}

// trackTitle prefers tag metadata and falls back to "Song - Artist" file names.
func trackTitle(path string, m tag.Metadata) (song, artist string) {
	if m != nil {
		song, artist = m.Title(), m.Artist()
	}
	if song != "" {
		return song, artist
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if parts := strings.SplitN(name, " - ", 2); len(parts) == 2 {
		return parts[0], parts[1]
	}
	return name, ""
}

// fadeVolume is the gain for a track with remaining playback left, stopped stopElapsed ago
// (zero when not stopping). It ramps down over the last fadeDuration of either.
func fadeVolume(remaining time.Duration, stopping bool, stopElapsed time.Duration) float64 {
	vol := 1.0
	if remaining <= fadeDuration {
		vol = float64(remaining) / float64(fadeDuration)
	}
	if stopping {
		if sv := 1 - float64(stopElapsed)/float64(fadeDuration); sv < vol {
			vol = sv
		}
	}
	return max(vol, 0)
}

// applyGain scales 16-bit little endian samples in place.
func applyGain(buf []byte, vol float64) {
	if vol >= 1 {
		return
	}
	for i := 0; i+1 < len(buf); i += 2 {
		sample := int16(binary.LittleEndian.Uint16(buf[i:]))
		binary.LittleEndian.PutUint16(buf[i:], uint16(int16(float64(sample)*vol)))
	}
}

func (p *Player) playTrack(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	m, _ := tag.ReadFrom(f)
	song, artist := trackTitle(path, m)
	if p.OnTrack != nil {
		p.OnTrack(song, artist)
	}

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	d, err := mp3.NewDecoder(f)
	if err != nil {
		return err
	}
	duration := time.Duration(d.Length()) * time.Second / time.Duration(d.SampleRate()*4)

	if p.Writer != nil {
		return p.streamTrack(path, d, duration)
	}
	return p.playLocal(path, d, duration)
}

func (p *Player) streamTrack(path string, d *mp3.Decoder, duration time.Duration) error {
	log.Printf("[soundtrack] Streaming: %s", path)
	buf := make([]byte, 8192)
	start := time.Now()
	var stoppingAt time.Time
	for {
		if p.stopping.Load() && stoppingAt.IsZero() {
			stoppingAt = time.Now()
		}
		n, err := d.Read(buf)
		if n > 0 {
			vol := fadeVolume(duration-time.Since(start), !stoppingAt.IsZero(), time.Since(stoppingAt))
			if !stoppingAt.IsZero() && vol <= 0 {
				return nil
			}
			applyGain(buf[:n], vol)
			if _, werr := p.Writer.Write(buf[:n]); werr != nil {
				return fmt.Errorf("stream write: %w", werr)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

func (p *Player) playLocal(path string, d *mp3.Decoder, duration time.Duration) error {
	if p.audioContext == nil {
		p.audioContext = audio.NewContext(SampleRate)
	}
	player, err := p.audioContext.NewPlayer(d)
	if err != nil {
		return err
	}
	defer player.Close()
	player.Play()
	log.Printf("[soundtrack] Playing: %s", path)

	start := time.Now()
	var stoppingAt time.Time
	for player.IsPlaying() {
		if p.stopping.Load() && stoppingAt.IsZero() {
			stoppingAt = time.Now()
		}
		remaining := duration - time.Since(start)
		vol := fadeVolume(remaining, !stoppingAt.IsZero(), time.Since(stoppingAt))
		player.SetVolume(vol)
		if remaining <= 0 || (!stoppingAt.IsZero() && vol <= 0) {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	return nil
}
