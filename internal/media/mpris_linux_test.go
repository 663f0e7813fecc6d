//go:build linux

package media

import (
	"errors"
	"testing"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/rs/zerolog"
)

type recordedCommand struct {
	cmd Command
	arg time.Duration
}

func newTestSession(t *testing.T) (*MPRISSession, *[]recordedCommand) {
	t.Helper()
	var got []recordedCommand
	s := newMPRISSession(nil, zerolog.Nop())
	s.SetCommandHandler(CommandHandlerFunc(func(cmd Command, arg time.Duration) error {
		got = append(got, recordedCommand{cmd, arg})
		return nil
	}))
	return s, &got
}

func TestMPRISDispatchesCommands(t *testing.T) {
	s, got := newTestSession(t)

	s.Play()
	s.PlayPause()
	s.Stop()
	s.Seek(-5_000_000)
	s.SetPosition(mprisTrackID, 30_000_000)

	want := []recordedCommand{
		{CmdPlay, 0},
		{CmdPlayPause, 0},
		{CmdStop, 0},
		{CmdSeek, -5 * time.Second},
		{CmdSetPosition, 30 * time.Second},
	}
	if len(*got) != len(want) {
		t.Fatalf("Expected %d commands, got %d", len(want), len(*got))
	}
	for i, w := range want {
		if (*got)[i] != w {
			t.Errorf("Command %d: expected %+v, got %+v", i, w, (*got)[i])
		}
	}
}

func TestMPRISIgnoresStaleTrackID(t *testing.T) {
	s, got := newTestSession(t)

	s.SetPosition(dbus.ObjectPath("/org/badbrowser/video/0"), 1_000_000)
	if len(*got) != 0 {
		t.Errorf("Expected no command, got %+v", *got)
	}
}

func TestMPRISHandlerErrorIsReturned(t *testing.T) {
	s := newMPRISSession(nil, zerolog.Nop())
	s.SetCommandHandler(CommandHandlerFunc(func(Command, time.Duration) error {
		return errors.New("bus closed")
	}))

	if err := s.Pause(); err == nil {
		t.Error("Expected D-Bus error from failing handler")
	}
}

func TestMetadataMap(t *testing.T) {
	m := metadataMap(Metadata{Title: "Bad Apple!!", Duration: 219 * time.Second, Path: "/v/bad_apple.mp4"})

	if m["xesam:title"].Value() != "Bad Apple!!" {
		t.Errorf("Expected title, got %v", m["xesam:title"].Value())
	}
	if m["mpris:length"].Value() != int64(219_000_000) {
		t.Errorf("Expected length in microseconds, got %v", m["mpris:length"].Value())
	}
	if m["xesam:url"].Value() != "file:///v/bad_apple.mp4" {
		t.Errorf("Expected file url, got %v", m["xesam:url"].Value())
	}
	if _, ok := m["xesam:artist"]; ok {
		t.Error("Expected no artist for empty metadata field")
	}
}

func TestGetProperties(t *testing.T) {
	s := newMPRISSession(nil, zerolog.Nop())

	v, err := s.Get(mprisInterface, "Identity")
	if err != nil || v.Value() != mprisIdentity {
		t.Errorf("Expected identity %q, got %v (%v)", mprisIdentity, v.Value(), err)
	}

	v, err = s.Get(mprisPlayerInterface, "PlaybackStatus")
	if err != nil || v.Value() != "Stopped" {
		t.Errorf("Expected Stopped, got %v (%v)", v.Value(), err)
	}

	if _, err := s.Get(mprisPlayerInterface, "Shuffle"); err == nil {
		t.Error("Expected error for unsupported property")
	}
	if _, err := s.GetAll("org.example.Nope"); err == nil {
		t.Error("Expected error for unknown interface")
	}
}

func TestPositionFrozenWhenPaused(t *testing.T) {
	s := newMPRISSession(nil, zerolog.Nop())
	s.state = StatePaused
	s.position = 12 * time.Second
	s.updatedAt = time.Now().Add(-time.Hour)

	if got := s.currentPosition(); got != 12*time.Second {
		t.Errorf("Expected 12s, got %v", got)
	}
}
