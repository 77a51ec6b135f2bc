//go:build linux

package keyboard

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/unix"
	"k8s.io/apimachinery/pkg/util/sets"

	"texpand/internal/engine"
)

// inputEvent matches the Linux input_event struct.
type inputEvent struct {
	Time  unix.Timeval
	Type  uint16
	Code  uint16
	Value int32
}

const evKey = 1

// EvdevSource reads key presses from every keyboard under /dev/input.
type EvdevSource struct {
	mu      sync.Mutex
	files   []*os.File
	events  chan engine.Event
	wg      sync.WaitGroup
	running bool
}

func NewSource() (Source, error) {
	return &EvdevSource{}, nil
}

// findKeyboardDevices lists event nodes whose handlers include kbd.
func findKeyboardDevices() ([]string, error) {
	f, err := os.Open("/proc/bus/input/devices")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return parseDeviceList(f)
}

func parseDeviceList(r io.Reader) ([]string, error) {
	found := sets.New[string]()
	var handler string
	isKeyboard := false

	flush := func() {
		if isKeyboard && handler != "" {
			found.Insert(handler)
		}
		handler, isKeyboard = "", false
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			flush()
			continue
		}
		if !strings.HasPrefix(line, "H: Handlers=") {
			continue
		}
		for _, part := range strings.Fields(strings.TrimPrefix(line, "H: Handlers=")) {
			switch {
			case part == "kbd":
				isKeyboard = true
			case strings.HasPrefix(part, "event"):
				handler = "/dev/input/" + part
			}
		}
	}
	flush()
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	matches, _ := filepath.Glob("/dev/input/by-id/*-event-kbd")
	for _, m := range matches {
		if target, err := filepath.EvalSymlinks(m); err == nil {
			found.Insert(target)
		}
	}

	devices := found.UnsortedList()
	sort.Strings(devices)
	return devices, nil
}

// Start opens every keyboard it can read. It fails only when none can be
// opened.
func (s *EvdevSource) Start(ctx context.Context) (<-chan engine.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil, ErrAlreadyRunning
	}

	devices, err := findKeyboardDevices()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotAvailable, err)
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("%w: no keyboard devices found", ErrNotAvailable)
	}

	var denied bool
	for _, dev := range devices {
		f, err := os.OpenFile(dev, os.O_RDONLY, 0)
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				denied = true
			}
			log.Debug().Err(err).Str("device", dev).Msg("Cannot open keyboard device")
			continue
		}
		s.files = append(s.files, f)
	}
	if len(s.files) == 0 {
		if denied {
			return nil, fmt.Errorf("%w: need to be in the 'input' group or run as root", ErrPermissionDenied)
		}
		return nil, fmt.Errorf("%w: cannot read keyboard devices", ErrNotAvailable)
	}

	s.events = make(chan engine.Event, 64)
	s.running = true
	for _, f := range s.files {
		log.Info().Str("device", f.Name()).Msg("Listening to keyboard")
		s.wg.Add(1)
		go s.readLoop(ctx, f)
	}

	go func() {
		s.wg.Wait()
		close(s.events)
	}()
	go func() {
		<-ctx.Done()
		s.Close()
	}()

	return s.events, nil
}

func (s *EvdevSource) readLoop(ctx context.Context, f *os.File) {
	defer s.wg.Done()

	var dec Decoder
	buf := make([]byte, binary.Size(inputEvent{}))
	// Type, code and value trail the timeval.
	off := len(buf) - 8

	for {
		if _, err := io.ReadFull(f, buf); err != nil {
			if ctx.Err() == nil && !errors.Is(err, os.ErrClosed) {
				log.Warn().Err(err).Str("device", f.Name()).Msg("Keyboard device read failed")
			}
			return
		}

		typ := binary.LittleEndian.Uint16(buf[off : off+2])
		if typ != evKey {
			continue
		}
		code := binary.LittleEndian.Uint16(buf[off+2 : off+4])
		value := int32(binary.LittleEndian.Uint32(buf[off+4 : off+8]))

		ev, ok := dec.Feed(code, value)
		if !ok {
			continue
		}
		select {
		case s.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// Close releases the devices. Pending reads return and the event channel
// is closed once every reader has exited.
func (s *EvdevSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	for _, f := range s.files {
		if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			errs = append(errs, err)
		}
	}
	s.files = nil
	s.running = false
	return errors.Join(errs...)
}
