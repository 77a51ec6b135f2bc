//go:build linux

package keyboard

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"
	"unicode/utf8"

	"github.com/micmonay/keybd_event"
	"github.com/rs/zerolog/log"

	"texpand/internal/engine"
)

// uinput needs a moment before the new virtual device accepts input.
const uinputWarmup = 2 * time.Second

// UinputExecutor types corrections through a uinput virtual keyboard.
type UinputExecutor struct {
	kb keybd_event.KeyBonding
	// The evdev source observes keys without consuming them, so the
	// delimiter has already reached the application.
	delimiterDelivered bool
}

func NewExecutor() (Executor, error) {
	kb, err := keybd_event.NewKeyBonding()
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: open /dev/uinput: %v", ErrPermissionDenied, err)
		}
		return nil, fmt.Errorf("create virtual keyboard: %w", err)
	}
	time.Sleep(uinputWarmup)

	return &UinputExecutor{kb: kb, delimiterDelivered: true}, nil
}

func (u *UinputExecutor) tap(s keyStroke) error {
	u.kb.SetKeys(s.code)
	u.kb.HasSHIFT(s.shift)
	return u.kb.Launching()
}

func (u *UinputExecutor) Execute(ctx context.Context, a engine.Action) error {
	erase := a.Delete
	if u.delimiterDelivered {
		erase += utf8.RuneCountInString(a.Retype)
	}

	for i := 0; i < erase; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := u.tap(keyStroke{code: keyBackspace}); err != nil {
			return fmt.Errorf("send backspace: %w", err)
		}
	}

	return u.typeText(ctx, a.Insert+a.Retype)
}

func (u *UinputExecutor) typeText(ctx context.Context, text string) error {
	for _, r := range text {
		if err := ctx.Err(); err != nil {
			return err
		}
		s, ok := strokeFor(r)
		if !ok {
			log.Warn().Str("rune", string(r)).Msg("No key mapping for character, skipping")
			continue
		}
		if err := u.tap(s); err != nil {
			return fmt.Errorf("type %q: %w", r, err)
		}
	}
	return nil
}

func (u *UinputExecutor) Close() error {
	return nil
}
