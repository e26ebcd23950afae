//go:build linux

package signal

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"unsafe"

	"github.com/Lin-Jiong-HDU/execguard/internal/core/security"
	"golang.org/x/sys/unix"
)

// inputEventSize is sizeof(struct input_event): a timeval followed by
// type (u16), code (u16) and value (s32).
var inputEventSize = int(unsafe.Sizeof(unix.Timeval{})) + 8

func (s *EvdevSource) run(ctx context.Context) error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("%w: open %s: %v", security.ErrSignalSourceUnavailable, s.path, err)
	}

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			f.Close()
		case <-stop:
			f.Close()
		}
	}()

	buf := make([]byte, inputEventSize)
	for {
		if _, err := io.ReadFull(f, buf); err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			return fmt.Errorf("read %s: %w", s.path, err)
		}

		typ, code, value := decodeInputEvent(buf)
		if typ != evKey || value != keyPressed {
			continue
		}
		s.dispatch(Event{Code: code, Value: value})
	}
}

func decodeInputEvent(buf []byte) (typ, code uint16, value int32) {
	off := inputEventSize - 8
	typ = binary.NativeEndian.Uint16(buf[off:])
	code = binary.NativeEndian.Uint16(buf[off+2:])
	value = int32(binary.NativeEndian.Uint32(buf[off+4:]))
	return typ, code, value
}
