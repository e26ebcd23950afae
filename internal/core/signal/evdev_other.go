//go:build !linux

package signal

import (
	"context"
	"fmt"

	"github.com/Lin-Jiong-HDU/execguard/internal/core/security"
)

func (s *EvdevSource) run(ctx context.Context) error {
	return fmt.Errorf("%w: evdev input requires linux", security.ErrSignalSourceUnavailable)
}
