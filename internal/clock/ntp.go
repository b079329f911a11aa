package clock

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/beevik/ntp"
)

// DriftCheck compares the local clock against an NTP server.
type DriftCheck struct {
	Server    string
	MaxOffset time.Duration
	Logger    *slog.Logger

	// query is ntp.Query unless replaced in tests.
	query func(host string) (*ntp.Response, error)
}

// Check queries the server once. It returns the measured offset and logs a
// warning when its magnitude exceeds MaxOffset. A server that cannot be
// reached is reported as an error; callers usually log it and continue.
func (d *DriftCheck) Check() (time.Duration, error) {
	query := d.query
	if query == nil {
		query = ntp.Query
	}
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}

	resp, err := query(d.Server)
	if err != nil {
		return 0, fmt.Errorf("ntp query %s: %w", d.Server, err)
	}

	offset := resp.ClockOffset
	if abs(offset) > d.MaxOffset {
		logger.Warn("clock offset detected", "server", d.Server, "offset", offset, "max", d.MaxOffset)
	} else {
		logger.Debug("clock offset within bounds", "server", d.Server, "offset", offset)
	}
	return offset, nil
}

func abs(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
