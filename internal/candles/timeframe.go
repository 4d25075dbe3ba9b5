package candles

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"binance-strategy-bot-go/internal/models"
	"github.com/xhit/go-str2duration/v2"
)

const month = 30 * 24 * time.Hour

// TimeframeDuration converts an exchange timeframe such as "5m", "4h", "1d",
// "1w" or "1M" into the duration of one candle.
func TimeframeDuration(timeframe string) (time.Duration, error) {
	tf := strings.TrimSpace(timeframe)
	if tf == "" {
		return 0, fmt.Errorf("%w: empty timeframe", models.ErrInvalidConfiguration)
	}

	// str2duration reads "m" as minutes, so months are handled here.
	if strings.HasSuffix(tf, "M") {
		n, err := strconv.Atoi(strings.TrimSuffix(tf, "M"))
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("%w: timeframe %q", models.ErrInvalidConfiguration, timeframe)
		}
		return time.Duration(n) * month, nil
	}

	d, err := str2duration.ParseDuration(tf)
	if err != nil {
		return 0, fmt.Errorf("%w: timeframe %q: %v", models.ErrInvalidConfiguration, timeframe, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%w: timeframe %q is not positive", models.ErrInvalidConfiguration, timeframe)
	}
	return d, nil
}
