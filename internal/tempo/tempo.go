// Package tempo holds the swing tempo written by the central: how many video
// frames the back-swing and the down-swing should take.
package tempo

import (
	"strconv"
	"strings"
	"time"
)

// Config is the back-swing/down-swing frame pair. The zero value is the
// power-on tempo.
type Config struct {
	Back int // Frames from START_SWING to the top of the back-swing
	Down int // Frames from the top to impact
}

// Parse reads a "<back>/<down>" payload. It reports false when the payload
// is empty or has no '/' delimiter. Each field is read like C atoi: leading
// whitespace, an optional sign and the digits that follow, so "12abc" is 12
// and a field without digits is 0.
func Parse(payload []byte) (Config, bool) {
	s := string(payload)
	if s == "" {
		return Config{}, false
	}
	back, down, ok := strings.Cut(s, "/")
	if !ok {
		return Config{}, false
	}
	return Config{Back: atoi(back), Down: atoi(down)}, true
}

// maxField caps a field so a long digit run cannot overflow.
const maxField = 1<<31 - 1

func atoi(s string) int {
	s = strings.TrimLeft(s, " \t\n\v\f\r")

	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	n := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		d := int(s[i] - '0')
		if n > (maxField-d)/10 {
			n = maxField
			break
		}
		n = n*10 + d
	}
	if neg {
		return -n
	}
	return n
}

// Apply parses payload into c. On rejection c is left unchanged.
func (c *Config) Apply(payload []byte) bool {
	parsed, ok := Parse(payload)
	if !ok {
		return false
	}
	*c = parsed
	return true
}

// BackDelay is the time from START_SWING to TOP_BEEP.
func (c Config) BackDelay(frame time.Duration) time.Duration {
	return frames(c.Back, frame)
}

// DownDelay is the time from TOP_BEEP to IMPACT_BEEP.
func (c Config) DownDelay(frame time.Duration) time.Duration {
	return frames(c.Down, frame)
}

// Negative counts contribute no delay.
func frames(n int, frame time.Duration) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * frame
}

// String renders the canonical "back/down" form.
func (c Config) String() string {
	return strconv.Itoa(c.Back) + "/" + strconv.Itoa(c.Down)
}
