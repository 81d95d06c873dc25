package browser

import (
	"context"
	"net/url"
	"strconv"

	"github.com/go-rod/rod"
)

// Session is a launched browser process with a connected control client.
// It is only valid inside the callback passed to WithSession.
type Session interface {
	Browser() *rod.Browser
	ControlURL() string
	Port() int
}

// SessionProvider hands out scoped browser sessions.
type SessionProvider interface {
	WithSession(ctx context.Context, fn func(Session) error) error
}

type session struct {
	browser    *rod.Browser
	controlURL string
	port       int
}

func (s *session) Browser() *rod.Browser { return s.browser }
func (s *session) ControlURL() string    { return s.controlURL }
func (s *session) Port() int             { return s.port }

// debuggingPort extracts the port from a DevTools websocket URL such as
// ws://127.0.0.1:9222/devtools/browser/<id>.
func debuggingPort(controlURL string) (int, error) {
	u, err := url.Parse(controlURL)
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(u.Port())
}
