package cli

import (
	"bufio"
	"context"
	"io"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/client"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
)

// sessionStore is the part of *session.Store the commands use.
type sessionStore interface {
	Save(ctx context.Context, s *session.Session) error
	Load(ctx context.Context) (*session.Session, error)
	Clear(ctx context.Context) error
	Close() error
}

type App struct {
	api      client.Client
	sessions sessionStore
	reader   *bufio.Reader
	out      io.Writer
	now      func() time.Time
}

func NewApp(api client.Client, sessions sessionStore, in io.Reader, out io.Writer) *App {
	return &App{
		api:      api,
		sessions: sessions,
		reader:   bufio.NewReader(in),
		out:      out,
		now:      time.Now,
	}
}

// Close releases the session database and, for clients holding a
// connection, the connection.
func (a *App) Close() error {
	err := a.sessions.Close()
	if c, ok := a.api.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// askIfEmpty returns v, or prompts for it when v is empty.
func (a *App) askIfEmpty(v, prompt string) (string, error) {
	if v != "" {
		return v, nil
	}
	return getSimpleText(a.reader, prompt, a.out)
}
