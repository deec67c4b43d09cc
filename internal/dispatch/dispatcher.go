package dispatch

import (
	"context"
	"fmt"
	"strings"

	"github.com/Domenick1991/flightbooking/internal/protocol"
	"github.com/Domenick1991/flightbooking/internal/session"
	"github.com/hashicorp/go-hclog"
)

// Handler answers one command. args excludes the command name.
type Handler func(ctx context.Context, sess *session.Session, args []string) protocol.Result

// Dispatcher routes decoded commands to handlers. Handlers are registered at
// startup, before Dispatch is called from connection goroutines.
type Dispatcher struct {
	handlers map[string]Handler
	log      hclog.Logger
}

func New(log hclog.Logger) *Dispatcher {
	return &Dispatcher{
		handlers: make(map[string]Handler),
		log:      log,
	}
}

// Register binds name (case-insensitive) to h. Registering a name twice panics.
func (d *Dispatcher) Register(name string, h Handler) {
	key := strings.ToUpper(name)
	if _, exists := d.handlers[key]; exists {
		panic(fmt.Sprintf("dispatch: handler %s registered twice", key))
	}
	d.handlers[key] = h
}

// Commands lists registered command names.
func (d *Dispatcher) Commands() []string {
	names := make([]string, 0, len(d.handlers))
	for name := range d.handlers {
		names = append(names, name)
	}
	return names
}

// Dispatch runs the handler for cmd. It never panics: unknown commands and
// handler panics come back as error results.
func (d *Dispatcher) Dispatch(ctx context.Context, sess *session.Session, cmd protocol.Command) (res protocol.Result) {
	h, ok := d.handlers[strings.ToUpper(cmd.Name)]
	if !ok {
		return protocol.Error("Unknown command")
	}

	defer func() {
		if r := recover(); r != nil {
			d.log.Error("handler panic", "command", cmd.Name, "session", sess.ID, "panic", r)
			res = protocol.Error(fmt.Sprint(r))
		}
	}()

	return h(ctx, sess, cmd.Args)
}
