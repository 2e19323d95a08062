package bot

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode"

	telebot "gopkg.in/telebot.v3"

	"github.com/Proton-105/finance-bot/internal/bot/handlers"
	"github.com/Proton-105/finance-bot/internal/command"
)

// Router maps every command kind to its handler and wraps it with the middleware chain.
type Router struct {
	mu          sync.RWMutex
	commands    map[command.Kind]handlers.CommandHandler
	middlewares []handlers.Middleware
	log         *slog.Logger
}

// NewRouter builds a Router with an empty registry.
func NewRouter(log *slog.Logger) *Router {
	if log == nil {
		log = slog.Default()
	}

	return &Router{
		commands: make(map[command.Kind]handlers.CommandHandler),
		log:      log,
	}
}

// Register sets the handler for kind.
func (r *Router) Register(kind command.Kind, h handlers.CommandHandler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[kind] = h
}

// Use appends a middleware to the chain. The first one added runs outermost.
func (r *Router) Use(mw handlers.Middleware) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.middlewares = append(r.middlewares, mw)
}

// Validate reports every command kind without a handler.
func (r *Router) Validate() error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var missing []string
	for _, kind := range command.All() {
		if r.commands[kind] == nil {
			missing = append(missing, kind.Name())
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("no handler for commands: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Handler returns the update handler for kind: it parses the payload and runs the
// registered handler inside the middleware chain.
func (r *Router) Handler(kind command.Kind) handlers.Handler {
	r.mu.RLock()
	h := r.commands[kind]
	r.mu.RUnlock()

	final := func(c telebot.Context) error {
		if h == nil {
			r.log.Warn("no handler registered", slog.String("command", kind.Name()))
			return nil
		}

		inv, err := command.Parse(kind, payload(c))
		if err != nil {
			return err
		}
		return h(c, inv)
	}

	wrapped := r.applyMiddlewares(final)
	return func(c telebot.Context) error {
		handlers.WithCommand(c, kind)
		return wrapped(c)
	}
}

// Bind registers one telebot endpoint per command kind.
func (r *Router) Bind(tb *telebot.Bot) {
	for _, kind := range command.All() {
		tb.Handle(kind.Endpoint(), telebot.HandlerFunc(r.Handler(kind)))
	}
}

// payload returns everything after the command token. telebot's Payload stops at the
// first line break, so the arguments are taken from the full text instead.
func payload(c telebot.Context) string {
	msg := c.Message()
	if msg == nil {
		return ""
	}

	text := strings.TrimSpace(msg.Text)
	if !strings.HasPrefix(text, "/") {
		return msg.Payload
	}
	if idx := strings.IndexFunc(text, unicode.IsSpace); idx >= 0 {
		return strings.TrimSpace(text[idx:])
	}
	return ""
}

// applyMiddlewares wraps the handler with all registered middlewares.
func (r *Router) applyMiddlewares(h handlers.Handler) handlers.Handler {
	r.mu.RLock()
	middlewares := make([]handlers.Middleware, len(r.middlewares))
	copy(middlewares, r.middlewares)
	r.mu.RUnlock()

	wrapped := h
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}

	return wrapped
}
