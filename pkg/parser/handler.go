package parser

import (
	"context"
	"log/slog"
	"strings"
)

// EventFunc is called for a parse tree node when its event fires. Returning
// an error aborts the walk.
type EventFunc func(node *TreeNode) error

// Handler turns parse events into a result value.
type Handler[T any] interface {
	// Events maps "<rule>_pre_event" and "<rule>_post_event" names to callbacks.
	Events() map[string]EventFunc
	// Reset clears the state of a previous parse.
	Reset()
	// Result returns the value assembled from the fired events.
	Result() (T, error)
}

// Option configures a Parser.
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger logs every fired event at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Parser binds a compiled grammar to a handler. A Parser holds handler
// state and is not safe for concurrent use; the Grammar is.
type Parser[T any] struct {
	grammar *Grammar
	handler Handler[T]
	events  map[string]EventFunc
	logger  *slog.Logger
}

// NewParser checks that every event of h names a rule of g.
func NewParser[T any](g *Grammar, h Handler[T], opts ...Option) (*Parser[T], error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	events := h.Events()
	for name := range events {
		var rule string
		switch {
		case strings.HasSuffix(name, preEventSuffix):
			rule = strings.TrimSuffix(name, preEventSuffix)
		case strings.HasSuffix(name, postEventSuffix):
			rule = strings.TrimSuffix(name, postEventSuffix)
		default:
			return nil, g.errorf("event '%s' does not contain the suffix '%s' or '%s'", name, preEventSuffix, postEventSuffix)
		}
		if !g.HasRule(rule) {
			return nil, g.errorf("rule '%s' in event '%s' is not present in the grammar", rule, name)
		}
	}

	return &Parser[T]{
		grammar: g,
		handler: h,
		events:  events,
		logger:  o.logger,
	}, nil
}

// Grammar returns the compiled grammar of the parser.
func (p *Parser[T]) Grammar() *Grammar {
	return p.grammar
}

// Parse parses text and returns a *ParsingError when the grammar does not
// recognize it.
func (p *Parser[T]) Parse(text string) (T, error) {
	result, ok, err := p.TryParse(text)
	if err != nil {
		return result, err
	}
	if !ok {
		return result, &ParsingError{Input: text, Grammar: p.grammar.name}
	}
	return result, nil
}

// TryParse parses text. ok is false when the grammar does not recognize
// text; err reports failures raised by the handler.
func (p *Parser[T]) TryParse(text string) (result T, ok bool, err error) {
	tree := p.grammar.parseTree(text)
	if tree == nil {
		return result, false, nil
	}

	p.handler.Reset()
	if err := p.raiseEvents(tree); err != nil {
		return result, true, err
	}
	result, err = p.handler.Result()
	return result, true, err
}

func (p *Parser[T]) raiseEvents(node *TreeNode) error {
	if node == nil {
		return nil
	}
	if node.fire {
		if err := p.handle(node.info.pre, node); err != nil {
			return err
		}
	}
	if node.left != nil {
		if err := p.raiseEvents(node.left); err != nil {
			return err
		}
		if err := p.raiseEvents(node.right); err != nil {
			return err
		}
	}
	if node.fire {
		return p.handle(node.info.post, node)
	}
	return nil
}

func (p *Parser[T]) handle(event string, node *TreeNode) error {
	fn, registered := p.events[event]
	if p.logger.Enabled(context.Background(), slog.LevelDebug) {
		p.logger.Debug("parser event",
			slog.String("event", event),
			slog.Bool("registered", registered),
			slog.String("text", node.Text()))
	}
	if !registered {
		return nil
	}
	return fn(node)
}
