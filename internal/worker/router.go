package worker

import "fmt"

// EventHandler processes the payload of one consumed event.
type EventHandler func(data []byte) error

// Router dispatches consumed events to their handlers by event name.
type Router struct {
	handlers map[string][]EventHandler
}

func NewRouter(handlers map[string][]EventHandler) *Router {
	return &Router{
		handlers: handlers,
	}
}

func (r *Router) Handle(event string, data []byte) error {
	handlers, ok := r.handlers[event]
	if !ok {
		return fmt.Errorf("no handler registered for event %q", event)
	}

	for _, handler := range handlers {
		if err := handler(data); err != nil {
			return err
		}
	}
	return nil
}
