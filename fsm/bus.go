package fsm

import (
	"errors"
	"io"
	"slices"
)

// Topic names a message sent through a machine's bus, typically from an
// animation frame event ("Attack", "Footstep").
type Topic string

// Handler runs synchronously when its topic is sent.
type Handler func()

// Bus is a machine-scoped callback table. Each (topic, owner) pair holds at
// most one handler, and a message only reaches the handler owned by the
// active state plus machine-level handlers registered with an empty owner.
type Bus struct {
	active func() (Key, bool)
	subs   map[Topic]map[Key]*subscription
	bag    []*subscription
	closed bool
}

func newBus(active func() (Key, bool)) *Bus {
	return &Bus{
		active: active,
		subs:   make(map[Topic]map[Key]*subscription),
	}
}

type subscription struct {
	bus     *Bus
	topic   Topic
	owner   Key
	handler Handler
	closed  bool
}

func (s *subscription) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true
	if s.bus == nil {
		return nil
	}
	s.bus.bag = slices.DeleteFunc(s.bus.bag, func(c *subscription) bool { return c == s })
	if owners, ok := s.bus.subs[s.topic]; ok && owners[s.owner] == s {
		delete(owners, s.owner)
		if len(owners) == 0 {
			delete(s.bus.subs, s.topic)
		}
	}
	return nil
}

// Catch registers handler for topic on behalf of owner. Registering again for
// the same pair replaces the previous handler. The returned closer removes the
// subscription; the bus also closes it when the machine is destroyed.
func (b *Bus) Catch(owner Key, topic Topic, handler Handler) io.Closer {
	if b == nil || b.closed || handler == nil {
		return &subscription{closed: true}
	}

	owners, ok := b.subs[topic]
	if !ok {
		owners = make(map[Key]*subscription)
		b.subs[topic] = owners
	}
	if prev, ok := owners[owner]; ok {
		_ = prev.Close()
		owners = b.subs[topic]
		if owners == nil {
			owners = make(map[Key]*subscription)
			b.subs[topic] = owners
		}
	}

	sub := &subscription{bus: b, topic: topic, owner: owner, handler: handler}
	owners[owner] = sub
	b.bag = append(b.bag, sub)
	return sub
}

// Send delivers topic and returns how many handlers ran.
func (b *Bus) Send(topic Topic) int {
	if b == nil || b.closed {
		return 0
	}
	owners, ok := b.subs[topic]
	if !ok {
		return 0
	}

	delivered := 0
	if b.active != nil {
		if key, ok := b.active(); ok && key != "" {
			if sub, ok := owners[key]; ok && !sub.closed {
				sub.handler()
				delivered++
			}
		}
	}
	// the state handler may have closed machine-level subscriptions
	if sub, ok := b.subs[topic][""]; ok && !sub.closed {
		sub.handler()
		delivered++
	}
	return delivered
}

// Subscribers returns the number of live subscriptions for topic.
func (b *Bus) Subscribers(topic Topic) int {
	if b == nil {
		return 0
	}
	return len(b.subs[topic])
}

// Closed reports whether the bus has been torn down.
func (b *Bus) Closed() bool {
	return b == nil || b.closed
}

// Close disposes every live subscription handed out by the bus.
func (b *Bus) Close() error {
	if b == nil || b.closed {
		return nil
	}

	bag := b.bag
	b.bag = nil
	var errs []error
	for _, c := range bag {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	b.subs = make(map[Topic]map[Key]*subscription)
	b.closed = true
	return errors.Join(errs...)
}
