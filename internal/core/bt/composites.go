package bt

import (
	"fmt"

	"github.com/zeusync/btengine/internal/core/observability/log"
)

// Sequence runs children until one fails. It succeeds only if all succeed;
// an empty Sequence succeeds.
type Sequence struct {
	link
	children []Task
}

// NewSequence returns a Sequence over children. Children not yet attached
// elsewhere become owned by it.
func NewSequence(children ...Task) *Sequence {
	n := &Sequence{children: children}
	adoptAll(n, children)
	return n
}

func (s *Sequence) Kind() Kind       { return KindSequence }
func (s *Sequence) Children() []Task { return s.children }
func (s *Sequence) task()            {}

func (s *Sequence) appendChild(c Task) {
	s.children = append(s.children, c)
	c.adopt(s)
}

func (s *Sequence) String() string {
	return fmt.Sprintf("Sequence(%d)", len(s.children))
}

func (s *Sequence) Evaluate(t TickContext) (bool, error) {
	t.debug("sequence start", log.Int("children", len(s.children)))
	for i, ch := range s.children {
		ok, err := ch.Evaluate(t)
		if err != nil {
			return false, err
		}
		if !ok {
			t.debug("sequence fail", log.Int("at", i), log.Stringer("node", ch))
			return false, nil
		}
	}
	t.debug("sequence success")
	return true, nil
}

// Selector runs children until one succeeds. It fails only if all fail;
// an empty Selector fails.
type Selector struct {
	link
	children []Task
}

// NewSelector returns a Selector over children. Children not yet attached
// elsewhere become owned by it.
func NewSelector(children ...Task) *Selector {
	n := &Selector{children: children}
	adoptAll(n, children)
	return n
}

func (s *Selector) Kind() Kind       { return KindSelector }
func (s *Selector) Children() []Task { return s.children }
func (s *Selector) task()            {}

func (s *Selector) appendChild(c Task) {
	s.children = append(s.children, c)
	c.adopt(s)
}

func (s *Selector) String() string {
	return fmt.Sprintf("Selector(%d)", len(s.children))
}

func (s *Selector) Evaluate(t TickContext) (bool, error) {
	t.debug("selector start", log.Int("children", len(s.children)))
	for i, ch := range s.children {
		ok, err := ch.Evaluate(t)
		if err != nil {
			return false, err
		}
		if ok {
			t.debug("selector success", log.Int("at", i), log.Stringer("node", ch))
			return true, nil
		}
	}
	t.debug("selector fail")
	return false, nil
}

func adoptAll(parent Composite, children []Task) {
	for _, ch := range children {
		if ch != nil && ch.owner() == nil {
			ch.adopt(parent)
		}
	}
}
