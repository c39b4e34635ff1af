package sim

import (
	fx "github.com/robotalks/arcadecar/pkg/framework"
)

// ObjectsChangeCaster fans object notifications out to its listeners.
// Embed it to make an object source subscribable.
type ObjectsChangeCaster struct {
	listeners []ObjectsChangeListener
}

// SubscribeObjectsChange implements ObjectsChangeSubscriber.
func (c *ObjectsChangeCaster) SubscribeObjectsChange(ln ObjectsChangeListener) {
	c.listeners = append(c.listeners, ln)
}

// UnsubscribeObjectsChange removes ln. It reports false if ln was never
// subscribed.
func (c *ObjectsChangeCaster) UnsubscribeObjectsChange(ln ObjectsChangeListener) bool {
	for i, l := range c.listeners {
		if l == ln {
			c.listeners = append(c.listeners[:i:i], c.listeners[i+1:]...)
			return true
		}
	}
	return false
}

// ObjectsChanged implements ObjectsChangeListener.
func (c *ObjectsChangeCaster) ObjectsChanged(cc fx.ControlContext, objs ...Object) {
	c.cast(objs, func(ln ObjectsChangeListener) { ln.ObjectsChanged(cc, objs...) })
}

// ObjectsRemoved implements ObjectsChangeListener.
func (c *ObjectsChangeCaster) ObjectsRemoved(cc fx.ControlContext, objs ...Object) {
	c.cast(objs, func(ln ObjectsChangeListener) { ln.ObjectsRemoved(cc, objs...) })
}

func (c *ObjectsChangeCaster) cast(objs []Object, fn func(ObjectsChangeListener)) {
	if len(objs) == 0 {
		return
	}
	for _, ln := range c.listeners {
		fn(ln)
	}
}
