// Package see streams a top-down view of the world as JSON messages
// consumable by github.com/robotalks/see.
package see

import (
	"encoding/json"
	"sort"

	fx "github.com/robotalks/arcadecar/pkg/framework"
	"github.com/robotalks/arcadecar/pkg/sim"
)

// Adapter is the visualization adapter to visualize using
// github.com/robotalks/see.
type Adapter struct {
	Config *Config
	Mapper ObjectMapper

	initial    bool
	updated    map[string]sim.Object
	removedIDs map[string]bool
}

// NewAdapter creates the adapter.
func NewAdapter(config *Config) *Adapter {
	return &Adapter{
		Config:  config,
		Mapper:  DefaultMapper("car"),
		initial: true,
	}
}

// Subscribe is a helper to subscribe object changes.
func (a *Adapter) Subscribe(sub sim.ObjectsChangeSubscriber) *Adapter {
	sub.SubscribeObjectsChange(a)
	return a
}

// ObjectsChanged implements ObjectsChangeListener.
func (a *Adapter) ObjectsChanged(cc fx.ControlContext, objs ...sim.Object) {
	if a.updated == nil {
		a.updated = make(map[string]sim.Object)
	}
	for _, obj := range objs {
		a.updated[obj.Name()] = obj
		if a.removedIDs != nil {
			delete(a.removedIDs, ObjectID(obj.Name()))
		}
	}
}

// ObjectsRemoved implements ObjectsChangeListener.
func (a *Adapter) ObjectsRemoved(cc fx.ControlContext, objs ...sim.Object) {
	if a.removedIDs == nil {
		a.removedIDs = make(map[string]bool)
	}
	for _, obj := range objs {
		a.removedIDs[ObjectID(obj.Name())] = true
		if a.updated != nil {
			delete(a.updated, obj.Name())
		}
	}
}

// AddToLoop implements LoopAdder.
func (a *Adapter) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvPostProc, fx.ControlFunc(a.ReportChanges))
}

// ReportChanges writes the objects changed during this tick as one line
// of JSON. The first report resets the view and marks the arena corners.
func (a *Adapter) ReportChanges(cc fx.ControlContext) error {
	var msgs []Message
	if a.initial {
		msgs = a.frame()
		a.initial = false
		a.removedIDs = nil
	}

	for _, name := range sortedKeys(a.updated) {
		vo, ok := a.updated[name].(VisibleObject)
		if !ok {
			continue
		}
		for _, mapped := range a.Mapper.MapObject(vo) {
			if mapped != nil {
				msgs = append(msgs, Message{Action: ActionObject, Object: mapped})
			}
		}
	}
	for _, id := range sortedKeys(a.removedIDs) {
		msgs = append(msgs, Message{Action: ActionRemove, RemoveID: id})
	}

	a.updated, a.removedIDs = nil, nil
	if len(msgs) == 0 || a.Config.Output == nil {
		return nil
	}
	encoded, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	_, err = a.Config.Output.Write(append(encoded, '\n'))
	return err
}

func (a *Adapter) frame() []Message {
	msgs := []Message{{Action: ActionReset}}
	w, h := a.Config.W/2, a.Config.H/2
	for _, corner := range []struct {
		loc  string
		x, y float64
	}{{"lt", -w, -h}, {"lb", -w, h}, {"rt", w, -h}, {"rb", w, h}} {
		obj := NewObject("corner", "corner-"+corner.loc).
			With("loc", corner.loc).
			At(corner.x, corner.y).
			Radius(1)
		msgs = append(msgs, Message{Action: ActionObject, Object: obj})
	}
	return msgs
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
