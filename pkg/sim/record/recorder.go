// Package record persists car states into a SQL database.
package record

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/golang/glog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	fx "github.com/robotalks/arcadecar/pkg/framework"
	"github.com/robotalks/arcadecar/pkg/l1/msgs"
	"github.com/robotalks/arcadecar/pkg/sim"
)

// CarSample is a recorded car state.
type CarSample struct {
	ID        uint   `gorm:"primarykey"`
	Car       string `gorm:"index:idx_car_tick;size:128"`
	Tick      int64  `gorm:"index:idx_car_tick"`
	X         float64
	Y         float64
	Z         float64
	Yaw       float64
	Speed     float64
	Damping   float64
	Handbrake bool
	CreatedAt time.Time
}

// StateSource is an object reporting its car state.
type StateSource interface {
	sim.Object
	State() msgs.CarState
}

// Recorder collects states of changed cars during a tick and writes
// them in a batch at the end of the tick.
type Recorder struct {
	DB *gorm.DB

	pending []CarSample
}

// Open opens the SQLite database at dsn and migrates the schema.
func Open(dsn string) (*Recorder, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		CreateBatchSize:        500,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", dsn, err)
	}
	if err := db.AutoMigrate(&CarSample{}); err != nil {
		return nil, fmt.Errorf("migrate schema: %w", err)
	}
	glog.Infof("recording car states into %s", dsn)
	return &Recorder{DB: db}, nil
}

// Subscribe is a helper to subscribe object changes.
func (r *Recorder) Subscribe(sub sim.ObjectsChangeSubscriber) *Recorder {
	sub.SubscribeObjectsChange(r)
	return r
}

// ObjectsChanged implements ObjectsChangeListener.
func (r *Recorder) ObjectsChanged(cc fx.ControlContext, objs ...sim.Object) {
	for _, obj := range objs {
		src, ok := obj.(StateSource)
		if !ok {
			continue
		}
		state := src.State()
		r.pending = append(r.pending, CarSample{
			Car:       src.Name(),
			Tick:      state.Tick,
			X:         state.X,
			Y:         state.Y,
			Z:         state.Z,
			Yaw:       state.Yaw,
			Speed:     state.Speed,
			Damping:   state.Damping,
			Handbrake: state.Handbrake,
		})
	}
}

// ObjectsRemoved implements ObjectsChangeListener.
func (r *Recorder) ObjectsRemoved(cc fx.ControlContext, objs ...sim.Object) {
	for _, obj := range objs {
		glog.V(1).Infof("stop recording %s", obj.Name())
	}
}

// AddToLoop implements LoopAdder.
func (r *Recorder) AddToLoop(l *fx.Loop) {
	l.AddController(fx.PrLvIdle, fx.ControlFunc(func(fx.ControlContext) error {
		return r.Flush()
	}))
}

// Flush writes pending samples.
func (r *Recorder) Flush() error {
	if len(r.pending) == 0 {
		return nil
	}
	samples := r.pending
	r.pending = nil
	if err := r.DB.Create(&samples).Error; err != nil {
		return fmt.Errorf("record %d samples: %w", len(samples), err)
	}
	return nil
}

// Samples reads back the samples of a car in tick order.
func (r *Recorder) Samples(car string) ([]CarSample, error) {
	var samples []CarSample
	err := r.DB.Where("car = ?", car).Order("tick, id").Find(&samples).Error
	return samples, err
}

// Close flushes pending samples and closes the database.
func (r *Recorder) Close() error {
	var errs fx.AggregatedError
	errs.Add(r.Flush())
	if db, err := r.DB.DB(); err != nil {
		errs.Add(err)
	} else {
		errs.Add(db.Close())
	}
	return errs.Aggregate()
}
