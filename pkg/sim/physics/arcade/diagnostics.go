package arcade

import (
	"errors"
	"fmt"

	"github.com/golang/glog"
	"github.com/mlange-42/ark/ecs"
)

// ErrCarNotFound indicates a motor refers to an entity which is not
// a live car.
var ErrCarNotFound = errors.New("car not found")

// Procedure names a per-tick procedure.
type Procedure string

// Procedures.
const (
	ProcDrive        Procedure = "drive"
	ProcTurn         Procedure = "turn"
	ProcHandbrake    Procedure = "handbrake"
	ProcSyncPosition Procedure = "sync-position"
)

// Diagnostic reports a motor skipped by a procedure.
type Diagnostic struct {
	Procedure Procedure
	Motor     ecs.Entity
	Car       ecs.Entity
}

// Error implements error.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s: arcade motor %v points to entity %v that does not contain either a Transform or a Car, or may have been despawned",
		d.Procedure, d.Motor, d.Car)
}

// Unwrap returns ErrCarNotFound.
func (d Diagnostic) Unwrap() error {
	return ErrCarNotFound
}

// Diagnostics is the list of motors skipped in a tick.
type Diagnostics []Diagnostic

func (d Diagnostics) add(proc Procedure, motor, car ecs.Entity) Diagnostics {
	return append(d, Diagnostic{Procedure: proc, Motor: motor, Car: car})
}

// Of filters the diagnostics of a single procedure.
func (d Diagnostics) Of(proc Procedure) Diagnostics {
	var res Diagnostics
	for _, diag := range d {
		if diag.Procedure == proc {
			res = append(res, diag)
		}
	}
	return res
}

// Warn writes every diagnostic to the warning log.
func (d Diagnostics) Warn() {
	for _, diag := range d {
		glog.Warning(diag.Error())
	}
}
