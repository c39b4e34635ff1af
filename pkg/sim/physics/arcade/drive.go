package arcade

// Drive sets the motor acceleration along the facing of its car.
// Positive input accelerates against the facing. Motors with the
// handbrake pulled keep their acceleration untouched.
func (e *Engine) Drive() Diagnostics {
	var diags Diagnostics
	query := e.drive.Query()
	for query.Next() {
		entity := query.Entity()
		if e.isCar(entity) {
			continue
		}
		acc, input, motor := query.Get()
		if input.Handbrake {
			continue
		}
		car, ok := e.carTransform(motor.car)
		if !ok {
			diags = diags.add(ProcDrive, entity, motor.car)
			continue
		}
		acc.Linear = car.Forward().Mul(-input.Acceleration * motor.speed)
	}
	return diags
}
