package arcade

// SyncPosition moves each car to the ground contact point of its motor
// body. The car keeps its own rotation.
func (e *Engine) SyncPosition() Diagnostics {
	var diags Diagnostics
	query := e.sync.Query()
	for query.Next() {
		entity := query.Entity()
		if e.isCar(entity) {
			continue
		}
		motor, body := query.Get()
		car, ok := e.carTransform(motor.car)
		if !ok {
			diags = diags.add(ProcSyncPosition, entity, motor.car)
			continue
		}
		pos := body.Translation
		pos[1] -= motor.radius
		car.Translation = pos
	}
	return diags
}
