package carparams

// ScaleRotInertia scales the reference car's yaw inertia by mass and wheelbase.
func ScaleRotInertia(mass, wheelbase float64) float64 {
	return refRotationalInertia * mass * wheelbase * wheelbase / (refMass * refWheelbase * refWheelbase)
}

// ScaleTireStiffness scales the reference car's front/rear cornering stiffness
// by mass and center of gravity position, so all cars get similar dynamics.
func ScaleTireStiffness(mass, wheelbase, centerToFront, tireStiffnessFactor float64) (front, rear float64) {
	centerToRear := wheelbase - centerToFront
	front = (refTireStiffnessFront * tireStiffnessFactor) * mass / refMass *
		(centerToRear / wheelbase) / (refCenterToRear / refWheelbase)
	rear = (refTireStiffnessRear * tireStiffnessFactor) * mass / refMass *
		(centerToFront / wheelbase) / (refCenterToFront / refWheelbase)
	return front, rear
}
