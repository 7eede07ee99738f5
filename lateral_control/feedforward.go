package control

import (
	"math"

	"gm-carstate/carparams"
)

// SteerFeedforward maps a desired steering angle (deg) and ego speed (m/s) to
// the expected steering actuator effort. The lateral controller scales it by
// its kf gain.
type SteerFeedforward func(desiredAngle, vEgo float64) float64

// fingerprintFamilies lists the cars with a dedicated fit. Only the exact
// fingerprints are matched; variants fall back to the default model.
var fingerprintFamilies = map[string]Family{
	carparams.CarVolt:   FamilyVolt,
	carparams.CarAcadia: FamilyAcadia,
}

// FamilyFor returns the feed-forward family for a car fingerprint.
func FamilyFor(fingerprint string) Family {
	if f, ok := fingerprintFamilies[fingerprint]; ok {
		return f
	}
	return FamilyDefault
}

// SigmoidFeedforward evaluates the bounded feed-forward for one coefficient set.
// |result| stays below |B*(vEgo+C)| for any angle, and the function is odd in
// desiredAngle.
func SigmoidFeedforward(desiredAngle, vEgo float64, c Coefficients) float64 {
	x := desiredAngle * c.A
	sigmoid := x / (1 + math.Abs(x))
	return c.B * sigmoid * (vEgo + c.C)
}

// DefaultFeedforward is proportional to lateral acceleration: angle * v^2.
func DefaultFeedforward(desiredAngle, vEgo float64) float64 {
	return desiredAngle * (vEgo * vEgo)
}

// Feedforward evaluates the model of family f.
func Feedforward(desiredAngle, vEgo float64, f Family) float64 {
	if c, ok := CoefficientsFor(f); ok {
		return SigmoidFeedforward(desiredAngle, vEgo, c)
	}
	return DefaultFeedforward(desiredAngle, vEgo)
}

// ForFamily binds the model of f into a SteerFeedforward.
func ForFamily(f Family) SteerFeedforward {
	c, ok := CoefficientsFor(f)
	if !ok {
		return DefaultFeedforward
	}
	return func(desiredAngle, vEgo float64) float64 {
		return SigmoidFeedforward(desiredAngle, vEgo, c)
	}
}

// ForFingerprint selects the feed-forward function for a car at configuration
// time.
func ForFingerprint(fingerprint string) SteerFeedforward {
	return ForFamily(FamilyFor(fingerprint))
}
