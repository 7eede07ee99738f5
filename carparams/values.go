package carparams

// GM platforms recognised by Get. The strings are the fingerprint identifiers
// produced by vehicle detection.
const (
	CarHoldenAstra = "HOLDEN ASTRA RS-V BK 2017"
	CarVolt        = "CHEVROLET VOLT PREMIER 2017"
	CarVoltNR      = "CHEVROLET VOLT NO RADAR"
	CarCadillacATS = "CADILLAC ATS Premium Performance 2018"
	CarMalibu      = "CHEVROLET MALIBU PREMIER 2017"
	CarMalibuNR    = "CHEVROLET MALIBU NO RADAR"
	CarAcadia      = "GMC ACADIA DENALI 2018"
	CarAcadiaNR    = "GMC ACADIA NO RADAR"
	CarBuickRegal  = "BUICK REGAL ESSENCE 2018"
	CarEscaladeESV = "CADILLAC ESCALADE ESV 2016"
	CarBoltNR      = "CHEVROLET BOLT EV NO RADAR"
	CarBoltEUV     = "CHEVROLET BOLT EUV 2022"
	CarTahoeNR     = "CHEVROLET TAHOE NO RADAR"
	CarSilveradoNR = "CHEVROLET SILVERADO NO RADAR"
	CarEquinoxNR   = "CHEVROLET EQUINOX NO RADAR"
	CarSuburban    = "CHEVROLET SUBURBAN PREMIER 2019"
)

// Cars lists every supported fingerprint.
var Cars = []string{
	CarHoldenAstra, CarVolt, CarVoltNR, CarCadillacATS, CarMalibu, CarMalibuNR,
	CarAcadia, CarAcadiaNR, CarBuickRegal, CarEscaladeESV, CarBoltNR, CarBoltEUV,
	CarTahoeNR, CarSilveradoNR, CarEquinoxNR, CarSuburban,
}

// noASCM holds the cars without the ASCM module: lane keeping only, no radar and
// no openpilot longitudinal control.
var noASCM = map[string]bool{
	CarVoltNR:      true,
	CarMalibuNR:    true,
	CarAcadiaNR:    true,
	CarBoltNR:      true,
	CarBoltEUV:     true,
	CarTahoeNR:     true,
	CarSilveradoNR: true,
	CarEquinoxNR:   true,
	CarSuburban:    true,
}

// dashcamOnly cars lack users and test routes.
var dashcamOnly = map[string]bool{
	CarCadillacATS: true,
	CarHoldenAstra: true,
	CarMalibu:      true,
	CarBuickRegal:  true,
}

// IsSupported reports whether candidate is a known GM fingerprint.
func IsSupported(candidate string) bool {
	for _, c := range Cars {
		if c == candidate {
			return true
		}
	}
	return false
}

// HasASCM reports whether the car carries the ASCM (stock radar ACC module).
func HasASCM(candidate string) bool {
	return !noASCM[candidate]
}

// Unit conversions and reference-car constants.
const (
	MPHToMS    = 0.44704
	LBToKG     = 0.453592
	StdCargoKG = 136.0

	// The reference car all GM tuning is scaled against.
	refMass               = 2923.*LBToKG + StdCargoKG
	refWheelbase          = 2.70
	refCenterToFront      = refWheelbase * 0.4
	refCenterToRear       = refWheelbase - refCenterToFront
	refRotationalInertia  = 2500.
	refTireStiffnessFront = 192150.
	refTireStiffnessRear  = 202500.
)

// CarControllerParams limits.
const (
	AccelMax = 2.0
	AccelMin = -4.0
)

// GasInterceptorID is the pedal interceptor message; its presence on bus 0 marks
// an interceptor-equipped car.
const GasInterceptorID uint32 = 0x201
