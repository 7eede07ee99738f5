package control

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gm-carstate/carparams"
)

func TestFeedforward_VoltRegression(t *testing.T) {
	got := Feedforward(10, 20, FamilyVolt)

	x := 10 * 0.02904609
	want := 0.10006696 * (x / (1 + x)) * 23.12485927
	assert.InDelta(t, want, got, 1e-12)
	assert.InDelta(t, 0.520850, got, 1e-6)
}

func TestFeedforward_AcadiaRegression(t *testing.T) {
	assert.InDelta(t, -0.558068, Feedforward(-15, 10, FamilyAcadia), 1e-6)
}

func TestFeedforward_Default(t *testing.T) {
	assert.Equal(t, 5.0*400, Feedforward(5, 20, FamilyDefault))
	assert.Equal(t, 0.0, Feedforward(5, 0, FamilyDefault))
}

func TestFeedforward_OddInAngle(t *testing.T) {
	for _, f := range []Family{FamilyVolt, FamilyAcadia, FamilyDefault} {
		for _, angle := range []float64{0.1, 1, 7.5, 45, 540} {
			for _, v := range []float64{0, 3, 13.4, 35} {
				pos := Feedforward(angle, v, f)
				neg := Feedforward(-angle, v, f)
				assert.Equal(t, pos, -neg, "family=%s angle=%v v=%v", f, angle, v)
			}
		}
	}
	assert.Equal(t, 0.0, Feedforward(0, 20, FamilyVolt))
}

func TestFeedforward_Saturates(t *testing.T) {
	c, ok := CoefficientsFor(FamilyVolt)
	assert.True(t, ok)

	v := 25.0
	limit := math.Abs(c.B * (v + c.C))

	prev := 0.0
	for _, angle := range []float64{1, 10, 100, 1e3, 1e5} {
		got := math.Abs(Feedforward(angle, v, FamilyVolt))
		assert.Less(t, got, limit, "angle=%v", angle)
		assert.Greater(t, got, prev, "must grow with angle")
		prev = got
	}
	assert.InDelta(t, limit, math.Abs(Feedforward(1e9, v, FamilyVolt)), 1e-6)
}

func TestFamilyFor(t *testing.T) {
	assert.Equal(t, FamilyVolt, FamilyFor(carparams.CarVolt))
	assert.Equal(t, FamilyAcadia, FamilyFor(carparams.CarAcadia))
	assert.Equal(t, FamilyDefault, FamilyFor(carparams.CarVoltNR))
	assert.Equal(t, FamilyDefault, FamilyFor(carparams.CarBoltEUV))
	assert.Equal(t, FamilyDefault, FamilyFor("not a car"))
}

func TestForFingerprint(t *testing.T) {
	volt := ForFingerprint(carparams.CarVolt)
	assert.Equal(t, Feedforward(12, 18, FamilyVolt), volt(12, 18))

	def := ForFingerprint(carparams.CarSuburban)
	assert.Equal(t, DefaultFeedforward(12, 18), def(12, 18))
}

func TestFamily_String(t *testing.T) {
	assert.Equal(t, "volt", FamilyVolt.String())
	assert.Equal(t, "acadia", FamilyAcadia.String())
	assert.Equal(t, "default", FamilyDefault.String())
}

func TestParseCoefficients(t *testing.T) {
	m, err := ParseCoefficients([]byte(`{"acadia": {"a": 1, "b": 2, "c": 3}}`))
	require.NoError(t, err)
	assert.Equal(t, map[Family]Coefficients{FamilyAcadia: {A: 1, B: 2, C: 3}}, m)

	for name, body := range map[string]string{
		"not json":       `[`,
		"unknown family": `{"corvette": {"a": 1}}`,
		"default family": `{"default": {"a": 1}}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCoefficients([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestEmbeddedCoefficients(t *testing.T) {
	assert.Len(t, familyCoefficients, 2)
	c, ok := CoefficientsFor(FamilyAcadia)
	require.True(t, ok)
	assert.Equal(t, Coefficients{A: 0.09760208, B: 0.04689655, C: 10.028217}, c)
	_, ok = CoefficientsFor(FamilyDefault)
	assert.False(t, ok)
}
