package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gm-carstate/carstate"
	"gm-carstate/utils"
)

const testMapPath = "../config/can/gm_carstate.csv"

func TestSampleValuesRaw_StandstillFallback(t *testing.T) {
	assert.True(t, SampleValues{VEgo: 0.005}.Raw().Standstill)
	assert.False(t, SampleValues{VEgo: 0.02}.Raw().Standstill)

	s := SampleValues{CruiseButtons: 3, VEgo: 4, Gear: "R", CruiseStandstill: true}.Raw()
	assert.Equal(t, carstate.ButtonDecelSet, s.CruiseButtons)
	assert.Equal(t, carstate.GearReverse, s.Gear)
	assert.True(t, s.CruiseStandstill)
}

func TestSampleFromSignals_Missing(t *testing.T) {
	s := SampleFromSignals(map[string]float64{SigVehicleSpeed: 0})
	assert.Equal(t, carstate.ButtonInit, s.CruiseButtons)
	assert.Equal(t, carstate.GearUnknown, s.Gear)
	assert.True(t, s.Standstill)

	s = SampleFromSignals(map[string]float64{SigVehicleSpeed: 0, SigStandstill: 0})
	assert.False(t, s.Standstill)
}

func TestSignalsRoundTripThroughCANMap(t *testing.T) {
	cmap, err := utils.LoadCANMap(testMapPath)
	require.NoError(t, err)

	in := carstate.RawSample{
		CruiseButtons:    carstate.ButtonCancel,
		VEgo:             13.37,
		Gear:             carstate.GearSport,
		CruiseEnabled:    true,
		CruiseStandstill: false,
		Standstill:       false,
		SteeringAngleDeg: -7.25,
	}
	values := Signals(in)

	decoded := map[string]float64{}
	for _, fd := range cmap.Frames(utils.DirectionRX) {
		f, err := cmap.EncodeEinrideFrame(fd.Name, values)
		require.NoError(t, err)
		got, err := cmap.DecodeEinrideFrame(f)
		require.NoError(t, err)
		for k, v := range got {
			decoded[k] = v
		}
	}

	out := SampleFromSignals(decoded)
	assert.Equal(t, in.CruiseButtons, out.CruiseButtons)
	assert.InDelta(t, in.VEgo, out.VEgo, 0.005)
	assert.Equal(t, in.Gear, out.Gear)
	assert.Equal(t, in.CruiseEnabled, out.CruiseEnabled)
	assert.Equal(t, in.CruiseStandstill, out.CruiseStandstill)
	assert.Equal(t, in.Standstill, out.Standstill)
	assert.InDelta(t, in.SteeringAngleDeg, out.SteeringAngleDeg, 0.0625)
}
