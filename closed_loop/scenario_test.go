package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gm-carstate/carstate"
)

const rampScenario = `{
  "meta": { "name": "ramp", "car": "CHEVROLET VOLT PREMIER 2017" },
  "timing": { "dt_s": 0.1, "duration_s": 4.0 },
  "defaults": { "cruise_buttons": 1, "v_ego_mps": 10, "gear": "drive" },
  "segments": [
    { "t0": 1.0, "t1": 2.0, "v_ego_to_mps": 0, "cruise_buttons": 6 },
    { "t0": 1.5, "t1": 3.0, "gear": "park" },
    { "t0": 3.0, "t1": -1, "v_ego_mps": 0, "standstill": false, "cruise_enabled": true }
  ]
}`

func TestParseScenario(t *testing.T) {
	scen, err := ParseScenario([]byte(rampScenario))
	require.NoError(t, err)

	assert.Equal(t, "ramp", scen.Meta.Name)
	assert.Equal(t, 40, scen.Steps())
	require.Len(t, scen.Segments, 3)
}

func TestParseScenario_Errors(t *testing.T) {
	tests := map[string]string{
		"not json":     `{`,
		"no duration":  `{"timing": {"dt_s": 0.1}}`,
		"no dt":        `{"timing": {"duration_s": 1}}`,
		"reversed":     `{"timing": {"dt_s": 0.1, "duration_s": 1}, "segments": [{"t0": 0.5, "t1": 0.2}]}`,
		"unknown gear": `{"timing": {"dt_s": 0.1, "duration_s": 1}, "segments": [{"t0": 0, "t1": 1, "gear": "warp"}]}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ParseScenario([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestEvalSample(t *testing.T) {
	scen, err := ParseScenario([]byte(rampScenario))
	require.NoError(t, err)

	v := EvalSample(&scen, 0.5)
	assert.Equal(t, 10.0, v.VEgo)
	assert.Equal(t, 1, v.CruiseButtons)

	// ramp from the default speed
	v = EvalSample(&scen, 1.5)
	assert.InDelta(t, 5.0, v.VEgo, 1e-9)
	assert.Equal(t, 6, v.CruiseButtons)
	assert.Equal(t, "drive", v.Gear, "first covering segment wins")

	v = EvalSample(&scen, 2.5)
	assert.Equal(t, "park", v.Gear)
	assert.Equal(t, 10.0, v.VEgo)

	v = EvalSample(&scen, 3.9)
	assert.Equal(t, 0.0, v.VEgo)
	assert.True(t, v.CruiseEnabled)
	require.NotNil(t, v.Standstill)
	assert.False(t, *v.Standstill)

	raw := v.Raw()
	assert.False(t, raw.Standstill, "explicit standstill wins over the speed check")
	assert.Equal(t, carstate.GearDrive, raw.Gear)
}
