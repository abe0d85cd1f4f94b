package pitch

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPitchRecord_UnmarshalJSON(t *testing.T) {
	t.Parallel()

	t.Run("full record", func(t *testing.T) {
		t.Parallel()
		var r PitchRecord
		err := json.Unmarshal([]byte(`{
			"category": "FF", "speed": 95.1, "moveHoriz": -5, "moveVert": 8,
			"releasePos": {"lateral": -1.5, "vertical": 6.0, "depth": 54},
			"releaseExtension": 6.5,
			"platePos": {"lateral": 0.3, "vertical": 2.8}
		}`), &r)
		require.NoError(t, err)
		assert.Equal(t, "FF", r.Category)
		assert.Equal(t, 95.1, r.Speed)
		assert.Equal(t, -5.0, r.MoveHoriz)
		assert.Equal(t, 8.0, r.MoveVert)
		assert.Equal(t, Point3{Lateral: -1.5, Vertical: 6.0, Depth: 54}, r.ReleasePos)
		assert.Equal(t, 6.5, r.ReleaseExtension)
		assert.Equal(t, Point2{Lateral: 0.3, Vertical: 2.8}, r.PlatePos)
	})

	t.Run("missing and null fields are absent", func(t *testing.T) {
		t.Parallel()
		var r PitchRecord
		err := json.Unmarshal([]byte(`{"category": "SL", "speed": null, "moveVert": 2}`), &r)
		require.NoError(t, err)
		assert.True(t, math.IsNaN(r.Speed))
		assert.True(t, math.IsNaN(r.MoveHoriz))
		assert.Equal(t, 2.0, r.MoveVert)
		assert.False(t, r.HasPlate())
		assert.False(t, r.HasSpeed())
		assert.True(t, math.IsNaN(r.ReleasePos.Lateral))
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()
		var r PitchRecord
		assert.Error(t, json.Unmarshal([]byte(`{"speed": "fast"}`), &r))
	})
}

func TestPitchRecord_MarshalJSON(t *testing.T) {
	t.Parallel()

	r := Absent("CU")
	r.Speed = 79
	r.PlatePos = Point2{Lateral: -0.2, Vertical: math.NaN()}
	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"category": "CU", "speed": 79, "moveHoriz": null, "moveVert": null,
		"releasePos": {"lateral": null, "vertical": null, "depth": null},
		"releaseExtension": null,
		"platePos": {"lateral": -0.2, "vertical": null}
	}`, string(b))

	var back PitchRecord
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, 79.0, back.Speed)
	assert.True(t, math.IsNaN(back.PlatePos.Vertical))
}

func TestPitchRecord_Resolve(t *testing.T) {
	t.Parallel()

	got := Absent("").Resolve()
	assert.Equal(t, ResolvedPitch{
		Category:         UnknownCategory,
		Speed:            DefaultSpeedMPH,
		ReleasePos:       Point3{Lateral: -1.5, Vertical: 6.0, Depth: 54.5},
		ReleaseExtension: 6.0,
		PlatePos:         Point2{Lateral: 0, Vertical: 2.5},
	}, got)

	r := scenarioA()
	r.ReleasePos.Depth = 12 // ignored, derived from extension
	res := r.Resolve()
	assert.Equal(t, 54.0, res.ReleasePos.Depth)
	assert.Equal(t, 95.0, res.Speed)

	r.ReleaseExtension = 61
	assert.Equal(t, minStartDepth, r.Resolve().ReleasePos.Depth)
}
