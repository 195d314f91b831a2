package track

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilerace/race-engine/pkg/model"
)

func TestTrackCmd(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "text", args: []string{"--seed", "7"}},
		{name: "small grid", args: []string{"--seed", "7", "--grid-size", "6"}},
		{name: "forced fallback", args: []string{"--seed", "7", "--max-retries", "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg = configDefaults()
			cmd := NewTrackCmd()
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetArgs(tt.args)
			require.NoError(t, cmd.Execute())
			assert.Contains(t, out.String(), "seed: 7")
		})
	}
}

func TestTrackCmd_JSON(t *testing.T) {
	cfg = configDefaults()
	cmd := NewTrackCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--seed", "11", "--json"})
	require.NoError(t, cmd.Execute())

	var got struct {
		Seed    uint64             `json:"seed"`
		Track   model.Track        `json:"track"`
		Profile model.SpeedProfile `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, uint64(11), got.Seed)
	assert.NoError(t, got.Track.Validate(0))
	assert.Len(t, got.Profile, len(got.Track.PathOrder))
}
