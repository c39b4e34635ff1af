package car

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/arcadecar/pkg/l1/msgs"
)

func TestParseInput(t *testing.T) {
	cases := []struct {
		args []string
		msg  *msgs.CarInput
		err  string
	}{
		{args: []string{"1", "0"}, msg: &msgs.CarInput{Acceleration: 1}},
		{args: []string{"-0.5", "0.25"}, msg: &msgs.CarInput{Acceleration: -0.5, Turn: 0.25}},
		{args: []string{"0", "-1", "handbrake"}, msg: &msgs.CarInput{Turn: -1, Handbrake: true}},
		{args: []string{"0", "0", "false"}, msg: &msgs.CarInput{}},
		{args: []string{"1"}, err: "ACCEL and TURN required"},
		{args: []string{"x", "0"}, err: "invalid ACCEL"},
		{args: []string{"0", "2"}, err: "invalid TURN"},
		{args: []string{"0", "0", "maybe"}, err: "invalid handbrake"},
	}
	for _, c := range cases {
		msg, err := ParseInput(c.args)
		if c.err != "" {
			require.ErrorContains(t, err, c.err, "%v", c.args)
			continue
		}
		require.NoError(t, err, "%v", c.args)
		require.Equal(t, c.msg, msg, "%v", c.args)
	}
}
