package sampler

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScreen(t *testing.T) {
	out := "Screen 0: minimum 8 x 8, current 2560 x 1440, maximum 32767 x 32767\nDP-1 connected primary\n"
	got, err := parseScreen(out)
	require.NoError(t, err)
	assert.Equal(t, Screen{Width: 2560, Height: 1440}, got)

	_, err = parseScreen("garbage")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoWindows))

	_, err = parseScreen("Screen 0: current wide x tall, maximum 1 x 1")
	require.Error(t, err)
}

func TestParseWMCtrl(t *testing.T) {
	screen := Screen{Width: 1920, Height: 1080}
	out := `0x01e00003 -1 0    0    1920 1080 host Desktop
0x03a00003  0 0    0    1920 1080 host Big Movie Player
0x04200007  0 100  80   800  600  host Terminal
0x05000001  0 oops 0    10   10   host Broken
short line
`
	wins := parseWMCtrl(out, screen)
	require.Len(t, wins, 2)

	assert.Equal(t, "Big Movie Player", wins[0].Title)
	assert.True(t, wins[0].Maximized)

	assert.Equal(t, "Terminal", wins[1].Title)
	assert.Equal(t, 800, wins[1].Width)
	assert.False(t, wins[1].Maximized)
}
