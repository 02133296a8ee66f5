package sampler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// ErrNoWindows is returned when no window manager can be queried.
var ErrNoWindows = errors.New("window enumeration unavailable")

const cmdTimeout = 400 * time.Millisecond

// TopWindow is a top-level window as reported by the window manager.
type TopWindow struct {
	Title     string
	X, Y      int
	Width     int
	Height    int
	Maximized bool
}

// Screen is the root display size.
type Screen struct {
	Width, Height int
}

// WindowLister enumerates top-level windows for fullscreen detection.
type WindowLister interface {
	Windows(ctx context.Context) ([]TopWindow, Screen, error)
}

// WMCtrl lists windows with wmctrl and sizes the screen with xrandr.
type WMCtrl struct{}

func (WMCtrl) Windows(ctx context.Context) ([]TopWindow, Screen, error) {
	screenOut, err := runCmd(ctx, cmdTimeout, "xrandr", "--current")
	if err != nil {
		return nil, Screen{}, fmt.Errorf("%w: xrandr: %v", ErrNoWindows, err)
	}
	screen, err := parseScreen(screenOut)
	if err != nil {
		return nil, Screen{}, err
	}
	listOut, err := runCmd(ctx, cmdTimeout, "wmctrl", "-lG")
	if err != nil {
		return nil, Screen{}, fmt.Errorf("%w: wmctrl: %v", ErrNoWindows, err)
	}
	return parseWMCtrl(listOut, screen), screen, nil
}

// parseScreen reads "current W x H" from the first xrandr line.
func parseScreen(out string) (Screen, error) {
	line, _, _ := strings.Cut(out, "\n")
	_, rest, ok := strings.Cut(line, "current ")
	if !ok {
		return Screen{}, fmt.Errorf("%w: no current mode in xrandr output", ErrNoWindows)
	}
	dims, _, _ := strings.Cut(rest, ",")
	parts := strings.Split(dims, " x ")
	if len(parts) != 2 {
		return Screen{}, fmt.Errorf("%w: bad xrandr mode %q", ErrNoWindows, dims)
	}
	w, errW := strconv.Atoi(strings.TrimSpace(parts[0]))
	h, errH := strconv.Atoi(strings.TrimSpace(parts[1]))
	if errW != nil || errH != nil {
		return Screen{}, fmt.Errorf("%w: bad xrandr mode %q", ErrNoWindows, dims)
	}
	return Screen{Width: w, Height: h}, nil
}

// parseWMCtrl reads "id desktop x y w h host title..." lines. Sticky
// windows (desktop -1) are the desktop itself and panels, so they are
// skipped. wmctrl has no maximized flag; a window anchored at the origin
// spanning the screen is treated as maximized.
func parseWMCtrl(out string, screen Screen) []TopWindow {
	var wins []TopWindow
	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		f := strings.Fields(sc.Text())
		if len(f) < 6 || f[1] == "-1" {
			continue
		}
		nums := make([]int, 4)
		ok := true
		for i := range nums {
			v, err := strconv.Atoi(f[2+i])
			if err != nil {
				ok = false
				break
			}
			nums[i] = v
		}
		if !ok {
			continue
		}
		title := ""
		if len(f) > 7 {
			title = strings.Join(f[7:], " ")
		}
		w := TopWindow{Title: title, X: nums[0], Y: nums[1], Width: nums[2], Height: nums[3]}
		w.Maximized = w.X <= 0 && w.Y <= 0 && w.Width >= screen.Width && w.Height >= screen.Height
		wins = append(wins, w)
	}
	return wins
}

func runCmd(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if ctx.Err() == context.DeadlineExceeded {
		return "", ctx.Err()
	}
	return string(out), err
}
