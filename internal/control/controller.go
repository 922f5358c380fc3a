// Package control maps single key presses to note and parameter edits on a
// running synth.
package control

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/cbegin/fmbeast-go"
)

// Target is the synth surface the controller drives.
type Target interface {
	ToggleNote() bool
	Gate() bool
	SetParam(op int, p fmbeast.Param, v float64) error
	Param(op int, p fmbeast.Param) float64
}

const keyCtrlC = 0x03

// Controller keeps the current operator/parameter selection.
type Controller struct {
	target Target
	op     int
	param  fmbeast.Param
}

func New(target Target) *Controller {
	return &Controller{target: target}
}

// Help describes the key bindings.
func Help() string {
	return strings.Join([]string{
		"space  note on/off",
		"1-4    select operator",
		"[ ]    previous/next parameter",
		"+ -    nudge parameter",
		"s      toggle hard sync",
		"p      status",
		"q      quit",
	}, "\n")
}

// HandleKey applies one key press and returns a status line. quit is true
// for q and Ctrl-C.
func (c *Controller) HandleKey(b byte) (msg string, quit bool) {
	switch {
	case b == 'q' || b == keyCtrlC:
		return "bye", true
	case b == ' ':
		if c.target.ToggleNote() {
			return "note on", false
		}
		return "note off", false
	case b >= '1' && b <= '0'+fmbeast.NumOperators:
		c.op = int(b - '1')
		return c.Status(), false
	case b == '[' || b == ']':
		params := fmbeast.Params()
		n := len(params)
		i := int(c.param)
		if b == ']' {
			i = (i + 1) % n
		} else {
			i = (i + n - 1) % n
		}
		c.param = params[i]
		return c.Status(), false
	case b == '+' || b == '=':
		return c.nudge(1), false
	case b == '-' || b == '_':
		return c.nudge(-1), false
	case b == 's':
		v := c.target.Param(c.op, fmbeast.ParamSync)
		if err := c.target.SetParam(c.op, fmbeast.ParamSync, 1-v); err != nil {
			return err.Error(), false
		}
		return c.describe(fmbeast.ParamSync), false
	case b == 'p':
		return c.Status(), false
	}
	return "", false
}

func (c *Controller) nudge(dir float64) string {
	v := c.target.Param(c.op, c.param) + dir*c.param.Info().Step
	if err := c.target.SetParam(c.op, c.param, v); err != nil {
		return err.Error()
	}
	return c.describe(c.param)
}

func (c *Controller) describe(p fmbeast.Param) string {
	return fmt.Sprintf("op %d %s=%g", c.op, p, c.target.Param(c.op, p))
}

// Status reports the selection, its value and the note gate.
func (c *Controller) Status() string {
	gate := "off"
	if c.target.Gate() {
		gate = "on"
	}
	return c.describe(c.param) + " note " + gate
}

// Selection returns the selected operator and parameter.
func (c *Controller) Selection() (int, fmbeast.Param) { return c.op, c.param }

// Run feeds bytes from r to HandleKey and writes each non-empty status line
// to w, until a quit key or the end of r.
func (c *Controller) Run(r io.Reader, w io.Writer) error {
	br := bufio.NewReader(r)
	for {
		b, err := br.ReadByte()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		msg, quit := c.HandleKey(b)
		if msg != "" {
			// Raw terminals do not translate \n.
			if _, err := fmt.Fprintf(w, "%s\r\n", msg); err != nil {
				return err
			}
		}
		if quit {
			return nil
		}
	}
}
