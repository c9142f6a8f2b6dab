package main

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/urfave/cli/v2"

	"github.com/hpungsan/captrack/internal/capacity"
	"github.com/hpungsan/captrack/internal/errors"
	"github.com/hpungsan/captrack/internal/ops"
)

// checkInValues is what the checkin command collects, from flags or the form.
type checkInValues struct {
	capacity.State
	Journal string
	At      string
}

// prefill fills values not given as flags from the suggested defaults.
func prefill(v checkInValues, c *cli.Context, d ops.FormDefaults) checkInValues {
	if !c.IsSet("energy") {
		v.Energy = d.Capacity.Energy
	}
	if !c.IsSet("attention") {
		v.Attention = d.Capacity.Attention
	}
	if !c.IsSet("physical") {
		v.Physical = d.Capacity.Physical
	}
	if v.At == "" {
		v.At = d.Time
	}
	return v
}

func scoreOptions() []huh.Option[int] {
	opts := make([]huh.Option[int], 0, capacity.MaxScore-capacity.MinScore+1)
	for i := capacity.MaxScore; i >= capacity.MinScore; i-- {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%2d", i), i))
	}
	return opts
}

func validateClock(s string) error {
	if _, err := time.Parse(ops.ClockFormat, strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("use HH:MM, e.g. 14:30")
	}
	return nil
}

// runCheckInForm shows the interactive check-in form, starting from v.
func runCheckInForm(v *checkInValues) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Energy").
				Options(scoreOptions()...).
				Value(&v.Energy),
			huh.NewSelect[int]().
				Title("Attention").
				Options(scoreOptions()...).
				Value(&v.Attention),
			huh.NewSelect[int]().
				Title("Physical").
				Options(scoreOptions()...).
				Value(&v.Physical),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Time (HH:MM)").
				Value(&v.At).
				Validate(validateClock),
			huh.NewText().
				Title("Journal").
				Description("Optional, markdown").
				Value(&v.Journal),
		),
	)
	if err := form.Run(); err != nil {
		if stderrors.Is(err, huh.ErrUserAborted) {
			return errors.NewCancelled("check-in")
		}
		return errors.NewInternal(err)
	}
	return nil
}
