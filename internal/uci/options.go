package uci

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/ajurian/AlphaChess/internal/storage"
)

type optionKind string

const (
	kindSpin   optionKind = "spin"
	kindButton optionKind = "button"
)

// option is an engine parameter settable with setoption.
type option struct {
	name     string
	kind     optionKind
	min, max int

	// value reads a spin option's current value.
	value func(storage.Settings) int
	// apply sets the option on the handler. v is zero for buttons.
	apply func(u *UCI, v int)
}

var options = []option{
	{
		name: "Hash",
		kind: kindSpin,
		min:  storage.MinHashMB,
		max:  storage.MaxHashMB,
		value: func(s storage.Settings) int {
			return s.HashMB
		},
		apply: func(u *UCI, v int) {
			u.engine.ResizeHash(v)
			u.settings.HashMB = v
		},
	},
	{
		name: "Clear Hash",
		kind: kindButton,
		apply: func(u *UCI, _ int) {
			u.engine.Clear()
		},
	},
	{
		name: "Book Depth",
		kind: kindSpin,
		min:  0,
		max:  storage.MaxBookDepth,
		value: func(s storage.Settings) int {
			return s.BookDepth
		},
		apply: func(u *UCI, v int) {
			u.settings.BookDepth = v
		},
	},
}

// describe formats the option for the "uci" response.
func (o option) describe(s storage.Settings) string {
	if o.kind == kindButton {
		return fmt.Sprintf("option name %s type %s", o.name, o.kind)
	}
	return fmt.Sprintf("option name %s type %s default %d min %d max %d", o.name, o.kind, o.value(s), o.min, o.max)
}

// setOption applies a setoption command. Option names are case-insensitive.
func (u *UCI) setOption(name, value string) error {
	o, ok := lo.Find(options, func(o option) bool {
		return strings.EqualFold(o.name, name)
	})
	if !ok {
		return fmt.Errorf("setoption: unknown option %q", name)
	}

	if o.kind == kindButton {
		o.apply(u, 0)
		return nil
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("setoption %s: %w", o.name, err)
	}
	if v < o.min || v > o.max {
		return fmt.Errorf("setoption %s: %d outside [%d, %d]", o.name, v, o.min, o.max)
	}
	o.apply(u, v)
	return nil
}
