package mini

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/madari-app/madari/color"
	"github.com/madari-app/madari/icon"
	"github.com/madari-app/madari/style"
	"github.com/madari-app/madari/util"
	"github.com/samber/lo"
)

// bind is a single-key menu action.
type bind struct {
	key         string
	description string
}

func (b *bind) eq(other *bind) bool {
	return b != nil && b == other
}

var (
	quit   = &bind{"q", "quit"}
	search = &bind{"s", "search"}
	next   = &bind{"n", "next"}
	replay = &bind{"r", "replay"}
	back   = &bind{"b", "back"}
)

type input struct {
	value string
}

var stdin = bufio.NewReader(os.Stdin)

// getInput reads lines until one passes validation.
func getInput(validate func(string) bool) (*input, error) {
	for {
		fmt.Print(style.Fg(color.Purple)("> "))

		line, err := stdin.ReadString('\n')
		if err != nil {
			return nil, err
		}

		line = strings.TrimSpace(line)
		if validate(line) {
			return &input{value: line}, nil
		}

		fail("Invalid input")
	}
}

func title(t string) {
	fmt.Println(style.Title(t))
}

func progress(msg string) (eraser func()) {
	return util.PrintErasable(fmt.Sprintf("%s %s", icon.Get(icon.Progress), msg))
}

func fail(msg string) {
	fmt.Printf("%s %s\n", icon.Get(icon.Fail), msg)
}

// truncated trims a label to the terminal width, keeping room for the index
// column.
func truncated(s string) string {
	max := truncateAt - 8
	runes := []rune(s)
	if max <= 0 || len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}

// menu prints numbered items plus key binds and reads a selection. It
// returns either the chosen bind or the chosen item. The quit bind is always
// available.
func menu[T fmt.Stringer](items []T, binds ...*bind) (*bind, T, error) {
	var zero T

	binds = append(binds, quit)

	for i, item := range items {
		fmt.Printf("%s %s\n", style.Faint(fmt.Sprintf("[%d]", i+1)), truncated(item.String()))
	}
	for _, b := range binds {
		fmt.Printf("%s %s\n", style.Faint("["+b.key+"]"), b.description)
	}

	in, err := getInput(func(s string) bool {
		if lo.SomeBy(binds, func(b *bind) bool { return b.key == s }) {
			return true
		}

		index, convErr := strconv.Atoi(s)
		return convErr == nil && 0 < index && index <= len(items)
	})
	if err != nil {
		return nil, zero, err
	}

	if b, ok := lo.Find(binds, func(b *bind) bool { return b.key == in.value }); ok {
		return b, zero, nil
	}

	return nil, items[lo.Must(strconv.Atoi(in.value))-1], nil
}
