package gamemaster

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"yahtzee/game"
)

const help = `commands:
  roll                 roll the dice on the table
  hold <dice...>       move dice from the table to the held set
  release <dice...>    move held dice back to the table
  score <category>     score the current dice and end the turn
  preview              show what each open category would score
  quit`

// RunConsole plays a session from line commands read from in, printing the
// state and the computer's moves to out.
func RunConsole(e *LocalEngine, in io.Reader, out io.Writer) error {
	snapshot, getUpdate := e.Init()
	fmt.Fprintln(out, help)
	drain(out, getUpdate)
	render(out, snapshot)

	scanner := bufio.NewScanner(in)
	for !e.Over() {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "quit":
			return nil
		case "help":
			fmt.Fprintln(out, help)
			continue
		case "preview":
			preview := e.Preview()
			for _, c := range game.Categories() {
				if points, ok := preview[c]; ok {
					fmt.Fprintf(out, "  %-16s %d\n", c, points)
				}
			}
			continue
		}

		action, err := ParseAction(fields)
		if err == nil {
			err = e.Play(action)
		}
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		drain(out, getUpdate)
		render(out, e.Snapshot())
	}

	switch winner := e.Winner(); winner {
	case -1:
		fmt.Fprintln(out, "tie")
	case e.HumanSeat():
		fmt.Fprintln(out, "you win")
	default:
		fmt.Fprintln(out, "computer wins")
	}
	return nil
}

// ParseAction reads a command such as "hold 6 6" or "score sixes".
func ParseAction(fields []string) (game.Action, error) {
	if len(fields) == 0 {
		return game.Action{}, errors.New("empty command")
	}
	kind, err := game.ParseActionKind(fields[0])
	if err != nil {
		return game.Action{}, err
	}

	switch kind {
	case game.RollAction:
		return game.NewRollAction(), nil
	case game.HoldAction, game.ReleaseAction:
		dice, err := game.ParseFaces(strings.Join(fields[1:], " "))
		if err != nil {
			return game.Action{}, err
		}
		if dice.Len() == 0 {
			return game.Action{}, fmt.Errorf("%s needs at least one die", kind)
		}
		if kind == game.HoldAction {
			return game.NewHoldAction(dice), nil
		}
		return game.NewReleaseAction(dice), nil
	default:
		if len(fields) != 2 {
			return game.Action{}, errors.New("score needs exactly one category")
		}
		c, err := game.ParseCategory(fields[1])
		if err != nil {
			return game.Action{}, err
		}
		return game.NewScoreAction(c), nil
	}
}

func drain(out io.Writer, getUpdate UpdateGetter) {
	for u := getUpdate(); u != nil; u = getUpdate() {
		if u.Action.Kind == game.ScoreAction {
			fmt.Fprintf(out, "player %d: %s (%d)\n", u.Player, u.Action, u.Points)
		} else {
			fmt.Fprintf(out, "player %d: %s\n", u.Player, u.Action)
		}
	}
}

func render(out io.Writer, s game.Snapshot) {
	fmt.Fprintf(out, "player %d | %s | rolls left %d | table %v | held %v | totals %v | legal %v\n",
		s.Player, s.Phase, s.RollsLeft, s.Table, s.Held, s.Totals, s.Legal)
}
