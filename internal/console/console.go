// Package console interprets debug commands typed into the in-game terminal.
//
// A line goes through three steps: Parse splits it into a verb and arguments,
// Validate resolves numbers and upgrade names against the catalog, and Apply
// produces the next state. Validation failures come back as transcript lines
// and never touch state.
package console

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"zenith/internal/catalog"
	"zenith/internal/game"
)

// Verb is a canonical command token.
type Verb string

const (
	VerbHelp           Verb = "-help"
	VerbSetMoney       Verb = "-set_money"
	VerbPrestigeAmount Verb = "-prestige_amount"
	VerbResetData      Verb = "-resetdata"
	VerbUpgradeAmount  Verb = "-upgrade_amount"
	VerbProtocolAmount Verb = "-protocol_amount"
)

// Verbs lists the canonical tokens in help order.
var Verbs = []Verb{VerbHelp, VerbSetMoney, VerbResetData, VerbUpgradeAmount, VerbPrestigeAmount, VerbProtocolAmount}

var aliases = map[string]Verb{
	"help":               VerbHelp,
	"set-currency":       VerbSetMoney,
	"prestige-add":       VerbPrestigeAmount,
	"reset-all":          VerbResetData,
	"upgrade-level-add":  VerbUpgradeAmount,
	"prestige-level-add": VerbProtocolAmount,
}

var helpLines = []string{
	"Available Commands:",
	"-help : Show this list",
	"-set_money [value] : Add assets to your sector",
	"-resetdata : Wipe all progress",
	"-upgrade_amount [name] [value] : Increase upgrade level",
	"-prestige_amount [value] : Add prestige points",
	"-protocol_amount [name] [value] : Increase protocol upgrade level",
	"Aliases: help, set-currency, reset-all, upgrade-level-add, prestige-add, prestige-level-add",
}

// Command is a tokenized line. Token is the verb as typed, lowercased.
type Command struct {
	Token string
	Verb  Verb
	Args  []string
}

// Parse splits line on whitespace. ok is false for a blank line.
func Parse(line string) (Command, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Command{}, false
	}
	token := strings.ToLower(fields[0])
	verb := Verb(token)
	if v, ok := aliases[token]; ok {
		verb = v
	}
	return Command{Token: token, Verb: verb, Args: fields[1:]}, true
}

type actionKind int

const (
	actHelp actionKind = iota
	actAddCurrency
	actAddPrestige
	actReset
	actLevelAdd
)

// Action is a validated command ready to apply.
type Action struct {
	kind    actionKind
	amount  float64
	levels  int
	upgrade catalog.Upgrade
}

// Validate resolves cmd against the catalog. The returned error's message is
// the transcript line to show.
func Validate(cmd Command, cat catalog.Catalog) (Action, error) {
	switch cmd.Verb {
	case VerbHelp:
		return Action{kind: actHelp}, nil

	case VerbSetMoney, VerbPrestigeAmount:
		usage := "Error: Invalid amount. Usage: -set_money 1000"
		kind := actAddCurrency
		if cmd.Verb == VerbPrestigeAmount {
			usage = "Error: Invalid amount. Usage: -prestige_amount 100"
			kind = actAddPrestige
		}
		if len(cmd.Args) == 0 {
			return Action{}, errors.New(usage)
		}
		amount, err := strconv.ParseFloat(cmd.Args[0], 64)
		if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
			return Action{}, errors.New(usage)
		}
		return Action{kind: kind, amount: amount}, nil

	case VerbResetData:
		return Action{kind: actReset}, nil

	case VerbUpgradeAmount, VerbProtocolAmount:
		if len(cmd.Args) == 0 {
			return Action{}, fmt.Errorf("Error: Missing parameters. Usage: %s \"Upgrade Name\" 10", cmd.Token)
		}
		name, levels := splitNameAmount(cmd.Args)
		list, label := cat.Standard, "Upgrade"
		if cmd.Verb == VerbProtocolAmount {
			list, label = cat.Prestige, "Protocol"
		}
		u, ok := catalog.FindByName(list, name)
		if !ok {
			return Action{}, fmt.Errorf("Error: %s %q not found.", label, name)
		}
		return Action{kind: actLevelAdd, levels: levels, upgrade: u}, nil
	}
	return Action{}, fmt.Errorf("Unknown command: %s. Type -help for assistance.", cmd.Token)
}

// splitNameAmount applies the trailing-number rule: a final integer token is
// the amount and the rest is the name; otherwise every token is the name and
// the amount is 1.
func splitNameAmount(args []string) (string, int) {
	levels := 1
	nameParts := args
	if n, err := strconv.Atoi(args[len(args)-1]); err == nil {
		levels = n
		nameParts = args[:len(args)-1]
	}
	name := strings.Join(nameParts, " ")
	name = strings.NewReplacer(`"`, "", `'`, "").Replace(name)
	return strings.ToLower(name), levels
}

// Apply runs a validated action. Subtractions floor at zero and level
// additions stay within [0, maxLevel].
func Apply(s game.GameState, a Action) (game.GameState, []string) {
	switch a.kind {
	case actHelp:
		return s, append([]string{}, helpLines...)

	case actAddCurrency:
		out := s.Clone()
		out.Currency = game.NonNegative(out.Currency + a.amount)
		return out, []string{fmt.Sprintf("Success: Added $%s assets.", humanize.Commaf(a.amount))}

	case actAddPrestige:
		out := s.Clone()
		out.PrestigePoints = game.NonNegative(out.PrestigePoints + a.amount)
		return out, []string{fmt.Sprintf("Success: Added %s prestige points.", humanize.Commaf(a.amount))}

	case actReset:
		return game.InitialState(), []string{"CRITICAL: System purged. All data wiped."}

	case actLevelAdd:
		out := s.Clone()
		counts := out.Upgrades
		if a.upgrade.IsPrestige() {
			counts = out.PrestigeUpgrades
		}
		next := addLevels(counts[a.upgrade.ID], a.levels, a.upgrade.MaxLevel)
		if next == 0 {
			delete(counts, a.upgrade.ID)
		} else {
			counts[a.upgrade.ID] = next
		}
		return out, []string{fmt.Sprintf("Success: %s increased by %d levels.", a.upgrade.Name, a.levels)}
	}
	return s, nil
}

// addLevels returns count+delta clamped to [0, maxLevel] without overflowing.
func addLevels(count, delta, maxLevel int) int {
	switch {
	case delta >= maxLevel-count:
		return maxLevel
	case delta <= -count:
		return 0
	}
	return count + delta
}

// Result is the outcome of one console line.
type Result struct {
	Lines   []string `json:"lines"`
	Mutated bool     `json:"mutated"`
	Reset   bool     `json:"reset"`
}

// Execute parses, validates and applies line.
func Execute(s game.GameState, cat catalog.Catalog, line string) (game.GameState, Result) {
	cmd, ok := Parse(line)
	if !ok {
		return s, Result{}
	}
	a, err := Validate(cmd, cat)
	if err != nil {
		return s, Result{Lines: []string{err.Error()}}
	}
	next, lines := Apply(s, a)
	return next, Result{
		Lines:   lines,
		Mutated: a.kind != actHelp,
		Reset:   a.kind == actReset,
	}
}
