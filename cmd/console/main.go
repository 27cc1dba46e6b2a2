// Command console plays the game from a terminal against the configured
// store. Plain words are actions; anything else goes to the command console.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"

	"zenith/internal/app"
	"zenith/internal/config"
	"zenith/internal/console"
	"zenith/internal/progression"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("load .env: %v", err)
	}
	path := os.Getenv("ZENITH_CONFIG")
	if path == "" {
		path = "zenith.yml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	config.ApplyEnv(cfg)

	ctx := context.Background()
	a, err := app.Build(ctx, cfg, nil, nil)
	if err != nil {
		log.Fatalf("build app: %v", err)
	}
	defer a.Close()

	r := &repl{app: a, out: os.Stdout}
	if err := r.run(ctx, os.Stdin); err != nil {
		log.Fatalf("console: %v", err)
	}
}

type repl struct {
	app *app.App
	out io.Writer
}

func (r *repl) run(ctx context.Context, in io.Reader) error {
	fmt.Fprintln(r.out, "zenith console. Type 'status', 'click [n]', 'buy <id>', 'max <id>', 'ascend', 'quests', 'complete <partial>', '-help' or 'quit'.")
	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(r.out, "> ")
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}
		if r.handle(ctx, line) {
			if err := r.app.Save(ctx); err != nil {
				fmt.Fprintf(r.out, "save failed: %v\n", err)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return r.app.Save(ctx)
}

// handle runs one line and reports whether the state may have changed.
func (r *repl) handle(ctx context.Context, line string) bool {
	e := r.app.Engine
	fields := strings.Fields(line)
	switch fields[0] {
	case "status":
		r.status()
		return false
	case "quests":
		for _, q := range e.Readout().Quests {
			fmt.Fprintf(r.out, "  %-28s %s/%s  reward %s  claimed=%t\n",
				q.Description, humanize.Commaf(q.Current), humanize.Commaf(q.Goal), humanize.Commaf(q.Reward), q.Claimed)
		}
		return false
	case "complete":
		for _, s := range console.Suggest(strings.TrimSpace(strings.TrimPrefix(line, "complete")), e.Catalog()) {
			fmt.Fprintln(r.out, "  "+s)
		}
		return false
	case "click":
		n := 1
		if len(fields) > 1 {
			if v, err := strconv.Atoi(fields[1]); err == nil && v > 0 {
				n = v
			}
		}
		var total float64
		for i := 0; i < n; i++ {
			total += e.Click(ctx).Amount
		}
		fmt.Fprintf(r.out, "+%s\n", humanize.Commaf(total))
		return true
	case "buy", "max":
		if len(fields) < 2 {
			fmt.Fprintln(r.out, "usage: buy <upgrade id>")
			return false
		}
		var p progression.Purchase
		if fields[0] == "max" {
			p = e.PurchaseMax(ctx, fields[1])
		} else {
			p = e.Purchase(ctx, fields[1])
		}
		if !p.Applied() {
			fmt.Fprintf(r.out, "not bought: %s\n", p.Refused)
			return false
		}
		fmt.Fprintf(r.out, "bought %d level(s) of %s for %s\n", p.Levels, p.UpgradeID, humanize.Commaf(p.Cost))
		return true
	case "ascend":
		res := e.Ascend(ctx)
		if !res.Applied {
			fmt.Fprintln(r.out, "not enough currency to ascend")
			return false
		}
		fmt.Fprintf(r.out, "ascended for %s points\n", humanize.Commaf(res.Points))
		return true
	}

	res := e.Exec(ctx, line)
	for _, l := range res.Lines {
		fmt.Fprintln(r.out, l)
	}
	return res.Mutated
}

func (r *repl) status() {
	ro := r.app.Engine.Readout()
	fmt.Fprintf(r.out, "level %d  xp %s/%s  currency %s  prestige %s\n",
		ro.State.Level,
		humanize.Commaf(ro.State.XP), humanize.Commaf(ro.Stats.XPRequirement),
		humanize.Commaf(ro.State.Currency), humanize.Commaf(ro.State.PrestigePoints))
	fmt.Fprintf(r.out, "click %s  auto %s/s  claimable %s\n",
		humanize.Commaf(ro.Stats.ClickPower), humanize.Commaf(ro.Stats.AutoIncome), humanize.Commaf(ro.Stats.ClaimablePoints))
	for _, u := range ro.Upgrades {
		fmt.Fprintf(r.out, "  %-8s %-22s %3d/%d  next %s  max %d\n",
			u.ID, u.Name, u.Count, u.MaxLevel, humanize.Commaf(u.NextCost), u.Max.Count)
	}
}
