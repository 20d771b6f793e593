// The interactive console: menus over the engine, one decision per
// iteration, the day closing when the player retires.
package main

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/talgya/steading/internal/characters"
	"github.com/talgya/steading/internal/economy"
	"github.com/talgya/steading/internal/engine"
	"github.com/talgya/steading/internal/persistence"
)

func runPlay(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	eng, db, err := openWorld(cfg)
	if err != nil {
		color.Red("Error opening world: %v", err)
		os.Exit(1)
	}
	defer db.Close()

	titleColor := color.New(color.FgCyan, color.Bold)
	titleColor.Println("\n╭──────────────────────────────╮")
	titleColor.Println("│  Steading                    │")
	titleColor.Println("│  a settlement in your hands  │")
	titleColor.Println("╰──────────────────────────────╯")

	in := bufio.NewScanner(os.Stdin)
	announceMorning(eng)

	for {
		printStatus(eng)
		printMenu()
		choice, ok := prompt(in, "> ")
		if !ok {
			return
		}
		switch choice {
		case "1":
			doMine(eng, in)
		case "2":
			doBuild(eng, in)
		case "3":
			doWorkers(eng, in)
		case "4":
			doMarket(eng, in)
		case "5":
			doCraft(eng, in)
		case "6":
			doResearch(eng, in)
		case "7":
			doSecrets(eng, in)
		case "8":
			doCharacters(eng, in)
		case "9":
			fmt.Printf("Batch size is now ×%d.\n", eng.CycleMultiplier())
		case "0":
			endDay(eng, db)
			announceMorning(eng)
		case "e":
			printChronicle(eng)
		case "s":
			if err := saveWorld(eng, db); err != nil {
				color.Red("Save failed: %v", err)
			} else {
				color.Green("World saved at day %d.", eng.Day)
			}
		case "l":
			printLegacy(eng)
		case "q":
			if err := saveWorld(eng, db); err != nil {
				color.Red("Save failed: %v", err)
			}
			printLegacy(eng)
			return
		default:
			fmt.Println("Pick an option from the menu.")
		}
	}
}

func printMenu() {
	fmt.Println(`
 1 work the land       6 research
 2 build               7 secrets
 3 assign workers      8 villagers & traders
 4 market              9 cycle batch size
 5 craft               0 end the day
 e chronicle   s save   l legacy   q save & quit`)
}

func printStatus(e *engine.Engine) {
	snap := e.Snapshot()
	head := color.New(color.FgYellow, color.Bold)
	head.Printf("\nDay %d\n", snap.Day)
	fmt.Printf("Villagers %d (%d idle)  morale %.0f  research %.1f  batch ×%d\n",
		snap.Population, snap.IdleWorkers, snap.Happiness, snap.ResearchProgress, snap.Multiplier)
	fmt.Printf("Land %s (%.0f)  pollution %.1f  storage %s\n",
		snap.EcoStatus, snap.EcoHealth, snap.Pollution, humanize.Commaf(snap.StorageCapacity))

	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Resource", "Stock"}),
	)
	for _, r := range economy.All {
		stock := e.Ledger.Stock(r)
		if stock == 0 {
			continue
		}
		_ = table.Append([]string{string(r), humanize.CommafWithDigits(stock, 1)})
	}
	_ = table.Render()
}

func announceMorning(e *engine.Engine) {
	ev, ok := e.OpenDay()
	if !ok {
		return
	}
	omen := color.New(color.FgMagenta, color.Bold)
	omen.Printf("\nOmen: %s\n", ev.Name)
	if len(ev.Deltas) > 0 {
		fmt.Printf("  stores shift: %s\n", formatAmounts(ev.Deltas))
	}
	if ev.ForestDamage > 0 {
		fmt.Printf("  the forest suffers (%.0f)\n", ev.ForestDamage)
	}
}

func endDay(e *engine.Engine, db *persistence.DB) {
	rep := e.CloseDay()

	fmt.Printf("\nNight falls on day %d.\n", rep.Day-1)
	if rep.Famine {
		color.Red("Famine: the stores ran dry.")
	} else {
		fmt.Printf("The settlement ate %.1f food.\n", rep.FoodConsumed)
	}
	if rep.Starved {
		color.Red("A villager starved in the night.")
	}
	if rep.Born {
		color.Green("A child was born!")
	}
	fmt.Printf("Morale is %.1f.\n", rep.Happiness)

	if rep.Victory {
		win := color.New(color.FgGreen, color.Bold)
		win.Printf("\n★ The settlement's name is made: a %s triumph!\n", rep.Category)
	}
	if rep.AutosaveDue {
		if err := saveWorld(e, db); err != nil {
			color.Red("Autosave failed: %v", err)
		} else {
			fmt.Println("Autosaved.")
		}
	}
}

func doMine(e *engine.Engine, in *bufio.Scanner) {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"#", "Action", "Yields"}),
	)
	for _, a := range engine.MiningActions {
		_ = table.Append([]string{strconv.Itoa(a.ID), a.Name, formatAmounts(a.Yields)})
	}
	_ = table.Render()

	id, ok := promptInt(in, "Action: ")
	if !ok {
		return
	}
	if err := e.Mine(id); err != nil {
		color.Red("%v", err)
		return
	}
	color.Green("The crews return at dusk.")
}

func doBuild(e *engine.Engine, in *bufio.Scanner) {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"#", "Structure", "Owned", "Cost", "Daily Output"}),
	)
	for i, def := range economy.BuildingDefs {
		count := e.Buildings[def.ID]
		if def.ID == economy.Storehouse {
			count = e.Ledger.StorageUnits - 1
		}
		output := formatAmounts(def.Output)
		if def.ID == economy.Storehouse {
			output = "+75 storage"
		}
		_ = table.Append([]string{
			strconv.Itoa(i + 1), def.Name, strconv.Itoa(count),
			formatAmounts(economy.ScaledCost(def, e.Buildings[def.ID])), output,
		})
	}
	_ = table.Render()

	idx, ok := promptInt(in, "Structure: ")
	if !ok || idx < 1 || idx > len(economy.BuildingDefs) {
		return
	}
	def := economy.BuildingDefs[idx-1]
	if err := e.Build(def.ID); err != nil {
		color.Red("%v", err)
		return
	}
	color.Green("%s raised.", def.Name)
}

func doWorkers(e *engine.Engine, in *bufio.Scanner) {
	crewed := make([]economy.BuildingDef, 0, len(economy.BuildingDefs))
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"#", "Structure", "Built", "Crew"}),
	)
	for _, def := range economy.BuildingDefs {
		if len(def.Output) == 0 {
			continue
		}
		crewed = append(crewed, def)
		_ = table.Append([]string{
			strconv.Itoa(len(crewed)), def.Name,
			strconv.Itoa(e.Buildings[def.ID]), strconv.Itoa(e.Workers[def.ID]),
		})
	}
	_ = table.Render()
	fmt.Printf("%d villagers idle.\n", e.IdleWorkers)

	idx, ok := promptInt(in, "Structure: ")
	if !ok || idx < 1 || idx > len(crewed) {
		return
	}
	n, ok := promptInt(in, "Crew size: ")
	if !ok {
		return
	}
	if err := e.AssignWorkers(crewed[idx-1].ID, n); err != nil {
		color.Red("%v", err)
		return
	}
	color.Green("Crew of %d set at the %s.", n, crewed[idx-1].Name)
}

func doMarket(e *engine.Engine, in *bufio.Scanner) {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Resource", "Price", "Stock"}),
	)
	for _, q := range e.Prices() {
		_ = table.Append([]string{
			string(q.Resource),
			fmt.Sprintf("%.2f", q.Price),
			humanize.CommafWithDigits(q.Stock, 1),
		})
	}
	_ = table.Render()
	fmt.Println("Prices are in wine, the only coin the traders take.")

	verb, ok := prompt(in, "buy or sell: ")
	if !ok || (verb != "buy" && verb != "sell") {
		return
	}
	res, ok := promptResource(in)
	if !ok {
		return
	}
	amount, ok := promptFloat(in, "Amount: ")
	if !ok {
		return
	}

	var err error
	if verb == "buy" {
		err = e.BuyResource(res, amount)
	} else {
		err = e.SellResource(res, amount)
	}
	if err != nil {
		color.Red("%v", err)
		return
	}
	color.Green("Done. The cellar holds %.1f wine.", e.Ledger.Stock(economy.Wine))
}

func doCraft(e *engine.Engine, in *bufio.Scanner) {
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"#", "Recipe", "Inputs", "Outputs", "Research", "State"}),
	)
	for i, rec := range engine.Recipes {
		state := "open"
		if rec.Unlock != "" && !e.Tree.IsUnlocked(rec.Unlock) {
			state = "sealed"
		}
		research := ""
		if rec.Research > 0 {
			research = fmt.Sprintf("%.0f", rec.Research)
		}
		_ = table.Append([]string{
			strconv.Itoa(i + 1), rec.Name,
			formatAmounts(rec.Inputs), formatAmounts(rec.Outputs),
			research, state,
		})
	}
	_ = table.Render()

	idx, ok := promptInt(in, "Recipe: ")
	if !ok || idx < 1 || idx > len(engine.Recipes) {
		return
	}
	rec := engine.Recipes[idx-1]
	if err := e.Craft(rec.ID); err != nil {
		color.Red("%v", err)
		return
	}
	color.Green("%s crafted.", rec.Name)
}

func doResearch(e *engine.Engine, in *bufio.Scanner) {
	fmt.Printf("Research progress: %.1f", e.ResearchProgress)
	if e.ResearchComplete {
		color.New(color.FgGreen).Printf("  (the great work is complete)")
	}
	fmt.Println()

	techs := e.Tree.Technologies()
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"#", "Technology", "Cost", "Gate", "State"}),
	)
	for i, t := range techs {
		st, err := e.Tree.TechState(t.ID, e.Ledger, e.ResearchProgress)
		if err != nil {
			continue
		}
		_ = table.Append([]string{
			strconv.Itoa(i + 1), t.Name, formatAmounts(t.Cost),
			fmt.Sprintf("%.0f", t.Research), st.String(),
		})
	}
	_ = table.Render()

	input, ok := prompt(in, "Number to research, or r <resource> to sacrifice: ")
	if !ok || input == "" {
		return
	}
	if after, found := strings.CutPrefix(input, "r "); found {
		res, ok := parseResource(after)
		if !ok {
			color.Red("No resource called %q.", after)
			return
		}
		gain, err := e.SacrificeForResearch(res)
		if err != nil {
			color.Red("%v", err)
			return
		}
		color.Green("The offering yields %.2f research.", gain)
		return
	}
	idx, err := strconv.Atoi(input)
	if err != nil || idx < 1 || idx > len(techs) {
		return
	}
	if err := e.ResearchTechnology(techs[idx-1].ID); err != nil {
		color.Red("%v", err)
		return
	}
	color.Green("%s researched.", techs[idx-1].Name)
}

func doSecrets(e *engine.Engine, in *bufio.Scanner) {
	secrets := e.Tree.Secrets()
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"#", "Secret", "Cost", "Gate", "State"}),
	)
	for i, s := range secrets {
		st, err := e.Tree.SecretState(s.ID, e.Ledger, e.ResearchProgress)
		if err != nil {
			continue
		}
		_ = table.Append([]string{
			strconv.Itoa(i + 1), s.Name, formatAmounts(s.Cost),
			fmt.Sprintf("%.0f", s.Research), st.String(),
		})
	}
	_ = table.Render()

	idx, ok := promptInt(in, "Secret: ")
	if !ok || idx < 1 || idx > len(secrets) {
		return
	}
	s := secrets[idx-1]
	if err := e.DiscoverSecret(s.ID); err != nil {
		color.Red("%v", err)
		return
	}
	color.Green("%s uncovered. %s", s.Name, s.Description)
}

func doCharacters(e *engine.Engine, in *bufio.Scanner) {
	views := e.Characters()
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"#", "Name", "Standing", "Open Quests"}),
	)
	for i, v := range views {
		_ = table.Append([]string{
			strconv.Itoa(i + 1), v.Name,
			fmt.Sprintf("%s (%d)", v.Tier, v.Relationship),
			strconv.Itoa(len(v.OpenQuests)),
		})
	}
	_ = table.Render()

	input, ok := prompt(in, "t <#> talk   o <#> trade   q <#> quests: ")
	if !ok {
		return
	}
	fields := strings.Fields(input)
	if len(fields) != 2 {
		return
	}
	idx, err := strconv.Atoi(fields[1])
	if err != nil || idx < 1 || idx > len(views) {
		return
	}
	view := views[idx-1]

	switch fields[0] {
	case "t":
		line, err := e.Talk(view.ID)
		if err != nil {
			color.Red("%v", err)
			return
		}
		color.Cyan("%s: %q", view.Name, line)
	case "o":
		doCharacterTrade(e, in, view)
	case "q":
		doCharacterQuests(e, in, view)
	}
}

func doCharacterTrade(e *engine.Engine, in *bufio.Scanner, view engine.CharacterView) {
	offers, err := e.CharacterOffers(view.ID)
	if err != nil {
		color.Red("%v", err)
		return
	}
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Resource", "Their Price"}),
	)
	for _, o := range offers {
		price := "market"
		if q, err := e.QuotePrice(o.Resource); err == nil {
			price = fmt.Sprintf("%.2f", q*o.PriceMult)
		}
		_ = table.Append([]string{string(o.Resource), price})
	}
	_ = table.Render()

	res, ok := promptResource(in)
	if !ok {
		return
	}
	amount, ok := promptFloat(in, "Amount: ")
	if !ok {
		return
	}
	if err := e.BuyFromCharacter(view.ID, res, amount); err != nil {
		color.Red("%v", err)
		return
	}
	color.Green("%s nods and hands over the goods.", view.Name)
}

func doCharacterQuests(e *engine.Engine, in *bufio.Scanner, view engine.CharacterView) {
	if len(view.OpenQuests) == 0 {
		fmt.Printf("%s has nothing to ask of you.\n", view.Name)
		return
	}
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"#", "Quest", "Hint"}),
	)
	for i, id := range view.OpenQuests {
		q, ok := characters.QuestByID(id)
		if !ok {
			continue
		}
		_ = table.Append([]string{strconv.Itoa(i + 1), q.Title, q.Hint})
	}
	_ = table.Render()

	idx, ok := promptInt(in, "Turn in: ")
	if !ok || idx < 1 || idx > len(view.OpenQuests) {
		return
	}
	if err := e.CompleteQuest(view.ID, view.OpenQuests[idx-1]); err != nil {
		color.Red("%v", err)
		return
	}
	color.Green("%s is pleased with your work.", view.Name)
}

func printChronicle(e *engine.Engine) {
	entries := e.RecentEvents(12)
	if len(entries) == 0 {
		fmt.Println("The chronicle is still blank.")
		return
	}
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Day", "Kind", "Entry"}),
	)
	for _, ev := range entries {
		_ = table.Append([]string{strconv.Itoa(ev.Day), ev.Category, ev.Description})
	}
	_ = table.Render()
}

func printLegacy(e *engine.Engine) {
	leg := e.FinalLegacy()
	head := color.New(color.FgGreen, color.Bold)
	head.Printf("\n%s\n", leg.Title)
	fmt.Printf("The chronicles remember a %s settlement, score %.1f.\n", leg.Category, leg.Score)

	cats := make([]string, 0, len(leg.Scores))
	for c := range leg.Scores {
		cats = append(cats, string(c))
	}
	sort.Strings(cats)
	for _, c := range cats {
		fmt.Printf("  %-14s %.1f\n", c, leg.Scores[engine.VictoryCategory(c)])
	}
}

func prompt(in *bufio.Scanner, label string) (string, bool) {
	fmt.Print(label)
	if !in.Scan() {
		return "", false
	}
	return strings.TrimSpace(in.Text()), true
}

func promptInt(in *bufio.Scanner, label string) (int, bool) {
	s, ok := prompt(in, label)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func promptFloat(in *bufio.Scanner, label string) (float64, bool) {
	s, ok := prompt(in, label)
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0, false
	}
	return f, true
}

func promptResource(in *bufio.Scanner) (economy.Resource, bool) {
	s, ok := prompt(in, "Resource: ")
	if !ok {
		return "", false
	}
	res, found := parseResource(s)
	if !found {
		color.Red("No resource called %q.", s)
		return "", false
	}
	return res, true
}

func parseResource(name string) (economy.Resource, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, r := range economy.All {
		if string(r) == name {
			return r, true
		}
	}
	return "", false
}

// formatAmounts renders a resource map as "wood 15, rock 5" in a stable
// order.
func formatAmounts(amounts map[economy.Resource]float64) string {
	if len(amounts) == 0 {
		return "-"
	}
	keys := make([]string, 0, len(amounts))
	for r := range amounts {
		keys = append(keys, string(r))
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s %s", k,
			humanize.CommafWithDigits(amounts[economy.Resource(k)], 1)))
	}
	return strings.Join(parts, ", ")
}
