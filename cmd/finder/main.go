package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/TWCkaijin/Finder-For-FOOOOOD/internal/client"
	"github.com/TWCkaijin/Finder-For-FOOOOOD/internal/search"
)

// Interactive terminal front end over the search controller.
func main() {
	var (
		server   = flag.String("server", "http://localhost:5000", "API server base URL")
		location = flag.String("location", "", "search location (place name or lat,lng)")
		keywords = flag.String("keywords", "", "search keywords (blank uses the default)")
		radius   = flag.String("radius", "1km", "search radius: 250m, 1km, 5km, 10km, unlimited")
		language = flag.String("lang", "zh-TW", "result language: zh-TW, en, ja")
		model    = flag.String("model", "", "model override (blank uses the server default)")
		token    = flag.String("token", "", "bearer token for history-aware search")
		dev      = flag.Bool("dev", false, "stream request diagnostics")
	)
	flag.Parse()

	if *location == "" {
		fmt.Fprintln(os.Stderr, "usage: finder -location <place> [-keywords ...] [-radius 1km]")
		os.Exit(1)
	}

	api := client.NewAPI(*server)
	if *token != "" {
		api.SetToken(*token)
	}

	controller := client.NewController(api, *dev)
	controller.Start(client.SearchParams{
		Location: *location,
		Keywords: *keywords,
		Radius:   *radius,
		Language: *language,
		Model:    *model,
	})

	snap := waitForOutcome(controller)
	if snap.State == client.StateError {
		fmt.Fprintf(os.Stderr, "search failed: %s\n", snap.Err)
		os.Exit(1)
	}

	printed := printNewResults(snap.Displayed, 0)
	if *dev && snap.StreamOutput != "" {
		fmt.Println("--- diagnostics ---")
		fmt.Print(snap.StreamOutput)
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		snap = controller.Snapshot()
		if snap.Exhausted {
			fmt.Println("No more restaurants in this search.")
			return
		}

		fmt.Print("[n]ext page, [q]uit: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}

		switch strings.TrimSpace(line) {
		case "n":
			controller.Next()
			snap = controller.Snapshot()
			printed = printNewResults(snap.Displayed, printed)
		case "q":
			controller.Back()
			return
		}
	}
}

// waitForOutcome polls until the search settles in a terminal state.
func waitForOutcome(c *client.Controller) client.Snapshot {
	for {
		snap := c.Snapshot()
		if snap.State == client.StateResult || snap.State == client.StateError {
			return snap
		}
		time.Sleep(50 * time.Millisecond)
	}
}

// printNewResults prints the entries added since the previous page
// and returns the new count.
func printNewResults(displayed []search.Restaurant, from int) int {
	for i := from; i < len(displayed); i++ {
		r := displayed[i]
		open := "open"
		if !r.IsOpen {
			open = "closed"
		}
		fmt.Printf("%2d. %s  %.1f★  %s  %s (%s)\n", i+1, r.Name, r.Rating, r.PriceLevel, r.Distance, open)
		fmt.Printf("    %s\n", r.Address)
		if len(r.RecommendedDishes) > 0 {
			fmt.Printf("    try: %s\n", strings.Join(r.RecommendedDishes, ", "))
		}
	}
	return len(displayed)
}
