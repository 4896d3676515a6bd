// ABOUTME: Admin CLI for arena status and management
// ABOUTME: Displays health, the queue, live matches, and the leaderboard

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
)

type StatusResponse struct {
	AgentsConnected int    `json:"agents_connected"`
	LiveGames       int    `json:"live_games"`
	PlayersRanked   int    `json:"players_ranked"`
	RoyaleActive    bool   `json:"royale_active"`
	Uptime          string `json:"uptime"`
	Queue           struct {
		Size   int      `json:"size"`
		Agents []string `json:"agents"`
	} `json:"queue"`
}

type LiveGame struct {
	SessionID string `json:"session_id"`
	Game      string `json:"game"`
	Player1   string `json:"player1"`
	Player2   string `json:"player2"`
	MoveCount int    `json:"move_count"`
	Finished  bool   `json:"finished"`
}

type LiveGamesResponse struct {
	Games []LiveGame `json:"games"`
}

type LeaderboardEntry struct {
	Name    string  `json:"name"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	Games   int     `json:"games"`
	WinRate float64 `json:"win_rate"`
}

type LeaderboardResponse struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

const banner = `
                      _ _     _                      _           _
  ___ _ __ _   _  ___(_) |__ | | ___        __ _  __| |_ __ ___ (_)_ __
 / __| '__| | | |/ __| | '_ \| |/ _ \_____ / _' |/ _' | '_ ' _ \| | '_ \
| (__| |  | |_| | (__| | |_) | |  __/_____| (_| | (_| | | | | | | | | | |
 \___|_|   \__,_|\___|_|_.__/|_|\___|      \__,_|\__,_|_| |_| |_|_|_| |_|
`

func main() {
	arena := flag.String("arena", getEnv("CRUCIBLE_HTTP", "http://localhost:8787"), "Arena HTTP URL")
	watch := flag.Bool("watch", false, "Continuously watch arena status")
	interval := flag.Duration("interval", 2*time.Second, "Watch interval (with -watch)")
	flag.Parse()

	baseURL := strings.TrimSuffix(*arena, "/")

	if *watch {
		runWatch(baseURL, *interval)
		return
	}

	printStatus(baseURL)
}

func printStatus(baseURL string) {
	color.Cyan(banner)

	printHealth(baseURL)
	fmt.Println()

	printArena(baseURL)
	fmt.Println()

	printLiveGames(baseURL)
	fmt.Println()

	printLeaderboard(baseURL)
	fmt.Println()
}

func runWatch(baseURL string, interval time.Duration) {
	// Clear screen and hide cursor
	fmt.Print("\033[2J\033[H\033[?25l")
	defer fmt.Print("\033[?25h") // Show cursor on exit

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		// Move cursor to top
		fmt.Print("\033[H")
		printStatus(baseURL)
		fmt.Printf("  [watching every %v - press Ctrl+C to stop]\n", interval)

		<-ticker.C
	}
}

func printHealth(baseURL string) {
	fmt.Println("  Health")
	fmt.Println("  ------")

	resp, err := http.Get(baseURL + "/health")
	if err != nil {
		color.Red("  Arena:  UNREACHABLE (%v)", err)
		return
	}
	resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		fmt.Printf("  Arena:  %s\n", color.GreenString("OK"))
	} else {
		color.Red("  Arena:  ERROR (status %d)", resp.StatusCode)
	}

	resp, err = http.Get(baseURL + "/health/ready")
	if err != nil {
		fmt.Printf("  Ready:  UNKNOWN\n")
		return
	}
	defer resp.Body.Close()

	var body [256]byte
	n, _ := resp.Body.Read(body[:])
	status := strings.TrimSpace(string(body[:n]))

	if resp.StatusCode == http.StatusOK {
		fmt.Printf("  Ready:  %s\n", status)
	} else {
		fmt.Printf("  Ready:  NOT READY (%s)\n", status)
	}
}

func printArena(baseURL string) {
	fmt.Println("  Arena")
	fmt.Println("  -----")

	resp, err := http.Get(baseURL + "/api/status")
	if err != nil {
		fmt.Printf("  Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var status StatusResponse
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		fmt.Printf("  Error decoding response: %v\n", err)
		return
	}

	fmt.Printf("  Agents:      %d\n", status.AgentsConnected)
	fmt.Printf("  In queue:    %d", status.Queue.Size)
	if len(status.Queue.Agents) > 0 {
		fmt.Printf("  (%s)", strings.Join(status.Queue.Agents, ", "))
	}
	fmt.Println()
	fmt.Printf("  Live games:  %d\n", status.LiveGames)
	fmt.Printf("  Ranked:      %d\n", status.PlayersRanked)
	if status.RoyaleActive {
		fmt.Printf("  Royale:      %s\n", color.YellowString("RUNNING"))
	}
	fmt.Printf("  Uptime:      %s\n", status.Uptime)
}

func printLiveGames(baseURL string) {
	fmt.Println("  Live Games")
	fmt.Println("  ----------")

	resp, err := http.Get(baseURL + "/api/live-games")
	if err != nil {
		fmt.Printf("  Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var games LiveGamesResponse
	if err := json.NewDecoder(resp.Body).Decode(&games); err != nil {
		fmt.Printf("  Error decoding response: %v\n", err)
		return
	}

	if len(games.Games) == 0 {
		fmt.Println("  (no matches in progress)")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  GAME\tPLAYERS\tMOVES\tSTATE")
	fmt.Fprintln(w, "  ----\t-------\t-----\t-----")
	for _, g := range games.Games {
		state := "playing"
		if g.Finished {
			state = "finished"
		}
		fmt.Fprintf(w, "  %s\t%s vs %s\t%d\t%s\n", g.Game, g.Player1, g.Player2, g.MoveCount, state)
	}
	w.Flush()
}

func printLeaderboard(baseURL string) {
	fmt.Println("  Leaderboard")
	fmt.Println("  -----------")

	resp, err := http.Get(baseURL + "/api/leaderboard")
	if err != nil {
		fmt.Printf("  Error: %v\n", err)
		return
	}
	defer resp.Body.Close()

	var board LeaderboardResponse
	if err := json.NewDecoder(resp.Body).Decode(&board); err != nil {
		fmt.Printf("  Error decoding response: %v\n", err)
		return
	}

	if len(board.Leaderboard) == 0 {
		fmt.Println("  (no ranked players yet)")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  RANK\tNAME\tW\tL\tWIN%")
	fmt.Fprintln(w, "  ----\t----\t-\t-\t----")
	for i, e := range board.Leaderboard {
		name := e.Name
		if len(name) > 24 {
			name = name[:21] + "..."
		}
		fmt.Fprintf(w, "  %d\t%s\t%d\t%d\t%.1f\n", i+1, name, e.Wins, e.Losses, e.WinRate)
	}
	w.Flush()
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
