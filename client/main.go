package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"
)

type playerStatus struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsHost   bool   `json:"is_host"`
}

type beatmapStatus struct {
	Artist  string  `json:"artist"`
	Title   string  `json:"title"`
	Version string  `json:"version"`
	Stars   float64 `json:"stars"`
}

type lobbyStatus struct {
	ID            int64          `json:"id"`
	Name          string         `json:"name"`
	Size          int            `json:"size"`
	SlotsOccupied int            `json:"slots_occupied"`
	Playing       bool           `json:"playing"`
	State         string         `json:"state"`
	Players       []playerStatus `json:"players"`
	Beatmap       *beatmapStatus `json:"beatmap"`
}

func main() {
	host := flag.String("host", "localhost:8080", "server address")
	flag.Parse()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	u := url.URL{Scheme: "ws", Host: *host, Path: "/ws"}
	log.Printf("Connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	defer c.Close()

	done := make(chan struct{})

	go func() {
		defer close(done)
		for {
			_, message, err := c.ReadMessage()
			if err != nil {
				log.Println("Read error:", err)
				return
			}

			var statuses []lobbyStatus
			if err := json.Unmarshal(message, &statuses); err != nil {
				log.Printf("Received invalid status payload: %v", err)
				continue
			}
			printStatuses(statuses)
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-interrupt:
			log.Println("Interrupt received, closing connection.")
			err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			if err != nil {
				log.Println("Write close error:", err)
			}
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			return
		}
	}
}

func printStatuses(statuses []lobbyStatus) {
	fmt.Printf("--- %s ---\n", time.Now().Format("15:04:05"))
	if len(statuses) == 0 {
		fmt.Println("no lobbies")
		return
	}
	for _, s := range statuses {
		fmt.Printf("#mp_%d %q [%s] %d/%d players\n", s.ID, s.Name, s.State, s.SlotsOccupied, s.Size)
		if s.Beatmap != nil {
			fmt.Printf("  map: %s - %s [%s] %.2f*\n", s.Beatmap.Artist, s.Beatmap.Title, s.Beatmap.Version, s.Beatmap.Stars)
		}
		for _, p := range s.Players {
			marker := " "
			if p.IsHost {
				marker = "*"
			}
			fmt.Printf("  %s %s (%d)\n", marker, p.Username, p.ID)
		}
	}
}
