package acmonitor

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// messageCharacterLimit is the transport's hard limit on message length.
const messageCharacterLimit = 2000

const truncationMarker = " ... "

type leaderboardEntry struct {
	name string
	car  string
	lap  *LapRecord
}

// RenderLeaderboard builds the ranked best-laps message for the current
// track. With oneLapPerDriver set, each driver appears once with their single
// fastest (car, lap) pair; otherwise every (driver, car) best is ranked.
// Rendering is deterministic for a given state.
func RenderLeaderboard(state *SessionState, oneLapPerDriver bool, moreLapsURL string) string {
	var entries []leaderboardEntry

	for name, byCar := range state.Laps {
		if len(byCar) == 0 {
			continue
		}

		if oneLapPerDriver {
			car, lap := bestLapForDriver(byCar)
			entries = append(entries, leaderboardEntry{name: name, car: car, lap: lap})
		} else {
			for car, lap := range byCar {
				entries = append(entries, leaderboardEntry{name: name, car: car, lap: lap})
			}
		}
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].lap.TimeMS != entries[j].lap.TimeMS {
			return entries[i].lap.TimeMS < entries[j].lap.TimeMS
		}

		if entries[i].name != entries[j].name {
			return entries[i].name < entries[j].name
		}

		return entries[i].car < entries[j].car
	})

	var builder strings.Builder

	builder.WriteString("@everyone\n**This week: ")

	if state.Carset != "" {
		builder.WriteString(state.Carset + " at ")
	}

	trackName := state.TrackName

	if trackName == "" {
		trackName = state.TrackDirectory
	}

	if trackName != "" {
		builder.WriteString(trackName + "!**\n\n")
	}

	for i, entry := range entries {
		builder.WriteString(fmt.Sprintf("**%d.** %s %s (%s)\n", i+1, entry.lap.Time, entry.name, entry.car))
	}

	message := builder.String()

	var footer string

	if moreLapsURL != "" {
		footer = "\n**More:** " + moreLapsURL
	}

	if len(message)+len(footer) > messageCharacterLimit {
		cut := messageCharacterLimit - len(truncationMarker) - len(footer)

		if cut < 0 {
			cut = 0
		} else if cut > len(message) {
			cut = len(message)
		}

		// never cut a multi-byte rune in half
		for cut > 0 && cut < len(message) && !utf8.RuneStart(message[cut]) {
			cut--
		}

		return message[:cut] + truncationMarker + footer
	}

	return message + footer
}

// bestLapForDriver picks the driver's fastest lap across cars, breaking ties
// by car name so repeated renders agree.
func bestLapForDriver(byCar map[string]*LapRecord) (string, *LapRecord) {
	var bestCar string
	var best *LapRecord

	for car, lap := range byCar {
		if best == nil || lap.TimeMS < best.TimeMS || (lap.TimeMS == best.TimeMS && car < bestCar) {
			bestCar = car
			best = lap
		}
	}

	return bestCar, best
}
