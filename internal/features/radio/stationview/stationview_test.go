package stationview_test

import (
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/radiowave/internal/features/radio/stationview"
	"github.com/hxnx/radiowave/internal/station"
)

func items(n int) []station.Item {
	out := make([]station.Item, n)
	for i := range out {
		out[i] = station.Item{
			Index:   i,
			ID:      "id-" + string(rune('a'+i)),
			Station: station.Station{Name: "Station", URL: "https://radio.example"},
		}
	}
	return out
}

func TestPageCustomID_RoundTrip(t *testing.T) {
	// given
	req := stationview.Request{Tab: station.TabFavorites, Search: "jazz: live", Page: 3, PerPage: 6}

	// when
	parsed, ok := stationview.ParsePageCustomID(stationview.MakePageCustomID(req))

	// then
	if !ok {
		t.Fatalf("Expected custom id to parse")
	}
	if parsed.Tab != station.TabFavorites || parsed.Page != 3 || parsed.PerPage != 6 {
		t.Errorf("Unexpected request %+v", parsed)
	}
	if parsed.Search != "jazz  live" {
		t.Errorf("Expected separators to be stripped from search, got %q", parsed.Search)
	}
}

func TestPageCustomID_FitsDiscordLimit(t *testing.T) {
	req := stationview.Request{Tab: station.TabFavorites, Search: strings.Repeat("가", 200), Page: 12, PerPage: 8}

	if id := stationview.MakePageCustomID(req); len([]rune(id)) > 100 {
		t.Errorf("Expected custom id within 100 characters, got %d", len([]rune(id)))
	}
}

func TestParsePageCustomID_RejectsForeignIDs(t *testing.T) {
	for _, id := range []string{"music_queue_page:1:10", "radio_page:nope:1:5:", "radio_page:all:0:5:"} {
		if _, ok := stationview.ParsePageCustomID(id); ok {
			t.Errorf("Expected %q to be rejected", id)
		}
	}
}

func TestBuildStationComponents_Pagination(t *testing.T) {
	// when
	_, info := stationview.BuildStationComponents(items(12), stationview.Request{Page: 9, PerPage: 5})

	// then
	if info.TotalPages != 3 || info.Page != 3 {
		t.Errorf("Expected last of 3 pages, got %d/%d", info.Page, info.TotalPages)
	}
	if info.StartIndex != 10 || info.EndIndex != 12 {
		t.Errorf("Expected items 10-12, got %d-%d", info.StartIndex, info.EndIndex)
	}
}

func TestBuildStationComponents_PlayButtonsCarryStationIDs(t *testing.T) {
	components, _ := stationview.BuildStationComponents(items(2), stationview.Request{})

	container := components[0].(discordgo.Container)
	var ids []string
	for _, c := range container.Components {
		if section, ok := c.(discordgo.Section); ok {
			button := section.Accessory.(discordgo.Button)
			id, ok := stationview.StationIDFromCustomID(button.CustomID)
			if !ok {
				t.Errorf("Expected a play custom id, got %s", button.CustomID)
			}
			ids = append(ids, id)
		}
	}
	if len(ids) != 2 || ids[0] != "id-a" || ids[1] != "id-b" {
		t.Errorf("Expected station ids [id-a id-b], got %v", ids)
	}
}

func TestFormatLine(t *testing.T) {
	line := stationview.FormatLine(station.Item{
		Index:    1,
		Station:  station.Station{Name: "Jazz FM", Genre: "Jazz"},
		Favorite: true,
		Current:  true,
	})

	if line != "▶️ 2. **Jazz FM** ⭐\n-# Jazz" {
		t.Errorf("Unexpected line %q", line)
	}
}
