package stationview

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/radiowave/internal/station"
)

const (
	PageCustomIDPrefix     = "radio_page"
	PlayCustomIDPrefix     = "radio_play"
	FavoriteCustomIDPrefix = "radio_fav"
	DefaultPerPage         = 5
	MaxPerPage             = 8

	// custom IDs are capped at 100 characters
	maxSearchInCustomID = 40
)

type PageInfo struct {
	Page       int
	PerPage    int
	TotalItems int
	TotalPages int
	StartIndex int
	EndIndex   int
}

// Request identifies one page of a listing.
type Request struct {
	Tab     station.Tab
	Search  string
	Page    int
	PerPage int
}

func tabLabel(tab station.Tab) string {
	switch tab {
	case station.TabFavorites:
		return "즐겨찾기"
	case station.TabRecent:
		return "최근 재생"
	default:
		return "전체"
	}
}

func BuildStationComponents(items []station.Item, req Request) ([]discordgo.MessageComponent, PageInfo) {
	total := len(items)
	perPage := req.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	perPage = clamp(perPage, 1, MaxPerPage)
	totalPages := max(1, int(math.Ceil(float64(total)/float64(perPage))))
	page := clamp(req.Page, 1, totalPages)

	start := (page - 1) * perPage
	end := min(start+perPage, total)

	info := PageInfo{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
		StartIndex: start,
		EndIndex:   end,
	}

	divider := true
	spacing := discordgo.SeparatorSpacingSizeSmall
	accent := 0xC9A0FF

	header := fmt.Sprintf("📻 **라디오 · %s**", tabLabel(req.Tab))
	if req.Search != "" {
		header += fmt.Sprintf(" · \"%s\" 검색", req.Search)
	}

	body := []discordgo.MessageComponent{
		discordgo.TextDisplay{Content: header},
		discordgo.TextDisplay{Content: fmt.Sprintf("페이지 **%d/%d** · 방송국 **%d개**", page, totalPages, total)},
		discordgo.Separator{Divider: &divider, Spacing: &spacing},
	}

	if total == 0 {
		body = append(body, discordgo.TextDisplay{Content: emptyMessage(req)})
	}

	favoriteOptions := make([]discordgo.SelectMenuOption, 0, end-start)
	for _, item := range items[start:end] {
		body = append(body, discordgo.Section{
			Components: []discordgo.MessageComponent{
				discordgo.TextDisplay{Content: FormatLine(item)},
			},
			Accessory: discordgo.Button{
				Style:    playButtonStyle(item),
				Label:    "재생",
				CustomID: PlayCustomIDPrefix + ":" + item.ID,
			},
		})

		label := "즐겨찾기 추가"
		if item.Favorite {
			label = "즐겨찾기 해제"
		}
		favoriteOptions = append(favoriteOptions, discordgo.SelectMenuOption{
			Label:       truncate(fmt.Sprintf("%d. %s", item.Index+1, item.Station.Name), 100),
			Description: label,
			Value:       item.ID,
		})
	}

	body = append(body, discordgo.Separator{Divider: &divider, Spacing: &spacing})
	if len(favoriteOptions) > 0 {
		body = append(body, discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.SelectMenu{
					MenuType:    discordgo.StringSelectMenu,
					CustomID:    FavoriteCustomIDPrefix,
					Placeholder: "⭐ 즐겨찾기 전환",
					Options:     favoriteOptions,
				},
			},
		})
	}
	body = append(body, discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				Style:    discordgo.SecondaryButton,
				Label:    "이전",
				CustomID: MakePageCustomID(Request{Tab: req.Tab, Search: req.Search, Page: page - 1, PerPage: perPage}),
				Disabled: page <= 1,
			},
			discordgo.Button{
				Style:    discordgo.SecondaryButton,
				Label:    "다음",
				CustomID: MakePageCustomID(Request{Tab: req.Tab, Search: req.Search, Page: page + 1, PerPage: perPage}),
				Disabled: page >= totalPages,
			},
		},
	})

	return []discordgo.MessageComponent{
		discordgo.Container{
			AccentColor: &accent,
			Components:  body,
		},
	}, info
}

// FormatLine renders one station as shown to users, with its 1-based number.
func FormatLine(item station.Item) string {
	var b strings.Builder
	if item.Current {
		b.WriteString("▶️ ")
	}
	fmt.Fprintf(&b, "%d. **%s**", item.Index+1, item.Station.Name)
	if item.Favorite {
		b.WriteString(" ⭐")
	}
	if item.Station.Genre != "" {
		fmt.Fprintf(&b, "\n-# %s", item.Station.Genre)
	}
	return b.String()
}

func emptyMessage(req Request) string {
	switch {
	case req.Search != "":
		return "검색 결과가 없습니다."
	case req.Tab == station.TabFavorites:
		return "즐겨찾기한 방송국이 없습니다."
	case req.Tab == station.TabRecent:
		return "최근 재생한 방송국이 없습니다."
	default:
		return "등록된 방송국이 없습니다. `/라디오 추가`로 방송국을 등록해 주세요."
	}
}

func playButtonStyle(item station.Item) discordgo.ButtonStyle {
	if item.Current {
		return discordgo.SuccessButton
	}
	return discordgo.PrimaryButton
}

func MakePageCustomID(req Request) string {
	page := req.Page
	if page < 1 {
		page = 1
	}
	perPage := clamp(req.PerPage, 1, MaxPerPage)
	tab := req.Tab
	if tab == "" {
		tab = station.TabAll
	}
	search := strings.ReplaceAll(truncate(req.Search, maxSearchInCustomID), ":", " ")
	return fmt.Sprintf("%s:%s:%d:%d:%s", PageCustomIDPrefix, tab, page, perPage, search)
}

func ParsePageCustomID(customID string) (Request, bool) {
	if !strings.HasPrefix(customID, PageCustomIDPrefix+":") {
		return Request{}, false
	}

	parts := strings.SplitN(customID, ":", 5)
	if len(parts) != 5 {
		return Request{}, false
	}

	tab, err := station.ParseTab(parts[1])
	if err != nil {
		return Request{}, false
	}
	page, err := strconv.Atoi(parts[2])
	if err != nil || page < 1 {
		return Request{}, false
	}
	perPage, err := strconv.Atoi(parts[3])
	if err != nil || perPage < 1 {
		return Request{}, false
	}

	return Request{
		Tab:     tab,
		Search:  parts[4],
		Page:    page,
		PerPage: clamp(perPage, 1, MaxPerPage),
	}, true
}

// StationIDFromCustomID extracts the station ID from a play button.
func StationIDFromCustomID(customID string) (string, bool) {
	id, ok := strings.CutPrefix(customID, PlayCustomIDPrefix+":")
	return id, ok && id != ""
}

func truncate(value string, limit int) string {
	if utf8.RuneCountInString(value) <= limit {
		return value
	}
	runes := []rune(value)
	return string(runes[:limit-1]) + "…"
}

func clamp(value, minValue, maxValue int) int {
	if value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}
	return value
}
