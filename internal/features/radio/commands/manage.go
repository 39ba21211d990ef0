package commands

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/hxnx/radiowave/internal/features/modals"
	shared "github.com/hxnx/radiowave/internal/features/shared"
	"github.com/hxnx/radiowave/internal/radio"
	"github.com/hxnx/radiowave/internal/station"
)

const (
	editModalIDPrefix = "radio_edit_modal"
	editNameInputID   = "radio_edit_name"
	editURLInputID    = "radio_edit_url"
	editGenreInputID  = "radio_edit_genre"
	editImageInputID  = "radio_edit_image"
	editBackupInputID = "radio_edit_backup"
)

func ToggleFavorite(deps *shared.Deps, s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	session, ok := SessionFor(deps, s, i)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	index := stationIndex(options)
	favorite, err := session.ToggleFavorite(ctx, index)
	if err != nil {
		shared.RespondError(s, i, err)
		return
	}

	st, _ := session.Station(index)
	if favorite {
		shared.RespondEphemeral(s, i, fmt.Sprintf("⭐ **%s** 방송국을 즐겨찾기에 추가했습니다.", st.Name))
		return
	}
	shared.RespondEphemeral(s, i, fmt.Sprintf("**%s** 방송국을 즐겨찾기에서 해제했습니다.", st.Name))
}

func stationFromOptions(options []*discordgo.ApplicationCommandInteractionDataOption) station.Station {
	return station.Station{
		Name:      shared.GetOptionString(options, optionName),
		URL:       shared.GetOptionString(options, optionURL),
		Genre:     shared.GetOptionString(options, optionGenre),
		Image:     shared.GetOptionString(options, optionImage),
		BackupURL: shared.GetOptionString(options, optionBackup),
	}
}

func Add(deps *shared.Deps, s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	session, ok := SessionFor(deps, s, i)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	st := stationFromOptions(options)
	index, err := session.Add(ctx, st)
	if err != nil {
		shared.RespondError(s, i, err)
		return
	}
	shared.RespondEphemeral(s, i, fmt.Sprintf("✅ %d번 **%s** 방송국을 추가했습니다.", index+1, strings.TrimSpace(st.Name)))
}

// Edit shows the station in a modal and saves what the user submits. The
// station is tracked by ID while the modal is open.
func Edit(deps *shared.Deps, s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	session, ok := SessionFor(deps, s, i)
	if !ok {
		return
	}

	index := stationIndex(options)
	items := session.View(station.TabAll, "")
	if index < 0 || index >= len(items) {
		shared.RespondError(s, i, station.ErrIndex)
		return
	}
	item := items[index]

	response, err := deps.Awaiter.ShowAndAwaitModal(s, i, editModal(item), deps.PromptTimeout)
	if err != nil {
		if !errors.Is(err, modals.ErrTimeout) {
			log.Printf("edit modal failed: %v", err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	current, found := session.IndexOf(item.ID)
	if !found {
		shared.RespondError(s, response.Interaction, station.ErrIndex)
		return
	}

	data := response.Data
	updated := station.Station{
		Name:      getModalInputValue(data, editNameInputID),
		URL:       getModalInputValue(data, editURLInputID),
		Genre:     getModalInputValue(data, editGenreInputID),
		Image:     getModalInputValue(data, editImageInputID),
		BackupURL: getModalInputValue(data, editBackupInputID),
	}
	if err := session.Update(ctx, current, updated); err != nil {
		shared.RespondError(s, response.Interaction, err)
		return
	}
	shared.RespondEphemeral(s, response.Interaction, fmt.Sprintf("✏️ %d번 **%s** 방송국을 수정했습니다.", current+1, strings.TrimSpace(updated.Name)))
}

func editModal(item station.Item) *discordgo.InteractionResponseData {
	input := func(id, label, value string, required bool) discordgo.ActionsRow {
		return discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID: id,
					Label:    label,
					Style:    discordgo.TextInputShort,
					Value:    value,
					Required: required,
				},
			},
		}
	}

	st := item.Station
	return &discordgo.InteractionResponseData{
		CustomID: editModalIDPrefix + ":" + item.ID,
		Title:    "방송국 수정",
		Components: []discordgo.MessageComponent{
			input(editNameInputID, "이름", st.Name, true),
			input(editURLInputID, "스트림 주소", st.URL, true),
			input(editGenreInputID, "장르", st.Genre, false),
			input(editImageInputID, "로고 이미지 주소", st.Image, false),
			input(editBackupInputID, "백업 스트림 주소", st.BackupURL, false),
		},
	}
}

func getModalInputValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, component := range data.Components {
		var row discordgo.ActionsRow
		switch r := component.(type) {
		case discordgo.ActionsRow:
			row = r
		case *discordgo.ActionsRow:
			row = *r
		default:
			continue
		}
		for _, inner := range row.Components {
			switch input := inner.(type) {
			case discordgo.TextInput:
				if input.CustomID == customID {
					return input.Value
				}
			case *discordgo.TextInput:
				if input.CustomID == customID {
					return input.Value
				}
			}
		}
	}
	return ""
}

func Delete(deps *shared.Deps, s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	session, ok := SessionFor(deps, s, i)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), deps.PromptTimeout+lookupTimeout)
	defer cancel()

	confirmer := deps.Confirmer(s, i, false)
	deleted, err := session.Delete(ctx, stationIndex(options), confirmer)
	finish(s, i, confirmer, err, fmt.Sprintf("🗑️ **%s** 방송국을 삭제했습니다.", deleted.Name))
}

func DeleteAll(deps *shared.Deps, s *discordgo.Session, i *discordgo.InteractionCreate) {
	session, ok := SessionFor(deps, s, i)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), deps.PromptTimeout+lookupTimeout)
	defer cancel()

	confirmer := deps.Confirmer(s, i, false)
	err := session.DeleteAll(ctx, confirmer)
	finish(s, i, confirmer, err, "🗑️ 모든 방송국을 삭제했습니다.")
}

// finish reports the outcome of a confirmed action on the prompt when there
// was one, and as a fresh reply otherwise.
func finish(s *discordgo.Session, i *discordgo.InteractionCreate, confirmer *modals.Confirmer, err error, success string) {
	message := success
	if err != nil {
		if !errors.Is(err, radio.ErrCancelled) {
			log.Printf("radio action failed in %s: %v", i.GuildID, err)
		}
		message = radio.Describe(err)
	}

	if confirmer.Prompted() {
		confirmer.Finish(message)
		return
	}
	shared.RespondEphemeral(s, i, message)
}
