package commands

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/bwmarrin/discordgo"
	shared "github.com/hxnx/radiowave/internal/features/shared"
	"github.com/hxnx/radiowave/internal/radio"
	"github.com/hxnx/radiowave/internal/station"
)

const (
	ExportFileName = "radiowave-stations.json"

	maxImportSize = 1 << 20
)

var errImportTooLarge = errors.New("import file is too large")

func Export(deps *shared.Deps, s *discordgo.Session, i *discordgo.InteractionCreate) {
	session, ok := SessionFor(deps, s, i)
	if !ok {
		return
	}

	doc := session.Export()
	data, err := doc.MarshalIndent()
	if err != nil {
		log.Printf("station export failed for %s: %v", i.GuildID, err)
		shared.RespondEphemeral(s, i, "방송국 목록을 내보내지 못했습니다.")
		return
	}

	err = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: fmt.Sprintf("📦 방송국 %d개를 내보냈습니다.", len(doc.Channels)),
			Files: []*discordgo.File{
				{
					Name:        ExportFileName,
					ContentType: "application/json",
					Reader:      bytes.NewReader(data),
				},
			},
			Flags: discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("failed to send export: %v", err)
	}
}

// Import downloads the attached document and asks whether to merge it into
// the current list or replace the list with it.
func Import(deps *shared.Deps, s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) {
	attachment := shared.GetOptionAttachment(i, options, optionFile)
	if attachment == nil {
		shared.RespondEphemeral(s, i, "가져올 파일을 첨부해 주세요.")
		return
	}
	if attachment.Size > maxImportSize {
		shared.RespondEphemeral(s, i, "파일이 너무 큽니다. (최대 1MB)")
		return
	}

	session, ok := SessionFor(deps, s, i)
	if !ok {
		return
	}
	if err := shared.DeferEphemeral(s, i); err != nil {
		log.Printf("import defer failed: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), deps.PromptTimeout+playTimeout)
	defer cancel()

	data, err := download(ctx, s.Client, attachment.URL)
	if err != nil {
		log.Printf("import download failed for %s: %v", i.GuildID, err)
		shared.FollowupEphemeral(s, i, "첨부 파일을 내려받지 못했습니다.")
		return
	}

	confirmer := deps.Confirmer(s, i, true)
	mode, count, err := session.Import(ctx, data, confirmer)

	message := importMessage(mode, count)
	if err != nil {
		if !errors.Is(err, radio.ErrCancelled) {
			log.Printf("station import failed for %s: %v", i.GuildID, err)
		}
		message = radio.Describe(err)
	}

	if confirmer.Prompted() {
		confirmer.Finish(message)
		return
	}
	shared.FollowupEphemeral(s, i, message)
}

func importMessage(mode station.ImportMode, count int) string {
	if mode == station.ImportReplace {
		return fmt.Sprintf("📥 방송국 목록을 %d개로 교체했습니다.", count)
	}
	return fmt.Sprintf("📥 방송국 %d개를 추가했습니다.", count)
}

func download(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImportSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImportSize {
		return nil, errImportTooLarge
	}
	return data, nil
}
