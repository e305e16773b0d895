package votes

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/pyrumble/RumbleBot/internal/bot"
)

// Embed colors.
const (
	colorVoted    = 0x2ECC71
	colorNotVoted = 0xF1C40F
	colorError    = 0xE74C3C
)

// Commands returns the slash commands for this module.
func Commands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "check-vote",
			Description: "Check if you have voted or not",
		},
	}
}

// CommandHandlers holds the vote command handlers.
type CommandHandlers struct {
	store   VoteStore
	voteURL string
}

// NewCommandHandlers creates new CommandHandlers.
func NewCommandHandlers(store VoteStore, voteURL string) *CommandHandlers {
	return &CommandHandlers{store: store, voteURL: voteURL}
}

// HandleCheckVote handles the /check-vote command.
func (h *CommandHandlers) HandleCheckVote(
	s *discordgo.Session,
	i *discordgo.InteractionCreate,
	r bot.Responder,
) error {
	voted, err := h.store.HasVoted(context.Background(), i.Member.User.ID)
	if err != nil {
		return respondEmbed(r, "Error", "Could not check your vote status.", colorError)
	}

	if voted {
		return respondEmbed(r, "Vote status",
			"You have already voted!\nYou can vote every 12 hours.", colorVoted)
	}

	description := "You have not voted for the bot!"
	if h.voteURL != "" {
		description = fmt.Sprintf("You have not voted for the bot!\n[Vote here](%s)", h.voteURL)
	}
	return respondEmbed(r, "Vote status", description, colorNotVoted)
}

func respondEmbed(r bot.Responder, title, description string, color int) error {
	return r.Respond(&discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{
				{
					Title:       title,
					Description: description,
					Color:       color,
				},
			},
		},
	})
}
