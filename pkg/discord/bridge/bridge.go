// Package bridge connects the transport-agnostic settings console to the
// Discord gateway: component interactions become console actions, inbound
// messages are offered to edit sessions, and menus render as embeds with
// button rows.
package bridge

import (
	"context"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/small-frappuccino/mirrorcore/pkg/console"
	"github.com/small-frappuccino/mirrorcore/pkg/errutil"
	"github.com/small-frappuccino/mirrorcore/pkg/log"
)

// CommandName is the slash command that opens a settings console.
const CommandName = "settings"

// Bridge owns the gateway handlers and implements console.Messenger.
type Bridge struct {
	session *discordgo.Session
	console *console.Console

	// Popup responses need the interaction that triggered them. The last
	// console interaction per chat/user is kept so Popup can answer it
	// ephemerally.
	mu           sync.Mutex
	interactions map[popupKey]*discordgo.Interaction
}

type popupKey struct {
	chatID string
	userID string
}

// New wires a bridge to an open session. SetConsole must be called before
// Start; the two-step setup breaks the constructor cycle between the bridge
// and the console that uses it as Messenger.
func New(s *discordgo.Session) *Bridge {
	return &Bridge{
		session:      s,
		interactions: make(map[popupKey]*discordgo.Interaction),
	}
}

func (b *Bridge) SetConsole(c *console.Console) { b.console = c }

// Start registers the gateway handlers and the slash command.
func (b *Bridge) Start() error {
	b.session.AddHandler(b.onInteraction)
	b.session.AddHandler(b.onMessage)

	return errutil.HandleDiscordError("register command", func() error {
		_, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, "", &discordgo.ApplicationCommand{
			Name:        CommandName,
			Description: "Open the settings console",
		})
		return err
	})
}

func (b *Bridge) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		if i.ApplicationCommandData().Name == CommandName {
			b.openConsole(i)
		}
	case discordgo.InteractionMessageComponent:
		data := i.MessageComponentData().CustomID
		if !strings.HasPrefix(data, console.Namespace+" ") {
			return
		}
		b.handleComponent(i, data)
	}
}

// openConsole posts a fresh console message and routes the root action
// through the console so navigation state is initialized.
func (b *Bridge) openConsole(i *discordgo.InteractionCreate) {
	chatID := i.ChannelID
	userID := interactionUserID(i)

	msg, err := b.session.ChannelMessageSendComplex(chatID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{{Description: "Loading settings…"}},
	})
	if err != nil {
		log.Discord().Error("Failed to post console message", "channel", chatID, "error", err)
		return
	}

	errutil.LogBestEffort("ack open", b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: "Settings console opened.",
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}))

	b.rememberInteraction(chatID, userID, i.Interaction)
	b.dispatch(console.Action{
		ChatID:    chatID,
		UserID:    userID,
		MessageID: msg.ID,
		Data:      console.Namespace + " main",
	})
}

func (b *Bridge) handleComponent(i *discordgo.InteractionCreate, data string) {
	// Ack immediately so the console can take its time, including the
	// minute-long edit sessions.
	errutil.LogBestEffort("ack component", b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredMessageUpdate,
	}))

	chatID := i.ChannelID
	userID := interactionUserID(i)
	b.rememberInteraction(chatID, userID, i.Interaction)

	b.dispatch(console.Action{
		ChatID:    chatID,
		UserID:    userID,
		MessageID: i.Message.ID,
		Data:      data,
	})
}

// dispatch runs an action on its own goroutine; edit-session actions block
// until the session resolves and must not stall the gateway handler.
func (b *Bridge) dispatch(act console.Action) {
	go func() {
		if err := b.console.HandleAction(context.Background(), act); err != nil {
			log.Discord().Error("Console action failed", "data", act.Data, "error", err)
		}
	}()
}

func (b *Bridge) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	in := console.Incoming{
		ChatID:    m.ChannelID,
		UserID:    m.Author.ID,
		MessageID: m.ID,
		Kind:      console.KindText,
		Text:      m.Content,
	}
	if len(m.Attachments) > 0 {
		att := m.Attachments[0]
		in.Attachment = att.URL
		in.Filename = att.Filename
		if strings.HasPrefix(att.ContentType, "image/") {
			in.Kind = console.KindPhoto
		} else {
			in.Kind = console.KindDocument
		}
	}

	if b.console.HandleMessage(in) {
		log.Discord().Debug("Message consumed by edit session", "channel", m.ChannelID, "user", m.Author.ID)
	}
}

func (b *Bridge) rememberInteraction(chatID, userID string, i *discordgo.Interaction) {
	b.mu.Lock()
	b.interactions[popupKey{chatID, userID}] = i
	b.mu.Unlock()
}

func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// EditMenu renders a menu into the console message, replacing its embed and
// components in place.
func (b *Bridge) EditMenu(chatID, messageID string, m console.Menu) error {
	embed := &discordgo.MessageEmbed{
		Title:       m.Title,
		Description: m.Body,
		Color:       m.Color,
	}
	components := buildComponents(m.Rows)

	return errutil.HandleDiscordError("edit menu", func() error {
		_, err := b.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
			Channel:    chatID,
			ID:         messageID,
			Content:    strPtr(""),
			Embeds:     &[]*discordgo.MessageEmbed{embed},
			Components: &components,
		})
		return err
	})
}

// Notify posts a transient plain message to the chat.
func (b *Bridge) Notify(chatID, text string) error {
	return errutil.HandleDiscordError("notify", func() error {
		_, err := b.session.ChannelMessageSend(chatID, text)
		return err
	})
}

// Popup answers the user's last console interaction ephemerally, falling
// back to a plain chat message when no interaction is on record.
func (b *Bridge) Popup(chatID, userID, text string) error {
	b.mu.Lock()
	inter := b.interactions[popupKey{chatID, userID}]
	b.mu.Unlock()

	if inter == nil {
		return b.Notify(chatID, text)
	}
	return errutil.HandleDiscordError("popup", func() error {
		_, err := b.session.FollowupMessageCreate(inter, true, &discordgo.WebhookParams{
			Content: text,
			Flags:   discordgo.MessageFlagsEphemeral,
		})
		return err
	})
}

func (b *Bridge) DeleteMessage(chatID, messageID string) error {
	return errutil.HandleDiscordError("delete message", func() error {
		return b.session.ChannelMessageDelete(chatID, messageID)
	})
}

func buildComponents(rows [][]console.Button) []discordgo.MessageComponent {
	out := make([]discordgo.MessageComponent, 0, len(rows))
	for _, row := range rows {
		buttons := make([]discordgo.MessageComponent, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, discordgo.Button{
				Label:    btn.Label,
				CustomID: btn.Data,
				Style:    styleFor(btn.Data),
			})
		}
		out = append(out, discordgo.ActionsRow{Components: buttons})
	}
	return out
}

// styleFor picks a button style from the action verb so destructive and
// mode-changing actions stand out.
func styleFor(data string) discordgo.ButtonStyle {
	fields := strings.Fields(data)
	if len(fields) < 2 {
		return discordgo.SecondaryButton
	}
	switch fields[1] {
	case "close", "cancel", "resetcat", "default", "disableall":
		return discordgo.DangerButton
	case "mode", "main", "enableall":
		return discordgo.PrimaryButton
	default:
		return discordgo.SecondaryButton
	}
}

func strPtr(s string) *string { return &s }
