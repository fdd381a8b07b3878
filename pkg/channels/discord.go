// Package channels connects external chat surfaces to the inference
// pipeline.
package channels

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/gilbertordx/rhcp-chatbot/pkg/chatbot"
	"github.com/gilbertordx/rhcp-chatbot/pkg/session"
)

const (
	sendTimeout  = 10 * time.Second
	messageLimit = 1900 // Discord caps messages at 2000 characters
)

// DiscordChannel relays Discord messages through the pipeline. Each
// Discord channel gets its own conversation session so context does
// not leak between channels.
type DiscordChannel struct {
	discord   *discordgo.Session
	pipeline  *chatbot.Pipeline
	sessions  *session.Store
	log       *zap.Logger
	allowFrom map[string]bool

	mu      sync.Mutex
	byChan  map[string]string // Discord channel id -> session id
	running bool
}

// NewDiscordChannel builds the relay. allowFrom is a user-id
// allowlist; empty means everyone is allowed.
func NewDiscordChannel(token string, allowFrom []string, pipeline *chatbot.Pipeline, sessions *session.Store, log *zap.Logger) (*DiscordChannel, error) {
	discord, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}

	allowed := make(map[string]bool, len(allowFrom))
	for _, id := range allowFrom {
		if id = strings.TrimSpace(id); id != "" {
			allowed[id] = true
		}
	}

	return &DiscordChannel{
		discord:   discord,
		pipeline:  pipeline,
		sessions:  sessions,
		log:       log,
		allowFrom: allowed,
		byChan:    make(map[string]string),
	}, nil
}

func (c *DiscordChannel) Start(ctx context.Context) error {
	c.discord.AddHandler(c.handleMessage)

	if err := c.discord.Open(); err != nil {
		return fmt.Errorf("open discord session: %w", err)
	}

	c.mu.Lock()
	c.running = true
	c.mu.Unlock()

	botUser, err := c.discord.User("@me")
	if err != nil {
		return fmt.Errorf("get bot user: %w", err)
	}
	c.log.Info("discord bot connected",
		zap.String("username", botUser.Username),
		zap.String("user_id", botUser.ID),
	)
	return nil
}

func (c *DiscordChannel) Stop(ctx context.Context) error {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()

	if err := c.discord.Close(); err != nil {
		return fmt.Errorf("close discord session: %w", err)
	}
	return nil
}

func (c *DiscordChannel) isRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *DiscordChannel) allowed(userID string) bool {
	if len(c.allowFrom) == 0 {
		return true
	}
	return c.allowFrom[userID]
}

// sessionFor returns the conversation session bound to a Discord
// channel, creating or replacing it when expired.
func (c *DiscordChannel) sessionFor(channelID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id, ok := c.byChan[channelID]; ok && c.sessions.IsSessionValid(id) {
		return id
	}
	id := c.sessions.CreateSession()
	c.byChan[channelID] = id
	return id
}

func (c *DiscordChannel) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m == nil || m.Author == nil {
		return
	}
	if m.Author.ID == s.State.User.ID {
		return
	}
	if !c.allowed(m.Author.ID) {
		c.log.Debug("message rejected by allowlist", zap.String("user_id", m.Author.ID))
		return
	}
	if strings.TrimSpace(m.Content) == "" {
		return
	}
	if !c.isRunning() {
		return
	}

	if err := s.ChannelTyping(m.ChannelID); err != nil {
		c.log.Debug("typing indicator failed", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()

	res, err := c.pipeline.RunInference(ctx, m.Content, c.sessionFor(m.ChannelID))
	if err != nil {
		c.log.Error("inference failed", zap.Error(err))
		return
	}

	for _, chunk := range splitMessage(res.FinalMessage, messageLimit) {
		if _, err := s.ChannelMessageSend(m.ChannelID, chunk); err != nil {
			c.log.Error("send discord message failed", zap.Error(err))
			return
		}
	}
}

// splitMessage breaks long text into chunks at newline or space
// boundaries where possible.
func splitMessage(content string, limit int) []string {
	var out []string
	for len(content) > 0 {
		if len(content) <= limit {
			out = append(out, content)
			break
		}
		cut := strings.LastIndexByte(content[:limit], '\n')
		if cut <= 0 {
			cut = strings.LastIndexByte(content[:limit], ' ')
		}
		if cut <= 0 {
			cut = limit
		}
		out = append(out, content[:cut])
		content = strings.TrimSpace(content[cut:])
	}
	return out
}
