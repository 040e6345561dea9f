// Package telegram is the chat front end: field agents pull tasks and
// target accounts through an inline keyboard instead of the HTTP API.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/isnadmansour/IsnadTasks/internal/application"
	"github.com/isnadmansour/IsnadTasks/internal/domain"
)

const (
	callbackNewTask      = "new_task"
	callbackMoreAccounts = "more_accounts"
)

type Bot struct {
	api     *tgbotapi.BotAPI
	engine  *application.Engine
	groupID int64
	log     *slog.Logger
}

// New connects to the Bot API. groupID is the chat whose membership gates
// access: only members of that group may pull tasks.
func New(token string, engine *application.Engine, groupID int64, log *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect bot api: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}

	return &Bot{api: api, engine: engine, groupID: groupID, log: log}, nil
}

// Run polls for updates until ctx is canceled.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	b.log.Info("telegram bot started", "username", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Command() != "start" {
		return
	}

	member, err := b.isGroupMember(ctx, msg.From.ID)
	if err != nil {
		b.log.Error("membership check", "user", msg.From.ID, "err", err)
		b.send(tgbotapi.NewMessage(msg.Chat.ID, msgMembershipUnavailable))
		return
	}
	if !member {
		b.send(tgbotapi.NewMessage(msg.Chat.ID, msgNotMember))
		return
	}

	welcome := tgbotapi.NewMessage(msg.Chat.ID, msgWelcome)
	welcome.ReplyMarkup = newTaskKeyboard()
	b.send(welcome)
}

func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Acknowledge first so the client stops its spinner even when the
	// dispense below takes a moment.
	if _, err := b.api.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
		b.log.Error("ack callback", "err", err)
	}

	agentID := agentIDFor(query.From.ID)
	chatID := query.Message.Chat.ID

	switch query.Data {
	case callbackNewTask:
		b.serveTask(ctx, chatID, agentID)
	case callbackMoreAccounts:
		b.serveMoreAccounts(ctx, chatID, agentID)
	}
}

func (b *Bot) serveTask(ctx context.Context, chatID int64, agentID string) {
	task, err := b.engine.NextTask(ctx, agentID)
	if err != nil {
		b.log.Error("next task", "agent", agentID, "err", err)
		b.send(tgbotapi.NewMessage(chatID, msgInternalError))
		return
	}
	if task == nil {
		reply := tgbotapi.NewMessage(chatID, msgNoTasks)
		reply.ReplyMarkup = newTaskKeyboard()
		b.send(reply)
		return
	}

	accounts, err := b.engine.NextAccounts(ctx, *task)
	if err != nil {
		b.log.Error("next accounts", "agent", agentID, "err", err)
		b.send(tgbotapi.NewMessage(chatID, msgInternalError))
		return
	}

	b.log.Info("task served", "agent", agentID, "task", task.ID, "batch", string(task.Batch), "accounts", len(accounts))

	reply := tgbotapi.NewMessage(chatID, renderTask(*task, accounts))
	reply.ReplyMarkup = taskKeyboard()
	reply.DisableWebPagePreview = true
	b.send(reply)
}

func (b *Bot) serveMoreAccounts(ctx context.Context, chatID int64, agentID string) {
	accounts, err := b.engine.RepeatAccounts(ctx, agentID)
	if errors.Is(err, domain.ErrNoActiveTask) {
		reply := tgbotapi.NewMessage(chatID, msgNoActiveTask)
		reply.ReplyMarkup = newTaskKeyboard()
		b.send(reply)
		return
	}
	if err != nil {
		b.log.Error("repeat accounts", "agent", agentID, "err", err)
		b.send(tgbotapi.NewMessage(chatID, msgInternalError))
		return
	}

	b.log.Info("accounts repeated", "agent", agentID, "accounts", len(accounts))

	reply := tgbotapi.NewMessage(chatID, renderAccounts(accounts))
	reply.ReplyMarkup = taskKeyboard()
	reply.DisableWebPagePreview = true
	b.send(reply)
}

func (b *Bot) isGroupMember(_ context.Context, userID int64) (bool, error) {
	member, err := b.api.GetChatMember(tgbotapi.GetChatMemberConfig{
		ChatConfigWithUser: tgbotapi.ChatConfigWithUser{
			ChatID: b.groupID,
			UserID: userID,
		},
	})
	if err != nil {
		return false, fmt.Errorf("get chat member: %w", err)
	}

	switch member.Status {
	case "creator", "administrator", "member":
		return true, nil
	}
	return false, nil
}

func (b *Bot) send(msg tgbotapi.MessageConfig) {
	if _, err := b.api.Send(msg); err != nil {
		b.log.Error("send message", "chat", msg.ChatID, "err", err)
	}
}

func agentIDFor(userID int64) string {
	return fmt.Sprintf("tg:%d", userID)
}
