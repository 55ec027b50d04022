package telegram

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"etkinlik-bot/internal/analytics"
	"etkinlik-bot/internal/assistant"
	"etkinlik-bot/internal/metrics"
	"etkinlik-bot/internal/storage"
)

const errorReply = "⚠️ Üzgünüm, bir hata oluştu. Lütfen tekrar dener misin?"

type answerer interface {
	Retrieve(ctx context.Context, text string, topK int) assistant.Reply
}

// Options configures the bot beyond its collaborators.
type Options struct {
	AdminUserID int64
	ParseMode   string
	TopK        int
	CityName    string
	Location    *time.Location
	Metrics     *metrics.Metrics
}

type Bot struct {
	api         *tgbotapi.BotAPI
	s           sender
	engine      answerer
	recorder    storage.Recorder
	metrics     *metrics.Metrics
	adminUserID int64
	parseMode   string
	topK        int
	cityName    string
	loc         *time.Location
	now         func() time.Time
}

func New(botToken string, engine answerer, recorder storage.Recorder, opts Options) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	b := newBot(botAPISender{api: api}, engine, recorder, opts)
	b.api = api
	log.Printf("🤖 Authorized on account @%s", api.Self.UserName)
	return b, nil
}

func newBot(s sender, engine answerer, recorder storage.Recorder, opts Options) *Bot {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.TopK <= 0 {
		opts.TopK = assistant.DefaultTopK
	}
	if opts.CityName == "" {
		opts.CityName = "Antalya"
	}
	return &Bot{
		s:           s,
		engine:      engine,
		recorder:    recorder,
		metrics:     opts.Metrics,
		adminUserID: opts.AdminUserID,
		parseMode:   opts.ParseMode,
		topK:        opts.TopK,
		cityName:    opts.CityName,
		loc:         opts.Location,
		now:         time.Now,
	}
}

// Start polls for updates until ctx is cancelled. Updates are handled one at
// a time.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	log.Println("✅ Telegram bot is polling for updates")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			log.Println("🛑 Telegram bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message != nil {
				b.handleUpdate(ctx, update.Message)
			}
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, msg *tgbotapi.Message) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("❌ Panic while handling message from %d: %v", msg.Chat.ID, p)
			b.sendMessage(msg.Chat.ID, errorReply, true)
		}
	}()
	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	if strings.TrimSpace(msg.Text) == "" {
		return
	}
	b.handleIncomingMessage(ctx, msg)
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	userID, firstName, username := userInfo(msg)
	log.Printf("User %s (ID: %d, @%s) used /%s command", firstName, userID, username, msg.Command())

	switch msg.Command() {
	case "start":
		b.sendMessage(msg.Chat.ID, welcomeText(firstName, b.cityName), true)
	case "help":
		b.sendMessage(msg.Chat.ID, helpText(b.cityName), true)
	case "stats":
		if b.adminUserID == 0 || userID != b.adminUserID {
			b.sendMessage(msg.Chat.ID, "⛔ Bu komut sadece yönetici içindir.", true)
			return
		}
		summary, err := b.dailySummary()
		if err != nil {
			log.Printf("❌ Stats generation failed: %v", err)
			b.sendMessage(msg.Chat.ID, "❌ İstatistikler alınamadı.", true)
			return
		}
		b.sendMessage(msg.Chat.ID, summary, true)
	default:
		b.sendMessage(msg.Chat.ID, "Bilinmeyen komut. /help yazarak neler yapabildiğimi görebilirsin.", true)
	}
}

func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) {
	userID, firstName, username := userInfo(msg)
	log.Printf("User %s (ID: %d, @%s) message: %q", firstName, userID, username, msg.Text)
	b.metrics.RequestReceived(storage.ChannelTelegram)

	reply := b.engine.Retrieve(ctx, msg.Text, b.topK)

	// Link previews are only useful for the conversational answers.
	disablePreview := reply.Tier != assistant.TierSemanticGenerative && reply.Tier != assistant.TierSemantic
	b.sendMessage(msg.Chat.ID, reply.Text, disablePreview)
	log.Printf("📨 Reply sent [tier=%s, sources=%d]", reply.Tier, len(reply.Sources))

	if b.recorder == nil {
		return
	}
	if err := b.recorder.AppendInteraction(storage.Interaction{
		Timestamp:         b.now().UTC(),
		UserID:            userID,
		Channel:           storage.ChannelTelegram,
		UserMessage:       msg.Text,
		AssistantResponse: reply.Text,
		Tier:              reply.Tier,
		SourceCount:       len(reply.Sources),
	}); err != nil {
		log.Printf("⚠️ Failed to record interaction: %v", err)
	}
}

// SendDailyReport sends today's usage summary to the admin.
func (b *Bot) SendDailyReport(ctx context.Context) error {
	if b.adminUserID == 0 {
		return errors.New("admin user is not configured")
	}
	summary, err := b.dailySummary()
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	b.sendMessage(b.adminUserID, summary, true)
	log.Println("✅ Daily report sent to admin")
	return nil
}

func (b *Bot) dailySummary() (string, error) {
	if b.recorder == nil {
		return "", errors.New("interaction log is not configured")
	}
	its, err := b.recorder.LoadInteractions()
	if err != nil {
		return "", fmt.Errorf("load interactions: %w", err)
	}
	stats := analytics.AnalyzeDailyLogs(its, b.now().In(b.loc))
	return stats.GenerateReportSummary(), nil
}

// sendMessage sends text with the configured parse mode. Telegram rejects
// malformed Markdown, in which case the text is resent without formatting.
func (b *Bot) sendMessage(chatID int64, text string, disablePreview bool) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = b.parseMode
	msg.DisableWebPagePreview = disablePreview
	_, err := b.s.Send(msg)
	if err == nil {
		return
	}
	if msg.ParseMode == "" {
		log.Printf("failed to send message: %v", err)
		return
	}
	log.Printf("⚠️ Send with %s failed, retrying as plain text: %v", msg.ParseMode, err)
	msg.ParseMode = ""
	if _, err := b.s.Send(msg); err != nil {
		log.Printf("failed to send message: %v", err)
	}
}

func userInfo(msg *tgbotapi.Message) (int64, string, string) {
	if msg.From == nil {
		return 0, "Kullanıcı", "No username"
	}
	name := msg.From.FirstName
	if name == "" {
		name = "Kullanıcı"
	}
	username := msg.From.UserName
	if username == "" {
		username = "No username"
	}
	return msg.From.ID, name, username
}

func welcomeText(firstName, city string) string {
	return fmt.Sprintf("Merhaba %[1]s! 🎉\n\n"+
		"Ben %[2]s Etkinlik Botu. %[2]s'da olan etkinlikleri bulmanıza yardımcı olabilirim.\n\n"+
		"📝 *Örnek sorular:*\n"+
		"• \"Bu hafta sonu konser var mı?\"\n"+
		"• \"Bugün tiyatro\"\n"+
		"• \"Yarın sinema\"\n"+
		"• \"Kasım ayı etkinlikleri\"\n"+
		"• \"19 ekim konser\"\n\n"+
		"🏙️ *Şehir:*\n"+
		"%[2]s (sadece %[2]s etkinlikleri)\n\n"+
		"🎭 *Kategoriler:*\n"+
		"Konser, Tiyatro, Sergi, Workshop, Spor, Sinema\n\n"+
		"📅 *Tarih örnekleri:*\n"+
		"Bugün, Yarın, Bu hafta sonu, Bu hafta, Kasım ayı, 19 ekim\n\n"+
		"Hadi başlayalım! Ne aramak istersin?", firstName, city)
}

func helpText(city string) string {
	return fmt.Sprintf("🤖 *Nasıl kullanılır?*\n\n"+
		"Bana doğal dilde mesaj at, ben seni anlayacağım!\n\n"+
		"📝 *Örnekler:*\n"+
		"• Bu hafta sonu konser\n"+
		"• Bugün tiyatro\n"+
		"• Yarın sinema var mı?\n"+
		"• Kasım ayı etkinlikleri\n"+
		"• 19 ekim konser\n\n"+
		"🏙️ *Şehir:* %[1]s (sadece %[1]s etkinlikleri)\n"+
		"🎭 *Kategoriler:* Konser, Tiyatro, Sergi, Workshop, Spor, Sinema\n"+
		"📅 *Tarihler:* Bugün, Yarın, Bu hafta sonu, Bu hafta, Kasım ayı, 19 ekim", city)
}
