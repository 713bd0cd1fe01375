package controllers

import (
	"coinbot/internal/chat"
	"coinbot/internal/models"
	"coinbot/internal/providers"
	"coinbot/internal/services"
	"coinbot/internal/structures"
	"context"
	"fmt"
	"strings"
)

type outcome string

const (
	outcomeOK       outcome = "ok"
	outcomeRejected outcome = "rejected"
	outcomeInvalid  outcome = "invalid"
	outcomeFailed   outcome = "failed"
)

type request struct {
	ctx  context.Context
	msg  chat.Message
	user string
	args []string
}

func (r *request) arg(i int) string {
	if i < len(r.args) {
		return r.args[i]
	}
	return ""
}

type command struct {
	name       string
	aliases    []string
	privileged bool
	run        func(r *request) (string, outcome)
}

// ChatController is the command dispatcher. It also receives the transport's
// subscription and cheer events.
type ChatController struct {
	conf      *structures.Config
	sender    chat.Sender
	economy   services.EconomyServiceInterface
	bonus     services.BonusServiceInterface
	reminders services.ReminderServiceInterface
	stats     services.StatsServiceInterface
	songs     services.SongServiceInterface
	persister services.Persister
	clock     providers.Clock
	logger    providers.Logger
	metrics   providers.MetricsProviderInterface
	commands  map[string]*command
}

func NewChatController(
	conf *structures.Config,
	sender chat.Sender,
	economy services.EconomyServiceInterface,
	bonus services.BonusServiceInterface,
	reminders services.ReminderServiceInterface,
	stats services.StatsServiceInterface,
	songs services.SongServiceInterface,
	persister services.Persister,
	clock providers.Clock,
	logger providers.Logger,
	metrics providers.MetricsProviderInterface,
) (*ChatController, error) {
	cc := &ChatController{
		conf:      conf,
		sender:    sender,
		economy:   economy,
		bonus:     bonus,
		reminders: reminders,
		stats:     stats,
		songs:     songs,
		persister: persister,
		clock:     clock,
		logger:    logger,
		metrics:   metrics,
		commands:  map[string]*command{},
	}
	for _, cmd := range cc.table() {
		for _, name := range append([]string{cmd.name}, cmd.aliases...) {
			if _, dup := cc.commands[name]; dup {
				return nil, fmt.Errorf("command %q registered twice", name)
			}
			cc.commands[name] = cmd
		}
	}
	return cc, nil
}

func (cc *ChatController) table() []*command {
	return []*command{
		{name: "ping", run: cc.ping},
		{name: "help", run: cc.help},
		{name: "balance", aliases: []string{"bal"}, run: cc.balance},
		{name: "claim", run: cc.claim},
		{name: "gamble", run: cc.gamble},
		{name: "bonus", run: cc.claimBonus},
		{name: "steal", run: cc.steal},
		{name: "w", run: cc.guessWord},
		{name: "setword", privileged: true, run: cc.setWord},
		{name: "lastseen", run: cc.lastSeen},
		{name: "badge", aliases: []string{"badges"}, run: cc.badges},
		{name: "ecount", run: cc.emoteCount},
		{name: "mytopused", run: cc.myTopUsed},
		{name: "topemotes", run: cc.topEmotes},
		{name: "lotd", run: cc.loserOfTheDay},
		{name: "topchatters", run: cc.topChatters},
		{name: "stats", run: cc.dayStats},
		{name: "remindme", run: cc.remindMe},
		{name: "remind", run: cc.remind},
		{name: "give", privileged: true, run: cc.give},
		{name: "take", privileged: true, run: cc.take},
		{name: "join", privileged: true, run: cc.join},
		{name: "part", privileged: true, run: cc.part},
		{name: "songconnect", run: cc.songConnect},
		{name: "song", run: cc.song},
	}
}

func (cc *ChatController) reply(channel, text string) {
	if text == "" {
		return
	}
	if err := cc.sender.Action(channel, text); err != nil {
		cc.logger.Warnf(providers.TypeChat, "Reply to #%s failed: %s", channel, err)
	}
}

func (cc *ChatController) persist() {
	_ = cc.persister.Persist()
}

// OnMessage records the message, delivers pending next-chat reminders for
// the sender, then runs the command the message carries, if any.
func (cc *ChatController) OnMessage(msg chat.Message) {
	user := models.NormalizeUser(msg.User)
	if user == "" {
		return
	}
	msg.User = user
	defer cc.persist()

	cc.stats.RecordMessage(msg)
	for _, text := range cc.reminders.DeliverOnNextChat(user) {
		cc.reply(msg.Channel, text)
	}

	prefix := cc.conf.Bot.Prefix
	if !strings.HasPrefix(msg.Text, prefix) {
		return
	}
	tokens := strings.Fields(msg.Text[len(prefix):])
	if len(tokens) == 0 {
		return
	}
	name := strings.ToLower(tokens[0])

	cmd, ok := cc.commands[name]
	if !ok || (cmd.privileged && !msg.Privileged) {
		cc.metrics.IncCommandsTotal("unknown", string(outcomeRejected))
		cc.reply(msg.Channel, fmt.Sprintf("Unknown command: %s%s. Try %shelp", prefix, name, prefix))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()
	text, result := cmd.run(&request{ctx: ctx, msg: msg, user: user, args: tokens[1:]})

	cc.metrics.IncCommandsTotal(cmd.name, string(result))
	cc.logger.Debugf(providers.TypeCommand, "%s ran %s in #%s: %s", user, cmd.name, msg.Channel, result)
	cc.reply(msg.Channel, text)
}

func (cc *ChatController) OnSubscription(sub chat.Subscription) {
	cc.stats.RecordSubscription(sub)
	cc.logger.Infof(providers.TypeChat, "%s in #%s from %s (%d)", sub.Kind, sub.Channel, sub.User, sub.Count)
	cc.persist()
}

func (cc *ChatController) OnCheer(cheer chat.Cheer) {
	if cheer.Bits <= 0 {
		return
	}
	cc.stats.RecordCheer(cheer)
	cc.logger.Infof(providers.TypeChat, "%s cheered %d bits in #%s", cheer.User, cheer.Bits, cheer.Channel)
	cc.persist()
}
