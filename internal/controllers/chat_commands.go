package controllers

import (
	"coinbot/internal/models"
	"coinbot/internal/providers"
	"coinbot/internal/services"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

const requestTimeout = 15 * time.Second

var badgeNames = map[string]string{
	"broadcaster":      "Broadcaster",
	"moderator":        "Moderator",
	"mod":              "Moderator",
	"vip":              "VIP",
	"subscriber":       "Subscriber",
	"founder":          "Founder",
	"bits":             "Bits",
	"bitsleader":       "Bits Leader",
	"premium":          "Prime Gaming",
	"partner":          "Partner",
	"staff":            "Twitch Staff",
	"admin":            "Twitch Admin",
	"global_mod":       "Global Moderator",
	"artist":           "Artist",
	"turbo":            "Turbo",
	"sub_gifter":       "Sub Gifter",
	"predictions":      "Predictions",
	"predictions_blue": "Predictions Blue",
	"predictions_pink": "Predictions Pink",
	"no_audio":         "No Audio",
	"no_video":         "No Video",
}

func num(n int64) string {
	return services.FormatNumber(n)
}

func atLimit(r *request) (string, outcome) {
	return fmt.Sprintf("@%s that would push a balance past the maximum of %s coins.", r.user, num(math.MaxInt64)), outcomeRejected
}

func (cc *ChatController) ping(r *request) (string, outcome) {
	return fmt.Sprintf("@%s pong", r.user), outcomeOK
}

func (cc *ChatController) help(_ *request) (string, outcome) {
	p := cc.conf.Bot.Prefix
	names := []string{
		"ping", "help", "balance", "claim", "gamble <amount>", "bonus", "steal @user <amount>",
		"lastseen", "badge", "ecount <emote>", "mytopused", "topemotes", "w <word>",
		"setword <word> (mod)", "lotd", "topchatters", "stats", "remindme <msg> <time>",
		"remind <user> <msg> [<time>]",
	}
	for i, n := range names {
		names[i] = p + n
	}
	return "Commands: " + strings.Join(names, " | "), outcomeOK
}

func (cc *ChatController) balance(r *request) (string, outcome) {
	target := models.NormalizeUser(r.arg(0))
	if target == "" {
		target = r.user
	}
	return fmt.Sprintf("%s has %s coins", target, num(cc.economy.Balance(target))), outcomeOK
}

func (cc *ChatController) claim(r *request) (string, outcome) {
	balance, err := cc.economy.Claim(r.user)
	var cd *services.CooldownError
	if errors.As(err, &cd) {
		return fmt.Sprintf("@%s you can claim again in %s", r.user, services.FormatDuration(cd.Remaining)), outcomeRejected
	}
	if errors.Is(err, services.ErrBalanceLimit) {
		return atLimit(r)
	}
	return fmt.Sprintf("@%s claimed %s coins! New balance: %s", r.user, num(cc.conf.Economy.ClaimAmount), num(balance)), outcomeOK
}

func (cc *ChatController) gamble(r *request) (string, outcome) {
	p := cc.conf.Bot.Prefix
	if r.arg(0) == "" {
		return fmt.Sprintf("Usage: %sgamble <amount>", p), outcomeInvalid
	}
	amount, err := services.ParseAmount(r.arg(0))
	if err != nil {
		return fmt.Sprintf("@%s enter a valid positive amount to gamble.", r.user), outcomeInvalid
	}
	res, err := cc.economy.Gamble(r.user, amount)
	var funds *services.InsufficientFundsError
	switch {
	case errors.As(err, &funds):
		return fmt.Sprintf("@%s you don't have enough coins. Your balance: %s", r.user, num(funds.Balance)), outcomeRejected
	case errors.Is(err, services.ErrBalanceLimit):
		return atLimit(r)
	case err != nil:
		return fmt.Sprintf("@%s enter a valid positive amount to gamble.", r.user), outcomeInvalid
	case res.Won:
		return fmt.Sprintf("@%s won %s coins! New balance: %s", r.user, num(res.Amount), num(res.Balance)), outcomeOK
	default:
		return fmt.Sprintf("@%s lost %s coins. New balance: %s", r.user, num(res.Amount), num(res.Balance)), outcomeOK
	}
}

func (cc *ChatController) claimBonus(r *request) (string, outcome) {
	res, err := cc.bonus.Claim(r.user)
	var claimed *services.BonusClaimedError
	switch {
	case errors.As(err, &claimed):
		return fmt.Sprintf("@%s bonus already claimed by %s", r.user, claimed.Winner), outcomeRejected
	case errors.Is(err, services.ErrBalanceLimit):
		return atLimit(r)
	case err != nil:
		return fmt.Sprintf("@%s there is no active bonus right now.", r.user), outcomeRejected
	}
	return fmt.Sprintf("🎉 @%s claimed the bonus and won %s coins! New balance: %s", r.user, num(res.Amount), num(res.Balance)), outcomeOK
}

func (cc *ChatController) steal(r *request) (string, outcome) {
	target := models.NormalizeUser(r.arg(0))
	amountRaw := r.arg(1)
	if amountRaw == "" {
		amountRaw = r.arg(0)
	}
	amount, err := services.ParseAmount(amountRaw)
	if target == "" || err != nil {
		return fmt.Sprintf("Usage: %ssteal @user <amount>", cc.conf.Bot.Prefix), outcomeInvalid
	}

	res, err := cc.economy.Steal(r.user, target, amount)
	var funds *services.InsufficientFundsError
	switch {
	case errors.Is(err, services.ErrSelfTarget):
		return fmt.Sprintf("@%s you cannot steal from yourself.", r.user), outcomeRejected
	case errors.Is(err, services.ErrTargetInsufficient):
		return fmt.Sprintf("@%s target %s does not have enough coins to steal that amount.", r.user, target), outcomeRejected
	case errors.As(err, &funds):
		return fmt.Sprintf("@%s you don't have enough coins to attempt that steal (you need at least %s).", r.user, num(funds.Needed)), outcomeRejected
	case errors.Is(err, services.ErrBalanceLimit):
		return atLimit(r)
	case err != nil:
		return fmt.Sprintf("Usage: %ssteal @user <amount>", cc.conf.Bot.Prefix), outcomeInvalid
	case res.Success:
		return fmt.Sprintf("@%s successfully stole %s coins from %s! New balance: %s", r.user, num(amount), target, num(res.Balance)), outcomeOK
	default:
		return fmt.Sprintf("@%s failed the steal and paid %s coins to %s. New balance: %s", r.user, num(amount), target, num(res.Balance)), outcomeOK
	}
}

func (cc *ChatController) guessWord(r *request) (string, outcome) {
	if r.arg(0) == "" {
		return fmt.Sprintf("Usage: %sw <word>", cc.conf.Bot.Prefix), outcomeInvalid
	}
	res, err := cc.economy.GuessWord(r.user, r.arg(0))
	switch {
	case errors.Is(err, services.ErrBalanceLimit):
		return atLimit(r)
	case err != nil:
		return "No active word is set right now. Try again later.", outcomeRejected
	case !res.Correct:
		return fmt.Sprintf("@%s incorrect guess. Try again!", r.user), outcomeRejected
	}
	return fmt.Sprintf("🎉 @%s guessed the word correctly and won %s coins! New balance: %s", r.user, num(res.Reward), num(res.Balance)), outcomeOK
}

func (cc *ChatController) setWord(r *request) (string, outcome) {
	if err := cc.economy.SetWord(r.arg(0)); err != nil {
		return fmt.Sprintf("Usage: %ssetword <word> (mod/broadcaster only)", cc.conf.Bot.Prefix), outcomeInvalid
	}
	return "Secret word has been set (hidden).", outcomeOK
}

func (cc *ChatController) lastSeen(r *request) (string, outcome) {
	target := models.NormalizeUser(r.arg(0))
	if target == "" {
		target = r.user
	}
	seen, ok := cc.stats.LastSeen(target)
	if !ok {
		return fmt.Sprintf("No record for %s", target), outcomeRejected
	}
	ago := services.FormatDuration(cc.clock.Now().Sub(seen.At))
	return fmt.Sprintf("%s was last seen %s ago saying: \"%s\"", target, ago, seen.Message), outcomeOK
}

func (cc *ChatController) badges(r *request) (string, outcome) {
	if target := models.NormalizeUser(r.arg(0)); target != "" && target != r.user {
		return fmt.Sprintf("@%s I can only show your own badges right now. Use %sbadge with no arguments.", r.user, cc.conf.Bot.Prefix), outcomeRejected
	}
	if len(r.msg.Badges) == 0 {
		return fmt.Sprintf("@%s you are not showing any badges right now.", r.user), outcomeOK
	}
	parts := make([]string, 0, len(r.msg.Badges))
	for _, b := range r.msg.Badges {
		name, ok := badgeNames[b.Name]
		if !ok {
			name = b.Name
		}
		if b.Version != "" {
			name += fmt.Sprintf(" (tier %s)", b.Version)
		}
		parts = append(parts, name)
	}
	return fmt.Sprintf("@%s your active badges: %s", r.user, strings.Join(parts, ", ")), outcomeOK
}

func (cc *ChatController) emoteCount(r *request) (string, outcome) {
	query := r.arg(0)
	if query == "" {
		return fmt.Sprintf("Usage: %secount <emote>", cc.conf.Bot.Prefix), outcomeInvalid
	}
	key, count, ok := cc.stats.EmoteCount(r.msg.Channel, query)
	if !ok {
		return fmt.Sprintf("Emote \"%s\" has been used 0 times in this channel (or is not tracked).", query), outcomeOK
	}
	return fmt.Sprintf("Emote \"%s\" has been used %s times in this channel.", key, num(count)), outcomeOK
}

func joinEmotes(entries []models.TallyEntry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, fmt.Sprintf("%s (%d)", e.Key, e.Count))
	}
	return strings.Join(parts, ", ")
}

func (cc *ChatController) myTopUsed(r *request) (string, outcome) {
	top := cc.stats.UserTopEmotes(r.msg.Channel, r.user, cc.conf.Stats.TopSize)
	if len(top) == 0 {
		return fmt.Sprintf("@%s you have no tracked emote usage in this channel yet.", r.user), outcomeOK
	}
	return fmt.Sprintf("@%s your top emotes in this channel: %s", r.user, joinEmotes(top)), outcomeOK
}

func (cc *ChatController) topEmotes(r *request) (string, outcome) {
	top := cc.stats.TopEmotes(r.msg.Channel, cc.conf.Stats.TopSize)
	if len(top) == 0 {
		return "No emote usage recorded for this channel yet.", outcomeOK
	}
	return "Top emotes in this channel: " + joinEmotes(top), outcomeOK
}

func (cc *ChatController) loserOfTheDay(_ *request) (string, outcome) {
	top, ok := cc.stats.TopChatter()
	if !ok {
		return "No messages recorded for today yet.", outcomeOK
	}
	return fmt.Sprintf("Loser of the day is %s with %s messages!", top.Key, num(top.Count)), outcomeOK
}

func (cc *ChatController) topChatters(_ *request) (string, outcome) {
	top := cc.stats.TopChatters(cc.conf.Stats.TopSize)
	if len(top) == 0 {
		return "No chat messages recorded for today yet.", outcomeOK
	}
	parts := make([]string, 0, len(top))
	for i, e := range top {
		parts = append(parts, fmt.Sprintf("%d) %s (%s)", i+1, e.Key, num(e.Count)))
	}
	return "Top chatters today: " + strings.Join(parts, ", "), outcomeOK
}

func (cc *ChatController) dayStats(_ *request) (string, outcome) {
	sum := cc.stats.Summary()

	chatter := "Top chatter: none"
	if sum.TopChatter != nil {
		chatter = fmt.Sprintf("Top chatter: %s (%s messages)", sum.TopChatter.Key, num(sum.TopChatter.Count))
	}
	bits := "Top bits: none"
	if sum.TopBits != nil {
		bits = fmt.Sprintf("Top bits: %s (%s bits)", sum.TopBits.Key, num(sum.TopBits.Count))
	}
	out := fmt.Sprintf("Subs today: %d | Follows today: %d | %s | %s", sum.Subscriptions, sum.Follows, chatter, bits)
	if sum.HasViewers {
		out += fmt.Sprintf(" | Peak viewers: %d | Avg viewers: %d", sum.PeakViewers, sum.AvgViewers)
	}
	return out, outcomeOK
}

func (cc *ChatController) remindMe(r *request) (string, outcome) {
	if len(r.args) < 2 {
		p := cc.conf.Bot.Prefix
		return fmt.Sprintf("Usage: %sremindme <msg> <time> (e.g., %sremindme take a break 10m)", p, p), outcomeInvalid
	}
	delay, err := services.ParseDuration(r.args[len(r.args)-1])
	if err != nil {
		return "Invalid time format. Use s,m,h,d (e.g., 30s, 10m, 1h)", outcomeInvalid
	}
	text := strings.Join(r.args[:len(r.args)-1], " ")
	if _, err := cc.reminders.RemindMe(r.user, text, delay); err != nil {
		return "Please provide a message for the reminder.", outcomeInvalid
	}
	return fmt.Sprintf("@%s reminder set in %s: \"%s\"", r.user, services.FormatDuration(delay), text), outcomeOK
}

func (cc *ChatController) remind(r *request) (string, outcome) {
	if len(r.args) < 2 {
		p := cc.conf.Bot.Prefix
		return fmt.Sprintf("Usage: %sremind <user> <msg> [<time>] (e.g., %sremind @bob check DMs 5m)", p, p), outcomeInvalid
	}
	target := models.NormalizeUser(r.args[0])
	if target == "" {
		return "Invalid target user.", outcomeInvalid
	}

	words := r.args[1:]
	delay, err := services.ParseDuration(r.args[len(r.args)-1])
	timed := err == nil && len(r.args) >= 3
	if timed {
		words = r.args[1 : len(r.args)-1]
	}
	text := strings.Join(words, " ")
	if text == "" {
		return "Please provide a message for the reminder.", outcomeInvalid
	}

	if timed {
		if _, err := cc.reminders.RemindAt(r.user, target, text, delay); err != nil {
			return "Please provide a message for the reminder.", outcomeInvalid
		}
		return fmt.Sprintf("Reminder set for @%s in %s: \"%s\"", target, services.FormatDuration(delay), text), outcomeOK
	}
	if _, err := cc.reminders.RemindOnNextChat(r.user, target, text); err != nil {
		return "Please provide a message for the reminder.", outcomeInvalid
	}
	return fmt.Sprintf("@%s I will remind @%s the next time they chat: \"%s\"", r.user, target, text), outcomeOK
}

func (cc *ChatController) adminAmount(r *request) (string, int64, bool) {
	who := models.NormalizeUser(r.arg(0))
	amount, err := services.ParseAmount(r.arg(1))
	return who, amount, who != "" && err == nil
}

func (cc *ChatController) give(r *request) (string, outcome) {
	who, amount, ok := cc.adminAmount(r)
	if !ok {
		return fmt.Sprintf("Usage: %sgive @user <amount> (mod only)", cc.conf.Bot.Prefix), outcomeInvalid
	}
	balance, err := cc.economy.Grant(who, amount)
	if errors.Is(err, services.ErrBalanceLimit) {
		return atLimit(r)
	}
	if err != nil {
		return fmt.Sprintf("Usage: %sgive @user <amount> (mod only)", cc.conf.Bot.Prefix), outcomeInvalid
	}
	cc.logger.Infof(providers.TypeCommand, "%s gave %d coins to %s", r.user, amount, who)
	return fmt.Sprintf("%s received %s coins (new balance: %s)", who, num(amount), num(balance)), outcomeOK
}

func (cc *ChatController) take(r *request) (string, outcome) {
	who, amount, ok := cc.adminAmount(r)
	if !ok {
		return fmt.Sprintf("Usage: %stake @user <amount> (mod only)", cc.conf.Bot.Prefix), outcomeInvalid
	}
	balance, err := cc.economy.Revoke(who, amount)
	if err != nil {
		return fmt.Sprintf("Usage: %stake @user <amount> (mod only)", cc.conf.Bot.Prefix), outcomeInvalid
	}
	cc.logger.Infof(providers.TypeCommand, "%s took %d coins from %s", r.user, amount, who)
	return fmt.Sprintf("%s lost %s coins (new balance: %s)", who, num(amount), num(balance)), outcomeOK
}

func channelArg(r *request) string {
	return strings.ToLower(strings.TrimPrefix(r.arg(0), "#"))
}

func (cc *ChatController) join(r *request) (string, outcome) {
	ch := channelArg(r)
	if ch == "" {
		return fmt.Sprintf("Usage: %sjoin <channel> (mod/broadcaster only)", cc.conf.Bot.Prefix), outcomeInvalid
	}
	if err := cc.sender.Join(ch); err != nil {
		return fmt.Sprintf("Failed to join %s: %s", ch, err), outcomeFailed
	}
	return "Joined channel " + ch, outcomeOK
}

func (cc *ChatController) part(r *request) (string, outcome) {
	ch := channelArg(r)
	if ch == "" {
		return fmt.Sprintf("Usage: %spart <channel> (mod/broadcaster only)", cc.conf.Bot.Prefix), outcomeInvalid
	}
	if err := cc.sender.Part(ch); err != nil {
		return fmt.Sprintf("Failed to part %s: %s", ch, err), outcomeFailed
	}
	return "Left channel " + ch, outcomeOK
}

func (cc *ChatController) songConnect(r *request) (string, outcome) {
	link, err := cc.songs.ConnectLink(r.user)
	if err != nil {
		cc.logger.Errorf(providers.TypeOAuth, "Connect link for %s: %s", r.user, err)
		return fmt.Sprintf("@%s could not create a Spotify link right now.", r.user), outcomeFailed
	}
	return fmt.Sprintf("@%s connect your Spotify here: %s", r.user, link), outcomeOK
}

func (cc *ChatController) song(r *request) (string, outcome) {
	p := cc.conf.Bot.Prefix
	track, err := cc.songs.NowPlaying(r.ctx, r.user)
	switch {
	case errors.Is(err, services.ErrNotConnected):
		return fmt.Sprintf("@%s you haven't connected your Spotify yet. Use %ssongconnect", r.user, p), outcomeRejected
	case errors.Is(err, services.ErrRefreshFailed):
		return fmt.Sprintf("@%s error refreshing Spotify token. Try %ssongconnect again", r.user, p), outcomeFailed
	case err != nil:
		return fmt.Sprintf("@%s error getting current track: %s", r.user, err), outcomeFailed
	case track == nil:
		return fmt.Sprintf("@%s you're not currently playing anything on Spotify", r.user), outcomeOK
	case track.IsPlaying:
		return fmt.Sprintf("@%s is listening to: \"%s\" by %s", r.user, track.Name, track.Artists), outcomeOK
	default:
		return fmt.Sprintf("@%s paused: \"%s\" by %s", r.user, track.Name, track.Artists), outcomeOK
	}
}
