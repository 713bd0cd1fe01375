package chat

import "errors"

var ErrNotConnected = errors.New("chat: not connected")

type Badge struct {
	Name    string
	Version string
}

// EmoteRange marks an emote by inclusive character offsets into Message.Text.
type EmoteRange struct {
	ID    string
	Start int
	End   int
}

type Message struct {
	Channel     string
	User        string
	DisplayName string
	Text        string
	Privileged  bool
	Badges      []Badge
	Emotes      []EmoteRange
}

type SubscriptionKind string

const (
	KindSub      SubscriptionKind = "sub"
	KindResub    SubscriptionKind = "resub"
	KindSubGift  SubscriptionKind = "subgift"
	KindMassGift SubscriptionKind = "submysterygift"
)

type Subscription struct {
	Channel string
	User    string
	Kind    SubscriptionKind
	// Count is the number of subscriptions the event stands for. Gift
	// bundles announce it; everything else is one.
	Count int64
}

type Cheer struct {
	Channel string
	User    string
	Bits    int64
	Text    string
}

// Handler receives inbound chat events. Calls are made from a single
// goroutine, one at a time.
type Handler interface {
	OnMessage(msg Message)
	OnSubscription(sub Subscription)
	OnCheer(cheer Cheer)
}

type Sender interface {
	Action(channel, text string) error
	Join(channel string) error
	Part(channel string) error
}
