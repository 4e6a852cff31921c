package weakevent

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Message represents a message published on a topic.
type Message struct {
	Topic string
	Data  any
}

// TopicConfig allows configuring behavior for a specific topic.
type TopicConfig struct {
	// MaxSubscribers caps the number of subscribers on the topic.
	// Zero means unlimited.
	MaxSubscribers int
}

// Subscriber is a registration on one topic of a PubSub.
type Subscriber struct {
	ID    string
	Topic string

	handler         Handler[Message]
	unsubscribeFunc func()
	unsubscribed    atomic.Bool
}

// PubSub is a synchronous, multi-topic hub. Publish delivers on the
// caller's goroutine, to each subscriber of the topic in subscription order.
type PubSub struct {
	mu           sync.RWMutex
	events       map[string]*Event[Message]        // topic -> ordered delivery list
	subscribers  map[string]map[string]*Subscriber // topic -> subscriberID -> *Subscriber
	topicConfigs map[string]TopicConfig            // topic -> TopicConfig
	closed       bool
}

// NewPubSub creates a new PubSub.
func NewPubSub() *PubSub {
	ps := &PubSub{
		events:       make(map[string]*Event[Message]),
		subscribers:  make(map[string]map[string]*Subscriber),
		topicConfigs: make(map[string]TopicConfig),
	}
	logDebug("new pubsub created")
	return ps
}

// GetUniqueSubscriberID generates a unique subscriber ID.
func (ps *PubSub) GetUniqueSubscriberID() string {
	return "sub-" + uuid.NewString()
}

// CreateTopic creates or replaces the configuration of topic.
func (ps *PubSub) CreateTopic(topic string, config TopicConfig) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ps.topicConfigs[topic] = config
	logDebug("topic created", zap.String("topic", topic), zap.Int("max_subscribers", config.MaxSubscribers))
}

// UpdateTopic changes the configuration of a topic created earlier.
// Existing subscribers are kept even if they exceed a new limit.
func (ps *PubSub) UpdateTopic(topic string, config TopicConfig) error {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	if _, ok := ps.topicConfigs[topic]; !ok {
		return ErrUnknownTopic
	}
	ps.topicConfigs[topic] = config
	logDebug("topic updated", zap.String("topic", topic), zap.Int("max_subscribers", config.MaxSubscribers))
	return nil
}

// Subscribe registers handler on topic. An empty subscriberID is replaced
// by GetUniqueSubscriberID.
func (ps *PubSub) Subscribe(topic string, subscriberID string, handler Handler[Message]) (*Subscriber, error) {
	if isNil(handler) {
		return nil, argError(ParamHandler)
	}
	if subscriberID == "" {
		subscriberID = ps.GetUniqueSubscriberID()
	}

	ps.mu.Lock()
	defer ps.mu.Unlock()

	if ps.closed {
		return nil, ErrPubSubClosed
	}

	topicSubscribers := ps.subscribers[topic]
	if _, exists := topicSubscribers[subscriberID]; exists {
		return nil, ErrDuplicateSubscriber
	}
	if limit := ps.topicConfigs[topic].MaxSubscribers; limit > 0 && len(topicSubscribers) >= limit {
		return nil, ErrTooManySubscribers
	}

	if topicSubscribers == nil {
		topicSubscribers = make(map[string]*Subscriber)
		ps.subscribers[topic] = topicSubscribers
		ps.events[topic] = NewEvent[Message]()
	}

	sub := &Subscriber{
		ID:      subscriberID,
		Topic:   topic,
		handler: handler,
	}
	sub.unsubscribeFunc = func() {
		ps.CleanupSub(sub)
	}

	topicSubscribers[subscriberID] = sub
	ps.events[topic].Add(sub)

	logDebug("subscribed", zap.String("topic", topic), zap.String("subscriber", subscriberID))
	return sub, nil
}

// Handle delivers msg to the subscriber's handler. A panicking handler is
// recovered so the remaining subscribers still receive msg.
func (s *Subscriber) Handle(msg Message) {
	if s.unsubscribed.Load() {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logDebug("panic recovered in subscriber handler",
				zap.String("topic", s.Topic),
				zap.String("subscriber", s.ID),
				zap.Any("panic", r))
		}
	}()
	s.handler.Handle(msg)
}

// Unsubscribe removes the subscriber from its PubSub.
// It's safe to call multiple times; the removal only happens once.
func (s *Subscriber) Unsubscribe() {
	if !s.unsubscribed.CompareAndSwap(false, true) {
		return
	}
	if s.unsubscribeFunc != nil {
		s.unsubscribeFunc()
	}
}

// Dispose is Unsubscribe, so a Subscriber can be used as a Disposer.
func (s *Subscriber) Dispose() {
	s.Unsubscribe()
}

// Unsubscribed reports whether the subscriber has been removed.
func (s *Subscriber) Unsubscribed() bool {
	return s.unsubscribed.Load()
}

// CleanupSub removes sub from the hub. Called through Subscriber.Unsubscribe.
func (ps *PubSub) CleanupSub(sub *Subscriber) {
	if sub == nil {
		return
	}
	sub.unsubscribed.Store(true)

	ps.mu.Lock()
	defer ps.mu.Unlock()

	topicSubscribers, ok := ps.subscribers[sub.Topic]
	if !ok || topicSubscribers[sub.ID] != sub {
		return
	}
	delete(topicSubscribers, sub.ID)
	ps.events[sub.Topic].Remove(sub)
	if len(topicSubscribers) == 0 {
		delete(ps.subscribers, sub.Topic)
		delete(ps.events, sub.Topic)
	}
	logDebug("unsubscribed", zap.String("topic", sub.Topic), zap.String("subscriber", sub.ID))
}

// Publish delivers message to every subscriber of its topic and returns the
// number of subscribers it was offered to.
func (ps *PubSub) Publish(message Message) int {
	ps.mu.RLock()
	ev := ps.events[message.Topic]
	ps.mu.RUnlock()

	if ev == nil {
		return 0
	}
	return ev.Fire(message)
}

// SubscriberCount returns the number of subscribers on topic.
func (ps *PubSub) SubscriberCount(topic string) int {
	ps.mu.RLock()
	defer ps.mu.RUnlock()
	return len(ps.subscribers[topic])
}

// SendReceive publishes sendMsg on sendTopic and waits up to timeout for the
// first message on receiveTopic. It reports false on timeout.
func (ps *PubSub) SendReceive(sendTopic string, receiveTopic string, sendMsg any, timeout time.Duration) (any, bool) {
	replies := make(chan any, 1)
	sub, err := ps.Subscribe(receiveTopic, "", HandlerFunc[Message](func(msg Message) {
		select {
		case replies <- msg.Data:
		default:
		}
	}))
	if err != nil {
		logDebug("send-receive subscribe failed", zap.String("topic", receiveTopic), zap.Error(err))
		return nil, false
	}
	defer sub.Unsubscribe()

	ps.Publish(Message{Topic: sendTopic, Data: sendMsg})

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case data := <-replies:
		return data, true
	case <-timer.C:
		logDebug("send-receive timed out", zap.String("topic", receiveTopic), zap.Duration("timeout", timeout))
		return nil, false
	}
}

// Close removes every subscriber and rejects further subscriptions.
func (ps *PubSub) Close() {
	ps.mu.Lock()
	var subs []*Subscriber
	for _, topicSubscribers := range ps.subscribers {
		for _, sub := range topicSubscribers {
			subs = append(subs, sub)
		}
	}
	ps.subscribers = make(map[string]map[string]*Subscriber)
	ps.events = make(map[string]*Event[Message])
	ps.closed = true
	ps.mu.Unlock()

	for _, sub := range subs {
		sub.unsubscribed.Store(true)
	}
	logDebug("pubsub closed", zap.Int("subscribers", len(subs)))
}

// WeakSubscribeTopic subscribes handler to topic with the lifetime rules of
// WeakSubscribe: the subscription ends when the returned Disposable is
// disposed or reclaimed.
func WeakSubscribeTopic(ps *PubSub, topic string, handler Handler[Message]) (*Disposable, error) {
	if ps == nil {
		return nil, argError(ParamPubSub)
	}
	if isNil(handler) {
		return nil, argError(ParamHandler)
	}
	register, unregister := subscribeBinding(ps.topicSubscriber(topic))
	return weakOwner(handler, asHandler[Message], register, unregister)
}

// VeryWeakSubscribeTopic subscribes handler to topic with the lifetime
// rules of VeryWeakSubscribe: the subscription lasts while handler is
// reachable or until the returned Disposable is disposed.
func VeryWeakSubscribeTopic(ps *PubSub, topic string, handler Handler[Message]) (*Disposable, error) {
	if ps == nil {
		return nil, argError(ParamPubSub)
	}
	if isNil(handler) {
		return nil, argError(ParamHandler)
	}
	register, unregister := subscribeBinding(ps.topicSubscriber(topic))
	return weakTarget(ParamHandler, handler, asHandler[Message], register, unregister)
}

func (ps *PubSub) topicSubscriber(topic string) func(Handler[Message]) (Disposer, error) {
	return func(h Handler[Message]) (Disposer, error) {
		sub, err := ps.Subscribe(topic, "", h)
		if err != nil {
			return nil, err
		}
		return sub, nil
	}
}
