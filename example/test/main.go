package main

import (
	"fmt"
	"runtime"
	"time"

	weakevent "github.com/jonoton/go-weakevent"
)

// Dashboard is a component that wants news updates for as long as it exists.
type Dashboard struct {
	name string
}

func (d *Dashboard) Handle(msg weakevent.Message) {
	fmt.Printf("(%s) received: Topic='%s', Data='%v'\n", d.name, msg.Topic, msg.Data)
}

func main() {
	weakevent.SetDebug(true) // Enable debug logging

	ps := weakevent.NewPubSub()
	defer ps.Close()

	ps.CreateTopic("news", weakevent.TopicConfig{MaxSubscribers: 8})

	// sub1 lives exactly as long as its handle is disposed or dropped.
	sub1, err := weakevent.WeakSubscribeTopic(ps, "news", weakevent.HandlerFunc[weakevent.Message](func(msg weakevent.Message) {
		fmt.Printf("(%s) received: Topic='%s', Data='%v'\n", "sub1", msg.Topic, msg.Data)
	}))
	if err != nil {
		fmt.Println("subscribe failed:", err)
		return
	}

	// The dashboard subscription lives as long as the dashboard does.
	dashboard := &Dashboard{name: "dashboard"}
	if _, err := weakevent.VeryWeakSubscribeTopic(ps, "news", dashboard); err != nil {
		fmt.Println("subscribe failed:", err)
		return
	}

	// A subscription whose handle is dropped right away.
	if _, err := weakevent.WeakSubscribeTopic(ps, "news", weakevent.HandlerFunc[weakevent.Message](func(msg weakevent.Message) {
		fmt.Printf("(%s) received: Topic='%s', Data='%v'\n", "forgotten", msg.Topic, msg.Data)
	})); err != nil {
		fmt.Println("subscribe failed:", err)
		return
	}

	fmt.Println("\n--- Publishing with all three subscriptions ---")
	ps.Publish(weakevent.Message{Topic: "news", Data: "Breaking News: GoLang is awesome!"})

	fmt.Println("\n--- Collecting garbage: the forgotten subscription goes away ---")
	runtime.GC()
	time.Sleep(50 * time.Millisecond)
	ps.Publish(weakevent.Message{Topic: "news", Data: "Market Update 1"})

	fmt.Println("\n--- Disposing sub1 ---")
	sub1.Dispose()
	ps.Publish(weakevent.Message{Topic: "news", Data: "Market Update 2"})

	fmt.Printf("\nSubscribers left on 'news': %d\n", ps.SubscriberCount("news"))
	runtime.KeepAlive(dashboard)
}
