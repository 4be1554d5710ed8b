package services

import (
	"fmt"
	"sync"
	"time"
)

// 领域事件主题
const (
	EventAppointmentAccepted = "appointment.accepted"
	EventAppointmentRejected = "appointment.rejected"
	EventOnboardingCompleted = "onboarding.completed"
	EventContractSigned      = "contract.signed"
)

// Event 一条领域事件
type Event struct {
	Topic          string
	OrganizationID string
	EntityID       string
	Payload        map[string]interface{}
	OccurredAt     time.Time
}

// EventHandler 事件处理函数，失败只记录不回滚
type EventHandler func(e Event) error

// EventBus 进程内发布/订阅总线
// 发布是同步的：副作用失败不影响主流程，但会在响应前完成
type EventBus struct {
	mu       sync.RWMutex
	handlers map[string][]EventHandler
}

// NewEventBus 创建事件总线
func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[string][]EventHandler),
	}
}

// Subscribe 订阅某主题
func (b *EventBus) Subscribe(topic string, h EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[topic] = append(b.handlers[topic], h)
}

// Publish 发布事件，逐个调用订阅者
// 处理器 panic 会被吞掉并记录，保证主流程不受影响
func (b *EventBus) Publish(e Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now()
	}

	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.handlers[e.Topic]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					fmt.Printf("ERROR: event handler panicked for %s: %v\n", e.Topic, r)
				}
			}()
			if err := h(e); err != nil {
				fmt.Printf("ERROR: event handler failed for %s (entity %s): %v\n", e.Topic, e.EntityID, err)
			}
		}()
	}
}
