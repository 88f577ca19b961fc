// Package eventbus carries session lifecycle notifications out of the core.
// The core publishes; presentation surfaces (toast, navigation) subscribe.
package eventbus

import (
	evbus "github.com/asaskevich/EventBus"
)

// Session lifecycle topics.
const (
	// TopicSessionActive fires after a successful commit. Payload: nickname string, credits int.
	TopicSessionActive = "session.active"
	// TopicSessionCleared fires after an explicit logout.
	TopicSessionCleared = "session.cleared"
	// TopicSessionExpired fires on forced invalidation after a 401.
	TopicSessionExpired = "session.expired"
	// TopicNavigateLogin asks the shell to route the user to the login surface.
	TopicNavigateLogin = "session.navigate_login"
	// TopicToast asks the shell to show a transient message. Payload: message string.
	TopicToast = "session.toast"
)

// Bus is the synchronous event bus used by the session core.
type Bus = evbus.Bus

// New 创建新的同步事件总线
func New() Bus {
	return evbus.New()
}
