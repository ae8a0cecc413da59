package notify

// SetSend replaces the desktop delivery function in tests.
func (n *DesktopNotifier) SetSend(send func(title, message, appIcon string) error) {
	n.send = send
}
