package protocol

import (
	"strings"

	"github.com/pkg/errors"
)

// DefaultSubjectPrefix namespaces every NATS subject used by the channel.
const DefaultSubjectPrefix = "cureverse"

// Subject directions.
const (
	ToServer = "to_server"
	ToClient = "to_client"
)

// Subject returns the NATS subject carrying event for session in the given
// direction: <prefix>.<session>.<direction>.<event>.
func Subject(prefix, session, direction, event string) string {
	return strings.Join([]string{prefixOrDefault(prefix), session, direction, event}, ".")
}

// ClientInbox is the wildcard a client subscribes to for server events.
func ClientInbox(prefix, session string) string {
	return Subject(prefix, session, ToClient, "*")
}

// ServerInbox is the wildcard a server subscribes to for all client events.
func ServerInbox(prefix string) string {
	return Subject(prefix, "*", ToServer, "*")
}

// ParseSubject splits a subject produced by Subject.
func ParseSubject(prefix, subject string) (session, direction, event string, err error) {
	p := prefixOrDefault(prefix) + "."
	if !strings.HasPrefix(subject, p) {
		return "", "", "", errors.Errorf("protocol: subject %q outside prefix %q", subject, prefix)
	}
	parts := strings.Split(strings.TrimPrefix(subject, p), ".")
	if len(parts) != 3 || parts[0] == "" || parts[2] == "" {
		return "", "", "", errors.Errorf("protocol: malformed subject %q", subject)
	}
	return parts[0], parts[1], parts[2], nil
}

func prefixOrDefault(prefix string) string {
	if strings.TrimSpace(prefix) == "" {
		return DefaultSubjectPrefix
	}
	return prefix
}
