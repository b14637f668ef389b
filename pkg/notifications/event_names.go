package notifications

import (
	"fmt"
	"regexp"
)

type EventName string

const (
	TenantCreated    EventName = "tenant.created"
	CalendarUpdated  EventName = "calendar.updated"
	NoteCreated      EventName = "note.created"
	NoteDeleted      EventName = "note.deleted"
	ChatMessage      EventName = "chat.message"
	UnreadCountShown EventName = "unread.count"
	// Published is used for messages posted through the notifications api
	Published EventName = "published"
)

func (e EventName) String() string {
	return string(e)
}

// Groups a connection can listen to. Topics are the group prefixed with the
// tenant schema, so two tenants never share a topic.
const (
	CalendarUpdatesGroup = "calendar_updates"
	TenantsGroup         = "tenants"
)

func EventNotesGroup(eventID int64) string {
	return fmt.Sprintf("event_%d_notes", eventID)
}

func WorkAccountNotesGroup(workAccountID int64) string {
	return fmt.Sprintf("work_account_%d_notes", workAccountID)
}

func ScheduleChatGroup(scheduleID int64) string {
	return fmt.Sprintf("schedule_%d_chat", scheduleID)
}

func WorkAccountChatGroup(workAccountID int64) string {
	return fmt.Sprintf("work_account_%d_chat", workAccountID)
}

func UserUnreadGroup(userID int64) string {
	return fmt.Sprintf("user_%d_unread", userID)
}

var groupPattern = regexp.MustCompile(`^(calendar_updates|tenants|event_\d+_notes|work_account_\d+_notes|schedule_\d+_chat|work_account_\d+_chat|user_\d+_unread)$`)

// ValidGroup reports whether group is one of the known group forms.
func ValidGroup(group string) bool {
	return groupPattern.MatchString(group)
}

// Topic namespaces a group by tenant schema.
func Topic(schema, group string) string {
	return schema + "." + group
}
