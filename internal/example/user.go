// Package example 演示如何声明和发布事件
package example

import "github.com/opdss/vent/event"

// CountChange 未读消息数变化
type CountChange struct {
	Old int
	New int
}

var (
	NicknameChanged    = event.Declare[User, *string]("NicknameChanged")
	LoggedOut          = event.Declare[User, event.Void]("LoggedOut")
	UnreadCountChanged = event.Declare[User, CountChange]("UnreadCountChanged")
)

// User 用户资料, 字段变化时发布事件
type User struct {
	event.Source
	name     string
	nickname *string
	unread   int
}

func NewUser(name string) *User {
	return &User{name: name}
}

func (u *User) Name() string {
	return u.name
}

func (u *User) Nickname() *string {
	return u.nickname
}

func (u *User) SetNickname(nickname *string) {
	u.nickname = nickname
	event.Send(u, NicknameChanged, nickname)
}

func (u *User) UnreadMessages() int {
	return u.unread
}

func (u *User) SetUnreadMessages(n int) {
	old := u.unread
	u.unread = n
	event.Send(u, UnreadCountChanged, CountChange{Old: old, New: n})
}

func (u *User) LogOut() {
	event.Signal(u, LoggedOut)
}
