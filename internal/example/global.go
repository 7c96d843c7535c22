package example

import "github.com/opdss/vent/event"

// GlobalEvents 全局事件的命名空间, 不需要实例
type GlobalEvents struct {
	event.Source
}

var LoggedInUserChanged = event.DeclareStatic[GlobalEvents, *User]("LoggedInUserChanged")
