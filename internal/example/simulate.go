package example

import (
	"fmt"

	"go.uber.org/zap"

	contract "github.com/opdss/vent/contracts/event"
	"github.com/opdss/vent/event"
)

// Stats 一轮模拟中各事件的接收次数
type Stats struct {
	Logins  int `json:"logins"`
	Renames int `json:"renames"`
	Unread  int `json:"unread"`
	Logouts int `json:"logouts"`
}

// Watch 订阅全局登录事件, 返回的句柄需要调用方取消
func Watch(logger *zap.Logger) contract.Handle {
	return event.SubscribeStatic(LoggedInUserChanged, func(u *User) {
		logger.Info("logged in user changed", zap.String("user", u.Name()))
	})
}

// Simulate 创建 users 个用户, 依次登录, 修改昵称, 收到消息, 退出
func Simulate(logger *zap.Logger, users int) Stats {
	var stats Stats
	login := event.SubscribeStatic(LoggedInUserChanged, func(*User) { stats.Logins++ })
	defer login.Cancel()

	for i := 0; i < users; i++ {
		u := NewUser(fmt.Sprintf("user-%d", i))
		log := logger.With(zap.String("user", u.Name()))

		handles := contract.Handles{
			event.Subscribe(u, NicknameChanged, func(nickname *string) {
				stats.Renames++
				if nickname != nil {
					log.Debug("nickname changed", zap.String("nickname", *nickname))
				}
			}),
			event.Subscribe(u, UnreadCountChanged, func(c CountChange) {
				stats.Unread++
				log.Debug("unread messages changed", zap.Int("old", c.Old), zap.Int("new", c.New))
			}),
			event.Subscribe(u, LoggedOut, func(event.Void) {
				stats.Logouts++
				log.Debug("logged out")
			}),
		}

		event.SendStatic(LoggedInUserChanged, u)
		nickname := fmt.Sprintf("nick-%d", i)
		u.SetNickname(&nickname)
		u.SetUnreadMessages(i + 1)
		u.LogOut()

		handles.CancelAll()
	}
	return stats
}
