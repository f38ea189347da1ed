package utils

import (
	"context"
	"fmt"
	"time"
)

// Typing indicators are transient by nature, so they live only in Redis as
// short-TTL keys; a member is "typing" while their key exists.

const typingTTL = 5 * time.Second

func typingKey(groupID uint, username string) string {
	return fmt.Sprintf("typing:%d:%s", groupID, username)
}

// SetTyping marks a member as currently typing in a group.
func SetTyping(groupID uint, username string) {
	rc := GetRedis()
	if rc == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = rc.Set(ctx, typingKey(groupID, username), "1", typingTTL).Err()
}

// TypingMembers lists usernames currently typing in a group.
func TypingMembers(groupID uint) []string {
	rc := GetRedis()
	if rc == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	prefix := fmt.Sprintf("typing:%d:", groupID)
	var names []string
	var cursor uint64
	for i := 0; i < 10; i++ { // limit rounds to avoid long loops
		keys, cur, err := rc.Scan(ctx, cursor, prefix+"*", 100).Result()
		if err != nil {
			break
		}
		cursor = cur
		for _, k := range keys {
			names = append(names, k[len(prefix):])
		}
		if cursor == 0 {
			break
		}
	}
	return names
}
