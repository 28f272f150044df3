package config

import (
	"fmt"
	"strings"
)

// GlobalRoom is the room used when no session name is set.
const GlobalRoom = "global"

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// Room returns the notification room for a session name.
func (r *CacheKeyStruct) Room(sessionName string) string {
	if s := strings.TrimSpace(sessionName); s != "" {
		return s
	}
	return GlobalRoom
}

// RoomChannel returns the Redis PubSub channel name for a session room.
func (r *CacheKeyStruct) RoomChannel(sessionName string) string {
	return fmt.Sprintf("dictant:session:%s", r.Room(sessionName))
}

// RoomChannelPattern matches every session room channel.
func (r *CacheKeyStruct) RoomChannelPattern() string {
	return "dictant:session:*"
}

// AdmissionLockKey identifies the critical section of one student's start
// in one session.
func (r *CacheKeyStruct) AdmissionLockKey(sessionName, studentKey string) string {
	return fmt.Sprintf("admission:%s|%s", sessionName, studentKey)
}

// SettingsLockKey identifies the settings singleton critical section.
func (r *CacheKeyStruct) SettingsLockKey() string {
	return "settings:singleton"
}

var CacheKey = NewCacheKeyStruct()
