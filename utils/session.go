package utils

import (
	"fmt"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	// SessionName is the cookie holding the staff session
	SessionName = "infusedesk_session"

	sessionUserKey  = "user_id"
	sessionStateKey = "oauth_state"
)

func CheckSessionStore(c *gin.Context) error {
	session := sessions.Default(c)
	session.Set("test", "test")
	if err := session.Save(); err != nil {
		return fmt.Errorf("session store check failed: %v", err)
	}
	session.Delete("test")
	return session.Save()
}

// SetSessionUser remembers the signed in staff user in the session cookie
func SetSessionUser(c *gin.Context, userID uint) error {
	session := sessions.Default(c)
	session.Set(sessionUserKey, userID)
	return session.Save()
}

// SessionUserID returns the staff user stored in the session, if any
func SessionUserID(c *gin.Context) (uint, bool) {
	switch v := sessions.Default(c).Get(sessionUserKey).(type) {
	case uint:
		return v, v != 0
	case int:
		return uint(v), v > 0
	case float64:
		return uint(v), v > 0
	}
	return 0, false
}

// ClearSession drops everything stored in the session cookie
func ClearSession(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return session.Save()
}

// SetOAuthState stores the state parameter of a pending Google sign in
func SetOAuthState(c *gin.Context, state string) error {
	session := sessions.Default(c)
	session.Set(sessionStateKey, state)
	return session.Save()
}

// TakeOAuthState returns and forgets the pending Google sign in state
func TakeOAuthState(c *gin.Context) string {
	session := sessions.Default(c)
	state, _ := session.Get(sessionStateKey).(string)
	session.Delete(sessionStateKey)
	if err := session.Save(); err != nil {
		LogError("Failed to clear oauth state: %v", err)
	}
	return state
}
