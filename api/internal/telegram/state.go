package telegram

import (
	"sync"
)

// chatLang holds the /lang hint per chat. Missing means grammar.DefaultLanguage.
type chatLang struct {
	m sync.Map // chatID -> string
}

func (c *chatLang) set(chatID int64, lang string) { c.m.Store(chatID, lang) }
func (c *chatLang) get(chatID int64) string {
	if v, ok := c.m.Load(chatID); ok {
		if s, _ := v.(string); s != "" {
			return s
		}
	}
	return ""
}
func (c *chatLang) clear(chatID int64) { c.m.Delete(chatID) }
