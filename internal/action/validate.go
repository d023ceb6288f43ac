package action

import "encoding/json"

// Decode parses raw bytes into an ActionMessage envelope and, if the type
// discriminator is recognized, decodes the typed payload into the matching
// field. It never returns an error for an unrecognized type — that is the
// job of IsValidAction, which rejects by returning false rather than by
// failing decode.
func Decode(raw []byte) (ActionMessage, bool) {
	var msg ActionMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return ActionMessage{}, false
	}
	return msg, IsValidAction(&msg)
}

// IsValidAction returns true iff msg carries a known discriminator and a
// structurally well-typed payload for that variant. It populates the
// matching typed field on msg as a side effect of validating it, so callers
// that pass validation can read msg.Tool / msg.Notify / etc. directly.
func IsValidAction(msg *ActionMessage) bool {
	if msg == nil {
		return false
	}
	switch msg.Type {
	case TypeTool:
		return isToolAction(msg)
	case TypeNotify:
		return isNotifyAction(msg)
	case TypeLink:
		return isLinkAction(msg)
	case TypePrompt:
		return isPromptAction(msg)
	case TypeIntent:
		return isIntentAction(msg)
	default:
		return false
	}
}

func isToolAction(msg *ActionMessage) bool {
	var p ToolPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		return false
	}
	if p.ToolName == "" {
		return false
	}
	msg.Tool = &p
	return true
}

func isNotifyAction(msg *ActionMessage) bool {
	var p NotifyPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		return false
	}
	switch p.Level {
	case LevelInfo, LevelSuccess, LevelWarn, LevelError:
	default:
		return false
	}
	if p.Message == "" {
		return false
	}
	msg.Notify = &p
	return true
}

func isLinkAction(msg *ActionMessage) bool {
	var p LinkPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		return false
	}
	if p.URL == "" {
		return false
	}
	switch p.Target {
	case "", TargetBlank, TargetSelf:
	default:
		return false
	}
	msg.Link = &p
	return true
}

func isPromptAction(msg *ActionMessage) bool {
	var p PromptPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		return false
	}
	if p.Text == "" {
		return false
	}
	msg.Prompt = &p
	return true
}

func isIntentAction(msg *ActionMessage) bool {
	var p IntentPayload
	if err := json.Unmarshal(msg.Payload, &p); err != nil {
		return false
	}
	if p.Intent == "" {
		return false
	}
	msg.Intent = &p
	return true
}
