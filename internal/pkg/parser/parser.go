// Package parser turns free-form chat text into a typed command. Parsing is
// pure; catalog validation and default-device substitution belong to the
// dispatcher.
package parser

import (
	"regexp"
	"strings"

	"github.com/anicoll/chatbridge/internal/pkg/model"
)

var (
	enableRe    = regexp.MustCompile(`^(/enable|turn\s+on\s+the\s+light|turn\s+on)(\s+(?P<device>\S+))?(\s+.*)?$`)
	disableRe   = regexp.MustCompile(`^(/disable|turn\s+off\s+the\s+light|turn\s+off)(\s+(?P<device>\S+))?(\s+.*)?$`)
	setStatusRe = regexp.MustCompile(`^/setstatus\s+(?P<state>on|off)(\s+(?P<device>\S+))?(\s+.*)?$`)
	getStatusRe = regexp.MustCompile(`^(/getstatus|/status|get\s+status)(\s+(?P<device>\S+))?(\s+.*)?$`)
	bindRe      = regexp.MustCompile(`^/bind\s+(?P<device>\S+)\s*$`)
	helpRe      = regexp.MustCompile(`^(hi|hello|/start|/help)\s*$`)
)

// Parse matches text against the supported command grammar. Matching is
// case-insensitive and ignores surrounding whitespace. Unrecognized text
// yields ActionUnknown, never an error.
func Parse(text string) model.Command {
	text = strings.ToLower(strings.TrimSpace(text))

	if m := enableRe.FindStringSubmatch(text); m != nil {
		return model.Command{Action: model.ActionEnable, DeviceID: group(enableRe, m, "device")}
	}
	if m := disableRe.FindStringSubmatch(text); m != nil {
		return model.Command{Action: model.ActionDisable, DeviceID: group(disableRe, m, "device")}
	}
	if m := setStatusRe.FindStringSubmatch(text); m != nil {
		return model.Command{
			Action:   model.ActionSetStatus,
			State:    model.DeviceState(group(setStatusRe, m, "state")),
			DeviceID: group(setStatusRe, m, "device"),
		}
	}
	if m := getStatusRe.FindStringSubmatch(text); m != nil {
		return model.Command{Action: model.ActionGetStatus, DeviceID: group(getStatusRe, m, "device")}
	}
	if m := bindRe.FindStringSubmatch(text); m != nil {
		return model.Command{Action: model.ActionBind, DeviceID: group(bindRe, m, "device")}
	}
	if helpRe.MatchString(text) {
		return model.Command{Action: model.ActionHelp}
	}
	return model.Command{Action: model.ActionUnknown}
}

func group(re *regexp.Regexp, match []string, name string) string {
	idx := re.SubexpIndex(name)
	if idx < 0 || idx >= len(match) {
		return ""
	}
	return match[idx]
}
