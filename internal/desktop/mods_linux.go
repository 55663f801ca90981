package desktop

import (
	"anan-sketchbook/internal/hotkey"

	xhotkey "golang.design/x/hotkey"
)

// XK_BackSpace
const keyBackspace xhotkey.Key = 0xff08

// X11 下 Alt 通常是 Mod1，Super 是 Mod4
var modifierCodes = map[hotkey.Modifier]xhotkey.Modifier{
	hotkey.ModCtrl:  xhotkey.ModCtrl,
	hotkey.ModAlt:   xhotkey.Mod1,
	hotkey.ModShift: xhotkey.ModShift,
	hotkey.ModSuper: xhotkey.Mod4,
}
