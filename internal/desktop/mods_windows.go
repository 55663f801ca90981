package desktop

import (
	"anan-sketchbook/internal/hotkey"

	xhotkey "golang.design/x/hotkey"
)

// VK_BACK
const keyBackspace xhotkey.Key = 0x08

var modifierCodes = map[hotkey.Modifier]xhotkey.Modifier{
	hotkey.ModCtrl:  xhotkey.ModCtrl,
	hotkey.ModAlt:   xhotkey.ModAlt,
	hotkey.ModShift: xhotkey.ModShift,
	hotkey.ModSuper: xhotkey.ModWin,
}
