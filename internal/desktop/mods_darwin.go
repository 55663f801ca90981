package desktop

import (
	"anan-sketchbook/internal/hotkey"

	xhotkey "golang.design/x/hotkey"
)

// kVK_Delete，即 Mac 键盘上的退格键
const keyBackspace xhotkey.Key = 0x33

var modifierCodes = map[hotkey.Modifier]xhotkey.Modifier{
	hotkey.ModCtrl:  xhotkey.ModCtrl,
	hotkey.ModAlt:   xhotkey.ModOption,
	hotkey.ModShift: xhotkey.ModShift,
	hotkey.ModSuper: xhotkey.ModCmd,
}
