package desktop

import (
	"fmt"

	"anan-sketchbook/internal/hotkey"

	xhotkey "golang.design/x/hotkey"
)

var keyCodes = map[string]xhotkey.Key{
	"a":         xhotkey.KeyA,
	"b":         xhotkey.KeyB,
	"c":         xhotkey.KeyC,
	"d":         xhotkey.KeyD,
	"e":         xhotkey.KeyE,
	"f":         xhotkey.KeyF,
	"g":         xhotkey.KeyG,
	"h":         xhotkey.KeyH,
	"i":         xhotkey.KeyI,
	"j":         xhotkey.KeyJ,
	"k":         xhotkey.KeyK,
	"l":         xhotkey.KeyL,
	"m":         xhotkey.KeyM,
	"n":         xhotkey.KeyN,
	"o":         xhotkey.KeyO,
	"p":         xhotkey.KeyP,
	"q":         xhotkey.KeyQ,
	"r":         xhotkey.KeyR,
	"s":         xhotkey.KeyS,
	"t":         xhotkey.KeyT,
	"u":         xhotkey.KeyU,
	"v":         xhotkey.KeyV,
	"w":         xhotkey.KeyW,
	"x":         xhotkey.KeyX,
	"y":         xhotkey.KeyY,
	"z":         xhotkey.KeyZ,
	"0":         xhotkey.Key0,
	"1":         xhotkey.Key1,
	"2":         xhotkey.Key2,
	"3":         xhotkey.Key3,
	"4":         xhotkey.Key4,
	"5":         xhotkey.Key5,
	"6":         xhotkey.Key6,
	"7":         xhotkey.Key7,
	"8":         xhotkey.Key8,
	"9":         xhotkey.Key9,
	"f1":        xhotkey.KeyF1,
	"f2":        xhotkey.KeyF2,
	"f3":        xhotkey.KeyF3,
	"f4":        xhotkey.KeyF4,
	"f5":        xhotkey.KeyF5,
	"f6":        xhotkey.KeyF6,
	"f7":        xhotkey.KeyF7,
	"f8":        xhotkey.KeyF8,
	"f9":        xhotkey.KeyF9,
	"f10":       xhotkey.KeyF10,
	"f11":       xhotkey.KeyF11,
	"f12":       xhotkey.KeyF12,
	"f13":       xhotkey.KeyF13,
	"f14":       xhotkey.KeyF14,
	"f15":       xhotkey.KeyF15,
	"f16":       xhotkey.KeyF16,
	"f17":       xhotkey.KeyF17,
	"f18":       xhotkey.KeyF18,
	"f19":       xhotkey.KeyF19,
	"f20":       xhotkey.KeyF20,
	"space":     xhotkey.KeySpace,
	"enter":     xhotkey.KeyReturn,
	"tab":       xhotkey.KeyTab,
	"esc":       xhotkey.KeyEscape,
	"delete":    xhotkey.KeyDelete,
	"up":        xhotkey.KeyUp,
	"down":      xhotkey.KeyDown,
	"left":      xhotkey.KeyLeft,
	"right":     xhotkey.KeyRight,
	"backspace": keyBackspace,
}

// systemKeys 把解析后的热键换成 golang.design/x/hotkey 的修饰键与键码
func systemKeys(combo hotkey.Combo) ([]xhotkey.Modifier, xhotkey.Key, error) {
	key, ok := keyCodes[combo.Key]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %q", hotkey.ErrUnknownKey, combo.Key)
	}

	mods := make([]xhotkey.Modifier, 0, len(combo.Modifiers))
	for _, m := range combo.Modifiers {
		mod, ok := modifierCodes[m]
		if !ok {
			return nil, 0, fmt.Errorf("%w: %s", hotkey.ErrUnknownModifier, m)
		}
		mods = append(mods, mod)
	}
	return mods, key, nil
}
