// Package hotkey 解析与规范化全局热键字符串（如 "ctrl+alt+v"）。
//
// 解析结果与平台无关，注册到系统的工作由 internal/desktop 完成。
package hotkey

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var (
	ErrEmpty           = errors.New("hotkey is empty")
	ErrNoKey           = errors.New("hotkey has no key")
	ErrUnknownKey      = errors.New("unknown key")
	ErrUnknownModifier = errors.New("unknown modifier")
	ErrDuplicateKey    = errors.New("hotkey has more than one key")
)

// Modifier 修饰键；数值即规范输出顺序
type Modifier int

const (
	ModCtrl Modifier = iota
	ModAlt
	ModShift
	ModSuper
)

func (m Modifier) String() string {
	switch m {
	case ModCtrl:
		return "ctrl"
	case ModAlt:
		return "alt"
	case ModShift:
		return "shift"
	case ModSuper:
		return "win"
	default:
		return fmt.Sprintf("Modifier(%d)", int(m))
	}
}

var modifierAliases = map[string]Modifier{
	"ctrl":    ModCtrl,
	"control": ModCtrl,
	"alt":     ModAlt,
	"option":  ModAlt,
	"opt":     ModAlt,
	"shift":   ModShift,
	"win":     ModSuper,
	"windows": ModSuper,
	"cmd":     ModSuper,
	"command": ModSuper,
	"super":   ModSuper,
	"meta":    ModSuper,
}

// keyAliases 把别名映射到规范键名
var keyAliases = map[string]string{
	"return":     "enter",
	"escape":     "esc",
	"del":        "delete",
	"spacebar":   "space",
	"bksp":       "backspace",
	"arrowup":    "up",
	"arrowdown":  "down",
	"arrowleft":  "left",
	"arrowright": "right",
}

var namedKeys = map[string]struct{}{
	"space": {}, "enter": {}, "tab": {}, "esc": {}, "delete": {}, "backspace": {},
	"up": {}, "down": {}, "left": {}, "right": {},
}

// Combo 解析后的热键组合
type Combo struct {
	Modifiers []Modifier
	Key       string
}

// String 返回规范写法：修饰键按 ctrl、alt、shift、win 排序，全部小写
func (c Combo) String() string {
	parts := make([]string, 0, len(c.Modifiers)+1)
	for _, m := range c.Modifiers {
		parts = append(parts, m.String())
	}
	parts = append(parts, c.Key)
	return strings.Join(parts, "+")
}

// Has 是否包含某个修饰键
func (c Combo) Has(m Modifier) bool {
	for _, have := range c.Modifiers {
		if have == m {
			return true
		}
	}
	return false
}

var normalizer = transform.Chain(width.Fold, norm.NFC)

// Normalize 统一输入法带来的全角字符与大小写，去掉空白
func Normalize(s string) string {
	folded, _, err := transform.String(normalizer, s)
	if err != nil {
		folded = s
	}
	folded = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, folded)
	return strings.ToLower(folded)
}

// Parse 解析热键字符串
func Parse(s string) (Combo, error) {
	normalized := Normalize(s)
	if normalized == "" {
		return Combo{}, ErrEmpty
	}

	var (
		combo Combo
		seen  = make(map[Modifier]bool)
	)
	for _, part := range splitParts(normalized) {
		if m, ok := modifierAliases[part]; ok {
			if !seen[m] {
				seen[m] = true
				combo.Modifiers = append(combo.Modifiers, m)
			}
			continue
		}

		key, err := canonicalKey(part)
		if err != nil {
			return Combo{}, err
		}
		if combo.Key != "" {
			return Combo{}, fmt.Errorf("%w: %q and %q", ErrDuplicateKey, combo.Key, key)
		}
		combo.Key = key
	}

	if combo.Key == "" {
		return Combo{}, ErrNoKey
	}
	sort.Slice(combo.Modifiers, func(i, j int) bool { return combo.Modifiers[i] < combo.Modifiers[j] })
	return combo, nil
}

// splitParts 按 "+" 拆分；"ctrl++" 这类写法里最后的 "+" 视为按键本身不受支持
func splitParts(s string) []string {
	raw := strings.Split(s, "+")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func canonicalKey(part string) (string, error) {
	if alias, ok := keyAliases[part]; ok {
		part = alias
	}
	if _, ok := namedKeys[part]; ok {
		return part, nil
	}
	if len(part) == 1 {
		r := rune(part[0])
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return part, nil
		}
	}
	if n, ok := functionKey(part); ok && n >= 1 && n <= 20 {
		return part, nil
	}
	if isModifierLike(part) {
		return "", fmt.Errorf("%w: %q", ErrUnknownModifier, part)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKey, part)
}

// functionKey 解析 f1..f20
func functionKey(part string) (int, bool) {
	if len(part) < 2 || part[0] != 'f' {
		return 0, false
	}
	n := 0
	for _, r := range part[1:] {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	if part[1] == '0' {
		return 0, false
	}
	return n, true
}

func isModifierLike(part string) bool {
	switch part {
	case "lctrl", "rctrl", "lalt", "ralt", "lshift", "rshift", "altgr", "fn", "hyper":
		return true
	}
	return false
}
