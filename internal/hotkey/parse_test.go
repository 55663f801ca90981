package hotkey

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCanonical(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ctrl+alt+v", "ctrl+alt+v"},
		{"Alt+Ctrl+V", "ctrl+alt+v"},
		{" ctrl + enter ", "ctrl+enter"},
		{"ctrl+return", "ctrl+enter"},
		{"Control+Shift+F12", "ctrl+shift+f12"},
		{"cmd+option+1", "alt+win+1"},
		{"ctrl+ctrl+a", "ctrl+a"},
		{"esc", "esc"},
		// 中文输入法下的全角输入
		{"ｃｔｒｌ＋ａｌｔ＋ｖ", "ctrl+alt+v"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			combo, err := Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, combo.String())
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"", ErrEmpty},
		{"   ", ErrEmpty},
		{"ctrl+alt", ErrNoKey},
		{"ctrl+", ErrNoKey},
		{"ctrl+a+b", ErrDuplicateKey},
		{"ctrl+pageup", ErrUnknownKey},
		{"f0", ErrUnknownKey},
		{"f21", ErrUnknownKey},
		{"lctrl+v", ErrUnknownModifier},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := Parse(tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestComboHas(t *testing.T) {
	combo, err := Parse("shift+ctrl+x")
	require.NoError(t, err)

	assert.True(t, combo.Has(ModCtrl))
	assert.True(t, combo.Has(ModShift))
	assert.False(t, combo.Has(ModAlt))
	assert.Equal(t, []Modifier{ModCtrl, ModShift}, combo.Modifiers)
	assert.Equal(t, "x", combo.Key)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ctrl+alt+v", Normalize("  CTRL + Alt + V "))
	assert.Equal(t, "ctrl+v", Normalize("ｃｔｒｌ＋Ｖ"))
}
