package model

// ThemeColors 主题配色
type ThemeColors struct {
	Primary        string `json:"primary"`
	PrimaryVariant string `json:"primaryVariant"`
	Secondary      string `json:"secondary"`
	Background     string `json:"background"`
	Surface        string `json:"surface"`
	SurfaceVariant string `json:"surfaceVariant"`
	Error          string `json:"error"`
	OnPrimary      string `json:"onPrimary"`
	OnSecondary    string `json:"onSecondary"`
	OnBackground   string `json:"onBackground"`
	OnSurface      string `json:"onSurface"`
	OnError        string `json:"onError"`
	Outline        string `json:"outline"`
	Shadow         string `json:"shadow"`
	Success        string `json:"success"`
	Warning        string `json:"warning"`
	Info           string `json:"info"`
}

// Theme 主题
type Theme struct {
	IsDark bool        `json:"isDark"`
	Colors ThemeColors `json:"colors"`
}

// 主题偏好在键值存储中的取值
const (
	ThemeValueLight = "light"
	ThemeValueDark  = "dark"
)

// LightTheme 浅色主题
var LightTheme = Theme{
	IsDark: false,
	Colors: ThemeColors{
		Primary:        "#6200EE",
		PrimaryVariant: "#3700B3",
		Secondary:      "#03DAC6",
		Background:     "#F5F5F5",
		Surface:        "#FFFFFF",
		SurfaceVariant: "#F8F9FA",
		Error:          "#FF5252",
		OnPrimary:      "#FFFFFF",
		OnSecondary:    "#000000",
		OnBackground:   "#333333",
		OnSurface:      "#333333",
		OnError:        "#FFFFFF",
		Outline:        "#E0E0E0",
		Shadow:         "#000000",
		Success:        "#4CAF50",
		Warning:        "#FFC107",
		Info:           "#2196F3",
	},
}

// DarkTheme 深色主题
var DarkTheme = Theme{
	IsDark: true,
	Colors: ThemeColors{
		Primary:        "#BB86FC",
		PrimaryVariant: "#6200EE",
		Secondary:      "#03DAC6",
		Background:     "#121212",
		Surface:        "#1E1E1E",
		SurfaceVariant: "#2C2C2C",
		Error:          "#CF6679",
		OnPrimary:      "#000000",
		OnSecondary:    "#000000",
		OnBackground:   "#FFFFFF",
		OnSurface:      "#FFFFFF",
		OnError:        "#000000",
		Outline:        "#3C3C3C",
		Shadow:         "#000000",
		Success:        "#81C784",
		Warning:        "#FFD54F",
		Info:           "#64B5F6",
	},
}

// ThemeFor 按深浅模式返回主题
func ThemeFor(dark bool) Theme {
	if dark {
		return DarkTheme
	}
	return LightTheme
}
