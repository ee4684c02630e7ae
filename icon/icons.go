package icon

// Icon identifies a symbol in the global registry.
type Icon int

const (
	Success Icon = iota
	Fail
	Progress
	Question
	Addon
	Search
	Movie
	Series
	Star
	Clock
	User
	Play
)

// icons maps each identifier to its per-variant representations.
var icons = map[Icon]*iconDef{
	Success: {
		emoji:   "✅",
		nerd:    "",
		plain:   "+",
		kaomoji: "(•̀ᴗ•́)و",
		squares: "🟩",
	},
	Fail: {
		emoji:   "❌",
		nerd:    "",
		plain:   "x",
		kaomoji: "(╥﹏╥)",
		squares: "🟥",
	},
	Progress: {
		emoji:   "⏳",
		nerd:    "",
		plain:   "*",
		kaomoji: "( ・・)ノ",
		squares: "🟨",
	},
	Question: {
		emoji:   "❓",
		nerd:    "",
		plain:   "?",
		kaomoji: "(・_・ヾ",
		squares: "🟦",
	},
	Addon: {
		emoji:   "🧩",
		nerd:    "",
		plain:   "#",
		kaomoji: "(つ✧ω✧)つ",
		squares: "🟪",
	},
	Search: {
		emoji:   "🔍",
		nerd:    "",
		plain:   ">",
		kaomoji: "(⌐■_■)",
		squares: "🟦",
	},
	Movie: {
		emoji:   "🎬",
		nerd:    "",
		plain:   "m",
		kaomoji: "(｡◕‿◕｡)",
		squares: "🟧",
	},
	Series: {
		emoji:   "📺",
		nerd:    "",
		plain:   "s",
		kaomoji: "(◕ᴥ◕)",
		squares: "🟫",
	},
	Star: {
		emoji:   "⭐",
		nerd:    "",
		plain:   "*",
		kaomoji: "(☆▽☆)",
		squares: "🟨",
	},
	Clock: {
		emoji:   "🕒",
		nerd:    "",
		plain:   "@",
		kaomoji: "(-_-)zzz",
		squares: "⬜",
	},
	User: {
		emoji:   "👤",
		nerd:    "",
		plain:   "u",
		kaomoji: "(^-^)/",
		squares: "⬛",
	},
	Play: {
		emoji:   "▶️",
		nerd:    "",
		plain:   ">",
		kaomoji: "ᕕ( ᐛ )ᕗ",
		squares: "🟩",
	},
}
