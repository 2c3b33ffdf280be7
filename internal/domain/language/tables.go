package language

// scriptRange 一段 Unicode 脚本区间及其对应语言码。
type scriptRange struct {
	Lo   rune
	Hi   rune
	Code Code
}

// scriptRanges 按判定优先级排列。Devanagari 覆盖印地语/马拉地语等，
// 默认映射到 hi；Bengali 区间同时覆盖阿萨姆语，默认映射到 bn。
var scriptRanges = []scriptRange{
	{0x0900, 0x097F, Hindi},     // Devanagari
	{0x0C00, 0x0C7F, Telugu},    // Telugu
	{0x0B80, 0x0BFF, Tamil},     // Tamil
	{0x0980, 0x09FF, Bengali},   // Bengali / Assamese
	{0x0A80, 0x0AFF, Gujarati},  // Gujarati
	{0x0C80, 0x0CFF, Kannada},   // Kannada
	{0x0D00, 0x0D7F, Malayalam}, // Malayalam
	{0x0B00, 0x0B7F, Odia},      // Odia
	{0x0A00, 0x0A7F, Punjabi},   // Gurmukhi
}

// translitKeywords 拉丁转写的常见口语词。命中其中一种语言的关键词
// 且文本同时含拉丁字母时判定为 mixed（code-mixing）。
var translitKeywords = map[Code][]string{
	Telugu: {"ela", "cheyam", "undhi", "ledhu", "avuthundi", "cheppu", "ivvandi"},
	Hindi:  {"kaise", "kya", "kyun", "hai", "ho", "kar", "karne", "ke", "ki"},
	Tamil:  {"elaam", "irukku", "pannu", "pannalam", "venum", "illai"},
}

// instructionClauses 每种已解析语言对应的 system instruction 从句。
var instructionClauses = map[Code]string{
	Hindi:     "Respond in Hindi (हिंदी).",
	Telugu:    "Respond in Telugu (తెలుగు).",
	Tamil:     "Respond in Tamil (தமிழ்).",
	Bengali:   "Respond in Bengali (বাংলা).",
	Marathi:   "Respond in Marathi (मराठी).",
	Gujarati:  "Respond in Gujarati (ગુજરાતી).",
	Kannada:   "Respond in Kannada (ಕನ್ನಡ).",
	Malayalam: "Respond in Malayalam (മലയാളം).",
	Odia:      "Respond in Odia (ଓଡ଼ିଆ).",
	Punjabi:   "Respond in Punjabi (ਪੰਜਾਬੀ).",
	Assamese:  "Respond in Assamese (অসমীয়া).",
	Urdu:      "Respond in Urdu (اردو).",
}

// mixedClause 针对 code-mixing 的显式指令：镜像用户的语言混用方式。
const mixedClause = "The user is asking in MIXED LANGUAGE (e.g., Telugu/Hindi + English code-mixing). " +
	"IMPORTANT: Respond in the SAME language mix as the user's question. " +
	"If they mix Telugu + English, respond in Telugu + English. " +
	"If they mix Hindi + English, respond in Hindi + English. " +
	"Keep the same code-mixing style."
