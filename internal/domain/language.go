package domain

// Lang is a detected query language tag.
type Lang string

// Supported language tags. Detection falls back to LangEN.
const (
	LangEN   Lang = "en"
	LangZH   Lang = "zh"
	LangRU   Lang = "ru"
	LangPali Lang = "pali"
)
